package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/echolon/internal/model"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func TestLookupBenchmarksAt_UsesEffectiveDate(t *testing.T) {
	industry := "test-industry-windowed"
	orig, had := defaultBenchmarkHistory[industry]
	if had {
		defer func() { defaultBenchmarkHistory[industry] = orig }()
	} else {
		defer delete(defaultBenchmarkHistory, industry)
	}

	defaultBenchmarkHistory[industry] = []benchmarkVersion{
		{
			EffectiveFrom: mustDate(t, "2025-01-01"),
			Benchmarks:    Benchmarks{Revenue: 1000},
		},
		{
			EffectiveFrom: mustDate(t, "2025-07-01"),
			Benchmarks:    Benchmarks{Revenue: 2000},
		},
	}

	apr, ok := LookupBenchmarksAt(industry, mustDate(t, "2025-04-15"))
	if !ok {
		t.Fatal("LookupBenchmarksAt returned !ok for historical industry")
	}
	if apr.Revenue != 1000 {
		t.Fatalf("April Revenue = %.0f, want 1000", apr.Revenue)
	}

	aug, ok := LookupBenchmarksAt(industry, mustDate(t, "2025-08-15"))
	if !ok {
		t.Fatal("LookupBenchmarksAt returned !ok for historical industry in later window")
	}
	if aug.Revenue != 2000 {
		t.Fatalf("August Revenue = %.0f, want 2000", aug.Revenue)
	}
}

func TestLookupBenchmarksAt_UsesLatestWhenTimeZero(t *testing.T) {
	b, ok := LookupBenchmarksAt("general", time.Time{})
	if !ok {
		t.Fatal("LookupBenchmarksAt returned !ok for general")
	}
	if b != DefaultBenchmarks["general"] {
		t.Fatalf("zero-time lookup = %+v, want current general table", b)
	}

	old, _ := LookupBenchmarksAt("general", mustDate(t, "2023-06-01"))
	if old.Revenue != 92000 {
		t.Fatalf("2023 general Revenue = %.0f, want 92000", old.Revenue)
	}
}

func TestNormalizeIndustry(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"SaaS", "saas"},
		{" E-Commerce ", "ecommerce"},
		{"software", "saas"},
		{"", "general"},
		{"aerospace", "aerospace"},
	}
	for _, tt := range tests {
		if got := NormalizeIndustry(tt.in); got != tt.want {
			t.Errorf("NormalizeIndustry(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveBenchmarks(t *testing.T) {
	at := mustDate(t, "2025-03-01")

	t.Run("unknown industry falls back to general", func(t *testing.T) {
		got := ResolveBenchmarks(DefaultConfig(), "aerospace", at, nil)
		if got != DefaultBenchmarks["general"] {
			t.Errorf("got %+v, want general table", got)
		}
	})

	t.Run("config override replaces one metric", func(t *testing.T) {
		cfg := DefaultConfig()
		rev := 50000.0
		cfg.Benchmarks.Overrides = map[string]BenchmarkOverride{
			"saas": {Revenue: &rev},
		}
		got := ResolveBenchmarks(cfg, "SaaS", at, nil)
		if got.Revenue != 50000 {
			t.Errorf("Revenue = %.0f, want 50000", got.Revenue)
		}
		if got.ChurnRate != DefaultBenchmarks["saas"].ChurnRate {
			t.Errorf("ChurnRate = %.3f, want untouched %.3f", got.ChurnRate, DefaultBenchmarks["saas"].ChurnRate)
		}
	})

	t.Run("file table wins over built-in", func(t *testing.T) {
		file := map[string]Benchmarks{"retail": {Revenue: 1}}
		got := ResolveBenchmarks(DefaultConfig(), "retail", at, file)
		if got.Revenue != 1 || got.Expenses != 0 {
			t.Errorf("got %+v, want file table", got)
		}
	})
}

func TestBenchmarksValue(t *testing.T) {
	b := Benchmarks{Revenue: 10, ChurnRate: 0.05}
	if v, ok := b.Value(model.FieldRevenue); !ok || v != 10 {
		t.Errorf("Value(revenue) = %v, %v", v, ok)
	}
	if _, ok := b.Value(model.FieldExpenses); ok {
		t.Error("Value(expenses) should be unset")
	}
	if _, ok := b.Value(model.FieldDate); ok {
		t.Error("Value(date) should never be set")
	}
}

func TestLoadBenchmarkFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bench.yaml")
	body := `industries:
  E-Commerce:
    revenue: 150000
    churn_rate: 0.03
  bakery:
    revenue: 20000
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	tables, err := LoadBenchmarkFile(path)
	if err != nil {
		t.Fatalf("LoadBenchmarkFile: %v", err)
	}
	if got := tables["ecommerce"].Revenue; got != 150000 {
		t.Errorf("ecommerce revenue = %.0f, want 150000", got)
	}
	if got := tables["bakery"].Revenue; got != 20000 {
		t.Errorf("bakery revenue = %.0f, want 20000", got)
	}

	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, []byte("industries: {}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadBenchmarkFile(empty); err == nil {
		t.Error("expected error for file without industries")
	}
}
