package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/theirongolddev/echolon/internal/model"
	"gopkg.in/yaml.v3"
)

// Benchmarks holds per-period industry reference values. A zero value
// means no benchmark is known for that metric.
type Benchmarks struct {
	Revenue        float64 `yaml:"revenue"`
	Expenses       float64 `yaml:"expenses"`
	AdSpend        float64 `yaml:"ad_spend"`
	Orders         float64 `yaml:"orders"`
	Customers      float64 `yaml:"customers"`
	ChurnRate      float64 `yaml:"churn_rate"`
	ConversionRate float64 `yaml:"conversion_rate"`
}

// Value returns the benchmark for a field and whether it is set.
func (b Benchmarks) Value(f model.Field) (float64, bool) {
	var v float64
	switch f {
	case model.FieldRevenue:
		v = b.Revenue
	case model.FieldExpenses:
		v = b.Expenses
	case model.FieldAdSpend:
		v = b.AdSpend
	case model.FieldOrders:
		v = b.Orders
	case model.FieldCustomers:
		v = b.Customers
	case model.FieldChurnRate:
		v = b.ChurnRate
	case model.FieldConversionRate:
		v = b.ConversionRate
	}
	return v, v > 0
}

// BenchmarkOverrides allows user-defined benchmarks per industry.
type BenchmarkOverrides struct {
	Overrides map[string]BenchmarkOverride `toml:"overrides,omitempty"`
}

// BenchmarkOverride holds per-industry benchmark overrides.
type BenchmarkOverride struct {
	Revenue        *float64 `toml:"revenue,omitempty"`
	Expenses       *float64 `toml:"expenses,omitempty"`
	AdSpend        *float64 `toml:"ad_spend,omitempty"`
	Orders         *float64 `toml:"orders,omitempty"`
	Customers      *float64 `toml:"customers,omitempty"`
	ChurnRate      *float64 `toml:"churn_rate,omitempty"`
	ConversionRate *float64 `toml:"conversion_rate,omitempty"`
}

// Apply returns b with every set override replacing its value.
func (o BenchmarkOverride) Apply(b Benchmarks) Benchmarks {
	set := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	set(&b.Revenue, o.Revenue)
	set(&b.Expenses, o.Expenses)
	set(&b.AdSpend, o.AdSpend)
	set(&b.Orders, o.Orders)
	set(&b.Customers, o.Customers)
	set(&b.ChurnRate, o.ChurnRate)
	set(&b.ConversionRate, o.ConversionRate)
	return b
}

type benchmarkVersion struct {
	EffectiveFrom time.Time
	Benchmarks    Benchmarks
}

// DefaultBenchmarks maps industries to their current reference values.
var DefaultBenchmarks = map[string]Benchmarks{
	"general": {
		Revenue: 100000, Expenses: 75000, AdSpend: 15000, Orders: 600,
		Customers: 3500, ChurnRate: 0.05, ConversionRate: 0.035,
	},
	"retail": {
		Revenue: 95000, Expenses: 78000, AdSpend: 12000, Orders: 850,
		Customers: 4200, ChurnRate: 0.06, ConversionRate: 0.03,
	},
	"ecommerce": {
		Revenue: 110000, Expenses: 82000, AdSpend: 19000, Orders: 700,
		Customers: 3800, ChurnRate: 0.055, ConversionRate: 0.028,
	},
	"saas": {
		Revenue: 125000, Expenses: 70000, AdSpend: 16000, Orders: 400,
		Customers: 2500, ChurnRate: 0.04, ConversionRate: 0.045,
	},
	"services": {
		Revenue: 85000, Expenses: 60000, AdSpend: 8000, Orders: 350,
		Customers: 1500, ChurnRate: 0.035, ConversionRate: 0.05,
	},
}

// defaultBenchmarkHistory stores effective-dated references per industry.
// Entries must be sorted by EffectiveFrom ascending.
var defaultBenchmarkHistory = makeDefaultBenchmarkHistory(DefaultBenchmarks)

func makeDefaultBenchmarkHistory(base map[string]Benchmarks) map[string][]benchmarkVersion {
	history := make(map[string][]benchmarkVersion, len(base))
	for industry, b := range base {
		history[industry] = []benchmarkVersion{
			{Benchmarks: b},
		}
	}
	// 2023 survey figures for the general table, replaced from 2024.
	history["general"] = []benchmarkVersion{
		{Benchmarks: Benchmarks{
			Revenue: 92000, Expenses: 71000, AdSpend: 14000, Orders: 560,
			Customers: 3200, ChurnRate: 0.055, ConversionRate: 0.032,
		}},
		{EffectiveFrom: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Benchmarks: base["general"]},
	}
	return history
}

var industryAliases = map[string]string{
	"e-commerce":   "ecommerce",
	"ecom":         "ecommerce",
	"online":       "ecommerce",
	"software":     "saas",
	"subscription": "saas",
	"store":        "retail",
	"shop":         "retail",
	"consulting":   "services",
	"agency":       "services",
	"":             "general",
	"default":      "general",
}

func hasIndustry(name string) bool {
	if _, ok := defaultBenchmarkHistory[name]; ok {
		return true
	}
	_, ok := DefaultBenchmarks[name]
	return ok
}

// NormalizeIndustry lower-cases an industry name and resolves aliases.
// e.g., "E-Commerce" -> "ecommerce"
func NormalizeIndustry(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	if hasIndustry(name) {
		return name
	}
	if alias, ok := industryAliases[name]; ok {
		return alias
	}
	return name
}

// Industries returns the known industry names, sorted.
func Industries() []string {
	names := make([]string, 0, len(DefaultBenchmarks))
	for name := range DefaultBenchmarks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupBenchmarks returns the current benchmarks for an industry.
// Returns zero benchmarks and false if the industry is unknown.
func LookupBenchmarks(industry string) (Benchmarks, bool) {
	return LookupBenchmarksAt(industry, time.Now())
}

// LookupBenchmarksAt returns the benchmarks for an industry at the given time.
// If at is zero, the latest known entry is used.
func LookupBenchmarksAt(industry string, at time.Time) (Benchmarks, bool) {
	normalized := NormalizeIndustry(industry)
	versions, ok := defaultBenchmarkHistory[normalized]
	if !ok || len(versions) == 0 {
		b, fallback := DefaultBenchmarks[normalized]
		return b, fallback
	}

	if at.IsZero() {
		return versions[len(versions)-1].Benchmarks, true
	}

	at = at.UTC()
	selected := versions[0].Benchmarks
	for _, v := range versions {
		if v.EffectiveFrom.IsZero() || !at.Before(v.EffectiveFrom.UTC()) {
			selected = v.Benchmarks
			continue
		}
		break
	}
	return selected, true
}

// ResolveBenchmarks picks the table for an industry at a point in time and
// applies config overrides. Tables loaded from a benchmark file take
// precedence over the built-in ones. Unknown industries fall back to general.
func ResolveBenchmarks(cfg Config, industry string, at time.Time, file map[string]Benchmarks) Benchmarks {
	name := NormalizeIndustry(industry)

	b, ok := file[name]
	if !ok {
		b, ok = LookupBenchmarksAt(name, at)
		if !ok {
			b, _ = LookupBenchmarksAt(DefaultIndustry, at)
		}
	}
	if o, ok := cfg.Benchmarks.Overrides[name]; ok {
		b = o.Apply(b)
	}
	return b
}

// benchmarkFile is the on-disk YAML layout for --benchmarks.
type benchmarkFile struct {
	Industries map[string]Benchmarks `yaml:"industries"`
}

// LoadBenchmarkFile reads industry benchmark tables from a YAML file.
func LoadBenchmarkFile(path string) (map[string]Benchmarks, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-supplied benchmark path
	if err != nil {
		return nil, fmt.Errorf("reading benchmarks: %w", err)
	}
	var f benchmarkFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing benchmarks: %w", err)
	}
	if len(f.Industries) == 0 {
		return nil, fmt.Errorf("parsing benchmarks: no industries in %s", path)
	}
	out := make(map[string]Benchmarks, len(f.Industries))
	for name, b := range f.Industries {
		out[NormalizeIndustry(name)] = b
	}
	return out, nil
}
