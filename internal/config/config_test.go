package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/theirongolddev/echolon/internal/model"
)

func TestLoadFrom_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.General.Seed != DefaultSeed {
		t.Errorf("Seed = %d, want %d", cfg.General.Seed, DefaultSeed)
	}
	if cfg.Goals.Revenue != 120000 {
		t.Errorf("Goals.Revenue = %.0f, want 120000", cfg.Goals.Revenue)
	}
}

func TestSaveTo_RoundTripKeepsOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	cfg := DefaultConfig()
	cfg.General.Industry = "saas"
	cfg.Vault.BaseURL = "http://vault.local"
	churn := 0.02
	cfg.Benchmarks.Overrides = map[string]BenchmarkOverride{"saas": {ChurnRate: &churn}}

	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("perm = %o, want 600", perm)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if got.General.Industry != "saas" {
		t.Errorf("Industry = %q, want saas", got.General.Industry)
	}
	o := got.Benchmarks.Overrides["saas"]
	if o.ChurnRate == nil || *o.ChurnRate != 0.02 {
		t.Errorf("override churn = %v, want 0.02", o.ChurnRate)
	}
}

func TestLoadFrom_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[general]\nindustry = \"retail\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.General.Periods != DefaultPeriods {
		t.Errorf("Periods = %d, want %d", cfg.General.Periods, DefaultPeriods)
	}
	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Addr = %q, want %q", cfg.Server.Addr, DefaultAddr)
	}
}

func TestEnvOverrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Vault.Token = "from-config"
	cfg.AI.APIKey = "cfg-key"

	t.Setenv("ECHOLON_VAULT_TOKEN", "")
	t.Setenv("OPENAI_API_KEY", "")
	if got := GetVaultToken(cfg); got != "from-config" {
		t.Errorf("GetVaultToken = %q, want from-config", got)
	}

	t.Setenv("ECHOLON_VAULT_TOKEN", "from-env")
	t.Setenv("OPENAI_API_KEY", "env-key")
	if got := GetVaultToken(cfg); got != "from-env" {
		t.Errorf("GetVaultToken = %q, want from-env", got)
	}
	if got := GetOpenAIKey(cfg); got != "env-key" {
		t.Errorf("GetOpenAIKey = %q, want env-key", got)
	}
}

func TestGoalsTargets(t *testing.T) {
	g := GoalsConfig{Revenue: 1000, Orders: 0, ConversionRate: 0.1}
	targets := g.Targets()
	if len(targets) != 2 {
		t.Fatalf("len(targets) = %d, want 2", len(targets))
	}
	if targets[0].Metric != model.FieldRevenue || targets[1].Metric != model.FieldConversionRate {
		t.Errorf("targets order = %v", targets)
	}

	back := GoalsFromTargets(targets)
	if back != g {
		t.Errorf("GoalsFromTargets = %+v, want %+v", back, g)
	}
}
