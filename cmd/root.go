// Package cmd implements the echolon CLI commands.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/theirongolddev/echolon/internal/cli"
	"github.com/theirongolddev/echolon/internal/config"
	"github.com/theirongolddev/echolon/internal/model"
	"github.com/theirongolddev/echolon/internal/pipeline"
	"github.com/theirongolddev/echolon/internal/store"
	"github.com/theirongolddev/echolon/internal/vault"

	"github.com/spf13/cobra"
)

var (
	flagFiles      []string
	flagSheetURL   string
	flagAPIURL     string
	flagDemo       bool
	flagSeed       int64
	flagIndustry   string
	flagBenchmarks string
	flagNoCache    bool
	flagQuiet      bool
)

var rootCmd = &cobra.Command{
	Use:   "echolon",
	Short: "Business metrics dashboard",
	Long:  "Map CSV, Google Sheets or REST metrics, compare them to industry benchmarks, and explore what-if scenarios.",
	RunE:  runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringArrayVarP(&flagFiles, "file", "f", nil, "CSV file or directory (repeatable)")
	rootCmd.PersistentFlags().StringVar(&flagSheetURL, "sheet-url", "", "Google Sheets URL to import")
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "REST endpoint returning JSON rows")
	rootCmd.PersistentFlags().BoolVar(&flagDemo, "demo", false, "Use generated demo data")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "Demo data seed (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagIndustry, "industry", "", "Industry for benchmarks (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagBenchmarks, "benchmarks", "", "YAML file with industry benchmark tables")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip SQLite cache, reparse everything")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
}

// loadConfig returns the config file contents, or defaults with a warning.
func loadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil {
		warnf("config: %v (using defaults)", err)
		return config.DefaultConfig()
	}
	return cfg
}

func warnf(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, "  "+format+"\n", args...)
}

// buildLoadOptions maps flags and config onto loader options. A configured
// data directory is used when no input flag is given.
func buildLoadOptions(cfg config.Config) pipeline.Options {
	paths := flagFiles
	if len(paths) == 0 && flagSheetURL == "" && flagAPIURL == "" && cfg.General.DataDir != "" {
		paths = []string{cfg.General.DataDir}
	}
	seed := flagSeed
	if seed == 0 {
		seed = cfg.General.Seed
	}
	return pipeline.Options{
		Paths:    paths,
		SheetURL: flagSheetURL,
		APIURL:   flagAPIURL,
		Demo:     flagDemo,
		Seed:     seed,
		Periods:  cfg.General.Periods,
	}
}

// loadData is the shared data loading path used by all commands.
// Uses the SQLite cache for file inputs when available.
func loadData(ctx context.Context, cfg config.Config) *pipeline.LoadResult {
	opts := buildLoadOptions(cfg)

	if !flagQuiet && len(opts.Paths) > 0 && !opts.Demo {
		fmt.Fprintf(os.Stderr, "  Scanning %s...\n", strings.Join(opts.Paths, ", "))
	}
	opts.Progress = func(current, total int) {
		if flagQuiet {
			return
		}
		if current%10 == 0 || current == total {
			fmt.Fprintf(os.Stderr, "\r  Parsing [%d/%d]", current, total)
		}
	}

	if !flagNoCache && len(opts.Paths) > 0 {
		cache, err := store.Open(pipeline.CachePath())
		if err != nil {
			warnf("Cache unavailable, doing full parse")
		} else {
			defer cache.Close()
			opts.Cache = cache
		}
	}

	result := pipeline.LoadOrDemo(ctx, opts)
	if !flagQuiet && result.TotalFiles > 0 {
		fmt.Fprintf(os.Stderr, "\r  Parsed %s files across %d directories    \n",
			cli.FormatNumber(int64(result.ParsedFiles)),
			result.DirCount,
		)
	}
	for _, w := range result.Warnings {
		warnf("%s", cli.RenderWarning(w))
	}
	return result
}

// resolveIndustry picks the --industry flag over the configured default.
func resolveIndustry(cfg config.Config) string {
	if flagIndustry != "" {
		return config.NormalizeIndustry(flagIndustry)
	}
	return config.NormalizeIndustry(cfg.General.Industry)
}

// loadBenchmarkFile reads --benchmarks when set. A bad file is reported and
// the built-in tables are used instead.
func loadBenchmarkFile() map[string]config.Benchmarks {
	if flagBenchmarks == "" {
		return nil
	}
	file, err := config.LoadBenchmarkFile(flagBenchmarks)
	if err != nil {
		warnf("benchmarks: %v (using built-in tables)", err)
		return nil
	}
	return file
}

// benchmarksFor resolves the benchmark table for t's latest period.
func benchmarksFor(cfg config.Config, t *model.Table) config.Benchmarks {
	return config.ResolveBenchmarks(cfg, resolveIndustry(cfg), t.LastDate(), loadBenchmarkFile())
}

// vaultClient returns nil when no vault is configured.
func vaultClient(cfg config.Config) *vault.Client {
	return vault.NewClient(cfg.Vault.BaseURL, cfg.Vault.UserID, config.GetVaultToken(cfg))
}

// summarizer returns nil when no OpenAI key is configured.
func summarizer(cfg config.Config) *pipeline.AISummarizer {
	return pipeline.NewAISummarizer(config.GetOpenAIKey(cfg), cfg.AI.Model, cfg.AI.BaseURL)
}

func openCache() (*store.Cache, error) {
	cache, err := store.Open(pipeline.CachePath())
	if err != nil {
		return nil, fmt.Errorf("opening local store: %w", err)
	}
	return cache, nil
}

// sourceLabel describes where a table came from.
func sourceLabel(t *model.Table) string {
	if t.Demo {
		return "demo data"
	}
	return t.Source
}
