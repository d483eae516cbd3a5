package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/theirongolddev/echolon/internal/config"
	"github.com/theirongolddev/echolon/internal/model"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Industry:     %s\n", config.NormalizeIndustry(cfg.General.Industry))
	fmt.Printf("    Demo seed:    %d\n", cfg.General.Seed)
	fmt.Printf("    Demo periods: %d\n", cfg.General.Periods)
	if cfg.General.DataDir != "" {
		fmt.Printf("    Data dir:     %s\n", cfg.General.DataDir)
	}
	fmt.Println()

	fmt.Println("  [Goals]")
	for _, g := range cfg.Goals.Targets() {
		fmt.Printf("    %-16s %s\n", g.Metric.Label()+":", formatGoal(g))
	}
	fmt.Printf("    %-16s $%.0f/day\n", "Revenue pace:", cfg.Scenario.DailyPace)
	fmt.Println()

	if len(cfg.Benchmarks.Overrides) > 0 {
		fmt.Println("  [Benchmark overrides]")
		names := make([]string, 0, len(cfg.Benchmarks.Overrides))
		for name := range cfg.Benchmarks.Overrides {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Printf("    Industries: %s\n", strings.Join(names, ", "))
		fmt.Println()
	}

	fmt.Println("  [Vault]")
	if cfg.Vault.BaseURL != "" {
		fmt.Printf("    URL:     %s\n", cfg.Vault.BaseURL)
	} else {
		fmt.Println("    URL:     not configured (notes stay local)")
	}
	fmt.Printf("    User ID: %s\n", cfg.Vault.UserID)
	if tok := config.GetVaultToken(cfg); tok != "" {
		fmt.Printf("    Token:   %s\n", maskAPIKey(tok))
	} else {
		fmt.Println("    Token:   not configured")
	}
	fmt.Println()

	fmt.Println("  [AI]")
	if key := config.GetOpenAIKey(cfg); key != "" {
		fmt.Printf("    API key: %s\n", maskAPIKey(key))
	} else {
		fmt.Println("    API key: not configured (rule-based summaries)")
	}
	fmt.Printf("    Model:   %s\n", cfg.AI.Model)
	if cfg.AI.BaseURL != "" {
		fmt.Printf("    Base URL: %s\n", cfg.AI.BaseURL)
	}
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address: %s\n", cfg.Server.Addr)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  Run `echolon setup` to reconfigure.")
	return nil
}

func formatGoal(g model.GoalTarget) string {
	switch {
	case g.Metric.IsRate():
		return fmt.Sprintf("%.1f%%", g.Target*100)
	case g.Metric == model.FieldRevenue:
		return fmt.Sprintf("$%.0f", g.Target)
	}
	return fmt.Sprintf("%.0f", g.Target)
}

func maskAPIKey(key string) string {
	if len(key) > 16 {
		return key[:8] + "..." + key[len(key)-4:]
	}
	if len(key) > 4 {
		return key[:4] + "..."
	}
	return "****"
}
