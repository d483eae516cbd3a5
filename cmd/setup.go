package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/echolon/internal/config"
	"github.com/theirongolddev/echolon/internal/source"
	"github.com/theirongolddev/echolon/internal/tui"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()

	intro := "No data directory configured; the dashboard starts with demo data."
	if dir := cfg.General.DataDir; dir != "" {
		files, _ := source.ScanDir(dir)
		intro = fmt.Sprintf("Found %d CSV files in %s.", len(files), dir)
	}

	vals := tui.DefaultSetupValues(cfg)
	if err := tui.NewSetupForm(intro, &vals).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled; nothing saved.")
			return nil
		}
		return fmt.Errorf("setup: %w", err)
	}

	cfg = vals.Apply(cfg)
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `echolon setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
