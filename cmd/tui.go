package cmd

import (
	"fmt"

	"github.com/theirongolddev/echolon/internal/tui"
	"github.com/theirongolddev/echolon/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var flagSkipSetup bool

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().BoolVar(&flagSkipSetup, "skip-setup", false, "Do not show the first-run wizard")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()
	theme.SetActive(cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	app := tui.NewApp(tui.Options{
		Load:          buildLoadOptions(cfg),
		UseCache:      !flagNoCache,
		Config:        cfg,
		Industry:      resolveIndustry(cfg),
		BenchmarkFile: loadBenchmarkFile(),
		Vault:         vaultClient(cfg),
		Summarizer:    summarizer(cfg),
		SkipSetup:     flagSkipSetup,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
