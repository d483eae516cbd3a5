package tui

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/theirongolddev/echolon/internal/config"
	"github.com/theirongolddev/echolon/internal/model"
	"github.com/theirongolddev/echolon/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// SetupValues holds the first-run answers. Goal fields are strings so the
// form can validate what the user typed.
type SetupValues struct {
	Industry    string
	RevenueGoal string
	OrdersGoal  string
	VaultURL    string
	Theme       string
}

// DefaultSetupValues seeds the form from an existing config.
func DefaultSetupValues(cfg config.Config) SetupValues {
	return SetupValues{
		Industry:    config.NormalizeIndustry(cfg.General.Industry),
		RevenueGoal: fmt.Sprintf("%.0f", cfg.Goals.Revenue),
		OrdersGoal:  fmt.Sprintf("%.0f", cfg.Goals.Orders),
		VaultURL:    cfg.Vault.BaseURL,
		Theme:       cfg.Appearance.Theme,
	}
}

func validateGoal(metric model.Field) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		_, err := parseGoalTarget(metric, s)
		return err
	}
}

func validateVaultURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("enter an http(s) URL or leave blank")
	}
	return nil
}

// NewSetupForm builds the first-run wizard. intro describes the loaded data.
func NewSetupForm(intro string, vals *SetupValues) *huh.Form {
	industries := make([]huh.Option[string], 0, len(config.Industries()))
	for _, name := range config.Industries() {
		industries = append(industries, huh.NewOption(name, name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to echolon").
				Description(intro+"\n\nA few questions and the dashboard is ready."),
			huh.NewSelect[string]().
				Title("Industry").
				Description("Benchmarks are compared against this industry.").
				Options(industries...).
				Value(&vals.Industry),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Monthly revenue goal").
				Placeholder("120000").
				Validate(validateGoal(model.FieldRevenue)).
				Value(&vals.RevenueGoal),
			huh.NewInput().
				Title("Monthly orders goal").
				Placeholder("50").
				Validate(validateGoal(model.FieldOrders)).
				Value(&vals.OrdersGoal),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Context vault URL").
				Description("Notes and goals are shared through the vault. Leave blank to keep them local.").
				Placeholder("https://vault.example.com").
				Validate(validateVaultURL).
				Value(&vals.VaultURL),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(huh.NewOptions(theme.Names()...)...).
				Value(&vals.Theme),
		),
	).WithTheme(huh.ThemeBase16()).WithShowHelp(true)
}

func newSetupForm(t *model.Table, vals *SetupValues) *huh.Form {
	intro := "Showing demo data."
	if t != nil && !t.Demo {
		intro = fmt.Sprintf("Loaded %d periods from %s.", t.Len(), t.Source)
	}
	return NewSetupForm(intro, vals)
}

// Apply folds the answers into cfg. Blank goal fields keep their value.
func (v SetupValues) Apply(cfg config.Config) config.Config {
	if v.Industry != "" {
		cfg.General.Industry = config.NormalizeIndustry(v.Industry)
	}
	if g, err := parseGoalTarget(model.FieldRevenue, v.RevenueGoal); err == nil {
		cfg.Goals.Revenue = g
	}
	if g, err := parseGoalTarget(model.FieldOrders, v.OrdersGoal); err == nil {
		cfg.Goals.Orders = g
	}
	cfg.Vault.BaseURL = strings.TrimSpace(v.VaultURL)
	if v.Theme != "" {
		cfg.Appearance.Theme = v.Theme
	}
	return cfg
}

// saveSetupConfig applies the wizard answers. The form writes through
// setupVals, which stays shared across App copies.
func (a *App) saveSetupConfig() error {
	a.cfg = a.setupVals.Apply(a.cfg)
	a.industry = a.cfg.General.Industry
	a.targets = a.cfg.Goals.Targets()
	theme.SetActive(a.cfg.Appearance.Theme)
	return config.Save(a.cfg)
}
