package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/echolon/internal/cli"
	"github.com/theirongolddev/echolon/internal/config"
	"github.com/theirongolddev/echolon/internal/model"
	"github.com/theirongolddev/echolon/internal/source"
	"github.com/theirongolddev/echolon/internal/tui/components"
	"github.com/theirongolddev/echolon/internal/tui/theme"
	"github.com/theirongolddev/echolon/internal/vault"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// goalsState tracks the goals tab cursor and inline target editor.
type goalsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	err     error
}

type goalsSavedMsg struct {
	text string
}

var errGoalNotPositive = errors.New("target must be greater than zero")

// parseGoalTarget reads a target typed by the user. Rate metrics accept
// "10%", "10" or "0.10".
func parseGoalTarget(metric model.Field, raw string) (float64, error) {
	v, pct, err := source.ParseNumber(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("parsing target: %w", err)
	}
	if metric.IsRate() {
		v = source.NormalizeRate(v, pct)
	}
	if v <= 0 {
		return 0, errGoalNotPositive
	}
	return v, nil
}

func (a App) goalsStartEdit() (tea.Model, tea.Cmd) {
	if a.goalsState.cursor >= len(a.targets) {
		return a, nil
	}
	g := a.targets[a.goalsState.cursor]

	ti := textinput.New()
	ti.CharLimit = 32
	ti.Width = 20
	ti.Placeholder = cli.FormatMetric(g.Metric, g.Target)
	if g.Metric.IsRate() {
		ti.SetValue(fmt.Sprintf("%.1f%%", g.Target*100))
	} else {
		ti.SetValue(fmt.Sprintf("%.0f", g.Target))
	}
	cmd := ti.Focus()

	a.goalsState.input = ti
	a.goalsState.editing = true
	a.goalsState.err = nil
	return a, cmd
}

func (a App) updateGoalsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.goalsState.editing = false
		a.goalsState.err = nil
		return a, nil
	case "enter":
		idx := a.goalsState.cursor
		v, err := parseGoalTarget(a.targets[idx].Metric, a.goalsState.input.Value())
		if err != nil {
			a.goalsState.err = err
			return a, nil
		}
		targets := make([]model.GoalTarget, len(a.targets))
		copy(targets, a.targets)
		targets[idx].Target = v
		a.targets = targets
		a.cfg.Goals = config.GoalsFromTargets(targets)
		a.goalsState.editing = false
		a.goalsState.err = nil
		a.recomputeGoals()
		return a, saveGoalsCmd(a.cfg, targets, a.opts.Vault)
	}

	var cmd tea.Cmd
	a.goalsState.input, cmd = a.goalsState.input.Update(msg)
	return a, cmd
}

// saveGoalsCmd persists targets to the config file, the local store and,
// when configured, the vault.
func saveGoalsCmd(cfg config.Config, targets []model.GoalTarget, v *vault.Client) tea.Cmd {
	return func() tea.Msg {
		var failed []string
		if err := config.Save(cfg); err != nil {
			failed = append(failed, "config")
		}
		if cache, err := storeOpen(); err == nil {
			if err := cache.SaveGoals(targets); err != nil {
				failed = append(failed, "store")
			}
			_ = cache.Close()
		}
		where := "locally"
		if v != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := v.PutGoals(ctx, targets); err != nil {
				failed = append(failed, "vault")
			} else {
				where = "to vault"
			}
		}
		if len(failed) > 0 {
			return goalsSavedMsg{text: "goals not saved to " + strings.Join(failed, ", ")}
		}
		return goalsSavedMsg{text: "goals saved " + where}
	}
}

func (a App) renderGoalsTab(cw int) string {
	t := theme.Active
	var b strings.Builder

	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	errStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	innerW := components.CardInnerWidth(cw)
	const labelW = 18
	barW := max(min(innerW-labelW-40, 50), 10)

	var body strings.Builder
	if len(a.goals) == 0 {
		body.WriteString(dimStyle.Render("No goals configured. Set targets under [goals] in the config."))
	}
	for i, g := range a.goals {
		marker := spaceStyle.Render("  ")
		if i == a.goalsState.cursor {
			marker = selStyle.Render("▸ ")
		}
		body.WriteString(marker)

		if !g.Available {
			body.WriteString(dimStyle.Render(fmt.Sprintf("%-*s no %s data · target %s",
				labelW, g.Metric.Label(), strings.ToLower(g.Metric.Label()), cli.FormatMetric(g.Metric, g.Target))))
		} else {
			body.WriteString(components.GoalBar(g.Metric.Label(), g.Percent/100, goalCaption(g), labelW, barW))
		}

		if a.goalsState.editing && i == a.goalsState.cursor {
			body.WriteString("\n    ")
			body.WriteString(a.goalsState.input.View())
			if a.goalsState.err != nil {
				body.WriteString(errStyle.Render("  " + a.goalsState.err.Error()))
			}
		}
		body.WriteString("\n\n")
	}
	body.WriteString(dimStyle.Render("j/k select · enter edit target · esc cancel"))

	b.WriteString(components.ContentCard("Goal Tracking", body.String(), cw))
	b.WriteString("\n")

	if len(a.suggestions) > 0 {
		textStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
		var sb strings.Builder
		for i, s := range a.suggestions {
			sb.WriteString(textStyle.Render("• " + truncStr(s, innerW-2)))
			if i < len(a.suggestions)-1 {
				sb.WriteString("\n")
			}
		}
		b.WriteString(components.ContentCard("Recovery Suggestions", sb.String(), cw))
	}
	return b.String()
}

func goalCaption(g model.GoalProgress) string {
	caption := fmt.Sprintf("%s of %s", cli.FormatMetric(g.Metric, g.Achieved), cli.FormatMetric(g.Metric, g.Target))
	switch {
	case g.Met:
		return caption + " · met"
	case !g.PredictedDate.IsZero():
		return fmt.Sprintf("%s · %s, by %s", caption, cli.FormatDays(g.DaysToGoal), cli.FormatDate(g.PredictedDate))
	}
	return caption + " · no upward trend"
}
