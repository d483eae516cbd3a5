// Package tui provides the interactive Bubble Tea dashboard for echolon.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/echolon/internal/cli"
	"github.com/theirongolddev/echolon/internal/config"
	"github.com/theirongolddev/echolon/internal/model"
	"github.com/theirongolddev/echolon/internal/pipeline"
	"github.com/theirongolddev/echolon/internal/store"
	"github.com/theirongolddev/echolon/internal/tui/components"
	"github.com/theirongolddev/echolon/internal/tui/theme"
	"github.com/theirongolddev/echolon/internal/vault"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// DataLoadedMsg is sent when the data pipeline finishes.
type DataLoadedMsg struct {
	Result   *pipeline.LoadResult
	LoadTime time.Duration
}

// ProgressMsg reports file parsing progress.
type ProgressMsg struct {
	Current int
	Total   int
}

// RefreshDataMsg is sent when a background data refresh completes.
type RefreshDataMsg struct {
	Result   *pipeline.LoadResult
	LoadTime time.Duration
}

// SummaryMsg carries a live executive summary, or the error that prevented one.
type SummaryMsg struct {
	Text string
	Err  error
}

// Options configures the dashboard.
type Options struct {
	Load          pipeline.Options // Cache is ignored; see UseCache
	UseCache      bool
	Config        config.Config
	Industry      string
	BenchmarkFile map[string]config.Benchmarks
	Vault         *vault.Client
	Summarizer    *pipeline.AISummarizer
	SkipSetup     bool
}

// App is the root Bubble Tea model.
type App struct {
	opts Options
	cfg  config.Config

	// Data
	table    *model.Table
	warnings []string
	loaded   bool
	loadTime time.Duration

	lastRefresh time.Time
	refreshing  bool

	// Derived from table
	stats       model.SummaryStats
	halves      model.PeriodComparison
	monthly     []model.MonthlyStats
	bench       config.Benchmarks
	comps       []model.BenchmarkComparison
	periods     model.PeriodBenchmark
	insights    []model.Insight
	executive   string
	aiSummary   string
	aiPending   bool
	goals       []model.GoalProgress
	suggestions []string

	industry string
	targets  []model.GoalTarget

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	message   string

	// Per-tab state
	dataState     dataState
	scenarioState scenarioState
	goalsState    goalsState
	notesState    notesState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *SetupValues
	needSetup bool

	// Loading, channel-based progress subscription
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180

	scrollOverhead   = 10
	minContentHeight = 5
)

const (
	tabOverview = iota
	tabData
	tabBenchmarks
	tabScenario
	tabGoals
	tabNotes
)

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	industry := config.NormalizeIndustry(opts.Industry)
	if opts.Industry == "" {
		industry = config.NormalizeIndustry(opts.Config.General.Industry)
	}

	return App{
		opts:       opts,
		cfg:        opts.Config,
		industry:   industry,
		targets:    opts.Config.Goals.Targets(),
		needSetup:  !opts.SkipSetup && !config.Exists(),
		spinner:    sp,
		loadSub:    make(chan tea.Msg, 1),
		notesState: newNotesState(),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnableMouseCellMotion,
		loadDataCmd(a.opts, a.loadSub),
		a.spinner.Tick,
		tickCmd(),
	}
	if a.opts.Vault != nil {
		cmds = append(cmds, fetchVaultGoalsCmd(a.opts.Vault), fetchNotesCmd(a.opts.Vault))
	} else {
		cmds = append(cmds, fetchNotesCmd(nil))
	}
	return tea.Batch(cmds...)
}

// recompute derives every displayed figure from the current table.
func (a *App) recompute() {
	t := a.table
	a.stats = pipeline.Summarize(t)
	a.halves = pipeline.CompareHalves(t)
	a.monthly = pipeline.AggregateMonthly(t)
	a.bench = config.ResolveBenchmarks(a.cfg, a.industry, t.LastDate(), a.opts.BenchmarkFile)
	a.comps = pipeline.Benchmark(a.stats, a.bench)
	a.periods = pipeline.BenchmarkPeriods(t)
	a.insights = pipeline.Insights(a.stats, a.comps, a.periods)
	a.executive = pipeline.ExecutiveSummary(a.stats, a.comps, a.periods)
	a.recomputeGoals()

	if a.dataState.offset > max(t.Len()-1, 0) {
		a.dataState.offset = 0
	}
}

func (a *App) recomputeGoals() {
	a.goals = pipeline.Goals(a.table, a.targets, a.cfg.Scenario.DailyPace)
	a.suggestions = pipeline.RecoverySuggestions(a.goals, a.stats)
}

func (a *App) applyLoad(res *pipeline.LoadResult, took time.Duration) {
	if res == nil || res.Table == nil {
		return
	}
	a.table = res.Table
	a.warnings = res.Warnings
	a.loadTime = took
	a.lastRefresh = time.Now()
	a.aiSummary = ""
	a.recompute()
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		a.notesState.input.SetWidth(max(components.CardInnerWidth(a.contentWidth())-2, 20))
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || (a.needSetup && a.setupForm != nil) {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if a.activeTab == tabData && a.dataState.offset > 0 {
				a.dataState.offset--
			}
		case tea.MouseButtonWheelDown:
			if a.activeTab == tabData && a.dataState.offset < a.table.Len()-1 {
				a.dataState.offset++
			}
		case tea.MouseButtonLeft:
			if msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.activeTab = tab
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case DataLoadedMsg:
		a.loaded = true
		a.applyLoad(msg.Result, msg.LoadTime)

		summary := a.summaryCmd()
		a.aiPending = summary != nil
		cmds := []tea.Cmd{summary}
		if a.needSetup {
			vals := DefaultSetupValues(a.cfg)
			a.setupVals = &vals
			a.setupForm = newSetupForm(a.table, a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			cmds = append(cmds, a.setupForm.Init())
		}
		return a, tea.Batch(cmds...)

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case RefreshDataMsg:
		a.refreshing = false
		a.applyLoad(msg.Result, msg.LoadTime)
		summary := a.summaryCmd()
		a.aiPending = summary != nil
		return a, summary

	case SummaryMsg:
		a.aiPending = false
		if msg.Err == nil {
			a.aiSummary = msg.Text
		}
		return a, nil

	case vaultGoalsMsg:
		if msg.err == nil && len(msg.targets) > 0 {
			a.targets = msg.targets
			if a.loaded {
				a.recomputeGoals()
			}
		}
		return a, nil

	case notesLoadedMsg:
		a.notesState.notes = msg.notes
		a.notesState.remote = msg.remote
		a.notesState.cursor = min(a.notesState.cursor, max(len(msg.notes)-1, 0))
		a.notesState.warning = ""
		if msg.err != nil {
			a.notesState.warning = msg.err.Error()
		}
		return a, nil

	case noteSavedMsg:
		a.notesState.saving = false
		if msg.err != nil {
			a.message = "note save failed: " + msg.err.Error()
			return a, nil
		}
		a.notesState.input.Reset()
		a.notesState.urgent = false
		a.notesState.notes = append([]model.Note{msg.note}, a.notesState.notes...)
		a.message = "note saved " + msg.where
		return a, nil

	case noteStatusMsg:
		if msg.err != nil {
			a.message = "note update failed: " + msg.err.Error()
			return a, nil
		}
		for i := range a.notesState.notes {
			if a.notesState.notes[i].ID == msg.id {
				a.notesState.notes[i].Status = msg.status
			}
		}
		a.message = "note marked " + msg.status
		return a, nil

	case goalsSavedMsg:
		a.message = msg.text
		return a, nil

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		return a, tickCmd()
	}

	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.activeTab == tabNotes && a.notesState.input.Focused() {
		var cmd tea.Cmd
		a.notesState.input, cmd = a.notesState.input.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}
	if !a.loaded {
		return a, nil
	}

	// First-run setup wizard intercepts all keys
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	// Text entry modes own the keyboard until dismissed
	if a.activeTab == tabGoals && a.goalsState.editing {
		return a.updateGoalsInput(msg)
	}
	if a.activeTab == tabNotes && a.notesState.input.Focused() {
		return a.updateNotesInput(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	a.message = ""

	switch a.activeTab {
	case tabData:
		if a.updateDataKey(key) {
			return a, nil
		}
	case tabScenario:
		if a.updateScenarioKey(key) {
			return a, nil
		}
	case tabGoals:
		switch key {
		case "j", "down":
			a.goalsState.cursor = min(a.goalsState.cursor+1, len(a.targets)-1)
			return a, nil
		case "k", "up":
			a.goalsState.cursor = max(a.goalsState.cursor-1, 0)
			return a, nil
		case "enter":
			return a.goalsStartEdit()
		}
	case tabNotes:
		switch key {
		case "enter", "i":
			cmd := a.notesState.input.Focus()
			return a, cmd
		case "ctrl+r":
			return a, fetchNotesCmd(a.opts.Vault)
		case "j", "down":
			a.notesState.cursor = min(a.notesState.cursor+1, max(len(a.notesState.notes)-1, 0))
			return a, nil
		case "k", "up":
			a.notesState.cursor = max(a.notesState.cursor-1, 0)
			return a, nil
		case "x", " ":
			return a.toggleNoteDone()
		}
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		if !a.refreshing {
			a.refreshing = true
			return a, refreshDataCmd(a.opts)
		}
		return a, nil
	case "A":
		if cmd := a.summaryCmd(); cmd != nil {
			a.aiPending = true
			return a, cmd
		}
		a.message = "no OpenAI key configured"
		return a, nil
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	}

	if len(msg.Runes) == 1 {
		if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		if err := a.saveSetupConfig(); err != nil {
			a.message = "config not saved: " + err.Error()
		} else {
			a.message = "saved " + config.ConfigPath()
		}
		a.recompute()
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

// summaryCmd requests a live executive summary when a summarizer is set.
func (a App) summaryCmd() tea.Cmd {
	if a.opts.Summarizer == nil || a.table.Len() == 0 {
		return nil
	}
	s := a.opts.Summarizer
	stats, insights := a.stats, a.insights
	return func() tea.Msg {
		text, err := s.Summarize(context.Background(), stats, insights)
		return SummaryMsg{Text: text, Err: err}
	}
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  echolon needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active
	w := a.width
	h := a.height

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spinnerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	countStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ echolon"))
	b.WriteString(subtitleStyle.Render(" · Business Metrics"))
	b.WriteString("\n\n")

	if a.progressMax > 0 {
		barW := min(max(w-30, 20), 40)
		pct := float64(a.progress) / float64(a.progressMax)
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Parsing files\n\n"))
		b.WriteString(components.ProgressBar(pct, barW))
		b.WriteString("\n")
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progress))))
		b.WriteString(subtitleStyle.Render(" / "))
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progressMax))))
	} else {
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Loading data..."))
	}

	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	type binding struct{ key, desc string }
	sections := []struct {
		title    string
		bindings []binding
	}{
		{"Navigation", []binding{
			{"o d b s g n", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"j k", "Scroll rows / select"},
		}},
		{"Scenario", []binding{
			{"j k", "Select slider"},
			{"h l", "Adjust slider"},
			{"0", "Reset scenario"},
		}},
		{"Actions", []binding{
			{"Enter", "Edit goal / write note"},
			{"^s", "Save note"},
			{"x", "Check off note"},
			{"Esc", "Cancel"},
			{"A", "Ask for AI summary"},
			{"r", "Refresh data"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	for _, sec := range sections {
		b.WriteString("\n\n")
		b.WriteString(sectionStyle.Render(sec.title))
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "\n  %s  %s",
				keyStyle.Render(fmt.Sprintf("%-12s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w)

	statusBar := components.RenderStatusBar(w, components.StatusInfo{
		Source:     a.table.Source,
		Demo:       a.table.Demo,
		Industry:   a.industry,
		Warnings:   len(a.warnings),
		LoadAge:    fmt.Sprintf("%.1fs", a.loadTime.Seconds()),
		Refreshing: a.refreshing,
		Message:    a.message,
	})

	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch a.activeTab {
	case tabOverview:
		content = a.renderOverviewTab(cw)
	case tabData:
		content = a.renderDataTab(cw, contentH)
	case tabBenchmarks:
		content = a.renderBenchmarksTab(cw)
	case tabScenario:
		content = a.renderScenarioTab(cw)
	case tabGoals:
		content = a.renderGoalsTab(cw)
	case tabNotes:
		content = a.renderNotesTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Commands ───────────────────────────────────────────────────

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// load runs the pipeline once, opening the cache when enabled.
func load(opts Options, progressFn pipeline.ProgressFunc) *pipeline.LoadResult {
	lo := opts.Load
	lo.Progress = progressFn
	lo.Cache = nil
	if opts.UseCache && len(lo.Paths) > 0 {
		if cache, err := storeOpen(); err == nil {
			defer cache.Close()
			lo.Cache = cache
		}
	}
	return pipeline.LoadOrDemo(context.Background(), lo)
}

// loadDataCmd starts the data loading pipeline in a background goroutine.
// It streams ProgressMsg updates and a final DataLoadedMsg through sub.
func loadDataCmd(opts Options, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()

			// Non-blocking send so workers aren't stalled; the next update catches up.
			progressFn := func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}

			res := load(opts, progressFn)
			sub <- DataLoadedMsg{Result: res, LoadTime: time.Since(start)}
		}()

		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

// refreshDataCmd reloads data in the background without progress UI.
func refreshDataCmd(opts Options) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		return RefreshDataMsg{Result: load(opts, nil), LoadTime: time.Since(start)}
	}
}

func storeOpen() (*store.Cache, error) {
	return store.Open(pipeline.CachePath())
}

type vaultGoalsMsg struct {
	targets []model.GoalTarget
	err     error
}

func fetchVaultGoalsCmd(c *vault.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		targets, err := c.Goals(ctx)
		return vaultGoalsMsg{targets: targets, err: err}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

// chartDateLabels builds compact X-axis labels for a chronological series.
// First label and month boundaries show the month; others the day number.
func chartDateLabels(dates []time.Time) []string {
	labels := make([]string, len(dates))
	prevMonth := time.Month(0)
	for i, dt := range dates {
		switch {
		case dt.IsZero():
			labels[i] = fmt.Sprintf("#%d", i+1)
		case i == 0 || dt.Month() != prevMonth:
			labels[i] = dt.Format("Jan")
		default:
			labels[i] = fmt.Sprintf("%d", dt.Day())
		}
		prevMonth = dt.Month()
	}
	return labels
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1 // separator
	}
	return -1
}
