// Package tui provides the interactive Bubble Tea dashboard for cashcast.
package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cashcast/internal/cli"
	"github.com/theirongolddev/cashcast/internal/config"
	"github.com/theirongolddev/cashcast/internal/ledger"
	"github.com/theirongolddev/cashcast/internal/model"
	"github.com/theirongolddev/cashcast/internal/money"
	"github.com/theirongolddev/cashcast/internal/pipeline"
	"github.com/theirongolddev/cashcast/internal/store"
	"github.com/theirongolddev/cashcast/internal/tui/components"
	"github.com/theirongolddev/cashcast/internal/tui/theme"
)

// Options configures NewApp.
type Options struct {
	Config   config.Config
	Ledger   string       // ledger file; empty reads the store
	Store    *store.Store // may be nil
	Today    string       // YYYY-MM-DD override
	FirstRun bool         // show the setup form once data loads
	Clock    func() time.Time
}

// DataLoadedMsg is sent when a load finishes, successfully or not.
type DataLoadedMsg struct {
	Data     *dashboardData
	Err      error
	LoadTime time.Duration
}

// ProgressMsg reports which load stage is running.
type ProgressMsg struct {
	Stage   string
	Current int
	Total   int
}

// RefreshDataMsg is sent when a background refresh completes.
type RefreshDataMsg struct {
	Data     *dashboardData
	Err      error
	LoadTime time.Duration
}

const (
	tabForecast = iota
	tabCalendar
	tabPayoff
	tabCards
	tabSettings
)

// extraStep is how much +/- changes the payoff extra.
const extraStep money.Cents = 5000

// App is the root Bubble Tea model.
type App struct {
	opts Options
	cfg  config.Config

	// Data
	data     *dashboardData
	loadErr  error
	loaded   bool
	loadTime time.Duration

	refreshing  bool
	lastRefresh time.Time

	// Payoff what-if: the extra currently simulated and its comparison
	extra      money.Cents
	comparison model.StrategyComparison

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	// Per-tab state
	cal      calendarState
	pay      payoffState
	settings settingsState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals SetupValues
	needSetup bool
	setupErr  error

	// Loading: channel-based progress subscription
	spinner     spinner.Model
	stage       string
	progress    int
	progressMax int
	loadSub     chan tea.Msg // progress + completion messages from loader goroutine
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180

	// Scroll navigation
	scrollOverhead    = 10 // approximate header + status bar height for half-page calc
	minHalfPageScroll = 1  // minimum lines for half-page scroll
	minContentHeight  = 5  // minimum content area height
)

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		opts:      opts,
		cfg:       opts.Config,
		needSetup: opts.FirstRun,
		setupVals: SetupValuesFrom(opts.Config),
		spinner:   sp,
		loadSub:   make(chan tea.Msg, 1),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.loadRequest(), a.loadSub),
		a.spinner.Tick,
	)
}

// applyData swaps in freshly loaded data. The payoff what-if is reset to
// the configured extra.
func (a *App) applyData(d *dashboardData, err error, took time.Duration) {
	a.loadTime = took
	a.lastRefresh = time.Now()
	a.loadErr = err
	if err != nil {
		a.data = nil
		return
	}
	a.data = d
	a.extra = d.settings.Payoff.ExtraPayment
	a.comparison = d.comparison
	a.clampCalendar()
}

// setExtra re-simulates the payoff comparison with a new extra.
func (a *App) setExtra(extra money.Cents) {
	if a.data == nil {
		return
	}
	if extra < 0 {
		extra = 0
	}
	a.extra = extra
	a.comparison = a.data.withExtra(extra)
	a.pay.scroll = 0
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Forward to setup form if active
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.setupForm != nil {
			return a, nil
		}
		return a.updateMouse(msg)

	case tea.KeyMsg:
		key := msg.String()

		// Global: quit
		if key == "ctrl+c" {
			return a, tea.Quit
		}

		if !a.loaded {
			return a, nil
		}

		// First-run setup form intercepts all keys
		if a.setupForm != nil {
			return a.updateSetupForm(msg)
		}

		// Settings tab has its own keybindings (text input)
		if a.activeTab == tabSettings && a.settings.editing {
			return a.updateSettingsInput(msg)
		}

		// Help toggle
		if key == "?" {
			a.showHelp = !a.showHelp
			return a, nil
		}

		// Dismiss help
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}

		if handled, next, cmd := a.updateTabKeys(key); handled {
			return next, cmd
		}

		switch key {
		case "q":
			return a, tea.Quit
		case "r":
			if !a.refreshing {
				a.refreshing = true
				return a, refreshDataCmd(a.loadRequest())
			}
			return a, nil
		case "left", "h", "shift+tab":
			a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
			return a, nil
		case "right", "l", "tab":
			a.activeTab = (a.activeTab + 1) % len(components.Tabs)
			return a, nil
		}

		if len(msg.Runes) == 1 {
			if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
				a.activeTab = idx
			}
		}
		return a, nil

	case ProgressMsg:
		a.stage = msg.Stage
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case DataLoadedMsg:
		a.loaded = true
		a.applyData(msg.Data, msg.Err, msg.LoadTime)

		// Activate first-run setup after data loads
		if a.needSetup {
			a.setupForm = NewSetupForm(&a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case RefreshDataMsg:
		a.refreshing = false
		a.applyData(msg.Data, msg.Err, msg.LoadTime)
		return a, nil

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	return a, nil
}

// updateTabKeys routes keys owned by the active tab.
func (a App) updateTabKeys(key string) (bool, tea.Model, tea.Cmd) {
	switch a.activeTab {
	case tabCalendar:
		return a.updateCalendarKeys(key)
	case tabPayoff:
		return a.updatePayoffKeys(key)
	case tabSettings:
		switch key {
		case "j", "down":
			if a.settings.cursor < settingsFieldCount-1 {
				a.settings.cursor++
			}
			return true, a, nil
		case "k", "up":
			if a.settings.cursor > 0 {
				a.settings.cursor--
			}
			return true, a, nil
		case "enter":
			next, cmd := a.settingsStartEdit()
			return true, next, cmd
		}
	}
	return false, a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		switch a.activeTab {
		case tabCalendar:
			a.moveCalendar(-1)
		case tabPayoff:
			a.scrollPayoff(-1)
		}
		return a, nil

	case tea.MouseButtonWheelDown:
		switch a.activeTab {
		case tabCalendar:
			a.moveCalendar(1)
		case tabPayoff:
			a.scrollPayoff(1)
		}
		return a, nil

	case tea.MouseButtonLeft:
		// Tab bar is the first line
		if msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
		return a, nil
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
		a.setupForm = nil
		a.needSetup = false
		a.setupErr = a.finishSetup()
		a.refreshing = true
		return a, refreshDataCmd(a.loadRequest())
	case huh.StateAborted:
		a.setupForm = nil
		a.needSetup = false
		return a, nil
	}

	return a, cmd
}

// finishSetup applies the form answers, writes the example ledger when
// asked, and saves the config.
func (a *App) finishSetup() error {
	vals := a.setupVals
	if vals.WriteSample && strings.TrimSpace(vals.Ledger) == "" {
		vals.Ledger = filepath.Join(config.DataDir(), "ledger.toml")
	}
	a.cfg = vals.Apply(a.cfg)
	theme.SetActive(a.cfg.Appearance.Theme)
	if a.opts.Ledger == "" {
		a.opts.Ledger = a.cfg.General.Ledger
	}

	var errs []error
	if vals.WriteSample {
		if _, err := ledger.WriteSample(a.cfg.General.Ledger); err != nil {
			errs = append(errs, err)
		}
	}
	if err := config.Save(a.cfg); err != nil {
		errs = append(errs, fmt.Errorf("saving config: %w", err))
	}
	return errors.Join(errs...)
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

func (a App) halfPage() int {
	hp := (a.height - scrollOverhead) / 2
	if hp < minHalfPageScroll {
		hp = minHalfPageScroll
	}
	return hp
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

	// First-run setup form
	if a.setupForm != nil {
		return a.setupForm.View()
	}

	if a.showHelp {
		return a.viewHelp()
	}

	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}

	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  cashcast needs at least %d columns.\n",
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

	logoStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Surface).
		Bold(true)

	subtitleStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)

	spinnerStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ cashcast"))
	b.WriteString(subtitleStyle.Render(" · Cash Flow Forecast"))
	b.WriteString("\n\n")

	stage := a.stage
	if stage == "" {
		stage = "Starting"
	}
	b.WriteString(spinnerStyle.Render(a.spinner.View()))
	b.WriteString(subtitleStyle.Render(" " + stage + "..."))

	if a.progressMax > 0 {
		barW := 40
		if barW > w-30 {
			barW = w - 30
		}
		if barW < 20 {
			barW = 20
		}
		b.WriteString("\n\n")
		b.WriteString(components.ProgressBar(float64(a.progress)/float64(a.progressMax), barW))
	}

	card := cardStyle.Render(b.String())

	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, card,
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

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"f c p d x", "Jump to tab"},
			{"← →  tab", "Previous / Next tab"},
			{"j k", "Move through days / schedule"},
			{"g G", "First / last"},
			{"^d ^u", "Half-page scroll"},
		}},
		{"Calendar", []struct{ key, desc string }{
			{"a", "Show all days / only days with activity"},
		}},
		{"Payoff", []struct{ key, desc string }{
			{"s", "Switch snowball / avalanche schedule"},
			{"+ -", fmt.Sprintf("Change extra payment by %s", cli.FormatMoney(extraStep))},
			{"0", "Reset extra to the configured amount"},
		}},
		{"Actions", []struct{ key, desc string }{
			{"Enter", "Edit setting"},
			{"Esc", "Cancel"},
			{"r", "Reload ledger"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, sec := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	// 1. Header: tab bar + context row
	pillStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pillAccent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	ctx := pillStyle.Render(" ")
	if a.data != nil {
		sum := a.data.forecast.Summary
		ctx += pillAccent.Render(cli.FormatDate(a.data.today)) +
			pillStyle.Render(" │ ") + pillAccent.Render(fmt.Sprintf("%dd", sum.HorizonDays)) +
			pillStyle.Render(" │ buffer ") + pillAccent.Render(cli.FormatMoney(sum.SafetyBuffer))
	} else {
		ctx += pillStyle.Render("no data")
	}
	ctx += pillStyle.Render(" ")

	header := components.RenderTabBar(a.activeTab, w) + "\n" +
		lipgloss.NewStyle().Background(t.Surface).Width(w).Render(ctx)

	// 2. Status bar
	source := ""
	if a.data != nil {
		source = a.data.source
	}
	dataAge := fmt.Sprintf("loaded in %s", a.loadTime.Round(time.Millisecond))
	statusBar := components.RenderStatusBar(w, source, dataAge, a.refreshing)

	// 3. Content zone height
	contentH := h - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	// 4. Tab content
	var content string
	switch {
	case a.activeTab == tabSettings:
		content = a.renderSettingsTab(cw)
	case a.data == nil:
		content = a.renderLoadError(cw)
	case a.activeTab == tabForecast:
		content = a.renderForecastTab(cw)
	case a.activeTab == tabCalendar:
		content = a.renderCalendarTab(cw, contentH)
	case a.activeTab == tabPayoff:
		content = a.renderPayoffTab(cw, contentH)
	case a.activeTab == tabCards:
		content = a.renderCardsTab(cw)
	}

	// 5. Truncate + pad to exactly contentH lines
	content = padHeight(truncateHeight(content, contentH), contentH)

	// 6. Fill each line to full width with background
	content = fillLinesWithBackground(content, cw, t.Background)

	// 7. Center when the terminal is wider than the content
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)

	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) renderLoadError(cw int) string {
	t := theme.Active
	errStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)
	hintStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	if a.loadErr != nil {
		b.WriteString(errStyle.Render(a.loadErr.Error()))
		b.WriteString("\n\n")
	}
	if errors.Is(a.loadErr, pipeline.ErrNoLedger) {
		b.WriteString(hintStyle.Render("Set a ledger file under [x] Settings, or run `cashcast setup --sample`."))
	} else {
		b.WriteString(hintStyle.Render("Fix the ledger, then press [r] to reload."))
	}
	if a.setupErr != nil {
		b.WriteString("\n")
		b.WriteString(errStyle.Render("Setup: " + a.setupErr.Error()))
	}
	return components.ContentCard("Could not build forecast", b.String(), cw)
}

// ─── Helpers ────────────────────────────────────────────────────

// loadDataCmd starts the load in a background goroutine. It streams
// ProgressMsg updates and a final DataLoadedMsg through sub.
func loadDataCmd(req loadRequest, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()

			// Non-blocking send so the loader never stalls on the UI.
			progressFn := func(stage string, current int) {
				select {
				case sub <- ProgressMsg{Stage: stage, Current: current, Total: loadStages}:
				default:
				}
			}

			d, err := loadDashboard(context.Background(), req, progressFn)
			sub <- DataLoadedMsg{Data: d, Err: err, LoadTime: time.Since(start)}
		}()

		// Block until the first message (either ProgressMsg or DataLoadedMsg)
		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

// refreshDataCmd reloads in the background without progress UI.
func refreshDataCmd(req loadRequest) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		d, err := loadDashboard(context.Background(), req, nil)
		return RefreshDataMsg{Data: d, Err: err, LoadTime: time.Since(start)}
	}
}

// downsampleMin buckets values into at most n points, keeping each
// bucket's minimum so dips stay visible.
func downsampleMin(values []float64, n int) []float64 {
	if n <= 0 || len(values) <= n {
		return values
	}
	out := make([]float64, n)
	for i := range out {
		lo := i * len(values) / n
		hi := (i + 1) * len(values) / n
		m := values[lo]
		for _, v := range values[lo+1 : hi] {
			if v < m {
				m = v
			}
		}
		out[i] = m
	}
	return out
}

func dollars(c money.Cents) float64 {
	return float64(c) / 100
}

func formatDays(d int) string {
	if d == 365 {
		return "1 year"
	}
	return fmt.Sprintf("%d days", d)
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
		placed := lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
		result.WriteString(placed)
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)

		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW

		// Separator is one column between tabs.
		if i < len(components.Tabs)-1 {
			pos++
		}
	}
	return -1
}
