package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cashcast/internal/cli"
	"github.com/theirongolddev/cashcast/internal/config"
	"github.com/theirongolddev/cashcast/internal/forecast"
	"github.com/theirongolddev/cashcast/internal/money"
	"github.com/theirongolddev/cashcast/internal/payoff"
	"github.com/theirongolddev/cashcast/internal/tui/components"
	"github.com/theirongolddev/cashcast/internal/tui/theme"
)

const (
	settingsFieldLedger = iota
	settingsFieldHorizon
	settingsFieldBuffer
	settingsFieldWindow
	settingsFieldStrategy
	settingsFieldExtra
	settingsFieldTheme
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool  // flash "saved" message
	saveErr error // non-nil if last save failed
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 50
	return ti
}

// settingValue returns the current value of a field as text.
func (a App) settingValue(field int) string {
	cfg := a.cfg
	switch field {
	case settingsFieldLedger:
		return cfg.General.Ledger
	case settingsFieldHorizon:
		return strconv.Itoa(cfg.Forecast.HorizonDays)
	case settingsFieldBuffer:
		return cfg.Forecast.SafetyBuffer
	case settingsFieldWindow:
		return strconv.Itoa(cfg.Forecast.SafeWindowDays)
	case settingsFieldStrategy:
		return cfg.Payoff.Strategy
	case settingsFieldExtra:
		return cfg.Payoff.ExtraMonthly
	case settingsFieldTheme:
		return cfg.Appearance.Theme
	}
	return ""
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	a.settings.editing = true
	a.settings.saved = false
	a.settings.saveErr = nil

	ti := newSettingsInput()
	switch a.settings.cursor {
	case settingsFieldLedger:
		ti.Placeholder = "path/to/ledger.toml (empty reads the store)"
	case settingsFieldHorizon:
		ti.Placeholder = fmt.Sprintf("days, 1 to %d", a.cfg.Forecast.MaxHorizonDays)
	case settingsFieldBuffer, settingsFieldExtra:
		ti.Placeholder = "amount, e.g. 500.00"
	case settingsFieldWindow:
		ti.Placeholder = "days"
	case settingsFieldStrategy:
		ti.Placeholder = "avalanche or snowball"
	case settingsFieldTheme:
		ti.Placeholder = strings.Join(theme.Names(), ", ")
	}
	ti.SetValue(a.settingValue(a.settings.cursor))

	ti.Focus()
	a.settings.input = ti
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settings.editing = false
		cmd := a.settingsSave()
		a.settings.saved = a.settings.saveErr == nil
		return a, cmd
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// applySetting validates val and stores it on cfg.
func applySetting(cfg config.Config, field int, val string) (config.Config, error) {
	switch field {
	case settingsFieldLedger:
		cfg.General.Ledger = val
	case settingsFieldHorizon:
		d, err := strconv.Atoi(val)
		if err != nil || d < 1 {
			return cfg, errors.New("horizon must be a positive number of days")
		}
		limit := cfg.Forecast.MaxHorizonDays
		if limit <= 0 || limit > forecast.HardMaxHorizonDays {
			limit = forecast.HardMaxHorizonDays
		}
		if d > limit {
			return cfg, fmt.Errorf("horizon cannot exceed %d days", limit)
		}
		cfg.Forecast.HorizonDays = d
	case settingsFieldBuffer, settingsFieldExtra:
		c, err := money.Parse(val)
		if err != nil {
			return cfg, err
		}
		if c < 0 {
			return cfg, errors.New("amount cannot be negative")
		}
		if field == settingsFieldBuffer {
			cfg.Forecast.SafetyBuffer = c.String()
		} else {
			cfg.Payoff.ExtraMonthly = c.String()
		}
	case settingsFieldWindow:
		d, err := strconv.Atoi(val)
		if err != nil || d < 1 {
			return cfg, errors.New("window must be a positive number of days")
		}
		cfg.Forecast.SafeWindowDays = d
	case settingsFieldStrategy:
		s, err := payoff.ParseStrategy(val)
		if err != nil {
			return cfg, err
		}
		cfg.Payoff.Strategy = string(s)
	case settingsFieldTheme:
		if !theme.Valid(val) {
			return cfg, fmt.Errorf("unknown theme %q", val)
		}
		cfg.Appearance.Theme = val
	}
	return cfg, nil
}

// settingsSave applies the edited field, persists the config and reloads.
func (a *App) settingsSave() tea.Cmd {
	field := a.settings.cursor
	cfg, err := applySetting(a.cfg, field, strings.TrimSpace(a.settings.input.Value()))
	if err != nil {
		a.settings.saveErr = err
		return nil
	}
	a.cfg = cfg

	switch field {
	case settingsFieldTheme:
		theme.SetActive(cfg.Appearance.Theme)
	case settingsFieldLedger:
		a.opts.Ledger = cfg.General.Ledger
	}

	a.settings.saveErr = config.Save(cfg)
	if field == settingsFieldTheme {
		return nil
	}
	a.refreshing = true
	return refreshDataCmd(a.loadRequest())
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	labels := [settingsFieldCount]string{
		"Ledger file",
		"Horizon (days)",
		"Safety buffer",
		"Safe window (days)",
		"Payoff strategy",
		"Extra / month",
		"Theme",
	}

	innerW := components.CardInnerWidth(cw)

	var formBody strings.Builder
	for i, label := range labels {
		value := a.settingValue(i)
		if value == "" {
			value = "(not set)"
		}

		if a.settings.editing && i == a.settings.cursor {
			formBody.WriteString(markerStyle.Render("▸ "))
			formBody.WriteString(accentStyle.Render(fmt.Sprintf("%-20s ", label)))
			formBody.WriteString(a.settings.input.View())
			formBody.WriteString("\n")
			continue
		}

		if i == a.settings.cursor {
			marker := markerStyle.Render("▸ ")
			lbl := selectedLabelStyle.Render(fmt.Sprintf("%-20s ", label+":"))
			val := selectedStyle.Render(value)
			formBody.WriteString(marker + lbl + val)
			if padLen := innerW - lipgloss.Width(marker) - lipgloss.Width(lbl) - lipgloss.Width(val); padLen > 0 {
				formBody.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", padLen)))
			}
		} else {
			formBody.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			formBody.WriteString(labelStyle.Render(fmt.Sprintf("%-20s ", label+":")))
			formBody.WriteString(valueStyle.Render(value))
		}
		formBody.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
		formBody.WriteString("\n")
		formBody.WriteString(warnStyle.Render(fmt.Sprintf("Not saved: %s", a.settings.saveErr)))
	} else if a.settings.saved {
		formBody.WriteString("\n")
		formBody.WriteString(greenStyle.Render("Saved."))
	}

	formBody.WriteString("\n")
	formBody.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	// General info card
	dbPath := "(disabled)"
	if a.opts.Store != nil {
		dbPath = config.DatabasePath(a.cfg)
	}
	source := "(none)"
	if a.data != nil {
		source = a.data.source
	}

	var infoBody strings.Builder
	infoBody.WriteString(labelStyle.Render("Config file:  ") + valueStyle.Render(config.ConfigPath()) + "\n")
	infoBody.WriteString(labelStyle.Render("Database:     ") + valueStyle.Render(dbPath) + "\n")
	infoBody.WriteString(labelStyle.Render("Loaded from:  ") + valueStyle.Render(source) + "\n")
	infoBody.WriteString(labelStyle.Render("Load time:    ") + valueStyle.Render(fmt.Sprintf("%.2fs", a.loadTime.Seconds())))
	if a.data != nil {
		infoBody.WriteString("\n")
		infoBody.WriteString(labelStyle.Render("Ledger:       ") + valueStyle.Render(fmt.Sprintf("%s accounts, %s items, %s debts",
			cli.FormatNumber(int64(len(a.data.ledger.Accounts))),
			cli.FormatNumber(int64(len(a.data.ledger.Items))),
			cli.FormatNumber(int64(len(a.data.debts))))))
	}

	var b strings.Builder
	b.WriteString(components.ContentCard("Settings", formBody.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("General", infoBody.String(), cw))

	return b.String()
}
