package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/cashcast/internal/config"
	"github.com/theirongolddev/cashcast/internal/money"
	"github.com/theirongolddev/cashcast/internal/tui/theme"
)

// SetupValues holds the answers collected by the setup form.
type SetupValues struct {
	Ledger      string
	HorizonDays int
	Buffer      string
	Strategy    string
	Extra       string
	Theme       string
	WriteSample bool
}

var horizonOptions = []int{30, 60, 90, 180, 365}

// SetupValuesFrom seeds the form with the current configuration.
func SetupValuesFrom(cfg config.Config) SetupValues {
	return SetupValues{
		Ledger:      cfg.General.Ledger,
		HorizonDays: cfg.Forecast.HorizonDays,
		Buffer:      cfg.Forecast.SafetyBuffer,
		Strategy:    cfg.Payoff.Strategy,
		Extra:       cfg.Payoff.ExtraMonthly,
		Theme:       cfg.Appearance.Theme,
	}
}

// Apply copies the answers onto cfg. Blank answers keep the existing value.
func (v SetupValues) Apply(cfg config.Config) config.Config {
	if p := strings.TrimSpace(v.Ledger); p != "" {
		cfg.General.Ledger = p
	}
	if v.HorizonDays > 0 {
		cfg.Forecast.HorizonDays = v.HorizonDays
	}
	if b := strings.TrimSpace(v.Buffer); b != "" {
		cfg.Forecast.SafetyBuffer = b
	}
	if v.Strategy != "" {
		cfg.Payoff.Strategy = v.Strategy
	}
	if e := strings.TrimSpace(v.Extra); e != "" {
		cfg.Payoff.ExtraMonthly = e
	}
	if theme.Valid(v.Theme) {
		cfg.Appearance.Theme = v.Theme
	}
	return cfg
}

// validateAmount accepts blank input or a non-negative dollar amount.
func validateAmount(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	c, err := money.Parse(s)
	if err != nil {
		return errors.New("enter an amount like 500 or 1,250.00")
	}
	if c < 0 {
		return errors.New("amount cannot be negative")
	}
	return nil
}

// NewSetupForm builds the first-run form over vals.
func NewSetupForm(vals *SetupValues) *huh.Form {
	if vals.HorizonDays == 0 {
		vals.HorizonDays = 90
	}

	horizons := make([]huh.Option[int], 0, len(horizonOptions))
	for _, d := range horizonOptions {
		horizons = append(horizons, huh.NewOption(formatDays(d), d))
	}

	themes := make([]huh.Option[string], 0, len(theme.All))
	for _, name := range theme.Names() {
		themes = append(themes, huh.NewOption(name, name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Ledger file").
				Description("TOML file listing your accounts, bills, income and debts.").
				Placeholder(config.DataDir()+"/ledger.toml").
				Value(&vals.Ledger),
			huh.NewConfirm().
				Title("Write an example ledger there if none exists?").
				Affirmative("Yes").
				Negative("No").
				Value(&vals.WriteSample),
		),
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Forecast horizon").
				Options(horizons...).
				Value(&vals.HorizonDays),
			huh.NewInput().
				Title("Safety buffer").
				Description("Balance you never want to drop below.").
				Placeholder("500.00").
				Validate(validateAmount).
				Value(&vals.Buffer),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Debt payoff strategy").
				Options(
					huh.NewOption("Avalanche (highest APR first)", "avalanche"),
					huh.NewOption("Snowball (smallest balance first)", "snowball"),
				).
				Value(&vals.Strategy),
			huh.NewInput().
				Title("Extra monthly payment").
				Placeholder("0.00").
				Validate(validateAmount).
				Value(&vals.Extra),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themes...).
				Value(&vals.Theme),
		),
	).WithTheme(huh.ThemeBase16()).WithShowHelp(true)
}
