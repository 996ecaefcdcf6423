// Package config loads and saves the cashcast TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cashcast/internal/money"
)

// Config holds all cashcast configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Forecast   ForecastConfig   `toml:"forecast"`
	Payoff     PayoffConfig     `toml:"payoff"`
	Appearance AppearanceConfig `toml:"appearance"`
	Daemon     DaemonConfig     `toml:"daemon"`
}

// GeneralConfig holds data locations and locale.
type GeneralConfig struct {
	Ledger   string `toml:"ledger,omitempty"`
	Database string `toml:"database,omitempty"`
	Timezone string `toml:"timezone,omitempty"`
	Currency string `toml:"currency"`
}

// ForecastConfig holds balance projection settings. Amounts are strings
// so they round-trip without float error.
type ForecastConfig struct {
	HorizonDays    int    `toml:"horizon_days"`
	MaxHorizonDays int    `toml:"max_horizon_days"`
	SafetyBuffer   string `toml:"safety_buffer"`
	SafeWindowDays int    `toml:"safe_window_days"`
	SemiMonthly    string `toml:"semi_monthly"`
	CardPayment    string `toml:"card_payment"`
}

// PayoffConfig holds debt payoff settings.
type PayoffConfig struct {
	Strategy          string `toml:"strategy"`
	ExtraMonthly      string `toml:"extra_monthly"`
	MinPaymentFloor   string `toml:"min_payment_floor"`
	DefaultMinPercent string `toml:"default_min_percent"`
	MaxMonths         int    `toml:"max_months"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DaemonConfig holds background service settings.
type DaemonConfig struct {
	Addr         string `toml:"addr"`
	Schedule     string `toml:"schedule"`
	EventsBuffer int    `toml:"events_buffer"`
	LogJSON      bool   `toml:"log_json"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Currency: "USD",
		},
		Forecast: ForecastConfig{
			HorizonDays:    90,
			MaxHorizonDays: 365,
			SafetyBuffer:   "500.00",
			SafeWindowDays: 14,
			SemiMonthly:    "first-fifteenth",
			CardPayment:    "minimum",
		},
		Payoff: PayoffConfig{
			Strategy:          "avalanche",
			ExtraMonthly:      "0.00",
			MinPaymentFloor:   "25.00",
			DefaultMinPercent: "2",
			MaxMonths:         360,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8742",
			Schedule:     "@every 15m",
			EventsBuffer: 200,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "cashcast")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "cashcast")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG data directory for the store.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "cashcast")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "cashcast")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFile(ConfigPath())
}

// LoadFile reads a config from path, returning defaults if it doesn't exist.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveFile(ConfigPath(), cfg)
}

// SaveFile writes the config to path with owner-only permissions.
func SaveFile(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// LedgerPath returns the ledger location from env var or config, in that order.
func LedgerPath(cfg Config) string {
	if p := os.Getenv("CASHCAST_LEDGER"); p != "" {
		return p
	}
	return cfg.General.Ledger
}

// DatabasePath returns the store location from env var, config, or the
// default data directory.
func DatabasePath(cfg Config) string {
	if p := os.Getenv("CASHCAST_DB"); p != "" {
		return p
	}
	if cfg.General.Database != "" {
		return cfg.General.Database
	}
	return filepath.Join(DataDir(), "cashcast.db")
}

// Location resolves the configured timezone, defaulting to local time.
func (g GeneralConfig) Location() (*time.Location, error) {
	if g.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(g.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", g.Timezone, err)
	}
	return loc, nil
}

// Buffer parses the safety buffer.
func (f ForecastConfig) Buffer() (money.Cents, error) {
	return parseAmount("forecast.safety_buffer", f.SafetyBuffer)
}

// Extra parses the monthly extra payment.
func (p PayoffConfig) Extra() (money.Cents, error) {
	return parseAmount("payoff.extra_monthly", p.ExtraMonthly)
}

// Floor parses the minimum payment floor.
func (p PayoffConfig) Floor() (money.Cents, error) {
	return parseAmount("payoff.min_payment_floor", p.MinPaymentFloor)
}

// MinPercent parses the default minimum payment percent.
func (p PayoffConfig) MinPercent() (decimal.Decimal, error) {
	if p.DefaultMinPercent == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(p.DefaultMinPercent)
	if err != nil {
		return decimal.Zero, fmt.Errorf("payoff.default_min_percent: %w", err)
	}
	return d, nil
}

func parseAmount(key, s string) (money.Cents, error) {
	if s == "" {
		return 0, nil
	}
	c, err := money.Parse(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return c, nil
}
