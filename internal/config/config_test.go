package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/theirongolddev/cashcast/internal/money"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if cfg.Forecast.HorizonDays != 90 || cfg.Forecast.SafeWindowDays != 14 {
		t.Errorf("defaults = %+v", cfg.Forecast)
	}
	buf, err := cfg.Forecast.Buffer()
	if err != nil || buf != money.FromDollars(500) {
		t.Errorf("Buffer = %d, %v, want 50000", buf, err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cashcast", "config.toml")
	cfg := DefaultConfig()
	cfg.General.Ledger = "/tmp/ledger.toml"
	cfg.Forecast.SafetyBuffer = "750.25"
	cfg.Payoff.Strategy = "snowball"

	if err := SaveFile(path, cfg); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("perm = %o, want 600", perm)
	}

	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got.General.Ledger != cfg.General.Ledger || got.Payoff.Strategy != "snowball" {
		t.Errorf("round trip = %+v", got)
	}
	buf, _ := got.Forecast.Buffer()
	if buf != 75025 {
		t.Errorf("Buffer = %d, want 75025", buf)
	}
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := "[forecast]\nhorizon_days = 30\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Forecast.HorizonDays != 30 {
		t.Errorf("HorizonDays = %d, want 30", cfg.Forecast.HorizonDays)
	}
	if cfg.Forecast.SafeWindowDays != 14 || cfg.Payoff.MaxMonths != 360 {
		t.Errorf("defaults lost: %+v %+v", cfg.Forecast, cfg.Payoff)
	}
}

func TestEnvOverrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.General.Ledger = "from-config.toml"
	t.Setenv("CASHCAST_LEDGER", "from-env.toml")
	if got := LedgerPath(cfg); got != "from-env.toml" {
		t.Errorf("LedgerPath = %q, want from-env.toml", got)
	}
	t.Setenv("CASHCAST_DB", "")
	t.Setenv("XDG_DATA_HOME", "/data")
	if got := DatabasePath(cfg); got != filepath.Join("/data", "cashcast", "cashcast.db") {
		t.Errorf("DatabasePath = %q", got)
	}
}

func TestBadValues(t *testing.T) {
	p := PayoffConfig{ExtraMonthly: "lots", DefaultMinPercent: "two"}
	if _, err := p.Extra(); err == nil {
		t.Error("expected error for bad extra")
	}
	if _, err := p.MinPercent(); err == nil {
		t.Error("expected error for bad percent")
	}
	if _, err := (GeneralConfig{Timezone: "Mars/Olympus"}).Location(); err == nil {
		t.Error("expected error for bad timezone")
	}
}
