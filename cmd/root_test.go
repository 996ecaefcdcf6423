package cmd

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/theirongolddev/cashcast/internal/config"
	"github.com/theirongolddev/cashcast/internal/ledger"
	"github.com/theirongolddev/cashcast/internal/model"
	"github.com/theirongolddev/cashcast/internal/pipeline"
)

// setDaysFlag sets --days as if given on the command line and restores it
// when the test ends.
func setDaysFlag(t *testing.T, days int) {
	t.Helper()
	f := rootCmd.PersistentFlags().Lookup("days")
	if err := rootCmd.PersistentFlags().Set("days", strconv.Itoa(days)); err != nil {
		t.Fatalf("setting --days: %v", err)
	}
	t.Cleanup(func() {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
}

func TestLoadConfigKeepsConfiguredHorizon(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := loadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if want := config.DefaultConfig().Forecast.HorizonDays; cfg.Forecast.HorizonDays != want {
		t.Errorf("HorizonDays = %d, want config default %d", cfg.Forecast.HorizonDays, want)
	}
}

func TestLoadConfigPassesExplicitDays(t *testing.T) {
	l, err := ledger.Parse(ledger.Sample)
	if err != nil {
		t.Fatal(err)
	}
	today := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

	for _, days := range []int{0, -5} {
		t.Run(strconv.Itoa(days), func(t *testing.T) {
			t.Setenv("XDG_CONFIG_HOME", t.TempDir())
			setDaysFlag(t, days)

			cfg, err := loadConfig()
			if err != nil {
				t.Fatal(err)
			}
			if cfg.Forecast.HorizonDays != days {
				t.Fatalf("HorizonDays = %d, want %d", cfg.Forecast.HorizonDays, days)
			}
			s, err := pipeline.ResolveSettings(cfg, today)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := pipeline.Forecast(l, s.Forecast); !errors.Is(err, model.ErrInvalidHorizon) {
				t.Errorf("Forecast error = %v, want ErrInvalidHorizon", err)
			}
		})
	}
}

func TestLoadConfigExplicitDaysOverride(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	setDaysFlag(t, 30)

	cfg, err := loadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Forecast.HorizonDays != 30 {
		t.Errorf("HorizonDays = %d, want 30", cfg.Forecast.HorizonDays)
	}
}
