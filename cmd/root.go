package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashcast/internal/cli"
	"github.com/theirongolddev/cashcast/internal/config"
	"github.com/theirongolddev/cashcast/internal/ledger"
	"github.com/theirongolddev/cashcast/internal/money"
	"github.com/theirongolddev/cashcast/internal/pipeline"
	"github.com/theirongolddev/cashcast/internal/store"
)

var (
	flagDays    int
	flagBuffer  string
	flagWindow  int
	flagToday   string
	flagTZ      string
	flagLedger  string
	flagNoStore bool
	flagQuiet   bool
	flagVerbose bool
	flagJSON    bool
)

var log = logrus.New()

var rootCmd = &cobra.Command{
	Use:   "cashcast",
	Short: "Cash flow forecasting and debt payoff planning",
	Long:  "Project your spendable balance day by day, see what is safe to spend, and plan credit card payoff.",
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		configureLogger(log, flagVerbose, false)
	},
	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Assigned here rather than in the literal to break the
	// rootCmd -> runSummary -> loadConfig -> rootCmd initialization cycle.
	rootCmd.RunE = runSummary
	rootCmd.PersistentFlags().IntVarP(&flagDays, "days", "n", 0, "Projection horizon in days (default from config)")
	rootCmd.PersistentFlags().StringVarP(&flagBuffer, "buffer", "b", "", "Safety buffer amount, e.g. 500")
	rootCmd.PersistentFlags().IntVarP(&flagWindow, "window", "w", 0, "Safe-to-spend window in days")
	rootCmd.PersistentFlags().StringVar(&flagToday, "today", "", "Override today (YYYY-MM-DD)")
	rootCmd.PersistentFlags().StringVar(&flagTZ, "tz", "", "IANA time zone used to pick today")
	rootCmd.PersistentFlags().StringVarP(&flagLedger, "ledger", "l", "", "Ledger TOML file or directory (default: imported ledger)")
	rootCmd.PersistentFlags().BoolVar(&flagNoStore, "no-store", false, "Do not read or write the SQLite store")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print JSON instead of tables")
}

// configureLogger applies the level from --verbose or CASHCAST_LOG_LEVEL.
func configureLogger(l *logrus.Logger, verbose, jsonOutput bool) {
	l.SetOutput(os.Stderr)
	if jsonOutput {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	level, err := logrus.ParseLevel(os.Getenv("CASHCAST_LOG_LEVEL"))
	if err != nil {
		level = logrus.WarnLevel
	}
	if verbose {
		level = logrus.DebugLevel
	}
	l.SetLevel(level)
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if rootCmd.PersistentFlags().Changed("days") {
		cfg.Forecast.HorizonDays = flagDays
	}
	if flagBuffer != "" {
		cfg.Forecast.SafetyBuffer = flagBuffer
	}
	if flagWindow > 0 {
		cfg.Forecast.SafeWindowDays = flagWindow
	}
	if flagTZ != "" {
		cfg.General.Timezone = flagTZ
	}
	return cfg, nil
}

// ledgerPath resolves --ledger, then CASHCAST_LEDGER, then config.
func ledgerPath(cfg config.Config) string {
	if flagLedger != "" {
		return flagLedger
	}
	return config.LedgerPath(cfg)
}

// session is everything a command needs after loading.
type session struct {
	cfg      config.Config
	settings pipeline.Settings
	ledger   *ledger.Ledger
	source   string
	store    *store.Store
}

func (s *session) Close() {
	if s.store != nil {
		_ = s.store.Close()
	}
}

// openStore opens the SQLite store unless --no-store is set.
func openStore(cfg config.Config) (*store.Store, error) {
	if flagNoStore {
		return nil, nil
	}
	return store.Open(config.DatabasePath(cfg))
}

// loadData is the shared loading path used by all commands.
// A ledger file wins; otherwise the imported ledger in the store is used.
func loadData(ctx context.Context) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	loc, err := cfg.General.Location()
	if err != nil {
		return nil, err
	}
	today, err := pipeline.Today(time.Now(), loc, flagToday)
	if err != nil {
		return nil, err
	}
	settings, err := pipeline.ResolveSettings(cfg, today)
	if err != nil {
		return nil, err
	}

	st, err := openStore(cfg)
	if err != nil {
		// Store unavailable, continue with the ledger file alone
		log.WithError(err).Warn("store unavailable")
		st = nil
	}

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Loading ledger...\n")
	}
	lr, err := pipeline.LoadLedger(ctx, ledgerPath(cfg), st)
	if err != nil {
		if st != nil {
			_ = st.Close()
		}
		if errors.Is(err, pipeline.ErrNoLedger) {
			return nil, fmt.Errorf("%w\n  (try `cashcast setup --sample` for an example ledger)", err)
		}
		return nil, err
	}

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "\r  Loaded %d accounts, %d items from %s    \n",
			len(lr.Ledger.Accounts), len(lr.Ledger.Items), lr.Source)
	}
	log.WithFields(logrus.Fields{
		"source":  lr.Source,
		"today":   today.Format(time.DateOnly),
		"horizon": settings.Forecast.HorizonDays,
	}).Debug("ledger loaded")

	return &session{
		cfg:      cfg,
		settings: settings,
		ledger:   lr.Ledger,
		source:   lr.Source,
		store:    st,
	}, nil
}

// parseMoneyFlag parses an amount flag, naming the flag on error.
func parseMoneyFlag(name, value string) (money.Cents, error) {
	c, err := money.Parse(value)
	if err != nil {
		return 0, fmt.Errorf("--%s: %w", name, err)
	}
	return c, nil
}

func printWarnings(msgs []string) {
	if len(msgs) == 0 {
		return
	}
	fmt.Println()
	for _, m := range msgs {
		fmt.Println(cli.RenderWarning(m))
	}
}

func formatNumber(n int64) string {
	return cli.FormatNumber(n)
}

func title(parts ...string) string {
	return cli.RenderTitle(strings.Join(parts, "  "))
}
