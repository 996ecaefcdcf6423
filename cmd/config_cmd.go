// Package cmd implements the cashcast CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashcast/internal/config"
	"github.com/theirongolddev/cashcast/internal/store"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(cfg)
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	if p := ledgerPath(cfg); p != "" {
		fmt.Printf("    Ledger:    %s\n", p)
	} else {
		fmt.Println("    Ledger:    imported ledger in the store")
	}
	fmt.Printf("    Database:  %s\n", config.DatabasePath(cfg))
	if cfg.General.Timezone != "" {
		fmt.Printf("    Timezone:  %s\n", cfg.General.Timezone)
	}
	fmt.Printf("    Currency:  %s\n", cfg.General.Currency)
	fmt.Println()

	fmt.Println("  [Forecast]")
	fmt.Printf("    Horizon:          %d days (max %d)\n", cfg.Forecast.HorizonDays, cfg.Forecast.MaxHorizonDays)
	fmt.Printf("    Safety buffer:    %s\n", cfg.Forecast.SafetyBuffer)
	fmt.Printf("    Safe window:      %d days\n", cfg.Forecast.SafeWindowDays)
	fmt.Printf("    Semi-monthly:     %s\n", cfg.Forecast.SemiMonthly)
	fmt.Printf("    Card payments:    %s\n", cfg.Forecast.CardPayment)
	fmt.Println()

	fmt.Println("  [Payoff]")
	fmt.Printf("    Strategy:         %s\n", cfg.Payoff.Strategy)
	fmt.Printf("    Extra monthly:    %s\n", cfg.Payoff.ExtraMonthly)
	fmt.Printf("    Minimum floor:    %s\n", cfg.Payoff.MinPaymentFloor)
	fmt.Printf("    Default minimum:  %s%%\n", cfg.Payoff.DefaultMinPercent)
	fmt.Printf("    Month cap:        %d\n", cfg.Payoff.MaxMonths)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:  %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Schedule: %s\n", cfg.Daemon.Schedule)
	fmt.Println()

	printStoreInfo(cmd, config.DatabasePath(cfg))

	fmt.Println("  Run `cashcast setup` to reconfigure.")
	return nil
}

// printStoreInfo reports the schema version and imported ledger size, without
// creating the database when it does not exist yet.
func printStoreInfo(cmd *cobra.Command, dbPath string) {
	fmt.Println("  [Store]")
	if _, err := os.Stat(dbPath); err != nil {
		fmt.Println("    Not created yet (run `cashcast import`)")
		fmt.Println()
		return
	}
	st, err := store.Open(dbPath)
	if err != nil {
		fmt.Printf("    Error: %v\n", err)
		fmt.Println()
		return
	}
	defer st.Close()

	if v, err := st.SchemaVersion(cmd.Context()); err == nil {
		fmt.Printf("    Schema:   v%d\n", v)
	}
	accounts, items, debts, err := st.LedgerCounts(cmd.Context())
	if err != nil {
		fmt.Printf("    Error: %v\n", err)
	} else {
		fmt.Printf("    Ledger:   %d accounts, %d items, %d debts\n", accounts, items, debts)
	}
	fmt.Println()
}
