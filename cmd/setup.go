package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashcast/internal/config"
	"github.com/theirongolddev/cashcast/internal/ledger"
	"github.com/theirongolddev/cashcast/internal/tui"
)

var flagSetupSample bool

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	setupCmd.Flags().BoolVar(&flagSetupSample, "sample", false, "Skip the form and write an example ledger")
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	// Load existing config or defaults
	cfg, _ := config.Load()

	vals := tui.SetupValuesFrom(cfg)
	if flagSetupSample {
		vals.WriteSample = true
	} else {
		fmt.Println()
		fmt.Println("  Welcome to cashcast!")
		fmt.Println()
		if err := tui.NewSetupForm(&vals).Run(); err != nil {
			return fmt.Errorf("setup form: %w", err)
		}
	}

	if vals.WriteSample && vals.Ledger == "" {
		vals.Ledger = filepath.Join(config.DataDir(), "ledger.toml")
	}
	cfg = vals.Apply(cfg)

	if vals.WriteSample {
		written, err := ledger.WriteSample(cfg.General.Ledger)
		if err != nil {
			return err
		}
		if written {
			fmt.Printf("  Wrote example ledger to %s\n", cfg.General.Ledger)
		} else {
			fmt.Printf("  Kept existing ledger at %s\n", cfg.General.Ledger)
		}
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `cashcast setup` anytime to reconfigure.")
	fmt.Println()

	return nil
}
