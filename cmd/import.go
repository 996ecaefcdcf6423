package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashcast/internal/config"
	"github.com/theirongolddev/cashcast/internal/ledger"
	"github.com/theirongolddev/cashcast/internal/pipeline"
	"github.com/theirongolddev/cashcast/internal/store"
)

var flagExport bool

var importCmd = &cobra.Command{
	Use:   "import [ledger.toml|dir]",
	Short: "Validate a ledger and save it to the local store",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runImport,
}

func init() {
	importCmd.Flags().BoolVar(&flagExport, "export", false, "Print the stored ledger as TOML instead")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	if flagNoStore {
		return errors.New("import needs the store; drop --no-store")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(config.DatabasePath(cfg))
	if err != nil {
		return err
	}
	defer st.Close()

	if flagExport {
		l, err := st.LoadLedger(cmd.Context())
		if err != nil {
			return err
		}
		return ledger.Encode(os.Stdout, l)
	}

	path := ledgerPath(cfg)
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		return errors.New("no ledger given: cashcast import <file>")
	}

	res, err := pipeline.Import(cmd.Context(), path, st)
	if err != nil {
		return err
	}
	log.WithField("path", path).Debug("ledger imported")

	fmt.Printf("  Imported %d accounts, %d items, %d debts from %s\n", res.Accounts, res.Items, res.Debts, path)
	fmt.Printf("  Store: %s\n", config.DatabasePath(cfg))
	return nil
}
