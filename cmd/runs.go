package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashcast/internal/cli"
	"github.com/theirongolddev/cashcast/internal/config"
	"github.com/theirongolddev/cashcast/internal/store"
)

var (
	flagRunsLimit  int
	flagRunsPayoff bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show saved forecast and payoff history",
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().IntVar(&flagRunsLimit, "limit", 20, "Number of runs to show")
	runsCmd.Flags().BoolVar(&flagRunsPayoff, "payoff", false, "Show payoff runs instead of forecasts")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, _ []string) error {
	if flagNoStore {
		return errors.New("run history lives in the store; drop --no-store")
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

	if flagRunsPayoff {
		runs, err := st.ListPayoffRuns(cmd.Context(), flagRunsLimit)
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(runs)
		}
		if len(runs) == 0 {
			fmt.Println("\n  No payoff runs yet. Run `cashcast payoff` first.")
			return nil
		}
		rows := make([][]string, 0, len(runs))
		for _, r := range runs {
			debtFree := "-"
			if r.DebtFreeDate != nil {
				debtFree = r.DebtFreeDate.Format("Jan 2006")
			}
			rows = append(rows, []string{
				r.CreatedAt.Local().Format("2006-01-02 15:04"),
				string(r.Strategy),
				cli.FormatMoney(r.Extra),
				cli.FormatMonths(r.TotalMonths),
				cli.FormatMoney(r.TotalInterest),
				debtFree,
			})
		}
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Payoff Runs",
			Headers: []string{"When", "Strategy", "Extra", "Months", "Interest", "Debt Free"},
			Rows:    rows,
		}))
		return nil
	}

	runs, err := st.ListForecastRuns(cmd.Context(), flagRunsLimit)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(runs)
	}
	if len(runs) == 0 {
		fmt.Println("\n  No forecast runs yet.")
		return nil
	}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.Source,
			r.Today.Format("Jan 02"),
			cli.FormatNumber(int64(r.Summary.HorizonDays)),
			cli.RenderBalance(r.Summary.LowestBalance, r.Summary.SafetyBuffer),
			cli.RenderBalance(r.Summary.SafeToSpend, 0),
			r.ID[:8],
		})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Forecast Runs",
		Headers: []string{"When", "Source", "Today", "Days", "Lowest", "Safe", "ID"},
		Rows:    rows,
	}))
	return nil
}
