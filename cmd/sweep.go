package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashcast/internal/cli"
	"github.com/theirongolddev/cashcast/internal/pipeline"
)

var (
	flagSweepFrom string
	flagSweepTo   string
	flagSweepStep string
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "What-if table: payoff time and interest across extra payment levels",
	RunE:  runSweep,
}

func init() {
	sweepCmd.Flags().StringVar(&flagSweepFrom, "from", "0", "Lowest extra monthly payment")
	sweepCmd.Flags().StringVar(&flagSweepTo, "to", "500", "Highest extra monthly payment")
	sweepCmd.Flags().StringVar(&flagSweepStep, "step", "50", "Increment between levels")
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, _ []string) error {
	from, err := parseMoneyFlag("from", flagSweepFrom)
	if err != nil {
		return err
	}
	to, err := parseMoneyFlag("to", flagSweepTo)
	if err != nil {
		return err
	}
	step, err := parseMoneyFlag("step", flagSweepStep)
	if err != nil {
		return err
	}

	s, err := loadData(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	debts := s.ledger.PayoffDebts()
	if len(debts) == 0 {
		fmt.Println("\n  No card balances to pay off.")
		return nil
	}

	extras, err := pipeline.ExtraSteps(from, to, step)
	if err != nil {
		return err
	}
	progressFn := func(current, total int) {
		if flagQuiet {
			return
		}
		fmt.Fprintf(os.Stderr, "\r  Simulating %s", cli.RenderProgressBar(current, total, 20))
	}
	points := pipeline.SweepExtraPayments(debts, s.settings.Payoff, extras, progressFn)
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "\r  Simulated %d extra payment levels    \n", len(points))
	}

	if flagJSON {
		return printJSON(points)
	}

	fmt.Println()
	fmt.Println(title("EXTRA PAYMENT SWEEP", cli.FormatMoney(from)+" to "+cli.FormatMoney(to)))
	fmt.Println()

	rows := make([][]string, 0, len(points))
	for _, p := range points {
		sb, av := p.Comparison.Snowball, p.Comparison.Avalanche
		months := cli.FormatMonths(av.TotalMonths)
		if av.CapReached {
			months = "capped"
		}
		rows = append(rows, []string{
			cli.FormatMoney(p.Extra),
			months,
			cli.FormatMoney(av.TotalInterest),
			cli.FormatMoney(sb.TotalInterest),
			cli.FormatMoney(p.Comparison.InterestSaved),
			string(p.Comparison.Recommended),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Extra/mo", "Months", "Avalanche Int.", "Snowball Int.", "Saved", "Pick"},
		Rows:    rows,
	}))
	return nil
}
