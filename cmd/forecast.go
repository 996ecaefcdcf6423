package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashcast/internal/cli"
	"github.com/theirongolddev/cashcast/internal/pipeline"
)

var (
	flagPurchase     string
	flagPurchaseName string
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Project balances by month, or check a purchase with --purchase",
	RunE:  runForecast,
}

func init() {
	forecastCmd.Flags().StringVar(&flagPurchase, "purchase", "", "Check whether a one-time purchase today is affordable")
	forecastCmd.Flags().StringVar(&flagPurchaseName, "name", "purchase", "Label for --purchase")
	rootCmd.AddCommand(forecastCmd)
}

func runForecast(cmd *cobra.Command, _ []string) error {
	s, err := loadData(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	if flagPurchase != "" {
		return runAffordability(s)
	}

	res, err := pipeline.Forecast(s.ledger, s.settings.Forecast)
	if err != nil {
		return err
	}
	recordRun(cmd.Context(), s, res, "forecast")

	if flagJSON {
		return printJSON(res)
	}

	months := pipeline.AggregateMonths(res.Days, res.Summary.StartingBalance)
	buffer := res.Summary.SafetyBuffer

	fmt.Println()
	fmt.Println(title("BALANCE FORECAST", res.Days[0].Date.Format("Jan 02, 2006")))
	fmt.Println()

	rows := make([][]string, 0, len(months))
	for _, m := range months {
		rows = append(rows, []string{
			m.Start.Format("Jan 2006"),
			cli.FormatMoney(m.OpeningBalance),
			cli.FormatMoney(m.Income),
			cli.FormatMoney(m.Bills),
			cli.FormatMoney(m.CardPayments),
			cli.RenderBalance(m.ClosingBalance, buffer),
			cli.RenderBalance(m.LowestBalance, buffer),
			m.LowestDate.Format("Jan 02"),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Month", "Opening", "Income", "Bills", "Cards", "Closing", "Lowest", "On"},
		Rows:    rows,
	}))

	balances := make([]float64, len(res.Days))
	for i, d := range res.Days {
		balances[i] = float64(d.Balance)
	}
	fmt.Println()
	fmt.Printf("  %s\n", cli.RenderSparkline(balances))
	fmt.Println()
	fmt.Print(cli.RenderKeyValues([][2]string{
		{"Lowest", cli.RenderBalance(res.Summary.LowestBalance, buffer) + " on " + cli.FormatDate(res.Summary.LowestBalanceDate)},
		{"Safe to spend", cli.RenderBalance(res.Summary.SafeToSpend, 0)},
	}))

	printWarnings(forecastWarnings(s, res))
	return nil
}

func runAffordability(s *session) error {
	amount, err := parseMoneyFlag("purchase", flagPurchase)
	if err != nil {
		return err
	}
	aff, err := pipeline.CheckPurchase(s.ledger, s.settings.Forecast, flagPurchaseName, amount)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(aff)
	}

	verdict := cli.RenderAmount(aff.After.SafeToSpend) + "  affordable"
	if !aff.OK {
		verdict = cli.RenderBalance(aff.After.SafeToSpend, 0) + "  not affordable"
	}

	fmt.Println()
	fmt.Println(title("CAN I AFFORD IT?", cli.FormatMoney(aff.Amount)))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"", "Now", "After Purchase"},
		Rows: [][]string{
			{"Lowest Balance", cli.FormatMoney(aff.Before.LowestBalance), cli.RenderBalance(aff.After.LowestBalance, aff.After.SafetyBuffer)},
			{"Ending Balance", cli.FormatMoney(aff.Before.EndingBalance), cli.FormatMoney(aff.After.EndingBalance)},
			{"Days Below Buffer", formatNumber(int64(aff.Before.DaysBelowBuffer)), formatNumber(int64(aff.After.DaysBelowBuffer))},
			{"Safe to Spend", cli.FormatMoney(aff.Before.SafeToSpend), cli.FormatMoney(aff.After.SafeToSpend)},
		},
	}))
	fmt.Println()
	fmt.Printf("  %s\n\n", verdict)
	return nil
}
