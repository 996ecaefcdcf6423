package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashcast/internal/cli"
	"github.com/theirongolddev/cashcast/internal/model"
	"github.com/theirongolddev/cashcast/internal/payoff"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare snowball and avalanche side by side",
	RunE:  runCompare,
}

func init() {
	compareCmd.Flags().StringVarP(&flagExtra, "extra", "e", "", "Extra monthly payment beyond minimums")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, _ []string) error {
	s, err := loadData(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	opts, err := payoffOptions(s)
	if err != nil {
		return err
	}
	debts := s.ledger.PayoffDebts()
	if len(debts) == 0 {
		fmt.Println("\n  No card balances to pay off.")
		return nil
	}

	cmp := payoff.Compare(debts, opts)
	if flagJSON {
		return printJSON(cmp)
	}

	fmt.Println()
	fmt.Println(title("SNOWBALL vs AVALANCHE", "extra "+cli.FormatMoney(opts.ExtraPayment)+"/mo"))
	fmt.Println()
	fmt.Print(renderComparison(cmp))

	fmt.Println()
	fmt.Print(cli.RenderKeyValues([][2]string{
		{"Interest saved", cli.FormatMoney(cmp.InterestSaved) + " with avalanche"},
		{"Months saved", fmt.Sprintf("%d", cmp.MonthsSaved)},
		{"Recommended", strings.ToUpper(string(cmp.Recommended))},
	}))

	warnings := warningMessages(cmp.Avalanche.Warnings)
	if cmp.Snowball.CapReached && !cmp.Avalanche.CapReached {
		warnings = append(warnings, warningMessages(cmp.Snowball.Warnings)...)
	}
	printWarnings(warnings)
	return nil
}

func renderComparison(cmp model.StrategyComparison) string {
	order := func(r model.PayoffResult) string {
		names := make(map[string]string, len(r.Cards))
		for _, c := range r.Cards {
			names[c.DebtID] = c.Name
		}
		var out []string
		for _, id := range r.PayoffOrder() {
			out = append(out, names[id])
		}
		return strings.Join(out, " > ")
	}
	debtFree := func(r model.PayoffResult) string {
		if r.DebtFreeDate == nil {
			return "-"
		}
		return r.DebtFreeDate.Format("Jan 2006")
	}

	sb, av := cmp.Snowball, cmp.Avalanche
	return cli.RenderTable(cli.Table{
		Headers: []string{"", "Snowball", "Avalanche"},
		Rows: [][]string{
			{"Months", cli.FormatMonths(sb.TotalMonths), cli.FormatMonths(av.TotalMonths)},
			{"Debt Free", debtFree(sb), debtFree(av)},
			{"Interest", cli.FormatMoney(sb.TotalInterest), cli.FormatMoney(av.TotalInterest)},
			{"Total Paid", cli.FormatMoney(sb.TotalPaid), cli.FormatMoney(av.TotalPaid)},
			{"---"},
			{"Order", order(sb), order(av)},
		},
	})
}
