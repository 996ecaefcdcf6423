package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashcast/internal/cli"
	"github.com/theirongolddev/cashcast/internal/creditcard"
	"github.com/theirongolddev/cashcast/internal/money"
	"github.com/theirongolddev/cashcast/internal/recurrence"
)

var cardsCmd = &cobra.Command{
	Use:   "cards",
	Short: "Credit card utilization, minimums and due dates",
	RunE:  runCards,
}

func init() {
	rootCmd.AddCommand(cardsCmd)
}

func runCards(cmd *cobra.Command, _ []string) error {
	s, err := loadData(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	cards := s.ledger.CreditCards()
	if len(cards) == 0 {
		fmt.Println("\n  No credit card accounts in the ledger.")
		return nil
	}

	today := s.settings.Forecast.Today
	profiles := make([]creditcard.Profile, 0, len(cards))
	for _, a := range cards {
		profiles = append(profiles, creditcard.Describe(a, today, s.settings.Forecast.MinPaymentFloor))
	}
	if flagJSON {
		return printJSON(profiles)
	}

	fmt.Println()
	fmt.Println(title("CREDIT CARDS", today.Format("Jan 02, 2006")))
	fmt.Println()

	rows := make([][]string, 0, len(profiles))
	var totalBal, totalMin, totalInterest money.Cents
	for _, p := range profiles {
		util := "n/a"
		if p.HasUtilization {
			util = cli.FormatPercent(p.Utilization) + " " + string(p.Status)
		}
		due := "-"
		if p.NextDue != nil {
			due = fmt.Sprintf("%s (%dd)", p.NextDue.Format("Jan 02"), recurrence.DaysBetween(today, *p.NextDue))
		}
		rows = append(rows, []string{
			p.Name,
			cli.FormatMoney(p.Balance),
			cli.FormatMoney(p.Limit),
			util,
			cli.FormatRate(p.APR),
			cli.FormatMoney(p.MinimumPayment),
			cli.FormatMoney(p.MonthlyInterest),
			due,
		})
		totalBal += p.Balance
		totalMin += p.MinimumPayment
		totalInterest += p.MonthlyInterest
	}
	rows = append(rows, []string{"---"})
	rows = append(rows, []string{"Total", cli.FormatMoney(totalBal), "", "", "", cli.FormatMoney(totalMin), cli.FormatMoney(totalInterest), ""})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Card", "Balance", "Limit", "Utilization", "APR", "Minimum", "Interest/mo", "Next Due"},
		Rows:    rows,
	}))

	fmt.Println()
	fmt.Println("  Utilization")
	for _, p := range profiles {
		if !p.HasUtilization {
			continue
		}
		fmt.Println(cli.RenderHorizontalBar(p.Name, min(p.Utilization, 100), 100, 40) + " " + cli.FormatPercent(p.Utilization))
	}
	return nil
}
