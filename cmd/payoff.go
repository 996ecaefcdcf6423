package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashcast/internal/cli"
	"github.com/theirongolddev/cashcast/internal/model"
	"github.com/theirongolddev/cashcast/internal/payoff"
)

var (
	flagStrategy string
	flagExtra    string
	flagSchedule bool
)

var payoffCmd = &cobra.Command{
	Use:   "payoff",
	Short: "Simulate credit card payoff with snowball or avalanche",
	RunE:  runPayoff,
}

func init() {
	payoffCmd.Flags().StringVarP(&flagStrategy, "strategy", "s", "", "snowball or avalanche (default from config)")
	payoffCmd.Flags().StringVarP(&flagExtra, "extra", "e", "", "Extra monthly payment beyond minimums")
	payoffCmd.Flags().BoolVar(&flagSchedule, "schedule", false, "Print the month-by-month schedule")
	rootCmd.AddCommand(payoffCmd)
}

// payoffOptions applies --strategy and --extra to the configured options.
func payoffOptions(s *session) (payoff.Options, error) {
	opts := s.settings.Payoff
	if flagStrategy != "" {
		strategy, err := payoff.ParseStrategy(flagStrategy)
		if err != nil {
			return opts, err
		}
		opts.Strategy = strategy
	}
	if flagExtra != "" {
		extra, err := parseMoneyFlag("extra", flagExtra)
		if err != nil {
			return opts, err
		}
		opts.ExtraPayment = extra
	}
	return opts, nil
}

func runPayoff(cmd *cobra.Command, _ []string) error {
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

	res := payoff.Simulate(debts, opts)
	if s.store != nil {
		if _, err := s.store.SavePayoffRun(cmd.Context(), time.Now(), res); err != nil {
			log.WithError(err).Warn("saving payoff run")
		}
	}

	if flagJSON {
		return printJSON(res)
	}

	fmt.Println()
	fmt.Println(title(strings.ToUpper(string(res.Strategy))+" PAYOFF", "extra "+cli.FormatMoney(res.ExtraPayment)+"/mo"))
	fmt.Println()

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    payoffRows(res),
	}))

	fmt.Println()
	fmt.Print(renderCardOutcomes(res))

	if flagSchedule {
		fmt.Println()
		fmt.Print(renderSchedule(res))
	}

	printWarnings(warningMessages(res.Warnings))
	return nil
}

func payoffRows(res model.PayoffResult) [][]string {
	debtFree := "not within cap"
	if res.DebtFreeDate != nil {
		debtFree = res.DebtFreeDate.Format("Jan 2006")
	}
	return [][]string{
		{"Starting Debt", cli.FormatMoney(res.TotalInitialDebt)},
		{"Months", cli.FormatMonths(res.TotalMonths)},
		{"Debt Free", debtFree},
		{"Total Interest", cli.FormatMoney(res.TotalInterest)},
		{"Total Paid", cli.FormatMoney(res.TotalPaid)},
	}
}

func renderCardOutcomes(res model.PayoffResult) string {
	rows := make([][]string, 0, len(res.Cards))
	for _, c := range res.Cards {
		paid := "-"
		if c.PaidOff() && c.PaidOffDate != nil {
			paid = fmt.Sprintf("%s (month %d)", c.PaidOffDate.Format("Jan 2006"), c.PaidOffMonth)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d. %s", c.Order+1, c.Name),
			cli.FormatMoney(c.InitialBalance),
			cli.FormatRate(c.APR),
			cli.FormatMoney(c.InterestPaid),
			paid,
		})
	}
	return cli.RenderTable(cli.Table{
		Title:   "Cards in Payoff Order",
		Headers: []string{"Card", "Balance", "APR", "Interest", "Paid Off"},
		Rows:    rows,
	})
}

func renderSchedule(res model.PayoffResult) string {
	rows := make([][]string, 0, len(res.Schedule))
	for _, m := range res.Schedule {
		var target string
		for _, p := range m.Payments {
			if p.Target {
				target = p.Name
			}
		}
		rows = append(rows, []string{
			fmt.Sprintf("%3d  %s", m.Month, m.Date.Format("Jan 2006")),
			cli.FormatMoney(m.TotalPayment),
			cli.FormatMoney(m.TotalInterest),
			cli.FormatMoney(m.TotalBalance),
			target,
		})
	}
	return cli.RenderTable(cli.Table{
		Title:   "Schedule",
		Headers: []string{"Month", "Paid", "Interest", "Remaining", "Target"},
		Rows:    rows,
	})
}

func warningMessages(ws []model.Warning) []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		if w.Subject != "" {
			out = append(out, fmt.Sprintf("%s: %s", w.Subject, w.Message))
		} else {
			out = append(out, w.Message)
		}
	}
	return out
}
