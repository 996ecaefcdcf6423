package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashcast/internal/cli"
	"github.com/theirongolddev/cashcast/internal/model"
	"github.com/theirongolddev/cashcast/internal/pipeline"
)

var (
	flagCalendarBy    string
	flagCalendarAll   bool
	flagCalendarUntil string
)

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Day-by-day (or weekly/monthly) balance calendar",
	RunE:  runCalendar,
}

func init() {
	calendarCmd.Flags().StringVar(&flagCalendarBy, "by", "daily", "Grouping: daily, weekly, monthly")
	calendarCmd.Flags().BoolVar(&flagCalendarAll, "all", false, "Include days with no activity")
	calendarCmd.Flags().StringVar(&flagCalendarUntil, "until", "", "Only show days up to this date (YYYY-MM-DD)")
	rootCmd.AddCommand(calendarCmd)
}

func runCalendar(cmd *cobra.Command, _ []string) error {
	s, err := loadData(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := pipeline.Forecast(s.ledger, s.settings.Forecast)
	if err != nil {
		return err
	}
	buffer := res.Summary.SafetyBuffer

	var until time.Time
	if flagCalendarUntil != "" {
		until, err = time.Parse("2006-01-02", flagCalendarUntil)
		if err != nil {
			return fmt.Errorf("parsing --until: %w", err)
		}
	}

	switch strings.ToLower(flagCalendarBy) {
	case "daily", "day":
		days := pipeline.FilterDays(res.Days, time.Time{}, until)
		if !flagCalendarAll {
			days = pipeline.ActiveDays(days)
		}
		if flagJSON {
			return printJSON(days)
		}

		fmt.Println()
		fmt.Println(title("DAILY CALENDAR", fmt.Sprintf("Next %dd", len(res.Days))))
		fmt.Println()

		rows := make([][]string, 0, len(days))
		for _, d := range days {
			rows = append(rows, []string{
				cli.FormatDate(d.Date),
				describeDay(d),
				cli.RenderAmount(d.Net()),
				cli.RenderBalance(d.Balance, buffer),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Date", "Activity", "Net", "Balance"},
			Rows:    rows,
		}))

	case "weekly", "week", "monthly", "month":
		label := "WEEKLY"
		days := pipeline.FilterDays(res.Days, time.Time{}, until)
		periods := pipeline.AggregateWeeks(days, res.Summary.StartingBalance)
		if strings.HasPrefix(strings.ToLower(flagCalendarBy), "month") {
			label = "MONTHLY"
			periods = pipeline.AggregateMonths(days, res.Summary.StartingBalance)
		}
		if flagJSON {
			return printJSON(periods)
		}

		fmt.Println()
		fmt.Println(title(label+" CALENDAR", fmt.Sprintf("Next %dd", len(res.Days))))
		fmt.Println()

		rows := make([][]string, 0, len(periods))
		for _, p := range periods {
			rows = append(rows, []string{
				p.Start.Format("Jan 02"),
				cli.FormatNumber(int64(p.Days)),
				cli.FormatMoney(p.Income),
				cli.FormatMoney(p.Bills + p.CardPayments),
				cli.RenderBalance(p.LowestBalance, buffer),
				cli.RenderBalance(p.ClosingBalance, buffer),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"From", "Days", "Income", "Outflow", "Lowest", "Closing"},
			Rows:    rows,
		}))

	default:
		return fmt.Errorf("unknown grouping %q (want daily, weekly or monthly)", flagCalendarBy)
	}
	return nil
}

// describeDay lists the day's items, income first.
func describeDay(d model.ForecastDay) string {
	var names []string
	for _, o := range d.Income {
		names = append(names, "+"+o.Name)
	}
	for _, o := range d.Bills {
		names = append(names, o.Name)
	}
	s := strings.Join(names, ", ")
	if len(s) > 40 {
		s = s[:37] + "..."
	}
	return s
}
