package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashcast/internal/cli"
	"github.com/theirongolddev/cashcast/internal/forecast"
	"github.com/theirongolddev/cashcast/internal/model"
	"github.com/theirongolddev/cashcast/internal/pipeline"
	"github.com/theirongolddev/cashcast/internal/store"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Safe-to-spend summary with the largest cash flows",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	s, err := loadData(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := pipeline.Forecast(s.ledger, s.settings.Forecast)
	if err != nil {
		return err
	}
	recordRun(cmd.Context(), s, res, "summary")

	if flagJSON {
		return printJSON(res.Summary)
	}

	fmt.Println()
	fmt.Println(title("CASH FORECAST", fmt.Sprintf("Next %dd", res.Summary.HorizonDays)))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    summaryRows(res.Summary),
	}))

	items := pipeline.AggregateItems(res.Days)
	if len(items) > 10 {
		items = items[:10]
	}
	if len(items) > 0 {
		rows := make([][]string, 0, len(items))
		for _, it := range items {
			rows = append(rows, []string{
				it.Name,
				string(it.Kind),
				cli.FormatNumber(int64(it.Occurrences)),
				cli.FormatMoney(it.Total),
				cli.FormatPercent(it.SharePercent),
				it.NextDate.Format("Jan 02"),
			})
		}
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Largest Flows",
			Headers: []string{"Item", "Kind", "Count", "Total", "Share", "Next"},
			Rows:    rows,
		}))
	}

	printWarnings(forecastWarnings(s, res))
	return nil
}

func summaryRows(sum model.ForecastSummary) [][]string {
	return [][]string{
		{"Starting Balance", cli.FormatMoney(sum.StartingBalance)},
		{"Income", cli.RenderAmount(sum.TotalIncome)},
		{"Bills", cli.RenderAmount(-sum.TotalBills)},
		{"Ending Balance", cli.RenderBalance(sum.EndingBalance, sum.SafetyBuffer)},
		{"Net Change", cli.FormatDelta(sum.NetChange)},
		{"---"},
		{"Lowest Balance", cli.RenderBalance(sum.LowestBalance, sum.SafetyBuffer)},
		{"Lowest On", cli.FormatDate(sum.LowestBalanceDate)},
		{"Days Below Buffer", cli.FormatNumber(int64(sum.DaysBelowBuffer))},
		{"---"},
		{"Safety Buffer", cli.FormatMoney(sum.SafetyBuffer)},
		{fmt.Sprintf("Safe to Spend (%dd)", sum.SafeWindowDays), cli.RenderBalance(sum.SafeToSpend, 0)},
	}
}

func forecastWarnings(s *session, res forecast.Result) []string {
	var msgs []string
	if d := res.Summary.FirstNegativeDate; d != nil {
		msgs = append(msgs, fmt.Sprintf("balance goes negative on %s", cli.FormatDate(*d)))
	}
	if res.Summary.SafeToSpend < 0 {
		msgs = append(msgs, fmt.Sprintf("short %s of the safety buffer in the next %d days",
			cli.FormatMoney(-res.Summary.SafeToSpend), res.Summary.SafeWindowDays))
	}
	for _, id := range res.Excluded {
		msgs = append(msgs, fmt.Sprintf("%s is charged to a card and left out of cash flow", itemName(s, id)))
	}
	return msgs
}

func itemName(s *session, id string) string {
	for _, it := range s.ledger.Items {
		if it.ID == id {
			return it.Name
		}
	}
	return id
}

// recordRun saves the projection summary to the run history when a store is open.
func recordRun(ctx context.Context, s *session, res forecast.Result, source string) {
	if s.store == nil || len(res.Days) == 0 {
		return
	}
	id, err := s.store.SaveForecastRun(ctx, store.ForecastRun{
		CreatedAt: time.Now(),
		Today:     res.Days[0].Date,
		Source:    source,
		Summary:   res.Summary,
	})
	if err != nil {
		log.WithError(err).Warn("saving forecast run")
		return
	}
	log.WithField("run_id", id).Debug("forecast run saved")
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
