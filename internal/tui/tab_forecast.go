package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cashcast/internal/cli"
	"github.com/theirongolddev/cashcast/internal/model"
	"github.com/theirongolddev/cashcast/internal/tui/components"
	"github.com/theirongolddev/cashcast/internal/tui/theme"
)

func (a App) renderForecastTab(cw int) string {
	t := theme.Active
	d := a.data
	sum := d.forecast.Summary
	var b strings.Builder

	// Row 1: metric cards
	endDelta := "net " + cli.FormatDelta(sum.NetChange)
	if prev := d.previous; prev != nil {
		endDelta += fmt.Sprintf(" (%s vs last run)", cli.FormatDelta(sum.EndingBalance-prev.Summary.EndingBalance))
	}

	var lowTone, safeTone lipgloss.Color
	switch {
	case sum.LowestBalance < 0:
		lowTone = t.Shortfall()
	case sum.LowestBalance < sum.SafetyBuffer:
		lowTone = t.Orange
	}
	if sum.SafeToSpend < 0 {
		safeTone = t.Shortfall()
	} else {
		safeTone = t.GreenBright
	}

	metrics := []components.Metric{
		{
			Label: "Today",
			Value: cli.FormatMoney(sum.StartingBalance),
			Delta: fmt.Sprintf("%s in, %s out", cli.FormatMoneyShort(sum.TotalIncome), cli.FormatMoneyShort(sum.TotalBills)),
		},
		{
			Label: fmt.Sprintf("In %d days", sum.HorizonDays),
			Value: cli.FormatMoney(sum.EndingBalance),
			Delta: endDelta,
		},
		{
			Label: "Lowest",
			Value: cli.FormatMoney(sum.LowestBalance),
			Delta: cli.FormatDate(sum.LowestBalanceDate),
			Tone:  lowTone,
		},
		{
			Label: "Safe to spend",
			Value: cli.FormatMoney(sum.SafeToSpend),
			Delta: fmt.Sprintf("next %d days", sum.SafeWindowDays),
			Tone:  safeTone,
		},
	}
	b.WriteString(components.MetricCardRow(metrics, cw))
	b.WriteString("\n")

	// Row 2: daily balance
	b.WriteString(a.renderBalanceCard(cw))
	b.WriteString("\n")

	// Row 3: months + largest items
	monthsCard := a.renderMonthsCard
	itemsCard := a.renderItemsCard
	if a.isCompactLayout() {
		b.WriteString(monthsCard(cw))
		b.WriteString("\n")
		b.WriteString(itemsCard(cw))
	} else {
		halves := components.LayoutRow(cw, 2)
		b.WriteString(components.CardRow([]string{monthsCard(halves[0]), itemsCard(halves[1])}))
	}

	if warn := a.forecastWarnings(); warn != "" {
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Heads up", warn, cw))
	}

	return b.String()
}

func (a App) renderBalanceCard(cw int) string {
	t := theme.Active
	d := a.data
	sum := d.forecast.Summary
	innerW := components.CardInnerWidth(cw)

	if len(d.forecast.Days) == 0 {
		return components.ContentCard("Balance", "", cw)
	}

	vals := make([]float64, len(d.forecast.Days))
	for i, day := range d.forecast.Days {
		vals[i] = dollars(day.Balance)
	}
	vals = downsampleMin(vals, innerW)

	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	first := d.forecast.Days[0].Date
	last := d.forecast.Days[len(d.forecast.Days)-1].Date
	left := cli.FormatDate(first)
	right := cli.FormatDate(last)
	gap := len(vals) - len(left) - len(right)
	if gap < 1 {
		gap = 1
	}

	var body strings.Builder
	body.WriteString(components.ThresholdSparkline(vals, dollars(sum.SafetyBuffer), t.Accent, t.Shortfall()))
	body.WriteString("\n")
	body.WriteString(dimStyle.Render(left) + spaceStyle.Render(strings.Repeat(" ", gap)) + dimStyle.Render(right))

	title := fmt.Sprintf("Daily Balance (%dd, low %s)", sum.HorizonDays, cli.FormatMoneyShort(sum.LowestBalance))
	return components.ContentCard(title, body.String(), cw)
}

func (a App) renderMonthsCard(w int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(w)

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	inStyle := lipgloss.NewStyle().Foreground(t.Income()).Background(t.Surface)
	outStyle := lipgloss.NewStyle().Foreground(t.Bill()).Background(t.Surface)

	var body strings.Builder
	body.WriteString(headerStyle.Render(fmt.Sprintf("%-8s %10s %10s %11s", "Month", "In", "Out", "Closing")))
	body.WriteString("\n")
	body.WriteString(mutedStyle.Render(strings.Repeat("─", min(innerW, 42))))
	body.WriteString("\n")

	for _, m := range a.data.months {
		body.WriteString(rowStyle.Render(fmt.Sprintf("%-8s", m.Start.Format("Jan 06"))))
		body.WriteString(inStyle.Render(fmt.Sprintf(" %10s", cli.FormatMoneyShort(m.Income))))
		body.WriteString(outStyle.Render(fmt.Sprintf(" %10s", cli.FormatMoneyShort(m.Bills+m.CardPayments))))
		closing := rowStyle
		if m.LowestBalance < a.data.forecast.Summary.SafetyBuffer {
			closing = lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
		}
		body.WriteString(closing.Render(fmt.Sprintf(" %11s", cli.FormatMoney(m.ClosingBalance))))
		body.WriteString("\n")
	}

	return components.ContentCard("By Month", strings.TrimRight(body.String(), "\n"), w)
}

func (a App) renderItemsCard(w int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(w)

	const limit = 8
	nameW := innerW - 10 - 7 - 2
	if nameW < 10 {
		nameW = 10
	}

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	shareStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface)
	inStyle := lipgloss.NewStyle().Foreground(t.Income()).Background(t.Surface)
	outStyle := lipgloss.NewStyle().Foreground(t.Bill()).Background(t.Surface)

	var body strings.Builder
	body.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %10s %6s", nameW, "Item", "Total", "Share")))
	body.WriteString("\n")
	body.WriteString(mutedStyle.Render(strings.Repeat("─", nameW+18)))
	body.WriteString("\n")

	items := a.data.items
	if len(items) > limit {
		items = items[:limit]
	}
	for _, it := range items {
		style := outStyle
		if it.Kind == model.Income {
			style = inStyle
		}
		body.WriteString(style.Render(fmt.Sprintf("%-*s", nameW, truncStr(it.Name, nameW))))
		body.WriteString(style.Render(fmt.Sprintf(" %10s", cli.FormatMoneyShort(it.Total))))
		body.WriteString(shareStyle.Render(fmt.Sprintf(" %5.1f%%", it.SharePercent)))
		body.WriteString("\n")
	}
	if len(a.data.items) > limit {
		body.WriteString(mutedStyle.Render(fmt.Sprintf("+%d more", len(a.data.items)-limit)))
	}

	return components.ContentCard("Largest Items", strings.TrimRight(body.String(), "\n"), w)
}

// forecastWarnings lists conditions worth flagging, one per line.
func (a App) forecastWarnings() string {
	t := theme.Active
	d := a.data
	sum := d.forecast.Summary

	warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
	errStyle := lipgloss.NewStyle().Foreground(t.Shortfall()).Background(t.Surface)

	var lines []string
	if sum.FirstNegativeDate != nil {
		lines = append(lines, errStyle.Render("Overdrawn on "+cli.FormatDate(*sum.FirstNegativeDate)))
	}
	if sum.DaysBelowBuffer > 0 {
		lines = append(lines, warnStyle.Render(fmt.Sprintf("%d days below the %s buffer", sum.DaysBelowBuffer, cli.FormatMoney(sum.SafetyBuffer))))
	}
	if n := len(d.forecast.Excluded); n > 0 {
		lines = append(lines, warnStyle.Render(fmt.Sprintf("%d items charged to cards are not in the cash projection", n)))
	}
	return strings.Join(lines, "\n")
}
