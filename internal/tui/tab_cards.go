package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cashcast/internal/cli"
	"github.com/theirongolddev/cashcast/internal/creditcard"
	"github.com/theirongolddev/cashcast/internal/money"
	"github.com/theirongolddev/cashcast/internal/recurrence"
	"github.com/theirongolddev/cashcast/internal/tui/components"
	"github.com/theirongolddev/cashcast/internal/tui/theme"
)

func (a App) renderCardsTab(cw int) string {
	t := theme.Active
	cards := a.data.cards

	if len(cards) == 0 {
		msg := "No credit card accounts in the ledger."
		return components.ContentCard("Cards", lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render(msg), cw)
	}

	var totalBal, totalLimit, totalMin, totalInterest money.Cents
	for _, p := range cards {
		totalBal += p.Balance
		totalMin += p.MinimumPayment
		totalInterest += p.MonthlyInterest
		if p.HasUtilization {
			totalLimit += p.Limit
		}
	}
	overall, ok := creditcard.Utilization(totalBal, totalLimit)
	utilValue := "n/a"
	var utilTone lipgloss.Color
	if ok {
		utilValue = cli.FormatPercent(overall)
		utilTone = components.ColorForUtilization(overall)
	}

	var b strings.Builder
	metrics := []components.Metric{
		{Label: "Card balances", Value: cli.FormatMoney(totalBal), Delta: fmt.Sprintf("%d cards", len(cards))},
		{Label: "Utilization", Value: utilValue, Delta: "of " + cli.FormatMoneyShort(totalLimit) + " limit", Tone: utilTone},
		{Label: "Minimums due", Value: cli.FormatMoney(totalMin), Delta: "this cycle"},
		{Label: "Interest / month", Value: cli.FormatMoney(totalInterest), Tone: t.Orange},
	}
	b.WriteString(components.MetricCardRow(metrics, cw))
	b.WriteString("\n")

	// Utilization bars
	innerW := components.CardInnerWidth(cw)
	labelW := 0
	for _, p := range cards {
		labelW = max(labelW, len([]rune(p.Name)))
	}
	labelW = min(labelW, 20)
	barW := innerW - labelW - 8
	if barW < 10 {
		barW = 10
	}

	var bars strings.Builder
	for i, p := range cards {
		if i > 0 {
			bars.WriteString("\n")
		}
		bars.WriteString(components.UtilizationBar(p.Name, p.Utilization, p.HasUtilization, labelW, barW))
	}
	b.WriteString(components.ContentCard("Utilization", bars.String(), cw))
	b.WriteString("\n")

	b.WriteString(components.ContentCard("Details", a.renderCardTable(cards, innerW), cw))

	return b.String()
}

func (a App) renderCardTable(cards []creditcard.Profile, innerW int) string {
	t := theme.Active
	today := a.data.today

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	soonStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	fixed := 12 + 8 + 10 + 10 + 16 + 5
	nameW := innerW - fixed
	if nameW < 10 {
		nameW = 10
	}

	var body strings.Builder
	body.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %12s %8s %10s %10s %16s", nameW, "Card", "Balance", "APR", "Minimum", "Interest", "Next due")))
	body.WriteString("\n")
	body.WriteString(mutedStyle.Render(strings.Repeat("─", innerW)))
	body.WriteString("\n")

	for i, p := range cards {
		due := "-"
		dueStyle := rowStyle
		if p.NextDue != nil {
			days := recurrence.DaysBetween(today, *p.NextDue)
			due = fmt.Sprintf("%s (%dd)", p.NextDue.Format("Jan 02"), days)
			if days <= 7 {
				dueStyle = soonStyle
			}
		}
		body.WriteString(rowStyle.Render(fmt.Sprintf("%-*s %12s %8s %10s %10s",
			nameW, truncStr(p.Name, nameW),
			cli.FormatMoney(p.Balance),
			cli.FormatRate(p.APR),
			cli.FormatMoney(p.MinimumPayment),
			cli.FormatMoney(p.MonthlyInterest))))
		body.WriteString(dueStyle.Render(fmt.Sprintf(" %16s", due)))
		if i < len(cards)-1 {
			body.WriteString("\n")
		}
	}
	return body.String()
}
