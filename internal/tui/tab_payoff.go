package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cashcast/internal/cli"
	"github.com/theirongolddev/cashcast/internal/model"
	"github.com/theirongolddev/cashcast/internal/tui/components"
	"github.com/theirongolddev/cashcast/internal/tui/theme"
)

// payoffState holds the payoff tab state.
type payoffState struct {
	strategy model.Strategy // schedule shown; empty follows the recommendation
	scroll   int            // first schedule month shown
}

// shownStrategy is the strategy whose schedule the tab displays.
func (a App) shownStrategy() model.Strategy {
	if a.pay.strategy != "" {
		return a.pay.strategy
	}
	if a.comparison.Recommended != "" {
		return a.comparison.Recommended
	}
	return model.Avalanche
}

func (a App) shownResult() model.PayoffResult {
	if a.shownStrategy() == model.Snowball {
		return a.comparison.Snowball
	}
	return a.comparison.Avalanche
}

func (a *App) scrollPayoff(delta int) {
	a.pay.scroll += delta
	maxScroll := len(a.shownResult().Schedule) - 1
	if a.pay.scroll > maxScroll {
		a.pay.scroll = maxScroll
	}
	if a.pay.scroll < 0 {
		a.pay.scroll = 0
	}
}

func (a App) updatePayoffKeys(key string) (bool, tea.Model, tea.Cmd) {
	switch key {
	case "s":
		if a.shownStrategy() == model.Avalanche {
			a.pay.strategy = model.Snowball
		} else {
			a.pay.strategy = model.Avalanche
		}
		a.scrollPayoff(0)
	case "+", "=":
		a.setExtra(a.extra + extraStep)
	case "-", "_":
		a.setExtra(a.extra - extraStep)
	case "0":
		if a.data != nil {
			a.setExtra(a.data.settings.Payoff.ExtraPayment)
		}
	case "j", "down":
		a.scrollPayoff(1)
	case "k", "up":
		a.scrollPayoff(-1)
	case "ctrl+d":
		a.scrollPayoff(a.halfPage())
	case "ctrl+u":
		a.scrollPayoff(-a.halfPage())
	case "g", "home":
		a.pay.scroll = 0
	case "G", "end":
		a.scrollPayoff(len(a.shownResult().Schedule))
	default:
		return false, a, nil
	}
	return true, a, nil
}

func (a App) renderPayoffTab(cw, h int) string {
	t := theme.Active
	cmp := a.comparison

	if len(a.data.debts) == 0 {
		msg := "No debts in the ledger. Add [[debts]] or give a credit card a balance."
		return components.ContentCard("Payoff", lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render(msg), cw)
	}

	var b strings.Builder

	// Row 1: headline numbers
	rec := cmp.Avalanche
	if cmp.Recommended == model.Snowball {
		rec = cmp.Snowball
	}
	debtFree := "not within cap"
	if rec.DebtFreeDate != nil {
		debtFree = rec.DebtFreeDate.Format("Jan 2006")
	}
	savedTone := t.TextPrimary
	if cmp.InterestSaved > 0 {
		savedTone = t.GreenBright
	}

	metrics := []components.Metric{
		{Label: "Total debt", Value: cli.FormatMoney(a.data.totalDebt()), Delta: fmt.Sprintf("%d debts", len(a.data.debts))},
		{Label: "Extra / month", Value: cli.FormatMoney(a.extra), Delta: "[+/-] adjust", Tone: t.AccentBright},
		{Label: "Recommended", Value: titleCase(string(cmp.Recommended)), Delta: "debt-free " + debtFree},
		{Label: "Avalanche saves", Value: cli.FormatMoney(cmp.InterestSaved), Delta: fmt.Sprintf("%+d months", cmp.MonthsSaved), Tone: savedTone},
	}
	b.WriteString(components.MetricCardRow(metrics, cw))
	b.WriteString("\n")

	// Row 2: side-by-side strategy summaries
	halves := components.LayoutRow(cw, 2)
	b.WriteString(components.CardRow([]string{
		a.renderStrategyCard(cmp.Snowball, halves[0]),
		a.renderStrategyCard(cmp.Avalanche, halves[1]),
	}))
	b.WriteString("\n")

	// Row 3: balance over time + schedule for the shown strategy
	shown := a.shownResult()
	used := lipgloss.Height(b.String())
	b.WriteString(a.renderScheduleCard(shown, cw, h-used))

	return b.String()
}

func (a App) renderStrategyCard(r model.PayoffResult, w int) string {
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	months := cli.FormatMonths(r.TotalMonths)
	if r.CapReached {
		months += " (cap)"
	}
	debtFree := "n/a"
	if r.DebtFreeDate != nil {
		debtFree = r.DebtFreeDate.Format("Jan 2006")
	}

	rows := [][2]string{
		{"Months", months},
		{"Debt-free", debtFree},
		{"Interest", cli.FormatMoney(r.TotalInterest)},
		{"Total paid", cli.FormatMoney(r.TotalPaid)},
		{"Order", strings.Join(r.PayoffOrder(), " → ")},
	}

	innerW := components.CardInnerWidth(w)
	var body strings.Builder
	for _, row := range rows {
		body.WriteString(labelStyle.Render(fmt.Sprintf("%-11s", row[0])))
		body.WriteString(valueStyle.Render(truncStr(row[1], innerW-11)))
		body.WriteString("\n")
	}
	for _, warn := range r.Warnings {
		body.WriteString(warnStyle.Render(truncStr(warn.Message, innerW)))
		body.WriteString("\n")
	}
	if r.CapReached {
		body.WriteString(warnStyle.Render(fmt.Sprintf("%s still owed at the cap", cli.FormatMoney(r.RemainingDebt))))
		body.WriteString("\n")
	}

	title := titleCase(string(r.Strategy))
	if r.Strategy == a.shownStrategy() {
		title += " ◂"
	}
	return components.ContentCard(title, strings.TrimRight(body.String(), "\n"), w)
}

func (a App) renderScheduleCard(r model.PayoffResult, cw, h int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(cw)

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	doneStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)

	var body strings.Builder

	// Remaining debt: a bar chart when there is room, a sparkline otherwise.
	chartLines := 0
	if len(r.Schedule) > 1 {
		vals := make([]float64, len(r.Schedule))
		labels := make([]string, len(r.Schedule))
		for i, m := range r.Schedule {
			vals[i] = dollars(m.TotalBalance)
			labels[i] = m.Date.Format("Jan")
		}
		var chart string
		if h >= 24 {
			chart = components.BarChart(vals, labels, t.Blue, innerW, 6)
		} else {
			chart = components.Sparkline(downsampleMin(vals, innerW), t.Blue)
		}
		body.WriteString(chart)
		body.WriteString("\n\n")
		chartLines = lipgloss.Height(chart) + 1
	}

	body.WriteString(headerStyle.Render(fmt.Sprintf("%-5s %-9s %11s %10s %12s  %s", "Month", "Date", "Payment", "Interest", "Remaining", "Paid off")))
	body.WriteString("\n")

	visible := h - 6 - chartLines // card chrome + header + hint
	if visible < 3 {
		visible = 3
	}
	start := min(a.pay.scroll, max(0, len(r.Schedule)-1))
	end := min(start+visible, len(r.Schedule))

	for _, m := range r.Schedule[start:end] {
		var paidOff []string
		for _, p := range m.Payments {
			if p.PaidOff {
				paidOff = append(paidOff, p.Name)
			}
		}
		line := fmt.Sprintf("%-5d %-9s %11s %10s %12s  ",
			m.Month, m.Date.Format("Jan 2006"),
			cli.FormatMoney(m.TotalPayment), cli.FormatMoney(m.TotalInterest), cli.FormatMoney(m.TotalBalance))
		body.WriteString(rowStyle.Render(line))
		body.WriteString(doneStyle.Render(truncStr(strings.Join(paidOff, ", "), max(0, innerW-lipgloss.Width(line)))))
		body.WriteString("\n")
	}
	body.WriteString(mutedStyle.Render(fmt.Sprintf("months %d-%d of %d · [j/k] scroll · [s] switch strategy", start+1, end, len(r.Schedule))))

	title := fmt.Sprintf("%s Schedule (%s extra)", titleCase(string(r.Strategy)), cli.FormatMoney(r.ExtraPayment))
	return components.ContentCard(title, body.String(), cw)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
