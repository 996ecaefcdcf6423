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

// calendarState holds the calendar tab state.
type calendarState struct {
	cursor  int
	offset  int  // scroll offset for the day list
	showAll bool // include days with no activity
}

// calendarDays returns the days the calendar lists.
func (a App) calendarDays() []model.ForecastDay {
	if a.data == nil {
		return nil
	}
	if a.cal.showAll {
		return a.data.forecast.Days
	}
	return a.data.active
}

func (a *App) clampCalendar() {
	n := len(a.calendarDays())
	if a.cal.cursor >= n {
		a.cal.cursor = n - 1
	}
	if a.cal.cursor < 0 {
		a.cal.cursor = 0
	}
}

func (a *App) moveCalendar(delta int) {
	a.cal.cursor += delta
	a.clampCalendar()
}

func (a App) updateCalendarKeys(key string) (bool, tea.Model, tea.Cmd) {
	switch key {
	case "j", "down":
		a.moveCalendar(1)
	case "k", "up":
		a.moveCalendar(-1)
	case "g", "home":
		a.cal.cursor = 0
		a.cal.offset = 0
	case "G", "end":
		a.cal.cursor = len(a.calendarDays()) - 1
		a.clampCalendar()
	case "ctrl+d":
		a.moveCalendar(a.halfPage())
	case "ctrl+u":
		a.moveCalendar(-a.halfPage())
	case "a":
		// Keep the selected date when the list changes
		days := a.calendarDays()
		var sel model.ForecastDay
		if a.cal.cursor < len(days) {
			sel = days[a.cal.cursor]
		}
		a.cal.showAll = !a.cal.showAll
		a.cal.cursor = 0
		a.cal.offset = 0
		for i, d := range a.calendarDays() {
			if !d.Date.Before(sel.Date) {
				a.cal.cursor = i
				break
			}
		}
		a.clampCalendar()
	default:
		return false, a, nil
	}
	return true, a, nil
}

func (a App) renderCalendarTab(cw, h int) string {
	t := theme.Active
	days := a.calendarDays()

	if len(days) == 0 {
		msg := "No income or bills fall inside the horizon. Press [a] to list every day."
		return components.ContentCard("Calendar", lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render(msg), cw)
	}

	leftW := cw * 2 / 5
	if leftW < 40 {
		leftW = 40
	}
	rightW := cw - leftW

	leftInner := components.CardInnerWidth(leftW)
	buffer := a.data.forecast.Summary.SafetyBuffer

	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	lowStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
	negStyle := lipgloss.NewStyle().Foreground(t.Shortfall()).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	visible := h - 5 // card border (2) + title (1) + footer hint (2)
	if visible < 5 {
		visible = 5
	}

	offset := a.cal.offset
	if a.cal.cursor < offset {
		offset = a.cal.cursor
	}
	if a.cal.cursor >= offset+visible {
		offset = a.cal.cursor - visible + 1
	}
	end := min(offset+visible, len(days))

	var left strings.Builder
	for i := offset; i < end; i++ {
		d := days[i]
		line := fmt.Sprintf("%-10s %11s %12s", cli.FormatDate(d.Date), cli.FormatDelta(d.Net()), cli.FormatMoney(d.Balance))
		line = truncStr(line, leftInner)

		style := rowStyle
		switch {
		case i == a.cal.cursor:
			style = selectedStyle
		case d.Balance < 0:
			style = negStyle
		case d.Balance < buffer:
			style = lowStyle
		}
		left.WriteString(style.Render(fmt.Sprintf("%-*s", leftInner, line)))
		left.WriteString("\n")
	}
	left.WriteString("\n")
	mode := "activity only"
	if a.cal.showAll {
		mode = "all days"
	}
	left.WriteString(mutedStyle.Render(fmt.Sprintf("%d/%d · %s · [a] toggle", a.cal.cursor+1, len(days), mode)))

	leftCard := components.ContentCard("Days", left.String(), leftW)

	sel := days[a.cal.cursor]
	rightCard := components.ContentCard(sel.Date.Format("Monday, January 2 2006"), a.renderDayDetail(sel, rightW), rightW)

	return components.CardRow([]string{leftCard, rightCard})
}

// renderDayDetail lists one day's flows and where the balance lands.
func (a App) renderDayDetail(d model.ForecastDay, w int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(w)
	buffer := a.data.forecast.Summary.SafetyBuffer

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	inStyle := lipgloss.NewStyle().Foreground(t.Income()).Background(t.Surface)
	outStyle := lipgloss.NewStyle().Foreground(t.Bill()).Background(t.Surface)

	amountW := 12
	nameW := innerW - amountW - 1
	if nameW < 10 {
		nameW = 10
	}

	writeFlows := func(b *strings.Builder, title string, occ []model.Occurrence, style lipgloss.Style) {
		b.WriteString(headerStyle.Render(title))
		b.WriteString("\n")
		if len(occ) == 0 {
			b.WriteString(mutedStyle.Render("  none"))
			b.WriteString("\n")
			return
		}
		for _, o := range occ {
			name := o.Name
			if o.Source == model.FromCardPayment {
				name += " (card payment)"
			}
			b.WriteString(style.Render(fmt.Sprintf("  %-*s %*s", nameW-2, truncStr(name, nameW-2), amountW, cli.FormatDelta(o.Amount))))
			b.WriteString("\n")
		}
	}

	var b strings.Builder
	writeFlows(&b, "Income", d.Income, inStyle)
	b.WriteString("\n")
	writeFlows(&b, "Bills", d.Bills, outStyle)
	b.WriteString("\n")

	b.WriteString(mutedStyle.Render(fmt.Sprintf("%-*s", nameW, "Net")))
	b.WriteString(valueStyle.Render(fmt.Sprintf(" %*s", amountW, cli.FormatDelta(d.Net()))))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%-*s", nameW, "Closing balance")))
	closing := valueStyle
	switch {
	case d.Balance < 0:
		closing = lipgloss.NewStyle().Foreground(t.Shortfall()).Background(t.Surface).Bold(true)
	case d.Balance < buffer:
		closing = lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).Bold(true)
	}
	b.WriteString(closing.Render(fmt.Sprintf(" %*s", amountW, cli.FormatMoney(d.Balance))))

	if d.Balance < buffer {
		b.WriteString("\n\n")
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%s under the %s buffer", cli.FormatMoney(buffer-d.Balance), cli.FormatMoney(buffer))))
	}

	return b.String()
}
