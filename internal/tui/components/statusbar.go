package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cashcast/internal/tui/theme"
)

// RenderStatusBar renders the bottom status bar. source names where the
// ledger came from; dataAge is shown on the right.
func RenderStatusBar(width int, source, dataAge string, refreshing bool) string {
	t := theme.Active

	barStyle := lipgloss.NewStyle().Background(t.Surface)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	left := barStyle.Render(" ") +
		keyStyle.Render("[?]") + mutedStyle.Render("help ") +
		keyStyle.Render("[r]") + mutedStyle.Render("efresh ") +
		keyStyle.Render("[q]") + mutedStyle.Render("uit")

	right := ""
	if source != "" {
		right += dimStyle.Render(source) + barStyle.Render("  ")
	}
	switch {
	case refreshing:
		right += keyStyle.Render("refreshing…")
	case dataAge != "":
		right += mutedStyle.Render(dataAge)
	}
	right += barStyle.Render(" ")

	// Drop the source before the keys when space is tight
	if lipgloss.Width(left)+lipgloss.Width(right) > width && source != "" {
		right = mutedStyle.Render(dataAge) + barStyle.Render(" ")
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}

	return left + barStyle.Render(strings.Repeat(" ", padding)) + right
}
