package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cashcast/internal/money"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   money.Cents
		want string
	}{
		{0, "$0.00"},
		{5, "$0.05"},
		{123456, "$1,234.56"},
		{-5000, "-$50.00"},
		{100000000, "$1,000,000.00"},
	}
	for _, tt := range tests {
		if got := FormatMoney(tt.in); got != tt.want {
			t.Errorf("FormatMoney(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatMoneyShort(t *testing.T) {
	tests := []struct {
		in   money.Cents
		want string
	}{
		{1999, "$19.99"},
		{98765, "$988"},
		{1234567, "$12.3K"},
		{123456789, "$1.2M"},
		{-1234567, "-$12.3K"},
	}
	for _, tt := range tests {
		if got := FormatMoneyShort(tt.in); got != tt.want {
			t.Errorf("FormatMoneyShort(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatDelta(t *testing.T) {
	if got := FormatDelta(2500); got != "+$25.00" {
		t.Errorf("FormatDelta(2500) = %q", got)
	}
	if got := FormatDelta(-2500); got != "-$25.00" {
		t.Errorf("FormatDelta(-2500) = %q", got)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-1234, "-1,234"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatMonths(t *testing.T) {
	tests := map[int]string{0: "0m", 8: "8m", 12: "1y", 24: "2y", 27: "2y 3m"}
	for in, want := range tests {
		if got := FormatMonths(in); got != want {
			t.Errorf("FormatMonths(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatRateAndDate(t *testing.T) {
	if got := FormatRate(decimal.RequireFromString("24.9")); got != "24.90%" {
		t.Errorf("FormatRate = %q", got)
	}
	d := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	if got := FormatDate(d); got != "Mon Jan 06" {
		t.Errorf("FormatDate = %q", got)
	}
}

func TestRenderSparklineNegative(t *testing.T) {
	got := []rune(RenderSparkline([]float64{-100, 0, 100}))
	if len(got) != 3 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0] != '▁' || got[2] != '█' {
		t.Errorf("sparkline = %q, want lowest then highest block", string(got))
	}
	flat := RenderSparkline([]float64{5, 5})
	if flat != "▁▁" {
		t.Errorf("flat sparkline = %q", flat)
	}
}

func TestRenderTableAlignsStyledCells(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Date", "Balance"},
		Rows: [][]string{
			{"Jan 06", RenderBalance(-5000, 0)},
			{"Jan 07", "$1,000.00"},
		},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	width := lipgloss.Width(lines[0])
	for i, line := range lines {
		if w := lipgloss.Width(line); w != width {
			t.Errorf("line %d width %d, want %d", i, w, width)
		}
	}
}

func TestRenderProgressBar(t *testing.T) {
	if got := RenderProgressBar(1, 0, 10); got != "" {
		t.Errorf("zero total = %q, want empty", got)
	}
	got := RenderProgressBar(5, 10, 10)
	if !strings.Contains(got, "█████░░░░░") || !strings.HasSuffix(got, "5/10") {
		t.Errorf("RenderProgressBar(5, 10, 10) = %q", got)
	}
	if over := RenderProgressBar(20, 10, 4); !strings.Contains(over, "████") {
		t.Errorf("overfull bar = %q, want clamped to full", over)
	}
}

func TestRenderHorizontalBar(t *testing.T) {
	got := RenderHorizontalBar("Visa", 50, 100, 10)
	if !strings.Contains(got, "Visa") || strings.Count(got, "█") != 5 {
		t.Errorf("half bar = %q, want label and 5 blocks", got)
	}
	if got := RenderHorizontalBar("Empty", 10, 0, 10); strings.Contains(got, "█") {
		t.Errorf("zero max = %q, want label only", got)
	}
}
