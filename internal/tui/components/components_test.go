package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/theirongolddev/cashcast/internal/tui/theme"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
	theme.SetActive("flexoki-dark")
}

func TestLayoutRowSumsToTotal(t *testing.T) {
	for _, tc := range []struct{ total, n int }{{100, 3}, {81, 4}, {7, 7}, {10, 1}} {
		sum := 0
		for _, w := range LayoutRow(tc.total, tc.n) {
			sum += w
		}
		if sum != tc.total {
			t.Errorf("LayoutRow(%d, %d) sums to %d", tc.total, tc.n, sum)
		}
	}
	if LayoutRow(10, 0) != nil {
		t.Error("LayoutRow with n=0 should be nil")
	}
}

func TestCardRowBackgroundFill(t *testing.T) {
	shortCard := ContentCard("Short", "Content", 22)
	tallCard := ContentCard("Tall", "Line 1\nLine 2\nLine 3\nLine 4\nLine 5", 22)

	shortLines := lipgloss.Height(shortCard)
	tallLines := lipgloss.Height(tallCard)
	if shortLines >= tallLines {
		t.Fatal("test setup: short card should be shorter than tall card")
	}

	lines := strings.Split(CardRow([]string{tallCard, shortCard}), "\n")
	if len(lines) != tallLines {
		t.Fatalf("joined height = %d, want %d", len(lines), tallLines)
	}

	for i := shortLines; i < len(lines); i++ {
		if !strings.Contains(lines[i], "\x1b[") {
			t.Errorf("padding line %d has no ANSI styling: %q", i, lines[i])
		}
	}
}

func TestCardRowWidthConsistency(t *testing.T) {
	shortCard := ContentCard("Short", "A", 30)
	tallCard := ContentCard("Tall", "A\nB\nC\nD\nE\nF", 20)

	lines := strings.Split(CardRow([]string{tallCard, shortCard}), "\n")
	for i, line := range lines {
		if w := lipgloss.Width(line); w != 50 {
			t.Errorf("line %d width = %d, want 50", i, w)
		}
	}
}

func TestMetricCardRowWidth(t *testing.T) {
	row := MetricCardRow([]Metric{
		{Label: "Ending", Value: "$1,200.00"},
		{Label: "Lowest", Value: "-$40.00", Tone: theme.Active.Red},
		{Label: "Safe", Value: "$0.00", Delta: "14d window"},
	}, 90)
	for i, line := range strings.Split(row, "\n") {
		if w := lipgloss.Width(line); w != 90 {
			t.Errorf("line %d width = %d, want 90", i, w)
		}
	}
}

func TestSparklineHandlesNegatives(t *testing.T) {
	got := stripANSI(Sparkline([]float64{-500, 0, 500}, theme.Active.Accent))
	if got != "▁▄█" {
		t.Fatalf("Sparkline = %q, want %q", got, "▁▄█")
	}

	flat := stripANSI(Sparkline([]float64{-3, -3, -3}, theme.Active.Accent))
	if flat != "▅▅▅" {
		t.Fatalf("flat Sparkline = %q, want %q", flat, "▅▅▅")
	}
}

func TestThresholdSparklineSplitsRuns(t *testing.T) {
	plain := Sparkline([]float64{1, 2, 3, 4}, theme.Active.Accent)
	split := ThresholdSparkline([]float64{1, 2, 3, 4}, 2.5, theme.Active.Accent, theme.Active.Red)
	if stripANSI(plain) != stripANSI(split) {
		t.Fatalf("glyphs differ: %q vs %q", stripANSI(plain), stripANSI(split))
	}
	if strings.Count(split, "\x1b[0m") <= strings.Count(plain, "\x1b[0m") {
		t.Fatal("expected a separately styled run below the threshold")
	}
}

func TestBarChartIgnoresNegatives(t *testing.T) {
	out := BarChart([]float64{-100, 50, 100}, []string{"a", "b", "c"}, theme.Active.Blue, 40, 6)
	if out == "" {
		t.Fatal("empty chart")
	}
	if !strings.Contains(stripANSI(out), "└") {
		t.Fatal("chart missing x-axis")
	}
}

func TestChartTickStep(t *testing.T) {
	tests := []struct {
		max  float64
		want float64
	}{
		{0, 1},
		{10, 2},
		{100, 20},
		{450, 50},
		{1200, 200},
	}
	for _, tt := range tests {
		if got := chartTickStep(tt.max); got != tt.want {
			t.Errorf("chartTickStep(%v) = %v, want %v", tt.max, got, tt.want)
		}
	}
}

func TestTabVisualWidth(t *testing.T) {
	for _, tab := range Tabs {
		if got, want := TabVisualWidth(tab, true), len(tab.Name)+2; got != want {
			t.Errorf("%s active width = %d, want %d", tab.Name, got, want)
		}
		want := len(tab.Name) + 2
		if tab.KeyPos < 0 {
			want += 3
		}
		if got := TabVisualWidth(tab, false); got != want {
			t.Errorf("%s inactive width = %d, want %d", tab.Name, got, want)
		}
	}
	if TabIdxByKey('p') != 2 || TabIdxByKey('z') != -1 {
		t.Fatal("TabIdxByKey mismatch")
	}
}

func TestUtilizationBarUnavailable(t *testing.T) {
	out := stripANSI(UtilizationBar("Visa", 0, false, 8, 10))
	if !strings.Contains(out, "n/a") {
		t.Fatalf("unavailable bar = %q", out)
	}
	if ColorForUtilization(80) != theme.Active.Red || ColorForUtilization(10) != theme.Active.Green {
		t.Fatal("utilization colors do not follow the status bands")
	}
}

func stripANSI(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEsc = false
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
