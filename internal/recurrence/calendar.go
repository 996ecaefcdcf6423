package recurrence

import "time"

// Date truncates t to its calendar date at midnight UTC. All simulator
// dates are civil dates in this form.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Civil builds a civil date.
func Civil(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysIn returns the number of days in the month.
func DaysIn(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// OnDay returns the date in t's month on the given day, clamped to the
// last day of that month.
func OnDay(t time.Time, day int) time.Time {
	y, m, _ := t.Date()
	return Civil(y, m, clampDay(y, m, day))
}

// AddMonthsClamped steps t by n calendar months and places the result on
// day, clamped to the month's length. Stepping always from the same anchor
// with the anchor's day avoids drift: Jan 31 +1 is Feb 28 (or 29), +2 is Mar 31.
func AddMonthsClamped(t time.Time, n, day int) time.Time {
	y, m, _ := t.Date()
	total := int(m) - 1 + n
	y += floorDiv(total, 12)
	m = time.Month(total - floorDiv(total, 12)*12 + 1)
	return Civil(y, m, clampDay(y, m, day))
}

// DaysBetween returns whole days from a to b for civil dates. It counts
// from Unix seconds so spans past time.Duration's ~292 years stay exact.
func DaysBetween(a, b time.Time) int {
	return int((Date(b).Unix() - Date(a).Unix()) / 86400)
}

// MonthsBetween counts calendar month boundaries from a to b.
func MonthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

func clampDay(y int, m time.Month, day int) int {
	if day < 1 {
		return 1
	}
	if last := DaysIn(y, m); day > last {
		return last
	}
	return day
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
