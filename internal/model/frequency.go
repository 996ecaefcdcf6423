package model

import "strings"

// Frequency is how often a recurring item repeats.
type Frequency string

const (
	OneTime     Frequency = "one_time"
	Weekly      Frequency = "weekly"
	Biweekly    Frequency = "biweekly"
	SemiMonthly Frequency = "semi_monthly"
	Monthly     Frequency = "monthly"
	Quarterly   Frequency = "quarterly"
	Annually    Frequency = "annually"
)

var frequencyAliases = map[string]Frequency{
	"one_time":     OneTime,
	"one-time":     OneTime,
	"onetime":      OneTime,
	"once":         OneTime,
	"weekly":       Weekly,
	"biweekly":     Biweekly,
	"bi-weekly":    Biweekly,
	"fortnightly":  Biweekly,
	"semi_monthly": SemiMonthly,
	"semi-monthly": SemiMonthly,
	"semimonthly":  SemiMonthly,
	"monthly":      Monthly,
	"quarterly":    Quarterly,
	"annually":     Annually,
	"annual":       Annually,
	"yearly":       Annually,
}

// ParseFrequency normalizes a frequency name. Unknown names wrap
// ErrUnresolvableRecurrence.
func ParseFrequency(s string) (Frequency, error) {
	if f, ok := frequencyAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return f, nil
	}
	return "", &RecurrenceError{Frequency: Frequency(s), Reason: "unsupported frequency"}
}

// Valid reports whether f is one of the known frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case OneTime, Weekly, Biweekly, SemiMonthly, Monthly, Quarterly, Annually:
		return true
	}
	return false
}

// Months is the step in months for calendar frequencies, zero otherwise.
func (f Frequency) Months() int {
	switch f {
	case Monthly:
		return 1
	case Quarterly:
		return 3
	case Annually:
		return 12
	}
	return 0
}
