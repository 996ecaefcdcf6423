// Package recurrence expands recurring items into dated occurrences.
package recurrence

import (
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/theirongolddev/cashcast/internal/model"
)

// SemiMonthlyPolicy picks the two days of a semi-monthly item.
type SemiMonthlyPolicy string

const (
	// FirstAndFifteenth pays on the 1st and 15th of every month.
	FirstAndFifteenth SemiMonthlyPolicy = "first-fifteenth"
	// AnchorPlus15 pays on the anchor's day and fifteen days later. Anchors
	// after the 15th fold back: day 20 pays on the 5th and 20th. The later
	// day is clamped to the month's length.
	AnchorPlus15 SemiMonthlyPolicy = "anchor-plus-15"
)

// ParseSemiMonthlyPolicy accepts the policy names; empty means the default.
func ParseSemiMonthlyPolicy(s string) (SemiMonthlyPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(FirstAndFifteenth), "1-15", "first_fifteenth":
		return FirstAndFifteenth, nil
	case string(AnchorPlus15), "anchor_plus_15", "anchor":
		return AnchorPlus15, nil
	}
	return "", fmt.Errorf("unknown semi-monthly policy %q", s)
}

// Options tune expansion.
type Options struct {
	SemiMonthly SemiMonthlyPolicy
}

// Sequence is a finite, ascending, single-use stream of dates. Once
// drained it stays drained.
type Sequence struct {
	next func() (time.Time, bool)
	done bool
}

// Next returns the next date, or false when the sequence is exhausted.
func (s *Sequence) Next() (time.Time, bool) {
	if s.done {
		return time.Time{}, false
	}
	d, ok := s.next()
	if !ok {
		s.done = true
	}
	return d, ok
}

// All ranges over the remaining dates.
func (s *Sequence) All() iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		for {
			d, ok := s.Next()
			if !ok || !yield(d) {
				return
			}
		}
	}
}

// Collect drains the sequence.
func Collect(s *Sequence) []time.Time {
	var out []time.Time
	for d := range s.All() {
		out = append(out, d)
	}
	return out
}

func empty() *Sequence {
	return &Sequence{done: true, next: func() (time.Time, bool) { return time.Time{}, false }}
}

// Expand returns the occurrences of an item anchored at anchor with
// frequency freq that fall within [start, end], inclusive. The anchor is
// itself an occurrence; nothing before it is generated.
func Expand(anchor time.Time, freq model.Frequency, start, end time.Time, opts Options) (*Sequence, error) {
	if anchor.IsZero() {
		return nil, &model.RecurrenceError{Frequency: freq, Reason: "missing anchor date"}
	}
	if !freq.Valid() {
		return nil, &model.RecurrenceError{Frequency: freq, Reason: "unsupported frequency"}
	}
	anchor, start, end = Date(anchor), Date(start), Date(end)
	if anchor.After(end) || start.After(end) {
		return empty(), nil
	}

	switch freq {
	case model.OneTime:
		return oneTime(anchor, start), nil
	case model.Weekly:
		return everyDays(anchor, 7, start, end), nil
	case model.Biweekly:
		return everyDays(anchor, 14, start, end), nil
	case model.SemiMonthly:
		policy := opts.SemiMonthly
		if policy == "" {
			policy = FirstAndFifteenth
		}
		return semiMonthly(anchor, policy, start, end)
	default:
		return everyMonths(anchor, freq.Months(), start, end), nil
	}
}

// ExpandItem expands a recurring item, tagging errors with its ID.
func ExpandItem(item model.RecurringItem, start, end time.Time, opts Options) ([]time.Time, error) {
	seq, err := Expand(item.Anchor, item.Frequency, start, end, opts)
	if err != nil {
		var re *model.RecurrenceError
		if errors.As(err, &re) {
			re.ItemID = item.ID
		}
		return nil, err
	}
	return Collect(seq), nil
}

func oneTime(anchor, start time.Time) *Sequence {
	if anchor.Before(start) {
		return empty()
	}
	sent := false
	return &Sequence{next: func() (time.Time, bool) {
		if sent {
			return time.Time{}, false
		}
		sent = true
		return anchor, true
	}}
}

func everyDays(anchor time.Time, step int, start, end time.Time) *Sequence {
	cur := anchor
	if cur.Before(start) {
		skip := (DaysBetween(anchor, start) + step - 1) / step
		cur = anchor.AddDate(0, 0, skip*step)
	}
	return &Sequence{next: func() (time.Time, bool) {
		if cur.After(end) {
			return time.Time{}, false
		}
		d := cur
		cur = cur.AddDate(0, 0, step)
		return d, true
	}}
}

func everyMonths(anchor time.Time, step int, start, end time.Time) *Sequence {
	day := anchor.Day()
	i := 0
	if anchor.Before(start) {
		// Start one step early; the clamped date may still land before start.
		i = MonthsBetween(anchor, start)/step - 1
		if i < 0 {
			i = 0
		}
		for AddMonthsClamped(anchor, i*step, day).Before(start) {
			i++
		}
	}
	return &Sequence{next: func() (time.Time, bool) {
		d := AddMonthsClamped(anchor, i*step, day)
		if d.After(end) {
			return time.Time{}, false
		}
		i++
		return d, true
	}}
}

func semiMonthly(anchor time.Time, policy SemiMonthlyPolicy, start, end time.Time) (*Sequence, error) {
	low, high := 1, 15
	switch policy {
	case FirstAndFifteenth:
	case AnchorPlus15:
		low = anchor.Day()
		if low > 15 {
			low -= 15
		}
		high = low + 15
	default:
		return nil, &model.RecurrenceError{Frequency: model.SemiMonthly, Reason: fmt.Sprintf("unknown semi-monthly policy %q", policy)}
	}

	from := anchor
	if start.After(from) {
		from = start
	}
	month := OnDay(from, 1)
	var pending []time.Time
	return &Sequence{next: func() (time.Time, bool) {
		for len(pending) == 0 {
			if month.After(end) {
				return time.Time{}, false
			}
			for _, day := range [2]int{low, high} {
				d := OnDay(month, day)
				if !d.Before(from) && !d.After(end) {
					pending = append(pending, d)
				}
			}
			month = AddMonthsClamped(month, 1, 1)
		}
		d := pending[0]
		pending = pending[1:]
		return d, true
	}}, nil
}
