package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidHorizon is returned for a horizon <= 0 or above the maximum.
	ErrInvalidHorizon = errors.New("invalid horizon")
	// ErrNoSpendableAccounts is returned when no cash account funds a projection.
	ErrNoSpendableAccounts = errors.New("no spendable accounts")
	// ErrUnresolvableRecurrence is returned for items that cannot be expanded.
	ErrUnresolvableRecurrence = errors.New("unresolvable recurrence")
)

// HorizonError describes a rejected horizon.
type HorizonError struct {
	Days int
	Max  int
}

func (e *HorizonError) Error() string {
	return fmt.Sprintf("invalid horizon: %d days (allowed 1-%d)", e.Days, e.Max)
}

func (e *HorizonError) Unwrap() error { return ErrInvalidHorizon }

// RecurrenceError names the item and reason an expansion failed.
type RecurrenceError struct {
	ItemID    string
	Frequency Frequency
	Reason    string
}

func (e *RecurrenceError) Error() string {
	if e.ItemID != "" {
		return fmt.Sprintf("unresolvable recurrence for %s (%q): %s", e.ItemID, e.Frequency, e.Reason)
	}
	return fmt.Sprintf("unresolvable recurrence (%q): %s", e.Frequency, e.Reason)
}

func (e *RecurrenceError) Unwrap() error { return ErrUnresolvableRecurrence }

// WarningCode identifies a soft condition attached to a result.
type WarningCode string

const (
	SimulationCapReached WarningCode = "simulation_cap_reached"
	DegenerateAPR        WarningCode = "degenerate_apr"
)

// Warning is a non-fatal annotation. Results carrying warnings are still
// complete; callers decide how to present them.
type Warning struct {
	Code    WarningCode `json:"code"`
	Subject string      `json:"subject,omitempty"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	if w.Subject != "" {
		return fmt.Sprintf("%s: %s", w.Subject, w.Message)
	}
	return w.Message
}
