// Package money holds integer-cent amounts and the decimal math used on them.
package money

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Cents is an amount in the smallest currency unit.
type Cents int64

// MaxCents is the largest representable amount. Decimal results beyond it
// saturate instead of wrapping.
const MaxCents Cents = math.MaxInt64

var maxCentsDecimal = decimal.NewFromInt(math.MaxInt64)

var hundred = decimal.NewFromInt(100)

// FromDollars returns whole dollars as Cents.
func FromDollars(d int64) Cents {
	return Cents(d * 100)
}

// FromDecimal rounds a major-unit decimal to cents, half away from zero.
func FromDecimal(d decimal.Decimal) Cents {
	return saturate(d.Shift(2).Round(0))
}

// Parse reads amounts like "1200", "-45.5", "$1,234.56".
func Parse(s string) (Cents, error) {
	clean := strings.TrimSpace(s)
	clean = strings.ReplaceAll(clean, ",", "")
	clean = strings.ReplaceAll(clean, "$", "")
	if clean == "" {
		return 0, fmt.Errorf("parsing amount %q: empty", s)
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return FromDecimal(d), nil
}

// MustParse is Parse for constants and tests.
func MustParse(s string) Cents {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Decimal returns the amount in major units.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// String formats as a plain two-place decimal, e.g. "-12.50".
func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

// Abs returns the magnitude.
func (c Cents) Abs() Cents {
	if c < 0 {
		return -c
	}
	return c
}

// Percent returns pct percent of c, rounded to the cent.
func (c Cents) Percent(pct decimal.Decimal) Cents {
	return saturate(decimal.NewFromInt(int64(c)).Mul(pct).Div(hundred).Round(0))
}

// MonthlyInterest returns one month of interest at an annual percentage rate.
func (c Cents) MonthlyInterest(apr decimal.Decimal) Cents {
	if apr.Sign() <= 0 || c <= 0 {
		return 0
	}
	monthly := decimal.NewFromInt(int64(c)).Mul(apr).Div(hundred).Div(decimal.NewFromInt(12))
	return saturate(monthly.Round(0))
}

// saturate converts a whole decimal to Cents, clamping to the int64 range.
func saturate(d decimal.Decimal) Cents {
	switch {
	case d.GreaterThan(maxCentsDecimal):
		return MaxCents
	case d.LessThan(maxCentsDecimal.Neg()):
		return -MaxCents
	}
	return Cents(d.IntPart())
}

// Min returns the smaller amount.
func Min(a, b Cents) Cents {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger amount.
func Max(a, b Cents) Cents {
	if a > b {
		return a
	}
	return b
}
