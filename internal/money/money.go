// Package money holds the fixed-point types shared by every ledger: Money in
// minor currency units and Quantity in thousandths of a unit. Neither type
// ever passes through float64.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MinorUnitDigits is the number of decimal places of the store currency (BRL).
const MinorUnitDigits = 2

// Money is an amount in minor currency units (centavos).
type Money int64

// MaxAmount bounds every amount the ledgers accept or derive
// (R$ 100 billion). Sums of in-range amounts stay far from int64 overflow.
const MaxAmount Money = 10_000_000_000_000

var ErrAmountRange = errors.New("money: amount out of range")

var maxAmountDecimal = decimal.NewFromInt(int64(MaxAmount))

// InRange reports whether |m| <= MaxAmount.
func (m Money) InRange() bool { return m >= -MaxAmount && m <= MaxAmount }

// AddChecked adds o to m and fails with ErrAmountRange when either operand or
// the result leaves the accepted range.
func (m Money) AddChecked(o Money) (Money, error) {
	if !m.InRange() || !o.InRange() {
		return 0, ErrAmountRange
	}
	sum := m + o
	if !sum.InRange() {
		return 0, ErrAmountRange
	}
	return sum, nil
}

func (m Money) Add(o Money) Money { return m + o }
func (m Money) Sub(o Money) Money { return m - o }
func (m Money) Neg() Money        { return -m }

func (m Money) IsZero() bool     { return m == 0 }
func (m Money) IsPositive() bool { return m > 0 }
func (m Money) IsNegative() bool { return m < 0 }

// Int64 returns the raw number of minor units.
func (m Money) Int64() int64 { return int64(m) }

// Decimal returns the amount in major units (5000 -> 50.00).
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -MinorUnitDigits)
}

// String renders the amount in major units with two decimals, e.g. "-12.05".
// Locale formatting is a presentation concern and is not done here.
func (m Money) String() string {
	return m.Decimal().StringFixed(MinorUnitDigits)
}

// Abs returns |m|.
func (m Money) Abs() Money {
	if m < 0 {
		return -m
	}
	return m
}

// Sum adds a list of amounts.
func Sum(amounts ...Money) Money {
	var total Money
	for _, a := range amounts {
		total += a
	}
	return total
}

// FromDecimal converts a major-unit decimal to Money using the given rounding.
func FromDecimal(d decimal.Decimal, mode RoundingMode) Money {
	return Money(mode.round(d.Shift(MinorUnitDigits)).IntPart())
}

// RoundingMode selects how fractional minor units are resolved.
type RoundingMode int

const (
	RoundHalfEven RoundingMode = iota // banker's rounding
	RoundHalfUp                       // half away from zero
)

// ParseRoundingMode accepts "half_even" or "half_up" (empty means half_even).
func ParseRoundingMode(s string) (RoundingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "half_even":
		return RoundHalfEven, nil
	case "half_up":
		return RoundHalfUp, nil
	default:
		return RoundHalfEven, fmt.Errorf("money: unknown rounding mode %q", s)
	}
}

func (r RoundingMode) String() string {
	if r == RoundHalfUp {
		return "half_up"
	}
	return "half_even"
}

func (r RoundingMode) round(d decimal.Decimal) decimal.Decimal {
	if r == RoundHalfUp {
		return d.Round(0)
	}
	return d.RoundBank(0)
}

// LineTotal returns quantity × unitPrice rounded to the nearest minor unit,
// or ErrAmountRange when the product exceeds MaxAmount.
func LineTotal(q Quantity, unitPrice Money, mode RoundingMode) (Money, error) {
	exact := mode.round(q.Decimal().Mul(decimal.NewFromInt(int64(unitPrice))))
	if exact.Abs().GreaterThan(maxAmountDecimal) {
		return 0, ErrAmountRange
	}
	return Money(exact.IntPart()), nil
}

// Average divides total by count with the given rounding; zero count yields 0.
func Average(total Money, count int64, mode RoundingMode) Money {
	if count <= 0 {
		return 0
	}
	exact := decimal.NewFromInt(int64(total)).Div(decimal.NewFromInt(count))
	return Money(mode.round(exact).IntPart())
}
