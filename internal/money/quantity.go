package money

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// QuantityScale is the number of Quantity units in one whole unit.
const QuantityScale = 1000

const quantityDigits = 3

// MaxQuantity bounds parsed quantities (one billion whole units).
const MaxQuantity Quantity = 1_000_000_000 * QuantityScale

var (
	ErrQuantityPrecision = errors.New("money: quantity supports at most 3 decimal places")
	ErrQuantityRange     = errors.New("money: quantity out of range")
)

var maxQuantityDecimal = decimal.NewFromInt(int64(MaxQuantity))

// Quantity is an item count or weight in thousandths (1.250 kg = 1250).
// Unit-sold products always carry multiples of QuantityScale.
type Quantity int64

// Units builds a whole-unit quantity (Units(2) == 2000).
func Units(n int64) Quantity { return Quantity(n * QuantityScale) }

func (q Quantity) Add(o Quantity) Quantity { return q + o }
func (q Quantity) Sub(o Quantity) Quantity { return q - o }

func (q Quantity) IsPositive() bool { return q > 0 }
func (q Quantity) IsNegative() bool { return q < 0 }

// IsWhole reports whether q has no fractional part.
func (q Quantity) IsWhole() bool { return q%QuantityScale == 0 }

// Decimal returns q in whole units (1250 -> 1.25).
func (q Quantity) Decimal() decimal.Decimal {
	return decimal.New(int64(q), -quantityDigits)
}

func (q Quantity) String() string { return q.Decimal().String() }

// ParseQuantity parses a decimal string such as "1.25". More than three
// decimal places is an error rather than a silent rounding.
func ParseQuantity(s string) (Quantity, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("money: invalid quantity %q: %w", s, err)
	}
	return quantityFromDecimal(d)
}

func quantityFromDecimal(d decimal.Decimal) (Quantity, error) {
	scaled := d.Shift(quantityDigits)
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, ErrQuantityPrecision
	}
	// IntPart wraps past int64, so the bound is checked on the decimal.
	if scaled.Abs().GreaterThan(maxQuantityDecimal) {
		return 0, ErrQuantityRange
	}
	return Quantity(scaled.IntPart()), nil
}

// MarshalJSON writes the quantity as a JSON number in whole units.
func (q Quantity) MarshalJSON() ([]byte, error) {
	return []byte(q.Decimal().String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (q *Quantity) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if bytes.Equal(b, []byte("null")) || len(b) == 0 {
		return nil
	}
	parsed, err := ParseQuantity(string(b))
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}
