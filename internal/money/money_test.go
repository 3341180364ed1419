package money_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/Jottaaa12/pdv-web-admin/internal/money"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineTotal(t *testing.T, q money.Quantity, price money.Money, mode money.RoundingMode) money.Money {
	t.Helper()
	total, err := money.LineTotal(q, price, mode)
	require.NoError(t, err)
	return total
}

func TestLineTotal_UnitQuantity(t *testing.T) {
	assert.Equal(t, money.Money(7500), lineTotal(t, money.Units(3), 2500, money.RoundHalfEven))
}

func TestLineTotal_WeightHalfEven(t *testing.T) {
	// 0.125 kg × 1.00 = 12.5 centavos -> 12 (even)
	assert.Equal(t, money.Money(12), lineTotal(t, 125, 100, money.RoundHalfEven))
	// 0.375 kg × 1.00 = 37.5 centavos -> 38 (even)
	assert.Equal(t, money.Money(38), lineTotal(t, 375, 100, money.RoundHalfEven))
}

func TestLineTotal_WeightHalfUp(t *testing.T) {
	assert.Equal(t, money.Money(13), lineTotal(t, 125, 100, money.RoundHalfUp))
}

func TestLineTotal_Exact(t *testing.T) {
	// 1.250 kg × R$ 39.90 = R$ 49.875 -> 4988 (half-even rounds .5 to even 8)
	assert.Equal(t, money.Money(4988), lineTotal(t, 1250, 3990, money.RoundHalfEven))
}

func TestAverage(t *testing.T) {
	assert.Equal(t, money.Money(0), money.Average(1000, 0, money.RoundHalfEven))
	assert.Equal(t, money.Money(333), money.Average(1000, 3, money.RoundHalfEven))
	// 25 / 2 = 12.5 -> 12 half-even, 13 half-up
	assert.Equal(t, money.Money(12), money.Average(25, 2, money.RoundHalfEven))
	assert.Equal(t, money.Money(13), money.Average(25, 2, money.RoundHalfUp))
}

func TestMoneyString(t *testing.T) {
	assert.Equal(t, "50.00", money.Money(5000).String())
	assert.Equal(t, "-0.05", money.Money(-5).String())
	assert.Equal(t, money.Money(5), money.Money(-5).Abs())
	assert.Equal(t, money.Money(60), money.Sum(10, 20, 30))
}

func TestParseRoundingMode(t *testing.T) {
	m, err := money.ParseRoundingMode("HALF_UP")
	require.NoError(t, err)
	assert.Equal(t, money.RoundHalfUp, m)

	m, err = money.ParseRoundingMode("")
	require.NoError(t, err)
	assert.Equal(t, money.RoundHalfEven, m)

	_, err = money.ParseRoundingMode("ceiling")
	assert.Error(t, err)
}

func TestQuantity_Parse(t *testing.T) {
	q, err := money.ParseQuantity("1.25")
	require.NoError(t, err)
	assert.Equal(t, money.Quantity(1250), q)
	assert.False(t, q.IsWhole())

	q, err = money.ParseQuantity("2")
	require.NoError(t, err)
	assert.Equal(t, money.Units(2), q)
	assert.True(t, q.IsWhole())

	_, err = money.ParseQuantity("0.0001")
	assert.ErrorIs(t, err, money.ErrQuantityPrecision)

	_, err = money.ParseQuantity("abc")
	assert.Error(t, err)
}

func TestQuantity_JSON(t *testing.T) {
	var body struct {
		Quantity money.Quantity `json:"quantity"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"quantity": 0.5}`), &body))
	assert.Equal(t, money.Quantity(500), body.Quantity)

	require.NoError(t, json.Unmarshal([]byte(`{"quantity": "3"}`), &body))
	assert.Equal(t, money.Units(3), body.Quantity)

	out, err := json.Marshal(body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"quantity": 3}`, string(out))
}

func TestFromDecimal(t *testing.T) {
	d := money.Money(1999).Decimal()
	assert.Equal(t, "19.99", d.StringFixed(2))
	assert.Equal(t, money.Money(1999), money.FromDecimal(d, money.RoundHalfEven))
}

func TestLineTotal_OutOfRange(t *testing.T) {
	_, err := money.LineTotal(money.MaxQuantity, money.MaxAmount, money.RoundHalfEven)
	assert.ErrorIs(t, err, money.ErrAmountRange)
}

func TestQuantity_RejectsValuesPastRange(t *testing.T) {
	// These would wrap to small or negative int64 values if not bounded.
	for _, raw := range []string{`"18446744073709551.617"`, `"9300000000000000"`, `-1000000000.001`} {
		var q money.Quantity
		err := json.Unmarshal([]byte(raw), &q)
		assert.ErrorIs(t, err, money.ErrQuantityRange, raw)
		assert.Zero(t, q, raw)
	}

	q, err := money.ParseQuantity("1000000000")
	require.NoError(t, err)
	assert.Equal(t, money.MaxQuantity, q)
}

func TestMoney_AddChecked(t *testing.T) {
	sum, err := money.Money(100).AddChecked(250)
	require.NoError(t, err)
	assert.Equal(t, money.Money(350), sum)

	_, err = money.MaxAmount.AddChecked(1)
	assert.ErrorIs(t, err, money.ErrAmountRange)

	// Operands near int64 max must not wrap into a plausible total.
	_, err = money.Money(math.MaxInt64 - 10).AddChecked(money.Money(math.MaxInt64 - 10))
	assert.ErrorIs(t, err, money.ErrAmountRange)
}
