package types_test

import (
	"math"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rai/bot-order-bridge/modules/shared/types"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{in: "45.50", want: 4550},
		{in: "45,50 CHF", want: 4550},
		{in: "CHF 1'200.00", want: 120000},
		{in: "1,200.50", want: 120050},
		{in: "12", want: 1200},
		{in: "9.999", want: 1000},
		{in: "1.234,50 CHF", want: 123450},
		{in: "1,234.50", want: 123450},
		{in: "1.234.567", want: 123456700},
		{in: "1,234,567.89", want: 123456789},
		{in: "CHF 1'234,5", want: 123450},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			m, err := types.ParseMoney(tt.in, "chf")
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Amount())
			assert.Equal(t, "CHF", m.Currency())
		})
	}
}

func TestParseMoney_Rejects(t *testing.T) {
	for _, in := range []string{"", "CHF", "abc", "1.2.3", "1.234,5,6", "1,2.50", "99999999999999999999"} {
		_, err := types.ParseMoney(in, "CHF")
		assert.ErrorIs(t, err, types.ErrInvalidMoney, in)
	}
}

func TestMoney_Arithmetic(t *testing.T) {
	a := types.MustNewMoney(1250, "CHF")
	b := types.MustNewMoney(300, "CHF")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, int64(1550), sum.Amount())
	assert.Equal(t, "15.50 CHF", sum.String())
	tripled, err := a.Multiply(3)
	require.NoError(t, err)
	assert.Equal(t, int64(3750), tripled.Amount())

	_, err = a.Add(types.MustNewMoney(1, "EUR"))
	assert.ErrorIs(t, err, types.ErrCurrencyMismatch)
}

func TestMoney_ArithmeticOverflow(t *testing.T) {
	price := types.MustNewMoney(1200, "CHF")
	maxed := types.MustNewMoney(math.MaxInt64, "CHF")
	floor := types.MustNewMoney(math.MinInt64, "CHF")

	_, err := price.Multiply(math.MaxInt64)
	assert.ErrorIs(t, err, types.ErrAmountOverflow)
	_, err = maxed.Add(types.MustNewMoney(1, "CHF"))
	assert.ErrorIs(t, err, types.ErrAmountOverflow)
	_, err = floor.Subtract(types.MustNewMoney(1, "CHF"))
	assert.ErrorIs(t, err, types.ErrAmountOverflow)

	got, err := maxed.Subtract(price)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64-1200), got.Amount())
}

func TestMoneyFromDecimal(t *testing.T) {
	m, err := types.MoneyFromDecimal(decimal.RequireFromString("21.955"), "CHF")
	require.NoError(t, err)
	assert.Equal(t, int64(2196), m.Amount())
	assert.Equal(t, "21.96", m.Decimal().StringFixed(2))
}

func TestNewMoney_InvalidCurrency(t *testing.T) {
	_, err := types.NewMoney(100, "")
	assert.ErrorIs(t, err, types.ErrInvalidMoney)
	_, err = types.NewMoney(100, "CH")
	assert.ErrorIs(t, err, types.ErrInvalidMoney)
}

func TestParseBotOrderID(t *testing.T) {
	id, err := types.ParseBotOrderID("  tg-1001 ")
	require.NoError(t, err)
	assert.Equal(t, "tg-1001", id.String())

	_, err = types.ParseBotOrderID("")
	assert.ErrorIs(t, err, types.ErrInvalidID)
	_, err = types.ParseBotOrderID(strings.Repeat("x", 129))
	assert.ErrorIs(t, err, types.ErrInvalidID)
}

func TestTrackingID(t *testing.T) {
	id := types.NewTrackingID()
	parsed, err := types.ParseTrackingID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = types.ParseTrackingID("not-a-uuid")
	assert.ErrorIs(t, err, types.ErrInvalidID)
}
