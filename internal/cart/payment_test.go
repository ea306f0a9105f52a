package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettle_ExactCashIsPaid(t *testing.T) {
	total := decimal.NewFromInt(250)
	s, err := Settle(total, SplitTender{Cash: decimal.NewFromInt(250)})
	require.NoError(t, err)
	assert.Equal(t, PaymentPaid, s.Status)
	assert.Equal(t, "cash", s.Method)
	assert.Equal(t, "0", s.AmountDue.String())
}

func TestSettle_WithinToleranceIsPaid(t *testing.T) {
	total := decimal.NewFromFloat(250.00)
	s, err := Settle(total, SplitTender{Cash: decimal.NewFromFloat(249.99)})
	require.NoError(t, err)
	assert.Equal(t, PaymentPaid, s.Status)
	assert.Equal(t, "0", s.AmountDue.String())
}

func TestSettle_ShortfallIsPartial(t *testing.T) {
	total := decimal.NewFromInt(250)
	s, err := Settle(total, SplitTender{
		Cash: decimal.NewFromInt(100),
		UPI:  decimal.NewFromInt(50),
	})
	require.NoError(t, err)
	assert.Equal(t, PaymentPartial, s.Status)
	assert.Equal(t, "split", s.Method)
	assert.Equal(t, "150", s.AmountPaid.String())
	assert.Equal(t, "100", s.AmountDue.String())
}

func TestSettle_OverpaymentRejected(t *testing.T) {
	total := decimal.NewFromInt(250)
	_, err := Settle(total, SplitTender{
		Cash: decimal.NewFromInt(100),
		UPI:  decimal.NewFromInt(200),
	})
	assert.ErrorIs(t, err, ErrOverpayment)
}

func TestSettle_ZeroTenderOnZeroTotal(t *testing.T) {
	s, err := Settle(decimal.Zero, SplitTender{})
	require.NoError(t, err)
	assert.Equal(t, PaymentPaid, s.Status)
}

func TestSplitTender_Method(t *testing.T) {
	assert.Equal(t, "upi", SplitTender{UPI: decimal.NewFromInt(10)}.Method())
	assert.Equal(t, "card", SplitTender{Card: decimal.NewFromInt(10)}.Method())
	assert.Equal(t, "split", SplitTender{Cash: decimal.NewFromInt(1), Card: decimal.NewFromInt(1)}.Method())
	assert.Equal(t, "cash", SplitTender{}.Method(), "empty tender defaults to cash")
}
