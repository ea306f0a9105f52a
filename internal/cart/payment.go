package cart

// payment.go — split/partial payment settlement. Consumed by checkout, not
// owned by the cart, but it must honor the cart's total exactly as Totals()
// computed it.

import (
	"errors"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the settlement outcome recorded on the invoice.
type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentPartial PaymentStatus = "partial"
)

// ErrOverpayment rejects split tenders whose sum exceeds the total beyond
// tolerance. Overpayment is not modeled in split mode — there is no
// change-due concept across mixed tenders.
var ErrOverpayment = errors.New("sum of all payment methods must equal the total")

// paymentTolerance absorbs floating-point noise from client-entered amounts.
var paymentTolerance = decimal.New(1, -2) // 0.01

// SplitTender is the amount tendered per payment method.
type SplitTender struct {
	Cash decimal.Decimal `json:"cash"`
	UPI  decimal.Decimal `json:"upi"`
	Card decimal.Decimal `json:"card"`
}

// Sum is the combined tendered amount.
func (t SplitTender) Sum() decimal.Decimal {
	return t.Cash.Add(t.UPI).Add(t.Card)
}

// Method names the tender for display: the single non-zero method, or
// "split" when more than one was used.
func (t SplitTender) Method() string {
	used := 0
	method := "cash"
	if t.Cash.IsPositive() {
		used++
		method = "cash"
	}
	if t.UPI.IsPositive() {
		used++
		method = "upi"
	}
	if t.Card.IsPositive() {
		used++
		method = "card"
	}
	if used > 1 {
		return "split"
	}
	return method
}

// Settlement is the computed outcome of settling a total against a tender.
type Settlement struct {
	Status     PaymentStatus   `json:"status"`
	Method     string          `json:"method"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	AmountDue  decimal.Decimal `json:"amount_due"`
}

// Settle applies the split-payment rules to a cart total:
//
//   - |sum − total| ≤ 0.01  → fully paid, nothing due
//   - sum < total − 0.01    → partial payment accepted, remainder due
//   - sum > total + 0.01    → ErrOverpayment
//
// Underpayment is a deliberate allowance (credit sales with a recorded due
// amount), not an error.
func Settle(total decimal.Decimal, tender SplitTender) (Settlement, error) {
	sum := tender.Sum()

	if sum.Sub(total).Abs().LessThanOrEqual(paymentTolerance) {
		return Settlement{
			Status:     PaymentPaid,
			Method:     tender.Method(),
			AmountPaid: sum,
			AmountDue:  decimal.Zero,
		}, nil
	}

	if sum.GreaterThan(total) {
		return Settlement{}, ErrOverpayment
	}

	return Settlement{
		Status:     PaymentPartial,
		Method:     tender.Method(),
		AmountPaid: sum,
		AmountDue:  total.Sub(sum),
	}, nil
}
