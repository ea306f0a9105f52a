package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CheckoutRequest settles the active cart. Tender amounts default to zero;
// at least one must be positive.
type CheckoutRequest struct {
	Cash decimal.Decimal `json:"cash" validate:"min=0"`
	UPI  decimal.Decimal `json:"upi"  validate:"min=0"`
	Card decimal.Decimal `json:"card" validate:"min=0"`

	// CustomerEmail, when present, queues the receipt for email delivery
	// after the PDF is rendered.
	CustomerEmail string `json:"customer_email" validate:"omitempty,email"`
}

type CheckoutResponse struct {
	InvoiceID     string          `json:"invoice_id"`
	InvoiceNumber int             `json:"invoice_number"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"payment_method"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	AmountDue     decimal.Decimal `json:"amount_due"`
	Total         decimal.Decimal `json:"total"`
}

// ─── Invoice listing ─────────────────────────────────────────────────────────

type InvoiceFilter struct {
	Date       string `form:"date"` // YYYY-MM-DD
	Status     string `form:"status"`
	CustomerID string `form:"customer_id"`
	Page       int    `form:"page,default=1"`
	Limit      int    `form:"limit,default=20"`
}

type InvoicePaymentResponse struct {
	Method string          `json:"method"`
	Amount decimal.Decimal `json:"amount"`
}

type InvoiceItemResponse struct {
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitLabel string          `json:"unit_label"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
}

type InvoiceResponse struct {
	ID            string          `json:"id"`
	Number        int             `json:"number"`
	CustomerName  string          `json:"customer_name"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	DiscountType  string          `json:"discount_type"`
	TaxTotal      decimal.Decimal `json:"tax_total"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	AmountDue     decimal.Decimal `json:"amount_due"`
	Status        string          `json:"status"`
	PDFPath       string          `json:"pdf_path,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`

	Items    []InvoiceItemResponse    `json:"items,omitempty"`
	Payments []InvoicePaymentResponse `json:"payments,omitempty"`
}

type InvoiceListResponse struct {
	Data  []InvoiceResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
