package dto

import (
	"github.com/shopspring/decimal"

	"retailpos/internal/cart"
)

// ─── Cart mutation requests ──────────────────────────────────────────────────
// Quantity and price fields arrive as raw text: the POS screen sends whatever
// the cashier typed, and cart.ParseQuantity / cart.ParsePrice apply the one
// fallback policy for all entry points.

// ManualItemRequest is a "forgotten item" entered inline.
type ManualItemRequest struct {
	Name      string          `json:"name"  validate:"required"`
	Price     decimal.Decimal `json:"price" validate:"required"`
	UnitLabel string          `json:"unit_label"`
}

type AddItemRequest struct {
	ProductID *string            `json:"product_id" validate:"omitempty,uuid"`
	VariantID *string            `json:"variant_id" validate:"omitempty,uuid"`
	BatchID   *string            `json:"batch_id"   validate:"omitempty,uuid"`
	Manual    *ManualItemRequest `json:"manual"`
	Quantity  string             `json:"quantity" validate:"required"`
}

type UpdateQuantityRequest struct {
	Quantity string `json:"quantity" validate:"required"`
	// Unit, when set, requests a unit-aware edit: Quantity is interpreted in
	// this display unit and reconciled back to the line's original unit.
	Unit string `json:"unit"`
}

type UpdatePriceRequest struct {
	Price string `json:"price" validate:"required"`
}

type UpdateBatchRequest struct {
	BatchID *string `json:"batch_id" validate:"omitempty,uuid"`
}

type SetDiscountRequest struct {
	Value decimal.Decimal `json:"value" validate:"min=0"`
	Type  string          `json:"type"  validate:"required,oneof=percentage fixed"`
}

type SetTaxRateRequest struct {
	Rate decimal.Decimal `json:"rate" validate:"min=0"`
}

type SetCustomerRequest struct {
	// CustomerID nil clears the selection back to walk-in.
	CustomerID *string `json:"customer_id" validate:"omitempty,uuid"`
}

// ─── Cart responses ──────────────────────────────────────────────────────────

// CartResponse is the full cart snapshot the POS screen renders from. The
// Message field carries the user-facing confirmation of the last mutation.
type CartResponse struct {
	SessionID string            `json:"session_id"`
	Items     []cart.LineItem   `json:"items"`
	Customer  *cart.CustomerRef `json:"customer,omitempty"`

	DiscountValue decimal.Decimal   `json:"discount_value"`
	DiscountType  cart.DiscountType `json:"discount_type"`
	TaxRate       decimal.Decimal   `json:"tax_rate"`

	Totals  cart.Totals `json:"totals"`
	Message string      `json:"message,omitempty"`
}

type OpenSessionResponse struct {
	SessionID string `json:"session_id"`
}

// ─── Hold / resume ───────────────────────────────────────────────────────────

type HoldCartResponse struct {
	HoldID string `json:"hold_id"`
}

type HeldCartSummary struct {
	HoldID    string          `json:"hold_id"`
	ItemCount int             `json:"item_count"`
	Customer  string          `json:"customer"` // "walk-in" when none
	Total     decimal.Decimal `json:"total"`
	HeldAt    string          `json:"held_at"`
}
