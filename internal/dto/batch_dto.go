package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateBatchRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity"   validate:"required"`
	Note      string          `json:"note"`
}

type BatchResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Note      string          `json:"note,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type BatchListResponse struct {
	Data []BatchResponse `json:"data"`
}
