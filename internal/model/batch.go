package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockBatch is a received lot of a product, consumed oldest-first (FIFO)
// at checkout unless a line explicitly selects a batch.
type StockBatch struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Quantity  decimal.Decimal `gorm:"type:decimal(12,3);not null"` // remaining
	Note      *string
	CreatedAt time.Time `gorm:"index"`

	Product *Product `gorm:"foreignKey:ProductID"`
}
