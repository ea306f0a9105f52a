package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice is the persisted result of a checkout: a frozen copy of the cart
// snapshot plus the payment settlement. Monetary fields are denormalized on
// purpose — an invoice must not change when the catalog does.
// Status: "paid" | "partial"
type Invoice struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Number     int       `gorm:"uniqueIndex;not null"`
	CustomerID *uuid.UUID `gorm:"type:uuid;index"`
	// CustomerName is copied at checkout time; empty = walk-in.
	CustomerName string

	Subtotal           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DiscountValue      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DiscountType       string          `gorm:"type:varchar(20);not null;default:'percentage'"`
	DiscountedSubtotal decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxRate            decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	TaxTotal           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Total              decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	PaymentMethod string          `gorm:"type:varchar(20);not null"`
	AmountPaid    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	AmountDue     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Status        string          `gorm:"type:varchar(20);not null"`

	// PDFPath is relative to PDF_STORAGE_PATH; set by the receipt worker.
	PDFPath *string
	// Retry fields used by the retry cron to re-attempt failed receipt jobs.
	RetryCount  int `gorm:"not null;default:0"`
	NextRetryAt *time.Time
	LastError   *string

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time

	Items    []InvoiceItem    `gorm:"foreignKey:InvoiceID"`
	Payments []InvoicePayment `gorm:"foreignKey:InvoiceID"`

	Customer *Customer `gorm:"foreignKey:CustomerID"`
}

// InvoiceItem is one frozen cart line. ProductID is NULL for manual entries.
type InvoiceItem struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InvoiceID uuid.UUID  `gorm:"type:uuid;index;not null"`
	ProductID *uuid.UUID `gorm:"type:uuid;index"`
	VariantID *uuid.UUID `gorm:"type:uuid"`
	BatchID   *uuid.UUID `gorm:"type:uuid"`
	Name      string     `gorm:"not null"`
	Quantity  decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	UnitLabel string          `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// InvoicePayment is one tender of a (possibly split) settlement.
// Method: "cash" | "upi" | "card"
type InvoicePayment struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InvoiceID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Method    string          `gorm:"type:varchar(20);not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time
}
