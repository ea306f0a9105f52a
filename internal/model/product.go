package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"retailpos/internal/cart"
)

// Product is a catalog entry. Discrete goods carry Stock; weight/volume goods
// carry StockByWeight and usually a PricePerUnit (per kg / per L) that
// overrides the flat price. Either stock figure may be NULL = unlimited.
type Product struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Barcode string    `gorm:"uniqueIndex;not null"`
	Name    string    `gorm:"index;not null"`
	Price   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// PricePerUnit is the price per base unit for weight/volume products.
	PricePerUnit  *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Stock         *int64
	StockByWeight *decimal.Decimal `gorm:"type:decimal(12,3)"`
	UnitLabel     string           `gorm:"not null;default:'pcs'"`
	// UnitType: "unit" | "weight" | "volume" | "length"
	UnitType string `gorm:"type:varchar(20);not null;default:'unit'"`
	// TaxRate is the product's suggested tax percentage; the cart-level rate
	// is what actually applies at sale time.
	TaxRate   *decimal.Decimal `gorm:"type:decimal(5,2)"`
	Active    bool             `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Variants []Variant `gorm:"foreignKey:ProductID"`
}

// Variant is an attribute set of a product (size, color) with an optional
// price override.
type Variant struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID uuid.UUID `gorm:"type:uuid;index;not null"`
	Name      string    `gorm:"not null"`
	Price     *decimal.Decimal `gorm:"type:decimal(12,2)"`
	CreatedAt time.Time
}

// CartInfo maps the catalog record to the shape the cart engine consumes.
func (p *Product) CartInfo() cart.ProductInfo {
	return cart.ProductInfo{
		ID:            p.ID,
		Name:          p.Name,
		Price:         p.Price,
		PricePerUnit:  p.PricePerUnit,
		Stock:         p.Stock,
		StockByWeight: p.StockByWeight,
		UnitLabel:     p.UnitLabel,
		UnitType:      cart.UnitType(p.UnitType),
	}
}

// CartInfo maps the variant to the cart engine's variant shape.
func (v *Variant) CartInfo() cart.VariantInfo {
	return cart.VariantInfo{ID: v.ID, Name: v.Name, Price: v.Price}
}
