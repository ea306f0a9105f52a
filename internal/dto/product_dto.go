package dto

import "github.com/shopspring/decimal"

// ProductFilter is bound from the query string of GET /v1/products.
type ProductFilter struct {
	Barcode  string `form:"barcode"`
	Name     string `form:"name"`
	UnitType string `form:"unit_type"`
	Active   string `form:"active"` // "false" | "all" | default active
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type VariantRequest struct {
	Name  string           `json:"name"  validate:"required"`
	Price *decimal.Decimal `json:"price" validate:"omitempty"`
}

type CreateProductRequest struct {
	Barcode       string           `json:"barcode"    validate:"required"`
	Name          string           `json:"name"       validate:"required"`
	Price         decimal.Decimal  `json:"price"      validate:"required,gt=0"`
	PricePerUnit  *decimal.Decimal `json:"price_per_unit"`
	Stock         *int64           `json:"stock"`
	StockByWeight *decimal.Decimal `json:"stock_by_weight"`
	UnitLabel     string           `json:"unit_label"`
	UnitType      string           `json:"unit_type" validate:"omitempty,oneof=unit weight volume length"`
	TaxRate       *decimal.Decimal `json:"tax_rate"`
	Variants      []VariantRequest `json:"variants"  validate:"omitempty,dive"`
}

type UpdateProductRequest struct {
	Name          string           `json:"name"  validate:"required"`
	Price         decimal.Decimal  `json:"price" validate:"required,gt=0"`
	PricePerUnit  *decimal.Decimal `json:"price_per_unit"`
	Stock         *int64           `json:"stock"`
	StockByWeight *decimal.Decimal `json:"stock_by_weight"`
	UnitLabel     string           `json:"unit_label"`
	UnitType      string           `json:"unit_type" validate:"omitempty,oneof=unit weight volume length"`
	TaxRate       *decimal.Decimal `json:"tax_rate"`
}

type VariantResponse struct {
	ID    string           `json:"id"`
	Name  string           `json:"name"`
	Price *decimal.Decimal `json:"price,omitempty"`
}

type ProductResponse struct {
	ID            string            `json:"id"`
	Barcode       string            `json:"barcode"`
	Name          string            `json:"name"`
	Price         decimal.Decimal   `json:"price"`
	PricePerUnit  *decimal.Decimal  `json:"price_per_unit,omitempty"`
	Stock         *int64            `json:"stock,omitempty"`
	StockByWeight *decimal.Decimal  `json:"stock_by_weight,omitempty"`
	UnitLabel     string            `json:"unit_label"`
	UnitType      string            `json:"unit_type"`
	TaxRate       *decimal.Decimal  `json:"tax_rate,omitempty"`
	Active        bool              `json:"active"`
	Variants      []VariantResponse `json:"variants,omitempty"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
