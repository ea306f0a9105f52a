package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"retailpos/internal/dto"
	"retailpos/internal/model"
)

// ProductRepository defines the data access contract for the catalog.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via in-memory stubs.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (*model.Product, error)
	List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error)
	Update(ctx context.Context, p *model.Product) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID) error

	// Variants
	CreateVariant(ctx context.Context, v *model.Variant) error
	FindVariantByID(ctx context.Context, id uuid.UUID) (*model.Variant, error)
	ListVariants(ctx context.Context, productID uuid.UUID) ([]model.Variant, error)

	// Used inside checkout transactions — callers must pass the tx instance
	DecrementStockTx(tx *gorm.DB, id uuid.UUID, qty int64) error
	DecrementStockByWeightTx(tx *gorm.DB, id uuid.UUID, qty decimal.Decimal) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Preload("Variants").First(&p, id).Error
	return &p, err
}

func (r *productRepo) FindByBarcode(ctx context.Context, barcode string) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Preload("Variants").
		Where("barcode = ? AND active = true", barcode).First(&p).Error
	return &p, err
}

func (r *productRepo) List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Product{})

	// Active filter: "false" = inactive, "all" = everything, default = active
	switch filter.Active {
	case "false":
		q = q.Where("active = false")
	case "all":
		// no filter
	default:
		q = q.Where("active = true")
	}

	if filter.Barcode != "" {
		q = q.Where("barcode = ?", filter.Barcode)
	}
	if filter.Name != "" {
		q = q.Where("name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.UnitType != "" {
		q = q.Where("unit_type = ?", filter.UnitType)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("name ASC").Limit(filter.Limit).Offset(offset).
		Preload("Variants").Find(&products).Error
	return products, total, err
}

func (r *productRepo) Update(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Update("active", false).Error
}

func (r *productRepo) Reactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Update("active", true).Error
}

func (r *productRepo) CreateVariant(ctx context.Context, v *model.Variant) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *productRepo) FindVariantByID(ctx context.Context, id uuid.UUID) (*model.Variant, error) {
	var v model.Variant
	err := r.db.WithContext(ctx).First(&v, id).Error
	return &v, err
}

func (r *productRepo) ListVariants(ctx context.Context, productID uuid.UUID) ([]model.Variant, error) {
	var variants []model.Variant
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).Order("name ASC").Find(&variants).Error
	return variants, err
}

// DecrementStockTx lowers the discrete stock count. Products with NULL stock
// are unlimited and left untouched.
func (r *productRepo) DecrementStockTx(tx *gorm.DB, id uuid.UUID, qty int64) error {
	return tx.Model(&model.Product{}).
		Where("id = ? AND stock IS NOT NULL", id).
		Update("stock", gorm.Expr("stock - ?", qty)).Error
}

// DecrementStockByWeightTx lowers the bulk stock figure for weight/volume
// products; NULL means unlimited and is left untouched.
func (r *productRepo) DecrementStockByWeightTx(tx *gorm.DB, id uuid.UUID, qty decimal.Decimal) error {
	return tx.Model(&model.Product{}).
		Where("id = ? AND stock_by_weight IS NOT NULL", id).
		Update("stock_by_weight", gorm.Expr("stock_by_weight - ?", qty)).Error
}

func (r *productRepo) DB() *gorm.DB { return r.db }
