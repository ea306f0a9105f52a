package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"retailpos/internal/model"
)

// BatchRepository is the data access contract for FIFO stock batches.
// Batches are consulted to populate the cart's batch selector and consumed
// oldest-first inside the checkout transaction.
type BatchRepository interface {
	Create(ctx context.Context, b *model.StockBatch) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.StockBatch, error)
	// ListByProduct returns batches oldest-first, including exhausted ones
	// when includeEmpty is set.
	ListByProduct(ctx context.Context, productID uuid.UUID, includeEmpty bool) ([]model.StockBatch, error)

	// Used inside checkout transactions
	OldestWithStockTx(tx *gorm.DB, productID uuid.UUID) (*model.StockBatch, error)
	ConsumeTx(tx *gorm.DB, id uuid.UUID, qty decimal.Decimal) error
}

type batchRepo struct{ db *gorm.DB }

func NewBatchRepository(db *gorm.DB) BatchRepository { return &batchRepo{db: db} }

func (r *batchRepo) Create(ctx context.Context, b *model.StockBatch) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *batchRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.StockBatch, error) {
	var b model.StockBatch
	err := r.db.WithContext(ctx).First(&b, id).Error
	return &b, err
}

func (r *batchRepo) ListByProduct(ctx context.Context, productID uuid.UUID, includeEmpty bool) ([]model.StockBatch, error) {
	var batches []model.StockBatch
	q := r.db.WithContext(ctx).Where("product_id = ?", productID)
	if !includeEmpty {
		q = q.Where("quantity > 0")
	}
	err := q.Order("created_at ASC").Find(&batches).Error
	return batches, err
}

// OldestWithStockTx implements the "auto" batch selection: the oldest batch
// that still has remaining quantity.
func (r *batchRepo) OldestWithStockTx(tx *gorm.DB, productID uuid.UUID) (*model.StockBatch, error) {
	var b model.StockBatch
	err := tx.Where("product_id = ? AND quantity > 0", productID).
		Order("created_at ASC").First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ConsumeTx lowers a batch's remaining quantity, clamping at zero — a sale
// may legitimately take more than the selected batch holds, in which case
// the batch is simply exhausted.
func (r *batchRepo) ConsumeTx(tx *gorm.DB, id uuid.UUID, qty decimal.Decimal) error {
	return tx.Model(&model.StockBatch{}).Where("id = ?", id).
		Update("quantity", gorm.Expr("GREATEST(quantity - ?, 0)", qty)).Error
}
