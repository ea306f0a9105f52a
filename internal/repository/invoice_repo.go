package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"retailpos/internal/dto"
	"retailpos/internal/model"
)

// InvoiceRepository is the data access contract for finalized sales.
type InvoiceRepository interface {
	Create(ctx context.Context, tx *gorm.DB, inv *model.Invoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	NextInvoiceNumber(ctx context.Context, tx *gorm.DB) (int, error)
	List(ctx context.Context, filter dto.InvoiceFilter) ([]model.Invoice, int64, error)

	// Receipt pipeline bookkeeping
	SetReceiptPath(ctx context.Context, id uuid.UUID, path string) error
	MarkReceiptFailed(ctx context.Context, id uuid.UUID, reason string, nextRetry time.Time) error
	AbandonReceiptRetries(ctx context.Context, id uuid.UUID, reason string) error
	BumpReceiptRetryWindow(ctx context.Context, id uuid.UUID, nextRetry time.Time) error
	ListPendingReceiptRetries(ctx context.Context, before time.Time, limit int) ([]model.Invoice, error)

	// DailySummary aggregates invoices of one calendar day for the dashboard.
	DailySummary(ctx context.Context, day time.Time) (*dto.SalesSummary, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type invoiceRepo struct{ db *gorm.DB }

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository { return &invoiceRepo{db: db} }

func (r *invoiceRepo) Create(ctx context.Context, tx *gorm.DB, inv *model.Invoice) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(inv).Error
}

func (r *invoiceRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	var inv model.Invoice
	err := r.db.WithContext(ctx).
		Preload("Items").Preload("Payments").Preload("Customer").
		First(&inv, id).Error
	return &inv, err
}

// NextInvoiceNumber allocates the next invoice number from a PostgreSQL
// sequence, so concurrent checkouts never draw the same number.
func (r *invoiceRepo) NextInvoiceNumber(ctx context.Context, tx *gorm.DB) (int, error) {
	if tx == nil {
		tx = r.db
	}
	var num int
	err := tx.WithContext(ctx).Raw("SELECT nextval('invoices_number_seq')").Scan(&num).Error
	return num, err
}

func (r *invoiceRepo) List(ctx context.Context, filter dto.InvoiceFilter) ([]model.Invoice, int64, error) {
	var invoices []model.Invoice
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Invoice{})

	if filter.Date != "" {
		if day, err := time.Parse("2006-01-02", filter.Date); err == nil {
			q = q.Where("created_at >= ? AND created_at < ?", day, day.AddDate(0, 0, 1))
		}
	}
	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.CustomerID != "" {
		q = q.Where("customer_id = ?", filter.CustomerID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("number DESC").Limit(filter.Limit).Offset(offset).
		Preload("Items").Preload("Payments").Find(&invoices).Error
	return invoices, total, err
}

func (r *invoiceRepo) SetReceiptPath(ctx context.Context, id uuid.UUID, path string) error {
	return r.db.WithContext(ctx).Model(&model.Invoice{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"pdf_path":      path,
			"next_retry_at": nil,
			"last_error":    nil,
		}).Error
}

func (r *invoiceRepo) MarkReceiptFailed(ctx context.Context, id uuid.UUID, reason string, nextRetry time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Invoice{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"retry_count":   gorm.Expr("retry_count + 1"),
			"next_retry_at": nextRetry,
			"last_error":    reason,
		}).Error
}

// BumpReceiptRetryWindow pushes next_retry_at forward without touching the
// retry count. Used by the cron so a re-enqueued job is not picked up twice.
func (r *invoiceRepo) BumpReceiptRetryWindow(ctx context.Context, id uuid.UUID, nextRetry time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Invoice{}).Where("id = ?", id).
		Update("next_retry_at", nextRetry).Error
}

// AbandonReceiptRetries clears next_retry_at so the retry cron stops picking
// the invoice up. Called after the job has been moved to the DLQ.
func (r *invoiceRepo) AbandonReceiptRetries(ctx context.Context, id uuid.UUID, reason string) error {
	return r.db.WithContext(ctx).Model(&model.Invoice{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"next_retry_at": nil,
			"last_error":    reason,
		}).Error
}

func (r *invoiceRepo) ListPendingReceiptRetries(ctx context.Context, before time.Time, limit int) ([]model.Invoice, error) {
	var invoices []model.Invoice
	err := r.db.WithContext(ctx).
		Where("pdf_path IS NULL AND next_retry_at IS NOT NULL AND next_retry_at <= ?", before).
		Order("next_retry_at ASC").Limit(limit).
		Preload("Items").Preload("Payments").
		Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepo) DailySummary(ctx context.Context, day time.Time) (*dto.SalesSummary, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	var s dto.SalesSummary
	err := r.db.WithContext(ctx).Model(&model.Invoice{}).
		Select(`COUNT(*) AS invoice_count,
			COALESCE(SUM(total), 0) AS gross_total,
			COALESCE(SUM(tax_total), 0) AS tax_total,
			COALESCE(SUM(amount_due), 0) AS outstanding_due`).
		Where("created_at >= ? AND created_at < ?", start, end).
		Scan(&s).Error
	if err != nil {
		return nil, err
	}
	s.Date = start.Format("2006-01-02")
	return &s, nil
}

func (r *invoiceRepo) DB() *gorm.DB { return r.db }
