package service_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"retailpos/internal/dto"
	"retailpos/internal/model"
	"retailpos/internal/repository"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubProductRepo is an in-memory ProductRepository for testing.
type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
	variants map[uuid.UUID]*model.Variant

	// recorded stock decrements, keyed by product
	unitDecrements   map[uuid.UUID]int64
	weightDecrements map[uuid.UUID]decimal.Decimal
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{
		products:         make(map[uuid.UUID]*model.Product),
		variants:         make(map[uuid.UUID]*model.Variant),
		unitDecrements:   make(map[uuid.UUID]int64),
		weightDecrements: make(map[uuid.UUID]decimal.Decimal),
	}
}

func (r *stubProductRepo) add(p *model.Product) *model.Product {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.Active = true
	r.products[p.ID] = p
	return p
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	r.add(p)
	for i := range p.Variants {
		v := &p.Variants[i]
		if v.ID == uuid.Nil {
			v.ID = uuid.New()
		}
		v.ProductID = p.ID
		r.variants[v.ID] = v
	}
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

func (r *stubProductRepo) FindByBarcode(_ context.Context, barcode string) (*model.Product, error) {
	for _, p := range r.products {
		if p.Barcode == barcode {
			return p, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubProductRepo) List(_ context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range r.products {
		if filter.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Name)) {
			continue
		}
		if filter.Active == "" && !p.Active {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if p, ok := r.products[id]; ok {
		p.Active = false
	}
	return nil
}

func (r *stubProductRepo) Reactivate(_ context.Context, id uuid.UUID) error {
	if p, ok := r.products[id]; ok {
		p.Active = true
	}
	return nil
}

func (r *stubProductRepo) CreateVariant(_ context.Context, v *model.Variant) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	r.variants[v.ID] = v
	return nil
}

func (r *stubProductRepo) FindVariantByID(_ context.Context, id uuid.UUID) (*model.Variant, error) {
	v, ok := r.variants[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return v, nil
}

func (r *stubProductRepo) ListVariants(_ context.Context, productID uuid.UUID) ([]model.Variant, error) {
	var out []model.Variant
	for _, v := range r.variants {
		if v.ProductID == productID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *stubProductRepo) DecrementStockTx(_ *gorm.DB, id uuid.UUID, qty int64) error {
	r.unitDecrements[id] += qty
	return nil
}

func (r *stubProductRepo) DecrementStockByWeightTx(_ *gorm.DB, id uuid.UUID, qty decimal.Decimal) error {
	r.weightDecrements[id] = r.weightDecrements[id].Add(qty)
	return nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

var _ repository.ProductRepository = (*stubProductRepo)(nil)

// stubInvoiceRepo is an in-memory InvoiceRepository.
type stubInvoiceRepo struct {
	invoices map[uuid.UUID]*model.Invoice
	seq      int
}

func newStubInvoiceRepo() *stubInvoiceRepo {
	return &stubInvoiceRepo{invoices: make(map[uuid.UUID]*model.Invoice)}
}

func (r *stubInvoiceRepo) Create(_ context.Context, _ *gorm.DB, inv *model.Invoice) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	inv.CreatedAt = time.Now()
	r.invoices[inv.ID] = inv
	return nil
}

func (r *stubInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return inv, nil
}

func (r *stubInvoiceRepo) NextInvoiceNumber(_ context.Context, _ *gorm.DB) (int, error) {
	r.seq++
	return r.seq, nil
}

func (r *stubInvoiceRepo) List(_ context.Context, _ dto.InvoiceFilter) ([]model.Invoice, int64, error) {
	var out []model.Invoice
	for _, inv := range r.invoices {
		out = append(out, *inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, int64(len(out)), nil
}

func (r *stubInvoiceRepo) SetReceiptPath(_ context.Context, id uuid.UUID, path string) error {
	if inv, ok := r.invoices[id]; ok {
		inv.PDFPath = &path
	}
	return nil
}

func (r *stubInvoiceRepo) MarkReceiptFailed(_ context.Context, id uuid.UUID, reason string, nextRetry time.Time) error {
	if inv, ok := r.invoices[id]; ok {
		inv.RetryCount++
		inv.NextRetryAt = &nextRetry
		inv.LastError = &reason
	}
	return nil
}

func (r *stubInvoiceRepo) AbandonReceiptRetries(_ context.Context, id uuid.UUID, reason string) error {
	if inv, ok := r.invoices[id]; ok {
		inv.NextRetryAt = nil
		inv.LastError = &reason
	}
	return nil
}

func (r *stubInvoiceRepo) BumpReceiptRetryWindow(_ context.Context, id uuid.UUID, nextRetry time.Time) error {
	if inv, ok := r.invoices[id]; ok {
		inv.NextRetryAt = &nextRetry
	}
	return nil
}

func (r *stubInvoiceRepo) ListPendingReceiptRetries(_ context.Context, before time.Time, limit int) ([]model.Invoice, error) {
	var out []model.Invoice
	for _, inv := range r.invoices {
		if inv.PDFPath == nil && inv.NextRetryAt != nil && !inv.NextRetryAt.After(before) {
			out = append(out, *inv)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *stubInvoiceRepo) DailySummary(_ context.Context, day time.Time) (*dto.SalesSummary, error) {
	s := &dto.SalesSummary{Date: day.Format("2006-01-02")}
	for _, inv := range r.invoices {
		s.InvoiceCount++
		s.GrossTotal = s.GrossTotal.Add(inv.Total)
		s.TaxTotal = s.TaxTotal.Add(inv.TaxTotal)
		s.OutstandingDue = s.OutstandingDue.Add(inv.AmountDue)
	}
	return s, nil
}

func (r *stubInvoiceRepo) DB() *gorm.DB { return nil }

var _ repository.InvoiceRepository = (*stubInvoiceRepo)(nil)

// stubBatchRepo records batch consumption for assertion.
type stubBatchRepo struct {
	batches  map[uuid.UUID]*model.StockBatch
	consumed map[uuid.UUID]decimal.Decimal
}

func newStubBatchRepo() *stubBatchRepo {
	return &stubBatchRepo{
		batches:  make(map[uuid.UUID]*model.StockBatch),
		consumed: make(map[uuid.UUID]decimal.Decimal),
	}
}

func (r *stubBatchRepo) add(b *model.StockBatch) *model.StockBatch {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	r.batches[b.ID] = b
	return b
}

func (r *stubBatchRepo) Create(_ context.Context, b *model.StockBatch) error {
	r.add(b)
	return nil
}

func (r *stubBatchRepo) FindByID(_ context.Context, id uuid.UUID) (*model.StockBatch, error) {
	b, ok := r.batches[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return b, nil
}

func (r *stubBatchRepo) ListByProduct(_ context.Context, productID uuid.UUID, includeEmpty bool) ([]model.StockBatch, error) {
	var out []model.StockBatch
	for _, b := range r.batches {
		if b.ProductID != productID {
			continue
		}
		if !includeEmpty && !b.Quantity.IsPositive() {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *stubBatchRepo) OldestWithStockTx(_ *gorm.DB, productID uuid.UUID) (*model.StockBatch, error) {
	var oldest *model.StockBatch
	for _, b := range r.batches {
		if b.ProductID != productID || !b.Quantity.IsPositive() {
			continue
		}
		if oldest == nil || b.CreatedAt.Before(oldest.CreatedAt) {
			oldest = b
		}
	}
	if oldest == nil {
		return nil, errors.New("no batch with stock")
	}
	return oldest, nil
}

func (r *stubBatchRepo) ConsumeTx(_ *gorm.DB, id uuid.UUID, qty decimal.Decimal) error {
	b, ok := r.batches[id]
	if !ok {
		return errors.New("not found")
	}
	b.Quantity = decimal.Max(decimal.Zero, b.Quantity.Sub(qty))
	r.consumed[id] = r.consumed[id].Add(qty)
	return nil
}

var _ repository.BatchRepository = (*stubBatchRepo)(nil)

// stubCustomerRepo is an in-memory CustomerRepository.
type stubCustomerRepo struct {
	customers map[uuid.UUID]*model.Customer
}

func newStubCustomerRepo() *stubCustomerRepo {
	return &stubCustomerRepo{customers: make(map[uuid.UUID]*model.Customer)}
}

func (r *stubCustomerRepo) add(c *model.Customer) *model.Customer {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.Active = true
	r.customers[c.ID] = c
	return c
}

func (r *stubCustomerRepo) Create(_ context.Context, c *model.Customer) error {
	r.add(c)
	return nil
}

func (r *stubCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return c, nil
}

func (r *stubCustomerRepo) FindByPhone(_ context.Context, phone string) (*model.Customer, error) {
	for _, c := range r.customers {
		if c.Phone == phone {
			return c, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubCustomerRepo) List(_ context.Context, _ dto.CustomerFilter) ([]model.Customer, int64, error) {
	var out []model.Customer
	for _, c := range r.customers {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *stubCustomerRepo) Update(_ context.Context, c *model.Customer) error {
	r.customers[c.ID] = c
	return nil
}

func (r *stubCustomerRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if c, ok := r.customers[id]; ok {
		c.Active = false
	}
	return nil
}

var _ repository.CustomerRepository = (*stubCustomerRepo)(nil)
