package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"retailpos/internal/cart"
	"retailpos/internal/dto"
	"retailpos/internal/model"
	"retailpos/internal/repository"
	"retailpos/internal/worker"
)

var (
	ErrEmptyCart       = errors.New("cannot checkout an empty cart")
	ErrInvoiceNotFound = errors.New("invoice not found")
)

// CheckoutService finalizes a cart into an invoice.
type CheckoutService interface {
	Checkout(ctx context.Context, sessionID uuid.UUID, req dto.CheckoutRequest) (*dto.CheckoutResponse, error)
	ListInvoices(ctx context.Context, filter dto.InvoiceFilter) (*dto.InvoiceListResponse, error)
	GetInvoice(ctx context.Context, id uuid.UUID) (*dto.InvoiceResponse, error)
}

type checkoutService struct {
	sessions    SessionService
	invoiceRepo repository.InvoiceRepository
	productRepo repository.ProductRepository
	batchRepo   repository.BatchRepository
	dispatcher  *worker.Dispatcher
}

func NewCheckoutService(
	sessions SessionService,
	invoiceRepo repository.InvoiceRepository,
	productRepo repository.ProductRepository,
	batchRepo repository.BatchRepository,
	dispatcher *worker.Dispatcher,
) CheckoutService {
	return &checkoutService{
		sessions:    sessions,
		invoiceRepo: invoiceRepo,
		productRepo: productRepo,
		batchRepo:   batchRepo,
		dispatcher:  dispatcher,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Checkout ─────────────────────────────────────────────────────────────────
// Runs entirely under the session lock so a second terminal request cannot
// mutate the cart mid-settlement:
//   1. Settle the tendered amounts against the cart total
//   2. BEGIN TX: next invoice number, create invoice+items+payments,
//      decrement stock, consume batches (pinned or oldest-first)
//   3. COMMIT, clear the cart
//   4. (async) dispatch the receipt job

func (s *checkoutService) Checkout(ctx context.Context, sessionID uuid.UUID, req dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	var invoice model.Invoice

	_, err := s.sessions.Do(sessionID, func(c *cart.Cart) error {
		if c.Len() == 0 {
			return ErrEmptyCart
		}

		totals := c.Totals()
		tender := cart.SplitTender{Cash: req.Cash, UPI: req.UPI, Card: req.Card}
		settlement, err := cart.Settle(totals.Total, tender)
		if err != nil {
			return err
		}

		discountValue, discountType := c.Discount()
		items := c.Items()

		txErr := runTx(ctx, s.invoiceRepo.DB(), func(tx *gorm.DB) error {
			number, err := s.invoiceRepo.NextInvoiceNumber(ctx, tx)
			if err != nil {
				return err
			}

			invoice = model.Invoice{
				Number:             number,
				Subtotal:           totals.Subtotal,
				DiscountValue:      discountValue,
				DiscountType:       string(discountType),
				DiscountedSubtotal: totals.DiscountedSubtotal,
				TaxRate:            c.TaxRate(),
				TaxTotal:           totals.TaxTotal,
				Total:              totals.Total,
				PaymentMethod:      settlement.Method,
				AmountPaid:         settlement.AmountPaid,
				AmountDue:          settlement.AmountDue,
				Status:             string(settlement.Status),
			}
			if customer := c.Customer(); customer != nil {
				id := customer.ID
				invoice.CustomerID = &id
				invoice.CustomerName = customer.Name
			}

			for i := range items {
				li := &items[i]
				item := model.InvoiceItem{
					Name:      li.DisplayName(),
					Quantity:  li.Quantity,
					UnitLabel: li.UnitLabel,
					UnitPrice: li.Price,
					Total:     li.TotalPrice,
					BatchID:   li.BatchID,
				}
				if li.Source.Kind == cart.SourceCatalog {
					pid := li.Source.ProductID
					item.ProductID = &pid
					item.VariantID = li.Source.VariantID
				}
				invoice.Items = append(invoice.Items, item)
			}

			for _, p := range []model.InvoicePayment{
				{Method: "cash", Amount: tender.Cash},
				{Method: "upi", Amount: tender.UPI},
				{Method: "card", Amount: tender.Card},
			} {
				if p.Amount.IsPositive() {
					invoice.Payments = append(invoice.Payments, p)
				}
			}

			if err := s.invoiceRepo.Create(ctx, tx, &invoice); err != nil {
				return err
			}

			for i := range items {
				if err := s.consumeStock(tx, &items[i]); err != nil {
					return err
				}
			}
			return nil
		})
		if txErr != nil {
			return txErr
		}

		c.Clear()
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Receipt rendering is async and best-effort; the sale is already final.
	if s.dispatcher != nil {
		payload := worker.ReceiptJobPayload{
			InvoiceID:     invoice.ID.String(),
			CustomerEmail: req.CustomerEmail,
		}
		if err := s.dispatcher.EnqueueReceipt(ctx, payload); err != nil {
			log.Warn().Err(err).Int("invoice", invoice.Number).Msg("failed to enqueue receipt job")
		}
	}

	return &dto.CheckoutResponse{
		InvoiceID:     invoice.ID.String(),
		InvoiceNumber: invoice.Number,
		Status:        invoice.Status,
		PaymentMethod: invoice.PaymentMethod,
		AmountPaid:    invoice.AmountPaid,
		AmountDue:     invoice.AmountDue,
		Total:         invoice.Total,
	}, nil
}

// consumeStock decrements the product's stock figure and the line's batch.
// Manual lines touch no inventory. A line without a pinned batch consumes the
// oldest lot with remaining quantity; products tracked without lots skip the
// batch step entirely.
func (s *checkoutService) consumeStock(tx *gorm.DB, li *cart.LineItem) error {
	if li.Source.Kind != cart.SourceCatalog {
		return nil
	}
	pid := li.Source.ProductID

	// Same classification as the AddItem limit check: weight/volume lines
	// consume the bulk figure, unit and length lines the discrete count.
	// Fractional length quantities round up so the count never over-reports.
	if li.UnitType == cart.UnitTypeWeight || li.UnitType == cart.UnitTypeVolume {
		if err := s.productRepo.DecrementStockByWeightTx(tx, pid, li.Quantity); err != nil {
			return fmt.Errorf("decrementing stock of %s: %w", li.Source.Name, err)
		}
	} else {
		if err := s.productRepo.DecrementStockTx(tx, pid, li.Quantity.Ceil().IntPart()); err != nil {
			return fmt.Errorf("decrementing stock of %s: %w", li.Source.Name, err)
		}
	}

	batchID := li.BatchID
	if batchID == nil {
		oldest, err := s.batchRepo.OldestWithStockTx(tx, pid)
		if err != nil || oldest == nil {
			return nil // no lots tracked for this product
		}
		batchID = &oldest.ID
	}
	return s.batchRepo.ConsumeTx(tx, *batchID, li.Quantity)
}

// ── Invoice queries ──────────────────────────────────────────────────────────

func (s *checkoutService) ListInvoices(ctx context.Context, filter dto.InvoiceFilter) (*dto.InvoiceListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	invoices, total, err := s.invoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		items = append(items, *invoiceToResponse(&invoices[i]))
	}
	return &dto.InvoiceListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *checkoutService) GetInvoice(ctx context.Context, id uuid.UUID) (*dto.InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrInvoiceNotFound
	}
	return invoiceToResponse(inv), nil
}

func invoiceToResponse(inv *model.Invoice) *dto.InvoiceResponse {
	items := make([]dto.InvoiceItemResponse, 0, len(inv.Items))
	for _, item := range inv.Items {
		items = append(items, dto.InvoiceItemResponse{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitLabel: item.UnitLabel,
			UnitPrice: item.UnitPrice,
			Total:     item.Total,
		})
	}
	payments := make([]dto.InvoicePaymentResponse, 0, len(inv.Payments))
	for _, p := range inv.Payments {
		payments = append(payments, dto.InvoicePaymentResponse{Method: p.Method, Amount: p.Amount})
	}
	pdfPath := ""
	if inv.PDFPath != nil {
		pdfPath = *inv.PDFPath
	}
	return &dto.InvoiceResponse{
		ID:            inv.ID.String(),
		Number:        inv.Number,
		CustomerName:  inv.CustomerName,
		Subtotal:      inv.Subtotal,
		DiscountValue: inv.DiscountValue,
		DiscountType:  inv.DiscountType,
		TaxTotal:      inv.TaxTotal,
		Total:         inv.Total,
		PaymentMethod: inv.PaymentMethod,
		AmountPaid:    inv.AmountPaid,
		AmountDue:     inv.AmountDue,
		Status:        inv.Status,
		PDFPath:       pdfPath,
		CreatedAt:     inv.CreatedAt,
		Items:         items,
		Payments:      payments,
	}
}
