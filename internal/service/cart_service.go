package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"retailpos/internal/cart"
	"retailpos/internal/dto"
	"retailpos/internal/repository"
)

// CartService translates API requests into cart engine operations. All user
// text (quantities, prices) is parsed here through the cart's own parser so
// the fallback policy is identical on every path.
type CartService interface {
	Get(ctx context.Context, sessionID uuid.UUID) (*dto.CartResponse, error)
	AddItem(ctx context.Context, sessionID uuid.UUID, req dto.AddItemRequest) (*dto.CartResponse, error)
	RemoveItem(ctx context.Context, sessionID uuid.UUID, index int) (*dto.CartResponse, error)
	UpdateQuantity(ctx context.Context, sessionID uuid.UUID, index int, req dto.UpdateQuantityRequest) (*dto.CartResponse, error)
	UpdatePrice(ctx context.Context, sessionID uuid.UUID, index int, req dto.UpdatePriceRequest) (*dto.CartResponse, error)
	UpdateBatch(ctx context.Context, sessionID uuid.UUID, index int, req dto.UpdateBatchRequest) (*dto.CartResponse, error)
	SetDiscount(ctx context.Context, sessionID uuid.UUID, req dto.SetDiscountRequest) (*dto.CartResponse, error)
	SetTaxRate(ctx context.Context, sessionID uuid.UUID, req dto.SetTaxRateRequest) (*dto.CartResponse, error)
	SetCustomer(ctx context.Context, sessionID uuid.UUID, req dto.SetCustomerRequest) (*dto.CartResponse, error)
	Clear(ctx context.Context, sessionID uuid.UUID) (*dto.CartResponse, error)
}

type cartService struct {
	sessions     SessionService
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	batchRepo    repository.BatchRepository
}

func NewCartService(
	sessions SessionService,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	batchRepo repository.BatchRepository,
) CartService {
	return &cartService{
		sessions:     sessions,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		batchRepo:    batchRepo,
	}
}

func (s *cartService) respond(sessionID uuid.UUID, snap *cart.Snapshot, message string) *dto.CartResponse {
	return &dto.CartResponse{
		SessionID:     sessionID.String(),
		Items:         snap.Items,
		Customer:      snap.Customer,
		DiscountValue: snap.DiscountValue,
		DiscountType:  snap.DiscountType,
		TaxRate:       snap.TaxRate,
		Totals:        snap.Totals,
		Message:       message,
	}
}

func (s *cartService) Get(_ context.Context, sessionID uuid.UUID) (*dto.CartResponse, error) {
	snap, err := s.sessions.Do(sessionID, func(*cart.Cart) error { return nil })
	if err != nil {
		return nil, err
	}
	return s.respond(sessionID, snap, ""), nil
}

// ── AddItem ──────────────────────────────────────────────────────────────────

func (s *cartService) AddItem(ctx context.Context, sessionID uuid.UUID, req dto.AddItemRequest) (*dto.CartResponse, error) {
	qty, reason := cart.ParseQuantity(req.Quantity)
	if !reason.Valid() {
		return nil, fmt.Errorf("invalid quantity %q (%s)", req.Quantity, reason)
	}

	in := cart.AddItemInput{Quantity: qty}
	var message string

	switch {
	case req.Manual != nil:
		in.Manual = &cart.ManualEntry{
			Name:      req.Manual.Name,
			Price:     req.Manual.Price,
			UnitLabel: req.Manual.UnitLabel,
		}
		message = fmt.Sprintf("Added %s × %s", qty.String(), req.Manual.Name)

	case req.ProductID != nil:
		pid, err := uuid.Parse(*req.ProductID)
		if err != nil {
			return nil, errors.New("invalid product_id")
		}
		p, err := s.productRepo.FindByID(ctx, pid)
		if err != nil {
			return nil, ErrProductNotFound
		}
		if !p.Active {
			return nil, fmt.Errorf("product %q is inactive", p.Name)
		}
		info := p.CartInfo()
		in.Product = &info
		message = fmt.Sprintf("Added %s × %s", qty.String(), p.Name)

		if req.VariantID != nil {
			vid, err := uuid.Parse(*req.VariantID)
			if err != nil {
				return nil, errors.New("invalid variant_id")
			}
			v, err := s.productRepo.FindVariantByID(ctx, vid)
			if err != nil || v.ProductID != pid {
				return nil, errors.New("variant does not belong to this product")
			}
			vinfo := v.CartInfo()
			in.Variant = &vinfo
			message = fmt.Sprintf("Added %s × %s (%s)", qty.String(), p.Name, v.Name)
		}
		if info.UnitType == cart.UnitTypeWeight || info.UnitType == cart.UnitTypeVolume {
			message = fmt.Sprintf("%s %s", message, info.UnitLabel)
		}

		if req.BatchID != nil {
			bid, err := uuid.Parse(*req.BatchID)
			if err != nil {
				return nil, errors.New("invalid batch_id")
			}
			b, err := s.batchRepo.FindByID(ctx, bid)
			if err != nil || b.ProductID != pid {
				return nil, errors.New("batch does not belong to this product")
			}
			in.BatchID = &bid
		}

	default:
		return nil, errors.New("either product_id or manual entry is required")
	}

	snap, err := s.sessions.Do(sessionID, func(c *cart.Cart) error {
		_, err := c.AddItem(in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.respond(sessionID, snap, message), nil
}

// ── Line mutations ───────────────────────────────────────────────────────────

func (s *cartService) RemoveItem(_ context.Context, sessionID uuid.UUID, index int) (*dto.CartResponse, error) {
	snap, err := s.sessions.Do(sessionID, func(c *cart.Cart) error {
		c.RemoveItem(index)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.respond(sessionID, snap, ""), nil
}

func (s *cartService) UpdateQuantity(_ context.Context, sessionID uuid.UUID, index int, req dto.UpdateQuantityRequest) (*dto.CartResponse, error) {
	// Any unusable input degrades to zero, which removes the line.
	qty, _ := cart.ParseQuantity(req.Quantity)

	snap, err := s.sessions.Do(sessionID, func(c *cart.Cart) error {
		if req.Unit != "" {
			return c.UpdateQuantityWithUnit(index, qty, req.Unit)
		}
		c.UpdateQuantity(index, qty)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.respond(sessionID, snap, ""), nil
}

func (s *cartService) UpdatePrice(_ context.Context, sessionID uuid.UUID, index int, req dto.UpdatePriceRequest) (*dto.CartResponse, error) {
	// Unusable input parses to zero; the cart reverts the line to its
	// original price.
	price, _ := cart.ParsePrice(req.Price)

	snap, err := s.sessions.Do(sessionID, func(c *cart.Cart) error {
		c.UpdatePrice(index, price)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.respond(sessionID, snap, ""), nil
}

func (s *cartService) UpdateBatch(ctx context.Context, sessionID uuid.UUID, index int, req dto.UpdateBatchRequest) (*dto.CartResponse, error) {
	var batchID *uuid.UUID
	if req.BatchID != nil {
		bid, err := uuid.Parse(*req.BatchID)
		if err != nil {
			return nil, errors.New("invalid batch_id")
		}
		if _, err := s.batchRepo.FindByID(ctx, bid); err != nil {
			return nil, errors.New("batch not found")
		}
		batchID = &bid
	}

	snap, err := s.sessions.Do(sessionID, func(c *cart.Cart) error {
		c.UpdateBatchID(index, batchID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.respond(sessionID, snap, ""), nil
}

// ── Cart-level settings ──────────────────────────────────────────────────────

func (s *cartService) SetDiscount(_ context.Context, sessionID uuid.UUID, req dto.SetDiscountRequest) (*dto.CartResponse, error) {
	snap, err := s.sessions.Do(sessionID, func(c *cart.Cart) error {
		c.SetDiscount(req.Value, cart.DiscountType(req.Type))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.respond(sessionID, snap, ""), nil
}

func (s *cartService) SetTaxRate(_ context.Context, sessionID uuid.UUID, req dto.SetTaxRateRequest) (*dto.CartResponse, error) {
	snap, err := s.sessions.Do(sessionID, func(c *cart.Cart) error {
		c.SetTaxRate(req.Rate)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.respond(sessionID, snap, ""), nil
}

func (s *cartService) SetCustomer(ctx context.Context, sessionID uuid.UUID, req dto.SetCustomerRequest) (*dto.CartResponse, error) {
	var ref *cart.CustomerRef
	message := "Customer: walk-in"
	if req.CustomerID != nil {
		cid, err := uuid.Parse(*req.CustomerID)
		if err != nil {
			return nil, errors.New("invalid customer_id")
		}
		customer, err := s.customerRepo.FindByID(ctx, cid)
		if err != nil {
			return nil, ErrCustomerNotFound
		}
		r := customer.Ref()
		ref = &r
		message = "Customer: " + r.Name
	}

	snap, err := s.sessions.Do(sessionID, func(c *cart.Cart) error {
		c.SetCustomer(ref)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.respond(sessionID, snap, message), nil
}

func (s *cartService) Clear(_ context.Context, sessionID uuid.UUID) (*dto.CartResponse, error) {
	snap, err := s.sessions.Do(sessionID, func(c *cart.Cart) error {
		c.Clear()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.respond(sessionID, snap, ""), nil
}
