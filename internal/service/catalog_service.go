package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"retailpos/internal/dto"
	"retailpos/internal/model"
	"retailpos/internal/repository"
)

var ErrProductNotFound = errors.New("product not found")

// CatalogService is the business logic for products and their variants.
type CatalogService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	GetByBarcode(ctx context.Context, barcode string) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID) error

	AddVariant(ctx context.Context, productID uuid.UUID, req dto.VariantRequest) (*dto.VariantResponse, error)
}

type catalogService struct {
	repo repository.ProductRepository
}

func NewCatalogService(repo repository.ProductRepository) CatalogService {
	return &catalogService{repo: repo}
}

func (s *catalogService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if existing, err := s.repo.FindByBarcode(ctx, req.Barcode); err == nil && existing != nil {
		return nil, fmt.Errorf("barcode %s already registered to %q", req.Barcode, existing.Name)
	}

	p := &model.Product{
		Barcode:       req.Barcode,
		Name:          req.Name,
		Price:         req.Price,
		PricePerUnit:  req.PricePerUnit,
		Stock:         req.Stock,
		StockByWeight: req.StockByWeight,
		UnitLabel:     req.UnitLabel,
		UnitType:      req.UnitType,
		TaxRate:       req.TaxRate,
		Active:        true,
	}
	if p.UnitLabel == "" {
		p.UnitLabel = "pcs"
	}
	if p.UnitType == "" {
		p.UnitType = "unit"
	}
	for _, v := range req.Variants {
		p.Variants = append(p.Variants, model.Variant{Name: v.Name, Price: v.Price})
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return productToResponse(p), nil
}

func (s *catalogService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrProductNotFound
	}
	return productToResponse(p), nil
}

func (s *catalogService) GetByBarcode(ctx context.Context, barcode string) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByBarcode(ctx, barcode)
	if err != nil {
		return nil, ErrProductNotFound
	}
	return productToResponse(p), nil
}

func (s *catalogService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, *productToResponse(&products[i]))
	}
	return &dto.ProductListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *catalogService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrProductNotFound
	}

	p.Name = req.Name
	p.Price = req.Price
	p.PricePerUnit = req.PricePerUnit
	p.Stock = req.Stock
	p.StockByWeight = req.StockByWeight
	if req.UnitLabel != "" {
		p.UnitLabel = req.UnitLabel
	}
	if req.UnitType != "" {
		p.UnitType = req.UnitType
	}
	p.TaxRate = req.TaxRate

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return productToResponse(p), nil
}

func (s *catalogService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return ErrProductNotFound
	}
	return s.repo.SoftDelete(ctx, id)
}

func (s *catalogService) Reactivate(ctx context.Context, id uuid.UUID) error {
	return s.repo.Reactivate(ctx, id)
}

func (s *catalogService) AddVariant(ctx context.Context, productID uuid.UUID, req dto.VariantRequest) (*dto.VariantResponse, error) {
	if _, err := s.repo.FindByID(ctx, productID); err != nil {
		return nil, ErrProductNotFound
	}
	v := &model.Variant{ProductID: productID, Name: req.Name, Price: req.Price}
	if err := s.repo.CreateVariant(ctx, v); err != nil {
		return nil, err
	}
	return &dto.VariantResponse{ID: v.ID.String(), Name: v.Name, Price: v.Price}, nil
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	variants := make([]dto.VariantResponse, 0, len(p.Variants))
	for _, v := range p.Variants {
		variants = append(variants, dto.VariantResponse{ID: v.ID.String(), Name: v.Name, Price: v.Price})
	}
	return &dto.ProductResponse{
		ID:            p.ID.String(),
		Barcode:       p.Barcode,
		Name:          p.Name,
		Price:         p.Price,
		PricePerUnit:  p.PricePerUnit,
		Stock:         p.Stock,
		StockByWeight: p.StockByWeight,
		UnitLabel:     p.UnitLabel,
		UnitType:      p.UnitType,
		TaxRate:       p.TaxRate,
		Active:        p.Active,
		Variants:      variants,
	}
}
