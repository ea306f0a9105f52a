package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"retailpos/internal/dto"
	"retailpos/internal/model"
	"retailpos/internal/repository"
)

// BatchService manages received stock lots. Lots are consumed oldest-first at
// checkout unless a cart line pins a specific one.
type BatchService interface {
	Receive(ctx context.Context, req dto.CreateBatchRequest) (*dto.BatchResponse, error)
	ListByProduct(ctx context.Context, productID uuid.UUID, includeEmpty bool) (*dto.BatchListResponse, error)
}

type batchService struct {
	repo        repository.BatchRepository
	productRepo repository.ProductRepository
}

func NewBatchService(repo repository.BatchRepository, productRepo repository.ProductRepository) BatchService {
	return &batchService{repo: repo, productRepo: productRepo}
}

func (s *batchService) Receive(ctx context.Context, req dto.CreateBatchRequest) (*dto.BatchResponse, error) {
	pid, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, errors.New("invalid product_id")
	}
	if _, err := s.productRepo.FindByID(ctx, pid); err != nil {
		return nil, ErrProductNotFound
	}
	if req.Quantity.Sign() <= 0 {
		return nil, errors.New("batch quantity must be positive")
	}

	b := &model.StockBatch{ProductID: pid, Quantity: req.Quantity}
	if req.Note != "" {
		note := req.Note
		b.Note = &note
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return batchToResponse(b), nil
}

func (s *batchService) ListByProduct(ctx context.Context, productID uuid.UUID, includeEmpty bool) (*dto.BatchListResponse, error) {
	batches, err := s.repo.ListByProduct(ctx, productID, includeEmpty)
	if err != nil {
		return nil, err
	}
	items := make([]dto.BatchResponse, 0, len(batches))
	for i := range batches {
		items = append(items, *batchToResponse(&batches[i]))
	}
	return &dto.BatchListResponse{Data: items}, nil
}

func batchToResponse(b *model.StockBatch) *dto.BatchResponse {
	note := ""
	if b.Note != nil {
		note = *b.Note
	}
	return &dto.BatchResponse{
		ID:        b.ID.String(),
		ProductID: b.ProductID.String(),
		Quantity:  b.Quantity,
		Note:      note,
		CreatedAt: b.CreatedAt,
	}
}
