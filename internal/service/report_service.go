package service

import (
	"context"
	"fmt"
	"time"

	"retailpos/internal/dto"
	"retailpos/internal/repository"
)

// ReportService produces the end-of-day dashboard figures.
type ReportService interface {
	// DailySummary aggregates invoices of one day. An empty date means today.
	DailySummary(ctx context.Context, date string) (*dto.SalesSummary, error)
}

type reportService struct {
	invoiceRepo repository.InvoiceRepository
}

func NewReportService(invoiceRepo repository.InvoiceRepository) ReportService {
	return &reportService{invoiceRepo: invoiceRepo}
}

func (s *reportService) DailySummary(ctx context.Context, date string) (*dto.SalesSummary, error) {
	day := time.Now()
	if date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", date, time.Local)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
		}
		day = parsed
	}
	return s.invoiceRepo.DailySummary(ctx, day)
}
