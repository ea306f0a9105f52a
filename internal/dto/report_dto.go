package dto

import "github.com/shopspring/decimal"

// SalesSummary aggregates one day of invoices. Scanned directly from the
// aggregate query, so field names mirror the column aliases.
type SalesSummary struct {
	Date           string          `json:"date"`
	InvoiceCount   int64           `json:"invoice_count"`
	GrossTotal     decimal.Decimal `json:"gross_total"`
	TaxTotal       decimal.Decimal `json:"tax_total"`
	OutstandingDue decimal.Decimal `json:"outstanding_due"`
}
