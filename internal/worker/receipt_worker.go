package worker

// receipt_worker.go
// Processes receipt jobs from QueueReceipt: renders the thermal-format PDF
// for a finalized invoice and records its path. Failures are scheduled for
// re-attempt by the retry cron with exponential backoff; jobs that exhaust
// the retry budget go to the DLQ.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"retailpos/internal/infra"
	"retailpos/internal/repository"
)

// MaxReceiptRetries is the total attempt budget per invoice (first attempt
// included) before the job is parked in the DLQ.
const MaxReceiptRetries = 3

// ReceiptJobPayload is the job envelope sent to QueueReceipt.
type ReceiptJobPayload struct {
	InvoiceID     string `json:"invoice_id"`
	CustomerEmail string `json:"customer_email,omitempty"`
}

type ReceiptWorker struct {
	invoiceRepo    repository.InvoiceRepository
	dispatcher     *Dispatcher
	rdb            *redis.Client
	storeName      string
	pdfStoragePath string
}

func NewReceiptWorker(
	invoiceRepo repository.InvoiceRepository,
	dispatcher *Dispatcher,
	rdb *redis.Client,
	storeName string,
	pdfStoragePath string,
) *ReceiptWorker {
	return &ReceiptWorker{
		invoiceRepo:    invoiceRepo,
		dispatcher:     dispatcher,
		rdb:            rdb,
		storeName:      storeName,
		pdfStoragePath: pdfStoragePath,
	}
}

// Process handles a single receipt job:
//  1. Fetch the invoice (items + payments preloaded)
//  2. Render the PDF
//  3. Record the path, or schedule a retry / park in DLQ on failure
//  4. Optionally enqueue an email job with the rendered receipt
func (w *ReceiptWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ReceiptJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("receipt_worker: invalid payload")
		return
	}

	invoiceID, err := uuid.Parse(payload.InvoiceID)
	if err != nil {
		log.Error().Str("invoice_id", payload.InvoiceID).Msg("receipt_worker: invalid invoice_id")
		return
	}

	inv, err := w.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		log.Error().Err(err).Str("invoice_id", payload.InvoiceID).Msg("receipt_worker: invoice not found")
		return
	}
	if inv.PDFPath != nil {
		log.Debug().Str("invoice_id", payload.InvoiceID).Msg("receipt_worker: receipt already rendered")
		return
	}

	pdfPath, renderErr := infra.GenerateReceiptPDF(inv, w.storeName, w.pdfStoragePath)
	if renderErr != nil {
		w.handleFailure(ctx, inv.ID, inv.RetryCount, raw, renderErr)
		return
	}

	if err := w.invoiceRepo.SetReceiptPath(ctx, inv.ID, pdfPath); err != nil {
		log.Error().Err(err).Str("invoice_id", payload.InvoiceID).Msg("receipt_worker: failed to record pdf path")
		return
	}
	log.Info().Str("pdf", pdfPath).Int("invoice", inv.Number).Msg("receipt_worker: receipt rendered")

	if payload.CustomerEmail != "" {
		emailJob := EmailJobPayload{
			ToEmail: payload.CustomerEmail,
			Subject: fmt.Sprintf("%s — Receipt #%d", w.storeName, inv.Number),
			Body:    fmt.Sprintf("Thank you for your purchase.\nTotal: Rs. %s", inv.Total.StringFixed(2)),
			PDFPath: pdfPath,
		}
		if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
			log.Warn().Err(err).Str("email", payload.CustomerEmail).Msg("receipt_worker: failed to enqueue email")
		}
	}
}

// handleFailure increments the retry count and either schedules the next
// attempt or, once the budget is spent, parks the job in the DLQ.
func (w *ReceiptWorker) handleFailure(ctx context.Context, invoiceID uuid.UUID, priorRetries int, raw json.RawMessage, cause error) {
	attempts := priorRetries + 1

	if attempts >= MaxReceiptRetries {
		reason := fmt.Sprintf("max retries (%d) exceeded: %v", MaxReceiptRetries, cause)
		SendToDLQ(ctx, w.rdb, QueueReceipt, "receipt", raw, reason, attempts)
		if err := w.invoiceRepo.AbandonReceiptRetries(ctx, invoiceID, reason); err != nil {
			log.Error().Err(err).Str("invoice_id", invoiceID.String()).Msg("receipt_worker: failed to abandon retries")
		}
		return
	}

	nextRetry := time.Now().Add(computeRetryBackoff(attempts))
	if err := w.invoiceRepo.MarkReceiptFailed(ctx, invoiceID, cause.Error(), nextRetry); err != nil {
		log.Error().Err(err).Str("invoice_id", invoiceID.String()).Msg("receipt_worker: failed to schedule retry")
		return
	}
	log.Warn().
		Err(cause).
		Str("invoice_id", invoiceID.String()).
		Int("attempt", attempts).
		Time("next_retry_at", nextRetry).
		Msg("receipt_worker: render failed, retry scheduled")
}

// computeRetryBackoff returns the wait before the next attempt: 1m, 2m, 4m …
func computeRetryBackoff(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	return time.Duration(1<<uint(attempts-1)) * time.Minute
}
