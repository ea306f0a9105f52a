package worker

// retry_cron.go
// Background goroutine that periodically re-enqueues receipt jobs for
// invoices whose PDF render failed and whose next_retry_at is in the past.
// The receipt worker itself decides when the retry budget is spent.

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"retailpos/internal/repository"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10
)

// RetryCronConfig holds the dependencies for the retry goroutine.
type RetryCronConfig struct {
	InvoiceRepo repository.InvoiceRepository
	Dispatcher  *Dispatcher
}

// StartRetryCron launches a background goroutine that ticks every 30s,
// queries invoices awaiting a receipt re-render, and pushes them back onto
// the receipt queue. It respects the context for graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, cfg)
			}
		}
	}()
}

func processRetries(ctx context.Context, cfg RetryCronConfig) {
	invoices, err := cfg.InvoiceRepo.ListPendingReceiptRetries(ctx, time.Now(), retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query pending retries")
		return
	}
	if len(invoices) == 0 {
		return
	}

	log.Info().Int("count", len(invoices)).Msg("retry_cron: re-enqueueing failed receipts")

	for i := range invoices {
		inv := &invoices[i]
		payload := ReceiptJobPayload{InvoiceID: inv.ID.String()}
		if err := cfg.Dispatcher.EnqueueReceipt(ctx, payload); err != nil {
			log.Error().Err(err).Str("invoice_id", inv.ID.String()).Msg("retry_cron: enqueue failed")
			continue
		}
		// Push next_retry_at forward so the next tick doesn't double-enqueue
		// while the job sits in the queue.
		next := time.Now().Add(retryTickInterval * 2)
		if err := cfg.InvoiceRepo.BumpReceiptRetryWindow(ctx, inv.ID, next); err != nil {
			log.Warn().Err(err).Str("invoice_id", inv.ID.String()).Msg("retry_cron: failed to bump retry window")
		}
	}
}
