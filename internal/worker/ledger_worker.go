package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"billhub/internal/amqp"
	"billhub/internal/log"
	"billhub/internal/sheets"
)

// Consumer delivers bill events until ctx ends.
type Consumer interface {
	ConsumeBillEvents(ctx context.Context, handler func(context.Context, *amqp.BillEvent) error) error
}

// LedgerWorker copies bill events into the office ledger.
type LedgerWorker struct {
	ledger    sheets.LedgerWriter
	logger    *log.Logger
	processed atomic.Int64
	failed    atomic.Int64
}

func NewLedgerWorker(ledger sheets.LedgerWriter, logger *log.Logger) *LedgerWorker {
	return &LedgerWorker{ledger: ledger, logger: logger.WithComponent(log.ComponentWorker)}
}

// HandleBillEvent appends one event to the ledger. An error requeues it.
func (w *LedgerWorker) HandleBillEvent(ctx context.Context, ev *amqp.BillEvent) error {
	ref, err := w.ledger.AppendEntry(ctx, EntryFromEvent(ev))
	if err != nil {
		w.failed.Add(1)
		return fmt.Errorf("append ledger entry: %w", err)
	}
	w.processed.Add(1)
	w.logger.InfoContext(ctx, "Bill event recorded",
		log.FieldRoutingKey, ev.Type, log.FieldBillID, ev.BillID, log.FieldLedgerRef, ref)
	return nil
}

// EntryFromEvent converts a bus event to a ledger row.
func EntryFromEvent(ev *amqp.BillEvent) sheets.Entry {
	return sheets.Entry{
		Event:     ev.Type,
		Reference: ev.RequestID,
		Phone:     ev.Phone,
		Name:      strings.TrimSpace(ev.Name + " " + ev.LastName),
		BillID:    ev.BillID,
		Category:  ev.Category,
		Amount:    ev.Amount,
		DueDate:   ev.DueDate,
		Month:     ev.Month,
		Year:      ev.Year,
		At:        ev.Timestamp,
	}
}

// Run consumes events and periodically logs throughput until ctx ends.
func (w *LedgerWorker) Run(ctx context.Context, consumer Consumer, statsEvery time.Duration) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return consumer.ConsumeBillEvents(ctx, w.HandleBillEvent)
	})

	if statsEvery > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(statsEvery)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					w.logger.InfoContext(ctx, "Ledger worker stats",
						"processed", w.processed.Load(), "failed", w.failed.Load())
				}
			}
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Stats returns the processed and failed counters.
func (w *LedgerWorker) Stats() (processed, failed int64) {
	return w.processed.Load(), w.failed.Load()
}
