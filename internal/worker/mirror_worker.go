// Package worker keeps the external sheet mirror in step with the
// expense store.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"tally/internal/amqp"
	"tally/internal/core"
	"tally/internal/sheets"
	"tally/internal/store"
)

// LedgerSource is the slice of the repository the worker needs.
// *storage.SQLiteRepository satisfies it.
type LedgerSource interface {
	GetExpense(ctx context.Context, id string) (core.Expense, error)
	ListPendingSync(ctx context.Context, limit int) ([]core.Expense, error)
	MarkSynced(ctx context.Context, id string) error
	MarkSyncError(ctx context.Context, id string) error
}

// EventConsumer delivers expense events until the context is cancelled.
// Satisfied by *amqp.Client.
type EventConsumer interface {
	ConsumeExpenseEvents(ctx context.Context, handler func(*amqp.ExpenseEvent) error) error
}

// MirrorWorker consumes expense events and pushes them to the mirror.
// A periodic rescan picks up rows whose event was lost.
type MirrorWorker struct {
	source    LedgerSource
	mirror    sheets.Mirror
	batchSize int
}

func NewMirrorWorker(source LedgerSource, mirror sheets.Mirror, batchSize int) *MirrorWorker {
	return &MirrorWorker{
		source:    source,
		mirror:    mirror,
		batchSize: batchSize,
	}
}

// HandleEvent processes one expense event. Returning an error requeues
// the delivery.
func (w *MirrorWorker) HandleEvent(ctx context.Context, msg *amqp.ExpenseEvent) error {
	slog.InfoContext(ctx, "Processing expense event", "id", msg.ID, "action", msg.Action)

	if msg.Action == amqp.ActionDeleted {
		if err := w.mirror.RemoveExpense(ctx, msg.ID); err != nil {
			return fmt.Errorf("remove mirrored expense: %w", err)
		}
		return nil
	}

	expense, err := w.source.GetExpense(ctx, msg.ID)
	if errors.Is(err, store.ErrNotFound) {
		// Deleted between event and processing; the delete event will
		// clean the mirror.
		slog.WarnContext(ctx, "Expense gone before mirroring, skipping", "id", msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load expense: %w", err)
	}

	if err := w.mirror.AppendExpense(ctx, expense); err != nil {
		if markErr := w.source.MarkSyncError(ctx, msg.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", msg.ID, "error", markErr)
		}
		return fmt.Errorf("mirror expense: %w", err)
	}

	return w.source.MarkSynced(ctx, msg.ID)
}

// RescanPending mirrors rows still marked pending, in batches. Rows that
// fail are flagged and skipped until their next update.
func (w *MirrorWorker) RescanPending(ctx context.Context) error {
	pending, err := w.source.ListPendingSync(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Rescan found pending expenses", "count", len(pending))
	for _, e := range pending {
		if err := w.mirror.AppendExpense(ctx, e); err != nil {
			slog.ErrorContext(ctx, "Rescan mirror failed", "id", e.ID, "error", err)
			if markErr := w.source.MarkSyncError(ctx, e.ID); markErr != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "id", e.ID, "error", markErr)
			}
			continue
		}
		if err := w.source.MarkSynced(ctx, e.ID); err != nil {
			return fmt.Errorf("mark synced: %w", err)
		}
	}
	return nil
}

// Run drives the consumer and the rescan ticker until the context is
// cancelled; either loop failing stops the other.
func (w *MirrorWorker) Run(ctx context.Context, consumer EventConsumer, rescanInterval time.Duration) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return consumer.ConsumeExpenseEvents(ctx, func(msg *amqp.ExpenseEvent) error {
			return w.HandleEvent(ctx, msg)
		})
	})

	g.Go(func() error {
		ticker := time.NewTicker(rescanInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := w.RescanPending(ctx); err != nil {
					slog.ErrorContext(ctx, "Rescan failed", "error", err)
				}
			}
		}
	})

	return g.Wait()
}
