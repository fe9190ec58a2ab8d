// Package worker mirrors expense changes to the export ledger. Events
// drive the fast path; a periodic sweep picks up rows the event path
// missed, e.g. after a broker outage.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"wealthpulse/internal/amqp"
	"wealthpulse/internal/core"
	"wealthpulse/internal/export"
	"wealthpulse/internal/store"
)

// Store is the storage surface the worker needs: expense reads plus the
// export journal.
type Store interface {
	store.ExpenseStore
	store.ExportJournal
}

// SyncWorker consumes expense events and writes them to the export ledger.
type SyncWorker struct {
	store     Store
	writer    export.ExpenseWriter
	batchSize int
}

func NewSyncWorker(st Store, writer export.ExpenseWriter, batchSize int) *SyncWorker {
	return &SyncWorker{store: st, writer: writer, batchSize: batchSize}
}

// HandleEvent processes a single expense event. Created expenses are
// rehydrated from storage before export so the queue never carries stale
// amounts; deletions become marker rows. A row that has vanished between
// publish and consume is dropped rather than retried forever.
func (w *SyncWorker) HandleEvent(ctx context.Context, ev *amqp.ExpenseEvent) error {
	switch ev.Kind {
	case amqp.EventExpenseCreated:
		return w.exportCreated(ctx, ev)
	case amqp.EventExpenseDeleted:
		return w.exportDeleted(ctx, ev)
	default:
		slog.WarnContext(ctx, "Dropping event of unknown kind",
			"event_id", ev.EventID, "kind", ev.Kind)
		return nil
	}
}

func (w *SyncWorker) exportCreated(ctx context.Context, ev *amqp.ExpenseEvent) error {
	expense, err := w.store.GetExpense(ctx, ev.ExpenseID)
	if errors.Is(err, core.ErrNotFound) {
		slog.WarnContext(ctx, "Expense vanished before export, dropping event",
			"event_id", ev.EventID, "expense_id", ev.ExpenseID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get expense %d: %w", ev.ExpenseID, err)
	}

	ref, err := w.exportOne(ctx, expense)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Expense exported",
		"event_id", ev.EventID,
		"expense_id", ev.ExpenseID,
		"user_id", ev.UserID,
		"sheets_ref", ref)
	return nil
}

func (w *SyncWorker) exportDeleted(ctx context.Context, ev *amqp.ExpenseEvent) error {
	ref, err := w.writer.AppendDeletionMarker(ctx, ev.ExpenseID)
	if err != nil {
		return fmt.Errorf("record deletion of expense %d: %w", ev.ExpenseID, err)
	}

	slog.InfoContext(ctx, "Expense deletion recorded",
		"event_id", ev.EventID,
		"expense_id", ev.ExpenseID,
		"sheets_ref", ref)
	return nil
}

// exportOne appends the row and marks it in the journal so the sweep
// never exports it twice.
func (w *SyncWorker) exportOne(ctx context.Context, expense core.Expense) (string, error) {
	ref, err := w.writer.Append(ctx, expense)
	if err != nil {
		return "", fmt.Errorf("append expense %d to ledger: %w", expense.ID, err)
	}
	if err := w.store.MarkExported(ctx, expense.ID); err != nil {
		return "", fmt.Errorf("journal expense %d: %w", expense.ID, err)
	}
	return ref, nil
}

// ProcessPending exports one batch of journal backlog. Called at startup
// and from the periodic sweep.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.store.ListUnexported(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending expenses: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Exporting pending expenses", "count", len(pending))
	for _, expense := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		ref, err := w.exportOne(ctx, expense)
		if err != nil {
			return err
		}
		slog.InfoContext(ctx, "Pending expense exported",
			"expense_id", expense.ID, "sheets_ref", ref)
	}
	return nil
}

// RunSweep retries the export backlog every interval until ctx is
// cancelled. Sweep failures are logged and retried next tick.
func (w *SyncWorker) RunSweep(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.ProcessPending(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				slog.ErrorContext(ctx, "Pending export sweep failed", "error", err)
			}
		}
	}
}

// Run consumes events until ctx is cancelled.
func (w *SyncWorker) Run(ctx context.Context, client *amqp.Client) error {
	return client.ConsumeExpenseEvents(ctx, func(ev *amqp.ExpenseEvent) error {
		return w.HandleEvent(ctx, ev)
	})
}
