// Package memory is an in-process ExpenseWriter for development and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"wealthpulse/internal/core"
	ports "wealthpulse/internal/export"
)

type Writer struct {
	mu       sync.Mutex
	rows     []core.Expense
	deleted  []int64
	appended int
}

var _ ports.ExpenseWriter = (*Writer)(nil)

func New() *Writer {
	return &Writer{}
}

func (w *Writer) Append(_ context.Context, e core.Expense) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.rows = append(w.rows, e)
	w.appended++
	return fmt.Sprintf("mem-%d", w.appended), nil
}

func (w *Writer) AppendDeletionMarker(_ context.Context, expenseID int64) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.deleted = append(w.deleted, expenseID)
	w.appended++
	return fmt.Sprintf("mem-%d", w.appended), nil
}

// Rows returns a copy of the appended expenses.
func (w *Writer) Rows() []core.Expense {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]core.Expense, len(w.rows))
	copy(out, w.rows)
	return out
}

// DeletionMarkers returns the IDs recorded as deleted.
func (w *Writer) DeletionMarkers() []int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]int64, len(w.deleted))
	copy(out, w.deleted)
	return out
}
