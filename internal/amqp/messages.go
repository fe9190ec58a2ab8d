package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventKind identifies what happened to an expense.
type EventKind string

const (
	EventExpenseCreated EventKind = "expense.created"
	EventExpenseDeleted EventKind = "expense.deleted"
)

// ExpenseEvent is a lightweight notification that an expense changed.
// It carries IDs only; the sync worker rehydrates the full row from the
// database so events stay small and never go stale in the queue.
type ExpenseEvent struct {
	EventID   string    `json:"event_id"`
	Kind      EventKind `json:"kind"`
	ExpenseID int64     `json:"expense_id"`
	UserID    int64     `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewExpenseEvent creates an event with a fresh UUID.
func NewExpenseEvent(kind EventKind, expenseID, userID int64) *ExpenseEvent {
	return &ExpenseEvent{
		EventID:   uuid.NewString(),
		Kind:      kind,
		ExpenseID: expenseID,
		UserID:    userID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ExpenseEventFromJSON creates an event from JSON bytes
func ExpenseEventFromJSON(data []byte) (*ExpenseEvent, error) {
	var ev ExpenseEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	switch ev.Kind {
	case EventExpenseCreated, EventExpenseDeleted:
	default:
		return nil, fmt.Errorf("unknown event kind %q", ev.Kind)
	}
	return &ev, nil
}
