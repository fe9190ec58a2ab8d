// Package store declares the outbound ports of the data layer. The
// assistant dispatcher and the HTTP handlers depend on these interfaces
// only; SQLite and memory implementations live in subpackages.
package store

import (
	"context"

	"wealthpulse/internal/core"
)

// ExpenseFilter narrows an expense listing. Nil Start/End leave that side
// open; Limit zero means unlimited. Results come back newest first.
type ExpenseFilter struct {
	Start    *core.Date
	End      *core.Date
	Category string
	Limit    int
}

type (
	ExpenseStore interface {
		AddExpense(ctx context.Context, e core.Expense) (int64, error)
		ListExpenses(ctx context.Context, userID int64, f ExpenseFilter) ([]core.Expense, error)
		// GetExpense returns any user's expense by ID; the sync worker
		// uses it to rehydrate events.
		GetExpense(ctx context.Context, id int64) (core.Expense, error)
		DeleteExpense(ctx context.Context, userID, id int64) error
	}

	CategoryStore interface {
		AddCategory(ctx context.Context, c core.Category) (int64, error)
		ListCategories(ctx context.Context, userID int64) ([]core.Category, error)
	}

	InvestmentStore interface {
		AddInvestment(ctx context.Context, inv core.Investment) (int64, error)
		ListInvestments(ctx context.Context, userID int64) ([]core.Investment, error)
	}

	// ExportJournal tracks which expenses have reached the export ledger.
	// The sync worker's periodic sweep re-exports rows the event path
	// missed, e.g. after a broker outage.
	ExportJournal interface {
		ListUnexported(ctx context.Context, limit int) ([]core.Expense, error)
		MarkExported(ctx context.Context, id int64) error
	}

	UserStore interface {
		GetUser(ctx context.Context, id int64) (core.User, error)
	}

	// ChatLog persists the conversation transcript.
	ChatLog interface {
		AppendChatMessage(ctx context.Context, m core.ChatMessage) (int64, error)
		ListChatMessages(ctx context.Context, userID int64, limit int) ([]core.ChatMessage, error)
	}

	// Store is the unified backend the application wires at startup.
	Store interface {
		ExpenseStore
		CategoryStore
		InvestmentStore
		UserStore
		ChatLog
	}
)
