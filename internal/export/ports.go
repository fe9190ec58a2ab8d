// Package export defines the outbound port for mirroring expenses to an
// external ledger, with Google Sheets and in-memory adapters beneath it.
package export

import (
	"context"

	"wealthpulse/internal/core"
)

type (
	// ExpenseWriter mirrors expense changes to the external ledger.
	ExpenseWriter interface {
		// Append writes one expense row and returns an adapter-specific
		// row reference.
		Append(ctx context.Context, e core.Expense) (rowRef string, err error)

		// AppendDeletionMarker records that an expense was removed. The
		// row itself stays; deletion events carry only IDs so the
		// original row cannot be located reliably after the fact.
		AppendDeletionMarker(ctx context.Context, expenseID int64) (rowRef string, err error)
	}
)
