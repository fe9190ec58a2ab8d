package assistant

import (
	"time"
)

// DefaultExpenseLimit caps recent-expense listings when the message does
// not name a count.
const DefaultExpenseLimit = 10

// maxLimit rejects absurd listing requests before they reach storage.
const maxLimit = 1000

// Command is the fully resolved, immutable instruction handed to the data
// layer. Range is nil for intents that carry no temporal scope (budget
// status, categories, help, unknown); Limit is zero when unlimited.
type Command struct {
	Intent Intent
	Range  *DateRange
	Chart  ChartKind
	Limit  int
	UserID int64
}

// Build combines intent, chart kind, parsed date range and a raw limit into
// a Command, applying per-intent defaults:
//
//   - Summary with no range defaults to the month containing ref.
//   - ListExpenses, ListInvestments and Chart default to all time.
//   - No limit means DefaultExpenseLimit for expense listings, unlimited
//     otherwise.
//
// hasLimit distinguishes "no limit stated" from an explicit value; explicit
// values outside [1, maxLimit] are rejected with a validation error rather
// than clamped silently.
func Build(intent Intent, kind ChartKind, rng *DateRange, limit int, hasLimit bool, userID int64, ref time.Time) (Command, error) {
	if hasLimit {
		if limit < 1 {
			return Command{}, validationErr("limit must be a positive integer, got %d", limit)
		}
		if limit > maxLimit {
			return Command{}, validationErr("limit %d exceeds the maximum of %d", limit, maxLimit)
		}
	} else {
		limit = 0
		if intent == IntentListExpenses {
			limit = DefaultExpenseLimit
		}
	}

	// The parser constructs only ordered ranges; re-check at the boundary
	// anyway so a malformed range can never reach the data layer.
	if rng != nil && !rng.Valid() {
		return Command{}, validationErr("date range starts %s after it ends %s",
			rng.Start.Format("2006-01-02"), rng.End.Format("2006-01-02"))
	}

	if rng == nil {
		switch intent {
		case IntentSummary:
			r := MonthRange(ref)
			rng = &r
		case IntentListExpenses, IntentListInvestments, IntentChart:
			r := AllTime()
			rng = &r
		}
	} else {
		r := *rng // keep the command's range detached from the caller's copy
		rng = &r
	}

	return Command{
		Intent: intent,
		Range:  rng,
		Chart:  kind,
		Limit:  limit,
		UserID: userID,
	}, nil
}
