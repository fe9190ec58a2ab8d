package assistant

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"wealthpulse/internal/core"
)

func msg(text string) Message {
	return Message{Text: text, UserID: 7, ReceivedAt: refDate(2026, 1, 7)}
}

func TestInterpret(t *testing.T) {
	cases := []struct {
		name   string
		text   string
		intent Intent
		kind   ChartKind
		limit  int
		check  func(t *testing.T, cmd Command)
	}{
		{
			name:   "pie chart request",
			text:   "Show me a pie chart",
			intent: IntentChart,
			kind:   ChartPie,
			check: func(t *testing.T, cmd Command) {
				if !cmd.Range.Unbounded {
					t.Fatalf("chart without dates should default to all time")
				}
			},
		},
		{
			name:   "summary defaults to this month",
			text:   "what's my spending summary?",
			intent: IntentSummary,
			check: func(t *testing.T, cmd Command) {
				want := NewRange(core.NewDate(2026, 1, 1), core.NewDate(2026, 1, 31))
				if cmd.Range == nil || !cmd.Range.Start.Equal(want.Start.Time) || !cmd.Range.End.Equal(want.End.Time) {
					t.Fatalf("range = %v, want %v", cmd.Range, want)
				}
			},
		},
		{
			name:   "summary for a stated month",
			text:   "spending summary for December 2025",
			intent: IntentSummary,
			check: func(t *testing.T, cmd Command) {
				if cmd.Range.Start.Month() != 12 || cmd.Range.Start.Year() != 2025 {
					t.Fatalf("range = %v, want December 2025", cmd.Range)
				}
			},
		},
		{
			name:   "expenses with explicit count",
			text:   "show my last 5 expenses",
			intent: IntentListExpenses,
			limit:  5,
		},
		{
			name:   "expenses default limit",
			text:   "show recent expenses",
			intent: IntentListExpenses,
			limit:  DefaultExpenseLimit,
		},
		{
			name:   "chart over a hyphen range",
			text:   "chart spending Dec 1-15",
			intent: IntentChart,
			kind:   ChartPie,
			check: func(t *testing.T, cmd Command) {
				if cmd.Range.Unbounded || cmd.Range.Start.Day() != 1 || cmd.Range.End.Day() != 15 {
					t.Fatalf("range = %v, want Dec 1-15", cmd.Range)
				}
			},
		},
		{
			name:   "budget carries no range",
			text:   "how much budget is left?",
			intent: IntentBudgetStatus,
			check: func(t *testing.T, cmd Command) {
				if cmd.Range != nil {
					t.Fatalf("budget status should carry no range, got %v", cmd.Range)
				}
			},
		},
		{
			name:   "unknown text still yields a command",
			text:   "good morning to you",
			intent: IntentUnknown,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd, err := Interpret(msg(tc.text))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cmd.Intent != tc.intent {
				t.Fatalf("intent = %s, want %s", cmd.Intent, tc.intent)
			}
			if cmd.Intent == IntentChart && cmd.Chart != tc.kind {
				t.Fatalf("kind = %s, want %s", cmd.Chart, tc.kind)
			}
			if tc.limit != 0 && cmd.Limit != tc.limit {
				t.Fatalf("limit = %d, want %d", cmd.Limit, tc.limit)
			}
			if cmd.UserID != 7 {
				t.Fatalf("user id = %d, want 7", cmd.UserID)
			}
		})
	}
}

func TestInterpretRejectsZeroLimit(t *testing.T) {
	_, err := Interpret(msg("show my last 0 expenses"))
	if err == nil {
		t.Fatal("expected validation error for zero limit")
	}
}

// Randomized date fragments glued into otherwise ordinary messages must
// never produce an inverted range.
func TestInterpretRangeInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	monthNames := []string{"jan", "feb", "march", "april", "may", "june",
		"july", "aug", "sept", "october", "nov", "december"}
	templates := []string{
		"summary for %s",
		"show expenses from %s to %s",
		"chart %s",
		"total spending between %s and %s",
		"list expenses %s",
	}

	fragment := func() string {
		m := monthNames[rng.Intn(len(monthNames))]
		switch rng.Intn(4) {
		case 0:
			return m
		case 1:
			return m + " " + itoa(1+rng.Intn(35))
		case 2:
			return m + " " + itoa(1+rng.Intn(35)) + "-" + itoa(1+rng.Intn(35))
		default:
			return m + " " + itoa(1+rng.Intn(31)) + ", " + itoa(2020+rng.Intn(10))
		}
	}

	for i := 0; i < 500; i++ {
		tmpl := templates[rng.Intn(len(templates))]
		var text string
		if strings.Count(tmpl, "%s") == 2 {
			text = fmt.Sprintf(tmpl, fragment(), fragment())
		} else {
			text = fmt.Sprintf(tmpl, fragment())
		}
		cmd, err := Interpret(Message{Text: text, UserID: 1, ReceivedAt: refDate(2025, 6, 1)})
		if err != nil {
			continue // validation rejections are acceptable outcomes
		}
		if cmd.Range != nil && !cmd.Range.Valid() {
			t.Fatalf("inverted range %v from %q", cmd.Range, text)
		}
	}
}

func itoa(n int) string { return strconv.Itoa(n) }
