package chat

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"wealthpulse/internal/assistant"
	"wealthpulse/internal/core"
	applog "wealthpulse/internal/log"
	"wealthpulse/internal/store/memory"
)

func discardLogger() *applog.Logger {
	return applog.New(applog.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

var testRef = time.Date(2025, 12, 10, 15, 30, 0, 0, time.UTC)

func newTestDispatcher(t *testing.T) (*Dispatcher, *memory.Store) {
	t.Helper()
	st := memory.New()
	st.SeedUser(core.User{
		ID:            1,
		Username:      "alice",
		Currency:      "USD",
		MonthlyBudget: core.Money{Cents: 100000},
	})
	return NewDispatcher(st, discardLogger()), st
}

func seedExpenses(t *testing.T, st *memory.Store) {
	t.Helper()
	ctx := context.Background()
	rows := []core.Expense{
		{UserID: 1, Title: "Groceries", Amount: core.Money{Cents: 8550}, Date: core.NewDate(2025, 12, 2), Category: "Food", PaymentMethod: "Card"},
		{UserID: 1, Title: "Bus pass", Amount: core.Money{Cents: 4000}, Date: core.NewDate(2025, 12, 5), Category: "Transport", PaymentMethod: "Card"},
		{UserID: 1, Title: "Dinner", Amount: core.Money{Cents: 6250}, Date: core.NewDate(2025, 12, 8), Category: "Food", PaymentMethod: "Cash"},
		{UserID: 1, Title: "Cinema", Amount: core.Money{Cents: 1800}, Date: core.NewDate(2025, 11, 20), Category: "Entertainment", PaymentMethod: "Card"},
	}
	for _, e := range rows {
		if _, err := st.AddExpense(ctx, e); err != nil {
			t.Fatalf("AddExpense(%q): %v", e.Title, err)
		}
	}
}

func handle(t *testing.T, d *Dispatcher, text string) Reply {
	t.Helper()
	reply, err := d.Handle(context.Background(), assistant.Message{
		Text:       text,
		UserID:     1,
		ReceivedAt: testRef,
	})
	if err != nil {
		t.Fatalf("Handle(%q): %v", text, err)
	}
	return reply
}

func TestHandleListExpenses(t *testing.T) {
	d, st := newTestDispatcher(t)
	seedExpenses(t, st)

	reply := handle(t, d, "Show my recent expenses")
	if !strings.Contains(reply.Text, "Found 4 expense(s)") {
		t.Errorf("reply missing count header:\n%s", reply.Text)
	}
	if !strings.Contains(reply.Text, "💰 Total: USD 206.00") {
		t.Errorf("reply missing total:\n%s", reply.Text)
	}
	// Newest first.
	dinner := strings.Index(reply.Text, "Dinner")
	cinema := strings.Index(reply.Text, "Cinema")
	if dinner < 0 || cinema < 0 || dinner > cinema {
		t.Errorf("expenses not newest first:\n%s", reply.Text)
	}
}

func TestHandleListExpensesEmpty(t *testing.T) {
	d, _ := newTestDispatcher(t)
	reply := handle(t, d, "list expenses")
	if reply.Text != "No expenses found." {
		t.Errorf("reply = %q, want no-expenses message", reply.Text)
	}
}

func TestHandleSummaryDefaultsToCurrentMonth(t *testing.T) {
	d, st := newTestDispatcher(t)
	seedExpenses(t, st)

	reply := handle(t, d, "what's my spending summary?")
	if !strings.Contains(reply.Text, "Expense Summary - December 2025") {
		t.Errorf("summary not scoped to current month:\n%s", reply.Text)
	}
	// November's cinema trip is outside the window.
	if !strings.Contains(reply.Text, "Count: 3 expenses") {
		t.Errorf("wrong expense count:\n%s", reply.Text)
	}
	if !strings.Contains(reply.Text, "Food: USD 148.00") {
		t.Errorf("missing category breakdown:\n%s", reply.Text)
	}
	// Budget tail appears for the current month.
	if !strings.Contains(reply.Text, "💳 Budget: USD 1000.00") {
		t.Errorf("missing budget line:\n%s", reply.Text)
	}
	if !strings.Contains(reply.Text, "(18.8% used)") {
		t.Errorf("missing percent used:\n%s", reply.Text)
	}
}

func TestHandleSummaryExplicitRangeSkipsBudget(t *testing.T) {
	d, st := newTestDispatcher(t)
	seedExpenses(t, st)

	reply := handle(t, d, "summary for November 2025")
	if !strings.Contains(reply.Text, "Expense Summary - November 2025") {
		t.Errorf("wrong period:\n%s", reply.Text)
	}
	if strings.Contains(reply.Text, "Budget:") {
		t.Errorf("budget line should only appear for the current month:\n%s", reply.Text)
	}
}

func TestHandleBudgetStatus(t *testing.T) {
	d, st := newTestDispatcher(t)
	seedExpenses(t, st)

	reply := handle(t, d, "how much budget do I have left?")
	if !strings.Contains(reply.Text, "Budget Status - December 2025") {
		t.Errorf("missing header:\n%s", reply.Text)
	}
	if !strings.Contains(reply.Text, "Remaining: USD 812.00") {
		t.Errorf("wrong remaining:\n%s", reply.Text)
	}
	if !strings.Contains(reply.Text, "✅ Within budget") {
		t.Errorf("missing verdict:\n%s", reply.Text)
	}
}

func TestHandleBudgetStatusTiers(t *testing.T) {
	tests := []struct {
		name     string
		spent    int64
		wantTier string
	}{
		{"over budget", 120000, "⚠️ Over budget!"},
		{"over ninety", 95000, "Over 90% of budget used"},
		{"over seventy five", 80000, "Over 75% of budget used"},
		{"within", 20000, "✅ Within budget"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, st := newTestDispatcher(t)
			_, err := st.AddExpense(context.Background(), core.Expense{
				UserID: 1, Title: "Big spend", Amount: core.Money{Cents: tt.spent},
				Date: core.NewDate(2025, 12, 3), Category: "Misc", PaymentMethod: "Card",
			})
			if err != nil {
				t.Fatal(err)
			}
			reply := handle(t, d, "budget status")
			if !strings.Contains(reply.Text, tt.wantTier) {
				t.Errorf("reply missing %q:\n%s", tt.wantTier, reply.Text)
			}
		})
	}
}

func TestHandleBudgetStatusNoBudget(t *testing.T) {
	d, _ := newTestDispatcher(t)
	st := memory.New()
	st.SeedUser(core.User{ID: 2, Username: "bob", Currency: "EUR"})
	d = NewDispatcher(st, discardLogger())

	reply, err := d.Handle(context.Background(), assistant.Message{Text: "budget", UserID: 2, ReceivedAt: testRef})
	if err != nil {
		t.Fatal(err)
	}
	if reply.Text != "No monthly budget set." {
		t.Errorf("reply = %q", reply.Text)
	}
}

func TestHandleInvestments(t *testing.T) {
	d, st := newTestDispatcher(t)
	ctx := context.Background()
	invs := []core.Investment{
		{UserID: 1, Name: "Index Fund", Type: "ETF", Amount: core.Money{Cents: 500000}, CurrentValue: core.Money{Cents: 550000}},
		{UserID: 1, Name: "Crypto", Type: "Crypto", Amount: core.Money{Cents: 100000}, CurrentValue: core.Money{Cents: 80000}},
	}
	for _, inv := range invs {
		if _, err := st.AddInvestment(ctx, inv); err != nil {
			t.Fatal(err)
		}
	}

	reply := handle(t, d, "show my portfolio")
	if !strings.Contains(reply.Text, "Index Fund (ETF)") {
		t.Errorf("missing investment:\n%s", reply.Text)
	}
	if !strings.Contains(reply.Text, "📉 USD -200.00 (-20.00%)") {
		t.Errorf("missing loss line:\n%s", reply.Text)
	}
	if !strings.Contains(reply.Text, "Total Invested: USD 6000.00") {
		t.Errorf("missing totals:\n%s", reply.Text)
	}
	if !strings.Contains(reply.Text, "Total Returns: USD 300.00 (+5.00%)") {
		t.Errorf("missing portfolio returns:\n%s", reply.Text)
	}
}

func TestHandleCategories(t *testing.T) {
	d, st := newTestDispatcher(t)
	ctx := context.Background()
	cats := []core.Category{
		{UserID: 1, Name: "Food", Description: "Groceries and dining"},
		{UserID: 1, Name: "Transport"},
	}
	for _, c := range cats {
		if _, err := st.AddCategory(ctx, c); err != nil {
			t.Fatal(err)
		}
	}

	reply := handle(t, d, "list my categories")
	if !strings.Contains(reply.Text, "• Food: Groceries and dining") {
		t.Errorf("missing described category:\n%s", reply.Text)
	}
	if !strings.Contains(reply.Text, "• Transport\n") {
		t.Errorf("missing bare category:\n%s", reply.Text)
	}
}

func TestHandleChartPie(t *testing.T) {
	d, st := newTestDispatcher(t)
	seedExpenses(t, st)

	reply := handle(t, d, "show me a spending chart")
	if len(reply.ImagePNG) == 0 {
		t.Fatalf("no image returned: %s", reply.Text)
	}
	if !bytes.HasPrefix(reply.ImagePNG, []byte{0x89, 'P', 'N', 'G'}) {
		t.Errorf("image is not a PNG")
	}
}

func TestHandleChartEmpty(t *testing.T) {
	d, _ := newTestDispatcher(t)
	reply := handle(t, d, "show spending chart for March 2024")
	if reply.ImagePNG != nil {
		t.Fatalf("expected no image")
	}
	if !strings.Contains(reply.Text, "No expenses found for March 2024 to generate chart.") {
		t.Errorf("reply = %q", reply.Text)
	}
}

func TestHandleChartTimelineSingleDay(t *testing.T) {
	d, st := newTestDispatcher(t)
	_, err := st.AddExpense(context.Background(), core.Expense{
		UserID: 1, Title: "Lunch", Amount: core.Money{Cents: 1200},
		Date: core.NewDate(2025, 12, 5), Category: "Food", PaymentMethod: "Cash",
	})
	if err != nil {
		t.Fatal(err)
	}

	reply := handle(t, d, "chart spending timeline")
	if reply.ImagePNG != nil {
		t.Fatalf("expected text fallback, got image")
	}
	if !strings.Contains(reply.Text, "timeline needs at least two") {
		t.Errorf("reply = %q", reply.Text)
	}
}

func TestHandleHelpAndUnknown(t *testing.T) {
	d, _ := newTestDispatcher(t)

	help := handle(t, d, "help")
	if !strings.Contains(help.Text, "I can help you with") {
		t.Errorf("help reply = %q", help.Text)
	}

	unknown := handle(t, d, "What is the weather like?")
	if !strings.Contains(unknown.Text, `I understand you said: "What is the weather like?"`) {
		t.Errorf("unknown reply should echo the original message:\n%s", unknown.Text)
	}
}

func TestHandleValidationErrorBecomesReply(t *testing.T) {
	d, _ := newTestDispatcher(t)
	reply := handle(t, d, "show last 0 expenses")
	if !strings.HasPrefix(reply.Text, "⚠️") {
		t.Errorf("validation failure should produce a warning reply, got %q", reply.Text)
	}
}

func TestHandleRecordsChatLog(t *testing.T) {
	d, st := newTestDispatcher(t)
	handle(t, d, "help")

	msgs, err := st.ListChatMessages(context.Background(), 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 {
		t.Fatalf("chat log has %d entries, want 1", len(msgs))
	}
	if msgs[0].Message != "help" || msgs[0].Response == "" {
		t.Errorf("chat log entry = %+v", msgs[0])
	}
}

func TestHandleUnknownUser(t *testing.T) {
	d, _ := newTestDispatcher(t)
	_, err := d.Handle(context.Background(), assistant.Message{Text: "help", UserID: 99, ReceivedAt: testRef})
	if err == nil {
		t.Fatal("expected error for unknown user")
	}
}
