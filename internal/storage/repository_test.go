package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"wealthpulse/internal/core"
	"wealthpulse/internal/store"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedUser(t *testing.T, repo *SQLiteRepository) int64 {
	t.Helper()
	id, err := repo.EnsureUser(context.Background(), core.User{
		Username: "alice", Currency: "USD", MonthlyBudget: core.Money{Cents: 100000},
	})
	if err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}
	return id
}

func TestEnsureUserIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := seedUser(t, repo)
	second, err := repo.EnsureUser(ctx, core.User{Username: "alice", Currency: "USD"})
	if err != nil {
		t.Fatalf("EnsureUser second call: %v", err)
	}
	if first != second {
		t.Errorf("EnsureUser returned %d then %d, want same id", first, second)
	}

	u, err := repo.GetUser(ctx, first)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if u.Username != "alice" || u.MonthlyBudget.Cents != 100000 {
		t.Errorf("GetUser = %+v", u)
	}
}

func TestGetUserNotFound(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.GetUser(context.Background(), 42); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetUser(42) error = %v, want ErrNotFound", err)
	}
}

func TestExpenseRoundTripAndFilters(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	userID := seedUser(t, repo)

	dates := []core.Date{
		core.NewDate(2025, 12, 2),
		core.NewDate(2025, 12, 8),
		core.NewDate(2025, 11, 20),
	}
	titles := []string{"Groceries", "Dinner", "Cinema"}
	categories := []string{"Food", "Food", "Entertainment"}
	for i := range dates {
		_, err := repo.AddExpense(ctx, core.Expense{
			UserID: userID, Title: titles[i], Amount: core.Money{Cents: int64(1000 * (i + 1))},
			Date: dates[i], Category: categories[i], PaymentMethod: "Card",
		})
		if err != nil {
			t.Fatalf("AddExpense(%q): %v", titles[i], err)
		}
	}

	all, err := repo.ListExpenses(ctx, userID, store.ExpenseFilter{})
	if err != nil {
		t.Fatalf("ListExpenses: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d expenses, want 3", len(all))
	}
	if all[0].Title != "Dinner" || all[2].Title != "Cinema" {
		t.Errorf("expenses not newest first: %v, %v, %v", all[0].Title, all[1].Title, all[2].Title)
	}
	if !all[0].Date.Equal(core.NewDate(2025, 12, 8).Time) {
		t.Errorf("date round trip = %v", all[0].Date)
	}

	start := core.NewDate(2025, 12, 1)
	end := core.NewDate(2025, 12, 31)
	december, err := repo.ListExpenses(ctx, userID, store.ExpenseFilter{Start: &start, End: &end})
	if err != nil {
		t.Fatalf("ListExpenses(december): %v", err)
	}
	if len(december) != 2 {
		t.Errorf("december filter returned %d expenses, want 2", len(december))
	}

	food, err := repo.ListExpenses(ctx, userID, store.ExpenseFilter{Category: "Food", Limit: 1})
	if err != nil {
		t.Fatalf("ListExpenses(food): %v", err)
	}
	if len(food) != 1 || food[0].Category != "Food" {
		t.Errorf("category+limit filter = %+v", food)
	}
}

func TestExpenseUserScoping(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	alice := seedUser(t, repo)
	bob, err := repo.EnsureUser(ctx, core.User{Username: "bob", Currency: "EUR"})
	if err != nil {
		t.Fatal(err)
	}

	id, err := repo.AddExpense(ctx, core.Expense{
		UserID: alice, Title: "Groceries", Amount: core.Money{Cents: 500},
		Date: core.NewDate(2025, 12, 1), Category: "Food", PaymentMethod: "Card",
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := repo.ListExpenses(ctx, bob, store.ExpenseFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("bob sees alice's expenses: %+v", got)
	}

	if err := repo.DeleteExpense(ctx, bob, id); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("cross-user delete error = %v, want ErrNotFound", err)
	}
	if err := repo.DeleteExpense(ctx, alice, id); err != nil {
		t.Errorf("owner delete error = %v", err)
	}
	if _, err := repo.GetExpense(ctx, id); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetExpense after delete error = %v, want ErrNotFound", err)
	}
}

func TestExportJournal(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	userID := seedUser(t, repo)

	var ids []int64
	for _, title := range []string{"Rent", "Gym", "Coffee"} {
		id, err := repo.AddExpense(ctx, core.Expense{
			UserID: userID, Title: title, Amount: core.Money{Cents: 1000},
			Date: core.NewDate(2025, 12, 1), Category: "Misc",
		})
		if err != nil {
			t.Fatalf("AddExpense: %v", err)
		}
		ids = append(ids, id)
	}

	pending, err := repo.ListUnexported(ctx, 2)
	if err != nil {
		t.Fatalf("ListUnexported: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("got %d pending with limit 2, want 2", len(pending))
	}
	if pending[0].ID != ids[0] || pending[1].ID != ids[1] {
		t.Errorf("pending order = %d, %d, want oldest first", pending[0].ID, pending[1].ID)
	}

	if err := repo.MarkExported(ctx, ids[0]); err != nil {
		t.Fatalf("MarkExported: %v", err)
	}
	pending, err = repo.ListUnexported(ctx, 10)
	if err != nil {
		t.Fatalf("ListUnexported: %v", err)
	}
	if len(pending) != 2 || pending[0].ID != ids[1] {
		t.Errorf("after marking, pending = %+v, want the two unmarked rows", pending)
	}
}

func TestDuplicateCategory(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	userID := seedUser(t, repo)

	if _, err := repo.AddCategory(ctx, core.Category{UserID: userID, Name: "Food"}); err != nil {
		t.Fatalf("AddCategory: %v", err)
	}
	_, err := repo.AddCategory(ctx, core.Category{UserID: userID, Name: "Food"})
	if !errors.Is(err, core.ErrDuplicateEntry) {
		t.Errorf("duplicate AddCategory error = %v, want ErrDuplicateEntry", err)
	}

	cats, err := repo.ListCategories(ctx, userID)
	if err != nil {
		t.Fatal(err)
	}
	if len(cats) != 1 {
		t.Errorf("got %d categories, want 1", len(cats))
	}
}

func TestInvestmentRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	userID := seedUser(t, repo)

	_, err := repo.AddInvestment(ctx, core.Investment{
		UserID: userID, Name: "Index Fund", Type: "ETF",
		Amount: core.Money{Cents: 500000}, CurrentValue: core.Money{Cents: 550000},
	})
	if err != nil {
		t.Fatalf("AddInvestment: %v", err)
	}

	invs, err := repo.ListInvestments(ctx, userID)
	if err != nil {
		t.Fatal(err)
	}
	if len(invs) != 1 {
		t.Fatalf("got %d investments, want 1", len(invs))
	}
	if invs[0].Returns().Cents != 50000 {
		t.Errorf("Returns = %d cents, want 50000", invs[0].Returns().Cents)
	}
}

func TestChatLogWindow(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	userID := seedUser(t, repo)

	base := time.Date(2025, 12, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := repo.AppendChatMessage(ctx, core.ChatMessage{
			UserID:    userID,
			Message:   "msg",
			Response:  "reply",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("AppendChatMessage: %v", err)
		}
	}

	msgs, err := repo.ListChatMessages(ctx, userID, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}
	if !msgs[0].CreatedAt.Before(msgs[2].CreatedAt) {
		t.Errorf("messages not chronological: %v .. %v", msgs[0].CreatedAt, msgs[2].CreatedAt)
	}
	// Window keeps the newest.
	if got := msgs[2].CreatedAt; !got.Equal(base.Add(4 * time.Minute)) {
		t.Errorf("last message at %v, want %v", got, base.Add(4*time.Minute))
	}
}
