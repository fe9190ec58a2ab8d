// Package memory is the in-process Store used as the default backend and
// by tests. All data is scoped per user and lost on shutdown.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"wealthpulse/internal/core"
	"wealthpulse/internal/store"
)

type Store struct {
	mu          sync.Mutex
	nextID      int64
	users       map[int64]core.User
	expenses    []core.Expense
	categories  []core.Category
	investments []core.Investment
	chat        []core.ChatMessage
	exported    map[int64]bool
}

var (
	_ store.Store         = (*Store)(nil)
	_ store.ExportJournal = (*Store)(nil)
)

func New() *Store {
	return &Store{
		nextID:   1,
		users:    make(map[int64]core.User),
		exported: make(map[int64]bool),
	}
}

// SeedUser registers (or replaces) a user account.
func (s *Store) SeedUser(u core.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *Store) id() int64 {
	id := s.nextID
	s.nextID++
	return id
}

func (s *Store) GetUser(_ context.Context, id int64) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return core.User{}, core.ErrNotFound
	}
	return u, nil
}

func (s *Store) AddExpense(_ context.Context, e core.Expense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.id()
	s.expenses = append(s.expenses, e)
	return e.ID, nil
}

func (s *Store) GetExpense(_ context.Context, id int64) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.expenses {
		if e.ID == id {
			return e, nil
		}
	}
	return core.Expense{}, core.ErrNotFound
}

func (s *Store) DeleteExpense(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.expenses {
		if e.ID == id && e.UserID == userID {
			s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) ListUnexported(_ context.Context, limit int) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Expense
	for _, e := range s.expenses {
		if s.exported[e.ID] {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Store) MarkExported(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exported[id] = true
	return nil
}

func (s *Store) ListExpenses(_ context.Context, userID int64, f store.ExpenseFilter) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Expense
	for _, e := range s.expenses {
		if e.UserID != userID {
			continue
		}
		if f.Start != nil && e.Date.Before(*f.Start) {
			continue
		}
		if f.End != nil && e.Date.After(*f.End) {
			continue
		}
		if f.Category != "" && !strings.EqualFold(e.Category, f.Category) {
			continue
		}
		out = append(out, e)
	}
	// Newest first; ties resolved by insertion order, latest on top.
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *Store) AddCategory(_ context.Context, c core.Category) (int64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.categories {
		if existing.UserID == c.UserID && strings.EqualFold(existing.Name, c.Name) {
			return 0, core.ErrDuplicateEntry
		}
	}
	c.ID = s.id()
	s.categories = append(s.categories, c)
	return c.ID, nil
}

func (s *Store) ListCategories(_ context.Context, userID int64) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Category
	for _, c := range s.categories {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) AddInvestment(_ context.Context, inv core.Investment) (int64, error) {
	if err := inv.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	inv.ID = s.id()
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now()
	}
	s.investments = append(s.investments, inv)
	return inv.ID, nil
}

func (s *Store) ListInvestments(_ context.Context, userID int64) ([]core.Investment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Investment
	for _, inv := range s.investments {
		if inv.UserID == userID {
			out = append(out, inv)
		}
	}
	// Newest first, matching the SQLite ordering.
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Store) AppendChatMessage(_ context.Context, m core.ChatMessage) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = s.id()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	s.chat = append(s.chat, m)
	return m.ID, nil
}

func (s *Store) ListChatMessages(_ context.Context, userID int64, limit int) ([]core.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.ChatMessage
	for _, m := range s.chat {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	// Most recent messages, oldest first within the window.
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}
