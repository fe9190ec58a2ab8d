package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"wealthpulse/internal/amqp"
	"wealthpulse/internal/chat"
	"wealthpulse/internal/core"
	applog "wealthpulse/internal/log"
	"wealthpulse/internal/store"
)

type expenseItem struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Description   string  `json:"description,omitempty"`
	Amount        float64 `json:"amount"`
	Date          string  `json:"date"`
	Category      string  `json:"category"`
	PaymentMethod string  `json:"payment_method,omitempty"`
}

func toExpenseItem(e core.Expense) expenseItem {
	return expenseItem{
		ID:            e.ID,
		Title:         e.Title,
		Description:   e.Description,
		Amount:        e.Amount.Units(),
		Date:          e.Date.Format(dateLayout),
		Category:      e.Category,
		PaymentMethod: e.PaymentMethod,
	}
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := userIDFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	filter := store.ExpenseFilter{Category: r.URL.Query().Get("category")}
	if raw := r.URL.Query().Get("start"); raw != "" {
		d, err := parseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Start = &d
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		d, err := parseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.End = &d
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = n
	}

	cacheKey := fmt.Sprintf("expenses:%d:%s", userID, r.URL.RawQuery)
	expenses, cached := s.expensesCache.Get(cacheKey)
	if !cached {
		expenses, err = s.store.ListExpenses(ctx, userID, filter)
		if err != nil {
			applog.FromContext(ctx).Error("expense listing failed", "error", err, "user_id", userID)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		s.expensesCache.Set(cacheKey, expenses)
	}

	items := make([]expenseItem, 0, len(expenses))
	for _, e := range expenses {
		items = append(items, toExpenseItem(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{"expenses": items})
}

type addExpenseRequest struct {
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	Amount        json.Number `json:"amount"`
	Date          string      `json:"date"`
	Category      string      `json:"category"`
	PaymentMethod string      `json:"payment_method"`
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := userIDFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req addExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount.String())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}

	date := core.DateOf(time.Now().UTC())
	if req.Date != "" {
		date, err = parseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	expense := core.Expense{
		UserID:        userID,
		Title:         sanitizeInput(req.Title),
		Description:   sanitizeInput(req.Description),
		Amount:        core.Money{Cents: cents},
		Date:          date,
		Category:      sanitizeInput(req.Category),
		PaymentMethod: sanitizeInput(req.PaymentMethod),
	}
	if err := expense.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.store.AddExpense(ctx, expense)
	if err != nil {
		applog.FromContext(ctx).Error("expense insert failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.structured.LogExpenseCreated(ctx, userID, expense.Title, expense.Amount.Cents, expense.Category)
	s.invalidateUserCaches(userID)
	s.publishEvent(ctx, amqp.EventExpenseCreated, id, userID)

	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := userIDFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid expense id")
		return
	}

	if err := s.store.DeleteExpense(ctx, userID, id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			writeError(w, http.StatusNotFound, "expense not found")
			return
		}
		applog.FromContext(ctx).Error("expense delete failed", "error", err, "user_id", userID, "expense_id", id)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.invalidateUserCaches(userID)
	s.publishEvent(ctx, amqp.EventExpenseDeleted, id, userID)

	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// handleSummary aggregates spending over an optional start/end window,
// defaulting to the current calendar month.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := userIDFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now().UTC()
	start := core.NewDate(now.Year(), int(now.Month()), 1)
	end := core.DateOf(now)
	if raw := r.URL.Query().Get("start"); raw != "" {
		if start, err = parseDate(raw); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		if end, err = parseDate(raw); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "end date precedes start date")
		return
	}

	expenses, err := s.store.ListExpenses(ctx, userID, store.ExpenseFilter{Start: &start, End: &end})
	if err != nil {
		applog.FromContext(ctx).Error("summary listing failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	byCategory := map[string]float64{}
	var totalCents int64
	for _, e := range expenses {
		totalCents += e.Amount.Cents
		byCategory[e.Category] += e.Amount.Units()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"start":       start.Format(dateLayout),
		"end":         end.Format(dateLayout),
		"count":       len(expenses),
		"total":       core.Money{Cents: totalCents}.Units(),
		"by_category": byCategory,
	})
}

func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := userIDFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	now := time.Now().UTC()
	cacheKey := fmt.Sprintf("budget:%d:%04d-%02d", userID, now.Year(), now.Month())
	status, cached := s.budgetCache.Get(cacheKey)
	if !cached {
		status, err = chat.BudgetStatusFor(ctx, s.store, user, now)
		if err != nil {
			applog.FromContext(ctx).Error("budget status failed", "error", err, "user_id", userID)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		s.budgetCache.Set(cacheKey, status)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"year":         status.Year,
		"month":        status.Month,
		"budget":       status.Budget.Units(),
		"spent":        status.Spent.Units(),
		"remaining":    status.Remaining.Units(),
		"percent_used": status.PercentUsed(),
		"currency":     user.Currency,
	})
}

// publishEvent fires an expense event when a publisher is wired; eventing
// failures are logged and never fail the request.
func (s *Server) publishEvent(ctx context.Context, kind amqp.EventKind, expenseID, userID int64) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishExpenseEvent(ctx, kind, expenseID, userID); err != nil {
		applog.FromContext(ctx).Error("event publish failed", "error", err, "kind", string(kind), "expense_id", expenseID)
	}
}
