package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"wealthpulse/internal/core"
	applog "wealthpulse/internal/log"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := userIDFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	categories, err := s.store.ListCategories(ctx, userID)
	if err != nil {
		applog.FromContext(ctx).Error("category listing failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	type item struct {
		ID          int64  `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
	}
	items := make([]item, 0, len(categories))
	for _, c := range categories {
		items = append(items, item{ID: c.ID, Name: c.Name, Description: c.Description})
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": items})
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := userIDFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	category := core.Category{
		UserID:      userID,
		Name:        sanitizeInput(req.Name),
		Description: sanitizeInput(req.Description),
	}
	if err := category.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.store.AddCategory(ctx, category)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateEntry) {
			writeError(w, http.StatusConflict, "category already exists")
			return
		}
		applog.FromContext(ctx).Error("category insert failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (s *Server) handleListInvestments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := userIDFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	investments, err := s.store.ListInvestments(ctx, userID)
	if err != nil {
		applog.FromContext(ctx).Error("investment listing failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	type item struct {
		ID             int64   `json:"id"`
		Name           string  `json:"name"`
		Type           string  `json:"type"`
		Invested       float64 `json:"invested"`
		CurrentValue   float64 `json:"current_value"`
		Returns        float64 `json:"returns"`
		ReturnsPercent float64 `json:"returns_percent"`
	}
	items := make([]item, 0, len(investments))
	var invested, current int64
	for _, inv := range investments {
		invested += inv.Amount.Cents
		current += inv.Current().Cents
		items = append(items, item{
			ID:             inv.ID,
			Name:           inv.Name,
			Type:           inv.Type,
			Invested:       inv.Amount.Units(),
			CurrentValue:   inv.Current().Units(),
			Returns:        inv.Returns().Units(),
			ReturnsPercent: inv.ReturnsPercent(),
		})
	}

	portfolio := core.PortfolioSummary{
		Invested: core.Money{Cents: invested},
		Current:  core.Money{Cents: current},
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"investments": items,
		"portfolio": map[string]any{
			"invested":        portfolio.Invested.Units(),
			"current":         portfolio.Current.Units(),
			"returns":         portfolio.Returns().Units(),
			"returns_percent": portfolio.ReturnsPercent(),
		},
	})
}

func (s *Server) handleAddInvestment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := userIDFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		Name         string      `json:"name"`
		Type         string      `json:"type"`
		Amount       json.Number `json:"amount"`
		CurrentValue json.Number `json:"current_value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	amountCents, err := core.ParseDecimalToCents(req.Amount.String())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}
	var currentCents int64
	if req.CurrentValue != "" {
		currentCents, err = core.ParseDecimalToCents(req.CurrentValue.String())
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid current_value")
			return
		}
	}

	investment := core.Investment{
		UserID:       userID,
		Name:         sanitizeInput(req.Name),
		Type:         sanitizeInput(req.Type),
		Amount:       core.Money{Cents: amountCents},
		CurrentValue: core.Money{Cents: currentCents},
		CreatedAt:    time.Now().UTC(),
	}
	if err := investment.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.store.AddInvestment(ctx, investment)
	if err != nil {
		applog.FromContext(ctx).Error("investment insert failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}
