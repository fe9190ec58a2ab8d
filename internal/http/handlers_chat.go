package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"wealthpulse/internal/assistant"
	"wealthpulse/internal/core"
	applog "wealthpulse/internal/log"
)

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response  string `json:"response"`
	Image     string `json:"image,omitempty"` // base64-encoded PNG
	Timestamp string `json:"timestamp"`
}

func (s *Server) handleChatMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := userIDFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	text := sanitizeInput(req.Message)
	if text == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	if len(text) > 1000 {
		writeError(w, http.StatusBadRequest, "message too long (max 1000 characters)")
		return
	}

	now := time.Now().UTC()
	reply, err := s.dispatcher.Handle(ctx, assistant.Message{
		Text:       text,
		UserID:     userID,
		ReceivedAt: now,
	})
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		applog.FromContext(ctx).Error("chat dispatch failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := chatResponse{
		Response:  reply.Text,
		Timestamp: now.Format(time.RFC3339),
	}
	if len(reply.ImagePNG) > 0 {
		resp.Image = base64.StdEncoding.EncodeToString(reply.ImagePNG)
	}
	writeJSON(w, http.StatusOK, resp)
}

type chatHistoryItem struct {
	ID        int64  `json:"id"`
	Message   string `json:"message"`
	Response  string `json:"response"`
	HasImage  bool   `json:"has_image"`
	CreatedAt string `json:"created_at"`
}

func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := userIDFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	messages, err := s.store.ListChatMessages(ctx, userID, s.historyLimit)
	if err != nil {
		applog.FromContext(ctx).Error("chat history lookup failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	items := make([]chatHistoryItem, 0, len(messages))
	for _, m := range messages {
		items = append(items, chatHistoryItem{
			ID:        m.ID,
			Message:   m.Message,
			Response:  m.Response,
			HasImage:  len(m.ImagePNG) > 0,
			CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": items})
}
