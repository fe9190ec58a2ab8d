package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"wealthpulse/internal/core"
)

const dateLayout = "2006-01-02"

// writeJSON serializes v and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error envelope: {"error": "..."}.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// userIDFrom reads the caller identity from the X-User-ID header.
// A missing header falls back to user 1, the seeded default account.
func userIDFrom(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.Header.Get("X-User-ID"))
	if raw == "" {
		return 1, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid X-User-ID header")
	}
	return id, nil
}

// parseDate parses a YYYY-MM-DD query parameter.
func parseDate(s string) (core.Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return core.Date{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return core.DateOf(t), nil
}

// sanitizeInput strips control characters from user-supplied text and
// trims surrounding whitespace.
func sanitizeInput(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if r < 32 && r != '\t' && r != '\n' {
			continue
		}
		if r == 127 {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
