package http

import (
	"net/http"
	"sync/atomic"
	"time"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.startTime).Round(time.Second).String(),
	})
}

// handleReady probes the backing store with a trivial read so a broken
// database flips the readiness check before traffic arrives.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	checks := map[string]string{"store": "ok"}
	status := http.StatusOK
	if _, err := s.store.ListChatMessages(ctx, 0, 1); err != nil {
		checks["store"] = err.Error()
		status = http.StatusServiceUnavailable
	}

	ready := "ready"
	if status != http.StatusOK {
		ready = "not ready"
	}
	writeJSON(w, status, map[string]any{
		"status": ready,
		"checks": checks,
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	m := s.tracer.GetMetrics()
	writeJSON(w, http.StatusOK, map[string]any{
		"total_requests":       m.TotalRequests,
		"avg_response_time_us": m.AverageResponseTime,
		"rate_limit_hits":      atomic.LoadInt64(&s.securityMetrics.rateLimitHits),
		"suspicious_requests":  atomic.LoadInt64(&s.securityMetrics.suspiciousRequests),
		"cached_expense_lists": s.expensesCache.Size(),
	})
}
