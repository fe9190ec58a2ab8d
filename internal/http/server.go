// Package http exposes the application over a JSON API: the chat
// endpoint that runs the assistant, plus plain CRUD for expenses,
// categories and investments.
package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"wealthpulse/internal/amqp"
	"wealthpulse/internal/cache"
	"wealthpulse/internal/chat"
	"wealthpulse/internal/core"
	applog "wealthpulse/internal/log"
	"wealthpulse/internal/middleware/trace"
	"wealthpulse/internal/store"
)

// EventPublisher emits expense lifecycle events for the sync worker.
// A nil publisher disables eventing; handlers must check before calling.
type EventPublisher interface {
	PublishExpenseEvent(ctx context.Context, kind amqp.EventKind, expenseID, userID int64) error
}

// Server wires the HTTP surface over the store and the chat dispatcher.
type Server struct {
	httpServer *http.Server
	store      store.Store
	dispatcher *chat.Dispatcher
	publisher  EventPublisher
	logger     *applog.Logger
	structured *applog.StructuredLogger

	historyLimit int
	startTime    time.Time

	rateLimiter     *rateLimiter
	securityMetrics *securityMetrics
	tracer          *trace.Middleware

	expensesCache *cache.LRUCache[[]core.Expense]
	budgetCache   *cache.LRUCache[core.BudgetStatus]
	cacheManager  *cache.Manager

	shutdownOnce sync.Once
}

// Options carries the tunables the server needs from configuration.
type Options struct {
	Port             string
	ChatHistoryLimit int
}

// NewServer builds a fully routed server. publisher may be nil when
// AMQP is not configured.
func NewServer(opts Options, st store.Store, dispatcher *chat.Dispatcher, publisher EventPublisher, logger *applog.Logger) *Server {
	s := &Server{
		store:           st,
		dispatcher:      dispatcher,
		publisher:       publisher,
		logger:          logger,
		structured:      applog.NewStructuredLogger(logger),
		historyLimit:    opts.ChatHistoryLimit,
		startTime:       time.Now(),
		rateLimiter:     newRateLimiter(60, time.Minute),
		securityMetrics: &securityMetrics{},
		expensesCache:   cache.NewLRUCache[[]core.Expense](500, 2*time.Minute),
		budgetCache:     cache.NewLRUCache[core.BudgetStatus](200, 2*time.Minute),
		cacheManager:    cache.NewManager(),
	}
	s.tracer = trace.NewMiddleware(extractClientIP)

	s.cacheManager.Register(s.expensesCache)
	s.cacheManager.Register(s.budgetCache)
	s.cacheManager.StartCleanup(5 * time.Minute)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("POST /api/chat/message", s.handleChatMessage)
	mux.HandleFunc("GET /api/chat/history", s.handleChatHistory)

	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleAddExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)
	mux.HandleFunc("GET /api/expenses/summary", s.handleSummary)
	mux.HandleFunc("GET /api/budget/status", s.handleBudgetStatus)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleAddCategory)

	mux.HandleFunc("GET /api/investments", s.handleListInvestments)
	mux.HandleFunc("POST /api/investments", s.handleAddInvestment)

	var handler http.Handler = s.withSecurity(mux)
	handler = applog.RequestIDMiddleware(func(r *http.Request) string {
		return trace.GetRequestID(r.Context())
	})(handler)
	handler = applog.ComponentMiddleware(applog.ComponentHTTP)(handler)
	handler = applog.Middleware(logger)(handler)
	handler = s.tracer.Middleware(handler)

	s.httpServer = &http.Server{
		Addr:         ":" + opts.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start blocks serving requests until the listener fails or Shutdown runs.
func (s *Server) Start() error {
	s.logger.Info("HTTP server starting", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops background goroutines.
// Safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.logger.Info("HTTP server shutting down")
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		err = s.httpServer.Shutdown(ctx)
	})
	return err
}

// Handler exposes the routed handler chain, used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// withSecurity sets response security headers, drops obviously hostile
// requests and rate-limits mutating methods per client IP.
func (s *Server) withSecurity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")

		clientIP := extractClientIP(r)

		if detectSuspiciousRequest(r, s.securityMetrics) {
			s.logger.Warn("suspicious request blocked",
				"client_ip", clientIP,
				"method", r.Method,
				"path", r.URL.Path)
			writeError(w, http.StatusBadRequest, "bad request")
			return
		}

		if r.Method == http.MethodPost || r.Method == http.MethodDelete {
			if !s.rateLimiter.allow(clientIP) {
				atomic.AddInt64(&s.securityMetrics.rateLimitHits, 1)
				w.Header().Set("Retry-After", "60")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// invalidateUserCaches drops every cached entry for one user after a write.
func (s *Server) invalidateUserCaches(userID int64) {
	prefix := fmt.Sprintf(":%d:", userID)
	removed := s.expensesCache.DeletePrefix("expenses" + prefix)
	removed += s.budgetCache.DeletePrefix("budget" + prefix)
	if removed > 0 {
		s.logger.Debug("cache invalidated", "user_id", userID, "entries", removed)
	}
}
