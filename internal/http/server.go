// Package http exposes the JSON API: entity CRUD, reports, insights,
// analytics, notifications and the live event stream.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/log"
	"fintrack/internal/realtime"
	"fintrack/internal/services"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	http.Server

	expenses      *services.ExpenseService
	transactions  *services.TransactionService
	budgets       *services.BudgetService
	categories    *services.CategoryService
	reports       *services.ReportService
	insights      *services.InsightsService
	health        *services.HealthService
	notifications *services.NotificationService
	hub           *realtime.Hub

	store Pinger
	cache Pinger

	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// Deps carries everything the server needs.
type Deps struct {
	Expenses      *services.ExpenseService
	Transactions  *services.TransactionService
	Budgets       *services.BudgetService
	Categories    *services.CategoryService
	Reports       *services.ReportService
	Insights      *services.InsightsService
	Health        *services.HealthService
	Notifications *services.NotificationService
	Hub           *realtime.Hub
	Store         Pinger
	Cache         Pinger
}

// NewServer configures routes and returns a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		expenses:      deps.Expenses,
		transactions:  deps.Transactions,
		budgets:       deps.Budgets,
		categories:    deps.Categories,
		reports:       deps.Reports,
		insights:      deps.Insights,
		health:        deps.Health,
		notifications: deps.Notifications,
		hub:           deps.Hub,
		store:         deps.Store,
		cache:         deps.Cache,
		rateLimiter:   newRateLimiter(),
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/expenses", s.guard(s.handleCreateExpense))
	mux.HandleFunc("GET /api/expenses", s.guard(s.handleListExpenses))
	mux.HandleFunc("GET /api/expenses/{id}", s.guard(s.handleGetExpense))
	mux.HandleFunc("PUT /api/expenses/{id}", s.guard(s.handleUpdateExpense))
	mux.HandleFunc("DELETE /api/expenses/{id}", s.guard(s.handleDeleteExpense))

	mux.HandleFunc("POST /api/transactions", s.guard(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions", s.guard(s.handleListTransactions))
	mux.HandleFunc("GET /api/transactions/recurring", s.guard(s.handleListRecurring))
	mux.HandleFunc("GET /api/transactions/{id}", s.guard(s.handleGetTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.guard(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.guard(s.handleDeleteTransaction))

	mux.HandleFunc("POST /api/budgets", s.guard(s.handleCreateBudget))
	mux.HandleFunc("GET /api/budgets", s.guard(s.handleListBudgets))
	mux.HandleFunc("GET /api/budgets/{id}", s.guard(s.handleGetBudget))
	mux.HandleFunc("PUT /api/budgets/{id}", s.guard(s.handleUpdateBudget))
	mux.HandleFunc("DELETE /api/budgets/{id}", s.guard(s.handleDeleteBudget))

	mux.HandleFunc("POST /api/categories", s.guard(s.handleCreateCategory))
	mux.HandleFunc("GET /api/categories", s.guard(s.handleListCategories))
	mux.HandleFunc("GET /api/categories/{id}", s.guard(s.handleGetCategory))
	mux.HandleFunc("PUT /api/categories/{id}", s.guard(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.guard(s.handleDeleteCategory))

	mux.HandleFunc("GET /api/reports/monthly/{year}/{month}", s.guard(s.handleMonthlyReport))
	mux.HandleFunc("GET /api/reports/annual/{year}", s.guard(s.handleAnnualReport))

	mux.HandleFunc("GET /api/insights/spending-patterns", s.guard(s.handleSpendingInsights))
	mux.HandleFunc("GET /api/insights/budget-analysis", s.guard(s.handleBudgetAnalysis))
	mux.HandleFunc("GET /api/insights/savings-opportunities", s.guard(s.handleSavingsOpportunities))

	mux.HandleFunc("GET /api/analytics/health", s.guard(s.handleFinancialHealth))
	mux.HandleFunc("GET /api/analytics/predictions", s.guard(s.handlePredictions))

	mux.HandleFunc("GET /api/notifications", s.guard(s.handleListNotifications))
	mux.HandleFunc("POST /api/notifications/{id}/read", s.guard(s.handleMarkNotificationRead))
	mux.HandleFunc("GET /api/notifications/stream", s.guard(s.handleNotificationStream))

	return s
}

// guard wraps a handler with security headers, rate limiting of mutating
// requests, request IDs and request logging.
func (s *Server) guard(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldClientIP, clientIP,
		)

		if mutating(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", log.FieldClientIP, clientIP, log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			respondError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds(),
		)
	}
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// responseWriter captures the status code for request logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if s.store != nil {
		if err := s.store.Ping(ctx); err != nil {
			slog.ErrorContext(ctx, "Readiness check failed", "dependency", "store", log.FieldError, err)
			respondError(w, http.StatusServiceUnavailable, "store unavailable")
			return
		}
	}
	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			slog.ErrorContext(ctx, "Readiness check failed", "dependency", "cache", log.FieldError, err)
			respondError(w, http.StatusServiceUnavailable, "cache unavailable")
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Shutdown stops the rate limiter cleanup and the HTTP listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
