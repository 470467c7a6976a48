package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"

	"finanzas/internal/core"
	applog "finanzas/internal/log"
	"finanzas/internal/middleware/ratelimit"
	"finanzas/internal/middleware/security"
	"finanzas/internal/middleware/trace"
	"finanzas/internal/services"
)

// Store is the CRUD surface the HTTP handlers write through. Reads go
// through the dashboard service so they hit the snapshot cache.
type Store interface {
	CreateIncome(ctx context.Context, t core.Transaction) (core.Transaction, error)
	DeleteIncome(ctx context.Context, id int64) error
	CreateExpense(ctx context.Context, t core.Transaction) (core.Transaction, error)
	DeleteExpense(ctx context.Context, id int64) error
	CreateSaving(ctx context.Context, s core.SavingEntry) (core.SavingEntry, error)
	DeleteSaving(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]core.Category, error)
	CreateCategory(ctx context.Context, name string) (core.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

type Server struct {
	http.Server

	store     Store
	dashboard *services.DashboardService
	goals     *services.GoalService
	currency  string

	validate *validator.Validate
	limiter  *ratelimit.Limiter
	detector *security.Detector
	logger   *applog.StructuredLogger

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, store Store, dashboard *services.DashboardService, goals *services.GoalService, currency string) *Server {
	mux := http.NewServeMux()

	baseLogger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)

	s := &Server{
		store:     store,
		dashboard: dashboard,
		goals:     goals,
		currency:  currency,
		validate:  validator.New(),
		limiter:   ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:  security.NewDetector(),
		logger:    applog.NewStructuredLogger(baseLogger),
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/balance", s.handleBalance)
	mux.HandleFunc("GET /api/dashboard/trend", s.handleTrend)

	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("GET /api/expenses/summary", s.handleExpensesSummary)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("GET /api/incomes", s.handleListIncomes)
	mux.HandleFunc("POST /api/incomes", s.handleCreateIncome)
	mux.HandleFunc("GET /api/incomes/summary", s.handleIncomesSummary)
	mux.HandleFunc("DELETE /api/incomes/{id}", s.handleDeleteIncome)

	mux.HandleFunc("GET /api/savings", s.handleListSavings)
	mux.HandleFunc("POST /api/savings", s.handleCreateSaving)
	mux.HandleFunc("DELETE /api/savings/{id}", s.handleDeleteSaving)

	mux.HandleFunc("GET /api/goals", s.handleListGoals)
	mux.HandleFunc("POST /api/goals", s.handleCreateGoal)
	mux.HandleFunc("GET /api/goals/{id}", s.handleGetGoal)
	mux.HandleFunc("PUT /api/goals/{id}", s.handleUpdateGoal)
	mux.HandleFunc("DELETE /api/goals/{id}", s.handleDeleteGoal)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleCreateCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)

	// Middleware chain: context logger and tracing wrap everything, then
	// security headers, suspicious-request detection and write rate limiting
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(s.detector.ExtractClientIP)

	var handler http.Handler = mux
	handler = s.limitWrites(handler)
	handler = s.watchSuspicious(handler)
	handler = headers.Middleware(handler)
	handler = tracer.Middleware(handler)
	handler = applog.Middleware(baseLogger)(handler)

	s.Server = http.Server{
		Addr:    addr,
		Handler: handler,
	}

	return s
}

// watchSuspicious flags requests matching known probe patterns. They are
// logged and counted, not blocked.
func (s *Server) watchSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			slog.WarnContext(r.Context(), "Suspicious request detected",
				"method", r.Method,
				"path", r.URL.Path,
				"client_ip", s.detector.ExtractClientIP(r),
				"total_flagged", s.detector.GetMetrics().SuspiciousRequests)
		}
		next.ServeHTTP(w, r)
	})
}

// limitWrites rate limits mutating requests per client IP. Reads are
// served from cache and stay unthrottled.
func (s *Server) limitWrites(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			clientIP := s.detector.ExtractClientIP(r)
			if !s.limiter.Allow(clientIP) {
				w.Header().Set("Retry-After", "60")
				TooManyRequestsError().Write(w)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.ListCategories(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
