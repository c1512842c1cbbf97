// Package http serves the analytics, transaction and budget JSON API.
package http

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"spending/internal/analytics"
	"spending/internal/cache"
	"spending/internal/core"
	"spending/internal/log"
	"spending/internal/middleware/ratelimit"
	"spending/internal/middleware/security"
	"spending/internal/middleware/trace"
	"spending/internal/records"
	"spending/internal/services"
)

// SnapshotProvider is the analytics engine as seen by the handlers.
type SnapshotProvider interface {
	ResolvePeriod(month, year int) (core.Period, error)
	Snapshot(ctx context.Context, month, year int) (analytics.Snapshot, error)
}

// TransactionManager is the transaction write and listing surface.
type TransactionManager interface {
	Create(ctx context.Context, in services.TransactionInput) (core.Transaction, error)
	Get(ctx context.Context, id string) (core.Transaction, error)
	Update(ctx context.Context, id string, in services.TransactionInput) (core.Transaction, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, params services.ListParams) (services.TransactionPage, error)
}

// BudgetManager is the budget write and listing surface.
type BudgetManager interface {
	Save(ctx context.Context, in services.BudgetInput) (core.Budget, error)
	List(ctx context.Context, month, year int, category string) ([]analytics.BudgetStatus, error)
	Delete(ctx context.Context, id string) error
}

// Deps holds everything the server needs. Store is used for readiness only.
type Deps struct {
	Analytics    SnapshotProvider
	Transactions TransactionManager
	Budgets      BudgetManager
	Store        records.Pinger
	Logger       *log.Logger

	// SnapshotCacheTTL of zero disables the snapshot cache.
	SnapshotCacheTTL time.Duration
	// QueryTimeout bounds each API request's store work. Zero means none.
	QueryTimeout time.Duration
	RateLimit    ratelimit.Config
	MaxBodyBytes int64
}

type appMetrics struct {
	snapshotsServed int64
	cacheHits       int64
	cacheMisses     int64
	rateLimited     int64
	writes          int64
	uptime          time.Time
}

type Server struct {
	http.Server

	analytics    SnapshotProvider
	transactions TransactionManager
	budgets      BudgetManager
	store        records.Pinger
	logger       *log.Logger
	queryTimeout time.Duration

	snapshots cache.Cache[analytics.Snapshot]
	// snapshotGen counts writes. Cache keys carry it so a snapshot computed
	// before a write is never served after it.
	snapshotGen atomic.Uint64

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	appMetrics       *appMetrics

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	detector := security.NewDetector()
	s := &Server{
		analytics:        deps.Analytics,
		transactions:     deps.Transactions,
		budgets:          deps.Budgets,
		store:            deps.Store,
		logger:           logger,
		queryTimeout:     deps.QueryTimeout,
		snapshots:        cache.New[analytics.Snapshot](deps.SnapshotCacheTTL),
		rateLimiter:      ratelimit.NewLimiter(deps.RateLimit),
		securityDetector: detector,
		traceMiddleware:  trace.NewMiddleware(logger, detector.ExtractClientIP),
		appMetrics:       &appMetrics{uptime: time.Now()},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/analytics", s.handleAnalytics)
	mux.HandleFunc("GET /api/categories", s.handleCategories)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/budgets", s.handleListBudgets)
	mux.HandleFunc("POST /api/budgets", s.handleSaveBudget)
	mux.HandleFunc("DELETE /api/budgets", s.handleDeleteBudget)

	var handler http.Handler = mux
	handler = security.BodyLimit(deps.MaxBodyBytes)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.rateLimiter.Middleware(detector.ExtractClientIP, s.onRateLimited)(handler)
	handler = detector.Middleware(handler)
	handler = s.traceMiddleware.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) onRateLimited(r *http.Request, clientIP string) {
	atomic.AddInt64(&s.appMetrics.rateLimited, 1)
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, clientIP,
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
}

// queryContext applies the per-request store timeout.
func (s *Server) queryContext(r *http.Request) (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), s.queryTimeout)
}

// invalidateSnapshots drops every cached snapshot. A single write can move
// a transaction between months, so the whole cache goes.
func (s *Server) invalidateSnapshots() {
	atomic.AddInt64(&s.appMetrics.writes, 1)
	s.snapshotGen.Add(1)
	s.snapshots.Flush()
}

// snapshotKey names the cache entry of p under write generation gen.
func snapshotKey(gen uint64, p core.Period) string {
	return strconv.FormatUint(gen, 10) + "/" + p.String()
}

// Shutdown stops the rate limiter and then the HTTP server. It runs once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
