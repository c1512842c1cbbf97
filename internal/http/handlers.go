package http

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"spending/internal/core"
)

const readyTimeout = 5 * time.Second

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).String(),
	})
}

// handleReady pings the record store. It is the only dependency the API
// cannot serve without.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	switch {
	case s.store == nil:
		checks["store"] = "not_configured"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	default:
		if err := s.store.Ping(ctx); err != nil {
			checks["store"] = fmt.Sprintf("failed: %v", err)
			status, httpStatus = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["store"] = "ok"
		}
	}

	checks["cache"] = map[string]any{
		"snapshot_entries": s.snapshots.Size(),
		"status":           "ok",
	}
	checks["rate_limiter"] = map[string]any{
		"enabled":        s.rateLimiter.Enabled(),
		"active_clients": s.rateLimiter.ActiveClients(),
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics writes counters in Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	traceMetrics := s.traceMiddleware.GetMetrics()
	securityMetrics := s.securityDetector.GetMetrics()

	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE %s %s\n", name, kind)
		fmt.Fprintf(w, "%s %v\n\n", name, value)
	}

	metric("http_requests_total", "counter", "Total number of HTTP requests", traceMetrics.TotalRequests)
	metric("http_server_errors_total", "counter", "Responses with a 5xx status", traceMetrics.ServerErrors)
	metric("snapshots_served_total", "counter", "Analytics snapshots returned", atomic.LoadInt64(&s.appMetrics.snapshotsServed))
	metric("snapshot_cache_hits_total", "counter", "Snapshot cache hits", atomic.LoadInt64(&s.appMetrics.cacheHits))
	metric("snapshot_cache_misses_total", "counter", "Snapshot cache misses", atomic.LoadInt64(&s.appMetrics.cacheMisses))
	metric("snapshot_cache_entries", "gauge", "Cached snapshots", s.snapshots.Size())
	metric("ledger_writes_total", "counter", "Successful transaction and budget writes", atomic.LoadInt64(&s.appMetrics.writes))
	metric("rate_limit_hits_total", "counter", "Requests rejected by the rate limiter", atomic.LoadInt64(&s.appMetrics.rateLimited))
	metric("active_rate_limit_clients", "gauge", "Currently tracked rate limit clients", s.rateLimiter.ActiveClients())
	metric("suspicious_requests_total", "counter", "Suspicious requests detected", securityMetrics.SuspiciousRequests)
	metric("uptime_seconds", "gauge", "Application uptime in seconds", fmt.Sprintf("%.0f", time.Since(s.appMetrics.uptime).Seconds()))
}

type categoryInfo struct {
	Name  core.Category `json:"name"`
	Color string        `json:"color"`
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats := core.Categories()
	out := make([]categoryInfo, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryInfo{Name: c, Color: c.Color()})
	}
	writeJSON(w, http.StatusOK, out)
}
