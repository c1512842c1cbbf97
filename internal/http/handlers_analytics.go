package http

import (
	"net/http"
	"sync/atomic"

	"spending/internal/analytics"
	"spending/internal/log"
)

// handleAnalytics serves the snapshot of ?month=&year=, each defaulting to
// today. Snapshots are cached per period until the next write.
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	params, err := ParseMonthParams(r.URL.Query())
	if err != nil {
		badRequest(w, "Invalid period", err)
		return
	}
	p, err := s.analytics.ResolvePeriod(params.Month, params.Year)
	if err != nil {
		s.writeError(w, r, err, log.OpSnapshot, "Analytics", "Failed to fetch analytics")
		return
	}

	// Read the generation before computing; a write landing meanwhile moves
	// later readers to a new key.
	key := snapshotKey(s.snapshotGen.Load(), p)
	sl := log.NewStructuredLogger(log.FromContext(r.Context()))
	if snap, ok := s.snapshots.Get(key); ok {
		atomic.AddInt64(&s.appMetrics.cacheHits, 1)
		atomic.AddInt64(&s.appMetrics.snapshotsServed, 1)
		sl.LogSnapshotServed(r.Context(), p, true)
		writeJSON(w, http.StatusOK, snap)
		return
	}
	atomic.AddInt64(&s.appMetrics.cacheMisses, 1)

	ctx, cancel := s.queryContext(r)
	defer cancel()

	snap, err := s.analytics.Snapshot(ctx, p.Month, p.Year)
	if err != nil {
		s.writeError(w, r, err, log.OpSnapshot, "Analytics", "Failed to fetch analytics")
		return
	}
	s.snapshots.Set(key, snap)

	atomic.AddInt64(&s.appMetrics.snapshotsServed, 1)
	sl.LogSnapshotServed(r.Context(), p, false)
	writeJSON(w, http.StatusOK, snap)
}

var _ SnapshotProvider = (*analytics.Assembler)(nil)
