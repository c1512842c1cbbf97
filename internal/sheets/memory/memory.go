// Package memory keeps exported snapshots in process. It stands in for
// Google Sheets in development and tests.
package memory

import (
	"context"
	"sync"

	"spending/internal/analytics"
	"spending/internal/core"
	ports "spending/internal/sheets"
)

var _ ports.SnapshotExporter = (*Exporter)(nil)

type Exporter struct {
	mu      sync.RWMutex
	latest  map[core.Period]analytics.Snapshot
	exports int
}

func NewExporter() *Exporter {
	return &Exporter{latest: make(map[core.Period]analytics.Snapshot)}
}

func (e *Exporter) Export(ctx context.Context, s analytics.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.latest[s.Period] = s
	e.exports++
	return nil
}

// Get returns the last snapshot exported for p.
func (e *Exporter) Get(p core.Period) (analytics.Snapshot, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.latest[p]
	return s, ok
}

// Count is the number of exports performed, including overwrites.
func (e *Exporter) Count() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.exports
}
