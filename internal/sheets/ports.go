package sheets

import (
	"context"

	"spending/internal/analytics"
)

// Ports for outbound adapters.
type (
	// SnapshotExporter publishes a computed snapshot somewhere outside the
	// ledger. Exporting the same period again replaces the earlier copy.
	SnapshotExporter interface {
		Export(ctx context.Context, s analytics.Snapshot) error
	}
)
