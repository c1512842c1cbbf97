package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"spending/internal/amqp"
	"spending/internal/analytics"
	"spending/internal/core"
	"spending/internal/log"
	"spending/internal/sheets"
)

// SnapshotSource computes the snapshot of one month.
type SnapshotSource interface {
	Snapshot(ctx context.Context, month, year int) (analytics.Snapshot, error)
}

// ExportWorker keeps exported snapshots in step with ledger changes.
type ExportWorker struct {
	snapshots SnapshotSource
	exporter  sheets.SnapshotExporter
}

func NewExportWorker(snapshots SnapshotSource, exporter sheets.SnapshotExporter) *ExportWorker {
	return &ExportWorker{snapshots: snapshots, exporter: exporter}
}

// HandleEvent re-exports every month touched by the event. A returned
// error means the event should be retried.
func (w *ExportWorker) HandleEvent(ctx context.Context, e *amqp.LedgerEvent) error {
	slog.InfoContext(ctx, "Processing ledger event",
		log.FieldComponent, log.ComponentWorker,
		"id", e.ID,
		"type", e.Type,
		"entity_id", e.EntityID,
		"periods", len(e.Periods))

	for _, p := range e.Periods {
		if err := w.ExportPeriod(ctx, p); err != nil {
			if errors.Is(err, analytics.ErrInvalidPeriod) {
				// Retrying cannot fix a bad period.
				slog.WarnContext(ctx, "Skipping invalid period in ledger event",
					log.FieldComponent, log.ComponentWorker,
					"id", e.ID, "period", p.String(), log.FieldError, err)
				continue
			}
			return err
		}
	}
	return nil
}

// ExportPeriod recomputes and exports the snapshot of p.
func (w *ExportWorker) ExportPeriod(ctx context.Context, p core.Period) error {
	s, err := w.snapshots.Snapshot(ctx, p.Month, p.Year)
	if err != nil {
		return fmt.Errorf("compute snapshot %s: %w", p, err)
	}
	if err := w.exporter.Export(ctx, s); err != nil {
		return fmt.Errorf("export snapshot %s: %w", p, err)
	}
	slog.InfoContext(ctx, "Successfully exported snapshot",
		log.FieldComponent, log.ComponentWorker,
		log.FieldOperation, log.OpExport,
		"period", p.String(),
		"total", s.TotalExpenses.String(),
		"budgets", len(s.BudgetComparison))
	return nil
}

// StartupExport exports the current month once, so the sheet is fresh even
// when events were missed while the worker was down.
func (w *ExportWorker) StartupExport(ctx context.Context, now core.Period) error {
	if err := w.ExportPeriod(ctx, now); err != nil {
		return fmt.Errorf("startup export: %w", err)
	}
	return nil
}
