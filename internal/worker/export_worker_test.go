package worker

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spending/internal/amqp"
	"spending/internal/analytics"
	"spending/internal/core"
	"spending/internal/records/memory"
	sheetsmem "spending/internal/sheets/memory"
)

var errExport = errors.New("export failed")

type failingExporter struct{ calls int }

func (f *failingExporter) Export(context.Context, analytics.Snapshot) error {
	f.calls++
	return errExport
}

func seededAssembler(t *testing.T) *analytics.Assembler {
	t.Helper()
	store := memory.New()
	require.NoError(t, store.CreateTransaction(context.Background(), core.Transaction{
		ID: "t1", Amount: core.MustMoney("100"), Description: "dinner", Category: core.FoodAndDining, Date: "2024-03-15",
	}))
	_, err := store.UpsertBudget(context.Background(), core.Budget{
		ID: "b1", Category: core.FoodAndDining, Amount: core.MustMoney("400"), Month: 3, Year: 2024,
	})
	require.NoError(t, err)
	return analytics.NewAssembler(store)
}

func TestExportWorker_LogsExport(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	w := NewExportWorker(seededAssembler(t), sheetsmem.NewExporter())
	require.NoError(t, w.ExportPeriod(context.Background(), core.Period{Month: 3, Year: 2024}))

	assert.Contains(t, buf.String(), `"msg":"Successfully exported snapshot"`)
	assert.Contains(t, buf.String(), `"component":"worker"`)
	assert.Contains(t, buf.String(), `"operation":"export"`)
	assert.Contains(t, buf.String(), `"period":"2024-03"`)
}

func TestExportWorker_HandleEvent(t *testing.T) {
	exp := sheetsmem.NewExporter()
	w := NewExportWorker(seededAssembler(t), exp)

	e := amqp.NewLedgerEvent(amqp.TransactionUpdated, "t1",
		core.Period{Month: 2, Year: 2024}, core.Period{Month: 3, Year: 2024})
	require.NoError(t, w.HandleEvent(context.Background(), e))

	assert.Equal(t, 2, exp.Count())

	march, ok := exp.Get(core.Period{Month: 3, Year: 2024})
	require.True(t, ok)
	assert.Equal(t, "100", march.TotalExpenses.String())
	require.Len(t, march.BudgetComparison, 1)
	assert.Equal(t, 25, march.BudgetComparison[0].Percentage)

	feb, ok := exp.Get(core.Period{Month: 2, Year: 2024})
	require.True(t, ok)
	assert.True(t, feb.TotalExpenses.IsZero())
}

func TestExportWorker_SkipsInvalidPeriod(t *testing.T) {
	exp := sheetsmem.NewExporter()
	w := NewExportWorker(seededAssembler(t), exp)

	e := &amqp.LedgerEvent{
		ID:      "e1",
		Type:    amqp.BudgetSaved,
		Periods: []core.Period{{Month: 13, Year: 2024}, {Month: 3, Year: 2024}},
	}
	require.NoError(t, w.HandleEvent(context.Background(), e))
	assert.Equal(t, 1, exp.Count())
}

func TestExportWorker_ExportFailureIsRetryable(t *testing.T) {
	exp := &failingExporter{}
	w := NewExportWorker(seededAssembler(t), exp)

	e := amqp.NewLedgerEvent(amqp.TransactionCreated, "t1",
		core.Period{Month: 3, Year: 2024}, core.Period{Month: 4, Year: 2024})
	err := w.HandleEvent(context.Background(), e)

	assert.ErrorIs(t, err, errExport)
	assert.Equal(t, 1, exp.calls, "stops at the first failed period")
}

func TestExportWorker_StartupExport(t *testing.T) {
	exp := sheetsmem.NewExporter()
	w := NewExportWorker(seededAssembler(t), exp)

	require.NoError(t, w.StartupExport(context.Background(), core.Period{Month: 3, Year: 2024}))
	_, ok := exp.Get(core.Period{Month: 3, Year: 2024})
	assert.True(t, ok)

	err := w.StartupExport(context.Background(), core.Period{Month: 13, Year: 2024})
	assert.ErrorIs(t, err, analytics.ErrInvalidPeriod)
}
