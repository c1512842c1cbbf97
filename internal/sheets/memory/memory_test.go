package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spending/internal/analytics"
	"spending/internal/core"
)

func TestExporter_KeepsLatestPerPeriod(t *testing.T) {
	e := NewExporter()
	ctx := context.Background()
	march := core.Period{Month: 3, Year: 2024}

	require.NoError(t, e.Export(ctx, analytics.Snapshot{Period: march, TotalExpenses: core.MustMoney("10")}))
	require.NoError(t, e.Export(ctx, analytics.Snapshot{Period: march, TotalExpenses: core.MustMoney("25")}))

	got, ok := e.Get(march)
	require.True(t, ok)
	assert.Equal(t, "25", got.TotalExpenses.String())
	assert.Equal(t, 2, e.Count())

	_, ok = e.Get(core.Period{Month: 4, Year: 2024})
	assert.False(t, ok)
}

func TestExporter_CancelledContext(t *testing.T) {
	e := NewExporter()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, e.Export(ctx, analytics.Snapshot{}), context.Canceled)
	assert.Zero(t, e.Count())
}
