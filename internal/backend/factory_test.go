package backend

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spending/internal/config"
	"spending/internal/core"
	"spending/internal/records"
	sheetsmem "spending/internal/sheets/memory"
)

func quietFactory() Factory {
	return NewFactory(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCreateStore_Memory(t *testing.T) {
	res, err := quietFactory().CreateStore(context.Background(), Config{Type: MemoryBackend})
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Cleanup() })

	require.NoError(t, res.Store.Ping(context.Background()))
	n, err := res.Store.CountTransactions(context.Background(), records.Filter{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreateStore_MemorySeed(t *testing.T) {
	seed := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(seed, []byte(`{
		"transactions": [{"id":"t1","amount":12.5,"description":"Coffee","category":"Food & Dining","date":"2024-03-01"}],
		"budgets": [{"id":"b1","category":"Food & Dining","amount":100,"month":3,"year":2024}]
	}`), 0o600))

	res, err := quietFactory().CreateStore(context.Background(), Config{Type: MemoryBackend, SeedFile: seed})
	require.NoError(t, err)

	got, err := res.Store.GetTransaction(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "12.5", got.Amount.String())

	budgets, err := res.Store.FindBudgets(context.Background(), records.Query{Filter: records.Filter{Category: core.FoodAndDining}})
	require.NoError(t, err)
	assert.Len(t, budgets, 1)
}

func TestCreateStore_BadSeed(t *testing.T) {
	seed := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(seed, []byte(`{not json`), 0o600))

	_, err := quietFactory().CreateStore(context.Background(), Config{Type: MemoryBackend, SeedFile: seed})
	assert.ErrorContains(t, err, "failed to load memory seed")
}

func TestCreateStore_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "spending.db")

	res, err := quietFactory().CreateStore(context.Background(), Config{Type: SQLiteBackend, SQLiteDBPath: dbPath})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, res.Cleanup()) })

	require.NoError(t, res.Store.Ping(context.Background()))
	assert.FileExists(t, dbPath)
}

func TestCreateStore_InvalidConfig(t *testing.T) {
	_, err := quietFactory().CreateStore(context.Background(), Config{Type: "mongo"})
	assert.ErrorContains(t, err, "invalid backend type")

	_, err = quietFactory().CreateStore(context.Background(), Config{Type: SQLiteBackend})
	assert.ErrorContains(t, err, "SQLite database path is required")
}

func TestCreateExporter(t *testing.T) {
	exp, err := quietFactory().CreateExporter(context.Background(), ExportConfig{Type: MemoryExport})
	require.NoError(t, err)
	assert.IsType(t, &sheetsmem.Exporter{}, exp)

	_, err = quietFactory().CreateExporter(context.Background(), ExportConfig{Type: SheetsExport})
	assert.ErrorContains(t, err, "Spreadsheet ID is required")

	_, err = quietFactory().CreateExporter(context.Background(), ExportConfig{Type: SheetsExport, SpreadsheetID: "sheet"})
	assert.ErrorContains(t, err, "service account")

	_, err = quietFactory().CreateExporter(context.Background(), ExportConfig{Type: "ftp"})
	assert.ErrorContains(t, err, "invalid export type")
}

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	c, err := FromAppConfig(&config.Config{DataBackend: "sqlite", SQLiteDBPath: "/tmp/x.db"})
	require.NoError(t, err)
	assert.Equal(t, Config{Type: SQLiteBackend, SQLiteDBPath: "/tmp/x.db"}, c)

	_, err = FromAppConfig(&config.Config{DataBackend: "sheets"})
	assert.Error(t, err)

	e, err := ExportFromAppConfig(&config.Config{
		ExportBackend:            "sheets",
		GoogleSpreadsheetID:      "abc",
		GoogleSheetName:          "Analytics",
		GoogleServiceAccountFile: "/secrets/sa.json",
	})
	require.NoError(t, err)
	assert.Equal(t, ExportConfig{
		Type:            SheetsExport,
		SpreadsheetID:   "abc",
		TabBase:         "Analytics",
		CredentialsFile: "/secrets/sa.json",
	}, e)
}
