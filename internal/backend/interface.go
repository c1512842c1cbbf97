// Package backend builds the record store and the snapshot exporter chosen
// by configuration.
package backend

import (
	"context"

	"spending/internal/records"
	"spending/internal/sheets"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// StoreResult contains the record store and its cleanup function
type StoreResult struct {
	Store   records.Store
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateStore(ctx context.Context, config Config) (*StoreResult, error)
	CreateExporter(ctx context.Context, config ExportConfig) (sheets.SnapshotExporter, error)
}

// Config selects and configures the record store.
type Config struct {
	Type BackendType

	SQLiteDBPath string
	// SeedFile optionally preloads the memory store.
	SeedFile string
}

// ExportConfig selects and configures the snapshot exporter.
type ExportConfig struct {
	Type ExportType

	SpreadsheetID   string
	TabBase         string
	CredentialsJSON string
	CredentialsFile string
}

// BackendType represents the type of record store
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// ExportType represents the snapshot export destination
type ExportType string

const (
	SheetsExport ExportType = "sheets"
	MemoryExport ExportType = "memory"
)

func (et ExportType) IsValid() bool {
	return et == SheetsExport || et == MemoryExport
}
