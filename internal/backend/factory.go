package backend

import (
	"context"
	"fmt"
	"log/slog"

	"spending/internal/records/memory"
	"spending/internal/sheets"
	gsheet "spending/internal/sheets/google"
	sheetsmem "spending/internal/sheets/memory"
	"spending/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateStore opens the configured record store.
func (f *DefaultFactory) CreateStore(ctx context.Context, config Config) (*StoreResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteStore(ctx, config)
	case MemoryBackend:
		return f.createMemoryStore(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteStore(ctx context.Context, config Config) (*StoreResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &StoreResult{
		Store: repo,
		Cleanup: func() error {
			f.logger.Info("Closing SQLite repository")
			return repo.Close()
		},
	}, nil
}

func (f *DefaultFactory) createMemoryStore(config Config) (*StoreResult, error) {
	if config.SeedFile == "" {
		f.logger.Info("Initialized memory backend")
		return &StoreResult{Store: memory.New(), Cleanup: func() error { return nil }}, nil
	}

	store, err := memory.NewFromFile(config.SeedFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load memory seed: %w", err)
	}
	f.logger.Info("Initialized memory backend", "seed_file", config.SeedFile)
	return &StoreResult{Store: store, Cleanup: store.Close}, nil
}

// CreateExporter builds the configured snapshot exporter.
func (f *DefaultFactory) CreateExporter(ctx context.Context, config ExportConfig) (sheets.SnapshotExporter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SheetsExport:
		cli, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:   config.SpreadsheetID,
			CredentialsJSON: config.CredentialsJSON,
			CredentialsFile: config.CredentialsFile,
			TabBase:         config.TabBase,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized Google Sheets exporter", "spreadsheet_id", config.SpreadsheetID)
		return cli, nil
	case MemoryExport:
		f.logger.InfoContext(ctx, "Initialized memory exporter")
		return sheetsmem.NewExporter(), nil
	default:
		return nil, fmt.Errorf("unsupported export type: %s", config.Type)
	}
}
