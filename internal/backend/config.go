package backend

import (
	"errors"
	"fmt"

	"spending/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}

	c := Config{
		Type:         BackendType(appConfig.DataBackend),
		SQLiteDBPath: appConfig.SQLiteDBPath,
		SeedFile:     appConfig.MemorySeedFile,
	}
	return c, c.Validate()
}

// ExportFromAppConfig converts the application config to exporter config
func ExportFromAppConfig(appConfig *config.Config) (ExportConfig, error) {
	if appConfig == nil {
		return ExportConfig{}, errors.New("app config is nil")
	}

	c := ExportConfig{
		Type:            ExportType(appConfig.ExportBackend),
		SpreadsheetID:   appConfig.GoogleSpreadsheetID,
		TabBase:         appConfig.GoogleSheetName,
		CredentialsJSON: appConfig.GoogleServiceAccountJSON,
		CredentialsFile: appConfig.GoogleServiceAccountFile,
	}
	return c, c.Validate()
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %q", c.Type)
	}
	if c.Type == SQLiteBackend && c.SQLiteDBPath == "" {
		return errors.New("SQLite database path is required for sqlite backend")
	}
	return nil
}

func (c ExportConfig) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid export type: %q", c.Type)
	}
	if c.Type == SheetsExport {
		if c.SpreadsheetID == "" {
			return errors.New("Google Spreadsheet ID is required for sheets export")
		}
		if c.CredentialsJSON == "" && c.CredentialsFile == "" {
			return errors.New("service account JSON or file is required for sheets export")
		}
	}
	return nil
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{SQLiteBackend, MemoryBackend}
}
