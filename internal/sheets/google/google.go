package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"spending/internal/analytics"
	"spending/internal/core"
	ports "spending/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const (
	DefaultTabBase = "Analytics"

	// Every section fits in these columns.
	clearRange = "A:Z"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	// Base tab name without year or month, e.g. "Analytics".
	tabBase string
}

// Ensure interface conformance
var _ ports.SnapshotExporter = (*Client)(nil)

// Config selects the spreadsheet and the service account used to write it.
type Config struct {
	SpreadsheetID   string
	CredentialsJSON string
	CredentialsFile string
	TabBase         string
}

// New creates a Sheets exporter authenticated with a service account.
// Credentials come from cfg, falling back to GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, cfg Config) (*Client, error) {
	id := strings.TrimSpace(cfg.SpreadsheetID)
	if id == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, id, cfg.TabBase), nil
}

// NewWithService wraps an existing service. An empty tabBase means DefaultTabBase.
func NewWithService(svc *gsheet.Service, spreadsheetID, tabBase string) *Client {
	tabBase = strings.TrimSpace(tabBase)
	if tabBase == "" {
		tabBase = DefaultTabBase
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, tabBase: tabBase}
}

func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	inline := strings.TrimSpace(cfg.CredentialsJSON)
	file := strings.TrimSpace(cfg.CredentialsFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case inline != "":
		slog.InfoContext(ctx, "Using inline service account credentials")
		credentialsJSON = []byte(inline)
	case file != "":
		slog.InfoContext(ctx, "Reading service account credentials", "path", file)
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Export writes the snapshot into its own month tab, replacing whatever the
// tab held before.
func (c *Client) Export(ctx context.Context, s analytics.Snapshot) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	if s.Period.Month < 1 || s.Period.Month > 12 {
		return fmt.Errorf("invalid month: %d", s.Period.Month)
	}
	tab := c.tabName(s.Period)

	if err := c.ensureTab(ctx, tab); err != nil {
		return err
	}

	rng := fmt.Sprintf("%s!%s", tab, clearRange)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}

	vr := &gsheet.ValueRange{Values: snapshotRows(s)}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, tab+"!A1", vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write sheet %s: %w", tab, err)
	}

	slog.InfoContext(ctx, "Snapshot exported to Google Sheets",
		"tab", tab,
		"rows", len(vr.Values),
		"total", s.TotalExpenses.String())
	return nil
}

// ensureTab adds the tab when the spreadsheet does not have it yet.
func (c *Client) ensureTab(ctx context.Context, tab string) error {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == tab {
			return nil
		}
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: tab}},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %s: %w", tab, err)
	}
	slog.InfoContext(ctx, "Created analytics tab", "tab", tab)
	return nil
}

// tabName returns "<year> <base> <MM>", e.g. "2024 Analytics 03".
func (c *Client) tabName(p core.Period) string {
	return yearPrefixedName(fmt.Sprintf("%s %02d", c.tabBase, p.Month), p.Year)
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
