package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"spending/internal/analytics"
	"spending/internal/core"
)

// fakeSheets answers the handful of Sheets API calls the exporter makes.
type fakeSheets struct {
	mu       sync.Mutex
	titles   []string
	calls    []string
	added    []string
	cleared  []string
	written  [][]any
	failRead bool
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	path := r.URL.Path
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && strings.HasPrefix(path, "/v4/spreadsheets/"):
		f.calls = append(f.calls, "get")
		if f.failRead {
			http.Error(w, `{"error":{"code":500,"message":"boom"}}`, http.StatusInternalServerError)
			return
		}
		ss := gsheet.Spreadsheet{}
		for _, t := range f.titles {
			ss.Sheets = append(ss.Sheets, &gsheet.Sheet{Properties: &gsheet.SheetProperties{Title: t}})
		}
		_ = json.NewEncoder(w).Encode(ss)
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":batchUpdate"):
		f.calls = append(f.calls, "batchUpdate")
		var req gsheet.BatchUpdateSpreadsheetRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		for _, rq := range req.Requests {
			if rq.AddSheet != nil {
				f.added = append(f.added, rq.AddSheet.Properties.Title)
				f.titles = append(f.titles, rq.AddSheet.Properties.Title)
			}
		}
		_, _ = w.Write([]byte(`{}`))
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":clear"):
		f.calls = append(f.calls, "clear")
		f.cleared = append(f.cleared, path)
		_, _ = w.Write([]byte(`{}`))
	case r.Method == http.MethodPut && strings.Contains(path, "/values/"):
		f.calls = append(f.calls, "update")
		if r.URL.Query().Get("valueInputOption") != "USER_ENTERED" {
			http.Error(w, `{"error":{"code":400,"message":"bad input option"}}`, http.StatusBadRequest)
			return
		}
		var vr gsheet.ValueRange
		_ = json.NewDecoder(r.Body).Decode(&vr)
		f.written = vr.Values
		_, _ = w.Write([]byte(`{}`))
	default:
		http.NotFound(w, r)
	}
}

type fakeState struct {
	calls   []string
	added   []string
	cleared []string
	written [][]any
}

func (f *fakeSheets) state() fakeState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fakeState{calls: f.calls, added: f.added, cleared: f.cleared, written: f.written}
}

func newTestClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithoutAuthentication(),
		goption.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	return NewWithService(svc, "sheet-id", "")
}

func testSnapshot() analytics.Snapshot {
	return analytics.Snapshot{
		Period:        core.Period{Month: 3, Year: 2024},
		TotalExpenses: core.MustMoney("100"),
		MonthlyExpenses: []analytics.MonthlyAmount{
			{Month: "February 2024", Amount: core.MustMoney("0")},
			{Month: "March 2024", Amount: core.MustMoney("100")},
		},
		CategoryBreakdown: []analytics.CategoryShare{
			{Category: core.FoodAndDining, Amount: core.MustMoney("100"), Percentage: 100},
		},
		RecentTransactions: []core.Transaction{
			{ID: "t1", Amount: core.MustMoney("100"), Description: "=SUM(A1)", Category: core.FoodAndDining, Date: "2024-03-15"},
		},
		BudgetComparison: []analytics.BudgetComparison{
			{Category: core.FoodAndDining, Budget: core.MustMoney("400"), Spent: core.MustMoney("100"), Percentage: 25, Remaining: core.MustMoney("300")},
		},
	}
}

func TestClient_ExportCreatesMissingTab(t *testing.T) {
	fake := &fakeSheets{titles: []string{"Sheet1"}}
	c := newTestClient(t, fake)

	require.NoError(t, c.Export(context.Background(), testSnapshot()))
	st := fake.state()

	assert.Equal(t, []string{"get", "batchUpdate", "clear", "update"}, st.calls)
	assert.Equal(t, []string{"2024 Analytics 03"}, st.added)
	require.Len(t, st.cleared, 1)
	assert.Contains(t, st.cleared[0], "2024 Analytics 03!A:Z")

	require.NotEmpty(t, st.written)
	assert.Equal(t, []any{"Period", "2024-03"}, st.written[0])
	assert.Equal(t, []any{"Total expenses", "100"}, st.written[1])
}

func TestClient_ExportReusesExistingTab(t *testing.T) {
	fake := &fakeSheets{titles: []string{"2024 Analytics 03"}}
	c := newTestClient(t, fake)

	require.NoError(t, c.Export(context.Background(), testSnapshot()))
	st := fake.state()

	assert.Equal(t, []string{"get", "clear", "update"}, st.calls)
	assert.Empty(t, st.added)
}

func TestClient_ExportReadFailure(t *testing.T) {
	fake := &fakeSheets{failRead: true}
	c := newTestClient(t, fake)

	err := c.Export(context.Background(), testSnapshot())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read spreadsheet")
	st := fake.state()
	require.NotEmpty(t, st.calls)
	assert.Equal(t, "get", st.calls[0])
	assert.NotContains(t, st.calls, "update")
}

func TestClient_ExportGuards(t *testing.T) {
	c := &Client{spreadsheetID: "test"}
	err := c.Export(context.Background(), testSnapshot())
	assert.EqualError(t, err, "sheets service not initialized")

	fake := &fakeSheets{}
	c = newTestClient(t, fake)
	s := testSnapshot()
	s.Period.Month = 0
	assert.Error(t, c.Export(context.Background(), s))
	assert.Empty(t, fake.state().calls)
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.EqualError(t, err, "missing GOOGLE_SPREADSHEET_ID")
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := New(context.Background(), Config{SpreadsheetID: "id"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing service account credentials")
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "id", CredentialsFile: t.TempDir() + "/nope.json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read service account file")
}

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		base string
		year int
		want string
	}{
		{"Analytics 03", 2024, "2024 Analytics 03"},
		{"2023 Analytics 03", 2024, "2023 Analytics 03"},
		{"  Analytics 12 ", 2025, "2025 Analytics 12"},
		{"", 2024, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, yearPrefixedName(tt.base, tt.year), tt.base)
	}
}

func TestClient_TabName(t *testing.T) {
	c := NewWithService(nil, "id", "Report")
	assert.Equal(t, "2024 Report 01", c.tabName(core.Period{Month: 1, Year: 2024}))

	c = NewWithService(nil, "id", "")
	assert.Equal(t, "2030 Analytics 11", c.tabName(core.Period{Month: 11, Year: 2030}))
}
