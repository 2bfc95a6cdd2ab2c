package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/the-spice-must-tally/internal/common"
	"github.com/Veraticus/the-spice-must-tally/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

func sampleTable() model.Table {
	return model.Table{
		Columns: []string{"S.N.", "Transaction Remarks", "Expense Type"},
		Rows: []model.Row{
			{"S.N.": model.Text("1"), "Transaction Remarks": model.Text("=HYPERLINK(x)"), "Expense Type": model.Text("Uncategorised")},
			{"S.N.": model.Missing(), "Transaction Remarks": model.Text("Closing balance"), "Expense Type": model.Text("")},
		},
	}
}

func TestTableValues(t *testing.T) {
	values := tableValues(sampleTable())

	assert.Equal(t, [][]any{
		{"S.N.", "Transaction Remarks", "Expense Type"},
		{"1", "'=HYPERLINK(x)", "Uncategorised"},
		{"", "Closing balance", ""},
	}, values)
}

func TestSummaryValues(t *testing.T) {
	values := summaryValues(Report{
		Title:       "march.xlsx",
		SummaryRows: [][]any{{"Category", "Amount"}, {"Software", "500.00"}},
	})

	assert.Equal(t, [][]any{
		{"march.xlsx"},
		{},
		{"Category", "Amount"},
		{"Software", "500.00"},
	}, values)
}

func TestQuoteTitle(t *testing.T) {
	assert.Equal(t, "'Processed Transactions'", quoteTitle("Processed Transactions"))
	assert.Equal(t, "'Bob''s tab'", quoteTitle("Bob's tab"))
}

func TestFormatRequests(t *testing.T) {
	requests := formatRequests(7, 5)
	require.Len(t, requests, 3)
	assert.Equal(t, int64(7), requests[0].RepeatCell.Range.SheetId)
	assert.Equal(t, int64(5), requests[0].RepeatCell.Range.EndColumnIndex)
	assert.Equal(t, int64(1), requests[2].UpdateSheetProperties.Properties.GridProperties.FrozenRowCount)
}

// fakeSheetsAPI serves the subset of the Sheets API the writer calls.
type fakeSheetsAPI struct {
	updates map[string][][]any
	cleared []string
	calls   []string
	mu      sync.Mutex
}

func (f *fakeSheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	f.calls = append(f.calls, r.Method+" "+path)
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && path == "/v4/spreadsheets/sheet-123":
		_, _ = io.WriteString(w, `{"spreadsheetId":"sheet-123","sheets":[{"properties":{"sheetId":0,"title":"Processed Transactions"}}]}`)
	case r.Method == http.MethodPost && path == "/v4/spreadsheets":
		_, _ = io.WriteString(w, `{"spreadsheetId":"new-456","sheets":[{"properties":{"sheetId":0,"title":"Processed Transactions"}},{"properties":{"sheetId":9,"title":"Summary"}}]}`)
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":batchUpdate"):
		_, _ = io.WriteString(w, `{"replies":[{"addSheet":{"properties":{"sheetId":42,"title":"Summary"}}}]}`)
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":clear"):
		f.cleared = append(f.cleared, rangeOf(path, ":clear"))
		_, _ = io.WriteString(w, `{}`)
	case r.Method == http.MethodPut:
		var body sheets.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.updates[rangeOf(path, "")] = body.Values
		_, _ = io.WriteString(w, `{}`)
	default:
		http.Error(w, "unexpected call", http.StatusNotFound)
	}
}

func rangeOf(path, suffix string) string {
	_, rng, _ := strings.Cut(path, "/values/")
	return strings.TrimSuffix(rng, suffix)
}

func newTestWriter(t *testing.T, cfg Config) (*Writer, *fakeSheetsAPI) {
	t.Helper()
	api := &fakeSheetsAPI{updates: make(map[string][][]any)}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	svc, err := sheets.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	cfg.RetryAttempts = 1
	cfg.RetryDelay = time.Millisecond
	return newWriter(svc, cfg, nil), api
}

func TestWriter_PublishExistingSpreadsheet(t *testing.T) {
	cfg := validConfig()
	cfg.SpreadsheetID = "sheet-123"
	cfg.BatchSize = 2
	w, api := newTestWriter(t, cfg)

	id, err := w.Publish(context.Background(), Report{
		Title:       "march.xlsx",
		Table:       sampleTable(),
		SummaryRows: [][]any{{"Business", 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, "sheet-123", id)

	assert.Equal(t, []string{"'Processed Transactions'", "'Summary'"}, api.cleared)

	// Three table rows in batches of two.
	assert.Len(t, api.updates["'Processed Transactions'!A1"], 2)
	assert.Equal(t, [][]any{{"", "Closing balance", ""}}, api.updates["'Processed Transactions'!A3"])
	assert.Equal(t, []any{"march.xlsx"}, api.updates["'Summary'!A1"][0])

	var batchUpdates int
	for _, call := range api.calls {
		if strings.HasSuffix(call, ":batchUpdate") {
			batchUpdates++
		}
	}
	assert.Equal(t, 2, batchUpdates, "one to add the summary tab and one for formatting")
}

func TestWriter_PublishCreatesSpreadsheet(t *testing.T) {
	cfg := validConfig()
	cfg.EnableFormatting = false
	w, api := newTestWriter(t, cfg)

	id, err := w.Publish(context.Background(), Report{Table: sampleTable()})
	require.NoError(t, err)
	assert.Equal(t, "new-456", id)
	assert.Equal(t, "new-456", w.config.SpreadsheetID)

	assert.Equal(t, []string{"'Processed Transactions'"}, api.cleared)
	for _, call := range api.calls {
		assert.NotContains(t, call, ":batchUpdate")
	}
}

func TestWriter_PublishAccessError(t *testing.T) {
	cfg := validConfig()
	cfg.SpreadsheetID = "unknown"
	w, _ := newTestWriter(t, cfg)

	_, err := w.Publish(context.Background(), Report{Table: sampleTable()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to access spreadsheet unknown")
}

func TestWriter_ClientErrorsAreNotRetried(t *testing.T) {
	cfg := validConfig()
	cfg.SpreadsheetID = "unknown"
	w, api := newTestWriter(t, cfg)
	w.config.RetryAttempts = 3

	_, err := w.Publish(context.Background(), Report{Table: sampleTable()})
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrMaxRetries)
	assert.Len(t, api.calls, 1)
}

func TestAPIError(t *testing.T) {
	assert.NoError(t, apiError(nil))

	plain := errors.New("connection reset")
	assert.Equal(t, plain, apiError(plain))

	assert.ErrorIs(t, apiError(&googleapi.Error{Code: http.StatusTooManyRequests}), common.ErrRateLimit)

	var retryable *common.RetryableError
	require.ErrorAs(t, apiError(&googleapi.Error{Code: http.StatusForbidden}), &retryable)
	assert.False(t, retryable.Retryable)

	assert.NotErrorAs(t, apiError(&googleapi.Error{Code: http.StatusServiceUnavailable}), &retryable)
}

func TestMockPublisher(t *testing.T) {
	mock := NewMockPublisher("mock-id")

	id, err := mock.Publish(context.Background(), Report{Title: "a"})
	require.NoError(t, err)
	assert.Equal(t, "mock-id", id)
	require.Len(t, mock.Calls(), 1)
	assert.Equal(t, "a", mock.Calls()[0].Title)

	var _ Publisher = mock
	var _ Publisher = (*Writer)(nil)
}
