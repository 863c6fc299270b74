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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/content-optimizer/internal/storage"
	"github.com/content-optimizer/pkg/logger"
)

type recorded struct {
	method string
	path   string
	body   string
}

// fakeSheets serves a single tab's values and records writes. Ranges on the
// missing tab are rejected the way the API rejects unknown sheet titles.
type fakeSheets struct {
	mu      sync.Mutex
	values  [][]interface{}
	missing string
	calls   []recorded
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.calls = append(f.calls, recorded{method: r.Method, path: r.URL.Path, body: string(body)})
	values := f.values
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case f.missing != "" && strings.Contains(r.URL.Path, quoteTab(f.missing)):
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"error": map[string]interface{}{
			"code":    http.StatusBadRequest,
			"message": "Unable to parse range: " + quoteTab(f.missing),
			"status":  "INVALID_ARGUMENT",
		}})
	case r.Method == http.MethodGet && strings.Contains(r.URL.Path, "!1:1"):
		if len(values) > 0 {
			values = values[:1]
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"values": values})
	case r.Method == http.MethodGet && strings.Contains(r.URL.Path, "/values/"):
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"values": values})
	default:
		_, _ = w.Write([]byte(`{}`))
	}
}

func (f *fakeSheets) writes() []recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []recorded
	for _, c := range f.calls {
		if c.method != http.MethodGet {
			out = append(out, c)
		}
	}
	return out
}

func newTestRepo(t *testing.T, fake *fakeSheets) *Repository {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := sheets.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)

	return NewWithService(svc, "sheet-id", nil, logger.Nop())
}

func TestColumnLetter(t *testing.T) {
	tests := map[int]string{1: "A", 2: "B", 26: "Z", 27: "AA", 52: "AZ", 53: "BA", 702: "ZZ", 703: "AAA"}
	for n, want := range tests {
		assert.Equal(t, want, columnLetter(n), n)
	}
}

func TestQuoteTab(t *testing.T) {
	assert.Equal(t, "'Content_Creation'", quoteTab("Content_Creation"))
	assert.Equal(t, "'Bob''s tab'", quoteTab("Bob's tab"))
}

func TestReadAll(t *testing.T) {
	fake := &fakeSheets{values: [][]interface{}{
		{"Topic", "Platform", "Generated_Content"},
		{"AI", "twitter", "hello"},
		{"Growth", "reddit"},
	}}
	repo := newTestRepo(t, fake)

	table, err := repo.ReadAll(context.Background(), "Content_Creation")
	require.NoError(t, err)

	assert.Equal(t, []string{"Topic", "Platform", "Generated_Content"}, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, 2, table.Rows[0].Index)
	assert.Equal(t, "hello", table.Rows[0].Fields["Generated_Content"])
	assert.Equal(t, 3, table.Rows[1].Index)
	assert.Equal(t, "", table.Rows[1].Fields["Generated_Content"])
}

func TestUpdateCellResolvesColumn(t *testing.T) {
	fake := &fakeSheets{values: [][]interface{}{{"Topic", "Platform", "Sentiment"}}}
	repo := newTestRepo(t, fake)

	require.NoError(t, repo.UpdateCell(context.Background(), "Content_Creation", 5, "Sentiment", "Positive"))

	writes := fake.writes()
	require.Len(t, writes, 1)
	assert.Equal(t, http.MethodPut, writes[0].method)
	assert.Contains(t, writes[0].path, "'Content_Creation'!C5")
	assert.Contains(t, writes[0].body, "Positive")
}

func TestUpdateCellErrors(t *testing.T) {
	fake := &fakeSheets{values: [][]interface{}{{"Topic"}}}
	repo := newTestRepo(t, fake)
	ctx := context.Background()

	err := repo.UpdateCell(ctx, "Content_Creation", 1, "Topic", "x")
	assert.True(t, errors.Is(err, storage.ErrRowOutOfRange))

	err = repo.UpdateCell(ctx, "Content_Creation", 2, "Sentiment", "x")
	assert.True(t, errors.Is(err, storage.ErrColumnNotFound))
	assert.Empty(t, fake.writes())
}

func TestAppendRow(t *testing.T) {
	fake := &fakeSheets{}
	repo := newTestRepo(t, fake)

	require.NoError(t, repo.AppendRow(context.Background(), "AB_Testing", []interface{}{"AB-1-0", 7}))

	writes := fake.writes()
	require.Len(t, writes, 1)
	assert.Equal(t, http.MethodPost, writes[0].method)
	assert.Contains(t, writes[0].path, "'AB_Testing'!A1:append")
	assert.Contains(t, writes[0].body, "AB-1-0")
}

func TestUnknownTabIsTabNotFound(t *testing.T) {
	fake := &fakeSheets{missing: "Prediction_Coach"}
	repo := newTestRepo(t, fake)
	ctx := context.Background()

	_, err := repo.ReadAll(ctx, "Prediction_Coach")
	assert.ErrorIs(t, err, storage.ErrTabNotFound)

	err = repo.AppendRow(ctx, "Prediction_Coach", []interface{}{"x"})
	assert.ErrorIs(t, err, storage.ErrTabNotFound)

	err = repo.UpdateCell(ctx, "Prediction_Coach", 2, "Winning_Text", "x")
	assert.ErrorIs(t, err, storage.ErrTabNotFound)
}

func TestOtherAPIErrorsPassThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"The caller does not have permission"}}`))
	}))
	t.Cleanup(srv.Close)

	svc, err := sheets.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)

	_, err = NewWithService(svc, "sheet-id", nil, logger.Nop()).ReadAll(context.Background(), "Topics")
	require.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrTabNotFound)
}

func TestResetTabWritesHeaderAndRowsTogether(t *testing.T) {
	fake := &fakeSheets{}
	repo := newTestRepo(t, fake)

	// the spreadsheet lookup returns no sheets, so the tab is created first
	require.NoError(t, repo.ResetTab(context.Background(), "Prediction_Coach",
		[]string{"Timestamp", "Winning_Text"},
		[][]interface{}{{"now", "first"}, {"now", "second"}},
	))

	writes := fake.writes()
	require.Len(t, writes, 2)
	assert.Contains(t, writes[0].path, ":batchUpdate")
	assert.Equal(t, http.MethodPut, writes[1].method)
	assert.Contains(t, writes[1].path, "'Prediction_Coach'!A1")
	assert.Contains(t, writes[1].body, "Winning_Text")
	assert.Contains(t, writes[1].body, "first")
	assert.Contains(t, writes[1].body, "second")
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "id"}, nil, logger.Nop())
	require.Error(t, err)

	_, err = New(context.Background(), Config{}, nil, logger.Nop())
	require.Error(t, err)
}
