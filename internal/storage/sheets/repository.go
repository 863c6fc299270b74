package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/content-optimizer/internal/models"
	"github.com/content-optimizer/internal/storage"
	"github.com/content-optimizer/pkg/logger"
	"github.com/content-optimizer/pkg/ratelimit"
)

// Config holds configuration for the Sheets store
type Config struct {
	SpreadsheetID      string
	ServiceAccountJSON string
	CredentialsFile    string
}

// Repository implements storage.RowStore on top of a Google spreadsheet.
// Each tab of the store is one sheet of the spreadsheet.
type Repository struct {
	service       *sheets.Service
	spreadsheetID string
	limiter       *ratelimit.MultiLimiter
	log           *logger.Logger
}

var _ storage.RowStore = (*Repository)(nil)

// New creates a new Sheets store. limiter may be nil.
func New(ctx context.Context, cfg Config, limiter *ratelimit.MultiLimiter, log *logger.Logger) (*Repository, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}

	creds, err := credentialsJSON(cfg)
	if err != nil {
		return nil, err
	}

	jwt, err := google.JWTConfigFromJSON(creds, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithTokenSource(jwt.TokenSource(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return NewWithService(srv, cfg.SpreadsheetID, limiter, log), nil
}

// NewWithService wraps an already configured Sheets service
func NewWithService(srv *sheets.Service, spreadsheetID string, limiter *ratelimit.MultiLimiter, log *logger.Logger) *Repository {
	return &Repository{
		service:       srv,
		spreadsheetID: spreadsheetID,
		limiter:       limiter,
		log:           log.WithComponent("sheets-store"),
	}
}

func credentialsJSON(cfg Config) ([]byte, error) {
	if cfg.ServiceAccountJSON != "" {
		return []byte(cfg.ServiceAccountJSON), nil
	}
	if cfg.CredentialsFile != "" {
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
		return b, nil
	}
	return nil, fmt.Errorf("no Google credentials provided")
}

// Close is a no-op for Sheets
func (r *Repository) Close() error {
	return nil
}

// EnsureTab creates the sheet if needed and reconciles its header row
func (r *Repository) EnsureTab(ctx context.Context, tab string, header []string) error {
	exists, err := r.sheetExists(ctx, tab)
	if err != nil {
		return err
	}

	if !exists {
		r.log.Info().Str("sheet", tab).Msg("Creating new sheet")
		if err := r.addSheet(ctx, tab); err != nil {
			return err
		}
	}

	current, err := r.readHeader(ctx, tab)
	if err != nil {
		return err
	}

	missing := storage.MissingColumns(current, header)
	if len(missing) == 0 {
		return nil
	}

	start := len(current) + 1
	writeRange := fmt.Sprintf("%s!%s1", quoteTab(tab), columnLetter(start))
	if err := r.update(ctx, writeRange, [][]interface{}{toInterfaces(missing)}); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	r.log.Info().Str("sheet", tab).Strs("columns", missing).Msg("Headers added")
	return nil
}

// ReadAll reads the whole sheet
func (r *Repository) ReadAll(ctx context.Context, tab string) (*models.Table, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}

	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, quoteTab(tab)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", tab, tabError(tab, err))
	}

	return storage.BuildTable(tab, toStrings(resp.Values)), nil
}

// AppendRow appends values after the last row with data
func (r *Repository) AppendRow(ctx context.Context, tab string, values []interface{}) error {
	if err := r.wait(ctx); err != nil {
		return err
	}

	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{values},
	}

	_, err := r.service.Spreadsheets.Values.Append(r.spreadsheetID, fmt.Sprintf("%s!A1", quoteTab(tab)), valueRange).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append row to %s: %w", tab, tabError(tab, err))
	}

	return nil
}

// UpdateCell resolves column against the header row and writes a single cell
func (r *Repository) UpdateCell(ctx context.Context, tab string, row int, column string, value interface{}) error {
	if row < 2 {
		return fmt.Errorf("%w: %d", storage.ErrRowOutOfRange, row)
	}

	header, err := r.readHeader(ctx, tab)
	if err != nil {
		return err
	}

	col := indexOf(header, column)
	if col < 0 {
		return fmt.Errorf("%w: %s in %s", storage.ErrColumnNotFound, column, tab)
	}

	cellRange := fmt.Sprintf("%s!%s%d", quoteTab(tab), columnLetter(col+1), row)
	if err := r.update(ctx, cellRange, [][]interface{}{{value}}); err != nil {
		return fmt.Errorf("failed to update cell %s: %w", cellRange, err)
	}

	return nil
}

// ResetTab clears the sheet, then writes the header and all rows in one update
func (r *Repository) ResetTab(ctx context.Context, tab string, header []string, rows [][]interface{}) error {
	exists, err := r.sheetExists(ctx, tab)
	if err != nil {
		return err
	}
	if !exists {
		if err := r.addSheet(ctx, tab); err != nil {
			return err
		}
	} else {
		if err := r.wait(ctx); err != nil {
			return err
		}
		_, err := r.service.Spreadsheets.Values.Clear(r.spreadsheetID, quoteTab(tab), &sheets.ClearValuesRequest{}).
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("failed to clear %s: %w", tab, err)
		}
	}

	values := make([][]interface{}, 0, len(rows)+1)
	values = append(values, toInterfaces(header))
	values = append(values, rows...)
	if err := r.update(ctx, fmt.Sprintf("%s!A1", quoteTab(tab)), values); err != nil {
		return fmt.Errorf("failed to write %s: %w", tab, err)
	}
	return nil
}

func (r *Repository) sheetExists(ctx context.Context, tab string) (bool, error) {
	if err := r.wait(ctx); err != nil {
		return false, err
	}

	spreadsheet, err := r.service.Spreadsheets.Get(r.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == tab {
			return true, nil
		}
	}
	return false, nil
}

func (r *Repository) addSheet(ctx context.Context, tab string) error {
	if err := r.wait(ctx); err != nil {
		return err
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{
						Title: tab,
					},
				},
			},
		},
	}

	if _, err := r.service.Spreadsheets.BatchUpdate(r.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", tab, err)
	}
	return nil
}

func (r *Repository) readHeader(ctx context.Context, tab string) ([]string, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}

	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, fmt.Sprintf("%s!1:1", quoteTab(tab))).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", tab, tabError(tab, err))
	}

	rows := toStrings(resp.Values)
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *Repository) update(ctx context.Context, rng string, values [][]interface{}) error {
	if err := r.wait(ctx); err != nil {
		return err
	}

	valueRange := &sheets.ValueRange{Values: values}
	_, err := r.service.Spreadsheets.Values.Update(r.spreadsheetID, rng, valueRange).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

// tabError maps the API's rejection of a range on an unknown sheet title to
// storage.ErrTabNotFound
func tabError(tab string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) &&
		apiErr.Code == http.StatusBadRequest &&
		strings.Contains(apiErr.Message, "Unable to parse range") {
		return fmt.Errorf("%w: %s", storage.ErrTabNotFound, tab)
	}
	return err
}

func (r *Repository) wait(ctx context.Context) error {
	if r.limiter == nil {
		return nil
	}
	if err := r.limiter.Wait(ctx, ratelimit.LimiterSheets); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	return nil
}

// quoteTab wraps a sheet title for use in A1 notation
func quoteTab(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}

// columnLetter converts a 1-based column index to Excel-style letter (1=A, 26=Z, 27=AA)
func columnLetter(n int) string {
	result := ""
	for n > 0 {
		n-- // Adjust for 0-based indexing
		result = string(rune('A'+n%26)) + result
		n /= 26
	}
	return result
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func toStrings(values [][]interface{}) [][]string {
	out := make([][]string, 0, len(values))
	for _, row := range values {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = fmt.Sprintf("%v", v)
		}
		out = append(out, cells)
	}
	return out
}
