// Package gsheets implements service.Sheet using the Google Sheets API.
//
// A tab is read as a grid whose first row is a header. Row IDs are 1-based
// sheet row numbers and column IDs are 0-based column indexes, so schemes for
// this backend are positional.
package gsheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"buildboard/internal/config"
	"buildboard/internal/service"
	"buildboard/internal/sheet"
)

const (
	// Scope is the OAuth scope requested at login.
	Scope = sheets.SpreadsheetsScope

	// HeaderRow is the sheet row holding column titles.
	HeaderRow = 1

	// lastColumn bounds the read range.
	lastColumn = "ZZ"

	// MaxColumns is the number of columns from A through lastColumn.
	MaxColumns = 26 + 26*26

	// valueInput keeps written text verbatim.
	valueInput = "RAW"
)

// OAuthConfig reads the desktop OAuth client from the config directory.
func OAuthConfig(cfg *config.Config) (*oauth2.Config, error) {
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth_client.json: %w", err)
	}
	oc, err := google.ConfigFromJSON(clientJSON, Scope)
	if err != nil {
		return nil, fmt.Errorf("invalid oauth_client.json: %w", err)
	}
	return oc, nil
}

// LoadToken reads the token saved by login.
func LoadToken(cfg *config.Config) (*oauth2.Token, error) {
	data, err := os.ReadFile(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read token.json: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("invalid token.json: %w", err)
	}
	return &token, nil
}

// SaveToken writes token to the config directory with mode 0600.
func SaveToken(cfg *config.Config, token *oauth2.Token) error {
	if err := cfg.EnsureDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(cfg.TokenPath(), data, 0600)
}

// CheckScheme rejects schemes whose column ids are not positions between A
// and ZZ, such as a scheme written for a Smartsheet sheet.
func CheckScheme(s sheet.Scheme) error {
	fields := make([]string, 0, len(s.Columns))
	for field := range s.Columns {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		if col := s.Columns[field]; col < 0 || col >= MaxColumns {
			return fmt.Errorf("scheme %q: column %d for %s is outside A:%s", s.Name, col, field, lastColumn)
		}
	}
	return nil
}

// NewService creates an authenticated Sheets service from the OAuth client
// and saved token. The token source refreshes the access token as needed.
func NewService(ctx context.Context, cfg *config.Config) (*sheets.Service, error) {
	oc, err := OAuthConfig(cfg)
	if err != nil {
		return nil, err
	}
	token, err := LoadToken(cfg)
	if err != nil {
		return nil, err
	}
	httpClient := oauth2.NewClient(ctx, oc.TokenSource(ctx, token))

	svc, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return svc, nil
}

// NewServiceWithHTTPClient creates a service with a custom HTTP client (for testing).
func NewServiceWithHTTPClient(ctx context.Context, httpClient *http.Client, opts ...option.ClientOption) (*sheets.Service, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	return sheets.NewService(ctx, opts...)
}

// Client implements service.Sheet for one tab of a spreadsheet.
type Client struct {
	svc           *sheets.Service
	spreadsheetID string
	tab           string
	logger        *slog.Logger
}

// New returns a client for the tab of spreadsheetID.
func New(svc *sheets.Service, spreadsheetID, tab string) (*Client, error) {
	if spreadsheetID == "" {
		return nil, errors.New("spreadsheet id required")
	}
	if tab == "" {
		return nil, errors.New("tab name required")
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		tab:           tab,
		logger:        slog.Default().With("backend", "gsheets", "sheet", spreadsheetID, "tab", tab),
	}, nil
}

// Rows reads every data row below the header. Blank rows are skipped.
func (c *Client) Rows(ctx context.Context) ([]sheet.Row, error) {
	first := HeaderRow + 1
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.a1(fmt.Sprintf("A%d:%s", first, lastColumn))).
		Context(ctx).Do()
	if err != nil {
		return nil, wrapError(err)
	}

	rows := make([]sheet.Row, 0, len(resp.Values))
	for i, values := range resp.Values {
		if blank(values) {
			continue
		}
		row := sheet.Row{ID: int64(first + i), Cells: make([]sheet.Cell, 0, len(values))}
		for j, v := range values {
			row.Cells = append(row.Cells, sheet.Cell{ColumnID: int64(j), Value: v})
		}
		rows = append(rows, row)
	}
	c.logger.DebugContext(ctx, "sheet fetched", "rows", len(rows))
	return rows, nil
}

// Columns reads the header row.
func (c *Client) Columns(ctx context.Context) ([]service.Column, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.a1(fmt.Sprintf("%d:%d", HeaderRow, HeaderRow))).
		Context(ctx).Do()
	if err != nil {
		return nil, wrapError(err)
	}
	cols := []service.Column{}
	if len(resp.Values) == 0 {
		return cols, nil
	}
	for j, v := range resp.Values[0] {
		cols = append(cols, service.Column{ID: int64(j), Title: sheet.Text(v)})
	}
	return cols, nil
}

// AddRows appends rows after the last data row in one request.
func (c *Client) AddRows(ctx context.Context, rows []sheet.Row) ([]sheet.Row, error) {
	grids := make([][]interface{}, 0, len(rows))
	for _, r := range rows {
		if r.ID != 0 {
			return nil, service.NewError(service.KindDecode, "row id not allowed on append",
				fmt.Errorf("row %d", r.ID))
		}
		values, err := grid(r)
		if err != nil {
			return nil, err
		}
		grids = append(grids, values)
	}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.a1("A1"), &sheets.ValueRange{Values: grids}).
		ValueInputOption(valueInput).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return nil, wrapError(err)
	}
	if resp.Updates == nil {
		return nil, nil
	}

	start, err := firstRow(resp.Updates.UpdatedRange)
	if err != nil {
		return nil, service.NewError(service.KindDecode, "unexpected append range", err)
	}
	stored := make([]sheet.Row, len(rows))
	for i, r := range rows {
		stored[i] = sheet.Row{ID: int64(start + i), Cells: r.Cells}
	}
	c.logger.DebugContext(ctx, "rows added", "rows", len(rows), "range", resp.Updates.UpdatedRange)
	return stored, nil
}

// UpdateRows overwrites rows by sheet row number in one request. Columns a
// row carries no cell for are left untouched.
func (c *Client) UpdateRows(ctx context.Context, rows []sheet.Row) error {
	data := make([]*sheets.ValueRange, 0, len(rows))
	for _, r := range rows {
		if r.ID <= HeaderRow {
			return service.NewError(service.KindDecode, "data row id required on update",
				fmt.Errorf("row %d", r.ID))
		}
		values, err := grid(r)
		if err != nil {
			return err
		}
		data = append(data, &sheets.ValueRange{
			Range:  c.a1(fmt.Sprintf("A%d", r.ID)),
			Values: [][]interface{}{values},
		})
	}

	_, err := c.svc.Spreadsheets.Values.BatchUpdate(c.spreadsheetID, &sheets.BatchUpdateValuesRequest{
		ValueInputOption: valueInput,
		Data:             data,
	}).Context(ctx).Do()
	if err != nil {
		return wrapError(err)
	}
	c.logger.DebugContext(ctx, "rows updated", "rows", len(rows))
	return nil
}

// a1 qualifies a range with the quoted tab name.
func (c *Client) a1(r string) string {
	return "'" + strings.ReplaceAll(c.tab, "'", "''") + "'!" + r
}

// grid lays cells out by column index. Unset positions are null, which the
// API skips on write.
func grid(r sheet.Row) ([]interface{}, error) {
	width := 0
	for _, cell := range r.Cells {
		if cell.ColumnID < 0 || cell.ColumnID >= MaxColumns {
			return nil, service.NewError(service.KindDecode, "column outside the sheet range",
				fmt.Errorf("column %d in row %d", cell.ColumnID, r.ID))
		}
		if int(cell.ColumnID)+1 > width {
			width = int(cell.ColumnID) + 1
		}
	}
	out := make([]interface{}, width)
	for _, cell := range r.Cells {
		v := cell.Value
		if v == nil {
			v = ""
		}
		out[cell.ColumnID] = v
	}
	return out, nil
}

func blank(values []interface{}) bool {
	for _, v := range values {
		if sheet.Text(v) != "" {
			return false
		}
	}
	return true
}

// firstRow extracts the first row number of an A1 range such as
// 'Tasks'!A7:V8.
func firstRow(a1 string) (int, error) {
	if i := strings.LastIndex(a1, "!"); i >= 0 {
		a1 = a1[i+1:]
	}
	if i := strings.Index(a1, ":"); i >= 0 {
		a1 = a1[:i]
	}
	digits := strings.TrimLeft(a1, "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz$")
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("range %q: %w", a1, err)
	}
	return n, nil
}

// wrapError classifies API errors as store or transport failures.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		msg := fmt.Sprintf("store returned %d", gerr.Code)
		switch gerr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			msg = "token expired or revoked (run: buildboard login)"
		case http.StatusNotFound:
			msg = "spreadsheet or tab not found"
		}
		return service.StoreError(gerr.Code, msg, err)
	}

	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return service.StoreError(http.StatusUnauthorized, "token expired or revoked (run: buildboard login)", err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return service.NewError(service.KindTransport, "request timed out", err)
	}
	return service.NewError(service.KindTransport, "store unreachable", err)
}
