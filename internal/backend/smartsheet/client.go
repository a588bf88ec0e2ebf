// Package smartsheet implements service.Sheet over the Smartsheet REST API.
package smartsheet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"buildboard/internal/service"
	"buildboard/internal/sheet"
)

// DefaultBaseURL is the public API root.
const DefaultBaseURL = "https://api.smartsheet.com/2.0"

// Client implements service.Sheet for one sheet.
type Client struct {
	http    *http.Client
	baseURL string
	sheetID string
	logger  *slog.Logger
}

// New creates a client for sheetID. When token is set every request carries
// it as a bearer credential; otherwise baseURL is expected to be a proxy that
// injects one.
func New(ctx context.Context, baseURL, token, sheetID string) (*Client, error) {
	httpClient := http.DefaultClient
	if token != "" {
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: token,
			TokenType:   "Bearer",
		}))
	}
	return NewWithHTTPClient(httpClient, baseURL, sheetID)
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(httpClient *http.Client, baseURL, sheetID string) (*Client, error) {
	if sheetID == "" {
		return nil, errors.New("sheet id required")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		sheetID: sheetID,
		logger:  slog.Default().With("backend", "smartsheet", "sheet", sheetID),
	}, nil
}

type sheetResponse struct {
	Columns []struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
	} `json:"columns"`
	Rows []sheet.Row `json:"rows"`
}

type rowsResult struct {
	Message string      `json:"message"`
	Result  []sheet.Row `json:"result"`
}

// Rows fetches the whole sheet.
func (c *Client) Rows(ctx context.Context) ([]sheet.Row, error) {
	var resp sheetResponse
	if err := c.do(ctx, http.MethodGet, c.sheetPath(), nil, &resp, false); err != nil {
		return nil, err
	}
	c.logger.DebugContext(ctx, "sheet fetched", "rows", len(resp.Rows))
	if resp.Rows == nil {
		return []sheet.Row{}, nil
	}
	return resp.Rows, nil
}

// Columns lists the sheet's columns in display order.
func (c *Client) Columns(ctx context.Context) ([]service.Column, error) {
	var resp sheetResponse
	if err := c.do(ctx, http.MethodGet, c.sheetPath(), nil, &resp, false); err != nil {
		return nil, err
	}
	cols := make([]service.Column, 0, len(resp.Columns))
	for _, col := range resp.Columns {
		cols = append(cols, service.Column{ID: col.ID, Title: col.Title})
	}
	return cols, nil
}

// AddRows appends rows in one request.
func (c *Client) AddRows(ctx context.Context, rows []sheet.Row) ([]sheet.Row, error) {
	for _, r := range rows {
		if r.ID != 0 {
			return nil, service.NewError(service.KindDecode, "row id not allowed on append",
				fmt.Errorf("row %d", r.ID))
		}
	}
	var resp rowsResult
	if err := c.do(ctx, http.MethodPost, c.sheetPath()+"/rows", rows, &resp, true); err != nil {
		return nil, err
	}
	c.logger.DebugContext(ctx, "rows added", "rows", len(rows), "stored", len(resp.Result))
	return resp.Result, nil
}

// UpdateRows replaces rows by row ID in one request.
func (c *Client) UpdateRows(ctx context.Context, rows []sheet.Row) error {
	for _, r := range rows {
		if r.ID == 0 {
			return service.NewError(service.KindDecode, "row id required on update", nil)
		}
	}
	var resp rowsResult
	if err := c.do(ctx, http.MethodPut, c.sheetPath()+"/rows", rows, &resp, true); err != nil {
		return err
	}
	c.logger.DebugContext(ctx, "rows updated", "rows", len(rows))
	return nil
}

func (c *Client) sheetPath() string {
	return "/sheets/" + url.PathEscape(c.sheetID)
}

// do sends one request and decodes a JSON response into out. An empty body
// is accepted only when allowEmpty is set.
func (c *Client) do(ctx context.Context, method, path string, body, out any, allowEmpty bool) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return service.NewError(service.KindDecode, "encode request", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return service.NewError(service.KindTransport, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return wrapError(err)
	}
	defer resp.Body.Close()

	if err := googleapi.CheckResponse(resp); err != nil {
		return wrapError(err)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return wrapError(err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		if allowEmpty {
			return nil
		}
		return service.NewError(service.KindDecode, "empty response body", nil)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return service.NewError(service.KindDecode, "unexpected response body", err)
	}
	return nil
}

// apiError is the error body the store sends with non-2xx statuses.
type apiError struct {
	ErrorCode int    `json:"errorCode"`
	Message   string `json:"message"`
}

// wrapError classifies err as a store or transport failure.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		msg := fmt.Sprintf("store returned %d", gerr.Code)
		var body apiError
		if json.Unmarshal([]byte(gerr.Body), &body) == nil && body.Message != "" {
			msg += ": " + body.Message
		}
		return service.StoreError(gerr.Code, msg, err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return service.NewError(service.KindTransport, "request timed out", err)
	}
	return service.NewError(service.KindTransport, "store unreachable", err)
}
