// Package sheets is a small client for the Google Sheets v4 REST API,
// covering the calls the report needs: look up a tab, duplicate a tab and
// overwrite a range.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://sheets.googleapis.com/v4"

type Client struct {
	token   string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewClient authenticates every call with the given OAuth access token.
// Obtaining and refreshing the token is the caller's job.
func NewClient(token string, logger *slog.Logger) *Client {
	return &Client{
		token:   token,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

// SetBaseURL overrides the API root.
func (c *Client) SetBaseURL(u string) {
	if u = strings.TrimRight(strings.TrimSpace(u), "/"); u != "" {
		c.baseURL = u
	}
}

// APIError is a non-2xx answer from the Sheets API.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sheets: %d %s: %s", e.StatusCode, e.Status, e.Message)
}

// SheetProperties identifies one tab of a spreadsheet.
type SheetProperties struct {
	SheetID int64  `json:"sheetId"`
	Title   string `json:"title"`
	Index   int    `json:"index"`
}

// Sheets lists the tabs of a spreadsheet.
func (c *Client) Sheets(ctx context.Context, spreadsheetID string) ([]SheetProperties, error) {
	u := fmt.Sprintf("%s/spreadsheets/%s?fields=%s", c.baseURL, url.PathEscape(spreadsheetID), url.QueryEscape("sheets.properties"))

	var resp struct {
		Sheets []struct {
			Properties SheetProperties `json:"properties"`
		} `json:"sheets"`
	}
	if err := c.do(ctx, http.MethodGet, u, nil, &resp); err != nil {
		return nil, fmt.Errorf("get spreadsheet: %w", err)
	}

	out := make([]SheetProperties, 0, len(resp.Sheets))
	for _, s := range resp.Sheets {
		out = append(out, s.Properties)
	}
	return out, nil
}

// FindSheet returns the tab with the given title.
func (c *Client) FindSheet(ctx context.Context, spreadsheetID, title string) (SheetProperties, bool, error) {
	tabs, err := c.Sheets(ctx, spreadsheetID)
	if err != nil {
		return SheetProperties{}, false, err
	}
	for _, t := range tabs {
		if t.Title == title {
			return t, true, nil
		}
	}
	return SheetProperties{}, false, nil
}

// DuplicateSheet copies sourceSheetID into a new tab called newName.
func (c *Client) DuplicateSheet(ctx context.Context, spreadsheetID string, sourceSheetID int64, newName string) error {
	body := map[string]any{
		"requests": []map[string]any{
			{
				"duplicateSheet": map[string]any{
					"sourceSheetId": sourceSheetID,
					"newSheetName":  newName,
				},
			},
		},
	}
	u := fmt.Sprintf("%s/spreadsheets/%s:batchUpdate", c.baseURL, url.PathEscape(spreadsheetID))
	if err := c.do(ctx, http.MethodPost, u, body, nil); err != nil {
		return fmt.Errorf("duplicate sheet: %w", err)
	}
	c.logger.Info("sheet duplicated", "source_sheet_id", sourceSheetID, "title", newName)
	return nil
}

// UpdateValues overwrites a range with raw (unparsed) values.
func (c *Client) UpdateValues(ctx context.Context, spreadsheetID, rng string, values [][]any) error {
	body := map[string]any{
		"range":          rng,
		"majorDimension": "ROWS",
		"values":         values,
	}
	u := fmt.Sprintf("%s/spreadsheets/%s/values/%s?valueInputOption=RAW",
		c.baseURL, url.PathEscape(spreadsheetID), url.PathEscape(rng))
	if err := c.do(ctx, http.MethodPut, u, body, nil); err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, u string, in, out any) error {
	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Error struct {
				Message string `json:"message"`
				Status  string `json:"status"`
			} `json:"error"`
		}
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error.Message != "" {
			apiErr.Status = errResp.Error.Status
			apiErr.Message = errResp.Error.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
