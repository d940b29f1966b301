// Package backend is the HTTP client for the portfolio generation backend.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// NetworkError is a request that never produced an HTTP response.
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("backend %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// StatusError is a non-2xx response. Body holds the start of the response
// body for diagnostics.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend %s: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("backend %s: status %d: %s", e.Op, e.StatusCode, e.Body)
}

// Client talks to the backend's /api/v1 routes. Calls are never retried.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	log     *zap.Logger
}

// NewClient returns a client with a per-request timeout. The generation
// call has its own deadline and should go through a client whose timeout
// is at least as long.
func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// Fetch returns the stored portfolio document.
func (c *Client) Fetch(ctx context.Context, id string) (map[string]interface{}, error) {
	var out map[string]interface{}
	err := c.do(ctx, "fetch", http.MethodGet, "/api/v1/portfolio/"+url.PathEscape(id), nil, &out)
	return out, err
}

// Save replaces the stored document with doc (PATCH).
func (c *Client) Save(ctx context.Context, id string, doc map[string]interface{}) error {
	return c.do(ctx, "save", http.MethodPatch, "/api/v1/portfolio/"+url.PathEscape(id), doc, nil)
}

// Create stores a new document and returns its id.
func (c *Client) Create(ctx context.Context, doc map[string]interface{}) (string, error) {
	return c.CreateFor(ctx, "", doc)
}

// CreateFor stores a new document owned by userID. The backend requires the
// user_id query parameter even when it is empty.
func (c *Client) CreateFor(ctx context.Context, userID string, doc map[string]interface{}) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	path := "/api/v1/portfolio/?" + url.Values{"user_id": {userID}}.Encode()
	if err := c.do(ctx, "create", http.MethodPost, path, doc, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// Generate asks the backend to build a portfolio document from a résumé in
// markdown.
func (c *Client) Generate(ctx context.Context, resumeMarkdown string) (map[string]interface{}, error) {
	var out map[string]interface{}
	body := map[string]interface{}{"resume_markdown": resumeMarkdown}
	err := c.do(ctx, "generate", http.MethodPost, "/api/v1/generation/", body, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("backend %s: encode request: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("backend %s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.log.Warn("backend request failed",
			zap.String("op", op),
			zap.String("url", req.URL.String()),
			zap.Error(err),
		)
		return &NetworkError{Op: op, URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug("backend request",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("backend %s: decode response: %w", op, err)
	}
	return nil
}
