package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultTimeout matches the console's historical request timeout
const DefaultTimeout = 60 * time.Second

// Config configures the backend client
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the ASR backend. Each resource family has its own service.
type Client struct {
	baseURL string
	http    *http.Client

	Audio   *AudioService
	ASR     *ASRService
	History *HistoryService
	Summary *SummaryService
	Export  *ExportService
	Models  *ModelService
}

// New creates a backend client
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	c.Audio = &AudioService{c: c}
	c.ASR = &ASRService{c: c}
	c.History = &HistoryService{c: c}
	c.Summary = &SummaryService{c: c}
	c.Export = &ExportService{c: c}
	c.Models = &ModelService{c: c}
	return c
}

// BaseURL returns the backend origin the client targets
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Error is a non-2xx response from the backend
type Error struct {
	StatusCode int
	Detail     string
	Body       string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend http %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("backend http %d: %s", e.StatusCode, e.Body)
}

// Detail returns the backend-supplied detail text of err, or fallback
func Detail(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}

// IsNotFound reports whether err is a backend 404
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// request describes one call; body is sent verbatim with contentType
type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
}

// do performs the request and returns the response body of a 2xx reply
func (c *Client) do(ctx context.Context, r request) ([]byte, http.Header, error) {
	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, r.body)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s: %w", r.method, r.path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, &Error{
			StatusCode: resp.StatusCode,
			Detail:     parseDetail(body),
			Body:       truncate(body, 200),
		}
	}
	return body, resp.Header, nil
}

// doJSON sends in (if not nil) as JSON and decodes the reply into out (if not nil)
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, in, out any) error {
	r := request{method: method, path: path, query: query}
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		r.body = bytes.NewReader(payload)
		r.contentType = "application/json"
	}

	body, _, err := c.do(ctx, r)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// parseDetail extracts the human-readable "detail" field of an error body.
// Structured details (validation error lists) are returned re-encoded.
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		return text
	}
	if string(envelope.Detail) == "null" {
		return ""
	}
	return string(envelope.Detail)
}

// truncate returns the first n bytes of body as a string
func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
