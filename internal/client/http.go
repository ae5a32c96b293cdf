package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tormodhaugland/lastimport/internal/model"
)

const (
	defaultBaseURL     = "http://localhost:3333"
	defaultHTTPTimeout = 10 * time.Second

	lastImportPath = "/imports/last"
	importsPath    = "/imports"

	requestIDHeader = "X-Request-Id"
	maxErrorBody    = 512
)

// HTTPClient implements SnapshotClient over the backend's REST API.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a new HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient injects a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBaseURL overrides the backend base URL.
func WithBaseURL(u string) Option {
	return func(c *HTTPClient) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *HTTPClient) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewHTTPClient(opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *HTTPClient) BaseURL() string { return c.baseURL }

func (c *HTTPClient) FetchLatestImport(ctx context.Context) (*model.StockImportSnapshot, error) {
	const op = "fetch latest import"

	body, status, err := c.do(ctx, http.MethodGet, lastImportPath)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	if status == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if status < 200 || status >= 300 {
		return nil, &TransportError{Op: op, StatusCode: status, Err: fmt.Errorf("%s", truncate(body))}
	}

	var snapshot model.StockImportSnapshot
	if err := json.Unmarshal(body, &snapshot); err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return &snapshot, nil
}

func (c *HTTPClient) TriggerImport(ctx context.Context) error {
	const op = "trigger import"

	body, status, err := c.do(ctx, http.MethodPost, importsPath)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	if status < 200 || status >= 300 {
		return &TransportError{Op: op, StatusCode: status, Err: fmt.Errorf("%s", truncate(body))}
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string) ([]byte, int, error) {
	reqID := uuid.NewString()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, reqID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		c.logger.Warn("request failed", "method", method, "path", path, "request_id", reqID, "error", err)
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("request done",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", reqID,
		"elapsed", time.Since(start),
	)
	return body, resp.StatusCode, nil
}

func truncate(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "..."
	}
	if s == "" {
		return "empty response"
	}
	return s
}
