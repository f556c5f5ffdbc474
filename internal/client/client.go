// ABOUTME: HTTP client for the kabar news and motivation REST API
// ABOUTME: Attaches the bearer token, bounds every call, and normalizes errors

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// DefaultTimeout bounds every outgoing call when no timeout is configured
const DefaultTimeout = 30 * time.Second

// maxBodyBytes caps how much of a response body is read
const maxBodyBytes = 8 << 20

// TokenSource yields the bearer credential for authenticated calls.
// An empty token with a nil error means "send no Authorization header".
type TokenSource interface {
	Token() (string, error)
}

// Client is the API client for the kabar backend
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokens         TokenSource
	onUnauthorized func()
	logger         *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithTokenSource sets where bearer tokens come from
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithTimeout overrides the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client. A zero timeout is
// replaced with DefaultTimeout so calls stay bounded.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc == nil {
			return
		}
		if hc.Timeout == 0 {
			hc.Timeout = DefaultTimeout
		}
		c.httpClient = hc
	}
}

// WithUnauthorizedHandler registers a callback run when an authenticated
// call is answered with 401.
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// WithLogger sets the logger used for request tracing
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a new API client with the given base URL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// request describes a single API call
type request struct {
	method string
	path   string
	query  url.Values
	body   any
	auth   bool
}

// send executes the request and returns the raw response body on 2xx
func (c *Client) send(ctx context.Context, r request) ([]byte, error) {
	var reader io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal input: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-Id", requestID)

	if r.auth && c.tokens != nil {
		token, err := c.tokens.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to read session token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("API request failed", "method", r.method, "path", r.path, "request_id", requestID, "error", err)
		return nil, c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &APIError{Kind: KindNetwork, StatusCode: resp.StatusCode, Message: "failed to read response", Err: err}
	}

	c.logger.Debug("API request",
		"method", r.method,
		"path", r.path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", requestID,
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := c.handleErrorResponse(resp.StatusCode, body)
		if apiErr.Kind == KindUnauthorized && r.auth && c.onUnauthorized != nil {
			c.logger.Warn("Authorization rejected, ending session", "path", r.path, "request_id", requestID)
			c.onUnauthorized()
		}
		return nil, apiErr
	}

	return body, nil
}

// sendJSON executes the request and decodes a JSON object response into out.
// An empty body leaves out untouched.
func (c *Client) sendJSON(ctx context.Context, r request, out any) error {
	body, err := c.send(ctx, r)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &APIError{Kind: KindDecode, Message: "invalid response from backend", Err: err}
	}
	return nil
}

// sendList executes the request and decodes a list response
func sendList[T any](ctx context.Context, c *Client, r request) ([]T, error) {
	body, err := c.send(ctx, r)
	if err != nil {
		return nil, err
	}
	return decodeList[T](body)
}

// decodeList accepts a bare JSON array or one wrapped in "data" or "results"
func decodeList[T any](body []byte) ([]T, error) {
	items := []T{}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return items, nil
	}

	parsed := gjson.ParseBytes(trimmed)
	raw := ""
	switch {
	case parsed.IsArray():
		raw = parsed.Raw
	case parsed.Get("data").IsArray():
		raw = parsed.Get("data").Raw
	case parsed.Get("results").IsArray():
		raw = parsed.Get("results").Raw
	default:
		return nil, &APIError{Kind: KindDecode, Message: "invalid response from backend: expected a list"}
	}

	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, &APIError{Kind: KindDecode, Message: "invalid response from backend", Err: err}
	}
	return items, nil
}

// handleRequestError converts context errors to user-friendly messages
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	if ctx.Err() == context.Canceled {
		return &APIError{Kind: KindNetwork, Message: "request canceled", Err: context.Canceled}
	}
	if ctx.Err() == context.DeadlineExceeded {
		return &APIError{Kind: KindNetwork, Message: "request timed out", Err: context.DeadlineExceeded}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &APIError{Kind: KindNetwork, Message: "request timed out", Err: err}
	}
	return &APIError{Kind: KindNetwork, Message: fmt.Sprintf("cannot connect to backend at %s", c.baseURL), Err: err}
}

// handleErrorResponse classifies a non-2xx response and extracts its message
func (c *Client) handleErrorResponse(status int, body []byte) *APIError {
	return &APIError{
		Kind:       kindForStatus(status),
		StatusCode: status,
		Message:    extractMessage(body),
	}
}
