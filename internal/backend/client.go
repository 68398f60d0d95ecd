// Package backend is the HTTP client for the image/metadata service.
package backend

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
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/starford/ncdash/internal/apperr"
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// Retry configures retries of transport failures and 5xx responses.
// MaxAttempts <= 1 disables retrying.
type Retry struct {
	MaxAttempts     int
	InitialInterval time.Duration
}

// Client calls the backend over HTTP. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	retry   Retry
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithRetry enables retries.
func WithRetry(r Retry) Option {
	return func(c *Client) { c.retry = r }
}

// WithLogger sets the logger used for retry notices.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
		retry:   Retry{MaxAttempts: 1, InitialInterval: 500 * time.Millisecond},
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the service root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// getJSON issues a GET with query parameters and decodes the JSON response.
func (c *Client) getJSON(ctx context.Context, op, path string, query url.Values, out any) error {
	body, err := c.do(ctx, op, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &apperr.Error{Op: op, Status: http.StatusOK, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// postBinary issues a POST with a JSON body and returns the raw response.
func (c *Client) postBinary(ctx context.Context, op, path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: encode request: %w", op, err)
	}
	return c.do(ctx, op, http.MethodPost, path, nil, data)
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, payload []byte) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var out []byte
	attempt := func() error {
		body, err := c.once(ctx, op, method, u, payload)
		if err == nil {
			out = body
			return nil
		}
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		var ae *apperr.Error
		if errors.As(err, &ae) && ae.Retryable() {
			return err
		}
		return backoff.Permanent(err)
	}

	if c.retry.MaxAttempts <= 1 {
		err := attempt()
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			return nil, perm.Err
		}
		return out, err
	}

	eb := backoff.NewExponentialBackOff()
	if c.retry.InitialInterval > 0 {
		eb.InitialInterval = c.retry.InitialInterval
	}
	b := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(c.retry.MaxAttempts-1)), ctx)
	notify := func(err error, wait time.Duration) {
		c.logger.Warn("backend: retrying",
			slog.String("op", op),
			slog.String("error", err.Error()),
			slog.Duration("wait", wait),
		)
	}
	if err := backoff.RetryNotify(attempt, b, notify); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) once(ctx context.Context, op, method, u string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &apperr.Error{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &apperr.Error{Op: op, Status: resp.StatusCode, Code: parseDetail(raw)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apperr.Error{Op: op, Status: resp.StatusCode, Err: err}
	}
	return data, nil
}

// parseDetail extracts the error code from a {"detail": "<CODE>"} body.
// Validation errors, whose detail is a list, map to INVALID_REQUEST.
func parseDetail(raw []byte) apperr.Code {
	var env struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &env); err != nil || len(env.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(env.Detail, &s); err == nil {
		return apperr.Code(s)
	}
	if env.Detail[0] == '[' {
		return apperr.CodeInvalidRequest
	}
	return ""
}
