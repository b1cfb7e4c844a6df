// Package apiclient is a typed client for the lead-management REST backend.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"gitlab.com/timkado/api/lead-console/internal/apperrors"
	"gitlab.com/timkado/api/lead-console/internal/observer"
	"gitlab.com/timkado/api/lead-console/pkg/logger"
)

const (
	defaultRetryInitialInterval = 100 * time.Millisecond
	defaultRetryMaxInterval     = time.Second
	// errorSnippetLimit bounds how much of a failed response body gets logged.
	errorSnippetLimit = 512
)

// Client talks to the lead backend. It is safe for concurrent use.
type Client struct {
	baseURL         string
	http            *http.Client
	retryMaxElapsed time.Duration
}

var _ ClientInterface = (*Client)(nil)

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithRetryMaxElapsed bounds retries of idempotent reads. Zero disables them.
func WithRetryMaxElapsed(d time.Duration) Option {
	return func(c *Client) {
		c.retryMaxElapsed = d
	}
}

// New creates a client for baseURL. A zero timeout leaves requests unbounded
// apart from the caller's context.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root this client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// request describes one backend call.
type request struct {
	op          string // metric and log label
	method      string
	path        string // already escaped
	query       url.Values
	body        io.Reader
	contentType string
	// emptyOK accepts a 2xx response without a body, leaving out untouched.
	emptyOK bool
}

// jsonRequest builds a request with an optional JSON body.
func jsonRequest(op, method, path string, payload interface{}) (request, error) {
	r := request{op: op, method: method, path: path, contentType: "application/json"}
	if payload == nil {
		return r, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return r, fmt.Errorf("encode %s payload: %w", op, err)
	}
	r.body = bytes.NewReader(raw)
	return r, nil
}

// do runs r and decodes a 2xx JSON body into out when out is non-nil.
// GETs are retried on transport errors and 502/503/504.
func (c *Client) do(ctx context.Context, r request, out interface{}) error {
	if r.method != http.MethodGet || c.retryMaxElapsed <= 0 {
		return c.attempt(ctx, r, out)
	}

	notify := func(err error, d time.Duration) {
		observer.IncAPIRetry(r.op)
		logger.FromContext(ctx).Warn("Retrying backend request",
			zap.String("operation", r.op),
			zap.Error(err),
			zap.Duration("after", d),
		)
	}

	return backoff.RetryNotify(func() error {
		err := c.attempt(ctx, r, out)
		if isTransient(err) {
			err = apperrors.NewRetryable(err, "%s %s", r.method, r.path)
		}
		if err != nil && !apperrors.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, newRetryPolicy(ctx, c.retryMaxElapsed), notify)
}

func (c *Client) attempt(ctx context.Context, r request, out interface{}) error {
	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, r.body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", r.op, err)
	}
	req.Header.Set("Content-Type", r.contentType)
	req.Header.Set("Accept", "application/json")
	if id := logger.RequestIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	log := logger.FromContext(ctx).With(zap.String("operation", r.op), zap.String("method", r.method), zap.String("path", r.path))

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		observer.ObserveAPIRequest(r.op, 0, time.Since(start))
		log.Warn("Backend request failed", zap.Error(err))
		return transportError(r.method, r.path, err)
	}
	defer resp.Body.Close()
	observer.ObserveAPIRequest(r.op, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorSnippetLimit))
		log.Warn("Backend returned error status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", snippet),
		)
		return apperrors.NewAPIError(r.method, r.path, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if r.emptyOK && errors.Is(err, io.EOF) {
			log.Debug("Backend returned no body", zap.Int("status", resp.StatusCode))
			return nil
		}
		return apperrors.NewFatal(err, "decode %s response", r.op)
	}
	log.Debug("Backend request completed", zap.Int("status", resp.StatusCode), zap.Duration("duration", time.Since(start)))
	return nil
}

// newRetryPolicy creates a new exponential backoff policy with context awareness.
func newRetryPolicy(ctx context.Context, maxElapsedTime time.Duration) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = defaultRetryInitialInterval
	b.MaxInterval = defaultRetryMaxInterval
	b.MaxElapsedTime = maxElapsedTime
	b.Reset()
	return backoff.WithContext(b, ctx)
}

// isTransient reports whether a failed read is worth retrying.
func isTransient(err error) bool {
	if err == nil || apperrors.IsFatal(err) || errors.Is(err, context.Canceled) {
		return false
	}
	if apperrors.IsTransportError(err) {
		return true
	}
	if apiErr, ok := apperrors.AsAPIError(err); ok {
		switch apiErr.StatusCode {
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
	}
	return false
}

func transportError(method, path string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w (%w): %s %s: %w", apperrors.ErrTransport, apperrors.ErrTimeout, method, path, err)
	}
	return fmt.Errorf("%w: %s %s: %w", apperrors.ErrTransport, method, path, err)
}

// escapedPath joins a static prefix with path-escaped identifiers.
func escapedPath(prefix string, ids ...string) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, id := range ids {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(id))
	}
	return b.String()
}

// requireID rejects blank identifiers before any request is issued.
func requireID(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperrors.NewValidation(fmt.Errorf("%s is required", name))
	}
	return nil
}
