// Package upstream holds the outbound HTTP plumbing shared by the taxonomy
// API client and the PhyloPic resolver.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// DefaultUserAgent is sent on every outbound request unless overridden.
const DefaultUserAgent = "UKBoL-Explorer/1.0"

// maxErrorBody caps how much of an error response is kept in a TransportError.
const maxErrorBody = 512

// Observer is told about every completed request.
type Observer func(service, op, outcome string, elapsed time.Duration)

// NewHTTPClient returns an http.Client tuned for short JSON API calls.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			ResponseHeaderTimeout: timeout * 2 / 3,
			TLSHandshakeTimeout:   timeout / 3,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
		},
	}
}

// Client performs JSON GETs against one upstream service.
type Client struct {
	service   string
	http      *http.Client
	userAgent string
	observe   Observer
}

// New creates a client for the named service. A nil httpClient falls back to
// NewHTTPClient with a 10 second timeout.
func New(service string, httpClient *http.Client, observe Observer) *Client {
	if httpClient == nil {
		httpClient = NewHTTPClient(10 * time.Second)
	}
	return &Client{
		service:   service,
		http:      httpClient,
		userAgent: DefaultUserAgent,
		observe:   observe,
	}
}

// SetUserAgent overrides the User-Agent header.
func (c *Client) SetUserAgent(ua string) {
	c.userAgent = ua
}

// Service returns the name the client reports in errors and metrics.
func (c *Client) Service() string {
	return c.service
}

type requestIDKey struct{}

// WithRequestID returns a context carrying id, which is forwarded as the
// X-Request-ID header of outbound requests.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

// GetJSON issues a GET to url and decodes the JSON body into dst.
// A 404 yields ErrNotFound, any other non-2xx status or network failure a
// *TransportError, and a cancelled context ErrCancelled.
func (c *Client) GetJSON(ctx context.Context, op, url string, dst any) (err error) {
	start := time.Now()
	defer func() {
		if c.observe != nil {
			c.observe(c.service, op, Outcome(err), time.Since(start))
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &TransportError{Service: c.service, Op: op, Err: fmt.Errorf("invalid request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID(ctx))

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s %s: %w: %w", c.service, op, ErrCancelled, ctxErr)
		}
		return &TransportError{Service: c.service, Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", c.service, op, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &TransportError{
			Service:    c.service,
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        errors.New(string(body)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s %s: %w: %w", c.service, op, ErrCancelled, ctxErr)
		}
		return &TransportError{Service: c.service, Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	return nil
}
