// Package api is the authenticated JSON client for the hotel REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vcto/hotel-mcp/internal/auth"
	"github.com/vcto/hotel-mcp/internal/config"
	"golang.org/x/sync/singleflight"
)

// RequestIDHeader carries a per-request UUID for correlating with API logs.
const RequestIDHeader = "X-Request-ID"

// maxErrorBody bounds how much of a failed response is read for the error.
const maxErrorBody = 64 << 10

// Client talks to the hotel API on behalf of one credential pair.
//
// Concurrent use is safe. The refresh state belongs to the instance, so two
// clients never share an in-flight refresh even when they share a store.
type Client struct {
	baseURL          string
	httpClient       *http.Client
	timeout          time.Duration
	wrapTransport    []func(http.RoundTripper) http.RoundTripper
	store            auth.Store
	limiter          *RateLimiter
	onSessionExpired SessionExpiredFunc
	userAgent        string

	refreshGroup   singleflight.Group
	refreshTimeout time.Duration
}

// New creates a client for the API rooted at baseURL
// (e.g. http://localhost:8000/api/v1).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		timeout:    config.DefaultAPITimeout,
		store:      auth.NewMemoryStore(),
	}
	for _, opt := range opts {
		opt(c)
	}

	// Copy so a caller-supplied http.Client is never mutated.
	hc := *c.httpClient
	c.refreshTimeout = config.DefaultAPITimeout
	if c.timeout > 0 {
		hc.Timeout = c.timeout
		c.refreshTimeout = c.timeout
	}
	transport := hc.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	for _, wrap := range c.wrapTransport {
		transport = wrap(transport)
	}
	hc.Transport = transport
	c.httpClient = &hc

	return c
}

// NewFromConfig creates a client from the api section of the configuration.
// opts are applied after the configured ones.
func NewFromConfig(cfg config.APIConfig, opts ...Option) *Client {
	base := []Option{WithTimeout(cfg.Timeout), WithUserAgent(cfg.UserAgent)}
	if cfg.RateLimit > 0 {
		base = append(base, WithRateLimiter(NewRateLimiter(cfg.RateLimit, cfg.Burst)))
	}
	return New(cfg.BaseURL, append(base, opts...)...)
}

// BaseURL returns the API root this client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// RateLimiter returns the configured limiter, or nil.
func (c *Client) RateLimiter() *RateLimiter { return c.limiter }

// Get issues GET path?query and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// Post issues POST path with body encoded as JSON.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

// Put issues PUT path with body encoded as JSON.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

// Patch issues PATCH path with body encoded as JSON.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, nil, body, out)
}

// Delete issues DELETE path. out may be nil.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, out)
}

// GetJSON is Get with the result type supplied by the caller. The type is
// trusted; the body is not validated beyond JSON decoding.
func GetJSON[T any](ctx context.Context, c *Client, path string, query url.Values) (T, error) {
	var out T
	err := c.Get(ctx, path, query, &out)
	return out, err
}

// PostJSON is Post returning a typed result.
func PostJSON[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	var out T
	err := c.Post(ctx, path, body, &out)
	return out, err
}

// PutJSON is Put returning a typed result.
func PutJSON[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	var out T
	err := c.Put(ctx, path, body, &out)
	return out, err
}

// PatchJSON is Patch returning a typed result.
func PatchJSON[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	var out T
	err := c.Patch(ctx, path, body, &out)
	return out, err
}

// SaveTokens stores a freshly issued pair (login, signup).
func (c *Client) SaveTokens(ctx context.Context, p auth.Pair) error {
	return c.store.SetPair(ctx, p)
}

// ClearTokens forgets the stored pair.
func (c *Client) ClearTokens(ctx context.Context) error {
	return c.store.Clear(ctx)
}

// Tokens returns the stored pair.
func (c *Client) Tokens(ctx context.Context) (auth.Pair, error) {
	return c.store.Get(ctx)
}

// HasAccessToken reports whether the client currently holds an access token.
func (c *Client) HasAccessToken(ctx context.Context) bool {
	return auth.HasAccessToken(ctx, c.store)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, query, reader)
	if err != nil {
		return err
	}

	pair, err := c.store.Get(ctx)
	if err != nil {
		return fmt.Errorf("reading credentials: %w", err)
	}
	if pair.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("[API] Warning: failed to close response body: %v", err)
		}
	}()

	return c.handleResponse(ctx, resp, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("building %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return req, nil
}

func (c *Client) handleResponse(ctx context.Context, resp *http.Response, out any) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if c.limiter != nil {
			c.limiter.ResetBackoff()
		}
		if resp.StatusCode == http.StatusNoContent || out == nil {
			// Drain so the keep-alive connection goes back to the pool.
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
			return nil
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}
		if len(bytes.TrimSpace(data)) == 0 {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
		return nil
	}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := parseAPIError(resp.StatusCode, data)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		// Refresh for the next call; this one still fails.
		if err := c.refresh(ctx); err != nil {
			return errors.Join(apiErr, err)
		}
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		if c.limiter != nil {
			c.limiter.Backoff(retryAfter(resp.Header.Get("Retry-After")))
		}
	}
	return apiErr
}

// retryAfter parses the delay-seconds form of Retry-After.
func retryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
