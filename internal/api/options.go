package api

import (
	"net/http"
	"time"

	"github.com/vcto/hotel-mcp/internal/auth"
)

// Option configures a Client.
type Option func(*Client)

// SessionExpiredFunc is called once per failed refresh attempt, after the
// stored credentials have been cleared. cause says why the refresh failed.
type SessionExpiredFunc func(cause error)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the underlying http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithTransport wraps the outbound transport, e.g. with a debug recorder.
// The wrapper receives the transport that would otherwise be used.
func WithTransport(wrap func(http.RoundTripper) http.RoundTripper) Option {
	return func(c *Client) {
		c.wrapTransport = append(c.wrapTransport, wrap)
	}
}

// WithStore sets the credential store. Defaults to an in-memory store.
func WithStore(s auth.Store) Option {
	return func(c *Client) {
		if s != nil {
			c.store = s
		}
	}
}

// WithSessionExpiredHandler registers the session termination callback.
func WithSessionExpiredHandler(fn SessionExpiredFunc) Option {
	return func(c *Client) {
		c.onSessionExpired = fn
	}
}

// WithRateLimiter paces outbound calls through rl.
func WithRateLimiter(rl *RateLimiter) Option {
	return func(c *Client) {
		c.limiter = rl
	}
}

// WithUserAgent sets the User-Agent header on every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}
