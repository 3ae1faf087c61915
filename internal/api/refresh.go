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

	"github.com/vcto/hotel-mcp/internal/auth"
)

const refreshKey = "refresh"

// Refresh exchanges the stored refresh token for a new pair. Concurrent
// callers share one in-flight exchange and observe its outcome.
//
// A failed exchange clears the stored pair, fires the session expired
// callback and returns an error wrapping ErrSessionExpired.
func (c *Client) Refresh(ctx context.Context) error {
	return c.refresh(ctx)
}

func (c *Client) refresh(ctx context.Context) error {
	// Detached so that one waiter giving up does not fail the exchange for
	// the others. The deadline keeps a hung exchange from holding the key.
	detached := context.WithoutCancel(ctx)
	ch := c.refreshGroup.DoChan(refreshKey, func() (any, error) {
		bounded, cancel := context.WithTimeout(detached, c.refreshTimeout)
		defer cancel()
		return nil, c.exchangeRefreshToken(bounded)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// exchangeRefreshToken runs at most once at a time per client.
func (c *Client) exchangeRefreshToken(ctx context.Context) error {
	pair, err := c.store.Get(ctx)
	if err != nil {
		return c.expireSession(ctx, fmt.Errorf("reading refresh token: %w", err))
	}
	if pair.RefreshToken == "" {
		return c.expireSession(ctx, errors.New("no refresh token stored"))
	}

	next, err := c.postRefresh(ctx, pair.RefreshToken)
	if err != nil {
		return c.expireSession(ctx, err)
	}
	if err := c.store.SetPair(ctx, next); err != nil {
		return c.expireSession(ctx, fmt.Errorf("storing refreshed tokens: %w", err))
	}

	log.Printf("[API] Access token refreshed")
	return nil
}

// postRefresh calls /auth/refresh without the Authorization header and
// without going through the rate limiter or the 401 handling in do.
func (c *Client) postRefresh(ctx context.Context, refreshToken string) (auth.Pair, error) {
	body, err := json.Marshal(map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return auth.Pair{}, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/auth/refresh", nil, bytes.NewReader(body))
	if err != nil {
		return auth.Pair{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return auth.Pair{}, fmt.Errorf("refresh request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("[API] Warning: failed to close refresh response body: %v", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return auth.Pair{}, fmt.Errorf("refresh rejected: %w", parseAPIError(resp.StatusCode, data))
	}

	var next auth.Pair
	if err := json.NewDecoder(resp.Body).Decode(&next); err != nil {
		return auth.Pair{}, fmt.Errorf("decoding refresh response: %w", err)
	}
	if !next.Complete() {
		return auth.Pair{}, auth.ErrIncompletePair
	}
	return next, nil
}

// expireSession clears the stored pair and notifies the session handler.
func (c *Client) expireSession(ctx context.Context, cause error) error {
	// The exchange context may already be past its deadline.
	if err := c.store.Clear(context.WithoutCancel(ctx)); err != nil {
		log.Printf("[API] Failed to clear credentials after refresh failure: %v", err)
	}
	log.Printf("[API] Session expired: %v", cause)

	if c.onSessionExpired != nil {
		c.onSessionExpired(cause)
	}
	return fmt.Errorf("%w: %w", ErrSessionExpired, cause)
}
