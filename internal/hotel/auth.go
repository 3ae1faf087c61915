package hotel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vcto/hotel-mcp/internal/api"
	"github.com/vcto/hotel-mcp/internal/auth"
)

// Service is the typed surface of the hotel API. Every call goes through
// the authenticated client, so token attachment and refresh are handled
// there.
type Service struct {
	client *api.Client
}

// NewService wraps c.
func NewService(c *api.Client) *Service {
	return &Service{client: c}
}

// Client returns the underlying API client.
func (s *Service) Client() *api.Client {
	return s.client
}

// Login authenticates and stores the issued pair.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	return s.authenticate(ctx, "/auth/login", req)
}

// Signup creates an account with its hotel and stores the issued pair.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	return s.authenticate(ctx, "/auth/signup", req)
}

func (s *Service) authenticate(ctx context.Context, path string, body any) (*AuthResponse, error) {
	var raw json.RawMessage
	if err := s.client.Post(ctx, path, body, &raw); err != nil {
		return nil, err
	}

	resp, err := decodeAuthResponse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := s.client.SaveTokens(ctx, resp.Tokens); err != nil {
		return nil, fmt.Errorf("storing tokens: %w", err)
	}
	return resp, nil
}

func decodeAuthResponse(raw json.RawMessage) (*AuthResponse, error) {
	var p authPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decoding auth response: %w", err)
	}

	tokens := p.Pair
	if p.Tokens != nil {
		tokens = *p.Tokens
	}
	if !tokens.Complete() {
		return nil, auth.ErrIncompletePair
	}
	return &AuthResponse{User: p.User, Tokens: tokens}, nil
}

// Logout tells the API to end the session and clears the stored pair
// whether or not the API call succeeded.
func (s *Service) Logout(ctx context.Context) error {
	callErr := s.client.Post(ctx, "/auth/logout", nil, nil)
	clearErr := s.client.ClearTokens(ctx)
	return errors.Join(callErr, clearErr)
}

// CurrentUser returns the profile of the logged-in user.
func (s *Service) CurrentUser(ctx context.Context) (*User, error) {
	return api.GetJSON[*User](ctx, s.client, "/users/me", nil)
}

// ForgotPassword requests a reset email.
func (s *Service) ForgotPassword(ctx context.Context, email string) (*Message, error) {
	return api.PostJSON[*Message](ctx, s.client, "/auth/forgot-password", map[string]string{"email": email})
}

// ResetPassword completes a reset with the emailed token.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) (*Message, error) {
	return api.PostJSON[*Message](ctx, s.client, "/auth/reset-password", map[string]string{
		"token":        token,
		"new_password": newPassword,
	})
}

// ChangePassword changes the password of the logged-in user.
func (s *Service) ChangePassword(ctx context.Context, current, next string) (*Message, error) {
	return api.PostJSON[*Message](ctx, s.client, "/auth/change-password", map[string]string{
		"current_password": current,
		"new_password":     next,
	})
}
