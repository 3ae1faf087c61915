package hotel

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/vcto/hotel-mcp/internal/api"
	"github.com/vcto/hotel-mcp/internal/auth"
)

func (h *Handler) setupAuthTools(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("hotel_login",
		mcp.WithDescription("Sign in to the hotel dashboard API and keep the session for later calls"),
		mcp.WithString("email", mcp.Required(), mcp.Description("Account email")),
		mcp.WithString("password", mcp.Required(), mcp.Description("Account password")),
	), h.handleLogin)

	s.AddTool(mcp.NewTool("hotel_logout",
		mcp.WithDescription("End the session and forget the stored tokens"),
	), h.handleLogout)

	s.AddTool(mcp.NewTool("hotel_session",
		mcp.WithDescription("Show whether a session is held, when its token expires and how the API is throttling requests"),
	), h.handleSession)

	s.AddTool(mcp.NewTool("hotel_me",
		mcp.WithDescription("Show the profile of the signed-in user"),
	), h.handleMe)
}

func (h *Handler) handleLogin(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params, err := parseParams[LoginParams](request.Params.Arguments)
	if err != nil {
		return invalidArgs(err)
	}
	if params.Email == "" || params.Password == "" {
		return mcp.NewToolResultError("email and password are required"), nil
	}

	resp, err := h.svc.Login(ctx, LoginRequest{Email: params.Email, Password: params.Password})
	if err != nil {
		return errorResult("Login", err)
	}

	user := resp.User
	if user == nil {
		// Flat token responses carry no profile.
		if user, err = h.svc.CurrentUser(ctx); err != nil {
			return errorResult("Loading profile", err)
		}
	}
	return jsonResult(map[string]any{
		"logged_in": true,
		"user":      user,
	})
}

func (h *Handler) handleLogout(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := h.svc.Logout(ctx); err != nil {
		// Tokens are gone either way.
		return mcp.NewToolResultText("Logged out locally. The API reported: " + err.Error()), nil
	}
	return mcp.NewToolResultText("Logged out."), nil
}

// sessionInfo never includes token values.
type sessionInfo struct {
	LoggedIn         bool                  `json:"logged_in"`
	BaseURL          string                `json:"base_url"`
	Subject          string                `json:"subject,omitempty"`
	AccessExpiresAt  *time.Time            `json:"access_expires_at,omitempty"`
	AccessExpired    bool                  `json:"access_expired,omitempty"`
	HasRefreshToken  bool                  `json:"has_refresh_token"`
	RefreshExpiresAt *time.Time            `json:"refresh_expires_at,omitempty"`
	RateLimit        *api.RateLimitMetrics `json:"rate_limit,omitempty"`
}

func (h *Handler) handleSession(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client := h.svc.Client()
	info := sessionInfo{BaseURL: client.BaseURL()}
	if rl := client.RateLimiter(); rl != nil {
		m := rl.Metrics()
		info.RateLimit = &m
	}

	pair, err := client.Tokens(ctx)
	if err != nil {
		return errorResult("Reading session", err)
	}
	info.LoggedIn = pair.AccessToken != ""
	info.HasRefreshToken = pair.RefreshToken != ""

	if claims, err := auth.Inspect(pair.AccessToken); err == nil {
		info.Subject = claims.Subject
		if !claims.ExpiresAt.IsZero() {
			info.AccessExpiresAt = &claims.ExpiresAt
			info.AccessExpired = claims.Expired(time.Now())
		}
	}
	if claims, err := auth.Inspect(pair.RefreshToken); err == nil && !claims.ExpiresAt.IsZero() {
		info.RefreshExpiresAt = &claims.ExpiresAt
	}
	return jsonResult(info)
}

func (h *Handler) handleMe(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := h.ensureSession(ctx); res != nil {
		return res, nil
	}
	user, err := h.svc.CurrentUser(ctx)
	if err != nil {
		return errorResult("Loading profile", err)
	}
	return jsonResult(user)
}
