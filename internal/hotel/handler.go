package hotel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/vcto/hotel-mcp/internal/api"
	"github.com/vcto/hotel-mcp/internal/debug"
)

// Handler exposes the hotel services as MCP tools and resources.
type Handler struct {
	svc   *Service
	debug debug.Storage
}

// NewHandler creates a handler over svc. storage may be nil, in which case
// the debug tool reports that recording is disabled.
func NewHandler(svc *Service, storage debug.Storage) *Handler {
	if storage == nil {
		storage = debug.NoOpStorage{}
	}
	return &Handler{svc: svc, debug: storage}
}

// Service returns the wrapped service.
func (h *Handler) Service() *Service {
	return h.svc
}

// SetupTools registers every hotel tool with s.
func (h *Handler) SetupTools(s *server.MCPServer) {
	h.setupAuthTools(s)
	h.setupRoomTools(s)
	h.setupBookingTools(s)
	h.setupReportTools(s)
	log.Printf("[MCP] Hotel tools registered against %s", h.svc.Client().BaseURL())
}

// jsonResult renders v as indented JSON text.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// errorResult turns a service error into a tool error the model can act on.
// API errors keep their status, code and field.
func errorResult(action string, err error) (*mcp.CallToolResult, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s failed", action)

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		fmt.Fprintf(&b, " (HTTP %d): %s", apiErr.Status, apiErr.Detail)
		if apiErr.Code != "" {
			fmt.Fprintf(&b, "\ncode: %s", apiErr.Code)
		}
		if apiErr.Field != "" {
			fmt.Fprintf(&b, "\nfield: %s", apiErr.Field)
		}
	} else {
		fmt.Fprintf(&b, ": %v", err)
	}

	if errors.Is(err, api.ErrSessionExpired) {
		b.WriteString("\nThe session has expired. Call hotel_login to sign in again.")
	}
	return mcp.NewToolResultError(b.String()), nil
}

func invalidArgs(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
}

// ensureSession fails fast when no access token is held, instead of letting
// the API answer 401 and a refresh attempt run against an empty store.
func (h *Handler) ensureSession(ctx context.Context) *mcp.CallToolResult {
	if h.svc.Client().HasAccessToken(ctx) {
		return nil
	}
	return mcp.NewToolResultError("Not logged in. Call hotel_login first.")
}
