package hotel

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	DashboardResourceURI = "hotel://dashboard"
	RoomsResourceURI     = "hotel://rooms"
	BookingResourceURI   = "hotel://bookings/{id}"

	bookingURIPrefix = "hotel://bookings/"
)

// SetupResources registers read-only views of the hotel.
func (h *Handler) SetupResources(s *server.MCPServer) {
	s.AddResource(mcp.NewResource(DashboardResourceURI, "Hotel dashboard",
		mcp.WithResourceDescription("Today's arrivals, departures, occupancy and revenue"),
		mcp.WithMIMEType("application/json"),
	), h.readDashboard)

	s.AddResource(mcp.NewResource(RoomsResourceURI, "Room types",
		mcp.WithResourceDescription("All room types with prices and inventory"),
		mcp.WithMIMEType("application/json"),
	), h.readRooms)

	s.AddResourceTemplate(mcp.NewResourceTemplate(BookingResourceURI, "Booking",
		mcp.WithTemplateDescription("One booking with its guest and rooms"),
		mcp.WithTemplateMIMEType("application/json"),
	), h.readBooking)
}

func (h *Handler) readDashboard(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	stats, err := h.svc.DashboardStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading dashboard: %w", err)
	}
	return jsonContents(request.Params.URI, stats)
}

func (h *Handler) readRooms(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	rooms, err := h.svc.ListRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing rooms: %w", err)
	}
	return jsonContents(request.Params.URI, rooms)
}

func (h *Handler) readBooking(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	id := strings.TrimPrefix(request.Params.URI, bookingURIPrefix)
	if id == "" || id == request.Params.URI || strings.Contains(id, "/") {
		return nil, fmt.Errorf("invalid booking URI %q", request.Params.URI)
	}
	booking, err := h.svc.GetBooking(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading booking %s: %w", id, err)
	}
	return jsonContents(request.Params.URI, booking)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
