package hotel

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const defaultDebugLimit = 20

func (h *Handler) setupReportTools(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("hotel_dashboard",
		mcp.WithDescription("Today's arrivals, departures, occupancy and revenue, plus the most recent bookings"),
	), h.handleDashboard)

	s.AddTool(mcp.NewTool("hotel_reports",
		mcp.WithDescription("Revenue and occupancy reports"),
		mcp.WithString("report", mcp.Required(), mcp.Description("dashboard or occupancy"),
			mcp.Enum("dashboard", "occupancy")),
		mcp.WithNumber("days", mcp.Description("dashboard: days to cover (default 30)")),
		mcp.WithString("start_date", mcp.Description("occupancy: first day, YYYY-MM-DD (default 30 days ago)")),
		mcp.WithString("end_date", mcp.Description("occupancy: last day, YYYY-MM-DD (default today)")),
	), h.handleReports)

	s.AddTool(mcp.NewTool("hotel_settings",
		mcp.WithDescription("Show or update the hotel profile"),
		mcp.WithString("action", mcp.Description("get (default) or update"), mcp.Enum("get", "update")),
		mcp.WithString("name", mcp.Description("update: hotel name")),
		mcp.WithString("description", mcp.Description("update: description")),
		mcp.WithNumber("star_rating", mcp.Description("update: star rating 1-5")),
		mcp.WithString("primary_color", mcp.Description("update: brand color, e.g. #1e40af")),
		mcp.WithString("logo_url", mcp.Description("update: logo URL")),
	), h.handleSettings)

	s.AddTool(mcp.NewTool("hotel_integration",
		mcp.WithDescription("Manage the booking widget, webhook and API keys"),
		mcp.WithString("action", mcp.Required(),
			mcp.Description("settings, update_settings, list_keys, create_key, delete_key, toggle_key, widget_code or test_webhook"),
			mcp.Enum("settings", "update_settings", "list_keys", "create_key", "delete_key", "toggle_key", "widget_code", "test_webhook")),
		mcp.WithString("key_id", mcp.Description("delete_key, toggle_key: API key ID")),
		mcp.WithString("name", mcp.Description("create_key: key name")),
		mcp.WithString("scopes", mcp.Description("create_key: comma-separated scopes")),
		mcp.WithBoolean("widget_enabled", mcp.Description("update_settings")),
		mcp.WithString("widget_theme", mcp.Description("update_settings: light or dark")),
		mcp.WithString("widget_primary_color", mcp.Description("update_settings")),
		mcp.WithString("widget_position", mcp.Description("update_settings: e.g. bottom-right")),
		mcp.WithString("allowed_domains", mcp.Description("update_settings: comma-separated domains")),
		mcp.WithString("webhook_url", mcp.Description("update_settings")),
		mcp.WithString("webhook_events", mcp.Description("update_settings: comma-separated events")),
		mcp.WithNumber("rate_limit_per_hour", mcp.Description("update_settings")),
	), h.handleIntegration)

	s.AddTool(mcp.NewTool("hotel_public_rooms",
		mcp.WithDescription("Rooms a guest could book on the public site for a stay"),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Hotel slug")),
		mcp.WithString("check_in", mcp.Required(), mcp.Description("Arrival date, YYYY-MM-DD")),
		mcp.WithString("check_out", mcp.Required(), mcp.Description("Departure date, YYYY-MM-DD")),
		mcp.WithNumber("guests", mcp.Description("Number of guests (default 2)")),
	), h.handlePublicRooms)

	s.AddTool(mcp.NewTool("hotel_public_hotel",
		mcp.WithDescription("The hotel profile guests see on the public booking site"),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Hotel slug")),
	), h.handlePublicHotel)

	s.AddTool(mcp.NewTool("hotel_public_booking_create",
		mcp.WithDescription("Book a room through the public site as a guest would. The total is nights times the listed price."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Hotel slug")),
		mcp.WithString("check_in", mcp.Required(), mcp.Description("Arrival date, YYYY-MM-DD")),
		mcp.WithString("check_out", mcp.Required(), mcp.Description("Departure date, YYYY-MM-DD")),
		mcp.WithString("first_name", mcp.Required(), mcp.Description("Guest first name")),
		mcp.WithString("last_name", mcp.Required(), mcp.Description("Guest last name")),
		mcp.WithString("email", mcp.Required(), mcp.Description("Guest email")),
		mcp.WithString("room_type_id", mcp.Required(), mcp.Description("Room type ID from hotel_public_rooms")),
		mcp.WithString("phone", mcp.Description("Guest phone")),
		mcp.WithNumber("guests", mcp.Description("Adults (default 2)")),
		mcp.WithString("special_requests", mcp.Description("Notes from the guest")),
	), h.handlePublicBookingCreate)

	s.AddTool(mcp.NewTool("hotel_debug_recent",
		mcp.WithDescription("Recent API calls made by this server: method, path, status and timing"),
		mcp.WithNumber("limit", mcp.Description("Calls to show (default 20)")),
	), h.handleDebugRecent)
}

func (h *Handler) handleDashboard(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := h.ensureSession(ctx); res != nil {
		return res, nil
	}
	stats, err := h.svc.DashboardStats(ctx)
	if err != nil {
		return errorResult("Loading dashboard", err)
	}
	recent, err := h.svc.RecentBookings(ctx)
	if err != nil {
		return errorResult("Loading recent bookings", err)
	}
	return jsonResult(map[string]any{
		"stats":           stats,
		"recent_bookings": recent,
	})
}

func (h *Handler) handleReports(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := h.ensureSession(ctx); res != nil {
		return res, nil
	}
	params, err := parseParams[ReportsParams](request.Params.Arguments)
	if err != nil {
		return invalidArgs(err)
	}

	switch params.Report {
	case "dashboard":
		report, err := h.svc.DashboardReport(ctx, int(params.Days))
		if err != nil {
			return errorResult("Loading dashboard report", err)
		}
		return jsonResult(report)

	case "occupancy":
		today := time.Now()
		start, err := parseDate("start_date", params.StartDate, today.AddDate(0, 0, -30))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		end, err := parseDate("end_date", params.EndDate, today)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		report, err := h.svc.OccupancyReport(ctx, start, end)
		if err != nil {
			return errorResult("Loading occupancy report", err)
		}
		return jsonResult(report)

	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown report %q: use dashboard or occupancy", params.Report)), nil
	}
}

func (h *Handler) handleSettings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := h.ensureSession(ctx); res != nil {
		return res, nil
	}
	params, err := parseParams[SettingsParams](request.Params.Arguments)
	if err != nil {
		return invalidArgs(err)
	}

	switch params.Action {
	case "", "get":
		hotel, err := h.svc.MyHotel(ctx)
		if err != nil {
			return errorResult("Loading hotel", err)
		}
		return jsonResult(hotel)

	case "update":
		update := HotelUpdate{
			Name:         params.Name,
			Description:  params.Description,
			StarRating:   intPtr(params.StarRating),
			PrimaryColor: params.PrimaryColor,
			LogoURL:      params.LogoURL,
		}
		if update == (HotelUpdate{}) {
			return mcp.NewToolResultError("nothing to update"), nil
		}
		hotel, err := h.svc.UpdateMyHotel(ctx, update)
		if err != nil {
			return errorResult("Updating hotel", err)
		}
		return jsonResult(hotel)

	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown action %q: use get or update", params.Action)), nil
	}
}

func (h *Handler) handleIntegration(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := h.ensureSession(ctx); res != nil {
		return res, nil
	}
	params, err := parseParams[IntegrationParams](request.Params.Arguments)
	if err != nil {
		return invalidArgs(err)
	}

	switch params.Action {
	case "settings":
		settings, err := h.svc.IntegrationSettings(ctx)
		if err != nil {
			return errorResult("Loading integration settings", err)
		}
		return jsonResult(settings)

	case "update_settings":
		settings, err := h.svc.UpdateIntegrationSettings(ctx, IntegrationSettingsUpdate{
			WidgetEnabled:      params.WidgetEnabled,
			WidgetTheme:        params.WidgetTheme,
			WidgetPrimaryColor: params.WidgetPrimaryColor,
			WidgetPosition:     params.WidgetPosition,
			AllowedDomains:     params.AllowedDomains,
			WebhookURL:         params.WebhookURL,
			WebhookEvents:      params.WebhookEvents,
			RateLimitPerHour:   intPtr(params.RateLimitPerHour),
		})
		if err != nil {
			return errorResult("Updating integration settings", err)
		}
		return jsonResult(settings)

	case "list_keys":
		keys, err := h.svc.ListAPIKeys(ctx)
		if err != nil {
			return errorResult("Listing API keys", err)
		}
		return jsonResult(keys)

	case "create_key":
		if params.Name == "" {
			return mcp.NewToolResultError("name is required for create_key"), nil
		}
		key, err := h.svc.CreateAPIKey(ctx, APIKeyCreate{Name: params.Name, Scopes: strings.TrimSpace(params.Scopes)})
		if err != nil {
			return errorResult("Creating API key", err)
		}
		return jsonResult(map[string]any{
			"key":  key,
			"note": "Store the secret key now; it will not be shown again.",
		})

	case "delete_key", "toggle_key":
		if params.KeyID == "" {
			return mcp.NewToolResultError("key_id is required for " + params.Action), nil
		}
		if params.Action == "delete_key" {
			msg, err := h.svc.DeleteAPIKey(ctx, params.KeyID)
			if err != nil {
				return errorResult("Deleting API key", err)
			}
			return jsonResult(msg)
		}
		key, err := h.svc.ToggleAPIKey(ctx, params.KeyID)
		if err != nil {
			return errorResult("Toggling API key", err)
		}
		return jsonResult(key)

	case "widget_code":
		code, err := h.svc.WidgetCode(ctx)
		if err != nil {
			return errorResult("Loading widget code", err)
		}
		return jsonResult(code)

	case "test_webhook":
		result, err := h.svc.TestWebhook(ctx)
		if err != nil {
			return errorResult("Testing webhook", err)
		}
		return jsonResult(result)

	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown action %q", params.Action)), nil
	}
}

func (h *Handler) handlePublicRooms(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params, err := parseParams[PublicRoomsParams](request.Params.Arguments)
	if err != nil {
		return invalidArgs(err)
	}
	if params.Slug == "" || params.CheckIn == "" || params.CheckOut == "" {
		return mcp.NewToolResultError("slug, check_in and check_out are required"), nil
	}
	checkIn, err := parseDate("check_in", params.CheckIn, time.Time{})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	checkOut, err := parseDate("check_out", params.CheckOut, time.Time{})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rooms, err := h.svc.PublicRooms(ctx, params.Slug, checkIn, checkOut, int(params.Guests))
	if err != nil {
		return errorResult("Searching rooms", err)
	}
	return jsonResult(rooms)
}

func (h *Handler) handlePublicHotel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params, err := parseParams[PublicHotelParams](request.Params.Arguments)
	if err != nil {
		return invalidArgs(err)
	}
	if params.Slug == "" {
		return mcp.NewToolResultError("slug is required"), nil
	}

	hotel, err := h.svc.PublicHotel(ctx, params.Slug)
	if err != nil {
		return errorResult("Loading hotel", err)
	}
	return jsonResult(hotel)
}

func (h *Handler) handlePublicBookingCreate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params, err := parseParams[PublicBookingParams](request.Params.Arguments)
	if err != nil {
		return invalidArgs(err)
	}
	if params.Slug == "" {
		return mcp.NewToolResultError("slug is required"), nil
	}
	checkIn, checkOut, nights, err := params.stay()
	if err != nil {
		return errorResult("Creating booking", err)
	}

	// Price from the public listing so the guest pays what the site shows.
	rooms, err := h.svc.PublicRooms(ctx, params.Slug, checkIn, checkOut, int(params.Guests))
	if err != nil {
		return errorResult("Searching rooms", err)
	}
	var room *Room
	for i := range rooms {
		if rooms[i].ID == params.RoomTypeID {
			room = &rooms[i]
			break
		}
	}
	if room == nil {
		return mcp.NewToolResultError(fmt.Sprintf("room type %s is not available at %s for these dates", params.RoomTypeID, params.Slug)), nil
	}

	in := params.booking(checkIn, checkOut, nights, room, defaultRatePlanID, defaultRatePlanName)
	booking, err := h.svc.CreatePublicBooking(ctx, *in)
	if err != nil {
		return errorResult("Creating booking", err)
	}
	return jsonResult(booking)
}

func (h *Handler) handleDebugRecent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !h.debug.IsEnabled() {
		return mcp.NewToolResultText("API call recording is disabled. Set HOTEL_DEBUG=true to enable it."), nil
	}
	params, err := parseParams[DebugRecentParams](request.Params.Arguments)
	if err != nil {
		return invalidArgs(err)
	}
	limit := int(params.Limit)
	if limit <= 0 {
		limit = defaultDebugLimit
	}

	records, err := h.debug.Recent(ctx, limit)
	if err != nil {
		return errorResult("Reading recorded calls", err)
	}
	stats, err := h.debug.Stats(ctx)
	if err != nil {
		return errorResult("Reading call statistics", err)
	}
	return jsonResult(map[string]any{
		"stats":  stats,
		"recent": records,
	})
}
