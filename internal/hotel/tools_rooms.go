package hotel

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const defaultAvailabilityDays = 7

func (h *Handler) setupRoomTools(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("hotel_rooms",
		mcp.WithDescription("List the hotel's room types"),
	), h.handleRooms)

	s.AddTool(mcp.NewTool("hotel_room_create",
		mcp.WithDescription("Create a room type"),
		mcp.WithString("name", mcp.Required(), mcp.Description("Room type name, e.g. Deluxe Double")),
		mcp.WithNumber("base_price", mcp.Required(), mcp.Description("Price per night")),
		mcp.WithString("description", mcp.Description("Short description")),
		mcp.WithNumber("total_inventory", mcp.Description("Number of rooms of this type (default 1)")),
		mcp.WithNumber("base_occupancy", mcp.Description("Guests included in the base price (default 2)")),
		mcp.WithNumber("max_occupancy", mcp.Description("Maximum guests (default base_occupancy)")),
		mcp.WithNumber("max_children", mcp.Description("Maximum children")),
		mcp.WithBoolean("extra_bed_allowed", mcp.Description("Whether an extra bed can be added")),
	), h.handleRoomCreate)

	s.AddTool(mcp.NewTool("hotel_room_update",
		mcp.WithDescription("Update fields of a room type; omitted fields are unchanged"),
		mcp.WithString("id", mcp.Required(), mcp.Description("Room type ID")),
		mcp.WithString("name", mcp.Description("New name")),
		mcp.WithString("description", mcp.Description("New description")),
		mcp.WithNumber("base_price", mcp.Description("New price per night")),
		mcp.WithNumber("total_inventory", mcp.Description("New room count")),
		mcp.WithNumber("max_occupancy", mcp.Description("New maximum guests")),
		mcp.WithBoolean("is_active", mcp.Description("Whether the room type can be booked")),
	), h.handleRoomUpdate)

	s.AddTool(mcp.NewTool("hotel_room_delete",
		mcp.WithDescription("Delete a room type"),
		mcp.WithString("id", mcp.Required(), mcp.Description("Room type ID")),
	), h.handleRoomDelete)

	s.AddTool(mcp.NewTool("hotel_rate_plans",
		mcp.WithDescription("List rate plans"),
	), h.handleRatePlans)

	s.AddTool(mcp.NewTool("hotel_rate_plan_create",
		mcp.WithDescription("Create a rate plan"),
		mcp.WithString("name", mcp.Required(), mcp.Description("Rate plan name")),
		mcp.WithString("description", mcp.Description("Short description")),
		mcp.WithString("meal_plan", mcp.Description("Meal plan: RO, BB, HB, FB or AI (default RO)")),
		mcp.WithBoolean("is_refundable", mcp.Description("Whether the rate is refundable (default true)")),
		mcp.WithNumber("cancellation_hours", mcp.Description("Free cancellation window in hours (default 24)")),
	), h.handleRatePlanCreate)

	s.AddTool(mcp.NewTool("hotel_rate_plan_delete",
		mcp.WithDescription("Delete a rate plan"),
		mcp.WithString("id", mcp.Required(), mcp.Description("Rate plan ID")),
	), h.handleRatePlanDelete)

	s.AddTool(mcp.NewTool("hotel_availability",
		mcp.WithDescription("Show available rooms per room type and day"),
		mcp.WithString("start_date", mcp.Description("First day, YYYY-MM-DD (default today)")),
		mcp.WithString("end_date", mcp.Description("Last day, YYYY-MM-DD (default a week from start)")),
	), h.handleAvailability)
}

func (h *Handler) handleRooms(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := h.ensureSession(ctx); res != nil {
		return res, nil
	}
	rooms, err := h.svc.ListRooms(ctx)
	if err != nil {
		return errorResult("Listing rooms", err)
	}
	return jsonResult(rooms)
}

func (h *Handler) handleRoomCreate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := h.ensureSession(ctx); res != nil {
		return res, nil
	}
	params, err := parseParams[RoomCreateParams](request.Params.Arguments)
	if err != nil {
		return invalidArgs(err)
	}
	if params.Name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}
	if params.BasePrice <= 0 {
		return mcp.NewToolResultError("base_price must be greater than zero"), nil
	}

	in := RoomCreate{
		Name:            params.Name,
		Description:     params.Description,
		BasePrice:       params.BasePrice,
		TotalInventory:  max(int(params.TotalInventory), 1),
		BaseOccupancy:   max(int(params.BaseOccupancy), 1),
		MaxChildren:     int(params.MaxChildren),
		ExtraBedAllowed: params.ExtraBedAllowed,
		IsActive:        true,
	}
	if params.BaseOccupancy == 0 {
		in.BaseOccupancy = 2
	}
	in.MaxOccupancy = max(int(params.MaxOccupancy), in.BaseOccupancy)

	room, err := h.svc.CreateRoom(ctx, in)
	if err != nil {
		return errorResult("Creating room", err)
	}
	return jsonResult(room)
}

func (h *Handler) handleRoomUpdate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := h.ensureSession(ctx); res != nil {
		return res, nil
	}
	params, err := parseParams[RoomUpdateParams](request.Params.Arguments)
	if err != nil {
		return invalidArgs(err)
	}
	if params.ID == "" {
		return mcp.NewToolResultError("id is required"), nil
	}

	room, err := h.svc.UpdateRoom(ctx, params.ID, RoomUpdate{
		Name:           params.Name,
		Description:    params.Description,
		BasePrice:      params.BasePrice,
		TotalInventory: intPtr(params.TotalInventory),
		MaxOccupancy:   intPtr(params.MaxOccupancy),
		IsActive:       params.IsActive,
	})
	if err != nil {
		return errorResult("Updating room", err)
	}
	return jsonResult(room)
}

func (h *Handler) handleRoomDelete(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := h.ensureSession(ctx); res != nil {
		return res, nil
	}
	params, err := parseParams[IDParams](request.Params.Arguments)
	if err != nil {
		return invalidArgs(err)
	}
	if params.ID == "" {
		return mcp.NewToolResultError("id is required"), nil
	}
	if err := h.svc.DeleteRoom(ctx, params.ID); err != nil {
		return errorResult("Deleting room", err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Room type %s deleted.", params.ID)), nil
}

func (h *Handler) handleRatePlans(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := h.ensureSession(ctx); res != nil {
		return res, nil
	}
	plans, err := h.svc.ListRatePlans(ctx)
	if err != nil {
		return errorResult("Listing rate plans", err)
	}
	return jsonResult(plans)
}

func (h *Handler) handleRatePlanCreate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := h.ensureSession(ctx); res != nil {
		return res, nil
	}
	params, err := parseParams[RatePlanCreateParams](request.Params.Arguments)
	if err != nil {
		return invalidArgs(err)
	}
	if params.Name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	in := RatePlanCreate{
		Name:              params.Name,
		Description:       params.Description,
		MealPlan:          params.MealPlan,
		IsRefundable:      true,
		CancellationHours: 24,
		IsActive:          true,
	}
	if params.IsRefundable != nil {
		in.IsRefundable = *params.IsRefundable
	}
	if params.CancellationHours != nil {
		in.CancellationHours = int(*params.CancellationHours)
	}

	plan, err := h.svc.CreateRatePlan(ctx, in)
	if err != nil {
		return errorResult("Creating rate plan", err)
	}
	return jsonResult(plan)
}

func (h *Handler) handleRatePlanDelete(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := h.ensureSession(ctx); res != nil {
		return res, nil
	}
	params, err := parseParams[IDParams](request.Params.Arguments)
	if err != nil {
		return invalidArgs(err)
	}
	if params.ID == "" {
		return mcp.NewToolResultError("id is required"), nil
	}
	if err := h.svc.DeleteRatePlan(ctx, params.ID); err != nil {
		return errorResult("Deleting rate plan", err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Rate plan %s deleted.", params.ID)), nil
}

func (h *Handler) handleAvailability(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := h.ensureSession(ctx); res != nil {
		return res, nil
	}
	params, err := parseParams[DateRangeParams](request.Params.Arguments)
	if err != nil {
		return invalidArgs(err)
	}

	today := time.Now()
	start, err := parseDate("start_date", params.StartDate, today)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	end, err := parseDate("end_date", params.EndDate, start.AddDate(0, 0, defaultAvailabilityDays-1))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rooms, err := h.svc.Availability(ctx, start, end)
	if err != nil {
		return errorResult("Loading availability", err)
	}
	return jsonResult(rooms)
}
