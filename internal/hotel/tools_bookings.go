package hotel

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	defaultRatePlanID   = "standard"
	defaultRatePlanName = "Standard Rate"
)

func (h *Handler) setupBookingTools(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("hotel_bookings",
		mcp.WithDescription("List bookings, newest first"),
		mcp.WithString("status", mcp.Description("Filter by status"),
			mcp.Enum("pending", "confirmed", "cancelled", "checked_in", "checked_out")),
		mcp.WithNumber("limit", mcp.Description("Maximum bookings to return (default 50, max 100)")),
		mcp.WithNumber("offset", mcp.Description("Bookings to skip")),
	), h.handleBookings)

	s.AddTool(mcp.NewTool("hotel_booking",
		mcp.WithDescription("Show one booking"),
		mcp.WithString("id", mcp.Required(), mcp.Description("Booking ID")),
	), h.handleBooking)

	s.AddTool(mcp.NewTool("hotel_booking_create",
		mcp.WithDescription("Create a booking for a guest. The total is nights times the room's base price."),
		mcp.WithString("check_in", mcp.Required(), mcp.Description("Arrival date, YYYY-MM-DD")),
		mcp.WithString("check_out", mcp.Required(), mcp.Description("Departure date, YYYY-MM-DD")),
		mcp.WithString("first_name", mcp.Required(), mcp.Description("Guest first name")),
		mcp.WithString("last_name", mcp.Required(), mcp.Description("Guest last name")),
		mcp.WithString("email", mcp.Required(), mcp.Description("Guest email")),
		mcp.WithString("room_type_id", mcp.Required(), mcp.Description("Room type ID")),
		mcp.WithString("phone", mcp.Description("Guest phone")),
		mcp.WithString("rate_plan_id", mcp.Description("Rate plan ID (default standard)")),
		mcp.WithNumber("guests", mcp.Description("Adults (default 2)")),
		mcp.WithNumber("children", mcp.Description("Children")),
		mcp.WithString("special_requests", mcp.Description("Notes from the guest")),
		mcp.WithString("promo_code", mcp.Description("Promotion code")),
	), h.handleBookingCreate)

	s.AddTool(mcp.NewTool("hotel_booking_update",
		mcp.WithDescription("Change a booking's status, paid amount or special requests"),
		mcp.WithString("id", mcp.Required(), mcp.Description("Booking ID")),
		mcp.WithString("status", mcp.Description("New status"),
			mcp.Enum("pending", "confirmed", "cancelled", "checked_in", "checked_out")),
		mcp.WithNumber("paid_amount", mcp.Description("Amount paid so far")),
		mcp.WithString("special_requests", mcp.Description("Replacement special requests")),
	), h.handleBookingUpdate)

	s.AddTool(mcp.NewTool("hotel_guests",
		mcp.WithDescription("List guests who have booked"),
	), h.handleGuests)

	s.AddTool(mcp.NewTool("hotel_payments",
		mcp.WithDescription("List payments"),
		mcp.WithString("booking_id", mcp.Description("Only payments for this booking")),
	), h.handlePayments)

	s.AddTool(mcp.NewTool("hotel_payment_create",
		mcp.WithDescription("Record a payment against a booking"),
		mcp.WithString("booking_id", mcp.Required(), mcp.Description("Booking ID")),
		mcp.WithNumber("amount", mcp.Required(), mcp.Description("Amount paid")),
		mcp.WithString("currency", mcp.Description("ISO currency code (default USD)")),
		mcp.WithString("status", mcp.Description("Payment status (default completed)")),
		mcp.WithString("payment_method", mcp.Description("e.g. card, cash, transfer")),
		mcp.WithString("gateway_reference", mcp.Description("Reference from the payment provider")),
	), h.handlePaymentCreate)
}

func (h *Handler) handleBookings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := h.ensureSession(ctx); res != nil {
		return res, nil
	}
	params, err := parseParams[BookingsParams](request.Params.Arguments)
	if err != nil {
		return invalidArgs(err)
	}

	bookings, err := h.svc.ListBookings(ctx, BookingQuery{
		Status: params.Status,
		Limit:  int(params.Limit),
		Offset: int(params.Offset),
	})
	if err != nil {
		return errorResult("Listing bookings", err)
	}
	return jsonResult(bookings)
}

func (h *Handler) handleBooking(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
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

	booking, err := h.svc.GetBooking(ctx, params.ID)
	if err != nil {
		return errorResult("Loading booking", err)
	}
	return jsonResult(booking)
}

func (h *Handler) handleBookingCreate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := h.ensureSession(ctx); res != nil {
		return res, nil
	}
	params, err := parseParams[BookingCreateParams](request.Params.Arguments)
	if err != nil {
		return invalidArgs(err)
	}

	in, err := h.buildBooking(ctx, params)
	if err != nil {
		return errorResult("Creating booking", err)
	}

	booking, err := h.svc.CreateBooking(ctx, *in)
	if err != nil {
		return errorResult("Creating booking", err)
	}
	return jsonResult(booking)
}

var errMissingBookingFields = errors.New("check_in, check_out, first_name, last_name, email and room_type_id are required")

// buildBooking prices a single-room booking from the room's base price.
func (h *Handler) buildBooking(ctx context.Context, p *BookingCreateParams) (*BookingCreate, error) {
	checkIn, checkOut, nights, err := p.stay()
	if err != nil {
		return nil, err
	}

	room, err := h.svc.GetRoom(ctx, p.RoomTypeID)
	if err != nil {
		return nil, fmt.Errorf("looking up room type %s: %w", p.RoomTypeID, err)
	}

	planID, planName := defaultRatePlanID, defaultRatePlanName
	if p.RatePlanID != "" {
		planID = p.RatePlanID
		planName = p.RatePlanID
		if plans, err := h.svc.ListRatePlans(ctx); err == nil {
			for _, plan := range plans {
				if plan.ID == p.RatePlanID {
					planName = plan.Name
					break
				}
			}
		}
	}
	return p.booking(checkIn, checkOut, nights, room, planID, planName), nil
}

// stay validates the fields every booking needs and counts the nights.
func (p *BookingCreateParams) stay() (checkIn, checkOut time.Time, nights int, err error) {
	if p.CheckIn == "" || p.CheckOut == "" || p.FirstName == "" || p.LastName == "" || p.Email == "" || p.RoomTypeID == "" {
		return time.Time{}, time.Time{}, 0, errMissingBookingFields
	}
	if checkIn, err = parseDate("check_in", p.CheckIn, time.Time{}); err != nil {
		return time.Time{}, time.Time{}, 0, err
	}
	if checkOut, err = parseDate("check_out", p.CheckOut, time.Time{}); err != nil {
		return time.Time{}, time.Time{}, 0, err
	}
	nights = int(math.Round(checkOut.Sub(checkIn).Hours() / 24))
	if nights < 1 {
		return time.Time{}, time.Time{}, 0, errors.New("check_out must be after check_in")
	}
	return checkIn, checkOut, nights, nil
}

func (p *BookingCreateParams) booking(checkIn, checkOut time.Time, nights int, room *Room, planID, planName string) *BookingCreate {
	guests := int(p.Guests)
	if guests <= 0 {
		guests = 2
	}

	return &BookingCreate{
		CheckIn:  checkIn.Format(dateLayout),
		CheckOut: checkOut.Format(dateLayout),
		Guest: Guest{
			FirstName: p.FirstName,
			LastName:  p.LastName,
			Email:     p.Email,
			Phone:     p.Phone,
		},
		Rooms: []BookingRoom{{
			RoomTypeID:    p.RoomTypeID,
			RoomTypeName:  room.Name,
			RatePlanID:    planID,
			RatePlanName:  planName,
			Guests:        guests,
			Children:      int(p.Children),
			PricePerNight: room.BasePrice,
			TotalPrice:    room.BasePrice * float64(nights),
		}},
		SpecialRequests: p.SpecialRequests,
		PromoCode:       p.PromoCode,
	}
}

func (h *Handler) handleBookingUpdate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := h.ensureSession(ctx); res != nil {
		return res, nil
	}
	params, err := parseParams[BookingUpdateParams](request.Params.Arguments)
	if err != nil {
		return invalidArgs(err)
	}
	if params.ID == "" {
		return mcp.NewToolResultError("id is required"), nil
	}
	if params.Status == nil && params.PaidAmount == nil && params.SpecialRequests == nil {
		return mcp.NewToolResultError("nothing to update: pass status, paid_amount or special_requests"), nil
	}

	booking, err := h.svc.UpdateBooking(ctx, params.ID, BookingUpdate{
		Status:          params.Status,
		PaidAmount:      params.PaidAmount,
		SpecialRequests: params.SpecialRequests,
	})
	if err != nil {
		return errorResult("Updating booking", err)
	}
	return jsonResult(booking)
}

func (h *Handler) handleGuests(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := h.ensureSession(ctx); res != nil {
		return res, nil
	}
	guests, err := h.svc.ListGuests(ctx)
	if err != nil {
		return errorResult("Listing guests", err)
	}
	return jsonResult(guests)
}

func (h *Handler) handlePayments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := h.ensureSession(ctx); res != nil {
		return res, nil
	}
	params, err := parseParams[PaymentsParams](request.Params.Arguments)
	if err != nil {
		return invalidArgs(err)
	}

	payments, err := h.svc.ListPayments(ctx)
	if err != nil {
		return errorResult("Listing payments", err)
	}
	if params.BookingID != "" {
		filtered := make([]Payment, 0, len(payments))
		for _, p := range payments {
			if p.BookingID == params.BookingID {
				filtered = append(filtered, p)
			}
		}
		payments = filtered
	}
	return jsonResult(payments)
}

func (h *Handler) handlePaymentCreate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := h.ensureSession(ctx); res != nil {
		return res, nil
	}
	params, err := parseParams[PaymentCreateParams](request.Params.Arguments)
	if err != nil {
		return invalidArgs(err)
	}
	if params.BookingID == "" {
		return mcp.NewToolResultError("booking_id is required"), nil
	}
	if params.Amount <= 0 {
		return mcp.NewToolResultError("amount must be greater than zero"), nil
	}

	in := PaymentCreate{
		BookingID:        params.BookingID,
		Amount:           params.Amount,
		Currency:         params.Currency,
		Status:           params.Status,
		PaymentMethod:    params.PaymentMethod,
		GatewayReference: params.GatewayReference,
	}
	if in.Currency == "" {
		in.Currency = "USD"
	}
	if in.Status == "" {
		in.Status = "completed"
	}

	payment, err := h.svc.CreatePayment(ctx, in)
	if err != nil {
		return errorResult("Recording payment", err)
	}
	return jsonResult(payment)
}
