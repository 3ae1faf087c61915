package hotel

import (
	"encoding/json"
	"fmt"
	"time"
)

// Parameter structs for the hotel tools. Numbers arrive as float64 from
// JSON-RPC, hence the float fields.

type LoginParams struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type IDParams struct {
	ID string `json:"id"`
}

type RoomCreateParams struct {
	Name            string  `json:"name"`
	Description     string  `json:"description,omitempty"`
	BasePrice       float64 `json:"base_price"`
	TotalInventory  float64 `json:"total_inventory,omitempty"`
	BaseOccupancy   float64 `json:"base_occupancy,omitempty"`
	MaxOccupancy    float64 `json:"max_occupancy,omitempty"`
	MaxChildren     float64 `json:"max_children,omitempty"`
	ExtraBedAllowed bool    `json:"extra_bed_allowed,omitempty"`
}

type RoomUpdateParams struct {
	ID             string   `json:"id"`
	Name           *string  `json:"name,omitempty"`
	Description    *string  `json:"description,omitempty"`
	BasePrice      *float64 `json:"base_price,omitempty"`
	TotalInventory *float64 `json:"total_inventory,omitempty"`
	MaxOccupancy   *float64 `json:"max_occupancy,omitempty"`
	IsActive       *bool    `json:"is_active,omitempty"`
}

type RatePlanCreateParams struct {
	Name              string   `json:"name"`
	Description       string   `json:"description,omitempty"`
	MealPlan          string   `json:"meal_plan,omitempty"`
	IsRefundable      *bool    `json:"is_refundable,omitempty"`
	CancellationHours *float64 `json:"cancellation_hours,omitempty"`
}

type DateRangeParams struct {
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

type BookingsParams struct {
	Status string  `json:"status,omitempty"`
	Limit  float64 `json:"limit,omitempty"`
	Offset float64 `json:"offset,omitempty"`
}

type BookingCreateParams struct {
	CheckIn         string  `json:"check_in"`
	CheckOut        string  `json:"check_out"`
	FirstName       string  `json:"first_name"`
	LastName        string  `json:"last_name"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone,omitempty"`
	RoomTypeID      string  `json:"room_type_id"`
	RatePlanID      string  `json:"rate_plan_id,omitempty"`
	Guests          float64 `json:"guests,omitempty"`
	Children        float64 `json:"children,omitempty"`
	SpecialRequests string  `json:"special_requests,omitempty"`
	PromoCode       string  `json:"promo_code,omitempty"`
}

type BookingUpdateParams struct {
	ID              string   `json:"id"`
	Status          *string  `json:"status,omitempty"`
	PaidAmount      *float64 `json:"paid_amount,omitempty"`
	SpecialRequests *string  `json:"special_requests,omitempty"`
}

type PaymentsParams struct {
	BookingID string `json:"booking_id,omitempty"`
}

type PaymentCreateParams struct {
	BookingID        string  `json:"booking_id"`
	Amount           float64 `json:"amount"`
	Currency         string  `json:"currency,omitempty"`
	Status           string  `json:"status,omitempty"`
	PaymentMethod    string  `json:"payment_method,omitempty"`
	GatewayReference string  `json:"gateway_reference,omitempty"`
}

type ReportsParams struct {
	Report    string  `json:"report"`
	Days      float64 `json:"days,omitempty"`
	StartDate string  `json:"start_date,omitempty"`
	EndDate   string  `json:"end_date,omitempty"`
}

type SettingsParams struct {
	Action       string   `json:"action,omitempty"`
	Name         *string  `json:"name,omitempty"`
	Description  *string  `json:"description,omitempty"`
	StarRating   *float64 `json:"star_rating,omitempty"`
	PrimaryColor *string  `json:"primary_color,omitempty"`
	LogoURL      *string  `json:"logo_url,omitempty"`
}

type IntegrationParams struct {
	Action             string   `json:"action"`
	KeyID              string   `json:"key_id,omitempty"`
	Name               string   `json:"name,omitempty"`
	Scopes             string   `json:"scopes,omitempty"`
	WidgetEnabled      *bool    `json:"widget_enabled,omitempty"`
	WidgetTheme        *string  `json:"widget_theme,omitempty"`
	WidgetPrimaryColor *string  `json:"widget_primary_color,omitempty"`
	WidgetPosition     *string  `json:"widget_position,omitempty"`
	AllowedDomains     *string  `json:"allowed_domains,omitempty"`
	WebhookURL         *string  `json:"webhook_url,omitempty"`
	WebhookEvents      *string  `json:"webhook_events,omitempty"`
	RateLimitPerHour   *float64 `json:"rate_limit_per_hour,omitempty"`
}

type PublicRoomsParams struct {
	Slug     string  `json:"slug"`
	CheckIn  string  `json:"check_in"`
	CheckOut string  `json:"check_out"`
	Guests   float64 `json:"guests,omitempty"`
}

type PublicHotelParams struct {
	Slug string `json:"slug"`
}

type PublicBookingParams struct {
	Slug string `json:"slug"`
	BookingCreateParams
}

type DebugRecentParams struct {
	Limit float64 `json:"limit,omitempty"`
}

// parseParams converts the generic arguments map into T.
func parseParams[T any](args any) (*T, error) {
	var params T
	if args == nil {
		return &params, nil
	}

	data, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, err
	}
	return &params, nil
}

// parseDate parses YYYY-MM-DD; an empty value yields fallback.
func parseDate(field, value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be YYYY-MM-DD, got %q", field, value)
	}
	return t, nil
}

func intPtr(f *float64) *int {
	if f == nil {
		return nil
	}
	v := int(*f)
	return &v
}
