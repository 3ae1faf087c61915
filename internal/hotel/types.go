// Package hotel exposes the hotel dashboard API as typed services and as
// MCP tools.
package hotel

import "github.com/vcto/hotel-mcp/internal/auth"

// Auth

type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"` // OWNER, MANAGER or STAFF
	HotelID   string `json:"hotel_id"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Name      string `json:"name"`
	HotelName string `json:"hotel_name"`
}

// AuthResponse is what login and signup yield. User is nil when the API
// answered with a bare token pair.
type AuthResponse struct {
	User   *User     `json:"user,omitempty"`
	Tokens auth.Pair `json:"tokens"`
}

// authPayload accepts both shapes the API uses: {user, tokens} and the
// flat token pair.
type authPayload struct {
	User   *User      `json:"user"`
	Tokens *auth.Pair `json:"tokens"`
	auth.Pair
}

type Message struct {
	Message string `json:"message"`
}

// Rooms

type RoomPhoto struct {
	ID        string `json:"id,omitempty"`
	URL       string `json:"url"`
	Caption   string `json:"caption,omitempty"`
	SortOrder int    `json:"sort_order"`
}

type Amenity struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Icon     string `json:"icon,omitempty"`
	Category string `json:"category,omitempty"`
}

type Room struct {
	ID              string      `json:"id"`
	HotelID         string      `json:"hotel_id"`
	Name            string      `json:"name"`
	Description     string      `json:"description,omitempty"`
	BaseOccupancy   int         `json:"base_occupancy"`
	MaxOccupancy    int         `json:"max_occupancy"`
	MaxChildren     int         `json:"max_children"`
	ExtraBedAllowed bool        `json:"extra_bed_allowed"`
	BasePrice       float64     `json:"base_price"`
	TotalInventory  int         `json:"total_inventory"`
	Photos          []RoomPhoto `json:"photos"`
	Amenities       []Amenity   `json:"amenities"`
	IsActive        bool        `json:"is_active"`
	CreatedAt       string      `json:"created_at,omitempty"`
	UpdatedAt       string      `json:"updated_at,omitempty"`
}

type RoomCreate struct {
	Name            string      `json:"name"`
	Description     string      `json:"description,omitempty"`
	BaseOccupancy   int         `json:"base_occupancy"`
	MaxOccupancy    int         `json:"max_occupancy"`
	MaxChildren     int         `json:"max_children"`
	ExtraBedAllowed bool        `json:"extra_bed_allowed"`
	BasePrice       float64     `json:"base_price"`
	TotalInventory  int         `json:"total_inventory"`
	IsActive        bool        `json:"is_active"`
	Photos          []RoomPhoto `json:"photos"`
	Amenities       []Amenity   `json:"amenities"`
}

// RoomUpdate is a PATCH body; nil fields are left unchanged.
type RoomUpdate struct {
	Name            *string      `json:"name,omitempty"`
	Description     *string      `json:"description,omitempty"`
	BaseOccupancy   *int         `json:"base_occupancy,omitempty"`
	MaxOccupancy    *int         `json:"max_occupancy,omitempty"`
	MaxChildren     *int         `json:"max_children,omitempty"`
	ExtraBedAllowed *bool        `json:"extra_bed_allowed,omitempty"`
	BasePrice       *float64     `json:"base_price,omitempty"`
	TotalInventory  *int         `json:"total_inventory,omitempty"`
	IsActive        *bool        `json:"is_active,omitempty"`
	Photos          *[]RoomPhoto `json:"photos,omitempty"`
	Amenities       *[]Amenity   `json:"amenities,omitempty"`
}

// Rates

type RatePlan struct {
	ID                string `json:"id"`
	HotelID           string `json:"hotel_id"`
	Name              string `json:"name"`
	Description       string `json:"description,omitempty"`
	MealPlan          string `json:"meal_plan"` // RO, BB, HB, FB, AI
	IsRefundable      bool   `json:"is_refundable"`
	CancellationHours int    `json:"cancellation_hours"`
	IsActive          bool   `json:"is_active"`
	CreatedAt         string `json:"created_at,omitempty"`
}

type RatePlanCreate struct {
	Name              string `json:"name"`
	Description       string `json:"description,omitempty"`
	MealPlan          string `json:"meal_plan"`
	IsRefundable      bool   `json:"is_refundable"`
	CancellationHours int    `json:"cancellation_hours"`
	IsActive          bool   `json:"is_active"`
}

// Availability

type DayAvailability struct {
	Date           string `json:"date"`
	TotalRooms     int    `json:"totalRooms"`
	BookedRooms    int    `json:"bookedRooms"`
	AvailableRooms int    `json:"availableRooms"`
	IsBlocked      bool   `json:"isBlocked"`
}

type RoomAvailability struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	TotalInventory int               `json:"totalInventory"`
	Availability   []DayAvailability `json:"availability"`
}

// Bookings

type Guest struct {
	ID          string `json:"id,omitempty"`
	HotelID     string `json:"hotel_id,omitempty"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	Nationality string `json:"nationality,omitempty"`
	IDType      string `json:"id_type,omitempty"`
	IDNumber    string `json:"id_number,omitempty"`
	Address     string `json:"address,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

type BookingRoom struct {
	ID            string  `json:"id,omitempty"`
	RoomTypeID    string  `json:"room_type_id"`
	RoomTypeName  string  `json:"room_type_name"`
	RatePlanID    string  `json:"rate_plan_id"`
	RatePlanName  string  `json:"rate_plan_name"`
	Guests        int     `json:"guests"`
	Children      int     `json:"children"`
	PricePerNight float64 `json:"price_per_night"`
	TotalPrice    float64 `json:"total_price"`
}

type Booking struct {
	ID              string        `json:"id"`
	HotelID         string        `json:"hotel_id"`
	BookingNumber   string        `json:"booking_number"`
	Guest           Guest         `json:"guest"`
	CheckIn         string        `json:"check_in"`
	CheckOut        string        `json:"check_out"`
	Status          string        `json:"status"`
	Rooms           []BookingRoom `json:"rooms"`
	TotalAmount     float64       `json:"total_amount"`
	PaidAmount      float64       `json:"paid_amount"`
	SpecialRequests string        `json:"special_requests,omitempty"`
	PromoCode       string        `json:"promo_code,omitempty"`
	Source          string        `json:"source"`
	CreatedAt       string        `json:"created_at,omitempty"`
	UpdatedAt       string        `json:"updated_at,omitempty"`
}

type BookingCreate struct {
	CheckIn         string        `json:"check_in"`
	CheckOut        string        `json:"check_out"`
	Guest           Guest         `json:"guest"`
	Rooms           []BookingRoom `json:"rooms"`
	SpecialRequests string        `json:"special_requests,omitempty"`
	PromoCode       string        `json:"promo_code,omitempty"`
}

type BookingUpdate struct {
	Status          *string  `json:"status,omitempty"`
	PaidAmount      *float64 `json:"paid_amount,omitempty"`
	SpecialRequests *string  `json:"special_requests,omitempty"`
}

// BookingQuery filters GET /bookings. Zero values are omitted.
type BookingQuery struct {
	Status string
	Limit  int // server default 50, max 100
	Offset int
}

// Booking statuses accepted by the API.
var bookingStatuses = map[string]bool{
	"pending":     true,
	"confirmed":   true,
	"cancelled":   true,
	"checked_in":  true,
	"checked_out": true,
}

// Payments

type Payment struct {
	ID               string  `json:"id"`
	HotelID          string  `json:"hotel_id,omitempty"`
	BookingID        string  `json:"booking_id"`
	Amount           float64 `json:"amount"`
	Currency         string  `json:"currency"`
	Status           string  `json:"status"`
	PaymentMethod    string  `json:"payment_method,omitempty"`
	GatewayReference string  `json:"gateway_reference,omitempty"`
	BookingNumber    string  `json:"booking_number,omitempty"`
	GuestName        string  `json:"guest_name,omitempty"`
	CreatedAt        string  `json:"created_at,omitempty"`
}

type PaymentCreate struct {
	BookingID        string  `json:"booking_id"`
	Amount           float64 `json:"amount"`
	Currency         string  `json:"currency,omitempty"`
	Status           string  `json:"status,omitempty"`
	PaymentMethod    string  `json:"payment_method,omitempty"`
	GatewayReference string  `json:"gateway_reference,omitempty"`
}

// Dashboard and reports

type DashboardStats struct {
	TodayArrivals    int     `json:"today_arrivals"`
	TodayDepartures  int     `json:"today_departures"`
	CurrentOccupancy float64 `json:"current_occupancy"`
	TodayRevenue     float64 `json:"today_revenue"`
	PendingBookings  int     `json:"pending_bookings"`
	TotalRooms       int     `json:"total_rooms"`
}

type DailyStat struct {
	Date      string  `json:"date"`
	Revenue   float64 `json:"revenue"`
	Occupancy float64 `json:"occupancy"`
	Bookings  int     `json:"bookings"`
}

type ReportSummary struct {
	TotalRevenue  float64 `json:"totalRevenue"`
	TotalBookings int     `json:"totalBookings"`
	OccupancyRate float64 `json:"occupancyRate"`
	NetProfit     float64 `json:"netProfit"`
}

type DashboardReport struct {
	Summary        ReportSummary `json:"summary"`
	RevenueChart   []DailyStat   `json:"revenueChart"`
	OccupancyChart []DailyStat   `json:"occupancyChart"`
}

type DailyOccupancy struct {
	Date           string  `json:"date"`
	OccupiedRooms  int     `json:"occupied_rooms"`
	AvailableRooms int     `json:"available_rooms"`
	OccupancyRate  float64 `json:"occupancy_rate"`
}

type OccupancyReport struct {
	StartDate        string           `json:"start_date"`
	EndDate          string           `json:"end_date"`
	TotalInventory   int              `json:"total_inventory"`
	AverageOccupancy float64          `json:"average_occupancy"`
	DailyOccupancy   []DailyOccupancy `json:"daily_occupancy"`
}

// Hotel

type Address struct {
	Street     string   `json:"street,omitempty"`
	City       string   `json:"city"`
	State      string   `json:"state,omitempty"`
	Country    string   `json:"country"`
	PostalCode string   `json:"postal_code,omitempty"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
}

type ContactInfo struct {
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Website string `json:"website,omitempty"`
}

type HotelSettings struct {
	Currency           string `json:"currency"`
	Timezone           string `json:"timezone"`
	CheckInTime        string `json:"check_in_time"`
	CheckOutTime       string `json:"check_out_time"`
	CancellationPolicy string `json:"cancellation_policy,omitempty"`
	PaymentPolicy      string `json:"payment_policy,omitempty"`
	ChildPolicy        string `json:"child_policy,omitempty"`
}

type Hotel struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Slug         string        `json:"slug"`
	Description  string        `json:"description,omitempty"`
	StarRating   int           `json:"star_rating,omitempty"`
	LogoURL      string        `json:"logo_url,omitempty"`
	PrimaryColor string        `json:"primary_color,omitempty"`
	Address      Address       `json:"address"`
	Contact      ContactInfo   `json:"contact"`
	Settings     HotelSettings `json:"settings"`
	CreatedAt    string        `json:"created_at,omitempty"`
	UpdatedAt    string        `json:"updated_at,omitempty"`
}

type HotelUpdate struct {
	Name         *string        `json:"name,omitempty"`
	Description  *string        `json:"description,omitempty"`
	StarRating   *int           `json:"star_rating,omitempty"`
	LogoURL      *string        `json:"logo_url,omitempty"`
	PrimaryColor *string        `json:"primary_color,omitempty"`
	Address      *Address       `json:"address,omitempty"`
	Contact      *ContactInfo   `json:"contact,omitempty"`
	Settings     *HotelSettings `json:"settings,omitempty"`
}

// Integration

type IntegrationSettings struct {
	HotelID            string `json:"hotel_id,omitempty"`
	WidgetEnabled      bool   `json:"widget_enabled"`
	WidgetTheme        string `json:"widget_theme"`
	WidgetPrimaryColor string `json:"widget_primary_color"`
	WidgetPosition     string `json:"widget_position"`
	AllowedDomains     string `json:"allowed_domains"`
	CORSEnabled        bool   `json:"cors_enabled"`
	WebhookURL         string `json:"webhook_url,omitempty"`
	WebhookEvents      string `json:"webhook_events"`
	WebhookSecret      string `json:"webhook_secret,omitempty"`
	RateLimitPerHour   int    `json:"rate_limit_per_hour"`
	RequireHTTPS       bool   `json:"require_https"`
}

type IntegrationSettingsUpdate struct {
	WidgetEnabled      *bool   `json:"widget_enabled,omitempty"`
	WidgetTheme        *string `json:"widget_theme,omitempty"`
	WidgetPrimaryColor *string `json:"widget_primary_color,omitempty"`
	WidgetPosition     *string `json:"widget_position,omitempty"`
	AllowedDomains     *string `json:"allowed_domains,omitempty"`
	CORSEnabled        *bool   `json:"cors_enabled,omitempty"`
	WebhookURL         *string `json:"webhook_url,omitempty"`
	WebhookEvents      *string `json:"webhook_events,omitempty"`
	RateLimitPerHour   *int    `json:"rate_limit_per_hour,omitempty"`
	RequireHTTPS       *bool   `json:"require_https,omitempty"`
}

type APIKey struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	KeyPrefix    string `json:"key_prefix"`
	Scopes       string `json:"scopes"`
	IsActive     bool   `json:"is_active"`
	CreatedAt    string `json:"created_at,omitempty"`
	ExpiresAt    string `json:"expires_at,omitempty"`
	LastUsedAt   string `json:"last_used_at,omitempty"`
	RequestCount int    `json:"request_count"`
	// SecretKey is only returned once, on creation.
	SecretKey string `json:"secret_key,omitempty"`
}

type APIKeyCreate struct {
	Name          string `json:"name"`
	Scopes        string `json:"scopes,omitempty"`
	ExpiresInDays *int   `json:"expires_in_days,omitempty"`
}

type WidgetCode struct {
	HTMLCode       string `json:"html_code"`
	JavaScriptCode string `json:"javascript_code"`
	CSSCode        string `json:"css_code"`
	Instructions   string `json:"instructions"`
}

type WebhookTest struct {
	Message    string `json:"message"`
	WebhookURL string `json:"webhook_url"`
	Note       string `json:"note"`
}
