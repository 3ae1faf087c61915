package hotel

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/vcto/hotel-mcp/internal/api"
)

const dateLayout = "2006-01-02"

// Rooms

func (s *Service) ListRooms(ctx context.Context) ([]Room, error) {
	return api.GetJSON[[]Room](ctx, s.client, "/rooms", nil)
}

func (s *Service) GetRoom(ctx context.Context, id string) (*Room, error) {
	return api.GetJSON[*Room](ctx, s.client, "/rooms/"+url.PathEscape(id), nil)
}

func (s *Service) CreateRoom(ctx context.Context, in RoomCreate) (*Room, error) {
	if in.Photos == nil {
		in.Photos = []RoomPhoto{}
	}
	if in.Amenities == nil {
		in.Amenities = []Amenity{}
	}
	return api.PostJSON[*Room](ctx, s.client, "/rooms", in)
}

func (s *Service) UpdateRoom(ctx context.Context, id string, in RoomUpdate) (*Room, error) {
	return api.PatchJSON[*Room](ctx, s.client, "/rooms/"+url.PathEscape(id), in)
}

// DeleteRoom removes a room type. The API answers 204.
func (s *Service) DeleteRoom(ctx context.Context, id string) error {
	return s.client.Delete(ctx, "/rooms/"+url.PathEscape(id), nil)
}

// Rates

func (s *Service) ListRatePlans(ctx context.Context) ([]RatePlan, error) {
	return api.GetJSON[[]RatePlan](ctx, s.client, "/rates/plans", nil)
}

func (s *Service) CreateRatePlan(ctx context.Context, in RatePlanCreate) (*RatePlan, error) {
	if in.MealPlan == "" {
		in.MealPlan = "RO"
	}
	return api.PostJSON[*RatePlan](ctx, s.client, "/rates/plans", in)
}

func (s *Service) DeleteRatePlan(ctx context.Context, id string) error {
	return s.client.Delete(ctx, "/rates/plans/"+url.PathEscape(id), nil)
}

// Availability

// Availability returns per-room daily inventory for [start, end].
func (s *Service) Availability(ctx context.Context, start, end time.Time) ([]RoomAvailability, error) {
	q, err := dateRange(start, end)
	if err != nil {
		return nil, err
	}
	return api.GetJSON[[]RoomAvailability](ctx, s.client, "/availability", q)
}

// Bookings

func (s *Service) ListBookings(ctx context.Context, bq BookingQuery) ([]Booking, error) {
	q := url.Values{}
	if bq.Status != "" {
		if !bookingStatuses[bq.Status] {
			return nil, fmt.Errorf("unknown booking status %q", bq.Status)
		}
		q.Set("status", bq.Status)
	}
	if bq.Limit > 0 {
		q.Set("limit", strconv.Itoa(min(bq.Limit, 100)))
	}
	if bq.Offset > 0 {
		q.Set("offset", strconv.Itoa(bq.Offset))
	}
	return api.GetJSON[[]Booking](ctx, s.client, "/bookings", q)
}

func (s *Service) GetBooking(ctx context.Context, id string) (*Booking, error) {
	return api.GetJSON[*Booking](ctx, s.client, "/bookings/"+url.PathEscape(id), nil)
}

func (s *Service) CreateBooking(ctx context.Context, in BookingCreate) (*Booking, error) {
	return api.PostJSON[*Booking](ctx, s.client, "/bookings", in)
}

func (s *Service) UpdateBooking(ctx context.Context, id string, in BookingUpdate) (*Booking, error) {
	if in.Status != nil && !bookingStatuses[*in.Status] {
		return nil, fmt.Errorf("unknown booking status %q", *in.Status)
	}
	return api.PatchJSON[*Booking](ctx, s.client, "/bookings/"+url.PathEscape(id), in)
}

func (s *Service) ListGuests(ctx context.Context) ([]Guest, error) {
	return api.GetJSON[[]Guest](ctx, s.client, "/bookings/guests", nil)
}

// Payments

func (s *Service) ListPayments(ctx context.Context) ([]Payment, error) {
	return api.GetJSON[[]Payment](ctx, s.client, "/payments", nil)
}

func (s *Service) CreatePayment(ctx context.Context, in PaymentCreate) (*Payment, error) {
	return api.PostJSON[*Payment](ctx, s.client, "/payments", in)
}

// Dashboard and reports

func (s *Service) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	return api.GetJSON[*DashboardStats](ctx, s.client, "/dashboard/stats", nil)
}

func (s *Service) RecentBookings(ctx context.Context) ([]Booking, error) {
	return api.GetJSON[[]Booking](ctx, s.client, "/dashboard/recent-bookings", nil)
}

// DashboardReport covers the last days days; zero uses the API default (30).
func (s *Service) DashboardReport(ctx context.Context, days int) (*DashboardReport, error) {
	var q url.Values
	if days > 0 {
		q = url.Values{"days": {strconv.Itoa(days)}}
	}
	return api.GetJSON[*DashboardReport](ctx, s.client, "/reports/dashboard", q)
}

func (s *Service) OccupancyReport(ctx context.Context, start, end time.Time) (*OccupancyReport, error) {
	q, err := dateRange(start, end)
	if err != nil {
		return nil, err
	}
	return api.GetJSON[*OccupancyReport](ctx, s.client, "/reports/occupancy", q)
}

// Hotel

func (s *Service) MyHotel(ctx context.Context) (*Hotel, error) {
	return api.GetJSON[*Hotel](ctx, s.client, "/hotels/me", nil)
}

func (s *Service) UpdateMyHotel(ctx context.Context, in HotelUpdate) (*Hotel, error) {
	return api.PatchJSON[*Hotel](ctx, s.client, "/hotels/me", in)
}

// Integration

func (s *Service) IntegrationSettings(ctx context.Context) (*IntegrationSettings, error) {
	return api.GetJSON[*IntegrationSettings](ctx, s.client, "/integration/settings", nil)
}

func (s *Service) UpdateIntegrationSettings(ctx context.Context, in IntegrationSettingsUpdate) (*IntegrationSettings, error) {
	return api.PutJSON[*IntegrationSettings](ctx, s.client, "/integration/settings", in)
}

func (s *Service) ListAPIKeys(ctx context.Context) ([]APIKey, error) {
	return api.GetJSON[[]APIKey](ctx, s.client, "/integration/api-keys", nil)
}

// CreateAPIKey returns the key with its secret, which the API shows only once.
func (s *Service) CreateAPIKey(ctx context.Context, in APIKeyCreate) (*APIKey, error) {
	return api.PostJSON[*APIKey](ctx, s.client, "/integration/api-keys", in)
}

func (s *Service) DeleteAPIKey(ctx context.Context, id string) (*Message, error) {
	var msg Message
	if err := s.client.Delete(ctx, "/integration/api-keys/"+url.PathEscape(id), &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *Service) ToggleAPIKey(ctx context.Context, id string) (*APIKey, error) {
	return api.PutJSON[*APIKey](ctx, s.client, "/integration/api-keys/"+url.PathEscape(id)+"/toggle", nil)
}

func (s *Service) WidgetCode(ctx context.Context) (*WidgetCode, error) {
	return api.GetJSON[*WidgetCode](ctx, s.client, "/integration/widget-code", nil)
}

func (s *Service) TestWebhook(ctx context.Context) (*WebhookTest, error) {
	return api.GetJSON[*WebhookTest](ctx, s.client, "/integration/webhook-test", nil)
}

// Public booking flow. These endpoints need no credentials.

func (s *Service) PublicHotel(ctx context.Context, slug string) (*Hotel, error) {
	return api.GetJSON[*Hotel](ctx, s.client, "/public/hotels/"+url.PathEscape(slug), nil)
}

// PublicRooms lists the room types with capacity for guests over the stay.
func (s *Service) PublicRooms(ctx context.Context, slug string, checkIn, checkOut time.Time, guests int) ([]Room, error) {
	q, err := stayRange(checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	if guests <= 0 {
		guests = 2
	}
	q.Set("guests", strconv.Itoa(guests))
	return api.GetJSON[[]Room](ctx, s.client, "/public/hotels/"+url.PathEscape(slug)+"/rooms", q)
}

func (s *Service) CreatePublicBooking(ctx context.Context, in BookingCreate) (*Booking, error) {
	return api.PostJSON[*Booking](ctx, s.client, "/public/bookings", in)
}

func dateRange(start, end time.Time) (url.Values, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("end date %s is before start date %s", end.Format(dateLayout), start.Format(dateLayout))
	}
	return url.Values{
		"start_date": {start.Format(dateLayout)},
		"end_date":   {end.Format(dateLayout)},
	}, nil
}

func stayRange(checkIn, checkOut time.Time) (url.Values, error) {
	if !checkOut.After(checkIn) {
		return nil, fmt.Errorf("check-out %s must be after check-in %s", checkOut.Format(dateLayout), checkIn.Format(dateLayout))
	}
	return url.Values{
		"check_in":  {checkIn.Format(dateLayout)},
		"check_out": {checkOut.Format(dateLayout)},
	}, nil
}
