package hotel

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gorilla/mux"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vcto/hotel-mcp/internal/api"
	"github.com/vcto/hotel-mcp/internal/auth"
	"github.com/vcto/hotel-mcp/internal/debug"
	"github.com/vcto/hotel-mcp/internal/testutil"
)

func newTestHandler(t *testing.T, fake *testutil.FakeAPI, loggedIn bool) (*Handler, *auth.MemoryStore) {
	t.Helper()
	svc, store := newTestService(t, fake)
	if loggedIn {
		access, refresh := fake.IssuePair()
		require.NoError(t, store.SetPair(context.Background(), auth.Pair{AccessToken: access, RefreshToken: refresh}))
	}
	return NewHandler(svc, nil), store
}

func TestHandler_Login_ReturnsProfile(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	h, store := newTestHandler(t, fake, false)

	result, err := h.handleLogin(context.Background(), testutil.NewCallToolRequest("hotel_login", map[string]any{
		"email":    testutil.FakeEmail,
		"password": testutil.FakePassword,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, testutil.ResultText(t, result))

	text := testutil.ResultText(t, result)
	assert.Contains(t, text, testutil.FakeEmail)
	assert.NotContains(t, text, "access_token", "tokens are never echoed")

	pair, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, pair.Complete())
}

func TestHandler_Login_RequiresCredentials(t *testing.T) {
	h, _ := newTestHandler(t, testutil.NewFakeAPI(t), false)

	result, err := h.handleLogin(context.Background(), testutil.NewCallToolRequest("hotel_login", map[string]any{"email": "x@y.test"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandler_Tools_RequireSession(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	h, _ := newTestHandler(t, fake, false)

	result, err := h.handleRooms(context.Background(), testutil.NewCallToolRequest("hotel_rooms", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, testutil.ResultText(t, result), "hotel_login")
	assert.Empty(t, fake.RequestsTo(http.MethodGet, "/rooms"))
}

func TestHandler_Session_NeverShowsTokens(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	h, store := newTestHandler(t, fake, true)
	pair, err := store.Get(context.Background())
	require.NoError(t, err)

	result, err := h.handleSession(context.Background(), testutil.NewCallToolRequest("hotel_session", nil))
	require.NoError(t, err)
	text := testutil.ResultText(t, result)

	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(text), &info))
	assert.Equal(t, true, info["logged_in"])
	assert.Equal(t, testutil.FakeUserID, info["subject"])
	assert.NotContains(t, text, pair.AccessToken)
	assert.NotContains(t, text, pair.RefreshToken)
}

func TestHandler_SessionExpired_SuggestsLogin(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	fake.HandleAuthed(http.MethodGet, "/rooms", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(w, http.StatusOK, []Room{})
	})
	h, store := newTestHandler(t, fake, true)
	pair, err := store.Get(context.Background())
	require.NoError(t, err)
	fake.ExpireAccess(pair.AccessToken)
	fake.RevokeRefresh(pair.RefreshToken)

	result, err := h.handleRooms(context.Background(), testutil.NewCallToolRequest("hotel_rooms", nil))
	require.NoError(t, err)
	require.True(t, result.IsError)

	text := testutil.ResultText(t, result)
	assert.Contains(t, text, "HTTP 401")
	assert.Contains(t, text, "hotel_login")

	stored, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, stored.Empty())
}

func TestHandler_ErrorResult_CarriesCodeAndField(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	fake.HandleAuthed(http.MethodPost, "/rooms", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]any{{"loc": []any{"body", "base_price"}, "msg": "must be positive", "type": "value_error"}},
		})
	})
	h, _ := newTestHandler(t, fake, true)

	result, err := h.handleRoomCreate(context.Background(), testutil.NewCallToolRequest("hotel_room_create", map[string]any{
		"name":       "Attic",
		"base_price": 10.0,
	}))
	require.NoError(t, err)
	require.True(t, result.IsError)

	text := testutil.ResultText(t, result)
	assert.Contains(t, text, "HTTP 422")
	assert.Contains(t, text, "must be positive")
	assert.Contains(t, text, "field: base_price")
}

func TestHandler_BookingCreate_PricesFromRoom(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	fake.HandleAuthed(http.MethodGet, "/rooms/{id}", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(w, http.StatusOK, Room{ID: mux.Vars(r)["id"], Name: "Deluxe King", BasePrice: 180})
	})
	fake.HandleAuthed(http.MethodPost, "/bookings", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(w, http.StatusCreated, Booking{ID: "b1", BookingNumber: "BK-2001", Status: "pending", TotalAmount: 540})
	})
	h, _ := newTestHandler(t, fake, true)

	result, err := h.handleBookingCreate(context.Background(), testutil.NewCallToolRequest("hotel_booking_create", map[string]any{
		"check_in":     "2025-05-10",
		"check_out":    "2025-05-13",
		"first_name":   "Ada",
		"last_name":    "Lovelace",
		"email":        "ada@example.test",
		"room_type_id": "r1",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, testutil.ResultText(t, result))
	assert.Contains(t, testutil.ResultText(t, result), "BK-2001")

	reqs := fake.RequestsTo(http.MethodPost, "/bookings")
	require.Len(t, reqs, 1)
	var sent BookingCreate
	require.NoError(t, json.Unmarshal(reqs[0].Body, &sent))

	require.Len(t, sent.Rooms, 1)
	assert.Equal(t, "Deluxe King", sent.Rooms[0].RoomTypeName)
	assert.Equal(t, defaultRatePlanName, sent.Rooms[0].RatePlanName)
	assert.Equal(t, 2, sent.Rooms[0].Guests)
	assert.InDelta(t, 540.0, sent.Rooms[0].TotalPrice, 0.001)
	assert.Equal(t, "Ada", sent.Guest.FirstName)
}

func TestHandler_BookingCreate_RejectsBadDates(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	h, _ := newTestHandler(t, fake, true)

	result, err := h.handleBookingCreate(context.Background(), testutil.NewCallToolRequest("hotel_booking_create", map[string]any{
		"check_in":     "2025-05-13",
		"check_out":    "2025-05-10",
		"first_name":   "Ada",
		"last_name":    "Lovelace",
		"email":        "ada@example.test",
		"room_type_id": "r1",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Empty(t, fake.RequestsTo(http.MethodPost, "/bookings"))
}

func TestHandler_Payments_FiltersByBooking(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	fake.HandleAuthed(http.MethodGet, "/payments", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(w, http.StatusOK, []Payment{
			{ID: "p1", BookingID: "b1", Amount: 100},
			{ID: "p2", BookingID: "b2", Amount: 50},
		})
	})
	h, _ := newTestHandler(t, fake, true)

	result, err := h.handlePayments(context.Background(), testutil.NewCallToolRequest("hotel_payments", map[string]any{"booking_id": "b2"}))
	require.NoError(t, err)

	var payments []Payment
	require.NoError(t, json.Unmarshal([]byte(testutil.ResultText(t, result)), &payments))
	require.Len(t, payments, 1)
	assert.Equal(t, "p2", payments[0].ID)
}

func TestHandler_Reports_RejectsUnknownReport(t *testing.T) {
	h, _ := newTestHandler(t, testutil.NewFakeAPI(t), true)

	result, err := h.handleReports(context.Background(), testutil.NewCallToolRequest("hotel_reports", map[string]any{"report": "forecast"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandler_Settings_UpdateNeedsFields(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	h, _ := newTestHandler(t, fake, true)

	result, err := h.handleSettings(context.Background(), testutil.NewCallToolRequest("hotel_settings", map[string]any{"action": "update"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Empty(t, fake.RequestsTo(http.MethodPatch, "/hotels/me"))
}

func TestHandler_DebugRecent(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	fake.HandleAuthed(http.MethodGet, "/dashboard/stats", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(w, http.StatusOK, DashboardStats{TodayArrivals: 3})
	})

	storage, err := debug.NewSQLiteStorage("memory", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	store := auth.NewMemoryStore()
	access, refresh := fake.IssuePair()
	require.NoError(t, store.SetPair(context.Background(), auth.Pair{AccessToken: access, RefreshToken: refresh}))
	client := api.New(fake.URL(), api.WithStore(store), api.WithTransport(debug.Wrap(storage)))
	h := NewHandler(NewService(client), storage)

	_, err = h.svc.DashboardStats(context.Background())
	require.NoError(t, err)

	result, err := h.handleDebugRecent(context.Background(), testutil.NewCallToolRequest("hotel_debug_recent", nil))
	require.NoError(t, err)
	text := testutil.ResultText(t, result)
	assert.Contains(t, text, "/api/v1/dashboard/stats")
	assert.NotContains(t, text, access)
}

func TestHandler_DebugRecent_Disabled(t *testing.T) {
	h, _ := newTestHandler(t, testutil.NewFakeAPI(t), true)

	result, err := h.handleDebugRecent(context.Background(), testutil.NewCallToolRequest("hotel_debug_recent", nil))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, testutil.ResultText(t, result), "disabled")
}

func TestHandler_RoomsResource(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	fake.HandleAuthed(http.MethodGet, "/rooms", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(w, http.StatusOK, []Room{{ID: "r1", Name: "Deluxe King"}})
	})
	h, _ := newTestHandler(t, fake, true)

	contents, err := h.readRooms(context.Background(), testutil.NewReadResourceRequest(RoomsResourceURI))
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, RoomsResourceURI, text.URI)
	assert.Contains(t, text.Text, "Deluxe King")
}

func TestHandler_RegistersWithServer(t *testing.T) {
	h, _ := newTestHandler(t, testutil.NewFakeAPI(t), false)
	s := server.NewMCPServer("hotel-test", "0.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(true, true),
	)

	assert.NotPanics(t, func() {
		h.SetupTools(s)
		h.SetupResources(s)
	})
}

func TestHandler_BookingResourceTemplate(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	fake.HandleAuthed(http.MethodGet, "/bookings/{id}", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(w, http.StatusOK, Booking{ID: mux.Vars(r)["id"], BookingNumber: "BK-3003"})
	})
	h, _ := newTestHandler(t, fake, true)

	contents, err := h.readBooking(context.Background(), testutil.NewReadResourceRequest("hotel://bookings/b3"))
	require.NoError(t, err)
	require.Len(t, contents, 1)
	assert.Contains(t, contents[0].(mcp.TextResourceContents).Text, "BK-3003")

	_, err = h.readBooking(context.Background(), testutil.NewReadResourceRequest("hotel://rooms"))
	assert.Error(t, err)
}

func TestHandler_PublicBookingCreate_PricesFromListing(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	fake.Handle(http.MethodGet, "/public/hotels/{slug}/rooms", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(w, http.StatusOK, []Room{
			{ID: "r1", Name: "Sea View Double", BasePrice: 150},
			{ID: "r2", Name: "Garden Single", BasePrice: 90},
		})
	})
	fake.Handle(http.MethodPost, "/public/bookings", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(w, http.StatusCreated, Booking{ID: "b9", BookingNumber: "BK-9001", Status: "pending"})
	})
	h, _ := newTestHandler(t, fake, false)

	result, err := h.handlePublicBookingCreate(context.Background(), testutil.NewCallToolRequest("hotel_public_booking_create", map[string]any{
		"slug":         "seaview",
		"check_in":     "2025-06-01",
		"check_out":    "2025-06-04",
		"first_name":   "Grace",
		"last_name":    "Hopper",
		"email":        "grace@example.test",
		"room_type_id": "r2",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, testutil.ResultText(t, result))
	assert.Contains(t, testutil.ResultText(t, result), "BK-9001")

	reqs := fake.RequestsTo(http.MethodPost, "/public/bookings")
	require.Len(t, reqs, 1)
	assert.Empty(t, reqs[0].Authorization)

	var sent BookingCreate
	require.NoError(t, json.Unmarshal(reqs[0].Body, &sent))
	require.Len(t, sent.Rooms, 1)
	assert.Equal(t, "Garden Single", sent.Rooms[0].RoomTypeName)
	assert.InDelta(t, 270.0, sent.Rooms[0].TotalPrice, 0.001)
	assert.Equal(t, defaultRatePlanName, sent.Rooms[0].RatePlanName)
}

func TestHandler_PublicBookingCreate_RejectsUnlistedRoom(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	fake.Handle(http.MethodGet, "/public/hotels/{slug}/rooms", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(w, http.StatusOK, []Room{{ID: "r1", Name: "Sea View Double", BasePrice: 150}})
	})
	h, _ := newTestHandler(t, fake, false)

	result, err := h.handlePublicBookingCreate(context.Background(), testutil.NewCallToolRequest("hotel_public_booking_create", map[string]any{
		"slug":         "seaview",
		"check_in":     "2025-06-01",
		"check_out":    "2025-06-04",
		"first_name":   "Grace",
		"last_name":    "Hopper",
		"email":        "grace@example.test",
		"room_type_id": "r7",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, testutil.ResultText(t, result), "not available")
	assert.Empty(t, fake.RequestsTo(http.MethodPost, "/public/bookings"))
}

func TestHandler_PublicHotel_NeedsNoSession(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	fake.Handle(http.MethodGet, "/public/hotels/{slug}", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(w, http.StatusOK, Hotel{ID: "h1", Name: "Sea View Inn", Slug: mux.Vars(r)["slug"]})
	})
	h, _ := newTestHandler(t, fake, false)

	result, err := h.handlePublicHotel(context.Background(), testutil.NewCallToolRequest("hotel_public_hotel", map[string]any{"slug": "seaview"}))
	require.NoError(t, err)
	require.False(t, result.IsError, testutil.ResultText(t, result))
	assert.Contains(t, testutil.ResultText(t, result), "Sea View Inn")
}
