package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Credentials accepted by the fake /auth/login.
const (
	FakeEmail    = "manager@seaview.test"
	FakePassword = "correct-horse"
	FakeUserID   = "6f1c2a9e-0000-4000-8000-000000000001"
	FakeHotelID  = "6f1c2a9e-0000-4000-8000-0000000000aa"
)

var fakeSigningKey = []byte("fake-hotel-api")

// RecordedRequest is what the fake API saw for one call.
type RecordedRequest struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	ContentType   string
	RequestID     string
	Body          []byte
}

// FakeAPI is an in-process stand-in for the hotel REST API, mounted under
// /api/v1. Auth routes are built in; tests add the rest with Handle and
// HandleAuthed.
type FakeAPI struct {
	Server *httptest.Server
	router *mux.Router
	api    *mux.Router

	mu        sync.Mutex
	requests  []RecordedRequest
	access    map[string]bool
	refresh   map[string]bool
	overrides map[string]http.HandlerFunc
	builtins  map[string]bool

	refreshCalls atomic.Int32

	// RefreshGate, when set, holds every /auth/refresh until it is closed.
	RefreshGate chan struct{}
}

// NewFakeAPI starts the fake and closes it when the test ends.
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()

	f := &FakeAPI{
		router:    mux.NewRouter(),
		access:    make(map[string]bool),
		refresh:   make(map[string]bool),
		overrides: make(map[string]http.HandlerFunc),
		builtins:  make(map[string]bool),
	}
	f.api = f.router.PathPrefix("/api/v1").Subrouter()
	f.api.Use(f.record)

	f.builtin(http.MethodPost, "/auth/login", f.handleLogin)
	f.builtin(http.MethodPost, "/auth/signup", f.handleSignup)
	f.builtin(http.MethodPost, "/auth/refresh", f.handleRefresh)
	f.builtin(http.MethodPost, "/auth/logout", f.requireAuth(f.handleLogout))
	f.builtin(http.MethodGet, "/users/me", f.requireAuth(f.handleMe))
	f.builtin(http.MethodPost, "/auth/forgot-password", f.handleMessage("If the email exists, a reset link has been sent"))
	f.builtin(http.MethodPost, "/auth/reset-password", f.handleMessage("Password has been reset"))
	f.builtin(http.MethodPost, "/auth/change-password", f.requireAuth(f.handleMessage("Password changed")))

	f.Server = httptest.NewServer(f.router)
	t.Cleanup(f.Server.Close)
	return f
}

// URL is the API root, the value a client is configured with.
func (f *FakeAPI) URL() string {
	return f.Server.URL + "/api/v1"
}

// Handle registers h for method and path (relative to /api/v1, mux
// patterns allowed). Registering a built-in route replaces it.
func (f *FakeAPI) Handle(method, path string, h http.HandlerFunc) {
	key := method + " " + path
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.builtins[key] {
		f.overrides[key] = h
		return
	}
	f.api.HandleFunc(path, h).Methods(method)
}

// HandleAuthed is Handle behind the fake's bearer check.
func (f *FakeAPI) HandleAuthed(method, path string, h http.HandlerFunc) {
	f.Handle(method, path, f.requireAuth(h))
}

// IssuePair mints a valid access/refresh pair, as a login would.
func (f *FakeAPI) IssuePair() (accessToken, refreshToken string) {
	accessToken = f.sign("access", 30*time.Minute)
	refreshToken = f.sign("refresh", 7*24*time.Hour)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.access[accessToken] = true
	f.refresh[refreshToken] = true
	return accessToken, refreshToken
}

// ExpireAccess makes the API reject accessToken from now on.
func (f *FakeAPI) ExpireAccess(accessToken string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.access, accessToken)
}

// RevokeRefresh makes the API reject refreshToken from now on.
func (f *FakeAPI) RevokeRefresh(refreshToken string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.refresh, refreshToken)
}

// RefreshCalls counts hits on /auth/refresh.
func (f *FakeAPI) RefreshCalls() int {
	return int(f.refreshCalls.Load())
}

// Requests returns a copy of everything recorded so far.
func (f *FakeAPI) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RecordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

// RequestsTo returns the recorded requests for one method and path.
func (f *FakeAPI) RequestsTo(method, path string) []RecordedRequest {
	var out []RecordedRequest
	for _, r := range f.Requests() {
		if r.Method == method && r.Path == "/api/v1"+path {
			out = append(out, r)
		}
	}
	return out
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteDetail writes a FastAPI-style error body.
func WriteDetail(w http.ResponseWriter, status int, detail string) {
	WriteJSON(w, status, map[string]string{"detail": detail})
}

// FakeUser is the profile returned for the fake's only account.
func FakeUser() map[string]any {
	return map[string]any{
		"id":         FakeUserID,
		"email":      FakeEmail,
		"name":       "Front Desk Manager",
		"role":       "OWNER",
		"hotel_id":   FakeHotelID,
		"created_at": "2024-01-01T00:00:00Z",
		"updated_at": "2024-01-01T00:00:00Z",
	}
}

func (f *FakeAPI) builtin(method, path string, h http.HandlerFunc) {
	key := method + " " + path
	f.builtins[key] = true
	f.api.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		override := f.overrides[key]
		f.mu.Unlock()
		if override != nil {
			override(w, r)
			return
		}
		h(w, r)
	}).Methods(method)
}

func (f *FakeAPI) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		f.mu.Lock()
		f.requests = append(f.requests, RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			ContentType:   r.Header.Get("Content-Type"),
			RequestID:     r.Header.Get("X-Request-ID"),
			Body:          body,
		})
		f.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (f *FakeAPI) requireAuth(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const prefix = "Bearer "
		header := r.Header.Get("Authorization")
		if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
			WriteDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		f.mu.Lock()
		ok := f.access[header[len(prefix):]]
		f.mu.Unlock()
		if !ok {
			WriteDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		h(w, r)
	}
}

func (f *FakeAPI) sign(kind string, ttl time.Duration) string {
	now := time.Now()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  FakeUserID,
		"type": kind,
		"jti":  uuid.NewString(),
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}).SignedString(fakeSigningKey)
	if err != nil {
		panic(fmt.Sprintf("signing fake token: %v", err))
	}
	return token
}

func (f *FakeAPI) tokenBody() map[string]any {
	access, refresh := f.IssuePair()
	return map[string]any{
		"access_token":  access,
		"refresh_token": refresh,
		"token_type":    "bearer",
		"expires_in":    1800,
	}
}

func (f *FakeAPI) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	if req.Email != FakeEmail || req.Password != FakePassword {
		WriteDetail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}
	WriteJSON(w, http.StatusOK, f.tokenBody())
}

func (f *FakeAPI) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		Name      string `json:"name"`
		HotelName string `json:"hotel_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		WriteJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"detail": "Email is required", "code": "validation_error", "field": "email",
		})
		return
	}
	if req.Email == FakeEmail {
		WriteJSON(w, http.StatusBadRequest, map[string]string{
			"detail": "Email already registered", "code": "email_taken", "field": "email",
		})
		return
	}

	user := FakeUser()
	user["email"] = req.Email
	user["name"] = req.Name
	WriteJSON(w, http.StatusCreated, map[string]any{"user": user, "tokens": f.tokenBody()})
}

func (f *FakeAPI) handleRefresh(w http.ResponseWriter, r *http.Request) {
	f.refreshCalls.Add(1)
	if gate := f.RefreshGate; gate != nil {
		<-gate
	}

	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		WriteDetail(w, http.StatusUnprocessableEntity, "refresh_token is required")
		return
	}

	f.mu.Lock()
	ok := f.refresh[req.RefreshToken]
	delete(f.refresh, req.RefreshToken) // rotation: each refresh token works once
	f.mu.Unlock()
	if !ok {
		WriteDetail(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	WriteJSON(w, http.StatusOK, f.tokenBody())
}

func (f *FakeAPI) handleLogout(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"message": "Successfully logged out"})
}

func (f *FakeAPI) handleMe(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, FakeUser())
}

func (f *FakeAPI) handleMessage(msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"message": msg})
	}
}
