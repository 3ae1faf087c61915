package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Fallback messages used when the error body does not carry a usable detail.
const (
	msgUnparseable = "An error occurred"
	msgNoDetail    = "Request failed"
)

// ErrSessionExpired is joined into the error returned for a 401 whose
// refresh attempt failed. The stored credentials are gone at that point and
// the user has to log in again.
var ErrSessionExpired = errors.New("session expired")

// APIError is a non-2xx response from the hotel API.
type APIError struct {
	Status int    `json:"-"`
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
	Field  string `json:"field,omitempty"`
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "hotel API error %d: %s", e.Status, e.Detail)
	if e.Code != "" {
		fmt.Fprintf(&b, " (code=%s)", e.Code)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " (field=%s)", e.Field)
	}
	return b.String()
}

// IsUnauthorized reports whether the API rejected the access token.
func (e *APIError) IsUnauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

// IsStatus reports whether err carries an *APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// parseAPIError builds an APIError from a failed response body.
//
// FastAPI sends detail as a string for handled errors and as a list of
// {loc, msg, type} objects for request validation failures; both are
// flattened to a message.
func parseAPIError(status int, body []byte) *APIError {
	var raw struct {
		Detail json.RawMessage `json:"detail"`
		Code   string          `json:"code"`
		Field  string          `json:"field"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return &APIError{Status: status, Detail: msgUnparseable}
	}

	apiErr := &APIError{Status: status, Code: raw.Code, Field: raw.Field}
	apiErr.Detail = detailMessage(raw.Detail, apiErr)
	if apiErr.Detail == "" {
		apiErr.Detail = msgNoDetail
	}
	return apiErr
}

func detailMessage(raw json.RawMessage, apiErr *APIError) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var items []struct {
		Loc []any  `json:"loc"`
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		// First offending field, when the caller didn't get one explicitly.
		if apiErr.Field == "" && len(items) > 0 && len(items[0].Loc) > 0 {
			if name, ok := items[0].Loc[len(items[0].Loc)-1].(string); ok {
				apiErr.Field = name
			}
		}
		return strings.Join(msgs, "; ")
	}

	return ""
}
