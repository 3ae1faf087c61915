package debug

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RecordingTransport logs every round trip it carries to Storage.
type RecordingTransport struct {
	next      http.RoundTripper
	storage   Storage
	sessionID string
}

// NewRecordingTransport wraps next. A nil next means http.DefaultTransport.
func NewRecordingTransport(next http.RoundTripper, storage Storage) *RecordingTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &RecordingTransport{
		next:      next,
		storage:   storage,
		sessionID: generateSessionID(),
	}
}

// Wrap adapts the transport for api.WithTransport.
func Wrap(storage Storage) func(http.RoundTripper) http.RoundTripper {
	return func(next http.RoundTripper) http.RoundTripper {
		if storage == nil || !storage.IsEnabled() {
			return next
		}
		return NewRecordingTransport(next, storage)
	}
}

func generateSessionID() string {
	return fmt.Sprintf("session_%d_%s", time.Now().Unix(), uuid.NewString()[:8])
}

// SessionID identifies this process's records.
func (rt *RecordingTransport) SessionID() string {
	return rt.sessionID
}

func (rt *RecordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := rt.next.RoundTrip(req)

	rec := ExchangeRecord{
		SessionID:  rt.sessionID,
		RequestID:  req.Header.Get("X-Request-ID"),
		Timestamp:  start,
		Method:     req.Method,
		Path:       req.URL.Path,
		DurationMS: time.Since(start).Milliseconds(),
	}
	if err != nil {
		rec.Error = err.Error()
	} else {
		rec.Status = resp.StatusCode
	}

	// The request context may already be cancelled; the record should land anyway.
	if logErr := rt.storage.LogExchange(context.WithoutCancel(req.Context()), rec); logErr != nil {
		log.Printf("[DEBUG] Failed to log exchange: %v", logErr)
	}
	return resp, err
}
