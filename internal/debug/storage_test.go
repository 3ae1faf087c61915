package debug

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vcto/hotel-mcp/internal/config"
)

func newMemoryStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage("memory", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStorage_ReturnsNewestFirst_When_ListingRecent(t *testing.T) {
	s := newMemoryStorage(t)
	ctx := context.Background()

	for _, path := range []string{"/api/v1/rooms", "/api/v1/bookings", "/api/v1/users/me"} {
		require.NoError(t, s.LogExchange(ctx, ExchangeRecord{SessionID: "s1", Method: "GET", Path: path, Status: 200}))
	}

	recent, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "/api/v1/users/me", recent[0].Path)
	assert.Equal(t, "/api/v1/bookings", recent[1].Path)
}

func TestSQLiteStorage_SummarisesFailures_When_StatsRequested(t *testing.T) {
	s := newMemoryStorage(t)
	ctx := context.Background()

	require.NoError(t, s.LogExchange(ctx, ExchangeRecord{SessionID: "a", Method: "GET", Path: "/bookings", Status: 200, DurationMS: 10}))
	require.NoError(t, s.LogExchange(ctx, ExchangeRecord{SessionID: "a", Method: "GET", Path: "/bookings", Status: 401, DurationMS: 20}))
	require.NoError(t, s.LogExchange(ctx, ExchangeRecord{SessionID: "b", Method: "POST", Path: "/auth/refresh", Error: "connection refused"}))

	st, err := s.Stats(ctx)
	require.NoError(t, err)

	assert.True(t, st.Enabled)
	assert.Equal(t, int64(3), st.TotalCalls)
	assert.Equal(t, int64(2), st.TotalSessions)
	assert.Equal(t, int64(1), st.Unauthorized)
	assert.Equal(t, int64(2), st.Failures)
	assert.Equal(t, int64(2), st.ByPath["/bookings"])
	assert.InDelta(t, 10.0, st.AvgDurationMS, 0.01)
}

func TestSQLiteStorage_DropsOldRecords_When_CleanedUp(t *testing.T) {
	s := newMemoryStorage(t)
	ctx := context.Background()

	require.NoError(t, s.LogExchange(ctx, ExchangeRecord{SessionID: "s", Method: "GET", Path: "/old", Timestamp: time.Now().Add(-48 * time.Hour)}))
	require.NoError(t, s.LogExchange(ctx, ExchangeRecord{SessionID: "s", Method: "GET", Path: "/new"}))

	require.NoError(t, s.CleanupOldRecords(ctx, 24*time.Hour))

	records, err := s.Session(ctx, "s")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "/new", records[0].Path)
}

func TestSQLiteStorage_PersistsToFile_When_FileStorageUsed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "debug.db")
	ctx := context.Background()

	s, err := NewSQLiteStorage("file", path)
	require.NoError(t, err)
	require.NoError(t, s.LogExchange(ctx, ExchangeRecord{SessionID: "s", Method: "GET", Path: "/rooms", Status: 200}))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStorage("file", path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	records, err := reopened.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestNewSQLiteStorage_RejectsUnknownType(t *testing.T) {
	_, err := NewSQLiteStorage("s3", "")
	assert.Error(t, err)
}

func TestStart_ReturnsNoOp_When_Disabled(t *testing.T) {
	storage, err := Start(context.Background(), config.DebugConfig{Enabled: false})
	require.NoError(t, err)

	assert.False(t, storage.IsEnabled())
	st, err := storage.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "disabled", st.StorageType)
}

func TestRecordingTransport_RecordsMetadataOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := newMemoryStorage(t)
	rt := NewRecordingTransport(nil, s)
	hc := &http.Client{Transport: rt}

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/bookings?status=pending", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer secret-token")
	req.Header.Set("X-Request-ID", "req-123")

	resp, err := hc.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	records, err := s.Session(context.Background(), rt.SessionID())
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "GET", rec.Method)
	assert.Equal(t, "/api/v1/bookings", rec.Path, "query strings are not recorded")
	assert.Equal(t, http.StatusUnauthorized, rec.Status)
	assert.Equal(t, "req-123", rec.RequestID)
	assert.NotContains(t, rec.Error, "secret-token")
}

func TestRecordingTransport_RecordsTransportErrors(t *testing.T) {
	s := newMemoryStorage(t)
	rt := NewRecordingTransport(nil, s)
	hc := &http.Client{Transport: rt, Timeout: 2 * time.Second}

	_, err := hc.Get("http://127.0.0.1:1/api/v1/rooms")
	require.Error(t, err)

	records, err := s.Session(context.Background(), rt.SessionID())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Zero(t, records[0].Status)
	assert.NotEmpty(t, records[0].Error)
}

func TestWrap_LeavesTransportAlone_When_StorageDisabled(t *testing.T) {
	base := http.DefaultTransport

	assert.Same(t, base, Wrap(NoOpStorage{})(base))
	assert.IsType(t, &RecordingTransport{}, Wrap(newMemoryStorage(t))(base))
}
