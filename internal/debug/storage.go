// Package debug keeps an opt-in log of hotel API exchanges for diagnosing
// sessions. Only metadata is recorded: never headers or bodies, so tokens
// and guest data stay out of the log.
package debug

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vcto/hotel-mcp/internal/config"
)

// ExchangeRecord is one outbound API call.
type ExchangeRecord struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"session_id"`
	RequestID  string    `json:"request_id"`
	Timestamp  time.Time `json:"timestamp"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Status     int       `json:"status"` // 0 when the call never got a response
	DurationMS int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
}

// Stats summarises the log.
type Stats struct {
	Enabled       bool             `json:"debug_enabled"`
	StorageType   string           `json:"storage_type"`
	TotalCalls    int64            `json:"total_calls"`
	TotalSessions int64            `json:"total_sessions"`
	Unauthorized  int64            `json:"unauthorized"`
	Failures      int64            `json:"failures"`
	AvgDurationMS float64          `json:"avg_duration_ms"`
	ByPath        map[string]int64 `json:"by_path,omitempty"`
}

// Storage records exchanges.
type Storage interface {
	LogExchange(ctx context.Context, rec ExchangeRecord) error
	Recent(ctx context.Context, limit int) ([]ExchangeRecord, error)
	Session(ctx context.Context, sessionID string) ([]ExchangeRecord, error)
	Stats(ctx context.Context) (Stats, error)
	CleanupOldRecords(ctx context.Context, maxAge time.Duration) error
	Close() error
	IsEnabled() bool
}

// NoOpStorage is used when the log is disabled.
type NoOpStorage struct{}

func (NoOpStorage) LogExchange(context.Context, ExchangeRecord) error { return nil }

func (NoOpStorage) Recent(context.Context, int) ([]ExchangeRecord, error) { return nil, nil }

func (NoOpStorage) Session(context.Context, string) ([]ExchangeRecord, error) { return nil, nil }

func (NoOpStorage) Stats(context.Context) (Stats, error) {
	return Stats{Enabled: false, StorageType: "disabled"}, nil
}

func (NoOpStorage) CleanupOldRecords(context.Context, time.Duration) error { return nil }

func (NoOpStorage) Close() error { return nil }

func (NoOpStorage) IsEnabled() bool { return false }

// SQLiteStorage keeps the log in SQLite, in memory or on disk.
type SQLiteStorage struct {
	db          *sql.DB
	storageType string
}

// NewSQLiteStorage opens the log for storageType "memory" or "file".
func NewSQLiteStorage(storageType, path string) (*SQLiteStorage, error) {
	var dsn string
	switch storageType {
	case "memory":
		dsn = ":memory:"
	case "file":
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000"
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if storageType == "memory" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	s := &SQLiteStorage{db: db, storageType: storageType}
	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

func (s *SQLiteStorage) createTables() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS api_exchanges (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		request_id TEXT NOT NULL DEFAULT '',
		timestamp DATETIME NOT NULL,
		method TEXT NOT NULL,
		path TEXT NOT NULL,
		status INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_api_exchanges_session ON api_exchanges(session_id);
	CREATE INDEX IF NOT EXISTS idx_api_exchanges_timestamp ON api_exchanges(timestamp);
	CREATE INDEX IF NOT EXISTS idx_api_exchanges_path ON api_exchanges(path);`)
	return err
}

func (s *SQLiteStorage) LogExchange(ctx context.Context, rec ExchangeRecord) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO api_exchanges (session_id, request_id, timestamp, method, path, status, duration_ms, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID, rec.RequestID, rec.Timestamp.UTC(), rec.Method, rec.Path, rec.Status, rec.DurationMS, rec.Error)
	return err
}

func (s *SQLiteStorage) Recent(ctx context.Context, limit int) ([]ExchangeRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.query(ctx, `
	SELECT id, session_id, request_id, timestamp, method, path, status, duration_ms, error
	FROM api_exchanges ORDER BY id DESC LIMIT ?`, limit)
}

func (s *SQLiteStorage) Session(ctx context.Context, sessionID string) ([]ExchangeRecord, error) {
	return s.query(ctx, `
	SELECT id, session_id, request_id, timestamp, method, path, status, duration_ms, error
	FROM api_exchanges WHERE session_id = ? ORDER BY id ASC`, sessionID)
}

func (s *SQLiteStorage) query(ctx context.Context, q string, args ...any) ([]ExchangeRecord, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("[DEBUG] Failed to close rows: %v", err)
		}
	}()

	var records []ExchangeRecord
	for rows.Next() {
		var r ExchangeRecord
		if err := rows.Scan(&r.ID, &r.SessionID, &r.RequestID, &r.Timestamp,
			&r.Method, &r.Path, &r.Status, &r.DurationMS, &r.Error); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *SQLiteStorage) Stats(ctx context.Context) (Stats, error) {
	st := Stats{Enabled: true, StorageType: s.storageType, ByPath: make(map[string]int64)}

	err := s.db.QueryRowContext(ctx, `
	SELECT COUNT(*),
		COUNT(DISTINCT session_id),
		COALESCE(SUM(CASE WHEN status = 401 THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = 0 OR status >= 400 THEN 1 ELSE 0 END), 0),
		COALESCE(AVG(duration_ms), 0)
	FROM api_exchanges`).Scan(&st.TotalCalls, &st.TotalSessions, &st.Unauthorized, &st.Failures, &st.AvgDurationMS)
	if err != nil {
		return Stats{}, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT path, COUNT(*) FROM api_exchanges GROUP BY path ORDER BY COUNT(*) DESC LIMIT 20`)
	if err != nil {
		return Stats{}, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("[DEBUG] Failed to close rows: %v", err)
		}
	}()
	for rows.Next() {
		var path string
		var n int64
		if err := rows.Scan(&path, &n); err != nil {
			return Stats{}, err
		}
		st.ByPath[path] = n
	}
	return st, rows.Err()
}

func (s *SQLiteStorage) CleanupOldRecords(ctx context.Context, maxAge time.Duration) error {
	cutoff := time.Now().Add(-maxAge).UTC()
	result, err := s.db.ExecContext(ctx, `DELETE FROM api_exchanges WHERE timestamp < ?`, cutoff)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n > 0 {
		log.Printf("[DEBUG] Cleaned up %d old exchange records", n)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) IsEnabled() bool { return true }

// Start opens the storage selected by cfg and, when a retention is set,
// prunes old records hourly until ctx is done.
func Start(ctx context.Context, cfg config.DebugConfig) (Storage, error) {
	if !cfg.Enabled || cfg.StorageType == "disabled" {
		return NoOpStorage{}, nil
	}

	storage, err := NewSQLiteStorage(cfg.StorageType, cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize debug storage: %w", err)
	}
	log.Printf("[DEBUG] API exchange log enabled (storage: %s)", cfg.StorageType)

	if cfg.RetentionH > 0 {
		maxAge := time.Duration(cfg.RetentionH) * time.Hour
		go func() {
			ticker := time.NewTicker(time.Hour)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := storage.CleanupOldRecords(ctx, maxAge); err != nil {
						log.Printf("[DEBUG] Cleanup error: %v", err)
					}
				}
			}
		}()
	}
	return storage, nil
}
