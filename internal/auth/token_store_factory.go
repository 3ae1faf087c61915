package auth

import (
	"context"
	"io"
	"log"

	"github.com/go-redis/redis/v8"
	"github.com/vcto/hotel-mcp/internal/config"
)

// NewStoreFromConfig creates the store selected by cfg.Backend. If the
// durable backend cannot be opened it logs the failure and falls back to
// memory, so the server still starts (credentials then last for the process).
// The returned closer is never nil.
func NewStoreFromConfig(ctx context.Context, cfg config.TokenConfig) (Store, io.Closer) {
	switch cfg.Backend {
	case "sqlite":
		store, err := NewSQLiteStore(cfg.Path, cfg.MasterKey)
		if err != nil {
			log.Printf("[AUTH] Failed to create SQLite token store: %v, falling back to in-memory", err)
			break
		}
		log.Printf("[AUTH] Using SQLite token store at %s", cfg.Path)
		return store, store

	case "redis":
		store, err := NewRedisStore(ctx, &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, cfg.KeyPrefix)
		if err != nil {
			log.Printf("[AUTH] Failed to create Redis token store: %v, falling back to in-memory", err)
			break
		}
		log.Printf("[AUTH] Using Redis token store at %s", cfg.RedisAddr)
		return store, store
	}

	log.Println("[AUTH] Using in-memory token store (set TOKEN_DB_PATH or HOTEL_TOKEN_STORE for persistence)")
	return NewMemoryStore(), nopCloser{}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
