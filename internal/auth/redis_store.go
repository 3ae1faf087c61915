package auth

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore shares one credential pair between several server instances.
// Both keys are written and deleted inside MULTI/EXEC.
type RedisStore struct {
	client     *redis.Client
	accessKey  string
	refreshKey string
}

// NewRedisStore connects to addr and verifies the connection with PING.
// Keys are named <prefix>_access_token and <prefix>_refresh_token.
func NewRedisStore(ctx context.Context, opts *redis.Options, prefix string) (*RedisStore, error) {
	if opts == nil {
		return nil, fmt.Errorf("redis options are required")
	}
	if prefix == "" {
		prefix = "hotel"
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	log.Printf("[AUTH] Connected to Redis at %s (DB: %d)", opts.Addr, opts.DB)

	return &RedisStore{
		client:     client,
		accessKey:  prefix + "_" + AccessTokenKey,
		refreshKey: prefix + "_" + RefreshTokenKey,
	}, nil
}

func (s *RedisStore) Get(ctx context.Context) (Pair, error) {
	vals, err := s.client.MGet(ctx, s.accessKey, s.refreshKey).Result()
	if err != nil {
		return Pair{}, fmt.Errorf("failed to read credentials: %w", err)
	}

	access, _ := vals[0].(string)
	refresh, _ := vals[1].(string)
	if access == "" || refresh == "" {
		// A half-written pair can only come from outside this store; treat it
		// as no credentials rather than hand out a lone token.
		return Pair{}, nil
	}
	return Pair{AccessToken: access, RefreshToken: refresh, TokenType: "Bearer"}, nil
}

func (s *RedisStore) SetPair(ctx context.Context, p Pair) error {
	if !p.Complete() {
		return ErrIncompletePair
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.accessKey, p.AccessToken, 0)
		pipe.Set(ctx, s.refreshKey, p.RefreshToken, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.accessKey, s.refreshKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisStore) Close() error {
	return s.client.Close()
}
