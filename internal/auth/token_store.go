package auth

import (
	"context"
	"sync"
)

// Storage key names, shared by every backend.
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
)

// Store persists the credential pair.
//
// Implementations write and clear both tokens as one operation: a reader never
// observes an access token without its refresh token or the reverse.
type Store interface {
	// Get returns the stored pair, or a zero Pair when nothing is stored.
	Get(ctx context.Context) (Pair, error)
	// SetPair replaces the stored pair. Incomplete pairs are rejected.
	SetPair(ctx context.Context, p Pair) error
	// Clear removes both tokens.
	Clear(ctx context.Context) error
}

// HasAccessToken reports whether s currently holds an access token.
// Read errors count as "no token".
func HasAccessToken(ctx context.Context, s Store) bool {
	p, err := s.Get(ctx)
	return err == nil && p.AccessToken != ""
}

// MemoryStore keeps the pair in process memory
type MemoryStore struct {
	mu   sync.RWMutex
	pair Pair
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get(_ context.Context) (Pair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pair, nil
}

func (s *MemoryStore) SetPair(_ context.Context, p Pair) error {
	if !p.Complete() {
		return ErrIncompletePair
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = p
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = Pair{}
	return nil
}
