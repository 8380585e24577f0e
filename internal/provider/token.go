package provider

import (
	"context"
	"sync"
	"time"

	"github.com/masembe/momopay-backend/internal/models"
)

// expiry safety margin: refresh a little before the provider-side deadline
const tokenSafetyMargin = time.Minute

// TokenFunc exchanges long-lived credentials for a short-lived bearer token.
// It returns the token and its lifetime.
type TokenFunc func(ctx context.Context) (string, time.Duration, error)

type credential struct {
	token  string
	expiry time.Time
}

// TokenStore caches one live bearer token per provider, refreshing lazily on
// next use after expiry. It is process-wide state: created empty at startup,
// never persisted. Concurrent fetch races for the same provider are allowed;
// the last successful write wins.
type TokenStore struct {
	mu    sync.Mutex
	creds map[models.Provider]credential
	fetch map[models.Provider]TokenFunc
}

func NewTokenStore() *TokenStore {
	return &TokenStore{
		creds: make(map[models.Provider]credential),
		fetch: make(map[models.Provider]TokenFunc),
	}
}

// Register installs the fetch func for a provider. Adapters register
// themselves at construction.
func (s *TokenStore) Register(p models.Provider, fn TokenFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetch[p] = fn
}

// Get returns a live token for the provider, re-acquiring when the cached one
// is missing or within the safety margin of expiry. Fetch failures surface as
// AuthError and leave any previously cached value untouched.
func (s *TokenStore) Get(ctx context.Context, p models.Provider) (string, error) {
	s.mu.Lock()
	c, ok := s.creds[p]
	fn := s.fetch[p]
	s.mu.Unlock()

	if ok && time.Until(c.expiry) > tokenSafetyMargin {
		return c.token, nil
	}
	if fn == nil {
		return "", &AuthError{Provider: p, Err: ErrUnsupportedProvider}
	}

	// fetch outside the lock; duplicate fetches are harmless
	token, ttl, err := fn(ctx)
	if err != nil {
		return "", &AuthError{Provider: p, Err: err}
	}

	s.mu.Lock()
	s.creds[p] = credential{token: token, expiry: time.Now().Add(ttl)}
	s.mu.Unlock()
	return token, nil
}
