package session

import (
	"context"
	"sync"
	"time"

	"github.com/desertthunder/shelf/internal/shared"
	"github.com/golang-jwt/jwt/v5"
)

// TokenStore persists bearer tokens keyed by environment.
//
// Token returns "" with a nil error when no token is stored.
type TokenStore interface {
	Token(ctx context.Context, env shared.Environment) (string, error)
	SetToken(ctx context.Context, env shared.Environment, token string) error
	ClearToken(ctx context.Context, env shared.Environment) error
}

// MemoryStore is a [TokenStore] backed by a map.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[shared.Environment]string
}

// NewMemoryStore creates an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[shared.Environment]string)}
}

func (m *MemoryStore) Token(_ context.Context, env shared.Environment) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tokens[env], nil
}

func (m *MemoryStore) SetToken(_ context.Context, env shared.Environment, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[env] = token
	return nil
}

func (m *MemoryStore) ClearToken(_ context.Context, env shared.Environment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, env)
	return nil
}

// TokenExpiry reads the exp claim of a JWT without verifying its signature.
//
// The backend is the only party that can verify the token; the client only uses the claim
// to avoid sending a token it already knows is dead. ok is false for opaque tokens and
// tokens without an exp claim.
func TokenExpiry(token string) (exp time.Time, ok bool) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, &jwt.RegisteredClaims{})
	if err != nil {
		return time.Time{}, false
	}

	date, err := parsed.Claims.GetExpirationTime()
	if err != nil || date == nil {
		return time.Time{}, false
	}
	return date.Time, true
}

// TokenSubject returns the sub claim of a JWT, or "" for opaque tokens.
func TokenSubject(token string) string {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, &jwt.RegisteredClaims{})
	if err != nil {
		return ""
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}

// Expired reports whether token is a JWT whose exp lies before now.
func Expired(token string, now time.Time) bool {
	exp, ok := TokenExpiry(token)
	return ok && !now.Before(exp)
}
