package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
)

// ClearFunc is notified when the session loses its token. reason is nil for an explicit logout.
type ClearFunc func(reason error)

// Session is the session-scope object shared by the HTTP client and the auth manager.
type Session struct {
	env    shared.Environment
	store  TokenStore
	logger *log.Logger
	now    func() time.Time

	mu      sync.RWMutex
	token   string
	loaded  bool
	member  *models.Member
	onClear []ClearFunc
}

// Opts configures a [Session].
type Opts struct {
	Env    shared.Environment
	Store  TokenStore
	Logger *log.Logger
	Now    func() time.Time
}

// New creates a [Session]. A nil store falls back to a fresh [MemoryStore].
func New(opts Opts) *Session {
	if opts.Env == "" {
		opts.Env = shared.EnvDev
	}
	if opts.Store == nil {
		opts.Store = NewMemoryStore()
	}
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Session{
		env:    opts.Env,
		store:  opts.Store,
		logger: shared.WithLogger(opts.Logger, "component", "session", "env", string(opts.Env)),
		now:    opts.Now,
	}
}

// Env returns the environment the session is scoped to.
func (s *Session) Env() shared.Environment {
	return s.env
}

// Token returns the current bearer token, loading it from the store on first use.
//
// A JWT whose exp claim has passed is cleared and reported as absent.
func (s *Session) Token(ctx context.Context) (string, error) {
	s.mu.RLock()
	token, loaded := s.token, s.loaded
	s.mu.RUnlock()

	if !loaded {
		stored, err := s.store.Token(ctx, s.env)
		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}

		s.mu.Lock()
		if !s.loaded {
			s.token, s.loaded = stored, true
		}
		token = s.token
		s.mu.Unlock()
	}

	if token != "" && Expired(token, s.now()) {
		s.logger.Info("stored token has expired")
		if err := s.Expire(ctx, shared.ErrTokenExpired); err != nil {
			return "", err
		}
		return "", nil
	}

	return token, nil
}

// HasToken reports whether a usable token is available.
func (s *Session) HasToken(ctx context.Context) bool {
	token, err := s.Token(ctx)
	return err == nil && token != ""
}

// SetToken stores a freshly issued token.
func (s *Session) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("%w: empty token", shared.ErrInvalidArgument)
	}
	if err := s.store.SetToken(ctx, s.env, token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}

	s.mu.Lock()
	s.token, s.loaded = token, true
	s.mu.Unlock()
	return nil
}

// Expire drops the token and member after the backend rejected the token.
func (s *Session) Expire(ctx context.Context, reason error) error {
	return s.clear(ctx, reason)
}

// ExpireToken is [Session.Expire] for a rejection of a specific token. It does nothing when the
// session already holds a different token, so a late rejection never drops a newer sign-in.
func (s *Session) ExpireToken(ctx context.Context, rejected string, reason error) (bool, error) {
	s.mu.RLock()
	current := s.token
	s.mu.RUnlock()

	if rejected == "" || current != rejected {
		s.logger.Debug("ignoring rejection of a replaced token")
		return false, nil
	}
	return true, s.clear(ctx, reason)
}

// Clear drops the token and member on explicit logout.
func (s *Session) Clear(ctx context.Context) error {
	return s.clear(ctx, nil)
}

func (s *Session) clear(ctx context.Context, reason error) error {
	s.mu.Lock()
	s.token, s.loaded = "", true
	s.member = nil
	hooks := append([]ClearFunc(nil), s.onClear...)
	s.mu.Unlock()

	err := s.store.ClearToken(ctx, s.env)

	for _, fn := range hooks {
		fn(reason)
	}

	if err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}

// OnClear registers fn to run whenever the token is dropped.
func (s *Session) OnClear(fn ClearFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onClear = append(s.onClear, fn)
}

// Member returns a copy of the signed-in member, or nil.
func (s *Session) Member() *models.Member {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.member == nil {
		return nil
	}
	m := *s.member
	return &m
}

// SetMember stores m as the signed-in member.
//
// Replacing the record of the same member (after a profile update) is allowed; replacing it with a
// different member is not.
func (s *Session) SetMember(m *models.Member) error {
	if m == nil {
		return fmt.Errorf("%w: nil member", shared.ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.member != nil && s.member.ID != m.ID {
		return fmt.Errorf("%w: member %d is signed in", shared.ErrIdentityConflict, s.member.ID)
	}
	cp := *m
	s.member = &cp
	return nil
}

// ClearMember forgets the member without touching the token.
func (s *Session) ClearMember() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.member = nil
}
