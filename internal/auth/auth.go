// Package auth tracks whether the session is signed in.
//
// [Manager] moves through [StateUnknown] → [StateValidating] → [StateAuthenticated] or
// [StateUnauthenticated]. On start, [Manager.Bootstrap] reads the stored token, verifies it with
// the backend and loads the member record. A token the backend rejects is removed.
//
// State changes are broadcast to [Manager.Subscribe] channels without blocking; slow subscribers
// miss intermediate states but always see a later one.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/session"
	"github.com/desertthunder/shelf/internal/shared"
)

// State is the authentication state of a session.
type State int

const (
	StateUnknown State = iota
	StateValidating
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateValidating:
		return "validating"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return ""
	}
}

// Backend is the subset of the backend the manager needs.
type Backend interface {
	Login(ctx context.Context, email, password string) (string, error)
	VerifyToken(ctx context.Context) error
	Me(ctx context.Context) (*models.Member, error)
}

// Manager orchestrates token validation, login and logout for one [session.Session].
type Manager struct {
	backend Backend
	session *session.Session
	logger  *log.Logger

	mu    sync.Mutex
	state State
	gen   uint64
	subs  map[chan State]struct{}
}

// NewManager creates a [Manager] in [StateUnknown].
//
// The manager observes the session: when the token is dropped (logout, expiry, or a 401/403
// answer seen by the HTTP client) it moves to [StateUnauthenticated].
func NewManager(backend Backend, sess *session.Session, logger *log.Logger) *Manager {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	m := &Manager{
		backend: backend,
		session: sess,
		logger:  shared.WithLogger(logger, "component", "auth"),
		subs:    make(map[chan State]struct{}),
	}
	sess.OnClear(func(reason error) {
		if reason != nil {
			m.logger.Info("session token dropped", "reason", reason)
		}
		m.mu.Lock()
		m.gen++
		m.setLocked(StateUnauthenticated)
		m.mu.Unlock()
	})
	return m
}

// State returns the current state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsLoggedIn returns nil while the state is undetermined, otherwise whether the session is signed in.
func (m *Manager) IsLoggedIn() *bool {
	var v bool
	switch m.State() {
	case StateAuthenticated:
		v = true
	case StateUnauthenticated:
		v = false
	default:
		return nil
	}
	return &v
}

// IsLoading reports whether a validation or login is in flight.
func (m *Manager) IsLoading() bool {
	return m.State() == StateValidating
}

// Member returns the signed-in member, or nil.
func (m *Manager) Member() *models.Member {
	return m.session.Member()
}

// Session returns the managed session.
func (m *Manager) Session() *session.Session {
	return m.session
}

// Subscribe returns a channel receiving every state change and a func that stops delivery.
func (m *Manager) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 8)
	m.mu.Lock()
	m.subs[ch] = struct{}{}
	m.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, ch)
			m.mu.Unlock()
			close(ch)
		})
	}
}

// begin starts an operation and returns its generation. Older operations lose their right to set state.
func (m *Manager) begin(s State) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	m.setLocked(s)
	return m.gen
}

// finish sets s if gen is still the latest operation.
func (m *Manager) finish(gen uint64, s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return
	}
	m.setLocked(s)
}

func (m *Manager) setLocked(s State) {
	if m.state == s {
		return
	}
	m.logger.Debug("state change", "from", m.state, "to", s)
	m.state = s
	for ch := range m.subs {
		select {
		case ch <- s:
		default:
		}
	}
}

// Bootstrap determines the initial state from the stored token.
//
// Without a token the manager becomes unauthenticated and makes no request. A rejected token is
// removed. An aborted validation returns the manager to [StateUnknown] and keeps the token.
func (m *Manager) Bootstrap(ctx context.Context) error {
	token, err := m.session.Token(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		m.finish(m.begin(StateUnauthenticated), StateUnauthenticated)
		return nil
	}

	gen := m.begin(StateValidating)
	if err := m.backend.VerifyToken(ctx); err != nil {
		return m.fail(ctx, gen, "token validation failed", err)
	}

	if _, err := m.loadMember(ctx); err != nil {
		return m.fail(ctx, gen, "failed to load member", err)
	}

	m.finish(gen, StateAuthenticated)
	return nil
}

// fail resolves a failed validation. Aborts restore [StateUnknown]; anything else drops the token.
func (m *Manager) fail(ctx context.Context, gen uint64, msg string, err error) error {
	if shared.IsAborted(err) {
		m.logger.Debug(msg, "err", err)
		m.finish(gen, StateUnknown)
		return err
	}

	m.logger.Warn(msg, "err", err)
	if m.session.HasToken(ctx) {
		if clearErr := m.session.Expire(context.WithoutCancel(ctx), err); clearErr != nil {
			m.logger.Error("failed to clear token", "err", clearErr)
		}
	}
	m.finish(gen, StateUnauthenticated)
	return nil
}

// Login exchanges credentials for a token, stores it and loads the member.
//
// While signed in, logging in as a different member fails with [shared.ErrIdentityConflict].
func (m *Manager) Login(ctx context.Context, email, password string) (*models.Member, error) {
	if current := m.session.Member(); current != nil && m.State() == StateAuthenticated {
		if !strings.EqualFold(current.Email, strings.TrimSpace(email)) {
			return nil, fmt.Errorf("%w: log out %s first", shared.ErrIdentityConflict, current.Handle)
		}
	}

	prev := m.State()
	prevToken, _ := m.session.Token(ctx)
	gen := m.begin(StateValidating)

	token, err := m.backend.Login(ctx, email, password)
	if err != nil {
		m.finish(gen, restore(prev))
		return nil, err
	}

	if err := m.session.SetToken(ctx, token); err != nil {
		m.finish(gen, restore(prev))
		return nil, err
	}

	member, err := m.loadMember(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrIdentityConflict) {
			m.discardToken(ctx, token, prevToken, err)
			m.finish(gen, restore(prev))
			return nil, err
		}
		_ = m.fail(ctx, gen, "failed to load member after login", err)
		return nil, err
	}

	m.logger.Info("signed in", "member", member.ID, "handle", member.Handle)
	m.finish(gen, StateAuthenticated)
	return member, nil
}

// discardToken puts back the token held before a refused login. Without one, the refused token is dropped.
func (m *Manager) discardToken(ctx context.Context, refused, prev string, reason error) {
	ctx = context.WithoutCancel(ctx)
	if prev != "" {
		if err := m.session.SetToken(ctx, prev); err != nil {
			m.logger.Error("failed to restore previous token", "err", err)
		}
		return
	}
	if _, err := m.session.ExpireToken(ctx, refused, reason); err != nil {
		m.logger.Error("failed to drop refused token", "err", err)
	}
}

// restore maps the state before a failed login back to a settled state.
func restore(prev State) State {
	if prev == StateValidating {
		return StateUnknown
	}
	return prev
}

// Logout drops the token and member.
func (m *Manager) Logout(ctx context.Context) error {
	gen := m.begin(StateUnauthenticated)
	err := m.session.Clear(ctx)
	m.finish(gen, StateUnauthenticated)
	return err
}

// LoadMemberData fetches the member record and stores it in the session.
func (m *Manager) LoadMemberData(ctx context.Context) (*models.Member, error) {
	return m.loadMember(ctx)
}

func (m *Manager) loadMember(ctx context.Context) (*models.Member, error) {
	member, err := m.backend.Me(ctx)
	if err != nil {
		return nil, err
	}
	if err := m.session.SetMember(member); err != nil {
		return nil, err
	}
	return member, nil
}

// Refresh re-observes the session: a dropped token makes the manager unauthenticated, a token
// held while not authenticated is validated, and an authenticated session reloads the member.
func (m *Manager) Refresh(ctx context.Context) error {
	if !m.session.HasToken(ctx) {
		m.finish(m.begin(StateUnauthenticated), StateUnauthenticated)
		return nil
	}
	if m.State() != StateAuthenticated {
		return m.Bootstrap(ctx)
	}
	if _, err := m.loadMember(ctx); err != nil && !shared.IsAborted(err) {
		m.logger.Warn("failed to refresh member", "err", err)
		return err
	}
	return nil
}
