package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/services"
	"github.com/desertthunder/shelf/internal/session"
	"github.com/desertthunder/shelf/internal/shared"
	tu "github.com/desertthunder/shelf/internal/testing"
)

type fixture struct {
	fb      *tu.FakeBackend
	store   *session.MemoryStore
	session *session.Session
	manager *Manager
	member  models.Member
	token   string
}

// newFixture wires a manager to a fake backend. When stored is true the member's token is persisted.
func newFixture(t *testing.T, stored bool) *fixture {
	t.Helper()
	fb := tu.NewFakeBackend(t)
	m, token := fb.AddMember(models.Member{Name: "Ada", Email: "ada@example.com", Handle: "ada"}, "secret12")

	store := session.NewMemoryStore()
	if stored {
		store.SetToken(context.Background(), shared.EnvDev, token)
	}
	sess := session.New(session.Opts{Store: store})
	backend := services.NewBackend(services.NewClient(services.ClientOpts{BaseURL: fb.URL, Session: sess}))

	return &fixture{
		fb:      fb,
		store:   store,
		session: sess,
		manager: NewManager(backend, sess, nil),
		member:  m,
		token:   token,
	}
}

func (f *fixture) storedToken(t *testing.T) string {
	t.Helper()
	tok, err := f.store.Token(context.Background(), shared.EnvDev)
	if err != nil {
		t.Fatalf("failed to read store: %v", err)
	}
	return tok
}

func loggedIn(m *Manager) string {
	v := m.IsLoggedIn()
	if v == nil {
		return "undetermined"
	}
	if *v {
		return "true"
	}
	return "false"
}

func TestState(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateUnknown, "unknown"},
		{StateValidating, "validating"},
		{StateAuthenticated, "authenticated"},
		{StateUnauthenticated, "unauthenticated"},
		{State(99), ""},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestBootstrap(t *testing.T) {
	ctx := context.Background()

	t.Run("Initial State Is Undetermined", func(t *testing.T) {
		f := newFixture(t, true)
		if f.manager.IsLoggedIn() != nil {
			t.Error("expected IsLoggedIn to be nil before bootstrap")
		}
		if f.manager.State() != StateUnknown {
			t.Errorf("expected unknown, got %v", f.manager.State())
		}
	})

	t.Run("Valid Token", func(t *testing.T) {
		f := newFixture(t, true)

		if err := f.manager.Bootstrap(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if loggedIn(f.manager) != "true" {
			t.Errorf("expected logged in, got %s", loggedIn(f.manager))
		}
		if m := f.manager.Member(); m == nil || m.ID != f.member.ID {
			t.Errorf("expected member %d, got %+v", f.member.ID, m)
		}
		if f.fb.CallCount(http.MethodGet, "/auth/verifyToken") != 1 || f.fb.CallCount(http.MethodGet, "/member/me") != 1 {
			t.Errorf("expected verify then load, got %+v", f.fb.Calls())
		}
	})

	t.Run("No Stored Token Makes No Calls", func(t *testing.T) {
		f := newFixture(t, false)

		if err := f.manager.Bootstrap(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if loggedIn(f.manager) != "false" {
			t.Errorf("expected logged out, got %s", loggedIn(f.manager))
		}
		if n := len(f.fb.Calls()); n != 0 {
			t.Errorf("expected no network calls, got %d", n)
		}
	})

	t.Run("Rejected Token Is Removed", func(t *testing.T) {
		f := newFixture(t, true)
		f.fb.RevokeTokens(f.member.ID)

		if err := f.manager.Bootstrap(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if loggedIn(f.manager) != "false" {
			t.Errorf("expected logged out, got %s", loggedIn(f.manager))
		}
		if tok := f.storedToken(t); tok != "" {
			t.Errorf("expected stored token removed, got %q", tok)
		}
		if f.fb.CallCount(http.MethodGet, "/member/me") != 0 {
			t.Error("member must not be loaded for a rejected token")
		}
	})

	t.Run("Expired JWT Is Removed Without Calls", func(t *testing.T) {
		f := newFixture(t, false)
		expired := tu.SignedToken(t, "101", time.Now().Add(-time.Hour))
		f.store.SetToken(ctx, shared.EnvDev, expired)

		if err := f.manager.Bootstrap(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if loggedIn(f.manager) != "false" {
			t.Errorf("expected logged out, got %s", loggedIn(f.manager))
		}
		if tok := f.storedToken(t); tok != "" {
			t.Errorf("expected expired token removed, got %q", tok)
		}
		if n := len(f.fb.Calls()); n != 0 {
			t.Errorf("expected no network calls, got %d", n)
		}
	})

	t.Run("Server Error Clears Token", func(t *testing.T) {
		f := newFixture(t, true)
		f.fb.FailNext(http.MethodGet, "/auth/verifyToken", http.StatusInternalServerError)

		if err := f.manager.Bootstrap(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.manager.State() != StateUnauthenticated {
			t.Errorf("expected unauthenticated, got %v", f.manager.State())
		}
		if tok := f.storedToken(t); tok != "" {
			t.Errorf("expected token removed, got %q", tok)
		}
	})

	t.Run("Member Load Failure Clears Token", func(t *testing.T) {
		f := newFixture(t, true)
		f.fb.FailNext(http.MethodGet, "/member/me", http.StatusNotFound)

		if err := f.manager.Bootstrap(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.manager.State() != StateUnauthenticated || f.manager.Member() != nil {
			t.Errorf("expected unauthenticated without member, got %v / %+v", f.manager.State(), f.manager.Member())
		}
	})

	t.Run("Abort Keeps Token", func(t *testing.T) {
		f := newFixture(t, true)
		entered, release := f.fb.Gate(http.MethodGet, "/auth/verifyToken")
		defer release()

		bctx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() { done <- f.manager.Bootstrap(bctx) }()

		<-entered
		if !f.manager.IsLoading() {
			t.Error("expected loading while validation is in flight")
		}
		cancel()

		if err := <-done; !shared.IsAborted(err) {
			t.Errorf("expected aborted error, got %v", err)
		}
		if f.manager.State() != StateUnknown {
			t.Errorf("expected unknown after abort, got %v", f.manager.State())
		}
		if tok := f.storedToken(t); tok != f.token {
			t.Errorf("expected token kept after abort, got %q", tok)
		}
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("Stores Token And Member", func(t *testing.T) {
		f := newFixture(t, false)
		f.manager.Bootstrap(ctx)

		m, err := f.manager.Login(ctx, "ada@example.com", "secret12")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.ID != f.member.ID {
			t.Errorf("expected member %d, got %d", f.member.ID, m.ID)
		}
		if loggedIn(f.manager) != "true" {
			t.Errorf("expected logged in, got %s", loggedIn(f.manager))
		}
		if f.storedToken(t) == "" {
			t.Error("expected token persisted")
		}
	})

	t.Run("Bad Credentials", func(t *testing.T) {
		f := newFixture(t, false)
		f.manager.Bootstrap(ctx)

		_, err := f.manager.Login(ctx, "ada@example.com", "wrong-pass")
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
		if f.manager.State() != StateUnauthenticated {
			t.Errorf("expected to stay unauthenticated, got %v", f.manager.State())
		}
	})

	t.Run("Invalid Input Makes No Calls", func(t *testing.T) {
		f := newFixture(t, false)

		if _, err := f.manager.Login(ctx, "nope", "x"); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if n := len(f.fb.Calls()); n != 0 {
			t.Errorf("expected no calls, got %d", n)
		}
	})

	t.Run("Second Identity Is Refused", func(t *testing.T) {
		f := newFixture(t, true)
		f.fb.AddMember(models.Member{Email: "grace@example.com", Handle: "grace"}, "secret12")
		if err := f.manager.Bootstrap(ctx); err != nil {
			t.Fatalf("bootstrap failed: %v", err)
		}

		_, err := f.manager.Login(ctx, "grace@example.com", "secret12")
		if !errors.Is(err, shared.ErrIdentityConflict) {
			t.Fatalf("expected ErrIdentityConflict, got %v", err)
		}
		if f.manager.Member().ID != f.member.ID {
			t.Error("expected the original member to stay signed in")
		}
		if f.fb.CallCount(http.MethodPost, "/member/login") != 0 {
			t.Error("expected no login call for a conflicting identity")
		}

		if err := f.manager.Logout(ctx); err != nil {
			t.Fatalf("logout failed: %v", err)
		}
		if _, err := f.manager.Login(ctx, "grace@example.com", "secret12"); err != nil {
			t.Errorf("expected login after logout, got %v", err)
		}
	})

	t.Run("Refused Identity Keeps Previous Token", func(t *testing.T) {
		f := newFixture(t, true)
		f.fb.AddMember(models.Member{Email: "grace@example.com", Handle: "grace"}, "secret12")
		if err := f.session.SetMember(&f.member); err != nil {
			t.Fatalf("failed to seed member: %v", err)
		}

		_, err := f.manager.Login(ctx, "grace@example.com", "secret12")
		if !errors.Is(err, shared.ErrIdentityConflict) {
			t.Fatalf("expected ErrIdentityConflict, got %v", err)
		}
		if tok := f.storedToken(t); tok != f.token {
			t.Errorf("expected the original token back, got %q", tok)
		}
		if m := f.session.Member(); m == nil || m.ID != f.member.ID {
			t.Errorf("expected the original member to stay, got %+v", m)
		}
		if f.manager.State() != StateUnknown {
			t.Errorf("expected state restored to unknown, got %v", f.manager.State())
		}
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)
	f.manager.Bootstrap(ctx)

	if err := f.manager.Logout(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loggedIn(f.manager) != "false" || f.manager.Member() != nil {
		t.Error("expected logged out without member")
	}
	if tok := f.storedToken(t); tok != "" {
		t.Errorf("expected token removed, got %q", tok)
	}
}

func TestSessionRejection(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)
	if err := f.manager.Bootstrap(ctx); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}

	backend := services.NewBackend(services.NewClient(services.ClientOpts{BaseURL: f.fb.URL, Session: f.session}))
	f.fb.FailNext(http.MethodGet, "/member/favorites/movies", http.StatusUnauthorized)

	if _, err := backend.Favorites(ctx, models.MediaMovie); !errors.Is(err, shared.ErrUnauthorized) {
		t.Fatalf("expected 401, got %v", err)
	}
	if f.manager.State() != StateUnauthenticated {
		t.Errorf("expected the manager to observe the rejection, got %v", f.manager.State())
	}

	if _, err := backend.Favorites(ctx, models.MediaMovie); !errors.Is(err, shared.ErrNotAuthenticated) {
		t.Errorf("expected fail fast, got %v", err)
	}
	if err := f.manager.Refresh(ctx); err != nil {
		t.Errorf("unexpected refresh error: %v", err)
	}
	if f.manager.State() != StateUnauthenticated {
		t.Errorf("expected to stay unauthenticated, got %v", f.manager.State())
	}
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("Validates Held Token", func(t *testing.T) {
		f := newFixture(t, true)
		if err := f.manager.Refresh(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.manager.State() != StateAuthenticated {
			t.Errorf("expected authenticated, got %v", f.manager.State())
		}
	})

	t.Run("Reloads Member", func(t *testing.T) {
		f := newFixture(t, true)
		f.manager.Bootstrap(ctx)
		before := f.fb.CallCount(http.MethodGet, "/member/me")

		if err := f.manager.Refresh(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.fb.CallCount(http.MethodGet, "/member/me") != before+1 {
			t.Error("expected member to be reloaded")
		}
	})
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)

	ch, stop := f.manager.Subscribe()
	if err := f.manager.Bootstrap(ctx); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	f.manager.Logout(ctx)
	stop()

	var got []State
	for s := range ch {
		got = append(got, s)
	}
	want := []State{StateValidating, StateAuthenticated, StateUnauthenticated}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("transition %d: expected %v, got %v", i, want[i], got[i])
		}
	}

	stop()
}
