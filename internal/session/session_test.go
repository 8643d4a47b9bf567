package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
	tu "github.com/desertthunder/shelf/internal/testing"
)

type failingStore struct{ MemoryStore }

func (f *failingStore) Token(context.Context, shared.Environment) (string, error) {
	return "", errors.New("disk on fire")
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if tok, _ := store.Token(ctx, shared.EnvDev); tok != "" {
		t.Fatalf("expected empty store, got %q", tok)
	}

	store.SetToken(ctx, shared.EnvDev, "dev-token")
	store.SetToken(ctx, shared.EnvProd, "prod-token")

	if tok, _ := store.Token(ctx, shared.EnvDev); tok != "dev-token" {
		t.Errorf("expected dev-token, got %q", tok)
	}

	store.ClearToken(ctx, shared.EnvDev)
	if tok, _ := store.Token(ctx, shared.EnvDev); tok != "" {
		t.Errorf("expected dev token cleared, got %q", tok)
	}
	if tok, _ := store.Token(ctx, shared.EnvProd); tok != "prod-token" {
		t.Errorf("clearing dev must not touch prod, got %q", tok)
	}
}

func TestTokenClaims(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("JWT Expiry", func(t *testing.T) {
		token := tu.SignedToken(t, "42", now.Add(time.Hour))

		exp, ok := TokenExpiry(token)
		if !ok {
			t.Fatal("expected exp claim to be readable")
		}
		if !exp.Equal(now.Add(time.Hour)) {
			t.Errorf("expected exp %v, got %v", now.Add(time.Hour), exp)
		}
		if Expired(token, now) {
			t.Error("token should not be expired yet")
		}
		if !Expired(token, now.Add(2*time.Hour)) {
			t.Error("token should be expired later")
		}
		if TokenSubject(token) != "42" {
			t.Errorf("expected subject 42, got %q", TokenSubject(token))
		}
	})

	t.Run("Opaque Token", func(t *testing.T) {
		if _, ok := TokenExpiry("tok-1-0"); ok {
			t.Error("opaque token has no expiry")
		}
		if Expired("tok-1-0", now) {
			t.Error("opaque token is never considered expired locally")
		}
		if TokenSubject("tok-1-0") != "" {
			t.Error("opaque token has no subject")
		}
	})
}

func TestSession(t *testing.T) {
	ctx := context.Background()

	t.Run("Loads Token From Store Once", func(t *testing.T) {
		store := NewMemoryStore()
		store.SetToken(ctx, shared.EnvProd, "persisted")

		s := New(Opts{Env: shared.EnvProd, Store: store})
		tok, err := s.Token(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tok != "persisted" {
			t.Errorf("expected persisted token, got %q", tok)
		}

		store.SetToken(ctx, shared.EnvProd, "changed-behind-our-back")
		if tok, _ := s.Token(ctx); tok != "persisted" {
			t.Errorf("expected cached token, got %q", tok)
		}
	})

	t.Run("Store Error", func(t *testing.T) {
		s := New(Opts{Store: &failingStore{}})
		if _, err := s.Token(ctx); err == nil {
			t.Error("expected store error to surface")
		}
		if s.HasToken(ctx) {
			t.Error("HasToken must be false when the store fails")
		}
	})

	t.Run("Expired JWT Is Cleared", func(t *testing.T) {
		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		store := NewMemoryStore()
		store.SetToken(ctx, shared.EnvDev, tu.SignedToken(t, "7", now.Add(-time.Minute)))

		var reason error
		s := New(Opts{Store: store, Now: func() time.Time { return now }})
		s.OnClear(func(r error) { reason = r })

		tok, err := s.Token(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tok != "" {
			t.Errorf("expected expired token to be dropped, got %q", tok)
		}
		if stored, _ := store.Token(ctx, shared.EnvDev); stored != "" {
			t.Error("expected expired token removed from store")
		}
		if !errors.Is(reason, shared.ErrTokenExpired) {
			t.Errorf("expected ErrTokenExpired reason, got %v", reason)
		}
	})

	t.Run("SetToken And Clear", func(t *testing.T) {
		store := NewMemoryStore()
		s := New(Opts{Store: store})

		if err := s.SetToken(ctx, ""); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for empty token, got %v", err)
		}

		if err := s.SetToken(ctx, "abc"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		s.SetMember(&models.Member{ID: 1})

		cleared := 0
		var reason error = errors.New("sentinel")
		s.OnClear(func(r error) { cleared++; reason = r })

		if err := s.Clear(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.HasToken(ctx) {
			t.Error("expected no token after clear")
		}
		if s.Member() != nil {
			t.Error("expected member cleared")
		}
		if cleared != 1 || reason != nil {
			t.Errorf("expected one clear notification with nil reason, got %d / %v", cleared, reason)
		}
	})

	t.Run("ExpireToken Compares Before Clearing", func(t *testing.T) {
		s := New(Opts{})
		if err := s.SetToken(ctx, "second"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		cleared := 0
		s.OnClear(func(error) { cleared++ })

		if ok, err := s.ExpireToken(ctx, "first", shared.ErrUnauthorized); ok || err != nil {
			t.Errorf("expected replaced token to be ignored, got %v / %v", ok, err)
		}
		if tok, _ := s.Token(ctx); tok != "second" || cleared != 0 {
			t.Errorf("expected token kept without hooks, got %q and %d clears", tok, cleared)
		}

		if ok, err := s.ExpireToken(ctx, "second", shared.ErrUnauthorized); !ok || err != nil {
			t.Errorf("expected current token to be cleared, got %v / %v", ok, err)
		}
		if s.HasToken(ctx) || cleared != 1 {
			t.Errorf("expected token dropped with one clear, got %d clears", cleared)
		}
	})

	t.Run("Single Identity", func(t *testing.T) {
		s := New(Opts{})

		if err := s.SetMember(nil); err == nil {
			t.Error("expected error for nil member")
		}
		if err := s.SetMember(&models.Member{ID: 1, Name: "Ada"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := s.SetMember(&models.Member{ID: 1, Name: "Ada L."}); err != nil {
			t.Errorf("same member update should be allowed: %v", err)
		}
		if err := s.SetMember(&models.Member{ID: 2}); !errors.Is(err, shared.ErrIdentityConflict) {
			t.Errorf("expected ErrIdentityConflict, got %v", err)
		}
		if s.Member().Name != "Ada L." {
			t.Errorf("expected updated name, got %q", s.Member().Name)
		}

		s.ClearMember()
		if err := s.SetMember(&models.Member{ID: 2}); err != nil {
			t.Errorf("expected new identity after ClearMember: %v", err)
		}
	})

	t.Run("Member Returns Copy", func(t *testing.T) {
		s := New(Opts{})
		s.SetMember(&models.Member{ID: 1, Bio: "original"})

		m := s.Member()
		m.Bio = "mutated"
		if s.Member().Bio != "original" {
			t.Error("mutating the returned member must not change the session")
		}
	})

	t.Run("Concurrent Access", func(t *testing.T) {
		s := New(Opts{})
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				s.SetToken(ctx, "t")
			}()
			go func() {
				defer wg.Done()
				s.Token(ctx)
				s.Member()
			}()
		}
		wg.Wait()
	})
}
