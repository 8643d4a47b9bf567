// Package follows keeps a profile view's follow button and follower counts in sync with the backend.
//
// [Toggle] mirrors favorites.Tracker for follow/unfollow. [Counts] is owned by the profile view;
// the toggle adjusts it by +1/-1 once the backend confirms a change. [Counts.Refetch] reloads the
// member lists but keeps the locally adjusted totals, so the totals may drift from the list
// lengths until the view is reloaded.
package follows

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/shelf/internal/shared"
)

// Backend is the part of the API a [Toggle] needs.
type Backend interface {
	IsFollowing(ctx context.Context, followedID int64) (bool, error)
	SetFollowing(ctx context.Context, id int64, on bool) error
}

// ToggleOpts configures a [Toggle].
type ToggleOpts struct {
	Logger *log.Logger

	// OnChange receives +1 after a confirmed follow and -1 after a confirmed unfollow.
	OnChange func(delta int)
}

// Toggle is the follow state of the signed-in member towards one other member.
type Toggle struct {
	backend  Backend
	target   int64
	onChange func(int)
	logger   *log.Logger

	lifetime context.Context
	end      context.CancelFunc

	mu        sync.Mutex
	following bool
	known     bool
	checking  int
	seq       uint64
	unmounted bool
}

// NewToggle creates a toggle for the member with id target.
func NewToggle(backend Backend, target int64, opts ToggleOpts) *Toggle {
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}
	lifetime, end := context.WithCancel(context.Background())
	return &Toggle{
		backend:  backend,
		target:   target,
		onChange: opts.OnChange,
		logger:   shared.WithLogger(opts.Logger, "component", "follow", "target", target),
		lifetime: lifetime,
		end:      end,
	}
}

// Following returns the current state and whether it has been determined.
func (t *Toggle) Following() (following, known bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.following, t.known
}

// Loading reports whether a status check is in flight.
func (t *Toggle) Loading() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.checking > 0
}

// Mount queries whether the signed-in member follows the target.
func (t *Toggle) Mount(ctx context.Context) error {
	t.mu.Lock()
	if t.unmounted {
		t.mu.Unlock()
		return shared.ErrUnmounted
	}
	t.seq++
	seq := t.seq
	t.checking++
	t.mu.Unlock()

	ctx, cancel := shared.BindContext(ctx, t.lifetime)
	defer cancel()

	following, err := t.backend.IsFollowing(ctx, t.target)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.checking--
	switch {
	case t.unmounted:
		return shared.ErrUnmounted
	case err != nil:
		return err
	case seq != t.seq:
		return nil
	}
	t.following, t.known = following, true
	return nil
}

// Toggle follows or unfollows and returns the new state.
func (t *Toggle) Toggle(ctx context.Context) (bool, error) {
	following, _ := t.Following()
	want := !following
	if err := t.Set(ctx, want); err != nil {
		return following, err
	}
	return want, nil
}

// Set follows or unfollows. State and counts change only after the backend confirms. A known
// state that already matches makes no call.
func (t *Toggle) Set(ctx context.Context, on bool) error {
	t.mu.Lock()
	if t.unmounted {
		t.mu.Unlock()
		return shared.ErrUnmounted
	}
	if t.known && t.following == on {
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()

	ctx, cancel := shared.BindContext(ctx, t.lifetime)
	defer cancel()

	if err := t.backend.SetFollowing(ctx, t.target, on); err != nil {
		if !shared.IsAborted(err) {
			t.logger.Warn("failed to update follow", "on", on, "err", err)
		}
		return err
	}

	t.mu.Lock()
	if t.unmounted {
		t.mu.Unlock()
		return shared.ErrUnmounted
	}
	t.seq++
	changed := !t.known || t.following != on
	t.following, t.known = on, true
	t.mu.Unlock()

	if changed && t.onChange != nil {
		if on {
			t.onChange(1)
		} else {
			t.onChange(-1)
		}
	}
	return nil
}

// Unmount cancels in-flight work. The toggle cannot be mounted again.
func (t *Toggle) Unmount() {
	t.mu.Lock()
	t.unmounted = true
	t.mu.Unlock()
	t.end()
}
