package favorites

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/shelf/internal/events"
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
)

// Backend is the part of the API a [Tracker] needs.
type Backend interface {
	IsFavorite(ctx context.Context, ref models.MediaRef) (bool, error)
	SetFavorite(ctx context.Context, ref models.MediaRef, on bool) error
}

// TrackerOpts configures a [Tracker].
type TrackerOpts struct {
	Cache    *Cache // Optional shared cache
	MemberID int64  // Signed-in member, used as the cache key
	Logger   *log.Logger

	// OnChange is called after every local state change, outside the tracker lock.
	OnChange func(ref models.MediaRef, favorite bool)
}

// Tracker is the favorite state of one item in one view.
type Tracker struct {
	backend  Backend
	cache    *Cache
	memberID int64
	onChange func(models.MediaRef, bool)
	logger   *log.Logger

	lifetime context.Context
	end      context.CancelFunc

	mu        sync.Mutex
	ref       models.MediaRef
	favorite  bool
	known     bool
	checking  int
	seq       uint64
	unmounted bool
	watching  models.MediaRef
	unwatch   context.CancelFunc
}

// NewTracker creates a tracker for ref. Nothing is fetched until [Tracker.Mount].
func NewTracker(backend Backend, ref models.MediaRef, opts TrackerOpts) *Tracker {
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}
	lifetime, end := context.WithCancel(context.Background())
	return &Tracker{
		backend:  backend,
		cache:    opts.Cache,
		memberID: opts.MemberID,
		onChange: opts.OnChange,
		logger:   shared.WithLogger(opts.Logger, "component", "favorite", "ref", ref.String()),
		lifetime: lifetime,
		end:      end,
		ref:      ref,
	}
}

// Ref returns the tracked item.
func (t *Tracker) Ref() models.MediaRef {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ref
}

// Favorite returns the current state and whether it has been determined.
func (t *Tracker) Favorite() (favorite, known bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.favorite, t.known
}

// Loading reports whether a status check is in flight.
func (t *Tracker) Loading() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.checking > 0
}

// SetRef points the tracker at another item. The state becomes unknown and in-flight checks for
// the previous item are discarded.
func (t *Tracker) SetRef(ref models.MediaRef) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if ref == t.ref {
		return
	}
	t.ref = ref
	t.seq++
	t.favorite, t.known = false, false
}

// Mount queries the favorite status. Results that arrive after [Tracker.Unmount], after a newer
// Mount or after a confirmed toggle are discarded.
//
// A failed query leaves the state unknown and returns the error; the view treats it as a soft
// failure.
func (t *Tracker) Mount(ctx context.Context) error {
	t.mu.Lock()
	if t.unmounted {
		t.mu.Unlock()
		return shared.ErrUnmounted
	}
	t.seq++
	seq, ref := t.seq, t.ref
	t.mu.Unlock()

	if t.cache != nil {
		if err := t.watch(ref); err != nil {
			t.logger.Warn("favorite events unavailable", "err", err)
		}
		if fav, ok := t.cache.Get(t.memberID, ref); ok {
			t.apply(seq, ref, fav)
			return nil
		}
	}

	ctx, cancel := shared.BindContext(ctx, t.lifetime)
	defer cancel()

	t.mu.Lock()
	t.checking++
	t.mu.Unlock()

	fav, err := t.backend.IsFavorite(ctx, ref)

	t.mu.Lock()
	t.checking--
	if t.unmounted {
		t.mu.Unlock()
		return shared.ErrUnmounted
	}
	t.mu.Unlock()

	if err != nil {
		if !shared.IsAborted(err) {
			t.logger.Debug("favorite check failed", "err", err)
		}
		return err
	}

	if t.cache != nil {
		t.cache.Store(t.memberID, ref, fav)
	}
	t.apply(seq, ref, fav)
	return nil
}

// apply stores a check result if it is still the newest one for the current item.
func (t *Tracker) apply(seq uint64, ref models.MediaRef, fav bool) {
	t.mu.Lock()
	if t.unmounted || seq != t.seq || ref != t.ref {
		t.mu.Unlock()
		return
	}
	changed := !t.known || t.favorite != fav
	t.favorite, t.known = fav, true
	t.mu.Unlock()

	if changed {
		t.notify(ref, fav)
	}
}

// Toggle flips the state and returns the new value. See [Tracker.Set].
func (t *Tracker) Toggle(ctx context.Context) (bool, error) {
	fav, _ := t.Favorite()
	want := !fav
	if err := t.Set(ctx, want); err != nil {
		return fav, err
	}
	return want, nil
}

// Set adds or removes the favorite. Local state changes only after the backend confirms; on
// failure it is left untouched and the error is returned for the view to show.
func (t *Tracker) Set(ctx context.Context, on bool) error {
	t.mu.Lock()
	if t.unmounted {
		t.mu.Unlock()
		return shared.ErrUnmounted
	}
	ref := t.ref
	t.mu.Unlock()

	ctx, cancel := shared.BindContext(ctx, t.lifetime)
	defer cancel()

	if err := t.backend.SetFavorite(ctx, ref, on); err != nil {
		if !shared.IsAborted(err) {
			t.logger.Warn("failed to update favorite", "on", on, "err", err)
		}
		return err
	}

	t.mu.Lock()
	if t.unmounted {
		t.mu.Unlock()
		return shared.ErrUnmounted
	}
	if ref != t.ref {
		t.mu.Unlock()
		return nil
	}
	// pending checks predate the mutation
	t.seq++
	changed := !t.known || t.favorite != on
	t.favorite, t.known = on, true
	t.mu.Unlock()

	if t.cache != nil {
		t.cache.Set(t.memberID, ref, on)
	}
	if changed {
		t.notify(ref, on)
	}
	return nil
}

// Unmount cancels in-flight work. The tracker cannot be mounted again.
func (t *Tracker) Unmount() {
	t.mu.Lock()
	t.unmounted = true
	t.mu.Unlock()
	t.end()
}

func (t *Tracker) notify(ref models.MediaRef, fav bool) {
	if t.onChange != nil {
		t.onChange(ref, fav)
	}
}

// watch follows cache changes of ref made by other trackers.
func (t *Tracker) watch(ref models.MediaRef) error {
	bus := t.cache.Bus()
	if bus == nil {
		return nil
	}

	t.mu.Lock()
	if t.unwatch != nil && t.watching == ref {
		t.mu.Unlock()
		return nil
	}
	if t.unwatch != nil {
		t.unwatch()
	}
	ctx, cancel := context.WithCancel(t.lifetime)
	t.watching, t.unwatch = ref, cancel
	t.mu.Unlock()

	ch, err := bus.Subscribe(ctx, events.KindFavorite, ref)
	if err != nil {
		cancel()
		t.mu.Lock()
		t.unwatch = nil
		t.mu.Unlock()
		return err
	}

	go func() {
		for ev := range ch {
			if ev.MemberID != t.memberID {
				continue
			}
			t.mu.Lock()
			seq := t.seq
			t.mu.Unlock()

			if fav, ok := t.cache.Get(t.memberID, ref); ok {
				t.apply(seq, ref, fav)
				continue
			}
			t.mu.Lock()
			if !t.unmounted && t.ref == ref {
				t.known = false
			}
			t.mu.Unlock()
		}
	}()
	return nil
}
