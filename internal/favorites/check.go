package favorites

import (
	"context"
	"fmt"

	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
	"github.com/desertthunder/shelf/internal/tasks"
)

// Checker reports the favorite status of one item.
type Checker interface {
	IsFavorite(ctx context.Context, ref models.MediaRef) (bool, error)
}

// CheckOpts configures [CheckMany].
type CheckOpts struct {
	Pool     tasks.PoolOpts
	Cache    *Cache
	MemberID int64
	Progress chan<- tasks.ProgressUpdate
}

// Status is the outcome of one check.
type Status struct {
	Ref      models.MediaRef
	Favorite bool
	Err      error
}

// CheckMany resolves the favorite status of ids of type t, in input order.
//
// Invalid ids and failed checks are reported per item; only cancellation fails the whole call.
// Cached states are used without a request and fresh results are stored in the cache.
func CheckMany(ctx context.Context, backend Checker, t models.MediaType, ids []string, opts CheckOpts) ([]Status, error) {
	out := make([]Status, len(ids))
	var (
		pending []models.MediaRef
		slots   []int
	)

	for i, id := range ids {
		ref, err := models.NewMediaRef(t, id)
		if err != nil {
			out[i] = Status{Ref: models.MediaRef{Type: t, ID: id}, Err: fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)}
			continue
		}
		out[i].Ref = ref
		if opts.Cache != nil {
			if fav, ok := opts.Cache.Get(opts.MemberID, ref); ok {
				out[i].Favorite = fav
				continue
			}
		}
		pending = append(pending, ref)
		slots = append(slots, i)
	}

	results, err := tasks.RunPool(ctx, pending, opts.Pool,
		func(ctx context.Context, ref models.MediaRef) Status {
			fav, err := backend.IsFavorite(ctx, ref)
			return Status{Ref: ref, Favorite: fav, Err: err}
		},
		func(completed int, _ models.MediaRef, s Status) {
			tasks.Send(opts.Progress, tasks.CheckedUpdate(completed, len(pending), s.Ref, s.Favorite, s.Err))
		},
	)
	if err != nil {
		return nil, fmt.Errorf("favorite check aborted: %w", err)
	}

	for j, s := range results {
		out[slots[j]] = s
		if s.Err == nil && opts.Cache != nil {
			opts.Cache.Store(opts.MemberID, s.Ref, s.Favorite)
		}
	}
	return out, nil
}
