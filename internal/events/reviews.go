package events

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
)

// AverageFetcher loads the rating summary of an item.
type AverageFetcher interface {
	ReviewAverage(ctx context.Context, ref models.MediaRef) (models.ReviewAverage, error)
}

// ReviewAverageWatcher keeps the rating summary of one item current by re-fetching it on every
// [KindReview] event for that item.
type ReviewAverageWatcher struct {
	ref     models.MediaRef
	fetcher AverageFetcher
	logger  *log.Logger
	updates chan models.ReviewAverage
	done    chan struct{}

	mu  sync.RWMutex
	avg models.ReviewAverage
	err error
}

// WatchReviewAverage subscribes to review events for ref and loads the initial average.
// The watcher stops when ctx is done.
func WatchReviewAverage(ctx context.Context, bus *Bus, fetcher AverageFetcher, ref models.MediaRef, logger *log.Logger) (*ReviewAverageWatcher, error) {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	events, err := bus.Subscribe(ctx, KindReview, ref)
	if err != nil {
		return nil, err
	}

	w := &ReviewAverageWatcher{
		ref:     ref,
		fetcher: fetcher,
		logger:  shared.WithLogger(logger, "component", "review-average", "ref", ref.String()),
		updates: make(chan models.ReviewAverage, 1),
		done:    make(chan struct{}),
	}
	w.refresh(ctx)

	go func() {
		defer close(w.done)
		for range events {
			w.refresh(ctx)
		}
	}()
	return w, nil
}

// refresh re-fetches the average. Aborted fetches leave the previous value in place.
func (w *ReviewAverageWatcher) refresh(ctx context.Context) {
	avg, err := w.fetcher.ReviewAverage(ctx, w.ref)
	if shared.IsAborted(err) {
		return
	}

	w.mu.Lock()
	if err != nil {
		w.logger.Warn("failed to fetch review average", "err", err)
		w.err = err
	} else {
		w.avg, w.err = avg, nil
	}
	w.mu.Unlock()

	if err != nil {
		return
	}
	select {
	case w.updates <- avg:
	default:
		// replace a stale pending update with the newest one
		select {
		case <-w.updates:
		default:
		}
		select {
		case w.updates <- avg:
		default:
		}
	}
}

// Average returns the last fetched summary and the error of the last fetch, if any.
func (w *ReviewAverageWatcher) Average() (models.ReviewAverage, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.avg, w.err
}

// Updates receives each successfully fetched summary. Only the newest pending value is kept.
func (w *ReviewAverageWatcher) Updates() <-chan models.ReviewAverage {
	return w.updates
}

// Done is closed once the watcher has stopped.
func (w *ReviewAverageWatcher) Done() <-chan struct{} {
	return w.done
}
