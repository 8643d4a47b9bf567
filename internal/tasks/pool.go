package tasks

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

const (
	defaultWorkers   = 5
	maxWorkers       = 10
	defaultRateLimit = 5.0
)

// PoolOpts bounds the concurrency and request rate of [RunPool].
type PoolOpts struct {
	Workers   int     // Concurrent workers (default: 5, max: 10)
	RateLimit float64 // Jobs started per second (default: 5)
}

func (o PoolOpts) normalize() PoolOpts {
	if o.Workers <= 0 {
		o.Workers = defaultWorkers
	}
	if o.Workers > maxWorkers {
		o.Workers = maxWorkers
	}
	if o.RateLimit <= 0 {
		o.RateLimit = defaultRateLimit
	}
	return o
}

type poolResult[R any] struct {
	index  int
	result R
}

// RunPool runs work for every job on a worker pool and returns the results in job order.
//
// onResult, when set, is called from the calling goroutine once per finished job with the number
// of jobs completed so far. When ctx is cancelled no new jobs start; jobs that never ran keep the
// zero value of R and ctx.Err() is returned.
func RunPool[J, R any](
	ctx context.Context,
	jobs []J,
	opts PoolOpts,
	work func(ctx context.Context, job J) R,
	onResult func(completed int, job J, result R),
) ([]R, error) {
	opts = opts.normalize()
	out := make([]R, len(jobs))
	if len(jobs) == 0 {
		return out, nil
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	queue := make(chan int, len(jobs))
	results := make(chan poolResult[R], len(jobs))

	var wg sync.WaitGroup
	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range queue {
				select {
				case <-ctx.Done():
					return
				default:
				}
				results <- poolResult[R]{index: idx, result: work(ctx, jobs[idx])}
			}
		}()
	}

	go func() {
		defer close(queue)
		for i := range jobs {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			queue <- i
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		out[res.index] = res.result
		if onResult != nil {
			onResult(completed, jobs[res.index], res.result)
		}
	}

	return out, ctx.Err()
}
