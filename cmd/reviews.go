package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/shelf/internal/events"
	"github.com/desertthunder/shelf/internal/formatter"
	"github.com/desertthunder/shelf/internal/models"
	"github.com/urfave/cli/v3"
)

// averageWait bounds how long add waits for the refreshed average.
const averageWait = 5 * time.Second

// ReviewsList prints the reviews of an item.
func (r *Runner) ReviewsList(ctx context.Context, cmd *cli.Command) error {
	ref, err := parseRefArg(cmd)
	if err != nil {
		return err
	}

	reviews, err := r.public.Reviews(ctx, ref)
	if err != nil {
		return fmt.Errorf("failed to load reviews of %s: %w", ref, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(reviews, cmd.Bool("pretty"))
	}
	return r.writePlain("%s\n", formatter.RenderReviews(reviews))
}

// ReviewsAdd posts a review and prints the average once it has been refreshed.
func (r *Runner) ReviewsAdd(ctx context.Context, cmd *cli.Command) error {
	member, err := r.requireMember(ctx)
	if err != nil {
		return err
	}
	ref, err := parseRefArg(cmd)
	if err != nil {
		return err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	watcher, err := events.WatchReviewAverage(watchCtx, r.bus, r.public, ref, r.logger)
	if err != nil {
		return fmt.Errorf("failed to watch review average: %w", err)
	}
	select {
	case <-watcher.Updates():
	default:
	}

	review, err := r.backend.CreateReview(ctx, models.ReviewInput{
		MediaType: ref.Type,
		MediaID:   ref.ID,
		Rating:    cmd.Float("rating"),
		Text:      cmd.String("text"),
	})
	if err != nil {
		return fmt.Errorf("failed to post review: %w", err)
	}
	r.logger.Info("review posted", "ref", ref.String(), "review", review.ID)

	if err := r.bus.Publish(events.KindReview, ref, member.ID); err != nil {
		r.logger.Warn("failed to announce review", "error", err)
	}

	r.writePlain("Reviewed %s: %s\n", ref, formatter.Stars(review.Rating))

	select {
	case avg := <-watcher.Updates():
		return r.writePlain("%s\n", formatter.RenderAverage(avg))
	case <-time.After(averageWait):
		r.logger.Warn("review average was not refreshed in time", "ref", ref.String())
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// ReviewsAverage prints the average rating of an item.
func (r *Runner) ReviewsAverage(ctx context.Context, cmd *cli.Command) error {
	ref, err := parseRefArg(cmd)
	if err != nil {
		return err
	}

	avg, err := r.public.ReviewAverage(ctx, ref)
	if err != nil {
		return fmt.Errorf("failed to load average of %s: %w", ref, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(avg, cmd.Bool("pretty"))
	}
	return r.writePlain("%s\n", formatter.RenderAverage(avg))
}
