package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/shelf/internal/favorites"
	"github.com/desertthunder/shelf/internal/formatter"
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
	"github.com/urfave/cli/v3"
)

func numericID(cmd *cli.Command) (int64, error) {
	s := cmd.StringArg("id")
	if s == "" {
		return 0, fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id must be a positive integer, got %q", shared.ErrInvalidArgument, s)
	}
	return id, nil
}

// favoriteMark returns a star when a stored session marks ref as favorite. Lookups work signed
// out, so any failure just leaves the mark empty.
func (r *Runner) favoriteMark(ctx context.Context, ref models.MediaRef) string {
	if !r.session.HasToken(ctx) {
		return ""
	}
	member, err := r.requireMember(ctx)
	if err != nil {
		r.logger.Debug("favorite status skipped", "error", err)
		return ""
	}

	tracker := favorites.NewTracker(r.backend, ref, favorites.TrackerOpts{
		Cache:    r.cache,
		MemberID: member.ID,
		Logger:   r.logger,
	})
	defer tracker.Unmount()

	if err := tracker.Mount(ctx); err != nil {
		return ""
	}
	if fav, _ := tracker.Favorite(); fav {
		return formatter.StarStyle.Render("★ favorite")
	}
	return ""
}

func (r *Runner) writeMedia(ctx context.Context, cmd *cli.Command, v any, item models.MediaItem, overview string) error {
	if cmd.Bool("json") {
		return r.writeJSON(v, cmd.Bool("pretty"))
	}

	r.writePlain("%s\n", formatter.TitleStyle.Render(item.Title))
	if item.Subtitle != "" {
		r.writePlain("%s\n", formatter.MutedStyle.Render(item.Subtitle))
	}
	r.writePlain("%s\n", item.Ref)
	if mark := r.favoriteMark(ctx, item.Ref); mark != "" {
		r.writePlain("%s\n", mark)
	}
	if overview != "" {
		r.writePlainln("%s", overview)
	}
	if avg, err := r.public.ReviewAverage(ctx, item.Ref); err == nil {
		r.writePlainln("%s", formatter.RenderAverage(avg))
	} else {
		r.logger.Debug("review average unavailable", "ref", item.Ref.String(), "error", err)
	}
	return nil
}

// MediaMovie prints one movie.
func (r *Runner) MediaMovie(ctx context.Context, cmd *cli.Command) error {
	id, err := numericID(cmd)
	if err != nil {
		return err
	}
	movie, err := r.public.Movie(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load movie %d: %w", id, err)
	}
	return r.writeMedia(ctx, cmd, movie, movie.Item(), movie.Overview)
}

// MediaSeries prints one series.
func (r *Runner) MediaSeries(ctx context.Context, cmd *cli.Command) error {
	id, err := numericID(cmd)
	if err != nil {
		return err
	}
	series, err := r.public.Series(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load series %d: %w", id, err)
	}
	return r.writeMedia(ctx, cmd, series, series.Item(), series.Overview)
}

// MediaAlbum prints one album.
func (r *Runner) MediaAlbum(ctx context.Context, cmd *cli.Command) error {
	id := strings.TrimSpace(cmd.StringArg("id"))
	if id == "" {
		return fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}
	album, err := r.public.Album(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load album %s: %w", id, err)
	}
	return r.writeMedia(ctx, cmd, album, album.Item(), "")
}

// MediaSearch searches the catalogue for one media type.
func (r *Runner) MediaSearch(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("%w: query", shared.ErrMissingArgument)
	}
	t, err := models.ParseMediaType(cmd.String("type"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	items, err := r.public.Search(ctx, t, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(items, cmd.Bool("pretty"))
	}
	return r.writePlain("%s\n", formatter.RenderItems(items, nil))
}
