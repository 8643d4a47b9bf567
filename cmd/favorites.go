package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/shelf/internal/favorites"
	"github.com/desertthunder/shelf/internal/formatter"
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
	"github.com/desertthunder/shelf/internal/tasks"
	"github.com/urfave/cli/v3"
)

type checkRow struct {
	Ref      string `json:"ref"`
	Favorite bool   `json:"favorite"`
	Error    string `json:"error,omitempty"`
}

// parseTypes reads the --type flag. An empty value selects every type.
func parseTypes(s string) ([]models.MediaType, error) {
	if s == "" {
		return nil, nil
	}
	t, err := models.ParseMediaType(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	return []models.MediaType{t}, nil
}

func parseRefArg(cmd *cli.Command) (models.MediaRef, error) {
	s := cmd.StringArg("ref")
	if s == "" {
		return models.MediaRef{}, fmt.Errorf("%w: ref (type:id)", shared.ErrMissingArgument)
	}
	ref, err := models.ParseMediaRef(s)
	if err != nil {
		return models.MediaRef{}, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	return ref, nil
}

// printProgress prints updates until the returned stop func is called. quiet discards them.
func (r *Runner) printProgress(quiet bool) (chan<- tasks.ProgressUpdate, func()) {
	if quiet {
		return nil, func() {}
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchFavorites:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.CheckFavorites, tasks.ResolveItems:
				r.writePlain("   %s\n", update.Message)
			case tasks.WriteExport:
				r.writePlain("📝 %s\n", update.Message)
			}
		}
	}()
	return progressCh, func() {
		close(progressCh)
		<-done
	}
}

// FavoritesList prints the signed-in member's favorites.
func (r *Runner) FavoritesList(ctx context.Context, cmd *cli.Command) error {
	member, err := r.requireMember(ctx)
	if err != nil {
		return err
	}
	types, err := parseTypes(cmd.String("type"))
	if err != nil {
		return err
	}

	progress, stop := r.printProgress(true)
	result, err := r.engine.Library(ctx, progress, types, tasks.LibraryOpts{
		Handle:  member.Handle,
		Resolve: !cmd.Bool("refs"),
	})
	stop()
	if err != nil {
		return err
	}

	for _, f := range result.Failed {
		r.logger.Warn("could not resolve favorite", "ref", f.Ref.String(), "error", f.Err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(result.Library, cmd.Bool("pretty"))
	}

	text, err := formatter.ExportToText(result.Library)
	if err != nil {
		return err
	}
	return r.writePlain("%s", text)
}

func (r *Runner) setFavorite(ctx context.Context, cmd *cli.Command, on bool) error {
	member, err := r.requireMember(ctx)
	if err != nil {
		return err
	}
	ref, err := parseRefArg(cmd)
	if err != nil {
		return err
	}

	tracker := favorites.NewTracker(r.backend, ref, favorites.TrackerOpts{
		Cache:    r.cache,
		MemberID: member.ID,
		Logger:   r.logger,
	})
	defer tracker.Unmount()

	if err := tracker.Set(ctx, on); err != nil {
		return fmt.Errorf("failed to update favorite %s: %w", ref, err)
	}

	if on {
		return r.writePlain("%s Added %s to favorites\n", formatter.StarStyle.Render("★"), ref)
	}
	return r.writePlain("☆ Removed %s from favorites\n", ref)
}

// FavoritesAdd marks an item as favorite.
func (r *Runner) FavoritesAdd(ctx context.Context, cmd *cli.Command) error {
	return r.setFavorite(ctx, cmd, true)
}

// FavoritesRemove unmarks an item.
func (r *Runner) FavoritesRemove(ctx context.Context, cmd *cli.Command) error {
	return r.setFavorite(ctx, cmd, false)
}

// FavoritesCheck reports the favorite status of several ids of one type.
func (r *Runner) FavoritesCheck(ctx context.Context, cmd *cli.Command) error {
	member, err := r.requireMember(ctx)
	if err != nil {
		return err
	}
	t, err := models.ParseMediaType(cmd.String("type"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	ids := cmd.StringSlice("id")
	if len(ids) == 0 {
		return fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}

	progress, stop := r.printProgress(cmd.Bool("json"))
	statuses, err := favorites.CheckMany(ctx, r.backend, t, ids, favorites.CheckOpts{
		Pool:     tasks.PoolOpts{Workers: cmd.Int("workers")},
		Cache:    r.cache,
		MemberID: member.ID,
		Progress: progress,
	})
	stop()
	if err != nil {
		return err
	}

	rows := make([]checkRow, len(statuses))
	failed := 0
	for i, s := range statuses {
		rows[i] = checkRow{Ref: s.Ref.String(), Favorite: s.Favorite}
		if s.Err != nil {
			rows[i].Error = s.Err.Error()
			failed++
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(rows, cmd.Bool("pretty"))
	}

	r.writePlainln("")
	for _, row := range rows {
		switch {
		case row.Error != "":
			r.writePlain("✗ %s  %s\n", row.Ref, row.Error)
		case row.Favorite:
			r.writePlain("%s %s\n", formatter.StarStyle.Render("★"), row.Ref)
		default:
			r.writePlain("☆ %s\n", row.Ref)
		}
	}
	if failed > 0 {
		r.writePlain("\n%d of %d checks failed\n", failed, len(rows))
	}
	return nil
}

// FavoritesExport snapshots the favorites and writes them to disk.
func (r *Runner) FavoritesExport(ctx context.Context, cmd *cli.Command) error {
	member, err := r.requireMember(ctx)
	if err != nil {
		return err
	}
	types, err := parseTypes(cmd.String("type"))
	if err != nil {
		return err
	}

	r.logger.Info("starting export", "member", member.Handle, "format", cmd.String("format"))

	progress, stop := r.printProgress(false)
	result, err := r.engine.Library(ctx, progress, types, tasks.LibraryOpts{Handle: member.Handle, Resolve: true})
	if err != nil {
		stop()
		return err
	}
	export, err := r.engine.Export(ctx, progress, result.Library, tasks.ExportOpts{
		Format:    cmd.String("format"),
		OutputDir: cmd.String("output"),
	})
	stop()
	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Export Complete!")
	r.writePlain("Directory: %s\n", export.Directory)
	r.writePlain("Items: %d\n", len(result.Library.Items))
	for _, f := range export.Files {
		r.writePlain("  %s\n", f)
	}
	r.writePlain("Manifest: %s\n", export.Manifest)

	if len(result.Failed) > 0 {
		r.writePlain("\nCould not resolve %d items; they were exported without titles:\n", len(result.Failed))
		for _, f := range result.Failed {
			r.writePlain("  %s: %v\n", f.Ref, f.Err)
		}
	}
	return nil
}
