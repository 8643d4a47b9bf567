package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/shelf/internal/follows"
	"github.com/desertthunder/shelf/internal/formatter"
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
	"github.com/urfave/cli/v3"
)

type memberProfile struct {
	Member  *models.Member       `json:"member"`
	Counts  *models.FollowCounts `json:"counts,omitempty"`
	Reviews []models.Review      `json:"reviews,omitempty"`
}

// loadCounts loads follow totals; a failure is logged and leaves the counts out.
func (r *Runner) loadCounts(ctx context.Context, memberID int64) *models.FollowCounts {
	counts := follows.NewCounts(r.public, memberID, r.logger)
	if err := counts.Load(ctx); err != nil {
		r.logger.Warn("follow counts unavailable", "member", memberID, "error", err)
	}
	c, ok := counts.Counts()
	if !ok {
		return nil
	}
	return &c
}

// MemberShow prints the signed-in member with follow counts.
func (r *Runner) MemberShow(ctx context.Context, cmd *cli.Command) error {
	member, err := r.requireMember(ctx)
	if err != nil {
		return err
	}

	profile := memberProfile{Member: member, Counts: r.loadCounts(ctx, member.ID)}
	if cmd.Bool("json") {
		return r.writeJSON(profile, cmd.Bool("pretty"))
	}
	return r.writePlain("%s\n", formatter.RenderMember(profile.Member, profile.Counts))
}

// MemberUpdate sends only the fields whose flags were given.
func (r *Runner) MemberUpdate(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireMember(ctx); err != nil {
		return err
	}

	var upd models.MemberUpdate
	for flag, field := range map[string]**string{
		"name":       &upd.Name,
		"birth-date": &upd.BirthDate,
		"handle":     &upd.Handle,
		"gender":     &upd.Gender,
		"bio":        &upd.Bio,
		"image":      &upd.ProfileImageURL,
	} {
		if cmd.IsSet(flag) {
			v := cmd.String(flag)
			*field = &v
		}
	}
	if upd.Gender != nil {
		g := strings.ToLower(*upd.Gender)
		upd.Gender = &g
	}
	if upd.Empty() {
		return fmt.Errorf("%w: give at least one field to update", shared.ErrMissingArgument)
	}

	member, err := r.backend.UpdateMember(ctx, upd)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if err := r.session.SetMember(member); err != nil {
		r.logger.Warn("failed to store updated member", "error", err)
	}

	r.logger.Info("profile updated", "member", member.ID)
	return r.writePlain("%s\n", formatter.RenderMember(member, nil))
}

// MemberView prints another member's public profile.
func (r *Runner) MemberView(ctx context.Context, cmd *cli.Command) error {
	handle := strings.TrimPrefix(cmd.StringArg("handle"), "@")
	if handle == "" {
		return fmt.Errorf("%w: handle", shared.ErrMissingArgument)
	}

	member, err := r.public.MemberByHandle(ctx, handle)
	if err != nil {
		return fmt.Errorf("failed to load @%s: %w", handle, err)
	}

	profile := memberProfile{Member: member, Counts: r.loadCounts(ctx, member.ID)}
	if cmd.Bool("reviews") {
		if profile.Reviews, err = r.public.MemberReviews(ctx, member.ID); err != nil {
			return fmt.Errorf("failed to load reviews of @%s: %w", handle, err)
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(profile, cmd.Bool("pretty"))
	}

	r.writePlain("%s\n", formatter.RenderMember(profile.Member, profile.Counts))
	if cmd.Bool("reviews") {
		r.writePlainln("%s", formatter.RenderReviews(profile.Reviews))
	}
	return nil
}
