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

type followLists struct {
	Member    *models.Member       `json:"member"`
	Counts    *models.FollowCounts `json:"counts,omitempty"`
	Followers []models.Member      `json:"followers"`
	Following []models.Member      `json:"following"`
}

// followTarget resolves the handle argument to another member.
func (r *Runner) followTarget(ctx context.Context, cmd *cli.Command, self *models.Member) (*models.Member, error) {
	handle := strings.TrimPrefix(cmd.StringArg("handle"), "@")
	if handle == "" {
		return nil, fmt.Errorf("%w: handle", shared.ErrMissingArgument)
	}
	target, err := r.public.MemberByHandle(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("failed to load @%s: %w", handle, err)
	}
	if target.ID == self.ID {
		return nil, fmt.Errorf("%w: you cannot follow yourself", shared.ErrInvalidArgument)
	}
	return target, nil
}

func (r *Runner) setFollowing(ctx context.Context, cmd *cli.Command, on bool) error {
	member, err := r.requireMember(ctx)
	if err != nil {
		return err
	}
	target, err := r.followTarget(ctx, cmd, member)
	if err != nil {
		return err
	}

	// counts are only adjusted from a known status; otherwise they are loaded after the change
	known := true
	counts := follows.NewCounts(r.public, target.ID, r.logger)
	toggle := follows.NewToggle(r.backend, target.ID, follows.ToggleOpts{
		Logger: r.logger,
		OnChange: func(delta int) {
			if known {
				counts.AdjustFollowers(delta)
			}
		},
	})
	defer toggle.Unmount()

	if err := toggle.Mount(ctx); err != nil {
		r.logger.Debug("follow status unknown", "member", target.ID, "error", err)
		known = false
	} else if err := counts.Load(ctx); err != nil {
		r.logger.Warn("follow counts unavailable", "member", target.ID, "error", err)
	}

	if err := toggle.Set(ctx, on); err != nil {
		return fmt.Errorf("failed to update follow of @%s: %w", target.Handle, err)
	}
	if !known {
		if err := counts.Load(ctx); err != nil {
			r.logger.Warn("follow counts unavailable", "member", target.ID, "error", err)
		}
	}

	verb := "Following"
	if !on {
		verb = "Unfollowed"
	}
	r.writePlain("%s @%s\n", verb, target.Handle)
	if c, ok := counts.Counts(); ok {
		r.writePlain("%s\n", formatter.RenderCounts(c))
	}
	return nil
}

// FollowAdd follows another member.
func (r *Runner) FollowAdd(ctx context.Context, cmd *cli.Command) error {
	return r.setFollowing(ctx, cmd, true)
}

// FollowRemove unfollows another member.
func (r *Runner) FollowRemove(ctx context.Context, cmd *cli.Command) error {
	return r.setFollowing(ctx, cmd, false)
}

// FollowStatus reports whether the signed-in member follows another member.
func (r *Runner) FollowStatus(ctx context.Context, cmd *cli.Command) error {
	member, err := r.requireMember(ctx)
	if err != nil {
		return err
	}
	target, err := r.followTarget(ctx, cmd, member)
	if err != nil {
		return err
	}

	toggle := follows.NewToggle(r.backend, target.ID, follows.ToggleOpts{Logger: r.logger})
	defer toggle.Unmount()

	if err := toggle.Mount(ctx); err != nil {
		return fmt.Errorf("failed to check follow of @%s: %w", target.Handle, err)
	}
	if following, _ := toggle.Following(); following {
		return r.writePlain("You follow @%s\n", target.Handle)
	}
	return r.writePlain("You do not follow @%s\n", target.Handle)
}

// FollowList prints followers and followed members of a handle, or of the signed-in member.
func (r *Runner) FollowList(ctx context.Context, cmd *cli.Command) error {
	var member *models.Member
	if handle := strings.TrimPrefix(cmd.StringArg("handle"), "@"); handle != "" {
		m, err := r.public.MemberByHandle(ctx, handle)
		if err != nil {
			return fmt.Errorf("failed to load @%s: %w", handle, err)
		}
		member = m
	} else {
		m, err := r.requireMember(ctx)
		if err != nil {
			return err
		}
		member = m
	}

	counts := follows.NewCounts(r.public, member.ID, r.logger)
	if err := counts.Load(ctx); err != nil {
		return err
	}

	out := followLists{Member: member, Followers: counts.Followers(), Following: counts.Following()}
	if c, ok := counts.Counts(); ok {
		out.Counts = &c
	}

	if cmd.Bool("json") {
		return r.writeJSON(out, cmd.Bool("pretty"))
	}

	r.writePlain("%s\n", formatter.RenderMember(out.Member, out.Counts))
	r.writePlainln("Followers (%d)", len(out.Followers))
	for _, m := range out.Followers {
		r.writePlain("  @%s  %s\n", m.Handle, m.Name)
	}
	r.writePlainln("Following (%d)", len(out.Following))
	for _, m := range out.Following {
		r.writePlain("  @%s  %s\n", m.Handle, m.Name)
	}
	return nil
}
