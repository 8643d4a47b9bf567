package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
)

func checkMemberID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: member id must be positive, got %d", shared.ErrInvalidArgument, id)
	}
	return nil
}

// IsFollowing reports whether the session member follows followedID.
func (b *Backend) IsFollowing(ctx context.Context, followedID int64) (bool, error) {
	if err := checkMemberID(followedID); err != nil {
		return false, err
	}
	var resp struct {
		Following bool `json:"following"`
	}
	if err := b.FetchJSON(ctx, memberPath("/followers/is-following/", followedID, ""), FetchOpts{Auth: true}, &resp); err != nil {
		return false, err
	}
	return resp.Following, nil
}

// Follow creates the edge session member -> id.
func (b *Backend) Follow(ctx context.Context, id int64) error {
	if err := checkMemberID(id); err != nil {
		return err
	}
	_, err := b.Fetch(ctx, memberPath("/followers/", id, ""), FetchOpts{Auth: true, Method: http.MethodPost})
	return err
}

// Unfollow removes the edge session member -> id.
func (b *Backend) Unfollow(ctx context.Context, id int64) error {
	if err := checkMemberID(id); err != nil {
		return err
	}
	_, err := b.Fetch(ctx, memberPath("/followers/", id, ""), FetchOpts{Auth: true, Method: http.MethodDelete})
	return err
}

// SetFollowing follows or unfollows id depending on on.
func (b *Backend) SetFollowing(ctx context.Context, id int64, on bool) error {
	if on {
		return b.Follow(ctx, id)
	}
	return b.Unfollow(ctx, id)
}

// Followers lists the members following memberID.
func (b *Backend) Followers(ctx context.Context, memberID int64) ([]models.Member, error) {
	return b.memberList(ctx, memberPath("/followers/", memberID, "/followers"))
}

// Following lists the members memberID follows.
func (b *Backend) Following(ctx context.Context, memberID int64) ([]models.Member, error) {
	return b.memberList(ctx, memberPath("/followers/", memberID, "/following"))
}

func (b *Backend) memberList(ctx context.Context, path string) ([]models.Member, error) {
	var members []models.Member
	if err := b.FetchJSON(ctx, path, FetchOpts{}, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// FollowCounts returns the follower and following totals of memberID.
func (b *Backend) FollowCounts(ctx context.Context, memberID int64) (models.FollowCounts, error) {
	var counts models.FollowCounts
	if err := checkMemberID(memberID); err != nil {
		return counts, err
	}
	err := b.FetchJSON(ctx, memberPath("/followers/", memberID, "/counts"), FetchOpts{}, &counts)
	return counts, err
}
