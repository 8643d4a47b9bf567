package services

import (
	"context"
	"net/http"
	"strings"

	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
)

// Reviews lists the reviews of ref.
func (b *Backend) Reviews(ctx context.Context, ref models.MediaRef) ([]models.Review, error) {
	var reviews []models.Review
	if err := b.FetchJSON(ctx, mediaPath("/review/", ref), FetchOpts{}, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// ReviewAverage fetches the rating summary of ref.
func (b *Backend) ReviewAverage(ctx context.Context, ref models.MediaRef) (models.ReviewAverage, error) {
	var avg models.ReviewAverage
	err := b.FetchJSON(ctx, mediaPath("/review/", ref)+"/average", FetchOpts{}, &avg)
	return avg, err
}

// CreateReview posts a review as the session member.
func (b *Backend) CreateReview(ctx context.Context, in models.ReviewInput) (*models.Review, error) {
	in.Text = strings.TrimSpace(in.Text)
	if err := shared.ValidateStruct(in); err != nil {
		return nil, err
	}
	ref, err := models.NewMediaRef(in.MediaType, in.MediaID)
	if err != nil {
		return nil, err
	}
	in.MediaID = ref.ID

	var review models.Review
	if err := b.FetchJSON(ctx, "/review", FetchOpts{Auth: true, Method: http.MethodPost, Body: in}, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

// MemberReviews lists the reviews written by memberID.
func (b *Backend) MemberReviews(ctx context.Context, memberID int64) ([]models.Review, error) {
	if err := checkMemberID(memberID); err != nil {
		return nil, err
	}
	var reviews []models.Review
	if err := b.FetchJSON(ctx, memberPath("/review/member/", memberID, ""), FetchOpts{}, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}
