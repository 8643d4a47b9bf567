package models

import "time"

// Review is a member's rating and comment on a media item.
type Review struct {
	ID        int64     `json:"id"`
	MemberID  int64     `json:"memberId"`
	Handle    string    `json:"handle,omitempty"`
	MediaType MediaType `json:"mediaType"`
	MediaID   string    `json:"mediaId"`
	Rating    float64   `json:"rating"`
	Text      string    `json:"text,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ReviewInput is the payload for creating a review.
type ReviewInput struct {
	MediaType MediaType `json:"mediaType" validate:"required,oneof=movie series album"`
	MediaID   string    `json:"mediaId" validate:"required"`
	Rating    float64   `json:"rating" validate:"gte=0,lte=5,halfstep"`
	Text      string    `json:"text,omitempty" validate:"max=2000"`
}

// Ref returns the reviewed item.
func (r ReviewInput) Ref() MediaRef {
	return MediaRef{Type: r.MediaType, ID: r.MediaID}
}

// ReviewAverage summarises the ratings of one item.
type ReviewAverage struct {
	MediaType MediaType `json:"mediaType"`
	MediaID   string    `json:"mediaId"`
	Average   float64   `json:"average"`
	Count     int       `json:"count"`
}

// FollowCounts are the follower/following totals of a member.
type FollowCounts struct {
	Followers int `json:"followers"`
	Following int `json:"following"`
}

// FollowEdge is the directed relation follower -> followed.
type FollowEdge struct {
	FollowerID int64 `json:"followerId"`
	FollowedID int64 `json:"followedId"`
}
