package follows

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
)

// CountsBackend loads follower data of a member. All endpoints are public.
type CountsBackend interface {
	FollowCounts(ctx context.Context, memberID int64) (models.FollowCounts, error)
	Followers(ctx context.Context, memberID int64) ([]models.Member, error)
	Following(ctx context.Context, memberID int64) ([]models.Member, error)
}

// Counts holds the follower totals and lists shown on a member's profile.
type Counts struct {
	backend  CountsBackend
	memberID int64
	logger   *log.Logger

	mu        sync.RWMutex
	counts    models.FollowCounts
	loaded    bool
	adjusted  uint64
	followers []models.Member
	following []models.Member
}

// NewCounts creates empty counts for memberID.
func NewCounts(backend CountsBackend, memberID int64, logger *log.Logger) *Counts {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &Counts{
		backend:  backend,
		memberID: memberID,
		logger:   shared.WithLogger(logger, "component", "follow-counts", "member", memberID),
	}
}

// Load fetches the totals and both lists. Totals fetched while a local adjustment happened are
// dropped in favor of the adjusted values.
func (c *Counts) Load(ctx context.Context) error {
	c.mu.RLock()
	gen := c.adjusted
	c.mu.RUnlock()

	counts, err := c.backend.FollowCounts(ctx, c.memberID)
	if err != nil {
		return fmt.Errorf("failed to load follow counts: %w", err)
	}

	c.mu.Lock()
	if c.adjusted == gen {
		c.counts, c.loaded = counts, true
	}
	c.mu.Unlock()

	return c.Refetch(ctx)
}

// Refetch reloads the follower and following lists. Totals are left as they are.
func (c *Counts) Refetch(ctx context.Context) error {
	followers, err := c.backend.Followers(ctx, c.memberID)
	if err != nil {
		return fmt.Errorf("failed to load followers: %w", err)
	}
	following, err := c.backend.Following(ctx, c.memberID)
	if err != nil {
		return fmt.Errorf("failed to load following: %w", err)
	}

	c.mu.Lock()
	c.followers, c.following = followers, following
	c.mu.Unlock()
	c.logger.Debug("follow lists refreshed", "followers", len(followers), "following", len(following))
	return nil
}

// AdjustFollowers shifts the follower total by delta, never below zero.
func (c *Counts) AdjustFollowers(delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.adjusted++
	c.counts.Followers = max(0, c.counts.Followers+delta)
}

// AdjustFollowing shifts the following total by delta, never below zero.
func (c *Counts) AdjustFollowing(delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.adjusted++
	c.counts.Following = max(0, c.counts.Following+delta)
}

// Counts returns the current totals and whether they were loaded.
func (c *Counts) Counts() (models.FollowCounts, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.counts, c.loaded
}

// Followers returns the last fetched follower list.
func (c *Counts) Followers() []models.Member {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Member(nil), c.followers...)
}

// Following returns the last fetched following list.
func (c *Counts) Following() []models.Member {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Member(nil), c.following...)
}
