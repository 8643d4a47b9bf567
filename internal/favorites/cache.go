package favorites

import (
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/shelf/internal/events"
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
)

type cacheKey struct {
	member int64
	ref    models.MediaRef
}

// Cache holds known favorite states keyed by member and item.
type Cache struct {
	bus    *events.Bus
	logger *log.Logger

	mu      sync.RWMutex
	entries map[cacheKey]bool
}

// NewCache creates a cache that announces confirmed changes on bus. bus may be nil.
func NewCache(bus *events.Bus, logger *log.Logger) *Cache {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &Cache{
		bus:     bus,
		logger:  shared.WithLogger(logger, "component", "favorites-cache"),
		entries: make(map[cacheKey]bool),
	}
}

// Bus returns the bus the cache publishes on.
func (c *Cache) Bus() *events.Bus {
	return c.bus
}

// Get returns the cached state and whether one is known.
func (c *Cache) Get(memberID int64, ref models.MediaRef) (favorite, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	favorite, ok = c.entries[cacheKey{memberID, ref}]
	return favorite, ok
}

// Store records a state read from the backend without notifying anyone.
func (c *Cache) Store(memberID int64, ref models.MediaRef, favorite bool) {
	c.mu.Lock()
	c.entries[cacheKey{memberID, ref}] = favorite
	c.mu.Unlock()
}

// Set records a confirmed mutation and publishes it.
func (c *Cache) Set(memberID int64, ref models.MediaRef, favorite bool) {
	c.Store(memberID, ref, favorite)
	c.publish(memberID, ref)
}

// Invalidate forgets the state of ref and publishes so trackers re-query.
func (c *Cache) Invalidate(memberID int64, ref models.MediaRef) {
	c.mu.Lock()
	delete(c.entries, cacheKey{memberID, ref})
	c.mu.Unlock()
	c.publish(memberID, ref)
}

// ClearMember drops every entry of memberID, e.g. on logout.
func (c *Cache) ClearMember(memberID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.member == memberID {
			delete(c.entries, k)
		}
	}
}

// Reset drops every entry.
func (c *Cache) Reset() {
	c.mu.Lock()
	clear(c.entries)
	c.mu.Unlock()
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) publish(memberID int64, ref models.MediaRef) {
	if c.bus == nil {
		return
	}
	if err := c.bus.Publish(events.KindFavorite, ref, memberID); err != nil {
		c.logger.Warn("failed to publish favorite change", "ref", ref.String(), "err", err)
	}
}
