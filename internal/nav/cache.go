package nav

import (
	"time"

	"github.com/birnsj/Project9-V1-sub002/internal/geom"
)

type cacheKey struct {
	startX, startY int
	endX, endY     int
}

func newCacheKey(start, goal geom.Cell) cacheKey {
	return cacheKey{startX: start.X, startY: start.Y, endX: goal.X, endY: goal.Y}
}

// cacheEntry stores a private path (never handed to callers) or the failure
// that a search produced.
type cacheEntry struct {
	path       Path
	err        error
	createdAt  time.Time
	lastServed time.Time
	reserved   bool
}

type pathCache struct {
	entries      map[cacheKey]*cacheEntry
	duration     time.Duration
	minRerequest time.Duration
}

func newPathCache(duration, minRerequest time.Duration) *pathCache {
	return &pathCache{
		entries:      make(map[cacheKey]*cacheEntry),
		duration:     duration,
		minRerequest: minRerequest,
	}
}

// lookup returns a valid entry. An expired entry is served one more time when
// it was last served less than minRerequest ago, which throttles callers that
// re-ask every frame for an unreachable target.
func (c *pathCache) lookup(key cacheKey, now time.Time) (*cacheEntry, bool) {
	if c.duration <= 0 {
		return nil, false
	}
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if now.Sub(entry.createdAt) <= c.duration {
		entry.lastServed = now
		return entry, true
	}
	if !entry.reserved && now.Sub(entry.lastServed) < c.minRerequest {
		entry.reserved = true
		entry.lastServed = now
		return entry, true
	}
	return nil, false
}

func (c *pathCache) store(key cacheKey, path Path, err error, now time.Time) {
	if c.duration <= 0 {
		return
	}
	c.entries[key] = &cacheEntry{path: path, err: err, createdAt: now, lastServed: now}
}

func (c *pathCache) invalidate(key cacheKey) {
	delete(c.entries, key)
}

// evict removes entries older than twice the cache duration.
func (c *pathCache) evict(now time.Time) int {
	evicted := 0
	limit := 2 * c.duration
	for key, entry := range c.entries {
		if now.Sub(entry.createdAt) > limit {
			delete(c.entries, key)
			evicted++
		}
	}
	return evicted
}

func (c *pathCache) len() int { return len(c.entries) }
