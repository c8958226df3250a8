package nav

import (
	"context"
	"time"

	"github.com/birnsj/Project9-V1-sub002/internal/geom"
	"github.com/birnsj/Project9-V1-sub002/internal/telemetry"
	"github.com/birnsj/Project9-V1-sub002/logging"
	navlog "github.com/birnsj/Project9-V1-sub002/logging/navigation"
)

// Stats counts PathFinder activity since construction.
type Stats struct {
	Searches       uint64
	CacheHits      uint64
	CacheMisses    uint64
	NoPath         uint64
	IterationLimit uint64
	LastIterations int
	CacheEntries   int
}

// Deps bundles the optional collaborators of a PathFinder.
type Deps struct {
	Publisher logging.Publisher
	Metrics   telemetry.Metrics
	Clock     logging.Clock
}

// PathFinder runs A* over the implicit 8-connected grid induced by its
// GridIndex and a caller supplied ObstacleQuery. It owns its search buffers,
// result cache and path pool and is not safe for concurrent use; wrap it in a
// LockedPathFinder when agent updates run in parallel.
type PathFinder struct {
	cfg    Config
	grid   geom.GridIndex
	search *SearchContext
	cache  *pathCache
	pool   *PathPool

	publisher logging.Publisher
	metrics   telemetry.Metrics
	clock     logging.Clock

	tick        uint64
	lastCleanup time.Time
	stats       Stats
}

func NewPathFinder(cfg Config, deps Deps) *PathFinder {
	cfg = cfg.normalized()
	publisher := deps.Publisher
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = telemetry.NopMetrics()
	}
	clock := deps.Clock
	if clock == nil {
		clock = logging.ClockFunc(time.Now)
	}
	return &PathFinder{
		cfg:         cfg,
		grid:        geom.NewGridIndex(cfg.CellWidth, cfg.CellHeight),
		search:      newSearchContext(),
		cache:       newPathCache(cfg.CacheDuration, cfg.MinRerequestInterval),
		pool:        NewPathPool(cfg.PoolCap, defaultPathCapacity),
		publisher:   publisher,
		metrics:     metrics,
		clock:       clock,
		lastCleanup: clock.Now(),
	}
}

// Grid returns the quantization used for searches and cache keys.
func (pf *PathFinder) Grid() geom.GridIndex { return pf.grid }

// SetTick records the simulation tick used to tag published events.
func (pf *PathFinder) SetTick(tick uint64) { pf.tick = tick }

// Stats returns a copy of the activity counters.
func (pf *PathFinder) Stats() Stats {
	stats := pf.stats
	stats.CacheEntries = pf.cache.len()
	return stats
}

// Release hands a path obtained from FindPath back to the pool.
func (pf *PathFinder) Release(path Path) {
	pf.pool.Put(path)
}

// Invalidate drops the cached result for the cells start and goal quantize to.
func (pf *PathFinder) Invalidate(start, goal geom.Vec2) {
	pf.cache.invalidate(newCacheKey(pf.grid.CellOf(start), pf.grid.CellOf(goal)))
}

// FindPath returns a path whose first point is start and last point is goal.
// Successes and failures are cached per quantized (start, goal) pair; cache
// hits return a copy the caller owns. Failures are ErrNoPath or
// ErrIterationLimit.
func (pf *PathFinder) FindPath(start, goal geom.Vec2, isBlocked ObstacleQuery) (Path, error) {
	now := pf.clock.Now()
	pf.cleanup(now)

	startCell := pf.grid.CellOf(start)
	goalCell := pf.grid.CellOf(goal)

	if startCell == goalCell && !isBlocked.Blocked(pf.grid.Center(goalCell)) {
		path := pf.pool.Get()
		return append(path, goal), nil
	}

	key := newCacheKey(startCell, goalCell)
	if entry, ok := pf.cache.lookup(key, now); ok {
		pf.stats.CacheHits++
		pf.metrics.Add("nav.cache_hit", 1)
		if entry.err != nil {
			pf.publishFailure(start, goal, entry.err, 0, true)
			return nil, entry.err
		}
		return pf.pool.CloneInto(entry.path), nil
	}
	pf.stats.CacheMisses++
	pf.metrics.Add("nav.cache_miss", 1)

	path, err := pf.run(start, goal, startCell, goalCell, isBlocked)
	pf.cache.store(key, path, err, now)
	if err != nil {
		pf.publishFailure(start, goal, err, pf.stats.LastIterations, false)
		return nil, err
	}
	return pf.pool.CloneInto(path), nil
}

func (pf *PathFinder) run(start, goal geom.Vec2, startCell, goalCell geom.Cell, isBlocked ObstacleQuery) (Path, error) {
	pf.stats.Searches++
	pf.metrics.Add("nav.search", 1)

	blocked := func(c geom.Cell) bool { return pf.cellBlocked(c, isBlocked) }

	if blocked(goalCell) {
		if alt, ok := pf.nearestOpen(goalCell, blocked); ok {
			goalCell = alt
		} else {
			pf.publishUnresolved("goal", goalCell)
		}
	}
	if blocked(startCell) {
		if alt, ok := pf.nearestOpen(startCell, blocked); ok {
			startCell = alt
		} else {
			pf.publishUnresolved("start", startCell)
		}
	}

	sc := pf.search
	sc.reset()
	err := sc.astar(startCell, goalCell, pf.cfg.MaxIterations, blocked)
	pf.stats.LastIterations = sc.iterations
	if err != nil {
		switch err {
		case ErrIterationLimit:
			pf.stats.IterationLimit++
			pf.metrics.Add("nav.iteration_limit", 1)
		default:
			pf.stats.NoPath++
			pf.metrics.Add("nav.no_path", 1)
		}
		return nil, err
	}

	path := make(Path, 0, len(sc.cells)+1)
	for _, cell := range sc.cells {
		path = append(path, pf.grid.Center(cell))
	}
	path[0] = start
	path = append(path, goal)
	return path, nil
}

// cellBlocked tests the cell centre and four inset corner points so a search
// never routes diagonally past a thin obstacle that misses the centre.
func (pf *PathFinder) cellBlocked(c geom.Cell, isBlocked ObstacleQuery) bool {
	if isBlocked == nil {
		return false
	}
	if isBlocked(pf.grid.Center(c)) {
		return true
	}
	for _, corner := range pf.grid.Corners(c, pf.cfg.CornerInset) {
		if isBlocked(corner) {
			return true
		}
	}
	return false
}

// nearestOpen scans square rings of growing radius around c and returns the
// closest unblocked cell of the first ring that has one.
func (pf *PathFinder) nearestOpen(c geom.Cell, blocked func(geom.Cell) bool) (geom.Cell, bool) {
	for r := 1; r <= pf.cfg.MaxSubstituteRadius; r++ {
		best := c
		bestDist := -1
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if abs(dx) != r && abs(dy) != r {
					continue
				}
				candidate := c.Add(dx, dy)
				if blocked(candidate) {
					continue
				}
				dist := dx*dx + dy*dy
				if bestDist < 0 || dist < bestDist {
					best = candidate
					bestDist = dist
				}
			}
		}
		if bestDist >= 0 {
			return best, true
		}
	}
	return c, false
}

func (pf *PathFinder) cleanup(now time.Time) {
	if now.Sub(pf.lastCleanup) < pf.cfg.CleanupInterval {
		return
	}
	pf.lastCleanup = now
	if evicted := pf.cache.evict(now); evicted > 0 {
		pf.metrics.Add("nav.cache_evicted", uint64(evicted))
		navlog.CacheEvicted(context.Background(), pf.publisher, pf.tick, navlog.CacheEvictedPayload{
			Evicted:   evicted,
			Remaining: pf.cache.len(),
		})
	}
}

func (pf *PathFinder) publishFailure(start, goal geom.Vec2, err error, iterations int, cached bool) {
	navlog.PathFailed(context.Background(), pf.publisher, pf.tick, logging.EntityRef{Kind: logging.EntityKindSystem}, navlog.PathFailedPayload{
		Reason:     failureReason(err),
		StartX:     start.X,
		StartY:     start.Y,
		GoalX:      goal.X,
		GoalY:      goal.Y,
		Iterations: iterations,
		Cached:     cached,
	})
}

func (pf *PathFinder) publishUnresolved(endpoint string, cell geom.Cell) {
	navlog.EndpointUnresolved(context.Background(), pf.publisher, pf.tick, navlog.EndpointUnresolvedPayload{
		Endpoint: endpoint,
		CellX:    cell.X,
		CellY:    cell.Y,
		Radius:   pf.cfg.MaxSubstituteRadius,
	})
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
