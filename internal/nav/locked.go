package nav

import (
	"github.com/sasha-s/go-deadlock"

	"github.com/birnsj/Project9-V1-sub002/internal/geom"
)

// LockedPathFinder serialises every call into one PathFinder behind a single
// mutex. Searches never interleave, at the cost of running one at a time.
type LockedPathFinder struct {
	mu    deadlock.Mutex
	inner *PathFinder
}

func NewLockedPathFinder(inner *PathFinder) *LockedPathFinder {
	return &LockedPathFinder{inner: inner}
}

func (l *LockedPathFinder) FindPath(start, goal geom.Vec2, isBlocked ObstacleQuery) (Path, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inner.FindPath(start, goal, isBlocked)
}

func (l *LockedPathFinder) Invalidate(start, goal geom.Vec2) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.inner.Invalidate(start, goal)
}

func (l *LockedPathFinder) Release(path Path) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.inner.Release(path)
}

func (l *LockedPathFinder) Grid() geom.GridIndex {
	return l.inner.Grid()
}

func (l *LockedPathFinder) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inner.Stats()
}

func (l *LockedPathFinder) SetTick(tick uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.inner.SetTick(tick)
}
