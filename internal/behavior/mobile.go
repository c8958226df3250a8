package behavior

import (
	"context"

	"github.com/birnsj/Project9-V1-sub002/internal/geom"
	"github.com/birnsj/Project9-V1-sub002/internal/nav"
	"github.com/birnsj/Project9-V1-sub002/logging"
	navlog "github.com/birnsj/Project9-V1-sub002/logging/navigation"
)

// Finder is the pathfinding surface agents use. Both nav.PathFinder and
// nav.LockedPathFinder satisfy it.
type Finder interface {
	FindPath(start, goal geom.Vec2, isBlocked nav.ObstacleQuery) (nav.Path, error)
	Invalidate(start, goal geom.Vec2)
	Release(path nav.Path)
	Grid() geom.GridIndex
}

// MovementResolver performs shape-aware collision for a single step. An
// actual position equal to from means the move failed.
type MovementResolver interface {
	Move(id string, from, to geom.Vec2, avoidAgents bool) geom.Vec2
}

// Navigator bundles the per-frame collaborators of a Mobile.
type Navigator struct {
	ID        string
	Tick      uint64
	Finder    Finder
	Resolver  MovementResolver
	Obstacles nav.ObstacleQuery
	Publisher logging.Publisher

	StuckThreshold    float64
	WaypointReach     float64
	SimplifyThreshold float64
	AvoidAgents       bool
}

// Mobile is the movement capability: a position, the anchor it returns to
// and the path it is following.
type Mobile struct {
	Position geom.Vec2
	Anchor   geom.Vec2

	path     nav.Path
	next     int
	pathGoal geom.Vec2
	stuck    float64
}

const arrivalEpsilon = 1e-6

// Path returns the waypoints not yet reached.
func (m *Mobile) Path() nav.Path {
	if m.next >= len(m.path) {
		return nil
	}
	return m.path[m.next:]
}

// StuckTime is how long the agent has made no progress.
func (m *Mobile) StuckTime() float64 { return m.stuck }

// Stop drops the current path and the stuck timer.
func (m *Mobile) Stop(nv *Navigator) {
	m.dropPath(nv)
	m.stuck = 0
}

// Advance moves toward target by at most speed*dt and returns the direction
// travelled. A clear straight line is walked directly; otherwise a path is
// requested and followed. When the resolver refuses a step the slide
// fallback is tried, and once no progress has been made for longer than the
// stuck threshold the path is recomputed from the current position.
func (m *Mobile) Advance(nv *Navigator, target geom.Vec2, speed, dt float64) geom.Vec2 {
	if speed <= 0 || dt <= 0 {
		return geom.Vec2{}
	}
	if geom.Distance(m.Position, target) <= arrivalEpsilon {
		m.Stop(nv)
		return geom.Vec2{}
	}

	waypoint := target
	if nav.CanTravelDirectly(m.Position, target, nv.Obstacles) {
		m.dropPath(nv)
	} else {
		if !m.followingTo(nv, target) {
			m.plan(nv, target)
		}
		waypoint = m.currentWaypoint(nv, target)
	}

	dist := geom.Distance(m.Position, waypoint)
	if dist <= arrivalEpsilon {
		return geom.Vec2{}
	}
	dir := waypoint.Sub(m.Position).Normalized()
	step := min(speed*dt, dist)
	desired := m.Position.Add(dir.Scale(step))

	actual := m.resolve(nv, desired)
	if actual == m.Position {
		if slid := nav.TrySlide(m.Position, desired, dir, step, nv.Obstacles); slid != m.Position {
			actual = m.resolve(nv, slid)
		}
	}

	if actual == m.Position {
		m.stuck += dt
		if m.stuck >= nv.StuckThreshold {
			m.reroute(nv, target)
		}
		return dir
	}
	m.stuck = 0
	m.Position = actual
	return dir
}

func (m *Mobile) resolve(nv *Navigator, desired geom.Vec2) geom.Vec2 {
	if nv.Resolver != nil {
		return nv.Resolver.Move(nv.ID, m.Position, desired, nv.AvoidAgents)
	}
	if nv.Obstacles.Blocked(desired) {
		return m.Position
	}
	return desired
}

func (m *Mobile) followingTo(nv *Navigator, target geom.Vec2) bool {
	if m.path == nil || nv.Finder == nil {
		return false
	}
	grid := nv.Finder.Grid()
	return grid.CellOf(m.pathGoal) == grid.CellOf(target)
}

// plan requests a fresh path. On failure the agent keeps moving directly at
// the target and relies on the slide fallback.
func (m *Mobile) plan(nv *Navigator, target geom.Vec2) {
	m.dropPath(nv)
	m.pathGoal = target
	if nv.Finder == nil {
		return
	}
	path, err := nv.Finder.FindPath(m.Position, target, nv.Obstacles)
	if err != nil {
		return
	}
	path = nav.Simplify(path, nv.SimplifyThreshold)
	m.path = path
	m.next = 0
	if len(path) > 1 {
		m.next = 1
	}
}

// currentWaypoint skips reached waypoints and re-plans once if either of the
// next two legs toward an intermediate waypoint has become blocked. The leg
// into the goal is not probed since a substituted goal may sit in a blocked
// cell.
func (m *Mobile) currentWaypoint(nv *Navigator, target geom.Vec2) geom.Vec2 {
	if m.path == nil {
		return target
	}
	m.skipReached(nv.WaypointReach)
	if m.legsBlocked(nv.Obstacles) {
		nv.Finder.Invalidate(m.Position, target)
		m.plan(nv, target)
		if m.path == nil {
			return target
		}
		m.skipReached(nv.WaypointReach)
	}
	if m.next >= len(m.path) {
		return target
	}
	return m.path[m.next]
}

func (m *Mobile) skipReached(reach float64) {
	for m.next < len(m.path)-1 && geom.Distance(m.Position, m.path[m.next]) <= reach {
		m.next++
	}
}

func (m *Mobile) legsBlocked(q nav.ObstacleQuery) bool {
	from := m.Position
	for i := m.next; i < len(m.path)-1 && i < m.next+2; i++ {
		if !nav.CanTravelDirectly(from, m.path[i], q) {
			return true
		}
		from = m.path[i]
	}
	return false
}

func (m *Mobile) reroute(nv *Navigator, target geom.Vec2) {
	navlog.StuckReroute(context.Background(), nv.Publisher, nv.Tick, logging.AgentRef(nv.ID), navlog.StuckReroutePayload{
		X:            m.Position.X,
		Y:            m.Position.Y,
		TargetX:      target.X,
		TargetY:      target.Y,
		StuckSeconds: m.stuck,
	})
	m.stuck = 0
	if nv.Finder == nil {
		return
	}
	nv.Finder.Invalidate(m.Position, target)
	m.plan(nv, target)
}

func (m *Mobile) dropPath(nv *Navigator) {
	if m.path != nil && nv != nil && nv.Finder != nil {
		nv.Finder.Release(m.path)
	}
	m.path = nil
	m.next = 0
}
