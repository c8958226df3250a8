// Package nav implements grid-quantized A* pathfinding with a result cache and
// pooled path buffers, path simplification, direct-line probing and the
// isometric slide fallback used when a straight move is blocked.
package nav

import "github.com/birnsj/Project9-V1-sub002/internal/geom"

// ObstacleQuery reports whether a world point is blocked. The core does not
// care whether terrain, agents or both are encoded. A nil query is never
// blocked.
type ObstacleQuery func(p geom.Vec2) bool

// LineOfSightQuery reports whether the segment between two points is
// occluded.
type LineOfSightQuery func(from, to geom.Vec2) bool

// Blocked evaluates q at p, treating a nil query as open.
func (q ObstacleQuery) Blocked(p geom.Vec2) bool {
	if q == nil {
		return false
	}
	return q(p)
}

// Occluded evaluates q, treating a nil query as clear.
func (q LineOfSightQuery) Occluded(from, to geom.Vec2) bool {
	if q == nil {
		return false
	}
	return q(from, to)
}

// ProbeLineOfSight builds a line-of-sight query from an obstacle query by
// sampling the segment with CanTravelDirectly.
func ProbeLineOfSight(q ObstacleQuery) LineOfSightQuery {
	if q == nil {
		return nil
	}
	return func(from, to geom.Vec2) bool {
		return !CanTravelDirectly(from, to, q)
	}
}
