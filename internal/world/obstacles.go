// Package world is a reference implementation of the collaborators the
// movement core consumes: a rectangle obstacle map, obstacle and
// line-of-sight queries, and a swept, axis-separated movement resolver.
package world

import (
	"math"

	"github.com/birnsj/Project9-V1-sub002/internal/geom"
)

// Obstacle is an axis-aligned blocking rectangle.
type Obstacle struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether p lies inside the rectangle grown by pad.
func (o Obstacle) Contains(p geom.Vec2, pad float64) bool {
	return p.X >= o.X-pad && p.X <= o.X+o.Width+pad &&
		p.Y >= o.Y-pad && p.Y <= o.Y+o.Height+pad
}

// CircleOverlap reports whether a circle intersects the rectangle.
func (o Obstacle) CircleOverlap(center geom.Vec2, radius float64) bool {
	closestX := geom.Clamp(center.X, o.X, o.X+o.Width)
	closestY := geom.Clamp(center.Y, o.Y, o.Y+o.Height)
	dx := center.X - closestX
	dy := center.Y - closestY
	return dx*dx+dy*dy < radius*radius
}

// segmentHit reports whether the segment from a to b crosses the rectangle
// strictly before b.
func (o Obstacle) segmentHit(a, b geom.Vec2) bool {
	tMin, tMax := 0.0, 1.0
	d := b.Sub(a)
	for _, axis := range [2]struct{ origin, delta, lo, hi float64 }{
		{a.X, d.X, o.X, o.X + o.Width},
		{a.Y, d.Y, o.Y, o.Y + o.Height},
	} {
		if math.Abs(axis.delta) < 1e-12 {
			if axis.origin < axis.lo || axis.origin > axis.hi {
				return false
			}
			continue
		}
		t1 := (axis.lo - axis.origin) / axis.delta
		t2 := (axis.hi - axis.origin) / axis.delta
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return false
		}
	}
	return tMin < 1
}

// Map is a bounded rectangle world with static obstacles.
type Map struct {
	Width     float64    `json:"width"`
	Height    float64    `json:"height"`
	Obstacles []Obstacle `json:"obstacles"`
}

// InBounds reports whether a circle of radius fits inside the map.
func (m *Map) InBounds(p geom.Vec2, radius float64) bool {
	return p.X >= radius && p.Y >= radius && p.X <= m.Width-radius && p.Y <= m.Height-radius
}

// Blocked reports whether a circle of radius at p leaves the map or touches
// an obstacle.
func (m *Map) Blocked(p geom.Vec2, radius float64) bool {
	if !m.InBounds(p, radius) {
		return true
	}
	for _, obs := range m.Obstacles {
		if radius > 0 {
			if obs.CircleOverlap(p, radius) {
				return true
			}
			continue
		}
		if obs.Contains(p, 0) {
			return true
		}
	}
	return false
}

// SegmentClear reports whether the segment between a and b misses every
// obstacle. Bounds are not considered.
func (m *Map) SegmentClear(a, b geom.Vec2) bool {
	for _, obs := range m.Obstacles {
		if obs.segmentHit(a, b) {
			return false
		}
	}
	return true
}
