package world

import (
	"math"
	"sort"

	"github.com/birnsj/Project9-V1-sub002/internal/geom"
)

// Resolver moves circular bodies one step at a time, resolving each axis
// separately so a blocked axis does not cancel motion along the other.
type Resolver struct {
	Map    *Map
	bodies map[string]*Body
}

func NewResolver(m *Map) *Resolver {
	return &Resolver{Map: m, bodies: make(map[string]*Body)}
}

// Register adds or replaces a body.
func (r *Resolver) Register(b Body) {
	copied := b
	r.bodies[b.ID] = &copied
}

// Remove forgets a body.
func (r *Resolver) Remove(id string) { delete(r.bodies, id) }

// Position returns the stored position of a body.
func (r *Resolver) Position(id string) (geom.Vec2, bool) {
	b, ok := r.bodies[id]
	if !ok {
		return geom.Vec2{}, false
	}
	return b.Position, true
}

// Bodies returns copies of every registered body ordered by ID.
func (r *Resolver) Bodies() []Body {
	out := make([]Body, 0, len(r.bodies))
	for _, b := range r.bodies {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Move resolves a step from from toward to for body id and returns where it
// ends up. The X axis is resolved first, then Y from the new X. Unknown IDs
// move as a point.
func (r *Resolver) Move(id string, from, to geom.Vec2, avoidAgents bool) geom.Vec2 {
	radius := 0.0
	if b, ok := r.bodies[id]; ok {
		radius = b.Radius
	}

	next := from
	if to.X != from.X {
		candidate := geom.Vec2{X: r.clampX(to.X, radius), Y: from.Y}
		if !r.blocked(id, candidate, radius, avoidAgents) {
			next.X = candidate.X
		} else {
			next.X = r.stopAtX(from, candidate.X, radius)
		}
	}
	if to.Y != from.Y {
		candidate := geom.Vec2{X: next.X, Y: r.clampY(to.Y, radius)}
		if !r.blocked(id, candidate, radius, avoidAgents) {
			next.Y = candidate.Y
		} else {
			next.Y = r.stopAtY(next, candidate.Y, radius)
		}
	}
	if b, ok := r.bodies[id]; ok {
		b.Position = next
	}
	return next
}

func (r *Resolver) blocked(id string, p geom.Vec2, radius float64, avoidAgents bool) bool {
	if r.Map != nil {
		for _, obs := range r.Map.Obstacles {
			if obs.CircleOverlap(p, radius) || obs.Contains(p, 0) {
				return true
			}
		}
	}
	return avoidAgents && r.overlapsAgent(id, p, radius)
}

func (r *Resolver) overlapsAgent(id string, p geom.Vec2, radius float64) bool {
	for otherID, other := range r.bodies {
		if otherID == id {
			continue
		}
		if geom.Distance(p, other.Position) < radius+other.Radius {
			return true
		}
	}
	return false
}

// stopAtX slides the body up to the nearest obstacle edge on the X axis.
func (r *Resolver) stopAtX(from geom.Vec2, proposedX, radius float64) float64 {
	newX := proposedX
	if r.Map == nil {
		return from.X
	}
	delta := proposedX - from.X
	for _, obs := range r.Map.Obstacles {
		if from.Y < obs.Y-radius || from.Y > obs.Y+obs.Height+radius {
			continue
		}
		if delta > 0 {
			boundary := obs.X - radius
			if from.X <= boundary && newX > boundary {
				newX = boundary
			}
		} else {
			boundary := obs.X + obs.Width + radius
			if from.X >= boundary && newX < boundary {
				newX = boundary
			}
		}
	}
	if newX == proposedX {
		return from.X
	}
	return r.clampX(newX, radius)
}

// stopAtY is stopAtX for the Y axis.
func (r *Resolver) stopAtY(from geom.Vec2, proposedY, radius float64) float64 {
	newY := proposedY
	if r.Map == nil {
		return from.Y
	}
	delta := proposedY - from.Y
	for _, obs := range r.Map.Obstacles {
		if from.X < obs.X-radius || from.X > obs.X+obs.Width+radius {
			continue
		}
		if delta > 0 {
			boundary := obs.Y - radius
			if from.Y <= boundary && newY > boundary {
				newY = boundary
			}
		} else {
			boundary := obs.Y + obs.Height + radius
			if from.Y >= boundary && newY < boundary {
				newY = boundary
			}
		}
	}
	if newY == proposedY {
		return from.Y
	}
	return r.clampY(newY, radius)
}

func (r *Resolver) clampX(x, radius float64) float64 {
	if r.Map == nil || r.Map.Width <= 0 {
		return x
	}
	return geom.Clamp(x, radius, math.Max(radius, r.Map.Width-radius))
}

func (r *Resolver) clampY(y, radius float64) float64 {
	if r.Map == nil || r.Map.Height <= 0 {
		return y
	}
	return geom.Clamp(y, radius, math.Max(radius, r.Map.Height-radius))
}
