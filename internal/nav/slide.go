package nav

import (
	"math"
	"sort"

	"github.com/birnsj/Project9-V1-sub002/internal/geom"
)

var isoDiagonal = 1 / math.Sqrt(5)

// isoDirections are the cardinal axes plus the four diagonals that follow the
// 2:1 isometric tile aspect.
var isoDirections = [8]geom.Vec2{
	{X: 1, Y: 0},
	{X: -1, Y: 0},
	{X: 0, Y: 1},
	{X: 0, Y: -1},
	{X: 2 * isoDiagonal, Y: isoDiagonal},
	{X: -2 * isoDiagonal, Y: isoDiagonal},
	{X: 2 * isoDiagonal, Y: -isoDiagonal},
	{X: -2 * isoDiagonal, Y: -isoDiagonal},
}

var slideScales = [...]float64{1.0, 0.8, 0.6, 0.4, 0.3}

// TrySlide looks for an unblocked alternative when moving from current toward
// desired is blocked. The two isometric directions most perpendicular to the
// movement are tried at decreasing scales, first blended 50/50 with the
// original direction and then as a pure slide. It returns current unchanged
// when every candidate is blocked.
func TrySlide(current, desired, direction geom.Vec2, moveDistance float64, isBlocked ObstacleQuery) geom.Vec2 {
	dir := direction.Normalized()
	if dir == (geom.Vec2{}) {
		dir = desired.Sub(current).Normalized()
	}
	if dir == (geom.Vec2{}) {
		return current
	}
	if moveDistance <= 0 {
		moveDistance = geom.Distance(current, desired)
	}
	if moveDistance <= 0 {
		return current
	}

	candidates := perpendicularDirections(dir)
	for _, scale := range slideScales {
		step := moveDistance * scale
		for _, slide := range candidates {
			if blend := dir.Add(slide).Scale(0.5).Normalized(); blend != (geom.Vec2{}) {
				p := current.Add(blend.Scale(step))
				if !isBlocked.Blocked(p) {
					return p
				}
			}
			p := current.Add(slide.Scale(step))
			if !isBlocked.Blocked(p) {
				return p
			}
		}
	}
	return current
}

// perpendicularDirections orders the isometric directions by how
// perpendicular they are to dir, preferring forward-leaning ones on ties, and
// returns the best two.
func perpendicularDirections(dir geom.Vec2) [2]geom.Vec2 {
	order := [8]int{0, 1, 2, 3, 4, 5, 6, 7}
	dots := [8]float64{}
	for i, d := range isoDirections {
		dots[i] = d.Dot(dir)
	}
	sort.SliceStable(order[:], func(a, b int) bool {
		da, db := math.Abs(dots[order[a]]), math.Abs(dots[order[b]])
		if math.Abs(da-db) > 1e-9 {
			return da < db
		}
		return dots[order[a]] > dots[order[b]]+1e-9
	})
	return [2]geom.Vec2{isoDirections[order[0]], isoDirections[order[1]]}
}
