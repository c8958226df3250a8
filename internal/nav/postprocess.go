package nav

import "github.com/birnsj/Project9-V1-sub002/internal/geom"

// DefaultSimplifyThreshold is deliberately small: aggressive simplification
// lets agents clip corners the grid search avoided.
const DefaultSimplifyThreshold = 0.2

const degenerateSegment = 1e-6

// Simplify drops near-collinear interior points. A point is droppable when
// the normalised incoming and outgoing directions differ by less than
// threshold; every other droppable point is still kept so corners retain a
// minimum waypoint density. Points touching a degenerate segment are kept, as
// are the first and last points. The backing array of path is reused.
func Simplify(path Path, threshold float64) Path {
	if len(path) < 3 {
		return path
	}
	last := path[len(path)-1]
	out := path[:1]
	droppedPrevious := false
	for i := 1; i < len(path)-1; i++ {
		in := path[i].Sub(path[i-1])
		next := path[i+1].Sub(path[i])
		if in.Len() < degenerateSegment || next.Len() < degenerateSegment {
			out = append(out, path[i])
			droppedPrevious = false
			continue
		}
		change := in.Normalized().Sub(next.Normalized()).Len()
		if change >= threshold || droppedPrevious {
			out = append(out, path[i])
			droppedPrevious = false
			continue
		}
		droppedPrevious = true
	}
	return append(out, last)
}

// Smooth greedily skips waypoints that are visible from the current anchor.
// It returns path unchanged when no line-of-sight query is available.
func Smooth(path Path, occluded LineOfSightQuery) Path {
	if occluded == nil || len(path) < 3 {
		return path
	}
	out := make(Path, 0, len(path))
	out = append(out, path[0])
	anchor := 0
	for anchor < len(path)-1 {
		next := anchor + 1
		for j := len(path) - 1; j > anchor+1; j-- {
			if !occluded(path[anchor], path[j]) {
				next = j
				break
			}
		}
		out = append(out, path[next])
		anchor = next
	}
	return out
}

// Length sums the segment lengths of path starting at from.
func Length(from geom.Vec2, path Path) float64 {
	total := 0.0
	prev := from
	for _, p := range path {
		total += geom.Distance(prev, p)
		prev = p
	}
	return total
}
