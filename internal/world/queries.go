package world

import (
	"github.com/birnsj/Project9-V1-sub002/internal/geom"
	"github.com/birnsj/Project9-V1-sub002/internal/nav"
)

// Body is a circular agent footprint.
type Body struct {
	ID       string
	Position geom.Vec2
	Radius   float64
}

// TerrainQuery blocks points where a circle of radius would touch terrain or
// leave the map.
func TerrainQuery(m *Map, radius float64) nav.ObstacleQuery {
	if m == nil {
		return nil
	}
	return func(p geom.Vec2) bool {
		return m.Blocked(p, radius)
	}
}

// AgentQuery extends TerrainQuery with the bodies of other agents. Bodies
// whose ID is in ignore are skipped so an agent never blocks itself or the
// target it is approaching.
func AgentQuery(m *Map, radius float64, bodies []Body, ignore ...string) nav.ObstacleQuery {
	terrain := TerrainQuery(m, radius)
	others := make([]Body, 0, len(bodies))
	for _, b := range bodies {
		if !contains(ignore, b.ID) {
			others = append(others, b)
		}
	}
	return func(p geom.Vec2) bool {
		if terrain.Blocked(p) {
			return true
		}
		for _, b := range others {
			limit := radius + b.Radius
			if geom.Distance(p, b.Position) < limit {
				return true
			}
		}
		return false
	}
}

// LineOfSight returns an exact line-of-sight query against the map's
// obstacles. True means occluded.
func LineOfSight(m *Map) nav.LineOfSightQuery {
	if m == nil {
		return nil
	}
	return func(from, to geom.Vec2) bool {
		return !m.SegmentClear(from, to)
	}
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
