package nav

import (
	"math"

	"github.com/birnsj/Project9-V1-sub002/internal/geom"
)

const (
	// ProbeSpacing is the world distance between direct-path samples.
	ProbeSpacing = 8.0
	// MinProbeSamples is the sample floor for very short segments.
	MinProbeSamples = 3
)

// CanTravelDirectly samples the open segment between from and to and reports
// false at the first blocked sample. Endpoints are not sampled.
func CanTravelDirectly(from, to geom.Vec2, isBlocked ObstacleQuery) bool {
	if isBlocked == nil {
		return true
	}
	samples := int(math.Ceil(geom.Distance(from, to) / ProbeSpacing))
	if samples < MinProbeSamples {
		samples = MinProbeSamples
	}
	for i := 1; i <= samples; i++ {
		t := float64(i) / float64(samples+1)
		if isBlocked(from.Lerp(to, t)) {
			return false
		}
	}
	return true
}
