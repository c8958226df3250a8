package behavior

import "math"

// Profile holds the per-agent tunables. Durations are seconds, angles are
// radians and distances are world units.
type Profile struct {
	Speed  float64
	Radius float64

	DetectionRange       float64
	SightHalfAngle       float64
	SightLength          float64
	SneakRangeMultiplier float64
	RotationSpeed        float64

	AttackRange      float64
	AttackCooldown   float64
	HitFlashDuration float64

	SearchDuration      float64
	SearchRadius        float64
	SearchPointInterval float64
	OutOfRangeGrace     float64
	MaxChaseRange       float64

	StuckThreshold    float64
	WaypointReach     float64
	AnchorThreshold   float64
	SimplifyThreshold float64

	IdleToggleMin float64
	IdleToggleMax float64
}

func DefaultProfile() Profile {
	return Profile{
		Speed:                120,
		Radius:               12,
		DetectionRange:       260,
		SightHalfAngle:       35 * math.Pi / 180,
		SightLength:          260,
		SneakRangeMultiplier: 0.5,
		RotationSpeed:        4 * math.Pi,
		AttackRange:          40,
		AttackCooldown:       1,
		HitFlashDuration:     0.15,
		SearchDuration:       6,
		SearchRadius:         120,
		SearchPointInterval:  2,
		OutOfRangeGrace:      1.5,
		MaxChaseRange:        900,
		StuckThreshold:       0.5,
		WaypointReach:        6,
		AnchorThreshold:      5,
		SimplifyThreshold:    0.2,
		IdleToggleMin:        1.5,
		IdleToggleMax:        4,
	}
}

// sightRange is the shorter of the detection range and the cone length.
func (p Profile) sightRange() float64 {
	switch {
	case p.SightLength <= 0:
		return p.DetectionRange
	case p.DetectionRange <= 0:
		return p.SightLength
	default:
		return math.Min(p.DetectionRange, p.SightLength)
	}
}
