// Package perception decides whether an observer can see a target and keeps
// the per-agent detection memory that behavior builds on.
package perception

import (
	"math"

	"github.com/birnsj/Project9-V1-sub002/internal/geom"
	"github.com/birnsj/Project9-V1-sub002/internal/nav"
)

// SightCone is the angular, range-limited region an observer sees.
type SightCone struct {
	HalfAngle float64 `json:"halfAngle"`
	Length    float64 `json:"length"`
}

// Contains reports whether target lies inside the cone of an observer at
// origin facing rotation. Occlusion is not considered.
func (c SightCone) Contains(origin geom.Vec2, rotation float64, target geom.Vec2) bool {
	return inCone(origin, rotation, c.HalfAngle, c.Length, target)
}

// CanDetect is true iff target is within sightRange of observer, within
// halfAngle of the observer's facing and not occluded. A target standing on
// the observer is always inside the cone.
func CanDetect(observer geom.Vec2, rotation, halfAngle, sightRange float64, target geom.Vec2, occluded bool) bool {
	if occluded {
		return false
	}
	return inCone(observer, rotation, halfAngle, sightRange, target)
}

func inCone(origin geom.Vec2, rotation, halfAngle, sightRange float64, target geom.Vec2) bool {
	if sightRange <= 0 {
		return false
	}
	dist := geom.Distance(origin, target)
	if dist > sightRange {
		return false
	}
	if dist < 1e-9 {
		return true
	}
	diff := geom.NormalizeAngle(geom.Heading(origin, target) - rotation)
	return math.Abs(diff) <= halfAngle
}

// DetectionState is the memory an agent keeps about the target.
type DetectionState struct {
	HasDetectedPlayer       bool      `json:"hasDetectedPlayer"`
	LastKnownTargetPosition geom.Vec2 `json:"lastKnownTargetPosition"`
	IsSearching             bool      `json:"isSearching"`
	SearchTimer             float64   `json:"searchTimer"`
	OutOfRangeTimer         float64   `json:"outOfRangeTimer"`
	StunTimer               float64   `json:"stunTimer"`
	// HadLineOfSight is set once the agent itself has seen the target and
	// stays set until detection is reset.
	HadLineOfSight bool `json:"hadLineOfSight"`
	// DirectlyDetected is true only for frames where the target is in sight.
	DirectlyDetected bool `json:"directlyDetected"`
}

// Reset clears detection. The stun timer is not part of detection and is kept.
func (d *DetectionState) Reset() {
	stun := d.StunTimer
	*d = DetectionState{StunTimer: stun}
}

// Perceiver is the sight capability shared by guards and sensors.
type Perceiver struct {
	Cone     SightCone
	Rotation float64
	// SneakRangeMultiplier scales the sight distance against a sneaking target
	// that has not been detected yet.
	SneakRangeMultiplier float64
	Detection            DetectionState
}

// EffectiveRange is the sight distance against the target this frame. Once
// the target is detected the full range applies even if it sneaks.
func (p *Perceiver) EffectiveRange(targetSneaking bool) float64 {
	if !targetSneaking || p.Detection.HasDetectedPlayer {
		return p.Cone.Length
	}
	mult := p.SneakRangeMultiplier
	if mult <= 0 || mult > 1 {
		return p.Cone.Length
	}
	return p.Cone.Length * mult
}

// Sees runs CanDetect from position against target using sight for occlusion.
func (p *Perceiver) Sees(position, target geom.Vec2, targetSneaking bool, sight nav.LineOfSightQuery) bool {
	sightRange := p.EffectiveRange(targetSneaking)
	if geom.Distance(position, target) > sightRange {
		return false
	}
	return CanDetect(position, p.Rotation, p.Cone.HalfAngle, sightRange, target, sight.Occluded(position, target))
}

// Refresh updates the detection memory from one frame of sight and reports
// whether the target was seen. The out-of-range timer is left to the caller
// since seeing the target does not mean it is within chase range.
func (p *Perceiver) Refresh(position, target geom.Vec2, targetSneaking bool, sight nav.LineOfSightQuery) bool {
	seen := p.Sees(position, target, targetSneaking, sight)
	d := &p.Detection
	d.DirectlyDetected = seen
	if seen {
		d.HasDetectedPlayer = true
		d.LastKnownTargetPosition = target
		d.HadLineOfSight = true
		d.IsSearching = false
		d.SearchTimer = 0
	}
	return seen
}

// Face turns toward target by at most maxStep radians. A non-positive maxStep
// turns instantly.
func (p *Perceiver) Face(position, target geom.Vec2, maxStep float64) {
	if geom.Distance(position, target) < 1e-9 {
		return
	}
	heading := geom.Heading(position, target)
	if maxStep <= 0 {
		p.Rotation = heading
		return
	}
	p.Rotation = geom.RotateToward(p.Rotation, heading, maxStep)
}
