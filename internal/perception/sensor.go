package perception

import (
	"github.com/birnsj/Project9-V1-sub002/internal/geom"
	"github.com/birnsj/Project9-V1-sub002/internal/nav"
)

// Sensor is a stationary camera. It is only a Perceiver: it sweeps its cone
// back and forth and holds an alarm open for AlarmDuration after each
// sighting.
type Sensor struct {
	ID       string
	Position geom.Vec2
	Perceiver

	SweepCenter   float64
	SweepHalfArc  float64
	SweepSpeed    float64
	AlertRadius   float64
	AlarmDuration float64

	sweepDir   float64
	alarmTimer float64
	alarmPos   geom.Vec2
}

// SensorUpdate reports what changed during one Update.
type SensorUpdate struct {
	// Sighted is true while the target is in view.
	Sighted bool
	// Raised is true on the frame an inactive alarm becomes active.
	Raised bool
	// Expired is true on the frame an active alarm runs out.
	Expired bool
}

func NewSensor(id string, position geom.Vec2, cone SightCone) *Sensor {
	return &Sensor{
		ID:        id,
		Position:  position,
		Perceiver: Perceiver{Cone: cone},
		sweepDir:  1,
	}
}

// AlarmActive reports whether the alarm is open.
func (s *Sensor) AlarmActive() bool { return s.alarmTimer > 0 }

// AlarmRemaining is the time left on the alarm in seconds.
func (s *Sensor) AlarmRemaining() float64 { return max(s.alarmTimer, 0) }

// AlarmPosition is where the target was last seen by the sensor.
func (s *Sensor) AlarmPosition() geom.Vec2 { return s.alarmPos }

// InAlertRadius reports whether p is close enough to be alerted.
func (s *Sensor) InAlertRadius(p geom.Vec2) bool {
	return geom.Distance(s.Position, p) <= s.AlertRadius
}

// Update advances the sweep and alarm timer, then looks for the target.
func (s *Sensor) Update(dt float64, target geom.Vec2, targetSneaking bool, sight nav.LineOfSightQuery) SensorUpdate {
	var out SensorUpdate
	wasActive := s.AlarmActive()
	if wasActive {
		s.alarmTimer -= dt
	}

	s.sweep(dt)

	if s.Refresh(s.Position, target, targetSneaking, sight) {
		out.Sighted = true
		s.alarmPos = target
		s.alarmTimer = s.AlarmDuration
		out.Raised = !wasActive
		return out
	}
	if wasActive && !s.AlarmActive() {
		s.alarmTimer = 0
		s.Detection.Reset()
		out.Expired = true
	}
	return out
}

func (s *Sensor) sweep(dt float64) {
	if s.SweepSpeed <= 0 || s.SweepHalfArc <= 0 {
		return
	}
	if s.sweepDir == 0 {
		s.sweepDir = 1
	}
	offset := geom.NormalizeAngle(s.Rotation-s.SweepCenter) + s.sweepDir*s.SweepSpeed*dt
	if offset >= s.SweepHalfArc {
		offset = s.SweepHalfArc
		s.sweepDir = -1
	} else if offset <= -s.SweepHalfArc {
		offset = -s.SweepHalfArc
		s.sweepDir = 1
	}
	s.Rotation = geom.NormalizeAngle(s.SweepCenter + offset)
}
