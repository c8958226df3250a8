package behavior

import (
	"context"

	"github.com/birnsj/Project9-V1-sub002/logging"
)

const (
	// EventStateChanged is emitted whenever an agent's behavior state changes.
	EventStateChanged logging.EventType = "behavior.state_changed"
	// EventAttack is emitted when an agent starts an attack.
	EventAttack logging.EventType = "behavior.attack"
	// EventAlarmRaised is emitted when a sensor raises or refreshes an alarm.
	EventAlarmRaised logging.EventType = "behavior.alarm_raised"
	// EventAlarmExpired is emitted when an alarm runs out.
	EventAlarmExpired logging.EventType = "behavior.alarm_expired"
)

// StateChangedPayload records a transition.
type StateChangedPayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// AttackPayload records the target position at attack time.
type AttackPayload struct {
	TargetX  float64 `json:"targetX"`
	TargetY  float64 `json:"targetY"`
	Distance float64 `json:"distance"`
}

// AlarmPayload records where an alarm points and how long it lasts.
type AlarmPayload struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Remaining float64 `json:"remaining"`
	Alerted   int     `json:"alerted,omitempty"`
}

func StateChanged(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload StateChangedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventStateChanged,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryBehavior,
		Payload:  payload,
	})
}

func Attack(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload AttackPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventAttack,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryBehavior,
		Payload:  payload,
	})
}

func AlarmRaised(ctx context.Context, pub logging.Publisher, tick uint64, sensor logging.EntityRef, payload AlarmPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventAlarmRaised,
		Tick:     tick,
		Actor:    sensor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryBehavior,
		Payload:  payload,
	})
}

func AlarmExpired(ctx context.Context, pub logging.Publisher, tick uint64, sensor logging.EntityRef, payload AlarmPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventAlarmExpired,
		Tick:     tick,
		Actor:    sensor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryBehavior,
		Payload:  payload,
	})
}
