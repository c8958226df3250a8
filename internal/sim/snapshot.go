package sim

import (
	"errors"

	"github.com/birnsj/Project9-V1-sub002/internal/behavior"
	"github.com/birnsj/Project9-V1-sub002/internal/geom"
	"github.com/birnsj/Project9-V1-sub002/internal/nav"
)

// ErrUnknownAgent is returned for IDs that do not name an agent.
var ErrUnknownAgent = errors.New("unknown agent")

// PlayerView is the player part of a Snapshot.
type PlayerView struct {
	Position geom.Vec2 `json:"position"`
	Sneaking bool      `json:"sneaking"`
	Hits     int       `json:"hits"`
}

// SensorView is the sensor part of a Snapshot.
type SensorView struct {
	ID             string    `json:"id"`
	Position       geom.Vec2 `json:"position"`
	Rotation       float64   `json:"rotation"`
	AlarmActive    bool      `json:"alarmActive"`
	AlarmRemaining float64   `json:"alarmRemaining"`
	Alerted        []string  `json:"alerted,omitempty"`
}

// Snapshot is a copy of the world after a step.
type Snapshot struct {
	Tick    uint64          `json:"tick"`
	Player  PlayerView      `json:"player"`
	Agents  []behavior.View `json:"agents"`
	Sensors []SensorView    `json:"sensors"`
	Nav     nav.Stats       `json:"nav"`
}

// Snapshot copies the current state.
func (l *Loop) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	snap := Snapshot{
		Tick: l.tick,
		Player: PlayerView{
			Position: l.player.position,
			Sneaking: l.player.sneaking,
			Hits:     l.player.hits,
		},
		Agents:  make([]behavior.View, 0, len(l.agents)),
		Sensors: make([]SensorView, 0, len(l.sensors)),
		Nav:     l.finder.Stats(),
	}
	for _, c := range l.agents {
		snap.Agents = append(snap.Agents, c.View())
	}
	for _, s := range l.sensors {
		view := SensorView{
			ID:             s.ID,
			Position:       s.Position,
			Rotation:       s.Rotation,
			AlarmActive:    s.AlarmActive(),
			AlarmRemaining: s.AlarmRemaining(),
		}
		for _, c := range l.agents {
			if _, ok := s.alerted[c.ID]; ok {
				view.Alerted = append(view.Alerted, c.ID)
			}
		}
		snap.Sensors = append(snap.Sensors, view)
	}
	return snap
}

// Agent returns the view of one agent.
func (l *Loop) Agent(id string) (behavior.View, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	c, ok := l.byID[id]
	if !ok {
		return behavior.View{}, ErrUnknownAgent
	}
	return c.View(), nil
}
