package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/birnsj/Project9-V1-sub002/internal/behavior"
	"github.com/birnsj/Project9-V1-sub002/internal/geom"
	"github.com/birnsj/Project9-V1-sub002/internal/nav"
	"github.com/birnsj/Project9-V1-sub002/internal/telemetry"
	"github.com/birnsj/Project9-V1-sub002/internal/world"
	behaviorlog "github.com/birnsj/Project9-V1-sub002/logging/behavior"
	"github.com/birnsj/Project9-V1-sub002/logging/sinks"
)

func baseOptions() Options {
	return Options{
		Seed: "test",
		Map:  world.Map{Width: 600, Height: 400},
		Nav:  nav.DefaultConfig(),
		Player: PlayerSpec{
			Start:  geom.Vec2{X: 300, Y: 200},
			Radius: 12,
			Speed:  80,
		},
	}
}

func TestGuardChasesAndAttacksPlayer(t *testing.T) {
	opts := baseOptions()
	opts.Agents = []AgentSpec{{ID: "guard", Position: geom.Vec2{X: 100, Y: 200}, Profile: behavior.DefaultProfile()}}
	counters := telemetry.NewCounters()
	opts.Metrics = counters

	l, err := NewLoop(opts)
	require.NoError(t, err)

	for i := 0; i < 80; i++ {
		l.Step(0.05)
	}
	snap := l.Snapshot()
	assert.Equal(t, uint64(80), snap.Tick)
	require.Len(t, snap.Agents, 1)
	assert.True(t, snap.Agents[0].Detected)
	assert.GreaterOrEqual(t, snap.Player.Hits, 1)
	assert.Equal(t, uint64(snap.Player.Hits), counters.Get("sim.attacks"))
	assert.Less(t, geom.Distance(snap.Agents[0].Position, snap.Player.Position), 40.0)
}

func TestSensorAlertsGuardWithoutSearch(t *testing.T) {
	opts := baseOptions()
	opts.Player.Start = geom.Vec2{X: 400, Y: 200}
	opts.Agents = []AgentSpec{{
		ID:       "guard",
		Position: geom.Vec2{X: 100, Y: 100},
		Rotation: -math.Pi / 2,
		Profile:  behavior.DefaultProfile(),
	}}
	opts.Sensors = []SensorSpec{{
		ID:            "cam",
		Position:      geom.Vec2{X: 500, Y: 200},
		Rotation:      math.Pi,
		Cone:          SensorCone{HalfAngle: math.Pi / 6, Length: 300},
		AlertRadius:   1000,
		AlarmDuration: 2,
	}}
	memory := sinks.NewMemorySink()
	opts.Publisher = memory

	l, err := NewLoop(opts)
	require.NoError(t, err)
	l.Step(0.05)

	view, err := l.Agent("guard")
	require.NoError(t, err)
	assert.True(t, view.Detected)
	assert.False(t, view.Searching)
	assert.Equal(t, behavior.StateChase, view.State)
	assert.Equal(t, geom.Vec2{X: 400, Y: 200}, view.LastKnown)

	snap := l.Snapshot()
	require.Len(t, snap.Sensors, 1)
	assert.True(t, snap.Sensors[0].AlarmActive)
	assert.Equal(t, []string{"guard"}, snap.Sensors[0].Alerted)

	raised := memory.OfType(behaviorlog.EventAlarmRaised)
	require.Len(t, raised, 1)
	assert.Equal(t, "cam", raised[0].Actor.ID)
	assert.Equal(t, 1, raised[0].Payload.(behaviorlog.AlarmPayload).Alerted)
}

func TestAlarmExpiryResetsAlertedGuards(t *testing.T) {
	opts := baseOptions()
	opts.Map.Obstacles = []world.Obstacle{{ID: "screen", X: 440, Y: 150, Width: 10, Height: 100}}
	opts.Player.Start = geom.Vec2{X: 400, Y: 200}
	opts.Player.Route = []geom.Vec2{{X: 400, Y: 200}}
	opts.Agents = []AgentSpec{{ID: "guard", Position: geom.Vec2{X: 50, Y: 50}, Rotation: math.Pi, Profile: behavior.DefaultProfile()}}
	opts.Sensors = []SensorSpec{{
		ID:            "cam",
		Position:      geom.Vec2{X: 500, Y: 200},
		Rotation:      math.Pi,
		Cone:          SensorCone{HalfAngle: math.Pi / 6, Length: 300},
		AlertRadius:   1000,
		AlarmDuration: 0.5,
	}}
	memory := sinks.NewMemorySink()
	opts.Publisher = memory

	l, err := NewLoop(opts)
	require.NoError(t, err)

	// The screen hides the player from the camera, so nothing is raised.
	l.Step(0.05)
	assert.Empty(t, memory.OfType(behaviorlog.EventAlarmRaised))

	l.mu.Lock()
	l.worldMap.Obstacles = nil
	l.mu.Unlock()
	l.Step(0.05)
	require.Len(t, memory.OfType(behaviorlog.EventAlarmRaised), 1)

	l.mu.Lock()
	l.worldMap.Obstacles = opts.Map.Obstacles
	l.mu.Unlock()
	for i := 0; i < 12; i++ {
		l.Step(0.05)
	}
	require.Len(t, memory.OfType(behaviorlog.EventAlarmExpired), 1)
	view, err := l.Agent("guard")
	require.NoError(t, err)
	assert.False(t, view.Detected)
	assert.Empty(t, l.Snapshot().Sensors[0].Alerted)
}

func TestPlayerFollowsRoute(t *testing.T) {
	opts := baseOptions()
	opts.Player.Start = geom.Vec2{X: 100, Y: 100}
	opts.Player.Route = []geom.Vec2{{X: 140, Y: 100}, {X: 140, Y: 140}}
	l, err := NewLoop(opts)
	require.NoError(t, err)

	for i := 0; i < 40; i++ {
		l.Step(0.05)
	}
	assert.InDelta(t, 140, l.Snapshot().Player.Position.X, 1.01)
	assert.InDelta(t, 140, l.Snapshot().Player.Position.Y, 1.01)
}

func TestNewLoopAssignsAndChecksIDs(t *testing.T) {
	opts := baseOptions()
	opts.Agents = []AgentSpec{
		{Position: geom.Vec2{X: 50, Y: 50}, Profile: behavior.DefaultProfile()},
		{ID: "b", Position: geom.Vec2{X: 80, Y: 50}, Profile: behavior.DefaultProfile()},
	}
	l, err := NewLoop(opts)
	require.NoError(t, err)
	snap := l.Snapshot()
	require.Len(t, snap.Agents, 2)
	for _, a := range snap.Agents {
		assert.NotEmpty(t, a.ID)
	}

	opts.Agents = append(opts.Agents, AgentSpec{ID: "b", Profile: behavior.DefaultProfile()})
	_, err = NewLoop(opts)
	assert.Error(t, err)
}

func TestStunUnknownAgent(t *testing.T) {
	opts := baseOptions()
	opts.Agents = []AgentSpec{{ID: "guard", Position: geom.Vec2{X: 100, Y: 100}, Profile: behavior.DefaultProfile()}}
	l, err := NewLoop(opts)
	require.NoError(t, err)

	err = l.Stun("nobody", 1)
	assert.True(t, errors.Is(err, ErrUnknownAgent))

	require.NoError(t, l.Stun("guard", 1))
	l.Step(0.05)
	view, err := l.Agent("guard")
	require.NoError(t, err)
	assert.Equal(t, behavior.StateStunned, view.State)
	assert.True(t, view.Stunned)
}
