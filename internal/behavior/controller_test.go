package behavior

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/birnsj/Project9-V1-sub002/internal/geom"
	"github.com/birnsj/Project9-V1-sub002/internal/nav"
	behaviorlog "github.com/birnsj/Project9-V1-sub002/logging/behavior"
	navlog "github.com/birnsj/Project9-V1-sub002/logging/navigation"
	"github.com/birnsj/Project9-V1-sub002/logging/sinks"
)

func testProfile() Profile {
	return Profile{
		Speed:               100,
		Radius:              8,
		DetectionRange:      200,
		SightHalfAngle:      math.Pi / 4,
		SightLength:         200,
		AttackRange:         20,
		AttackCooldown:      1,
		HitFlashDuration:    0.2,
		SearchDuration:      2,
		SearchRadius:        30,
		SearchPointInterval: 0.5,
		OutOfRangeGrace:     0.5,
		MaxChaseRange:       1000,
		StuckThreshold:      0.3,
		WaypointReach:       4,
		AnchorThreshold:     5,
		SimplifyThreshold:   nav.DefaultSimplifyThreshold,
		IdleToggleMin:       1,
		IdleToggleMax:       2,
	}
}

func newTestController(deps Deps) *Controller {
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewSource(42))
	}
	return NewController("guard-1", geom.Vec2{}, 0, testProfile(), deps)
}

func occludeAll(from, to geom.Vec2) bool { return true }

func TestSearchThenReturnToAnchor(t *testing.T) {
	memory := sinks.NewMemorySink()
	c := newTestController(Deps{Publisher: memory})
	target := geom.Vec2{X: 100}

	c.Update(0.1, Frame{Tick: 1, Target: target, AlarmActive: true})
	require.Equal(t, StateChase, c.State())
	require.True(t, c.Detection.HadLineOfSight)

	var states []State
	for i := 0; i < 200; i++ {
		c.Update(0.05, Frame{Tick: uint64(i + 2), Target: target, AlarmActive: true, Sight: occludeAll})
		if len(states) == 0 || states[len(states)-1] != c.State() {
			states = append(states, c.State())
		}
	}

	assert.Equal(t, []State{StateSearch, StateReturn, StateIdle}, states)
	assert.Equal(t, c.Anchor, c.Position)
	assert.False(t, c.Detection.HasDetectedPlayer)
	assert.False(t, c.Detection.IsSearching)

	changes := memory.OfType(behaviorlog.EventStateChanged)
	require.Len(t, changes, 4)
	last := changes[len(changes)-1].Payload.(behaviorlog.StateChangedPayload)
	assert.Equal(t, "return", last.From)
	assert.Equal(t, "idle", last.To)
}

func TestSearchStaysNearLastKnownPosition(t *testing.T) {
	c := newTestController(Deps{})
	target := geom.Vec2{X: 100}
	c.Update(0.1, Frame{Target: target, AlarmActive: true})

	for i := 0; i < 30; i++ {
		c.Update(0.05, Frame{Target: target, AlarmActive: true, Sight: occludeAll})
		if c.State() == StateSearch {
			assert.LessOrEqual(t, geom.Distance(c.searchPoint, target), c.Profile.SearchRadius+1e-9)
		}
	}
}

func TestAlarmOnlyAlertDoesNotSearch(t *testing.T) {
	c := newTestController(Deps{})
	behind := geom.Vec2{X: -100}
	c.ForceDetect(behind)

	for i := 0; i < 10; i++ {
		c.Update(0.1, Frame{Target: behind, AlarmActive: true, Sight: occludeAll})
		require.Equal(t, StateChase, c.State())
		require.False(t, c.Detection.IsSearching)
	}
	assert.Less(t, c.Position.X, -50.0)

	for i := 0; i < 10; i++ {
		c.Update(0.1, Frame{Target: behind, Sight: occludeAll})
	}
	assert.False(t, c.Detection.HasDetectedPlayer)
	assert.Equal(t, StateReturn, c.State())
}

func TestOutOfRangeGraceBeforeReturn(t *testing.T) {
	c := newTestController(Deps{})
	target := geom.Vec2{X: 100}
	c.Update(0.1, Frame{Target: target})
	require.Equal(t, StateChase, c.State())

	c.Update(0.2, Frame{Target: target, Sight: occludeAll})
	assert.Equal(t, StateChase, c.State(), "within grace keeps chasing the last known position")
	c.Update(0.2, Frame{Target: target, Sight: occludeAll})
	assert.Equal(t, StateChase, c.State())
	c.Update(0.2, Frame{Target: target, Sight: occludeAll})
	assert.Equal(t, StateReturn, c.State())
	assert.False(t, c.Detection.HasDetectedPlayer)
}

func TestAttackRespectsCooldown(t *testing.T) {
	var attacks []geom.Vec2
	memory := sinks.NewMemorySink()
	c := newTestController(Deps{
		Publisher: memory,
		Attack:    func(id string, target geom.Vec2) { attacks = append(attacks, target) },
	})
	target := geom.Vec2{X: 10}

	c.Update(0.1, Frame{Target: target})
	require.Equal(t, StateAttack, c.State())
	require.Len(t, attacks, 1)

	c.Update(0.1, Frame{Target: target})
	assert.Equal(t, StateChase, c.State())
	assert.Equal(t, geom.Vec2{}, c.Position, "in attack range the agent holds position")

	for i := 0; i < 8; i++ {
		c.Update(0.1, Frame{Target: target})
	}
	assert.Len(t, attacks, 1)
	c.Update(0.15, Frame{Target: target})
	assert.Len(t, attacks, 2)
	assert.Len(t, memory.OfType(behaviorlog.EventAttack), 2)
}

func TestStunFreezesAgent(t *testing.T) {
	attacks := 0
	c := newTestController(Deps{Attack: func(string, geom.Vec2) { attacks++ }})
	target := geom.Vec2{X: 100}
	c.Update(0.1, Frame{Target: target})
	start := c.Position

	c.Stun(0.5)
	require.True(t, c.Flashing())
	c.Update(0.1, Frame{Target: geom.Vec2{X: 10}})
	assert.Equal(t, StateStunned, c.State())
	assert.Equal(t, start, c.Position)
	assert.True(t, c.Flashing())

	c.Update(0.15, Frame{Target: geom.Vec2{X: 10}})
	assert.Equal(t, StateStunned, c.State())
	assert.False(t, c.Flashing(), "flash keeps counting during stun")
	assert.Zero(t, attacks)

	c.Update(0.3, Frame{Target: target})
	assert.NotEqual(t, StateStunned, c.State())
	assert.Greater(t, c.Position.X, start.X)
}

func TestResetDetectionKeepsDirectSighting(t *testing.T) {
	c := newTestController(Deps{})
	c.Update(0.1, Frame{Target: geom.Vec2{X: 100}})
	c.ResetDetection()
	assert.True(t, c.Detection.HasDetectedPlayer)

	c.Update(0.1, Frame{Target: geom.Vec2{X: 100}, Sight: occludeAll})
	c.ResetDetection()
	assert.False(t, c.Detection.HasDetectedPlayer)
}

func TestForceDetectRecentresSearch(t *testing.T) {
	c := newTestController(Deps{})
	c.Update(0.1, Frame{Target: geom.Vec2{X: 100}, AlarmActive: true})
	c.Update(0.1, Frame{Target: geom.Vec2{X: 100}, AlarmActive: true, Sight: occludeAll})
	require.Equal(t, StateSearch, c.State())

	alert := geom.Vec2{X: 300, Y: 300}
	c.ForceDetect(alert)
	assert.Equal(t, alert, c.Detection.LastKnownTargetPosition)
	c.Update(0.1, Frame{Target: geom.Vec2{X: 100}, AlarmActive: true, Sight: occludeAll})
	assert.LessOrEqual(t, geom.Distance(c.searchPoint, alert), c.Profile.SearchRadius+1e-9)
}

func TestNilQueryMovesStraight(t *testing.T) {
	c := newTestController(Deps{})
	target := geom.Vec2{X: 150}
	for i := 0; i < 10; i++ {
		c.Update(0.1, Frame{Target: target})
	}
	assert.InDelta(t, 100, c.Position.X, 1e-9)
	assert.InDelta(t, 0, c.Position.Y, 1e-9)
}

func TestIdleRotationToggles(t *testing.T) {
	profile := testProfile()
	profile.RotationSpeed = 2
	c := NewController("guard-2", geom.Vec2{}, 0, profile, Deps{Rand: rand.New(rand.NewSource(3))})
	far := geom.Vec2{X: 5000, Y: 5000}

	changed := false
	for i := 0; i < 100; i++ {
		c.Update(0.05, Frame{Target: far})
		require.Equal(t, StateIdle, c.State())
		if c.Rotation != 0 {
			changed = true
		}
	}
	assert.True(t, changed)
	assert.Equal(t, geom.Vec2{}, c.Position)
}

type recordedSearch struct {
	start, goal geom.Vec2
}

type countingFinder struct {
	*nav.PathFinder
	searches []recordedSearch
}

func (f *countingFinder) FindPath(start, goal geom.Vec2, q nav.ObstacleQuery) (nav.Path, error) {
	f.searches = append(f.searches, recordedSearch{start: start, goal: goal})
	return f.PathFinder.FindPath(start, goal, q)
}

type freezeResolver struct {
	frozen bool
	q      nav.ObstacleQuery
}

func (r *freezeResolver) Move(_ string, from, to geom.Vec2, _ bool) geom.Vec2 {
	if r.frozen || r.q.Blocked(to) {
		return from
	}
	return to
}

func TestStuckAgentReroutes(t *testing.T) {
	wall := nav.ObstacleQuery(func(p geom.Vec2) bool {
		return p.X >= 42 && p.X <= 58 && p.Y >= -100 && p.Y <= 18
	})
	cfg := nav.DefaultConfig()
	cfg.CellWidth, cfg.CellHeight = 10, 10
	finder := &countingFinder{PathFinder: nav.NewPathFinder(cfg, nav.Deps{})}
	resolver := &freezeResolver{frozen: true, q: wall}
	memory := sinks.NewMemorySink()
	c := newTestController(Deps{Finder: finder, Resolver: resolver, Publisher: memory})
	target := geom.Vec2{X: 100}

	frame := Frame{Target: target, Obstacles: wall}
	c.Update(0.1, frame)
	require.Len(t, finder.searches, 1)
	require.NotEmpty(t, c.Path())

	c.Update(0.1, frame)
	c.Update(0.1, frame)
	require.Len(t, finder.searches, 2)
	assert.Equal(t, recordedSearch{start: geom.Vec2{}, goal: target}, finder.searches[1])
	assert.Equal(t, uint64(2), finder.Stats().Searches, "reroute bypasses the cache")

	reroutes := memory.OfType(navlog.EventStuckReroute)
	require.Len(t, reroutes, 1)
	assert.Equal(t, "guard-1", reroutes[0].Actor.ID)

	resolver.frozen = false
	c.Update(0.1, frame)
	assert.NotEqual(t, geom.Vec2{}, c.Position)
	assert.Zero(t, c.StuckTime())
}
