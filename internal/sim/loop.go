// Package sim runs agents, sensors and a scripted player in a single
// sequential loop. One Step is one frame.
package sim

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/sasha-s/go-deadlock"

	"github.com/birnsj/Project9-V1-sub002/internal/behavior"
	"github.com/birnsj/Project9-V1-sub002/internal/geom"
	"github.com/birnsj/Project9-V1-sub002/internal/nav"
	"github.com/birnsj/Project9-V1-sub002/internal/perception"
	"github.com/birnsj/Project9-V1-sub002/internal/telemetry"
	"github.com/birnsj/Project9-V1-sub002/internal/world"
	"github.com/birnsj/Project9-V1-sub002/logging"
	behaviorlog "github.com/birnsj/Project9-V1-sub002/logging/behavior"
)

const routeReach = 1.0

type player struct {
	position geom.Vec2
	radius   float64
	speed    float64
	route    []geom.Vec2
	loop     bool
	sneaking bool
	next     int
	hits     int
}

type sensorState struct {
	*perception.Sensor
	alerted map[string]struct{}
}

// Loop owns the world state. Step and the read accessors may be called from
// different goroutines.
type Loop struct {
	mu deadlock.RWMutex

	tick      uint64
	worldMap  *world.Map
	resolver  *world.Resolver
	finder    *nav.LockedPathFinder
	sight     nav.LineOfSightQuery
	player    player
	agents    []*behavior.Controller
	byID      map[string]*behavior.Controller
	sensors   []*sensorState
	publisher logging.Publisher
	metrics   telemetry.Metrics
}

// NewLoop builds a loop. Agents and sensors without an ID receive a random
// one; duplicate IDs are rejected.
func NewLoop(opts Options) (*Loop, error) {
	publisher := opts.Publisher
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = telemetry.NopMetrics()
	}
	worldMap := opts.Map
	l := &Loop{
		worldMap: &worldMap,
		finder: nav.NewLockedPathFinder(nav.NewPathFinder(opts.Nav, nav.Deps{
			Publisher: publisher,
			Metrics:   metrics,
			Clock:     opts.Clock,
		})),
		byID:      make(map[string]*behavior.Controller),
		publisher: publisher,
		metrics:   metrics,
	}
	l.resolver = world.NewResolver(l.worldMap)
	l.sight = world.LineOfSight(l.worldMap)

	l.player = player{
		position: opts.Player.Start,
		radius:   opts.Player.Radius,
		speed:    opts.Player.Speed,
		route:    append([]geom.Vec2(nil), opts.Player.Route...),
		loop:     opts.Player.Loop,
		sneaking: opts.Player.Sneaking,
	}
	l.resolver.Register(world.Body{ID: PlayerID, Position: l.player.position, Radius: l.player.radius})

	for _, spec := range opts.Agents {
		id := spec.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, exists := l.byID[id]; exists || id == PlayerID {
			return nil, fmt.Errorf("duplicate agent id %q", id)
		}
		c := behavior.NewController(id, spec.Position, spec.Rotation, spec.Profile, behavior.Deps{
			Finder:    l.finder,
			Resolver:  l.resolver,
			Publisher: publisher,
			Attack:    l.onAttack,
			Rand:      world.NewRNG(opts.Seed, id),
		})
		l.agents = append(l.agents, c)
		l.byID[id] = c
		l.resolver.Register(world.Body{ID: id, Position: spec.Position, Radius: spec.Profile.Radius})
	}
	sort.Slice(l.agents, func(i, j int) bool { return l.agents[i].ID < l.agents[j].ID })

	seenSensors := make(map[string]struct{}, len(opts.Sensors))
	for _, spec := range opts.Sensors {
		id := spec.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, exists := seenSensors[id]; exists {
			return nil, fmt.Errorf("duplicate sensor id %q", id)
		}
		seenSensors[id] = struct{}{}
		s := perception.NewSensor(id, spec.Position, perception.SightCone{HalfAngle: spec.Cone.HalfAngle, Length: spec.Cone.Length})
		s.Rotation = spec.Rotation
		s.SweepCenter = spec.Rotation
		s.SweepHalfArc = spec.SweepHalfArc
		s.SweepSpeed = spec.SweepSpeed
		s.AlertRadius = spec.AlertRadius
		s.AlarmDuration = spec.AlarmDuration
		l.sensors = append(l.sensors, &sensorState{Sensor: s, alerted: make(map[string]struct{})})
	}
	sort.Slice(l.sensors, func(i, j int) bool { return l.sensors[i].ID < l.sensors[j].ID })

	return l, nil
}

// Step advances the world by dt seconds.
func (l *Loop) Step(dt float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.tick++
	l.finder.SetTick(l.tick)
	l.metrics.Add("sim.ticks", 1)

	l.movePlayer(dt)
	l.updateSensors(dt)

	for _, c := range l.agents {
		l.resolver.Register(world.Body{ID: c.ID, Position: c.Position, Radius: c.Profile.Radius})
	}
	bodies := l.resolver.Bodies()
	for _, c := range l.agents {
		c.Update(dt, behavior.Frame{
			Tick:           l.tick,
			Target:         l.player.position,
			TargetSneaking: l.player.sneaking,
			AlarmActive:    l.alarmFor(c.ID),
			Obstacles:      world.AgentQuery(l.worldMap, c.Profile.Radius, bodies, c.ID, PlayerID),
			Sight:          l.sight,
		})
		l.resolver.Register(world.Body{ID: c.ID, Position: c.Position, Radius: c.Profile.Radius})
	}
}

func (l *Loop) movePlayer(dt float64) {
	p := &l.player
	if len(p.route) == 0 || p.speed <= 0 || p.next >= len(p.route) {
		return
	}
	waypoint := p.route[p.next]
	dist := geom.Distance(p.position, waypoint)
	if dist > routeReach {
		step := min(p.speed*dt, dist)
		desired := p.position.Add(waypoint.Sub(p.position).Normalized().Scale(step))
		p.position = l.resolver.Move(PlayerID, p.position, desired, false)
	}
	if geom.Distance(p.position, waypoint) <= routeReach {
		p.next++
		if p.next >= len(p.route) && p.loop {
			p.next = 0
		}
	}
}

func (l *Loop) updateSensors(dt float64) {
	ctx := context.Background()
	for _, s := range l.sensors {
		up := s.Update(dt, l.player.position, l.player.sneaking, l.sight)
		ref := logging.EntityRef{ID: s.ID, Kind: logging.EntityKindSensor}
		if up.Sighted {
			for _, c := range l.agents {
				if s.InAlertRadius(c.Position) {
					c.ForceDetect(s.AlarmPosition())
					s.alerted[c.ID] = struct{}{}
				}
			}
			if up.Raised {
				l.metrics.Add("sim.alarms", 1)
				behaviorlog.AlarmRaised(ctx, l.publisher, l.tick, ref, behaviorlog.AlarmPayload{
					X:         s.AlarmPosition().X,
					Y:         s.AlarmPosition().Y,
					Remaining: s.AlarmRemaining(),
					Alerted:   len(s.alerted),
				})
			}
		}
		if up.Expired {
			for _, c := range l.agents {
				if _, ok := s.alerted[c.ID]; ok {
					c.ResetDetection()
				}
			}
			behaviorlog.AlarmExpired(ctx, l.publisher, l.tick, ref, behaviorlog.AlarmPayload{
				X:       s.AlarmPosition().X,
				Y:       s.AlarmPosition().Y,
				Alerted: len(s.alerted),
			})
			clear(s.alerted)
		}
	}
}

func (l *Loop) alarmFor(agentID string) bool {
	for _, s := range l.sensors {
		if !s.AlarmActive() {
			continue
		}
		if _, ok := s.alerted[agentID]; ok {
			return true
		}
	}
	return false
}

func (l *Loop) onAttack(agentID string, target geom.Vec2) {
	if geom.Distance(target, l.player.position) > l.player.radius+1 {
		return
	}
	l.player.hits++
	l.metrics.Add("sim.attacks", 1)
}

// Stun stuns an agent for duration seconds.
func (l *Loop) Stun(id string, duration float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, ok := l.byID[id]
	if !ok {
		return fmt.Errorf("stun %q: %w", id, ErrUnknownAgent)
	}
	c.Stun(duration)
	return nil
}

// Tick returns the number of completed steps.
func (l *Loop) Tick() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tick
}
