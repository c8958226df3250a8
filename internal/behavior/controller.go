package behavior

import (
	"context"
	"math"
	"math/rand"

	"github.com/birnsj/Project9-V1-sub002/internal/geom"
	"github.com/birnsj/Project9-V1-sub002/internal/nav"
	"github.com/birnsj/Project9-V1-sub002/internal/perception"
	"github.com/birnsj/Project9-V1-sub002/logging"
	behaviorlog "github.com/birnsj/Project9-V1-sub002/logging/behavior"
)

// Frame is the per-frame input of a Controller.
type Frame struct {
	Tick           uint64
	Target         geom.Vec2
	TargetSneaking bool
	// AlarmActive relaxes the line-of-sight requirement for chasing.
	AlarmActive bool
	// Obstacles is used for probing, pathing and sliding. Nil is never
	// blocked.
	Obstacles nav.ObstacleQuery
	// Sight decides occlusion. Nil is never occluded.
	Sight nav.LineOfSightQuery
}

// Deps bundles the collaborators of a Controller. Everything is optional
// except Rand, which defaults to a generator seeded with zero.
type Deps struct {
	Finder    Finder
	Resolver  MovementResolver
	Publisher logging.Publisher
	Attack    AttackFunc
	Rand      *rand.Rand
}

// Controller is a guard: Mobile, Perceiver and Combatant composed under one
// state machine.
type Controller struct {
	ID      string
	Profile Profile

	Mobile
	perception.Perceiver
	Combatant

	state State
	deps  Deps
	rng   *rand.Rand

	searchPoint      geom.Vec2
	searchPointTimer float64
	idleTimer        float64
	idleTurning      bool
	idleDir          float64
}

func NewController(id string, position geom.Vec2, rotation float64, profile Profile, deps Deps) *Controller {
	if deps.Publisher == nil {
		deps.Publisher = logging.NopPublisher()
	}
	rng := deps.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(0))
	}
	c := &Controller{
		ID:      id,
		Profile: profile,
		Mobile:  Mobile{Position: position, Anchor: position},
		Perceiver: perception.Perceiver{
			Cone:                 perception.SightCone{HalfAngle: profile.SightHalfAngle, Length: profile.sightRange()},
			Rotation:             rotation,
			SneakRangeMultiplier: profile.SneakRangeMultiplier,
		},
		Combatant: Combatant{AttackRange: profile.AttackRange, AttackCooldown: profile.AttackCooldown},
		state:     StateIdle,
		deps:      deps,
		rng:       rng,
		idleDir:   1,
	}
	c.idleTimer = c.randomIdleInterval()
	return c
}

// State returns the active state.
func (c *Controller) State() State { return c.state }

// ForceDetect marks the target as detected at pos, as if a sensor had
// spotted it. An ongoing search is re-centred on pos.
func (c *Controller) ForceDetect(pos geom.Vec2) {
	d := &c.Detection
	d.HasDetectedPlayer = true
	d.LastKnownTargetPosition = pos
	d.OutOfRangeTimer = 0
	if d.IsSearching {
		c.searchPoint = pos
		c.searchPointTimer = c.Profile.SearchPointInterval
	}
}

// ResetDetection clears detection unless the agent currently sees the
// target itself.
func (c *Controller) ResetDetection() {
	if c.Detection.DirectlyDetected {
		return
	}
	c.Detection.Reset()
}

// Stun freezes the agent for duration seconds and starts the hit flash.
func (c *Controller) Stun(duration float64) {
	if duration <= 0 {
		return
	}
	c.Detection.StunTimer = max(c.Detection.StunTimer, duration)
	c.Flash(c.Profile.HitFlashDuration)
}

// Stunned reports whether the stun timer is running.
func (c *Controller) Stunned() bool { return c.Detection.StunTimer > 0 }

// Update advances timers and evaluates one frame of behavior.
func (c *Controller) Update(dt float64, f Frame) {
	if dt < 0 {
		dt = 0
	}
	c.Tick(dt)

	nv := c.navigator(f)

	if c.Detection.StunTimer > 0 {
		c.Detection.StunTimer = max(c.Detection.StunTimer-dt, 0)
		if c.Detection.StunTimer > 0 {
			c.setState(f.Tick, StateStunned)
			return
		}
	}

	seen := c.Refresh(c.Position, f.Target, f.TargetSneaking, f.Sight)
	d := &c.Detection

	switch {
	case !d.HasDetectedPlayer:
		c.returnOrIdle(nv, dt, f.Tick)

	case seen && geom.Distance(c.Position, f.Target) <= c.Profile.MaxChaseRange:
		d.OutOfRangeTimer = 0
		c.chase(nv, dt, f, f.Target)

	case d.IsSearching:
		c.search(nv, dt, f.Tick)

	case !seen && f.AlarmActive && d.HadLineOfSight:
		d.IsSearching = true
		d.SearchTimer = 0
		c.pickSearchPoint()
		c.search(nv, dt, f.Tick)

	case !seen && f.AlarmActive && geom.Distance(c.Position, d.LastKnownTargetPosition) <= c.Profile.MaxChaseRange:
		d.OutOfRangeTimer = 0
		c.chase(nv, dt, f, d.LastKnownTargetPosition)

	default:
		d.OutOfRangeTimer += dt
		if d.OutOfRangeTimer > c.Profile.OutOfRangeGrace {
			d.Reset()
			c.returnOrIdle(nv, dt, f.Tick)
			return
		}
		c.chase(nv, dt, f, d.LastKnownTargetPosition)
	}
}

func (c *Controller) navigator(f Frame) *Navigator {
	return &Navigator{
		ID:                c.ID,
		Tick:              f.Tick,
		Finder:            c.deps.Finder,
		Resolver:          c.deps.Resolver,
		Obstacles:         f.Obstacles,
		Publisher:         c.deps.Publisher,
		StuckThreshold:    c.Profile.StuckThreshold,
		WaypointReach:     c.Profile.WaypointReach,
		SimplifyThreshold: c.Profile.SimplifyThreshold,
		AvoidAgents:       true,
	}
}

// chase faces goal and either attacks or closes in. Attacks only happen
// against a target the agent can see.
func (c *Controller) chase(nv *Navigator, dt float64, f Frame, goal geom.Vec2) {
	c.Face(c.Position, goal, c.Profile.RotationSpeed*dt)
	if c.Detection.DirectlyDetected && c.InRange(c.Position, goal) {
		c.Stop(nv)
		if c.Ready() {
			c.attack(f.Tick, goal)
			return
		}
		c.setState(f.Tick, StateChase)
		return
	}
	c.setState(f.Tick, StateChase)
	c.Advance(nv, goal, c.Profile.Speed, dt)
	c.Face(c.Position, goal, c.Profile.RotationSpeed*dt)
}

func (c *Controller) attack(tick uint64, target geom.Vec2) {
	c.Commit()
	c.setState(tick, StateAttack)
	if c.deps.Attack != nil {
		c.deps.Attack(c.ID, target)
	}
	behaviorlog.Attack(context.Background(), c.deps.Publisher, tick, logging.AgentRef(c.ID),
		logging.EntityRef{Kind: logging.EntityKindPlayer}, behaviorlog.AttackPayload{
			TargetX:  target.X,
			TargetY:  target.Y,
			Distance: geom.Distance(c.Position, target),
		})
}

func (c *Controller) search(nv *Navigator, dt float64, tick uint64) {
	d := &c.Detection
	d.SearchTimer += dt
	if d.SearchTimer >= c.Profile.SearchDuration {
		d.Reset()
		c.Stop(nv)
		c.returnOrIdle(nv, dt, tick)
		return
	}
	c.setState(tick, StateSearch)

	c.searchPointTimer += dt
	if c.searchPointTimer >= c.Profile.SearchPointInterval ||
		geom.Distance(c.Position, c.searchPoint) <= c.Profile.WaypointReach {
		c.pickSearchPoint()
	}
	dir := c.Advance(nv, c.searchPoint, c.Profile.Speed, dt)
	c.faceDirection(dir, dt)
}

// pickSearchPoint draws a point uniformly inside SearchRadius of the last
// known target position.
func (c *Controller) pickSearchPoint() {
	center := c.Detection.LastKnownTargetPosition
	angle := c.rng.Float64() * 2 * math.Pi
	radius := c.Profile.SearchRadius * math.Sqrt(c.rng.Float64())
	c.searchPoint = center.Add(geom.FromAngle(angle).Scale(radius))
	c.searchPointTimer = 0
}

// returnOrIdle walks back to the anchor and idles once there.
func (c *Controller) returnOrIdle(nv *Navigator, dt float64, tick uint64) {
	if geom.Distance(c.Position, c.Anchor) > c.Profile.AnchorThreshold {
		c.setState(tick, StateReturn)
		dir := c.Advance(nv, c.Anchor, c.Profile.Speed, dt)
		c.faceDirection(dir, dt)
		if geom.Distance(c.Position, c.Anchor) > c.Profile.AnchorThreshold {
			return
		}
	}
	if c.state != StateIdle {
		c.Position = c.Anchor
		c.Stop(nv)
		c.Detection.Reset()
		c.idleTimer = c.randomIdleInterval()
		c.idleTurning = false
		c.setState(tick, StateIdle)
		return
	}
	c.idle(dt)
}

func (c *Controller) idle(dt float64) {
	c.idleTimer -= dt
	if c.idleTimer <= 0 {
		c.idleTurning = !c.idleTurning
		if c.rng.Intn(2) == 0 {
			c.idleDir = -c.idleDir
		}
		c.idleTimer = c.randomIdleInterval()
	}
	if c.idleTurning {
		c.Rotation = geom.NormalizeAngle(c.Rotation + c.idleDir*c.Profile.RotationSpeed*0.25*dt)
	}
}

func (c *Controller) randomIdleInterval() float64 {
	lo, hi := c.Profile.IdleToggleMin, c.Profile.IdleToggleMax
	if hi <= lo {
		return lo
	}
	return lo + c.rng.Float64()*(hi-lo)
}

func (c *Controller) faceDirection(dir geom.Vec2, dt float64) {
	if dir == (geom.Vec2{}) {
		return
	}
	c.Face(c.Position, c.Position.Add(dir), c.Profile.RotationSpeed*dt)
}

func (c *Controller) setState(tick uint64, next State) {
	if c.state == next {
		return
	}
	prev := c.state
	c.state = next
	behaviorlog.StateChanged(context.Background(), c.deps.Publisher, tick, logging.AgentRef(c.ID), behaviorlog.StateChangedPayload{
		From: prev.String(),
		To:   next.String(),
	})
}

// View is a read-only copy of the agent for snapshots.
type View struct {
	ID        string      `json:"id"`
	Position  geom.Vec2   `json:"position"`
	Anchor    geom.Vec2   `json:"anchor"`
	Rotation  float64     `json:"rotation"`
	State     State       `json:"state"`
	Detected  bool        `json:"detected"`
	LastKnown geom.Vec2   `json:"lastKnown"`
	Searching bool        `json:"searching"`
	Stunned   bool        `json:"stunned"`
	Flashing  bool        `json:"flashing"`
	Path      []geom.Vec2 `json:"path,omitempty"`
}

func (c *Controller) View() View {
	return View{
		ID:        c.ID,
		Position:  c.Position,
		Anchor:    c.Anchor,
		Rotation:  c.Rotation,
		State:     c.state,
		Detected:  c.Detection.HasDetectedPlayer,
		LastKnown: c.Detection.LastKnownTargetPosition,
		Searching: c.Detection.IsSearching,
		Stunned:   c.Stunned(),
		Flashing:  c.Flashing(),
		Path:      append([]geom.Vec2(nil), c.Path()...),
	}
}
