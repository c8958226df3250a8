package sim

import (
	"github.com/birnsj/Project9-V1-sub002/internal/behavior"
	"github.com/birnsj/Project9-V1-sub002/internal/geom"
	"github.com/birnsj/Project9-V1-sub002/internal/nav"
	"github.com/birnsj/Project9-V1-sub002/internal/telemetry"
	"github.com/birnsj/Project9-V1-sub002/internal/world"
	"github.com/birnsj/Project9-V1-sub002/logging"
)

// PlayerID identifies the player body in the resolver and in events.
const PlayerID = "player"

// PlayerSpec describes the scripted player the agents react to.
type PlayerSpec struct {
	Start    geom.Vec2
	Radius   float64
	Speed    float64
	Route    []geom.Vec2
	Loop     bool
	Sneaking bool
}

// AgentSpec places one guard.
type AgentSpec struct {
	ID       string
	Position geom.Vec2
	Rotation float64
	Profile  behavior.Profile
}

// SensorSpec places one camera.
type SensorSpec struct {
	ID            string
	Position      geom.Vec2
	Rotation      float64
	SweepHalfArc  float64
	SweepSpeed    float64
	Cone          SensorCone
	AlertRadius   float64
	AlarmDuration float64
}

// SensorCone is the sight cone of a camera.
type SensorCone struct {
	HalfAngle float64
	Length    float64
}

// Options configures a Loop.
type Options struct {
	Seed      string
	Map       world.Map
	Nav       nav.Config
	Player    PlayerSpec
	Agents    []AgentSpec
	Sensors   []SensorSpec
	Publisher logging.Publisher
	Metrics   telemetry.Metrics
	Clock     logging.Clock
}
