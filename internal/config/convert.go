package config

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/birnsj/Project9-V1-sub002/internal/behavior"
	"github.com/birnsj/Project9-V1-sub002/internal/geom"
	"github.com/birnsj/Project9-V1-sub002/internal/nav"
	"github.com/birnsj/Project9-V1-sub002/internal/sim"
	"github.com/birnsj/Project9-V1-sub002/internal/world"
	"github.com/birnsj/Project9-V1-sub002/logging"
)

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func (p Point) Vec() geom.Vec2 {
	return geom.Vec2{X: p.X, Y: p.Y}
}

// NavConfig converts the grid and search sections.
func (c Config) NavConfig() nav.Config {
	return nav.Config{
		CellWidth:            c.Grid.CellWidth,
		CellHeight:           c.Grid.CellHeight,
		MaxIterations:        c.Search.MaxIterations,
		MaxSubstituteRadius:  c.Search.MaxSubstituteRadius,
		CornerInset:          c.Search.CornerInset,
		CacheDuration:        c.Search.CacheDuration,
		CleanupInterval:      c.Search.CleanupInterval,
		MinRerequestInterval: c.Search.MinRerequestInterval,
		PoolCap:              c.Search.PoolCap,
	}
}

// Profile returns the named behavior profile in radians. The search
// section's simplify threshold applies to every profile.
func (c Config) Profile(name string) (behavior.Profile, error) {
	p, ok := c.Profiles[name]
	if !ok {
		return behavior.Profile{}, fmt.Errorf("unknown profile %q", name)
	}
	return behavior.Profile{
		Speed:                p.Speed,
		Radius:               p.Radius,
		DetectionRange:       p.DetectionRange,
		SightHalfAngle:       radians(p.SightHalfAngleDeg),
		SightLength:          p.SightLength,
		SneakRangeMultiplier: p.SneakRangeMultiplier,
		RotationSpeed:        radians(p.RotationSpeedDeg),
		AttackRange:          p.AttackRange,
		AttackCooldown:       p.AttackCooldown,
		HitFlashDuration:     p.HitFlashDuration,
		SearchDuration:       p.SearchDuration,
		SearchRadius:         p.SearchRadius,
		SearchPointInterval:  p.SearchPointInterval,
		OutOfRangeGrace:      p.OutOfRangeGrace,
		MaxChaseRange:        p.MaxChaseRange,
		StuckThreshold:       p.StuckThreshold,
		WaypointReach:        p.WaypointReach,
		AnchorThreshold:      p.AnchorThreshold,
		SimplifyThreshold:    c.Search.SimplifyThreshold,
		IdleToggleMin:        p.IdleToggleMin,
		IdleToggleMax:        p.IdleToggleMax,
	}, nil
}

// ProfileNames lists the configured profiles in order.
func (c Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Map builds the obstacle map of the scenario.
func (c Config) Map() world.Map {
	m := world.Map{Width: c.Scenario.Width, Height: c.Scenario.Height}
	for i, o := range c.Scenario.Obstacles {
		id := o.ID
		if id == "" {
			id = fmt.Sprintf("obstacle-%d", i)
		}
		m.Obstacles = append(m.Obstacles, world.Obstacle{ID: id, X: o.X, Y: o.Y, Width: o.Width, Height: o.Height})
	}
	return m
}

// SimOptions converts the scenario. Publisher, metrics and clock are left
// for the caller to attach.
func (c Config) SimOptions() (sim.Options, error) {
	opts := sim.Options{
		Seed: c.Scenario.Seed,
		Map:  c.Map(),
		Nav:  c.NavConfig(),
		Player: sim.PlayerSpec{
			Start:    c.Scenario.Player.Start.Vec(),
			Radius:   c.Scenario.Player.Radius,
			Speed:    c.Scenario.Player.Speed,
			Loop:     c.Scenario.Player.Loop,
			Sneaking: c.Scenario.Player.Sneaking,
		},
	}
	for _, p := range c.Scenario.Player.Route {
		opts.Player.Route = append(opts.Player.Route, p.Vec())
	}
	for i, a := range c.Scenario.Agents {
		profile, err := c.Profile(a.Profile)
		if err != nil {
			return sim.Options{}, fmt.Errorf("agents[%d]: %w", i, err)
		}
		opts.Agents = append(opts.Agents, sim.AgentSpec{
			ID:       a.ID,
			Position: a.Position.Vec(),
			Rotation: radians(a.RotationDeg),
			Profile:  profile,
		})
	}
	for _, s := range c.Scenario.Sensors {
		opts.Sensors = append(opts.Sensors, sim.SensorSpec{
			ID:           s.ID,
			Position:     s.Position.Vec(),
			Rotation:     radians(s.RotationDeg),
			SweepHalfArc: radians(s.SweepArcDeg),
			SweepSpeed:   radians(s.SweepSpeedDeg),
			Cone: sim.SensorCone{
				HalfAngle: radians(s.HalfAngleDeg),
				Length:    s.Length,
			},
			AlertRadius:   s.AlertRadius,
			AlarmDuration: s.AlarmDurationSec,
		})
	}
	return opts, nil
}

// RouterConfig converts the logging section for logging.NewRouter.
func (c LoggingConfig) RouterConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.EnabledSinks = append([]string(nil), c.Sinks...)
	cfg.BufferSize = c.BufferSize
	cfg.MinimumSeverity = parseSeverity(c.MinimumSeverity)
	cfg.JSON.FilePath = c.JSONPath
	return cfg
}

func parseSeverity(raw string) logging.Severity {
	switch strings.ToLower(raw) {
	case "debug":
		return logging.SeverityDebug
	case "warn":
		return logging.SeverityWarn
	case "error":
		return logging.SeverityError
	default:
		return logging.SeverityInfo
	}
}
