// Package config loads navsim settings from YAML. Missing values take the
// defaults declared in struct tags and the result is validated before use.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

// DefaultProfileName is used by agents that do not name a profile.
const DefaultProfileName = "guard"

type Config struct {
	Grid     GridConfig               `yaml:"grid"`
	Search   SearchConfig             `yaml:"search"`
	Logging  LoggingConfig            `yaml:"logging"`
	Server   ServerConfig             `yaml:"server"`
	Profiles map[string]ProfileConfig `yaml:"profiles" validate:"dive"`
	Scenario ScenarioConfig           `yaml:"scenario"`
}

type GridConfig struct {
	CellWidth  float64 `yaml:"cellWidth" default:"32" validate:"gt=0"`
	CellHeight float64 `yaml:"cellHeight" default:"32" validate:"gt=0"`
}

type SearchConfig struct {
	MaxIterations        int           `yaml:"maxIterations" default:"4000" validate:"gte=1"`
	MaxSubstituteRadius  int           `yaml:"maxSubstituteRadius" default:"5" validate:"gte=0"`
	CornerInset          float64       `yaml:"cornerInset" default:"0.8" validate:"gt=0,lt=1"`
	CacheDuration        time.Duration `yaml:"cacheDuration" default:"2s" validate:"gte=0"`
	CleanupInterval      time.Duration `yaml:"cleanupInterval" default:"5s" validate:"gt=0"`
	MinRerequestInterval time.Duration `yaml:"minRerequestInterval" default:"250ms" validate:"gte=0"`
	PoolCap              int           `yaml:"poolCap" default:"64" validate:"gte=0"`
	SimplifyThreshold    float64       `yaml:"simplifyThreshold" default:"0.2" validate:"gte=0"`
}

type LoggingConfig struct {
	Sinks           []string `yaml:"sinks" default:"[\"console\"]" validate:"dive,oneof=console json zap"`
	MinimumSeverity string   `yaml:"minimumSeverity" default:"info" validate:"oneof=debug info warn error"`
	JSONPath        string   `yaml:"jsonPath"`
	BufferSize      int      `yaml:"bufferSize" default:"512" validate:"gte=1"`
}

type ServerConfig struct {
	Addr          string `yaml:"addr" default:":8080" validate:"required"`
	TickRate      int    `yaml:"tickRate" default:"30" validate:"gte=1,lte=240"`
	SnapshotEvery int    `yaml:"snapshotEvery" default:"2" validate:"gte=1"`
}

// ProfileConfig holds agent tunables. Times are seconds and angles degrees.
// Zero values are indistinguishable from unset ones and take the default.
type ProfileConfig struct {
	Speed                float64 `yaml:"speed" default:"120" validate:"gte=0"`
	Radius               float64 `yaml:"radius" default:"12" validate:"gte=0"`
	DetectionRange       float64 `yaml:"detectionRange" default:"260" validate:"gt=0"`
	AttackRange          float64 `yaml:"attackRange" default:"40" validate:"gte=0"`
	AttackCooldown       float64 `yaml:"attackCooldown" default:"1" validate:"gte=0"`
	SightHalfAngleDeg    float64 `yaml:"sightHalfAngleDeg" default:"35" validate:"gt=0,lte=180"`
	SightLength          float64 `yaml:"sightLength" default:"260" validate:"gt=0"`
	RotationSpeedDeg     float64 `yaml:"rotationSpeedDeg" default:"720" validate:"gte=0"`
	SearchDuration       float64 `yaml:"searchDuration" default:"6" validate:"gte=0"`
	SearchRadius         float64 `yaml:"searchRadius" default:"120" validate:"gte=0"`
	SearchPointInterval  float64 `yaml:"searchPointInterval" default:"2" validate:"gt=0"`
	OutOfRangeGrace      float64 `yaml:"outOfRangeGrace" default:"1.5" validate:"gte=0"`
	MaxChaseRange        float64 `yaml:"maxChaseRange" default:"900" validate:"gt=0"`
	SneakRangeMultiplier float64 `yaml:"sneakRangeMultiplier" default:"0.5" validate:"gt=0,lte=1"`
	StuckThreshold       float64 `yaml:"stuckThreshold" default:"0.5" validate:"gt=0"`
	WaypointReach        float64 `yaml:"waypointReach" default:"6" validate:"gt=0"`
	AnchorThreshold      float64 `yaml:"anchorThreshold" default:"5" validate:"gt=0"`
	HitFlashDuration     float64 `yaml:"hitFlashDuration" default:"0.15" validate:"gte=0"`
	IdleToggleMin        float64 `yaml:"idleToggleMin" default:"1.5" validate:"gte=0"`
	IdleToggleMax        float64 `yaml:"idleToggleMax" default:"4" validate:"gtefield=IdleToggleMin"`
}

type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type ScenarioConfig struct {
	Seed      string           `yaml:"seed" default:"navsim"`
	Width     float64          `yaml:"width" default:"1600" validate:"gt=0"`
	Height    float64          `yaml:"height" default:"1200" validate:"gt=0"`
	Obstacles []ObstacleConfig `yaml:"obstacles" validate:"dive"`
	Player    PlayerConfig     `yaml:"player"`
	Agents    []AgentConfig    `yaml:"agents" validate:"dive"`
	Sensors   []SensorConfig   `yaml:"sensors" validate:"dive"`
}

type ObstacleConfig struct {
	ID     string  `yaml:"id"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width" validate:"gt=0"`
	Height float64 `yaml:"height" validate:"gt=0"`
}

type PlayerConfig struct {
	Start    Point   `yaml:"start"`
	Radius   float64 `yaml:"radius" default:"12" validate:"gte=0"`
	Speed    float64 `yaml:"speed" default:"90" validate:"gte=0"`
	Route    []Point `yaml:"route"`
	Loop     bool    `yaml:"loop"`
	Sneaking bool    `yaml:"sneaking"`
}

type AgentConfig struct {
	ID          string  `yaml:"id"`
	Profile     string  `yaml:"profile" default:"guard"`
	Position    Point   `yaml:"position"`
	RotationDeg float64 `yaml:"rotationDeg"`
}

type SensorConfig struct {
	ID               string  `yaml:"id"`
	Position         Point   `yaml:"position"`
	RotationDeg      float64 `yaml:"rotationDeg"`
	SweepArcDeg      float64 `yaml:"sweepArcDeg" validate:"gte=0,lte=180"`
	SweepSpeedDeg    float64 `yaml:"sweepSpeedDeg" validate:"gte=0"`
	HalfAngleDeg     float64 `yaml:"halfAngleDeg" default:"25" validate:"gt=0,lte=180"`
	Length           float64 `yaml:"length" default:"300" validate:"gt=0"`
	AlertRadius      float64 `yaml:"alertRadius" default:"600" validate:"gte=0"`
	AlarmDurationSec float64 `yaml:"alarmDuration" default:"5" validate:"gt=0"`
}

// Default returns a configuration made only of defaults, with an empty
// scenario.
func Default() Config {
	var cfg Config
	if err := cfg.applyDefaults(); err != nil {
		panic(fmt.Sprintf("config: invalid default tags: %v", err))
	}
	return cfg
}

// Load reads and parses the YAML file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML, fills defaults and validates. Unknown keys are errors.
func Parse(data []byte) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode yaml: %w", err)
	}
	if err := cfg.applyDefaults(); err != nil {
		return Config{}, fmt.Errorf("apply defaults: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyDefaults fills zero fields from the default tags, including map and
// slice elements, and makes sure the default profile exists.
func (c *Config) applyDefaults() error {
	if err := defaults.Set(c); err != nil {
		return err
	}
	if c.Profiles == nil {
		c.Profiles = make(map[string]ProfileConfig)
	}
	if _, ok := c.Profiles[DefaultProfileName]; !ok {
		c.Profiles[DefaultProfileName] = ProfileConfig{}
	}
	for name, p := range c.Profiles {
		if err := defaults.Set(&p); err != nil {
			return fmt.Errorf("profile %s: %w", name, err)
		}
		c.Profiles[name] = p
	}
	for i := range c.Scenario.Agents {
		if err := defaults.Set(&c.Scenario.Agents[i]); err != nil {
			return err
		}
	}
	for i := range c.Scenario.Sensors {
		if err := defaults.Set(&c.Scenario.Sensors[i]); err != nil {
			return err
		}
	}
	return nil
}
