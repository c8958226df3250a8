package nav

import "time"

const (
	DefaultCellSize             = 32.0
	DefaultMaxIterations        = 4000
	DefaultMaxSubstituteRadius  = 5
	DefaultCornerInset          = 0.8
	DefaultCacheDuration        = 2 * time.Second
	DefaultCleanupInterval      = 5 * time.Second
	DefaultMinRerequestInterval = 250 * time.Millisecond
	DefaultPoolCap              = 64
	defaultPathCapacity         = 32
)

// Config tunes a PathFinder.
type Config struct {
	CellWidth  float64
	CellHeight float64
	// MaxIterations caps the number of nodes expanded per search.
	MaxIterations int
	// MaxSubstituteRadius bounds the ring search for an open cell around a
	// blocked start or goal.
	MaxSubstituteRadius int
	// CornerInset places the four extra blocked-test points at this fraction
	// of the half cell away from the centre.
	CornerInset          float64
	CacheDuration        time.Duration
	CleanupInterval      time.Duration
	MinRerequestInterval time.Duration
	PoolCap              int
}

func DefaultConfig() Config {
	return Config{
		CellWidth:            DefaultCellSize,
		CellHeight:           DefaultCellSize,
		MaxIterations:        DefaultMaxIterations,
		MaxSubstituteRadius:  DefaultMaxSubstituteRadius,
		CornerInset:          DefaultCornerInset,
		CacheDuration:        DefaultCacheDuration,
		CleanupInterval:      DefaultCleanupInterval,
		MinRerequestInterval: DefaultMinRerequestInterval,
		PoolCap:              DefaultPoolCap,
	}
}

func (cfg Config) normalized() Config {
	def := DefaultConfig()
	if cfg.CellWidth <= 0 {
		cfg.CellWidth = def.CellWidth
	}
	if cfg.CellHeight <= 0 {
		cfg.CellHeight = def.CellHeight
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = def.MaxIterations
	}
	if cfg.MaxSubstituteRadius < 0 {
		cfg.MaxSubstituteRadius = 0
	}
	if cfg.CornerInset <= 0 || cfg.CornerInset >= 1 {
		cfg.CornerInset = def.CornerInset
	}
	if cfg.CacheDuration < 0 {
		cfg.CacheDuration = 0
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = def.CleanupInterval
	}
	if cfg.MinRerequestInterval < 0 {
		cfg.MinRerequestInterval = 0
	}
	if cfg.PoolCap < 0 {
		cfg.PoolCap = 0
	}
	return cfg
}
