package config

import (
	"fmt"
	"strconv"

	"go.uber.org/multierr"
)

const (
	EnvConfigPath = "NAVSIM_CONFIG"
	EnvAddr       = "NAVSIM_ADDR"
	EnvTickRate   = "NAVSIM_TICK_RATE"
)

// ApplyEnv overrides server settings from the environment. Invalid values
// leave the current setting untouched and are reported together.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if getenv == nil {
		return nil
	}
	var err error
	if raw := getenv(EnvAddr); raw != "" {
		c.Server.Addr = raw
	}
	if raw := getenv(EnvTickRate); raw != "" {
		if value, perr := strconv.Atoi(raw); perr != nil {
			err = multierr.Append(err, fmt.Errorf("invalid %s=%q: %w", EnvTickRate, raw, perr))
		} else if value < 1 || value > 240 {
			err = multierr.Append(err, fmt.Errorf("invalid %s=%q: out of range 1..240", EnvTickRate, raw))
		} else {
			c.Server.TickRate = value
		}
	}
	return err
}
