package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and cross references. Every problem is
// reported; the returned error combines them.
func (c Config) Validate() error {
	var err error
	if verr := validate.Struct(c); verr != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(verr, &fieldErrs) {
			for _, fe := range fieldErrs {
				err = multierr.Append(err, fieldError(fe))
			}
		} else {
			err = multierr.Append(err, verr)
		}
	}
	err = multierr.Append(err, c.checkReferences())
	return err
}

func fieldError(fe validator.FieldError) error {
	if fe.Param() == "" {
		return fmt.Errorf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
	}
	return fmt.Errorf("%s: failed %q=%s (value %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value())
}

func (c Config) checkReferences() error {
	var err error
	seen := make(map[string]string)
	claim := func(id, what string) {
		if id == "" {
			return
		}
		if prev, ok := seen[id]; ok {
			err = multierr.Append(err, fmt.Errorf("duplicate id %q (%s and %s)", id, prev, what))
			return
		}
		seen[id] = what
	}
	claim("player", "player")
	for i, agent := range c.Scenario.Agents {
		claim(agent.ID, fmt.Sprintf("agents[%d]", i))
		if _, ok := c.Profiles[agent.Profile]; !ok {
			err = multierr.Append(err, fmt.Errorf("agents[%d]: unknown profile %q", i, agent.Profile))
		}
	}
	for i, sensor := range c.Scenario.Sensors {
		claim(sensor.ID, fmt.Sprintf("sensors[%d]", i))
	}
	return err
}
