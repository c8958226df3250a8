package behavior

import "github.com/birnsj/Project9-V1-sub002/internal/geom"

// AttackFunc is invoked when an agent commits to an attack. Damage resolution
// belongs to the caller.
type AttackFunc func(agentID string, target geom.Vec2)

// Combatant is the attack capability: range, cooldown and the hit flash shown
// after being struck.
type Combatant struct {
	AttackRange    float64
	AttackCooldown float64

	cooldown float64
	flash    float64
}

// Tick advances the cooldown and flash timers.
func (c *Combatant) Tick(dt float64) {
	if c.cooldown > 0 {
		c.cooldown = max(c.cooldown-dt, 0)
	}
	if c.flash > 0 {
		c.flash = max(c.flash-dt, 0)
	}
}

// Ready reports whether the cooldown has elapsed.
func (c *Combatant) Ready() bool { return c.cooldown <= 0 }

// InRange reports whether target is within attack range of position.
func (c *Combatant) InRange(position, target geom.Vec2) bool {
	return geom.Distance(position, target) <= c.AttackRange
}

// Commit starts the cooldown.
func (c *Combatant) Commit() { c.cooldown = c.AttackCooldown }

// Cooldown is the time until the next attack is allowed.
func (c *Combatant) Cooldown() float64 { return c.cooldown }

// Flash starts the hit flash.
func (c *Combatant) Flash(duration float64) {
	c.flash = max(c.flash, duration)
}

// Flashing reports whether the hit flash is showing.
func (c *Combatant) Flashing() bool { return c.flash > 0 }
