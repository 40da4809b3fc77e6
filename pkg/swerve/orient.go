package swerve

import (
	"github.com/tigerbot-team/swerve/pkg/ticks"
)

// NoInput is the orient target meaning "no heading requested".  Headings are never
// negative, so it cannot collide with a real one.
const NoInput = -1.0

// LatchPolicy decides when a unit stops being ready to orient.
type LatchPolicy int

const (
	// LatchUntilReset keeps a unit ready once it has reached its pose, until
	// ClearReadyToOrient.
	LatchUntilReset LatchPolicy = iota
	// ReevaluateEveryTick recomputes readiness from the current steering position.
	ReevaluateEveryTick
)

func (p LatchPolicy) String() string {
	switch p {
	case LatchUntilReset:
		return "latch"
	case ReevaluateEveryTick:
		return "reevaluate"
	default:
		return "unknown"
	}
}

// OrientConfig holds the rotate-in-place parameters.
type OrientConfig struct {
	Circle ticks.Circle
	// AlignDeadband is how close a wheel must be to its pose before it counts as ready.
	AlignDeadband float64
	// SpinDeadband is the heading error below which the chassis stops spinning.
	SpinDeadband float64
	// ConvergeDeadband is the heading error below which Orient reports success.
	ConvergeDeadband float64
	SpinPercent      float64
	Policy           LatchPolicy
}

func DefaultOrientConfig() OrientConfig {
	return OrientConfig{
		Circle:           ticks.Encoder12Bit,
		AlignDeadband:    15,
		SpinDeadband:     15,
		ConvergeDeadband: 5,
		SpinPercent:      0.2,
		Policy:           LatchUntilReset,
	}
}

// SpinPercent is the speed the wheels are driven at while the chassis rotates in place.
func (c *Chain) SpinPercent() float64 {
	return c.orient.SpinPercent
}

// SetSpinPercent changes the rotate-in-place speed.  Call it from the goroutine that ticks
// the chain.
func (c *Chain) SetSpinPercent(p float64) {
	c.orient.SpinPercent = p
}

// Orient runs one tick of rotating the chassis to target.  Both target and heading are in
// ticks.  The wheels first turn to their orient poses; only when every one of them is there
// does the chassis spin.  Orient returns true once the heading is within the converge
// deadband of target, or immediately if target is NoInput.
//
// Call Orient at most once per tick, before the tick's ApplySpeed.  The spin replaces any
// speed accumulated earlier in the tick.
func (c *Chain) Orient(target, heading float64) bool {
	if target == NoInput {
		return true
	}

	for _, u := range c.units {
		if u.preAlign(c.orient) {
			c.logger.Debugw("unit ready to orient", "unit", u.name, "role", u.role, "direction", u.Direction())
		}
	}

	delta := c.orient.Circle.Delta(target, heading)
	if c.AllReadyToOrient() {
		if !c.barrierPassed {
			c.logger.Debugw("all units ready to orient", "target", target, "heading", heading)
			c.barrierPassed = true
		}
		if !ticks.Within(delta, c.orient.SpinDeadband) {
			for _, u := range c.units {
				u.spin(delta, c.orient.SpinPercent)
			}
		}
	} else {
		c.barrierPassed = false
	}

	converged := ticks.Within(delta, c.orient.ConvergeDeadband)
	if converged && !c.converged {
		c.logger.Debugw("orientation reached", "target", target, "heading", heading)
	}
	c.converged = converged
	return converged
}
