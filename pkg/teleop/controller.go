// Package teleop drives the chassis from the joystick: left stick for field-relative travel,
// D-pad to turn the chassis to face a heading, triangle to brake.
package teleop

import (
	"math"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"

	"github.com/tigerbot-team/swerve/pkg/heading"
	"github.com/tigerbot-team/swerve/pkg/swerve"
	"github.com/tigerbot-team/swerve/pkg/ticks"
)

// Input is the operator's demand for one tick.
type Input struct {
	Brake bool
	// POV is the heading to turn to in degrees, or negative for none.
	POV float64
	// Stick is the travel demand, X right and Y down, magnitude at most 1.
	Stick r3.Vector
}

// Tuning supplies the values the operator can adjust while driving.  Each is read once per
// tick.
type Tuning struct {
	// SpeedLimit scales the stick magnitude into a speed.
	SpeedLimit func() float64
	// SpinPercent is the rotate-in-place speed used while orienting.
	SpinPercent func() float64
}

type Controller struct {
	chain    *swerve.Chain
	heading  *heading.Tracker
	circle   ticks.Circle
	deadband float64
	tuning   Tuning
	logger   golog.Logger

	orienting bool
}

// NewController returns a controller for the chain.  The chain may have been left
// mid-orientation by whoever drove it before, so Release is called before the first Tick.
func NewController(
	chain *swerve.Chain,
	tracker *heading.Tracker,
	circle ticks.Circle,
	deadband float64,
	tuning Tuning,
	logger golog.Logger,
) *Controller {
	c := &Controller{
		chain:    chain,
		heading:  tracker,
		circle:   circle,
		deadband: deadband,
		tuning:   tuning,
		logger:   logger,
	}
	c.Release()
	return c
}

// Release abandons any orientation in progress: every unit must pre-align again before the
// next spin, and the speed inverts go back to their configured values.
func (c *Controller) Release() {
	c.chain.ClearReadyToOrient()
	c.chain.ResetInvert()
	c.orienting = false
}

// StickDirection converts a stick deflection into a wheel direction in radians, relative to
// the chassis heading.
func StickDirection(stick r3.Vector) float64 {
	return math.Pi - math.Atan2(stick.Y, stick.X)
}

func (c *Controller) orientTarget(pov float64) float64 {
	if pov < 0 {
		return swerve.NoInput
	}
	return c.circle.Wrap(c.circle.FromDegrees(pov))
}

// Tick runs one control cycle.  Braking wins over orienting, which wins over travel; whatever
// happens, the speeds accumulated this tick are applied once at the end.
func (c *Controller) Tick(in Input) {
	h := c.heading.Ticks(c.circle)
	magnitude := in.Stick.Norm()

	switch {
	case in.Brake:
		// Braking moves the wheels off their orient poses.
		if c.orienting {
			c.logger.Debug("orientation abandoned for brake")
			c.Release()
		}
		c.chain.Brake()
	case !c.orient(in.POV, h):
	case magnitude > c.deadband:
		c.chain.ResetInvert()
		c.chain.SetDirection(c.circle.Wrap(h + c.circle.FromRadians(StickDirection(in.Stick))))
		c.chain.MovePercent(magnitude * c.tuning.SpeedLimit())
	default:
		c.chain.SetDirection(0)
		c.chain.MovePercent(0)
	}
	c.chain.ApplySpeed()
}

// orient runs the orientation step.  When an orientation finishes the wheels are released
// for the next one.
func (c *Controller) orient(pov, h float64) bool {
	target := c.orientTarget(pov)
	c.chain.SetSpinPercent(c.tuning.SpinPercent())
	done := c.chain.Orient(target, h)
	if done && c.orienting {
		c.logger.Debugw("orientation finished", "target", target, "heading", h)
		c.Release()
	}
	c.orienting = !done
	return done
}
