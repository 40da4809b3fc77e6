package swerve

import (
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
)

var (
	ErrNilUnit       = errors.New("cannot link a nil unit")
	ErrCycle         = errors.New("unit is already in this chain")
	ErrAlreadyLinked = errors.New("unit is already linked into another chain")
)

// Chain is the ordered group of units that every drivetrain command is broadcast to.  Its
// membership is fixed once built.
type Chain struct {
	units  []*Unit
	orient OrientConfig
	logger golog.Logger

	barrierPassed bool
	converged     bool
}

// NewChain links the given units in order.
func NewChain(orient OrientConfig, logger golog.Logger, units ...*Unit) (*Chain, error) {
	if orient.Circle <= 0 {
		return nil, errors.New("orient circle must be positive")
	}
	if logger == nil {
		logger = golog.Global()
	}
	c := &Chain{
		orient: orient,
		logger: logger,
	}
	for _, u := range units {
		if err := c.Link(u); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Link appends u after the current tail.
func (c *Chain) Link(u *Unit) error {
	if u == nil {
		return ErrNilUnit
	}
	for _, existing := range c.units {
		if existing == u {
			return errors.Wrapf(ErrCycle, "unit %q", u.name)
		}
	}
	if u.linked {
		return errors.Wrapf(ErrAlreadyLinked, "unit %q", u.name)
	}
	u.linked = true
	c.units = append(c.units, u)
	return nil
}

// Head returns the first unit, or nil if the chain is empty.
func (c *Chain) Head() *Unit {
	if len(c.units) == 0 {
		return nil
	}
	return c.units[0]
}

// Units returns the units in broadcast order.
func (c *Chain) Units() []*Unit {
	return append([]*Unit(nil), c.units...)
}

func (c *Chain) Len() int {
	return len(c.units)
}

// SetDirection steers every unit to the same target.
func (c *Chain) SetDirection(target float64) {
	for _, u := range c.units {
		u.SetDirection(target)
	}
}

// MovePercent adds delta to every unit's pending speed.
func (c *Chain) MovePercent(delta float64) {
	for _, u := range c.units {
		u.MovePercent(delta)
	}
}

// ApplySpeed commands every unit's pending speed and clears it.  Call it exactly once per
// tick, after the last MovePercent.
func (c *Chain) ApplySpeed() {
	for _, u := range c.units {
		u.ApplySpeed()
	}
}

func (c *Chain) ResetInvert() {
	for _, u := range c.units {
		u.ResetInvert()
	}
}

func (c *Chain) Brake() {
	for _, u := range c.units {
		u.Brake()
	}
}

// AllReadyToOrient is true only when every unit is ready.  An empty chain is never ready.
func (c *Chain) AllReadyToOrient() bool {
	if len(c.units) == 0 {
		return false
	}
	for _, u := range c.units {
		if !u.readyToOrient {
			return false
		}
	}
	return true
}

// ClearReadyToOrient drops every unit's ready latch.
func (c *Chain) ClearReadyToOrient() {
	for _, u := range c.units {
		u.ClearReadyToOrient()
	}
	c.barrierPassed = false
}
