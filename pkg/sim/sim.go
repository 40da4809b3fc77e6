// Package sim stands in for the drivetrain hardware: wheels whose steering moves when driven
// and a chassis whose yaw follows the wheel speeds.
package sim

import (
	"sync"
	"time"

	"github.com/tigerbot-team/swerve/pkg/ticks"
)

// Actuator records the output it is driven with.
type Actuator struct {
	lock     sync.Mutex
	percent  float64
	inverted bool
}

func (a *Actuator) SetPercent(v float64) {
	a.lock.Lock()
	defer a.lock.Unlock()
	a.percent = v
}

func (a *Actuator) SetInverted(inverted bool) {
	a.lock.Lock()
	defer a.lock.Unlock()
	a.inverted = inverted
}

// Output is the effective output, with the invert applied.
func (a *Actuator) Output() float64 {
	a.lock.Lock()
	defer a.lock.Unlock()
	if a.inverted {
		return -a.percent
	}
	return a.percent
}

func (a *Actuator) Inverted() bool {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.inverted
}

type Wheel struct {
	Speed     *Actuator
	Direction *Actuator

	circle ticks.Circle
	// steerRate is ticks per second at full steering output.
	steerRate float64

	lock     sync.Mutex
	position float64
}

func NewWheel(circle ticks.Circle, steerRate float64) *Wheel {
	return &Wheel{
		Speed:     &Actuator{},
		Direction: &Actuator{},
		circle:    circle,
		steerRate: steerRate,
	}
}

// AbsolutePosition is the raw sensor reading.
func (w *Wheel) AbsolutePosition() float64 {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.position
}

func (w *Wheel) SetAbsolutePosition(raw float64) {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.position = w.circle.Wrap(raw)
}

// Step advances the steering by dt at the current direction output.
func (w *Wheel) Step(dt time.Duration) {
	out := w.Direction.Output()
	w.lock.Lock()
	defer w.lock.Unlock()
	w.position = w.circle.Wrap(w.position + out*w.steerRate*dt.Seconds())
}

// Chassis turns wheel speeds into yaw.  Wheels on the leading diagonal push the chassis
// clockwise when driven forwards; the others push it anticlockwise.
type Chassis struct {
	// spinRate is degrees per second with every wheel spinning at full output.
	spinRate float64

	lock     sync.Mutex
	leading  []*Wheel
	trailing []*Wheel
	yaw      float64
}

func NewChassis(spinRate float64) *Chassis {
	return &Chassis{spinRate: spinRate}
}

func (c *Chassis) AddWheel(w *Wheel, leadingDiagonal bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if leadingDiagonal {
		c.leading = append(c.leading, w)
	} else {
		c.trailing = append(c.trailing, w)
	}
}

func (c *Chassis) Wheels() []*Wheel {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append(append([]*Wheel(nil), c.leading...), c.trailing...)
}

// Step advances every wheel and the chassis yaw by dt.
func (c *Chassis) Step(dt time.Duration) {
	c.lock.Lock()
	defer c.lock.Unlock()
	n := len(c.leading) + len(c.trailing)
	if n == 0 {
		return
	}
	var torque float64
	for _, w := range c.leading {
		w.Step(dt)
		torque += w.Speed.Output()
	}
	for _, w := range c.trailing {
		w.Step(dt)
		torque -= w.Speed.Output()
	}
	c.yaw += torque / float64(n) * c.spinRate * dt.Seconds()
}

// YawDegrees is the accumulated yaw, clockwise positive.
func (c *Chassis) YawDegrees() float64 {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.yaw
}

func (c *Chassis) SetYaw(deg float64) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.yaw = deg
}
