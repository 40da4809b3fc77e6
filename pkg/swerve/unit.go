package swerve

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/tigerbot-team/swerve/pkg/ticks"
)

// Role is the corner a unit is mounted on.
type Role int

const (
	FrontLeft  Role = 1
	FrontRight Role = 2
	RearRight  Role = 3
	RearLeft   Role = 4
)

func (r Role) String() string {
	switch r {
	case FrontLeft:
		return "front-left"
	case FrontRight:
		return "front-right"
	case RearRight:
		return "rear-right"
	case RearLeft:
		return "rear-left"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

func (r Role) Valid() bool {
	return r >= FrontLeft && r <= RearLeft
}

// LeadingDiagonal is true for the front-left/rear-right pair.
func (r Role) LeadingDiagonal() bool {
	return r == FrontLeft || r == RearRight
}

// brakePose is the steering angle, in degrees, that puts the wheels in an X.
func (r Role) brakePose() float64 {
	if r.LeadingDiagonal() {
		return 45
	}
	return 315
}

// orientPose is the steering angle, in degrees, that points the wheel along the turning
// circle.  It is the opposite diagonal to brakePose.
func (r Role) orientPose() float64 {
	if r.LeadingDiagonal() {
		return 315
	}
	return 45
}

// UnitConfig describes one wheel unit.
type UnitConfig struct {
	Name string
	Role Role
	// Offset is the raw sensor reading when the wheel points straight ahead.
	Offset            float64
	SpeedInverted     bool
	DirectionInverted bool
	Loop              LoopConfig
}

// Unit is one wheel: a speed actuator, a steering actuator under a DirectionLoop, and the
// steering sensor.  All methods act on this unit only; use a Chain to command the group.
type Unit struct {
	name   string
	role   Role
	offset float64
	circle ticks.Circle

	speedInvert     bool
	directionInvert bool

	speed     Actuator
	direction Actuator
	loop      *DirectionLoop
	sensor    PositionSensor

	// Velocity isn't sticky: percent is zeroed every time it is applied.
	percent       float64
	readyToOrient bool
	linked        bool
}

func NewUnit(cfg UnitConfig, speed, direction Actuator, sensor PositionSensor) (*Unit, error) {
	if speed == nil || direction == nil || sensor == nil {
		return nil, errors.Errorf("unit %q: speed, direction and sensor are all required", cfg.Name)
	}
	if !cfg.Role.Valid() {
		return nil, errors.Errorf("unit %q: invalid role %d", cfg.Name, int(cfg.Role))
	}
	if cfg.Loop.Circumference <= 0 {
		return nil, errors.Errorf("unit %q: circumference must be positive", cfg.Name)
	}

	u := &Unit{
		name:            cfg.Name,
		role:            cfg.Role,
		offset:          cfg.Offset,
		circle:          cfg.Loop.Circumference,
		speedInvert:     cfg.SpeedInverted,
		directionInvert: cfg.DirectionInverted,
		speed:           speed,
		direction:       direction,
		loop:            NewDirectionLoop(direction, cfg.Loop),
		sensor:          sensor,
	}
	speed.SetInverted(cfg.SpeedInverted)
	direction.SetInverted(cfg.DirectionInverted)
	return u, nil
}

func (u *Unit) Name() string {
	return u.name
}

func (u *Unit) Role() Role {
	return u.role
}

// Direction returns the current steering position in ticks, offset-corrected and wrapped.
func (u *Unit) Direction() float64 {
	return u.circle.Wrap(u.sensor.AbsolutePosition() - u.offset)
}

// SetDirection steers towards target and runs one iteration of the steering loop.
func (u *Unit) SetDirection(target float64) {
	u.loop.SetTarget(u.circle.Wrap(target))
	u.loop.Update(u.Direction())
}

// MovePercent adds to the speed that the next ApplySpeed will command.
func (u *Unit) MovePercent(delta float64) {
	u.percent += delta
}

// ApplySpeed commands the accumulated speed and clears it.
func (u *Unit) ApplySpeed() {
	u.speed.SetPercent(u.percent)
	u.percent = 0
}

// Accumulated returns the speed waiting for the next ApplySpeed.
func (u *Unit) Accumulated() float64 {
	return u.percent
}

// ResetInvert puts both actuators back to their configured direction, undoing any invert
// applied while orienting.
func (u *Unit) ResetInvert() {
	u.speed.SetInverted(u.speedInvert)
	u.direction.SetInverted(u.directionInvert)
}

// Brake turns the wheel into the X pose and stops it.  Any speed accumulated this tick is
// dropped so the ApplySpeed closing the tick cannot undo the stop.
func (u *Unit) Brake() {
	u.SetDirection(u.circle.FromDegrees(u.role.brakePose()))
	u.percent = 0
	u.speed.SetPercent(0)
}

func (u *Unit) ReadyToOrient() bool {
	return u.readyToOrient
}

func (u *Unit) ClearReadyToOrient() {
	u.readyToOrient = false
}

// preAlign steers to the orient pose and updates the ready latch.  It returns true if the
// unit became ready on this call.
func (u *Unit) preAlign(cfg OrientConfig) bool {
	pose := u.circle.FromDegrees(u.role.orientPose())
	u.SetDirection(pose)

	wasReady := u.readyToOrient
	there := u.circle.WithinOf(u.Direction(), cfg.AlignDeadband, pose)
	switch cfg.Policy {
	case ReevaluateEveryTick:
		u.readyToOrient = there
	default:
		if there {
			u.readyToOrient = true
		}
	}
	return u.readyToOrient && !wasReady
}

// spin drives the wheel to rotate the chassis towards a heading delta.  The diagonal pairs
// turn in opposite senses.  The accumulator is set to the spin speed, not added to, so the
// ApplySpeed closing the tick commands it exactly once however often spin ran.
func (u *Unit) spin(delta, percent float64) {
	var invert bool
	if u.role.LeadingDiagonal() {
		invert = delta < 0
	} else {
		invert = delta > 0
	}
	u.speed.SetInverted(u.speedInvert != invert)
	u.speed.SetPercent(percent)
	u.percent = percent
}
