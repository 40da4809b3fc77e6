package swerve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUnitValidation(t *testing.T) {
	good := UnitConfig{Name: "fl", Role: FrontLeft, Loop: DefaultLoopConfig()}

	_, err := NewUnit(good, nil, &fakeActuator{}, &fakeSensor{})
	assert.Error(t, err)
	_, err = NewUnit(good, &fakeActuator{}, &fakeActuator{}, nil)
	assert.Error(t, err)

	for _, role := range []Role{0, 5, -1} {
		cfg := good
		cfg.Role = role
		_, err = NewUnit(cfg, &fakeActuator{}, &fakeActuator{}, &fakeSensor{})
		assert.Error(t, err, "role %d", role)
	}

	cfg := good
	cfg.Loop = LoopConfig{}
	_, err = NewUnit(cfg, &fakeActuator{}, &fakeActuator{}, &fakeSensor{})
	assert.Error(t, err)

	u, err := NewUnit(good, &fakeActuator{}, &fakeActuator{}, &fakeSensor{})
	require.NoError(t, err)
	assert.Equal(t, "fl", u.Name())
	assert.Equal(t, FrontLeft, u.Role())
}

func TestNewUnitAppliesConfiguredInverts(t *testing.T) {
	speed, direction := &fakeActuator{}, &fakeActuator{}
	_, err := NewUnit(UnitConfig{
		Role:          RearLeft,
		SpeedInverted: true,
		Loop:          DefaultLoopConfig(),
	}, speed, direction, &fakeSensor{})
	require.NoError(t, err)
	assert.True(t, speed.inverted)
	assert.False(t, direction.inverted)
	assert.Equal(t, 1, speed.invertCalls)
	assert.Equal(t, 1, direction.invertCalls)
}

func TestDirectionAppliesOffsetAndWraps(t *testing.T) {
	r := newRig(t, FrontLeft, 200)
	for _, tc := range []struct {
		raw, expected float64
	}{
		{200, 0},
		{100, 3996},
		{5000, 704},
		{4296, 0},
	} {
		r.sensor.position = tc.raw
		assert.InDelta(t, tc.expected, r.unit.Direction(), 1e-9, "raw %v", tc.raw)
	}
}

func TestSetDirectionWrapsTargetAndRunsLoopOnce(t *testing.T) {
	r := newRig(t, FrontLeft, 0)
	r.pointAt(0)
	r.unit.SetDirection(-100)
	assert.InDelta(t, 3996, r.unit.loop.Target(), 1e-9)
	require.Len(t, r.direction.outputs, 1)
	// 100 ticks the short way back, at P=0.0005.
	assert.InDelta(t, -0.05, r.direction.last(), 1e-9)
	assert.Equal(t, 1, r.sensor.reads)
	assert.Empty(t, r.speed.outputs)
}

func TestVelocityIsNotSticky(t *testing.T) {
	r := newRig(t, RearRight, 0)
	r.unit.MovePercent(0.1)
	r.unit.MovePercent(0.2)
	assert.Empty(t, r.speed.outputs, "MovePercent must not command the actuator")
	assert.InDelta(t, 0.3, r.unit.Accumulated(), 1e-9)

	r.unit.ApplySpeed()
	assert.InDelta(t, 0.3, r.speed.last(), 1e-9)
	assert.Zero(t, r.unit.Accumulated())

	r.unit.ApplySpeed()
	assert.Zero(t, r.speed.last())
	assert.Len(t, r.speed.outputs, 2)
}

func TestBrakePoses(t *testing.T) {
	for _, tc := range []struct {
		role   Role
		target float64
	}{
		{FrontLeft, 512},
		{RearRight, 512},
		{FrontRight, 3584},
		{RearLeft, 3584},
	} {
		t.Run(tc.role.String(), func(t *testing.T) {
			r := newRig(t, tc.role, 0)
			r.pointAt(tc.target)
			r.unit.MovePercent(0.5)
			r.unit.Brake()
			assert.InDelta(t, tc.target, r.unit.loop.Target(), 1e-9)
			assert.Equal(t, []float64{0}, r.speed.outputs)
			assert.Zero(t, r.direction.last())
			assert.Zero(t, r.unit.Accumulated())
		})
	}
}

func TestBrakeDropsPendingSpeed(t *testing.T) {
	r := newRig(t, FrontLeft, 0)
	r.unit.MovePercent(0.5)
	r.unit.Brake()
	r.unit.ApplySpeed()
	assert.Equal(t, []float64{0, 0}, r.speed.outputs)
}

func TestSpinInvertsOppositeDiagonals(t *testing.T) {
	for _, tc := range []struct {
		role   Role
		delta  float64
		invert bool
	}{
		{FrontLeft, 40, false},
		{RearRight, 40, false},
		{FrontRight, 40, true},
		{RearLeft, 40, true},
		{FrontLeft, -40, true},
		{RearRight, -40, true},
		{FrontRight, -40, false},
		{RearLeft, -40, false},
	} {
		r := newRig(t, tc.role, 0)
		r.unit.spin(tc.delta, 0.2)
		assert.Equal(t, tc.invert, r.speed.inverted, "%v delta %v", tc.role, tc.delta)
		assert.Equal(t, []float64{0.2}, r.speed.outputs)
		assert.InDelta(t, 0.2, r.unit.Accumulated(), 1e-9)
	}
}

func TestSpinRespectsConfiguredInvert(t *testing.T) {
	speed := &fakeActuator{}
	u, err := NewUnit(UnitConfig{
		Role:          FrontRight,
		SpeedInverted: true,
		Loop:          DefaultLoopConfig(),
	}, speed, &fakeActuator{}, &fakeSensor{})
	require.NoError(t, err)

	u.spin(40, 0.2)
	assert.False(t, speed.inverted)
	u.spin(-40, 0.2)
	assert.True(t, speed.inverted)

	u.spin(40, 0.2)
	u.ResetInvert()
	assert.True(t, speed.inverted)
}

func TestSpinSetsPendingSpeed(t *testing.T) {
	r := newRig(t, RearLeft, 0)
	r.unit.MovePercent(0.3)
	r.unit.spin(40, 0.2)
	r.unit.spin(40, 0.2)
	assert.InDelta(t, 0.2, r.unit.Accumulated(), 1e-9)
}
