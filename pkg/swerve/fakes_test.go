package swerve

import (
	"testing"

	"github.com/edaniels/golog"
	"github.com/stretchr/testify/require"

	"github.com/tigerbot-team/swerve/pkg/ticks"
)

type fakeActuator struct {
	inverted    bool
	invertCalls int
	outputs     []float64
}

func (a *fakeActuator) SetPercent(v float64) {
	a.outputs = append(a.outputs, v)
}

func (a *fakeActuator) SetInverted(inverted bool) {
	a.inverted = inverted
	a.invertCalls++
}

func (a *fakeActuator) last() float64 {
	if len(a.outputs) == 0 {
		return 0
	}
	return a.outputs[len(a.outputs)-1]
}

type fakeSensor struct {
	position float64
	reads    int
}

func (s *fakeSensor) AbsolutePosition() float64 {
	s.reads++
	return s.position
}

type rig struct {
	unit      *Unit
	speed     *fakeActuator
	direction *fakeActuator
	sensor    *fakeSensor
}

// pointAt moves the simulated steering so that Direction() reads ticks.
func (r *rig) pointAt(t float64) {
	r.sensor.position = t + r.unit.offset
}

func (r *rig) pointAtDegrees(deg float64) {
	r.pointAt(ticks.Encoder12Bit.FromDegrees(deg))
}

func newRig(t *testing.T, role Role, offset float64) *rig {
	r := &rig{
		speed:     &fakeActuator{},
		direction: &fakeActuator{},
		sensor:    &fakeSensor{position: offset},
	}
	var err error
	r.unit, err = NewUnit(UnitConfig{
		Name:   role.String(),
		Role:   role,
		Offset: offset,
		Loop:   DefaultLoopConfig(),
	}, r.speed, r.direction, r.sensor)
	require.NoError(t, err)
	return r
}

func newRigChain(t *testing.T, orient OrientConfig, roles ...Role) (*Chain, []*rig) {
	var rigs []*rig
	var units []*Unit
	for i, role := range roles {
		r := newRig(t, role, float64(100*i))
		rigs = append(rigs, r)
		units = append(units, r.unit)
	}
	c, err := NewChain(orient, golog.NewTestLogger(t), units...)
	require.NoError(t, err)
	return c, rigs
}

// resetCounts clears everything the fakes have recorded so far.
func resetCounts(rigs []*rig) {
	for _, r := range rigs {
		r.speed.outputs = nil
		r.speed.invertCalls = 0
		r.direction.outputs = nil
		r.direction.invertCalls = 0
		r.sensor.reads = 0
	}
}
