package swerve

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tigerbot-team/swerve/pkg/ticks"
)

func TestDirectionLoopProportional(t *testing.T) {
	for _, tc := range []struct {
		name            string
		target, current float64
		expected        float64
	}{
		{"on target", 100, 100, 0},
		{"small positive error", 100, 0, 0.05},
		{"small negative error", 0, 100, -0.05},
		{"clamped high", 1000, 0, 0.2},
		{"clamped low", 0, 1000, -0.2},
		{"short way across zero", 10, 4090, 0.008},
		{"short way back across zero", 4090, 10, -0.008},
	} {
		t.Run(tc.name, func(t *testing.T) {
			act := &fakeActuator{}
			l := NewDirectionLoop(act, DefaultLoopConfig())
			l.SetTarget(tc.target)
			out := l.Update(tc.current)
			assert.InDelta(t, tc.expected, out, 1e-9)
			assert.Equal(t, []float64{out}, act.outputs)
			assert.Equal(t, tc.target, l.Target())
		})
	}
}

func TestDirectionLoopIntegral(t *testing.T) {
	act := &fakeActuator{}
	l := NewDirectionLoop(act, LoopConfig{
		I:             0.5,
		MinOutput:     -1,
		MaxOutput:     1,
		Circumference: ticks.Encoder12Bit,
		Period:        100 * time.Millisecond,
	})
	l.SetTarget(2)
	assert.InDelta(t, 0.1, l.Update(0), 1e-9)
	assert.InDelta(t, 0.2, l.Update(0), 1e-9)
	assert.Len(t, act.outputs, 2)
}

func TestDirectionLoopToleratesBadConfig(t *testing.T) {
	act := &fakeActuator{}
	l := NewDirectionLoop(act, LoopConfig{P: 1, MinOutput: 0.5, MaxOutput: -0.5})
	l.SetTarget(100)
	assert.InDelta(t, 0.5, l.Update(0), 1e-9)
}
