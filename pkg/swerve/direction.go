package swerve

import (
	"time"

	"github.com/felixge/pidctrl"

	"github.com/tigerbot-team/swerve/pkg/ticks"
)

// LoopConfig holds the steering loop gains.
type LoopConfig struct {
	P, I, D              float64
	MinOutput, MaxOutput float64
	Circumference        ticks.Circle
	// Period is the time between Update calls, used for the integral and derivative terms.
	Period time.Duration
}

// DefaultLoopConfig returns the gains the drivetrain was tuned with.
func DefaultLoopConfig() LoopConfig {
	return LoopConfig{
		P:             0.0005,
		MinOutput:     -0.2,
		MaxOutput:     0.2,
		Circumference: ticks.Encoder12Bit,
		Period:        20 * time.Millisecond,
	}
}

// DirectionLoop drives one steering actuator towards a target position.
type DirectionLoop struct {
	actuator Actuator
	pid      *pidctrl.PIDController
	circle   ticks.Circle
	period   time.Duration

	target float64
}

func NewDirectionLoop(actuator Actuator, cfg LoopConfig) *DirectionLoop {
	minOut, maxOut := cfg.MinOutput, cfg.MaxOutput
	if minOut > maxOut {
		minOut, maxOut = maxOut, minOut
	}
	circle := cfg.Circumference
	if circle <= 0 {
		circle = ticks.Encoder12Bit
	}

	// The controller only ever sees the wrapped error, fed in as -error against a
	// setpoint of zero, so it never has to know about the wrap.
	pid := pidctrl.NewPIDController(cfg.P, cfg.I, cfg.D)
	pid.SetOutputLimits(minOut, maxOut)
	pid.Set(0)

	return &DirectionLoop{
		actuator: actuator,
		pid:      pid,
		circle:   circle,
		period:   cfg.Period,
	}
}

// SetTarget records the position to steer to.  The caller wraps it.
func (l *DirectionLoop) SetTarget(target float64) {
	l.target = target
}

func (l *DirectionLoop) Target() float64 {
	return l.target
}

// Update drives the actuator with the correction for the current reading and returns the
// output it commanded.
func (l *DirectionLoop) Update(current float64) float64 {
	err := l.circle.Delta(l.target, current)
	out := l.pid.UpdateDuration(-err, l.period)
	l.actuator.SetPercent(out)
	return out
}
