// Package spark drives a PWM motor controller (REV Spark style) from one PCA9685 channel.
package spark

import (
	"sync"
	"time"

	"github.com/edaniels/golog"

	"github.com/tigerbot-team/swerve/pkg/pca9685"
)

const (
	NeutralPulse = 1500 * time.Microsecond
	// PulseRange is the pulse offset from neutral at full output.
	PulseRange = 500 * time.Microsecond
)

type Motor struct {
	name    string
	pwm     pca9685.Interface
	channel int
	logger  golog.Logger

	lock     sync.Mutex
	inverted bool
	percent  float64
}

func New(name string, pwm pca9685.Interface, channel int, logger golog.Logger) *Motor {
	return &Motor{
		name:    name,
		pwm:     pwm,
		channel: channel,
		logger:  logger,
	}
}

// Pulse returns the pulse width for a percent output in [-1, 1].
func Pulse(percent float64) time.Duration {
	if percent > 1 {
		percent = 1
	} else if percent < -1 {
		percent = -1
	}
	return NeutralPulse + time.Duration(percent*float64(PulseRange))
}

// SetPercent sets the motor output.  Write failures are logged; the next tick retries.
func (m *Motor) SetPercent(v float64) {
	m.lock.Lock()
	m.percent = v
	if m.inverted {
		v = -v
	}
	m.lock.Unlock()

	if err := m.pwm.SetPulse(m.channel, Pulse(v)); err != nil {
		m.logger.Errorw("failed to set motor output", "motor", m.name, "channel", m.channel, "error", err)
	}
}

// SetInverted flips the sense of later SetPercent calls.
func (m *Motor) SetInverted(inverted bool) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.inverted = inverted
}

func (m *Motor) Inverted() bool {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.inverted
}

// Percent returns the last output requested, before inversion.
func (m *Motor) Percent() float64 {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.percent
}
