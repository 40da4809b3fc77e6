// Package pca9685 drives the 16-channel PCA9685 PWM board that the wheel motor controllers
// hang off.
package pca9685

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/exp/io/i2c"
)

const (
	DefaultAddr = 0x40

	RegMode1 = 0x00
	RegMode2 = 0x01

	// Each PWM output has two 16-bit (low byte first) registers.
	// First register is the on time, second is the off time.
	RegLEDBase = 0x06

	RegPreScale = 0xfe // Pre-scaler for PWM frequency.

	NumChannels = 16

	PWMPeriod = 20 * time.Millisecond
	PWMMax    = 4095
)

var ErrChannel = errors.New("PWM channel out of range")

type Interface interface {
	Configure() error
	// SetPulse sets the high time of each 20ms period on a channel.
	SetPulse(channel int, pulse time.Duration) error
	// SetPWM sets the duty cycle of a channel, 0-1.
	SetPWM(channel int, value float64) error
	Close() error
}

type port interface {
	WriteReg(reg byte, buf []byte) error
	Close() error
}

type PCA9685 struct {
	lock sync.Mutex
	dev  port
}

func New(deviceFile string, addr int) (*PCA9685, error) {
	dev, err := i2c.Open(&i2c.Devfs{Dev: deviceFile}, addr)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open PCA9685 on %s", deviceFile)
	}
	return &PCA9685{
		dev: dev,
	}, nil
}

func (p *PCA9685) Configure() error {
	p.lock.Lock()
	defer p.lock.Unlock()

	// Put device to sleep.
	if err := p.dev.WriteReg(RegMode1, []byte{0x11}); err != nil {
		return errors.Wrap(err, "PCA9685 sleep")
	}
	// Update pre-scaler for 50Hz.
	if err := p.dev.WriteReg(RegPreScale, []byte{0x79}); err != nil {
		return errors.Wrap(err, "PCA9685 prescale")
	}
	// Trigger a reset
	if err := p.dev.WriteReg(RegMode1, []byte{0x01}); err != nil {
		return errors.Wrap(err, "PCA9685 reset")
	}
	// Required delay after reset.
	time.Sleep(1 * time.Millisecond)
	// Enable.
	return errors.Wrap(p.dev.WriteReg(RegMode1, []byte{0x81}), "PCA9685 enable")
}

// PulseCounts converts a pulse width into the off-count for a 20ms period.
func PulseCounts(pulse time.Duration) uint16 {
	if pulse < 0 {
		pulse = 0
	} else if pulse > PWMPeriod {
		pulse = PWMPeriod
	}
	return uint16(PWMMax * pulse / PWMPeriod)
}

func (p *PCA9685) SetPulse(channel int, pulse time.Duration) error {
	return p.write(channel, PulseCounts(pulse))
}

func (p *PCA9685) SetPWM(channel int, value float64) error {
	if value < 0 {
		value = 0
	} else if value > 1 {
		value = 1
	}
	return p.write(channel, uint16(PWMMax*value))
}

func (p *PCA9685) write(channel int, count uint16) error {
	if channel < 0 || channel >= NumChannels {
		return errors.Wrapf(ErrChannel, "channel %d", channel)
	}
	addr := RegLEDBase + channel*4

	p.lock.Lock()
	defer p.lock.Unlock()
	return p.dev.WriteReg(byte(addr), []byte{0, 0, byte(count & 0xff), byte(count >> 8)})
}

func (p *PCA9685) Close() error {
	return p.dev.Close()
}

// Dummy records the last pulse set on each channel.
type Dummy struct {
	lock   sync.Mutex
	pulses map[int]time.Duration
}

func NewDummy() *Dummy {
	return &Dummy{pulses: map[int]time.Duration{}}
}

func (*Dummy) Configure() error {
	return nil
}

func (d *Dummy) SetPulse(channel int, pulse time.Duration) error {
	if channel < 0 || channel >= NumChannels {
		return errors.Wrapf(ErrChannel, "channel %d", channel)
	}
	d.lock.Lock()
	defer d.lock.Unlock()
	d.pulses[channel] = pulse
	return nil
}

func (d *Dummy) SetPWM(channel int, value float64) error {
	return d.SetPulse(channel, time.Duration(value*float64(PWMPeriod)))
}

// Pulse returns the last pulse set on channel.
func (d *Dummy) Pulse(channel int) (time.Duration, bool) {
	d.lock.Lock()
	defer d.lock.Unlock()
	p, ok := d.pulses[channel]
	return p, ok
}

func (*Dummy) Close() error {
	return nil
}

var (
	_ Interface = (*PCA9685)(nil)
	_ Interface = (*Dummy)(nil)
)
