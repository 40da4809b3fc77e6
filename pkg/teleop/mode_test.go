package teleop

import (
	"context"
	"testing"
	"time"

	"github.com/edaniels/golog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerbot-team/swerve/pkg/config"
	"github.com/tigerbot-team/swerve/pkg/hardware"
	"github.com/tigerbot-team/swerve/pkg/joystick"
)

func TestInputFrom(t *testing.T) {
	var s joystick.State
	in := InputFrom(&s)
	assert.False(t, in.Brake)
	assert.Equal(t, float64(joystick.POVReleased), in.POV)

	s.Apply(&joystick.Event{Type: joystick.EventTypeButton, Number: ButtonBrake, Value: 1})
	s.Apply(&joystick.Event{Type: joystick.EventTypeAxis, Number: joystick.AxisDPadX, Value: -joystick.AxisMax})
	s.Apply(&joystick.Event{Type: joystick.EventTypeAxis, Number: joystick.AxisLStickX, Value: joystick.AxisMax})
	in = InputFrom(&s)
	assert.True(t, in.Brake)
	assert.Equal(t, 270.0, in.POV)
	assert.Equal(t, 1.0, in.Stick.X)
}

func TestModeDrivesFromJoystick(t *testing.T) {
	cfg := config.Default()
	d, err := hardware.NewDummy(cfg, golog.NewTestLogger(t))
	require.NoError(t, err)
	d.Chassis().SetYaw(30)

	m := New(d, cfg.Drive, golog.NewTestLogger(t))
	assert.Equal(t, "Teleop mode", m.Name())
	m.Start(context.Background())
	defer m.Stop()
	assert.Zero(t, d.Heading().Degrees(), "heading is zeroed on start")

	m.OnJoystickEvent(&joystick.Event{Type: joystick.EventTypeButton, Number: ButtonTuneUp, Value: 1})
	m.OnJoystickEvent(&joystick.Event{Type: joystick.EventTypeButton, Number: ButtonTuneUp, Value: 0})
	m.OnJoystickEvent(&joystick.Event{Type: joystick.EventTypeAxis, Number: joystick.AxisLStickX, Value: joystick.AxisMax})

	assert.Eventually(t, func() bool {
		for _, s := range speeds(d) {
			if s < 0.249 || s > 0.251 {
				return false
			}
		}
		return true
	}, time.Second, time.Millisecond)

	m.OnJoystickEvent(&joystick.Event{Type: joystick.EventTypeButton, Number: ButtonBrake, Value: 1})
	assert.Eventually(t, func() bool {
		for _, s := range speeds(d) {
			if s != 0 {
				return false
			}
		}
		return true
	}, time.Second, time.Millisecond)
}

func TestModeSelectsTunables(t *testing.T) {
	cfg := config.Default()
	d, err := hardware.NewDummy(cfg, golog.NewTestLogger(t))
	require.NoError(t, err)

	m := New(d, cfg.Drive, golog.NewTestLogger(t))
	m.Start(context.Background())
	press := func(button uint8) {
		m.OnJoystickEvent(&joystick.Event{Type: joystick.EventTypeButton, Number: button, Value: 1})
		m.OnJoystickEvent(&joystick.Event{Type: joystick.EventTypeButton, Number: button, Value: 0})
	}
	press(ButtonTuneDown)
	press(ButtonNextTuning)
	press(ButtonTuneUp)
	press(ButtonTuneUp)
	press(ButtonPrevTuning)
	press(ButtonTuneDown)
	m.Stop()

	assert.InDelta(t, cfg.Drive.SpeedLimit-2*SpeedLimitStep, m.speedLimit.Get(), 1e-9)
	assert.InDelta(t, cfg.Orient.SpinPercent+2*SpinPercentStep, m.spinPercent.Get(), 1e-9)
}

func TestModeStartReleasesOrientation(t *testing.T) {
	cfg := config.Default()
	d, err := hardware.NewDummy(cfg, golog.NewTestLogger(t))
	require.NoError(t, err)

	// A previous teleop session left the wheels latched ready to orient.
	c := newControllerFor(t, d)
	orientUntilAligned(t, d, c, 90)

	m := New(d, cfg.Drive, golog.NewTestLogger(t))
	m.Start(context.Background())
	m.Stop()
	for _, u := range d.Chain().Units() {
		assert.False(t, u.ReadyToOrient(), u.Name())
	}
}
