package teleop

import (
	"context"
	"sync"
	"time"

	"github.com/edaniels/golog"

	"github.com/tigerbot-team/swerve/pkg/config"
	"github.com/tigerbot-team/swerve/pkg/hardware"
	"github.com/tigerbot-team/swerve/pkg/joystick"
	"github.com/tigerbot-team/swerve/pkg/tunable"
)

const (
	ButtonBrake      = joystick.ButtonTriangle
	ButtonNextTuning = joystick.ButtonSquare
	ButtonPrevTuning = joystick.ButtonCircle
	ButtonTuneUp     = joystick.ButtonR1
	ButtonTuneDown   = joystick.ButtonL1

	SpeedLimitStep = 0.05
	MaxSpeedLimit  = 1.0
	MinSpeedLimit  = 0.05

	SpinPercentStep = 0.05
	MaxSpinPercent  = 0.5
	MinSpinPercent  = 0.05
)

type Mode struct {
	hw     hardware.Interface
	drive  config.Drive
	logger golog.Logger

	// tunables are cycled with ButtonNextTuning/PrevTuning and nudged with ButtonTuneUp/Down.
	tunables    *tunable.Tunables
	speedLimit  *tunable.Tunable
	spinPercent *tunable.Tunable

	cancel         context.CancelFunc
	stopWG         sync.WaitGroup
	joystickEvents chan *joystick.Event
}

func New(hw hardware.Interface, drive config.Drive, logger golog.Logger) *Mode {
	tunables := tunable.New(logger)
	return &Mode{
		hw:             hw,
		drive:          drive,
		logger:         logger,
		tunables:       tunables,
		speedLimit:     tunables.Create("speed limit", drive.SpeedLimit, SpeedLimitStep, MinSpeedLimit, MaxSpeedLimit),
		spinPercent:    tunables.Create("spin percent", hw.Chain().SpinPercent(), SpinPercentStep, MinSpinPercent, MaxSpinPercent),
		joystickEvents: make(chan *joystick.Event),
	}
}

func (m *Mode) Name() string {
	return "Teleop mode"
}

func (m *Mode) Start(ctx context.Context) {
	m.hw.Heading().Zero()
	m.stopWG.Add(1)
	var loopCtx context.Context
	loopCtx, m.cancel = context.WithCancel(ctx)
	go m.loop(loopCtx)
}

func (m *Mode) Stop() {
	m.cancel()
	m.stopWG.Wait()
}

func (m *Mode) OnJoystickEvent(event *joystick.Event) {
	m.joystickEvents <- event
}

func (m *Mode) loop(ctx context.Context) {
	defer m.stopWG.Done()

	controller := NewController(
		m.hw.Chain(),
		m.hw.Heading(),
		m.hw.Circle(),
		m.drive.StickDeadband,
		Tuning{SpeedLimit: m.speedLimit.Get, SpinPercent: m.spinPercent.Get},
		m.logger,
	)
	var state joystick.State
	ticker := time.NewTicker(m.drive.TickPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-m.joystickEvents:
			state.Apply(event)
			switch {
			case event.Pressed(ButtonNextTuning):
				m.tunables.SelectNext()
			case event.Pressed(ButtonPrevTuning):
				m.tunables.SelectPrev()
			case event.Pressed(ButtonTuneUp):
				m.tunables.Nudge(1)
			case event.Pressed(ButtonTuneDown):
				m.tunables.Nudge(-1)
			}
		case <-ticker.C:
			controller.Tick(InputFrom(&state))
		}
	}
}

// InputFrom reads the teleop controls out of the joystick state.
func InputFrom(s *joystick.State) Input {
	return Input{
		Brake: s.Button(ButtonBrake),
		POV:   s.POV(),
		Stick: s.LeftStick(),
	}
}
