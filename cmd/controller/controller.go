package main

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"github.com/tigerbot-team/swerve/pkg/config"
	"github.com/tigerbot-team/swerve/pkg/disabledmode"
	"github.com/tigerbot-team/swerve/pkg/hardware"
	"github.com/tigerbot-team/swerve/pkg/joystick"
	"github.com/tigerbot-team/swerve/pkg/teleop"
	"github.com/tigerbot-team/swerve/pkg/testmode"
)

type Mode interface {
	Name() string
	Start(ctx context.Context)
	Stop()
}

type JoystickUser interface {
	OnJoystickEvent(event *joystick.Event)
}

var CLI struct {
	Config        string        `help:"Drivetrain config file." default:"/cfg/swerve.yaml" env:"SWERVE_CONFIG" type:"path"`
	Joystick      string        `help:"Joystick device." default:"/dev/input/js0" env:"JOYSTICK_DEVICE"`
	DummyHardware bool          `help:"Drive simulated wheels instead of the real ones." env:"SWERVE_DUMMY_HARDWARE"`
	TestHold      time.Duration `help:"How long test mode holds each pose." default:"5s"`
	Debug         bool          `help:"Log at debug level."`
}

func main() {
	kong.Parse(&CLI, kong.Description("Swerve drivetrain controller."))

	var logger golog.Logger
	if CLI.Debug {
		logger = golog.NewDebugLogger("swerve")
	} else {
		logger = golog.NewDevelopmentLogger("swerve")
	}
	logger.Infow("---- swerve ----", "GOMAXPROCS", runtime.GOMAXPROCS(0))

	if err := run(logger); err != nil {
		logger.Fatalw("controller failed", "error", err)
	}
}

func loadConfig(logger golog.Logger) (*config.Config, error) {
	cfg, err := config.Load(CLI.Config)
	if os.IsNotExist(errors.Cause(err)) {
		logger.Warnw("no config file; using defaults", "path", CLI.Config)
		return config.Default(), nil
	}
	if err != nil {
		return nil, err
	}
	// Write out the config that we are using.
	if path, err := cfg.WriteInUse(CLI.Config); err != nil {
		logger.Warnw("failed to record config in use", "error", err)
	} else {
		logger.Infow("config in use", "path", path)
	}
	return cfg, nil
}

func run(logger golog.Logger) error {
	cfg, err := loadConfig(logger)
	if err != nil {
		return err
	}

	// Our global context, we cancel it to trigger shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Hook Ctrl-C etc.
	registerSignalHandlers(cancel, logger)

	// Initialise the hardware.
	var hw hardware.Interface
	if CLI.DummyHardware {
		hw, err = hardware.NewDummy(cfg, logger)
	} else {
		hw, err = hardware.New(cfg, logger)
	}
	if err != nil {
		return errors.Wrap(err, "failed to initialise hardware")
	}
	defer func() {
		logger.Info("Zeroing motors for shut down")
		hw.Shutdown()
		time.Sleep(100 * time.Millisecond)
	}()
	hw.Start(ctx)

	// Wait for the joystick and kick off a background thread to read from it.
	joystickEvents := initJoystick(ctx, cancel, logger)

	allModes := []Mode{
		disabledmode.New(hw, cfg.Drive.TickPeriod),
		teleop.New(hw, cfg.Drive, logger),
		testmode.New(hw, cfg.Drive.TickPeriod, CLI.TestHold, logger),
	}
	var activeMode Mode = allModes[0]
	logger.Infof("----- %s -----", activeMode.Name())
	activeMode.Start(ctx)
	activeModeIdx := 0

	switchMode := func(delta int) {
		activeMode.Stop()
		hw.StopMotors()
		activeModeIdx += delta
		activeModeIdx = (activeModeIdx + len(allModes)) % len(allModes)
		activeMode = allModes[activeModeIdx]
		logger.Infof("----- %s -----", activeMode.Name())
		activeMode.Start(ctx)
	}

	watchdog := time.NewTicker(5 * time.Second)
	defer watchdog.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Context done, stopping active mode and shutting down")
			activeMode.Stop()
			return nil
		case event, ok := <-joystickEvents:
			if !ok {
				logger.Warn("Joystick events channel closed!")
				activeMode.Stop()
				return nil
			}
			// Intercept the Options button to implement mode switching.
			switch {
			case event.Pressed(joystick.ButtonOptions):
				logger.Info("Options pressed: switching modes >>")
				switchMode(1)
				continue
			case event.Pressed(joystick.ButtonShare):
				logger.Info("Share pressed: switching modes <<")
				switchMode(-1)
				continue
			}
			// Pass other joystick events through if this mode requires them.
			if ju, ok := activeMode.(JoystickUser); ok {
				deliver(ju, event)
			}
		case <-watchdog.C:
			logger.Debug("Main loop still running")
		}
	}
}

// deliver hands an event to the active mode.  Modes only queue events, so a long block means
// the mode has deadlocked.
func deliver(ju JoystickUser, event *joystick.Event) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ju.OnJoystickEvent(event)
	}()
	timeout := time.NewTimer(1 * time.Second)
	defer timeout.Stop()
	select {
	case <-done:
	case <-timeout.C:
		panic("Deadlock? Active mode blocked OnJoystickEvent for >1s")
	}
}

func initJoystick(ctx context.Context, cancel context.CancelFunc, logger golog.Logger) chan *joystick.Event {
	joystickEvents := make(chan *joystick.Event, 1)
	firstLog := true
	for ctx.Err() == nil {
		j, err := joystick.Open(CLI.Joystick)
		if err != nil {
			if firstLog {
				logger.Warnw("Waiting for joystick", "error", err)
				firstLog = false
			}
			time.Sleep(1 * time.Second)
			continue
		}

		logger.Infow("Opened joystick", "device", CLI.Joystick)
		go func() {
			defer cancel()
			err := loopReadingJoystickEvents(ctx, j, joystickEvents, logger)
			logger.Errorw("Joystick failed", "error", err)
		}()
		break
	}
	return joystickEvents
}

func registerSignalHandlers(cancelFunc context.CancelFunc, logger golog.Logger) {
	// Hook Ctrl-C to cause shut down.
	signals := make(chan os.Signal, 2)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		s := <-signals
		logger.Infow("Signal", "signal", s)
		cancelFunc()
		time.Sleep(2 * time.Second)
		os.Exit(0)
	}()
}

func loopReadingJoystickEvents(ctx context.Context, j *joystick.Joystick, events chan *joystick.Event, logger golog.Logger) error {
	defer close(events)
	defer j.Close()
	for ctx.Err() == nil {
		event, err := j.ReadEvent()
		if err != nil {
			return err
		}
		logger.Debugw("Joy", "event", event)
		events <- event
	}
	return ctx.Err()
}
