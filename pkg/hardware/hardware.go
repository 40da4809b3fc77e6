package hardware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/edaniels/golog"

	"github.com/tigerbot-team/swerve/pkg/cancoder"
	"github.com/tigerbot-team/swerve/pkg/config"
	"github.com/tigerbot-team/swerve/pkg/heading"
	"github.com/tigerbot-team/swerve/pkg/pca9685"
	"github.com/tigerbot-team/swerve/pkg/spark"
	"github.com/tigerbot-team/swerve/pkg/swerve"
	"github.com/tigerbot-team/swerve/pkg/ticks"
)

// StaleSensorAge is how old an encoder or heading reading can get before it is reported.
const StaleSensorAge = 100 * time.Millisecond

// AgeFunc reports how long ago a sensor last produced a reading.  ok is false if it never
// has.
type AgeFunc func(now time.Time) (age time.Duration, ok bool)

type watchedSensor struct {
	name  string
	age   AgeFunc
	stale bool
}

type Hardware struct {
	cfg    *config.Config
	logger golog.Logger

	pwm     pca9685.Interface
	bus     *cancoder.Bus
	motors  []*spark.Motor
	watched []*watchedSensor
	chain    *swerve.Chain
	tracker  *heading.Tracker

	// sensorLoops run until the hardware context is cancelled.
	sensorLoops []func(ctx context.Context)
	closers     []func() error

	cancel context.CancelFunc
	loops  sync.WaitGroup
}

var _ Interface = (*Hardware)(nil)

func New(cfg *config.Config, logger golog.Logger) (_ *Hardware, err error) {
	h := &Hardware{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			h.close()
		}
	}()

	pwm, err := pca9685.New(cfg.PWM.Device, cfg.PWM.Address)
	if err != nil {
		return nil, err
	}
	h.pwm = pwm
	h.closers = append(h.closers, pwm.Close)
	if err := pwm.Configure(); err != nil {
		return nil, err
	}

	var ids []uint32
	for _, u := range cfg.Units {
		ids = append(ids, u.EncoderID)
	}
	h.bus, err = cancoder.Open(cfg.CAN.Interface, cfg.CAN.StatusBaseID, ids, logger)
	if err != nil {
		return nil, err
	}
	h.closers = append(h.closers, h.bus.Close)
	h.sensorLoops = append(h.sensorLoops, func(ctx context.Context) {
		if err := h.bus.Loop(ctx); err != nil && ctx.Err() == nil {
			h.logger.Errorw("CAN loop failed", "error", err)
		}
	})

	source, err := h.openHeading()
	if err != nil {
		return nil, err
	}
	h.tracker = heading.NewTracker(source)

	h.chain, err = buildChain(cfg, logger, func(u config.Unit) unitParts {
		speed := spark.New(u.Name+"-speed", pwm, u.SpeedChannel, logger)
		direction := spark.New(u.Name+"-direction", pwm, u.DirectionChannel, logger)
		encoder := h.bus.Encoder(u.EncoderID)
		h.motors = append(h.motors, speed, direction)
		h.watch(fmt.Sprintf("%s encoder %d", u.Name, u.EncoderID), encoder.Age)
		return unitParts{speed: speed, direction: direction, sensor: encoder}
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Hardware) openHeading() (heading.Source, error) {
	sensor, err := OpenHeading(h.cfg.Heading, h.logger)
	if err != nil {
		return nil, err
	}
	if sensor.Close != nil {
		h.closers = append(h.closers, sensor.Close)
	}
	if sensor.Loop != nil {
		h.sensorLoops = append(h.sensorLoops, sensor.Loop)
	}
	if sensor.Age != nil {
		h.watch("heading "+h.cfg.Heading.Kind, sensor.Age)
	}
	return sensor.Source, nil
}

func (h *Hardware) Start(ctx context.Context) {
	ctx, h.cancel = context.WithCancel(ctx)
	for _, loop := range h.sensorLoops {
		loop := loop
		h.loops.Add(1)
		go func() {
			defer h.loops.Done()
			loop(ctx)
		}()
	}
	h.loops.Add(1)
	go func() {
		defer h.loops.Done()
		h.watchSensors(ctx)
	}()
}

func (h *Hardware) watch(name string, age AgeFunc) {
	h.watched = append(h.watched, &watchedSensor{name: name, age: age})
}

// watchSensors logs when a sensor stops reporting, and when it comes back.
func (h *Hardware) watchSensors(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			h.checkSensors(now)
		}
	}
}

func (h *Hardware) checkSensors(now time.Time) {
	for _, w := range h.watched {
		age, ok := w.age(now)
		stale := !ok || age > StaleSensorAge
		if stale == w.stale {
			continue
		}
		if stale {
			h.logger.Warnw("sensor not reporting", "sensor", w.name, "age", age)
		} else {
			h.logger.Infow("sensor reporting again", "sensor", w.name)
		}
		w.stale = stale
	}
}

func (h *Hardware) Chain() *swerve.Chain {
	return h.chain
}

func (h *Hardware) Heading() *heading.Tracker {
	return h.tracker
}

func (h *Hardware) Circle() ticks.Circle {
	return h.cfg.Circle()
}

func (h *Hardware) StopMotors() {
	for _, m := range h.motors {
		m.SetPercent(0)
	}
}

func (h *Hardware) Shutdown() {
	h.logger.Info("HW: shutting down")
	h.StopMotors()
	if h.cancel != nil {
		h.cancel()
	}
	h.loops.Wait()
	h.close()
}

func (h *Hardware) close() {
	for _, c := range h.closers {
		if err := c(); err != nil {
			h.logger.Warnw("close failed", "error", err)
		}
	}
	h.closers = nil
}
