package hardware

import (
	"context"
	"sync"
	"time"

	"github.com/edaniels/golog"

	"github.com/tigerbot-team/swerve/pkg/config"
	"github.com/tigerbot-team/swerve/pkg/heading"
	"github.com/tigerbot-team/swerve/pkg/sim"
	"github.com/tigerbot-team/swerve/pkg/swerve"
	"github.com/tigerbot-team/swerve/pkg/ticks"
)

const (
	// DummySteerRate is ticks per second at full steering output.
	DummySteerRate = 10000
	// DummySpinRate is degrees per second with every wheel at full speed.
	DummySpinRate = 180
	DummyStep     = 5 * time.Millisecond
)

// Dummy runs the drivetrain against simulated wheels.
type Dummy struct {
	cfg     *config.Config
	logger  golog.Logger
	chassis *sim.Chassis
	chain   *swerve.Chain
	tracker *heading.Tracker

	cancel context.CancelFunc
	loop   sync.WaitGroup
}

var _ Interface = (*Dummy)(nil)

func NewDummy(cfg *config.Config, logger golog.Logger) (*Dummy, error) {
	d := &Dummy{
		cfg:     cfg,
		logger:  logger,
		chassis: sim.NewChassis(DummySpinRate),
	}
	d.tracker = heading.NewTracker(d.chassis)

	var err error
	d.chain, err = buildChain(cfg, logger, func(u config.Unit) unitParts {
		w := sim.NewWheel(cfg.Circle(), DummySteerRate)
		// Start every wheel pointing straight ahead.
		w.SetAbsolutePosition(u.Offset)
		d.chassis.AddWheel(w, swerve.Role(u.Role).LeadingDiagonal())
		return unitParts{speed: w.Speed, direction: w.Direction, sensor: w}
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dummy) Start(ctx context.Context) {
	d.logger.Info("DHW: Start")
	ctx, d.cancel = context.WithCancel(ctx)
	d.loop.Add(1)
	go func() {
		defer d.loop.Done()
		ticker := time.NewTicker(DummyStep)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				d.chassis.Step(DummyStep)
			}
		}
	}()
}

// Chassis exposes the simulation so tests can step it by hand.
func (d *Dummy) Chassis() *sim.Chassis {
	return d.chassis
}

func (d *Dummy) Chain() *swerve.Chain {
	return d.chain
}

func (d *Dummy) Heading() *heading.Tracker {
	return d.tracker
}

func (d *Dummy) Circle() ticks.Circle {
	return d.cfg.Circle()
}

func (d *Dummy) StopMotors() {
	for _, w := range d.chassis.Wheels() {
		w.Speed.SetPercent(0)
		w.Direction.SetPercent(0)
	}
}

func (d *Dummy) Shutdown() {
	d.logger.Info("DHW: Shutdown")
	d.StopMotors()
	if d.cancel != nil {
		d.cancel()
	}
	d.loop.Wait()
}
