// Package testmode steps every wheel round the compass so the encoder offsets can be checked
// by eye.
package testmode

import (
	"context"
	"sync"
	"time"

	"github.com/edaniels/golog"

	"github.com/tigerbot-team/swerve/pkg/hardware"
)

// Poses are the steering angles visited, in degrees.
var Poses = []float64{0, 90, 180, 270}

// Reading is where each unit ended up at the end of one pose.
type Reading struct {
	Pose       float64
	Directions map[string]float64
}

func New(hw hardware.Interface, tick, hold time.Duration, logger golog.Logger) *TestMode {
	return &TestMode{
		hw:     hw,
		tick:   tick,
		hold:   hold,
		logger: logger,
	}
}

type TestMode struct {
	hw     hardware.Interface
	tick   time.Duration
	hold   time.Duration
	logger golog.Logger

	cancel context.CancelFunc
	stopWG sync.WaitGroup

	lock     sync.Mutex
	readings []Reading
}

func (t *TestMode) Name() string {
	return "Test mode"
}

func (t *TestMode) Start(ctx context.Context) {
	t.stopWG.Add(1)
	var loopCtx context.Context
	loopCtx, t.cancel = context.WithCancel(ctx)
	go t.loop(loopCtx)
}

func (t *TestMode) Stop() {
	t.cancel()
	t.stopWG.Wait()
}

// Readings returns one entry per pose completed so far.
func (t *TestMode) Readings() []Reading {
	t.lock.Lock()
	defer t.lock.Unlock()
	return append([]Reading(nil), t.readings...)
}

func (t *TestMode) loop(ctx context.Context) {
	defer t.stopWG.Done()
	ticker := time.NewTicker(t.tick)
	defer ticker.Stop()

	chain := t.hw.Chain()
	circle := t.hw.Circle()
	chain.ResetInvert()

	for i := 0; ctx.Err() == nil; i++ {
		pose := Poses[i%len(Poses)]
		target := circle.FromDegrees(pose)
		deadline := time.Now().Add(t.hold)
		for time.Now().Before(deadline) {
			chain.SetDirection(target)
			chain.ApplySpeed()
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}

		r := Reading{Pose: pose, Directions: map[string]float64{}}
		for _, u := range chain.Units() {
			r.Directions[u.Name()] = u.Direction()
		}
		t.logger.Infow("test pose reached", "pose", pose, "directions", r.Directions)
		t.lock.Lock()
		t.readings = append(t.readings, r)
		t.lock.Unlock()
	}
}
