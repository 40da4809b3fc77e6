// Package disabledmode parks the drivetrain: wheels held in the X pose with no drive.
package disabledmode

import (
	"context"
	"sync"
	"time"

	"github.com/tigerbot-team/swerve/pkg/hardware"
)

type DisabledMode struct {
	hw   hardware.Interface
	tick time.Duration

	cancel context.CancelFunc
	stopWG sync.WaitGroup
}

func New(hw hardware.Interface, tick time.Duration) *DisabledMode {
	return &DisabledMode{hw: hw, tick: tick}
}

func (m *DisabledMode) Name() string {
	return "Disabled mode"
}

func (m *DisabledMode) Start(ctx context.Context) {
	m.stopWG.Add(1)
	var loopCtx context.Context
	loopCtx, m.cancel = context.WithCancel(ctx)
	go m.loop(loopCtx)
}

func (m *DisabledMode) Stop() {
	m.cancel()
	m.stopWG.Wait()
}

// loop keeps the steering loops running so the wheels hold the brake pose.
func (m *DisabledMode) loop(ctx context.Context) {
	defer m.stopWG.Done()
	ticker := time.NewTicker(m.tick)
	defer ticker.Stop()

	chain := m.hw.Chain()
	for {
		chain.Brake()
		chain.ApplySpeed()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
