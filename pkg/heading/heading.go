// Package heading turns a yaw sensor into the chassis heading the drivetrain steers by.
package heading

import (
	"sync"

	"github.com/tigerbot-team/swerve/pkg/ticks"
)

// Source is anything that reports the chassis yaw in degrees, clockwise positive.
type Source interface {
	YawDegrees() float64
}

// Tracker reports heading relative to the yaw at the last Zero.
type Tracker struct {
	source Source

	lock   sync.Mutex
	offset float64
}

func NewTracker(source Source) *Tracker {
	return &Tracker{source: source}
}

// Zero makes the current yaw heading 0.
func (t *Tracker) Zero() {
	yaw := t.source.YawDegrees()
	t.lock.Lock()
	defer t.lock.Unlock()
	t.offset = yaw
}

// Degrees returns the zeroed heading, unwrapped.
func (t *Tracker) Degrees() float64 {
	yaw := t.source.YawDegrees()
	t.lock.Lock()
	defer t.lock.Unlock()
	return yaw - t.offset
}

// Ticks returns the zeroed heading in ticks of c, wrapped into [0, c).
func (t *Tracker) Ticks(c ticks.Circle) float64 {
	return c.Wrap(c.FromDegrees(t.Degrees()))
}

// Static is a Source with a settable yaw, used when no sensor is fitted.
type Static struct {
	lock sync.Mutex
	yaw  float64
}

func (s *Static) YawDegrees() float64 {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.yaw
}

func (s *Static) Set(yaw float64) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.yaw = yaw
}
