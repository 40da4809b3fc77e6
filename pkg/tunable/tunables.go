// Package tunable holds values that can be adjusted from the joystick while driving.
package tunable

import (
	"math"
	"sync"

	"github.com/edaniels/golog"
)

type Tunable struct {
	Name string

	lock     sync.Mutex
	value    float64
	step     float64
	min, max float64
	logger   golog.Logger
}

// Nudge moves the value by n steps, clamped to its range.
func (t *Tunable) Nudge(n int) {
	t.lock.Lock()
	t.value = math.Max(t.min, math.Min(t.max, t.value+float64(n)*t.step))
	v := t.value
	t.lock.Unlock()
	t.logger.Infow("tunable changed", "name", t.Name, "value", v)
}

func (t *Tunable) Get() float64 {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.value
}

type Tunables struct {
	All      []*Tunable
	selected int
	logger   golog.Logger
}

func New(logger golog.Logger) *Tunables {
	return &Tunables{logger: logger}
}

func (t *Tunables) Create(name string, value, step, min, max float64) *Tunable {
	newTunable := &Tunable{
		Name:   name,
		value:  value,
		step:   step,
		min:    min,
		max:    max,
		logger: t.logger,
	}
	t.All = append(t.All, newTunable)
	return newTunable
}

// SelectNext moves the selection to the next tunable, wrapping round.
func (t *Tunables) SelectNext() {
	t.step(1)
}

func (t *Tunables) SelectPrev() {
	t.step(-1)
}

func (t *Tunables) step(n int) {
	if len(t.All) == 0 {
		return
	}
	t.selected = (t.selected + n + len(t.All)) % len(t.All)
	t.logger.Infow("tunable selected", "name", t.Current().Name, "value", t.Current().Get())
}

// Current returns the selected tunable, or nil if none have been created.
func (t *Tunables) Current() *Tunable {
	if len(t.All) == 0 {
		return nil
	}
	return t.All[t.selected]
}

// Nudge moves the selected tunable by n steps.  It does nothing if there are no tunables.
func (t *Tunables) Nudge(n int) {
	if cur := t.Current(); cur != nil {
		cur.Nudge(n)
	}
}
