package tunable

import (
	"testing"

	"github.com/edaniels/golog"
	"github.com/stretchr/testify/assert"
)

func TestNudgeClamps(t *testing.T) {
	ts := New(golog.NewTestLogger(t))
	speed := ts.Create("speed", 0.2, 0.05, 0.05, 0.3)

	speed.Nudge(1)
	assert.InDelta(t, 0.25, speed.Get(), 1e-9)
	speed.Nudge(5)
	assert.InDelta(t, 0.3, speed.Get(), 1e-9)
	speed.Nudge(-10)
	assert.InDelta(t, 0.05, speed.Get(), 1e-9)
}

func TestSelectionWraps(t *testing.T) {
	ts := New(golog.NewTestLogger(t))
	a := ts.Create("a", 0, 1, 0, 10)
	b := ts.Create("b", 0, 1, 0, 10)

	assert.Same(t, a, ts.Current())
	ts.SelectNext()
	assert.Same(t, b, ts.Current())
	ts.SelectNext()
	assert.Same(t, a, ts.Current())
	ts.SelectPrev()
	assert.Same(t, b, ts.Current())
}

func TestEmptySelection(t *testing.T) {
	ts := New(golog.NewTestLogger(t))
	assert.Nil(t, ts.Current())
	ts.SelectNext()
	ts.SelectPrev()
	ts.Nudge(1)
	assert.Nil(t, ts.Current())
}

func TestNudgeActsOnSelection(t *testing.T) {
	ts := New(golog.NewTestLogger(t))
	a := ts.Create("a", 1, 1, 0, 10)
	b := ts.Create("b", 1, 1, 0, 10)

	ts.Nudge(1)
	ts.SelectPrev()
	ts.Nudge(2)
	assert.InDelta(t, 2, a.Get(), 1e-9)
	assert.InDelta(t, 3, b.Get(), 1e-9)
}
