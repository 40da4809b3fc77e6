package joystick

import (
	"math"

	"github.com/golang/geo/r3"
)

// AxisMax is the magnitude of a fully deflected axis.
const AxisMax = 32767

// POVReleased is the POV reading when the D-pad is not pressed.
const POVReleased = -1

// State folds the event stream into the current position of the controls.
type State struct {
	axes    [8]int16
	buttons [16]bool
}

// Apply updates the state from one event.  Init events are applied like any other.
func (s *State) Apply(e *Event) {
	switch e.Type {
	case EventTypeAxis:
		if int(e.Number) < len(s.axes) {
			s.axes[e.Number] = e.Value
		}
	case EventTypeButton:
		if int(e.Number) < len(s.buttons) {
			s.buttons[e.Number] = e.Value != 0
		}
	}
}

func (s *State) Axis(n int) float64 {
	if n < 0 || n >= len(s.axes) {
		return 0
	}
	v := float64(s.axes[n]) / AxisMax
	return math.Max(-1, math.Min(1, v))
}

// LeftStick returns the left stick deflection: X right positive, Y down positive.
func (s *State) LeftStick() r3.Vector {
	return r3.Vector{X: s.Axis(AxisLStickX), Y: s.Axis(AxisLStickY)}
}

func (s *State) Button(n int) bool {
	if n < 0 || n >= len(s.buttons) {
		return false
	}
	return s.buttons[n]
}

// POV returns the D-pad direction in degrees clockwise from up, in steps of 45, or
// POVReleased.
func (s *State) POV() float64 {
	x, y := s.axes[AxisDPadX], s.axes[AxisDPadY]
	if x == 0 && y == 0 {
		return POVReleased
	}
	deg := math.Atan2(float64(sign(x)), float64(-sign(y))) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}

func sign(v int16) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
