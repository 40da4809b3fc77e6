// Package joystick reads a Linux js device and folds its events into the current state of
// the pad.  The mapping below is the one the drivetrain is driven with.
package joystick

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
)

type EventType uint8

const (
	EventTypeButton EventType = 0x01
	EventTypeAxis   EventType = 0x02

	// eventInit marks the synthetic events the driver sends on open to report the initial
	// position of every control.
	eventInit = 0x80
)

const (
	ButtonCross    = 0
	ButtonCircle   = 1 // select previous tunable
	ButtonTriangle = 2 // brake
	ButtonSquare   = 3 // select next tunable
	ButtonL1       = 4 // nudge tunable down
	ButtonR1       = 5 // nudge tunable up
	ButtonShare    = 8 // previous mode
	ButtonOptions  = 9 // next mode

	// Stick axes run from -AxisMax (left/up) to +AxisMax (right/down).
	AxisLStickX = 0
	AxisLStickY = 1
	// The D-pad reports as a pair of axes that only take the values -AxisMax, 0 and AxisMax.
	AxisDPadX = 6
	AxisDPadY = 7
)

func (e EventType) String() string {
	switch e {
	case EventTypeAxis:
		return "axis"
	case EventTypeButton:
		return "button"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(e))
	}
}

type Event struct {
	Time   time.Time
	Value  int16
	Type   EventType
	Number uint8
	// Init is set on the events that report control positions when the device is opened.
	Init bool
}

func (e *Event) String() string {
	if e.Init {
		return fmt.Sprintf("%v(%v)=%v init", e.Type, e.Number, e.Value)
	}
	return fmt.Sprintf("%v(%v)=%v", e.Type, e.Number, e.Value)
}

// Pressed reports whether the event is the operator pushing the given button.  Init events
// never count as presses, so a button held while the pad connects does not fire.
func (e *Event) Pressed(button int) bool {
	return e.Type == EventTypeButton && !e.Init && int(e.Number) == button && e.Value != 0
}

// jsEvent is struct js_event from linux/joystick.h.
type jsEvent struct {
	Time   uint32 // milliseconds, arbitrary epoch
	Value  int16
	Type   uint8
	Number uint8
}

// Joystick decodes events from a js device and keeps the State they add up to.
type Joystick struct {
	device io.ReadCloser
	state  State

	// The device clock is mapped onto the wall clock at the first event.
	deviceEpoch    uint32
	wallclockEpoch time.Time
	started        bool
}

// Open opens a js device such as /dev/input/js0.
func Open(device string) (*Joystick, error) {
	f, err := os.Open(device)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open joystick %s", device)
	}
	return New(f), nil
}

// New reads js events from r.
func New(r io.ReadCloser) *Joystick {
	return &Joystick{device: r}
}

// ReadEvent blocks for the next event and applies it to the joystick's state.
func (j *Joystick) ReadEvent() (*Event, error) {
	var raw jsEvent
	if err := binary.Read(j.device, binary.LittleEndian, &raw); err != nil {
		return nil, errors.Wrap(err, "failed to read joystick event")
	}
	if !j.started {
		j.started = true
		j.deviceEpoch = raw.Time
		j.wallclockEpoch = time.Now()
	}
	e := &Event{
		Time:   j.wallclockEpoch.Add(time.Duration(raw.Time-j.deviceEpoch) * time.Millisecond),
		Value:  raw.Value,
		Type:   EventType(raw.Type &^ eventInit),
		Number: raw.Number,
		Init:   raw.Type&eventInit != 0,
	}
	j.state.Apply(e)
	return e, nil
}

// State returns a copy of the controls as of the last event read.
func (j *Joystick) State() State {
	return j.state
}

func (j *Joystick) Close() error {
	return j.device.Close()
}
