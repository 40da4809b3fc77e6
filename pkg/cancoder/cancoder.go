// Package cancoder reads absolute steering positions from CAN magnetic encoders.  Each encoder
// broadcasts a status frame on StatusBaseID|deviceID; a single Bus receives them all and hands
// the latest position to per-device Encoder handles.
package cancoder

import (
	"context"
	"sync"
	"time"

	"github.com/edaniels/golog"
	"github.com/go-daq/canbus"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// AbsolutePosition is the 12-bit position field of the status frame.
var AbsolutePosition = Signal{Scalar: 1, Start: 0, Length: 12, LittleEndian: true}

// DeviceIDMask covers the device id bits of a status frame id.
const DeviceIDMask = 0x3f

type socket interface {
	Recv() (canbus.Frame, error)
	Close() error
}

type Bus struct {
	sock   socket
	baseID uint32
	logger golog.Logger

	lock     sync.Mutex
	encoders map[uint32]*Encoder

	closeOnce sync.Once
	closeErr  error
}

// Open binds a receive socket to iface, filtered to status frames from the given devices.
func Open(iface string, baseID uint32, deviceIDs []uint32, logger golog.Logger) (*Bus, error) {
	sock, err := canbus.New()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create CAN socket")
	}
	var filters []unix.CanFilter
	for _, id := range deviceIDs {
		filters = append(filters, unix.CanFilter{Id: baseID | id, Mask: unix.CAN_SFF_MASK})
	}
	if err := sock.SetFilters(filters); err != nil {
		sock.Close()
		return nil, errors.Wrap(err, "failed to set CAN filters")
	}
	if err := sock.Bind(iface); err != nil {
		sock.Close()
		return nil, errors.Wrapf(err, "failed to bind CAN socket to %s", iface)
	}
	return newBus(sock, baseID, logger), nil
}

func newBus(sock socket, baseID uint32, logger golog.Logger) *Bus {
	return &Bus{
		sock:     sock,
		baseID:   baseID,
		logger:   logger,
		encoders: map[uint32]*Encoder{},
	}
}

// Encoder returns the handle for deviceID, creating it on first use.
func (b *Bus) Encoder(deviceID uint32) *Encoder {
	b.lock.Lock()
	defer b.lock.Unlock()
	e, ok := b.encoders[deviceID]
	if !ok {
		e = &Encoder{id: deviceID}
		b.encoders[deviceID] = e
	}
	return e
}

// Close closes the socket, ending Loop.  Only the first call reaches the socket; later
// calls return its result.
func (b *Bus) Close() error {
	b.closeOnce.Do(func() {
		b.closeErr = b.sock.Close()
	})
	return b.closeErr
}

// Loop receives frames until ctx is done or the socket fails.
func (b *Bus) Loop(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		if err := b.Close(); err != nil {
			b.logger.Warnw("failed to close CAN socket", "error", err)
		}
	}()
	for {
		frame, err := b.sock.Recv()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			return errors.Wrap(err, "CAN receive failed")
		}
		b.handle(frame, time.Now())
	}
}

func (b *Bus) handle(frame canbus.Frame, now time.Time) {
	if frame.ID&^DeviceIDMask != b.baseID {
		return
	}
	b.lock.Lock()
	e, ok := b.encoders[frame.ID&DeviceIDMask]
	b.lock.Unlock()
	if !ok {
		b.logger.Debugw("status frame from unknown encoder", "id", frame.ID)
		return
	}
	e.update(AbsolutePosition.Extract(frame.Data), now)
}

type Encoder struct {
	id uint32

	lock     sync.Mutex
	position float64
	updated  time.Time
}

func (e *Encoder) ID() uint32 {
	return e.id
}

// AbsolutePosition returns the latest raw position in ticks.
func (e *Encoder) AbsolutePosition() float64 {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.position
}

// Age is how long ago the last status frame arrived.  ok is false if none has.
func (e *Encoder) Age(now time.Time) (age time.Duration, ok bool) {
	e.lock.Lock()
	defer e.lock.Unlock()
	if e.updated.IsZero() {
		return 0, false
	}
	return now.Sub(e.updated), true
}

func (e *Encoder) update(position float64, now time.Time) {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.position = position
	e.updated = now
}
