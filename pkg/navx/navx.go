// Package navx reads the fused heading from a navX-MXP board over SPI.
package navx

import (
	"context"
	"sync"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/conn/spi"
	"periph.io/x/periph/conn/spi/spireg"
	"periph.io/x/periph/host"
)

const (
	// RegFusedHeading is an unsigned 16-bit register in hundredths of a degree, 0-360.
	RegFusedHeading = 0x1c

	// The board needs time to fetch the registers between request and response.
	turnaround = 200 * time.Microsecond

	PollInterval = 10 * time.Millisecond
)

var ErrCRC = errors.New("navX response failed CRC")

// CRC is the navX register protocol checksum.
func CRC(msg []byte) byte {
	var crc byte
	for _, b := range msg {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&1 != 0 {
				crc ^= 0x91
			}
			crc >>= 1
		}
	}
	return crc
}

type conn interface {
	Tx(w, r []byte) error
}

type NavX struct {
	c      conn
	closer interface{ Close() error }
	logger golog.Logger

	lock    sync.Mutex
	heading float64
	updated time.Time
}

func Open(device string, logger golog.Logger) (*NavX, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "failed to initialise periph")
	}
	p, err := spireg.Open(device)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open SPI port %s", device)
	}
	c, err := p.Connect(physic.KiloHertz*1000, spi.Mode3, 8)
	if err != nil {
		p.Close()
		return nil, errors.Wrap(err, "failed to connect to navX")
	}
	return &NavX{c: c, closer: p, logger: logger}, nil
}

func (n *NavX) readRegisters(reg byte, buf []byte) error {
	req := []byte{reg, byte(len(buf)), 0}
	req[2] = CRC(req[:2])
	if err := n.c.Tx(req, make([]byte, len(req))); err != nil {
		return errors.Wrap(err, "navX request")
	}
	time.Sleep(turnaround)

	resp := make([]byte, len(buf)+1)
	if err := n.c.Tx(make([]byte, len(resp)), resp); err != nil {
		return errors.Wrap(err, "navX response")
	}
	if CRC(resp[:len(buf)]) != resp[len(buf)] {
		return ErrCRC
	}
	copy(buf, resp)
	return nil
}

// ReadFusedHeading reads the heading straight from the board.
func (n *NavX) ReadFusedHeading() (float64, error) {
	var buf [2]byte
	if err := n.readRegisters(RegFusedHeading, buf[:]); err != nil {
		return 0, err
	}
	return float64(uint16(buf[0])|uint16(buf[1])<<8) / 100, nil
}

// LoopReadingHeading polls the board until ctx is done.  YawDegrees returns the latest good
// reading.
func (n *NavX) LoopReadingHeading(ctx context.Context) {
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()
	failing := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		h, err := n.ReadFusedHeading()
		if err != nil {
			if !failing {
				n.logger.Warnw("navX read failed", "error", err)
				failing = true
			}
			continue
		}
		if failing {
			n.logger.Infow("navX reads recovered")
			failing = false
		}
		n.lock.Lock()
		n.heading = h
		n.updated = time.Now()
		n.lock.Unlock()
	}
}

func (n *NavX) YawDegrees() float64 {
	n.lock.Lock()
	defer n.lock.Unlock()
	return n.heading
}

// Age is how long ago the last good heading was read.  ok is false if none has been.
func (n *NavX) Age(now time.Time) (age time.Duration, ok bool) {
	n.lock.Lock()
	defer n.lock.Unlock()
	if n.updated.IsZero() {
		return 0, false
	}
	return now.Sub(n.updated), true
}

func (n *NavX) Close() error {
	if n.closer == nil {
		return nil
	}
	return n.closer.Close()
}
