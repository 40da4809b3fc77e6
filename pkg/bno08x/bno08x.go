// Package bno08x reads yaw from a BNO08x IMU in UART-RVC mode.
package bno08x

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.bug.st/serial"
)

const DefaultDevice = "/dev/ttyAMA0"

const ReportFrequency = 100
const ReportInterval = time.Second / ReportFrequency

const packetLen = 19

var (
	packetHeader = []byte{0xaa, 0xaa}

	ErrSync     = errors.New("packet header missing")
	ErrChecksum = errors.New("packet checksum mismatch")
)

type IMUReport struct {
	Time   time.Time
	Index  uint8
	Yaw    int16
	Pitch  int16
	Roll   int16
	XAccel int16
	YAccel int16
	ZAccel int16
}

func (i IMUReport) String() string {
	return fmt.Sprintf("[%02x] Y:%7.2f P:%7.2f R:%7.2f X:%7.2f Y:%7.2f Z:%7.2f",
		i.Index, float64(i.Yaw)/100.0, float64(i.Pitch)/100.0, float64(i.Roll)/100.0,
		float64(i.XAccel)/100.0, float64(i.YAccel)/100.0, float64(i.ZAccel)/100.0)
}

func (i IMUReport) YawDegrees() float64 {
	return float64(i.Yaw) / 100.0
}

// parsePacket decodes one RVC packet, header included.
func parsePacket(buf []byte) (IMUReport, error) {
	var report IMUReport
	if len(buf) != packetLen || !bytes.Equal(buf[:2], packetHeader) {
		return report, ErrSync
	}
	var checksum uint8
	for _, b := range buf[2 : packetLen-1] {
		checksum += b
	}
	if buf[packetLen-1] != checksum {
		return report, errors.Wrapf(ErrChecksum, "%x != %x", buf[packetLen-1], checksum)
	}
	report.Index = buf[2]
	report.Yaw = int16(binary.LittleEndian.Uint16(buf[3:5]))
	report.Pitch = int16(binary.LittleEndian.Uint16(buf[5:7]))
	report.Roll = int16(binary.LittleEndian.Uint16(buf[7:9]))
	report.XAccel = int16(binary.LittleEndian.Uint16(buf[9:11]))
	report.YAccel = int16(binary.LittleEndian.Uint16(buf[11:13]))
	report.ZAccel = int16(binary.LittleEndian.Uint16(buf[13:15]))
	return report, nil
}

type BNO08X struct {
	device string
	logger golog.Logger

	lock       sync.Mutex
	lastReport IMUReport
}

func New(device string, logger golog.Logger) *BNO08X {
	if device == "" {
		device = DefaultDevice
	}
	return &BNO08X{device: device, logger: logger}
}

func (b *BNO08X) CurrentReport() IMUReport {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.lastReport
}

// YawDegrees returns the yaw from the latest report.  The sensor reports counter-clockwise
// positive; the drivetrain wants clockwise.
func (b *BNO08X) YawDegrees() float64 {
	return -b.CurrentReport().YawDegrees()
}

// Age is how long ago the latest report arrived.  ok is false if none has.
func (b *BNO08X) Age(now time.Time) (age time.Duration, ok bool) {
	t := b.CurrentReport().Time
	if t.IsZero() {
		return 0, false
	}
	return now.Sub(t), true
}

// LoopReadingReports reads the serial port until ctx is done, reopening it after failures.
func (b *BNO08X) LoopReadingReports(ctx context.Context) {
	for ctx.Err() == nil {
		err := b.openAndLoop(ctx)
		if ctx.Err() != nil {
			return
		}
		b.logger.Warnw("BNO08X loop stopped; will retry", "error", err)
		time.Sleep(100 * time.Millisecond)
	}
}

func (b *BNO08X) openAndLoop(ctx context.Context) error {
	s, err := serial.Open(b.device, &serial.Mode{BaudRate: 115200})
	if err != nil {
		return errors.Wrapf(err, "failed to open serial port %s", b.device)
	}
	go func() {
		<-ctx.Done()
		s.Close()
	}()
	defer s.Close()
	return b.readPackets(ctx, s)
}

func (b *BNO08X) readPackets(ctx context.Context, r io.Reader) error {
	br := bufio.NewReader(r)
	buf := make([]byte, packetLen)
resync:
	b.logger.Debug("BNO08X resync")
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		head, err := br.Peek(2)
		if err != nil {
			return errors.Wrap(err, "failed to read from serial")
		}
		if bytes.Equal(head, packetHeader) {
			break
		}
		if _, err := br.Discard(1); err != nil {
			return errors.Wrap(err, "failed to read from serial")
		}
	}

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := io.ReadFull(br, buf); err != nil {
			return errors.Wrap(err, "failed to read from serial")
		}
		report, err := parsePacket(buf)
		if err != nil {
			b.logger.Debugw("BNO08X bad packet", "error", err)
			goto resync
		}
		report.Time = time.Now()
		b.setReport(report)
	}
}

func (b *BNO08X) setReport(report IMUReport) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.lastReport = report
}
