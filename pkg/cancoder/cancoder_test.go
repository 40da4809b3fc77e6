package cancoder

import (
	"context"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/edaniels/golog"
	"github.com/go-daq/canbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSocket struct {
	frames chan canbus.Frame
	closed chan struct{}
	closes int32
}

func newFakeSocket() *fakeSocket {
	return &fakeSocket{
		frames: make(chan canbus.Frame),
		closed: make(chan struct{}),
	}
}

func (s *fakeSocket) Recv() (canbus.Frame, error) {
	select {
	case f, ok := <-s.frames:
		if !ok {
			return canbus.Frame{}, io.EOF
		}
		return f, nil
	case <-s.closed:
		return canbus.Frame{}, io.ErrClosedPipe
	}
}

func (s *fakeSocket) Close() error {
	atomic.AddInt32(&s.closes, 1)
	select {
	case <-s.closed:
	default:
		close(s.closed)
	}
	return nil
}

func statusFrame(id uint32, position uint16) canbus.Frame {
	return canbus.Frame{
		ID:   id,
		Data: []byte{byte(position), byte(position >> 8), 0, 0, 0, 0, 0, 0},
		Kind: canbus.SFF,
	}
}

func TestHandleDemultiplexes(t *testing.T) {
	b := newBus(newFakeSocket(), 0x400, golog.NewTestLogger(t))
	e1, e2 := b.Encoder(1), b.Encoder(2)
	assert.Same(t, e1, b.Encoder(1))
	now := time.Now()

	_, ok := e1.Age(now)
	assert.False(t, ok)

	b.handle(statusFrame(0x401, 1000), now)
	b.handle(statusFrame(0x402, 3000), now)
	b.handle(statusFrame(0x403, 42), now)
	b.handle(statusFrame(0x201, 42), now)

	assert.Equal(t, 1000.0, e1.AbsolutePosition())
	assert.Equal(t, 3000.0, e2.AbsolutePosition())
	assert.Equal(t, uint32(2), e2.ID())

	age, ok := e1.Age(now.Add(30 * time.Millisecond))
	assert.True(t, ok)
	assert.Equal(t, 30*time.Millisecond, age)
}

func TestLoop(t *testing.T) {
	sock := newFakeSocket()
	b := newBus(sock, 0x400, golog.NewTestLogger(t))
	e := b.Encoder(4)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- b.Loop(ctx) }()

	sock.frames <- statusFrame(0x404, 2048)
	sock.frames <- statusFrame(0x404, 2049)
	assert.Eventually(t, func() bool { return e.AbsolutePosition() == 2049 }, time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.Equal(t, context.Canceled, err)
	case <-time.After(time.Second):
		t.Fatal("Loop did not stop")
	}
}

func TestCloseAfterLoopClosesSocketOnce(t *testing.T) {
	sock := newFakeSocket()
	b := newBus(sock, 0x400, golog.NewTestLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- b.Loop(ctx) }()
	cancel()
	<-done

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&sock.closes) == 1 }, time.Second, time.Millisecond)
	assert.NoError(t, b.Close())
	assert.NoError(t, b.Close())
	assert.Equal(t, int32(1), atomic.LoadInt32(&sock.closes))
}

func TestLoopReportsSocketFailure(t *testing.T) {
	sock := newFakeSocket()
	b := newBus(sock, 0x400, golog.NewTestLogger(t))
	close(sock.frames)
	err := b.Loop(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CAN receive failed")
}
