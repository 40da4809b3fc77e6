package cancoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	for _, tc := range []struct {
		name     string
		signal   Signal
		data     []byte
		expected float64
	}{
		{"position", AbsolutePosition, []byte{0x34, 0x12}, 0x234},
		{"position full scale", AbsolutePosition, []byte{0xff, 0xff}, 4095},
		{"position ignores high nibble", AbsolutePosition, []byte{0x00, 0xf1}, 256},
		{"signed negative", Signal{Scalar: 1, Length: 16, LittleEndian: true, Signed: true}, []byte{0xff, 0xff}, -1},
		{"signed positive", Signal{Scalar: 1, Length: 16, LittleEndian: true, Signed: true}, []byte{0xff, 0x7f}, 32767},
		{"scaled at an offset", Signal{Scalar: 0.0078125, Start: 16, Length: 16, LittleEndian: true, Signed: true},
			[]byte{0, 0, 0x80, 0x00}, 1},
		{"big endian", Signal{Scalar: 1, Length: 16}, []byte{0x12, 0x34}, 0x1234},
		{"unaligned", Signal{Scalar: 1, Start: 4, Length: 8, LittleEndian: true}, []byte{0xa0, 0x0b}, 0xba},
		{"with offset", Signal{Scalar: 0.5, Offset: -10, Length: 8, LittleEndian: true}, []byte{40}, 10},
		{"short payload", AbsolutePosition, []byte{0x34}, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, tc.signal.Extract(tc.data), 1e-9)
		})
	}
}

func TestByteMask(t *testing.T) {
	assert.Equal(t, uint8(0xff), byteMask(0, 0, 11))
	assert.Equal(t, uint8(0x0f), byteMask(1, 0, 11))
	assert.Equal(t, uint8(0xf0), byteMask(0, 4, 11))
}
