package cancoder

// Signal describes a value packed into a CAN payload.
type Signal struct {
	Scalar float64
	Offset float64
	// Start is the bit number of the least significant bit; Length is at most 32.
	Start        uint8
	Length       uint8
	LittleEndian bool
	Signed       bool
}

// byteMask returns the bits of payload byte n that belong to a signal spanning bits lsb..msb.
func byteMask(n, lsb, msb uint8) uint8 {
	first := int(n) * 8
	last := first + 7

	lo := 0
	if int(lsb) > first {
		lo = int(lsb) - first
	}
	hi := 7
	if int(msb) < last {
		hi = int(msb) - first
	}
	return uint8(0xff)<<uint(hi+1) ^ uint8(0xff)<<uint(lo)
}

// Extract decodes the signal from data.  Short payloads decode as zero.
func (s Signal) Extract(data []byte) float64 {
	lsb := s.Start
	msb := lsb + s.Length - 1
	startByte := lsb / 8
	stopByte := msb / 8
	if int(stopByte) >= len(data) || s.Length == 0 {
		return 0
	}

	var raw uint32
	for i := startByte; i <= stopByte; i++ {
		var shift uint8
		if s.LittleEndian {
			shift = i - startByte
		} else {
			shift = stopByte - i
		}
		raw += uint32(byteMask(i, lsb, msb)&data[i]) << (shift * 8)
	}
	raw >>= lsb - 8*startByte

	var v float64
	if s.Signed {
		signBit := s.Length - 1
		if raw&(1<<signBit) != 0 {
			raw |= ^uint32(0) << (signBit + 1)
		}
		v = float64(int32(raw))
	} else {
		v = float64(raw)
	}
	return v*s.Scalar + s.Offset
}
