// Package ticks does modulo arithmetic on absolute encoder positions.
//
// Positions are float64 tick counts; a Circle is the number of ticks in one full revolution
// of the sensor.  Every position comparison in the drivetrain goes through Delta so that the
// sign convention is the same everywhere: positive means the target is ahead of the reference.
package ticks

import "math"

// Circle is the number of ticks in one revolution.
type Circle float64

// Encoder12Bit is the revolution of a 12-bit absolute encoder.
const Encoder12Bit Circle = 4096

// Wrap converts a tick value of any magnitude into the range [0, c).
func (c Circle) Wrap(t float64) float64 {
	r := math.Mod(t, float64(c))
	if r < 0 {
		r += float64(c)
	}
	if r >= float64(c) {
		// -tiny + c rounds up to c.
		r = 0
	}
	return r
}

// Delta returns the signed shortest distance from reference to target, in the range
// (-c/2, c/2].
func (c Circle) Delta(target, reference float64) float64 {
	half := float64(c) / 2
	d := c.Wrap(target - reference)
	if d > half {
		d -= float64(c)
	}
	return d
}

// WithinOf reports whether value is inside the deadband around reference, measured the
// short way round the circle.
func (c Circle) WithinOf(value, deadband, reference float64) bool {
	return Within(c.Delta(value, reference), deadband)
}

// FromDegrees converts degrees into ticks.  The result is not wrapped.
func (c Circle) FromDegrees(deg float64) float64 {
	return deg * float64(c) / 360
}

// ToDegrees converts ticks into degrees.  The result is not wrapped.
func (c Circle) ToDegrees(t float64) float64 {
	return t * 360 / float64(c)
}

// FromRadians converts radians into ticks.  The result is not wrapped.
func (c Circle) FromRadians(rad float64) float64 {
	return rad * float64(c) / (2 * math.Pi)
}

// Within reports whether delta lies strictly inside ±deadband.  A delta equal to the
// deadband is outside.
func Within(delta, deadband float64) bool {
	return delta < deadband && delta > -deadband
}
