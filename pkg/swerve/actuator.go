package swerve

// Actuator is a motor driven by percentage output.
type Actuator interface {
	// SetPercent commands an output in [-1, 1].
	SetPercent(value float64)
	// SetInverted flips the sign of every subsequent SetPercent.
	SetInverted(inverted bool)
}

// PositionSensor reads the steering axis.
type PositionSensor interface {
	// AbsolutePosition returns the raw reading in device ticks, without offset or wrapping.
	AbsolutePosition() float64
}
