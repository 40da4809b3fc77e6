// Package swerve coordinates the wheel units of a four-wheel independently steered drivetrain.
//
// Each Unit owns a speed actuator, a steering actuator closed by a DirectionLoop, and an
// absolute-position sensor on the steering axis.  A Chain holds the units in a fixed order and
// broadcasts every group operation to each of them exactly once.  Calling a Unit method
// directly is the local-only form of the same operation.
//
// Everything here runs synchronously inside one control tick.  Nothing returns an error once
// the chain is built: a wheel that cannot reach its target simply never converges.
//
// A tick issued by a driver looks like:
//
//	if brake {
//		chain.Brake()
//	} else if chain.Orient(pov, heading) {
//		chain.ResetInvert()
//		chain.SetDirection(target)
//		chain.MovePercent(magnitude)
//	}
//	chain.ApplySpeed()
package swerve
