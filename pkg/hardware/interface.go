package hardware

import (
	"context"

	"github.com/tigerbot-team/swerve/pkg/heading"
	"github.com/tigerbot-team/swerve/pkg/swerve"
	"github.com/tigerbot-team/swerve/pkg/ticks"
)

type Interface interface {
	// Start kicks off the background sensor loops.
	Start(ctx context.Context)

	Chain() *swerve.Chain
	Heading() *heading.Tracker
	Circle() ticks.Circle

	// StopMotors zeroes every speed and steering output.
	StopMotors()
	Shutdown()
}
