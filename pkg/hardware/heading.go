package hardware

import (
	"context"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"github.com/tigerbot-team/swerve/pkg/bno08x"
	"github.com/tigerbot-team/swerve/pkg/config"
	"github.com/tigerbot-team/swerve/pkg/heading"
	"github.com/tigerbot-team/swerve/pkg/navx"
)

// HeadingSensor is an opened heading source plus the loop that keeps it
// fresh. Loop, Close and Age may be nil.
type HeadingSensor struct {
	Source heading.Source
	Loop   func(ctx context.Context)
	Close  func() error
	// Age reports how old the latest reading is.
	Age AgeFunc
}

// OpenHeading opens the heading sensor named by the config.
func OpenHeading(cfg config.Heading, logger golog.Logger) (*HeadingSensor, error) {
	switch cfg.Kind {
	case config.HeadingNavX:
		n, err := navx.Open(cfg.Device, logger)
		if err != nil {
			return nil, err
		}
		return &HeadingSensor{Source: n, Loop: n.LoopReadingHeading, Close: n.Close, Age: n.Age}, nil
	case config.HeadingBNO08X:
		b := bno08x.New(cfg.Device, logger)
		return &HeadingSensor{Source: b, Loop: b.LoopReadingReports, Age: b.Age}, nil
	case config.HeadingNone:
		logger.Warn("no heading sensor; orientation will not converge")
		return &HeadingSensor{Source: &heading.Static{}}, nil
	}
	return nil, errors.Errorf("unknown heading kind %q", cfg.Kind)
}
