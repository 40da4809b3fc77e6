package hardware

import (
	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"github.com/tigerbot-team/swerve/pkg/config"
	"github.com/tigerbot-team/swerve/pkg/swerve"
)

type unitParts struct {
	speed     swerve.Actuator
	direction swerve.Actuator
	sensor    swerve.PositionSensor
}

// buildChain creates a unit per configured wheel and links them in chain order.
func buildChain(cfg *config.Config, logger golog.Logger, parts func(u config.Unit) unitParts) (*swerve.Chain, error) {
	chain, err := swerve.NewChain(cfg.OrientConfig(), logger)
	if err != nil {
		return nil, err
	}
	for _, u := range cfg.ChainUnits() {
		p := parts(u)
		unit, err := swerve.NewUnit(cfg.UnitConfig(u), p.speed, p.direction, p.sensor)
		if err != nil {
			return nil, err
		}
		if err := chain.Link(unit); err != nil {
			return nil, errors.Wrap(err, "failed to link drivetrain")
		}
		logger.Debugw("unit linked", "unit", u.Name, "role", swerve.Role(u.Role), "position", chain.Len())
	}
	return chain, nil
}
