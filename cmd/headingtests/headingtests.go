package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/edaniels/golog"

	"github.com/tigerbot-team/swerve/pkg/config"
	"github.com/tigerbot-team/swerve/pkg/hardware"
	"github.com/tigerbot-team/swerve/pkg/heading"
)

var CLI struct {
	Config   string        `help:"Path to the swerve config file." default:"/cfg/swerve.yaml" env:"SWERVE_CONFIG"`
	Kind     string        `help:"Override the heading sensor kind (navx, bno08x, none)."`
	Device   string        `help:"Override the heading sensor device."`
	Interval time.Duration `help:"How often to print the heading." default:"200ms"`
}

// headingtests zeroes the configured heading sensor and prints the
// relative heading in degrees and ticks.
func main() {
	kong.Parse(&CLI)
	logger := golog.NewDevelopmentLogger("headingtests")

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		logger.Warnw("failed to load config; using defaults", "path", CLI.Config, "error", err)
		cfg = config.Default()
	}
	if CLI.Kind != "" {
		cfg.Heading.Kind = CLI.Kind
	}
	if CLI.Device != "" {
		cfg.Heading.Device = CLI.Device
	}

	sensor, err := hardware.OpenHeading(cfg.Heading, logger)
	if err != nil {
		logger.Fatalw("failed to open heading sensor", "error", err)
	}
	if sensor.Close != nil {
		defer sensor.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-signals
		cancel()
	}()
	if sensor.Loop != nil {
		go sensor.Loop(ctx)
	}

	circle := cfg.Circle()
	tracker := heading.NewTracker(sensor.Source)
	zeroed := false
	ticker := time.NewTicker(CLI.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if !zeroed {
			// Give the sensor loop one interval to produce a first reading.
			tracker.Zero()
			zeroed = true
		}
		fmt.Printf("raw %7.2f°  heading %7.2f°  %6.1f ticks\n",
			sensor.Source.YawDegrees(), tracker.Degrees(), tracker.Ticks(circle))
	}
}
