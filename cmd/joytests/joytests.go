package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/edaniels/golog"

	"github.com/tigerbot-team/swerve/pkg/joystick"
	"github.com/tigerbot-team/swerve/pkg/teleop"
)

var CLI struct {
	Joystick string `help:"Joystick device." default:"/dev/input/js0" env:"JOYSTICK_DEVICE"`
}

// joytests prints what teleop would see for each joystick event.
func main() {
	kong.Parse(&CLI)
	logger := golog.NewDevelopmentLogger("joytests")

	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-signals
		cancel()
	}()

	j, err := joystick.Open(CLI.Joystick)
	if err != nil {
		logger.Fatalw("failed to open joystick", "error", err)
	}
	go func() {
		<-ctx.Done()
		j.Close()
	}()

	for ctx.Err() == nil {
		e, err := j.ReadEvent()
		if err != nil {
			if ctx.Err() == nil {
				logger.Errorw("joystick read failed", "error", err)
			}
			return
		}
		state := j.State()
		in := teleop.InputFrom(&state)
		fmt.Printf("%-22v brake=%-5v pov=%4.0f stick=(%5.2f,%5.2f) |%4.2f| dir=%6.1f°\n",
			e, in.Brake, in.POV, in.Stick.X, in.Stick.Y, in.Stick.Norm(),
			teleop.StickDirection(in.Stick)*180/math.Pi)
	}
}
