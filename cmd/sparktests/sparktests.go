package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/edaniels/golog"

	"github.com/tigerbot-team/swerve/pkg/pca9685"
	"github.com/tigerbot-team/swerve/pkg/spark"
)

var CLI struct {
	Device  string `help:"I2C bus of the PWM board." default:"/dev/i2c-1"`
	Address int    `help:"I2C address of the PWM board." default:"64"`
}

func main() {
	kong.Parse(&CLI)
	logger := golog.NewDevelopmentLogger("sparktests")

	pwm, err := pca9685.New(CLI.Device, CLI.Address)
	if err != nil {
		fmt.Println("Failed to open PCA9685", err)
		return
	}
	defer pwm.Close()

	err = pwm.Configure()
	if err != nil {
		fmt.Println("Failed to configure PCA9685", err)
		return
	}

	fmt.Println(
		`Commands:
    m <n> <percent>         # Drive a Spark on port n
    p <n> <pwm-duty-cycle>  # Configure port for raw PWM

<n>               Port number 0-15
<percent>         Motor output -1.0-1.0; 0=neutral
<pwm-duty-cycle>  Raw PWM duty cycle 0.0-1.0; 0=fully off, 1.0=fully on`)

	motors := map[int]*spark.Motor{}
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println("\nFailed to read stdin: ", err)
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		switch parts[0] {
		case "m", "p":
			if len(parts) < 3 {
				fmt.Println("Not enough parameters")
				continue
			}
			n, err := strconv.Atoi(parts[1])
			if err != nil {
				fmt.Println("Expected int, not ", parts[1])
				continue
			}
			if n < 0 || n >= pca9685.NumChannels {
				fmt.Println("Expected 0 <= n < 16")
				continue
			}
			v, err := strconv.ParseFloat(parts[2], 64)
			if err != nil {
				fmt.Println("Expected float, not ", parts[2])
				continue
			}
			if parts[0] == "m" {
				m, ok := motors[n]
				if !ok {
					m = spark.New(fmt.Sprintf("port-%d", n), pwm, n, logger)
					motors[n] = m
				}
				fmt.Printf("Setting motor %d to %f (pulse %v)\n", n, v, spark.Pulse(v))
				m.SetPercent(v)
			} else {
				fmt.Printf("Setting PWM %d to %f\n", n, v)
				if err := pwm.SetPWM(n, v); err != nil {
					fmt.Println("Failed to write to PCA9685: ", err)
					return
				}
			}
		default:
			fmt.Println("Unknown command", parts[0])
		}
	}
}
