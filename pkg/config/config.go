// Package config loads the drivetrain description: which units exist, how they are wired, and
// the gains and deadbands the controller runs with.
package config

import (
	"io/ioutil"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"

	"github.com/tigerbot-team/swerve/pkg/swerve"
	"github.com/tigerbot-team/swerve/pkg/ticks"
)

var ErrInvalid = errors.New("invalid drivetrain config")

type Config struct {
	Encoder  Encoder  `yaml:"encoder"`
	Steering Steering `yaml:"steering"`
	Orient   Orient   `yaml:"orient"`
	Drive    Drive    `yaml:"drive"`
	PWM      PWM      `yaml:"pwm"`
	CAN      CAN      `yaml:"can"`
	Heading  Heading  `yaml:"heading"`
	Units    []Unit   `yaml:"units"`
	// Chain is the broadcast order, by unit name.
	Chain []string `yaml:"chain,flow"`
}

type Encoder struct {
	TicksPerRevolution float64 `yaml:"ticksPerRevolution"`
}

type Steering struct {
	P         float64       `yaml:"p"`
	I         float64       `yaml:"i"`
	D         float64       `yaml:"d"`
	MinOutput float64       `yaml:"minOutput"`
	MaxOutput float64       `yaml:"maxOutput"`
	Period    time.Duration `yaml:"period"`
}

type Orient struct {
	AlignDeadband    float64 `yaml:"alignDeadband"`
	SpinDeadband     float64 `yaml:"spinDeadband"`
	ConvergeDeadband float64 `yaml:"convergeDeadband"`
	SpinPercent      float64 `yaml:"spinPercent"`
	// Latch is "latch" or "reevaluate".
	Latch string `yaml:"latch"`
}

type Drive struct {
	StickDeadband float64       `yaml:"stickDeadband"`
	SpeedLimit    float64       `yaml:"speedLimit"`
	TickPeriod    time.Duration `yaml:"tickPeriod"`
}

type PWM struct {
	Device  string `yaml:"device"`
	Address int    `yaml:"address"`
}

type CAN struct {
	Interface    string `yaml:"interface"`
	StatusBaseID uint32 `yaml:"statusBaseID"`
}

const (
	HeadingNavX   = "navx"
	HeadingBNO08X = "bno08x"
	HeadingNone   = "none"
)

type Heading struct {
	Kind   string `yaml:"kind"`
	Device string `yaml:"device"`
}

type Unit struct {
	Name              string  `yaml:"name"`
	Role              int     `yaml:"role"`
	SpeedChannel      int     `yaml:"speedChannel"`
	DirectionChannel  int     `yaml:"directionChannel"`
	EncoderID         uint32  `yaml:"encoderID"`
	Offset            float64 `yaml:"offset"`
	SpeedInverted     bool    `yaml:"speedInverted"`
	DirectionInverted bool    `yaml:"directionInverted"`
}

// Default returns the drivetrain as it was first built.  The front units are mounted a half
// turn round from the rear ones.
func Default() *Config {
	return &Config{
		Encoder: Encoder{TicksPerRevolution: float64(ticks.Encoder12Bit)},
		Steering: Steering{
			P:         0.0005,
			MinOutput: -0.2,
			MaxOutput: 0.2,
			Period:    20 * time.Millisecond,
		},
		Orient: Orient{
			AlignDeadband:    15,
			SpinDeadband:     15,
			ConvergeDeadband: 5,
			SpinPercent:      0.2,
			Latch:            swerve.LatchUntilReset.String(),
		},
		Drive: Drive{
			StickDeadband: 0.05,
			SpeedLimit:    0.2,
			TickPeriod:    20 * time.Millisecond,
		},
		PWM:     PWM{Device: "/dev/i2c-1", Address: 0x40},
		CAN:     CAN{Interface: "can0", StatusBaseID: 0x400},
		Heading: Heading{Kind: HeadingNavX, Device: "/dev/spidev0.0"},
		Units: []Unit{
			{Name: "front-left", Role: 1, SpeedChannel: 0, DirectionChannel: 1, EncoderID: 1, Offset: 2048},
			{Name: "front-right", Role: 2, SpeedChannel: 2, DirectionChannel: 3, EncoderID: 2, Offset: 2048},
			{Name: "rear-right", Role: 3, SpeedChannel: 4, DirectionChannel: 5, EncoderID: 3},
			{Name: "rear-left", Role: 4, SpeedChannel: 6, DirectionChannel: 7, EncoderID: 4},
		},
		Chain: []string{"rear-left", "rear-right", "front-right", "front-left"},
	}
}

// Load reads a config file over the defaults and validates it.
func Load(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read drivetrain config")
	}
	c, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return c, nil
}

// Parse decodes YAML over the defaults and validates the result.  Sections missing from data
// keep their default values; a units list replaces the default one wholesale.
func Parse(data []byte) (*Config, error) {
	c := Default()
	if err := yaml.UnmarshalStrict(data, c); err != nil {
		return nil, errors.Wrap(err, "failed to parse drivetrain config")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// WriteInUse writes the effective config next to the file it was loaded from, as
// <name>-in-use.yaml, and returns the path written.
func (c *Config) WriteInUse(loadedFrom string) (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal config")
	}
	ext := filepath.Ext(loadedFrom)
	path := strings.TrimSuffix(loadedFrom, ext) + "-in-use.yaml"
	if err := ioutil.WriteFile(path, out, 0666); err != nil {
		return "", errors.Wrap(err, "failed to write in-use config")
	}
	return path, nil
}

func invalid(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalid, format, args...)
}

func (c *Config) Validate() error {
	if c.Encoder.TicksPerRevolution <= 0 {
		return invalid("ticksPerRevolution must be positive, not %v", c.Encoder.TicksPerRevolution)
	}
	if c.Steering.MinOutput > c.Steering.MaxOutput {
		return invalid("steering minOutput %v is above maxOutput %v", c.Steering.MinOutput, c.Steering.MaxOutput)
	}
	if c.Steering.Period <= 0 {
		return invalid("steering period must be positive")
	}
	if c.Drive.TickPeriod <= 0 {
		return invalid("drive tickPeriod must be positive")
	}
	if c.Orient.AlignDeadband <= 0 || c.Orient.SpinDeadband <= 0 || c.Orient.ConvergeDeadband <= 0 {
		return invalid("orient deadbands must be positive")
	}
	if _, err := ParseLatch(c.Orient.Latch); err != nil {
		return err
	}
	switch c.Heading.Kind {
	case HeadingNavX, HeadingBNO08X, HeadingNone:
	default:
		return invalid("unknown heading kind %q", c.Heading.Kind)
	}

	if len(c.Units) == 0 {
		return invalid("no units")
	}
	names := map[string]bool{}
	roles := map[int]string{}
	channels := map[int]string{}
	encoders := map[uint32]string{}
	for _, u := range c.Units {
		if u.Name == "" {
			return invalid("unit with role %d has no name", u.Role)
		}
		if names[u.Name] {
			return invalid("duplicate unit name %q", u.Name)
		}
		names[u.Name] = true
		if !swerve.Role(u.Role).Valid() {
			return invalid("unit %q has unknown role %d", u.Name, u.Role)
		}
		if other, ok := roles[u.Role]; ok {
			return invalid("units %q and %q both have role %d", other, u.Name, u.Role)
		}
		roles[u.Role] = u.Name
		for _, ch := range []int{u.SpeedChannel, u.DirectionChannel} {
			if ch < 0 || ch > 15 {
				return invalid("unit %q: PWM channel %d out of range", u.Name, ch)
			}
			if other, ok := channels[ch]; ok {
				return invalid("units %q and %q share PWM channel %d", other, u.Name, ch)
			}
			channels[ch] = u.Name
		}
		if other, ok := encoders[u.EncoderID]; ok {
			return invalid("units %q and %q share encoder %d", other, u.Name, u.EncoderID)
		}
		encoders[u.EncoderID] = u.Name
	}

	seen := map[string]bool{}
	for _, name := range c.Chain {
		if !names[name] {
			return invalid("chain names unknown unit %q", name)
		}
		if seen[name] {
			return invalid("chain visits %q twice", name)
		}
		seen[name] = true
	}
	if len(seen) != len(names) {
		return invalid("chain has %d units but %d are configured", len(seen), len(names))
	}
	return nil
}

func ParseLatch(s string) (swerve.LatchPolicy, error) {
	switch s {
	case swerve.LatchUntilReset.String():
		return swerve.LatchUntilReset, nil
	case swerve.ReevaluateEveryTick.String():
		return swerve.ReevaluateEveryTick, nil
	}
	return 0, invalid("unknown latch policy %q", s)
}

func (c *Config) Circle() ticks.Circle {
	return ticks.Circle(c.Encoder.TicksPerRevolution)
}

func (c *Config) LoopConfig() swerve.LoopConfig {
	return swerve.LoopConfig{
		P:             c.Steering.P,
		I:             c.Steering.I,
		D:             c.Steering.D,
		MinOutput:     c.Steering.MinOutput,
		MaxOutput:     c.Steering.MaxOutput,
		Circumference: c.Circle(),
		Period:        c.Steering.Period,
	}
}

// OrientConfig assumes the config has been validated.
func (c *Config) OrientConfig() swerve.OrientConfig {
	policy, _ := ParseLatch(c.Orient.Latch)
	return swerve.OrientConfig{
		Circle:           c.Circle(),
		AlignDeadband:    c.Orient.AlignDeadband,
		SpinDeadband:     c.Orient.SpinDeadband,
		ConvergeDeadband: c.Orient.ConvergeDeadband,
		SpinPercent:      c.Orient.SpinPercent,
		Policy:           policy,
	}
}

func (c *Config) UnitConfig(u Unit) swerve.UnitConfig {
	return swerve.UnitConfig{
		Name:              u.Name,
		Role:              swerve.Role(u.Role),
		Offset:            u.Offset,
		SpeedInverted:     u.SpeedInverted,
		DirectionInverted: u.DirectionInverted,
		Loop:              c.LoopConfig(),
	}
}

// ChainUnits returns the units in chain order.
func (c *Config) ChainUnits() []Unit {
	byName := map[string]Unit{}
	for _, u := range c.Units {
		byName[u.Name] = u
	}
	var out []Unit
	for _, name := range c.Chain {
		out = append(out, byName[name])
	}
	return out
}
