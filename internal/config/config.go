package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/bounce/internal/physics"
)

const (
	DefaultWidth       = 1000.0
	DefaultHeight      = 800.0
	DefaultTickMs      = 20
	DefaultTicks       = 1500
	DefaultGravity     = 9.81
	DefaultAirDensity  = 1.2
	DefaultMassScale   = 1.0
	DefaultDrag        = 0.5
	DefaultFriction    = 0.99
	DefaultRestitution = 0.9
	DefaultBodies      = 5
)

var DefaultColors = []string{"red", "blue", "green", "yellow", "pink", "cyan", "orange"}

var (
	ErrInvalidRange      = errors.New("config: range min exceeds max")
	ErrInvalidPopulation = errors.New("config: invalid population")
	ErrInvalidTicks      = errors.New("config: ticks must be positive")
)

type Config struct {
	Arena      ArenaConfig        `yaml:"arena"`
	TickMs     int                `yaml:"tick_ms"`
	Ticks      int                `yaml:"ticks"`
	Seed       int64              `yaml:"seed"`
	Law        string             `yaml:"law"`
	Physics    PhysicsConfig      `yaml:"physics"`
	Population PopulationConfig   `yaml:"population"`
	Bodies     []physics.BodySpec `yaml:"bodies,omitempty"`
	Input      InputConfig        `yaml:"input"`
}

type ArenaConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type PhysicsConfig struct {
	Gravity                  float64 `yaml:"gravity"`
	AirDensity               float64 `yaml:"air_density"`
	MassScale                float64 `yaml:"mass_scale"`
	Damping                  string  `yaml:"damping"`
	Drag                     float64 `yaml:"drag"`
	Friction                 float64 `yaml:"friction"`
	Walls                    string  `yaml:"walls"`
	Restitution              float64 `yaml:"restitution"`
	ContactSuppressesGravity bool    `yaml:"contact_suppresses_gravity"`
}

// Range is an inclusive interval. Integral ranges draw whole numbers.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

type PopulationConfig struct {
	Count    int      `yaml:"count"`
	Integral bool     `yaml:"integral"`
	Radius   Range    `yaml:"radius"`
	X        Range    `yaml:"x"`
	Y        Range    `yaml:"y"`
	VX       Range    `yaml:"vx"`
	VY       Range    `yaml:"vy"`
	Gain     Range    `yaml:"gain"`
	Colors   []string `yaml:"colors"`
}

type InputConfig struct {
	Script string `yaml:"script,omitempty"`
	Sticky bool   `yaml:"sticky"`
}

func DefaultConfig() *Config {
	return &Config{
		Arena:  ArenaConfig{Width: DefaultWidth, Height: DefaultHeight},
		TickMs: DefaultTickMs,
		Ticks:  DefaultTicks,
		Law:    "elastic",
		Physics: PhysicsConfig{
			Gravity:                  DefaultGravity,
			AirDensity:               DefaultAirDensity,
			MassScale:                DefaultMassScale,
			Damping:                  "drag",
			Drag:                     DefaultDrag,
			Friction:                 DefaultFriction,
			Walls:                    "rebound",
			Restitution:              DefaultRestitution,
			ContactSuppressesGravity: true,
		},
		Population: PopulationConfig{
			Count:    DefaultBodies,
			Integral: true,
			Radius:   Range{Min: 10, Max: 40},
			X:        Range{Min: -50, Max: 50},
			Y:        Range{Min: 0, Max: 0},
			VX:       Range{Min: -10, Max: 10},
			VY:       Range{Min: 30, Max: 31},
			Gain:     Range{Min: 1, Max: 3},
			Colors:   append([]string(nil), DefaultColors...),
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy so presets are never mutated through overrides.
func (c *Config) Clone() *Config {
	out := *c
	out.Population.Colors = append([]string(nil), c.Population.Colors...)
	out.Bodies = append([]physics.BodySpec(nil), c.Bodies...)
	return &out
}

// Params builds the physics parameters the config describes.
func (c *Config) Params() (*physics.Params, error) {
	coef := c.Physics.Drag
	if c.Physics.Damping == "friction" {
		coef = c.Physics.Friction
	}
	damping, err := physics.DampingByName(c.Physics.Damping, coef)
	if err != nil {
		return nil, err
	}
	walls, err := physics.WallModelByName(c.Physics.Walls, c.Physics.Restitution)
	if err != nil {
		return nil, err
	}

	p := &physics.Params{
		Width:                    c.Arena.Width,
		Height:                   c.Arena.Height,
		Tick:                     time.Duration(c.TickMs) * time.Millisecond,
		Gravity:                  c.Physics.Gravity,
		AirDensity:               c.Physics.AirDensity,
		MassScale:                c.Physics.MassScale,
		Damping:                  damping,
		Walls:                    walls,
		ContactSuppressesGravity: c.Physics.ContactSuppressesGravity,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (c *Config) Validate() error {
	if _, err := c.Params(); err != nil {
		return err
	}
	if _, err := physics.LawByName(c.Law); err != nil {
		return err
	}
	if c.Ticks <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidTicks, c.Ticks)
	}
	if len(c.Bodies) > 0 {
		return nil
	}

	pop := c.Population
	if pop.Count < 0 {
		return fmt.Errorf("%w: count %d", ErrInvalidPopulation, pop.Count)
	}
	if pop.Count > 0 && len(pop.Colors) == 0 {
		return fmt.Errorf("%w: no colors", ErrInvalidPopulation)
	}
	if !(pop.Radius.Min > 0) {
		return fmt.Errorf("%w: radius min %g", physics.ErrInvalidRadius, pop.Radius.Min)
	}
	if !(pop.Gain.Min > 0) {
		return fmt.Errorf("%w: gain min %g", physics.ErrInvalidGain, pop.Gain.Min)
	}
	ranges := map[string]Range{
		"radius": pop.Radius, "x": pop.X, "y": pop.Y,
		"vx": pop.VX, "vy": pop.VY, "gain": pop.Gain,
	}
	for name, r := range ranges {
		if r.Min > r.Max {
			return fmt.Errorf("%w: %s [%g, %g]", ErrInvalidRange, name, r.Min, r.Max)
		}
	}
	return nil
}
