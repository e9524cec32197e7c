package config

import (
	"sort"

	"github.com/san-kum/bounce/internal/physics"
)

// Presets modify DefaultConfig. They are grouped by theme.
var Presets = map[string]map[string]func(c *Config){
	"classic": {
		// One ball, drag and impulse walls.
		"original": func(c *Config) {
			c.Population.Count = 1
			c.Physics.Walls = "impulse"
		},
		"handful": func(c *Config) {
			c.Population.Count = 7
		},
	},
	"pool": {
		// Equal balls on a weightless table; a cue ball rolls into a row.
		"break": func(c *Config) {
			c.Physics.Gravity = 0
			c.Physics.Damping = "friction"
			c.Physics.Friction = 0.995
			c.Physics.Restitution = 1
			c.Bodies = row(5, 15, physics.Vec(100, 0), physics.Vec(-300, 0), physics.Vec(12, 0))
		},
		"cradle": func(c *Config) {
			c.Physics.Gravity = 0
			c.Physics.Damping = "none"
			c.Physics.Restitution = 1
			c.Bodies = row(4, 20, physics.Vec(0, 0), physics.Vec(-300, 0), physics.Vec(8, 0))
		},
	},
	"rain": {
		"light": func(c *Config) {
			c.Population.Count = 12
			c.Population.X = Range{Min: -450, Max: 450}
			c.Population.Y = Range{Min: 200, Max: 350}
			c.Population.VY = Range{Min: -5, Max: 0}
		},
		"heavy": func(c *Config) {
			c.Population.Count = 40
			c.Population.Radius = Range{Min: 8, Max: 20}
			c.Population.X = Range{Min: -450, Max: 450}
			c.Population.Y = Range{Min: 0, Max: 350}
			c.Population.VY = Range{Min: -10, Max: 0}
			c.Law = "merge"
		},
	},
	"space": {
		"zero_g": func(c *Config) {
			c.Population.Count = 10
			c.Physics.Gravity = 0
			c.Physics.Damping = "none"
			c.Physics.Restitution = 1
			c.Population.X = Range{Min: -400, Max: 400}
			c.Population.Y = Range{Min: -300, Max: 300}
			c.Population.VY = Range{Min: -10, Max: 10}
		},
	},
}

// row lays out n equal balls to the right of start, plus a cue ball at cue
// moving with velocity v.
func row(n int, radius float64, start, cue, v physics.Vector2) []physics.BodySpec {
	specs := make([]physics.BodySpec, 0, n+1)
	specs = append(specs, physics.BodySpec{ID: 0, Radius: radius, Position: cue, Velocity: v, Gain: 2, Color: "red"})
	for i := 0; i < n; i++ {
		specs = append(specs, physics.BodySpec{
			ID:       i + 1,
			Radius:   radius,
			Position: physics.Vec(start.X+float64(i)*2*radius, start.Y),
			Gain:     2,
			Color:    DefaultColors[(i+1)%len(DefaultColors)],
		})
	}
	return specs
}

// GetPreset returns a fresh config for the preset, or nil if it does not exist.
func GetPreset(group, preset string) *Config {
	groupPresets, ok := Presets[group]
	if !ok {
		return nil
	}
	apply, ok := groupPresets[preset]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets(group string) []string {
	groupPresets, ok := Presets[group]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(groupPresets))
	for name := range groupPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ListGroups() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
