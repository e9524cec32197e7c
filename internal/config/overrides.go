package config

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
)

var ErrUnknownKey = errors.New("config: unknown key")

// fields returns the settable scalars by their override key.
func (c *Config) fields() (map[string]*float64, map[string]*int, map[string]*string) {
	floats := map[string]*float64{
		"width":       &c.Arena.Width,
		"height":      &c.Arena.Height,
		"gravity":     &c.Physics.Gravity,
		"air_density": &c.Physics.AirDensity,
		"mass_scale":  &c.Physics.MassScale,
		"drag":        &c.Physics.Drag,
		"friction":    &c.Physics.Friction,
		"restitution": &c.Physics.Restitution,
	}
	ints := map[string]*int{
		"tick_ms": &c.TickMs,
		"ticks":   &c.Ticks,
		"bodies":  &c.Population.Count,
	}
	strs := map[string]*string{
		"law":     &c.Law,
		"walls":   &c.Physics.Walls,
		"damping": &c.Physics.Damping,
		"script":  &c.Input.Script,
	}
	return floats, ints, strs
}

// Set parses value into the field named key, e.g. Set("gravity", "3.7").
func (c *Config) Set(key, value string) error {
	floats, ints, strs := c.fields()
	if dst, ok := floats[key]; ok {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = f
		return nil
	}
	if dst, ok := ints[key]; ok {
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}
	if dst, ok := strs[key]; ok {
		*dst = value
		return nil
	}
	if key == "seed" {
		seed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		c.Seed = seed
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownKey, key)
}

// SetFloat sets a numeric field. Integer fields are rounded.
func (c *Config) SetFloat(key string, v float64) error {
	floats, ints, _ := c.fields()
	if dst, ok := floats[key]; ok {
		*dst = v
		return nil
	}
	if dst, ok := ints[key]; ok {
		*dst = int(math.Round(v))
		return nil
	}
	if key == "seed" {
		c.Seed = int64(math.Round(v))
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownKey, key)
}

// Get returns a numeric field.
func (c *Config) Get(key string) (float64, error) {
	floats, ints, _ := c.fields()
	if src, ok := floats[key]; ok {
		return *src, nil
	}
	if src, ok := ints[key]; ok {
		return float64(*src), nil
	}
	if key == "seed" {
		return float64(c.Seed), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKey, key)
}

// Keys lists every key Set accepts.
func Keys() []string {
	floats, ints, strs := (&Config{}).fields()
	keys := []string{"seed"}
	for k := range floats {
		keys = append(keys, k)
	}
	for k := range ints {
		keys = append(keys, k)
	}
	for k := range strs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
