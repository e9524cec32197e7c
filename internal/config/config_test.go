package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/bounce/internal/physics"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Law != "elastic" {
		t.Errorf("expected law elastic, got %s", cfg.Law)
	}
	if cfg.TickMs != 20 {
		t.Errorf("expected 20ms tick, got %d", cfg.TickMs)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	p, err := cfg.Params()
	if err != nil {
		t.Fatalf("Params: %v", err)
	}
	if p.Tick != 20*time.Millisecond {
		t.Errorf("expected 20ms, got %v", p.Tick)
	}
	if p.Damping != (physics.Drag{Coefficient: DefaultDrag}) {
		t.Errorf("unexpected damping %#v", p.Damping)
	}
	if p.Walls != (physics.Rebound{Restitution: DefaultRestitution}) {
		t.Errorf("unexpected walls %#v", p.Walls)
	}
}

func TestParamsSelectsFrictionCoefficient(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Physics.Damping = "friction"

	p, err := cfg.Params()
	if err != nil {
		t.Fatalf("Params: %v", err)
	}
	if p.Damping != (physics.Friction{Coefficient: DefaultFriction}) {
		t.Errorf("unexpected damping %#v", p.Damping)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		want   error
	}{
		{"zero tick", func(c *Config) { c.TickMs = 0 }, physics.ErrInvalidTick},
		{"zero width", func(c *Config) { c.Arena.Width = 0 }, physics.ErrInvalidArena},
		{"unknown law", func(c *Config) { c.Law = "sticky" }, physics.ErrUnknownModel},
		{"unknown walls", func(c *Config) { c.Physics.Walls = "foam" }, physics.ErrUnknownModel},
		{"restitution out of range", func(c *Config) { c.Physics.Restitution = 1.2 }, physics.ErrParameterBounds},
		{"zero ticks", func(c *Config) { c.Ticks = 0 }, ErrInvalidTicks},
		{"negative count", func(c *Config) { c.Population.Count = -1 }, ErrInvalidPopulation},
		{"no colors", func(c *Config) { c.Population.Colors = nil }, ErrInvalidPopulation},
		{"zero radius", func(c *Config) { c.Population.Radius.Min = 0 }, physics.ErrInvalidRadius},
		{"inverted range", func(c *Config) { c.Population.VX = Range{Min: 5, Max: -5} }, ErrInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bounce.yaml")

	cfg := GetPreset("pool", "break")
	cfg.Seed = 42
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Seed != 42 || loaded.Physics.Gravity != 0 {
		t.Errorf("round trip lost fields: %+v", loaded)
	}
	if len(loaded.Bodies) != len(cfg.Bodies) {
		t.Fatalf("expected %d bodies, got %d", len(cfg.Bodies), len(loaded.Bodies))
	}
	if loaded.Bodies[0].Velocity != cfg.Bodies[0].Velocity {
		t.Errorf("expected cue velocity %v, got %v", cfg.Bodies[0].Velocity, loaded.Bodies[0].Velocity)
	}
}

func TestLoadKeepsDefaultsForMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("law: merge\narena:\n  width: 600\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Law != "merge" || cfg.Arena.Width != 600 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Arena.Height != DefaultHeight || cfg.TickMs != DefaultTickMs {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("arena: [1, 2"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("classic", "original")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Population.Count != 1 || cfg.Physics.Walls != "impulse" {
		t.Errorf("unexpected preset %+v", cfg)
	}

	cfg.Population.Count = 99
	if again := GetPreset("classic", "original"); again.Population.Count != 1 {
		t.Error("preset mutated through a previous result")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("classic", "nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if cfg := GetPreset("nonexistent", "original"); cfg != nil {
		t.Error("expected nil for nonexistent group")
	}
}

func TestEveryPresetValidates(t *testing.T) {
	for _, group := range ListGroups() {
		for _, name := range ListPresets(group) {
			if err := GetPreset(group, name).Validate(); err != nil {
				t.Errorf("%s/%s: %v", group, name, err)
			}
		}
	}
	if ListPresets("nonexistent") != nil {
		t.Error("expected nil for nonexistent group")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("BOUNCE_WIDTH", "640")
	t.Setenv("BOUNCE_TICK_MS", "10")
	t.Setenv("BOUNCE_LAW", "merge")
	t.Setenv("BOUNCE_SEED", "7")

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Arena.Width != 640 || cfg.TickMs != 10 || cfg.Law != "merge" || cfg.Seed != 7 {
		t.Errorf("env not applied: %+v", cfg)
	}

	t.Setenv("BOUNCE_GRAVITY", "heavy")
	if err := cfg.ApplyEnv(); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("BOUNCE_BODIES=9\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BOUNCE_BODIES", "")
	os.Unsetenv("BOUNCE_BODIES")

	if err := LoadEnv(path); err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Population.Count != 9 {
		t.Errorf("expected 9 bodies, got %d", cfg.Population.Count)
	}

	if err := LoadEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("missing env file should be ignored, got %v", err)
	}
}

func TestSetAndGet(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Set("gravity", "3.7"); err != nil {
		t.Fatal(err)
	}
	if err := cfg.Set("walls", "impulse"); err != nil {
		t.Fatal(err)
	}
	if err := cfg.SetFloat("bodies", 11.6); err != nil {
		t.Fatal(err)
	}
	if cfg.Physics.Gravity != 3.7 || cfg.Physics.Walls != "impulse" || cfg.Population.Count != 12 {
		t.Errorf("overrides not applied: %+v", cfg.Physics)
	}

	v, err := cfg.Get("bodies")
	if err != nil || v != 12 {
		t.Errorf("Get(bodies) = %g, %v", v, err)
	}
	if _, err := cfg.Get("law"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("string keys are not numeric, got %v", err)
	}
	if err := cfg.Set("colour", "red"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("expected ErrUnknownKey, got %v", err)
	}
	if err := cfg.Set("ticks", "many"); err == nil {
		t.Error("expected parse error")
	}
}

func TestKeys(t *testing.T) {
	keys := Keys()
	if len(keys) != 16 {
		t.Errorf("expected 16 keys, got %d: %v", len(keys), keys)
	}
	cfg := DefaultConfig()
	for _, k := range keys {
		if err := cfg.Set(k, "1"); err != nil {
			t.Errorf("key %s not settable: %v", k, err)
		}
	}
}
