package automation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/bounce/internal/config"
	"github.com/san-kum/bounce/internal/experiment"
	"github.com/san-kum/bounce/internal/metrics"
	"github.com/san-kum/bounce/internal/sim"
	"github.com/san-kum/bounce/internal/storage"
)

// Scenario defines a scripted simulation sequence
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single step in a scenario. The config is built from
// Preset ("group/name") or Config (a YAML path), then Set overrides apply.
type ScenarioStep struct {
	Name   string            `yaml:"name"`
	Preset string            `yaml:"preset"`
	Config string            `yaml:"config"`
	Set    map[string]string `yaml:"set"`
	Ticks  int               `yaml:"ticks"`
	Seed   *int64            `yaml:"seed"`
	SaveAs string            `yaml:"save_as"`
}

// StepResult pairs a step with its run and, if saved, the stored run id.
type StepResult struct {
	Step   ScenarioStep
	Result *sim.Result
	RunID  string
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}

	return &scenario, nil
}

// BuildConfig resolves the config a step describes.
func (s ScenarioStep) BuildConfig() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case s.Preset != "":
		group, name, _ := strings.Cut(s.Preset, "/")
		cfg = config.GetPreset(group, name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q", s.Preset)
		}
	case s.Config != "":
		c, err := config.Load(s.Config)
		if err != nil {
			return nil, err
		}
		cfg = c
	default:
		cfg = config.DefaultConfig()
	}

	keys := make([]string, 0, len(s.Set))
	for k := range s.Set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := cfg.Set(k, s.Set[k]); err != nil {
			return nil, err
		}
	}
	if s.Ticks > 0 {
		cfg.Ticks = s.Ticks
	}
	if s.Seed != nil {
		cfg.Seed = *s.Seed
	}
	return cfg, cfg.Validate()
}

// RunScenario executes all steps in order. Steps with save_as are written to
// store when store is non-nil.
func RunScenario(ctx context.Context, scenario *Scenario, store *storage.Store, logger *slog.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		label := step.Name
		if label == "" {
			label = step.Preset
		}
		logger.Info("running step", "step", i+1, "of", len(scenario.Steps), "name", label)

		cfg, err := step.BuildConfig()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp := experiment.New(cfg)
		if err := exp.Setup(metrics.Default()); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Step: step, Result: result}
		if step.SaveAs != "" && store != nil {
			sr.RunID, err = store.Save(step.SaveAs, cfg, result)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
			logger.Info("saved run", "step", i+1, "run", sr.RunID)
		}
		results = append(results, sr)
	}

	return results, nil
}

// ParameterSweep runs simulations across a range of one config value
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	Runs      int
}

// SweepResult holds the ensemble means of every default metric at one value.
type SweepResult struct {
	ParamValue float64
	Metrics    map[string]float64
	Collisions float64
}

// RunSweep executes a parameter sweep
func RunSweep(ctx context.Context, sweep *ParameterSweep, logger *slog.Logger) ([]SweepResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if sweep.NumSteps < 2 {
		return nil, fmt.Errorf("sweep needs at least 2 steps, got %d", sweep.NumSteps)
	}
	runs := sweep.Runs
	if runs < 1 {
		runs = 1
	}
	results := make([]SweepResult, 0, sweep.NumSteps)

	paramStep := (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)

	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep
		cfg := sweep.Base.Clone()
		if err := cfg.SetFloat(sweep.ParamName, paramVal); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("%s=%g: %w", sweep.ParamName, paramVal, err)
		}

		runResults, err := sim.NewEnsemble(experiment.Factory(cfg, metrics.Default), runs, cfg.Seed).Run(ctx, cfg.Ticks)
		if err != nil {
			return nil, err
		}

		sr := SweepResult{ParamValue: paramVal, Metrics: make(map[string]float64)}
		for _, name := range metrics.List() {
			sr.Metrics[name] = sim.Mean(runResults, name)
		}
		for _, r := range runResults {
			sr.Collisions += float64(r.Collisions)
		}
		sr.Collisions /= float64(len(runResults))
		results = append(results, sr)

		logger.Info("sweep", "step", i+1, "of", sweep.NumSteps, sweep.ParamName, paramVal)
	}

	return results, nil
}

// MonteCarloConfig defines Monte Carlo simulation parameters
type MonteCarloConfig struct {
	Base      *config.Config
	NumTrials int
	Seed      int64
}

// MonteCarloResult holds the outcome of one random arena
type MonteCarloResult struct {
	TrialID     int
	Seed        int64
	Collisions  int
	EnergyDrift float64
	Stable      bool // every body stayed inside with finite energy
}

// RunMonteCarlo runs one trial per seed, each with freshly drawn bodies.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, logger *slog.Logger) ([]MonteCarloResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	factory := experiment.Factory(cfg.Base, func() []sim.Metric { return []sim.Metric{metrics.NewContainment()} })
	runResults, err := sim.NewEnsemble(factory, cfg.NumTrials, cfg.Seed).Run(ctx, cfg.Base.Ticks)
	if err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, 0, len(runResults))
	for trial, r := range runResults {
		final := r.Energy[len(r.Energy)-1]
		results = append(results, MonteCarloResult{
			TrialID:     trial,
			Seed:        cfg.Seed + int64(trial),
			Collisions:  r.Collisions,
			EnergyDrift: r.EnergyDrift,
			Stable:      r.Metrics["containment"] == 1 && !math.IsNaN(final) && !math.IsInf(final, 0),
		})
	}
	logger.Info("monte carlo complete", "trials", len(results))
	return results, nil
}

// MonteCarloStats computes summary statistics from Monte Carlo results
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
