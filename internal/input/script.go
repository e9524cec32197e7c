package input

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Cue activates a set of signals for ticks in [From, To).
type Cue struct {
	From    int     `yaml:"from"`
	To      int     `yaml:"to"`
	Body    *int    `yaml:"body,omitempty"`
	Signals Signals `yaml:"signals"`
}

func (c Cue) active(tick, id int) bool {
	if tick < c.From || tick >= c.To {
		return false
	}
	return c.Body == nil || *c.Body == All || *c.Body == id
}

// Script replays a fixed timeline of cues. It keeps its own tick counter,
// advanced by EndTick.
type Script struct {
	Cues []Cue `yaml:"cues"`
	tick int
}

func NewScript(cues ...Cue) *Script {
	return &Script{Cues: cues}
}

func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse input script %s: %w", path, err)
	}
	for i, c := range s.Cues {
		if c.To < c.From {
			return nil, fmt.Errorf("input script %s: cue %d ends before it starts", path, i)
		}
	}
	return &s, nil
}

func (s *Script) Poll(id int) Signals {
	var out Signals
	for _, c := range s.Cues {
		if c.active(s.tick, id) {
			out = out.Or(c.Signals)
		}
	}
	return out
}

func (s *Script) EndTick() { s.tick++ }

func (s *Script) Tick() int { return s.tick }
