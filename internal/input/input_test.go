package input

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		key  string
		want Signals
		ok   bool
	}{
		{"w", Signals{Up: true}, true},
		{"up", Signals{Up: true}, true},
		{"s", Signals{Down: true}, true},
		{"left", Signals{Left: true}, true},
		{"d", Signals{Right: true}, true},
		{" ", Signals{Stop: true}, true},
		{"q", Signals{}, false},
	}

	for _, tt := range tests {
		got, ok := ParseKey(tt.key)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseKey(%q) = %+v, %v; want %+v, %v", tt.key, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLatchClearsAfterTick(t *testing.T) {
	l := NewLatch()
	l.Press(All, Signals{Up: true})
	l.Press(2, Signals{Left: true})

	if got := l.Poll(2); !got.Up || !got.Left {
		t.Errorf("body 2 signals = %+v, want up and left", got)
	}
	if got := l.Poll(1); !got.Up || got.Left {
		t.Errorf("body 1 signals = %+v, want up only", got)
	}

	l.EndTick()
	if l.Poll(2).Any() {
		t.Error("latch not cleared at end of tick")
	}
}

func TestLatchKeepsPressesFromLateInTheTick(t *testing.T) {
	l := NewLatch()
	l.Press(0, Signals{Up: true})
	if !l.Poll(0).Up {
		t.Fatal("press before the first poll not applied")
	}

	// Body 1 has not been polled yet, but the tick's presses are already taken.
	l.Press(All, Signals{Right: true})
	if got := l.Poll(1); got.Any() {
		t.Errorf("body 1 signals = %+v, want none until next tick", got)
	}

	l.EndTick()
	if got := l.Poll(0); !got.Right || got.Up {
		t.Errorf("next tick signals = %+v, want right only", got)
	}
	if got := l.Poll(1); !got.Right {
		t.Errorf("body 1 next tick signals = %+v, want right", got)
	}
}

func TestStickyLatch(t *testing.T) {
	l := NewStickyLatch()
	l.Set(All, Signals{Right: true})
	l.EndTick()
	if !l.Poll(0).Right {
		t.Error("sticky latch lost state at end of tick")
	}
	l.Release()
	if l.Poll(0).Any() {
		t.Error("release did not clear sticky latch")
	}
}

func TestMerge(t *testing.T) {
	a := NewLatch()
	b := NewScript(Cue{From: 0, To: 1, Signals: Signals{Stop: true}})
	a.Press(All, Signals{Down: true})

	m := Merge(a, b, NewNone())
	got := m.Poll(0)
	if !got.Down || !got.Stop {
		t.Errorf("merged = %+v, want down and stop", got)
	}

	m.(TickEnder).EndTick()
	if m.Poll(0).Any() {
		t.Errorf("merged after tick = %+v, want none", m.Poll(0))
	}
}

func TestScriptTimeline(t *testing.T) {
	one := 1
	s := NewScript(
		Cue{From: 1, To: 3, Signals: Signals{Up: true}},
		Cue{From: 0, To: 10, Body: &one, Signals: Signals{Left: true}},
	)

	if got := s.Poll(0); got.Any() {
		t.Errorf("tick 0 body 0 = %+v, want none", got)
	}
	if got := s.Poll(1); !got.Left {
		t.Errorf("tick 0 body 1 = %+v, want left", got)
	}

	s.EndTick()
	if got := s.Poll(0); !got.Up {
		t.Errorf("tick 1 body 0 = %+v, want up", got)
	}

	s.EndTick()
	s.EndTick()
	if got := s.Poll(0); got.Up {
		t.Errorf("tick 3 body 0 = %+v, up should have ended", got)
	}
}

func TestLoadScript(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.yaml")
	data := []byte(`cues:
  - from: 0
    to: 5
    signals:
      up: true
  - from: 5
    to: 6
    body: 0
    signals:
      stop: true
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadScript(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(s.Cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(s.Cues))
	}
	if s.Cues[1].Body == nil || *s.Cues[1].Body != 0 {
		t.Error("body target not parsed")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("cues:\n  - from: 4\n    to: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadScript(bad); err == nil {
		t.Error("expected error for inverted cue")
	}
}
