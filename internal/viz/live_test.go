package viz

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/bounce/internal/input"
	"github.com/san-kum/bounce/internal/physics"
	"github.com/san-kum/bounce/internal/sim"
)

func testFactory(seed int64) (*sim.Simulator, input.Source, error) {
	p := physics.DefaultParams()
	p.Gravity = 0
	p.Damping = physics.NoDamping{}
	p.Tick = time.Millisecond

	var bodies []*physics.Body
	for i, x := range []float64{-100, 100} {
		b, err := physics.NewBody(p, physics.BodySpec{ID: i, Radius: 20, Position: physics.Vec(x, 0), Gain: 2, Color: "red"})
		if err != nil {
			return nil, nil, err
		}
		bodies = append(bodies, b)
	}
	s, err := sim.New(p, physics.Elastic{}, bodies)
	return s, nil, err
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelStepsOnTick(t *testing.T) {
	m, err := NewModel(testFactory, 1, "test")
	if err != nil {
		t.Fatal(err)
	}

	m = send(t, m, TickMsg(time.Now()))
	if got := m.Simulator().Tick(); got != 1 {
		t.Fatalf("expected tick 1, got %d", got)
	}

	m = send(t, m, key("p"))
	m = send(t, m, TickMsg(time.Now()))
	if got := m.Simulator().Tick(); got != 1 {
		t.Errorf("paused model stepped to %d", got)
	}
}

func TestModelKeysPushBodies(t *testing.T) {
	m, err := NewModel(testFactory, 1, "test")
	if err != nil {
		t.Fatal(err)
	}

	m = send(t, m, key("up"))
	m = send(t, m, TickMsg(time.Now()))
	for _, b := range m.Simulator().Bodies() {
		if b.Velocity.Y != 2 {
			t.Errorf("body %d: expected vy 2, got %g", b.ID, b.Velocity.Y)
		}
	}

	m = send(t, m, key("tab"))
	if m.selected != 0 {
		t.Fatalf("expected focus on body 0, got %d", m.selected)
	}
	m = send(t, m, key("d"))
	m = send(t, m, TickMsg(time.Now()))
	b0, _ := m.Simulator().Body(0)
	b1, _ := m.Simulator().Body(1)
	if b0.Velocity.X != 2 || b1.Velocity.X != 0 {
		t.Errorf("focused push leaked: vx0=%g vx1=%g", b0.Velocity.X, b1.Velocity.X)
	}

	m = send(t, m, key("tab"))
	m = send(t, m, key("tab"))
	if m.selected != input.All {
		t.Errorf("expected focus to wrap to all, got %d", m.selected)
	}
}

func TestModelResetAndScrub(t *testing.T) {
	m, err := NewModel(testFactory, 1, "test")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		m = send(t, m, TickMsg(time.Now()))
	}

	m = send(t, m, key("["))
	if m.running || m.playHead != len(m.history)-2 {
		t.Errorf("expected paused replay one tick back, head=%d", m.playHead)
	}
	if got := m.current().Frame.Tick; got != 4 {
		t.Errorf("expected replayed tick 4, got %d", got)
	}
	m = send(t, m, key("]"))
	m = send(t, m, key("]"))
	if m.playHead != -1 {
		t.Errorf("expected live head, got %d", m.playHead)
	}

	m = send(t, m, key("r"))
	if m.Simulator().Tick() != 0 || len(m.history) != 1 {
		t.Errorf("reset kept tick %d and %d snapshots", m.Simulator().Tick(), len(m.history))
	}
}

func TestModelView(t *testing.T) {
	m, err := NewModel(testFactory, 1, "arena")
	if err != nil {
		t.Fatal(err)
	}
	m = send(t, m, key("up"))
	m = send(t, m, TickMsg(time.Now()))
	view := m.View()
	for _, want := range []string{"ARENA", "Tick", "elastic"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModelFactoryError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewModel(func(int64) (*sim.Simulator, input.Source, error) { return nil, nil, boom }, 0, "x")
	if !errors.Is(err, boom) {
		t.Errorf("expected factory error, got %v", err)
	}
}

func TestModelRecordsGIF(t *testing.T) {
	m, err := NewModel(testFactory, 1, "test")
	if err != nil {
		t.Fatal(err)
	}
	m = send(t, m, key("g"))
	m = send(t, m, TickMsg(time.Now()))
	m = send(t, m, TickMsg(time.Now()))
	if len(m.frames) != 2 {
		t.Fatalf("expected 2 captured frames, got %d", len(m.frames))
	}

	path := filepath.Join(t.TempDir(), "out.gif")
	if err := m.saveGIF(path); err != nil {
		t.Fatalf("saveGIF: %v", err)
	}
}
