package gui

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/bounce/internal/input"
	"github.com/san-kum/bounce/internal/physics"
)

func TestHeldSignals(t *testing.T) {
	held := map[int32]bool{rl.KeyW: true, rl.KeyRight: true}
	got := heldSignals(func(k int32) bool { return held[k] })
	want := input.Signals{Up: true, Right: true}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}

	if heldSignals(func(int32) bool { return false }).Any() {
		t.Error("no keys should give no signals")
	}
}

func TestNextFocus(t *testing.T) {
	ids := []int{3, 5}
	steps := []int{3, 5, input.All, 3}
	cur := input.All
	for i, want := range steps {
		cur = nextFocus(cur, ids)
		if cur != want {
			t.Fatalf("step %d: got %d, want %d", i, cur, want)
		}
	}
	if nextFocus(3, nil) != input.All {
		t.Error("empty arena should focus all")
	}
	if nextFocus(9, ids) != input.All {
		t.Error("vanished body should reset focus")
	}
}

func TestToScreen(t *testing.T) {
	p := physics.DefaultParams()
	a := NewApp("t", p)

	centre := a.ToScreen(physics.Vec(0, 0))
	if centre != a.origin {
		t.Errorf("arena centre maps to %v, want %v", centre, a.origin)
	}
	top := a.ToScreen(physics.Vec(0, p.Height/2))
	if top.Y >= centre.Y {
		t.Error("arena y grows upward on screen")
	}
	if int(top.Y) < hudHeight {
		t.Errorf("arena top %v overlaps the HUD", top.Y)
	}
	right := a.ToScreen(physics.Vec(p.Width/2, 0))
	if right.X > screenW {
		t.Errorf("arena right edge %v is off screen", right.X)
	}
}
