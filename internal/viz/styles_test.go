package viz

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestNextThemeWraps(t *testing.T) {
	defer SetTheme(CurrentTheme.Name)

	SetTheme("neon")
	seen := []string{CurrentTheme.Name}
	for range Themes {
		NextTheme()
		seen = append(seen, CurrentTheme.Name)
	}
	if seen[len(seen)-1] != "neon" {
		t.Errorf("expected to wrap back to neon, got %v", seen)
	}
	if got := GetTheme("nope").Name; got != "neon" {
		t.Errorf("unknown theme should fall back to neon, got %s", got)
	}
}

func TestThemeColorsEveryDefaultBody(t *testing.T) {
	for _, th := range Themes {
		for name := range BodyPalette {
			if _, ok := th.Bodies[name]; !ok {
				t.Errorf("theme %s has no colour for %s", th.Name, name)
			}
		}
		if th.Color("mauve") != lipgloss.Color("#cccccc") {
			t.Errorf("theme %s: unknown colour should be grey", th.Name)
		}
	}
}

func TestProgressBarClamps(t *testing.T) {
	cases := map[float64]int{-1: 0, 0.5: 5, 2: 10}
	for fraction, want := range cases {
		bar := ProgressBar(fraction, 10)
		if got := strings.Count(bar, "█"); got != want {
			t.Errorf("ProgressBar(%g): %d filled cells, want %d", fraction, got, want)
		}
		if got := strings.Count(bar, "█") + strings.Count(bar, "░"); got != 10 {
			t.Errorf("ProgressBar(%g): %d cells", fraction, got)
		}
	}
}

func TestHexOrWhite(t *testing.T) {
	r, g, b := hexOrWhite("#ff8000").RGB255()
	if r != 255 || g != 128 || b != 0 {
		t.Errorf("got %d,%d,%d", r, g, b)
	}
	if r, g, b := hexOrWhite("240").RGB255(); r != 255 || g != 255 || b != 255 {
		t.Errorf("ANSI index should fall back to white, got %d,%d,%d", r, g, b)
	}
	if GradientText("", "#000000", "#ffffff") != "" {
		t.Error("empty text should render empty")
	}
}
