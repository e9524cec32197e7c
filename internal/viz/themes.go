package viz

import "github.com/charmbracelet/lipgloss"

// Theme colours the panel and maps body colour names to terminal colours.
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Bodies    map[string]lipgloss.Color
}

// BodyPalette is the default mapping from body colour names.
var BodyPalette = map[string]lipgloss.Color{
	"red":    lipgloss.Color("#ff4444"),
	"blue":   lipgloss.Color("#4488ff"),
	"green":  lipgloss.Color("#44dd66"),
	"yellow": lipgloss.Color("#ffdd33"),
	"pink":   lipgloss.Color("#ff88cc"),
	"cyan":   lipgloss.Color("#33dddd"),
	"orange": lipgloss.Color("#ff9933"),
}

var (
	ThemeNeon = Theme{
		Name:      "neon",
		Primary:   lipgloss.Color("#ff00ff"),
		Secondary: lipgloss.Color("#00ffff"),
		Bodies:    BodyPalette,
	}

	// Billiard ball colours on felt.
	ThemeFelt = Theme{
		Name:      "felt",
		Primary:   lipgloss.Color("#e8d8a0"),
		Secondary: lipgloss.Color("#2e8b57"),
		Bodies: map[string]lipgloss.Color{
			"red":    lipgloss.Color("#c0392b"),
			"blue":   lipgloss.Color("#1f4e9c"),
			"green":  lipgloss.Color("#1e7a46"),
			"yellow": lipgloss.Color("#f1c40f"),
			"pink":   lipgloss.Color("#d98cb3"),
			"cyan":   lipgloss.Color("#f5f5f0"),
			"orange": lipgloss.Color("#e67e22"),
		},
	}

	// Greys by lightness, so colours stay distinguishable without hue.
	ThemeMono = Theme{
		Name:      "mono",
		Primary:   lipgloss.Color("#ffffff"),
		Secondary: lipgloss.Color("#888888"),
		Bodies: map[string]lipgloss.Color{
			"red":    lipgloss.Color("#5a5a5a"),
			"blue":   lipgloss.Color("#777777"),
			"green":  lipgloss.Color("#949494"),
			"yellow": lipgloss.Color("#f0f0f0"),
			"pink":   lipgloss.Color("#d2d2d2"),
			"cyan":   lipgloss.Color("#b4b4b4"),
			"orange": lipgloss.Color("#a0a0a0"),
		},
	}

	CurrentTheme = ThemeNeon

	Themes = []Theme{ThemeNeon, ThemeFelt, ThemeMono}
)

// Color returns the terminal colour for a body colour name. Unknown names
// are light grey.
func (t Theme) Color(name string) lipgloss.Color {
	if c, ok := t.Bodies[name]; ok {
		return c
	}
	return lipgloss.Color("#cccccc")
}

// GetTheme returns a theme by name, falling back to neon.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeNeon
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme switches to the theme after the current one.
func NextTheme() {
	for i, t := range Themes {
		if t.Name == CurrentTheme.Name {
			CurrentTheme = Themes[(i+1)%len(Themes)]
			return
		}
	}
	CurrentTheme = ThemeNeon
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
