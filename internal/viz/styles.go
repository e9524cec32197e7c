package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"
)

var (
	Subtle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))

	StatusRunning = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ff88"))

	StatusPaused = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffaa00"))

	StatusRecording = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff4444")).
			Blink(true)

	MetricLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("#888899"))

	// energy bands: plenty, fading, nearly gone
	LevelHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	LevelMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	LevelLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

// GradientText colours each rune of text along a blend from start to end.
func GradientText(text string, start, end lipgloss.Color) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}
	from, to := hexOrWhite(start), hexOrWhite(end)

	var b strings.Builder
	for i, r := range runes {
		t := 0.0
		if len(runes) > 1 {
			t = float64(i) / float64(len(runes)-1)
		}
		c := lipgloss.Color(from.BlendLuv(to, t).Clamped().Hex())
		b.WriteString(lipgloss.NewStyle().Foreground(c).Render(string(r)))
	}
	return b.String()
}

// ProgressBar draws fraction (0..1) of width cells, coloured by how much is
// left.
func ProgressBar(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	filled = max(0, min(filled, width))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	switch {
	case fraction > 0.8:
		return LevelHigh.Render(bar)
	case fraction > 0.4:
		return LevelMid.Render(bar)
	}
	return LevelLow.Render(bar)
}

func Separator(width int) string {
	mid := width / 2
	return Subtle.Render(strings.Repeat("─", mid-3) + " ◆ " + strings.Repeat("─", width-mid-3))
}

// hexOrWhite parses "#rrggbb"; anything else is white.
func hexOrWhite(c lipgloss.Color) colorful.Color {
	parsed, err := colorful.Hex(string(c))
	if err != nil {
		return colorful.Color{R: 1, G: 1, B: 1}
	}
	return parsed
}
