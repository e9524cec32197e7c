package analysis

import (
	"fmt"
	"strings"

	"github.com/san-kum/bounce/internal/sim"
)

// PhasePortrait2D holds data for a 2D phase space plot
type PhasePortrait2D struct {
	XLabel, YLabel string
	Points         []struct{ X, Y float64 }
}

// Axis selects one coordinate of a sprite.
type Axis func(sim.Sprite) float64

var Axes = map[string]Axis{
	"x":  func(s sim.Sprite) float64 { return s.Position.X },
	"y":  func(s sim.Sprite) float64 { return s.Position.Y },
	"vx": func(s sim.Sprite) float64 { return s.Velocity.X },
	"vy": func(s sim.Sprite) float64 { return s.Velocity.Y },
}

// GeneratePhasePortrait plots two axes of one body's track against each other.
// The usual choice for a bouncing ball is y against vy.
func GeneratePhasePortrait(track []sim.Sprite, xAxis, yAxis string) *PhasePortrait2D {
	fx, okx := Axes[xAxis]
	fy, oky := Axes[yAxis]
	if !okx || !oky {
		return nil
	}

	portrait := &PhasePortrait2D{
		XLabel: xAxis,
		YLabel: yAxis,
		Points: make([]struct{ X, Y float64 }, 0, len(track)),
	}
	for _, s := range track {
		portrait.Points = append(portrait.Points, struct{ X, Y float64 }{X: fx(s), Y: fy(s)})
	}
	return portrait
}

// bounds is the padded plotting range of a portrait.
type bounds struct{ minX, maxX, minY, maxY float64 }

func portraitBounds(points []struct{ X, Y float64 }) bounds {
	b := bounds{points[0].X, points[0].X, points[0].Y, points[0].Y}
	for _, p := range points[1:] {
		b.minX, b.maxX = min(b.minX, p.X), max(b.maxX, p.X)
		b.minY, b.maxY = min(b.minY, p.Y), max(b.maxY, p.Y)
	}
	padX := max(b.maxX-b.minX, 1) * 0.1
	padY := max(b.maxY-b.minY, 1) * 0.1
	return bounds{b.minX - padX, b.maxX + padX, b.minY - padY, b.maxY + padY}
}

func (b bounds) cell(x, y float64, width, height int) (row, col int) {
	col = int((x - b.minX) / (b.maxX - b.minX) * float64(width-1))
	row = height - 1 - int((y-b.minY)/(b.maxY-b.minY)*float64(height-1))
	return row, col
}

// PhasePortraitToASCII draws the portrait as a width x height scatter of '•'
// with the zero lines where they fall inside the range. A header names the
// vertical axis and its range, a footer the horizontal one.
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}
	b := portraitBounds(portrait.Points)

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}
	if zr, _ := b.cell(0, 0, width, height); b.minY <= 0 && b.maxY >= 0 {
		for c := range grid[zr] {
			grid[zr][c] = '─'
		}
	}
	if _, zc := b.cell(0, 0, width, height); b.minX <= 0 && b.maxX >= 0 {
		for r := range grid {
			if grid[r][zc] == '─' {
				grid[r][zc] = '┼'
			} else {
				grid[r][zc] = '│'
			}
		}
	}
	for _, p := range portrait.Points {
		r, c := b.cell(p.X, p.Y, width, height)
		grid[r][c] = '•'
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s [%.3g, %.3g]\n", portrait.YLabel, b.minY, b.maxY)
	for _, row := range grid {
		sb.WriteString(string(row))
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "%*s [%.3g, %.3g]\n", width/2, portrait.XLabel, b.minX, b.maxX)
	return sb.String()
}
