package gui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/bounce/internal/input"
	"github.com/san-kum/bounce/internal/sim"
)

// BodyColors maps body colour names to raylib colours.
var BodyColors = map[string]rl.Color{
	"red":    rl.NewColor(230, 60, 60, 255),
	"blue":   rl.NewColor(70, 130, 255, 255),
	"green":  rl.NewColor(70, 210, 100, 255),
	"yellow": rl.NewColor(250, 220, 50, 255),
	"pink":   rl.NewColor(255, 130, 200, 255),
	"cyan":   rl.NewColor(50, 220, 220, 255),
	"orange": rl.NewColor(255, 150, 50, 255),
}

func bodyColor(name string) rl.Color {
	if c, ok := BodyColors[name]; ok {
		return c
	}
	return ColAccent
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}

func (a *App) drawArena() {
	w := int32(a.Params.Width * a.scale)
	h := int32(a.Params.Height * a.scale)
	x := int32(a.origin.X) - w/2
	y := int32(a.origin.Y) - h/2

	// Grid every 100 arena units
	step := float32(100 * a.scale)
	for gx := float32(x) + step; gx < float32(x+w); gx += step {
		rl.DrawLineV(rl.NewVector2(gx, float32(y)), rl.NewVector2(gx, float32(y+h)), ColGrid)
	}
	for gy := float32(y) + step; gy < float32(y+h); gy += step {
		rl.DrawLineV(rl.NewVector2(float32(x), gy), rl.NewVector2(float32(x+w), gy), ColGrid)
	}
	rl.DrawRectangleLines(x, y, w, h, ColTextDim)
}

func (a *App) drawTrails() {
	for id, trail := range a.trails {
		if len(trail) < 2 {
			continue
		}
		c := ColTextDim
		if id == a.Selected {
			c = ColText
		}
		rl.DrawLineStrip(trail, c)
	}
}

func (a *App) drawSprite(sp sim.Sprite) {
	center := a.ToScreen(sp.Position)
	r := float32(sp.Radius * a.scale)
	rl.DrawCircleV(center, r, bodyColor(sp.Color))
	if sp.ID == a.Selected {
		rl.DrawCircleLines(int32(center.X), int32(center.Y), r+3, ColSelect)
	}

	// Velocity vector, ten ticks ahead
	tip := a.ToScreen(sp.Position.Add(sp.Velocity.Scale(10)))
	rl.DrawLineV(center, tip, rl.ColorAlpha(ColSelect, 0.4))
}

func (a *App) drawHUD(f sim.Frame) {
	a.drawText(a.Title, margin, 16, 28, ColSelect)
	focus := "all"
	if a.Selected != input.All {
		focus = fmt.Sprintf("body %d", a.Selected)
	}
	a.drawText(fmt.Sprintf("tick %-6d bodies %-3d focus %s", f.Tick, len(f.Sprites), focus), margin, 50, 16, ColText)
	a.drawText("WASD/arrows push  SPACE stop  TAB focus  H help  Q quit", screenW/2-40, 54, 14, ColTextDim)
	a.drawTelemetry(screenW-260, 10, 240, 36)
	if a.Audio != nil {
		a.drawLevels(screenW-260, 52)
	}
}

// drawLevels shows the bass, mid and high bands of the sound as bars.
func (a *App) drawLevels(x, y int) {
	bass, mid, high := a.Audio.Levels()
	for i, l := range []float64{bass, mid, high} {
		w := int32(l * 70)
		rl.DrawRectangle(int32(x+i*80), int32(y), 70, 6, ColGrid)
		rl.DrawRectangle(int32(x+i*80), int32(y), w, 6, ColAccent)
	}
}

// drawTelemetry plots total energy as a line strip.
func (a *App) drawTelemetry(rectX, rectY, width, height int) {
	if len(a.telemetry) < 2 {
		return
	}
	minVal, maxVal := a.telemetry[0], a.telemetry[0]
	for _, v := range a.telemetry {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	points := make([]rl.Vector2, len(a.telemetry))
	for i, val := range a.telemetry {
		px := float32(rectX) + (float32(i)/float32(len(a.telemetry)))*float32(width)
		norm := (val - minVal) / (maxVal - minVal)
		py := float32(rectY+height) - float32(norm)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}

	rl.DrawLineStrip(points, ColAccent)
	a.drawText(fmt.Sprintf("E: %.2e", a.telemetry[len(a.telemetry)-1]), rectX-110, rectY+height-14, 14, ColText)
}

func (a *App) drawHelp() {
	lines := []string{
		"W / Up      push up, gravity off",
		"S / Down    push down",
		"A / Left    push left",
		"D / Right   push right",
		"Space       stop dead",
		"Tab         cycle focus",
		"Q / Esc     quit",
	}
	x, y := screenW/2-180, screenH/2-90
	rl.DrawRectangle(int32(x-20), int32(y-20), 400, int32(len(lines)*24+40), rl.ColorAlpha(ColBg, 0.9))
	for i, l := range lines {
		a.drawText(l, x, y+i*24, 18, ColAccent)
	}
}
