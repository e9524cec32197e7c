package gui

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/bounce/internal/audio"
	"github.com/san-kum/bounce/internal/input"
	"github.com/san-kum/bounce/internal/physics"
	"github.com/san-kum/bounce/internal/sim"
)

// Theme Colors (Monochrome Hyper-Minimalist)
var (
	ColBg      = rl.NewColor(10, 10, 10, 255)    // Deep Black
	ColAccent  = rl.NewColor(180, 180, 180, 255) // Soft White
	ColSelect  = rl.NewColor(255, 255, 255, 255) // Bright White
	ColText    = rl.NewColor(140, 140, 140, 255) // Neutral Gray
	ColTextDim = rl.NewColor(60, 60, 60, 255)    // Dark Gray (Subtle)
	ColGrid    = rl.NewColor(30, 30, 30, 255)    // Barely visible grid
)

const (
	screenW   = 1280
	screenH   = 720
	hudHeight = 80
	margin    = 20
	maxTrail  = 40
)

// App is a raylib window that renders simulator frames and reports the held
// movement keys as an input source. Draw must run on the thread that opened
// the window, so App is driven by sim.Simulator.Run on the main goroutine.
type App struct {
	Title    string
	Font     rl.Font
	Params   *physics.Params
	Selected int
	ShowHelp bool
	Audio    *audio.Processor

	keys      *input.Latch
	scale     float64
	origin    rl.Vector2
	trails    map[int][]rl.Vector2
	telemetry []float64
	ids       []int
}

// initWindow opens the 1280x720 window. Pacing comes from the simulator, so
// the frame rate is left uncapped.
func initWindow(title string) {
	rl.InitWindow(screenW, screenH, title)
	rl.SetTargetFPS(0)
	rl.SetExitKey(0)
}

// loadFont loads the Liberation Mono font from the system path and enables bilinear texture filtering.
// raylib falls back to its built-in font when the file is missing.
func loadFont() rl.Font {
	font := rl.LoadFontEx("/usr/share/fonts/liberation/LiberationMono-Regular.ttf", 32, nil, 0)
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

// NewApp lays the arena of p out below the HUD. It does not touch raylib.
func NewApp(title string, p *physics.Params) *App {
	a := &App{
		Title:    title,
		Params:   p,
		Selected: input.All,
		keys:     input.NewStickyLatch(),
		trails:   make(map[int][]rl.Vector2),
	}
	availW := float64(screenW - 2*margin)
	availH := float64(screenH - hudHeight - 2*margin)
	a.scale = math.Min(availW/p.Width, availH/p.Height)
	a.origin = rl.NewVector2(
		float32(screenW)/2,
		float32(hudHeight+margin)+float32(p.Height*a.scale)/2,
	)
	return a
}

// Source reports the movement keys held during the last drawn frame.
func (a *App) Source() input.Source { return a.keys }

// ToScreen maps arena coordinates (centre origin, y up) to window pixels.
func (a *App) ToScreen(pos physics.Vector2) rl.Vector2 {
	return rl.NewVector2(
		a.origin.X+float32(pos.X*a.scale),
		a.origin.Y-float32(pos.Y*a.scale),
	)
}

// Draw renders one frame and samples the keyboard. It returns sim.ErrStopped
// once the window is closed or Q is pressed.
func (a *App) Draw(f sim.Frame) error {
	if rl.WindowShouldClose() || rl.IsKeyPressed(rl.KeyQ) {
		return sim.ErrStopped
	}
	a.readKeys(f)
	a.track(f)

	rl.BeginDrawing()
	rl.ClearBackground(ColBg)
	a.drawArena()
	a.drawTrails()
	for _, sp := range f.Sprites {
		a.drawSprite(sp)
	}
	a.drawHUD(f)
	if a.ShowHelp {
		a.drawHelp()
	}
	rl.EndDrawing()
	return nil
}

func (a *App) readKeys(f sim.Frame) {
	if rl.IsKeyPressed(rl.KeyTab) {
		a.ids = a.ids[:0]
		for _, sp := range f.Sprites {
			a.ids = append(a.ids, sp.ID)
		}
		a.Selected = nextFocus(a.Selected, a.ids)
	}
	if rl.IsKeyPressed(rl.KeyH) {
		a.ShowHelp = !a.ShowHelp
	}
	a.keys.Release()
	a.keys.Set(a.Selected, heldSignals(rl.IsKeyDown))
}

// heldSignals maps WASD and the arrow keys through isDown.
func heldSignals(isDown func(key int32) bool) input.Signals {
	return input.Signals{
		Up:    isDown(rl.KeyW) || isDown(rl.KeyUp),
		Down:  isDown(rl.KeyS) || isDown(rl.KeyDown),
		Left:  isDown(rl.KeyA) || isDown(rl.KeyLeft),
		Right: isDown(rl.KeyD) || isDown(rl.KeyRight),
		Stop:  isDown(rl.KeySpace),
	}
}

// nextFocus cycles all, ids[0], ids[1], ..., all.
func nextFocus(current int, ids []int) int {
	if len(ids) == 0 {
		return input.All
	}
	if current == input.All {
		return ids[0]
	}
	for i, id := range ids {
		if id == current {
			if i == len(ids)-1 {
				return input.All
			}
			return ids[i+1]
		}
	}
	return input.All
}

// track keeps the recent screen positions of every body and the system energy.
func (a *App) track(f sim.Frame) {
	energy := 0.0
	for _, sp := range f.Sprites {
		pt := a.ToScreen(sp.Position)
		trail := append(a.trails[sp.ID], pt)
		if len(trail) > maxTrail {
			trail = trail[1:]
		}
		a.trails[sp.ID] = trail

		mass := a.Params.Mass(sp.Radius)
		energy += 0.5*mass*sp.Velocity.Dot(sp.Velocity) + mass*a.Params.Gravity*(sp.Position.Y-sp.Radius-a.Params.Floor())
	}
	a.telemetry = append(a.telemetry, energy)
	if len(a.telemetry) > 200 {
		a.telemetry = a.telemetry[1:]
	}
}

// Run opens a window and runs s in real time until the window closes or ctx
// ends. Held keys are merged with src. With sound, contacts ping through the
// default audio output; a missing device only logs a warning.
func Run(ctx context.Context, s *sim.Simulator, src input.Source, title string, sound bool) error {
	initWindow(title)
	defer rl.CloseWindow()

	app := NewApp(title, s.Params())
	app.Font = loadFont()
	defer rl.UnloadFont(app.Font)

	if sound {
		proc := audio.NewProcessor()
		if err := proc.Start(); err != nil {
			slog.Warn("audio unavailable", "err", err)
		} else {
			defer proc.Stop()
			s.AddObserver(proc)
			app.Audio = proc
		}
	}

	keys := app.Source()
	if src != nil {
		keys = input.Merge(keys, src)
	}
	if err := s.Run(ctx, keys, app); err != nil {
		return fmt.Errorf("gui: %w", err)
	}
	return nil
}
