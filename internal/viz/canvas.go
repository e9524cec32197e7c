package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/bounce/internal/physics"
	"github.com/san-kum/bounce/internal/sim"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

type Canvas struct {
	Width, Height int
	Grid          [][]rune
	// Ink holds the pen colour of the last dot set in each cell.
	Ink [][]string

	pen string
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		Ink:    make([][]string, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.Ink[i] = make([]string, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800 // Empty braille char
		}
	}
	return c
}

// Pen sets the colour name recorded for subsequent dots.
func (c *Canvas) Pen(color string) { c.pen = color }

// SetPixel sets a pixel at (x, y) where x,y are in "sub-pixel" coordinates.
// The canvas size in sub-pixels is (Width*2) x (Height*4).
func (c *Canvas) Set(x, y int) {
	// Early bounds check for negative coordinates
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	subX := x % 2
	subY := y % 4

	c.Grid[row][col] |= rune(pixelMap[subY][subX])
	c.Ink[row][col] = c.pen
}

// Unset clears a pixel
func (c *Canvas) Unset(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	subX := x % 2
	subY := y % 4

	mask := ^rune(pixelMap[subY][subX])
	c.Grid[row][col] &= mask
	if c.Grid[row][col] < 0x2800 {
		c.Grid[row][col] = 0x2800
	}
}

// Clear resets the canvas
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
			c.Ink[i][j] = ""
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawEllipse outlines an axis-aligned ellipse centred on (cx, cy). Arena
// circles become ellipses because braille dots are not square in arena units.
func (c *Canvas) DrawEllipse(cx, cy, rx, ry float64) {
	if rx < 0.5 && ry < 0.5 {
		c.Set(int(math.Round(cx)), int(math.Round(cy)))
		return
	}
	steps := int(2 * math.Pi * math.Max(rx, ry))
	if steps < 8 {
		steps = 8
	}
	px, py := int(math.Round(cx+rx)), int(math.Round(cy))
	for i := 1; i <= steps; i++ {
		th := 2 * math.Pi * float64(i) / float64(steps)
		x := int(math.Round(cx + rx*math.Cos(th)))
		y := int(math.Round(cy + ry*math.Sin(th)))
		c.DrawLine(px, py, x, y)
		px, py = x, y
	}
}

// Render is String with each cell coloured by its ink.
func (c *Canvas) Render(palette map[string]lipgloss.Color) string {
	var b strings.Builder
	for i, row := range c.Grid {
		for j, r := range row {
			col, ok := palette[c.Ink[i][j]]
			if !ok || r == 0x2800 {
				b.WriteRune(r)
				continue
			}
			b.WriteString(lipgloss.NewStyle().Foreground(col).Render(string(r)))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// EachDot calls fn for every set dot in sub-pixel coordinates with the ink
// of its cell.
func (c *Canvas) EachDot(fn func(x, y int, ink string)) {
	for row := range c.Grid {
		for col, r := range c.Grid[row] {
			pattern := int(r - 0x2800)
			if pattern <= 0 {
				continue
			}
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] != 0 {
						fn(col*2+dx, row*4+dy, c.Ink[row][col])
					}
				}
			}
		}
	}
}

// DrawFrame clears the canvas and outlines every body of f, scaled so the
// arena of p fills the canvas. A body with id marked also gets a centre dot.
func (c *Canvas) DrawFrame(f sim.Frame, p *physics.Params, marked int) {
	c.Clear()
	cw, ch := float64(c.Width*2-1), float64(c.Height*4-1)
	sx, sy := cw/p.Width, ch/p.Height
	for _, sp := range f.Sprites {
		c.Pen(sp.Color)
		x, y := (sp.Position.X+p.Width/2)*sx, (p.Height/2-sp.Position.Y)*sy
		c.DrawEllipse(x, y, sp.Radius*sx, sp.Radius*sy)
		if sp.ID == marked {
			c.Set(int(math.Round(x)), int(math.Round(y)))
		}
	}
	c.Pen("")
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
