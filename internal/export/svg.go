package export

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/san-kum/bounce/internal/analysis"
	"github.com/san-kum/bounce/internal/physics"
	"github.com/san-kum/bounce/internal/sim"
	"github.com/san-kum/bounce/internal/viz"
)

const header = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`

// CanvasToSVG draws every braille dot of canvas as a circle, scale pixels
// apart, in the current theme's colour for its ink.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}
	w := int(math.Round(float64(canvas.Width) * 2 * scale))
	h := int(math.Round(float64(canvas.Height) * 4 * scale))

	var sb strings.Builder
	fmt.Fprintf(&sb, header, w, h, w, h)
	sb.WriteString("<g fill=\"#cccccc\">\n")
	canvas.EachDot(func(x, y int, ink string) {
		fill := ""
		if ink != "" {
			fill = fmt.Sprintf(` fill="%s"`, viz.CurrentTheme.Color(ink))
		}
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"%s/>\n",
			(float64(x)+0.5)*scale, (float64(y)+0.5)*scale, scale*0.4, fill)
	})
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// PhaseToSVG plots a phase portrait as a polyline with 10% padding. Zero
// lines are drawn when they fall inside the plot; for a bouncing body the
// vy = 0 line separates rising from falling.
func PhaseToSVG(portrait *analysis.PhasePortrait2D, width, height int, stroke string) string {
	if portrait == nil || len(portrait.Points) < 2 {
		return ""
	}
	pts := portrait.Points

	minX, maxX := pts[0].X, pts[0].X
	minY, maxY := pts[0].Y, pts[0].Y
	for _, p := range pts {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	padX, padY := math.Max(maxX-minX, 1)*0.1, math.Max(maxY-minY, 1)*0.1
	minX, maxX = minX-padX, maxX+padX
	minY, maxY = minY-padY, maxY+padY

	sx := func(x float64) float64 { return (x - minX) / (maxX - minX) * float64(width) }
	sy := func(y float64) float64 { return float64(height) - (y-minY)/(maxY-minY)*float64(height) }

	var sb strings.Builder
	fmt.Fprintf(&sb, header, width, height, width, height)
	if minX < 0 && maxX > 0 {
		fmt.Fprintf(&sb, "<line x1=\"%.1f\" y1=\"0\" x2=\"%.1f\" y2=\"%d\" stroke=\"#333344\"/>\n", sx(0), sx(0), height)
	}
	if minY < 0 && maxY > 0 {
		fmt.Fprintf(&sb, "<line x1=\"0\" y1=\"%.1f\" x2=\"%d\" y2=\"%.1f\" stroke=\"#333344\"/>\n", sy(0), width, sy(0))
	}

	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M%.1f,%.1f`, stroke, sx(pts[0].X), sy(pts[0].Y))
	for _, p := range pts[1:] {
		fmt.Fprintf(&sb, " L%.1f,%.1f", sx(p.X), sy(p.Y))
	}
	sb.WriteString("\"/>\n")

	fmt.Fprintf(&sb, `<text x="%d" y="%d" fill="#888899" font-family="monospace" font-size="12" text-anchor="end">%s</text>
<text x="6" y="14" fill="#888899" font-family="monospace" font-size="12">%s</text>
</svg>`, width-6, height-6, portrait.XLabel, portrait.YLabel)
	return sb.String()
}

// FrameToSVG draws every body of a frame as a filled circle, with the arena
// scaled to width pixels. Arena y points up; SVG y points down.
func FrameToSVG(f sim.Frame, p *physics.Params, width int) string {
	scale := float64(width) / p.Width
	height := int(p.Height * scale)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a" stroke="#444466"/>
`, width, height, width, height)

	for _, sp := range f.Sprites {
		cx := (sp.Position.X + p.Width/2) * scale
		cy := (p.Height/2 - sp.Position.Y) * scale
		fill := "#cccccc"
		if c, ok := viz.CurrentTheme.Bodies[sp.Color]; ok {
			fill = string(c)
		}
		fmt.Fprintf(&sb, "<circle id=\"body-%d\" cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=\"%s\"/>\n",
			sp.ID, cx, cy, sp.Radius*scale, fill)
	}

	fmt.Fprintf(&sb, `<text x="8" y="20" fill="#888899" font-family="monospace" font-size="14">tick %d</text>
</svg>`, f.Tick)
	return sb.String()
}

// WriteFile writes svg to path, or to stdout when path is "-".
func WriteFile(path, svg string) error {
	if path == "-" {
		_, err := io.WriteString(os.Stdout, svg)
		return err
	}
	return os.WriteFile(path, []byte(svg), 0644)
}
