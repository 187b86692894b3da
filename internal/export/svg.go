// Package export writes trajectories as standalone SVG documents.
package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/oscsim/internal/dynamo"
	"github.com/san-kum/oscsim/internal/viz"
)

const svgHeader = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`

// Style controls colors of the generated documents.
type Style struct {
	Background string
	Stroke     string
	StrokeW    float64
}

func DefaultStyle() Style {
	return Style{Background: "#0a0a0a", Stroke: "#00ffff", StrokeW: 1.5}
}

// braille dot bits, row-major
var dotBits = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// CanvasToSVG draws every lit braille dot of canvas as a circle. Each dot
// occupies a scale x scale cell.
func CanvasToSVG(w io.Writer, canvas *viz.Canvas, scale float64, style Style) error {
	if canvas == nil {
		return fmt.Errorf("export: nil canvas")
	}
	width := int(math.Ceil(float64(canvas.Width) * scale * 2))
	height := int(math.Ceil(float64(canvas.Height) * scale * 4))

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, width, height, width, height, style.Background)
	fmt.Fprintf(&sb, "<g fill=\"%s\">\n", style.Stroke)

	r := scale * 0.4
	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			pattern := canvas.Grid[row][col] - 0x2800
			if pattern <= 0 {
				continue
			}
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&dotBits[dy][dx] == 0 {
						continue
					}
					cx := (float64(col*2+dx) + 0.5) * scale
					cy := (float64(row*4+dy) + 0.5) * scale
					fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, r)
				}
			}
		}
	}
	sb.WriteString("</g>\n</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

// PhaseSVG draws the (x, v) curve of traj as a vector path. Non-finite states
// break the path instead of ending it.
func PhaseSVG(w io.Writer, traj dynamo.Trajectory, width, height int, style Style) error {
	if len(traj) < 2 {
		return fmt.Errorf("export: need at least 2 states, got %d", len(traj))
	}
	xs, vs := traj.Positions(), traj.Velocities()
	win := viz.FitWindow(xs, vs)
	spanX, spanY := win.MaxX-win.MinX, win.MaxY-win.MinY

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, width, height, width, height, style.Background)
	fmt.Fprintf(&sb, "<path fill=\"none\" stroke=\"%s\" stroke-width=\"%.1f\" d=\"", style.Stroke, style.StrokeW)

	move := true
	for i := range xs {
		if !traj[i].IsValid() {
			move = true
			continue
		}
		px := (xs[i] - win.MinX) / spanX * float64(width)
		py := float64(height) - (vs[i]-win.MinY)/spanY*float64(height)
		if move {
			fmt.Fprintf(&sb, "M%.1f,%.1f", px, py)
			move = false
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", px, py)
		}
	}
	sb.WriteString("\"/>\n</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}
