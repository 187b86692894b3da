package analysis

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/oscsim/internal/dynamo"
)

// Point is one (x, y) sample in a 2D section of phase space.
type Point struct{ X, Y float64 }

// PhasePortrait2D holds the (x, v) samples of a trajectory.
type PhasePortrait2D struct {
	Points []Point
}

// NewPhasePortrait collects every finite state of traj.
func NewPhasePortrait(traj dynamo.Trajectory) *PhasePortrait2D {
	portrait := &PhasePortrait2D{Points: make([]Point, 0, len(traj))}
	for _, s := range traj {
		if s.IsValid() {
			portrait.Points = append(portrait.Points, Point{X: s[0], Y: s[1]})
		}
	}
	return portrait
}

// Bounds returns the extent of the portrait.
func (p *PhasePortrait2D) Bounds() (minX, maxX, minY, maxY float64) {
	if len(p.Points) == 0 {
		return 0, 0, 0, 0
	}
	xs := make([]float64, len(p.Points))
	ys := make([]float64, len(p.Points))
	for i, pt := range p.Points {
		xs[i], ys[i] = pt.X, pt.Y
	}
	return floats.Min(xs), floats.Max(xs), floats.Min(ys), floats.Max(ys)
}

// PhasePortraitToASCII converts phase portrait to ASCII art
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minX, maxX, minY, maxY := portrait.Bounds()

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))

		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// Draw axes if they cross the visible area
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if col >= 0 && col < width && canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// PoincareSection records points when a trajectory crosses a plane
type PoincareSection struct {
	Points []Point
}

// CrossingSection records (x, v) each time x crosses threshold upwards,
// interpolated linearly between the bracketing grid points.
func CrossingSection(traj dynamo.Trajectory, threshold float64) *PoincareSection {
	section := &PoincareSection{Points: make([]Point, 0)}
	for i := 1; i < len(traj); i++ {
		prev, curr := traj[i-1], traj[i]
		if !(prev[0] < threshold && curr[0] >= threshold) {
			continue
		}
		frac := (threshold - prev[0]) / (curr[0] - prev[0])
		if math.IsNaN(frac) || math.IsInf(frac, 0) {
			frac = 0.5
		}
		section.Points = append(section.Points, Point{
			X: prev[0] + frac*(curr[0]-prev[0]),
			Y: prev[1] + frac*(curr[1]-prev[1]),
		})
	}
	return section
}

// StroboscopicSection samples traj once per drive period, starting after
// transient, using the grid point nearest to each multiple of period.
func StroboscopicSection(traj dynamo.Trajectory, grid dynamo.TimeGrid, period, transient float64) *PoincareSection {
	section := &PoincareSection{Points: make([]Point, 0)}
	if period <= 0 || len(traj) == 0 {
		return section
	}
	k := math.Ceil((grid.Start + transient) / period)
	for {
		i := int(math.Round((k*period - grid.Start) / grid.Dt))
		if i >= len(traj) || i >= grid.N {
			break
		}
		if i >= 0 && traj[i].IsValid() {
			section.Points = append(section.Points, Point{X: traj[i][0], Y: traj[i][1]})
		}
		k++
	}
	return section
}

// PoincareSectionToASCII converts section data to ASCII plot
func PoincareSectionToASCII(section *PoincareSection, width, height int) string {
	if section == nil || len(section.Points) == 0 {
		return "No crossings detected"
	}

	// Use same logic as phase portrait
	portrait := &PhasePortrait2D{Points: section.Points}
	return PhasePortraitToASCII(portrait, width, height)
}
