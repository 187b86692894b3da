package viz

import (
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/oscsim/internal/dynamo"
)

// Component selects which state component a plot shows.
type Component int

const (
	Position Component = iota
	Velocity
)

func (c Component) String() string {
	if c == Velocity {
		return "velocity"
	}
	return "position"
}

func (c Component) values(traj dynamo.Trajectory) []float64 {
	if c == Velocity {
		return traj.Velocities()
	}
	return traj.Positions()
}

// TimeSeries renders one component of traj against time.
func TimeSeries(ts []float64, traj dynamo.Trajectory, c Component, width, height int, caption string) string {
	if len(traj) == 0 {
		return ""
	}
	if caption == "" {
		caption = c.String()
	}
	if len(ts) > 0 {
		caption = fmt.Sprintf("%s  (t = %.3g .. %.3g)", caption, ts[0], ts[len(ts)-1])
	}
	return asciigraph.Plot(c.values(traj),
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// Compare overlays the same component of several trajectories.
func Compare(trajs []dynamo.Trajectory, c Component, width, height int, caption string) string {
	series := make([][]float64, 0, len(trajs))
	for _, tr := range trajs {
		if len(tr) > 0 {
			series = append(series, c.values(tr))
		}
	}
	if len(series) == 0 {
		return ""
	}
	colors := []asciigraph.AnsiColor{asciigraph.Red, asciigraph.Green, asciigraph.Blue, asciigraph.Yellow, asciigraph.Cyan, asciigraph.Magenta}
	for len(colors) < len(series) {
		colors = append(colors, colors...)
	}
	return asciigraph.PlotMany(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(colors[:len(series)]...),
	)
}

// Spectrum plots a power spectrum.
func Spectrum(power []float64, width, height int) string {
	if len(power) < 2 {
		return ""
	}
	return asciigraph.Plot(power,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption("power spectrum (x)"),
	)
}

// PhaseCanvas draws the (x, v) curve of traj on a braille canvas.
func PhaseCanvas(traj dynamo.Trajectory, width, height int) *Canvas {
	c := NewCanvas(width, height)
	xs, vs := traj.Positions(), traj.Velocities()
	c.Polyline(FitWindow(xs, vs), xs, vs)
	return c
}
