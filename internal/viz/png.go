package viz

import (
	"bufio"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/san-kum/oscsim/internal/dynamo"
)

// PNGOptions sizes rendered figures.
type PNGOptions struct {
	WidthIn, HeightIn float64
	DPI               int
}

func DefaultPNGOptions() PNGOptions {
	return PNGOptions{WidthIn: 8, HeightIn: 6, DPI: 150}
}

var palette = []color.Color{
	color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	color.RGBA{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
}

func limitedTicker(maxLabels int, labelFmt string) plot.Ticker {
	if maxLabels < 2 {
		maxLabels = 2
	}
	return plot.TickerFunc(func(min, max float64) []plot.Tick {
		if math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
			return nil
		}
		if min == max {
			return []plot.Tick{{Value: min, Label: fmt.Sprintf(labelFmt, min)}}
		}
		step := (max - min) / float64(maxLabels-1)
		ticks := make([]plot.Tick, 0, maxLabels)
		for i := 0; i < maxLabels; i++ {
			v := min + float64(i)*step
			ticks = append(ticks, plot.Tick{Value: v, Label: fmt.Sprintf(labelFmt, v)})
		}
		return ticks
	})
}

func newPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Tick.Marker = limitedTicker(8, "%.2g")
	p.Y.Tick.Marker = limitedTicker(8, "%.2g")
	p.Add(plotter.NewGrid())
	return p
}

func xys(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, 0, len(xs))
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) || math.IsInf(xs[i], 0) || math.IsInf(ys[i], 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: xs[i], Y: ys[i]})
	}
	return pts
}

// Series is one labelled curve of a comparison figure.
type Series struct {
	Label string
	Times []float64
	Traj  dynamo.Trajectory
}

// SaveTimeSeriesPNG plots position and velocity of every series against time.
func SaveTimeSeriesPNG(path, title string, series []Series, opts PNGOptions) error {
	if len(series) == 0 {
		return fmt.Errorf("plot data invalid")
	}
	p := newPlot(title, "t", "x")
	for i, s := range series {
		if len(s.Times) != len(s.Traj) || len(s.Traj) == 0 {
			return fmt.Errorf("plot data invalid for %s", s.Label)
		}
		line, err := plotter.NewLine(xys(s.Times, s.Traj.Positions()))
		if err != nil {
			return err
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = palette[i%len(palette)]
		p.Add(line)
		p.Legend.Add(s.Label, line)
	}
	p.Legend.Top = true
	return savePlotPNG(p, opts, path)
}

// SavePhasePNG plots the (x, v) curve of traj.
func SavePhasePNG(path, title string, traj dynamo.Trajectory, opts PNGOptions) error {
	if len(traj) == 0 {
		return fmt.Errorf("plot data invalid")
	}
	p := newPlot(title, "x", "v")
	line, err := plotter.NewLine(xys(traj.Positions(), traj.Velocities()))
	if err != nil {
		return err
	}
	line.LineStyle.Width = vg.Points(1)
	line.LineStyle.Color = palette[0]
	p.Add(line)
	return savePlotPNG(p, opts, path)
}

// SaveConvergencePNG plots error against step size on log-log axes.
func SaveConvergencePNG(path, title string, dts, errs []float64, opts PNGOptions) error {
	if len(dts) != len(errs) || len(dts) == 0 {
		return fmt.Errorf("plot data invalid")
	}
	p := newPlot(title, "dt", "error")
	p.X.Scale = plot.LogScale{}
	p.Y.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}

	pts := make(plotter.XYs, 0, len(dts))
	for _, xy := range xys(dts, errs) {
		if xy.X > 0 && xy.Y > 0 {
			pts = append(pts, xy)
		}
	}
	if len(pts) == 0 {
		return fmt.Errorf("plot data invalid: no positive errors")
	}
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return err
	}
	line.LineStyle.Color = palette[1]
	points.Shape = draw.CircleGlyph{}
	p.Add(line, points)
	return savePlotPNG(p, opts, path)
}

func savePlotPNG(p *plot.Plot, opts PNGOptions, filename string) error {
	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("cannot create directory: %w", err)
		}
	}
	w := vg.Length(opts.WidthIn) * vg.Inch
	h := vg.Length(opts.HeightIn) * vg.Inch

	c := vgimg.NewWith(
		vgimg.UseWH(w, h),
		vgimg.UseDPI(opts.DPI),
	)
	p.Draw(draw.New(c))

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	pngc := vgimg.PngCanvas{Canvas: c}
	if _, err := pngc.WriteTo(bw); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return bw.Flush()
}
