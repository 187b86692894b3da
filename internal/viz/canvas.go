package viz

import (
	"math"
	"strings"
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
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800 // Empty braille char
		}
	}
	return c
}

// Set lights a pixel at (x, y) in sub-pixel coordinates.
// The canvas size in sub-pixels is (Width*2) x (Height*4).
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// IsSet reports whether the sub-pixel (x, y) is lit.
func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

// Clear resets the canvas
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
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

// Window maps world coordinates onto the canvas, y pointing up.
type Window struct {
	MinX, MaxX, MinY, MaxY float64
}

// FitWindow returns the bounding window of xs, ys padded by 10%.
func FitWindow(xs, ys []float64) Window {
	w := Window{MinX: math.Inf(1), MaxX: math.Inf(-1), MinY: math.Inf(1), MaxY: math.Inf(-1)}
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) || math.IsInf(xs[i], 0) || math.IsInf(ys[i], 0) {
			continue
		}
		w.MinX, w.MaxX = math.Min(w.MinX, xs[i]), math.Max(w.MaxX, xs[i])
		w.MinY, w.MaxY = math.Min(w.MinY, ys[i]), math.Max(w.MaxY, ys[i])
	}
	if w.MinX > w.MaxX {
		return Window{MinX: -1, MaxX: 1, MinY: -1, MaxY: 1}
	}
	pad := func(lo, hi float64) (float64, float64) {
		r := hi - lo
		if r == 0 {
			r = 1
		}
		return lo - 0.1*r, hi + 0.1*r
	}
	w.MinX, w.MaxX = pad(w.MinX, w.MaxX)
	w.MinY, w.MaxY = pad(w.MinY, w.MaxY)
	return w
}

// Project converts a world point to sub-pixel coordinates.
func (c *Canvas) Project(w Window, x, y float64) (int, int) {
	px := int((x - w.MinX) / (w.MaxX - w.MinX) * float64(c.Width*2-1))
	py := int((w.MaxY - y) / (w.MaxY - w.MinY) * float64(c.Height*4-1))
	return px, py
}

// Polyline connects consecutive world points.
func (c *Canvas) Polyline(w Window, xs, ys []float64) {
	for i := range xs {
		x, y := c.Project(w, xs[i], ys[i])
		if i == 0 {
			c.Set(x, y)
			continue
		}
		px, py := c.Project(w, xs[i-1], ys[i-1])
		c.DrawLine(px, py, x, y)
	}
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
