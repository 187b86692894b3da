package analysis

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/oscsim/internal/dynamo"
	"github.com/san-kum/oscsim/internal/physics"
)

// BifurcationPoint represents a stable state for a given parameter value
type BifurcationPoint struct {
	Param  float64
	Values []float64 // distinct stroboscopic positions
}

// BifurcationSweep describes a parameter sweep with stroboscopic sampling
// once per drive period after a transient.
type BifurcationSweep struct {
	Param      string
	Min, Max   float64
	Steps      int
	Dt         float64
	Transient  float64
	Record     float64
	Period     float64
	Resolution float64 // values closer than this are merged; 0 means 1e-3
}

// BifurcationDiagram sweeps a parameter and records stable states.
// This is useful for visualizing transitions to chaos. Each parameter value
// runs on its own clone of law, so law itself is never modified.
func BifurcationDiagram(
	ctx context.Context,
	law *physics.ForceLaw,
	st dynamo.Stepper,
	s0 dynamo.State,
	sweep BifurcationSweep,
) ([]BifurcationPoint, error) {
	if sweep.Steps < 1 {
		return nil, fmt.Errorf("analysis: sweep needs at least one step")
	}
	if !(sweep.Period > 0) {
		return nil, fmt.Errorf("analysis: drive period must be positive, got %g", sweep.Period)
	}
	grid, err := dynamo.NewTimeGrid(0, sweep.Transient+sweep.Record, sweep.Dt)
	if err != nil {
		return nil, err
	}
	if err := law.Clone().SetParam(sweep.Param, sweep.Min); err != nil {
		return nil, err
	}
	res := sweep.Resolution
	if res <= 0 {
		res = 1e-3
	}

	paramStep := 0.0
	if sweep.Steps > 1 {
		paramStep = (sweep.Max - sweep.Min) / float64(sweep.Steps-1)
	}

	results := make([]BifurcationPoint, sweep.Steps)
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < sweep.Steps; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			param := sweep.Min + float64(i)*paramStep
			local := law.Clone()
			if err := local.SetParam(sweep.Param, param); err != nil {
				return err
			}

			traj := make(dynamo.Trajectory, grid.N)
			traj[0] = s0
			for j := 0; j < grid.N-1; j++ {
				traj[j+1] = st.Step(local, traj[j], grid.At(j), grid.Dt)
			}

			section := StroboscopicSection(traj, grid, sweep.Period, sweep.Transient)
			values := make([]float64, 0, len(section.Points))
			seen := make(map[int64]bool)
			for _, p := range section.Points {
				key := int64(p.X / res)
				if !seen[key] {
					seen[key] = true
					values = append(values, p.X)
				}
			}
			results[i] = BifurcationPoint{Param: param, Values: values}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// BifurcationToASCII converts bifurcation data to ASCII art
func BifurcationToASCII(data []BifurcationPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	// Find value range - need at least one valid value
	var minVal, maxVal float64
	foundFirst := false
	for _, p := range data {
		for _, v := range p.Values {
			if !foundFirst {
				minVal, maxVal = v, v
				foundFirst = true
			} else {
				if v < minVal {
					minVal = v
				}
				if v > maxVal {
					maxVal = v
				}
			}
		}
	}
	if !foundFirst {
		return ""
	}

	if maxVal == minVal {
		maxVal = minVal + 1
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	for i, p := range data {
		col := i * width / len(data)
		if col >= width {
			col = width - 1
		}

		for _, v := range p.Values {
			row := height - 1 - int((v-minVal)/(maxVal-minVal)*float64(height-1))
			if row >= 0 && row < height && col >= 0 && col < width {
				canvas[row][col] = '•'
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
