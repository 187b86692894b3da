package experiment

import (
	"github.com/san-kum/oscsim/internal/config"
	"github.com/san-kum/oscsim/internal/dynamo"
	"github.com/san-kum/oscsim/internal/integrators"
	"github.com/san-kum/oscsim/internal/metrics"
	"github.com/san-kum/oscsim/internal/physics"
)

// ModelInfo summarizes one force law for listings.
type ModelInfo struct {
	Name        string
	Description string
	Params      map[string]float64
	Presets     []string
}

// Catalog lists every registered force law with its default constants.
func Catalog() []ModelInfo {
	names := physics.Names()
	out := make([]ModelInfo, 0, len(names))
	for _, name := range names {
		law, err := physics.New(name)
		if err != nil {
			continue
		}
		out = append(out, ModelInfo{
			Name:        name,
			Description: physics.Describe(name),
			Params:      law.GetParams(),
			Presets:     config.ListPresets(name),
		})
	}
	return out
}

// Methods lists the integration methods accepted by the config.
func Methods() []string {
	return integrators.Methods()
}

func DefaultMetrics(law dynamo.ForceLaw, bound float64) []metrics.Metric {
	return metrics.Defaults(law, bound)
}
