package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"math"
	"strconv"

	"github.com/san-kum/oscsim/internal/config"
	"github.com/san-kum/oscsim/internal/sim"
)

// number encodes non-finite values as null, which plain float64 fields cannot.
type number float64

func (n number) MarshalJSON() ([]byte, error) {
	if !isFinite(float64(n)) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, float64(n), 'g', -1, 64), nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

type ExportData struct {
	Model   string             `json:"model"`
	Method  string             `json:"method"`
	Dt      float64            `json:"dt"`
	Start   float64            `json:"start"`
	End     float64            `json:"end"`
	Params  map[string]float64 `json:"params,omitempty"`
	Points  int                `json:"points"`
	Times   []number           `json:"times"`
	States  [][2]number        `json:"states"`
	Metrics map[string]number  `json:"metrics"`
}

// ExportJSON writes the configuration and full trajectory of a run as indented JSON.
func ExportJSON(w io.Writer, cfg *config.Config, result *sim.Result) error {
	data := ExportData{
		Model:   cfg.Model,
		Method:  cfg.Method,
		Dt:      cfg.Dt,
		Start:   cfg.Start,
		End:     cfg.End,
		Params:  cfg.Params,
		Points:  len(result.States),
		Times:   make([]number, len(result.Times)),
		States:  make([][2]number, len(result.States)),
		Metrics: make(map[string]number, len(result.Metrics)),
	}
	for i, t := range result.Times {
		data.Times[i] = number(t)
	}
	for i, s := range result.States {
		data.States[i] = [2]number{number(s[0]), number(s[1])}
	}
	for k, v := range result.Metrics {
		data.Metrics[k] = number(v)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportCSV writes one "time,x,v" row per grid point. Values round-trip exactly.
func ExportCSV(w io.Writer, result *sim.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "x", "v"}); err != nil {
		return err
	}
	for i, s := range result.States {
		row := []string{
			strconv.FormatFloat(result.Times[i], 'g', -1, 64),
			strconv.FormatFloat(s[0], 'g', -1, 64),
			strconv.FormatFloat(s[1], 'g', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
