package metrics

import (
	"math"

	"github.com/san-kum/oscsim/internal/dynamo"
)

// Stability is the fraction of states whose components all stay within
// threshold. Non-finite states always count as violations.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(t float64, x dynamo.State) {
	s.samples++
	if !x.IsValid() {
		s.violations++
		return
	}
	if s.threshold <= 0 {
		return
	}
	for _, val := range x {
		if math.Abs(val) > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// Amplitude is the largest |x| seen.
type Amplitude struct {
	max float64
}

func NewAmplitude() *Amplitude { return &Amplitude{} }

func (a *Amplitude) Name() string { return "amplitude" }

func (a *Amplitude) Observe(t float64, s dynamo.State) {
	a.max = math.Max(a.max, math.Abs(s[0]))
}

func (a *Amplitude) Value() float64 { return a.max }

func (a *Amplitude) Reset() { a.max = 0 }
