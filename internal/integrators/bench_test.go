package integrators

import (
	"testing"

	"github.com/san-kum/oscsim/internal/dynamo"
	"github.com/san-kum/oscsim/internal/physics"
)

func benchStepper(b *testing.B, st dynamo.Stepper, model string) {
	law, err := physics.New(model)
	if err != nil {
		b.Fatal(err)
	}
	x := dynamo.NewState(1.0, 0.0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = st.Step(law, x, float64(i)*0.01, 0.01)
	}
}

func BenchmarkEulerCromer(b *testing.B) { benchStepper(b, NewEulerCromer(), "simple_harmonic") }
func BenchmarkMidpoint(b *testing.B)    { benchStepper(b, NewMidpoint(), "simple_harmonic") }
func BenchmarkRK4(b *testing.B)         { benchStepper(b, NewRK4(), "simple_harmonic") }
func BenchmarkJointRK4(b *testing.B)    { benchStepper(b, NewJointRK4(), "simple_harmonic") }
func BenchmarkVerlet(b *testing.B)      { benchStepper(b, NewVerlet(), "simple_harmonic") }
func BenchmarkRK45(b *testing.B)        { benchStepper(b, NewRK45(), "simple_harmonic") }

func BenchmarkRK4_Duffing(b *testing.B) { benchStepper(b, NewJointRK4(), "duffing") }

func BenchmarkIntegrate_Adaptive(b *testing.B) {
	law, _ := physics.New("chaotic_pendulum")
	grid, _ := dynamo.NewTimeGrid(0, 60, 0.1)
	s0 := dynamo.NewState(0.2, 0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Integrate(AdaptiveMethod, law, s0, grid); err != nil {
			b.Fatal(err)
		}
	}
}
