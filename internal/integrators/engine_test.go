package integrators_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/oscsim/internal/dynamo"
	"github.com/san-kum/oscsim/internal/integrators"
	"github.com/san-kum/oscsim/internal/physics"
)

var _ = Describe("Integrate", func() {
	var (
		s0   dynamo.State
		grid dynamo.TimeGrid
	)

	BeforeEach(func() {
		s0 = dynamo.NewState(0.2, 0)
		grid = dynamo.TimeGrid{Start: 0, Dt: 0.05, N: 400}
	})

	for _, name := range integrators.Methods() {
		method := integrators.Method(name)

		Context("with the "+name+" method", func() {
			It("is deterministic for every force law", func() {
				for _, model := range physics.Names() {
					law, err := physics.New(model)
					Expect(err).NotTo(HaveOccurred())

					first, err := integrators.Integrate(method, law, s0, grid)
					Expect(err).NotTo(HaveOccurred())
					second, err := integrators.Integrate(method, law, s0, grid)
					Expect(err).NotTo(HaveOccurred())

					Expect(second).To(Equal(first), "model %s", model)
				}
			})

			It("returns one state per grid point starting at the initial state", func() {
				law, _ := physics.New("duffing")
				traj, err := integrators.Integrate(method, law, s0, grid)
				Expect(err).NotTo(HaveOccurred())
				Expect(traj).To(HaveLen(grid.N))
				Expect(traj[0]).To(Equal(s0))
			})

			It("returns just the initial state for a single-point grid", func() {
				law, _ := physics.New("van_der_pol")
				traj, err := integrators.Integrate(method, law, s0, dynamo.TimeGrid{Start: 3, Dt: 0.1, N: 1})
				Expect(err).NotTo(HaveOccurred())
				Expect(traj).To(Equal(dynamo.Trajectory{s0}))
			})

			It("rejects a non-positive step before stepping", func() {
				law, _ := physics.New("damped")
				for _, dt := range []float64{0, -0.01} {
					traj, err := integrators.Integrate(method, law, s0, dynamo.TimeGrid{Start: 0, Dt: dt, N: 10})
					Expect(errors.Is(err, dynamo.ErrInvalidGrid)).To(BeTrue())
					Expect(traj).To(BeNil())
				}
			})
		})
	}

	It("keeps trajectories independent across calls", func() {
		law, _ := physics.New("chaotic_pendulum")
		first, err := integrators.Integrate(integrators.RK4Method, law, s0, grid)
		Expect(err).NotTo(HaveOccurred())
		snapshot := append(dynamo.Trajectory(nil), first...)

		_, err = integrators.Integrate(integrators.RK4Method, law, dynamo.NewState(1, 1), grid)
		Expect(err).NotTo(HaveOccurred())
		Expect(first).To(Equal(snapshot))
	})

	It("produces identical results when runs execute in parallel", func() {
		law, _ := physics.New("duffing")
		want, err := integrators.Integrate(integrators.AdaptiveMethod, law, s0, grid)
		Expect(err).NotTo(HaveOccurred())

		results := make(chan dynamo.Trajectory, 4)
		for i := 0; i < 4; i++ {
			go func() {
				defer GinkgoRecover()
				traj, err := integrators.Integrate(integrators.AdaptiveMethod, law, s0, grid)
				Expect(err).NotTo(HaveOccurred())
				results <- traj
			}()
		}
		for i := 0; i < 4; i++ {
			Eventually(results).Should(Receive(Equal(want)))
		}
	})
})
