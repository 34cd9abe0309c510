package sim_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gravsim/internal/body"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/sim"
)

type frameCounter struct {
	frames int
	lastT  float64
}

func (f *frameCounter) OnFrame(bodies []*body.Body, t float64) {
	f.frames++
	f.lastT = t
}

var _ = Describe("Runner", func() {
	var (
		engine *physics.Engine
		runner *sim.Runner
	)

	specs := []body.Spec{
		{Mass: 100.0, Position: [2]float64{0, 0}, Velocity: [2]float64{0, 0}},
		{Mass: 1.0, Position: [2]float64{10, 0}, Velocity: [2]float64{0, 3}},
	}

	BeforeEach(func() {
		engine = physics.NewEngine(1.0, 1.0)
		var err error
		runner, err = sim.NewRunner(engine, specs)
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects invalid body specs", func() {
		_, err := sim.NewRunner(engine, []body.Spec{{Mass: -1}})
		Expect(err).To(MatchError(body.ErrNonPositiveMass))
	})

	It("performs sub-steps per frame and samples per frame", func() {
		cfg := sim.Config{Dt: 0.001, Frames: 20, StepsPerFrame: 10, Method: physics.Verlet}
		result, err := runner.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())

		Expect(result.StepsTaken).To(Equal(200))
		Expect(result.Times).To(HaveLen(21))
		Expect(result.States).To(HaveLen(21))
		Expect(result.Total).To(HaveLen(21))

		// elapsed_time must equal the sum of all dt values.
		Expect(engine.Elapsed()).To(BeNumerically("~", 200*0.001, 1e-9))
		Expect(result.Times[20]).To(Equal(engine.Elapsed()))

		// Flattened state is [x, y, vx, vy] per body.
		Expect(result.States[0]).To(HaveLen(8))
		Expect(result.States[0][0]).To(Equal(0.0))
		Expect(result.States[0][4]).To(Equal(10.0))
	})

	It("notifies observers once per frame", func() {
		fc := &frameCounter{}
		runner.AddObserver(fc)

		cfg := sim.Config{Dt: 0.001, Frames: 15, StepsPerFrame: 4, Method: physics.Verlet}
		_, err := runner.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())

		Expect(fc.frames).To(Equal(15))
		Expect(fc.lastT).To(Equal(engine.Elapsed()))
	})

	It("collects metric values into the result", func() {
		runner.AddMetric(metrics.NewEnergyDrift(engine))
		runner.AddMetric(metrics.NewMomentumDrift())

		cfg := sim.Config{Dt: 0.001, Frames: 50, StepsPerFrame: 10, Method: physics.Verlet}
		result, err := runner.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())

		Expect(result.Metrics).To(HaveKey("energy_drift"))
		Expect(result.Metrics).To(HaveKey("momentum_drift"))
		Expect(result.Metrics["energy_drift"]).To(BeNumerically("<", 0.01))
		Expect(result.EnergyDrift).To(BeNumerically("<", 0.01))
	})

	It("stops on an integration fault and reports it", func() {
		runner.Bodies()[1].Vel.X = math.Inf(1)

		cfg := sim.Config{Dt: 0.001, Frames: 10, StepsPerFrame: 5, Method: physics.Verlet}
		result, err := runner.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())

		Expect(result.Fault).To(MatchError(physics.ErrDiverged))
		Expect(result.StepsTaken).To(Equal(0))
	})

	It("returns the partial result on cancellation", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		cfg := sim.Config{Dt: 0.001, Frames: 10, StepsPerFrame: 5, Method: physics.Verlet}
		result, err := runner.Run(ctx, cfg)
		Expect(err).To(MatchError(context.Canceled))
		Expect(result).NotTo(BeNil())
		Expect(result.Times).To(HaveLen(1))
	})

	It("validates the run config", func() {
		for _, cfg := range []sim.Config{
			{Dt: 0, Frames: 1, StepsPerFrame: 1},
			{Dt: 0.001, Frames: 0, StepsPerFrame: 1},
			{Dt: 0.001, Frames: 1, StepsPerFrame: 0},
		} {
			_, err := runner.Run(context.Background(), cfg)
			Expect(err).To(HaveOccurred())
		}
	})

	Describe("Reset", func() {
		It("re-seeds bodies and zeroes the clock", func() {
			cfg := sim.Config{Dt: 0.001, Frames: 10, StepsPerFrame: 10, Method: physics.Verlet}
			_, err := runner.Run(context.Background(), cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(engine.Elapsed()).To(BeNumerically(">", 0))

			Expect(runner.Reset()).To(Succeed())
			Expect(engine.Elapsed()).To(BeZero())

			fresh := runner.Bodies()
			Expect(fresh[1].Pos.X).To(Equal(10.0))
			Expect(fresh[1].Vel.Y).To(Equal(3.0))
			Expect(fresh[1].Acc).To(BeZero())
			Expect(fresh[1].TrailLen()).To(Equal(1))
		})

		It("reproduces the identical trajectory after reset", func() {
			cfg := sim.Config{Dt: 0.001, Frames: 30, StepsPerFrame: 10, Method: physics.Verlet}

			first, err := runner.Run(context.Background(), cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(runner.Reset()).To(Succeed())

			second, err := runner.Run(context.Background(), cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(second.States).To(Equal(first.States))
		})
	})
})
