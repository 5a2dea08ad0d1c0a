package sim

import (
	"context"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/predprey/internal/dynamo"
	"github.com/san-kum/predprey/internal/integrators"
	"github.com/san-kum/predprey/internal/models"
)

var _ = Describe("RunBatch", func() {
	var (
		s     *Simulator
		model *models.HollingTanner
		grid  dynamo.TimeGrid
	)

	BeforeEach(func() {
		var err error
		s = New()
		model, err = models.NewHollingTanner(models.DefaultParams())
		Expect(err).NotTo(HaveOccurred())
		grid = dynamo.Linspace(0, 20, 200)
	})

	It("keeps job order and matches sequential runs", func() {
		jobs := make([]Job, 8)
		for i := range jobs {
			jobs[i] = Job{
				Label:  fmt.Sprintf("n0=%d", i+1),
				System: model,
				X0:     dynamo.State{float64(i + 1), 2},
				Grid:   grid,
			}
		}

		results, err := s.RunBatch(context.Background(), jobs, 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(len(jobs)))

		for i, res := range results {
			Expect(res.Label).To(Equal(jobs[i].Label))
			Expect(res.Err).NotTo(HaveOccurred())

			single, err := s.Run(context.Background(), model, jobs[i].X0, grid)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Trajectory.States).To(Equal(single.States))
		}
	})

	It("reports a failing job without stopping the others", func() {
		jobs := []Job{
			{Label: "ok", System: model, X0: dynamo.State{5, 2}, Grid: grid},
			{Label: "bad", System: model, X0: dynamo.State{5}, Grid: grid},
			{Label: "empty", System: model, X0: dynamo.State{5, 2}, Grid: dynamo.TimeGrid{}},
		}

		results, err := s.RunBatch(context.Background(), jobs, 0)
		Expect(err).NotTo(HaveOccurred())

		Expect(results[0].Err).NotTo(HaveOccurred())
		Expect(results[0].Trajectory.Len()).To(Equal(len(grid)))
		Expect(results[1].Err).To(MatchError(dynamo.ErrInvalidInitialCondition))
		Expect(results[1].Trajectory).To(BeNil())
		Expect(results[2].Err).To(MatchError(dynamo.ErrInvalidTimeGrid))
	})

	It("runs each job with the simulator's integrator", func() {
		euler := New(WithIntegrator(integrators.NewEuler(dynamo.DefaultConfig())))
		results, err := euler.RunBatch(context.Background(), []Job{
			{Label: "euler", System: model, X0: dynamo.State{5, 2}, Grid: dynamo.Linspace(0, 1, 11)},
		}, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(results[0].Trajectory.Stats.Evaluations).To(Equal(results[0].Trajectory.Stats.Steps))
	})

	It("aborts when the context is canceled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		results, err := s.RunBatch(ctx, []Job{
			{Label: "a", System: model, X0: dynamo.State{5, 2}, Grid: grid},
		}, 2)
		Expect(err).To(MatchError(context.Canceled))
		Expect(results).To(BeNil())
	})
})
