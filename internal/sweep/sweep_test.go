package sweep

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/predprey/internal/config"
	"github.com/san-kum/predprey/internal/dynamo"
)

var _ = Describe("ParseRange", func() {
	It("spans start to stop inclusively", func() {
		values, err := ParseRange("5:30:6")
		Expect(err).NotTo(HaveOccurred())
		Expect(values).To(Equal([]float64{5, 10, 15, 20, 25, 30}))
	})

	It("accepts a single value", func() {
		values, err := ParseRange("0.3:0.9:1")
		Expect(err).NotTo(HaveOccurred())
		Expect(values).To(Equal([]float64{0.3}))
	})

	DescribeTable("rejects malformed ranges",
		func(s string) {
			_, err := ParseRange(s)
			Expect(err).To(HaveOccurred())
		},
		Entry("too few fields", "1:2"),
		Entry("bad start", "x:2:3"),
		Entry("bad stop", "1:y:3"),
		Entry("zero count", "1:2:0"),
		Entry("fractional count", "1:2:2.5"),
	)
})

var _ = Describe("ParseAxis", func() {
	It("accepts model parameters and initial populations", func() {
		for _, name := range []string{"r", "K", "a", "h", "m", "c", "d", "N0", "P0"} {
			axis, err := ParseAxis(name + "=1:2:2")
			Expect(err).NotTo(HaveOccurred())
			Expect(axis.Name).To(Equal(name))
		}
	})

	It("rejects unknown names and missing '='", func() {
		_, err := ParseAxis("zeta=1:2:2")
		Expect(err).To(MatchError(ContainSubstring("unknown parameter")))
		_, err = ParseAxis("K1:2:2")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Sweep", func() {
	var base *config.Config

	BeforeEach(func() {
		base = config.DefaultConfig()
		base.TMax = 10
		base.Points = 101
	})

	It("enumerates the cartesian product with the first axis slowest", func() {
		s := New(base, []Axis{
			{Name: "K", Values: []float64{10, 20}},
			{Name: "a", Values: []float64{1, 2, 3}},
		}, 2)

		Expect(s.Size()).To(Equal(6))
		combos := s.Combinations()
		Expect(combos).To(HaveLen(6))
		Expect(combos[0]).To(Equal(map[string]float64{"K": 10, "a": 1}))
		Expect(combos[2]).To(Equal(map[string]float64{"K": 10, "a": 3}))
		Expect(combos[3]).To(Equal(map[string]float64{"K": 20, "a": 1}))
	})

	It("simulates every combination", func() {
		axis, err := ParseAxis("K=5:20:4")
		Expect(err).NotTo(HaveOccurred())

		points, err := New(base, []Axis{axis}, 4).Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(points).To(HaveLen(4))

		for i, p := range points {
			Expect(p.Err).NotTo(HaveOccurred())
			Expect(p.Values["K"]).To(Equal(axis.Values[i]))
			Expect(p.Final).To(HaveLen(2))
			Expect(p.PredatorMin).To(BeNumerically("<=", p.PredatorMax))
			Expect(p.PreyMin).To(BeNumerically(">", 0))
		}
	})

	It("keeps predators at zero along a P0=0 axis", func() {
		points, err := New(base, []Axis{{Name: "P0", Values: []float64{0}}}, 1).Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(points[0].PredatorMax).To(Equal(0.0))
		Expect(points[0].Final[1]).To(Equal(0.0))
	})

	It("reports invalid combinations per point", func() {
		points, err := New(base, []Axis{{Name: "h", Values: []float64{0.1, math.NaN()}}}, 2).Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(points[0].Err).NotTo(HaveOccurred())
		Expect(points[1].Err).To(MatchError(dynamo.ErrInvalidParameter))
	})

	It("fails fast on a bad base config", func() {
		base.Integrator = "magic"
		_, err := New(base, nil, 1).Run(context.Background())
		Expect(err).To(MatchError(dynamo.ErrUnknownIntegrator))
	})
})
