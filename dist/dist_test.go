package dist_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/arap/dist"
	"gopkg.in/yaml.v3"
)

var _ = Describe("Parse", func() {
	It("should parse short and long names", func() {
		s, err := dist.Parse("uniform 2 10")
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(Equal(dist.Spec{
			Kind: dist.KindUniform, Params: []float64{2, 10}}))

		s, err = dist.Parse("NormalRandomVariable 10 4 5")
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Kind).To(Equal(dist.KindNormal))
		Expect(s.String()).To(Equal("normal 10 4 5"))
	})

	DescribeTable("rejects invalid specs",
		func(text string) {
			_, err := dist.Parse(text)
			Expect(err).To(MatchError(dist.ErrInvalidParams))
		},
		Entry("empty", ""),
		Entry("unknown family", "pareto 1 2"),
		Entry("not a number", "constant x"),
		Entry("wrong arity", "uniform 1"),
		Entry("negative constant", "constant -1"),
		Entry("reversed uniform", "uniform 5 2"),
		Entry("mode outside triangle", "triangular 1 3 4"),
		Entry("exponential bound below mean", "exponential 5 2"),
		Entry("normal bound above mean", "normal 2 1 3"),
	)

	It("should read specs from YAML scalars", func() {
		var doc struct {
			Delay dist.Spec `yaml:"delay"`
		}

		err := yaml.Unmarshal([]byte("delay: triangular 1 9 3\n"), &doc)

		Expect(err).NotTo(HaveOccurred())
		Expect(doc.Delay).To(Equal(dist.MustParse("triangular 1 9 3")))
	})

	It("should report YAML errors", func() {
		var doc struct {
			Delay dist.Spec `yaml:"delay"`
		}

		err := yaml.Unmarshal([]byte("delay: uniform 9 1\n"), &doc)

		Expect(err).To(MatchError(dist.ErrInvalidParams))
	})
})

var _ = Describe("Distributions", func() {
	var streams dist.Streams

	BeforeEach(func() {
		streams = dist.NewStreams(1, 1)
	})

	sample := func(text string, n int) []float64 {
		d, err := streams.New(dist.MustParse(text), "test")
		Expect(err).NotTo(HaveOccurred())

		out := make([]float64, n)
		for i := range out {
			out[i] = d.Sample()
		}

		return out
	}

	It("should return the constant", func() {
		d, _ := streams.New(dist.MustParse("constant 3.7"), "c")
		Expect(d.Sample()).To(Equal(3.7))
		Expect(d.SampleInt()).To(Equal(3))
	})

	DescribeTable("keeps samples within bounds",
		func(text string, lo, hi float64) {
			for _, v := range sample(text, 2000) {
				Expect(v).To(BeNumerically(">=", lo))
				Expect(v).To(BeNumerically("<=", hi))
			}
		},
		Entry("uniform", "uniform 2 5", 2.0, 5.0),
		Entry("triangular", "triangular 1 9 3", 1.0, 9.0),
		Entry("exponential", "exponential 2 6", 0.0, 6.0),
		Entry("normal", "normal 10 25 4", 6.0, 14.0),
	)

	It("should center the normal distribution on its mean", func() {
		values := sample("normal 10 4 10", 5000)
		sum := 0.0
		for _, v := range values {
			sum += v
		}

		Expect(sum / float64(len(values))).To(BeNumerically("~", 10, 0.2))
	})

	It("should return the mean for a zero normal bound", func() {
		for _, v := range sample("normal 3 4 0", 10) {
			Expect(v).To(Equal(3.0))
		}
	})

	It("should draw uniform integers with both ends included", func() {
		d, _ := streams.New(dist.MustParse("uniform 0 3"), "ints")

		seen := map[int]bool{}
		for i := 0; i < 1000; i++ {
			v := d.SampleInt()
			Expect(v).To(BeNumerically(">=", 0))
			Expect(v).To(BeNumerically("<=", 3))
			seen[v] = true
		}

		Expect(seen).To(HaveLen(4))
	})

	It("should reproduce a stream from the same seed", func() {
		a := dist.NewStreams(7, 2).Rand("node-1")
		b := dist.NewStreams(7, 2).Rand("node-1")
		c := dist.NewStreams(7, 3).Rand("node-1")

		va := []float64{a.Float64(), a.Float64()}
		vb := []float64{b.Float64(), b.Float64()}
		vc := []float64{c.Float64(), c.Float64()}

		Expect(va).To(Equal(vb))
		Expect(va).NotTo(Equal(vc))
	})
})
