package dist

import (
	"hash/fnv"
	"math/rand/v2"
)

// Streams hands out independent random streams. The same seed, run and stream
// name always produce the same sequence.
type Streams struct {
	seed uint64
	run  uint64
}

// NewStreams creates the stream source of one simulation run.
func NewStreams(seed, run uint64) Streams {
	return Streams{seed: seed, run: run}
}

// Rand returns the stream called name.
func (s Streams) Rand(name string) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))

	return rand.New(rand.NewPCG(s.seed, s.run^h.Sum64()))
}

// New creates a distribution of the given spec over the stream called name.
func (s Streams) New(spec Spec, name string) (Distribution, error) {
	return spec.New(s.Rand(name))
}
