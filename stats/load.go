package stats

import (
	"sort"

	"github.com/sarchlab/arap/ant"
)

// LoadStatistics accumulates the round-trip time, in seconds, of the load ants
// a node has completed.
type LoadStatistics struct {
	numSamples   uint64
	sumDelay     float64
	sumDelaySq   float64
	samplesCount map[ant.Address]uint64
}

// NewLoadStatistics creates an empty model with a zero counter for every
// destination.
func NewLoadStatistics(destinations []ant.Address) *LoadStatistics {
	s := &LoadStatistics{
		samplesCount: make(map[ant.Address]uint64, len(destinations)),
	}

	for _, d := range destinations {
		s.samplesCount[d] = 0
	}

	return s
}

// Update adds the round trip of one load ant sent to target.
func (s *LoadStatistics) Update(rtt float64, target ant.Address) {
	s.numSamples++
	s.sumDelay += rtt
	s.sumDelaySq += rtt * rtt
	s.samplesCount[target]++
}

// NumSamples returns the number of completed load ants.
func (s *LoadStatistics) NumSamples() uint64 {
	return s.numSamples
}

// Mean returns the average round trip, or 0 without samples.
func (s *LoadStatistics) Mean() float64 {
	if s.numSamples == 0 {
		return 0
	}

	return s.sumDelay / float64(s.numSamples)
}

// Variance returns E[X²]−E[X]², or 0 without samples.
func (s *LoadStatistics) Variance() float64 {
	if s.numSamples == 0 {
		return 0
	}

	mean := s.Mean()

	return s.sumDelaySq/float64(s.numSamples) - mean*mean
}

// SamplesFor returns how many load ants sent to target have completed.
func (s *LoadStatistics) SamplesFor(target ant.Address) uint64 {
	return s.samplesCount[target]
}

// DestinationCount is the number of samples towards one destination.
type DestinationCount struct {
	Destination ant.Address
	Samples     uint64
}

// Counts returns the per-destination counters ordered by address.
func (s *LoadStatistics) Counts() []DestinationCount {
	counts := make([]DestinationCount, 0, len(s.samplesCount))
	for d, n := range s.samplesCount {
		counts = append(counts, DestinationCount{Destination: d, Samples: n})
	}

	sort.Slice(counts, func(i, j int) bool {
		return counts[i].Destination < counts[j].Destination
	})

	return counts
}
