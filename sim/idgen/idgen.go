// Package idgen provides the sequential ID generator shared by all the ants of
// a simulation.
package idgen

import "go.uber.org/atomic"

// ID is a unique identifier represented as a uint64.
type ID = uint64

// Generator produces unique identifiers.
type Generator interface {
	// Generate returns an ID that is strictly larger than every ID returned
	// before.
	Generate() ID

	// Count returns how many IDs have been generated.
	Count() uint64
}

// New returns a sequential generator whose first emitted ID is 1.
func New() Generator {
	return &sequentialGenerator{}
}

type sequentialGenerator struct {
	next atomic.Uint64
}

func (g *sequentialGenerator) Generate() ID {
	return g.next.Inc()
}

func (g *sequentialGenerator) Count() uint64 {
	return g.next.Load()
}
