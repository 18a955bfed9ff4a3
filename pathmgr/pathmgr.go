// Package pathmgr decides which relays a node uses to reach a destination and
// learns from the round trips of explorer ants.
package pathmgr

import (
	"errors"
	"fmt"

	"github.com/sarchlab/arap/ant"
)

var (
	// ErrUnknownAddress is returned for an address that is not part of the
	// network, or that cannot be used in the requested role.
	ErrUnknownAddress = errors.New("unknown address")

	// ErrTooFewNodes is returned when the network cannot provide enough
	// distinct relays.
	ErrTooFewNodes = errors.New("too few nodes")

	// ErrUnknownKind is returned by Parse for an unsupported manager kind.
	ErrUnknownKind = errors.New("unknown path manager kind")
)

// Rand provides uniform draws in [0, 1).
type Rand interface {
	Float64() float64
}

// A Manager owns the probability table of one node.
type Manager interface {
	// Local returns the node owning the manager.
	Local() ant.Address

	// CreatePath returns hops addresses: hops−1 distinct relays followed by
	// target.
	CreatePath(target ant.Address) ([]ant.Address, error)

	// HandleExplorerReturn feeds back the round trip, in milliseconds, of an
	// explorer ant that reached target through medium.
	HandleExplorerReturn(target, medium ant.Address, rtt float64) error

	// Probability returns a cell of the table.
	Probability(target, medium ant.Address) float64

	// Snapshot copies the table.
	Snapshot() Snapshot
}

type pathBuilder struct {
	*ProbabilityTable
	hops int
	rng  Rand
}

// CreatePath draws the relays from the row of target. A relay already on the
// path is never drawn again: the draw is made over the mass of the remaining
// candidates only, and when that mass vanishes the remaining candidates are
// drawn uniformly.
func (b *pathBuilder) CreatePath(target ant.Address) ([]ant.Address, error) {
	d, err := b.indexOf(target)
	if err != nil {
		return nil, err
	}

	relays := b.hops - 1
	if relays > len(b.nodes)-1 {
		return nil, fmt.Errorf("%w: %d relays requested, %d available",
			ErrTooFewNodes, relays, len(b.nodes)-1)
	}

	row := b.p[d]
	used := make([]bool, len(b.nodes))
	used[d] = true

	path := make([]ant.Address, 0, b.hops)
	for len(path) < relays {
		m := b.draw(row, used)
		used[m] = true
		path = append(path, b.nodes[m])
	}

	path = append(path, target)

	return path, nil
}

func (b *pathBuilder) draw(row []float64, used []bool) int {
	mass := 0.0
	free := 0

	for m, v := range row {
		if !used[m] {
			mass += v
			free++
		}
	}

	if mass <= Epsilon {
		k := int(b.rng.Float64() * float64(free))
		for m := range row {
			if used[m] {
				continue
			}

			if k == 0 {
				return m
			}

			k--
		}
	}

	x := b.rng.Float64() * mass
	acc := 0.0
	last := -1

	for m, v := range row {
		if used[m] {
			continue
		}

		last = m
		acc += v

		if x < acc {
			return m
		}
	}

	return last
}
