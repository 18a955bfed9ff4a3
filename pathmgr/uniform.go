package pathmgr

import "github.com/sarchlab/arap/ant"

// Uniform draws random paths from the initial table and never learns.
type Uniform struct {
	pathBuilder
}

// NewUniform creates a Uniform manager for local.
func NewUniform(
	local ant.Address,
	addresses []ant.Address,
	hops int,
	rng Rand,
) (*Uniform, error) {
	t, err := NewUniformTable(local, addresses)
	if err != nil {
		return nil, err
	}

	m := &Uniform{
		pathBuilder: pathBuilder{ProbabilityTable: t, hops: hops, rng: rng},
	}

	return m, nil
}

// HandleExplorerReturn ignores the feedback.
func (m *Uniform) HandleExplorerReturn(_, _ ant.Address, _ float64) error {
	return nil
}
