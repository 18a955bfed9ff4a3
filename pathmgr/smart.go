package pathmgr

import (
	"fmt"
	"math"

	"github.com/sarchlab/arap/ant"
	"github.com/sarchlab/arap/stats"
)

// MaxProbability is the ceiling of a reinforced cell.
const MaxProbability = 0.8

// SmartParams are the constants of the reinforcement policy.
type SmartParams struct {
	C1        float64 `yaml:"c1"`
	C2        float64 `yaml:"c2"`
	Zeta      float64 `yaml:"zeta"`
	WindowMax uint32  `yaml:"wMax"`
	Varsigma  float64 `yaml:"varsigma"`
}

// DefaultSmartParams returns the default constants.
func DefaultSmartParams() SmartParams {
	return SmartParams{
		C1:        0.7,
		C2:        0.3,
		Zeta:      1.7,
		WindowMax: 50,
		Varsigma:  0.5,
	}
}

// Smart reinforces the relays whose explorer ants come back faster.
type Smart struct {
	pathBuilder

	params SmartParams
	models map[ant.Address]*stats.ExplorerStatistics
}

// NewSmart creates a Smart manager for local.
func NewSmart(
	local ant.Address,
	addresses []ant.Address,
	hops int,
	rng Rand,
	params SmartParams,
) (*Smart, error) {
	t, err := NewUniformTable(local, addresses)
	if err != nil {
		return nil, err
	}

	m := &Smart{
		pathBuilder: pathBuilder{ProbabilityTable: t, hops: hops, rng: rng},
		params:      params,
		models:      make(map[ant.Address]*stats.ExplorerStatistics),
	}

	for _, a := range t.nodes {
		m.models[a] = stats.NewExplorerStatistics(
			params.WindowMax, params.Varsigma)
	}

	return m, nil
}

// Params returns the constants of the manager.
func (m *Smart) Params() SmartParams {
	return m.params
}

// Model returns the explorer statistics kept for target.
func (m *Smart) Model(target ant.Address) (*stats.ExplorerStatistics, bool) {
	s, ok := m.models[target]
	return s, ok
}

// HandleExplorerReturn updates the statistics of target and moves pheromone
// towards medium. The row of target still sums to one when it returns.
func (m *Smart) HandleExplorerReturn(
	target, medium ant.Address,
	rtt float64,
) error {
	d, err := m.indexOf(target)
	if err != nil {
		return err
	}

	k, err := m.indexOf(medium)
	if err != nil {
		return err
	}

	if d == k {
		return fmt.Errorf("%w: medium %s is the target", ErrUnknownAddress, medium)
	}

	if rtt < Epsilon {
		rtt = Epsilon
	}

	model := m.models[target]
	model.Update(rtt)

	r := m.reward(rtt, model)
	row := m.p[d]

	row[k] += r * (1 - row[k])

	for i := range row {
		if i == k || i == d {
			continue
		}

		row[i] -= r * row[i]
	}

	if row[k] > MaxProbability {
		m.redistribute(row, d, k)
	}

	return nil
}

// redistribute caps the cell k and spreads the excess over every neighbor
// that is neither the target nor k.
func (m *Smart) redistribute(row []float64, d, k int) {
	others := len(row) - 2
	if others <= 0 {
		return
	}

	gain := (row[k] - MaxProbability) / float64(others)
	row[k] = MaxProbability

	for i := range row {
		if i == k || i == d {
			continue
		}

		row[i] += gain
	}
}

// reward combines how close rtt is to the best of the window with how it
// relates to the upper confidence bound of the mean. A vanishing denominator
// of the second term makes the term take its full weight, and the result is
// kept within [0, 1].
func (m *Smart) reward(rtt float64, s *stats.ExplorerStatistics) float64 {
	best := s.WindowBest()
	term1 := m.params.C1 * (best / rtt)

	upper := s.Mean() + m.params.Zeta*s.StdDev()/math.Sqrt(float64(s.WindowCount()))
	num := upper - best
	den := num + rtt - best

	term2 := m.params.C2
	if den > Epsilon {
		term2 = m.params.C2 * clamp(num/den, 0, 1)
	}

	return clamp(term1+term2, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
