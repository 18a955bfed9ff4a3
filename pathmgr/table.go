package pathmgr

import (
	"fmt"
	"sort"

	"github.com/sarchlab/arap/ant"
)

// Epsilon is the tolerance used when comparing probability masses.
const Epsilon = 1e-9

// ProbabilityTable holds the pheromone of a node. Rows are destinations and
// columns are neighbors. The local node appears in neither.
type ProbabilityTable struct {
	local ant.Address
	nodes []ant.Address
	index map[ant.Address]int
	p     [][]float64
}

// NewUniformTable creates the table of local with every row spread evenly over
// the neighbors that are not the destination itself. With N nodes, every
// allowed cell starts at 1/(N−2).
func NewUniformTable(
	local ant.Address,
	addresses []ant.Address,
) (*ProbabilityTable, error) {
	t := &ProbabilityTable{
		local: local,
		index: make(map[ant.Address]int),
	}

	foundLocal := false

	for _, a := range addresses {
		if a == local {
			foundLocal = true
			continue
		}

		if _, dup := t.index[a]; dup {
			return nil, fmt.Errorf("%w: %s listed twice", ErrUnknownAddress, a)
		}

		t.index[a] = -1
		t.nodes = append(t.nodes, a)
	}

	if !foundLocal {
		return nil, fmt.Errorf("%w: local node %s is not in the network",
			ErrUnknownAddress, local)
	}

	if len(t.nodes) < 2 {
		return nil, fmt.Errorf("%w: %d nodes", ErrTooFewNodes, len(addresses))
	}

	sort.Slice(t.nodes, func(i, j int) bool { return t.nodes[i] < t.nodes[j] })

	for i, a := range t.nodes {
		t.index[a] = i
	}

	t.InitializeUniform()

	return t, nil
}

// InitializeUniform resets every row to the uniform distribution.
func (t *ProbabilityTable) InitializeUniform() {
	n := len(t.nodes)
	share := 1.0 / float64(n-1)

	t.p = make([][]float64, n)
	for d := range t.p {
		t.p[d] = make([]float64, n)
		for m := range t.p[d] {
			if m != d {
				t.p[d][m] = share
			}
		}
	}
}

// Local returns the owner of the table.
func (t *ProbabilityTable) Local() ant.Address {
	return t.local
}

// Nodes returns every address except the local one, in ascending order.
func (t *ProbabilityTable) Nodes() []ant.Address {
	return append([]ant.Address(nil), t.nodes...)
}

func (t *ProbabilityTable) indexOf(a ant.Address) (int, error) {
	i, ok := t.index[a]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownAddress, a)
	}

	return i, nil
}

// Probability returns the pheromone of going through medium to reach target.
// Unknown addresses read as 0.
func (t *ProbabilityTable) Probability(target, medium ant.Address) float64 {
	d, err := t.indexOf(target)
	if err != nil {
		return 0
	}

	m, err := t.indexOf(medium)
	if err != nil {
		return 0
	}

	return t.p[d][m]
}

// RowSum returns the sum of the row of target.
func (t *ProbabilityTable) RowSum(target ant.Address) float64 {
	d, err := t.indexOf(target)
	if err != nil {
		return 0
	}

	sum := 0.0
	for _, v := range t.p[d] {
		sum += v
	}

	return sum
}

// Snapshot copies the table.
func (t *ProbabilityTable) Snapshot() Snapshot {
	s := Snapshot{
		Local: t.local,
		Nodes: t.Nodes(),
		Probs: make([][]float64, len(t.p)),
	}

	for i, row := range t.p {
		s.Probs[i] = append([]float64(nil), row...)
	}

	return s
}

// Snapshot is a point-in-time copy of a probability table. Probs[i][j] is the
// probability of reaching Nodes[i] through Nodes[j].
type Snapshot struct {
	Local ant.Address
	Nodes []ant.Address
	Probs [][]float64
}

// RowSum returns the sum of row i.
func (s Snapshot) RowSum(i int) float64 {
	sum := 0.0
	for _, v := range s.Probs[i] {
		sum += v
	}

	return sum
}
