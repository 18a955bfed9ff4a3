package config

import (
	"fmt"

	"github.com/sarchlab/arap/dist"
	"github.com/sirupsen/logrus"
)

// A NodeRange selects the nodes From to To, both included, by index.
type NodeRange struct {
	From int `yaml:"from"`
	To   int `yaml:"to"`
}

// Contains tells if node i is in the range.
func (r NodeRange) Contains(i int) bool {
	return i >= r.From && i <= r.To
}

func (r NodeRange) valid(nodes int) bool {
	return r.From >= 0 && r.From <= r.To && r.To < nodes
}

// DistRange assigns a distribution to a range of nodes.
type DistRange struct {
	NodeRange `yaml:",inline"`
	Dist      dist.Spec `yaml:"dist"`
}

// FactorRange assigns a computing delay increment to a range of nodes.
type FactorRange struct {
	NodeRange `yaml:",inline"`
	Factor    float64 `yaml:"factor"`
}

// TimeRange assigns an application start time, in seconds, to a range of
// nodes.
type TimeRange struct {
	NodeRange `yaml:",inline"`
	Time      float64 `yaml:"time"`
}

// NodeParams are the parameters of one node, resolved from the ranges.
type NodeParams struct {
	Index                   int
	ComputingDelay          dist.Spec
	ComputingDelayIncrement float64
	AppStartTime            float64
	LoadAntTime             dist.Spec
	LoadAntQuantity         dist.Spec
	LoadAntTarget           dist.Spec
}

// Node returns the parameters of node i. The configuration must be valid.
func (c *Config) Node(i int) NodeParams {
	p := NodeParams{
		Index:        i,
		AppStartTime: DefaultAppStartTime,
	}

	for _, r := range c.ComputingDelay {
		if r.Contains(i) {
			p.ComputingDelay = r.Dist
		}
	}

	for _, r := range c.ComputingDelayIncrement {
		if r.Contains(i) {
			p.ComputingDelayIncrement = r.Factor
		}
	}

	for _, r := range c.AppStartTime {
		if r.Contains(i) {
			p.AppStartTime = r.Time
		}
	}

	for _, r := range c.LoadAntTime {
		if r.Contains(i) {
			p.LoadAntTime = r.Dist
		}
	}

	for _, r := range c.LoadAntQuantity {
		if r.Contains(i) {
			p.LoadAntQuantity = r.Dist
		}
	}

	for _, r := range c.LoadAntTarget {
		if r.Contains(i) {
			p.LoadAntTarget = r.Dist
		}
	}

	return p
}

// applyRangeDefaults fills the optional ranged parameters a file leaves out.
func (c *Config) applyRangeDefaults(log logrus.Ext1FieldLogger) {
	all := NodeRange{From: 0, To: c.Nodes - 1}

	if len(c.AppStartTime) == 0 {
		c.AppStartTime = []TimeRange{{NodeRange: all, Time: DefaultAppStartTime}}
		log.Warnf("[Config] appStartTime not set, using %.1fs for all nodes",
			DefaultAppStartTime)
	}

	if len(c.ComputingDelayIncrement) == 0 {
		c.ComputingDelayIncrement = []FactorRange{{NodeRange: all}}
		log.Warn("[Config] computingDelayIncrement not set, using 0 for all nodes")
	}
}

// checkCoverage makes sure every node is in exactly one of the ranges.
func checkCoverage(name string, nodes int, ranges []NodeRange) error {
	if len(ranges) == 0 {
		return fmt.Errorf("%w: %s: no value given", ErrConfiguration, name)
	}

	covered := make([]bool, nodes)

	for _, r := range ranges {
		if !r.valid(nodes) {
			return fmt.Errorf("%w: %s: invalid node range [%d, %d]",
				ErrConfiguration, name, r.From, r.To)
		}

		for i := r.From; i <= r.To; i++ {
			if covered[i] {
				return fmt.Errorf("%w: %s: node %d is in two ranges",
					ErrConfiguration, name, i)
			}

			covered[i] = true
		}
	}

	for i, ok := range covered {
		if !ok {
			return fmt.Errorf("%w: %s: node %d has no value",
				ErrConfiguration, name, i)
		}
	}

	return nil
}

func distRanges(rs []DistRange) []NodeRange {
	out := make([]NodeRange, len(rs))
	for i, r := range rs {
		out[i] = r.NodeRange
	}

	return out
}
