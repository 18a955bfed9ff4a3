package config

import (
	"fmt"

	"github.com/sarchlab/arap/ant"
	"github.com/sarchlab/arap/dist"
	"github.com/sarchlab/arap/node"
	"github.com/sirupsen/logrus"
)

// Validate checks every parameter and fills the optional node ranges. The
// first failure is returned, wrapping ErrConfiguration.
func (c *Config) Validate() error {
	return c.ValidateWithLogger(logrus.StandardLogger())
}

// ValidateWithLogger is Validate reporting the applied defaults to log.
func (c *Config) ValidateWithLogger(log logrus.Ext1FieldLogger) error {
	checks := []func() error{
		c.checkNetwork,
		c.checkTimes,
		c.checkPathManager,
	}

	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}

	c.applyRangeDefaults(log)

	return c.checkRanges()
}

func (c *Config) checkNetwork() error {
	if c.Nodes < MinNodes {
		return fmt.Errorf("%w: nodes must be at least %d, got %d",
			ErrConfiguration, MinNodes, c.Nodes)
	}

	if c.Hops < 2 || c.Hops > c.Nodes-1 {
		return fmt.Errorf("%w: hops must be in [2, %d], got %d",
			ErrConfiguration, c.Nodes-1, c.Hops)
	}

	if c.AntSize < MinAntSize {
		return fmt.Errorf("%w: antSize must be at least %d bytes, got %d",
			ErrConfiguration, MinAntSize, c.AntSize)
	}

	if need := ant.LoadSize(c.Hops, len(node.DefaultMessage)); need > c.AntSize {
		return fmt.Errorf("%w: a load ant over %d hops needs %d bytes, antSize is %d",
			ErrConfiguration, c.Hops, need, c.AntSize)
	}

	if err := c.LinkDelay.Dist.Validate(); err != nil {
		return fmt.Errorf("%w: linkDelay.dist: %w", ErrConfiguration, err)
	}

	if c.LinkDelay.Interval < 0 {
		return fmt.Errorf("%w: linkDelay.interval must not be negative",
			ErrConfiguration)
	}

	return nil
}

func (c *Config) checkTimes() error {
	if c.StopTime < MinStopTime {
		return fmt.Errorf("%w: stopTime must be at least %.0fs, got %v",
			ErrConfiguration, MinStopTime, c.StopTime)
	}

	if c.EnableExplorerAnts && c.ExplorerInterval <= 0 {
		return fmt.Errorf("%w: explorerInterval must be positive, got %v",
			ErrConfiguration, c.ExplorerInterval)
	}

	if c.ExplorerInterval < 0 {
		return fmt.Errorf("%w: explorerInterval must not be negative",
			ErrConfiguration)
	}

	if c.PrintTablesInterval < 0 {
		return fmt.Errorf("%w: printTablesInterval must not be negative",
			ErrConfiguration)
	}

	return nil
}

func (c *Config) checkPathManager() error {
	_, err := c.Descriptor()
	return err
}

func (c *Config) checkRanges() error {
	if err := c.checkDistRanges("computingDelay", c.ComputingDelay); err != nil {
		return err
	}

	if err := c.checkDistRanges("loadAntTime", c.LoadAntTime); err != nil {
		return err
	}

	if err := c.checkDistRanges("loadAntQuantity", c.LoadAntQuantity); err != nil {
		return err
	}

	if err := c.checkDistRanges("loadAntTarget", c.LoadAntTarget); err != nil {
		return err
	}

	for _, r := range c.LoadAntTarget {
		if err := c.checkTargetDist(r); err != nil {
			return err
		}
	}

	if err := c.checkIncrements(); err != nil {
		return err
	}

	return c.checkStartTimes()
}

func (c *Config) checkDistRanges(name string, rs []DistRange) error {
	if err := checkCoverage(name, c.Nodes, distRanges(rs)); err != nil {
		return err
	}

	for _, r := range rs {
		if err := r.Dist.Validate(); err != nil {
			return fmt.Errorf("%w: %s [%d, %d]: %w",
				ErrConfiguration, name, r.From, r.To, err)
		}
	}

	return nil
}

func (c *Config) checkIncrements() error {
	ranges := make([]NodeRange, len(c.ComputingDelayIncrement))

	for i, r := range c.ComputingDelayIncrement {
		if r.Factor < 0 || r.Factor > 1 {
			return fmt.Errorf("%w: computingDelayIncrement factor must be in [0, 1], got %v",
				ErrConfiguration, r.Factor)
		}

		ranges[i] = r.NodeRange
	}

	return checkCoverage("computingDelayIncrement", c.Nodes, ranges)
}

func (c *Config) checkStartTimes() error {
	ranges := make([]NodeRange, len(c.AppStartTime))

	for i, r := range c.AppStartTime {
		if r.Time < MinAppStartTime {
			return fmt.Errorf("%w: appStartTime must be at least %.0fs, got %v",
				ErrConfiguration, MinAppStartTime, r.Time)
		}

		if r.Time >= c.StopTime {
			return fmt.Errorf("%w: appStartTime %v is not before stopTime %v",
				ErrConfiguration, r.Time, c.StopTime)
		}

		ranges[i] = r.NodeRange
	}

	return checkCoverage("appStartTime", c.Nodes, ranges)
}

// checkTargetDist makes sure the destinations drawn for a range of nodes are
// node indices. A constant destination must also lie outside the range, or
// the nodes of the range would only draw themselves.
func (c *Config) checkTargetDist(r DistRange) error {
	p := r.Dist.Params
	n := float64(c.Nodes)
	inNetwork := func(lo, hi float64) bool {
		return lo >= 0 && lo <= hi && hi < n
	}

	var ok bool

	switch r.Dist.Kind {
	case dist.KindConstant:
		ok = inNetwork(p[0], p[0]) && !r.Contains(int(p[0]))
	case dist.KindUniform, dist.KindTriangular:
		ok = inNetwork(p[0], p[1])
	case dist.KindExponential:
		ok = p[1] < n
	case dist.KindNormal:
		ok = inNetwork(p[0]-p[2], p[0]+p[2])
	}

	if !ok {
		return fmt.Errorf("%w: loadAntTarget [%d, %d]: %s can draw an index outside the network",
			ErrConfiguration, r.From, r.To, r.Dist)
	}

	return nil
}
