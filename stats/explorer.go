// Package stats keeps the running latency estimators of a node.
package stats

import "math"

// DefaultWindowBest is the value the best RTT of a window takes when the
// window starts.
const DefaultWindowBest = 1e7

// ExplorerStatistics follows the round-trip time observed by the explorer ants
// sent towards one destination. All the times are in milliseconds.
type ExplorerStatistics struct {
	mean       float64
	variance   float64
	windowBest float64
	varsigma   float64
	windowMax  uint32
	windowCnt  uint32
}

// NewExplorerStatistics creates an estimator whose window holds windowMax
// samples and whose moving averages use the weight varsigma.
func NewExplorerStatistics(
	windowMax uint32,
	varsigma float64,
) *ExplorerStatistics {
	return &ExplorerStatistics{
		windowBest: DefaultWindowBest,
		varsigma:   varsigma,
		windowMax:  windowMax,
	}
}

// Update adds a sample. The variance moves towards the squared distance from
// the already updated mean.
func (s *ExplorerStatistics) Update(rtt float64) {
	s.mean += s.varsigma * (rtt - s.mean)
	dev := rtt - s.mean
	s.variance += s.varsigma * (dev*dev - s.variance)

	if s.windowCnt == s.windowMax {
		s.windowCnt = 0
		s.windowBest = DefaultWindowBest
	}

	s.windowCnt++

	if rtt < s.windowBest {
		s.windowBest = rtt
	}
}

// Mean returns the exponentially weighted mean.
func (s *ExplorerStatistics) Mean() float64 {
	return s.mean
}

// Variance returns the exponentially weighted variance.
func (s *ExplorerStatistics) Variance() float64 {
	return s.variance
}

// StdDev returns the square root of the variance.
func (s *ExplorerStatistics) StdDev() float64 {
	return math.Sqrt(s.variance)
}

// WindowBest returns the lowest sample of the current window.
func (s *ExplorerStatistics) WindowBest() float64 {
	return s.windowBest
}

// WindowMax returns the window length.
func (s *ExplorerStatistics) WindowMax() uint32 {
	return s.windowMax
}

// WindowCount returns the number of samples in the current window.
func (s *ExplorerStatistics) WindowCount() uint32 {
	return s.windowCnt
}
