package stats

import (
	mfstats "github.com/montanaflynn/stats"
)

// Summary aggregates the load models of all the nodes of a simulation.
type Summary struct {
	TotalSamples uint64
	SumOfMeans   float64
	MeanOfMeans  float64
	VarOfMeans   float64
}

// Summarize computes the totals printed at the end of the load report. The
// variance is the population variance of the per-node means.
func Summarize(models []*LoadStatistics) (Summary, error) {
	var s Summary

	if len(models) == 0 {
		return s, nil
	}

	means := make(mfstats.Float64Data, 0, len(models))
	for _, m := range models {
		s.TotalSamples += m.NumSamples()
		means = append(means, m.Mean())
	}

	var err error

	if s.SumOfMeans, err = means.Sum(); err != nil {
		return s, err
	}

	if s.MeanOfMeans, err = means.Mean(); err != nil {
		return s, err
	}

	if s.VarOfMeans, err = means.PopulationVariance(); err != nil {
		return s, err
	}

	return s, nil
}
