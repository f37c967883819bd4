package balance

import (
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Stats summarizes partition costs.
type Stats struct {
	Mean   float64 `json:"mean"`
	Max    int64   `json:"max"`
	StdDev float64 `json:"stddev"`
	// CV is the coefficient of variation, StdDev/Mean. Zero when Mean is zero.
	CV float64 `json:"cv"`
}

// Summarize computes population statistics over costs.
func Summarize(costs []int64) Stats {
	if len(costs) == 0 {
		return Stats{}
	}
	xs := make([]float64, len(costs))
	for i, c := range costs {
		xs[i] = float64(c)
	}
	mean, std := stat.PopMeanStdDev(xs, nil)
	s := Stats{Mean: mean, Max: slices.Max(costs), StdDev: std}
	if mean != 0 {
		s.CV = std / mean
	}
	return s
}
