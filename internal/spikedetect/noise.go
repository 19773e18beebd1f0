package spikedetect

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"nsx-spike/internal/nsx"
)

// madScale makes the median absolute deviation a consistent estimator of
// the standard deviation of normally distributed noise.
const madScale = 0.6745

// EstimateSD estimates the noise standard deviation of every channel as
// median(|x - median(x)|) / 0.6745. Spike waveforms are outliers that
// would inflate a plain standard deviation and raise the detection
// thresholds, so the median absolute deviation is used instead.
func EstimateSD(data *nsx.SampleMatrix) []float64 {
	sds := make([]float64, data.Cols)
	column := make([]float64, data.Rows)
	deviations := make([]float64, data.Rows)

	for c := 0; c < data.Cols; c++ {
		for r := 0; r < data.Rows; r++ {
			column[r] = float64(data.At(r, c))
		}
		sort.Float64s(column)
		center := stat.Quantile(0.5, stat.Empirical, column, nil)

		for i, v := range column {
			deviations[i] = math.Abs(v - center)
		}
		sort.Float64s(deviations)
		sds[c] = stat.Quantile(0.5, stat.Empirical, deviations, nil) / madScale
	}
	return sds
}
