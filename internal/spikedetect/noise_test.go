package spikedetect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nsx-spike/internal/nsx"
)

func TestEstimateSD(t *testing.T) {
	// Odd-length columns so the median is the exact middle element.
	ch0 := []int16{0, 1, -1, 2, -2, 0, 0, 40, -40}  // median 0, MAD 1
	ch1 := []int16{5, 5, 5, 5, 5, 5, 5, 5, 50}      // median 5, MAD 0
	ch2 := []int16{10, 10, 10, 10, 10, 10, 10, 10, 10}

	data := nsx.NewSampleMatrix(len(ch0), 3)
	for r := range ch0 {
		data.Set(r, 0, ch0[r])
		data.Set(r, 1, ch1[r])
		data.Set(r, 2, ch2[r])
	}

	sds := EstimateSD(data)
	require.Len(t, sds, 3)
	assert.InDelta(t, 1/0.6745, sds[0], 1e-12)
	assert.Zero(t, sds[1])
	assert.Zero(t, sds[2])
}

func TestEstimateSDIgnoresOutliers(t *testing.T) {
	// A plain standard deviation would grow with the outlier; the MAD
	// estimate must not.
	base := make([]int16, 101)
	for i := range base {
		base[i] = int16(i%3 - 1) // -1, 0, 1 noise
	}
	spiked := make([]int16, len(base))
	copy(spiked, base)
	spiked[50] = -3000

	data := nsx.NewSampleMatrix(len(base), 2)
	for r := range base {
		data.Set(r, 0, base[r])
		data.Set(r, 1, spiked[r])
	}

	sds := EstimateSD(data)
	assert.InDelta(t, sds[0], sds[1], 1e-12)
}
