package spikedetect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindPeaksNegative(t *testing.T) {
	signal := []int16{0, -10, 0, -5, -6, -5, 0, -20, -20, 0}

	peaks := findPeaks(signal, -1, 4, nil)
	assert.Equal(t, []int{1, 4, 7}, peaks, "the plateau at 7-8 counts once, at its first sample")

	peaks = findPeaks(signal, -1, 8, nil)
	assert.Equal(t, []int{1, 7}, peaks)

	peaks = findPeaks(signal, -1, 4, Float(15))
	assert.Equal(t, []int{1, 4}, peaks, "the 20-count plateau exceeds the upper bound")

	peaks = findPeaks(signal, -1, 8, Float(15))
	assert.Equal(t, []int{1}, peaks)
}

func TestFindPeaksPositive(t *testing.T) {
	signal := []int16{0, 10, 0, 0, 30, 0}
	assert.Equal(t, []int{1, 4}, findPeaks(signal, 1, 5, nil))
	assert.Empty(t, findPeaks(signal, -1, 5, nil))
}

func TestFindPeaksEndpointsExcluded(t *testing.T) {
	// The first and last samples have only one neighbor and never count.
	signal := []int16{30, 0, 0, 40}
	assert.Empty(t, findPeaks(signal, 1, 5, nil))
	assert.Empty(t, findPeaks([]int16{10, 20}, 1, 1, nil))
	assert.Empty(t, findPeaks(nil, 1, 1, nil))
}
