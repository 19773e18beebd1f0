package spikedetect

// findPeaks returns the indices of local maxima of direction*signal
// whose height lies within [minHeight, maxHeight]. A plateau counts as a
// single peak at its earliest sample: the candidate must exceed its left
// neighbor and be at least its right neighbor. maxHeight nil disables
// the upper bound. Channels are independent, so callers run this once
// per channel.
func findPeaks(signal []int16, direction int, minHeight float64, maxHeight *float64) []int {
	var peaks []int
	d := float64(direction)
	for i := 1; i < len(signal)-1; i++ {
		v := d * float64(signal[i])
		if v <= d*float64(signal[i-1]) || v < d*float64(signal[i+1]) {
			continue
		}
		if v < minHeight {
			continue
		}
		if maxHeight != nil && v > *maxHeight {
			continue
		}
		peaks = append(peaks, i)
	}
	return peaks
}
