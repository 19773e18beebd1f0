// Package spikedetect turns a continuous multichannel recording into
// per-channel candidate spike waveforms: a robust noise estimate scales
// the detection thresholds, threshold-crossing peaks are located, and a
// fixed window around each peak is extracted and validated.
package spikedetect

// Config holds the spike detection parameters together with the derived
// per-channel thresholds once a noise estimate is known.
type Config struct {
	// Direction selects peak polarity: -1 finds negative peaks,
	// +1 finds positive peaks.
	Direction int
	// NSigmas is the detection threshold as a multiple of the noise SD.
	NSigmas float64
	// NSigmasReturn, when set, requires the waveform to return past this
	// threshold at or after the peak, rejecting sustained artifacts.
	NSigmasReturn *float64
	// NSigmasReject, when set, excludes peaks beyond this threshold,
	// rejecting gross artifacts.
	NSigmasReject *float64
	// WaveformWindow is the extraction window around the peak in
	// milliseconds, e.g. {-0.5, 0.5}.
	WaveformWindow [2]float64

	// SD is the per-channel noise estimate; the three thresholds below
	// derive from it and carry the direction sign. A nil input
	// propagates to a nil threshold, disabling the feature.
	SD              float64
	Threshold       float64
	ThresholdReturn *float64
	ThresholdReject *float64
}

// DefaultConfig returns the spike detection defaults: negative peaks at
// 3 sigmas, a 1.5-sigma return requirement, a 40-sigma artifact cutoff,
// and a one-millisecond window centered on the peak.
func DefaultConfig() Config {
	return Config{
		Direction:      -1,
		NSigmas:        3.0,
		NSigmasReturn:  Float(1.5),
		NSigmasReject:  Float(40.0),
		WaveformWindow: [2]float64{-0.5, 0.5},
	}
}

// WithSD returns a copy of the config with the noise estimate applied
// and the signed thresholds derived from it. Direction is normalized to
// +1 or -1.
func (c Config) WithSD(sd float64) Config {
	if c.Direction > 0 {
		c.Direction = 1
	} else {
		c.Direction = -1
	}
	c.SD = sd
	c.Threshold = sd * c.NSigmas * float64(c.Direction)
	c.ThresholdReturn = nil
	c.ThresholdReject = nil
	if c.NSigmasReturn != nil {
		c.ThresholdReturn = Float(sd * *c.NSigmasReturn * float64(c.Direction))
	}
	if c.NSigmasReject != nil {
		c.ThresholdReject = Float(sd * *c.NSigmasReject * float64(c.Direction))
	}
	return c
}

// Float returns a pointer to v, for the optional sigma multipliers.
func Float(v float64) *float64 {
	return &v
}
