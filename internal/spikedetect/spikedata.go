package spikedetect

import "nsx-spike/internal/nsx"

// SpikeData holds the accepted spike waveforms of a single channel.
// Immutable once returned by FindWaveforms.
type SpikeData struct {
	Channel    int     // 0-based in-file channel index
	Electrode  int     // electrode ID of that channel
	SampleRate float64 // Hz

	// SampleIndices are the strictly ascending sample positions of the
	// accepted peaks within the recording.
	SampleIndices []int
	// Waveforms has one row per accepted spike, each row holding the
	// fixed-length window around the peak.
	Waveforms *nsx.SampleMatrix
	// Timestamps are SampleIndices converted to seconds.
	Timestamps []float64
	// WaveformTimestamps is the relative time axis of a waveform row in
	// seconds, shared by every waveform of the channel.
	WaveformTimestamps []float64

	// DetectConfig records the parameters used, including the channel's
	// noise estimate and derived thresholds.
	DetectConfig Config
}

// NumWaveforms returns the number of accepted spikes.
func (s *SpikeData) NumWaveforms() int { return s.Waveforms.Rows }

// SamplesPerWaveform returns the fixed waveform length.
func (s *SpikeData) SamplesPerWaveform() int { return s.Waveforms.Cols }
