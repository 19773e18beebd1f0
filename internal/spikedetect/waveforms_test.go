package spikedetect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nsx-spike/internal/nsx"
)

// detectionRecording builds a three-channel recording with known spike
// content on a deterministic noise floor:
//
//	channel 0: two clean spikes, plus one too close to each edge
//	channel 1: one clean spike and a sustained artifact that never
//	           returns to baseline
//	channel 2: one clean spike and a gross artifact far above the
//	           rejection threshold
func detectionRecording(t *testing.T) *nsx.Recording {
	t.Helper()
	const rows, cols = 1001, 3

	data := nsx.NewSampleMatrix(rows, cols)
	noise := []int16{3, -3, 1, -1}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			data.Set(r, c, noise[r%4])
		}
	}

	spike := []int16{-8, -20, -40, -15, -5} // trough at the center
	writeSpike := func(c, center int, shape []int16) {
		for i, v := range shape {
			data.Set(center-2+i, c, v)
		}
	}

	writeSpike(0, 300, spike)
	writeSpike(0, 600, spike)
	writeSpike(0, 3, spike)   // window starts before the recording
	writeSpike(0, 998, spike) // window ends after the recording

	writeSpike(1, 200, spike)
	for r := 500; r < 521; r++ { // sustained artifact
		data.Set(r, 1, -30)
	}

	writeSpike(2, 400, spike)
	writeSpike(2, 700, []int16{-30, -120, -20}) // gross artifact

	return &nsx.Recording{
		File:       "synthetic",
		Data:       data,
		SampleRate: 10000,
		Channels:   []int{0, 1, 2},
		Electrodes: []int{1, 2, 3},
	}
}

// detectionConfig rejects above 20 sigmas so the gross artifact in the
// test recording falls outside the accepted band with a wide margin.
func detectionConfig() Config {
	cfg := DefaultConfig()
	cfg.NSigmasReject = Float(20)
	return cfg
}

// requireThresholdMargins pins the noise estimate of the test recording
// so every amplitude in it sits on the intended side of the thresholds.
func requireThresholdMargins(t *testing.T, rec *nsx.Recording) {
	t.Helper()
	for c, sd := range EstimateSD(rec.Data) {
		require.InDelta(t, 2.9652, sd, 0.3, "channel %d noise estimate drifted", c)
		require.Greater(t, 3*sd, 3.0, "noise must stay below the detection threshold")
		require.Less(t, 3*sd, 30.0, "spikes and artifacts must cross the detection threshold")
		require.Greater(t, 1.5*sd, 3.0, "noise must count as returned to baseline")
		require.Less(t, 1.5*sd, 30.0, "the sustained artifact must not count as returned")
		require.Greater(t, 20*sd, 40.0, "clean spikes must survive rejection")
		require.Less(t, 20*sd, 120.0, "the gross artifact must be rejected")
	}
}

func TestFindWaveforms(t *testing.T) {
	rec := detectionRecording(t)
	requireThresholdMargins(t, rec)

	spikes := FindWaveforms(rec, detectionConfig())
	require.Len(t, spikes, 3)

	ch0 := spikes[0]
	assert.Equal(t, 0, ch0.Channel)
	assert.Equal(t, 1, ch0.Electrode)
	assert.Equal(t, []int{300, 600}, ch0.SampleIndices, "edge spikes must be culled")
	assert.Equal(t, 2, ch0.NumWaveforms())
	assert.Equal(t, 11, ch0.SamplesPerWaveform(), "1 ms window at 10 kS/s")
	assert.Equal(t, []float64{0.03, 0.06}, ch0.Timestamps)

	// Waveforms are verbatim slices of the recording around each peak.
	column := rec.Data.Column(0)
	assert.Equal(t, column[295:306], ch0.Waveforms.Row(0))
	assert.Equal(t, column[595:606], ch0.Waveforms.Row(1))

	require.Len(t, ch0.WaveformTimestamps, 11)
	assert.InDelta(t, -0.0005, ch0.WaveformTimestamps[0], 1e-12)
	assert.InDelta(t, 0.0005, ch0.WaveformTimestamps[10], 1e-12)

	assert.Equal(t, []int{200}, spikes[1].SampleIndices, "sustained artifact must be culled")
	assert.Equal(t, []int{400}, spikes[2].SampleIndices, "gross artifact must be rejected")

	for c, s := range spikes {
		assert.Equal(t, s.NumWaveforms(), len(s.Timestamps), "channel %d", c)
		assert.Equal(t, s.NumWaveforms(), len(s.SampleIndices), "channel %d", c)
		assert.Less(t, s.DetectConfig.Threshold, 0.0, "negative-going threshold on channel %d", c)
	}
}

func TestFindWaveformsWithoutReturnCheck(t *testing.T) {
	rec := detectionRecording(t)
	requireThresholdMargins(t, rec)

	cfg := detectionConfig()
	cfg.NSigmasReturn = nil
	spikes := FindWaveforms(rec, cfg)

	assert.Equal(t, []int{200, 500}, spikes[1].SampleIndices, "sustained artifact survives without the return check")
	assert.Equal(t, []int{300, 600}, spikes[0].SampleIndices)
}

func TestFindWaveformsWithoutRejection(t *testing.T) {
	rec := detectionRecording(t)
	requireThresholdMargins(t, rec)

	cfg := detectionConfig()
	cfg.NSigmasReject = nil
	spikes := FindWaveforms(rec, cfg)

	assert.Equal(t, []int{400, 700}, spikes[2].SampleIndices, "gross artifact survives without rejection")
}

func TestFindWaveformsPositiveDirection(t *testing.T) {
	rec := detectionRecording(t)
	for i, v := range rec.Data.Values {
		rec.Data.Values[i] = -v
	}
	requireThresholdMargins(t, rec)

	cfg := detectionConfig()
	cfg.Direction = 1
	spikes := FindWaveforms(rec, cfg)

	assert.Equal(t, []int{300, 600}, spikes[0].SampleIndices)
	assert.Greater(t, spikes[0].DetectConfig.Threshold, 0.0)
}
