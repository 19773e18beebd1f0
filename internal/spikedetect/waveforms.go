package spikedetect

import (
	"math"

	"nsx-spike/internal/nsx"
)

// FindWaveforms runs the full detection pipeline on a recording and
// returns one SpikeData per channel, in the recording's channel order.
// Each channel is thresholded against its own noise estimate. Candidate
// peaks too close to either end of the recording, and peaks whose
// waveform never returns past the return threshold, are culled.
func FindWaveforms(rec *nsx.Recording, cfg Config) []*SpikeData {
	sds := EstimateSD(rec.Data)

	w0 := int(math.Round(cfg.WaveformWindow[0] * rec.SampleRate / 1000.0))
	w1 := int(math.Round(cfg.WaveformWindow[1] * rec.SampleRate / 1000.0))
	samplesPerWaveform := -w0 + w1 + 1

	waveformTimestamps := make([]float64, samplesPerWaveform)
	for i := range waveformTimestamps {
		waveformTimestamps[i] = float64(w0+i) / rec.SampleRate
	}

	spikes := make([]*SpikeData, rec.NumChannels())
	for chn := range spikes {
		chnCfg := cfg.WithSD(sds[chn])
		column := rec.Data.Column(chn)

		minHeight := chnCfg.NSigmas * chnCfg.SD
		var maxHeight *float64
		if chnCfg.NSigmasReject != nil {
			maxHeight = Float(*chnCfg.NSigmasReject * chnCfg.SD)
		}
		peaks := findPeaks(column, chnCfg.Direction, minHeight, maxHeight)

		// Accepted waveforms are written into a buffer sized for every
		// candidate, then trimmed to the accepted row count.
		waveforms := nsx.NewSampleMatrix(len(peaks), samplesPerWaveform)
		sampleIndices := make([]int, len(peaks))
		accepted := 0
		for _, p := range peaks {
			start, end := p+w0, p+w1+1
			if start < 0 || end > len(column) {
				continue
			}
			waveform := column[start:end]
			if !returnsToBaseline(waveform, -w0, chnCfg) {
				continue
			}
			copy(waveforms.Row(accepted), waveform)
			sampleIndices[accepted] = p
			accepted++
		}
		waveforms.TrimRows(accepted)
		sampleIndices = sampleIndices[:accepted]

		timestamps := make([]float64, accepted)
		for i, idx := range sampleIndices {
			timestamps[i] = float64(idx) / rec.SampleRate
		}

		spikes[chn] = &SpikeData{
			Channel:            rec.Channels[chn],
			Electrode:          rec.Electrodes[chn],
			SampleRate:         rec.SampleRate,
			SampleIndices:      sampleIndices,
			Waveforms:          waveforms,
			Timestamps:         timestamps,
			WaveformTimestamps: waveformTimestamps,
			DetectConfig:       chnCfg,
		}
	}
	return spikes
}

// returnsToBaseline reports whether the waveform crosses back past the
// return threshold at or after the peak sample. With no return threshold
// configured every waveform passes.
func returnsToBaseline(waveform []int16, peakIndex int, cfg Config) bool {
	if cfg.NSigmasReturn == nil {
		return true
	}
	limit := *cfg.NSigmasReturn * cfg.SD
	d := float64(cfg.Direction)
	for _, v := range waveform[peakIndex:] {
		if d*float64(v) <= limit {
			return true
		}
	}
	return false
}
