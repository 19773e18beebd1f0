// Package spikedetect - export of detection results for downstream tools.
package spikedetect

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"nsx-spike/internal/nsx"
)

// Result bundles the per-channel spike data of one detection run with
// the source recording's identity, for reporting and export.
type Result struct {
	File        string       `json:"file"`
	SampleRate  float64      `json:"sample_rate_hz"`
	TimeOrigin  time.Time    `json:"time_origin"`
	PacketIndex int          `json:"packet_index"`
	NumSamples  int          `json:"n_samples"`
	DetectTime  time.Time    `json:"detect_time"`
	Channels    []*SpikeData `json:"-"`
}

// NewResult pairs a detection run with its source recording.
func NewResult(rec *nsx.Recording, channels []*SpikeData) *Result {
	return &Result{
		File:        rec.File,
		SampleRate:  rec.SampleRate,
		TimeOrigin:  rec.TimeOrigin,
		PacketIndex: rec.PacketIndex,
		NumSamples:  rec.NumSamples(),
		DetectTime:  time.Now(),
		Channels:    channels,
	}
}

// channelSummary is the per-channel JSON export record. Waveform sample
// values are left out; downstream feature extraction reads them from the
// in-memory SpikeData.
type channelSummary struct {
	Channel      int       `json:"channel"`
	Electrode    int       `json:"electrode"`
	NoiseSD      float64   `json:"noise_sd"`
	Threshold    float64   `json:"threshold"`
	NumWaveforms int       `json:"n_waveforms"`
	SpikeRate    float64   `json:"spike_rate_hz"`
	Timestamps   []float64 `json:"timestamps_s"`
}

// ExportJSON writes a per-channel summary of the detection run.
func (r *Result) ExportJSON(filename string) error {
	summaries := make([]channelSummary, len(r.Channels))
	duration := float64(r.NumSamples) / r.SampleRate
	for i, sd := range r.Channels {
		summaries[i] = channelSummary{
			Channel:      sd.Channel,
			Electrode:    sd.Electrode,
			NoiseSD:      sd.DetectConfig.SD,
			Threshold:    sd.DetectConfig.Threshold,
			NumWaveforms: sd.NumWaveforms(),
			SpikeRate:    float64(sd.NumWaveforms()) / duration,
			Timestamps:   sd.Timestamps,
		}
	}

	out := struct {
		*Result
		ChannelSummaries []channelSummary `json:"channels"`
	}{r, summaries}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(out); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	return nil
}

// ExportCSV writes one row per accepted spike, preceded by a metadata
// block describing the run.
func (r *Result) ExportCSV(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write([]string{"# NSx Spike Detection"})
	writer.Write([]string{"# File", r.File})
	writer.Write([]string{"# Detect Time", r.DetectTime.Format("2006-01-02 15:04:05")})
	writer.Write([]string{"# Sample Rate Hz", fmt.Sprintf("%.1f", r.SampleRate)})
	writer.Write([]string{"# Time Origin", r.TimeOrigin.Format(time.RFC3339Nano)})
	writer.Write([]string{""})

	writer.Write([]string{"Channel", "Electrode", "Sample_Index", "Timestamp_s"})
	for _, sd := range r.Channels {
		for i, idx := range sd.SampleIndices {
			writer.Write([]string{
				fmt.Sprintf("%d", sd.Channel),
				fmt.Sprintf("%d", sd.Electrode),
				fmt.Sprintf("%d", idx),
				fmt.Sprintf("%.6f", sd.Timestamps[i]),
			})
		}
	}

	return writer.Error()
}
