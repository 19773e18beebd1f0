package spikedetect

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nsx-spike/internal/nsx"
)

func exportResult() *Result {
	waveforms := nsx.NewSampleMatrix(2, 5)
	return &Result{
		File:        "rec001.ns6",
		SampleRate:  30000,
		TimeOrigin:  time.Date(2024, 5, 17, 13, 45, 30, 0, time.UTC),
		PacketIndex: 0,
		NumSamples:  60000,
		DetectTime:  time.Date(2024, 5, 18, 9, 0, 0, 0, time.UTC),
		Channels: []*SpikeData{
			{
				Channel:       0,
				Electrode:     1,
				SampleRate:    30000,
				SampleIndices: []int{1500, 45000},
				Waveforms:     waveforms,
				Timestamps:    []float64{0.05, 1.5},
				DetectConfig:  DefaultConfig().WithSD(2.0),
			},
			{
				Channel:       3,
				Electrode:     4,
				SampleRate:    30000,
				SampleIndices: []int{},
				Waveforms:     nsx.NewSampleMatrix(0, 5),
				Timestamps:    []float64{},
				DetectConfig:  DefaultConfig().WithSD(1.0),
			},
		},
	}
}

func TestExportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spikes.json")
	require.NoError(t, exportResult().ExportJSON(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var out struct {
		File       string  `json:"file"`
		SampleRate float64 `json:"sample_rate_hz"`
		NumSamples int     `json:"n_samples"`
		Channels   []struct {
			Channel      int       `json:"channel"`
			Electrode    int       `json:"electrode"`
			NoiseSD      float64   `json:"noise_sd"`
			NumWaveforms int       `json:"n_waveforms"`
			SpikeRate    float64   `json:"spike_rate_hz"`
			Timestamps   []float64 `json:"timestamps_s"`
		} `json:"channels"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))

	assert.Equal(t, "rec001.ns6", out.File)
	assert.Equal(t, 30000.0, out.SampleRate)
	assert.Equal(t, 60000, out.NumSamples)
	require.Len(t, out.Channels, 2)
	assert.Equal(t, 2, out.Channels[0].NumWaveforms)
	assert.Equal(t, 2.0, out.Channels[0].NoiseSD)
	assert.Equal(t, 1.0, out.Channels[0].SpikeRate, "2 spikes over 2 seconds")
	assert.Equal(t, []float64{0.05, 1.5}, out.Channels[0].Timestamps)
	assert.Equal(t, 4, out.Channels[1].Electrode)
	assert.Zero(t, out.Channels[1].NumWaveforms)
}

func TestExportCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spikes.csv")
	require.NoError(t, exportResult().ExportCSV(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // metadata rows have fewer fields
	rows, err := reader.ReadAll()
	require.NoError(t, err)

	var header int
	for i, row := range rows {
		if row[0] == "Channel" {
			header = i
			break
		}
	}
	require.Equal(t, []string{"Channel", "Electrode", "Sample_Index", "Timestamp_s"}, rows[header])

	spikes := rows[header+1:]
	require.Len(t, spikes, 2, "one row per accepted spike")
	assert.Equal(t, []string{"0", "1", "1500", "0.050000"}, spikes[0])
	assert.Equal(t, []string{"0", "1", "45000", "1.500000"}, spikes[1])
}
