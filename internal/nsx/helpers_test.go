package nsx

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

// testTimeOrigin has millisecond precision, matching what the header's
// SYSTEMTIME field can represent.
var testTimeOrigin = time.Date(2024, 5, 17, 13, 45, 30, 250e6, time.UTC)

func testChannelsInfo(n int) []ChannelInfo {
	chans := make([]ChannelInfo, n)
	for i := range chans {
		chans[i] = ChannelInfo{
			Type:             "CC",
			ElectrodeID:      i + 1,
			Label:            fmt.Sprintf("chan%d", i+1),
			Bank:             i/32 + 1,
			Pin:              i%32 + 1,
			MinDigitalValue:  -8192,
			MaxDigitalValue:  8192,
			MinAnalogValue:   -2048,
			MaxAnalogValue:   2048,
			ConversionFactor: 0.25,
			AnalogUnits:      "uV",
			HighFreqCutoff:   7500,
			HighFreqOrder:    3,
			HighFilterType:   "Butterworth",
			LowFreqCutoff:    250,
			LowFreqOrder:     1,
			LowFilterType:    "Butterworth",
		}
	}
	return chans
}

// rampMatrix fills a matrix with a deterministic per-cell pattern so
// tests can tell columns, rows, and packets apart.
func rampMatrix(rows, cols, base int) *SampleMatrix {
	m := NewSampleMatrix(rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			m.Set(r, c, int16((base+r*7+c*131)%1024-512))
		}
	}
	return m
}

func writeTestFile(t *testing.T, fileTypeID string, sampleRate uint32, nChannels int, packets []WritePacket) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.ns6")
	opts := WriteOptions{
		FileTypeID:   fileTypeID,
		Label:        "30 kS/s",
		Comment:      "simulated recording",
		SampleRate:   sampleRate,
		TimeOrigin:   testTimeOrigin,
		ChannelsInfo: testChannelsInfo(nChannels),
	}
	if err := WriteFile(path, opts, packets); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}
