package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nsx-spike/internal/nsx"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, nsx.PacketModeLast, cfg.Input.PacketMode)
	assert.Zero(t, cfg.Input.MaxSamples)
	assert.Equal(t, -1, cfg.Detect.Direction)
	assert.Equal(t, 3.0, cfg.Detect.NSigmas)
	assert.Equal(t, 1.5, cfg.Detect.NSigmasReturn)
	assert.Equal(t, 40.0, cfg.Detect.NSigmasReject)
	assert.Equal(t, -0.5, cfg.Detect.WindowStartMs)
	assert.Equal(t, 0.5, cfg.Detect.WindowEndMs)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestDetectorConfig(t *testing.T) {
	det := DefaultConfig().Detect.DetectorConfig()

	assert.Equal(t, -1, det.Direction)
	assert.Equal(t, 3.0, det.NSigmas)
	require.NotNil(t, det.NSigmasReturn)
	assert.Equal(t, 1.5, *det.NSigmasReturn)
	require.NotNil(t, det.NSigmasReject)
	assert.Equal(t, 40.0, *det.NSigmasReject)
	assert.Equal(t, [2]float64{-0.5, 0.5}, det.WaveformWindow)
}

func TestDetectorConfigDisablesNonPositiveMultipliers(t *testing.T) {
	d := DefaultConfig().Detect
	d.NSigmasReturn = 0
	d.NSigmasReject = -1

	det := d.DetectorConfig()
	assert.Nil(t, det.NSigmasReturn)
	assert.Nil(t, det.NSigmasReject)
}
