// Package config provides configuration structures and defaults for the
// NSx spike extraction tools.
package config

import (
	"nsx-spike/internal/nsx"
	"nsx-spike/internal/spikedetect"
)

// Config represents the complete application configuration.
type Config struct {
	Input   InputConfig   `yaml:"input" mapstructure:"input"`     // recording selection
	Detect  DetectConfig  `yaml:"detect" mapstructure:"detect"`   // spike detection parameters
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`   // result export
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"` // diagnostics
}

// InputConfig selects what is read from the NSx file.
type InputConfig struct {
	File       string `yaml:"file" mapstructure:"file"`               // path to the .nsX file
	Electrodes []int  `yaml:"electrodes" mapstructure:"electrodes"`   // electrode IDs to read (priority over channels)
	Channels   []int  `yaml:"channels" mapstructure:"channels"`       // 0-based channel indices to read
	MaxSamples uint64 `yaml:"max_samples" mapstructure:"max_samples"` // 0 reads everything
	PacketMode string `yaml:"packet_mode" mapstructure:"packet_mode"` // "first", "last", or "all"
}

// DetectConfig contains the spike detection parameters. The return and
// reject multipliers are disabled when set to zero or below.
type DetectConfig struct {
	Direction     int     `yaml:"direction" mapstructure:"direction"`             // -1 negative peaks, +1 positive
	NSigmas       float64 `yaml:"n_sigmas" mapstructure:"n_sigmas"`               // detection threshold multiplier
	NSigmasReturn float64 `yaml:"n_sigmas_return" mapstructure:"n_sigmas_return"` // return-to-baseline multiplier, <=0 disables
	NSigmasReject float64 `yaml:"n_sigmas_reject" mapstructure:"n_sigmas_reject"` // artifact rejection multiplier, <=0 disables
	WindowStartMs float64 `yaml:"window_start_ms" mapstructure:"window_start_ms"` // waveform window start relative to peak
	WindowEndMs   float64 `yaml:"window_end_ms" mapstructure:"window_end_ms"`     // waveform window end relative to peak
}

// OutputConfig controls result export.
type OutputConfig struct {
	JSON string `yaml:"json" mapstructure:"json"` // JSON summary path, empty disables
	CSV  string `yaml:"csv" mapstructure:"csv"`   // CSV spike table path, empty disables
}

// LoggingConfig contains logging configuration parameters.
type LoggingConfig struct {
	Level string `yaml:"level" mapstructure:"level"` // log level (debug, info, warn, error)
}

// DefaultConfig returns a configuration with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			MaxSamples: 0,                  // read whole packet
			PacketMode: nsx.PacketModeLast, // matches single-stream pause/resume recordings
		},
		Detect: DetectConfig{
			Direction:     -1,   // extracellular spikes are negative-going
			NSigmas:       3.0,  // detection threshold
			NSigmasReturn: 1.5,  // waveform must come back toward baseline
			NSigmasReject: 40.0, // gross artifact cutoff
			WindowStartMs: -0.5, // half a millisecond before the peak
			WindowEndMs:   0.5,  // half a millisecond after
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DetectorConfig converts the flat detection settings into the
// detector's config, translating the <=0 sentinels into disabled
// options.
func (d DetectConfig) DetectorConfig() spikedetect.Config {
	return spikedetect.Config{
		Direction:      d.Direction,
		NSigmas:        d.NSigmas,
		NSigmasReturn:  optional(d.NSigmasReturn),
		NSigmasReject:  optional(d.NSigmasReject),
		WaveformWindow: [2]float64{d.WindowStartMs, d.WindowEndMs},
	}
}

func optional(v float64) *float64 {
	if v <= 0 {
		return nil
	}
	return &v
}
