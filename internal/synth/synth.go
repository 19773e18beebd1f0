// Package synth generates simulated multichannel recordings with known
// spike content, for demos and for exercising the reader and detection
// pipeline without access to acquisition hardware.
package synth

import (
	"fmt"
	"math"
	"math/rand"

	"nsx-spike/internal/nsx"
)

// Params controls the simulated recording.
type Params struct {
	NumChannels  int
	NumSamples   int
	SampleRate   float64
	MinSpikeRate float64 // Hz, per-channel firing rate lower bound
	MaxSpikeRate float64 // Hz, upper bound
	NoiseSD      float64 // white noise standard deviation in analog units
	Seed         int64
}

// DefaultParams returns a 32-channel, 10-second recording at 30 kS/s.
func DefaultParams() Params {
	return Params{
		NumChannels:  32,
		NumSamples:   300000,
		SampleRate:   30000,
		MinSpikeRate: 10.0,
		MaxSpikeRate: 60.0,
		NoiseSD:      100.0,
		Seed:         1,
	}
}

// conversionFactor maps the simulated analog microvolts to int16 counts.
const conversionFactor = 0.25

// Generate simulates a recording: each channel fires at its own random
// rate, every spike adds a stereotyped action-potential template, and
// white noise is layered on top before int16 conversion. The same seed
// reproduces the same recording.
func Generate(p Params) (*nsx.SampleMatrix, []nsx.ChannelInfo, error) {
	if p.NumChannels <= 0 || p.NumSamples <= 0 {
		return nil, nil, fmt.Errorf("invalid dimensions %dx%d", p.NumSamples, p.NumChannels)
	}
	rng := rand.New(rand.NewSource(p.Seed))

	analog := make([]float64, p.NumSamples*p.NumChannels)
	for c := 0; c < p.NumChannels; c++ {
		firingRate := p.MinSpikeRate + (p.MaxSpikeRate-p.MinSpikeRate)*rng.Float64()
		template := spikeTemplate(p.SampleRate,
			rng.NormFloat64()*50-300, // depolarization trough, µV
			rng.NormFloat64()*50+100, // hyperpolarization overshoot, µV
		)

		// Spike probability per sample is rate * dt.
		spikeProb := firingRate / p.SampleRate
		for s := 0; s < p.NumSamples; s++ {
			if rng.Float64() < spikeProb {
				for i, v := range template {
					if s+i >= p.NumSamples {
						break
					}
					analog[(s+i)*p.NumChannels+c] += v
				}
			}
		}

		for s := 0; s < p.NumSamples; s++ {
			analog[s*p.NumChannels+c] += p.NoiseSD * rng.NormFloat64()
		}
	}

	data := nsx.NewSampleMatrix(p.NumSamples, p.NumChannels)
	for i, v := range analog {
		data.Values[i] = clampInt16(math.Round(v / conversionFactor))
	}

	channelsInfo := make([]nsx.ChannelInfo, p.NumChannels)
	for c := range channelsInfo {
		channelsInfo[c] = nsx.ChannelInfo{
			Type:             "CC",
			ElectrodeID:      c + 1,
			Label:            fmt.Sprintf("chan%d", c+1),
			Bank:             c/32 + 1,
			Pin:              c%32 + 1,
			MinDigitalValue:  -8192,
			MaxDigitalValue:  8192,
			MinAnalogValue:   -2048,
			MaxAnalogValue:   2048,
			ConversionFactor: conversionFactor,
			AnalogUnits:      "uV",
			HighFreqCutoff:   7500,
			HighFreqOrder:    3,
			HighFilterType:   "Butterworth",
			LowFreqCutoff:    0.3,
			LowFreqOrder:     1,
			LowFilterType:    "Butterworth",
		}
	}

	return data, channelsInfo, nil
}

// spikeTemplate samples a stereotyped extracellular action potential at
// the recording rate: a sharp depolarization trough followed by a slower
// hyperpolarization overshoot decaying back to baseline. Segments are
// half-cosine ramps, which keeps the waveform smooth without pulling in
// a spline dependency.
func spikeTemplate(sampleRate, trough, overshoot float64) []float64 {
	type segment struct {
		duration float64 // seconds
		from, to float64 // µV
	}
	segments := []segment{
		{0.0002, 0, trough},
		{0.0003, trough, overshoot},
		{0.0005, overshoot, 0},
	}

	var template []float64
	for _, seg := range segments {
		n := int(math.Round(seg.duration * sampleRate))
		for i := 0; i < n; i++ {
			phase := (1 - math.Cos(math.Pi*float64(i)/float64(n))) / 2
			template = append(template, seg.from+(seg.to-seg.from)*phase)
		}
	}
	return template
}

func clampInt16(v float64) int16 {
	switch {
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < math.MinInt16:
		return math.MinInt16
	default:
		return int16(v)
	}
}
