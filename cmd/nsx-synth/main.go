// NSx Synth - generate simulated Blackrock NSx recordings
// This program writes an NSx file filled with simulated spike trains and
// noise, for exercising the reader and detection pipeline without
// acquisition hardware.
package main

import (
	"fmt"
	"os"
	"time"

	"nsx-spike/internal/nsx"
	"nsx-spike/internal/synth"
	"nsx-spike/internal/version"

	"github.com/spf13/cobra"
)

var (
	numChannels  int
	numSamples   int
	sampleRate   float64
	minSpikeRate float64
	maxSpikeRate float64
	noiseSD      float64
	seed         int64
	numPackets   int
	fileType     string
	showVersion  bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "nsx-synth [output.nsx]",
	Short: "Generate a simulated NSx recording",
	Long: `NSx Synth writes an NSx continuous recording filled with simulated
spike trains plus noise. Each channel fires at its own random rate with
its own action-potential shape, so the output is suitable for testing
spike detection end to end.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if showVersion {
			fmt.Println(version.GetVersionInfo("NSx Synth"))
			return
		}
		if len(args) == 0 {
			fmt.Fprintf(os.Stderr, "Error: output filename required\n")
			cmd.Usage()
			os.Exit(1)
		}
		if err := runSynth(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	defaults := synth.DefaultParams()
	rootCmd.Flags().IntVar(&numChannels, "channels", defaults.NumChannels, "number of channels")
	rootCmd.Flags().IntVar(&numSamples, "samples", defaults.NumSamples, "samples per packet")
	rootCmd.Flags().Float64Var(&sampleRate, "rate", defaults.SampleRate, "sample rate in Hz")
	rootCmd.Flags().Float64Var(&minSpikeRate, "min-spike-rate", defaults.MinSpikeRate, "lowest per-channel firing rate (Hz)")
	rootCmd.Flags().Float64Var(&maxSpikeRate, "max-spike-rate", defaults.MaxSpikeRate, "highest per-channel firing rate (Hz)")
	rootCmd.Flags().Float64Var(&noiseSD, "noise-sd", defaults.NoiseSD, "white noise standard deviation (uV)")
	rootCmd.Flags().Int64Var(&seed, "seed", defaults.Seed, "random seed")
	rootCmd.Flags().IntVar(&numPackets, "packets", 1, "number of data packets to write")
	rootCmd.Flags().StringVar(&fileType, "file-type", nsx.FileTypeNEURALCD, "file type tag (NEURALCD or BRSMPGRP)")
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "show version information")
}

// runSynth generates the recording and writes the NSx file
func runSynth(filename string) error {
	params := synth.Params{
		NumChannels:  numChannels,
		NumSamples:   numSamples,
		SampleRate:   sampleRate,
		MinSpikeRate: minSpikeRate,
		MaxSpikeRate: maxSpikeRate,
		NoiseSD:      noiseSD,
		Seed:         seed,
	}

	fmt.Printf("Generating %d packet(s) of %d samples x %d channels @ %.0f Hz...\n",
		numPackets, params.NumSamples, params.NumChannels, params.SampleRate)

	var packets []nsx.WritePacket
	var channelsInfo []nsx.ChannelInfo
	for i := 0; i < numPackets; i++ {
		params.Seed = seed + int64(i)
		data, info, err := synth.Generate(params)
		if err != nil {
			return fmt.Errorf("failed to generate data: %w", err)
		}
		channelsInfo = info
		packets = append(packets, nsx.WritePacket{
			// Later packets carry no explicit offset, matching a
			// recording that was paused and resumed.
			SampleOffset: 0,
			Data:         data,
		})
	}

	opts := nsx.WriteOptions{
		FileTypeID:   fileType,
		Label:        fmt.Sprintf("%.0f kS/s", sampleRate/1000),
		Comment:      "simulated recording",
		SampleRate:   uint32(sampleRate),
		TimeOrigin:   time.Now().UTC(),
		ChannelsInfo: channelsInfo,
	}
	if err := nsx.WriteFile(filename, opts, packets); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	fileInfo, err := os.Stat(filename)
	if err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%.2f MB)\n", filename, float64(fileInfo.Size())/(1024*1024))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
