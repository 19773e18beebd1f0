// NSx Spike - spike extraction tool for Blackrock NSx recordings
// This program reads multichannel continuous recordings and extracts
// per-channel candidate spike waveforms for sorting.
package main

import (
	"fmt"
	"os"

	"nsx-spike/internal/config"
	"nsx-spike/internal/nsx"
	"nsx-spike/internal/spikedetect"
	"nsx-spike/internal/version"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Command line flag variables
var (
	cfgFile       string    // Configuration file path
	electrodes    []int     // Electrode IDs to read
	channels      []int     // 0-based channel indices to read
	maxSamples    uint64    // Sample count cap
	packetMode    string    // Packet mode: first, last, or all
	direction     int       // Peak polarity
	nSigmas       float64   // Detection threshold multiplier
	nSigmasReturn float64   // Return-to-baseline multiplier (<=0 disables)
	nSigmasReject float64   // Artifact rejection multiplier (<=0 disables)
	window        []float64 // Waveform window in ms around the peak
	jsonOut       string    // JSON summary output path
	csvOut        string    // CSV spike table output path
	verbose       bool      // Enable verbose output
	showVersion   bool      // Show version information
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "nsx-spike [file.nsx]",
	Short: "Extract spike waveforms from Blackrock NSx recordings",
	Long: `NSx Spike reads a Blackrock NSx continuous recording, estimates the
noise level of every channel, and extracts threshold-crossing spike
waveforms for downstream feature extraction and sorting.`,
	Args: cobra.MaximumNArgs(1),
}

// init initializes the CLI flags and configuration
func init() {
	cobra.OnInitialize(initConfig)

	// Assigned here rather than in the rootCmd literal to avoid an
	// initialization cycle (runDetect refers back to rootCmd).
	rootCmd.Run = func(cmd *cobra.Command, args []string) {
		if showVersion {
			fmt.Println(version.GetVersionInfo("NSx Spike"))
			return
		}
		if err := runDetect(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./nsx-spike.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Recording selection
	rootCmd.Flags().IntSliceVarP(&electrodes, "electrodes", "e", nil, "electrode IDs to read (priority over --channels)")
	rootCmd.Flags().IntSliceVar(&channels, "channels", nil, "0-based channel indices to read")
	rootCmd.Flags().Uint64VarP(&maxSamples, "max-samples", "n", 0, "maximum samples to read (0 = whole packet)")
	rootCmd.Flags().StringVar(&packetMode, "packet-mode", nsx.PacketModeLast, "data packet to read: first, last, or all")

	// Detection parameters
	rootCmd.Flags().IntVarP(&direction, "direction", "d", -1, "peak polarity: -1 negative, +1 positive")
	rootCmd.Flags().Float64Var(&nSigmas, "sigmas", 3.0, "detection threshold in noise SDs")
	rootCmd.Flags().Float64Var(&nSigmasReturn, "sigmas-return", 1.5, "return-to-baseline threshold in noise SDs (<=0 disables)")
	rootCmd.Flags().Float64Var(&nSigmasReject, "sigmas-reject", 40.0, "artifact rejection threshold in noise SDs (<=0 disables)")
	rootCmd.Flags().Float64SliceVarP(&window, "window", "w", []float64{-0.5, 0.5}, "waveform window in ms around the peak")

	// Result export
	rootCmd.Flags().StringVar(&jsonOut, "json", "", "write per-channel JSON summary to this path")
	rootCmd.Flags().StringVar(&csvOut, "csv", "", "write per-spike CSV table to this path")

	rootCmd.Flags().BoolVar(&showVersion, "version", false, "show version information")

	// Bind command line flags to viper configuration keys
	viper.BindPFlag("input.electrodes", rootCmd.Flags().Lookup("electrodes"))
	viper.BindPFlag("input.channels", rootCmd.Flags().Lookup("channels"))
	viper.BindPFlag("input.max_samples", rootCmd.Flags().Lookup("max-samples"))
	viper.BindPFlag("input.packet_mode", rootCmd.Flags().Lookup("packet-mode"))
	viper.BindPFlag("detect.direction", rootCmd.Flags().Lookup("direction"))
	viper.BindPFlag("detect.n_sigmas", rootCmd.Flags().Lookup("sigmas"))
	viper.BindPFlag("detect.n_sigmas_return", rootCmd.Flags().Lookup("sigmas-return"))
	viper.BindPFlag("detect.n_sigmas_reject", rootCmd.Flags().Lookup("sigmas-reject"))
	viper.BindPFlag("output.json", rootCmd.Flags().Lookup("json"))
	viper.BindPFlag("output.csv", rootCmd.Flags().Lookup("csv"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("nsx-spike")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// runDetect is the main application logic
func runDetect(args []string) error {
	cfg := config.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if len(args) > 0 {
		cfg.Input.File = args[0]
	}
	if cfg.Input.File == "" {
		return fmt.Errorf("no recording specified: pass a file argument or set input.file in the config")
	}
	// The window flag is a slice and cannot be viper-bound to two scalar
	// keys, so it overrides the config directly when changed.
	if rootCmd.Flags().Changed("window") {
		if len(window) != 2 {
			return fmt.Errorf("invalid window %v: expected two values, start and end in ms", window)
		}
		cfg.Detect.WindowStartMs = window[0]
		cfg.Detect.WindowEndMs = window[1]
	}

	detectCfg := cfg.Detect.DetectorConfig()

	opts := nsx.ReadOptions{
		Electrodes: cfg.Input.Electrodes,
		Channels:   cfg.Input.Channels,
		MaxSamples: cfg.Input.MaxSamples,
		PacketMode: cfg.Input.PacketMode,
	}

	var recordings []*nsx.Recording
	if cfg.Input.PacketMode == nsx.PacketModeAll {
		var err error
		recordings, err = nsx.ReadAllPackets(cfg.Input.File, opts)
		if err != nil {
			return fmt.Errorf("failed to read recording: %w", err)
		}
	} else {
		rec, err := nsx.ReadRecording(cfg.Input.File, opts)
		if err != nil {
			return fmt.Errorf("failed to read recording: %w", err)
		}
		recordings = []*nsx.Recording{rec}
	}

	for _, rec := range recordings {
		fmt.Printf("Recording: %s (packet %d)\n", rec.File, rec.PacketIndex)
		fmt.Printf("Start: %s\n", rec.TimeOrigin.Format("2006-01-02 15:04:05.000 MST"))
		fmt.Printf("Samples: %d x %d channels @ %.0f Hz (%.2f s)\n",
			rec.NumSamples(), rec.NumChannels(), rec.SampleRate, rec.Duration().Seconds())

		spikes := spikedetect.FindWaveforms(rec, detectCfg)
		result := spikedetect.NewResult(rec, spikes)

		printSummary(rec, spikes)

		if cfg.Output.JSON != "" {
			if err := result.ExportJSON(cfg.Output.JSON); err != nil {
				return fmt.Errorf("JSON export failed: %w", err)
			}
			fmt.Printf("JSON summary written to: %s\n", cfg.Output.JSON)
		}
		if cfg.Output.CSV != "" {
			if err := result.ExportCSV(cfg.Output.CSV); err != nil {
				return fmt.Errorf("CSV export failed: %w", err)
			}
			fmt.Printf("CSV spike table written to: %s\n", cfg.Output.CSV)
		}
	}

	return nil
}

// printSummary prints the per-channel detection table
func printSummary(rec *nsx.Recording, spikes []*spikedetect.SpikeData) {
	duration := rec.Duration().Seconds()
	total := 0

	fmt.Printf("\n%-8s %-10s %-12s %-12s %-10s %-10s\n",
		"Channel", "Electrode", "Noise SD", "Threshold", "Spikes", "Rate (Hz)")
	for _, sd := range spikes {
		total += sd.NumWaveforms()
		fmt.Printf("%-8d %-10d %-12.2f %-12.2f %-10d %-10.2f\n",
			sd.Channel, sd.Electrode, sd.DetectConfig.SD, sd.DetectConfig.Threshold,
			sd.NumWaveforms(), float64(sd.NumWaveforms())/duration)
	}
	fmt.Printf("\nTotal: %d waveforms across %d channels\n", total, len(spikes))
}

// main is the entry point of the application
func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
