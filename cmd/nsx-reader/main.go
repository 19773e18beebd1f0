// NSx Reader - Utility to display contents of Blackrock NSx recording files
// This program reads and displays the header, channel, and packet
// information from .nsX files without loading the whole recording.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"nsx-spike/internal/nsx"
	"nsx-spike/internal/spikedetect"
	"nsx-spike/internal/version"

	"github.com/spf13/cobra"
)

var (
	showChannels bool
	showPackets  bool
	showStats    bool
	statsSamples uint64
	outputFormat string
	showVersion  bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "nsx-reader [file.nsx]",
	Short: "Display contents of Blackrock NSx recording files",
	Long: `NSx Reader displays the header, channel, and data packet layout of
Blackrock NSx continuous recording files. Useful for verifying recording
parameters before running spike extraction.

Display modes:
  --channels   Show the extended header of every channel
  --packets    Show the data packet layout and timing
  --stats      Show per-channel signal statistics from the first samples`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if showVersion {
			fmt.Println(version.GetVersionInfo("NSx Reader"))
			return
		}
		if len(args) == 0 {
			fmt.Fprintf(os.Stderr, "Error: filename required\n")
			cmd.Usage()
			os.Exit(1)
		}
		if err := displayFile(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "show version information")
	rootCmd.Flags().BoolVarP(&showChannels, "channels", "c", false, "display the extended channel headers")
	rootCmd.Flags().BoolVarP(&showPackets, "packets", "p", false, "display the data packet layout")
	rootCmd.Flags().BoolVarP(&showStats, "stats", "s", false, "display per-channel signal statistics")
	rootCmd.Flags().Uint64Var(&statsSamples, "stats-samples", 30000, "number of samples used for statistics")
	rootCmd.Flags().StringVarP(&outputFormat, "format", "f", "table", "output format (table, json)")
}

// displayFile reads and displays the layout of an NSx file
func displayFile(filename string) error {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", filename)
	}

	hdr, packets, err := nsx.ScanPackets(filename)
	if err != nil {
		return fmt.Errorf("failed to scan file: %w", err)
	}

	if outputFormat == "json" {
		return displayJSON(filename, hdr, packets)
	}

	fmt.Printf("NSX FILE READER %s\n\n", version.GetFullVersion())

	fileInfo, err := os.Stat(filename)
	if err != nil {
		return err
	}
	fmt.Printf("File Information:\n")
	fmt.Printf("Name: %s\n", filepath.Base(filename))
	fmt.Printf("Size: %.2f MB (%d bytes)\n", float64(fileInfo.Size())/(1024*1024), fileInfo.Size())
	fmt.Printf("Modified: %s\n\n", fileInfo.ModTime().Format("2006-01-02 15:04:05"))

	displayHeader(hdr)

	if showChannels {
		displayChannels(hdr.ChannelsInfo)
	}
	if showPackets {
		displayPackets(hdr, packets)
	}
	if showStats {
		if err := displayStatistics(filename, hdr); err != nil {
			return fmt.Errorf("failed to compute statistics: %w", err)
		}
	}
	return nil
}

// displayHeader prints the fixed file header fields
func displayHeader(hdr *nsx.Header) {
	fmt.Printf("Recording Header:\n")
	fmt.Printf("File Type: %s\n", hdr.FileTypeID)
	fmt.Printf("Header Size: %d bytes\n", hdr.BytesInHeader)
	fmt.Printf("Sample Rate: %.0f Hz\n", hdr.SampleRate)
	fmt.Printf("Time Origin: %s\n", hdr.TimeOrigin.Format("2006-01-02 15:04:05.000 MST"))
	fmt.Printf("Channels: %d\n\n", hdr.ChannelCount)
}

// displayChannels prints the extended channel header table
func displayChannels(channels []nsx.ChannelInfo) {
	fmt.Printf("Channels:\n")
	fmt.Printf("%-6s %-10s %-12s %-8s %-14s %-16s %-18s\n",
		"Index", "Electrode", "Label", "Units", "Conversion", "Digital Range", "Bandpass (Hz)")
	for i, ci := range channels {
		fmt.Printf("%-6d %-10d %-12s %-8s %-14.4f [%d, %d]    %.1f - %.1f\n",
			i, ci.ElectrodeID, ci.Label, ci.AnalogUnits, ci.ConversionFactor,
			ci.MinDigitalValue, ci.MaxDigitalValue, ci.LowFreqCutoff, ci.HighFreqCutoff)
	}
	fmt.Println()
}

// displayPackets prints the data packet layout
func displayPackets(hdr *nsx.Header, packets []nsx.PacketDescriptor) {
	fmt.Printf("Data Packets:\n")
	fmt.Printf("%-8s %-14s %-14s %-12s %-14s %-8s\n",
		"Packet", "Start Byte", "End Byte", "Samples", "Tick Offset", "EOF")
	for _, p := range packets {
		fmt.Printf("%-8d %-14d %-14d %-12d %-14d %-8v\n",
			p.Index, p.DataStart, p.DataEnd, p.NumSamples, p.SampleOffset, p.IsEOF)
	}
	total := 0.0
	for _, p := range packets {
		total += float64(p.NumSamples) / hdr.SampleRate
	}
	fmt.Printf("\nTotal: %d packets, %.2f seconds of data\n\n", len(packets), total)
}

// displayStatistics loads the first samples of every channel and prints
// basic signal statistics, including the robust noise estimate used by
// spike detection.
func displayStatistics(filename string, hdr *nsx.Header) error {
	rec, err := nsx.ReadRecording(filename, nsx.ReadOptions{
		MaxSamples: statsSamples,
		PacketMode: nsx.PacketModeFirst,
	})
	if err != nil {
		return err
	}

	sds := spikedetect.EstimateSD(rec.Data)

	fmt.Printf("Signal Statistics (first %d samples):\n", rec.NumSamples())
	fmt.Printf("%-6s %-10s %-10s %-10s %-12s %-12s\n",
		"Index", "Electrode", "Min", "Max", "Mean", "Noise SD")
	for c := 0; c < rec.NumChannels(); c++ {
		minV, maxV, mean := columnStats(rec.Data, c)
		fmt.Printf("%-6d %-10d %-10d %-10d %-12.2f %-12.2f\n",
			rec.Channels[c], rec.Electrodes[c], minV, maxV, mean, sds[c])
	}
	fmt.Println()
	return nil
}

func columnStats(data *nsx.SampleMatrix, c int) (minV, maxV int16, mean float64) {
	if data.Rows == 0 {
		return 0, 0, 0
	}
	minV, maxV = data.At(0, c), data.At(0, c)
	sum := 0.0
	for r := 0; r < data.Rows; r++ {
		v := data.At(r, c)
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
		sum += float64(v)
	}
	return minV, maxV, sum / float64(data.Rows)
}

// displayJSON emits the header and packet layout as JSON
func displayJSON(filename string, hdr *nsx.Header, packets []nsx.PacketDescriptor) error {
	out := struct {
		File    string                 `json:"file"`
		Header  *nsx.Header            `json:"header"`
		Packets []nsx.PacketDescriptor `json:"packets"`
	}{filename, hdr, packets}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
