package nsx

import (
	"fmt"
	"os"
	"time"
)

// Packet modes for ReadRecording.
const (
	PacketModeFirst = "first"
	PacketModeLast  = "last"
	PacketModeAll   = "all"
)

// MaxSamplesLimit is the largest sample count a single read can request,
// matching the u32 sample-count field of the packet header.
const MaxSamplesLimit = 0xFFFFFFFF

// ReadOptions selects what ReadRecording extracts from a file.
type ReadOptions struct {
	// Electrodes lists electrode IDs to read. Takes priority over
	// Channels. Electrode IDs absent from the file are dropped silently.
	Electrodes []int
	// Channels lists 0-based in-file channel indices to read. Indices
	// beyond the file's channel count are dropped silently.
	Channels []int
	// MaxSamples caps how many samples are read. 0 means everything
	// (up to MaxSamplesLimit).
	MaxSamples uint64
	// PacketMode chooses which data packet to read when a file holds
	// more than one: "first", "last" (default), or "all" via
	// ReadAllPackets.
	PacketMode string
}

func (o ReadOptions) maxSamples() uint64 {
	if o.MaxSamples == 0 {
		return MaxSamplesLimit
	}
	if o.MaxSamples > MaxSamplesLimit {
		fmt.Fprintf(os.Stderr, "Warning: max samples %#x capped at %#x\n", o.MaxSamples, uint64(MaxSamplesLimit))
		return MaxSamplesLimit
	}
	return o.MaxSamples
}

// Recording is one continuously-sampled stretch of multichannel data read
// from a single packet. All fields are fixed at construction; Channels,
// Electrodes, and ChannelsInfo are parallel to the data columns.
type Recording struct {
	File               string
	Data               *SampleMatrix // rows are samples, columns follow Channels
	SampleRate         float64
	TimeOrigin         time.Time // UTC time of the first sample in this packet
	Channels           []int     // 0-based in-file channel indices actually read
	Electrodes         []int     // electrode IDs parallel to Channels
	ChannelsInfo       []ChannelInfo
	PacketIndex        int
	PacketSampleOffset uint64
}

// NumSamples returns the number of sample rows.
func (r *Recording) NumSamples() int { return r.Data.Rows }

// NumChannels returns the number of channels read.
func (r *Recording) NumChannels() int { return r.Data.Cols }

// Duration returns the time span covered by the data.
func (r *Recording) Duration() time.Duration {
	return time.Duration(float64(r.NumSamples()) / r.SampleRate * float64(time.Second))
}

func newRecording(file string, data *SampleMatrix, hdrTimeOrigin time.Time, sampleRate float64,
	channels, electrodes []int, channelsInfo []ChannelInfo, p PacketDescriptor) *Recording {
	timeOrigin := hdrTimeOrigin
	if p.SampleOffset > 0 {
		timeOrigin = timeOrigin.Add(ticksToDuration(p.SampleOffset, sampleRate))
	}
	return &Recording{
		File:               file,
		Data:               data,
		SampleRate:         sampleRate,
		TimeOrigin:         timeOrigin,
		Channels:           channels,
		Electrodes:         electrodes,
		ChannelsInfo:       channelsInfo,
		PacketIndex:        p.Index,
		PacketSampleOffset: p.SampleOffset,
	}
}

func ticksToDuration(ticks uint64, sampleRate float64) time.Duration {
	return time.Duration(float64(ticks) / sampleRate * float64(time.Second))
}

// ReadRecording reads the header and one data packet from an NSx file.
// With PacketMode "last" it walks every packet to the end of the file,
// reconstructing the packet's start time along the way: a later packet
// whose sample-offset field reads as zero carries no explicit
// discontinuity marker, so its start time is taken to be the end of the
// previous packet. The file handle is scoped to this call.
func ReadRecording(path string, opts ReadOptions) (*Recording, error) {
	mode := opts.PacketMode
	if mode == "" {
		mode = PacketModeLast
	}
	if mode != PacketModeFirst && mode != PacketModeLast {
		if mode == PacketModeAll {
			return nil, fmt.Errorf("packet mode %q requires ReadAllPackets", mode)
		}
		return nil, fmt.Errorf("unknown packet mode %q, only 'first', 'last', and 'all' are supported", mode)
	}
	maxSamples := opts.maxSamples()

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	hdr, err := ReadHeader(f)
	if err != nil {
		return nil, err
	}

	channels, electrodes, channelsInfo, err := resolveChannels(opts.Channels, opts.Electrodes, hdr.ChannelsInfo)
	if err != nil {
		return nil, err
	}

	timeOrigin := hdr.TimeOrigin
	p, err := scanNextPacket(f, hdr.FileTypeID, hdr.ChannelCount, int64(hdr.BytesInHeader))
	if err != nil {
		return nil, err
	}

	if mode == PacketModeLast {
		for !p.IsEOF {
			prevNSamples := p.NumSamples
			next, err := scanNextPacket(f, hdr.FileTypeID, hdr.ChannelCount, p.DataEnd)
			if err != nil {
				return nil, err
			}
			next.Index = p.Index + 1
			// A zero sample offset on a non-first packet means the
			// recording was paused and resumed without a marker: the
			// packet continues where the previous one ended.
			if next.SampleOffset == 0 {
				timeOrigin = timeOrigin.Add(ticksToDuration(uint64(prevNSamples), hdr.SampleRate))
			}
			p = next
		}
	}

	nSamples := maxSamples
	if nSamples > uint64(p.NumSamples) {
		fmt.Fprintf(os.Stderr, "Warning: requested %d samples but the %s data packet only contains %d\n", nSamples, mode, p.NumSamples)
		nSamples = uint64(p.NumSamples)
	}

	data, err := readPacketSamples(f, p.DataStart, channels, int(nSamples), hdr.ChannelCount)
	if err != nil {
		return nil, err
	}

	return newRecording(path, data, timeOrigin, hdr.SampleRate, channels, electrodes, channelsInfo, p), nil
}

// ReadAllPackets reads every data packet in the file into its own
// Recording, in file order, applying the same start-time reconstruction
// as ReadRecording. Reading stops early once MaxSamples has been
// consumed across packets. Opts.PacketMode is ignored.
func ReadAllPackets(path string, opts ReadOptions) ([]*Recording, error) {
	maxSamples := opts.maxSamples()

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	hdr, err := ReadHeader(f)
	if err != nil {
		return nil, err
	}

	channels, electrodes, channelsInfo, err := resolveChannels(opts.Channels, opts.Electrodes, hdr.ChannelsInfo)
	if err != nil {
		return nil, err
	}

	var recordings []*Recording
	timeOrigin := hdr.TimeOrigin
	offset := int64(hdr.BytesInHeader)
	var read uint64
	var prevNSamples uint32

	for index := 0; read < maxSamples; index++ {
		p, err := scanNextPacket(f, hdr.FileTypeID, hdr.ChannelCount, offset)
		if err != nil {
			return nil, err
		}
		p.Index = index

		if index > 0 && p.SampleOffset == 0 {
			timeOrigin = timeOrigin.Add(ticksToDuration(uint64(prevNSamples), hdr.SampleRate))
		}
		prevNSamples = p.NumSamples

		nSamples := maxSamples - read
		if nSamples > uint64(p.NumSamples) {
			nSamples = uint64(p.NumSamples)
		}
		data, err := readPacketSamples(f, p.DataStart, channels, int(nSamples), hdr.ChannelCount)
		if err != nil {
			return nil, err
		}
		read += nSamples

		recordings = append(recordings, newRecording(path, data, timeOrigin, hdr.SampleRate, channels, electrodes, channelsInfo, p))

		if p.IsEOF {
			break
		}
		offset = p.DataEnd
	}
	return recordings, nil
}
