package nsx

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// readPacketSamples extracts nSamples rows for the resolved channel
// subset starting at the packet's first sample. When every channel is
// selected the packet payload is contiguous and read in one pass;
// otherwise the wanted channels are gathered with relative seeks so the
// unread channels never enter memory.
func readPacketSamples(f *os.File, dataStart int64, channels []int, nSamples int, nChannelsInFile int) (*SampleMatrix, error) {
	if _, err := f.Seek(dataStart, io.SeekStart); err != nil {
		return nil, err
	}

	nChannels := len(channels)
	data := NewSampleMatrix(nSamples, nChannels)

	if nChannels == nChannelsInFile {
		buf := make([]byte, 2*nSamples*nChannels)
		if _, err := io.ReadFull(f, buf); err != nil {
			return nil, fmt.Errorf("failed to read packet data: %w", err)
		}
		for i := range data.Values {
			data.Values[i] = int16(binary.LittleEndian.Uint16(buf[2*i : 2*i+2]))
		}
		return data, nil
	}

	sample := make([]byte, 2)
	for row := 0; row < nSamples; row++ {
		cursor := 0 // channel index the file position corresponds to
		for i, c := range channels {
			if _, err := f.Seek(2*int64(c-cursor), io.SeekCurrent); err != nil {
				return nil, err
			}
			if _, err := io.ReadFull(f, sample); err != nil {
				return nil, fmt.Errorf("failed to read sample %d of channel %d: %w", row, c, err)
			}
			data.Values[row*nChannels+i] = int16(binary.LittleEndian.Uint16(sample))
			cursor = c + 1
		}
		// Skip the remaining channels to reach the next sample row.
		if _, err := f.Seek(2*int64(nChannelsInFile-cursor), io.SeekCurrent); err != nil {
			return nil, err
		}
	}
	return data, nil
}
