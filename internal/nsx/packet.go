package nsx

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// PacketDescriptor locates one data packet within the file. Descriptors
// are produced while scanning and consumed when the packet's samples are
// read; they are not retained by Recording.
type PacketDescriptor struct {
	Index        int    // 0-based sequence number within the file
	DataStart    int64  // byte offset of the first sample
	DataEnd      int64  // byte offset one past the last sample
	SampleOffset uint64 // ticks since recording start, 0 if not recorded
	NumSamples   uint32
	IsEOF        bool // packet ends exactly at end of file
}

// scanNextPacket reads the packet header at offset and computes the
// packet's data boundaries without reading the samples. The sample-offset
// field is 4 bytes wide for NEURALCD files and 8 bytes for BRSMPGRP.
func scanNextPacket(f *os.File, fileTypeID string, nChannels int, offset int64) (PacketDescriptor, error) {
	var p PacketDescriptor

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return p, err
	}

	sentinel := make([]byte, 1)
	if _, err := io.ReadFull(f, sentinel); err != nil {
		return p, fmt.Errorf("failed to read packet sentinel at byte %d: %w", offset, err)
	}
	if sentinel[0] != 0x01 {
		return p, &FormatError{Offset: offset, Reason: fmt.Sprintf("data packets must start with 0x01, got 0x%02x", sentinel[0])}
	}

	switch fileTypeID {
	case FileTypeNEURALCD:
		var v uint32
		if err := binary.Read(f, binary.LittleEndian, &v); err != nil {
			return p, fmt.Errorf("failed to read packet sample offset: %w", err)
		}
		p.SampleOffset = uint64(v)
	case FileTypeBRSMPGRP:
		if err := binary.Read(f, binary.LittleEndian, &p.SampleOffset); err != nil {
			return p, fmt.Errorf("failed to read packet sample offset: %w", err)
		}
	default:
		return p, &FormatError{Offset: offset, Reason: fmt.Sprintf("unknown file type %q", fileTypeID)}
	}

	if err := binary.Read(f, binary.LittleEndian, &p.NumSamples); err != nil {
		return p, fmt.Errorf("failed to read packet sample count: %w", err)
	}

	var err error
	p.DataStart, err = f.Seek(0, io.SeekCurrent)
	if err != nil {
		return p, err
	}
	p.DataEnd = p.DataStart + 2*int64(p.NumSamples)*int64(nChannels)

	fileEnd, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return p, err
	}
	p.IsEOF = p.DataEnd == fileEnd

	return p, nil
}

// ScanPackets decodes the header and walks every data packet in the
// file without reading any sample data. Intended for file inspection.
func ScanPackets(path string) (*Header, []PacketDescriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	hdr, err := ReadHeader(f)
	if err != nil {
		return nil, nil, err
	}

	var packets []PacketDescriptor
	offset := int64(hdr.BytesInHeader)
	for index := 0; ; index++ {
		p, err := scanNextPacket(f, hdr.FileTypeID, hdr.ChannelCount, offset)
		if err != nil {
			return nil, nil, err
		}
		p.Index = index
		packets = append(packets, p)
		if p.IsEOF {
			break
		}
		offset = p.DataEnd
	}
	return hdr, packets, nil
}
