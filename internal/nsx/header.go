// Package nsx reads Blackrock NSx continuous recording files: the fixed
// file header, the per-channel extended headers, and the sequential data
// packets holding int16 multichannel samples.
package nsx

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"time"
)

// Supported file type tags. NEURALSG (file spec 2.1) has no extended
// channel headers and is rejected.
const (
	FileTypeNEURALCD = "NEURALCD"
	FileTypeBRSMPGRP = "BRSMPGRP"
	fileTypeNEURALSG = "NEURALSG"
)

const channelInfoSize = 66

// ChannelInfo describes one recorded channel, decoded from a 66-byte
// extended header record. Immutable once parsed.
type ChannelInfo struct {
	Type            string  // always "CC" for continuous channels
	ElectrodeID     int     // electrode number, usually 1-based
	Label           string  // electrode name, e.g. "chan1"
	Bank            int     // front-end bank connected to the electrode
	Pin             int     // pin on that bank
	MinDigitalValue int     // e.g. -8192
	MaxDigitalValue int     // e.g. 8192
	MinAnalogValue  int     // e.g. -5000 mV
	MaxAnalogValue  int     // e.g. 5000 mV
	// ConversionFactor maps raw int16 samples to AnalogUnits.
	ConversionFactor float64
	AnalogUnits      string  // units of the analog range, e.g. "uV"
	HighFreqCutoff   float64 // Hz, high cutoff of the acquisition bandpass
	HighFreqOrder    int
	HighFilterType   string // "Butterworth" or "None"
	LowFreqCutoff    float64
	LowFreqOrder     int
	LowFilterType    string
}

// Header holds the decoded NSx file header. BytesInHeader is the total
// size of the standard and extended headers, which is also the byte
// offset of the first data packet.
type Header struct {
	FileTypeID    string
	BytesInHeader uint32
	SampleRate    float64
	TimeOrigin    time.Time // UTC time of sample 0 of the recording
	ChannelCount  int
	ChannelsInfo  []ChannelInfo
}

// ReadHeader decodes the file header and the extended channel headers,
// leaving the reader positioned wherever the decode ended. Callers should
// seek to Header.BytesInHeader before scanning packets.
func ReadHeader(f *os.File) (*Header, error) {
	tag := make([]byte, 8)
	if _, err := io.ReadFull(f, tag); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, &FormatError{Offset: 0, Reason: "file too small to hold an NSx header"}
		}
		return nil, fmt.Errorf("failed to read file type tag: %w", err)
	}
	fileTypeID := string(tag)
	switch fileTypeID {
	case FileTypeNEURALCD, FileTypeBRSMPGRP:
	case fileTypeNEURALSG:
		return nil, &FormatError{Offset: 0, Reason: "file type 'NEURALSG' (2.1) is not supported, must be 'NEURALCD' or 'BRSMPGRP'"}
	default:
		return nil, &FormatError{Offset: 0, Reason: fmt.Sprintf("unknown file type %q, must be 'NEURALCD' or 'BRSMPGRP'", fileTypeID)}
	}

	// 2 file spec version bytes, then the header size.
	if _, err := f.Seek(2, io.SeekCurrent); err != nil {
		return nil, err
	}
	var bytesInHeader uint32
	if err := binary.Read(f, binary.LittleEndian, &bytesInHeader); err != nil {
		return nil, fmt.Errorf("failed to read header size: %w", err)
	}

	// Sampling-group label (16 bytes) and comment (256 bytes) are unused.
	if _, err := f.Seek(16+256, io.SeekCurrent); err != nil {
		return nil, err
	}

	var period, rawRate uint32
	if err := binary.Read(f, binary.LittleEndian, &period); err != nil {
		return nil, fmt.Errorf("failed to read period: %w", err)
	}
	if period != 1 {
		pos, _ := f.Seek(0, io.SeekCurrent)
		return nil, &FormatError{Offset: pos - 4, Reason: fmt.Sprintf("sampling period is %d, only period 1 is supported", period)}
	}
	if err := binary.Read(f, binary.LittleEndian, &rawRate); err != nil {
		return nil, fmt.Errorf("failed to read sample rate: %w", err)
	}
	sampleRate := float64(rawRate) / float64(period)

	timeOrigin, err := readSystemTime(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read time origin: %w", err)
	}

	var channelCount uint32
	if err := binary.Read(f, binary.LittleEndian, &channelCount); err != nil {
		return nil, fmt.Errorf("failed to read channel count: %w", err)
	}

	channelsInfo := make([]ChannelInfo, channelCount)
	record := make([]byte, channelInfoSize)
	for i := range channelsInfo {
		if _, err := io.ReadFull(f, record); err != nil {
			return nil, fmt.Errorf("failed to read extended header for channel %d: %w", i, err)
		}
		channelsInfo[i] = decodeChannelInfo(record)
	}

	return &Header{
		FileTypeID:    fileTypeID,
		BytesInHeader: bytesInHeader,
		SampleRate:    sampleRate,
		TimeOrigin:    timeOrigin,
		ChannelCount:  int(channelCount),
		ChannelsInfo:  channelsInfo,
	}, nil
}

// readSystemTime decodes the 16-byte Windows SYSTEMTIME structure written
// at acquisition start. The day-of-week field at bytes 4:6 is skipped.
func readSystemTime(f *os.File) (time.Time, error) {
	b := make([]byte, 16)
	if _, err := io.ReadFull(f, b); err != nil {
		return time.Time{}, err
	}
	year := int(binary.LittleEndian.Uint16(b[0:2]))
	month := time.Month(binary.LittleEndian.Uint16(b[2:4]))
	day := int(binary.LittleEndian.Uint16(b[6:8]))
	hour := int(binary.LittleEndian.Uint16(b[8:10]))
	minute := int(binary.LittleEndian.Uint16(b[10:12]))
	second := int(binary.LittleEndian.Uint16(b[12:14]))
	micro := int(binary.LittleEndian.Uint16(b[14:16])) * 1000
	return time.Date(year, month, day, hour, minute, second, micro*1000, time.UTC), nil
}

// decodeChannelInfo decodes a 66-byte extended channel header record.
func decodeChannelInfo(b []byte) ChannelInfo {
	ci := ChannelInfo{
		Type:            string(b[0:2]),
		ElectrodeID:     int(binary.LittleEndian.Uint16(b[2:4])),
		Label:           trimNul(b[4:20]),
		Bank:            int(b[20]),
		Pin:             int(b[21]),
		MinDigitalValue: int(int16(binary.LittleEndian.Uint16(b[22:24]))),
		MaxDigitalValue: int(int16(binary.LittleEndian.Uint16(b[24:26]))),
		MinAnalogValue:  int(int16(binary.LittleEndian.Uint16(b[26:28]))),
		MaxAnalogValue:  int(int16(binary.LittleEndian.Uint16(b[28:30]))),
		AnalogUnits:     trimNul(b[30:46]),
		HighFreqCutoff:  float64(binary.LittleEndian.Uint32(b[46:50])) / 1000,
		HighFreqOrder:   int(binary.LittleEndian.Uint32(b[50:54])),
		HighFilterType:  filterTypeName(binary.LittleEndian.Uint16(b[54:56])),
		LowFreqCutoff:   float64(binary.LittleEndian.Uint32(b[56:60])) / 1000,
		LowFreqOrder:    int(binary.LittleEndian.Uint32(b[60:64])),
		LowFilterType:   filterTypeName(binary.LittleEndian.Uint16(b[64:66])),
	}
	ci.ConversionFactor = float64(ci.MaxAnalogValue) / float64(ci.MaxDigitalValue)
	return ci
}

func filterTypeName(raw uint16) string {
	if raw > 0 {
		return "Butterworth"
	}
	return "None"
}

func trimNul(b []byte) string {
	return string(bytes.TrimRight(b, "\x00"))
}
