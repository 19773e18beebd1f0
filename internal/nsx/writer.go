package nsx

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"time"
)

const fixedHeaderSize = 8 + 2 + 4 + 16 + 256 + 4 + 4 + 16 + 4

// WriteOptions describes the header of a file produced by WriteFile.
type WriteOptions struct {
	FileTypeID   string // NEURALCD (default) or BRSMPGRP
	Label        string // sampling group label, e.g. "30 kS/s"
	Comment      string
	SampleRate   uint32
	TimeOrigin   time.Time // stored as UTC
	ChannelsInfo []ChannelInfo
}

// WritePacket is one data packet to be written. Data must carry every
// channel in file order; selection is a read-time concern.
type WritePacket struct {
	SampleOffset uint64 // ticks since recording start, 0 for none
	Data         *SampleMatrix
}

// WriteFile writes a complete NSx file: header, extended channel headers,
// and the given data packets. Mainly used to produce fixture and
// simulated recordings that ReadRecording can consume.
func WriteFile(path string, opts WriteOptions, packets []WritePacket) error {
	fileTypeID := opts.FileTypeID
	if fileTypeID == "" {
		fileTypeID = FileTypeNEURALCD
	}
	if fileTypeID != FileTypeNEURALCD && fileTypeID != FileTypeBRSMPGRP {
		return fmt.Errorf("cannot write file type %q, must be 'NEURALCD' or 'BRSMPGRP'", fileTypeID)
	}
	nChannels := len(opts.ChannelsInfo)
	for i, p := range packets {
		if p.Data.Cols != nChannels {
			return fmt.Errorf("packet %d has %d channels, header declares %d", i, p.Data.Cols, nChannels)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := writeHeader(w, fileTypeID, opts); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, p := range packets {
		if err := writePacket(w, fileTypeID, p); err != nil {
			return fmt.Errorf("failed to write packet %d: %w", i, err)
		}
	}
	return w.Flush()
}

func writeHeader(w *bufio.Writer, fileTypeID string, opts WriteOptions) error {
	if _, err := w.WriteString(fileTypeID); err != nil {
		return err
	}

	version := []byte{2, 3}
	if fileTypeID == FileTypeBRSMPGRP {
		version = []byte{3, 0}
	}
	if _, err := w.Write(version); err != nil {
		return err
	}

	bytesInHeader := uint32(fixedHeaderSize + channelInfoSize*len(opts.ChannelsInfo))
	if err := binary.Write(w, binary.LittleEndian, bytesInHeader); err != nil {
		return err
	}

	if _, err := w.Write(fixedString(opts.Label, 16)); err != nil {
		return err
	}
	if _, err := w.Write(fixedString(opts.Comment, 256)); err != nil {
		return err
	}

	// Period other than 1 is not readable by this package.
	if err := binary.Write(w, binary.LittleEndian, uint32(1)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, opts.SampleRate); err != nil {
		return err
	}

	if err := writeSystemTime(w, opts.TimeOrigin.UTC()); err != nil {
		return err
	}

	if err := binary.Write(w, binary.LittleEndian, uint32(len(opts.ChannelsInfo))); err != nil {
		return err
	}
	for _, ci := range opts.ChannelsInfo {
		if _, err := w.Write(encodeChannelInfo(ci)); err != nil {
			return err
		}
	}
	return nil
}

func writeSystemTime(w *bufio.Writer, t time.Time) error {
	fields := []uint16{
		uint16(t.Year()),
		uint16(t.Month()),
		uint16(t.Weekday()),
		uint16(t.Day()),
		uint16(t.Hour()),
		uint16(t.Minute()),
		uint16(t.Second()),
		uint16(t.Nanosecond() / 1e6),
	}
	for _, v := range fields {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return nil
}

func encodeChannelInfo(ci ChannelInfo) []byte {
	b := make([]byte, channelInfoSize)
	copy(b[0:2], fixedString(ci.Type, 2))
	binary.LittleEndian.PutUint16(b[2:4], uint16(ci.ElectrodeID))
	copy(b[4:20], fixedString(ci.Label, 16))
	b[20] = byte(ci.Bank)
	b[21] = byte(ci.Pin)
	binary.LittleEndian.PutUint16(b[22:24], uint16(int16(ci.MinDigitalValue)))
	binary.LittleEndian.PutUint16(b[24:26], uint16(int16(ci.MaxDigitalValue)))
	binary.LittleEndian.PutUint16(b[26:28], uint16(int16(ci.MinAnalogValue)))
	binary.LittleEndian.PutUint16(b[28:30], uint16(int16(ci.MaxAnalogValue)))
	copy(b[30:46], fixedString(ci.AnalogUnits, 16))
	binary.LittleEndian.PutUint32(b[46:50], uint32(ci.HighFreqCutoff*1000))
	binary.LittleEndian.PutUint32(b[50:54], uint32(ci.HighFreqOrder))
	binary.LittleEndian.PutUint16(b[54:56], filterTypeCode(ci.HighFilterType))
	binary.LittleEndian.PutUint32(b[56:60], uint32(ci.LowFreqCutoff*1000))
	binary.LittleEndian.PutUint32(b[60:64], uint32(ci.LowFreqOrder))
	binary.LittleEndian.PutUint16(b[64:66], filterTypeCode(ci.LowFilterType))
	return b
}

func filterTypeCode(name string) uint16 {
	if name == "Butterworth" {
		return 1
	}
	return 0
}

func writePacket(w *bufio.Writer, fileTypeID string, p WritePacket) error {
	if err := w.WriteByte(0x01); err != nil {
		return err
	}
	if fileTypeID == FileTypeNEURALCD {
		if err := binary.Write(w, binary.LittleEndian, uint32(p.SampleOffset)); err != nil {
			return err
		}
	} else {
		if err := binary.Write(w, binary.LittleEndian, p.SampleOffset); err != nil {
			return err
		}
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(p.Data.Rows)); err != nil {
		return err
	}
	buf := make([]byte, 2*len(p.Data.Values))
	for i, v := range p.Data.Values {
		binary.LittleEndian.PutUint16(buf[2*i:2*i+2], uint16(v))
	}
	_, err := w.Write(buf)
	return err
}

func fixedString(s string, n int) []byte {
	b := make([]byte, n)
	copy(b, s)
	return b
}
