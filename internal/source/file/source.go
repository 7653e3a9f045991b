// Package file reads captured link frames from pcap and pcapng files.
package file

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"firestige.xyz/vjtap/internal/core"
	"firestige.xyz/vjtap/internal/log"
)

// pcapng files start with a section header block.
var pcapngMagic = []byte{0x0A, 0x0D, 0x0D, 0x0A}

type packetReader interface {
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
	LinkType() layers.LinkType
}

// Source replays the frames of one capture file in file order.
type Source struct {
	path   string
	file   *os.File
	reader packetReader
	index  uint64
}

// Open opens the capture at path and reads its file header.
func Open(path string) (*Source, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: input file is required", core.ErrConfigInvalid)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture file %s: %w", path, err)
	}

	reader, err := newPacketReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read capture header of %s: %w", path, err)
	}

	log.GetLogger().WithFields(map[string]interface{}{
		"file":      path,
		"link_type": reader.LinkType().String(),
	}).Info("capture file opened")
	return &Source{path: path, file: f, reader: reader}, nil
}

func newPacketReader(r io.Reader) (packetReader, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(len(pcapngMagic))
	if err != nil {
		return nil, err
	}
	if bytes.Equal(magic, pcapngMagic) {
		return pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
	}
	return pcapgo.NewReader(br)
}

// LinkType returns the link type of the capture.
func (s *Source) LinkType() layers.LinkType {
	return s.reader.LinkType()
}

// ReadPacket returns the next frame, or io.EOF at the end of the file.
func (s *Source) ReadPacket() (core.RawPacket, error) {
	data, ci, err := s.reader.ReadPacketData()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return core.RawPacket{}, io.EOF
		}
		return core.RawPacket{}, fmt.Errorf("failed to read packet %d: %w", s.index+1, err)
	}

	s.index++
	pkt := core.RawPacket{
		Data:       data,
		Timestamp:  ci.Timestamp,
		CaptureLen: uint32(ci.CaptureLength),
		OrigLen:    uint32(ci.Length),
		Index:      s.index,
	}
	return pkt, nil
}

// Capture sends every frame of the file to out. It returns nil at the end of
// the file and ctx.Err() when cancelled. out is not closed.
func (s *Source) Capture(ctx context.Context, out chan<- core.RawPacket) error {
	for {
		pkt, err := s.ReadPacket()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		select {
		case out <- pkt:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close closes the underlying file.
func (s *Source) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
