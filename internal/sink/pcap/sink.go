// Package pcap writes reconstructed IPv4 datagrams to a capture file.
package pcap

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"firestige.xyz/vjtap/internal/core"
)

const Name = "pcap"

// snapLen covers the largest IPv4 datagram.
const snapLen = 65535

// Sink writes every successfully decoded packet as a LinkTypeRaw frame, so
// the output opens in any pcap reader as plain IPv4.
type Sink struct {
	mu      sync.Mutex
	file    *os.File
	buf     *bufio.Writer
	writer  *pcapgo.Writer
	written uint64
}

// NewSink creates (or truncates) path and writes the file header.
func NewSink(path string) (*Sink, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: output pcap path is required", core.ErrConfigInvalid)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	buf := bufio.NewWriter(f)
	w := pcapgo.NewWriter(buf)
	if err := w.WriteFileHeader(snapLen, layers.LinkTypeRaw); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write pcap header: %w", err)
	}
	return &Sink{file: f, buf: buf, writer: w}, nil
}

func (s *Sink) Name() string {
	return Name
}

// Report writes pkt.Data. Packets that failed to decode are skipped.
func (s *Sink) Report(_ context.Context, pkt *core.OutputPacket) error {
	if pkt.Err != nil || len(pkt.Data) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writer == nil {
		return core.ErrPipelineStopped
	}
	ci := gopacket.CaptureInfo{
		Timestamp:     pkt.Timestamp,
		CaptureLength: len(pkt.Data),
		Length:        len(pkt.Data),
	}
	if err := s.writer.WritePacket(ci, pkt.Data); err != nil {
		return fmt.Errorf("failed to write packet %d: %w", pkt.Index, err)
	}
	s.written++
	return nil
}

// Flush pushes buffered packets to the file.
func (s *Sink) Flush(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buf == nil {
		return nil
	}
	return s.buf.Flush()
}

// Written returns the number of packets written so far.
func (s *Sink) Written() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.written
}

// Close flushes and closes the file. Later reports fail with ErrPipelineStopped.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	flushErr := s.buf.Flush()
	closeErr := s.file.Close()
	s.file, s.buf, s.writer = nil, nil, nil
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
