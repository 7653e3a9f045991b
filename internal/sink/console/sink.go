// Package console prints a one-line summary of every packet.
package console

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"

	"firestige.xyz/vjtap/internal/core"
)

const Name = "console"

// TCP flag bits in the order they are printed.
var tcpFlagNames = []struct {
	bit  uint8
	name byte
}{
	{0x01, 'F'}, {0x02, 'S'}, {0x04, 'R'}, {0x08, 'P'}, {0x10, 'A'}, {0x20, 'U'},
}

// Sink writes packet summaries to an io.Writer.
type Sink struct {
	mu  sync.Mutex
	out io.Writer

	sent     *color.Color
	received *color.Color
	failed   *color.Color
}

// NewSink creates a console sink writing to out (color.Output when nil).
func NewSink(out io.Writer, colored bool) *Sink {
	if out == nil {
		out = color.Output
	}
	s := &Sink{
		out:      out,
		sent:     color.New(color.FgCyan),
		received: color.New(color.FgGreen),
		failed:   color.New(color.FgRed, color.Bold),
	}
	for _, c := range []*color.Color{s.sent, s.received, s.failed} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}

func (s *Sink) Name() string {
	return Name
}

// Report prints pkt.
func (s *Sink) Report(_ context.Context, pkt *core.OutputPacket) error {
	line := s.format(pkt)

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintln(s.out, line)
	return err
}

func (s *Sink) Flush(_ context.Context) error {
	return nil
}

func (s *Sink) format(pkt *core.OutputPacket) string {
	dirColor := s.received
	if pkt.Direction == core.DirectionSent {
		dirColor = s.sent
	}
	prefix := fmt.Sprintf("#%d %s %-12s", pkt.Index, dirColor.Sprintf("%-8s", pkt.Direction), pkt.Variant)

	if pkt.Err != nil {
		return prefix + " " + s.failed.Sprintf("error=%s", core.ErrorKind(pkt.Err)) + " " + pkt.Err.Error()
	}

	var b strings.Builder
	b.WriteString(prefix)
	if slot, ok := pkt.Labels[core.LabelVJSlot]; ok {
		fmt.Fprintf(&b, " slot=%s", slot)
	}
	tr := pkt.Transport
	fmt.Fprintf(&b, " %s:%d > %s:%d seq=%d ack=%d win=%d [%s]",
		pkt.SrcIP, tr.SrcPort, pkt.DstIP, tr.DstPort, tr.SeqNum, tr.AckNum, tr.Window, flagString(tr.TCPFlags))
	if tr.TCPFlags&0x20 != 0 {
		fmt.Fprintf(&b, " urg=%d", tr.Urgent)
	}
	fmt.Fprintf(&b, " id=%d len=%d", pkt.IP.ID, pkt.IP.TotalLen)
	return b.String()
}

func flagString(flags uint8) string {
	var b []byte
	for _, f := range tcpFlagNames {
		if flags&f.bit != 0 {
			b = append(b, f.name)
		}
	}
	if len(b) == 0 {
		return "."
	}
	return string(b)
}
