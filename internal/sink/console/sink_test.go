package console

import (
	"bytes"
	"context"
	"fmt"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/vjtap/internal/core"
)

func TestReportDecodedPacket(t *testing.T) {
	var buf bytes.Buffer
	s := NewSink(&buf, false)
	assert.Equal(t, "console", s.Name())

	err := s.Report(context.Background(), &core.OutputPacket{
		Index:     3,
		Direction: core.DirectionSent,
		Variant:   core.VariantCompressed,
		SrcIP:     netip.MustParseAddr("10.0.0.1"),
		DstIP:     netip.MustParseAddr("10.0.0.2"),
		IP:        core.IPHeader{ID: 7, TotalLen: 45},
		Transport: core.TransportHeader{
			SrcPort: 1025, DstPort: 23, SeqNum: 1000, AckNum: 2000, Window: 4096,
			TCPFlags: 0x18,
		},
		Labels: core.Labels{core.LabelVJSlot: "2"},
	})
	require.NoError(t, err)

	assert.Equal(t,
		"#3 sent     compressed   slot=2 10.0.0.1:1025 > 10.0.0.2:23 seq=1000 ack=2000 win=4096 [PA] id=7 len=45\n",
		buf.String())
}

func TestReportUrgent(t *testing.T) {
	var buf bytes.Buffer
	s := NewSink(&buf, false)

	require.NoError(t, s.Report(context.Background(), &core.OutputPacket{
		Transport: core.TransportHeader{TCPFlags: 0x30, Urgent: 9},
	}))
	assert.Contains(t, buf.String(), "[AU] urg=9")
}

func TestReportError(t *testing.T) {
	var buf bytes.Buffer
	s := NewSink(&buf, false)

	err := s.Report(context.Background(), &core.OutputPacket{
		Index:   9,
		Variant: core.VariantCompressed,
		Err:     fmt.Errorf("%w: change byte 0x00 without slot id", core.ErrStillDesynchronized),
	})
	require.NoError(t, err)
	assert.Equal(t,
		"#9 received compressed   error=desynchronized vjtap: link direction desynchronized: change byte 0x00 without slot id\n",
		buf.String())
}

func TestColoredOutput(t *testing.T) {
	var buf bytes.Buffer
	s := NewSink(&buf, true)

	require.NoError(t, s.Report(context.Background(), &core.OutputPacket{Err: core.ErrMalformed}))
	assert.Contains(t, buf.String(), "\x1b[")
}

func TestFlagString(t *testing.T) {
	assert.Equal(t, ".", flagString(0))
	assert.Equal(t, "S", flagString(0x02))
	assert.Equal(t, "FSRPAU", flagString(0x3F))
}
