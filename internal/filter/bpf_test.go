package filter

import (
	"net"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/vjtap/internal/core"
)

func datagram(t *testing.T, dstPort uint16) []byte {
	t.Helper()
	ip := &layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolTCP,
		SrcIP:    net.IP{10, 1, 1, 1},
		DstIP:    net.IP{10, 1, 1, 2},
	}
	tcp := &layers.TCP{SrcPort: 1025, DstPort: layers.TCPPort(dstPort), ACK: true}
	require.NoError(t, tcp.SetNetworkLayerForChecksum(ip))
	buf := gopacket.NewSerializeBuffer()
	require.NoError(t, gopacket.SerializeLayers(buf,
		gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}, ip, tcp))
	return buf.Bytes()
}

func TestCompileAndMatch(t *testing.T) {
	f, err := Compile("tcp dst port 23")
	require.NoError(t, err)
	assert.Equal(t, "tcp dst port 23", f.String())

	assert.True(t, f.Match(&core.OutputPacket{Data: datagram(t, 23)}))
	assert.False(t, f.Match(&core.OutputPacket{Data: datagram(t, 80)}))
}

func TestMatchHostExpression(t *testing.T) {
	f, err := Compile("src host 10.1.1.1")
	require.NoError(t, err)
	assert.True(t, f.Match(&core.OutputPacket{Data: datagram(t, 80)}))

	f, err = Compile("host 192.0.2.1")
	require.NoError(t, err)
	assert.False(t, f.Match(&core.OutputPacket{Data: datagram(t, 80)}))
}

func TestErrorsAlwaysPass(t *testing.T) {
	f, err := Compile("tcp port 23")
	require.NoError(t, err)
	assert.True(t, f.Match(&core.OutputPacket{Err: core.ErrMalformed}))
}

func TestCompileInvalid(t *testing.T) {
	_, err := Compile("tcp port")
	assert.ErrorIs(t, err, core.ErrConfigInvalid)
}
