package pipeline

import (
	"net/netip"
	"strconv"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"firestige.xyz/vjtap/internal/core"
)

var interpretOptions = gopacket.DecodeOptions{Lazy: true, NoCopy: true}

// interpret fills the network context of out from its reconstructed datagram.
// Fields of layers that do not decode are left zero.
func interpret(out *core.OutputPacket) {
	pkt := gopacket.NewPacket(out.Data, layers.LayerTypeIPv4, interpretOptions)

	if ip, ok := pkt.Layer(layers.LayerTypeIPv4).(*layers.IPv4); ok {
		out.IP = core.IPHeader{
			Version:  ip.Version,
			IHL:      ip.IHL,
			Protocol: uint8(ip.Protocol),
			TTL:      ip.TTL,
			TotalLen: ip.Length,
			ID:       ip.Id,
			Checksum: ip.Checksum,
		}
		if addr, ok := netip.AddrFromSlice(ip.SrcIP); ok {
			out.IP.SrcIP = addr.Unmap()
		}
		if addr, ok := netip.AddrFromSlice(ip.DstIP); ok {
			out.IP.DstIP = addr.Unmap()
		}
		out.SrcIP, out.DstIP = out.IP.SrcIP, out.IP.DstIP
	}

	if tcp, ok := pkt.Layer(layers.LayerTypeTCP).(*layers.TCP); ok {
		out.Transport = core.TransportHeader{
			SrcPort:  uint16(tcp.SrcPort),
			DstPort:  uint16(tcp.DstPort),
			Protocol: uint8(layers.IPProtocolTCP),
			TCPFlags: tcpFlags(tcp),
			SeqNum:   tcp.Seq,
			AckNum:   tcp.Ack,
			Window:   tcp.Window,
			Checksum: tcp.Checksum,
			Urgent:   tcp.Urgent,
		}
		out.Labels[core.LabelVJPayload] = strconv.Itoa(len(tcp.Payload))
	}
}

// tcpFlags packs the decoded flag bits back into header byte 13.
func tcpFlags(tcp *layers.TCP) uint8 {
	var f uint8
	for _, b := range []struct {
		set bool
		bit uint8
	}{
		{tcp.FIN, 0x01}, {tcp.SYN, 0x02}, {tcp.RST, 0x04},
		{tcp.PSH, 0x08}, {tcp.ACK, 0x10}, {tcp.URG, 0x20},
	} {
		if b.set {
			f |= b.bit
		}
	}
	return f
}
