// Package filter selects reconstructed datagrams with BPF expressions.
package filter

import (
	"fmt"

	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
	"golang.org/x/net/bpf"

	"firestige.xyz/vjtap/internal/core"
)

const snapLen = 65535

// BPF matches packets against a compiled tcpdump-style expression. The
// program runs on the reconstructed IPv4 datagram, so expressions see the
// decompressed headers.
type BPF struct {
	expr string
	vm   *bpf.VM
}

// Compile compiles expr for raw IPv4 packets.
func Compile(expr string) (*BPF, error) {
	raw, err := compileBpf(expr)
	if err != nil {
		return nil, err
	}
	prog, ok := bpf.Disassemble(raw)
	if !ok {
		return nil, fmt.Errorf("%w: filter %q uses unsupported bpf instructions", core.ErrConfigInvalid, expr)
	}
	vm, err := bpf.NewVM(prog)
	if err != nil {
		return nil, fmt.Errorf("%w: filter %q: %v", core.ErrConfigInvalid, expr, err)
	}
	return &BPF{expr: expr, vm: vm}, nil
}

func compileBpf(expr string) ([]bpf.RawInstruction, error) {
	pcapBpf, err := pcap.CompileBPFFilter(layers.LinkTypeIPv4, snapLen, expr)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to compile filter %q: %v", core.ErrConfigInvalid, expr, err)
	}

	rawBpf := make([]bpf.RawInstruction, len(pcapBpf))
	for i, ins := range pcapBpf {
		rawBpf[i] = bpf.RawInstruction{Op: ins.Code, Jt: ins.Jt, Jf: ins.Jf, K: ins.K}
	}
	return rawBpf, nil
}

// String returns the source expression.
func (f *BPF) String() string {
	return f.expr
}

// Match reports whether pkt passes the filter. Packets that failed to decode
// carry no datagram and always pass, so errors stay visible.
func (f *BPF) Match(pkt *core.OutputPacket) bool {
	if pkt.Err != nil {
		return true
	}
	n, err := f.vm.Run(pkt.Data)
	return err == nil && n > 0
}
