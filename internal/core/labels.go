// Package core defines core types.
package core

// Labels represents key-value metadata attached while a packet moves through the pipeline.
type Labels map[string]string

// Label naming constants following {protocol}.{field} convention.
const (
	LabelVJSlot      = "vj.slot"      // Slot id the packet was decoded against (decimal)
	LabelVJVariant   = "vj.variant"   // "compressed" / "uncompressed" / "ipv4"
	LabelVJDirection = "vj.direction" // "received" / "sent"
	LabelVJErrorKind = "vj.error"     // ErrorKind of a failed packet
	LabelVJPayload   = "vj.payload"   // TCP payload length after reconstruction (decimal)
)
