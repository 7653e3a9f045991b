// Package pipeline implements pipeline metrics.
package pipeline

import (
	"sync"
	"sync/atomic"

	"firestige.xyz/vjtap/internal/core"
)

// Metrics contains per-pipeline counters.
type Metrics struct {
	SessionID string

	// Packet counters (using atomic for thread-safety)
	Received       atomic.Uint64
	DispatchErrors atomic.Uint64
	Baselines      atomic.Uint64 // uncompressed frames accepted
	Decompressed   atomic.Uint64 // compressed frames reconstructed
	Passthrough    atomic.Uint64 // plain IPv4 frames
	DecodeErrors   atomic.Uint64
	Tossed         atomic.Uint64 // compressed frames rejected while desynchronized
	Filtered       atomic.Uint64
	Reported       atomic.Uint64
	ReportErrors   atomic.Uint64

	kindMu     sync.Mutex
	errorKinds map[string]uint64
}

// NewMetrics creates a new metrics instance.
func NewMetrics(sessionID string) *Metrics {
	return &Metrics{
		SessionID:  sessionID,
		errorKinds: make(map[string]uint64),
	}
}

// recordError counts err under its core.ErrorKind.
func (m *Metrics) recordError(err error) {
	m.kindMu.Lock()
	m.errorKinds[core.ErrorKind(err)]++
	m.kindMu.Unlock()
}

// Reset resets all counters to zero.
func (m *Metrics) Reset() {
	m.Received.Store(0)
	m.DispatchErrors.Store(0)
	m.Baselines.Store(0)
	m.Decompressed.Store(0)
	m.Passthrough.Store(0)
	m.DecodeErrors.Store(0)
	m.Tossed.Store(0)
	m.Filtered.Store(0)
	m.Reported.Store(0)
	m.ReportErrors.Store(0)

	m.kindMu.Lock()
	m.errorKinds = make(map[string]uint64)
	m.kindMu.Unlock()
}

// Stats represents pipeline statistics.
type Stats struct {
	Received       uint64
	DispatchErrors uint64
	Baselines      uint64
	Decompressed   uint64
	Passthrough    uint64
	DecodeErrors   uint64
	Tossed         uint64
	Filtered       uint64
	Reported       uint64
	ReportErrors   uint64
	ErrorKinds     map[string]uint64 // dispatch and decode errors by core.ErrorKind
}

func (m *Metrics) snapshot() Stats {
	s := Stats{
		Received:       m.Received.Load(),
		DispatchErrors: m.DispatchErrors.Load(),
		Baselines:      m.Baselines.Load(),
		Decompressed:   m.Decompressed.Load(),
		Passthrough:    m.Passthrough.Load(),
		DecodeErrors:   m.DecodeErrors.Load(),
		Tossed:         m.Tossed.Load(),
		Filtered:       m.Filtered.Load(),
		Reported:       m.Reported.Load(),
		ReportErrors:   m.ReportErrors.Load(),
		ErrorKinds:     make(map[string]uint64),
	}
	m.kindMu.Lock()
	for k, v := range m.errorKinds {
		s.ErrorKinds[k] = v
	}
	m.kindMu.Unlock()
	return s
}
