// Package vj decompresses Van Jacobson (RFC 1144) TCP/IP headers.
//
// A Session owns the slot tables of one point-to-point link, one per
// direction. Frames of a direction must be handed to the session in capture
// order; each call decodes one frame completely before returning.
package vj

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"firestige.xyz/vjtap/internal/core"
	"firestige.xyz/vjtap/internal/log"
	"firestige.xyz/vjtap/internal/metrics"
)

// DefaultSlots is the slot count used when a link does not negotiate one.
const DefaultSlots = 16

// Session is the decompression context of one link.
type Session struct {
	id     string
	tables [2]*SlotTable
	logger log.Logger
}

// NewSession creates a session whose directions each hold slots connection states.
func NewSession(slots int) (*Session, error) {
	s := &Session{id: uuid.NewString()}
	for i := range s.tables {
		t, err := NewSlotTable(slots)
		if err != nil {
			return nil, err
		}
		s.tables[i] = t
	}
	s.logger = log.GetLogger().WithField("session", s.id)
	return s, nil
}

// ID identifies the session in logs.
func (s *Session) ID() string {
	return s.id
}

// Table returns the slot table of a direction.
func (s *Session) Table(dir core.Direction) *SlotTable {
	return s.tables[dir&1]
}

// Decompress decodes payload according to its variant using dir's table.
// Plain IPv4 frames are returned unchanged.
func (s *Session) Decompress(dir core.Direction, variant core.Variant, payload []byte) ([]byte, error) {
	t := s.Table(dir)
	wasDesync := t.Desynchronized()
	start := time.Now()

	var (
		out []byte
		err error
	)
	switch variant {
	case core.VariantIPv4:
		out = payload
	case core.VariantUncompressed:
		out, err = DecompressUncompressed(payload, t)
	case core.VariantCompressed:
		out, err = DecompressCompressed(payload, t)
	default:
		err = fmt.Errorf("%w: variant %d", core.ErrUnsupportedProto, variant)
	}

	metrics.DecompressLatencySeconds.WithLabelValues(variant.String()).Observe(time.Since(start).Seconds())
	metrics.PacketsTotal.WithLabelValues(dir.String(), variant.String(), core.ErrorKind(err)).Inc()

	if variant == core.VariantIPv4 {
		return out, err
	}
	nowDesync := t.Desynchronized()
	switch {
	case !wasDesync && nowDesync:
		metrics.DesyncTotal.WithLabelValues(dir.String()).Inc()
		s.logger.WithFields(map[string]interface{}{
			"direction": dir.String(),
			"variant":   variant.String(),
		}).WithError(err).Debug("link direction desynchronized")
	case wasDesync && !nowDesync:
		slot, _ := t.LastSlot()
		s.logger.WithFields(map[string]interface{}{
			"direction": dir.String(),
			"variant":   variant.String(),
			"slot":      slot,
		}).Debug("link direction resynchronized")
	}
	return out, err
}

// ResetAll discards the state of both directions, as at the start of a new
// capture. Each table is reset under its own lock, so a reset never
// interleaves with a decode on the same table.
func (s *Session) ResetAll() {
	for _, t := range s.tables {
		t.reset()
	}
	metrics.SessionResetsTotal.Inc()
	s.logger.Info("slot tables reset")
}
