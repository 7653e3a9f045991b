package vj

import (
	"fmt"
	"sync"

	"firestige.xyz/vjtap/internal/core"
)

// MaxSlots is the largest table a link can negotiate (slot ids are one byte).
const MaxSlots = 256

// noSlot marks a table on which no slot has been used yet.
const noSlot = -1

// SlotTable holds the connection states of one link direction. All decode
// calls take mu for their whole duration, so one table has a single writer.
type SlotTable struct {
	mu             sync.Mutex
	slots          []ConnectionState
	lastSlot       int
	desynchronized bool
}

// NewSlotTable creates a table with capacity zeroed slots. A new table starts
// desynchronized: the first packet must be a baseline or name its slot.
func NewSlotTable(capacity int) (*SlotTable, error) {
	if capacity < 0 || capacity > MaxSlots {
		return nil, fmt.Errorf("%w: slot capacity %d outside [0, %d]", core.ErrConfigInvalid, capacity, MaxSlots)
	}
	return &SlotTable{
		slots:          make([]ConnectionState, capacity),
		lastSlot:       noSlot,
		desynchronized: true,
	}, nil
}

// Capacity returns the number of slots.
func (t *SlotTable) Capacity() int {
	return len(t.slots)
}

// Desynchronized reports whether compressed packets are currently tossed.
func (t *SlotTable) Desynchronized() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.desynchronized
}

// LastSlot returns the most recently used slot id; ok is false until a slot
// has been used.
func (t *SlotTable) LastSlot() (slot int, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastSlot, t.lastSlot != noSlot
}

// Slot returns a copy of the state stored in slot id.
func (t *SlotTable) Slot(id int) (ConnectionState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, err := t.selectSlot(id)
	if err != nil {
		return ConnectionState{}, err
	}
	return st.clone(), nil
}

// reset drops all connection state and returns the table to its initial,
// desynchronized condition.
func (t *SlotTable) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.slots = make([]ConnectionState, len(t.slots))
	t.lastSlot = noSlot
	t.desynchronized = true
}

// selectSlot returns the live state for id. Must be called with t.mu held.
func (t *SlotTable) selectSlot(id int) (*ConnectionState, error) {
	if id < 0 || id > len(t.slots)-1 {
		return nil, fmt.Errorf("%w: slot %d, capacity %d", core.ErrSlotOutOfRange, id, len(t.slots))
	}
	return &t.slots[id], nil
}

// toss marks the table desynchronized. Must be called with t.mu held.
func (t *SlotTable) toss() {
	t.desynchronized = true
}

// resync clears the desynchronized flag and records slot as the current
// connection. Must be called with t.mu held.
func (t *SlotTable) resync(slot int) {
	t.desynchronized = false
	t.lastSlot = slot
}
