// Package arrangement keeps the slot order of a fixed set of items.
package arrangement

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSize    = errors.New("arrangement needs at least one item")
	ErrSlotOutOfRange = errors.New("slot out of range")
	ErrUnknownItem    = errors.New("unknown item")
)

// Model is an ordered sequence of item indices. Slot i holds order[i].
// The order is only changed by moves and swaps, so it is always a
// permutation of 0..N-1.
type Model struct {
	order []int
}

// NewModel creates a model with n items in render order.
func NewModel(n int) (*Model, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, n)
	}
	m := &Model{order: make([]int, n)}
	m.Reset()
	return m, nil
}

// Len returns the number of slots.
func (m *Model) Len() int {
	return len(m.order)
}

// Order returns a copy of the item index held by each slot.
func (m *Model) Order() []int {
	return append([]int(nil), m.order...)
}

// At returns the item in slot.
func (m *Model) At(slot int) (int, error) {
	if err := m.checkSlot(slot); err != nil {
		return 0, err
	}
	return m.order[slot], nil
}

// SlotOf returns the slot currently holding item.
func (m *Model) SlotOf(item int) (int, error) {
	for slot, it := range m.order {
		if it == item {
			return slot, nil
		}
	}
	return 0, fmt.Errorf("%w: %d", ErrUnknownItem, item)
}

// Reset restores render order.
func (m *Model) Reset() {
	for i := range m.order {
		m.order[i] = i
	}
}

// InsertBefore moves the item in source so it sits immediately before the
// item currently in target. Items in between shift by one.
// It returns false when source == target.
func (m *Model) InsertBefore(source, target int) (bool, error) {
	if err := m.checkPair(source, target); err != nil {
		return false, err
	}
	if source == target {
		return false, nil
	}
	dest := target
	if source < target {
		// target shifts left once source is taken out
		dest = target - 1
	}
	return m.move(source, dest), nil
}

// InsertAfter moves the item in source so it sits immediately after the
// item currently in target.
func (m *Model) InsertAfter(source, target int) (bool, error) {
	if err := m.checkPair(source, target); err != nil {
		return false, err
	}
	if source == target {
		return false, nil
	}
	dest := target + 1
	if source < target {
		dest = target
	}
	return m.move(source, dest), nil
}

// Swap exchanges the items in slots a and b. Every other slot is untouched.
func (m *Model) Swap(a, b int) (bool, error) {
	if err := m.checkPair(a, b); err != nil {
		return false, err
	}
	if a == b {
		return false, nil
	}
	m.order[a], m.order[b] = m.order[b], m.order[a]
	return true, nil
}

// move takes the item out of source and reinserts it so it ends up at dest.
func (m *Model) move(source, dest int) bool {
	if source == dest {
		return false
	}
	item := m.order[source]
	if source < dest {
		copy(m.order[source:dest], m.order[source+1:dest+1])
	} else {
		copy(m.order[dest+1:source+1], m.order[dest:source])
	}
	m.order[dest] = item
	return true
}

func (m *Model) checkPair(a, b int) error {
	if err := m.checkSlot(a); err != nil {
		return err
	}
	return m.checkSlot(b)
}

func (m *Model) checkSlot(slot int) error {
	if slot < 0 || slot >= len(m.order) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrSlotOutOfRange, slot, len(m.order))
	}
	return nil
}
