package resource

import "slices"

// Sequence is the compacting Registry. Live handles are kept in a sequence
// that is index-parallel to a SequenceStore: handles[i] names the instance in
// slot i. Removal shifts later entries down by one, so slot indices of other
// handles may change; handles themselves never do.
//
// New handles are appended at the end, so the sequence is in allocation order,
// not sorted. Allocation therefore does not scan the sequence; it draws from
// the allocator's free set, which always yields the smallest unused handle.
type Sequence struct {
	handles []Handle
	alloc   allocator
}

// NewSequence creates an empty compacting registry.
func NewSequence() *Sequence {
	return &Sequence{
		handles: make([]Handle, 0, 16),
	}
}

// Add allocates the smallest unused handle and appends it at the end.
func (r *Sequence) Add() Handle {
	h := r.alloc.alloc()
	r.handles = append(r.handles, h)
	Logger().Debug("add handle", zapHandle(h), zapSlot(len(r.handles)-1))
	return h
}

// Lookup returns the slot index currently bound to h.
func (r *Sequence) Lookup(h Handle) (int, error) {
	for i, v := range r.handles {
		if v == h {
			return i, nil
		}
	}
	return -1, ErrHandleNotFound
}

// Remove retires h and closes the gap it leaves, returning the slot it held.
func (r *Sequence) Remove(h Handle) (int, error) {
	idx, err := r.Lookup(h)
	if err != nil {
		return -1, err
	}
	r.handles = slices.Delete(r.handles, idx, idx+1)
	r.alloc.release(h)
	Logger().Debug("remove handle", zapHandle(h), zapSlot(idx))
	return idx, nil
}

// Bind appends a specific handle at the end.
func (r *Sequence) Bind(h Handle) (int, error) {
	if !r.alloc.reserve(h) {
		return -1, ErrHandleInUse
	}
	r.handles = append(r.handles, h)
	return len(r.handles) - 1, nil
}

// Size returns how many handles are live.
func (r *Sequence) Size() int {
	return len(r.handles)
}

// Each visits live handles in slot order.
func (r *Sequence) Each(fn func(Handle, int) bool) {
	for i, h := range r.handles {
		if !fn(h, i) {
			return
		}
	}
}

// SequenceStore is the compacting Store paired with Sequence.
type SequenceStore[T any] struct {
	items []T
}

// NewSequenceStore creates an empty compacting store.
func NewSequenceStore[T any]() *SequenceStore[T] {
	return &SequenceStore[T]{
		items: make([]T, 0, 16),
	}
}

// CreateAt appends v. The slot must equal the current length.
func (s *SequenceStore[T]) CreateAt(slot int, v T) error {
	if slot != len(s.items) {
		return ErrSlotMismatch
	}
	s.items = append(s.items, v)
	return nil
}

// At returns the instance in slot.
func (s *SequenceStore[T]) At(slot int) T {
	return s.items[slot]
}

// RemoveAt erases the instance in slot and shifts later instances down.
func (s *SequenceStore[T]) RemoveAt(slot int) T {
	v := s.items[slot]
	s.items = slices.Delete(s.items, slot, slot+1)
	return v
}

// Len returns the number of stored instances.
func (s *SequenceStore[T]) Len() int {
	return len(s.items)
}
