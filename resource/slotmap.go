package resource

// SlotMap is the non-compacting Registry. Handle h always lives in slot h;
// retired slots are recycled smallest-first, so handles stay small and are
// eagerly reused exactly as with Sequence. Lookup and removal are O(1).
//
// Validity of a handle is tracked per slot. Stale handles are not
// distinguished from reused ones: reuse after retirement is part of the
// handle contract.
type SlotMap struct {
	live  []bool
	alloc allocator
	count int
}

// NewSlotMap creates an empty slot map registry.
func NewSlotMap() *SlotMap {
	return &SlotMap{
		live: make([]bool, 0, 64),
	}
}

// Add allocates the smallest unused handle; its slot has the same number.
func (r *SlotMap) Add() Handle {
	h := r.alloc.alloc()
	r.mark(h)
	Logger().Debug("add handle", zapHandle(h), zapSlot(int(h)))
	return h
}

// Lookup returns the slot bound to h.
func (r *SlotMap) Lookup(h Handle) (int, error) {
	if int(h) >= len(r.live) || !r.live[h] {
		return -1, ErrHandleNotFound
	}
	return int(h), nil
}

// Remove retires h and returns its slot. Other slots are untouched.
func (r *SlotMap) Remove(h Handle) (int, error) {
	slot, err := r.Lookup(h)
	if err != nil {
		return -1, err
	}
	r.live[h] = false
	r.count--
	r.alloc.release(h)
	Logger().Debug("remove handle", zapHandle(h), zapSlot(slot))
	return slot, nil
}

// Bind makes h live in slot h.
func (r *SlotMap) Bind(h Handle) (int, error) {
	if !r.alloc.reserve(h) {
		return -1, ErrHandleInUse
	}
	r.mark(h)
	return int(h), nil
}

// Size returns how many handles are live.
func (r *SlotMap) Size() int {
	return r.count
}

// Each visits live handles in ascending order, which is also slot order.
func (r *SlotMap) Each(fn func(Handle, int) bool) {
	for i, ok := range r.live {
		if ok && !fn(Handle(i), i) {
			return
		}
	}
}

func (r *SlotMap) mark(h Handle) {
	for int(h) >= len(r.live) {
		r.live = append(r.live, false)
	}
	r.live[h] = true
	r.count++
}

// SparseStore is the Store paired with SlotMap. Slots never move.
type SparseStore[T any] struct {
	entries []sparseEntry[T]
	count   int
}

type sparseEntry[T any] struct {
	value T
	valid bool
}

// NewSparseStore creates an empty sparse store.
func NewSparseStore[T any]() *SparseStore[T] {
	return &SparseStore[T]{
		entries: make([]sparseEntry[T], 0, 64),
	}
}

// CreateAt places v in slot. The slot must be vacant.
func (s *SparseStore[T]) CreateAt(slot int, v T) error {
	if slot < 0 {
		return ErrSlotMismatch
	}
	for slot >= len(s.entries) {
		s.entries = append(s.entries, sparseEntry[T]{})
	}
	if s.entries[slot].valid {
		return ErrSlotMismatch
	}
	s.entries[slot] = sparseEntry[T]{value: v, valid: true}
	s.count++
	return nil
}

// At returns the instance in slot. Vacant or out-of-range slots panic.
func (s *SparseStore[T]) At(slot int) T {
	e := s.entries[slot]
	if !e.valid {
		panic("resource: access to vacant slot")
	}
	return e.value
}

// RemoveAt vacates slot and returns its instance.
func (s *SparseStore[T]) RemoveAt(slot int) T {
	e := &s.entries[slot]
	if !e.valid {
		panic("resource: remove of vacant slot")
	}
	v := e.value
	*e = sparseEntry[T]{}
	s.count--
	return v
}

// Len returns the number of stored instances.
func (s *SparseStore[T]) Len() int {
	return s.count
}
