package resource

import (
	"fmt"
)

// Table pairs a Registry with a Store and keeps them in parity: the registry's
// live handle count equals the store's instance count, and the slot a handle
// resolves to always holds that handle's instance.
//
// Table is not safe for concurrent use. Callers serialize whole operations.
type Table[T any] struct {
	reg       Registry
	store     Store[T]
	observers []Observer
	layout    Layout
	closed    bool
}

// NewTable creates a table with the given layout.
func NewTable[T any](layout Layout) (*Table[T], error) {
	switch layout {
	case "", LayoutSequence:
		return &Table[T]{reg: NewSequence(), store: NewSequenceStore[T](), layout: LayoutSequence}, nil
	case LayoutSlotMap:
		return &Table[T]{reg: NewSlotMap(), store: NewSparseStore[T](), layout: LayoutSlotMap}, nil
	default:
		return nil, fmt.Errorf("unknown layout %q", layout)
	}
}

// Layout reports the table's layout.
func (t *Table[T]) Layout() Layout {
	return t.layout
}

// Insert allocates a handle, constructs its instance and stores it, in that
// order. If construction or placement fails the handle is retired again and
// the table is left as it was.
func (t *Table[T]) Insert(construct func() (T, error)) (Handle, error) {
	if t.closed {
		return 0, ErrClosed
	}

	h := t.reg.Add()
	slot, err := t.reg.Lookup(h)
	if err != nil {
		t.rollback(h)
		return 0, err
	}

	v, err := construct()
	if err != nil {
		t.rollback(h)
		return 0, err
	}

	if err := t.store.CreateAt(slot, v); err != nil {
		t.rollback(h)
		return 0, err
	}

	t.notify(Event{Type: EventCreated, Handle: h, Slot: slot, Value: v})
	return h, nil
}

// Bind stores v under a specific handle. Used to rebuild persisted state.
func (t *Table[T]) Bind(h Handle, v T) error {
	if t.closed {
		return ErrClosed
	}

	slot, err := t.reg.Bind(h)
	if err != nil {
		return err
	}
	if err := t.store.CreateAt(slot, v); err != nil {
		t.rollback(h)
		return err
	}

	t.notify(Event{Type: EventCreated, Handle: h, Slot: slot, Value: v})
	return nil
}

// Lookup resolves h to its current slot.
func (t *Table[T]) Lookup(h Handle) (int, error) {
	return t.reg.Lookup(h)
}

// At returns the instance in a slot obtained from Lookup in the same operation.
func (t *Table[T]) At(slot int) T {
	return t.store.At(slot)
}

// Get resolves h and returns its instance.
func (t *Table[T]) Get(h Handle) (T, error) {
	slot, err := t.reg.Lookup(h)
	if err != nil {
		var zero T
		return zero, err
	}
	return t.store.At(slot), nil
}

// Remove retires h and destroys its instance, in that order.
func (t *Table[T]) Remove(h Handle) (T, error) {
	slot, err := t.reg.Remove(h)
	if err != nil {
		var zero T
		return zero, err
	}

	v := t.store.RemoveAt(slot)
	if d, ok := any(v).(Dropper); ok {
		d.Drop()
	}

	t.notify(Event{Type: EventDropped, Handle: h, Slot: slot, Value: v})
	return v, nil
}

// Len returns the number of live handles.
func (t *Table[T]) Len() int {
	return t.reg.Size()
}

// Each visits live handles and their instances in slot order.
func (t *Table[T]) Each(fn func(Handle, T) bool) {
	t.reg.Each(func(h Handle, slot int) bool {
		return fn(h, t.store.At(slot))
	})
}

// Handles returns the live handles in slot order.
func (t *Table[T]) Handles() []Handle {
	out := make([]Handle, 0, t.reg.Size())
	t.reg.Each(func(h Handle, _ int) bool {
		out = append(out, h)
		return true
	})
	return out
}

// CheckParity reports a broken registry/store pairing.
func (t *Table[T]) CheckParity() error {
	if n, m := t.reg.Size(), t.store.Len(); n != m {
		return fmt.Errorf("parity violated: %d handles, %d instances", n, m)
	}
	var err error
	t.reg.Each(func(h Handle, slot int) bool {
		got, lerr := t.reg.Lookup(h)
		if lerr != nil || got != slot {
			err = fmt.Errorf("parity violated: handle %d at slot %d resolves to %d", h, slot, got)
			return false
		}
		return true
	})
	return err
}

// Subscribe adds an observer for lifecycle events.
func (t *Table[T]) Subscribe(o Observer) {
	t.observers = append(t.observers, o)
}

// Unsubscribe removes an observer.
func (t *Table[T]) Unsubscribe(o Observer) {
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

// Clear drops all instances.
func (t *Table[T]) Clear() {
	for _, h := range t.Handles() {
		_, _ = t.Remove(h)
	}
}

// Close drops all instances and stops accepting new ones.
func (t *Table[T]) Close() error {
	if t.closed {
		return nil
	}
	t.Clear()
	t.closed = true
	return nil
}

func (t *Table[T]) rollback(h Handle) {
	if _, err := t.reg.Remove(h); err != nil {
		Logger().Error("rollback failed", zapHandle(h))
	}
}

func (t *Table[T]) notify(e Event) {
	for _, o := range t.observers {
		o.OnResourceEvent(e)
	}
}
