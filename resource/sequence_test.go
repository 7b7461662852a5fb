package resource

import (
	"errors"
	"testing"
)

func registries() map[string]func() Registry {
	return map[string]func() Registry{
		"sequence": func() Registry { return NewSequence() },
		"slotmap":  func() Registry { return NewSlotMap() },
	}
}

func TestRegistry_SmallestUnused(t *testing.T) {
	for name, newReg := range registries() {
		t.Run(name, func(t *testing.T) {
			r := newReg()
			for want := Handle(0); want < 5; want++ {
				if got := r.Add(); got != want {
					t.Fatalf("Add() = %d, want %d", got, want)
				}
			}
			if r.Size() != 5 {
				t.Fatalf("Size() = %d, want 5", r.Size())
			}
		})
	}
}

func TestRegistry_ReuseAfterRemove(t *testing.T) {
	for name, newReg := range registries() {
		t.Run(name, func(t *testing.T) {
			r := newReg()
			first := r.Add()
			r.Add()
			if _, err := r.Remove(first); err != nil {
				t.Fatalf("Remove failed: %v", err)
			}
			if got := r.Add(); got != first {
				t.Fatalf("Add() after remove = %d, want reused %d", got, first)
			}
		})
	}
}

func TestRegistry_LookupAfterRemove(t *testing.T) {
	for name, newReg := range registries() {
		t.Run(name, func(t *testing.T) {
			r := newReg()
			h := r.Add()
			if _, err := r.Remove(h); err != nil {
				t.Fatalf("Remove failed: %v", err)
			}
			if _, err := r.Lookup(h); !errors.Is(err, ErrHandleNotFound) {
				t.Fatalf("Lookup after remove: err = %v, want ErrHandleNotFound", err)
			}
			if _, err := r.Remove(h); !errors.Is(err, ErrHandleNotFound) {
				t.Fatalf("second Remove: err = %v, want ErrHandleNotFound", err)
			}
		})
	}
}

// Interleaved removals leave the live sequence out of ascending order; the
// next allocation must still be the smallest unused handle.
func TestRegistry_UnsortedInterleaving(t *testing.T) {
	for name, newReg := range registries() {
		t.Run(name, func(t *testing.T) {
			r := newReg()
			for i := 0; i < 4; i++ {
				r.Add() // 0 1 2 3
			}
			mustRemove(t, r, 1)
			mustRemove(t, r, 0)
			if got := r.Add(); got != 0 { // live: 2 3 0
				t.Fatalf("Add() = %d, want 0", got)
			}
			if got := r.Add(); got != 1 { // live: 2 3 0 1
				t.Fatalf("Add() = %d, want 1", got)
			}
			if got := r.Add(); got != 4 {
				t.Fatalf("Add() = %d, want 4", got)
			}
			mustRemove(t, r, 4)
			mustRemove(t, r, 3)
			if got := r.Add(); got != 3 {
				t.Fatalf("Add() = %d, want 3", got)
			}
		})
	}
}

func TestRegistry_Bind(t *testing.T) {
	for name, newReg := range registries() {
		t.Run(name, func(t *testing.T) {
			r := newReg()
			if _, err := r.Bind(3); err != nil {
				t.Fatalf("Bind(3) failed: %v", err)
			}
			if _, err := r.Bind(3); !errors.Is(err, ErrHandleInUse) {
				t.Fatalf("Bind(3) twice: err = %v, want ErrHandleInUse", err)
			}
			if _, err := r.Bind(1); err != nil {
				t.Fatalf("Bind(1) failed: %v", err)
			}
			for _, want := range []Handle{0, 2, 4} {
				if got := r.Add(); got != want {
					t.Fatalf("Add() = %d, want %d", got, want)
				}
			}
			if r.Size() != 5 {
				t.Fatalf("Size() = %d, want 5", r.Size())
			}
		})
	}
}

func TestSequence_CompactsOnRemove(t *testing.T) {
	r := NewSequence()
	for i := 0; i < 3; i++ {
		r.Add()
	}

	slot, err := r.Remove(1)
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if slot != 1 {
		t.Fatalf("Remove returned slot %d, want 1", slot)
	}

	// Handle 2 moved down into slot 1.
	if got, _ := r.Lookup(2); got != 1 {
		t.Fatalf("Lookup(2) = %d, want 1", got)
	}

	// A reused handle is appended at the end, not at its sorted position.
	r.Add()
	if got, _ := r.Lookup(1); got != 2 {
		t.Fatalf("Lookup(1) = %d, want 2", got)
	}

	var order []Handle
	r.Each(func(h Handle, _ int) bool {
		order = append(order, h)
		return true
	})
	want := []Handle{0, 2, 1}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("Each order = %v, want %v", order, want)
		}
	}
}

func TestSequenceStore(t *testing.T) {
	s := NewSequenceStore[string]()
	if err := s.CreateAt(0, "a"); err != nil {
		t.Fatalf("CreateAt(0) failed: %v", err)
	}
	if err := s.CreateAt(5, "x"); !errors.Is(err, ErrSlotMismatch) {
		t.Fatalf("CreateAt(5): err = %v, want ErrSlotMismatch", err)
	}
	_ = s.CreateAt(1, "b")
	_ = s.CreateAt(2, "c")

	if got := s.RemoveAt(0); got != "a" {
		t.Fatalf("RemoveAt(0) = %q", got)
	}
	if s.At(0) != "b" || s.At(1) != "c" {
		t.Fatalf("store did not compact: %q %q", s.At(0), s.At(1))
	}
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
}

func TestAllocator_TrimsHighWaterMark(t *testing.T) {
	var a allocator
	for i := 0; i < 4; i++ {
		a.alloc()
	}
	a.release(1)
	a.release(2)
	a.release(3)
	if a.next != 1 {
		t.Fatalf("next = %d, want 1", a.next)
	}
	if n := a.free.len(); n != 0 {
		t.Fatalf("free holds %d handles, want 0", n)
	}
	if got := a.alloc(); got != 1 {
		t.Fatalf("alloc() = %d, want 1", got)
	}
}

func mustRemove(t *testing.T, r Registry, h Handle) {
	t.Helper()
	if _, err := r.Remove(h); err != nil {
		t.Fatalf("Remove(%d) failed: %v", h, err)
	}
}
