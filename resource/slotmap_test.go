package resource

import (
	"errors"
	"testing"
)

func TestSlotMap_SlotEqualsHandle(t *testing.T) {
	r := NewSlotMap()
	for i := 0; i < 3; i++ {
		r.Add()
	}
	mustRemove(t, r, 0)

	// Removing 0 does not move the others.
	for _, h := range []Handle{1, 2} {
		slot, err := r.Lookup(h)
		if err != nil {
			t.Fatalf("Lookup(%d) failed: %v", h, err)
		}
		if slot != int(h) {
			t.Fatalf("Lookup(%d) = %d, want %d", h, slot, h)
		}
	}
}

func TestSlotMap_InvalidHandle(t *testing.T) {
	r := NewSlotMap()
	if _, err := r.Lookup(0); !errors.Is(err, ErrHandleNotFound) {
		t.Fatalf("Lookup on empty: err = %v", err)
	}
	if _, err := r.Lookup(MaxHandle); !errors.Is(err, ErrHandleNotFound) {
		t.Fatalf("Lookup(MaxHandle): err = %v", err)
	}
	if _, err := r.Remove(7); !errors.Is(err, ErrHandleNotFound) {
		t.Fatalf("Remove(7): err = %v", err)
	}
}

func TestSlotMap_Each(t *testing.T) {
	r := NewSlotMap()
	for i := 0; i < 4; i++ {
		r.Add()
	}
	mustRemove(t, r, 2)

	var seen []Handle
	r.Each(func(h Handle, slot int) bool {
		if slot != int(h) {
			t.Errorf("slot %d for handle %d", slot, h)
		}
		seen = append(seen, h)
		return true
	})
	if len(seen) != 3 || seen[0] != 0 || seen[1] != 1 || seen[2] != 3 {
		t.Fatalf("Each visited %v, want [0 1 3]", seen)
	}

	// Early termination
	count := 0
	r.Each(func(Handle, int) bool {
		count++
		return false
	})
	if count != 1 {
		t.Fatalf("Each after false visited %d, want 1", count)
	}
}

func TestSparseStore(t *testing.T) {
	s := NewSparseStore[int]()
	if err := s.CreateAt(2, 20); err != nil {
		t.Fatalf("CreateAt(2) failed: %v", err)
	}
	if err := s.CreateAt(2, 21); !errors.Is(err, ErrSlotMismatch) {
		t.Fatalf("CreateAt on occupied slot: err = %v", err)
	}
	if err := s.CreateAt(-1, 0); !errors.Is(err, ErrSlotMismatch) {
		t.Fatalf("CreateAt(-1): err = %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
	if got := s.At(2); got != 20 {
		t.Fatalf("At(2) = %d", got)
	}
	if got := s.RemoveAt(2); got != 20 {
		t.Fatalf("RemoveAt(2) = %d", got)
	}
	if s.Len() != 0 {
		t.Fatalf("Len() = %d after remove", s.Len())
	}

	defer func() {
		if recover() == nil {
			t.Fatal("At on vacant slot should panic")
		}
	}()
	s.At(2)
}

func TestSlotMap_RemoveAscendingThenTop(t *testing.T) {
	const n = 200_000
	r := NewSlotMap()
	for i := 0; i < n; i++ {
		r.Add()
	}
	for h := Handle(0); h < n-1; h++ {
		mustRemove(t, r, h)
	}
	// Retiring the top handle drops the high-water mark to zero in one pass.
	mustRemove(t, r, n-1)

	if r.alloc.next != 0 || r.alloc.free.len() != 0 || len(r.alloc.free.heap) != 0 {
		t.Fatalf("allocator not drained: next=%d free=%d heap=%d",
			r.alloc.next, r.alloc.free.len(), len(r.alloc.free.heap))
	}
	if h := r.Add(); h != 0 {
		t.Fatalf("Add() = %d, want 0", h)
	}
}

func TestAllocator_ClaimSkipsStaleEntries(t *testing.T) {
	var a allocator
	for i := 0; i < 5; i++ {
		a.alloc()
	}
	a.release(1)
	a.release(3)
	if !a.reserve(1) {
		t.Fatal("reserve(1) = false, want true")
	}
	a.release(1)
	a.release(1) // already free; no duplicate
	for _, want := range []Handle{1, 3, 5} {
		if got := a.alloc(); got != want {
			t.Fatalf("alloc() = %d, want %d", got, want)
		}
	}
}

func BenchmarkSlotMap_RemoveAscending(b *testing.B) {
	const n = 50_000
	for i := 0; i < b.N; i++ {
		r := NewSlotMap()
		for j := 0; j < n; j++ {
			r.Add()
		}
		for h := Handle(0); h < n; h++ {
			_, _ = r.Remove(h)
		}
	}
}
