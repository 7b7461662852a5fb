// Package resource provides the handle registry and object store behind objref.
//
// A caller on the far side of a boundary never sees an address. It holds a
// Handle: a small non-negative integer, unique among live handles, reused
// after its instance is destroyed. The Registry maps each live handle to the
// slot index where its instance currently lives; the Store owns the instances
// at those slots. The two are kept in lock-step by Table.
//
// # Layouts
//
// Two Registry/Store pairs are provided:
//
//	LayoutSequence  Sequence + SequenceStore
//	                index-parallel compacting sequences; removal shifts
//	                later slots down; lookup is a linear scan
//
//	LayoutSlotMap   SlotMap + SparseStore
//	                slot == handle; retired slots recycled; O(1) lookup
//
// Both allocate the smallest handle that is not live, so starting from an
// empty table n inserts yield handles 0..n-1 and a freed handle is the next
// one handed out.
//
// # Table
//
//	table, _ := resource.NewTable[*Widget](resource.LayoutSequence)
//
//	h, err := table.Insert(func() (*Widget, error) { return NewWidget(), nil })
//	w, err := table.Get(h)
//	w, err = table.Remove(h)
//
// Insert allocates the handle before constructing the instance and retires it
// again if construction fails. Remove retires the handle before destroying the
// instance. Instances implementing Dropper are dropped on removal.
//
// # Observers
//
// Register observers to track lifecycle events:
//
//	table.Subscribe(myObserver) // receives EventCreated / EventDropped
//
// # Concurrency
//
// Nothing in this package locks. A Table and its Registry/Store must be
// mutated as one unit per operation; the dispatch package serializes whole
// commands with a single mutex.
package resource
