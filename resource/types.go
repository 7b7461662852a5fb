package resource

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrHandleNotFound = errors.New("handle not found")
	ErrHandleInUse    = errors.New("handle already live")
	ErrSlotMismatch   = errors.New("slot does not match registry")
	ErrClosed         = errors.New("resource table closed")
)

// Handle is a caller-visible opaque reference to a live instance.
// Handles start at 0 and the smallest unused value is always allocated next.
type Handle uint32

// MaxHandle is the largest representable handle.
const MaxHandle = Handle(math.MaxUint32)

func (h Handle) String() string {
	return fmt.Sprintf("#%d", uint32(h))
}

// Layout selects the Registry/Store pair backing a Table.
type Layout string

const (
	// LayoutSequence keeps handles and instances in two compacting,
	// index-parallel sequences. Slot indices shift on removal.
	LayoutSequence Layout = "sequence"

	// LayoutSlotMap binds each handle to the slot of the same number.
	// Slots never move; lookup and removal are O(1).
	LayoutSlotMap Layout = "slotmap"
)

// ParseLayout validates a layout name. The empty string selects LayoutSequence.
func ParseLayout(s string) (Layout, error) {
	switch Layout(s) {
	case "", LayoutSequence:
		return LayoutSequence, nil
	case LayoutSlotMap:
		return LayoutSlotMap, nil
	default:
		return "", fmt.Errorf("unknown layout %q (want %q or %q)", s, LayoutSequence, LayoutSlotMap)
	}
}

// Event types for resource lifecycle notifications.
type EventType uint8

const (
	EventCreated EventType = iota
	EventDropped
)

func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventDropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// Event represents a resource lifecycle event.
type Event struct {
	Value  any
	Handle Handle
	Slot   int
	Type   EventType
}

// Observer receives notifications about resource lifecycle events.
type Observer interface {
	OnResourceEvent(Event)
}

// Registry maps live handles to the slot index currently holding their instance.
type Registry interface {
	// Add allocates the smallest handle not currently live and binds it to a new slot.
	Add() Handle

	// Lookup returns the slot currently bound to h.
	Lookup(h Handle) (int, error)

	// Remove retires h and returns the slot it was bound to.
	Remove(h Handle) (int, error)

	// Bind makes a specific handle live, as Add would have, and returns its slot.
	// Used to rebuild a registry from persisted state.
	Bind(h Handle) (int, error)

	// Size returns the number of live handles.
	Size() int

	// Each visits live handles in slot order.
	Each(func(h Handle, slot int) bool)
}

// Store owns the instances addressed by a Registry's slot indices.
type Store[T any] interface {
	// CreateAt places v in slot. It must be called once per Registry.Add or Bind,
	// with the slot that call produced.
	CreateAt(slot int, v T) error

	// At returns the instance in slot. The slot must come from a Registry call
	// made in the same operation; out-of-range slots panic.
	At(slot int) T

	// RemoveAt erases and returns the instance in slot. It must be called once
	// per Registry.Remove, with the slot that call returned.
	RemoveAt(slot int) T

	// Len returns the number of stored instances.
	Len() int
}

// Dropper is optionally implemented by instances that need cleanup.
type Dropper interface {
	Drop()
}
