package wasmhost

import (
	objerrors "github.com/wippyai/objref/errors"
)

// Host module and export names.
const (
	ModuleName       = "objref"
	FuncDispatch     = "dispatch"
	FuncErrorMessage = "error_message"
	CabiRealloc      = "cabi_realloc"
)

// SlotSize is the size of one value in guest memory.
const SlotSize = 16

// Value tags stored in byte 0 of a slot.
const (
	TagNumber   byte = 1
	TagSigned   byte = 2
	TagUnsigned byte = 3
	TagText     byte = 4
)

// Status is the i32 returned by dispatch.
type Status uint32

const (
	StatusOK Status = iota
	StatusUnknownCommand
	StatusInvalidArgument
	StatusHandleNotFound
	StatusArity
	StatusTypeMismatch
	StatusExecution
	StatusBoundary
)

var statusByKind = map[objerrors.Kind]Status{
	objerrors.KindUnknownCommand:  StatusUnknownCommand,
	objerrors.KindInvalidArgument: StatusInvalidArgument,
	objerrors.KindHandleNotFound:  StatusHandleNotFound,
	objerrors.KindArity:           StatusArity,
	objerrors.KindTypeMismatch:    StatusTypeMismatch,
	objerrors.KindExecution:       StatusExecution,
	objerrors.KindBoundary:        StatusBoundary,
	objerrors.KindInvalidData:     StatusInvalidArgument,
}

// StatusOf maps an error to the status reported to the guest.
func StatusOf(err error) Status {
	if err == nil {
		return StatusOK
	}
	if s, ok := statusByKind[objerrors.KindOf(err)]; ok {
		return s
	}
	return StatusExecution
}

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusUnknownCommand:
		return string(objerrors.KindUnknownCommand)
	case StatusInvalidArgument:
		return string(objerrors.KindInvalidArgument)
	case StatusHandleNotFound:
		return string(objerrors.KindHandleNotFound)
	case StatusArity:
		return string(objerrors.KindArity)
	case StatusTypeMismatch:
		return string(objerrors.KindTypeMismatch)
	case StatusExecution:
		return string(objerrors.KindExecution)
	case StatusBoundary:
		return string(objerrors.KindBoundary)
	default:
		return "unknown"
	}
}
