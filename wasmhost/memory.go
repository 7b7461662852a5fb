package wasmhost

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/objref/dispatch"
	objerrors "github.com/wippyai/objref/errors"
)

// span checks that [ptr, ptr+n*size) lies inside memory.
func span(mem api.Memory, what string, ptr, n, size uint32) error {
	total := uint64(n) * uint64(size)
	if uint64(ptr)+total > uint64(mem.Size()) {
		return objerrors.OutOfBounds(what, ptr, uint32(min(total, uint64(^uint32(0)))))
	}
	return nil
}

func readString(mem api.Memory, what string, ptr, length uint32) (string, error) {
	buf, ok := mem.Read(ptr, length)
	if !ok {
		return "", objerrors.OutOfBounds(what, ptr, length)
	}
	return string(buf), nil
}

// readValues decodes n slots starting at ptr.
func readValues(mem api.Memory, ptr, n uint32) ([]dispatch.Value, error) {
	if err := span(mem, "arguments", ptr, n, SlotSize); err != nil {
		return nil, err
	}

	out := make([]dispatch.Value, 0, n)
	for i := range n {
		v, err := readValue(mem, ptr+i*SlotSize)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func readValue(mem api.Memory, at uint32) (dispatch.Value, error) {
	tag, _ := mem.ReadByte(at)
	switch tag {
	case TagNumber:
		f, _ := mem.ReadFloat64Le(at + 8)
		return dispatch.Number(f), nil
	case TagSigned:
		u, _ := mem.ReadUint64Le(at + 8)
		return dispatch.Int(int64(u)), nil
	case TagUnsigned:
		u, _ := mem.ReadUint64Le(at + 8)
		return dispatch.Uint(u), nil
	case TagText:
		p, _ := mem.ReadUint32Le(at + 8)
		n, _ := mem.ReadUint32Le(at + 12)
		s, err := readString(mem, "text argument", p, n)
		if err != nil {
			return dispatch.Value{}, err
		}
		return dispatch.Text(s), nil
	default:
		return dispatch.Value{}, objerrors.New(objerrors.PhaseBoundary, objerrors.KindInvalidArgument).
			Detail("unknown value tag %d at offset %d", tag, at).
			Value(tag).
			Build()
	}
}

// writeValues encodes vals into consecutive slots at ptr. Text payloads are
// copied into guest memory obtained from alloc.
func writeValues(mem api.Memory, alloc *guestAllocator, ptr uint32, vals []dispatch.Value) error {
	if err := span(mem, "outputs", ptr, uint32(len(vals)), SlotSize); err != nil {
		return err
	}

	for i, v := range vals {
		at := ptr + uint32(i)*SlotSize
		var slot [SlotSize]byte
		mem.Write(at, slot[:])

		switch v.Kind() {
		case dispatch.KindNumber:
			mem.WriteByte(at, TagNumber)
			mem.WriteFloat64Le(at+8, v.Float())
		case dispatch.KindInteger:
			if v.Unsigned() {
				u, _ := v.Uint64()
				mem.WriteByte(at, TagUnsigned)
				mem.WriteUint64Le(at+8, u)
			} else {
				n, _ := v.Int64()
				mem.WriteByte(at, TagSigned)
				mem.WriteUint64Le(at+8, uint64(n))
			}
		case dispatch.KindText:
			s := v.Str()
			p, err := alloc.Alloc(uint32(len(s)), 1)
			if err != nil {
				return objerrors.Wrap(objerrors.PhaseBoundary, objerrors.KindBoundary, err, "allocate text output")
			}
			if !mem.Write(p, []byte(s)) {
				return objerrors.OutOfBounds("text output", p, uint32(len(s)))
			}
			mem.WriteByte(at, TagText)
			mem.WriteUint32Le(at+8, p)
			mem.WriteUint32Le(at+12, uint32(len(s)))
		default:
			return objerrors.InvalidData(objerrors.PhaseBoundary, fmt.Sprintf("output %d holds no value", i))
		}
	}
	return nil
}

// guestAllocator calls the guest's cabi_realloc.
type guestAllocator struct {
	ctx      context.Context
	fn       api.Function
	stackBuf [4]uint64
}

func newGuestAllocator(ctx context.Context, mod api.Module) *guestAllocator {
	return &guestAllocator{ctx: ctx, fn: mod.ExportedFunction(CabiRealloc)}
}

func (a *guestAllocator) Alloc(size, align uint32) (uint32, error) {
	if a.fn == nil {
		return 0, fmt.Errorf("guest does not export %s", CabiRealloc)
	}
	a.stackBuf[0] = 0 // oldPtr
	a.stackBuf[1] = 0 // oldSize
	a.stackBuf[2] = uint64(align)
	a.stackBuf[3] = uint64(size)
	if err := a.fn.CallWithStack(a.ctx, a.stackBuf[:]); err != nil {
		return 0, err
	}
	return uint32(a.stackBuf[0]), nil
}
