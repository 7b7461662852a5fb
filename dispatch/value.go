package dispatch

import (
	"math"
	"strconv"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/objref/resource"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindNumber
	KindInteger
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindInteger:
		return "integer"
	case KindText:
		return "text"
	default:
		return "invalid"
	}
}

// Value is a scalar crossing the boundary: a 64-bit float, a signed or
// unsigned integer of any width widened to 64 bits, or a string.
// The zero Value is invalid.
type Value struct {
	text     string
	bits     uint64
	kind     Kind
	unsigned bool
}

// Number returns a floating point Value.
func Number(f float64) Value {
	return Value{kind: KindNumber, bits: math.Float64bits(f)}
}

// Int returns a signed integer Value.
func Int(i int64) Value {
	return Value{kind: KindInteger, bits: uint64(i)}
}

// Uint returns an unsigned integer Value.
func Uint(u uint64) Value {
	return Value{kind: KindInteger, bits: u, unsigned: true}
}

// Text returns a string Value.
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether v holds a variant.
func (v Value) IsValid() bool { return v.kind != KindInvalid }

// Unsigned reports whether an integer Value is unsigned.
func (v Value) Unsigned() bool { return v.kind == KindInteger && v.unsigned }

// Float returns the payload of a Number, or 0.
func (v Value) Float() float64 {
	if v.kind != KindNumber {
		return 0
	}
	return math.Float64frombits(v.bits)
}

// Int64 returns an integer payload if it fits in int64.
func (v Value) Int64() (int64, bool) {
	if v.kind != KindInteger {
		return 0, false
	}
	if v.unsigned && v.bits > math.MaxInt64 {
		return 0, false
	}
	return int64(v.bits), true
}

// Uint64 returns an integer payload if it is non-negative.
func (v Value) Uint64() (uint64, bool) {
	if v.kind != KindInteger {
		return 0, false
	}
	if !v.unsigned && int64(v.bits) < 0 {
		return 0, false
	}
	return v.bits, true
}

// Str returns the payload of a Text value, or "".
func (v Value) Str() string {
	if v.kind != KindText {
		return ""
	}
	return v.text
}

// Equal reports whether v and o hold the same variant and payload.
// Numbers compare by bit pattern.
func (v Value) Equal(o Value) bool {
	return v.kind == o.kind && v.unsigned == o.unsigned && v.bits == o.bits && v.text == o.text
}

// WitType returns the WIT type describing v's variant.
func (v Value) WitType() wit.Type {
	switch v.kind {
	case KindNumber:
		return wit.F64{}
	case KindInteger:
		if v.unsigned {
			return wit.U64{}
		}
		return wit.S64{}
	case KindText:
		return wit.String{}
	default:
		return nil
	}
}

// TypeName names v's variant as a WIT type.
func (v Value) TypeName() string {
	if v.kind == KindInvalid {
		return "invalid"
	}
	return TypeName(v.WitType())
}

func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64)
	case KindInteger:
		if v.unsigned {
			return strconv.FormatUint(v.bits, 10) + "u"
		}
		return strconv.FormatInt(int64(v.bits), 10)
	case KindText:
		return strconv.Quote(v.text)
	default:
		return "<invalid>"
	}
}

// handle converts an integer Value to a Handle if it is in range.
func (v Value) handle() (resource.Handle, bool) {
	u, ok := v.Uint64()
	if !ok || u > uint64(resource.MaxHandle) {
		return 0, false
	}
	return resource.Handle(u), true
}
