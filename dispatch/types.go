package dispatch

import (
	"fmt"

	"go.bytecodealliance.org/wit"
)

// Accepts reports whether v may be passed where t is declared.
// Floating types take Numbers, integer types take Integers of either
// signedness, string takes Text.
func Accepts(t wit.Type, v Value) bool {
	switch t.(type) {
	case wit.F32, wit.F64:
		return v.Kind() == KindNumber
	case wit.S8, wit.S16, wit.S32, wit.S64, wit.U8, wit.U16, wit.U32, wit.U64:
		return v.Kind() == KindInteger
	case wit.String:
		return v.Kind() == KindText
	default:
		return false
	}
}

// TypeName renders a WIT primitive type name.
func TypeName(t wit.Type) string {
	switch v := t.(type) {
	case wit.Bool:
		return "bool"
	case wit.U8:
		return "u8"
	case wit.S8:
		return "s8"
	case wit.U16:
		return "u16"
	case wit.S16:
		return "s16"
	case wit.U32:
		return "u32"
	case wit.S32:
		return "s32"
	case wit.U64:
		return "u64"
	case wit.S64:
		return "s64"
	case wit.F32:
		return "f32"
	case wit.F64:
		return "f64"
	case wit.Char:
		return "char"
	case wit.String:
		return "string"
	case *wit.TypeDef:
		if v.Name != nil {
			return *v.Name
		}
		return "typedef"
	case nil:
		return "none"
	default:
		return fmt.Sprintf("%T", t)
	}
}
