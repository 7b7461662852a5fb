package dispatch

import (
	"math"
	"testing"

	"go.bytecodealliance.org/wit"
)

func TestValue_Accessors(t *testing.T) {
	if v := Number(2.5); v.Kind() != KindNumber || v.Float() != 2.5 || v.TypeName() != "f64" {
		t.Errorf("Number: %v %v %v", v.Kind(), v.Float(), v.TypeName())
	}

	i := Int(-4)
	if n, ok := i.Int64(); !ok || n != -4 {
		t.Errorf("Int64 = %d, %v", n, ok)
	}
	if _, ok := i.Uint64(); ok {
		t.Error("negative Int converted to Uint64")
	}
	if i.TypeName() != "s64" || i.Unsigned() {
		t.Errorf("Int type %s", i.TypeName())
	}

	u := Uint(math.MaxUint64)
	if _, ok := u.Int64(); ok {
		t.Error("large Uint converted to Int64")
	}
	if n, ok := u.Uint64(); !ok || n != math.MaxUint64 {
		t.Errorf("Uint64 = %d, %v", n, ok)
	}
	if u.TypeName() != "u64" {
		t.Errorf("Uint type %s", u.TypeName())
	}

	if v := Text("hi"); v.Str() != "hi" || v.Float() != 0 || v.String() != `"hi"` {
		t.Errorf("Text: %q %v", v.Str(), v.Float())
	}

	var zero Value
	if zero.IsValid() || zero.TypeName() != "invalid" || zero.WitType() != nil {
		t.Error("zero Value should be invalid")
	}
}

func TestValue_Equal(t *testing.T) {
	if !Number(math.NaN()).Equal(Number(math.NaN())) {
		t.Error("NaN should equal itself bitwise")
	}
	if Number(0).Equal(Number(math.Copysign(0, -1))) {
		t.Error("+0 and -0 differ bitwise")
	}
	if Int(1).Equal(Uint(1)) {
		t.Error("signedness is part of the value")
	}
	if Int(1).Equal(Number(1)) {
		t.Error("kinds differ")
	}
}

func TestValue_Handle(t *testing.T) {
	tests := []struct {
		v    Value
		want uint32
		ok   bool
	}{
		{Int(0), 0, true},
		{Uint(7), 7, true},
		{Int(-1), 0, false},
		{Uint(math.MaxUint32), math.MaxUint32, true},
		{Uint(math.MaxUint32 + 1), 0, false},
		{Number(1), 0, false},
		{Text("1"), 0, false},
	}
	for _, tt := range tests {
		h, ok := tt.v.handle()
		if ok != tt.ok || (ok && uint32(h) != tt.want) {
			t.Errorf("%v.handle() = %d, %v", tt.v, h, ok)
		}
	}
}

func TestAccepts(t *testing.T) {
	tests := []struct {
		typ  wit.Type
		v    Value
		want bool
	}{
		{wit.F64{}, Number(1), true},
		{wit.F32{}, Number(1), true},
		{wit.F64{}, Int(1), false},
		{wit.U32{}, Int(1), true},
		{wit.S8{}, Uint(1), true},
		{wit.U64{}, Number(1), false},
		{wit.String{}, Text(""), true},
		{wit.String{}, Int(0), false},
		{wit.Bool{}, Int(1), false},
	}
	for _, tt := range tests {
		if got := Accepts(tt.typ, tt.v); got != tt.want {
			t.Errorf("Accepts(%s, %v) = %v", TypeName(tt.typ), tt.v, got)
		}
	}
}
