package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/objref/dispatch"
)

func TestParseToken(t *testing.T) {
	tests := []struct {
		tok  string
		want dispatch.Value
	}{
		{"3", dispatch.Int(3)},
		{"-7", dispatch.Int(-7)},
		{"3.5", dispatch.Number(3.5)},
		{"1e3", dispatch.Number(1000)},
		{"inf", dispatch.Number(math.Inf(1))},
		{"f:2", dispatch.Number(2)},
		{"i:0x10", dispatch.Int(16)},
		{"u:5", dispatch.Uint(5)},
		{"s:12", dispatch.Text("12")},
		{"hello", dispatch.Text("hello")},
		{"a:b", dispatch.Text("a:b")},
	}
	for _, tt := range tests {
		t.Run(tt.tok, func(t *testing.T) {
			got, err := parseToken(tt.tok)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s (%s)", got, got.TypeName())
		})
	}
}

func TestParseToken_NaN(t *testing.T) {
	got, err := parseToken("nan")
	require.NoError(t, err)
	assert.Equal(t, dispatch.KindNumber, got.Kind())
	assert.True(t, math.IsNaN(got.Float()))
}

func TestParseToken_Errors(t *testing.T) {
	for _, tok := range []string{"f:x", "i:1.5", "u:-1"} {
		_, err := parseToken(tok)
		assert.Error(t, err, tok)
	}
}

func TestParseLine(t *testing.T) {
	kw, args, nout, err := parseLine("compute 0 4.5")
	require.NoError(t, err)
	assert.Equal(t, "compute", kw)
	require.Len(t, args, 2)
	assert.Equal(t, -1, nout)

	kw, args, nout, err = parseLine("count => 2")
	require.NoError(t, err)
	assert.Equal(t, "count", kw)
	assert.Empty(t, args)
	assert.Equal(t, 2, nout)

	kw, _, _, err = parseLine("   ")
	require.NoError(t, err)
	assert.Empty(t, kw)

	_, _, _, err = parseLine("count => x")
	assert.Error(t, err)
	_, _, _, err = parseLine("count => -1")
	assert.Error(t, err)
}

func TestOutputsFor(t *testing.T) {
	set := dispatch.DefaultSet()
	assert.Equal(t, 1, outputsFor(set, "create", -1))
	assert.Equal(t, 0, outputsFor(set, "Delete", -1))
	assert.Equal(t, 3, outputsFor(set, "create", 3))
	assert.Equal(t, 0, outputsFor(set, "nope", -1))
}

func TestConvertArg(t *testing.T) {
	v, err := convertArg(" 3 ", wit.U32{})
	require.NoError(t, err)
	assert.True(t, dispatch.Uint(3).Equal(v))

	v, err = convertArg("3", wit.F64{})
	require.NoError(t, err)
	assert.True(t, dispatch.Number(3).Equal(v))

	// Falls back to token rules so the dispatcher sees the mismatch.
	v, err = convertArg("abc", wit.F64{})
	require.NoError(t, err)
	assert.Equal(t, dispatch.KindText, v.Kind())
}
