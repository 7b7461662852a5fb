package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/objref/dispatch"
	objerrors "github.com/wippyai/objref/errors"
)

func quietEnv(t *testing.T) {
	t.Helper()
	t.Setenv("OBJREF_OTEL_ENDPOINT", "")
	t.Setenv("OBJREF_LOG_LEVEL", "fail")
}

func invoke(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), args, strings.NewReader(stdin), &out)
	return out.String(), err
}

func TestCall_PersistsAcrossInvocations(t *testing.T) {
	quietEnv(t)
	state := filepath.Join(t.TempDir(), "objs.db")

	out, err := invoke(t, "", "--state", state, "call", "create", "3.5")
	require.NoError(t, err)
	assert.Equal(t, "0u\n", out)

	out, err = invoke(t, "", "--state", state, "call", "New", "f:2")
	require.NoError(t, err)
	assert.Equal(t, "1u\n", out)

	out, err = invoke(t, "", "--state", state, "call", "compute", "0", "4.0")
	require.NoError(t, err)
	assert.Equal(t, "14\n", out)

	out, err = invoke(t, "", "--state", state, "call", "delete", "0")
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = invoke(t, "", "--state", state, "call", "getPreset", "0")
	assert.Equal(t, objerrors.KindHandleNotFound, objerrors.KindOf(err))

	out, err = invoke(t, "", "--state", state, "call", "count")
	require.NoError(t, err)
	assert.Equal(t, "1u\n", out)
}

func TestCall_NegativeArgument(t *testing.T) {
	quietEnv(t)
	state := filepath.Join(t.TempDir(), "objs.db")

	_, err := invoke(t, "", "--state", state, "call", "--", "create", "-1.5")
	require.NoError(t, err)
	out, err := invoke(t, "", "--state", state, "call", "getPreset", "0")
	require.NoError(t, err)
	assert.Equal(t, "-1.5\n", out)
}

func TestList(t *testing.T) {
	quietEnv(t)
	out, err := invoke(t, "", "--state", "", "list")
	require.NoError(t, err)
	assert.Equal(t, dispatch.DefaultSet().WIT("objref"), out)
}

func TestRepl_Lines(t *testing.T) {
	quietEnv(t)
	script := `
# comment
create 3.5
compute 0 4.0
count => 2
Frobnicate
delete 0
count
`
	out, err := invoke(t, script, "--state", "", "repl", "--plain")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "0u", lines[0])
	assert.Equal(t, "14", lines[1])
	assert.Contains(t, lines[2], "error [arity]")
	assert.Contains(t, lines[3], "error [unknown_command]")
	assert.Equal(t, "ok", lines[4])
	assert.Equal(t, "0u", lines[5])
}

func TestScenario(t *testing.T) {
	quietEnv(t)
	path := filepath.Join("..", "..", "scenario", "testdata", "end_to_end.hcl")
	out, err := invoke(t, "", "--state", "", "scenario", path)
	require.NoError(t, err)
	assert.Contains(t, out, "8 steps, 0 failed")
}

func TestSetup_RejectsBadLayout(t *testing.T) {
	quietEnv(t)
	t.Setenv("OBJREF_LAYOUT", "btree")
	_, err := invoke(t, "", "--state", "", "list")
	assert.Error(t, err)
}

func TestPicker_StaticCommand(t *testing.T) {
	s, err := dispatch.NewSession()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	p := newPicker(s)
	p.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	p.Update(cmd())
	assert.Equal(t, showOutcome, p.state)
	assert.NoError(t, p.err)
	assert.Equal(t, "0u", p.outcome)
	assert.Contains(t, p.View(), "count")

	p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, pickCommand, p.state)
}

func TestPicker_InstanceCommandAsksForHandle(t *testing.T) {
	s, err := dispatch.NewSession()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	_, err = s.Call(context.Background(), "create", 1, dispatch.Number(2))
	require.NoError(t, err)

	p := newPicker(s)
	p.cursor = 2 // compute
	p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, fillArgs, p.state)
	require.Len(t, p.fields, 2)
	assert.Equal(t, "handle", p.params[0].Name)

	p.fields[0].SetValue("0")
	p.fields[1].SetValue("5")
	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	p.Update(cmd())
	assert.Equal(t, "10", p.outcome)
}

func TestPicker_ReportsKind(t *testing.T) {
	s, err := dispatch.NewSession()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	p := newPicker(s)
	p.cursor = 3 // getPreset
	p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	p.fields[0].SetValue("4")
	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	p.Update(cmd())

	assert.Equal(t, objerrors.KindHandleNotFound, objerrors.KindOf(p.err))
	assert.Contains(t, p.View(), "[handle_not_found]")
}

func TestPicker_CommandUsesCapturedArguments(t *testing.T) {
	s, err := dispatch.NewSession()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	p := newPicker(s)
	p.Update(tea.KeyMsg{Type: tea.KeyEnter}) // create
	require.Equal(t, fillArgs, p.state)
	p.fields[0].SetValue("2.5")
	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	// The model moves on before the command runs.
	p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	p.Update(tea.KeyMsg{Type: tea.KeyDown})
	require.Nil(t, p.fields)

	p.Update(cmd())
	assert.Equal(t, "0u", p.outcome)
	out, err := s.Call(context.Background(), "getPreset", 1, dispatch.Int(0))
	require.NoError(t, err)
	assert.Equal(t, 2.5, out[0].Float())
}
