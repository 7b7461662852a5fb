package dispatch

import (
	"fmt"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/objref/object"
	"github.com/wippyai/objref/resource"
)

// Scope says whether a command addresses an instance.
type Scope uint8

const (
	// Static commands take no handle.
	Static Scope = iota
	// Instance commands take a handle as their first argument.
	Instance
)

func (s Scope) String() string {
	if s == Instance {
		return "instance"
	}
	return "static"
}

// Param is a named, typed argument or result.
type Param struct {
	Type wit.Type
	Name string
}

// Handler executes a command whose inputs have already been validated.
type Handler func(x *Exec) ([]Value, error)

// Command is one row of the command table: its contract and its handler.
type Command struct {
	Run     Handler
	Name    string
	Aliases []string
	Params  []Param
	Results []Param
	Scope   Scope
}

// Outputs returns the number of values the command produces.
func (c *Command) Outputs() int {
	return len(c.Results)
}

// Exec is the execution context handed to a Handler.
type Exec struct {
	table     *resource.Table[object.Object]
	construct object.Constructor
	Command   *Command
	Args      []Value
	Slot      int
	Handle    resource.Handle
}

// Instance returns the target of an instance command.
func (x *Exec) Instance() object.Object {
	return x.table.At(x.Slot)
}

// Create allocates a handle and binds a newly constructed instance to it.
func (x *Exec) Create(preset float64) (resource.Handle, error) {
	return x.table.Insert(func() (object.Object, error) {
		return x.construct(preset)
	})
}

// Delete retires the target handle and destroys its instance.
func (x *Exec) Delete() error {
	_, err := x.table.Remove(x.Handle)
	return err
}

// Count returns the number of live handles.
func (x *Exec) Count() int {
	return x.table.Len()
}

// Set is an immutable command table keyed by keyword and alias.
type Set struct {
	byName map[string]*Command
	order  []*Command
}

// NewSet builds a table. Names and aliases must be unique and non-empty,
// and every command needs a handler.
func NewSet(cmds ...Command) (*Set, error) {
	s := &Set{byName: make(map[string]*Command, len(cmds)*2)}
	for i := range cmds {
		c := cmds[i]
		if c.Name == "" {
			return nil, fmt.Errorf("command %d: empty name", i)
		}
		if c.Run == nil {
			return nil, fmt.Errorf("command %q: no handler", c.Name)
		}
		cp := &c
		for _, key := range append([]string{c.Name}, c.Aliases...) {
			if key == "" {
				return nil, fmt.Errorf("command %q: empty alias", c.Name)
			}
			if _, dup := s.byName[key]; dup {
				return nil, fmt.Errorf("command %q: keyword %q already registered", c.Name, key)
			}
			s.byName[key] = cp
		}
		s.order = append(s.order, cp)
	}
	return s, nil
}

// Lookup finds a command by keyword or alias.
func (s *Set) Lookup(keyword string) (*Command, bool) {
	c, ok := s.byName[keyword]
	return c, ok
}

// Commands returns the commands in registration order.
func (s *Set) Commands() []*Command {
	out := make([]*Command, len(s.order))
	copy(out, s.order)
	return out
}

// DefaultCommands returns the built-in command table. Each command also
// answers to its legacy PascalCase keyword.
func DefaultCommands() []Command {
	return []Command{
		{
			Name:    "create",
			Aliases: []string{"New"},
			Scope:   Static,
			Params:  []Param{{Name: "preset", Type: wit.F64{}}},
			Results: []Param{{Name: "handle", Type: wit.U32{}}},
			Run:     runCreate,
		},
		{
			Name:    "count",
			Aliases: []string{"GetNumberOfHandles"},
			Scope:   Static,
			Results: []Param{{Name: "count", Type: wit.U64{}}},
			Run:     runCount,
		},
		{
			Name:    "compute",
			Aliases: []string{"Compute"},
			Scope:   Instance,
			Params:  []Param{{Name: "factor", Type: wit.F64{}}},
			Results: []Param{{Name: "result", Type: wit.F64{}}},
			Run:     runCompute,
		},
		{
			Name:    "getPreset",
			Aliases: []string{"GetPreset"},
			Scope:   Instance,
			Results: []Param{{Name: "preset", Type: wit.F64{}}},
			Run:     runGetPreset,
		},
		{
			Name:    "delete",
			Aliases: []string{"Delete"},
			Scope:   Instance,
			Run:     runDelete,
		},
	}
}

// DefaultSet returns a Set holding DefaultCommands.
func DefaultSet() *Set {
	s, err := NewSet(DefaultCommands()...)
	if err != nil {
		panic(err)
	}
	return s
}

func runCreate(x *Exec) ([]Value, error) {
	h, err := x.Create(x.Args[0].Float())
	if err != nil {
		return nil, err
	}
	return []Value{Uint(uint64(h))}, nil
}

func runCount(x *Exec) ([]Value, error) {
	return []Value{Uint(uint64(x.Count()))}, nil
}

func runCompute(x *Exec) ([]Value, error) {
	return []Value{Number(x.Instance().Compute(x.Args[0].Float()))}, nil
}

func runGetPreset(x *Exec) ([]Value, error) {
	return []Value{Number(x.Instance().Preset())}, nil
}

func runDelete(x *Exec) ([]Value, error) {
	return nil, x.Delete()
}
