// Package scenario runs scripted command sequences written in HCL against a
// dispatch session.
//
// A scenario file is a list of call blocks evaluated in order:
//
//	layout = "slotmap" # optional
//
//	call "create" {
//	  args   = [3.5]
//	  expect = [0]
//	}
//	call "compute" {
//	  args   = [handle(0), 4.0]
//	  expect = [14.0]
//	}
//	call "getPreset" {
//	  args  = [handle(9)]
//	  error = "handle_not_found"
//	}
//
// HCL numbers become Number values. handle(n) and integer(n) produce signed
// Integer values and unsigned(n) an unsigned one. Strings become Text.
// outputs defaults to the length of expect, or to the command's declared
// output count when expect is absent.
package scenario

import (
	"fmt"
	"math/big"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/wippyai/objref/dispatch"
	objerrors "github.com/wippyai/objref/errors"
	"github.com/wippyai/objref/resource"
)

// Scenario is a decoded scenario file.
type Scenario struct {
	Filename string
	Layout   resource.Layout
	Steps    []Step
}

// Step is one scripted call and its expectation.
type Step struct {
	Range   hcl.Range
	Keyword string
	Error   objerrors.Kind
	Args    []dispatch.Value
	Expect  []dispatch.Value

	// Outputs is the requested output count, or -1 to use the command's own.
	Outputs int
}

type hclFile struct {
	Layout *string    `hcl:"layout,optional"`
	Calls  []*hclCall `hcl:"call,block"`
}

type hclCall struct {
	Keyword string         `hcl:"keyword,label"`
	Args    hcl.Expression `hcl:"args,optional"`
	Expect  hcl.Expression `hcl:"expect,optional"`
	Outputs *int           `hcl:"outputs,optional"`
	Error   *string        `hcl:"error,optional"`
}

const (
	attrInteger  = "integer"
	attrUnsigned = "unsigned"
)

func integerFunc(attr string) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{{Name: "n", Type: cty.Number}},
		Type:   function.StaticReturnType(cty.Object(map[string]cty.Type{attr: cty.Number})),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			if !args[0].AsBigFloat().IsInt() {
				return cty.NilVal, fmt.Errorf("%s value must be a whole number", attr)
			}
			return cty.ObjectVal(map[string]cty.Value{attr: args[0]}), nil
		},
	})
}

func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Functions: map[string]function.Function{
			"handle":   integerFunc(attrInteger),
			"integer":  integerFunc(attrInteger),
			"unsigned": integerFunc(attrUnsigned),
		},
	}
}

// Load parses a scenario file from disk.
func Load(path string) (*Scenario, error) {
	file, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse scenario %s: %w", path, diags)
	}
	return decode(path, file)
}

// Parse parses scenario source held in memory.
func Parse(filename string, src []byte) (*Scenario, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse scenario %s: %w", filename, diags)
	}
	return decode(filename, file)
}

func decode(filename string, file *hcl.File) (*Scenario, error) {
	ctx := evalContext()

	var parsed hclFile
	if diags := gohcl.DecodeBody(file.Body, ctx, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode scenario %s: %w", filename, diags)
	}

	sc := &Scenario{Filename: filename, Layout: resource.LayoutSequence}
	if parsed.Layout != nil {
		l, err := resource.ParseLayout(*parsed.Layout)
		if err != nil {
			return nil, objerrors.Wrap(objerrors.PhaseScenario, objerrors.KindInvalidData, err, filename)
		}
		sc.Layout = l
	}

	for _, c := range parsed.Calls {
		step, err := decodeCall(ctx, c)
		if err != nil {
			return nil, err
		}
		sc.Steps = append(sc.Steps, step)
	}
	return sc, nil
}

func decodeCall(ctx *hcl.EvalContext, c *hclCall) (Step, error) {
	step := Step{Keyword: c.Keyword, Outputs: -1}
	if c.Args != nil {
		step.Range = c.Args.Range()
	}

	var err error
	if step.Args, err = evalList(ctx, c.Args); err != nil {
		return step, err
	}
	if step.Expect, err = evalList(ctx, c.Expect); err != nil {
		return step, err
	}

	switch {
	case c.Outputs != nil:
		if *c.Outputs < 0 {
			return step, invalid(step.Range, "%s: outputs must not be negative", c.Keyword)
		}
		if step.Expect != nil && *c.Outputs != len(step.Expect) {
			return step, invalid(step.Range, "%s: outputs = %d but expect lists %d values",
				c.Keyword, *c.Outputs, len(step.Expect))
		}
		step.Outputs = *c.Outputs
	case step.Expect != nil:
		step.Outputs = len(step.Expect)
	}

	if c.Error != nil {
		if step.Expect != nil {
			return step, invalid(step.Range, "%s: expect and error are mutually exclusive", c.Keyword)
		}
		step.Error = objerrors.Kind(*c.Error)
	}
	return step, nil
}

// evalList evaluates a list or tuple expression. A missing attribute yields nil.
func evalList(ctx *hcl.EvalContext, expr hcl.Expression) ([]dispatch.Value, error) {
	if expr == nil {
		return nil, nil
	}
	val, diags := expr.Value(ctx)
	if diags.HasErrors() {
		return nil, objerrors.Wrap(objerrors.PhaseScenario, objerrors.KindInvalidData, diags, "evaluate expression")
	}
	if val.IsNull() {
		return nil, nil
	}
	if !val.CanIterateElements() || val.Type().IsObjectType() || val.Type().IsMapType() {
		return nil, invalid(expr.Range(), "expected a list, got %s", val.Type().FriendlyName())
	}

	out := make([]dispatch.Value, 0, val.LengthInt())
	for it := val.ElementIterator(); it.Next(); {
		_, ev := it.Element()
		v, err := toValue(ev)
		if err != nil {
			return nil, invalid(expr.Range(), "element %d: %v", len(out), err)
		}
		out = append(out, v)
	}
	return out, nil
}

func toValue(v cty.Value) (dispatch.Value, error) {
	if v.IsNull() || !v.IsKnown() {
		return dispatch.Value{}, fmt.Errorf("value is null or unknown")
	}

	t := v.Type()
	switch {
	case t == cty.Number:
		f, _ := v.AsBigFloat().Float64()
		return dispatch.Number(f), nil
	case t == cty.String:
		return dispatch.Text(v.AsString()), nil
	case t.IsObjectType() && t.HasAttribute(attrInteger):
		return toInteger(v.GetAttr(attrInteger).AsBigFloat(), false)
	case t.IsObjectType() && t.HasAttribute(attrUnsigned):
		return toInteger(v.GetAttr(attrUnsigned).AsBigFloat(), true)
	default:
		return dispatch.Value{}, fmt.Errorf("unsupported type %s", t.FriendlyName())
	}
}

func toInteger(f *big.Float, unsigned bool) (dispatch.Value, error) {
	if unsigned {
		u, acc := f.Uint64()
		if acc != big.Exact {
			return dispatch.Value{}, fmt.Errorf("%s does not fit in u64", f.String())
		}
		return dispatch.Uint(u), nil
	}
	i, acc := f.Int64()
	if acc != big.Exact {
		return dispatch.Value{}, fmt.Errorf("%s does not fit in s64", f.String())
	}
	return dispatch.Int(i), nil
}

func invalid(rng hcl.Range, format string, args ...any) error {
	return objerrors.New(objerrors.PhaseScenario, objerrors.KindInvalidData).
		Detail("%s: %s", rng.String(), fmt.Sprintf(format, args...)).
		Build()
}
