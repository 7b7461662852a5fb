package scenario

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/wippyai/objref/dispatch"
	objerrors "github.com/wippyai/objref/errors"
)

// Result is the outcome of one step.
type Result struct {
	Err     error
	Step    *Step
	Outputs []dispatch.Value

	// Failure explains a broken expectation; empty when the step passed.
	Failure string
}

// Passed reports whether the step met its expectation.
func (r Result) Passed() bool {
	return r.Failure == ""
}

// Report is the outcome of a scenario run.
type Report struct {
	Results []Result
	Failed  int
}

// OK reports whether every step passed.
func (r *Report) OK() bool {
	return r.Failed == 0
}

func (r *Report) String() string {
	var b strings.Builder
	for i, res := range r.Results {
		status := "ok"
		if !res.Passed() {
			status = "FAIL"
		}
		fmt.Fprintf(&b, "%3d %-4s %s%s", i+1, status, res.Step.Keyword, formatValues(res.Step.Args))
		switch {
		case res.Err != nil:
			fmt.Fprintf(&b, " -> error %s", objerrors.KindOf(res.Err))
		default:
			fmt.Fprintf(&b, " -> %s", formatValues(res.Outputs))
		}
		if res.Failure != "" {
			fmt.Fprintf(&b, ": %s", res.Failure)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "%d steps, %d failed\n", len(r.Results), r.Failed)
	return b.String()
}

func formatValues(vals []dispatch.Value) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = v.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Run executes every step against s in order. Broken expectations are
// recorded in the report; the run does not stop at the first one.
func Run(ctx context.Context, s *dispatch.Session, sc *Scenario) *Report {
	rep := &Report{Results: make([]Result, 0, len(sc.Steps))}
	for i := range sc.Steps {
		res := runStep(ctx, s, &sc.Steps[i])
		if !res.Passed() {
			rep.Failed++
		}
		rep.Results = append(rep.Results, res)
	}
	return rep
}

func runStep(ctx context.Context, s *dispatch.Session, step *Step) Result {
	nout := step.Outputs
	if nout < 0 {
		nout = 0
		if cmd, ok := s.Commands().Lookup(step.Keyword); ok {
			nout = cmd.Outputs()
		}
	}

	out, err := s.Call(ctx, step.Keyword, nout, step.Args...)
	res := Result{Step: step, Outputs: out, Err: err}

	switch {
	case step.Error != "":
		if err == nil {
			res.Failure = fmt.Sprintf("expected %s error, call succeeded", step.Error)
		} else if got := objerrors.KindOf(err); got != step.Error {
			res.Failure = fmt.Sprintf("expected %s error, got %s", step.Error, got)
		}
	case err != nil:
		res.Failure = err.Error()
	case step.Expect != nil && len(out) != len(step.Expect):
		res.Failure = fmt.Sprintf("expected %d outputs, got %d", len(step.Expect), len(out))
	case step.Expect != nil:
		for i, want := range step.Expect {
			if !matches(want, out[i]) {
				res.Failure = fmt.Sprintf("output %d: expected %s, got %s", i, want, out[i])
				break
			}
		}
	}
	return res
}

// matches compares an expected value with an output. Numbers and integers
// compare by numeric value, so an expected 0 matches a handle 0u.
func matches(want, got dispatch.Value) bool {
	switch {
	case want.Kind() == dispatch.KindText || got.Kind() == dispatch.KindText:
		return want.Equal(got)
	case want.Kind() == dispatch.KindInteger && got.Kind() == dispatch.KindInteger:
		wi, wok := want.Int64()
		gi, gok := got.Int64()
		if wok && gok {
			return wi == gi
		}
		wu, wok := want.Uint64()
		gu, gok := got.Uint64()
		return wok && gok && wu == gu
	default:
		w, g := numeric(want), numeric(got)
		return w == g || (math.IsNaN(w) && math.IsNaN(g))
	}
}

func numeric(v dispatch.Value) float64 {
	switch v.Kind() {
	case dispatch.KindNumber:
		return v.Float()
	case dispatch.KindInteger:
		if i, ok := v.Int64(); ok {
			return float64(i)
		}
		u, _ := v.Uint64()
		return float64(u)
	default:
		return math.NaN()
	}
}
