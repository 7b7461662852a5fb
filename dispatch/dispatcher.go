package dispatch

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	objerrors "github.com/wippyai/objref/errors"
)

// Dispatch runs one command. inputs[0] is the keyword; for instance commands
// inputs[1] is the handle; the rest are the command's positional arguments.
// nout is the number of outputs the caller expects.
//
// All validation happens before any state changes. On failure no values are
// returned, the registry and store are unchanged, and the error is reported
// to the session logger at error (Fail) level.
func (s *Session) Dispatch(ctx context.Context, inputs []Value, nout int) ([]Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keyword := ""
	if len(inputs) > 0 {
		keyword = inputs[0].Str()
	}

	_, span := s.tracer.Start(ctx, "objref.dispatch", trace.WithAttributes(
		attribute.String("objref.command", keyword),
		attribute.Int("objref.inputs", len(inputs)),
		attribute.Int("objref.outputs", nout),
	))
	defer span.End()

	out, err := s.dispatch(inputs, nout)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(objerrors.KindOf(err)))
		s.logger.Error("command failed",
			zap.String("command", keyword),
			zap.String("phase", string(objerrors.PhaseOf(err))),
			zap.String("kind", string(objerrors.KindOf(err))),
			zap.Error(err),
		)
		return nil, err
	}
	return out, nil
}

// Call is Dispatch with the keyword and arguments spelled out.
func (s *Session) Call(ctx context.Context, keyword string, nout int, args ...Value) ([]Value, error) {
	inputs := make([]Value, 0, len(args)+1)
	inputs = append(inputs, Text(keyword))
	inputs = append(inputs, args...)
	return s.Dispatch(ctx, inputs, nout)
}

func (s *Session) dispatch(inputs []Value, nout int) ([]Value, error) {
	cmd, err := s.parse(inputs)
	if err != nil {
		return nil, err
	}

	x, err := s.validate(cmd, inputs[1:], nout)
	if err != nil {
		return nil, err
	}

	return s.execute(x, nout)
}

func (s *Session) parse(inputs []Value) (*Command, error) {
	if len(inputs) == 0 {
		return nil, objerrors.InvalidArgument(objerrors.PhaseParse, "", "command keyword missing")
	}
	if inputs[0].Kind() != KindText {
		return nil, objerrors.New(objerrors.PhaseParse, objerrors.KindInvalidArgument).
			Expected("string").
			Got(inputs[0].TypeName()).
			Detail("command keyword must be a string").
			Build()
	}

	keyword := inputs[0].Str()
	cmd, ok := s.commands.Lookup(keyword)
	if !ok {
		return nil, objerrors.UnknownCommand(keyword)
	}
	s.logger.Info("received command", zap.String("command", cmd.Name), zap.String("keyword", keyword))
	return cmd, nil
}

func (s *Session) validate(cmd *Command, args []Value, nout int) (*Exec, error) {
	x := &Exec{
		table:     s.table,
		construct: s.construct,
		Command:   cmd,
		Slot:      -1,
	}

	if cmd.Scope == Instance {
		if len(args) == 0 {
			return nil, objerrors.ArityMismatch(cmd.Name, "handle argument", 1, 0)
		}
		hv := args[0]
		if hv.Kind() != KindInteger {
			return nil, objerrors.New(objerrors.PhaseValidate, objerrors.KindInvalidArgument).
				Command(cmd.Name).
				Param("handle").
				Expected("integer").
				Got(hv.TypeName()).
				Build()
		}
		h, ok := hv.handle()
		if !ok {
			return nil, objerrors.HandleNotFound(cmd.Name, hv)
		}
		slot, err := s.table.Lookup(h)
		if err != nil {
			return nil, objerrors.HandleNotFound(cmd.Name, h)
		}
		s.logger.Info("resolved handle", zap.Uint32("handle", uint32(h)), zap.Int("slot", slot))
		x.Handle, x.Slot = h, slot
		args = args[1:]
	}

	if len(args) != len(cmd.Params) {
		return nil, objerrors.ArityMismatch(cmd.Name, "arguments", len(cmd.Params), len(args))
	}
	if nout != cmd.Outputs() {
		return nil, objerrors.ArityMismatch(cmd.Name, "outputs", cmd.Outputs(), nout)
	}
	for i, p := range cmd.Params {
		if !Accepts(p.Type, args[i]) {
			err := objerrors.TypeMismatch(cmd.Name, p.Name, TypeName(p.Type), args[i].TypeName())
			err.Value = args[i].String()
			return nil, err
		}
	}

	x.Args = args
	return x, nil
}

func (s *Session) execute(x *Exec, nout int) ([]Value, error) {
	out, err := x.Command.Run(x)
	if err != nil {
		if objerrors.KindOf(err) == "" {
			err = objerrors.Execution(x.Command.Name, err)
		}
		return nil, err
	}
	if len(out) != nout {
		return nil, objerrors.Execution(x.Command.Name,
			fmt.Errorf("handler produced %d outputs, declared %d", len(out), nout))
	}
	s.logger.Info("command done", zap.String("command", x.Command.Name), zap.Int("outputs", len(out)))
	return out, nil
}
