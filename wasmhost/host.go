package wasmhost

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"

	"github.com/wippyai/objref/dispatch"
	objerrors "github.com/wippyai/objref/errors"
)

var (
	dispatchParams = []api.ValueType{
		api.ValueTypeI32, api.ValueTypeI32, // keyword ptr, len
		api.ValueTypeI32, api.ValueTypeI32, // args ptr, count
		api.ValueTypeI32, api.ValueTypeI32, // out ptr, count
	}
	errorMessageParams = []api.ValueType{api.ValueTypeI32, api.ValueTypeI32}
	i32Result          = []api.ValueType{api.ValueTypeI32}
)

// Host exposes a session to guests through the objref host module.
//
// Commands with string results need the guest to export cabi_realloc; a
// guest without it is refused before dispatch. An allocation that fails
// inside cabi_realloc is reported as a boundary fault after the command
// has already run, so its effects on the session remain.
type Host struct {
	session *dispatch.Session
	lastErr string
	mu      sync.Mutex
}

// NewHost binds a host to a session.
func NewHost(s *dispatch.Session) *Host {
	return &Host{session: s}
}

// Session returns the bound session.
func (h *Host) Session() *dispatch.Session {
	return h.session
}

// Instantiate registers the objref host module in r.
func (h *Host) Instantiate(ctx context.Context, r wazero.Runtime) (api.Module, error) {
	return r.NewHostModuleBuilder(ModuleName).
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(h.dispatch), dispatchParams, i32Result).
		Export(FuncDispatch).
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(h.errorMessage), errorMessageParams, i32Result).
		Export(FuncErrorMessage).
		Instantiate(ctx)
}

// LastError returns the message of the most recent failed dispatch, or "".
func (h *Host) LastError() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastErr
}

func (h *Host) setError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err == nil {
		h.lastErr = ""
		return
	}
	h.lastErr = err.Error()
}

func (h *Host) dispatch(ctx context.Context, mod api.Module, stack []uint64) {
	err := h.call(ctx, mod,
		uint32(stack[0]), uint32(stack[1]),
		uint32(stack[2]), uint32(stack[3]),
		uint32(stack[4]), uint32(stack[5]),
	)
	h.setError(err)
	stack[0] = uint64(StatusOf(err))
}

func (h *Host) call(ctx context.Context, mod api.Module, kwPtr, kwLen, argsPtr, argc, outPtr, nout uint32) error {
	mem := mod.Memory()
	if mem == nil {
		return h.boundary(objerrors.New(objerrors.PhaseBoundary, objerrors.KindBoundary).
			Detail("guest %q has no memory", mod.Name()).
			Build())
	}

	keyword, err := readString(mem, "keyword", kwPtr, kwLen)
	if err != nil {
		return h.boundary(err)
	}
	args, err := readValues(mem, argsPtr, argc)
	if err != nil {
		return h.boundary(err)
	}
	// The output region is checked up front so a fault cannot follow a mutation.
	if err := span(mem, "outputs", outPtr, nout, SlotSize); err != nil {
		return h.boundary(err)
	}

	if err := h.checkTextResults(mod, keyword); err != nil {
		return h.boundary(err)
	}

	inputs := make([]dispatch.Value, 0, len(args)+1)
	inputs = append(inputs, dispatch.Text(keyword))
	inputs = append(inputs, args...)

	out, err := h.session.Dispatch(ctx, inputs, int(nout))
	if err != nil {
		return err
	}
	if err := writeValues(mem, newGuestAllocator(ctx, mod), outPtr, out); err != nil {
		return h.boundary(err)
	}
	return nil
}

// checkTextResults refuses commands that return strings to a guest that
// cannot allocate them. Unknown keywords are left to the dispatcher.
func (h *Host) checkTextResults(mod api.Module, keyword string) error {
	cmd, ok := h.session.Commands().Lookup(keyword)
	if !ok || mod.ExportedFunction(CabiRealloc) != nil {
		return nil
	}
	for _, r := range cmd.Results {
		if _, isText := r.Type.(wit.String); isText {
			return objerrors.New(objerrors.PhaseBoundary, objerrors.KindBoundary).
				Command(cmd.Name).
				Param(r.Name).
				Detail("string result needs guest export %s", CabiRealloc).
				Build()
		}
	}
	return nil
}

func (h *Host) boundary(err error) error {
	Logger().Error("guest call rejected",
		zap.String("phase", string(objerrors.PhaseOf(err))),
		zap.String("kind", string(objerrors.KindOf(err))),
		zap.Error(err),
	)
	return err
}

// errorMessage copies up to buf_cap bytes of the last error into the guest
// and returns the full message length.
func (h *Host) errorMessage(_ context.Context, mod api.Module, stack []uint64) {
	ptr, capacity := uint32(stack[0]), uint32(stack[1])
	msg := h.LastError()

	n := min(uint32(len(msg)), capacity)
	if n > 0 {
		if mem := mod.Memory(); mem == nil || !mem.Write(ptr, []byte(msg[:n])) {
			Logger().Warn("error message buffer out of bounds", zap.Uint32("ptr", ptr), zap.Uint32("cap", capacity))
		}
	}
	stack[0] = uint64(len(msg))
}
