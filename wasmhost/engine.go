package wasmhost

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"
	"go.uber.org/zap"

	"github.com/wippyai/objref/dispatch"
)

// Config holds configuration for engine creation.
type Config struct {
	Stdout io.Writer
	Stderr io.Writer

	// MemoryLimitPages sets the maximum memory per guest in pages (64KB each).
	// 0 means the wazero default.
	MemoryLimitPages uint32
}

// Engine is a wazero runtime with WASI preview1 and the objref host module
// instantiated, ready to run guests against one session.
type Engine struct {
	runtime wazero.Runtime
	host    *Host
	cfg     Config
}

// NewEngine creates a runtime bound to s.
func NewEngine(ctx context.Context, s *dispatch.Session, cfg *Config) (*Engine, error) {
	runtimeCfg := wazero.NewRuntimeConfig()
	var c Config
	if cfg != nil {
		c = *cfg
		if c.MemoryLimitPages > 0 {
			runtimeCfg = runtimeCfg.WithMemoryLimitPages(c.MemoryLimitPages)
		}
	}

	e := &Engine{
		runtime: wazero.NewRuntimeWithConfig(ctx, runtimeCfg),
		host:    NewHost(s),
		cfg:     c,
	}

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, e.runtime); err != nil {
		_ = e.runtime.Close(ctx)
		return nil, fmt.Errorf("instantiate WASI: %w", err)
	}
	if _, err := e.host.Instantiate(ctx, e.runtime); err != nil {
		_ = e.runtime.Close(ctx)
		return nil, fmt.Errorf("instantiate %s host module: %w", ModuleName, err)
	}
	return e, nil
}

// Host returns the host bound to the engine's session.
func (e *Engine) Host() *Host {
	return e.host
}

// Instantiate compiles and instantiates a guest without running any start
// function. The caller closes the returned module.
func (e *Engine) Instantiate(ctx context.Context, wasmBytes []byte) (api.Module, error) {
	compiled, err := e.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, fmt.Errorf("compile failed: %w", err)
	}

	modCfg := wazero.NewModuleConfig().
		WithName("").
		WithStartFunctions()
	if e.cfg.Stdout != nil {
		modCfg = modCfg.WithStdout(e.cfg.Stdout)
	}
	if e.cfg.Stderr != nil {
		modCfg = modCfg.WithStderr(e.cfg.Stderr)
	}

	mod, err := e.runtime.InstantiateModule(ctx, compiled, modCfg)
	if err != nil {
		return nil, fmt.Errorf("instantiate guest: %w", err)
	}
	return mod, nil
}

// Run instantiates a guest and calls its entry export with no arguments.
// A WASI exit with code 0 counts as success.
func (e *Engine) Run(ctx context.Context, wasmBytes []byte, entry string) error {
	mod, err := e.Instantiate(ctx, wasmBytes)
	if err != nil {
		return err
	}
	defer mod.Close(ctx)

	fn := mod.ExportedFunction(entry)
	if fn == nil {
		return fmt.Errorf("guest does not export %q", entry)
	}
	if n := len(fn.Definition().ParamTypes()); n != 0 {
		return fmt.Errorf("entry %q takes %d parameters, want 0", entry, n)
	}

	Logger().Info("running guest", zap.String("entry", entry))
	if _, err := fn.Call(ctx); err != nil {
		var exit *sys.ExitError
		if errors.As(err, &exit) && exit.ExitCode() == 0 {
			return nil
		}
		return fmt.Errorf("guest %s: %w", entry, err)
	}
	return nil
}

// Close releases the runtime and every guest instantiated in it.
func (e *Engine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}
