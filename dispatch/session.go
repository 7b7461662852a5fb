package dispatch

import (
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	objerrors "github.com/wippyai/objref/errors"
	"github.com/wippyai/objref/object"
	"github.com/wippyai/objref/resource"
)

const tracerName = "github.com/wippyai/objref/dispatch"

// Session is the context object for one caller: a handle table, the command
// set that operates on it, and the logging and tracing sinks. Sessions are
// independent of one another.
//
// A Session is safe for concurrent use. Each command holds the session lock
// from parsing through execution, so the registry and store are never seen
// half-updated.
type Session struct {
	table     *resource.Table[object.Object]
	commands  *Set
	construct object.Constructor
	logger    *zap.Logger
	tracer    trace.Tracer
	mu        sync.Mutex
}

type options struct {
	layout    resource.Layout
	commands  *Set
	construct object.Constructor
	logger    *zap.Logger
	tp        trace.TracerProvider
}

// Option configures a Session.
type Option func(*options)

// WithLayout selects the registry/store layout. Default LayoutSequence.
func WithLayout(l resource.Layout) Option {
	return func(o *options) { o.layout = l }
}

// WithCommands replaces the command table. Default DefaultSet().
func WithCommands(s *Set) Option {
	return func(o *options) { o.commands = s }
}

// WithConstructor replaces the instance constructor. Default object.NewMultiplier.
func WithConstructor(c object.Constructor) Option {
	return func(o *options) { o.construct = c }
}

// WithLogger sets the logging sink. Default Logger().
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTracerProvider sets the tracer provider. Default otel's global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tp = tp }
}

// NewSession creates an empty session.
func NewSession(opts ...Option) (*Session, error) {
	o := options{layout: resource.LayoutSequence}
	for _, opt := range opts {
		opt(&o)
	}
	if o.commands == nil {
		o.commands = DefaultSet()
	}
	if o.construct == nil {
		o.construct = object.NewMultiplier
	}
	if o.logger == nil {
		o.logger = Logger()
	}
	if o.tp == nil {
		o.tp = otel.GetTracerProvider()
	}

	table, err := resource.NewTable[object.Object](o.layout)
	if err != nil {
		return nil, err
	}
	table.Subscribe(&eventLogger{l: o.logger})

	return &Session{
		table:     table,
		commands:  o.commands,
		construct: o.construct,
		logger:    o.logger,
		tracer:    o.tp.Tracer(tracerName),
	}, nil
}

// Commands returns the session's command table.
func (s *Session) Commands() *Set {
	return s.commands
}

// Layout reports the registry/store layout.
func (s *Session) Layout() resource.Layout {
	return s.table.Layout()
}

// Count returns the number of live handles.
func (s *Session) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.Len()
}

// CheckParity verifies the registry/store invariant.
func (s *Session) CheckParity() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.CheckParity()
}

// Entry is one live handle and the state needed to rebuild its instance.
type Entry struct {
	Handle resource.Handle
	Preset float64
}

// Export returns the live handles and instance presets in slot order.
func (s *Session) Export() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, 0, s.table.Len())
	s.table.Each(func(h resource.Handle, obj object.Object) bool {
		out = append(out, Entry{Handle: h, Preset: obj.Preset()})
		return true
	})
	return out
}

// MaxImportHandle is the largest handle Import accepts. Registries size
// their bookkeeping by the highest handle, so a larger one in a stored
// snapshot is treated as corrupt data.
const MaxImportHandle resource.Handle = 1<<24 - 1

// Import rebuilds instances under their original handles, in order.
// The session must be empty. On failure it is left empty.
func (s *Session) Import(entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n := s.table.Len(); n != 0 {
		return objerrors.InvalidData(objerrors.PhaseRestore, fmt.Sprintf("session holds %d instances", n))
	}
	for _, e := range entries {
		if e.Handle > MaxImportHandle {
			return objerrors.InvalidData(objerrors.PhaseRestore,
				fmt.Sprintf("handle %d exceeds import limit %d", e.Handle, MaxImportHandle))
		}
	}

	for _, e := range entries {
		obj, err := s.construct(e.Preset)
		if err == nil {
			err = s.table.Bind(e.Handle, obj)
		}
		if err != nil {
			s.table.Clear()
			return objerrors.Wrap(objerrors.PhaseRestore, objerrors.KindInvalidData, err,
				fmt.Sprintf("restore handle %d", e.Handle))
		}
	}
	s.logger.Info("session restored", zap.Int("count", len(entries)))
	return nil
}

// Close destroys every instance. The session rejects creation afterwards.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.Close()
}
