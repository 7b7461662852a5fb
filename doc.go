// Package objref is a registry of opaque object handles and a keyword
// command dispatcher that operates on it.
//
// Callers never hold object references. They hold 32-bit handles issued
// by a session and address objects through commands such as create,
// compute and delete. The smallest unused handle is always issued next, so
// handles freed by delete are reused.
//
// # Architecture Overview
//
// The module is organized into several packages with distinct responsibilities:
//
//	objref/
//	├── resource/        Handle allocation and the two registry/store layouts
//	├── object/          The managed object type and its constructor
//	├── dispatch/        Values, the command table, sessions and validation
//	├── errors/          Structured error types with phase and kind
//	├── wasmhost/        wazero host module exposing dispatch to wasm guests
//	├── snapshot/        SQLite persistence for session contents
//	├── scenario/        HCL scripts of calls and expected results
//	├── config/          Environment settings and logger construction
//	├── telemetry/       OpenTelemetry tracer provider setup
//	└── cmd/objref/      Command-line front end
//
// # Quick Start
//
//	s, err := dispatch.NewSession()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	out, _ := s.Call(ctx, "create", 1, dispatch.Number(3.5))
//	h := out[0] // 0u
//
//	out, _ = s.Call(ctx, "compute", 1, h, dispatch.Number(4))
//	fmt.Println(out[0]) // 14
//
// # Errors
//
// Every rejected command returns an *errors.Error carrying the phase that
// rejected it and a stable kind such as handle_not_found or arity. A
// rejected command leaves the session unchanged.
//
// # Thread Safety
//
// Session is safe for concurrent use. Commands on one session are
// serialized; separate sessions share nothing.
package objref
