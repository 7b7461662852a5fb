// Package dispatch routes keyword commands to objects held in a session.
//
// A command arrives as a list of Values: the keyword first, then its
// arguments. The session resolves the keyword in its command table,
// checks the handle, argument count, requested output count and argument
// types in that order, and only then runs the handler. A command that
// fails any check leaves the session untouched.
//
//	s, _ := dispatch.NewSession(dispatch.WithLayout(resource.LayoutSlotMap))
//	out, err := s.Dispatch(ctx, []dispatch.Value{
//	    dispatch.Text("create"), dispatch.Number(3.5),
//	}, 1)
//
// The built-in table is DefaultCommands. Each command also answers to a
// legacy PascalCase keyword such as New or GetPreset.
package dispatch
