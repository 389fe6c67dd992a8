// Package flite provides a small generic finite state machine for Go.
//
// A machine is described by a Configurator: each state is configured once with the
// triggers it accepts and, optionally, an entry and a leave hook. Build freezes the
// description and returns a Machine that starts in the given state:
//
//	c := flite.NewConfigurator[State, Trigger]()
//	c.MustConfigure(Rest).
//		WhenChangeTo(Run, Ready).
//		WhenIgnore(Close)
//	c.MustConfigure(Ready).
//		OnEntry(func() { fmt.Println("ready") }).
//		WhenFunc(Read, func(path string) State { return Reading })
//	m, err := c.Build(Rest)
//
//	err = m.Trigger(Run)
//	err = m.Trigger(Read, "/tmp/data")
//
// Any comparable type can be a state or a trigger, including structs combining several
// sub-states.
//
// Handlers are typed by the payload they take. Trigger must be called with exactly that
// payload; there is no conversion and no fallback to another handler, a mismatch fails
// with ErrNoMatchingHandler. Typed handlers are built with Func, Func1, Func2, Func3 and
// their Action counterparts; the When* methods of StateConfig accept any func value and
// check its signature when it is registered.
//
// When a handler returns the current state nothing else happens. Otherwise the leave
// hook of the old state runs, the state changes, then the entry hook of the new state
// runs. SetState bypasses hooks entirely.
package flite
