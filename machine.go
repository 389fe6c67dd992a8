package flite

import (
	"github.com/google/uuid"
)

// Machine is a running instance over a frozen transition table. Only its current state
// changes; the table is shared with every other machine built from the same Configurator.
//
// A Machine is not safe for concurrent use. Wrap it with Synchronize when several
// goroutines drive the same instance.
type Machine[S, T comparable] struct {
	id        string
	state     S
	table     *table[S, T]
	observers *ObserverManager[S, T]
}

func newMachine[S, T comparable](initial S, tbl *table[S, T]) *Machine[S, T] {
	return &Machine[S, T]{
		id:        uuid.New().String(),
		state:     initial,
		table:     tbl,
		observers: NewObserverManager[S, T](),
	}
}

// ID returns the machine identifier
func (m *Machine[S, T]) ID() string {
	return m.id
}

// CurrentState returns the current state
func (m *Machine[S, T]) CurrentState() S {
	return m.state
}

// SetState overrides the current state. No hooks run and state is not checked against
// the table.
func (m *Machine[S, T]) SetState(state S) {
	previous := m.state
	m.state = state
	m.observers.NotifyStateSet(previous, state)
}

// AllowsTrigger reports whether the current state has a handler for trigger
func (m *Machine[S, T]) AllowsTrigger(trigger T) bool {
	sc, ok := m.table.lookup(m.state)
	return ok && sc.AllowsTrigger(trigger)
}

// PermittedTriggers returns the triggers accepted in the current state, in registration
// order
func (m *Machine[S, T]) PermittedTriggers() []T {
	sc, ok := m.table.lookup(m.state)
	if !ok {
		return nil
	}
	return sc.Triggers()
}

// Trigger fires trigger with the given payload. The handler of the current state computes
// the next state. When it differs from the current one, the old state's leave hook runs,
// the state is updated, then the new state's entry hook runs. When it is equal nothing
// else happens.
//
// On error the state is unchanged and no hook has run.
func (m *Machine[S, T]) Trigger(trigger T, args ...any) error {
	current := m.state

	sc, ok := m.table.lookup(current)
	if !ok || !sc.AllowsTrigger(trigger) {
		err := NewTriggerNotAllowedError(current, trigger)
		m.observers.NotifyTriggerRejected(current, trigger, err)
		return err
	}

	next, err := sc.Invoke(trigger, args...)
	if err != nil {
		m.observers.NotifyTriggerRejected(current, trigger, err)
		return err
	}

	if next == current {
		m.observers.NotifyTriggerIgnored(current, trigger)
		return nil
	}

	if sc.onLeave != nil {
		sc.onLeave()
	}

	m.state = next

	if target, ok := m.table.lookup(next); ok && target.onEntry != nil {
		target.onEntry()
	}

	m.observers.NotifyTransition(current, next, trigger)
	return nil
}

// AddObserver adds an observer to the machine. An AttachObserver is told the current state
// right away.
func (m *Machine[S, T]) AddObserver(observer Observer[S, T]) {
	if m.observers == nil {
		m.observers = NewObserverManager[S, T]()
	}
	m.observers.AddObserver(observer)

	if attach, ok := observer.(AttachObserver[S]); ok {
		safeNotify(observer, "OnAttach", func() {
			attach.OnAttach(m.state)
		})
	}
}

// RemoveObserver removes an observer from the machine
func (m *Machine[S, T]) RemoveObserver(observer Observer[S, T]) {
	if m.observers == nil {
		return
	}
	m.observers.RemoveObserver(observer)
}
