package flite

import "sync"

// Synchronized serializes every call on a Machine with a mutex held for the whole call,
// hooks and handlers included. Handlers and hooks must not call back into the same
// Synchronized value.
type Synchronized[S, T comparable] struct {
	mutex   sync.Mutex
	machine *Machine[S, T]
}

// Synchronize wraps m. m must not be used directly afterwards.
func Synchronize[S, T comparable](m *Machine[S, T]) *Synchronized[S, T] {
	return &Synchronized[S, T]{machine: m}
}

// CurrentState returns the current state
func (s *Synchronized[S, T]) CurrentState() S {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.machine.CurrentState()
}

// SetState overrides the current state without hooks
func (s *Synchronized[S, T]) SetState(state S) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.machine.SetState(state)
}

// AllowsTrigger reports whether the current state accepts trigger
func (s *Synchronized[S, T]) AllowsTrigger(trigger T) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.machine.AllowsTrigger(trigger)
}

// Trigger fires trigger under the lock
func (s *Synchronized[S, T]) Trigger(trigger T, args ...any) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.machine.Trigger(trigger, args...)
}

// Do runs fn with exclusive access to the machine, for check-then-act sequences
func (s *Synchronized[S, T]) Do(fn func(m *Machine[S, T]) error) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return fn(s.machine)
}
