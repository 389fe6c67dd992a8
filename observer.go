package flite

import "fmt"

// Observer represents an entity that observes machine activity
type Observer[S, T comparable] interface {
	// Required methods

	// OnTransition is called after a trigger moved the machine to a different state,
	// once both hooks have run
	OnTransition(from S, to S, trigger T)

	// OnTriggerRejected is called when Trigger fails
	OnTriggerRejected(state S, trigger T, err error)
}

// ExtendedObserver provides additional optional observation methods
type ExtendedObserver[S, T comparable] interface {
	Observer[S, T]

	// OnTriggerIgnored is called when a handler kept the current state
	OnTriggerIgnored(state S, trigger T)

	// OnStateSet is called after SetState or a snapshot restore forced the state
	OnStateSet(from S, to S)

	// OnError is called when another observer panicked
	OnError(err error)
}

// AttachObserver is implemented by observers that need the machine state at the time they
// are added
type AttachObserver[S comparable] interface {
	OnAttach(current S)
}

// BaseObserver provides a default implementation with no-op methods
type BaseObserver[S, T comparable] struct{}

// OnTransition implements the required Observer method
func (o *BaseObserver[S, T]) OnTransition(from S, to S, trigger T) {}

// OnTriggerRejected implements the required Observer method
func (o *BaseObserver[S, T]) OnTriggerRejected(state S, trigger T, err error) {}

// OnTriggerIgnored implements the optional ExtendedObserver method
func (o *BaseObserver[S, T]) OnTriggerIgnored(state S, trigger T) {}

// OnStateSet implements the optional ExtendedObserver method
func (o *BaseObserver[S, T]) OnStateSet(from S, to S) {}

// OnError implements the optional ExtendedObserver method
func (o *BaseObserver[S, T]) OnError(err error) {}

// ObserverManager manages a collection of observers
type ObserverManager[S, T comparable] struct {
	observers []Observer[S, T]
}

// NewObserverManager creates a new observer manager
func NewObserverManager[S, T comparable]() *ObserverManager[S, T] {
	return &ObserverManager[S, T]{
		observers: make([]Observer[S, T], 0),
	}
}

// AddObserver adds an observer to the manager
func (om *ObserverManager[S, T]) AddObserver(observer Observer[S, T]) {
	if om == nil {
		return
	}
	om.observers = append(om.observers, observer)
}

// RemoveObserver removes an observer from the manager
func (om *ObserverManager[S, T]) RemoveObserver(observer Observer[S, T]) {
	if om == nil {
		return
	}
	for i, obs := range om.observers {
		if obs == observer {
			om.observers = append(om.observers[:i], om.observers[i+1:]...)
			break
		}
	}
}

// Len returns the number of registered observers
func (om *ObserverManager[S, T]) Len() int {
	if om == nil {
		return 0
	}
	return len(om.observers)
}

func (om *ObserverManager[S, T]) list() []Observer[S, T] {
	if om == nil || len(om.observers) == 0 {
		return nil
	}
	observers := make([]Observer[S, T], len(om.observers))
	copy(observers, om.observers)
	return observers
}

// safeNotify runs fn and reports a panic to the observer's OnError, if it has one.
// A panic from OnError itself is dropped.
func safeNotify[S, T comparable](observer Observer[S, T], method string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			if extObs, ok := observer.(ExtendedObserver[S, T]); ok {
				func() {
					defer func() { _ = recover() }()
					extObs.OnError(fmt.Errorf("observer panic in %s: %v", method, r))
				}()
			}
		}
	}()
	fn()
}

// NotifyTransition notifies all observers of a state transition
func (om *ObserverManager[S, T]) NotifyTransition(from S, to S, trigger T) {
	for _, observer := range om.list() {
		safeNotify(observer, "OnTransition", func() {
			observer.OnTransition(from, to, trigger)
		})
	}
}

// NotifyTriggerRejected notifies all observers of a failed trigger
func (om *ObserverManager[S, T]) NotifyTriggerRejected(state S, trigger T, err error) {
	for _, observer := range om.list() {
		safeNotify(observer, "OnTriggerRejected", func() {
			observer.OnTriggerRejected(state, trigger, err)
		})
	}
}

// NotifyTriggerIgnored notifies extended observers of a trigger that kept the state
func (om *ObserverManager[S, T]) NotifyTriggerIgnored(state S, trigger T) {
	for _, observer := range om.list() {
		if extObs, ok := observer.(ExtendedObserver[S, T]); ok {
			safeNotify(observer, "OnTriggerIgnored", func() {
				extObs.OnTriggerIgnored(state, trigger)
			})
		}
	}
}

// NotifyStateSet notifies extended observers of a forced state change
func (om *ObserverManager[S, T]) NotifyStateSet(from S, to S) {
	for _, observer := range om.list() {
		if extObs, ok := observer.(ExtendedObserver[S, T]); ok {
			safeNotify(observer, "OnStateSet", func() {
				extObs.OnStateSet(from, to)
			})
		}
	}
}
