package flite

import (
	"errors"
	"fmt"
	"slices"
)

// StateConfig holds one state's outgoing handlers and its entry/leave hooks.
//
// The fluent methods (When*, OnEntry, OnLeave) return the same handle so calls can be
// chained. A failing fluent call does not stop the chain: its error is kept on the handle
// (see Err) and on the owning Configurator, whose Build reports it. RegisterHandler,
// SetOnEntry and SetOnLeave return their error directly instead.
//
// Handles normally come from Configurator.Configure. A zero StateConfig is usable on its
// own for the zero state, but is never frozen and records errors only on itself.
type StateConfig[S, T comparable] struct {
	state    S
	owner    *Configurator[S, T]
	handlers map[T]Handler[S, T]
	triggers []T
	onEntry  Hook
	onLeave  Hook
	err      error
}

func newStateConfig[S, T comparable](state S, owner *Configurator[S, T]) *StateConfig[S, T] {
	return &StateConfig[S, T]{
		state:    state,
		owner:    owner,
		handlers: make(map[T]Handler[S, T]),
	}
}

// State returns the state this configuration belongs to
func (sc *StateConfig[S, T]) State() S {
	return sc.state
}

// Err returns the first error raised by a fluent call on this handle
func (sc *StateConfig[S, T]) Err() error {
	return sc.err
}

func (sc *StateConfig[S, T]) frozen() bool {
	return sc.owner != nil && sc.owner.built
}

// RegisterHandler binds handler to trigger for this state
func (sc *StateConfig[S, T]) RegisterHandler(trigger T, handler Handler[S, T]) error {
	if sc.frozen() {
		return NewAlreadyBuiltError(fmt.Sprintf("register trigger %v on state %v", trigger, sc.state))
	}
	if !handler.valid() {
		err := NewInvalidHandlerError("handler has no callback")
		err.State, err.Trigger = fmt.Sprint(sc.state), fmt.Sprint(trigger)
		return err
	}
	if _, exists := sc.handlers[trigger]; exists {
		return NewDuplicateTriggerError(sc.state, trigger)
	}
	if sc.handlers == nil {
		sc.handlers = make(map[T]Handler[S, T])
	}

	sc.handlers[trigger] = handler
	sc.triggers = append(sc.triggers, trigger)
	return nil
}

// SetOnEntry sets the hook run when the machine enters this state
func (sc *StateConfig[S, T]) SetOnEntry(hook Hook) error {
	return sc.setHook(&sc.onEntry, hook, "OnEntry")
}

// SetOnLeave sets the hook run when the machine leaves this state
func (sc *StateConfig[S, T]) SetOnLeave(hook Hook) error {
	return sc.setHook(&sc.onLeave, hook, "OnLeave")
}

func (sc *StateConfig[S, T]) setHook(slot *Hook, hook Hook, name string) error {
	if sc.frozen() {
		return NewAlreadyBuiltError(fmt.Sprintf("set %s on state %v", name, sc.state))
	}
	if hook == nil {
		err := NewInvalidHandlerError(name + " hook is nil")
		err.State = fmt.Sprint(sc.state)
		return err
	}
	if *slot != nil {
		return NewDuplicateHookError(sc.state, name)
	}
	*slot = hook
	return nil
}

// AllowsTrigger reports whether a handler is registered for trigger
func (sc *StateConfig[S, T]) AllowsTrigger(trigger T) bool {
	_, ok := sc.handlers[trigger]
	return ok
}

// Triggers returns the registered triggers in registration order
func (sc *StateConfig[S, T]) Triggers() []T {
	return slices.Clone(sc.triggers)
}

// Invoke runs the handler registered for trigger with exactly the given payload and
// returns the state it computed. It fails with ErrNoMatchingHandler when trigger is not
// registered or the payload does not fit the handler's signature.
func (sc *StateConfig[S, T]) Invoke(trigger T, args ...any) (S, error) {
	handler, ok := sc.handlers[trigger]
	if !ok {
		return sc.state, NewNoMatchingHandlerError(sc.state, trigger, "trigger is not registered")
	}

	next, err := handler.invoke(sc.state, trigger, args)
	if err != nil {
		return sc.state, NewNoMatchingHandlerError(sc.state, trigger, err.Error())
	}
	return next, nil
}

func (sc *StateConfig[S, T]) record(err error) *StateConfig[S, T] {
	if err == nil {
		return sc
	}
	if sc.err == nil {
		sc.err = err
	}
	// Failures after Build stay on the handle.
	if sc.owner != nil && !sc.frozen() {
		sc.owner.record(err)
	}
	return sc
}

// When registers handler for trigger
func (sc *StateConfig[S, T]) When(trigger T, handler Handler[S, T]) *StateConfig[S, T] {
	return sc.record(sc.RegisterHandler(trigger, handler))
}

func (sc *StateConfig[S, T]) whenReflect(trigger T, fn any, proj Projection, returnsState bool) *StateConfig[S, T] {
	handler, err := HandlerOf[S, T](fn, proj, returnsState)
	if err != nil {
		var cfgErr *ConfigurationError
		if errors.As(err, &cfgErr) {
			cfgErr.State, cfgErr.Trigger = fmt.Sprint(sc.state), fmt.Sprint(trigger)
		}
		return sc.record(err)
	}
	return sc.When(trigger, handler)
}

// WhenFunc registers fn(payload...) S for trigger
func (sc *StateConfig[S, T]) WhenFunc(trigger T, fn any) *StateConfig[S, T] {
	return sc.whenReflect(trigger, fn, ProjectNone, true)
}

// WhenFuncState registers fn(state, payload...) S for trigger
func (sc *StateConfig[S, T]) WhenFuncState(trigger T, fn any) *StateConfig[S, T] {
	return sc.whenReflect(trigger, fn, ProjectState, true)
}

// WhenFuncTrigger registers fn(trigger, payload...) S for trigger
func (sc *StateConfig[S, T]) WhenFuncTrigger(trigger T, fn any) *StateConfig[S, T] {
	return sc.whenReflect(trigger, fn, ProjectTrigger, true)
}

// WhenFuncFull registers fn(state, trigger, payload...) S for trigger
func (sc *StateConfig[S, T]) WhenFuncFull(trigger T, fn any) *StateConfig[S, T] {
	return sc.whenReflect(trigger, fn, ProjectFull, true)
}

// WhenAction registers fn(payload...) for trigger; the state does not change
func (sc *StateConfig[S, T]) WhenAction(trigger T, fn any) *StateConfig[S, T] {
	return sc.whenReflect(trigger, fn, ProjectNone, false)
}

// WhenActionState registers fn(state, payload...) for trigger
func (sc *StateConfig[S, T]) WhenActionState(trigger T, fn any) *StateConfig[S, T] {
	return sc.whenReflect(trigger, fn, ProjectState, false)
}

// WhenActionTrigger registers fn(trigger, payload...) for trigger
func (sc *StateConfig[S, T]) WhenActionTrigger(trigger T, fn any) *StateConfig[S, T] {
	return sc.whenReflect(trigger, fn, ProjectTrigger, false)
}

// WhenActionFull registers fn(state, trigger, payload...) for trigger
func (sc *StateConfig[S, T]) WhenActionFull(trigger T, fn any) *StateConfig[S, T] {
	return sc.whenReflect(trigger, fn, ProjectFull, false)
}

// WhenChangeTo makes trigger move the machine to target
func (sc *StateConfig[S, T]) WhenChangeTo(trigger T, target S) *StateConfig[S, T] {
	return sc.When(trigger, ChangeTo[S, T](target))
}

// WhenIgnore makes trigger allowed but without effect. It is WhenChangeTo with the
// configured state as target, so no hooks fire.
func (sc *StateConfig[S, T]) WhenIgnore(trigger T) *StateConfig[S, T] {
	return sc.When(trigger, Ignore[S, T]())
}

// OnEntry sets the entry hook
func (sc *StateConfig[S, T]) OnEntry(hook Hook) *StateConfig[S, T] {
	return sc.record(sc.SetOnEntry(hook))
}

// OnLeave sets the leave hook
func (sc *StateConfig[S, T]) OnLeave(hook Hook) *StateConfig[S, T] {
	return sc.record(sc.SetOnLeave(hook))
}
