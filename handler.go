package flite

import (
	"fmt"
	"reflect"
	"slices"
)

// Hook is an entry or leave callback attached to a state
type Hook func()

// Projection selects which of state and trigger a reflective handler callback receives
// ahead of its payload parameters.
type Projection int

const (
	// ProjectNone passes only the payload
	ProjectNone Projection = iota
	// ProjectState passes the current state, then the payload
	ProjectState
	// ProjectTrigger passes the trigger, then the payload
	ProjectTrigger
	// ProjectFull passes the current state and the trigger, then the payload
	ProjectFull
)

func (p Projection) hasState() bool {
	return p == ProjectState || p == ProjectFull
}

func (p Projection) hasTrigger() bool {
	return p == ProjectTrigger || p == ProjectFull
}

// String returns the projection name
func (p Projection) String() string {
	switch p {
	case ProjectNone:
		return "none"
	case ProjectState:
		return "state"
	case ProjectTrigger:
		return "trigger"
	case ProjectFull:
		return "full"
	default:
		return fmt.Sprintf("projection(%d)", int(p))
	}
}

// Handler computes the next state for a trigger. It carries the payload signature it was
// declared with; invocations whose payload does not match that signature are refused.
type Handler[S, T comparable] struct {
	signature []reflect.Type
	anyArgs   bool
	call      func(state S, trigger T, args []any) S
}

// Arity returns the number of payload arguments the handler takes
func (h Handler[S, T]) Arity() int {
	return len(h.signature)
}

// Signature returns the payload parameter types in order
func (h Handler[S, T]) Signature() []reflect.Type {
	return slices.Clone(h.signature)
}

// AcceptsAnyPayload reports whether the handler discards its payload, as fixed-target and
// ignore handlers do.
func (h Handler[S, T]) AcceptsAnyPayload() bool {
	return h.anyArgs
}

func (h Handler[S, T]) valid() bool {
	return h.call != nil
}

// Match reports why args cannot be passed to the handler, or nil when they can
func (h Handler[S, T]) Match(args ...any) error {
	if h.anyArgs {
		return nil
	}
	if len(args) != len(h.signature) {
		return fmt.Errorf("handler takes %d payload argument(s), got %d", len(h.signature), len(args))
	}
	for i, param := range h.signature {
		if !accepts(param, args[i]) {
			return fmt.Errorf("payload argument %d is %s, handler expects %s", i, typeName(args[i]), param)
		}
	}
	return nil
}

func (h Handler[S, T]) invoke(state S, trigger T, args []any) (S, error) {
	if err := h.Match(args...); err != nil {
		return state, err
	}
	return h.call(state, trigger, args), nil
}

// accepts never converts: a concrete parameter needs the identical dynamic type.
func accepts(param reflect.Type, arg any) bool {
	if arg == nil {
		return nilable(param)
	}
	actual := reflect.TypeOf(arg)
	if param.Kind() == reflect.Interface {
		return actual.Implements(param)
	}
	return actual == param
}

func nilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return true
	}
	return false
}

func typeName(arg any) string {
	if arg == nil {
		return "nil"
	}
	return reflect.TypeOf(arg).String()
}

func payload[A any](v any) A {
	if v == nil {
		var zero A
		return zero
	}
	return v.(A)
}

// Func creates a handler that receives state and trigger and returns the next state
func Func[S, T comparable](fn func(S, T) S) Handler[S, T] {
	if fn == nil {
		return Handler[S, T]{}
	}
	return Handler[S, T]{
		call: func(s S, t T, _ []any) S { return fn(s, t) },
	}
}

// Func1 creates a handler taking one typed payload argument
func Func1[S, T comparable, A any](fn func(S, T, A) S) Handler[S, T] {
	if fn == nil {
		return Handler[S, T]{}
	}
	return Handler[S, T]{
		signature: []reflect.Type{reflect.TypeFor[A]()},
		call: func(s S, t T, args []any) S {
			return fn(s, t, payload[A](args[0]))
		},
	}
}

// Func2 creates a handler taking two typed payload arguments
func Func2[S, T comparable, A, B any](fn func(S, T, A, B) S) Handler[S, T] {
	if fn == nil {
		return Handler[S, T]{}
	}
	return Handler[S, T]{
		signature: []reflect.Type{reflect.TypeFor[A](), reflect.TypeFor[B]()},
		call: func(s S, t T, args []any) S {
			return fn(s, t, payload[A](args[0]), payload[B](args[1]))
		},
	}
}

// Func3 creates a handler taking three typed payload arguments
func Func3[S, T comparable, A, B, C any](fn func(S, T, A, B, C) S) Handler[S, T] {
	if fn == nil {
		return Handler[S, T]{}
	}
	return Handler[S, T]{
		signature: []reflect.Type{reflect.TypeFor[A](), reflect.TypeFor[B](), reflect.TypeFor[C]()},
		call: func(s S, t T, args []any) S {
			return fn(s, t, payload[A](args[0]), payload[B](args[1]), payload[C](args[2]))
		},
	}
}

// Action creates a handler that runs fn and keeps the current state
func Action[S, T comparable](fn func(S, T)) Handler[S, T] {
	if fn == nil {
		return Handler[S, T]{}
	}
	return Func(func(s S, t T) S {
		fn(s, t)
		return s
	})
}

// Action1 is Action with one typed payload argument
func Action1[S, T comparable, A any](fn func(S, T, A)) Handler[S, T] {
	if fn == nil {
		return Handler[S, T]{}
	}
	return Func1(func(s S, t T, a A) S {
		fn(s, t, a)
		return s
	})
}

// Action2 is Action with two typed payload arguments
func Action2[S, T comparable, A, B any](fn func(S, T, A, B)) Handler[S, T] {
	if fn == nil {
		return Handler[S, T]{}
	}
	return Func2(func(s S, t T, a A, b B) S {
		fn(s, t, a, b)
		return s
	})
}

// Action3 is Action with three typed payload arguments
func Action3[S, T comparable, A, B, C any](fn func(S, T, A, B, C)) Handler[S, T] {
	if fn == nil {
		return Handler[S, T]{}
	}
	return Func3(func(s S, t T, a A, b B, c C) S {
		fn(s, t, a, b, c)
		return s
	})
}

// ChangeTo creates a handler that always moves to target, discarding any payload
func ChangeTo[S, T comparable](target S) Handler[S, T] {
	return Handler[S, T]{
		anyArgs: true,
		call:    func(S, T, []any) S { return target },
	}
}

// Ignore creates a handler that consumes the trigger without leaving the current state
func Ignore[S, T comparable]() Handler[S, T] {
	return Handler[S, T]{
		anyArgs: true,
		call:    func(s S, _ T, _ []any) S { return s },
	}
}

// HandlerOf builds a handler from an arbitrary func value. The callback receives the
// state and/or trigger selected by proj, followed by its payload parameters. When
// returnsState is true the callback must return exactly one S; otherwise it must return
// nothing and the current state is kept.
func HandlerOf[S, T comparable](fn any, proj Projection, returnsState bool) (Handler[S, T], error) {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return Handler[S, T]{}, NewInvalidHandlerError(fmt.Sprintf("callback must be a non-nil func, got %s", typeName(fn)))
	}

	ft := v.Type()
	if ft.IsVariadic() {
		return Handler[S, T]{}, NewInvalidHandlerError(fmt.Sprintf("variadic callback %s is not supported", ft))
	}

	stateType, triggerType := reflect.TypeFor[S](), reflect.TypeFor[T]()

	var lead []reflect.Type
	if proj.hasState() {
		lead = append(lead, stateType)
	}
	if proj.hasTrigger() {
		lead = append(lead, triggerType)
	}
	if ft.NumIn() < len(lead) {
		return Handler[S, T]{}, NewInvalidHandlerError(fmt.Sprintf("callback %s must start with %v for %s projection", ft, lead, proj))
	}
	for i, want := range lead {
		if ft.In(i) != want {
			return Handler[S, T]{}, NewInvalidHandlerError(fmt.Sprintf("callback %s parameter %d must be %s for %s projection", ft, i, want, proj))
		}
	}

	if returnsState {
		if ft.NumOut() != 1 || ft.Out(0) != stateType {
			return Handler[S, T]{}, NewInvalidHandlerError(fmt.Sprintf("callback %s must return %s", ft, stateType))
		}
	} else if ft.NumOut() != 0 {
		return Handler[S, T]{}, NewInvalidHandlerError(fmt.Sprintf("action callback %s must not return values", ft))
	}

	signature := make([]reflect.Type, 0, ft.NumIn()-len(lead))
	for i := len(lead); i < ft.NumIn(); i++ {
		signature = append(signature, ft.In(i))
	}

	call := func(s S, t T, args []any) S {
		in := make([]reflect.Value, 0, ft.NumIn())
		if proj.hasState() {
			in = append(in, reflect.ValueOf(&s).Elem())
		}
		if proj.hasTrigger() {
			in = append(in, reflect.ValueOf(&t).Elem())
		}
		for i, arg := range args {
			if arg == nil {
				in = append(in, reflect.Zero(signature[i]))
			} else {
				in = append(in, reflect.ValueOf(arg))
			}
		}

		out := v.Call(in)
		if !returnsState {
			return s
		}

		var next S
		reflect.ValueOf(&next).Elem().Set(out[0])
		return next
	}

	return Handler[S, T]{signature: signature, call: call}, nil
}
