package flite

import (
	"fmt"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// payloadCallbacks returns, for one projection, the callbacks registered on Rest. All of
// them write into *s so the scenario can check which one ran.
func payloadCallbacks(proj Projection, s *string) map[Trigger]any {
	switch proj {
	case ProjectNone:
		return map[Trigger]any{
			Run:         func() State { *s = "WhenFunc_Run"; return Ready },
			Read:        func(p1 string) State { *s = p1; return Ready },
			FinishRead:  func(p1 string, p2 int) State { *s = fmt.Sprint(p1, p2); return Ready },
			Close:       func() { *s = "WhenAction_Close" },
			Write:       func(p1 string) { *s = p1 },
			FinishWrite: func(p1 string, p2 int) { *s = fmt.Sprint(p1, p2) },
		}
	case ProjectState:
		return map[Trigger]any{
			Run:         func(State) State { *s = "WhenFunc_Run"; return Ready },
			Read:        func(_ State, p1 string) State { *s = p1; return Ready },
			FinishRead:  func(_ State, p1 string, p2 int) State { *s = fmt.Sprint(p1, p2); return Ready },
			Close:       func(State) { *s = "WhenAction_Close" },
			Write:       func(_ State, p1 string) { *s = p1 },
			FinishWrite: func(_ State, p1 string, p2 int) { *s = fmt.Sprint(p1, p2) },
		}
	case ProjectTrigger:
		return map[Trigger]any{
			Run:         func(Trigger) State { *s = "WhenFunc_Run"; return Ready },
			Read:        func(_ Trigger, p1 string) State { *s = p1; return Ready },
			FinishRead:  func(_ Trigger, p1 string, p2 int) State { *s = fmt.Sprint(p1, p2); return Ready },
			Close:       func(Trigger) { *s = "WhenAction_Close" },
			Write:       func(_ Trigger, p1 string) { *s = p1 },
			FinishWrite: func(_ Trigger, p1 string, p2 int) { *s = fmt.Sprint(p1, p2) },
		}
	default:
		return map[Trigger]any{
			Run:         func(State, Trigger) State { *s = "WhenFunc_Run"; return Ready },
			Read:        func(_ State, _ Trigger, p1 string) State { *s = p1; return Ready },
			FinishRead:  func(_ State, _ Trigger, p1 string, p2 int) State { *s = fmt.Sprint(p1, p2); return Ready },
			Close:       func(State, Trigger) { *s = "WhenAction_Close" },
			Write:       func(_ State, _ Trigger, p1 string) { *s = p1 },
			FinishWrite: func(_ State, _ Trigger, p1 string, p2 int) { *s = fmt.Sprint(p1, p2) },
		}
	}
}

func TestHandler_PayloadProjections(t *testing.T) {
	for _, proj := range []Projection{ProjectNone, ProjectState, ProjectTrigger, ProjectFull} {
		t.Run(proj.String(), func(t *testing.T) {
			s := ""
			callbacks := payloadCallbacks(proj, &s)

			c := NewConfigurator[State, Trigger]()
			rest := c.MustConfigure(Rest)
			switch proj {
			case ProjectNone:
				rest.WhenFunc(Run, callbacks[Run]).
					WhenFunc(Read, callbacks[Read]).
					WhenFunc(FinishRead, callbacks[FinishRead]).
					WhenAction(Close, callbacks[Close]).
					WhenAction(Write, callbacks[Write]).
					WhenAction(FinishWrite, callbacks[FinishWrite])
			case ProjectState:
				rest.WhenFuncState(Run, callbacks[Run]).
					WhenFuncState(Read, callbacks[Read]).
					WhenFuncState(FinishRead, callbacks[FinishRead]).
					WhenActionState(Close, callbacks[Close]).
					WhenActionState(Write, callbacks[Write]).
					WhenActionState(FinishWrite, callbacks[FinishWrite])
			case ProjectTrigger:
				rest.WhenFuncTrigger(Run, callbacks[Run]).
					WhenFuncTrigger(Read, callbacks[Read]).
					WhenFuncTrigger(FinishRead, callbacks[FinishRead]).
					WhenActionTrigger(Close, callbacks[Close]).
					WhenActionTrigger(Write, callbacks[Write]).
					WhenActionTrigger(FinishWrite, callbacks[FinishWrite])
			case ProjectFull:
				rest.WhenFuncFull(Run, callbacks[Run]).
					WhenFuncFull(Read, callbacks[Read]).
					WhenFuncFull(FinishRead, callbacks[FinishRead]).
					WhenActionFull(Close, callbacks[Close]).
					WhenActionFull(Write, callbacks[Write]).
					WhenActionFull(FinishWrite, callbacks[FinishWrite])
			}
			require.NoError(t, rest.Err())
			c.MustConfigure(Ready).WhenChangeTo(Close, Rest)

			m := c.MustBuild(Rest)
			AssertState(t, m, Rest)
			assert.Equal(t, "", s)

			require.NoError(t, m.Trigger(Run))
			AssertState(t, m, Ready)
			assert.Equal(t, "WhenFunc_Run", s)

			require.NoError(t, m.Trigger(Close))
			require.NoError(t, m.Trigger(Read, "hello"))
			AssertState(t, m, Ready)
			assert.Equal(t, "hello", s)

			require.NoError(t, m.Trigger(Close))
			require.NoError(t, m.Trigger(FinishRead, "hello", 1))
			AssertState(t, m, Ready)
			assert.Equal(t, "hello1", s)

			require.NoError(t, m.Trigger(Close))
			require.NoError(t, m.Trigger(Close))
			assert.Equal(t, "WhenAction_Close", s)
			AssertState(t, m, Rest)

			require.NoError(t, m.Trigger(Write, "world"))
			assert.Equal(t, "world", s)
			AssertState(t, m, Rest)

			require.NoError(t, m.Trigger(FinishWrite, "world", 1))
			assert.Equal(t, "world1", s)
			AssertState(t, m, Rest)

			assert.ErrorIs(t, m.Trigger(FinishWrite, "world"), ErrNoMatchingHandler)
			assert.Equal(t, "world1", s)
		})
	}
}

func TestHandler_ReflectiveProjectionReceivesStateAndTrigger(t *testing.T) {
	var gotState State
	var gotTrigger Trigger

	c := NewConfigurator[Pair, Trigger]()
	c.MustConfigure(pairOf(Ready)).
		WhenFuncFull(Read, func(s Pair, tr Trigger, n int) Pair {
			gotState, gotTrigger = s.A, tr
			return Pair{A: Reading, B: State(n)}
		})
	m := c.MustBuild(pairOf(Ready))

	require.NoError(t, m.Trigger(Read, 3))
	assert.Equal(t, Ready, gotState)
	assert.Equal(t, Read, gotTrigger)
	AssertState(t, m, Pair{A: Reading, B: State(3)})
}

func TestHandler_TypedConstructors(t *testing.T) {
	var log []string

	c := NewConfigurator[State, Trigger]()
	c.MustConfigure(Rest).
		When(Run, Func(func(s State, tr Trigger) State {
			log = append(log, fmt.Sprint("func ", s, " ", tr))
			return Ready
		})).
		When(Read, Func1(func(s State, tr Trigger, path string) State {
			log = append(log, "func1 "+path)
			return Reading
		})).
		When(Write, Func2(func(s State, tr Trigger, path string, size int) State {
			log = append(log, fmt.Sprint("func2 ", path, " ", size))
			return Writing
		})).
		When(FinishWrite, Func3(func(s State, tr Trigger, a, b string, ok bool) State {
			log = append(log, fmt.Sprint("func3 ", a, b, ok))
			return s
		}))
	c.MustConfigure(Ready).
		When(Close, Action(func(s State, tr Trigger) { log = append(log, "action") })).
		When(Read, Action1(func(s State, tr Trigger, n int) { log = append(log, fmt.Sprint("action1 ", n)) })).
		When(Write, Action2(func(s State, tr Trigger, a, b int) { log = append(log, fmt.Sprint("action2 ", a+b)) })).
		When(FinishRead, Action3(func(s State, tr Trigger, a, b, c int) { log = append(log, fmt.Sprint("action3 ", a+b+c)) })).
		When(Run, ChangeTo[State, Trigger](Rest))

	m := c.MustBuild(Rest)

	require.NoError(t, m.Trigger(FinishWrite, "x", "y", true))
	require.NoError(t, m.Trigger(Run))
	require.NoError(t, m.Trigger(Close))
	require.NoError(t, m.Trigger(Read, 1))
	require.NoError(t, m.Trigger(Write, 2, 3))
	require.NoError(t, m.Trigger(FinishRead, 1, 2, 3))
	AssertState(t, m, Ready)

	require.NoError(t, m.Trigger(Run))
	require.NoError(t, m.Trigger(Read, "/in"))
	AssertState(t, m, Reading)

	m.SetState(Rest)
	require.NoError(t, m.Trigger(Write, "/out", 9))
	AssertState(t, m, Writing)

	assert.Equal(t, []string{
		"func3 xytrue",
		"func Rest Run",
		"action",
		"action1 1",
		"action2 5",
		"action3 6",
		"func1 /in",
		"func2 /out 9",
	}, log)
}

func TestHandler_Signature(t *testing.T) {
	h := Func2(func(s State, tr Trigger, a string, b io.Reader) State { return s })
	assert.Equal(t, 2, h.Arity())
	assert.Equal(t, []reflect.Type{reflect.TypeFor[string](), reflect.TypeFor[io.Reader]()}, h.Signature())
	assert.False(t, h.AcceptsAnyPayload())

	reflective, err := HandlerOf[State, Trigger](func(s State, n int) {}, ProjectState, false)
	require.NoError(t, err)
	assert.Equal(t, 1, reflective.Arity())
	assert.Equal(t, []reflect.Type{reflect.TypeFor[int]()}, reflective.Signature())

	assert.True(t, ChangeTo[State, Trigger](Ready).AcceptsAnyPayload())
	assert.True(t, Ignore[State, Trigger]().AcceptsAnyPayload())
	assert.Equal(t, 0, Ignore[State, Trigger]().Arity())
}

func TestHandler_Match(t *testing.T) {
	var nilReader io.Reader
	var nilPtr *strings.Builder

	h := Func3(func(s State, tr Trigger, r io.Reader, p *strings.Builder, n int) State { return s })

	cases := []struct {
		name string
		args []any
		ok   bool
	}{
		{"exact", []any{strings.NewReader("x"), &strings.Builder{}, 1}, true},
		{"value not implementing interface", []any{&strings.Builder{}, &strings.Builder{}, 1}, false},
		{"nil interface", []any{nil, &strings.Builder{}, 1}, true},
		{"typed nil interface var", []any{nilReader, nilPtr, 1}, true},
		{"nil pointer", []any{strings.NewReader("x"), nil, 1}, true},
		{"nil int", []any{strings.NewReader("x"), nil, nil}, false},
		{"int32 for int", []any{strings.NewReader("x"), nil, int32(1)}, false},
		{"float for int", []any{strings.NewReader("x"), nil, 1.0}, false},
		{"arity", []any{strings.NewReader("x"), nil}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := h.Match(tc.args...)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestHandler_NamedTypesAreNotConverted(t *testing.T) {
	type Path string

	c := NewConfigurator[State, Trigger]()
	c.MustConfigure(Rest).WhenFunc(Read, func(p Path) State { return Reading })
	m := c.MustBuild(Rest)

	assert.ErrorIs(t, m.Trigger(Read, "plain string"), ErrNoMatchingHandler)
	require.NoError(t, m.Trigger(Read, Path("typed")))
	AssertState(t, m, Reading)
}

func TestHandler_NilPayloadIsZeroValue(t *testing.T) {
	var got io.Reader = strings.NewReader("sentinel")

	c := NewConfigurator[State, Trigger]()
	c.MustConfigure(Rest).
		When(Read, Action1(func(s State, tr Trigger, r io.Reader) { got = r })).
		WhenAction(Write, func(p *strings.Builder) { assert.Nil(t, p) })
	m := c.MustBuild(Rest)

	require.NoError(t, m.Trigger(Read, nil))
	assert.Nil(t, got)
	require.NoError(t, m.Trigger(Write, nil))
}

func TestHandler_FixedTargetDiscardsPayload(t *testing.T) {
	c := NewConfigurator[State, Trigger]()
	c.MustConfigure(Rest).
		WhenChangeTo(Run, Ready).
		WhenIgnore(Close)
	m := c.MustBuild(Rest)

	require.NoError(t, m.Trigger(Close, "anything", 1, nil))
	AssertState(t, m, Rest)
	require.NoError(t, m.Trigger(Run, 3.14))
	AssertState(t, m, Ready)
}

func TestProjection_String(t *testing.T) {
	assert.Equal(t, "none", ProjectNone.String())
	assert.Equal(t, "state", ProjectState.String())
	assert.Equal(t, "trigger", ProjectTrigger.String())
	assert.Equal(t, "full", ProjectFull.String())
	assert.Equal(t, "projection(9)", Projection(9).String())
}
