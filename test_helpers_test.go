package flite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type State int

const (
	Rest State = iota
	Ready
	Reading
	Writing
)

func (s State) String() string {
	switch s {
	case Rest:
		return "Rest"
	case Ready:
		return "Ready"
	case Reading:
		return "Reading"
	case Writing:
		return "Writing"
	default:
		return "Unknown"
	}
}

type Trigger int

const (
	Run Trigger = iota
	Close
	Read
	FinishRead
	Write
	FinishWrite
)

func (t Trigger) String() string {
	return [...]string{"Run", "Close", "Read", "FinishRead", "Write", "FinishWrite"}[t]
}

var allTriggers = []Trigger{Run, Close, Read, FinishRead, Write, FinishWrite}

// Pair is a composite state made of two sub-states
type Pair struct {
	A State
	B State
}

func pairOf(s State) Pair {
	return Pair{A: s, B: s}
}

func sameState(s State) State {
	return s
}

// TransitionRecord captures one observed transition
type TransitionRecord[S, T comparable] struct {
	From    S
	To      S
	Trigger T
}

// RejectRecord captures one rejected trigger
type RejectRecord[S, T comparable] struct {
	State   S
	Trigger T
	Err     error
}

// TestObserver is a recording observer for testing
type TestObserver[S, T comparable] struct {
	Transitions []TransitionRecord[S, T]
	Rejects     []RejectRecord[S, T]
	Ignored     []TransitionRecord[S, T]
	StateSets   []TransitionRecord[S, T]
	Attached    []S
	Errors      []error
}

func NewTestObserver[S, T comparable]() *TestObserver[S, T] {
	return &TestObserver[S, T]{}
}

func (o *TestObserver[S, T]) OnTransition(from S, to S, trigger T) {
	o.Transitions = append(o.Transitions, TransitionRecord[S, T]{From: from, To: to, Trigger: trigger})
}

func (o *TestObserver[S, T]) OnTriggerRejected(state S, trigger T, err error) {
	o.Rejects = append(o.Rejects, RejectRecord[S, T]{State: state, Trigger: trigger, Err: err})
}

func (o *TestObserver[S, T]) OnTriggerIgnored(state S, trigger T) {
	o.Ignored = append(o.Ignored, TransitionRecord[S, T]{From: state, To: state, Trigger: trigger})
}

func (o *TestObserver[S, T]) OnStateSet(from S, to S) {
	var zero T
	o.StateSets = append(o.StateSets, TransitionRecord[S, T]{From: from, To: to, Trigger: zero})
}

func (o *TestObserver[S, T]) OnAttach(current S) {
	o.Attached = append(o.Attached, current)
}

func (o *TestObserver[S, T]) OnError(err error) {
	o.Errors = append(o.Errors, err)
}

// buildCounterMachine configures the Rest/Ready/Reading/Writing machine whose hooks add
// to *n. key maps the enum onto the state type under test. Entry and leave hooks must
// strictly alternate, starting with a leave.
func buildCounterMachine[K comparable](t *testing.T, key func(State) K, n *int) *Machine[K, Trigger] {
	t.Helper()

	entered := true
	hooks := func(entry, leave int) (Hook, Hook) {
		onEntry := func() {
			assert.False(t, entered, "entry hook without preceding leave")
			entered = true
			*n += entry
		}
		onLeave := func() {
			assert.True(t, entered, "leave hook twice in a row")
			entered = false
			*n += leave
		}
		return onEntry, onLeave
	}

	c := NewConfigurator[K, Trigger]()

	entry, leave := hooks(1, 10)
	c.MustConfigure(key(Rest)).
		OnEntry(entry).
		OnLeave(leave).
		WhenChangeTo(Run, key(Ready)).
		WhenIgnore(Close)

	entry, leave = hooks(100, 1000)
	c.MustConfigure(key(Ready)).
		OnEntry(entry).
		OnLeave(leave).
		WhenChangeTo(Read, key(Reading)).
		WhenChangeTo(Write, key(Writing)).
		WhenChangeTo(Close, key(Rest))

	entry, leave = hooks(10000, 100000)
	c.MustConfigure(key(Reading)).
		OnEntry(entry).
		OnLeave(leave).
		WhenChangeTo(FinishRead, key(Ready)).
		WhenChangeTo(Close, key(Rest))

	entry, leave = hooks(1000000, 10000000)
	c.MustConfigure(key(Writing)).
		OnEntry(entry).
		OnLeave(leave).
		WhenChangeTo(FinishWrite, key(Ready)).
		WhenChangeTo(Close, key(Rest))

	m, err := c.Build(key(Rest))
	require.NoError(t, err)
	return m
}

// AssertState checks the machine's current state
func AssertState[S, T comparable](t *testing.T, m *Machine[S, T], expected S) {
	t.Helper()
	assert.Equal(t, expected, m.CurrentState())
}

// AssertAllowed checks exactly which triggers the current state accepts
func AssertAllowed[S comparable](t *testing.T, m *Machine[S, Trigger], allowed ...Trigger) {
	t.Helper()
	want := make(map[Trigger]bool, len(allowed))
	for _, trigger := range allowed {
		want[trigger] = true
	}
	for _, trigger := range allTriggers {
		assert.Equal(t, want[trigger], m.AllowsTrigger(trigger), "AllowsTrigger(%s) in %v", trigger, m.CurrentState())
	}
}
