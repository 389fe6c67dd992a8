package flite

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// Configurator builds a transition table. Each state is configured once through
// Configure; Build freezes the table and returns a Machine over it.
type Configurator[S, T comparable] struct {
	states map[S]*StateConfig[S, T]
	order  []S
	built  bool
	table  *table[S, T]
	errs   []error
}

// table is the frozen state -> configuration map shared by every Machine built from one
// Configurator. Nothing writes to it after Build.
type table[S, T comparable] struct {
	states map[S]*StateConfig[S, T]
}

func (t *table[S, T]) lookup(state S) (*StateConfig[S, T], bool) {
	if t == nil {
		return nil, false
	}
	sc, ok := t.states[state]
	return sc, ok
}

// NewConfigurator creates an empty configurator
func NewConfigurator[S, T comparable]() *Configurator[S, T] {
	return &Configurator[S, T]{
		states: make(map[S]*StateConfig[S, T]),
	}
}

// Configure registers state and returns its configuration handle
func (c *Configurator[S, T]) Configure(state S) (*StateConfig[S, T], error) {
	if c.built {
		return nil, NewAlreadyBuiltError(fmt.Sprintf("configure state %v", state))
	}
	if _, exists := c.states[state]; exists {
		return nil, NewDuplicateStateError(state)
	}

	sc := newStateConfig(state, c)
	c.states[state] = sc
	c.order = append(c.order, state)
	return sc, nil
}

// MustConfigure is like Configure but panics on error
func (c *Configurator[S, T]) MustConfigure(state S) *StateConfig[S, T] {
	sc, err := c.Configure(state)
	if err != nil {
		panic(fmt.Sprintf("failed to configure state: %v", err))
	}
	return sc
}

// States returns the configured states in configuration order
func (c *Configurator[S, T]) States() []S {
	return slices.Clone(c.order)
}

// IsBuilt reports whether Build has been called
func (c *Configurator[S, T]) IsBuilt() bool {
	return c.built
}

// Err returns every error recorded by fluent configuration calls, joined
func (c *Configurator[S, T]) Err() error {
	return errors.Join(c.errs...)
}

func (c *Configurator[S, T]) record(err error) {
	c.errs = append(c.errs, err)
}

// Build freezes the configurator and returns a machine starting in initial. Neither
// initial nor any transition target has to be configured; an unconfigured state simply
// has no triggers and no hooks.
//
// Build may be called more than once. Every machine shares the same frozen table.
func (c *Configurator[S, T]) Build(initial S) (*Machine[S, T], error) {
	c.built = true

	if err := c.Err(); err != nil {
		return nil, err
	}

	if c.table == nil {
		c.table = &table[S, T]{states: maps.Clone(c.states)}
	}
	return newMachine(initial, c.table), nil
}

// MustBuild is like Build but panics on error
func (c *Configurator[S, T]) MustBuild(initial S) *Machine[S, T] {
	m, err := c.Build(initial)
	if err != nil {
		panic(fmt.Sprintf("failed to build state machine: %v", err))
	}
	return m
}
