package observers

import (
	"fmt"
	"sync"

	"github.com/anggasct/flite"
)

var _ flite.Observer[string, string] = (*ValidationObserver[string, string])(nil)

// ValidationObserver checks the transitions a machine actually takes against an allowed
// set. Handlers may compute their target at run time, so the table alone does not say
// which edges occur.
type ValidationObserver[S, T comparable] struct {
	expectedStates     map[S]bool
	visitedStates      map[S]bool
	allowedTransitions map[S]map[S]bool
	violations         []string
	mutex              sync.RWMutex
}

// NewValidationObserver creates a new validation observer
func NewValidationObserver[S, T comparable]() *ValidationObserver[S, T] {
	return &ValidationObserver[S, T]{
		expectedStates:     make(map[S]bool),
		visitedStates:      make(map[S]bool),
		allowedTransitions: make(map[S]map[S]bool),
		violations:         make([]string, 0),
	}
}

// AddExpectedState adds a state that should be visited
func (o *ValidationObserver[S, T]) AddExpectedState(state S) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.expectedStates[state] = true
}

// AddAllowedTransition adds an allowed transition
func (o *ValidationObserver[S, T]) AddAllowedTransition(from, to S) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if _, exists := o.allowedTransitions[from]; !exists {
		o.allowedTransitions[from] = make(map[S]bool)
	}
	o.allowedTransitions[from][to] = true
}

// OnTransition validates transitions
func (o *ValidationObserver[S, T]) OnTransition(from S, to S, trigger T) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.visitedStates[from] = true
	o.visitedStates[to] = true

	if !o.allowedTransitions[from][to] {
		o.violations = append(o.violations, fmt.Sprintf("unexpected transition %v -> %v on %v", from, to, trigger))
	}
}

// OnTriggerRejected is a no-op; rejected triggers do not change state
func (o *ValidationObserver[S, T]) OnTriggerRejected(state S, trigger T, err error) {}

// GetViolations returns the recorded violations
func (o *ValidationObserver[S, T]) GetViolations() []string {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make([]string, len(o.violations))
	copy(result, o.violations)
	return result
}

// GetUnvisitedStates returns expected states no transition touched
func (o *ValidationObserver[S, T]) GetUnvisitedStates() []S {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	var unvisited []S
	for state := range o.expectedStates {
		if !o.visitedStates[state] {
			unvisited = append(unvisited, state)
		}
	}
	return unvisited
}

// IsValid reports whether no violation was recorded
func (o *ValidationObserver[S, T]) IsValid() bool {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.violations) == 0
}

// Reset clears visits and violations
func (o *ValidationObserver[S, T]) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.visitedStates = make(map[S]bool)
	o.violations = make([]string, 0)
}
