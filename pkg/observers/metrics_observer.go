package observers

import (
	"maps"
	"sync"
	"time"

	"github.com/anggasct/flite"
)

var (
	_ flite.ExtendedObserver[string, string] = (*MetricsObserver[string, string])(nil)
	_ flite.AttachObserver[string]           = (*MetricsObserver[string, string])(nil)
)

// Transition identifies an edge taken by a machine
type Transition[S comparable] struct {
	From S
	To   S
}

// MetricsObserver collects metrics about machine execution. It can be shared by several
// machines with the same state and trigger types.
type MetricsObserver[S, T comparable] struct {
	stateVisits      map[S]int
	stateTimeSpent   map[S]time.Duration
	triggerCounts    map[T]int
	transitionCounts map[Transition[S]]int
	ignoredCounts    map[T]int
	rejectionCount   int
	errorCount       int
	lastStateEntry   map[S]time.Time
	mutex            sync.RWMutex
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver[S, T comparable]() *MetricsObserver[S, T] {
	return &MetricsObserver[S, T]{
		stateVisits:      make(map[S]int),
		stateTimeSpent:   make(map[S]time.Duration),
		triggerCounts:    make(map[T]int),
		transitionCounts: make(map[Transition[S]]int),
		ignoredCounts:    make(map[T]int),
		lastStateEntry:   make(map[S]time.Time),
	}
}

func (o *MetricsObserver[S, T]) leave(state S, now time.Time) {
	if entryTime, ok := o.lastStateEntry[state]; ok {
		o.stateTimeSpent[state] += now.Sub(entryTime)
		delete(o.lastStateEntry, state)
	}
}

func (o *MetricsObserver[S, T]) enter(state S, now time.Time) {
	o.stateVisits[state]++
	o.lastStateEntry[state] = now
}

// OnAttach records the state the machine is in when the observer is added, so the time
// spent there before the first transition is counted
func (o *MetricsObserver[S, T]) OnAttach(current S) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if _, ok := o.lastStateEntry[current]; !ok {
		o.enter(current, time.Now())
	}
}

// OnTransition records transition metrics
func (o *MetricsObserver[S, T]) OnTransition(from S, to S, trigger T) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	now := time.Now()
	o.leave(from, now)
	o.enter(to, now)
	o.triggerCounts[trigger]++
	o.transitionCounts[Transition[S]{From: from, To: to}]++
}

// OnTriggerRejected records rejected triggers
func (o *MetricsObserver[S, T]) OnTriggerRejected(state S, trigger T, err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.rejectionCount++
}

// OnTriggerIgnored records triggers that kept the state
func (o *MetricsObserver[S, T]) OnTriggerIgnored(state S, trigger T) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.triggerCounts[trigger]++
	o.ignoredCounts[trigger]++
}

// OnStateSet records forced state changes as a visit without a transition
func (o *MetricsObserver[S, T]) OnStateSet(from S, to S) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	now := time.Now()
	o.leave(from, now)
	o.enter(to, now)
}

// OnError records observer errors
func (o *MetricsObserver[S, T]) OnError(err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.errorCount++
}

// GetStateVisitCounts returns the number of times each state was entered
func (o *MetricsObserver[S, T]) GetStateVisitCounts() map[S]int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return maps.Clone(o.stateVisits)
}

// GetStateTimeSpent returns the time spent in each state that has been left
func (o *MetricsObserver[S, T]) GetStateTimeSpent() map[S]time.Duration {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return maps.Clone(o.stateTimeSpent)
}

// GetTriggerCounts returns the number of times each trigger was handled
func (o *MetricsObserver[S, T]) GetTriggerCounts() map[T]int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return maps.Clone(o.triggerCounts)
}

// GetIgnoredCounts returns the number of times each trigger kept the state
func (o *MetricsObserver[S, T]) GetIgnoredCounts() map[T]int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return maps.Clone(o.ignoredCounts)
}

// GetTransitionCounts returns the number of times each transition occurred
func (o *MetricsObserver[S, T]) GetTransitionCounts() map[Transition[S]]int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return maps.Clone(o.transitionCounts)
}

// GetRejectionCount returns the number of rejected triggers
func (o *MetricsObserver[S, T]) GetRejectionCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.rejectionCount
}

// GetErrorCount returns the number of observer errors
func (o *MetricsObserver[S, T]) GetErrorCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.errorCount
}

// Reset resets all metrics
func (o *MetricsObserver[S, T]) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.stateVisits = make(map[S]int)
	o.stateTimeSpent = make(map[S]time.Duration)
	o.triggerCounts = make(map[T]int)
	o.transitionCounts = make(map[Transition[S]]int)
	o.ignoredCounts = make(map[T]int)
	o.rejectionCount = 0
	o.errorCount = 0
	o.lastStateEntry = make(map[S]time.Time)
}
