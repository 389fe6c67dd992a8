package flite

import (
	"errors"
	"fmt"
)

// ErrorCode represents specific error conditions in the state machine
type ErrorCode int

const (
	// No error occurred
	ErrCodeNone ErrorCode = iota
	// State was configured more than once
	ErrCodeDuplicateState
	// Configuration was attempted after Build
	ErrCodeAlreadyBuilt
	// Trigger was registered more than once on a state
	ErrCodeDuplicateTrigger
	// Entry or leave hook was set more than once on a state
	ErrCodeDuplicateHook
	// Payload does not match the handler registered for the trigger
	ErrCodeNoMatchingHandler
	// Current state has no handler for the trigger
	ErrCodeTriggerNotAllowed
	// Callback cannot be used as a handler
	ErrCodeInvalidHandler
	// Snapshot was produced for different state or trigger types
	ErrCodeSnapshotMismatch
)

var (
	ErrDuplicateState    = errors.New("state is already configured")
	ErrAlreadyBuilt      = errors.New("configurator is already built")
	ErrDuplicateTrigger  = errors.New("trigger is already registered for state")
	ErrDuplicateHook     = errors.New("hook is already set for state")
	ErrNoMatchingHandler = errors.New("no matching handler")
	ErrTriggerNotAllowed = errors.New("trigger not allowed in current state")
	ErrInvalidHandler    = errors.New("invalid handler")
	ErrSnapshotMismatch  = errors.New("snapshot does not match machine")
)

var sentinels = map[ErrorCode]error{
	ErrCodeDuplicateState:    ErrDuplicateState,
	ErrCodeAlreadyBuilt:      ErrAlreadyBuilt,
	ErrCodeDuplicateTrigger:  ErrDuplicateTrigger,
	ErrCodeDuplicateHook:     ErrDuplicateHook,
	ErrCodeNoMatchingHandler: ErrNoMatchingHandler,
	ErrCodeTriggerNotAllowed: ErrTriggerNotAllowed,
	ErrCodeInvalidHandler:    ErrInvalidHandler,
	ErrCodeSnapshotMismatch:  ErrSnapshotMismatch,
}

// String returns the sentinel message for the code
func (c ErrorCode) String() string {
	if err, ok := sentinels[c]; ok {
		return err.Error()
	}
	return "none"
}

// ConfigurationError represents a violation while building the transition table
type ConfigurationError struct {
	Code    ErrorCode
	State   string
	Trigger string
	Message string
}

func (e *ConfigurationError) Error() string {
	switch {
	case e.Trigger != "":
		return fmt.Sprintf("configuration error [%s on %s]: %s", e.State, e.Trigger, e.Message)
	case e.State != "":
		return fmt.Sprintf("configuration error [%s]: %s", e.State, e.Message)
	default:
		return fmt.Sprintf("configuration error: %s", e.Message)
	}
}

// Is reports whether target is the sentinel for the error code
func (e *ConfigurationError) Is(target error) bool {
	return sentinels[e.Code] == target
}

// NewDuplicateStateError creates a new duplicate state error
func NewDuplicateStateError(state any) *ConfigurationError {
	return &ConfigurationError{
		Code:    ErrCodeDuplicateState,
		State:   fmt.Sprint(state),
		Message: ErrDuplicateState.Error(),
	}
}

// NewAlreadyBuiltError creates a new error for configuration after Build
func NewAlreadyBuiltError(operation string) *ConfigurationError {
	return &ConfigurationError{
		Code:    ErrCodeAlreadyBuilt,
		Message: fmt.Sprintf("cannot %s: %s", operation, ErrAlreadyBuilt),
	}
}

// NewDuplicateTriggerError creates a new duplicate trigger error
func NewDuplicateTriggerError(state, trigger any) *ConfigurationError {
	return &ConfigurationError{
		Code:    ErrCodeDuplicateTrigger,
		State:   fmt.Sprint(state),
		Trigger: fmt.Sprint(trigger),
		Message: ErrDuplicateTrigger.Error(),
	}
}

// NewDuplicateHookError creates a new duplicate hook error
func NewDuplicateHookError(state any, hook string) *ConfigurationError {
	return &ConfigurationError{
		Code:    ErrCodeDuplicateHook,
		State:   fmt.Sprint(state),
		Message: fmt.Sprintf("%s %s", hook, ErrDuplicateHook),
	}
}

// NewInvalidHandlerError creates a new invalid handler error
func NewInvalidHandlerError(reason string) *ConfigurationError {
	return &ConfigurationError{
		Code:    ErrCodeInvalidHandler,
		Message: fmt.Sprintf("%s: %s", ErrInvalidHandler, reason),
	}
}

// TransitionError represents a failure while firing a trigger
type TransitionError struct {
	Code    ErrorCode
	State   string
	Trigger string
	Reason  string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transition error [%s on %s]: %s", e.State, e.Trigger, e.Reason)
}

// Is reports whether target is the sentinel for the error code
func (e *TransitionError) Is(target error) bool {
	return sentinels[e.Code] == target
}

// NewTriggerNotAllowedError creates a new trigger not allowed error
func NewTriggerNotAllowedError(state, trigger any) *TransitionError {
	return &TransitionError{
		Code:    ErrCodeTriggerNotAllowed,
		State:   fmt.Sprint(state),
		Trigger: fmt.Sprint(trigger),
		Reason:  ErrTriggerNotAllowed.Error(),
	}
}

// NewNoMatchingHandlerError creates a new no matching handler error
func NewNoMatchingHandlerError(state, trigger any, reason string) *TransitionError {
	return &TransitionError{
		Code:    ErrCodeNoMatchingHandler,
		State:   fmt.Sprint(state),
		Trigger: fmt.Sprint(trigger),
		Reason:  fmt.Sprintf("%s: %s", ErrNoMatchingHandler, reason),
	}
}

// SnapshotError represents a snapshot that cannot be restored into a machine
type SnapshotError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *SnapshotError) Error() string {
	return fmt.Sprintf("snapshot error: %s is %q, expected %q", e.Field, e.Actual, e.Expected)
}

// Is reports whether target is ErrSnapshotMismatch
func (e *SnapshotError) Is(target error) bool {
	return target == ErrSnapshotMismatch
}

// IsConfigurationError checks if an error is a ConfigurationError
func IsConfigurationError(err error) bool {
	var e *ConfigurationError
	return errors.As(err, &e)
}

// IsTransitionError checks if an error is a TransitionError
func IsTransitionError(err error) bool {
	var e *TransitionError
	return errors.As(err, &e)
}

// GetErrorCode returns the error code for known error types
func GetErrorCode(err error) ErrorCode {
	var cfgErr *ConfigurationError
	if errors.As(err, &cfgErr) {
		return cfgErr.Code
	}
	var trErr *TransitionError
	if errors.As(err, &trErr) {
		return trErr.Code
	}
	var snapErr *SnapshotError
	if errors.As(err, &snapErr) {
		return ErrCodeSnapshotMismatch
	}
	return ErrCodeNone
}
