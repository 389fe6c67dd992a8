package flite

import (
	"encoding/json"
	"reflect"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const snapshotKind = "flite"

// Snapshot is the encoded runtime part of a Machine. Handlers and hooks are code, so the
// table is never part of it: a snapshot can only be restored into a machine built from a
// configurator with the same states and triggers.
type Snapshot[S any] struct {
	Kind        string `json:"type" yaml:"type"`
	StateType   string `json:"state_type" yaml:"state_type"`
	TriggerType string `json:"trigger_type" yaml:"trigger_type"`
	ID          string `json:"id" yaml:"id"`
	State       S      `json:"state" yaml:"state"`
}

func typeNames[S, T comparable]() (string, string) {
	return qualifiedName(reflect.TypeFor[S]()), qualifiedName(reflect.TypeFor[T]())
}

// qualifiedName identifies a named type by its import path. Unnamed types fall back to
// their literal form.
func qualifiedName(t reflect.Type) string {
	if t.Name() == "" || t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// Snapshot captures the machine identity and current state
func (m *Machine[S, T]) Snapshot() Snapshot[S] {
	stateType, triggerType := typeNames[S, T]()
	return Snapshot[S]{
		Kind:        snapshotKind,
		StateType:   stateType,
		TriggerType: triggerType,
		ID:          m.id,
		State:       m.state,
	}
}

// Restore applies snap to the machine. Like SetState it runs no hooks.
func (m *Machine[S, T]) Restore(snap Snapshot[S]) error {
	stateType, triggerType := typeNames[S, T]()

	if snap.Kind != snapshotKind {
		return &SnapshotError{Field: "type", Expected: snapshotKind, Actual: snap.Kind}
	}
	if snap.StateType != stateType {
		return &SnapshotError{Field: "state_type", Expected: stateType, Actual: snap.StateType}
	}
	if snap.TriggerType != triggerType {
		return &SnapshotError{Field: "trigger_type", Expected: triggerType, Actual: snap.TriggerType}
	}
	if _, err := uuid.Parse(snap.ID); err != nil {
		return &SnapshotError{Field: "id", Expected: "uuid", Actual: snap.ID}
	}

	m.id = snap.ID
	m.SetState(snap.State)
	return nil
}

// MarshalJSON serializes the machine snapshot to JSON
func (m *Machine[S, T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Snapshot())
}

// UnmarshalJSON restores the machine from a JSON snapshot
func (m *Machine[S, T]) UnmarshalJSON(data []byte) error {
	var snap Snapshot[S]
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}
	return m.Restore(snap)
}

// MarshalYAML implements yaml.Marshaler
func (m *Machine[S, T]) MarshalYAML() (any, error) {
	return m.Snapshot(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler
func (m *Machine[S, T]) UnmarshalYAML(node *yaml.Node) error {
	var snap Snapshot[S]
	if err := node.Decode(&snap); err != nil {
		return err
	}
	return m.Restore(snap)
}
