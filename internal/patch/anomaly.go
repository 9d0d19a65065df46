package patch

import "fmt"

// AnomalyKind classifies non-fatal findings.
type AnomalyKind int

const (
	DuplicateEntry AnomalyKind = iota + 1
	UnknownKind
)

func (k AnomalyKind) String() string {
	switch k {
	case DuplicateEntry:
		return "duplicate"
	case UnknownKind:
		return "unknown-kind"
	}
	return fmt.Sprintf("AnomalyKind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k AnomalyKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Anomaly is a finding that was logged while processing continued.
type Anomaly struct {
	Kind     AnomalyKind `json:"kind" yaml:"kind"`
	Group    string      `json:"group,omitempty" yaml:"group,omitempty"`
	Prefix   string      `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Solvable string      `json:"solvable" yaml:"solvable"`
}

func (a Anomaly) String() string {
	switch a.Kind {
	case DuplicateEntry:
		return fmt.Sprintf("known %s %s replaced", a.Group, a.Solvable)
	case UnknownKind:
		return fmt.Sprintf("unknown kind %q of %s", a.Prefix, a.Solvable)
	}
	return fmt.Sprintf("%s %s", a.Kind, a.Solvable)
}
