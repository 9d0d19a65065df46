package solvable

import (
	"fmt"
	"iter"
	"strings"
)

// Op is the comparison operator of a Relation.
type Op int

const (
	OpNone Op = iota // bare name, no version constraint
	OpLess
	OpLessEqual
	OpEqual
	OpGreaterEqual
	OpGreater
)

var opStrings = map[Op]string{
	OpNone:         "",
	OpLess:         "<",
	OpLessEqual:    "<=",
	OpEqual:        "=",
	OpGreaterEqual: ">=",
	OpGreater:      ">",
}

// String returns the symbolic form of the operator, e.g. ">=".
func (o Op) String() string {
	if s, ok := opStrings[o]; ok {
		return s
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// ParseOp accepts the symbolic operators as well as the rpm-md flag
// spellings (LT, LE, EQ, GE, GT). The empty string is OpNone.
func ParseOp(s string) (Op, error) {
	switch strings.TrimSpace(s) {
	case "":
		return OpNone, nil
	case "<", "LT", "lt":
		return OpLess, nil
	case "<=", "LE", "le":
		return OpLessEqual, nil
	case "=", "==", "EQ", "eq":
		return OpEqual, nil
	case ">=", "GE", "ge":
		return OpGreaterEqual, nil
	case ">", "GT", "gt":
		return OpGreater, nil
	}
	return OpNone, fmt.Errorf("unknown relation operator %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (o Op) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Op) UnmarshalText(text []byte) error {
	op, err := ParseOp(string(text))
	if err != nil {
		return err
	}
	*o = op
	return nil
}

// Relation is a named dependency constraint: name, operator and version.
type Relation struct {
	Name string
	Op   Op
	EVR  string
}

// String renders the relation the way rpm prints it, e.g. "bar >= 2.0".
func (r Relation) String() string {
	if r.Op == OpNone {
		return r.Name
	}
	return r.Name + " " + r.Op.String() + " " + r.EVR
}

// Solvable is one repository record as exposed by a repository loader.
// The pipeline only reads it.
type Solvable struct {
	Name        string
	EVR         string
	Arch        string
	Category    string
	Timestamp   int64 // unix seconds
	Summary     string
	Description string
	Requires    []Relation
	Freshens    []Relation
}

// String returns name-evr.arch, the form used in diagnostics.
func (s *Solvable) String() string {
	var b strings.Builder
	b.WriteString(s.Name)
	b.WriteByte('-')
	b.WriteString(s.EVR)
	if s.Arch != "" {
		b.WriteByte('.')
		b.WriteString(s.Arch)
	}
	return b.String()
}

// List is an in-memory collection of solvables.
type List []*Solvable

// Solvables yields the list in order.
func (l List) Solvables() iter.Seq[*Solvable] {
	return func(yield func(*Solvable) bool) {
		for _, s := range l {
			if !yield(s) {
				return
			}
		}
	}
}
