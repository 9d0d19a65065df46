package patch

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSchema matches every *SchemaError with errors.Is.
var ErrSchema = errors.New("schema violation")

// Violation names the structural rule a repository broke.
type Violation int

const (
	MalformedName Violation = iota + 1
	MalformedRequire
	NonAtomRequire
	UnknownAtom
	NonEqualRequire
	UnknownAtomVersion
	ForeignFreshens
	QualifiedAtomRequire
	NonGreaterEqualAtomRequire
)

var violationText = map[Violation]string{
	MalformedName:              "has no kind",
	MalformedRequire:           "requires malformed name",
	NonAtomRequire:             "requires non-atom",
	UnknownAtom:                "requires unknown atom",
	NonEqualRequire:            "requires non-equal atom",
	UnknownAtomVersion:         "requires non-existing atom version",
	ForeignFreshens:            "freshens foreign name",
	QualifiedAtomRequire:       "requires qualified name",
	NonGreaterEqualAtomRequire: "requires non-greater-equal",
}

func (v Violation) String() string {
	if s, ok := violationText[v]; ok {
		return s
	}
	return fmt.Sprintf("Violation(%d)", int(v))
}

// SchemaError is the fatal outcome of a run. It identifies the solvable
// being processed, the atom at fault if the rule concerns the atom, and the
// relation that broke the rule.
type SchemaError struct {
	Violation Violation
	Solvable  string
	Atom      string
	Relation  string
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString(ErrSchema.Error())
	b.WriteString(": ")
	if e.Atom != "" {
		fmt.Fprintf(&b, "atom %s (required by %s)", e.Atom, e.Solvable)
	} else {
		b.WriteString(e.Solvable)
	}
	b.WriteByte(' ')
	b.WriteString(e.Violation.String())
	if e.Relation != "" {
		b.WriteByte(' ')
		b.WriteString(e.Relation)
	}
	return b.String()
}

// Is makes errors.Is(err, ErrSchema) hold.
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}
