package patch

import "strings"

// Kind tells atoms and patches apart. Anything else is KindUnknown.
type Kind int

const (
	KindUnknown Kind = iota
	KindAtom
	KindPatch
)

const (
	atomPrefix  = "atom"
	patchPrefix = "patch"
	separator   = ":"
)

func (k Kind) String() string {
	switch k {
	case KindAtom:
		return atomPrefix
	case KindPatch:
		return patchPrefix
	default:
		return "unknown"
	}
}

// Name is a parsed "kind:simplename" compound name.
type Name struct {
	Kind   Kind
	Prefix string // kind text as written, kept for diagnostics
	Simple string
}

func (n Name) String() string {
	return n.Prefix + separator + n.Simple
}

// ParseName splits a compound name. It reports false unless s contains
// exactly one separator followed by a non-empty simple name. A well-formed
// name with a prefix other than "atom" or "patch" parses as KindUnknown.
func ParseName(s string) (Name, bool) {
	prefix, simple, found := strings.Cut(s, separator)
	if !found || simple == "" || strings.Contains(simple, separator) {
		return Name{}, false
	}
	n := Name{Prefix: prefix, Simple: simple}
	switch prefix {
	case atomPrefix:
		n.Kind = KindAtom
	case patchPrefix:
		n.Kind = KindPatch
	}
	return n, true
}

// isBare reports whether name carries no kind prefix at all.
func isBare(name string) bool {
	return !strings.Contains(name, separator)
}
