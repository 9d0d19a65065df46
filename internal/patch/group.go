package patch

import (
	"iter"

	"github.com/open-edge-platform/os-patch-composer/internal/solvable"
)

// Key identifies one entry of a Group.
type Key struct {
	Name string
	EVR  string
}

// Group indexes solvables of one kind by simple name and evr. At most one
// solvable is kept per key; Put replaces an existing entry in place.
//
// Iteration is deterministic: names in first-insertion order and, within a
// name, evrs in first-insertion order.
type Group struct {
	kind   Kind
	names  []string
	byName map[string]*versions
	size   int
}

type versions struct {
	evrs  []string
	byEVR map[string]*solvable.Solvable
}

// NewGroup returns an empty group holding solvables of the given kind.
func NewGroup(kind Kind) *Group {
	return &Group{
		kind:   kind,
		byName: make(map[string]*versions),
	}
}

// Kind returns the kind of solvables the group holds.
func (g *Group) Kind() Kind {
	return g.kind
}

// Put stores s under name and s.EVR. If an entry already existed it is
// overwritten and returned with replaced set.
func (g *Group) Put(name string, s *solvable.Solvable) (prev *solvable.Solvable, replaced bool) {
	v, ok := g.byName[name]
	if !ok {
		v = &versions{byEVR: make(map[string]*solvable.Solvable)}
		g.byName[name] = v
		g.names = append(g.names, name)
	}
	prev, replaced = v.byEVR[s.EVR]
	if !replaced {
		v.evrs = append(v.evrs, s.EVR)
		g.size++
	}
	v.byEVR[s.EVR] = s
	return prev, replaced
}

// Has reports whether any version is stored under name.
func (g *Group) Has(name string) bool {
	_, ok := g.byName[name]
	return ok
}

// Lookup returns the solvable stored under name and evr.
func (g *Group) Lookup(name, evr string) (*solvable.Solvable, bool) {
	v, ok := g.byName[name]
	if !ok {
		return nil, false
	}
	s, ok := v.byEVR[evr]
	return s, ok
}

// Len returns the number of distinct (name, evr) entries.
func (g *Group) Len() int {
	return g.size
}

// All yields every entry in iteration order.
func (g *Group) All() iter.Seq2[Key, *solvable.Solvable] {
	return func(yield func(Key, *solvable.Solvable) bool) {
		for _, name := range g.names {
			v := g.byName[name]
			for _, evr := range v.evrs {
				if !yield(Key{Name: name, EVR: evr}, v.byEVR[evr]) {
					return
				}
			}
		}
	}
}
