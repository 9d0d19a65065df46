// Package patch turns the atom and patch entries of a solver repository into
// patch descriptors.
//
// Repository entries are named "kind:simplename". Patches pin atoms by exact
// version; atoms carry the real package requirements of the patch as
// minimum-version constraints. Extract validates that shape and collapses the
// indirection, so each descriptor lists the packages a patch depends on.
// Any structural deviation fails the whole run.
package patch

import (
	"iter"

	"github.com/open-edge-platform/os-patch-composer/internal/solvable"
	"github.com/open-edge-platform/os-patch-composer/internal/utils/logger"
	"go.uber.org/zap"
)

// Source is a materialized collection of repository records.
type Source interface {
	Solvables() iter.Seq[*solvable.Solvable]
}

// Result is the outcome of a successful run.
type Result struct {
	Patches    []Descriptor
	Anomalies  []Anomaly
	AtomCount  int
	PatchCount int
}

// Extractor runs the pipeline. The zero value is not usable; call New.
type Extractor struct {
	log *zap.SugaredLogger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger anomalies are reported to.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(x *Extractor) {
		x.log = l
	}
}

// New returns an Extractor logging to the global logger unless
// WithLogger is given.
func New(opts ...Option) *Extractor {
	x := &Extractor{}
	for _, o := range opts {
		o(x)
	}
	if x.log == nil {
		x.log = logger.Logger()
	}
	return x
}

// Extract runs the pipeline with a default Extractor.
func Extract(src Source) (*Result, error) {
	return New().Extract(src)
}

// Extract classifies the records of src, validates every patch against the
// atoms it pins and returns one descriptor per patch. On a *SchemaError no
// result is returned.
func (x *Extractor) Extract(src Source) (*Result, error) {
	atoms, patches, anomalies, err := x.classify(src)
	if err != nil {
		return nil, err
	}
	x.log.Debugf("classified %d atoms and %d patches", atoms.Len(), patches.Len())

	res := &Result{
		Patches:    make([]Descriptor, 0, patches.Len()),
		Anomalies:  anomalies,
		AtomCount:  atoms.Len(),
		PatchCount: patches.Len(),
	}
	for key, p := range patches.All() {
		deps, err := link(p, atoms)
		if err != nil {
			return nil, err
		}
		res.Patches = append(res.Patches, project(key, p, deps))
	}
	return res, nil
}

// classify splits the records of src into an atom and a patch group.
func (x *Extractor) classify(src Source) (atoms, patches *Group, anomalies []Anomaly, err error) {
	atoms = NewGroup(KindAtom)
	patches = NewGroup(KindPatch)

	for s := range src.Solvables() {
		if s == nil {
			continue
		}
		n, ok := ParseName(s.Name)
		if !ok {
			return nil, nil, nil, &SchemaError{Violation: MalformedName, Solvable: s.String()}
		}

		var g *Group
		switch n.Kind {
		case KindAtom:
			g = atoms
		case KindPatch:
			g = patches
		default:
			a := Anomaly{Kind: UnknownKind, Prefix: n.Prefix, Solvable: s.String()}
			x.log.Warnf("unknown kind %q of %s", n.Prefix, s)
			anomalies = append(anomalies, a)
			continue
		}

		if _, replaced := g.Put(n.Simple, s); replaced {
			a := Anomaly{Kind: DuplicateEntry, Group: g.Kind().String(), Solvable: s.String()}
			x.log.Warnf("known %s %s-%s, keeping the later entry", g.Kind(), n.Simple, s.EVR)
			anomalies = append(anomalies, a)
		}
	}
	return atoms, patches, anomalies, nil
}
