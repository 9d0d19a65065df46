// Package patchtest holds repository fixtures and a shared table of pipeline
// cases, so every component that produces patch descriptors can be driven
// through the same expectations.
package patchtest

import (
	"errors"
	"reflect"
	"testing"

	"github.com/open-edge-platform/os-patch-composer/internal/patch"
	"github.com/open-edge-platform/os-patch-composer/internal/solvable"
)

// Timestamp is the timestamp every fixture patch carries.
const Timestamp int64 = 1200000000

// Eq returns "name = evr".
func Eq(name, evr string) solvable.Relation {
	return solvable.Relation{Name: name, Op: solvable.OpEqual, EVR: evr}
}

// Ge returns "name >= evr".
func Ge(name, evr string) solvable.Relation {
	return solvable.Relation{Name: name, Op: solvable.OpGreaterEqual, EVR: evr}
}

// Pin returns the requirement a patch uses to pin an atom version.
func Pin(simple, evr string) solvable.Relation {
	return Eq("atom:"+simple, evr)
}

// Atom returns a well-formed atom that freshens its own name.
func Atom(simple, evr, arch string, requires ...solvable.Relation) *solvable.Solvable {
	return &solvable.Solvable{
		Name:     "atom:" + simple,
		EVR:      evr,
		Arch:     arch,
		Requires: requires,
		Freshens: []solvable.Relation{{Name: simple}},
	}
}

// Patch returns a patch requiring the given relations.
func Patch(simple, evr string, requires ...solvable.Relation) *solvable.Solvable {
	return &solvable.Solvable{
		Name:      "patch:" + simple,
		EVR:       evr,
		Arch:      "noarch",
		Category:  "security",
		Timestamp: Timestamp,
		Summary:   "update for " + simple,
		Requires:  requires,
	}
}

// Descriptor returns the descriptor Patch(simple, evr, ...) projects to.
func Descriptor(simple, evr string, deps ...patch.Dependency) patch.Descriptor {
	if deps == nil {
		deps = []patch.Dependency{}
	}
	return patch.Descriptor{
		Name:         simple,
		EVR:          evr,
		Category:     "security",
		Timestamp:    Timestamp,
		Summary:      "update for " + simple,
		Dependencies: deps,
	}
}

// Dep is shorthand for a patch.Dependency.
func Dep(name, evr, arch string) patch.Dependency {
	return patch.Dependency{Name: name, EVR: evr, Arch: arch}
}

// Case is one pipeline expectation.
type Case struct {
	Name          string
	Input         solvable.List
	Want          []patch.Descriptor
	WantAnomalies []patch.AnomalyKind
	WantErr       patch.Violation // zero when the run succeeds
}

func withFreshens(s *solvable.Solvable, fre ...solvable.Relation) *solvable.Solvable {
	s.Freshens = fre
	return s
}

func withSummary(s *solvable.Solvable, summary string) *solvable.Solvable {
	s.Summary = summary
	return s
}

// Cases is the shared table.
var Cases = []Case{
	{
		Name: "SingleAtom",
		Input: solvable.List{
			Atom("foo", "1.0", "x86_64", Ge("bar", "2.0")),
			Patch("update1", "1.0", Pin("foo", "1.0")),
		},
		Want: []patch.Descriptor{
			Descriptor("update1", "1.0", Dep("bar", "2.0", "x86_64")),
		},
	},
	{
		Name: "EmptyRequires",
		Input: solvable.List{
			Patch("noop", "1"),
		},
		Want: []patch.Descriptor{
			Descriptor("noop", "1"),
		},
	},
	{
		Name: "DependenciesKeepEncounterOrder",
		Input: solvable.List{
			Atom("a", "2", "x86_64", Ge("liba", "2"), Ge("a-tools", "2")),
			Atom("b", "1", "noarch", Ge("b-data", "1")),
			Patch("multi", "3", Pin("b", "1"), Pin("a", "2")),
		},
		Want: []patch.Descriptor{
			Descriptor("multi", "3",
				Dep("b-data", "1", "noarch"),
				Dep("liba", "2", "x86_64"),
				Dep("a-tools", "2", "x86_64"),
			),
		},
	},
	{
		Name: "AtomVersionSelection",
		Input: solvable.List{
			Atom("foo", "1.0", "x86_64", Ge("foo", "1.0")),
			Atom("foo", "2.0", "x86_64", Ge("foo", "2.0")),
			Patch("up", "1", Pin("foo", "2.0")),
		},
		Want: []patch.Descriptor{
			Descriptor("up", "1", Dep("foo", "2.0", "x86_64")),
		},
	},
	{
		Name: "SharedAtomAcrossPatches",
		Input: solvable.List{
			Atom("foo", "1.0", "i586", Ge("foo", "1.0")),
			Patch("p1", "1", Pin("foo", "1.0")),
			Patch("p2", "1", Pin("foo", "1.0")),
		},
		Want: []patch.Descriptor{
			Descriptor("p1", "1", Dep("foo", "1.0", "i586")),
			Descriptor("p2", "1", Dep("foo", "1.0", "i586")),
		},
	},
	{
		Name: "PatchVersionsGroupedByName",
		Input: solvable.List{
			Patch("a", "1"),
			Patch("b", "1"),
			Patch("a", "2"),
		},
		Want: []patch.Descriptor{
			Descriptor("a", "1"),
			Descriptor("a", "2"),
			Descriptor("b", "1"),
		},
	},
	{
		Name: "UnknownKindDropped",
		Input: solvable.List{
			{Name: "pattern:base", EVR: "1"},
			Patch("noop", "1"),
		},
		Want: []patch.Descriptor{
			Descriptor("noop", "1"),
		},
		WantAnomalies: []patch.AnomalyKind{patch.UnknownKind},
	},
	{
		Name: "EmptyKindDropped",
		Input: solvable.List{
			{Name: ":orphan", EVR: "1"},
		},
		Want:          []patch.Descriptor{},
		WantAnomalies: []patch.AnomalyKind{patch.UnknownKind},
	},
	{
		Name: "DuplicateAtomLastWins",
		Input: solvable.List{
			Atom("foo", "1.0", "x86_64", Ge("old", "1")),
			Atom("foo", "1.0", "x86_64", Ge("new", "1")),
			Patch("up", "1", Pin("foo", "1.0")),
		},
		Want: []patch.Descriptor{
			Descriptor("up", "1", Dep("new", "1", "x86_64")),
		},
		WantAnomalies: []patch.AnomalyKind{patch.DuplicateEntry},
	},
	{
		Name: "DuplicatePatchCollapses",
		Input: solvable.List{
			withSummary(Patch("up", "1"), "first"),
			Patch("other", "1"),
			Patch("up", "1"),
		},
		Want: []patch.Descriptor{
			Descriptor("up", "1"),
			Descriptor("other", "1"),
		},
		WantAnomalies: []patch.AnomalyKind{patch.DuplicateEntry},
	},
	{
		Name: "NoKind",
		Input: solvable.List{
			Patch("noop", "1"),
			{Name: "badname", EVR: "1"},
		},
		WantErr: patch.MalformedName,
	},
	{
		Name: "TooManySeparators",
		Input: solvable.List{
			{Name: "atom:foo:bar", EVR: "1"},
		},
		WantErr: patch.MalformedName,
	},
	{
		Name: "EmptySimpleName",
		Input: solvable.List{
			{Name: "atom:", EVR: "1"},
		},
		WantErr: patch.MalformedName,
	},
	{
		Name: "PatchRequiresBareName",
		Input: solvable.List{
			Patch("up", "1", Eq("foo", "1")),
		},
		WantErr: patch.MalformedRequire,
	},
	{
		Name: "PatchRequiresNonAtom",
		Input: solvable.List{
			Patch("other", "1"),
			Patch("up", "1", Eq("patch:other", "1")),
		},
		WantErr: patch.NonAtomRequire,
	},
	{
		Name: "PatchRequiresUnknownAtom",
		Input: solvable.List{
			Patch("up", "1", Pin("ghost", "1")),
		},
		WantErr: patch.UnknownAtom,
	},
	{
		Name: "PatchRequiresAtomRange",
		Input: solvable.List{
			Atom("foo", "1.0", "x86_64", Ge("foo", "1.0")),
			Patch("up", "1", Ge("atom:foo", "1.0")),
		},
		WantErr: patch.NonEqualRequire,
	},
	{
		Name: "PatchRequiresMissingAtomVersion",
		Input: solvable.List{
			Atom("foo", "1.0", "x86_64", Ge("foo", "1.0")),
			Patch("up", "1", Pin("foo", "1.1")),
		},
		WantErr: patch.UnknownAtomVersion,
	},
	{
		Name: "AtomFreshensForeignName",
		Input: solvable.List{
			withFreshens(Atom("foo", "1.0", "x86_64"), solvable.Relation{Name: "bar"}),
			Patch("up", "1", Pin("foo", "1.0")),
		},
		WantErr: patch.ForeignFreshens,
	},
	{
		Name: "AtomRequiresQualifiedName",
		Input: solvable.List{
			Atom("foo", "1.0", "x86_64", Ge("atom:bar", "1")),
			Patch("up", "1", Pin("foo", "1.0")),
		},
		WantErr: patch.QualifiedAtomRequire,
	},
	{
		Name: "AtomRequiresExactVersion",
		Input: solvable.List{
			Atom("foo", "1.0", "x86_64", Ge("bar", "1"), Eq("baz", "1")),
			Patch("up", "1", Pin("foo", "1.0")),
		},
		WantErr: patch.NonGreaterEqualAtomRequire,
	},
	{
		Name: "LaterPatchFailsWholeRun",
		Input: solvable.List{
			Atom("foo", "1.0", "x86_64", Ge("foo", "1.0")),
			Patch("good", "1", Pin("foo", "1.0")),
			Patch("bad", "1", Pin("foo", "9")),
		},
		WantErr: patch.UnknownAtomVersion,
	},
}

// RunExtractCases drives extract through Cases.
func RunExtractCases(
	t *testing.T,
	prefix string,
	extract func(src patch.Source) (*patch.Result, error),
) {
	t.Helper()
	for _, tc := range Cases {
		t.Run(prefix+"/"+tc.Name, func(t *testing.T) {
			got, err := extract(tc.Input)

			if tc.WantErr != 0 {
				var se *patch.SchemaError
				if !errors.As(err, &se) {
					t.Fatalf("expected *patch.SchemaError, got %v", err)
				}
				if se.Violation != tc.WantErr {
					t.Errorf("violation = %v, want %v (%v)", se.Violation, tc.WantErr, err)
				}
				if got != nil {
					t.Errorf("expected no result on failure, got %+v", got)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got.Patches, tc.Want) {
				t.Errorf("patches = %+v\nwant %+v", got.Patches, tc.Want)
			}
			var kinds []patch.AnomalyKind
			for _, a := range got.Anomalies {
				kinds = append(kinds, a.Kind)
			}
			if !reflect.DeepEqual(kinds, tc.WantAnomalies) {
				t.Errorf("anomalies = %v, want %v", kinds, tc.WantAnomalies)
			}
		})
	}
}
