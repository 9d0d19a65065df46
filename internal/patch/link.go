package patch

import "github.com/open-edge-platform/os-patch-composer/internal/solvable"

// link resolves every requirement of patch p to an atom and collects the
// atoms' package requirements. Any deviation from the expected shape is a
// *SchemaError.
func link(p *solvable.Solvable, atoms *Group) ([]Dependency, error) {
	deps := make([]Dependency, 0, len(p.Requires))
	for _, req := range p.Requires {
		n, ok := ParseName(req.Name)
		if !ok {
			return nil, patchViolation(MalformedRequire, p, req)
		}
		if n.Kind != KindAtom {
			return nil, patchViolation(NonAtomRequire, p, req)
		}
		if !atoms.Has(n.Simple) {
			return nil, patchViolation(UnknownAtom, p, req)
		}
		// a patch pins exactly one atom version, never a range
		if req.Op != solvable.OpEqual {
			return nil, patchViolation(NonEqualRequire, p, req)
		}
		atom, ok := atoms.Lookup(n.Simple, req.EVR)
		if !ok {
			return nil, patchViolation(UnknownAtomVersion, p, req)
		}

		for _, fre := range atom.Freshens {
			if fre.Name != n.Simple {
				return nil, atomViolation(ForeignFreshens, p, atom, fre)
			}
		}
		for _, areq := range atom.Requires {
			if !isBare(areq.Name) {
				return nil, atomViolation(QualifiedAtomRequire, p, atom, areq)
			}
			if areq.Op != solvable.OpGreaterEqual {
				return nil, atomViolation(NonGreaterEqualAtomRequire, p, atom, areq)
			}
			deps = append(deps, Dependency{Name: areq.Name, EVR: areq.EVR, Arch: atom.Arch})
		}
	}
	return deps, nil
}

func patchViolation(v Violation, p *solvable.Solvable, rel solvable.Relation) *SchemaError {
	return &SchemaError{Violation: v, Solvable: p.String(), Relation: rel.String()}
}

func atomViolation(v Violation, p, atom *solvable.Solvable, rel solvable.Relation) *SchemaError {
	return &SchemaError{Violation: v, Solvable: p.String(), Atom: atom.String(), Relation: rel.String()}
}
