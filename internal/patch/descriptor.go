package patch

import "github.com/open-edge-platform/os-patch-composer/internal/solvable"

// Dependency is one effective runtime dependency of a patch.
type Dependency struct {
	Name string `json:"name" yaml:"name"`
	EVR  string `json:"evr" yaml:"evr"`
	Arch string `json:"arch" yaml:"arch"`
}

// Descriptor is the normalized form of a validated patch. Its dependencies
// are the requirements of the atoms the patch pins, in encounter order.
type Descriptor struct {
	Name         string       `json:"name" yaml:"name"`
	EVR          string       `json:"evr" yaml:"evr"`
	Category     string       `json:"category,omitempty" yaml:"category,omitempty"`
	Timestamp    int64        `json:"timestamp" yaml:"timestamp"`
	Summary      string       `json:"summary,omitempty" yaml:"summary,omitempty"`
	Description  string       `json:"description,omitempty" yaml:"description,omitempty"`
	Dependencies []Dependency `json:"dependencies" yaml:"dependencies"`
}

func project(key Key, p *solvable.Solvable, deps []Dependency) Descriptor {
	return Descriptor{
		Name:         key.Name,
		EVR:          key.EVR,
		Category:     p.Category,
		Timestamp:    p.Timestamp,
		Summary:      p.Summary,
		Description:  p.Description,
		Dependencies: deps,
	}
}
