package repo

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/open-edge-platform/os-patch-composer/internal/config/validate"
	"github.com/open-edge-platform/os-patch-composer/internal/solvable"
)

// dumpDocument is the on-disk layout of a solvable dump.
type dumpDocument struct {
	Repository string         `json:"repository"`
	Solvables  []dumpSolvable `json:"solvables"`
}

type dumpSolvable struct {
	Name        string         `json:"name"`
	EVR         string         `json:"evr"`
	Arch        string         `json:"arch"`
	Category    string         `json:"category"`
	Timestamp   int64          `json:"timestamp"`
	Summary     string         `json:"summary"`
	Description string         `json:"description"`
	Requires    []dumpRelation `json:"requires"`
	Freshens    []dumpRelation `json:"freshens"`
}

type dumpRelation struct {
	Name string      `json:"name"`
	Op   solvable.Op `json:"op"`
	EVR  string      `json:"evr"`
}

func init() {
	Register(dumpFormat{name: "dump-json", exts: []string{".json"}})
	Register(dumpFormat{name: "dump-yaml", exts: []string{".yaml", ".yml"}, yaml: true})
}

// dumpFormat decodes schema-checked JSON or YAML solvable dumps.
type dumpFormat struct {
	name string
	exts []string
	yaml bool
}

func (f dumpFormat) Name() string         { return f.name }
func (f dumpFormat) Extensions() []string { return f.exts }

func (f dumpFormat) Decode(r io.Reader) (*Repository, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s document: %w", f.name, err)
	}
	if f.yaml {
		if data, err = validate.YAMLToJSON(data); err != nil {
			return nil, err
		}
	}
	return decodeDump(data)
}

// decodeDump validates a JSON dump and converts it to a Repository.
func decodeDump(data []byte) (*Repository, error) {
	if err := validate.ValidateRepositoryJSON(data); err != nil {
		return nil, fmt.Errorf("repository dump: %w", err)
	}

	var doc dumpDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding repository dump: %w", err)
	}

	r := &Repository{
		Name:    doc.Repository,
		Entries: make(solvable.List, 0, len(doc.Solvables)),
	}
	for _, ds := range doc.Solvables {
		r.Entries = append(r.Entries, &solvable.Solvable{
			Name:        ds.Name,
			EVR:         ds.EVR,
			Arch:        ds.Arch,
			Category:    ds.Category,
			Timestamp:   ds.Timestamp,
			Summary:     ds.Summary,
			Description: ds.Description,
			Requires:    relations(ds.Requires),
			Freshens:    relations(ds.Freshens),
		})
	}
	return r, nil
}

func relations(in []dumpRelation) []solvable.Relation {
	if len(in) == 0 {
		return nil
	}
	out := make([]solvable.Relation, len(in))
	for i, r := range in {
		out[i] = solvable.Relation{Name: r.Name, Op: r.Op, EVR: r.EVR}
	}
	return out
}
