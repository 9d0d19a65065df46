// Package manifest renders extraction results for consumers.
package manifest

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/open-edge-platform/os-patch-composer/internal/patch"
	"github.com/open-edge-platform/os-patch-composer/internal/repo"
	"gopkg.in/yaml.v3"
)

// Format selects the manifest encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatYAML, FormatJSON, FormatText:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("invalid format %q (expected yaml|json|text)", s)
}

// Source describes one input repository.
type Source struct {
	Location  string `json:"location" yaml:"location"`
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	Format    string `json:"format" yaml:"format"`
	Solvables int    `json:"solvables" yaml:"solvables"`
}

// Manifest is the document written for one run.
type Manifest struct {
	RunID     string             `json:"runId" yaml:"runId"`
	Generated string             `json:"generated" yaml:"generated"`
	Sources   []Source           `json:"sources" yaml:"sources"`
	Atoms     int                `json:"atoms" yaml:"atoms"`
	Anomalies int                `json:"anomalies" yaml:"anomalies"`
	Patches   []patch.Descriptor `json:"patches" yaml:"patches"`
}

type options struct {
	now   func() time.Time
	runID string
	sort  bool
}

// Option configures New.
type Option func(*options)

// WithClock sets the time source of the generated stamp.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithRunID fixes the run id instead of generating one.
func WithRunID(id string) Option {
	return func(o *options) {
		o.runID = id
	}
}

// WithSort orders patches by name and then by rpm version.
func WithSort(sort bool) Option {
	return func(o *options) {
		o.sort = sort
	}
}

// New builds the manifest of a successful run. The descriptors are copied;
// res is not modified.
func New(res *patch.Result, sources repo.Repositories, opts ...Option) *Manifest {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.runID == "" {
		o.runID = uuid.NewString()
	}

	m := &Manifest{
		RunID:     o.runID,
		Generated: o.now().UTC().Format(time.RFC3339),
		Sources:   make([]Source, 0, len(sources)),
		Atoms:     res.AtomCount,
		Anomalies: len(res.Anomalies),
		Patches:   append([]patch.Descriptor(nil), res.Patches...),
	}
	if m.Patches == nil {
		m.Patches = []patch.Descriptor{}
	}
	for _, r := range sources {
		if r == nil {
			continue
		}
		m.Sources = append(m.Sources, Source{
			Location:  r.Location,
			Name:      r.Name,
			Format:    r.Format,
			Solvables: len(r.Entries),
		})
	}
	if o.sort {
		SortPatches(m.Patches)
	}
	return m
}

// Write encodes the manifest. pretty only affects JSON.
func (m *Manifest) Write(w io.Writer, format Format, pretty bool) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		var (
			b   []byte
			err error
		)
		if pretty {
			b, err = json.MarshalIndent(m, "", "  ")
		} else {
			b, err = json.Marshal(m)
		}
		if err != nil {
			return fmt.Errorf("marshal json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case FormatText:
		return m.writeText(w)
	}
	return fmt.Errorf("invalid format %q (expected yaml|json|text)", format)
}

func (m *Manifest) writeText(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# run %s generated %s\n", m.RunID, m.Generated)
	for _, s := range m.Sources {
		fmt.Fprintf(&b, "# source %s (%s, %d solvables)\n", s.Location, s.Format, s.Solvables)
	}
	fmt.Fprintf(&b, "# %d patches, %d atoms, %d anomalies\n", len(m.Patches), m.Atoms, m.Anomalies)

	for _, p := range m.Patches {
		fmt.Fprintf(&b, "\npatch %s-%s", p.Name, p.EVR)
		if p.Category != "" {
			fmt.Fprintf(&b, " [%s]", p.Category)
		}
		if p.Timestamp != 0 {
			fmt.Fprintf(&b, " issued %s", time.Unix(p.Timestamp, 0).UTC().Format(time.RFC3339))
		}
		b.WriteByte('\n')
		if p.Summary != "" {
			fmt.Fprintf(&b, "  %s\n", p.Summary)
		}
		if len(p.Dependencies) == 0 {
			b.WriteString("  (no dependencies)\n")
			continue
		}
		for _, d := range p.Dependencies {
			fmt.Fprintf(&b, "  requires %s >= %s", d.Name, d.EVR)
			if d.Arch != "" {
				fmt.Fprintf(&b, " (%s)", d.Arch)
			}
			b.WriteByte('\n')
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
