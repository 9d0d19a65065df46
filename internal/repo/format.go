package repo

import (
	"fmt"
	"io"
	"path"
	"slices"
	"strings"
)

// Format is the interface every document decoder must implement.
type Format interface {
	// Name is a unique ID, e.g. "dump-json" or "updateinfo".
	Name() string

	// Extensions lists the file suffixes Detect maps to this format.
	Extensions() []string

	// Decode reads one uncompressed document.
	Decode(r io.Reader) (*Repository, error)
}

var (
	formats = make(map[string]Format)
)

// Register makes a Format available under its Name().
func Register(f Format) {
	formats[f.Name()] = f
}

// Get returns the Format by name.
func Get(name string) (Format, bool) {
	f, ok := formats[name]
	return f, ok
}

// Formats returns the registered format names, sorted.
func Formats() []string {
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Detect picks a format from the location's file extension, ignoring a
// compression suffix.
func Detect(location string) (Format, error) {
	base, _ := stripCompression(path.Base(location))
	ext := strings.ToLower(path.Ext(base))
	for _, name := range Formats() {
		f := formats[name]
		if slices.Contains(f.Extensions(), ext) {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w for %q", ErrFormatNotFound, location)
}
