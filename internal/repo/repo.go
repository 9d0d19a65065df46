// Package repo materializes solvables from repository documents.
//
// A location is a local path or an http(s) URL naming either a single
// document (a solvable dump or an updateinfo.xml, optionally compressed),
// an rpm-md repository root, or a .repo file pointing at one. Loaded
// repositories satisfy patch.Source.
package repo

import (
	"errors"
	"iter"

	"github.com/open-edge-platform/os-patch-composer/internal/solvable"
)

var (
	// ErrFormatNotFound is returned when no format matches a location.
	ErrFormatNotFound = errors.New("format not found")
	// ErrDataNotFound is returned when repomd.xml carries no updateinfo.
	ErrDataNotFound = errors.New("repository data not found")
	// ErrChecksumMismatch is returned when metadata does not match its
	// recorded checksum.
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// Repository is one loaded source.
type Repository struct {
	Name     string
	Location string
	Format   string
	Entries  solvable.List
}

// Solvables yields the entries in document order.
func (r *Repository) Solvables() iter.Seq[*solvable.Solvable] {
	return r.Entries.Solvables()
}

// Repositories concatenates several sources in order.
type Repositories []*Repository

// Solvables yields the entries of every repository, repository by
// repository.
func (rs Repositories) Solvables() iter.Seq[*solvable.Solvable] {
	return func(yield func(*solvable.Solvable) bool) {
		for _, r := range rs {
			if r == nil {
				continue
			}
			for s := range r.Solvables() {
				if !yield(s) {
					return
				}
			}
		}
	}
}

// Len returns the total number of entries.
func (rs Repositories) Len() int {
	n := 0
	for _, r := range rs {
		if r != nil {
			n += len(r.Entries)
		}
	}
	return n
}
