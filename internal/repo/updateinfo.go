package repo

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/open-edge-platform/os-patch-composer/internal/solvable"
	"github.com/open-edge-platform/os-patch-composer/internal/utils/logger"
)

const (
	defaultUpdateVersion = "1"
	updateIDSeparator    = "-"
)

var issuedLayouts = []string{
	time.DateTime,
	"2006-01-02 15:04",
	time.DateOnly,
	time.RFC3339,
}

type xmlUpdate struct {
	Type        string          `xml:"type,attr"`
	Version     string          `xml:"version,attr"`
	ID          string          `xml:"id"`
	Title       string          `xml:"title"`
	Issued      xmlDate         `xml:"issued"`
	Updated     xmlDate         `xml:"updated"`
	Description string          `xml:"description"`
	Collections []xmlCollection `xml:"pkglist>collection"`
}

type xmlDate struct {
	Date string `xml:"date,attr"`
}

type xmlCollection struct {
	Packages []xmlPackage `xml:"package"`
}

type xmlPackage struct {
	Name    string `xml:"name,attr"`
	Epoch   string `xml:"epoch,attr"`
	Version string `xml:"version,attr"`
	Release string `xml:"release,attr"`
	Arch    string `xml:"arch,attr"`
}

func init() {
	Register(updateinfoFormat{})
}

// updateinfoFormat lays out rpm-md advisories as patch and atom solvables.
//
// Every <update> becomes "patch:<id>". Every package it lists becomes
// "atom:<name>" requiring "<name> >= evr" and freshening "<name>", and the
// patch pins that atom with "= evr". An atom listed by several updates or
// for several arches is emitted once, for the first arch seen.
type updateinfoFormat struct{}

func (updateinfoFormat) Name() string         { return "updateinfo" }
func (updateinfoFormat) Extensions() []string { return []string{".xml"} }

func (updateinfoFormat) Decode(r io.Reader) (*Repository, error) {
	log := logger.Logger()

	repo := &Repository{}
	atoms := make(map[string]bool)
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("parsing updateinfo: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "update" {
			continue
		}

		var u xmlUpdate
		if err := dec.DecodeElement(&u, &se); err != nil {
			return nil, fmt.Errorf("parsing updateinfo update: %w", err)
		}
		id := strings.TrimSpace(u.ID)
		if id == "" {
			return nil, fmt.Errorf("updateinfo update at offset %d has no id", dec.InputOffset())
		}
		if strings.Contains(id, ":") {
			log.Debugf("update id %q contains ':', using %q", id, strings.ReplaceAll(id, ":", updateIDSeparator))
			id = strings.ReplaceAll(id, ":", updateIDSeparator)
		}

		version := u.Version
		if version == "" {
			version = defaultUpdateVersion
		}
		issued := u.Issued.Date
		if issued == "" {
			issued = u.Updated.Date
		}
		ts, err := parseIssued(issued)
		if err != nil {
			log.Warnf("update %s: %v, using timestamp 0", id, err)
		}

		p := &solvable.Solvable{
			Name:        "patch:" + id,
			EVR:         version,
			Category:    u.Type,
			Timestamp:   ts,
			Summary:     strings.TrimSpace(u.Title),
			Description: strings.TrimSpace(u.Description),
		}
		repo.Entries = append(repo.Entries, p)

		pinned := make(map[string]bool)
		for _, c := range u.Collections {
			for _, pkg := range c.Packages {
				if pkg.Name == "" || pkg.Version == "" {
					return nil, fmt.Errorf("update %s lists a package without name or version", id)
				}
				evr := packageEVR(pkg)
				key := pkg.Name + "\x00" + evr
				if !pinned[key] {
					pinned[key] = true
					p.Requires = append(p.Requires, solvable.Relation{Name: "atom:" + pkg.Name, Op: solvable.OpEqual, EVR: evr})
				}
				if atoms[key] {
					continue
				}
				atoms[key] = true
				repo.Entries = append(repo.Entries, &solvable.Solvable{
					Name:     "atom:" + pkg.Name,
					EVR:      evr,
					Arch:     pkg.Arch,
					Requires: []solvable.Relation{{Name: pkg.Name, Op: solvable.OpGreaterEqual, EVR: evr}},
					Freshens: []solvable.Relation{{Name: pkg.Name}},
				})
			}
		}
	}
	return repo, nil
}

// packageEVR returns [epoch:]version[-release], leaving out a zero epoch.
func packageEVR(p xmlPackage) string {
	var b strings.Builder
	if p.Epoch != "" && p.Epoch != "0" {
		b.WriteString(p.Epoch)
		b.WriteByte(':')
	}
	b.WriteString(p.Version)
	if p.Release != "" {
		b.WriteByte('-')
		b.WriteString(p.Release)
	}
	return b.String()
}

// parseIssued accepts unix seconds or a UTC date with optional time.
func parseIssued(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("no issued date")
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	for _, layout := range issuedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Unix(), nil
		}
	}
	return 0, fmt.Errorf("unrecognized issued date %q", s)
}
