package repo

import (
	"bytes"
	"context"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"encoding/xml"
	"errors"
	"fmt"
	"hash"
	"io"
	"strings"
)

const repomdPath = "repodata/repomd.xml"

// repoData is one <data> entry of repomd.xml.
type repoData struct {
	Type         string
	Href         string
	ChecksumType string
	Checksum     string
}

// findRepoData walks repomd.xml looking for <data type="dataType"> and
// returns its location and checksum.
func findRepoData(r io.Reader, dataType string) (repoData, error) {
	dec := xml.NewDecoder(r)

	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return repoData{}, fmt.Errorf("parsing repomd.xml: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "data" {
			continue
		}
		if attr(se, "type") != dataType {
			if err := dec.Skip(); err != nil {
				return repoData{}, fmt.Errorf("error skipping token: %w", err)
			}
			continue
		}

		d := repoData{Type: dataType}
		// Inside <data>, look for <location href="..."/> and <checksum>
		for {
			tok2, err := dec.Token()
			if err != nil {
				return repoData{}, fmt.Errorf("parsing repomd.xml %s entry: %w", dataType, err)
			}
			if ee, ok := tok2.(xml.EndElement); ok && ee.Name.Local == "data" {
				break
			}
			le, ok := tok2.(xml.StartElement)
			if !ok {
				continue
			}
			switch le.Name.Local {
			case "location":
				d.Href = attr(le, "href")
			case "checksum":
				d.ChecksumType = attr(le, "type")
				var sum string
				if err := dec.DecodeElement(&sum, &le); err != nil {
					return repoData{}, fmt.Errorf("parsing repomd.xml checksum: %w", err)
				}
				d.Checksum = strings.TrimSpace(sum)
			}
		}
		if d.Href == "" {
			return repoData{}, fmt.Errorf("%s entry in repomd.xml has no location", dataType)
		}
		return d, nil
	}
	return repoData{}, fmt.Errorf("%w: no %s in repomd.xml", ErrDataNotFound, dataType)
}

func attr(se xml.StartElement, name string) string {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// verify checks data against the recorded checksum. An entry without a
// checksum passes.
func (d repoData) verify(data []byte) error {
	if d.Checksum == "" {
		return nil
	}
	var h hash.Hash
	switch strings.ToLower(d.ChecksumType) {
	case "sha", "sha1":
		h = sha1.New()
	case "sha256", "":
		h = sha256.New()
	case "sha512":
		h = sha512.New()
	default:
		return fmt.Errorf("unsupported checksum type %q for %s", d.ChecksumType, d.Href)
	}
	h.Write(data)
	got := hex.EncodeToString(h.Sum(nil))
	if !strings.EqualFold(got, d.Checksum) {
		return fmt.Errorf("%w: %s has %s %s, repomd.xml records %s", ErrChecksumMismatch, d.Href, d.ChecksumType, got, d.Checksum)
	}
	return nil
}

// loadRPMMD reads <base>/repodata/repomd.xml and the updateinfo it names.
func (l *Loader) loadRPMMD(ctx context.Context, base string) (*Repository, error) {
	log := l.log

	base = strings.TrimSuffix(base, "/")
	mdLocation := base + "/" + repomdPath
	md, err := l.fetchVerified(ctx, mdLocation)
	if err != nil {
		return nil, err
	}

	d, err := findRepoData(bytes.NewReader(md), "updateinfo")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", mdLocation, err)
	}
	log.Debugf("updateinfo of %s at %s (%s %s)", base, d.Href, d.ChecksumType, d.Checksum)

	dataLocation := base + "/" + strings.TrimPrefix(d.Href, "/")
	raw, err := l.fetch(ctx, dataLocation)
	if err != nil {
		return nil, err
	}
	if err := d.verify(raw); err != nil {
		return nil, err
	}

	doc, err := decompress(d.Href, raw)
	if err != nil {
		return nil, err
	}
	f, _ := Get("updateinfo")
	r, err := f.Decode(bytes.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", dataLocation, err)
	}
	r.Format = rpmmdFormat
	return r, nil
}
