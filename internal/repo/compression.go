package repo

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

type compression int

const (
	cmpGzip compression = iota
	cmpZstd
	cmpXz
	cmpNone
)

var (
	cmpHeaders = [...][]byte{
		{0x1F, 0x8B, 0x08},
		{0x28, 0xB5, 0x2F, 0xFD},
		{0xFD, '7', 'z', 'X', 'Z', 0x00},
	}
	cmpSuffixes = [...]string{".gz", ".zst", ".xz"}
)

func (c compression) String() string {
	switch c {
	case cmpGzip:
		return "gzip"
	case cmpZstd:
		return "zstd"
	case cmpXz:
		return "xz"
	}
	return "none"
}

func detectCompression(b []byte) compression {
	for c, h := range cmpHeaders {
		if len(b) < len(h) {
			continue
		}
		if bytes.Equal(h, b[:len(h)]) {
			return compression(c)
		}
	}
	return cmpNone
}

// stripCompression removes a known compression suffix from name.
func stripCompression(name string) (string, compression) {
	for c, s := range cmpSuffixes {
		if strings.HasSuffix(strings.ToLower(name), s) {
			return name[:len(name)-len(s)], compression(c)
		}
	}
	return name, cmpNone
}

// decompress returns the uncompressed content of data. The compression is
// taken from the name's suffix, falling back to the leading magic bytes.
func decompress(name string, data []byte) ([]byte, error) {
	_, c := stripCompression(name)
	if c == cmpNone {
		c = detectCompression(data)
	}

	var r io.ReadCloser
	switch c {
	case cmpGzip:
		g, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		r = g
	case cmpZstd:
		d, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		r = d.IOReadCloser()
	case cmpXz:
		x, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		r = io.NopCloser(x)
	default:
		return data, nil
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress %s (%s): %w", name, c, err)
	}
	return out, nil
}
