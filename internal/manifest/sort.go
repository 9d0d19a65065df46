package manifest

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/open-edge-platform/os-patch-composer/internal/patch"
	"github.com/sassoftware/go-rpmutils"
)

// SortPatches orders descriptors by name, then by ascending EVR. The sort
// is stable, so equal keys keep the pipeline order.
func SortPatches(ds []patch.Descriptor) {
	slices.SortStableFunc(ds, func(a, b patch.Descriptor) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return CompareEVR(a.EVR, b.EVR)
	})
}

// CompareEVR compares [epoch:]version[-release] strings the way rpm does.
// A missing epoch is 0.
func CompareEVR(a, b string) int {
	ea, va, ra := splitEVR(a)
	eb, vb, rb := splitEVR(b)
	if c := cmp.Compare(ea, eb); c != 0 {
		return c
	}
	if c := rpmutils.Vercmp(va, vb); c != 0 {
		return c
	}
	return rpmutils.Vercmp(ra, rb)
}

func splitEVR(s string) (epoch int, version, release string) {
	if e, rest, ok := strings.Cut(s, ":"); ok {
		if n, err := strconv.Atoi(e); err == nil {
			epoch = n
			s = rest
		}
	}
	if i := strings.LastIndexByte(s, '-'); i >= 0 {
		return epoch, s[:i], s[i+1:]
	}
	return epoch, s, ""
}
