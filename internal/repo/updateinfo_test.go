package repo

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/open-edge-platform/os-patch-composer/internal/patch"
	"github.com/open-edge-platform/os-patch-composer/internal/solvable"
)

func decodeUpdateinfo(t *testing.T, data []byte) *Repository {
	t.Helper()
	f, ok := Get("updateinfo")
	if !ok {
		t.Fatal("updateinfo format not registered")
	}
	r, err := f.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return r
}

func TestUpdateinfoLayout(t *testing.T) {
	r := decodeUpdateinfo(t, readTestdata(t, "updateinfo.xml"))

	wantNames := []string{"patch:update1", "atom:bar", "patch:EXBA-2024-0042", "atom:libfoo"}
	if got := names(r.Entries); !reflect.DeepEqual(got, wantNames) {
		t.Fatalf("entries = %v, want %v", got, wantNames)
	}

	update1 := r.Entries[0]
	issued := time.Date(2008, time.January, 10, 21, 20, 0, 0, time.UTC).Unix()
	if update1.EVR != "1" || update1.Category != "security" || update1.Timestamp != issued {
		t.Errorf("update1 = %+v", update1)
	}
	if update1.Summary != "bar security update" || update1.Description != "Fixes a buffer overflow in bar." {
		t.Errorf("update1 text = %q / %q", update1.Summary, update1.Description)
	}
	pins := []solvable.Relation{{Name: "atom:bar", Op: solvable.OpEqual, EVR: "2.0-1"}}
	if !reflect.DeepEqual(update1.Requires, pins) {
		t.Errorf("update1 requires = %v, want %v (one pin per name and evr)", update1.Requires, pins)
	}

	bar := r.Entries[1]
	if bar.EVR != "2.0-1" || bar.Arch != "x86_64" {
		t.Errorf("bar = %s, want the first arch listed", bar)
	}
	wantReq := []solvable.Relation{{Name: "bar", Op: solvable.OpGreaterEqual, EVR: "2.0-1"}}
	if !reflect.DeepEqual(bar.Requires, wantReq) {
		t.Errorf("bar requires = %v", bar.Requires)
	}
	if !reflect.DeepEqual(bar.Freshens, []solvable.Relation{{Name: "bar"}}) {
		t.Errorf("bar freshens = %v", bar.Freshens)
	}

	libfoo := r.Entries[3]
	if libfoo.EVR != "2:1.4-3" {
		t.Errorf("libfoo evr = %s, want 2:1.4-3", libfoo.EVR)
	}
	if r.Entries[2].Timestamp != 1700000000 || r.Entries[2].Description != "Fixes a crash in libfoo." {
		t.Errorf("second update = %+v", r.Entries[2])
	}
}

func TestUpdateinfoFeedsExtraction(t *testing.T) {
	r := decodeUpdateinfo(t, readTestdata(t, "updateinfo.xml"))

	res, err := patch.Extract(r)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(res.Anomalies) != 0 {
		t.Errorf("unexpected anomalies %v", res.Anomalies)
	}
	if res.AtomCount != 2 || res.PatchCount != 2 {
		t.Errorf("counts = %d atoms, %d patches", res.AtomCount, res.PatchCount)
	}
	if len(res.Patches) != 2 {
		t.Fatalf("got %d descriptors, want 2", len(res.Patches))
	}

	want := [][]patch.Dependency{
		{{Name: "bar", EVR: "2.0-1", Arch: "x86_64"}},
		{{Name: "libfoo", EVR: "2:1.4-3", Arch: "noarch"}, {Name: "bar", EVR: "2.0-1", Arch: "x86_64"}},
	}
	for i, d := range res.Patches {
		if !reflect.DeepEqual(d.Dependencies, want[i]) {
			t.Errorf("%s dependencies = %v, want %v", d.Name, d.Dependencies, want[i])
		}
	}
	if res.Patches[1].Name != "EXBA-2024-0042" || res.Patches[1].EVR != "2" {
		t.Errorf("second descriptor = %s-%s", res.Patches[1].Name, res.Patches[1].EVR)
	}
}

func TestUpdateinfoDefaultsAndErrors(t *testing.T) {
	r := decodeUpdateinfo(t, []byte(`<updates>
  <update type="enhancement">
    <id>plain</id>
    <issued date="soon"/>
  </update>
  <update type="bugfix"><id>fallback</id><updated date="2020-02-03"/></update>
</updates>`))
	if len(r.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(r.Entries))
	}
	if r.Entries[0].EVR != "1" || r.Entries[0].Timestamp != 0 || r.Entries[0].Requires != nil {
		t.Errorf("plain update = %+v", r.Entries[0])
	}
	if want := time.Date(2020, time.February, 3, 0, 0, 0, 0, time.UTC).Unix(); r.Entries[1].Timestamp != want {
		t.Errorf("fallback timestamp = %d, want %d", r.Entries[1].Timestamp, want)
	}

	f, _ := Get("updateinfo")
	broken := []struct {
		name string
		data string
	}{
		{name: "no id", data: `<updates><update version="1"/></updates>`},
		{name: "package without version", data: `<updates><update><id>x</id><pkglist><collection><package name="a"/></collection></pkglist></update></updates>`},
		{name: "truncated", data: `<updates><update><id>x</id>`},
	}
	for _, tc := range broken {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.Decode(strings.NewReader(tc.data)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestParseIssued(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "1200000000", want: 1200000000},
		{in: "2008-01-10 21:20:00", want: time.Date(2008, 1, 10, 21, 20, 0, 0, time.UTC).Unix()},
		{in: "2008-01-10 21:20", want: time.Date(2008, 1, 10, 21, 20, 0, 0, time.UTC).Unix()},
		{in: "2008-01-10", want: time.Date(2008, 1, 10, 0, 0, 0, 0, time.UTC).Unix()},
		{in: "2008-01-10T21:20:00Z", want: time.Date(2008, 1, 10, 21, 20, 0, 0, time.UTC).Unix()},
		{in: " 42 ", want: 42},
		{in: "", wantErr: true},
		{in: "yesterday", wantErr: true},
	}
	for _, tc := range tests {
		got, err := parseIssued(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("parseIssued(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("parseIssued(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestPackageEVR(t *testing.T) {
	tests := []struct {
		pkg  xmlPackage
		want string
	}{
		{xmlPackage{Version: "2.0", Release: "1"}, "2.0-1"},
		{xmlPackage{Epoch: "0", Version: "2.0", Release: "1"}, "2.0-1"},
		{xmlPackage{Epoch: "3", Version: "2.0", Release: "1.el9"}, "3:2.0-1.el9"},
		{xmlPackage{Version: "2.0"}, "2.0"},
	}
	for _, tc := range tests {
		if got := packageEVR(tc.pkg); got != tc.want {
			t.Errorf("packageEVR(%+v) = %q, want %q", tc.pkg, got, tc.want)
		}
	}
}
