package repo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadLocalDocuments(t *testing.T) {
	json := readTestdata(t, "updates.json")
	dir := t.TempDir()

	tests := []struct {
		name       string
		location   string
		opts       []Option
		wantFormat string
		wantCount  int
	}{
		{name: "json", location: filepath.Join("testdata", "updates.json"), wantFormat: "dump-json", wantCount: 2},
		{name: "yaml", location: filepath.Join("testdata", "updates.yaml"), wantFormat: "dump-yaml", wantCount: 2},
		{name: "updateinfo", location: filepath.Join("testdata", "updateinfo.xml"), wantFormat: "updateinfo", wantCount: 4},
		{name: "gzip", location: writeFile(t, dir, "u.json.gz", gzipBytes(t, json)), wantFormat: "dump-json", wantCount: 2},
		{name: "zstd", location: writeFile(t, dir, "u.json.zst", zstdBytes(t, json)), wantFormat: "dump-json", wantCount: 2},
		{name: "xz", location: writeFile(t, dir, "u.json.xz", xzBytes(t, json)), wantFormat: "dump-json", wantCount: 2},
		{name: "file scheme", location: "file://" + writeFile(t, dir, "f.json", json), wantFormat: "dump-json", wantCount: 2},
		{
			name:       "explicit format",
			location:   writeFile(t, dir, "updates.dump", json),
			opts:       []Option{WithFormat("dump-json")},
			wantFormat: "dump-json",
			wantCount:  2,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, err := testLoader(tc.opts...).Load(context.Background(), tc.location)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if r.Format != tc.wantFormat {
				t.Errorf("Format = %s, want %s", r.Format, tc.wantFormat)
			}
			if len(r.Entries) != tc.wantCount {
				t.Errorf("got %d entries, want %d", len(r.Entries), tc.wantCount)
			}
			if r.Location != tc.location {
				t.Errorf("Location = %s, want %s", r.Location, tc.location)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name     string
		location string
		opts     []Option
		wantErr  error
	}{
		{name: "missing file", location: filepath.Join(dir, "missing.json")},
		{name: "undetectable", location: writeFile(t, dir, "updates.solv", []byte("SOLV")), wantErr: ErrFormatNotFound},
		{name: "unknown format", location: filepath.Join("testdata", "updates.json"), opts: []Option{WithFormat("solv")}, wantErr: ErrFormatNotFound},
		{name: "schema violation", location: filepath.Join("testdata", "missing-evr.json")},
		{name: "wrong format", location: filepath.Join("testdata", "updateinfo.xml"), opts: []Option{WithFormat("dump-json")}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := testLoader(tc.opts...).Load(context.Background(), tc.location)
			if err == nil {
				t.Fatal("expected error")
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Errorf("error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestLoadCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := testLoader().Load(ctx, filepath.Join("testdata", "updates.json"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestLoadAllProgress(t *testing.T) {
	var progress bytes.Buffer
	locations := []string{
		filepath.Join("testdata", "updates.json"),
		filepath.Join("testdata", "updates.yaml"),
	}
	if _, err := testLoader(WithProgress(&progress)).LoadAll(context.Background(), locations, 2); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if !strings.Contains(progress.String(), "loading") {
		t.Errorf("progress output %q does not describe the loads", progress.String())
	}
}

func newRepoServer(t *testing.T, files map[string][]byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLoadHTTP(t *testing.T) {
	updateinfo := gzipBytes(t, readTestdata(t, "updateinfo.xml"))
	files := map[string][]byte{
		"/dump/updates.yaml":              readTestdata(t, "updates.yaml"),
		"/rpm/repodata/updateinfo.xml.gz": updateinfo,
		"/rpm/repodata/repomd.xml":        []byte(fmt.Sprintf(repomdTemplate, "sha256", "", "repodata/updateinfo.xml.gz")),
	}
	srv := newRepoServer(t, files)
	l := testLoader(WithHTTPClient(srv.Client()))

	r, err := l.Load(context.Background(), srv.URL+"/dump/updates.yaml")
	if err != nil {
		t.Fatalf("Load(dump): %v", err)
	}
	if r.Name != "updates" || len(r.Entries) != 2 {
		t.Errorf("dump = %s with %d entries", r.Name, len(r.Entries))
	}

	r, err = l.Load(context.Background(), srv.URL+"/rpm/")
	if err != nil {
		t.Fatalf("Load(rpm-md): %v", err)
	}
	if r.Format != rpmmdFormat || len(r.Entries) != 4 || r.Name != "rpm" {
		t.Errorf("rpm-md = %s %s with %d entries", r.Name, r.Format, len(r.Entries))
	}

	_, err = l.Load(context.Background(), srv.URL+"/dump/missing.json")
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("Load(missing) error = %v, want a 404", err)
	}
}

func TestLoadRepoFile(t *testing.T) {
	signer := newSigner(t)
	md := []byte(fmt.Sprintf(repomdTemplate, "sha256", "", "repodata/updateinfo.xml.gz"))

	tests := []struct {
		name    string
		sig     []byte
		wantErr bool
	}{
		{name: "signed by gpgkey", sig: detachSign(t, signer, md)},
		{name: "signed by foreign key", sig: detachSign(t, newSigner(t), md), wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := newRepoServer(t, map[string][]byte{
				"/base/repodata/repomd.xml":        md,
				"/base/repodata/repomd.xml.asc":    tc.sig,
				"/base/repodata/updateinfo.xml.gz": gzipBytes(t, readTestdata(t, "updateinfo.xml")),
				"/keys/RPM-GPG-KEY":                armoredPublicKey(t, signer),
			})
			repoFile := writeFile(t, t.TempDir(), "example.repo", []byte(fmt.Sprintf(`# example repositories
[example-updates]
name=Example Updates
baseurl=%[1]s/base/
  %[1]s/mirror/
enabled=1
gpgcheck=1
repo_gpgcheck=1
gpgkey=%[1]s/keys/RPM-GPG-KEY

[example-debug]
name=Example Debug
baseurl=%[1]s/debug/
enabled=0
`, srv.URL)))

			r, err := testLoader(WithHTTPClient(srv.Client())).Load(context.Background(), repoFile)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if r.Name != "example-updates" || r.Format != rpmmdFormat || len(r.Entries) != 4 {
				t.Errorf("got %s %s with %d entries", r.Name, r.Format, len(r.Entries))
			}
		})
	}

	noBase := writeFile(t, t.TempDir(), "nobase.repo", []byte("[x]\nname=x\n"))
	if _, err := testLoader().Load(context.Background(), noBase); err == nil {
		t.Error("expected error for a section without baseurl")
	}
	vars := writeFile(t, t.TempDir(), "vars.repo", []byte("[x]\nbaseurl=https://example.org/$releasever/\n"))
	if _, err := testLoader().Load(context.Background(), vars); err == nil {
		t.Error("expected error for unexpanded variables")
	}
}

func TestParseRepoFile(t *testing.T) {
	sections, err := parseRepoFile(strings.NewReader(`
; comment
[base]
name = Base
baseurl = https://example.org/base/
gpgcheck=1
gpgkey=
[extras]
enabled=0
`))
	if err != nil {
		t.Fatalf("parseRepoFile: %v", err)
	}
	if len(sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(sections))
	}
	base := sections[0]
	if base.Section != "base" || base.Name != "Base" || base.BaseURL != "https://example.org/base/" || !base.GPGCheck || !base.Enabled || base.GPGKey != "" {
		t.Errorf("base = %+v", base)
	}
	if sections[1].Enabled {
		t.Errorf("extras should be disabled")
	}

	if _, err := parseRepoFile(strings.NewReader("baseurl=x\n")); err == nil {
		t.Error("expected error for key outside a section")
	}
}

func TestLoadAllKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	json := readTestdata(t, "updates.json")
	var locations []string
	for i := 0; i < 12; i++ {
		locations = append(locations, writeFile(t, dir, fmt.Sprintf("r%02d.json", i), json))
	}

	rs, err := testLoader().LoadAll(context.Background(), locations, 4)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(rs) != len(locations) {
		t.Fatalf("got %d repositories, want %d", len(rs), len(locations))
	}
	for i, r := range rs {
		if r.Location != locations[i] {
			t.Errorf("repository %d = %s, want %s", i, r.Location, locations[i])
		}
	}
	if rs.Len() != 2*len(locations) {
		t.Errorf("Len() = %d", rs.Len())
	}
}

func TestLoadAllFailsOnFirstError(t *testing.T) {
	locations := []string{
		filepath.Join("testdata", "updates.json"),
		filepath.Join("testdata", "missing-evr.json"),
		filepath.Join("testdata", "updates.yaml"),
	}
	for _, workers := range []int{0, 1, 3, 10} {
		rs, err := testLoader().LoadAll(context.Background(), locations, workers)
		if err == nil {
			t.Fatalf("workers=%d: expected error", workers)
		}
		if rs != nil {
			t.Errorf("workers=%d: partial result returned", workers)
		}
		if !strings.Contains(err.Error(), "missing-evr.json") {
			t.Errorf("workers=%d: error %q does not name the failing source", workers, err)
		}
	}

	rs, err := testLoader().LoadAll(context.Background(), nil, 4)
	if err != nil || len(rs) != 0 {
		t.Errorf("LoadAll(nil) = %v, %v", rs, err)
	}
}
