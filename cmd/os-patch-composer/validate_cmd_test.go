package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/open-edge-platform/os-patch-composer/internal/patch"
)

func TestValidateCommand(t *testing.T) {
	tests := []struct {
		name    string
		sources []string
		want    []string
	}{
		{
			name:    "single source",
			sources: []string{"testdata/base.json"},
			want: []string{
				"source testdata/base.json: 2 solvables (dump-json)",
				"2 solvables, 1 atoms, 1 patches, 0 anomalies",
			},
		},
		{
			name:    "anomalies are listed",
			sources: []string{"testdata/base.json", "testdata/more.yaml"},
			want: []string{
				"source testdata/more.yaml: 4 solvables (dump-yaml)",
				"6 solvables, 2 atoms, 2 patches, 2 anomalies",
				"  duplicate: known atom atom:bar-2.0.x86_64 replaced",
				"  unknown-kind: ",
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, _, err := runCommand(t, append([]string{"validate"}, tc.sources...)...)
			if err != nil {
				t.Fatalf("validate: %v", err)
			}
			for _, want := range tc.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestValidateCommandSchemaViolation(t *testing.T) {
	out, _, err := runCommand(t, "validate", "testdata/invalid-link.json")
	if err == nil {
		t.Fatal("expected a schema violation")
	}
	var se *patch.SchemaError
	if !errors.As(err, &se) || se.Violation != patch.NonEqualRequire {
		t.Fatalf("expected NonEqualRequire, got %v", err)
	}
	if exitCode(err) != exitSchema {
		t.Errorf("exitCode = %d, want %d", exitCode(err), exitSchema)
	}
	if out != "" {
		t.Errorf("expected no summary on failure, got %q", out)
	}
}
