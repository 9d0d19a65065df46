package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/open-edge-platform/os-patch-composer/internal/patch"
)

// WriteAnomalyReport writes one line per anomaly to
// <dir>/anomalies-<runID>.txt and returns the file's path. The file is
// written even when there is nothing to report.
func WriteAnomalyReport(dir, runID string, anomalies []patch.Anomaly) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}

	reportPath := filepath.Join(dir, fmt.Sprintf("anomalies-%s.txt", safeName(runID)))
	f, err := os.OpenFile(reportPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return "", fmt.Errorf("opening report: %w", err)
	}
	defer f.Close()

	for _, a := range anomalies {
		if _, err := fmt.Fprintf(f, "%s\t%s\n", a.Kind, a); err != nil {
			return "", fmt.Errorf("writing report: %w", err)
		}
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing report: %w", err)
	}
	return reportPath, nil
}

// safeName replaces everything but ASCII letters, digits and '-' with '_'.
func safeName(s string) string {
	if s == "" {
		return "untitled"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		}
		return '_'
	}, s)
}
