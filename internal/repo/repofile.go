package repo

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
)

const repoFileSuffix = ".repo"

// repoConfig holds the values of one .repo file section
type repoConfig struct {
	Section      string // raw section header
	Name         string // human-readable name from name=
	BaseURL      string
	GPGCheck     bool
	RepoGPGCheck bool
	Enabled      bool
	GPGKey       string
}

// parseRepoFile parses the sections of a yum/dnf .repo file. A section
// without enabled= is enabled.
func parseRepoFile(r io.Reader) ([]repoConfig, error) {
	s := bufio.NewScanner(r)
	var out []repoConfig
	var rc *repoConfig
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		// skip comments or empty
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		// section header
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			out = append(out, repoConfig{Section: strings.Trim(line, "[]"), Enabled: true})
			rc = &out[len(out)-1]
			continue
		}
		if rc == nil {
			return nil, fmt.Errorf("line %q outside of a section", line)
		}
		// key=value lines
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		switch key {
		case "name":
			rc.Name = val
		case "baseurl":
			// only the first of several mirrors is used
			rc.BaseURL = firstField(val)
		case "gpgcheck":
			rc.GPGCheck = (val == "1")
		case "repo_gpgcheck":
			rc.RepoGPGCheck = (val == "1")
		case "enabled":
			rc.Enabled = (val == "1")
		case "gpgkey":
			rc.GPGKey = firstField(val)
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func firstField(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return ""
}

// loadRepoFile loads every enabled section of a .repo file as an rpm-md
// repository. Sections with repo_gpgcheck=1 verify repomd.xml against
// their gpgkey unless the Loader already has a keyring.
func (l *Loader) loadRepoFile(ctx context.Context, location string) (*Repository, error) {
	log := l.log

	raw, err := l.fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	sections, err := parseRepoFile(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", location, err)
	}

	out := &Repository{Format: rpmmdFormat}
	for _, rc := range sections {
		if !rc.Enabled {
			log.Debugf("skipping disabled repository %s", rc.Section)
			continue
		}
		if rc.BaseURL == "" {
			return nil, fmt.Errorf("%s: repository %s has no baseurl", location, rc.Section)
		}
		if strings.Contains(rc.BaseURL, "$") {
			return nil, fmt.Errorf("%s: repository %s baseurl %q has unexpanded variables", location, rc.Section, rc.BaseURL)
		}

		sub := l
		if rc.RepoGPGCheck && l.keyring == nil && rc.GPGKey != "" {
			key, err := l.fetch(ctx, rc.GPGKey)
			if err != nil {
				return nil, fmt.Errorf("fetching gpgkey of %s: %w", rc.Section, err)
			}
			kr, err := ReadKeyring(bytes.NewReader(key))
			if err != nil {
				return nil, fmt.Errorf("%s: %w", rc.GPGKey, err)
			}
			withKey := *l
			withKey.keyring = kr
			sub = &withKey
		}

		log.Infof("initialized rpm repo section=%s name=%s baseurl=%s", rc.Section, rc.Name, rc.BaseURL)
		r, err := sub.loadRPMMD(ctx, rc.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("repository %s: %w", rc.Section, err)
		}
		if out.Name == "" {
			out.Name = rc.Section
		}
		out.Entries = append(out.Entries, r.Entries...)
	}
	return out, nil
}
