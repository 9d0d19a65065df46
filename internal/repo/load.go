package repo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/open-edge-platform/os-patch-composer/internal/utils/logger"
	"go.uber.org/zap"
)

const (
	rpmmdFormat = "rpm-md"
	fileScheme  = "file://"
)

// Loader fetches and decodes repository locations.
type Loader struct {
	client   *http.Client
	keyring  openpgp.EntityList
	format   string
	progress io.Writer
	log      *zap.SugaredLogger
}

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient sets the client used for http(s) locations.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) {
		l.client = c
	}
}

// WithKeyring requires every fetched document to carry a detached armored
// signature (location + ".asc") made by a key in kr.
func WithKeyring(kr openpgp.EntityList) Option {
	return func(l *Loader) {
		l.keyring = kr
	}
}

// WithFormat disables detection and decodes every location with the named
// format, or treats it as an rpm-md repository root for "rpm-md".
func WithFormat(name string) Option {
	return func(l *Loader) {
		l.format = name
	}
}

// WithProgress renders a progress bar of completed loads to w during
// LoadAll.
func WithProgress(w io.Writer) Option {
	return func(l *Loader) {
		l.progress = w
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(l *Loader) {
		l.log = log
	}
}

// NewLoader returns a Loader using a TLS-restricted client and the global
// logger unless configured otherwise.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{}
	for _, o := range opts {
		o(l)
	}
	if l.client == nil {
		l.client = NewSecureHTTPClient(0)
	}
	if l.log == nil {
		l.log = logger.Logger()
	}
	return l
}

// Load reads one location. Directories and URLs ending in "/" are rpm-md
// repository roots, ".repo" files name rpm-md repositories, anything else is
// a single document whose format is detected from its name.
func (l *Loader) Load(ctx context.Context, location string) (*Repository, error) {
	if l.format != "" && l.format != rpmmdFormat {
		if _, ok := Get(l.format); !ok {
			return nil, fmt.Errorf("%w: %q (known: %s)", ErrFormatNotFound, l.format, strings.Join(append(Formats(), rpmmdFormat), ", "))
		}
	}

	var (
		r   *Repository
		err error
	)
	switch {
	case l.format == rpmmdFormat || l.isRepositoryRoot(location):
		r, err = l.loadRPMMD(ctx, location)
	case l.format == "" && strings.HasSuffix(location, repoFileSuffix):
		r, err = l.loadRepoFile(ctx, location)
	default:
		r, err = l.loadDocument(ctx, location)
	}
	if err != nil {
		return nil, err
	}

	r.Location = location
	if r.Name == "" {
		r.Name = path.Base(strings.TrimSuffix(location, "/"))
	}
	l.log.Infof("loaded %d solvables from %s (%s)", len(r.Entries), location, r.Format)
	return r, nil
}

func (l *Loader) isRepositoryRoot(location string) bool {
	if isRemote(location) {
		return strings.HasSuffix(location, "/")
	}
	fi, err := os.Stat(strings.TrimPrefix(location, fileScheme))
	return err == nil && fi.IsDir()
}

func (l *Loader) loadDocument(ctx context.Context, location string) (*Repository, error) {
	var f Format
	if l.format != "" {
		f, _ = Get(l.format)
	} else {
		var err error
		if f, err = Detect(location); err != nil {
			return nil, err
		}
	}

	raw, err := l.fetchVerified(ctx, location)
	if err != nil {
		return nil, err
	}
	doc, err := decompress(path.Base(location), raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}
	r, err := f.Decode(bytes.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}
	r.Format = f.Name()
	return r, nil
}

// fetchVerified fetches location and, with a keyring configured, checks
// its detached signature.
func (l *Loader) fetchVerified(ctx context.Context, location string) ([]byte, error) {
	raw, err := l.fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	if l.keyring == nil {
		return raw, nil
	}

	sig, err := l.fetch(ctx, location+signatureSuffix)
	if err != nil {
		return nil, fmt.Errorf("fetching signature of %s: %w", location, err)
	}
	keyID, err := verifyDetached(l.keyring, raw, sig)
	if err != nil {
		return nil, fmt.Errorf("verifying signature of %s: %w", location, err)
	}
	l.log.Debugf("verified signature of %s by key %s", location, keyID)
	return raw, nil
}

// fetch reads the raw bytes of a local path or an http(s) URL.
func (l *Loader) fetch(ctx context.Context, location string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if isRemote(location) {
		return l.get(ctx, location)
	}

	f, err := os.Open(strings.TrimPrefix(location, fileScheme))
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", location, err)
	}
	defer f.Close()
	return l.readAll(location, f)
}

func (l *Loader) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: bad status: %s", url, resp.Status)
	}
	return l.readAll(url, resp.Body)
}

func (l *Loader) readAll(location string, r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", location, err)
	}
	return data, nil
}
