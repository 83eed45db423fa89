package manifest

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/tejashwikalptaru/tunebox/internal/adapter/localfs"
	"github.com/tejashwikalptaru/tunebox/internal/adapter/repository/memory"
	"github.com/tejashwikalptaru/tunebox/internal/domain"
	"github.com/tejashwikalptaru/tunebox/internal/ports"
)

// Resolver implements ports.LocatorResolver.
//
// Locators come in three shapes:
//   - "blob:<id>" issued by the locator registry for user-selected files
//   - absolute http(s) URLs
//   - manifest paths such as "/music/track.mp3", read below Root when it is
//     set and fetched relative to BaseURL otherwise
type Resolver struct {
	registry ports.LocatorRegistry
	root     string
	baseURL  *url.URL
	client   *http.Client
	logger   *slog.Logger
}

// ResolverConfig configures where manifest paths are looked up.
type ResolverConfig struct {
	Root    string        // local web root; takes precedence over BaseURL
	BaseURL string        // scheme and host the manifest was served from
	Timeout time.Duration // HTTP timeout per request
}

// NewResolver creates a resolver.
func NewResolver(registry ports.LocatorRegistry, cfg ResolverConfig, logger *slog.Logger) (*Resolver, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Resolver{
		registry: registry,
		root:     cfg.Root,
		client:   &http.Client{Timeout: cfg.Timeout},
		logger:   logger,
	}
	if cfg.BaseURL != "" {
		u, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, errors.Wrapf(err, "parse base url %q", cfg.BaseURL)
		}
		r.baseURL = u
	}
	return r, nil
}

// Resolve opens the audio source behind locator.
func (r *Resolver) Resolve(ctx context.Context, locator string) (*ports.Source, error) {
	switch {
	case locator == "":
		return nil, domain.ErrInvalidLocator
	case memory.IsBlobLocator(locator):
		return r.resolveBlob(locator)
	case strings.HasPrefix(locator, "http://"), strings.HasPrefix(locator, "https://"):
		return r.fetch(ctx, locator)
	case r.root != "":
		return r.openLocal(locator)
	case r.baseURL != nil:
		ref, err := url.Parse(locator)
		if err != nil {
			return nil, errors.Wrapf(domain.ErrInvalidLocator, "%q: %v", locator, err)
		}
		return r.fetch(ctx, r.baseURL.ResolveReference(ref).String())
	default:
		return nil, errors.Wrapf(domain.ErrLocatorNotFound, "no web root or base url for %q", locator)
	}
}

func (r *Resolver) resolveBlob(locator string) (*ports.Source, error) {
	handle, err := r.registry.Lookup(locator)
	if err != nil {
		return nil, err
	}
	rc, err := handle.Open()
	if err != nil {
		return nil, err
	}
	return &ports.Source{
		Name:      handle.Name(),
		MediaType: handle.MediaType(),
		Reader:    rc,
	}, nil
}

func (r *Resolver) openLocal(locator string) (*ports.Source, error) {
	clean := path.Clean("/" + locator)
	full := filepath.Join(r.root, filepath.FromSlash(strings.TrimPrefix(clean, "/")))

	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrapf(domain.ErrFileNotFound, "%s", full)
		}
		return nil, errors.Wrapf(err, "open %s", full)
	}
	return &ports.Source{
		Name:      path.Base(clean),
		MediaType: localfs.MediaTypeForName(clean),
		Reader:    f,
	}, nil
}

// fetch downloads the whole body so decoders get a seekable stream.
func (r *Resolver) fetch(ctx context.Context, rawURL string) (*ports.Source, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrapf(domain.ErrInvalidLocator, "%q: %v", rawURL, err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s", rawURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusNotFound {
			return nil, errors.Wrapf(domain.ErrFileNotFound, "GET %s", rawURL)
		}
		return nil, errors.Newf("GET %s: %s", rawURL, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", rawURL)
	}
	r.logger.Debug("fetched remote source", slog.String("url", rawURL), slog.Int("bytes", len(data)))

	name := path.Base(req.URL.Path)
	mediaType := localfs.MediaTypeForName(name)
	if mediaType == "" {
		mediaType = resp.Header.Get("Content-Type")
	}
	return &ports.Source{
		Name:      name,
		MediaType: mediaType,
		Reader:    nopCloser{bytes.NewReader(data)},
	}, nil
}

type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }

// Verify interface compliance
var _ ports.LocatorResolver = (*Resolver)(nil)
