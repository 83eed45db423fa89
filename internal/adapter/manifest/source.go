package manifest

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/tejashwikalptaru/tunebox/internal/domain"
	"github.com/tejashwikalptaru/tunebox/internal/ports"
)

// HTTPSource fetches the manifest with a GET request.
type HTTPSource struct {
	url    string
	client *http.Client
}

// NewHTTPSource creates a source for the manifest at url.
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch downloads and parses the manifest.
func (s *HTTPSource) Fetch(ctx context.Context) ([]domain.Track, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, unavailable(err, "build manifest request")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, unavailable(err, "fetch manifest")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(domain.ErrManifestUnavailable, "GET %s: %s", s.url, resp.Status)
	}
	return Read(resp.Body)
}

// FileSource reads the manifest from disk.
type FileSource struct {
	path string
}

// NewFileSource creates a source for the manifest file at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Fetch reads and parses the manifest file.
func (s *FileSource) Fetch(ctx context.Context) ([]domain.Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(err, "fetch manifest")
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, unavailable(err, "open manifest")
	}
	defer f.Close()
	return Read(f)
}

// NewSource picks a source for the manifest: an explicit URL wins, then a web
// root on disk. The returned string describes the choice for logging.
func NewSource(url, root, path string, timeout time.Duration) (ports.ManifestSource, string) {
	if url != "" {
		return NewHTTPSource(url, timeout), url
	}
	file := FilePath(root, path)
	return NewFileSource(file), fmt.Sprintf("file://%s", file)
}

// FilePath maps the manifest's slash-separated path onto the disk below root.
// An empty path means DefaultPath.
func FilePath(root, path string) string {
	if path == "" {
		path = DefaultPath
	}
	return filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(path, "/")))
}

// Verify interface compliance
var (
	_ ports.ManifestSource = (*HTTPSource)(nil)
	_ ports.ManifestSource = (*FileSource)(nil)
)
