package localfs

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/tejashwikalptaru/tunebox/internal/domain"
	"github.com/tejashwikalptaru/tunebox/internal/ports"
)

// Chooser implements ports.FileChooser over the local filesystem.
// It hands back every regular file it is pointed at; deciding which ones are
// audio is left to the caller via FileHandle.MediaType.
type Chooser struct {
	logger *slog.Logger
}

// NewChooser creates a filesystem chooser.
func NewChooser(logger *slog.Logger) *Chooser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chooser{logger: logger}
}

// Files returns handles for explicit paths, preserving order.
// Directories are skipped. A missing path fails the whole call.
func (c *Chooser) Files(ctx context.Context, paths []string) ([]ports.FileHandle, error) {
	handles := make([]ports.FileHandle, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return handles, err
		}
		if strings.TrimSpace(p) == "" {
			return nil, domain.ErrInvalidFilePath
		}

		info, err := os.Stat(p)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, errors.Wrapf(domain.ErrFileNotFound, "%s", p)
			}
			return nil, errors.Wrapf(err, "stat %s", p)
		}
		if info.IsDir() {
			c.logger.Debug("skipping directory in file selection", slog.String("path", p))
			continue
		}
		handles = append(handles, NewFile(p))
	}
	return handles, nil
}

// Folder returns handles for every regular file below dir, in lexical walk order.
// Unreadable entries and hidden files are skipped.
func (c *Chooser) Folder(ctx context.Context, dir string) ([]ports.FileHandle, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrapf(domain.ErrFileNotFound, "%s", dir)
		}
		return nil, errors.Wrapf(err, "stat %s", dir)
	}
	if !info.IsDir() {
		return nil, errors.Wrapf(domain.ErrInvalidFilePath, "%s is not a directory", dir)
	}

	handles := make([]ports.FileHandle, 0)
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			c.logger.Debug("skipping unreadable entry", slog.String("path", path), slog.Any("error", err))
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		handles = append(handles, NewFile(path))
		return nil
	})
	if err != nil {
		return handles, err
	}
	return handles, nil
}

// Verify interface compliance
var _ ports.FileChooser = (*Chooser)(nil)
