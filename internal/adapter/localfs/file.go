package localfs

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/tejashwikalptaru/tunebox/internal/domain"
	"github.com/tejashwikalptaru/tunebox/internal/ports"
)

// File is a ports.FileHandle backed by a path on the local filesystem.
//
// The media type is the one the file chooser would declare: taken from the
// extension when it is known, otherwise sniffed from the content once.
type File struct {
	path string

	once      sync.Once
	mediaType string
}

// NewFile returns a handle for path. The file is not opened.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the filesystem path of the handle.
func (f *File) Path() string {
	return f.path
}

// Name returns the base file name including its extension.
func (f *File) Name() string {
	return filepath.Base(f.path)
}

// MediaType returns the declared media type, or "application/octet-stream".
func (f *File) MediaType() string {
	f.once.Do(func() {
		if t := MediaTypeForName(f.path); t != "" {
			f.mediaType = t
			return
		}
		f.mediaType = octetStream
		file, err := os.Open(f.path)
		if err != nil {
			return
		}
		defer file.Close()
		f.mediaType = sniff(file)
	})
	return f.mediaType
}

// Open opens the file for reading.
func (f *File) Open() (io.ReadSeekCloser, error) {
	file, err := os.Open(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrapf(domain.ErrFileNotFound, "%s", f.path)
		}
		return nil, errors.Wrapf(err, "open %s", f.path)
	}
	return file, nil
}

// Verify interface compliance
var _ ports.FileHandle = (*File)(nil)
