package ports

import (
	"context"
	"io"

	"github.com/tejashwikalptaru/tunebox/internal/domain"
)

// Source is an opened audio byte stream with the information needed to pick a decoder.
type Source struct {
	// Name is the display or file name, used for extension-based fallbacks
	Name string

	// MediaType is the declared media type (e.g. "audio/mpeg"), possibly empty
	MediaType string

	// Reader yields the encoded audio bytes
	Reader io.ReadSeekCloser
}

// FileHandle is a user-selected file as handed over by the file chooser.
// Nothing is read from it until Open is called.
type FileHandle interface {
	// Name returns the base file name including its extension
	Name() string

	// MediaType returns the declared media type, e.g. "audio/mpeg"
	MediaType() string

	// Open opens the file contents for reading
	Open() (io.ReadSeekCloser, error)
}

// LocatorRegistry issues session-scoped locators for local files.
//
// Thread-safety: Implementations must be thread-safe.
type LocatorRegistry interface {
	// Register retains the handle and returns a new "blob:" locator for it.
	Register(handle FileHandle) string

	// Lookup returns the handle behind a locator.
	// Returns domain.ErrLocatorNotFound if the locator is unknown or revoked.
	Lookup(locator string) (FileHandle, error)

	// Revoke releases a locator. Revoking an unknown locator is a no-op.
	Revoke(locator string)
}

// ManifestSource fetches the bundled track manifest.
type ManifestSource interface {
	// Fetch returns the manifest entries in file order.
	// Returns an error wrapping domain.ErrManifestUnavailable on any failure.
	Fetch(ctx context.Context) ([]domain.Track, error)
}

// FileChooser turns user picks (files or a folder) into file handles.
type FileChooser interface {
	// Files returns handles for explicit file paths, in the given order.
	Files(ctx context.Context, paths []string) ([]FileHandle, error)

	// Folder returns handles for every file below dir, in walk order.
	Folder(ctx context.Context, dir string) ([]FileHandle, error)
}

// TrackList is the read-only view of the ordered playlist.
// The playback controller navigates through it.
type TrackList interface {
	// Len returns the number of tracks
	Len() int

	// Track returns the track at index, or false when out of range
	Track(index int) (domain.Track, bool)

	// IndexOf returns the current position of the track with id, or -1
	IndexOf(id string) int
}
