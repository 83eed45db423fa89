package fyne

import (
	"context"
	"io"

	"github.com/cockroachdb/errors"

	"github.com/tejashwikalptaru/tunebox/internal/domain"
	"github.com/tejashwikalptaru/tunebox/internal/ports"
)

// artworkLimit caps how much of a cover image is read.
const artworkLimit = 8 << 20

var errNoArtwork = errors.New("no artwork")

// loadArtwork returns the cover image bytes named by a track's cover locator.
// Tracks without a cover (every user-added file) have no artwork; audio files
// are never inspected for embedded pictures.
func loadArtwork(ctx context.Context, resolver ports.LocatorResolver, track domain.Track) ([]byte, error) {
	if track.Cover == "" {
		return nil, errNoArtwork
	}

	src, err := resolver.Resolve(ctx, track.Cover)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve cover %s", track.Cover)
	}
	defer src.Reader.Close()

	data, err := io.ReadAll(io.LimitReader(src.Reader, artworkLimit))
	if err != nil {
		return nil, errors.Wrapf(err, "read cover %s", track.Cover)
	}
	if len(data) == 0 {
		return nil, errNoArtwork
	}
	return data, nil
}
