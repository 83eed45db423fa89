// Package manifest reads the bundled track manifest and resolves locators to audio bytes.
package manifest

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/tejashwikalptaru/tunebox/internal/domain"
)

// DefaultPath is the well-known location of the manifest below the web root.
const DefaultPath = "/music/music-data.json"

// entry is one manifest record as found on the wire.
// id may be a JSON number or a string; year may be a number or a numeric string.
type entry struct {
	ID       json.RawMessage `json:"id"`
	Title    string          `json:"title"`
	Artist   string          `json:"artist"`
	Album    string          `json:"album"`
	Duration string          `json:"duration"`
	Src      string          `json:"src"`
	Genre    string          `json:"genre"`
	Year     json.RawMessage `json:"year"`
	Cover    string          `json:"cover"`
}

// Parse decodes a manifest document into tracks, keeping file order.
func Parse(data []byte) ([]domain.Track, error) {
	var entries []entry
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&entries); err != nil {
		return nil, unavailable(err, "decode manifest")
	}

	tracks := make([]domain.Track, 0, len(entries))
	for i, e := range entries {
		id, err := scalarString(e.ID)
		if err != nil || id == "" {
			return nil, errors.Wrapf(domain.ErrManifestUnavailable, "entry %d: missing or malformed id", i)
		}
		if e.Src == "" {
			return nil, errors.Wrapf(domain.ErrManifestUnavailable, "entry %d (%s): missing src", i, id)
		}

		year := 0
		if ys, err := scalarString(e.Year); err == nil && ys != "" {
			if n, err := strconv.Atoi(ys); err == nil {
				year = n
			}
		}

		tracks = append(tracks, domain.Track{
			ID:            id,
			Title:         e.Title,
			Artist:        e.Artist,
			Album:         e.Album,
			Genre:         e.Genre,
			Year:          year,
			DurationLabel: e.Duration,
			Locator:       e.Src,
			Cover:         e.Cover,
			Source:        domain.SourceManifest,
		})
	}
	return tracks, nil
}

// Read parses a manifest from r.
func Read(r io.Reader) ([]domain.Track, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, unavailable(err, "read manifest")
	}
	return Parse(data)
}

// unavailable marks err as domain.ErrManifestUnavailable and keeps it as the
// cause, so callers can test for either.
func unavailable(err error, msg string) error {
	return errors.Mark(errors.Wrap(err, msg), domain.ErrManifestUnavailable)
}

// scalarString renders a JSON number or string as a plain string.
// Numbers keep their decimal text, so 7 and "7" yield the same id.
func scalarString(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return strings.TrimSpace(s), nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}
