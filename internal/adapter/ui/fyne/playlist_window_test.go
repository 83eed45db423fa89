package fyne

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/tunebox/internal/domain"
)

func TestFilterTracks(t *testing.T) {
	tracks := []domain.Track{
		{ID: "1", Title: "Dawn", Artist: "Aurora", Album: "Mornings", Genre: "Ambient"},
		{ID: "2", Title: "Dusk", Artist: "Nightfall", Album: "Evenings", Genre: "Jazz"},
		{ID: "3", Title: "Noon", Artist: "Aurora", Album: "Evenings", Genre: "Pop"},
	}

	tests := []struct {
		name  string
		query string
		want  []int
	}{
		{name: "blank shows all", query: "  ", want: []int{0, 1, 2}},
		{name: "title", query: "dusk", want: []int{1}},
		{name: "artist case-insensitive", query: "AURORA", want: []int{0, 2}},
		{name: "album", query: "even", want: []int{1, 2}},
		{name: "genre", query: "jazz", want: []int{1}},
		{name: "no match", query: "polka", want: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, filterTracks(tracks, tt.query))
		})
	}
}

func TestRowText(t *testing.T) {
	track := domain.Track{Title: "Dawn", Artist: "Aurora", DurationLabel: "3:05"}
	assert.Equal(t, "Aurora - Dawn", displayText(track))
	assert.Equal(t, "3:05", durationText(track))

	unknown := domain.Track{Title: "mine.mp3", Artist: domain.UnknownArtist, DurationLabel: domain.UnknownDurationLabel}
	assert.Equal(t, "mine.mp3", displayText(unknown))
	assert.Empty(t, durationText(unknown))

	assert.Equal(t, "Playlist (3 items)", playlistTitle(3, 3))
	assert.Equal(t, "Playlist (1 of 3 items)", playlistTitle(1, 3))
}

func TestPlaylistWindow(t *testing.T) {
	app := test.NewTempApp(t)
	rig := newPresenterRig(t, staticManifest{
		bundledTrack("1", "Dawn", ""),
		bundledTrack("2", "Dusk", ""),
	}, nil)
	rig.playlist.LoadManifest(context.Background())
	require.NoError(t, rig.presenter.OnPlaylistTrackSelected(1))

	w := NewPlaylistWindow(app, rig.presenter, rig.bus)
	defer w.Close()

	assert.Equal(t, []int{0, 1}, w.visible)
	assert.Equal(t, 1, w.current)
	assert.Equal(t, "Playlist (2 items)", w.window.Title())

	w.search.SetText("dawn")
	assert.Equal(t, []int{0}, w.visible)
	assert.Equal(t, "Playlist (1 of 2 items)", w.window.Title())

	// Rows report playlist indices, so playing the one filtered row selects track 0
	w.play(w.visible[0])
	assert.Equal(t, 0, rig.presenter.CurrentIndex())

	w.SetSelected(0)
	assert.Equal(t, 0, w.current)

	w.search.SetText("")
	assert.Len(t, w.visible, 2)
}

func TestPlaylistWindow_FollowsManifestPrepend(t *testing.T) {
	app := test.NewTempApp(t)
	rig := newPresenterRig(t, staticManifest{
		bundledTrack("1", "Dawn", ""),
		bundledTrack("2", "Dusk", ""),
	}, nil)

	song := filepath.Join(t.TempDir(), "mine.mp3")
	require.NoError(t, os.WriteFile(song, []byte("ID3\x03\x00\x00\x00\x00\x00\x00"), 0o644))
	require.NoError(t, rig.presenter.OnFilesOpened([]string{song}))

	w := NewPlaylistWindow(app, rig.presenter, rig.bus)
	defer w.Close()
	require.Equal(t, 0, w.current)

	rig.playlist.LoadManifest(context.Background())

	assert.Len(t, w.tracks, 3)
	assert.Equal(t, 2, w.current)
	assert.Equal(t, "mine", w.tracks[w.current].Title)
}
