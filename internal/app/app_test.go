package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/tunebox/internal/config"
	"github.com/tejashwikalptaru/tunebox/internal/domain"
	"github.com/tejashwikalptaru/tunebox/internal/testutil"
)

const testManifest = `[
  {"id": 1, "title": "Dawn", "artist": "A", "album": "B", "duration": "3:10",
   "src": "/music/dawn.mp3", "genre": "Ambient", "year": 2021, "cover": ""},
  {"id": 2, "title": "Dusk", "artist": "C", "album": "D", "duration": "4:00",
   "src": "/music/dusk.mp3", "genre": "Jazz", "year": 2019, "cover": ""}
]`

// newTestConfig returns settings for the mock backend rooted at root
func newTestConfig(t *testing.T, root string) Config {
	t.Helper()
	settings, err := config.Default()
	require.NoError(t, err)
	settings.Player.Backend = config.BackendMock
	settings.Manifest.Root = root
	settings.Log.Level = "error"

	return Config{
		Settings:    settings,
		TestFyneApp: test.NewTempApp(t),
	}
}

func writeWebRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	musicDir := filepath.Join(root, "music")
	require.NoError(t, os.MkdirAll(musicDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(musicDir, "music-data.json"), []byte(testManifest), 0o644))
	return root
}

func TestNewApplication(t *testing.T) {
	app, err := NewApplication(newTestConfig(t, t.TempDir()))
	require.NoError(t, err)
	require.NotNil(t, app)

	// Verify all services were created
	controller, playlist, library := app.GetServices()
	assert.NotNil(t, controller)
	assert.NotNil(t, playlist)
	assert.NotNil(t, library)

	assert.NotNil(t, app.GetEventBus())
	assert.NotNil(t, app.GetFyneApp())
	assert.NotNil(t, app.GetPresenter())

	// Initial volume comes from the settings
	assert.Equal(t, 1.0, controller.Session().Volume)

	assert.NoError(t, app.Shutdown())
}

func TestDefaultConfig(t *testing.T) {
	cfg, err := DefaultConfig()
	require.NoError(t, err)

	assert.Equal(t, "com.tunebox.app", cfg.Settings.App.ID)
	assert.Equal(t, "TuneBox", cfg.Settings.App.Name)
	assert.Empty(t, cfg.OpenPaths)
}

func TestApplicationLifecycle(t *testing.T) {
	defer testutil.VerifyNoLeaks(t, testutil.IgnoreFyneGoroutines()...)

	app, err := NewApplication(newTestConfig(t, t.TempDir()))
	require.NoError(t, err)

	// Run would normally block, but we're not calling it in test
	assert.NoError(t, app.Shutdown())

	// Shutdown again should not panic
	assert.NoError(t, app.Shutdown())
}

func TestApplicationPreload(t *testing.T) {
	root := writeWebRoot(t)

	userDir := t.TempDir()
	song := filepath.Join(userDir, "mine.mp3")
	require.NoError(t, os.WriteFile(song, []byte("ID3\x03\x00\x00\x00\x00\x00\x00"), 0o644))
	folder := filepath.Join(userDir, "album")
	require.NoError(t, os.MkdirAll(folder, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(folder, "one.mp3"), []byte("ID3\x03\x00\x00\x00\x00\x00\x00"), 0o644))

	cfg := newTestConfig(t, root)
	cfg.OpenPaths = []string{song, folder, filepath.Join(userDir, "missing.mp3")}
	app, err := NewApplication(cfg)
	require.NoError(t, err)
	defer app.Shutdown()

	app.Preload(context.Background())

	_, playlist, _ := app.GetServices()
	tracks := playlist.Tracks()
	require.Len(t, tracks, 4)

	// Bundled tracks come first
	assert.Equal(t, "Dawn", tracks[0].Title)
	assert.Equal(t, domain.SourceManifest, tracks[0].Source)
	assert.Equal(t, "Dusk", tracks[1].Title)
	assert.Equal(t, domain.SourceLocal, tracks[2].Source)
	assert.Equal(t, domain.SourceLocal, tracks[3].Source)
	assert.ElementsMatch(t, []string{"mine", "one"}, []string{tracks[2].Title, tracks[3].Title})
}

func TestApplicationPreload_NoManifest(t *testing.T) {
	app, err := NewApplication(newTestConfig(t, t.TempDir()))
	require.NoError(t, err)
	defer app.Shutdown()

	app.Preload(context.Background())

	_, playlist, _ := app.GetServices()
	assert.Zero(t, playlist.Len())
}

func TestApplicationPlaysManifestTrack(t *testing.T) {
	app, err := NewApplication(newTestConfig(t, writeWebRoot(t)))
	require.NoError(t, err)
	defer app.Shutdown()

	app.Preload(context.Background())

	require.NoError(t, app.GetPresenter().OnPlaylistTrackSelected(0))
	app.GetPresenter().OnPlayClicked()

	controller, _, _ := app.GetServices()
	session := controller.Session()
	assert.True(t, session.IsPlaying)
	require.NotNil(t, session.CurrentTrack)
	assert.Equal(t, "/music/dawn.mp3", session.CurrentTrack.Locator)
}

func TestResolverConfig(t *testing.T) {
	rc := resolverConfig(config.ManifestConfig{Root: "/srv/www"})
	assert.Equal(t, "/srv/www", rc.Root)
	assert.Empty(t, rc.BaseURL)

	rc = resolverConfig(config.ManifestConfig{Root: "/srv/www", URL: "https://cdn.example.com/music/music-data.json"})
	assert.Empty(t, rc.Root)
	assert.Equal(t, "https://cdn.example.com", rc.BaseURL)

	rc = resolverConfig(config.ManifestConfig{URL: "https://cdn.example.com/x.json", BaseURL: "https://media.example.com"})
	assert.Equal(t, "https://media.example.com", rc.BaseURL)
}
