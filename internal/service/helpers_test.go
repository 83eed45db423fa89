package service

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"

	"github.com/tejashwikalptaru/tunebox/internal/adapter/audio/mock"
	"github.com/tejashwikalptaru/tunebox/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/tunebox/internal/adapter/repository/memory"
	"github.com/tejashwikalptaru/tunebox/internal/domain"
	"github.com/tejashwikalptaru/tunebox/internal/logger"
	"github.com/tejashwikalptaru/tunebox/internal/ports"
)

// fakeHandle is an in-memory file handle
type fakeHandle struct {
	name      string
	mediaType string
}

func (h fakeHandle) Name() string      { return h.name }
func (h fakeHandle) MediaType() string { return h.mediaType }
func (h fakeHandle) Open() (io.ReadSeekCloser, error) {
	return nopReadSeekCloser{bytes.NewReader(nil)}, nil
}

type nopReadSeekCloser struct{ *bytes.Reader }

func (nopReadSeekCloser) Close() error { return nil }

func audioHandle(name string) ports.FileHandle {
	return fakeHandle{name: name, mediaType: "audio/mpeg"}
}

// fakeManifest returns fixed tracks or an error
type fakeManifest struct {
	tracks []domain.Track
	err    error
	calls  int
	mu     sync.Mutex
}

func (f *fakeManifest) Fetch(ctx context.Context) ([]domain.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.Track, len(f.tracks))
	copy(out, f.tracks)
	return out, nil
}

func manifestTrack(id, title string) domain.Track {
	return domain.Track{
		ID:            id,
		Title:         title,
		Artist:        "Bundled Artist",
		Album:         "Bundled Album",
		Genre:         "Ambient",
		Year:          2020,
		DurationLabel: "3:00",
		Locator:       "/music/" + id + ".mp3",
	}
}

// eventRecorder collects published events of the given types
type eventRecorder struct {
	events []domain.Event
	mu     sync.Mutex
}

func recordEvents(bus ports.EventBus, types ...domain.EventType) *eventRecorder {
	r := &eventRecorder{}
	for _, eventType := range types {
		bus.Subscribe(eventType, func(e domain.Event) {
			r.mu.Lock()
			r.events = append(r.events, e)
			r.mu.Unlock()
		})
	}
	return r
}

func (r *eventRecorder) all() []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Event, len(r.events))
	copy(out, r.events)
	return out
}

func (r *eventRecorder) count(eventType domain.EventType) int {
	n := 0
	for _, e := range r.all() {
		if e.Type() == eventType {
			n++
		}
	}
	return n
}

// testRig wires a controller to a mock player and a real playlist
type testRig struct {
	bus        *eventbus.SyncEventBus
	player     *mock.Player
	registry   *memory.LocatorRepository
	playlist   *PlaylistManager
	controller *PlaybackController
}

func newTestRig(t *testing.T, opts ControllerOptions) *testRig {
	t.Helper()

	testLogger := logger.NewTestLogger()
	bus := eventbus.NewSyncEventBus()
	bus.SetLogger(testLogger)
	player := mock.NewPlayer(bus)
	player.SetLogger(testLogger)
	registry := memory.NewLocatorRepository(testLogger)
	playlist := NewPlaylistManager(testLogger, bus, nil, registry, nil)
	controller := NewPlaybackController(testLogger, player, playlist, bus, opts)

	rig := &testRig{
		bus:        bus,
		player:     player,
		registry:   registry,
		playlist:   playlist,
		controller: controller,
	}
	t.Cleanup(func() {
		_ = controller.Shutdown()
		_ = playlist.Shutdown()
		_ = bus.Close()
	})
	return rig
}

// addTracks appends n audio files named track<i>.mp3
func (r *testRig) addTracks(names ...string) []domain.Track {
	handles := make([]ports.FileHandle, 0, len(names))
	for _, name := range names {
		handles = append(handles, audioHandle(name))
	}
	return r.playlist.AddFiles(handles)
}
