package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tejashwikalptaru/tunebox/internal/domain"
	"github.com/tejashwikalptaru/tunebox/internal/ports"
)

// FileImporter turns user picks into file handles.
// LibraryService is the production implementation.
type FileImporter interface {
	ImportFiles(ctx context.Context, paths []string) ([]ports.FileHandle, error)
	ImportFolder(ctx context.Context, dir string) ([]ports.FileHandle, error)
}

// PlaylistManager owns the ordered track list: manifest tracks first,
// user-added tracks after. The list is append-only for the session.
// All operations are thread-safe via sync.RWMutex.
type PlaylistManager struct {
	// Dependencies (injected)
	logger   *slog.Logger
	bus      ports.EventBus
	manifest ports.ManifestSource
	registry ports.LocatorRegistry
	importer FileImporter

	// Hooks
	now   func() time.Time
	newID func() string

	// State
	tracks         []domain.Track
	ids            map[string]struct{}
	locators       []string // registered by this manager, revoked on shutdown
	manifestLoaded bool

	// Concurrency control
	mu sync.RWMutex
}

// NewPlaylistManager creates an empty playlist.
// manifest and importer may be nil when those sources are not available.
func NewPlaylistManager(
	logger *slog.Logger,
	bus ports.EventBus,
	manifest ports.ManifestSource,
	registry ports.LocatorRegistry,
	importer FileImporter,
) *PlaylistManager {
	m := &PlaylistManager{
		logger:   logger,
		bus:      bus,
		manifest: manifest,
		registry: registry,
		importer: importer,
		now:      time.Now,
		newID:    newTrackID,
		tracks:   make([]domain.Track, 0),
		ids:      make(map[string]struct{}),
	}

	logger.Debug("playlist manager initialized")
	return m
}

// newTrackID returns a time-ordered UUID.
func newTrackID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// LoadManifest fetches the bundled manifest once and places its tracks
// before any user-added tracks. Failures are logged and leave the list
// unchanged; there is no retry.
func (m *PlaylistManager) LoadManifest(ctx context.Context) {
	m.mu.Lock()
	if m.manifest == nil || m.manifestLoaded {
		m.mu.Unlock()
		return
	}
	m.manifestLoaded = true
	m.mu.Unlock()

	fetched, err := m.manifest.Fetch(ctx)
	if err != nil {
		m.logger.Error("failed to load manifest", slog.Any("error", err))
		m.bus.Publish(domain.NewManifestFailedEvent(err))
		return
	}

	m.mu.Lock()
	accepted := make([]domain.Track, 0, len(fetched))
	for _, track := range fetched {
		if _, dup := m.ids[track.ID]; dup {
			m.logger.Warn("skipping manifest entry with duplicate id",
				slog.String("id", track.ID),
				slog.String("title", track.Title))
			continue
		}
		track.Source = domain.SourceManifest
		m.ids[track.ID] = struct{}{}
		accepted = append(accepted, track)
	}

	shift := 0
	if len(m.tracks) > 0 {
		shift = len(accepted)
	}
	m.tracks = append(accepted, m.tracks...)
	snapshot := m.snapshotLocked()
	m.mu.Unlock()

	m.logger.Info("manifest loaded", slog.Int("tracks", len(accepted)))
	m.bus.Publish(domain.NewManifestLoadedEvent(len(accepted)))
	if len(accepted) > 0 {
		m.bus.Publish(domain.NewPlaylistUpdatedEvent(snapshot, "", shift))
	}
}

// AddFiles appends one track per audio handle, in selection order.
// Handles whose media type is not audio are dropped. Returns the added tracks.
func (m *PlaylistManager) AddFiles(handles []ports.FileHandle) []domain.Track {
	year := m.now().Year()

	m.mu.Lock()
	first := len(m.tracks)
	added := make([]domain.Track, 0, len(handles))
	for _, h := range handles {
		mediaType := h.MediaType()
		if !strings.HasPrefix(mediaType, "audio/") {
			m.logger.Debug("ignoring non-audio file",
				slog.String("name", h.Name()),
				slog.String("media_type", mediaType))
			continue
		}

		id := m.newID()
		for {
			if _, dup := m.ids[id]; !dup {
				break
			}
			id = newTrackID()
		}

		locator := m.registry.Register(h)
		track := domain.Track{
			ID:            id,
			Title:         titleFromName(h.Name()),
			Artist:        domain.UnknownArtist,
			Album:         domain.LocalAlbum,
			Genre:         domain.UnknownGenre,
			Year:          year,
			DurationLabel: domain.UnknownDurationLabel,
			Locator:       locator,
			Source:        domain.SourceLocal,
		}
		m.ids[id] = struct{}{}
		m.locators = append(m.locators, locator)
		m.tracks = append(m.tracks, track)
		added = append(added, track)
	}
	snapshot := m.snapshotLocked()
	m.mu.Unlock()

	if len(added) == 0 {
		return added
	}

	m.logger.Info("tracks added",
		slog.Int("added", len(added)),
		slog.Int("skipped", len(handles)-len(added)))
	m.bus.Publish(domain.NewTracksAddedEvent(added, first))
	m.bus.Publish(domain.NewPlaylistUpdatedEvent(snapshot, added[0].ID, 0))
	return added
}

// titleFromName strips the final extension from a file name.
func titleFromName(name string) string {
	title := strings.TrimSuffix(name, filepath.Ext(name))
	if title == "" {
		return name
	}
	return title
}

// SelectFiles imports explicit file paths and appends the audio among them.
func (m *PlaylistManager) SelectFiles(ctx context.Context, paths []string) ([]domain.Track, error) {
	if m.importer == nil {
		return nil, domain.ErrNotInitialized
	}
	handles, err := m.importer.ImportFiles(ctx, paths)
	if err != nil {
		return nil, domain.NewServiceError("PlaylistManager", "SelectFiles", "failed to import files", err)
	}
	return m.AddFiles(handles), nil
}

// SelectFolder imports every file below dir and appends the audio among them.
func (m *PlaylistManager) SelectFolder(ctx context.Context, dir string) ([]domain.Track, error) {
	if m.importer == nil {
		return nil, domain.ErrNotInitialized
	}
	handles, err := m.importer.ImportFolder(ctx, dir)
	if err != nil {
		return nil, domain.NewServiceError("PlaylistManager", "SelectFolder", "failed to import folder", err)
	}
	return m.AddFiles(handles), nil
}

// Tracks returns a copy of the list.
func (m *PlaylistManager) Tracks() []domain.Track {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

// Track returns the track at index.
func (m *PlaylistManager) Track(index int) (domain.Track, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if index < 0 || index >= len(m.tracks) {
		return domain.Track{}, false
	}
	return m.tracks[index], true
}

// IndexOf returns the position of the track with id, or -1.
// Positions move when manifest tracks are prepended; ids do not.
func (m *PlaylistManager) IndexOf(id string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i, track := range m.tracks {
		if track.ID == id {
			return i
		}
	}
	return -1
}

// Len returns the number of tracks.
func (m *PlaylistManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tracks)
}

// Shutdown revokes every locator this manager registered.
func (m *PlaylistManager) Shutdown() error {
	m.mu.Lock()
	locators := m.locators
	m.locators = nil
	m.mu.Unlock()

	for _, locator := range locators {
		m.registry.Revoke(locator)
	}
	m.logger.Debug("playlist manager shut down", slog.Int("revoked", len(locators)))
	return nil
}

func (m *PlaylistManager) snapshotLocked() []domain.Track {
	out := make([]domain.Track, len(m.tracks))
	copy(out, m.tracks)
	return out
}

// Verify that PlaylistManager implements the track list port
var _ ports.TrackList = (*PlaylistManager)(nil)
