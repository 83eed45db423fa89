// Package fyne provides Fyne UI adapter implementations.
// This package implements the UI layer using the Fyne toolkit.
package fyne

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/tejashwikalptaru/tunebox/internal/domain"
	"github.com/tejashwikalptaru/tunebox/internal/ports"
	"github.com/tejashwikalptaru/tunebox/internal/service"
)

// UIView defines the interface for UI updates.
// The actual UI implementation (MainWindow) must implement this interface.
// Methods may be called from any goroutine.
type UIView interface {
	// Playback state updates
	SetPlayState(playing bool)
	SetMuteState(muted bool)
	SetShuffleState(enabled bool)
	SetRepeatMode(mode domain.RepeatMode)
	SetBuffering(buffering bool)
	SetVolume(volume float64)

	// Track information updates
	SetTrackInfo(title, artist, album string)
	SetAlbumArt(imageData []byte)
	ClearAlbumArt()

	// Progress updates; a NaN duration means unknown
	SetCurrentTime(seconds float64)
	SetTotalTime(seconds float64)
	SetProgress(position, duration float64)

	// Playlist updates
	UpdatePlaylistSelection(index int)

	// Playlist window management
	ShowPlaylistWindow()
	ClosePlaylistWindow()
	IsPlaylistWindowOpen() bool

	// Notifications
	ShowNotification(title, message string)
}

// Presenter implements the Presenter pattern (MVP architecture).
// It coordinates between services and the UI, handling all event-driven updates.
//
// Responsibilities:
// - Subscribe to events from the event bus
// - Map domain events to UI updates
// - Translate UI commands to service method calls
// - Re-issue play after a track change when the session intends to play
//
// Thread-safety: All operations are thread-safe via sync.RWMutex.
type Presenter struct {
	// Dependencies
	logger *slog.Logger

	// Services (injected)
	controller *service.PlaybackController
	playlist   *service.PlaylistManager
	library    *service.LibraryService
	resolver   ports.LocatorResolver

	// Event bus for subscriptions (exported for PlaylistWindow access)
	EventBus ports.EventBus

	// UI view
	view UIView

	// Presentation state
	artworkSeq    uint64
	subscriptions []domain.SubscriptionID

	// Background artwork loads
	ctx     context.Context
	cancel  context.CancelFunc
	artwork sync.WaitGroup

	// Concurrency control
	mu           sync.RWMutex
	shutdownOnce sync.Once
}

// NewPresenter creates a new presenter.
// resolver may be nil, in which case no artwork is shown.
func NewPresenter(
	logger *slog.Logger,
	controller *service.PlaybackController,
	playlist *service.PlaylistManager,
	library *service.LibraryService,
	resolver ports.LocatorResolver,
	eventBus ports.EventBus,
	view UIView,
) *Presenter {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Presenter{
		logger:     logger,
		controller: controller,
		playlist:   playlist,
		library:    library,
		resolver:   resolver,
		EventBus:   eventBus,
		view:       view,
		ctx:        ctx,
		cancel:     cancel,
	}

	// Subscribe to events
	p.subscribeToEvents()

	// Sync UI with current state
	p.syncInitialState()

	return p
}

// subscribeToEvents subscribes to all relevant events from the event bus.
func (p *Presenter) subscribeToEvents() {
	subscriptions := map[domain.EventType]domain.EventHandler{
		// Playback events
		domain.EventTrackChanged:     p.onTrackChanged,
		domain.EventPlayStateChanged: p.onPlayStateChanged,
		domain.EventPositionChanged:  p.onPositionChanged,
		domain.EventDurationChanged:  p.onDurationChanged,
		domain.EventBufferingChanged: p.onBufferingChanged,

		// Volume and mode events
		domain.EventVolumeChanged:     p.onVolumeChanged,
		domain.EventMuteToggled:       p.onMuteToggled,
		domain.EventShuffleToggled:    p.onShuffleToggled,
		domain.EventRepeatModeChanged: p.onRepeatModeChanged,

		// Playlist events
		domain.EventTracksAdded:     p.onTracksAdded,
		domain.EventPlaylistUpdated: p.onPlaylistUpdated,

		// Scan events
		domain.EventScanStarted:   p.onScanStarted,
		domain.EventScanCompleted: p.onScanCompleted,
		domain.EventScanCancelled: p.onScanCancelled,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for eventType, handler := range subscriptions {
		p.subscriptions = append(p.subscriptions, p.EventBus.Subscribe(eventType, handler))
	}
}

// syncInitialState synchronizes the UI with the current application state.
func (p *Presenter) syncInitialState() {
	session := p.controller.Session()

	p.view.SetVolume(session.Volume * 100.0) // Convert from 0.0-1.0 to 0-100
	p.view.SetMuteState(session.IsMuted)
	p.view.SetShuffleState(session.IsShuffled)
	p.view.SetRepeatMode(session.RepeatMode)
	p.view.SetPlayState(session.IsPlaying)
	p.view.SetBuffering(session.IsBuffering)

	if session.CurrentTrack == nil {
		p.view.SetTrackInfo("", "", "")
		p.view.ClearAlbumArt()
		p.view.SetTotalTime(math.NaN())
		return
	}

	track := *session.CurrentTrack
	p.view.SetTrackInfo(track.Title, track.Artist, track.Album)
	p.view.SetTotalTime(session.DurationSeconds)
	p.view.SetCurrentTime(session.PositionSeconds)
	p.view.SetProgress(session.PositionSeconds, session.DurationSeconds)
	p.view.UpdatePlaylistSelection(session.CurrentIndex)
	p.refreshArtwork(track)
}

// Event handlers

func (p *Presenter) onTrackChanged(event domain.Event) {
	e, ok := event.(domain.TrackChangedEvent)
	if !ok {
		return
	}

	track := e.Track
	p.view.SetTrackInfo(track.Title, track.Artist, track.Album)
	p.view.SetTotalTime(math.NaN())
	p.view.SetCurrentTime(0)
	p.view.UpdatePlaylistSelection(e.Index)
	p.refreshArtwork(track)

	// Keep playing across track changes
	p.controller.Resume()
}

func (p *Presenter) onPlayStateChanged(event domain.Event) {
	e, ok := event.(domain.PlayStateChangedEvent)
	if !ok {
		return
	}

	p.view.SetPlayState(e.Playing)
}

func (p *Presenter) onPositionChanged(event domain.Event) {
	e, ok := event.(domain.PositionChangedEvent)
	if !ok {
		return
	}

	p.view.SetCurrentTime(e.PositionSeconds)
	p.view.SetProgress(e.PositionSeconds, e.DurationSeconds)
}

func (p *Presenter) onDurationChanged(event domain.Event) {
	e, ok := event.(domain.DurationChangedEvent)
	if !ok {
		return
	}

	p.view.SetTotalTime(e.DurationSeconds)
}

func (p *Presenter) onBufferingChanged(event domain.Event) {
	e, ok := event.(domain.BufferingChangedEvent)
	if !ok {
		return
	}

	p.view.SetBuffering(e.Buffering)
}

func (p *Presenter) onVolumeChanged(event domain.Event) {
	e, ok := event.(domain.VolumeChangedEvent)
	if !ok {
		return
	}

	p.view.SetVolume(e.Volume * 100.0)
	p.view.SetMuteState(e.Muted)
}

func (p *Presenter) onMuteToggled(event domain.Event) {
	e, ok := event.(domain.MuteToggledEvent)
	if !ok {
		return
	}

	p.view.SetMuteState(e.Muted)
}

func (p *Presenter) onShuffleToggled(event domain.Event) {
	e, ok := event.(domain.ShuffleToggledEvent)
	if !ok {
		return
	}

	p.view.SetShuffleState(e.Enabled)
}

func (p *Presenter) onRepeatModeChanged(event domain.Event) {
	e, ok := event.(domain.RepeatModeChangedEvent)
	if !ok {
		return
	}

	p.view.SetRepeatMode(e.Mode)
}

func (p *Presenter) onTracksAdded(event domain.Event) {
	e, ok := event.(domain.TracksAddedEvent)
	if !ok {
		return
	}

	p.logger.Debug("tracks added to playlist", slog.Int("count", len(e.Tracks)), slog.Int("index", e.Index))
}

// onPlaylistUpdated moves the selection when the current track's position
// changes. The controller subscribed first, so its session is already current.
func (p *Presenter) onPlaylistUpdated(domain.Event) {
	p.view.UpdatePlaylistSelection(p.controller.Session().CurrentIndex)
}

func (p *Presenter) onScanStarted(event domain.Event) {
	e, ok := event.(domain.ScanStartedEvent)
	if !ok {
		return
	}

	p.view.ShowNotification("Scan Started", fmt.Sprintf("Scanning: %s", e.Path))
}

func (p *Presenter) onScanCompleted(event domain.Event) {
	e, ok := event.(domain.ScanCompletedEvent)
	if !ok {
		return
	}

	p.view.ShowNotification("Scan Complete", fmt.Sprintf("Found %d files", e.FilesFound))
}

func (p *Presenter) onScanCancelled(event domain.Event) {
	p.view.ShowNotification("Scan Cancelled", "Scan was cancelled")
}

// refreshArtwork clears the artwork and loads the new one in the background.
// Results for a track that is no longer current are discarded.
func (p *Presenter) refreshArtwork(track domain.Track) {
	p.view.ClearAlbumArt()
	if p.resolver == nil {
		return
	}

	p.mu.Lock()
	if p.ctx.Err() != nil {
		p.mu.Unlock()
		return
	}
	p.artworkSeq++
	seq := p.artworkSeq
	p.artwork.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.artwork.Done()

		data, err := loadArtwork(p.ctx, p.resolver, track)
		if err != nil {
			if !errors.Is(err, errNoArtwork) && !errors.Is(err, context.Canceled) {
				p.logger.Debug("artwork unavailable", slog.String("track", track.ID), slog.Any("error", err))
			}
			return
		}

		p.mu.RLock()
		current := seq == p.artworkSeq && p.ctx.Err() == nil
		p.mu.RUnlock()
		if current {
			p.view.SetAlbumArt(data)
		}
	}()
}

// UI Command handlers (called by UI)

// OnPlayClicked handles the play button click.
func (p *Presenter) OnPlayClicked() {
	if err := p.controller.TogglePlayPause(); err != nil {
		p.logger.Error("play/pause failed", slog.Any("error", err))
	}
}

// OnNextClicked handles the next button click.
func (p *Presenter) OnNextClicked() {
	if err := p.controller.Advance(domain.DirectionNext); err != nil {
		p.logger.Error("next track failed", slog.Any("error", err))
		p.view.ShowNotification("Playlist Error",
			fmt.Sprintf("Failed to play next track: %v", err))
	}
}

// OnPreviousClicked handles the previous button click.
func (p *Presenter) OnPreviousClicked() {
	if err := p.controller.Advance(domain.DirectionPrevious); err != nil {
		p.logger.Error("previous track failed", slog.Any("error", err))
		p.view.ShowNotification("Playlist Error",
			fmt.Sprintf("Failed to play previous track: %v", err))
	}
}

// OnShuffleClicked handles the shuffle button click.
func (p *Presenter) OnShuffleClicked() {
	p.controller.ToggleShuffle()
}

// OnRepeatClicked handles the repeat button click.
func (p *Presenter) OnRepeatClicked() {
	p.controller.CycleRepeatMode()
}

// OnVolumeChanged handles volume slider changes.
func (p *Presenter) OnVolumeChanged(volume float64) {
	// Normalize from 0-100 to 0.0-1.0
	normalized := volume / 100.0
	if err := p.controller.SetVolume(normalized); err != nil {
		p.logger.Error("volume change failed", slog.Any("error", err))
	}
}

// OnMuteClicked handles the mute button click.
func (p *Presenter) OnMuteClicked() {
	p.controller.ToggleMute()
}

// OnSeekFraction handles seeks from the progress slider, as a share of the track.
func (p *Presenter) OnSeekFraction(fraction float64) {
	p.controller.SeekFraction(fraction)
}

// OnFilesOpened handles file open requests (dialog, drag and drop, command line).
func (p *Presenter) OnFilesOpened(paths []string) error {
	tracks, err := p.playlist.SelectFiles(p.ctx, paths)
	if err != nil {
		return err
	}
	p.logger.Info("files opened", slog.Int("requested", len(paths)), slog.Int("added", len(tracks)))
	return nil
}

// OnFolderOpened handles folder open requests.
func (p *Presenter) OnFolderOpened(folderPath string) error {
	tracks, err := p.playlist.SelectFolder(p.ctx, folderPath)
	if err != nil {
		if errors.Is(err, domain.ErrScanCancelled) {
			return nil
		}
		return err
	}
	p.logger.Info("folder opened", slog.String("path", folderPath), slog.Int("added", len(tracks)))
	return nil
}

// OnCancelScan cancels a running folder scan.
func (p *Presenter) OnCancelScan() {
	if p.library == nil {
		return
	}
	if err := p.library.CancelScan(); err != nil {
		p.logger.Debug("cancel scan ignored", slog.Any("error", err))
	}
}

// OnPlaylistMenuClicked handles "View Playlist" menu action.
func (p *Presenter) OnPlaylistMenuClicked() {
	p.view.ShowPlaylistWindow()
}

// OnPlaylistTrackSelected handles track selection from playlist window by index.
func (p *Presenter) OnPlaylistTrackSelected(index int) error {
	return p.controller.SelectTrack(index)
}

// GetQueue returns the current track list.
func (p *Presenter) GetQueue() []domain.Track {
	return p.playlist.Tracks()
}

// CurrentIndex returns the index of the current track, or -1.
// It reads the controller's session, so it follows playlist reorders.
func (p *Presenter) CurrentIndex() int {
	return p.controller.Session().CurrentIndex
}

// CurrentTrack returns a copy of the current track, if any.
func (p *Presenter) CurrentTrack() (domain.Track, bool) {
	session := p.controller.Session()
	if session.CurrentTrack == nil {
		return domain.Track{}, false
	}
	return *session.CurrentTrack, true
}

// Shutdown cleans up resources.
// It's safe to call multiple times (idempotent).
func (p *Presenter) Shutdown() {
	p.shutdownOnce.Do(func() {
		p.mu.Lock()
		subs := p.subscriptions
		p.subscriptions = nil
		p.cancel()
		p.mu.Unlock()

		for _, id := range subs {
			p.EventBus.Unsubscribe(id)
		}

		// Wait for in-flight artwork loads
		p.artwork.Wait()
	})
}
