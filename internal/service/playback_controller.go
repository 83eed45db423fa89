// Package service provides business logic for the TuneBox application.
package service

import (
	"context"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/tejashwikalptaru/tunebox/internal/domain"
	"github.com/tejashwikalptaru/tunebox/internal/ports"
)

// ControllerOptions tunes the playback controller.
type ControllerOptions struct {
	// InitialVolume is the stored volume at startup (0.0 to 1.0)
	InitialVolume float64

	// ReconcileRejectedPlay flips isPlaying back to false when the media
	// player refuses to start. Off by default: the play state stays optimistic.
	ReconcileRejectedPlay bool
}

// DefaultControllerOptions returns full volume and optimistic play state.
func DefaultControllerOptions() ControllerOptions {
	return ControllerOptions{InitialVolume: 1.0}
}

// PlaybackController owns the playback session and drives the media player.
//
// Every command reads and writes the session inside one critical section.
// Media calls and event publication happen after the lock is released, so a
// command issued from an event handler never deadlocks.
//
// Media notifications are only accepted for the locator that is currently
// loaded; notifications for a replaced source are dropped.
type PlaybackController struct {
	// Dependencies (injected)
	logger *slog.Logger
	media  ports.MediaPlayer
	tracks ports.TrackList
	bus    ports.FilteringEventBus

	// State
	session           domain.PlaybackSession
	locator           string
	reconcileRejected bool
	randIndex         func(n int) int
	subscriptions     []domain.SubscriptionID
	shutdown          bool

	// Lifetime of in-flight loads
	ctx    context.Context
	cancel context.CancelFunc

	// Concurrency control
	mu sync.Mutex
}

// NewPlaybackController creates a controller and subscribes it to media
// notifications and playlist updates.
func NewPlaybackController(
	logger *slog.Logger,
	media ports.MediaPlayer,
	tracks ports.TrackList,
	bus ports.FilteringEventBus,
	opts ControllerOptions,
) *PlaybackController {
	ctx, cancel := context.WithCancel(context.Background())

	c := &PlaybackController{
		logger:            logger,
		media:             media,
		tracks:            tracks,
		bus:               bus,
		session:           domain.NewPlaybackSession(),
		reconcileRejected: opts.ReconcileRejectedPlay,
		randIndex:         rand.IntN,
		ctx:               ctx,
		cancel:            cancel,
	}
	if opts.InitialVolume >= 0 && opts.InitialVolume <= 1 {
		c.session.Volume = opts.InitialVolume
	}
	if err := media.SetVolume(c.session.Volume); err != nil {
		logger.Warn("failed to apply initial volume", slog.Any("error", err))
	}

	current := c.isCurrentSource
	c.subscriptions = []domain.SubscriptionID{
		bus.SubscribeFiltered(domain.EventMediaLoadStart, current, c.onLoadStart),
		bus.SubscribeFiltered(domain.EventMediaCanPlay, current, c.onCanPlay),
		bus.SubscribeFiltered(domain.EventMediaDurationChange, current, c.onDurationChange),
		bus.SubscribeFiltered(domain.EventMediaTimeUpdate, current, c.onTimeUpdate),
		bus.SubscribeFiltered(domain.EventMediaEnded, current, c.onEnded),
		bus.SubscribeFiltered(domain.EventMediaPlayRejected, current, c.onPlayRejected),
		bus.Subscribe(domain.EventPlaylistUpdated, c.onPlaylistUpdated),
	}

	logger.Debug("playback controller initialized",
		slog.Float64("volume", c.session.Volume),
		slog.Bool("reconcile_rejected_play", c.reconcileRejected))

	// The list may already hold tracks
	c.mu.Lock()
	track, index, ok := c.selectFirstLocked()
	c.mu.Unlock()
	if ok {
		_ = c.loadSelected(track, index)
	}

	return c
}

// TogglePlayPause pauses when playing and plays when paused.
// Play is optimistic: isPlaying turns true before the media player confirms.
func (c *PlaybackController) TogglePlayPause() error {
	c.mu.Lock()
	if c.shutdown || c.session.CurrentTrack == nil {
		c.mu.Unlock()
		return nil
	}
	playing := !c.session.IsPlaying
	c.session.IsPlaying = playing
	c.mu.Unlock()

	c.bus.Publish(domain.NewPlayStateChangedEvent(playing))

	if !playing {
		if err := c.media.Pause(); err != nil {
			c.logger.Warn("pause failed", slog.Any("error", err))
		}
		return nil
	}

	c.requestPlay()
	return nil
}

// Resume re-issues play when the session already intends to play.
// The presentation layer calls it after a track change.
func (c *PlaybackController) Resume() {
	c.mu.Lock()
	resume := !c.shutdown && c.session.CurrentTrack != nil && c.session.IsPlaying
	c.mu.Unlock()

	if resume {
		c.requestPlay()
	}
}

// SelectTrack makes the track at index current and loads it.
// Playback is not started; isPlaying keeps its value.
func (c *PlaybackController) SelectTrack(index int) error {
	c.mu.Lock()
	if c.shutdown {
		c.mu.Unlock()
		return domain.ErrClosed
	}
	if index == c.session.CurrentIndex && c.session.CurrentTrack != nil {
		// Reselecting the current track keeps its position
		c.mu.Unlock()
		return nil
	}
	track, ok := c.selectLocked(index)
	c.mu.Unlock()

	if !ok {
		return errors.Wrapf(domain.ErrInvalidIndex, "index %d", index)
	}
	return c.loadSelected(track, index)
}

// Advance moves to the neighbouring track in the given direction.
//
// Next with repeat-one rewinds and replays the current track. Otherwise
// shuffle picks any index (possibly the current one), and the end of the
// list wraps only with repeat-all. Previous wraps from the first index to the last.
func (c *PlaybackController) Advance(direction domain.Direction) error {
	c.mu.Lock()
	n := c.tracks.Len()
	if c.shutdown || n == 0 {
		c.mu.Unlock()
		return nil
	}

	if direction == domain.DirectionNext && c.session.RepeatMode == domain.RepeatOne {
		if c.session.CurrentTrack == nil {
			c.mu.Unlock()
			return nil
		}
		wasPlaying := c.session.IsPlaying
		c.session.IsPlaying = true
		c.session.PositionSeconds = 0
		duration := c.session.DurationSeconds
		c.mu.Unlock()

		c.bus.Publish(domain.NewPositionChangedEvent(0, duration))
		if !wasPlaying {
			c.bus.Publish(domain.NewPlayStateChangedEvent(true))
		}
		if err := c.media.SetPosition(0); err != nil {
			c.logger.Warn("rewind failed", slog.Any("error", err))
		}
		c.requestPlay()
		return nil
	}

	current := c.session.CurrentIndex
	index := c.neighbourLocked(direction, current, n)
	if index == current {
		c.mu.Unlock()
		c.logger.Debug("advance stays on current track",
			slog.String("direction", direction.String()),
			slog.Int("index", index))
		return nil
	}
	track, ok := c.selectLocked(index)
	c.mu.Unlock()

	if !ok {
		return errors.Wrapf(domain.ErrInvalidIndex, "index %d", index)
	}
	return c.loadSelected(track, index)
}

// neighbourLocked computes the advance target. Must be called with c.mu held.
func (c *PlaybackController) neighbourLocked(direction domain.Direction, current, n int) int {
	if c.session.IsShuffled {
		return c.randIndex(n)
	}
	if direction == domain.DirectionPrevious {
		if current <= 0 {
			return n - 1
		}
		return current - 1
	}
	if current >= n-1 {
		if c.session.RepeatMode == domain.RepeatAll {
			return 0
		}
		return current
	}
	return current + 1
}

// ToggleShuffle flips shuffle. Shuffle applies per advance; the list order is untouched.
func (c *PlaybackController) ToggleShuffle() {
	c.mu.Lock()
	c.session.IsShuffled = !c.session.IsShuffled
	enabled := c.session.IsShuffled
	c.mu.Unlock()

	c.bus.Publish(domain.NewShuffleToggledEvent(enabled))
}

// CycleRepeatMode steps off -> one -> all -> off.
func (c *PlaybackController) CycleRepeatMode() domain.RepeatMode {
	c.mu.Lock()
	c.session.RepeatMode = c.session.RepeatMode.Next()
	mode := c.session.RepeatMode
	c.mu.Unlock()

	c.bus.Publish(domain.NewRepeatModeChangedEvent(mode))
	return mode
}

// Seek moves the playback position. The local position updates immediately.
// Targets are clamped to [0, duration] once the duration is known.
func (c *PlaybackController) Seek(seconds float64) {
	c.mu.Lock()
	if c.shutdown || c.session.CurrentTrack == nil {
		c.mu.Unlock()
		return
	}
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	if c.session.HasDuration() && seconds > c.session.DurationSeconds {
		seconds = c.session.DurationSeconds
	}
	c.session.PositionSeconds = seconds
	duration := c.session.DurationSeconds
	c.mu.Unlock()

	c.bus.Publish(domain.NewPositionChangedEvent(seconds, duration))
	if err := c.media.SetPosition(seconds); err != nil {
		c.logger.Warn("seek failed", slog.Float64("position", seconds), slog.Any("error", err))
	}
}

// SeekFraction seeks to a proportion of the duration, as from a progress bar.
// It does nothing while the duration is unknown.
func (c *PlaybackController) SeekFraction(fraction float64) {
	c.mu.Lock()
	if !c.session.HasDuration() {
		c.mu.Unlock()
		return
	}
	duration := c.session.DurationSeconds
	c.mu.Unlock()

	if math.IsNaN(fraction) || fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	c.Seek(fraction * duration)
}

// SetVolume stores the volume and forwards it. Zero mutes; anything else unmutes.
func (c *PlaybackController) SetVolume(level float64) error {
	if math.IsNaN(level) || level < 0 || level > 1 {
		return domain.NewValidationError("volume", level, domain.ErrInvalidVolume)
	}

	c.mu.Lock()
	c.session.Volume = level
	c.session.IsMuted = level == 0
	muted := c.session.IsMuted
	c.mu.Unlock()

	c.bus.Publish(domain.NewVolumeChangedEvent(level, muted))
	if err := c.media.SetVolume(level); err != nil {
		c.logger.Warn("failed to set volume", slog.Any("error", err))
	}
	return nil
}

// ToggleMute silences or restores output without touching the stored volume.
func (c *PlaybackController) ToggleMute() {
	c.mu.Lock()
	c.session.IsMuted = !c.session.IsMuted
	muted := c.session.IsMuted
	volume := c.session.Volume
	output := c.session.EffectiveVolume()
	c.mu.Unlock()

	c.bus.Publish(domain.NewMuteToggledEvent(muted, volume))
	if err := c.media.SetVolume(output); err != nil {
		c.logger.Warn("failed to apply mute", slog.Any("error", err))
	}
}

// Session returns a snapshot of the playback session.
func (c *PlaybackController) Session() domain.PlaybackSession {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := c.session
	if c.session.CurrentTrack != nil {
		track := *c.session.CurrentTrack
		snapshot.CurrentTrack = &track
	}
	return snapshot
}

// Shutdown detaches from the bus and closes the media player.
func (c *PlaybackController) Shutdown() error {
	c.mu.Lock()
	if c.shutdown {
		c.mu.Unlock()
		return nil
	}
	c.shutdown = true
	subs := c.subscriptions
	c.subscriptions = nil
	c.mu.Unlock()

	for _, id := range subs {
		c.bus.Unsubscribe(id)
	}
	c.cancel()

	c.logger.Debug("playback controller shutting down")
	return c.media.Close()
}

// selectLocked makes index current. Must be called with c.mu held.
func (c *PlaybackController) selectLocked(index int) (domain.Track, bool) {
	track, ok := c.tracks.Track(index)
	if !ok {
		return domain.Track{}, false
	}
	c.session.CurrentIndex = index
	c.session.CurrentTrack = &track
	c.session.PositionSeconds = 0
	c.session.DurationSeconds = math.NaN()
	c.locator = track.Locator
	return track, true
}

// selectFirstLocked selects index 0 when nothing is current. Must be called with c.mu held.
func (c *PlaybackController) selectFirstLocked() (domain.Track, int, bool) {
	if c.shutdown || c.session.CurrentTrack != nil || c.tracks.Len() == 0 {
		return domain.Track{}, -1, false
	}
	track, ok := c.selectLocked(0)
	return track, 0, ok
}

// loadSelected hands the newly current track to the media player and
// announces the change.
func (c *PlaybackController) loadSelected(track domain.Track, index int) error {
	c.logger.Debug("loading track",
		slog.Int("index", index),
		slog.String("id", track.ID),
		slog.String("locator", track.Locator))

	err := c.media.Load(c.ctx, track.Locator)
	if err != nil {
		c.logger.Error("failed to load track",
			slog.String("locator", track.Locator),
			slog.Any("error", err))

		c.mu.Lock()
		clearBuffering := c.locator == track.Locator && c.session.IsBuffering
		if clearBuffering {
			c.session.IsBuffering = false
		}
		c.mu.Unlock()
		if clearBuffering {
			c.bus.Publish(domain.NewBufferingChangedEvent(false))
		}
	}

	c.bus.Publish(domain.NewTrackChangedEvent(track, index))
	c.bus.Publish(domain.NewPositionChangedEvent(0, math.NaN()))

	if err != nil {
		return domain.NewServiceError("PlaybackController", "SelectTrack", "failed to load track", err)
	}
	return nil
}

// requestPlay issues play. Rejections that arrive as notifications are
// handled by onPlayRejected; other failures are handled here.
func (c *PlaybackController) requestPlay() {
	err := c.media.Play()
	if err == nil {
		return
	}
	if errors.Is(err, domain.ErrPlaybackRejected) {
		// Already reported through the play rejected notification
		return
	}
	c.playRejected(err)
}

func (c *PlaybackController) playRejected(err error) {
	c.logger.Error("play request rejected", slog.Any("error", err))
	if !c.reconcileRejected {
		return
	}

	c.mu.Lock()
	changed := c.session.IsPlaying
	c.session.IsPlaying = false
	c.mu.Unlock()

	if changed {
		c.bus.Publish(domain.NewPlayStateChangedEvent(false))
	}
}

// isCurrentSource accepts media notifications for the loaded locator only.
func (c *PlaybackController) isCurrentSource(event domain.Event) bool {
	locator, ok := mediaLocator(event)
	if !ok {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.shutdown && locator == c.locator
}

// mediaLocator extracts the locator carried by a media notification.
func mediaLocator(event domain.Event) (string, bool) {
	switch e := event.(type) {
	case domain.MediaLoadStartEvent:
		return e.Locator, true
	case domain.MediaCanPlayEvent:
		return e.Locator, true
	case domain.MediaDurationChangeEvent:
		return e.Locator, true
	case domain.MediaTimeUpdateEvent:
		return e.Locator, true
	case domain.MediaEndedEvent:
		return e.Locator, true
	case domain.MediaPlayRejectedEvent:
		return e.Locator, true
	default:
		return "", false
	}
}

func (c *PlaybackController) onLoadStart(domain.Event) {
	c.setBuffering(true)
}

func (c *PlaybackController) onCanPlay(domain.Event) {
	c.setBuffering(false)
}

func (c *PlaybackController) setBuffering(buffering bool) {
	c.mu.Lock()
	changed := c.session.IsBuffering != buffering
	c.session.IsBuffering = buffering
	c.mu.Unlock()

	if changed {
		c.bus.Publish(domain.NewBufferingChangedEvent(buffering))
	}
}

func (c *PlaybackController) onDurationChange(event domain.Event) {
	e := event.(domain.MediaDurationChangeEvent)

	c.mu.Lock()
	c.session.DurationSeconds = e.DurationSeconds
	c.mu.Unlock()

	c.bus.Publish(domain.NewDurationChangedEvent(e.DurationSeconds))
}

func (c *PlaybackController) onTimeUpdate(event domain.Event) {
	e := event.(domain.MediaTimeUpdateEvent)

	c.mu.Lock()
	c.session.PositionSeconds = e.PositionSeconds
	duration := c.session.DurationSeconds
	c.mu.Unlock()

	c.bus.Publish(domain.NewPositionChangedEvent(e.PositionSeconds, duration))
}

func (c *PlaybackController) onEnded(domain.Event) {
	if err := c.Advance(domain.DirectionNext); err != nil {
		c.logger.Error("auto-advance failed", slog.Any("error", err))
	}
}

func (c *PlaybackController) onPlayRejected(event domain.Event) {
	e := event.(domain.MediaPlayRejectedEvent)
	c.playRejected(e.Err)
}

// onPlaylistUpdated re-finds the current track by id, since prepended
// manifest tracks move it. When nothing is current it selects the first
// appended track, or the head of the list after a manifest load. Positions
// come from the live list rather than the event, which may describe an older
// list if two changes raced.
func (c *PlaybackController) onPlaylistUpdated(event domain.Event) {
	e := event.(domain.PlaylistUpdatedEvent)

	c.mu.Lock()
	if c.shutdown {
		c.mu.Unlock()
		return
	}
	if c.session.CurrentTrack != nil {
		if index := c.tracks.IndexOf(c.session.CurrentTrack.ID); index >= 0 {
			c.session.CurrentIndex = index
		}
		c.mu.Unlock()
		return
	}
	index := 0
	if e.FirstAddedID != "" {
		index = c.tracks.IndexOf(e.FirstAddedID)
	}
	track, ok := c.selectLocked(index)
	c.mu.Unlock()

	if ok {
		_ = c.loadSelected(track, index)
	}
}

// Verify that PlaybackController implements the expected interface patterns
var _ interface {
	TogglePlayPause() error
	Resume()
	SelectTrack(int) error
	Advance(domain.Direction) error
	ToggleShuffle()
	CycleRepeatMode() domain.RepeatMode
	Seek(float64)
	SeekFraction(float64)
	SetVolume(float64) error
	ToggleMute()
	Session() domain.PlaybackSession
	Shutdown() error
} = (*PlaybackController)(nil)
