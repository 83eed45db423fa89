// Package domain defines events for the event-driven architecture.
// Events carry media notifications into the controller and state changes out to the UI.
package domain

import (
	"time"
)

// Event is the base interface for all events in the system.
// All events must implement this interface to be published via the event bus.
type Event interface {
	// Type returns the event type identifier
	Type() EventType

	// Timestamp returns when the event occurred
	Timestamp() time.Time
}

// EventType is a string identifier for different event types.
type EventType string

// Event type constants define all possible events in the system.
const (
	// Media notifications (published by the media player)
	EventMediaLoadStart      EventType = "media.load_start"
	EventMediaDurationChange EventType = "media.duration_change"
	EventMediaCanPlay        EventType = "media.can_play"
	EventMediaTimeUpdate     EventType = "media.time_update"
	EventMediaEnded          EventType = "media.ended"
	EventMediaPlayRejected   EventType = "media.play_rejected"

	// Playback events
	EventTrackChanged     EventType = "track.changed"
	EventPlayStateChanged EventType = "playback.state_changed"
	EventPositionChanged  EventType = "playback.position"
	EventDurationChanged  EventType = "playback.duration"
	EventBufferingChanged EventType = "playback.buffering"

	// Volume events
	EventVolumeChanged EventType = "volume.changed"
	EventMuteToggled   EventType = "mute.toggled"

	// Playback mode events
	EventShuffleToggled    EventType = "shuffle.toggled"
	EventRepeatModeChanged EventType = "repeat.changed"

	// Playlist events
	EventPlaylistUpdated EventType = "playlist.updated"
	EventTracksAdded     EventType = "playlist.tracks_added"
	EventManifestLoaded  EventType = "manifest.loaded"
	EventManifestFailed  EventType = "manifest.failed"

	// Library scanning events
	EventScanStarted   EventType = "scan.started"
	EventScanCompleted EventType = "scan.completed"
	EventScanCancelled EventType = "scan.cancelled"
)

// EventHandler is a function that handles events.
type EventHandler func(event Event)

// SubscriptionID uniquely identifies an event subscription.
type SubscriptionID string

// baseEvent provides common event functionality.
// All concrete events should embed this struct.
type baseEvent struct {
	timestamp time.Time
}

// Timestamp returns when the event occurred.
func (e baseEvent) Timestamp() time.Time {
	return e.timestamp
}

// newBaseEvent creates a new base event with the current timestamp.
func newBaseEvent() baseEvent {
	return baseEvent{timestamp: time.Now()}
}

// MediaLoadStartEvent is published when the media player starts fetching a source.
type MediaLoadStartEvent struct {
	baseEvent
	Locator string
}

// Type returns the event type.
func (e MediaLoadStartEvent) Type() EventType {
	return EventMediaLoadStart
}

// NewMediaLoadStartEvent creates a new MediaLoadStartEvent.
func NewMediaLoadStartEvent(locator string) MediaLoadStartEvent {
	return MediaLoadStartEvent{
		baseEvent: newBaseEvent(),
		Locator:   locator,
	}
}

// MediaDurationChangeEvent is published when the media player learns the source duration.
type MediaDurationChangeEvent struct {
	baseEvent
	Locator         string
	DurationSeconds float64
}

// Type returns the event type.
func (e MediaDurationChangeEvent) Type() EventType {
	return EventMediaDurationChange
}

// NewMediaDurationChangeEvent creates a new MediaDurationChangeEvent.
func NewMediaDurationChangeEvent(locator string, seconds float64) MediaDurationChangeEvent {
	return MediaDurationChangeEvent{
		baseEvent:       newBaseEvent(),
		Locator:         locator,
		DurationSeconds: seconds,
	}
}

// MediaCanPlayEvent is published when enough data is available to start playback.
type MediaCanPlayEvent struct {
	baseEvent
	Locator string
}

// Type returns the event type.
func (e MediaCanPlayEvent) Type() EventType {
	return EventMediaCanPlay
}

// NewMediaCanPlayEvent creates a new MediaCanPlayEvent.
func NewMediaCanPlayEvent(locator string) MediaCanPlayEvent {
	return MediaCanPlayEvent{
		baseEvent: newBaseEvent(),
		Locator:   locator,
	}
}

// MediaTimeUpdateEvent is published periodically while the source plays.
type MediaTimeUpdateEvent struct {
	baseEvent
	Locator         string
	PositionSeconds float64
}

// Type returns the event type.
func (e MediaTimeUpdateEvent) Type() EventType {
	return EventMediaTimeUpdate
}

// NewMediaTimeUpdateEvent creates a new MediaTimeUpdateEvent.
func NewMediaTimeUpdateEvent(locator string, seconds float64) MediaTimeUpdateEvent {
	return MediaTimeUpdateEvent{
		baseEvent:       newBaseEvent(),
		Locator:         locator,
		PositionSeconds: seconds,
	}
}

// MediaEndedEvent is published when the source plays to its end.
type MediaEndedEvent struct {
	baseEvent
	Locator string
}

// Type returns the event type.
func (e MediaEndedEvent) Type() EventType {
	return EventMediaEnded
}

// NewMediaEndedEvent creates a new MediaEndedEvent.
func NewMediaEndedEvent(locator string) MediaEndedEvent {
	return MediaEndedEvent{
		baseEvent: newBaseEvent(),
		Locator:   locator,
	}
}

// MediaPlayRejectedEvent is published when a play request could not be honored.
type MediaPlayRejectedEvent struct {
	baseEvent
	Locator string
	Err     error
}

// Type returns the event type.
func (e MediaPlayRejectedEvent) Type() EventType {
	return EventMediaPlayRejected
}

// NewMediaPlayRejectedEvent creates a new MediaPlayRejectedEvent.
func NewMediaPlayRejectedEvent(locator string, err error) MediaPlayRejectedEvent {
	return MediaPlayRejectedEvent{
		baseEvent: newBaseEvent(),
		Locator:   locator,
		Err:       err,
	}
}

// TrackChangedEvent is published when the current track changes.
type TrackChangedEvent struct {
	baseEvent
	Track Track
	Index int
}

// Type returns the event type.
func (e TrackChangedEvent) Type() EventType {
	return EventTrackChanged
}

// NewTrackChangedEvent creates a new TrackChangedEvent.
func NewTrackChangedEvent(track Track, index int) TrackChangedEvent {
	return TrackChangedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
		Index:     index,
	}
}

// PlayStateChangedEvent is published when the intended play state flips.
type PlayStateChangedEvent struct {
	baseEvent
	Playing bool
}

// Type returns the event type.
func (e PlayStateChangedEvent) Type() EventType {
	return EventPlayStateChanged
}

// NewPlayStateChangedEvent creates a new PlayStateChangedEvent.
func NewPlayStateChangedEvent(playing bool) PlayStateChangedEvent {
	return PlayStateChangedEvent{
		baseEvent: newBaseEvent(),
		Playing:   playing,
	}
}

// PositionChangedEvent is published when the playback position moves.
type PositionChangedEvent struct {
	baseEvent
	PositionSeconds float64
	DurationSeconds float64
}

// Type returns the event type.
func (e PositionChangedEvent) Type() EventType {
	return EventPositionChanged
}

// NewPositionChangedEvent creates a new PositionChangedEvent.
func NewPositionChangedEvent(position, duration float64) PositionChangedEvent {
	return PositionChangedEvent{
		baseEvent:       newBaseEvent(),
		PositionSeconds: position,
		DurationSeconds: duration,
	}
}

// DurationChangedEvent is published when the duration of the current track becomes known.
type DurationChangedEvent struct {
	baseEvent
	DurationSeconds float64
}

// Type returns the event type.
func (e DurationChangedEvent) Type() EventType {
	return EventDurationChanged
}

// NewDurationChangedEvent creates a new DurationChangedEvent.
func NewDurationChangedEvent(duration float64) DurationChangedEvent {
	return DurationChangedEvent{
		baseEvent:       newBaseEvent(),
		DurationSeconds: duration,
	}
}

// BufferingChangedEvent is published when the buffering overlay turns on or off.
type BufferingChangedEvent struct {
	baseEvent
	Buffering bool
}

// Type returns the event type.
func (e BufferingChangedEvent) Type() EventType {
	return EventBufferingChanged
}

// NewBufferingChangedEvent creates a new BufferingChangedEvent.
func NewBufferingChangedEvent(buffering bool) BufferingChangedEvent {
	return BufferingChangedEvent{
		baseEvent: newBaseEvent(),
		Buffering: buffering,
	}
}

// VolumeChangedEvent is published when the volume changes.
type VolumeChangedEvent struct {
	baseEvent
	Volume float64 // 0.0 to 1.0
	Muted  bool
}

// Type returns the event type.
func (e VolumeChangedEvent) Type() EventType {
	return EventVolumeChanged
}

// NewVolumeChangedEvent creates a new VolumeChangedEvent.
func NewVolumeChangedEvent(volume float64, muted bool) VolumeChangedEvent {
	return VolumeChangedEvent{
		baseEvent: newBaseEvent(),
		Volume:    volume,
		Muted:     muted,
	}
}

// MuteToggledEvent is published when mute is toggled.
type MuteToggledEvent struct {
	baseEvent
	Muted  bool
	Volume float64 // stored volume, untouched by muting
}

// Type returns the event type.
func (e MuteToggledEvent) Type() EventType {
	return EventMuteToggled
}

// NewMuteToggledEvent creates a new MuteToggledEvent.
func NewMuteToggledEvent(muted bool, volume float64) MuteToggledEvent {
	return MuteToggledEvent{
		baseEvent: newBaseEvent(),
		Muted:     muted,
		Volume:    volume,
	}
}

// ShuffleToggledEvent is published when shuffle is toggled.
type ShuffleToggledEvent struct {
	baseEvent
	Enabled bool
}

// Type returns the event type.
func (e ShuffleToggledEvent) Type() EventType {
	return EventShuffleToggled
}

// NewShuffleToggledEvent creates a new ShuffleToggledEvent.
func NewShuffleToggledEvent(enabled bool) ShuffleToggledEvent {
	return ShuffleToggledEvent{
		baseEvent: newBaseEvent(),
		Enabled:   enabled,
	}
}

// RepeatModeChangedEvent is published when the repeat mode cycles.
type RepeatModeChangedEvent struct {
	baseEvent
	Mode RepeatMode
}

// Type returns the event type.
func (e RepeatModeChangedEvent) Type() EventType {
	return EventRepeatModeChanged
}

// NewRepeatModeChangedEvent creates a new RepeatModeChangedEvent.
func NewRepeatModeChangedEvent(mode RepeatMode) RepeatModeChangedEvent {
	return RepeatModeChangedEvent{
		baseEvent: newBaseEvent(),
		Mode:      mode,
	}
}

// PlaylistUpdatedEvent is published when the playlist changes.
//
// Events from concurrent changes may arrive in either order, so Playlist and
// Shift describe the list as it was when the event was built. Consumers that
// track a position should look it up again by track id.
type PlaylistUpdatedEvent struct {
	baseEvent
	Playlist []Track

	// FirstAddedID is the id of the first appended track ("" if none were appended)
	FirstAddedID string

	// Shift is how far existing indices moved (non-zero when manifest tracks are prepended)
	Shift int
}

// Type returns the event type.
func (e PlaylistUpdatedEvent) Type() EventType {
	return EventPlaylistUpdated
}

// NewPlaylistUpdatedEvent creates a new PlaylistUpdatedEvent.
func NewPlaylistUpdatedEvent(playlist []Track, firstAddedID string, shift int) PlaylistUpdatedEvent {
	return PlaylistUpdatedEvent{
		baseEvent:    newBaseEvent(),
		Playlist:     playlist,
		FirstAddedID: firstAddedID,
		Shift:        shift,
	}
}

// TracksAddedEvent is published when user-selected files are appended.
type TracksAddedEvent struct {
	baseEvent
	Tracks []Track
	Index  int // index of the first appended track
}

// Type returns the event type.
func (e TracksAddedEvent) Type() EventType {
	return EventTracksAdded
}

// NewTracksAddedEvent creates a new TracksAddedEvent.
func NewTracksAddedEvent(tracks []Track, index int) TracksAddedEvent {
	return TracksAddedEvent{
		baseEvent: newBaseEvent(),
		Tracks:    tracks,
		Index:     index,
	}
}

// ManifestLoadedEvent is published when the bundled manifest was read.
type ManifestLoadedEvent struct {
	baseEvent
	Count int
}

// Type returns the event type.
func (e ManifestLoadedEvent) Type() EventType {
	return EventManifestLoaded
}

// NewManifestLoadedEvent creates a new ManifestLoadedEvent.
func NewManifestLoadedEvent(count int) ManifestLoadedEvent {
	return ManifestLoadedEvent{
		baseEvent: newBaseEvent(),
		Count:     count,
	}
}

// ManifestFailedEvent is published when the manifest could not be fetched or parsed.
type ManifestFailedEvent struct {
	baseEvent
	Err error
}

// Type returns the event type.
func (e ManifestFailedEvent) Type() EventType {
	return EventManifestFailed
}

// NewManifestFailedEvent creates a new ManifestFailedEvent.
func NewManifestFailedEvent(err error) ManifestFailedEvent {
	return ManifestFailedEvent{
		baseEvent: newBaseEvent(),
		Err:       err,
	}
}

// ScanStartedEvent is published when a folder scan starts.
type ScanStartedEvent struct {
	baseEvent
	Path string
}

// Type returns the event type.
func (e ScanStartedEvent) Type() EventType {
	return EventScanStarted
}

// NewScanStartedEvent creates a new ScanStartedEvent.
func NewScanStartedEvent(path string) ScanStartedEvent {
	return ScanStartedEvent{
		baseEvent: newBaseEvent(),
		Path:      path,
	}
}

// ScanCompletedEvent is published when a folder scan completes.
type ScanCompletedEvent struct {
	baseEvent
	Path       string
	FilesFound int
}

// Type returns the event type.
func (e ScanCompletedEvent) Type() EventType {
	return EventScanCompleted
}

// NewScanCompletedEvent creates a new ScanCompletedEvent.
func NewScanCompletedEvent(path string, found int) ScanCompletedEvent {
	return ScanCompletedEvent{
		baseEvent:  newBaseEvent(),
		Path:       path,
		FilesFound: found,
	}
}

// ScanCancelledEvent is published when a folder scan is canceled.
type ScanCancelledEvent struct {
	baseEvent
	Reason string
}

// Type returns the event type.
func (e ScanCancelledEvent) Type() EventType {
	return EventScanCancelled
}

// NewScanCancelledEvent creates a new ScanCancelledEvent.
func NewScanCancelledEvent(reason string) ScanCancelledEvent {
	return ScanCancelledEvent{
		baseEvent: newBaseEvent(),
		Reason:    reason,
	}
}
