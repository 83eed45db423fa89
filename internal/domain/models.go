// Package domain contains core business models and logic with no external dependencies.
// This package defines the fundamental entities of the TuneBox music player.
package domain

import (
	"math"
)

// Placeholder metadata used for user-added files whose tags are never read.
const (
	UnknownArtist        = "Unknown"
	UnknownGenre         = "Unknown"
	LocalAlbum           = "Local Music"
	UnknownDurationLabel = "--:--"
)

// TrackSource identifies where a track came from.
type TrackSource string

const (
	// SourceManifest marks a track bundled with the application manifest.
	SourceManifest TrackSource = "manifest"

	// SourceLocal marks a track the user picked from the local device.
	SourceLocal TrackSource = "local"
)

// Track represents one playable audio item.
// This is the core domain model for entries in the playlist.
type Track struct {
	// ID is unique within the current session.
	// Fixed for manifest entries, a time-ordered UUID for user-added files.
	ID string `json:"id"`

	// Title is the display title
	Title string `json:"title"`

	// Artist is the performing artist name
	Artist string `json:"artist"`

	// Album is the album name
	Album string `json:"album"`

	// Genre is the music genre
	Genre string `json:"genre"`

	// Year is the release year
	Year int `json:"year"`

	// DurationLabel is a nominal display duration ("3:45").
	// The authoritative duration comes from the media player once loaded.
	DurationLabel string `json:"duration"`

	// Locator is an opaque reference the media player resolves to audio bytes:
	// a manifest-relative path or a session-scoped "blob:" reference.
	Locator string `json:"src"`

	// Cover is an optional artwork reference from the manifest
	Cover string `json:"cover,omitempty"`

	// Source tells whether the track is bundled or user-added
	Source TrackSource `json:"-"`
}

// RepeatMode controls what happens when advancing past the current track.
type RepeatMode int

const (
	// RepeatOff stops advancing at the end of the list
	RepeatOff RepeatMode = iota

	// RepeatOne replays the current track
	RepeatOne

	// RepeatAll wraps from the last track to the first
	RepeatAll
)

// String returns a human-readable representation of the repeat mode.
func (m RepeatMode) String() string {
	switch m {
	case RepeatOff:
		return "off"
	case RepeatOne:
		return "one"
	case RepeatAll:
		return "all"
	default:
		return "unknown"
	}
}

// Next returns the following mode in the cycle off -> one -> all -> off.
func (m RepeatMode) Next() RepeatMode {
	switch m {
	case RepeatOff:
		return RepeatOne
	case RepeatOne:
		return RepeatAll
	default:
		return RepeatOff
	}
}

// Direction selects the neighbour track for an advance.
type Direction int

const (
	// DirectionNext moves forward in the list
	DirectionNext Direction = iota

	// DirectionPrevious moves backward in the list
	DirectionPrevious
)

// String returns a human-readable representation of the direction.
func (d Direction) String() string {
	if d == DirectionPrevious {
		return "previous"
	}
	return "next"
}

// PlayerState is the coarse state of the playback controller.
// Buffering is tracked separately as an overlay flag.
type PlayerState int

const (
	// StateNoTrack means the track list is empty or nothing is selected
	StateNoTrack PlayerState = iota

	// StatePaused means a track is current but not playing
	StatePaused

	// StatePlaying means the current track is playing
	StatePlaying
)

// String returns a human-readable representation of the player state.
func (s PlayerState) String() string {
	switch s {
	case StateNoTrack:
		return "no_track"
	case StatePaused:
		return "paused"
	case StatePlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// PlaybackSession is the mutable record of "what is happening right now".
// The controller owns the live value; callers receive copies.
type PlaybackSession struct {
	// CurrentIndex is the index of the active track (-1 while undefined)
	CurrentIndex int

	// CurrentTrack is the active track (nil while undefined)
	CurrentTrack *Track

	// IsPlaying reflects the user's intended play state
	IsPlaying bool

	// PositionSeconds is the last known playback position
	PositionSeconds float64

	// DurationSeconds is NaN until the media player reports it
	DurationSeconds float64

	// Volume is the stored volume level (0.0 to 1.0)
	Volume float64

	// IsMuted suppresses Volume without changing it
	IsMuted bool

	// IsShuffled picks a random index on every advance
	IsShuffled bool

	// RepeatMode is one of off, one, all
	RepeatMode RepeatMode

	// IsBuffering is true between load-start and can-play notifications
	IsBuffering bool
}

// NewPlaybackSession returns the initial session: no track, full volume.
func NewPlaybackSession() PlaybackSession {
	return PlaybackSession{
		CurrentIndex:    -1,
		DurationSeconds: math.NaN(),
		Volume:          1.0,
		RepeatMode:      RepeatOff,
	}
}

// State derives the coarse player state from the session.
func (s PlaybackSession) State() PlayerState {
	if s.CurrentIndex < 0 || s.CurrentTrack == nil {
		return StateNoTrack
	}
	if s.IsPlaying {
		return StatePlaying
	}
	return StatePaused
}

// HasDuration reports whether the media player has reported a usable duration.
func (s PlaybackSession) HasDuration() bool {
	return !math.IsNaN(s.DurationSeconds) && !math.IsInf(s.DurationSeconds, 0) && s.DurationSeconds > 0
}

// Progress returns the played fraction in [0, 1], or 0 when the duration is unknown.
func (s PlaybackSession) Progress() float64 {
	if !s.HasDuration() {
		return 0
	}
	p := s.PositionSeconds / s.DurationSeconds
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// EffectiveVolume is the level actually sent to the media player.
func (s PlaybackSession) EffectiveVolume() float64 {
	if s.IsMuted {
		return 0
	}
	return s.Volume
}
