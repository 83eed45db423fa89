// Package ports define interfaces for dependency inversion.
// These interfaces allow the core business logic to remain independent of external frameworks.
package ports

import (
	"context"
)

// MediaPlayer is the single audio element the playback controller drives.
// It abstracts the underlying audio library and allows for testing with mocks.
//
// Commands are fire-and-forget from the controller's point of view. Progress is
// reported asynchronously by publishing media notification events on the
// event bus (domain.EventMediaLoadStart, EventMediaDurationChange,
// EventMediaCanPlay, EventMediaTimeUpdate, EventMediaEnded,
// EventMediaPlayRejected). Every notification carries the locator it refers to,
// so listeners can drop notifications for a source that is no longer current.
//
// Implementations must be thread-safe and must never publish while holding
// an internal lock, since handlers may call back into the player.
type MediaPlayer interface {
	// Load replaces the current source with the one named by locator.
	// Playback position resets to zero and the player is left paused.
	//
	// Returns an error if the locator cannot be resolved or decoded.
	Load(ctx context.Context, locator string) error

	// Play starts or resumes playback of the loaded source.
	// Returns an error (and publishes EventMediaPlayRejected) if playback cannot start.
	Play() error

	// Pause pauses playback, preserving the position.
	Pause() error

	// SetPosition moves the playback position, in seconds.
	SetPosition(seconds float64) error

	// SetVolume sets the output level from 0.0 (silent) to 1.0 (full volume).
	SetVolume(level float64) error

	// Close releases the loaded source and any background goroutines.
	Close() error
}

// LocatorResolver turns a locator into a readable audio source.
// Media players use it so they never need to know where bytes live.
type LocatorResolver interface {
	// Resolve opens the source for locator.
	// The caller owns the returned source and must close it.
	Resolve(ctx context.Context, locator string) (*Source, error)
}
