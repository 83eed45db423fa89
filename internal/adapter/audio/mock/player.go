// Package mock provides an in-memory implementation of the MediaPlayer interface.
// It is used for testing services and for running the application without an audio device.
package mock

import (
	"context"
	"log/slog"
	"math"
	"sync"

	"github.com/tejashwikalptaru/tunebox/internal/domain"
	"github.com/tejashwikalptaru/tunebox/internal/ports"
)

// DefaultDurationSeconds is reported for locators without a configured duration.
const DefaultDurationSeconds = 180.0

// Player is a mock implementation of the MediaPlayer interface.
// It simulates playback in memory and publishes the same notifications a real
// player would. Notifications are published synchronously on the calling
// goroutine, after the internal lock is released.
//
// Thread-safety: This implementation is thread-safe.
type Player struct {
	// Dependencies
	bus    ports.EventBus
	logger *slog.Logger

	// Playback state
	locator  string
	duration float64
	position float64
	volume   float64
	playing  bool
	closed   bool

	// Call accounting for assertions
	loads int
	plays int

	// Behavior configuration (for testing error scenarios)
	durations       map[string]float64
	defaultDuration float64
	failLoad        bool
	failPlay        bool

	mu sync.RWMutex
}

// NewPlayer creates a new mock media player that publishes on bus.
func NewPlayer(bus ports.EventBus) *Player {
	return &Player{
		bus:             bus,
		logger:          slog.Default(),
		volume:          1.0,
		durations:       make(map[string]float64),
		defaultDuration: DefaultDurationSeconds,
	}
}

// SetLogger sets the logger for this player.
func (m *Player) SetLogger(logger *slog.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = logger
}

// SetFailLoad configures the mock to fail loading sources (for testing).
func (m *Player) SetFailLoad(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failLoad = fail
}

// SetFailPlay configures the mock to reject play requests (for testing).
func (m *Player) SetFailPlay(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failPlay = fail
}

// SetDuration sets the duration reported when locator is loaded.
func (m *Player) SetDuration(locator string, seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.durations[locator] = seconds
}

// Load replaces the current source.
func (m *Player) Load(ctx context.Context, locator string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return domain.ErrClosed
	}
	if m.failLoad {
		// A failed load still drops the previous source
		m.locator = ""
		m.playing = false
		m.mu.Unlock()
		return domain.NewMediaError("load", locator, "mock load failed", nil)
	}

	duration, ok := m.durations[locator]
	if !ok {
		duration = m.defaultDuration
	}
	m.locator = locator
	m.duration = duration
	m.position = 0
	m.playing = false
	m.loads++
	m.mu.Unlock()

	m.bus.Publish(domain.NewMediaLoadStartEvent(locator))
	m.bus.Publish(domain.NewMediaDurationChangeEvent(locator, duration))
	m.bus.Publish(domain.NewMediaCanPlayEvent(locator))
	return nil
}

// Play starts or resumes playback.
func (m *Player) Play() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return domain.ErrClosed
	}
	if m.locator == "" {
		m.mu.Unlock()
		return domain.ErrNoTrackLoaded
	}
	locator := m.locator
	if m.failPlay {
		m.mu.Unlock()
		err := domain.NewMediaError("play", locator, "mock play rejected", domain.ErrPlaybackRejected)
		m.bus.Publish(domain.NewMediaPlayRejectedEvent(locator, err))
		return err
	}
	m.playing = true
	m.plays++
	m.mu.Unlock()
	return nil
}

// Pause pauses playback.
func (m *Player) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return domain.ErrClosed
	}
	m.playing = false
	return nil
}

// SetPosition moves the playback position, clamped to the source.
func (m *Player) SetPosition(seconds float64) error {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return domain.NewValidationError("position", seconds, domain.ErrInvalidPosition)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return domain.ErrClosed
	}
	if m.locator == "" {
		return domain.ErrNoTrackLoaded
	}
	if seconds < 0 {
		seconds = 0
	}
	if seconds > m.duration {
		seconds = m.duration
	}
	m.position = seconds
	return nil
}

// SetVolume sets the output level.
func (m *Player) SetVolume(level float64) error {
	if math.IsNaN(level) || level < 0 || level > 1 {
		return domain.NewValidationError("volume", level, domain.ErrInvalidVolume)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return domain.ErrClosed
	}
	m.volume = level
	return nil
}

// Close releases the player. Further commands fail with domain.ErrClosed.
func (m *Player) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	m.playing = false
	return nil
}

// Locator returns the loaded locator (for testing).
func (m *Player) Locator() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.locator
}

// IsPlaying returns whether the mock is currently playing (for testing).
func (m *Player) IsPlaying() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.playing
}

// Position returns the current position in seconds (for testing).
func (m *Player) Position() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.position
}

// Volume returns the output level (for testing).
func (m *Player) Volume() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.volume
}

// LoadCount returns how many sources were loaded (for testing).
func (m *Player) LoadCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loads
}

// PlayCount returns how many play requests succeeded (for testing).
func (m *Player) PlayCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.plays
}

// IsClosed returns whether Close was called (for testing).
func (m *Player) IsClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

// SimulateProgress advances a playing source by delta seconds and publishes a
// time update. Reaching the end publishes the ended notification.
func (m *Player) SimulateProgress(delta float64) {
	m.mu.Lock()
	if m.closed || !m.playing {
		m.mu.Unlock()
		return
	}
	locator := m.locator
	m.position += delta
	ended := m.position >= m.duration
	if ended {
		m.position = m.duration
		m.playing = false
	}
	position := m.position
	m.mu.Unlock()

	m.bus.Publish(domain.NewMediaTimeUpdateEvent(locator, position))
	if ended {
		m.bus.Publish(domain.NewMediaEndedEvent(locator))
	}
}

// SimulateEnded plays the loaded source to its end.
func (m *Player) SimulateEnded() {
	m.mu.Lock()
	if m.closed || m.locator == "" {
		m.mu.Unlock()
		return
	}
	locator := m.locator
	m.position = m.duration
	m.playing = false
	m.mu.Unlock()

	m.logger.Debug("simulated end of source", slog.String("locator", locator))
	m.bus.Publish(domain.NewMediaEndedEvent(locator))
}

// Verify that Player implements the MediaPlayer interface
var _ ports.MediaPlayer = (*Player)(nil)
