// Package beep implements the MediaPlayer interface on top of faiface/beep.
// Audio goes to the default output device through the beep speaker.
package beep

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"

	"github.com/tejashwikalptaru/tunebox/internal/domain"
	"github.com/tejashwikalptaru/tunebox/internal/ports"
)

// Config holds speaker and notification settings.
type Config struct {
	SampleRate      int           // output sample rate in Hz
	BufferDuration  time.Duration // speaker buffer length
	TickInterval    time.Duration // time update cadence while playing
	ResampleQuality int           // 1 (fast) to 6 (best)
}

// DefaultConfig returns settings suitable for desktop playback.
func DefaultConfig() Config {
	return Config{
		SampleRate:      44100,
		BufferDuration:  100 * time.Millisecond,
		TickInterval:    250 * time.Millisecond,
		ResampleQuality: 4,
	}
}

var (
	speakerOnce sync.Once
	speakerErr  error
)

// initSpeaker initializes the process-wide speaker once.
func initSpeaker(sr beep.SampleRate, buffer time.Duration) error {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(sr, sr.N(buffer))
	})
	return speakerErr
}

// trackState bundles all resources for the loaded source.
// finished, ctrl.Paused and the streamer position belong to the speaker lock.
type trackState struct {
	locator  string
	source   *ports.Source
	streamer beep.StreamSeekCloser
	playable beep.Streamer // resampled to the speaker rate (may equal streamer)
	format   beep.Format
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	finished bool
}

// duration returns the source length in seconds.
func (t *trackState) duration() float64 {
	return t.format.SampleRate.D(t.streamer.Len()).Seconds()
}

// Close releases the decoder and the underlying source.
func (t *trackState) Close() {
	if t.streamer != nil {
		_ = t.streamer.Close()
	}
	if t.source != nil && t.source.Reader != nil {
		_ = t.source.Reader.Close()
	}
}

// Player plays one source at a time through the speaker.
//
// A monitor goroutine publishes time updates while playing and turns the
// end-of-stream callback into an ended notification. Nothing is ever
// published while holding a lock.
//
// Thread-safety: This implementation is thread-safe.
type Player struct {
	// Dependencies
	bus      ports.EventBus
	resolver ports.LocatorResolver
	logger   *slog.Logger

	cfg        Config
	sampleRate beep.SampleRate

	// State (protected by mu; lock order is mu, then the speaker lock)
	current *trackState
	level   float64
	playing bool
	closed  bool
	mu      sync.Mutex

	ended chan string
	stop  chan struct{}
	wg    sync.WaitGroup
}

// NewPlayer initializes the speaker and starts the monitor goroutine.
func NewPlayer(cfg Config, resolver ports.LocatorResolver, bus ports.EventBus, logger *slog.Logger) (*Player, error) {
	if logger == nil {
		logger = slog.Default()
	}
	defaults := DefaultConfig()
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = defaults.SampleRate
	}
	if cfg.BufferDuration <= 0 {
		cfg.BufferDuration = defaults.BufferDuration
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = defaults.TickInterval
	}
	if cfg.ResampleQuality <= 0 {
		cfg.ResampleQuality = defaults.ResampleQuality
	}

	sr := beep.SampleRate(cfg.SampleRate)
	if err := initSpeaker(sr, cfg.BufferDuration); err != nil {
		return nil, domain.NewMediaError("initialize", "", "speaker init failed", err)
	}

	p := &Player{
		bus:        bus,
		resolver:   resolver,
		logger:     logger,
		cfg:        cfg,
		sampleRate: sr,
		level:      1.0,
		ended:      make(chan string, 4),
		stop:       make(chan struct{}),
	}

	p.wg.Add(1)
	go p.monitor()

	logger.Info("speaker initialized",
		slog.Int("sample_rate", cfg.SampleRate),
		slog.Duration("buffer", cfg.BufferDuration))
	return p, nil
}

// Load resolves and decodes locator, replacing the current source.
// The previous source is released first, so a failed load leaves nothing loaded.
func (p *Player) Load(ctx context.Context, locator string) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return domain.ErrClosed
	}
	old := p.current
	p.current = nil
	p.playing = false
	speaker.Clear()
	p.mu.Unlock()
	if old != nil {
		old.Close()
	}

	p.bus.Publish(domain.NewMediaLoadStartEvent(locator))

	src, err := p.resolver.Resolve(ctx, locator)
	if err != nil {
		return domain.NewMediaError("load", locator, "cannot resolve locator", err)
	}

	decode, err := decoderFor(src.MediaType, src.Name)
	if err != nil {
		_ = src.Reader.Close()
		return domain.NewMediaError("load", locator, "no decoder", err)
	}
	streamer, format, err := decode(src)
	if err != nil {
		_ = src.Reader.Close()
		return domain.NewMediaError("load", locator, "decode failed", err)
	}

	t := &trackState{
		locator:  locator,
		source:   src,
		streamer: streamer,
		playable: streamer,
		format:   format,
	}
	if format.SampleRate != p.sampleRate {
		t.playable = beep.Resample(p.cfg.ResampleQuality, format.SampleRate, p.sampleRate, streamer)
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		t.Close()
		return domain.ErrClosed
	}
	// A concurrent Load may have won the race
	stale := p.current
	speaker.Clear()
	p.current = t
	p.playing = false
	p.attach(t, true)
	duration := t.duration()
	p.mu.Unlock()

	if stale != nil {
		stale.Close()
	}

	p.logger.Debug("source loaded",
		slog.String("locator", locator),
		slog.Int("sample_rate", int(format.SampleRate)),
		slog.Float64("duration", duration))

	p.bus.Publish(domain.NewMediaDurationChangeEvent(locator, duration))
	p.bus.Publish(domain.NewMediaCanPlayEvent(locator))
	return nil
}

// attach builds the effect chain for t and hands it to the speaker.
// Must be called with p.mu held and the speaker lock released.
func (p *Player) attach(t *trackState, paused bool) {
	locator := t.locator
	seq := beep.Seq(t.playable, beep.Callback(func() {
		// Runs on the speaker goroutine with the speaker lock held
		t.finished = true
		select {
		case p.ended <- locator:
		default:
		}
	}))

	ctrl := &beep.Ctrl{Streamer: seq, Paused: paused}
	volume := &effects.Volume{Streamer: ctrl, Base: 2}
	applyLevel(volume, p.level)

	speaker.Lock()
	t.finished = false
	t.ctrl = ctrl
	t.volume = volume
	speaker.Unlock()

	speaker.Play(volume)
}

// Play starts or resumes playback. A source that played to its end restarts
// from the beginning.
func (p *Player) Play() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return domain.ErrClosed
	}
	t := p.current
	if t == nil {
		p.mu.Unlock()
		return domain.ErrNoTrackLoaded
	}

	speaker.Lock()
	finished := t.finished
	var seekErr error
	if finished {
		seekErr = t.streamer.Seek(0)
	} else {
		t.ctrl.Paused = false
	}
	speaker.Unlock()

	if seekErr != nil {
		p.mu.Unlock()
		err := domain.NewMediaError("play", t.locator, "cannot rewind", seekErr)
		p.bus.Publish(domain.NewMediaPlayRejectedEvent(t.locator, err))
		return err
	}
	if finished {
		p.attach(t, false)
	}
	p.playing = true
	p.mu.Unlock()
	return nil
}

// Pause pauses playback.
func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return domain.ErrClosed
	}
	if t := p.current; t != nil {
		speaker.Lock()
		t.ctrl.Paused = true
		speaker.Unlock()
	}
	p.playing = false
	return nil
}

// SetPosition seeks the loaded source, clamped to its length.
func (p *Player) SetPosition(seconds float64) error {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return domain.NewValidationError("position", seconds, domain.ErrInvalidPosition)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return domain.ErrClosed
	}
	t := p.current
	if t == nil {
		return domain.ErrNoTrackLoaded
	}

	speaker.Lock()
	n := t.format.SampleRate.N(time.Duration(seconds * float64(time.Second)))
	if n < 0 {
		n = 0
	}
	if length := t.streamer.Len(); n > length {
		n = length
	}
	err := t.streamer.Seek(n)
	finished := t.finished
	speaker.Unlock()

	if err != nil {
		return domain.NewMediaError("seek", t.locator, "seek failed", err)
	}
	if finished {
		p.attach(t, !p.playing)
	}
	return nil
}

// SetVolume sets the output level.
func (p *Player) SetVolume(level float64) error {
	if math.IsNaN(level) || level < 0 || level > 1 {
		return domain.NewValidationError("volume", level, domain.ErrInvalidVolume)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return domain.ErrClosed
	}
	p.level = level
	if t := p.current; t != nil && t.volume != nil {
		speaker.Lock()
		applyLevel(t.volume, level)
		speaker.Unlock()
	}
	return nil
}

// Close stops the monitor goroutine and releases the loaded source.
func (p *Player) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	t := p.current
	p.current = nil
	p.playing = false
	p.mu.Unlock()

	close(p.stop)
	p.wg.Wait()

	speaker.Clear()
	if t != nil {
		t.Close()
	}
	return nil
}

// monitor publishes time updates and ended notifications.
func (p *Player) monitor() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case locator := <-p.ended:
			p.handleEnded(locator)
		case <-ticker.C:
			p.publishPosition()
		}
	}
}

func (p *Player) handleEnded(locator string) {
	p.mu.Lock()
	t := p.current
	if t == nil || t.locator != locator {
		p.mu.Unlock()
		return
	}
	p.playing = false
	duration := t.duration()
	p.mu.Unlock()

	p.bus.Publish(domain.NewMediaTimeUpdateEvent(locator, duration))
	p.bus.Publish(domain.NewMediaEndedEvent(locator))
}

func (p *Player) publishPosition() {
	p.mu.Lock()
	t := p.current
	if t == nil || !p.playing {
		p.mu.Unlock()
		return
	}
	speaker.Lock()
	position := t.format.SampleRate.D(t.streamer.Position()).Seconds()
	speaker.Unlock()
	locator := t.locator
	p.mu.Unlock()

	p.bus.Publish(domain.NewMediaTimeUpdateEvent(locator, position))
}

// Verify that Player implements the MediaPlayer interface
var _ ports.MediaPlayer = (*Player)(nil)
