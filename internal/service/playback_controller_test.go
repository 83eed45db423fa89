package service

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/tunebox/internal/adapter/audio/mock"
	"github.com/tejashwikalptaru/tunebox/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/tunebox/internal/adapter/repository/memory"
	"github.com/tejashwikalptaru/tunebox/internal/domain"
	"github.com/tejashwikalptaru/tunebox/internal/logger"
	"github.com/tejashwikalptaru/tunebox/internal/ports"
	"github.com/tejashwikalptaru/tunebox/internal/testutil"
)

func TestPlaybackController_InitialState(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	rig := newTestRig(t, DefaultControllerOptions())
	session := rig.controller.Session()

	assert.Equal(t, domain.StateNoTrack, session.State())
	assert.Equal(t, -1, session.CurrentIndex)
	assert.Nil(t, session.CurrentTrack)
	assert.False(t, session.IsPlaying)
	assert.Equal(t, 1.0, session.Volume)
	assert.Equal(t, domain.RepeatOff, session.RepeatMode)
}

func TestPlaybackController_InitialVolume(t *testing.T) {
	rig := newTestRig(t, ControllerOptions{InitialVolume: 0.8})

	assert.Equal(t, 0.8, rig.controller.Session().Volume)
	assert.Equal(t, 0.8, rig.player.Volume())
}

func TestPlaybackController_FirstAddedTrackBecomesCurrent(t *testing.T) {
	rig := newTestRig(t, DefaultControllerOptions())

	rig.addTracks("song.mp3")

	session := rig.controller.Session()
	require.NotNil(t, session.CurrentTrack)
	assert.Equal(t, "song", session.CurrentTrack.Title)
	assert.Equal(t, 0, session.CurrentIndex)
	assert.False(t, session.IsPlaying)
	assert.Equal(t, domain.StatePaused, session.State())
	assert.Equal(t, session.CurrentTrack.Locator, rig.player.Locator())
}

func TestPlaybackController_AddingKeepsCurrentIndex(t *testing.T) {
	rig := newTestRig(t, DefaultControllerOptions())

	rig.addTracks("a.mp3", "b.mp3")
	require.NoError(t, rig.controller.SelectTrack(1))

	rig.addTracks("c.mp3")

	assert.Equal(t, 1, rig.controller.Session().CurrentIndex)
	assert.Equal(t, 2, rig.player.LoadCount())
}

func TestPlaybackController_ExistingTracksSelectedOnCreate(t *testing.T) {
	testLogger := logger.NewTestLogger()
	bus := eventbus.NewSyncEventBus()
	defer bus.Close()
	player := mock.NewPlayer(bus)
	registry := memory.NewLocatorRepository(testLogger)
	playlist := NewPlaylistManager(testLogger, bus, nil, registry, nil)
	playlist.AddFiles([]ports.FileHandle{audioHandle("early.mp3")})

	controller := NewPlaybackController(testLogger, player, playlist, bus, DefaultControllerOptions())
	defer controller.Shutdown()

	session := controller.Session()
	require.NotNil(t, session.CurrentTrack)
	assert.Equal(t, "early", session.CurrentTrack.Title)
	assert.Equal(t, 1, player.LoadCount())
}

func TestPlaybackController_TogglePlayPause(t *testing.T) {
	rig := newTestRig(t, DefaultControllerOptions())
	rig.addTracks("a.mp3")

	recorder := recordEvents(rig.bus, domain.EventPlayStateChanged)

	require.NoError(t, rig.controller.TogglePlayPause())
	assert.True(t, rig.controller.Session().IsPlaying)
	assert.True(t, rig.player.IsPlaying())

	require.NoError(t, rig.controller.TogglePlayPause())
	assert.False(t, rig.controller.Session().IsPlaying)
	assert.False(t, rig.player.IsPlaying())

	events := recorder.all()
	require.Len(t, events, 2)
	assert.True(t, events[0].(domain.PlayStateChangedEvent).Playing)
	assert.False(t, events[1].(domain.PlayStateChangedEvent).Playing)
}

func TestPlaybackController_TogglePlayPause_NoTrack(t *testing.T) {
	rig := newTestRig(t, DefaultControllerOptions())

	require.NoError(t, rig.controller.TogglePlayPause())

	assert.False(t, rig.controller.Session().IsPlaying)
	assert.Equal(t, 0, rig.player.PlayCount())
}

func TestPlaybackController_RejectedPlay_StaysOptimistic(t *testing.T) {
	rig := newTestRig(t, DefaultControllerOptions())
	rig.addTracks("a.mp3")
	rig.player.SetFailPlay(true)

	require.NoError(t, rig.controller.TogglePlayPause())

	assert.True(t, rig.controller.Session().IsPlaying)
	assert.False(t, rig.player.IsPlaying())
}

func TestPlaybackController_RejectedPlay_Reconciled(t *testing.T) {
	rig := newTestRig(t, ControllerOptions{InitialVolume: 1, ReconcileRejectedPlay: true})
	rig.addTracks("a.mp3")
	rig.player.SetFailPlay(true)

	recorder := recordEvents(rig.bus, domain.EventPlayStateChanged)
	require.NoError(t, rig.controller.TogglePlayPause())

	assert.False(t, rig.controller.Session().IsPlaying)

	events := recorder.all()
	require.Len(t, events, 2)
	assert.True(t, events[0].(domain.PlayStateChangedEvent).Playing)
	assert.False(t, events[1].(domain.PlayStateChangedEvent).Playing)
}

func TestPlaybackController_SelectTrack(t *testing.T) {
	rig := newTestRig(t, DefaultControllerOptions())
	tracks := rig.addTracks("a.mp3", "b.mp3", "c.mp3")

	var changed domain.TrackChangedEvent
	rig.bus.Subscribe(domain.EventTrackChanged, func(e domain.Event) {
		changed = e.(domain.TrackChangedEvent)
	})

	require.NoError(t, rig.controller.SelectTrack(2))

	session := rig.controller.Session()
	assert.Equal(t, 2, session.CurrentIndex)
	assert.Equal(t, tracks[2].ID, session.CurrentTrack.ID)
	assert.Equal(t, tracks[2].Locator, rig.player.Locator())
	assert.Equal(t, 2, changed.Index)
	assert.Equal(t, tracks[2].ID, changed.Track.ID)
}

func TestPlaybackController_SelectTrack_SameIndex(t *testing.T) {
	rig := newTestRig(t, DefaultControllerOptions())
	rig.addTracks("a.mp3", "b.mp3")
	rig.controller.Seek(42)

	require.NoError(t, rig.controller.SelectTrack(0))

	assert.Equal(t, 1, rig.player.LoadCount())
	assert.Equal(t, 42.0, rig.controller.Session().PositionSeconds)
}

func TestPlaybackController_SelectTrack_InvalidIndex(t *testing.T) {
	rig := newTestRig(t, DefaultControllerOptions())
	rig.addTracks("a.mp3")

	err := rig.controller.SelectTrack(5)
	assert.ErrorIs(t, err, domain.ErrInvalidIndex)

	err = rig.controller.SelectTrack(-1)
	assert.ErrorIs(t, err, domain.ErrInvalidIndex)

	assert.Equal(t, 0, rig.controller.Session().CurrentIndex)
}

func TestPlaybackController_SelectTrack_LoadFailure(t *testing.T) {
	rig := newTestRig(t, DefaultControllerOptions())
	rig.addTracks("a.mp3", "b.mp3")
	rig.player.SetFailLoad(true)

	err := rig.controller.SelectTrack(1)
	require.Error(t, err)

	var serviceErr *domain.ServiceError
	assert.ErrorAs(t, err, &serviceErr)

	session := rig.controller.Session()
	assert.Equal(t, 1, session.CurrentIndex)
	assert.False(t, session.IsBuffering)
}

func TestPlaybackController_Advance_LastTrackRepeatOff(t *testing.T) {
	rig := newTestRig(t, DefaultControllerOptions())
	rig.addTracks("a.mp3", "b.mp3", "c.mp3")
	require.NoError(t, rig.controller.SelectTrack(2))

	require.NoError(t, rig.controller.Advance(domain.DirectionNext))

	assert.Equal(t, 2, rig.controller.Session().CurrentIndex)
}

func TestPlaybackController_Advance_LastTrackRepeatAll(t *testing.T) {
	rig := newTestRig(t, DefaultControllerOptions())
	rig.addTracks("a.mp3", "b.mp3", "c.mp3")
	require.NoError(t, rig.controller.SelectTrack(2))
	rig.controller.CycleRepeatMode()
	rig.controller.CycleRepeatMode()
	require.Equal(t, domain.RepeatAll, rig.controller.Session().RepeatMode)

	require.NoError(t, rig.controller.Advance(domain.DirectionNext))

	assert.Equal(t, 0, rig.controller.Session().CurrentIndex)
}

func TestPlaybackController_Advance_RepeatAllFullCycle(t *testing.T) {
	for n := 1; n <= 5; n++ {
		rig := newTestRig(t, DefaultControllerOptions())
		names := make([]string, n)
		for i := range names {
			names[i] = string(rune('a'+i)) + ".mp3"
		}
		rig.addTracks(names...)
		rig.controller.CycleRepeatMode()
		rig.controller.CycleRepeatMode()

		start := n / 2
		require.NoError(t, rig.controller.SelectTrack(start))
		for range n {
			require.NoError(t, rig.controller.Advance(domain.DirectionNext))
		}

		assert.Equal(t, start, rig.controller.Session().CurrentIndex, "length %d", n)
	}
}

func TestPlaybackController_Advance_Previous(t *testing.T) {
	rig := newTestRig(t, DefaultControllerOptions())
	rig.addTracks("a.mp3", "b.mp3", "c.mp3")
	require.NoError(t, rig.controller.SelectTrack(1))

	require.NoError(t, rig.controller.Advance(domain.DirectionPrevious))
	assert.Equal(t, 0, rig.controller.Session().CurrentIndex)

	// Previous wraps from the first track regardless of repeat mode
	require.NoError(t, rig.controller.Advance(domain.DirectionPrevious))
	assert.Equal(t, 2, rig.controller.Session().CurrentIndex)
}

func TestPlaybackController_Advance_EmptyList(t *testing.T) {
	rig := newTestRig(t, DefaultControllerOptions())

	assert.NoError(t, rig.controller.Advance(domain.DirectionNext))
	assert.NoError(t, rig.controller.Advance(domain.DirectionPrevious))
	assert.Equal(t, -1, rig.controller.Session().CurrentIndex)
}

func TestPlaybackController_Advance_RepeatOne(t *testing.T) {
	rig := newTestRig(t, DefaultControllerOptions())
	rig.addTracks("a.mp3", "b.mp3", "c.mp3")
	require.NoError(t, rig.controller.SelectTrack(1))
	rig.controller.Seek(60)
	require.Equal(t, domain.RepeatOne, rig.controller.CycleRepeatMode())

	for range 5 {
		require.NoError(t, rig.controller.Advance(domain.DirectionNext))
		assert.Equal(t, 1, rig.controller.Session().CurrentIndex)
	}

	session := rig.controller.Session()
	assert.True(t, session.IsPlaying)
	assert.Equal(t, 0.0, session.PositionSeconds)
	assert.Equal(t, 0.0, rig.player.Position())
	assert.True(t, rig.player.IsPlaying())
	assert.Equal(t, 2, rig.player.LoadCount())
}

func TestPlaybackController_Advance_ShuffleInRange(t *testing.T) {
	for n := 1; n <= 6; n++ {
		rig := newTestRig(t, DefaultControllerOptions())
		names := make([]string, n)
		for i := range names {
			names[i] = string(rune('a'+i)) + ".mp3"
		}
		rig.addTracks(names...)
		rig.controller.ToggleShuffle()

		for i := range 50 {
			direction := domain.DirectionNext
			if i%2 == 1 {
				direction = domain.DirectionPrevious
			}
			require.NoError(t, rig.controller.Advance(direction))

			index := rig.controller.Session().CurrentIndex
			assert.GreaterOrEqual(t, index, 0)
			assert.Less(t, index, n)
		}
	}
}

func TestPlaybackController_Advance_ShuffleUsesRandomIndex(t *testing.T) {
	rig := newTestRig(t, DefaultControllerOptions())
	rig.addTracks("a.mp3", "b.mp3", "c.mp3", "d.mp3")
	rig.controller.randIndex = func(n int) int { return n - 2 }
	rig.controller.ToggleShuffle()

	require.NoError(t, rig.controller.Advance(domain.DirectionPrevious))

	assert.Equal(t, 2, rig.controller.Session().CurrentIndex)
}

func TestPlaybackController_EndedAdvances(t *testing.T) {
	rig := newTestRig(t, DefaultControllerOptions())
	tracks := rig.addTracks("a.mp3", "b.mp3")
	require.NoError(t, rig.controller.TogglePlayPause())

	rig.player.SimulateEnded()

	session := rig.controller.Session()
	assert.Equal(t, 1, session.CurrentIndex)
	assert.True(t, session.IsPlaying)
	assert.Equal(t, tracks[1].Locator, rig.player.Locator())
}

func TestPlaybackController_EndedOnLastTrackStays(t *testing.T) {
	rig := newTestRig(t, DefaultControllerOptions())
	rig.addTracks("a.mp3")
	require.NoError(t, rig.controller.TogglePlayPause())

	rig.player.SimulateEnded()

	session := rig.controller.Session()
	assert.Equal(t, 0, session.CurrentIndex)
	assert.Equal(t, 1, rig.player.LoadCount())
}

func TestPlaybackController_ResumeFromTrackChangedHandler(t *testing.T) {
	rig := newTestRig(t, DefaultControllerOptions())
	tracks := rig.addTracks("a.mp3", "b.mp3")

	// Presentation layer behavior: re-issue play on every track change
	rig.bus.Subscribe(domain.EventTrackChanged, func(domain.Event) {
		rig.controller.Resume()
	})

	require.NoError(t, rig.controller.TogglePlayPause())
	require.NoError(t, rig.controller.Advance(domain.DirectionNext))

	assert.True(t, rig.player.IsPlaying())
	assert.Equal(t, tracks[1].Locator, rig.player.Locator())
}

func TestPlaybackController_Resume_NotPlaying(t *testing.T) {
	rig := newTestRig(t, DefaultControllerOptions())
	rig.addTracks("a.mp3")

	rig.controller.Resume()

	assert.False(t, rig.player.IsPlaying())
	assert.Equal(t, 0, rig.player.PlayCount())
}

func TestPlaybackController_MediaNotifications(t *testing.T) {
	rig := newTestRig(t, DefaultControllerOptions())
	tracks := rig.addTracks("a.mp3")
	require.NoError(t, rig.controller.TogglePlayPause())

	assert.Equal(t, mock.DefaultDurationSeconds, rig.controller.Session().DurationSeconds)

	rig.player.SimulateProgress(12.5)
	assert.Equal(t, 12.5, rig.controller.Session().PositionSeconds)

	rig.bus.Publish(domain.NewMediaDurationChangeEvent(tracks[0].Locator, 200))
	assert.Equal(t, 200.0, rig.controller.Session().DurationSeconds)
}

func TestPlaybackController_StaleNotificationsIgnored(t *testing.T) {
	rig := newTestRig(t, DefaultControllerOptions())
	tracks := rig.addTracks("a.mp3", "b.mp3")
	require.NoError(t, rig.controller.SelectTrack(1))

	stale := tracks[0].Locator
	rig.bus.Publish(domain.NewMediaTimeUpdateEvent(stale, 99))
	rig.bus.Publish(domain.NewMediaDurationChangeEvent(stale, 1))
	rig.bus.Publish(domain.NewMediaEndedEvent(stale))
	rig.bus.Publish(domain.NewMediaLoadStartEvent(stale))

	session := rig.controller.Session()
	assert.Equal(t, 1, session.CurrentIndex)
	assert.Equal(t, 0.0, session.PositionSeconds)
	assert.Equal(t, mock.DefaultDurationSeconds, session.DurationSeconds)
	assert.False(t, session.IsBuffering)
}

func TestPlaybackController_Buffering(t *testing.T) {
	rig := newTestRig(t, DefaultControllerOptions())

	var states []bool
	rig.bus.Subscribe(domain.EventBufferingChanged, func(e domain.Event) {
		states = append(states, e.(domain.BufferingChangedEvent).Buffering)
	})

	rig.addTracks("a.mp3")

	assert.Equal(t, []bool{true, false}, states)
	assert.False(t, rig.controller.Session().IsBuffering)
}

func TestPlaybackController_ToggleShuffle(t *testing.T) {
	rig := newTestRig(t, DefaultControllerOptions())
	rig.addTracks("a.mp3", "b.mp3", "c.mp3")
	before := rig.playlist.Tracks()

	rig.controller.ToggleShuffle()
	assert.True(t, rig.controller.Session().IsShuffled)
	assert.Equal(t, before, rig.playlist.Tracks())

	rig.controller.ToggleShuffle()
	assert.False(t, rig.controller.Session().IsShuffled)
}

func TestPlaybackController_CycleRepeatMode(t *testing.T) {
	rig := newTestRig(t, DefaultControllerOptions())

	assert.Equal(t, domain.RepeatOne, rig.controller.CycleRepeatMode())
	assert.Equal(t, domain.RepeatAll, rig.controller.CycleRepeatMode())
	assert.Equal(t, domain.RepeatOff, rig.controller.CycleRepeatMode())
	assert.Equal(t, domain.RepeatOff, rig.controller.Session().RepeatMode)
}

func TestPlaybackController_Seek(t *testing.T) {
	rig := newTestRig(t, DefaultControllerOptions())
	rig.addTracks("a.mp3")

	var position domain.PositionChangedEvent
	rig.bus.Subscribe(domain.EventPositionChanged, func(e domain.Event) {
		position = e.(domain.PositionChangedEvent)
	})

	rig.controller.Seek(30)
	assert.Equal(t, 30.0, rig.controller.Session().PositionSeconds)
	assert.Equal(t, 30.0, rig.player.Position())
	assert.Equal(t, 30.0, position.PositionSeconds)

	tests := []struct {
		name   string
		target float64
		want   float64
	}{
		{"negative", -5, 0},
		{"past end", 500, mock.DefaultDurationSeconds},
		{"not a number", math.NaN(), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rig.controller.Seek(tt.target)
			assert.Equal(t, tt.want, rig.controller.Session().PositionSeconds)
		})
	}
}

func TestPlaybackController_Seek_NoTrack(t *testing.T) {
	rig := newTestRig(t, DefaultControllerOptions())

	rig.controller.Seek(10)

	assert.Equal(t, 0.0, rig.controller.Session().PositionSeconds)
}

func TestPlaybackController_SeekFraction(t *testing.T) {
	rig := newTestRig(t, DefaultControllerOptions())
	rig.addTracks("a.mp3")

	rig.controller.SeekFraction(0.5)
	assert.Equal(t, mock.DefaultDurationSeconds/2, rig.controller.Session().PositionSeconds)

	rig.controller.SeekFraction(1.7)
	assert.Equal(t, mock.DefaultDurationSeconds, rig.controller.Session().PositionSeconds)

	rig.controller.SeekFraction(-0.2)
	assert.Equal(t, 0.0, rig.controller.Session().PositionSeconds)
}

func TestPlaybackController_SetVolume(t *testing.T) {
	rig := newTestRig(t, DefaultControllerOptions())

	require.NoError(t, rig.controller.SetVolume(0))
	assert.True(t, rig.controller.Session().IsMuted)
	assert.Equal(t, 0.0, rig.player.Volume())

	for _, level := range []float64{0.01, 0.5, 1} {
		require.NoError(t, rig.controller.SetVolume(level))
		session := rig.controller.Session()
		assert.False(t, session.IsMuted)
		assert.Equal(t, level, session.Volume)
		assert.Equal(t, level, rig.player.Volume())
	}
}

func TestPlaybackController_SetVolume_InvalidRange(t *testing.T) {
	rig := newTestRig(t, DefaultControllerOptions())

	for _, level := range []float64{-0.1, 1.1, math.NaN()} {
		err := rig.controller.SetVolume(level)
		assert.ErrorIs(t, err, domain.ErrInvalidVolume)
	}
	assert.Equal(t, 1.0, rig.controller.Session().Volume)
}

func TestPlaybackController_ToggleMute(t *testing.T) {
	rig := newTestRig(t, DefaultControllerOptions())
	require.NoError(t, rig.controller.SetVolume(0.37))

	rig.controller.ToggleMute()
	session := rig.controller.Session()
	assert.True(t, session.IsMuted)
	assert.Equal(t, 0.37, session.Volume)
	assert.Equal(t, 0.0, rig.player.Volume())

	rig.controller.ToggleMute()
	session = rig.controller.Session()
	assert.False(t, session.IsMuted)
	assert.Equal(t, 0.37, session.Volume)
	assert.Equal(t, 0.37, rig.player.Volume())
}

func TestPlaybackController_ManifestShiftKeepsCurrentTrack(t *testing.T) {
	testLogger := logger.NewTestLogger()
	bus := eventbus.NewSyncEventBus()
	defer bus.Close()
	player := mock.NewPlayer(bus)
	registry := memory.NewLocatorRepository(testLogger)
	source := &fakeManifest{tracks: []domain.Track{
		manifestTrack("m1", "Bundled One"),
		manifestTrack("m2", "Bundled Two"),
	}}
	playlist := NewPlaylistManager(testLogger, bus, source, registry, nil)
	controller := NewPlaybackController(testLogger, player, playlist, bus, DefaultControllerOptions())
	defer controller.Shutdown()

	playlist.AddFiles([]ports.FileHandle{audioHandle("mine.mp3")})
	require.Equal(t, 0, controller.Session().CurrentIndex)

	playlist.LoadManifest(context.Background())

	session := controller.Session()
	assert.Equal(t, 2, session.CurrentIndex)
	assert.Equal(t, "mine", session.CurrentTrack.Title)
	assert.Equal(t, 1, player.LoadCount())

	require.NoError(t, controller.Advance(domain.DirectionPrevious))
	assert.Equal(t, "Bundled Two", controller.Session().CurrentTrack.Title)
}

// reorderingBus runs hook inside the first TracksAdded publish and holds
// back whatever the hook publishes until flush.
type reorderingBus struct {
	*eventbus.SyncEventBus
	hook    func()
	holding bool
	held    []domain.Event
}

func (b *reorderingBus) Publish(event domain.Event) {
	if b.holding {
		b.held = append(b.held, event)
		return
	}
	if b.hook != nil && event.Type() == domain.EventTracksAdded {
		hook := b.hook
		b.hook = nil
		b.holding = true
		hook()
		b.holding = false
	}
	b.SyncEventBus.Publish(event)
}

func (b *reorderingBus) flush() {
	held := b.held
	b.held = nil
	for _, event := range held {
		b.SyncEventBus.Publish(event)
	}
}

func TestPlaybackController_LateAddFilesUpdateSelectsAddedTrack(t *testing.T) {
	testLogger := logger.NewTestLogger()
	bus := &reorderingBus{SyncEventBus: eventbus.NewSyncEventBus()}
	defer bus.Close()
	player := mock.NewPlayer(bus)
	registry := memory.NewLocatorRepository(testLogger)
	source := &fakeManifest{tracks: []domain.Track{
		manifestTrack("m1", "Bundled One"),
		manifestTrack("m2", "Bundled Two"),
	}}
	playlist := NewPlaylistManager(testLogger, bus, source, registry, nil)
	controller := NewPlaybackController(testLogger, player, playlist, bus, DefaultControllerOptions())
	defer controller.Shutdown()

	// The manifest prepends between AddFiles releasing its lock and publishing,
	// and its own update is delivered after the AddFiles one.
	bus.hook = func() { playlist.LoadManifest(context.Background()) }
	added := playlist.AddFiles([]ports.FileHandle{audioHandle("mine.mp3")})
	require.Len(t, added, 1)
	bus.flush()

	session := controller.Session()
	require.NotNil(t, session.CurrentTrack)
	assert.Equal(t, 2, session.CurrentIndex)
	assert.Equal(t, added[0].ID, session.CurrentTrack.ID)
	assert.Equal(t, added[0].ID, playlist.Tracks()[session.CurrentIndex].ID)
	assert.Equal(t, added[0].Locator, player.Locator())
	assert.Equal(t, 1, player.LoadCount())
}

func TestPlaybackController_ManifestSeedsSession(t *testing.T) {
	testLogger := logger.NewTestLogger()
	bus := eventbus.NewSyncEventBus()
	defer bus.Close()
	player := mock.NewPlayer(bus)
	registry := memory.NewLocatorRepository(testLogger)
	source := &fakeManifest{tracks: []domain.Track{manifestTrack("m1", "Bundled One")}}
	playlist := NewPlaylistManager(testLogger, bus, source, registry, nil)
	controller := NewPlaybackController(testLogger, player, playlist, bus, DefaultControllerOptions())
	defer controller.Shutdown()

	playlist.LoadManifest(context.Background())

	session := controller.Session()
	require.NotNil(t, session.CurrentTrack)
	assert.Equal(t, "Bundled One", session.CurrentTrack.Title)
	assert.Equal(t, "/music/m1.mp3", player.Locator())
	assert.False(t, session.IsPlaying)
}

func TestPlaybackController_Session_IsCopy(t *testing.T) {
	rig := newTestRig(t, DefaultControllerOptions())
	rig.addTracks("a.mp3")

	session := rig.controller.Session()
	session.CurrentTrack.Title = "changed"

	assert.Equal(t, "a", rig.controller.Session().CurrentTrack.Title)
}

func TestPlaybackController_Shutdown(t *testing.T) {
	rig := newTestRig(t, DefaultControllerOptions())
	rig.addTracks("a.mp3", "b.mp3")

	require.NoError(t, rig.controller.Shutdown())
	require.NoError(t, rig.controller.Shutdown())

	assert.True(t, rig.player.IsClosed())
	assert.ErrorIs(t, rig.controller.SelectTrack(1), domain.ErrClosed)

	// Notifications after shutdown are ignored
	rig.bus.Publish(domain.NewMediaEndedEvent(rig.playlist.Tracks()[0].Locator))
	assert.Equal(t, 0, rig.controller.Session().CurrentIndex)
}

func TestPlaybackController_ConcurrentCommands(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	rig := newTestRig(t, DefaultControllerOptions())
	rig.addTracks("a.mp3", "b.mp3", "c.mp3")
	rig.controller.CycleRepeatMode()
	rig.controller.CycleRepeatMode()

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := range 25 {
				switch (i + j) % 5 {
				case 0:
					_ = rig.controller.TogglePlayPause()
				case 1:
					_ = rig.controller.Advance(domain.DirectionNext)
				case 2:
					_ = rig.controller.SetVolume(0.5)
				case 3:
					rig.controller.ToggleMute()
				case 4:
					_ = rig.controller.Session()
				}
			}
		}(i)
	}
	wg.Wait()

	index := rig.controller.Session().CurrentIndex
	assert.GreaterOrEqual(t, index, 0)
	assert.Less(t, index, 3)
}
