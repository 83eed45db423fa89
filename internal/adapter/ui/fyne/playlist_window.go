package fyne

import (
	"fmt"
	"strings"

	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/tejashwikalptaru/tunebox/internal/adapter/ui/fyne/widgets"
	"github.com/tejashwikalptaru/tunebox/internal/domain"
	"github.com/tejashwikalptaru/tunebox/internal/ports"
)

// PlaylistWindow lists the playlist with a search box. Double-clicking a row,
// or choosing Play from its menu, selects that track.
//
// All fields below the dependencies are owned by the Fyne thread.
type PlaylistWindow struct {
	window fyneapp.Window
	list   *widget.List
	search *widget.Entry

	presenter     *Presenter
	eventBus      ports.EventBus
	subscriptions []domain.SubscriptionID

	tracks  []domain.Track
	visible []int // playlist indices matching the search, in playlist order
	current int   // playlist index of the current track, or -1

	onWindowClosed func()
	isVisible      bool
}

// NewPlaylistWindow creates the window and fills it from the presenter.
func NewPlaylistWindow(app fyneapp.App, presenter *Presenter, eventBus ports.EventBus) *PlaylistWindow {
	w := &PlaylistWindow{
		presenter: presenter,
		eventBus:  eventBus,
		current:   -1,
	}

	w.window = app.NewWindow("Playlist")
	w.window.Resize(fyneapp.NewSize(500, 600))
	w.buildUI()

	// Selection follows the main window through SetSelected
	w.subscriptions = append(w.subscriptions,
		w.eventBus.Subscribe(domain.EventPlaylistUpdated, w.onPlaylistUpdated),
	)

	w.window.SetOnClosed(func() {
		w.isVisible = false
		w.unsubscribe()
		if w.onWindowClosed != nil {
			w.onWindowClosed()
		}
	})

	if presenter != nil {
		w.tracks = presenter.GetQueue()
		w.current = presenter.CurrentIndex()
	}
	w.refilter()

	return w
}

func (w *PlaylistWindow) buildUI() {
	w.search = widget.NewEntry()
	w.search.SetPlaceHolder("Search title, artist, album or genre")
	w.search.OnChanged = func(string) { w.refilter() }

	w.list = widget.NewList(
		func() int { return len(w.visible) },
		func() fyneapp.CanvasObject {
			return widgets.NewTrackRow(w.play, w.showRowMenu)
		},
		w.bindRow,
	)

	w.window.SetContent(container.NewBorder(w.search, nil, nil, nil, w.list))
}

// bindRow fills a recycled row. Rows carry the playlist index, not the
// filtered one, so taps survive a search change.
func (w *PlaylistWindow) bindRow(id widget.ListItemID, obj fyneapp.CanvasObject) {
	row, ok := obj.(*widgets.TrackRow)
	if !ok || id < 0 || id >= len(w.visible) {
		return
	}
	index := w.visible[id]
	track := w.tracks[index]
	row.Bind(index, displayText(track), durationText(track), index == w.current)
}

func (w *PlaylistWindow) showRowMenu(index int, pos fyneapp.Position) {
	menu := fyneapp.NewMenu("",
		fyneapp.NewMenuItem("Play", func() { w.play(index) }),
	)
	widget.ShowPopUpMenuAtPosition(menu, w.window.Canvas(), pos)
}

// play selects the track at a playlist index.
func (w *PlaylistWindow) play(index int) {
	if w.presenter == nil || index < 0 || index >= len(w.tracks) {
		return
	}
	if err := w.presenter.OnPlaylistTrackSelected(index); err != nil {
		dialog.ShowError(err, w.window)
	}
}

// onPlaylistUpdated reloads from the presenter rather than the event, since
// updates may arrive after a later change to the list.
func (w *PlaylistWindow) onPlaylistUpdated(domain.Event) {
	if w.presenter == nil {
		return
	}
	tracks := w.presenter.GetQueue()
	current := w.presenter.CurrentIndex()

	fyneapp.Do(func() {
		w.tracks = tracks
		w.current = current
		w.refilter()
	})
}

// refilter recomputes the visible rows from the search box and redraws.
// Must run on the Fyne thread.
func (w *PlaylistWindow) refilter() {
	w.visible = filterTracks(w.tracks, w.search.Text)
	w.window.SetTitle(playlistTitle(len(w.visible), len(w.tracks)))
	w.list.Refresh()
	w.highlightCurrent()
}

// highlightCurrent selects the current track's row, or nothing when it is
// unset or hidden by the search. Must run on the Fyne thread.
func (w *PlaylistWindow) highlightCurrent() {
	for id, index := range w.visible {
		if index == w.current {
			w.list.Select(id)
			return
		}
	}
	w.list.UnselectAll()
}

func (w *PlaylistWindow) unsubscribe() {
	for _, id := range w.subscriptions {
		w.eventBus.Unsubscribe(id)
	}
	w.subscriptions = nil
}

// filterTracks returns the indices of tracks whose title, artist, album or
// genre contains query, ignoring case. A blank query matches everything.
func filterTracks(tracks []domain.Track, query string) []int {
	query = strings.ToLower(strings.TrimSpace(query))
	matches := make([]int, 0, len(tracks))
	for i, track := range tracks {
		if query == "" || trackMatches(track, query) {
			matches = append(matches, i)
		}
	}
	return matches
}

func trackMatches(track domain.Track, query string) bool {
	for _, field := range []string{track.Title, track.Artist, track.Album, track.Genre} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

func playlistTitle(shown, total int) string {
	if shown == total {
		return fmt.Sprintf("Playlist (%d items)", total)
	}
	return fmt.Sprintf("Playlist (%d of %d items)", shown, total)
}

// displayText renders a list row as "Artist - Title".
func displayText(track domain.Track) string {
	if track.Artist == "" || track.Artist == domain.UnknownArtist {
		return track.Title
	}
	return fmt.Sprintf("%s - %s", track.Artist, track.Title)
}

// durationText is the row's duration column, blank while unknown.
func durationText(track domain.Track) string {
	if track.DurationLabel == domain.UnknownDurationLabel {
		return ""
	}
	return track.DurationLabel
}

// Show displays the playlist window.
func (w *PlaylistWindow) Show() {
	w.isVisible = true
	w.window.Show()
}

// Close closes the playlist window.
func (w *PlaylistWindow) Close() {
	w.isVisible = false
	w.unsubscribe()
	w.window.Close()
}

// IsVisible returns whether the window is currently visible.
func (w *PlaylistWindow) IsVisible() bool {
	return w.isVisible
}

// SetSelected marks the track at a playlist index as current.
func (w *PlaylistWindow) SetSelected(index int) {
	fyneapp.Do(func() {
		w.current = index
		w.list.Refresh()
		w.highlightCurrent()
	})
}

// SetOnWindowClosed registers a callback run after the window closes.
func (w *PlaylistWindow) SetOnWindowClosed(callback func()) {
	w.onWindowClosed = callback
}
