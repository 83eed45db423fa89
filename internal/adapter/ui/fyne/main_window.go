package fyne

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // artwork decoders
	_ "image/png"
	"math"
	"sync"
	"time"

	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/tejashwikalptaru/tunebox/internal/adapter/ui/fyne/widgets"
	"github.com/tejashwikalptaru/tunebox/internal/domain"
)

const (
	// APPNAME is the window title
	APPNAME = "TuneBox"

	// WIDTH and HEIGHT are the fixed main window dimensions
	WIDTH  = 460
	HEIGHT = 460

	scrollInterval = 300 * time.Millisecond
	infoWidth      = 32
	volumeStep     = 5
)

// MainWindow is the main UI window implementing the UIView interface.
// It handles all UI rendering and user interactions.
//
// The MainWindow follows the MVP pattern:
// - It's a "dumb view" that just displays data
// - All business logic is in the Presenter
// - User interactions are forwarded to the Presenter
//
// UIView methods may be called from any goroutine; widget updates are
// marshalled onto the Fyne thread with fyne.Do.
type MainWindow struct {
	app    fyneapp.App
	window fyneapp.Window

	// UI components
	prevButton     *widget.Button
	playButton     *widget.Button
	nextButton     *widget.Button
	shuffleButton  *widget.Button
	repeatButton   *widget.Button
	muteButton     *widget.Button
	songInfo       *widget.Label
	currentTime    *widget.Label
	endTime        *widget.Label
	progressSlider *widget.Slider
	volumeSlider   *widget.Slider
	buffering      *widget.Activity
	cover          *widgets.CoverArt

	// State touched only on the Fyne thread
	dragging bool

	// Scrolling title
	rotatorMu  sync.Mutex
	rotator    *widgets.Rotator
	stopScroll chan struct{}
	scrollWG   sync.WaitGroup

	// Last folder browsed from the open dialogs
	history browseHistory

	// Playlist window
	playlistMu     sync.Mutex
	playlistWindow *PlaylistWindow

	// Lifecycle management
	closeOnce     sync.Once
	onBeforeClose func()

	// Presenter (set after construction)
	presenter *Presenter
}

// NewMainWindow creates a new main window.
func NewMainWindow(app fyneapp.App) *MainWindow {
	w := &MainWindow{
		app:        app,
		rotator:    widgets.NewRotator(APPNAME, infoWidth),
		stopScroll: make(chan struct{}),
	}

	// Create a window
	w.window = app.NewWindow(APPNAME)

	// Build UI
	w.buildUI()

	// Set window properties
	w.window.Resize(fyneapp.Size{
		Width:  WIDTH,
		Height: HEIGHT,
	})
	w.window.SetFixedSize(true)
	w.app.SetIcon(theme.MediaMusicIcon())

	w.window.SetCloseIntercept(func() {
		if w.onBeforeClose != nil {
			w.onBeforeClose()
		}
		w.Close()
	})

	return w
}

// SetPresenter connects the presenter to this view.
// This must be called before showing the window.
func (w *MainWindow) SetPresenter(presenter *Presenter) {
	w.presenter = presenter
	w.wirePresenterHandlers()
	w.addShortcuts()
}

// SetOnBeforeClose registers a callback run before the window closes.
func (w *MainWindow) SetOnBeforeClose(callback func()) {
	w.onBeforeClose = callback
}

// buildUI constructs the UI components.
func (w *MainWindow) buildUI() {
	// Album art display
	w.cover = widgets.NewCoverArt()
	w.cover.OnMenu = w.showArtMenu
	w.cover.OnDoubleTapped = w.handleViewPlaylist

	// Control buttons
	w.prevButton = widget.NewButtonWithIcon("", theme.MediaSkipPreviousIcon(), nil)
	w.playButton = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), nil)
	w.nextButton = widget.NewButtonWithIcon("", theme.MediaSkipNextIcon(), nil)
	w.shuffleButton = widget.NewButtonWithIcon("", theme.ViewRefreshIcon(), nil)
	w.repeatButton = widget.NewButtonWithIcon("", theme.MediaReplayIcon(), nil)
	w.muteButton = widget.NewButtonWithIcon("", theme.VolumeUpIcon(), nil)
	w.buffering = widget.NewActivity()
	w.buffering.Hide()

	// Song info label
	w.songInfo = widget.NewLabel(APPNAME)
	w.songInfo.Truncation = fyneapp.TextTruncateClip
	w.songInfo.TextStyle = fyneapp.TextStyle{
		Bold:   true,
		Italic: true,
	}

	// Volume slider
	w.volumeSlider = widget.NewSlider(0, 100)
	w.volumeSlider.Orientation = widget.Horizontal
	w.volumeSlider.Value = 100
	volumeHolder := container.NewBorder(nil, nil, w.muteButton, nil, w.volumeSlider)

	// Button container
	buttonsHBox := container.NewHBox(
		w.prevButton, w.playButton, w.nextButton,
		w.shuffleButton, w.repeatButton, w.buffering,
	)
	buttonsHolder := container.NewGridWithColumns(2, buttonsHBox, volumeHolder)

	// Progress slider, as a fraction of the track
	w.progressSlider = widget.NewSlider(0, 1)
	w.progressSlider.Step = 0.001
	w.currentTime = widget.NewLabel(formatTime(0))
	w.endTime = widget.NewLabel(formatTime(math.NaN()))
	sliderHolder := container.NewBorder(nil, nil, w.currentTime, w.endTime, w.progressSlider)

	// Main layout
	controls := container.NewVBox(w.songInfo, sliderHolder, buttonsHolder)
	splitContainer := container.NewBorder(nil, controls, nil, nil, w.cover)
	w.window.SetContent(container.NewPadded(splitContainer))

	// Menu
	w.window.SetMainMenu(fyneapp.NewMainMenu(w.createMenu()...))
}

// wirePresenterHandlers connects UI events to presenter handlers.
func (w *MainWindow) wirePresenterHandlers() {
	if w.presenter == nil {
		return
	}

	// Button handlers
	w.playButton.OnTapped = w.presenter.OnPlayClicked
	w.nextButton.OnTapped = w.presenter.OnNextClicked
	w.prevButton.OnTapped = w.presenter.OnPreviousClicked
	w.shuffleButton.OnTapped = w.presenter.OnShuffleClicked
	w.repeatButton.OnTapped = w.presenter.OnRepeatClicked
	w.muteButton.OnTapped = w.presenter.OnMuteClicked

	// Volume slider
	w.volumeSlider.OnChanged = func(value float64) {
		w.presenter.OnVolumeChanged(value)
	}

	// Progress slider: hold position updates while the user drags
	w.progressSlider.OnChanged = func(float64) {
		w.dragging = true
	}
	w.progressSlider.OnChangeEnded = func(value float64) {
		w.dragging = false
		w.presenter.OnSeekFraction(value)
	}

	// Drag and drop of files and folders
	w.window.SetOnDropped(func(_ fyneapp.Position, uris []fyneapp.URI) {
		w.openURIs(uris)
	})
}

// createMenu creates the application menu.
func (w *MainWindow) createMenu() []*fyneapp.Menu {
	menus := make([]*fyneapp.Menu, 0)
	separator := fyneapp.NewMenuItemSeparator()

	openFile := fyneapp.NewMenuItem("Open", func() {
		w.handleOpenFile()
	})

	openFolder := fyneapp.NewMenuItem("Open Folder", func() {
		w.handleOpenFolder()
	})

	viewPlaylist := fyneapp.NewMenuItem("View Playlist", w.handleViewPlaylist)

	exitMenu := fyneapp.NewMenuItem("Exit", func() {
		if w.onBeforeClose != nil {
			w.onBeforeClose()
		}
		w.Close()
	})

	fileMenuItems := fyneapp.NewMenu("File", openFile, openFolder, separator, viewPlaylist, separator, exitMenu)
	menus = append(menus, fileMenuItems)

	about := fyneapp.NewMenuItem("About", func() {
		content := widget.NewRichTextFromMarkdown(AboutContent)
		content.Wrapping = fyneapp.TextWrapWord
		d := dialog.NewCustom("About "+APPNAME, "Close", container.NewVScroll(content), w.window)
		d.Resize(fyneapp.NewSize(WIDTH-40, HEIGHT-60))
		d.Show()
	})
	menus = append(menus, fyneapp.NewMenu("Help", about))

	return menus
}

// showArtMenu shows the context menu for the artwork area.
func (w *MainWindow) showArtMenu(pe *fyneapp.PointEvent) {
	menu := fyneapp.NewMenu("",
		fyneapp.NewMenuItem("Open", w.handleOpenFile),
		fyneapp.NewMenuItem("Open Folder", w.handleOpenFolder),
		fyneapp.NewMenuItem("View Playlist", w.handleViewPlaylist),
	)
	widget.ShowPopUpMenuAtPosition(menu, w.window.Canvas(), pe.AbsolutePosition)
}

// handleViewPlaylist opens the playlist window through the presenter.
func (w *MainWindow) handleViewPlaylist() {
	if w.presenter != nil {
		w.presenter.OnPlaylistMenuClicked()
	}
}

// handleOpenFile handles the "Open File" menu action.
func (w *MainWindow) handleOpenFile() {
	if w.presenter == nil {
		return
	}

	d := NewFileDialog(w.window, &w.history, func(paths []string) {
		go w.openFiles(paths)
	}, w.presenter.logger)
	d.Show()
}

// handleOpenFolder handles the "Open Folder" menu action.
func (w *MainWindow) handleOpenFolder() {
	if w.presenter == nil {
		return
	}

	d := NewFolderDialog(w.window, &w.history, func(folderPath string) {
		go w.openFolder(folderPath)
	}, w.presenter.logger)
	d.Show()
}

// openURIs routes dropped items: folders are scanned, everything else is opened as files.
func (w *MainWindow) openURIs(uris []fyneapp.URI) {
	files := make([]string, 0, len(uris))
	for _, uri := range uris {
		if listable, err := storage.CanList(uri); err == nil && listable {
			go w.openFolder(uri.Path())
			continue
		}
		files = append(files, uri.Path())
	}
	if len(files) > 0 {
		go w.openFiles(files)
	}
}

func (w *MainWindow) openFiles(paths []string) {
	if err := w.presenter.OnFilesOpened(paths); err != nil {
		w.showError(fmt.Errorf("failed to open files: %w", err))
	}
}

func (w *MainWindow) openFolder(path string) {
	if err := w.presenter.OnFolderOpened(path); err != nil {
		w.showError(fmt.Errorf("failed to scan folder: %w", err))
	}
}

func (w *MainWindow) showError(err error) {
	fyneapp.Do(func() {
		dialog.ShowError(err, w.window)
	})
}

// addShortcuts adds keyboard shortcuts.
func (w *MainWindow) addShortcuts() {
	c := w.window.Canvas()

	c.SetOnTypedKey(func(ev *fyneapp.KeyEvent) {
		if ev.Name == fyneapp.KeySpace {
			w.presenter.OnPlayClicked()
		}
	})

	c.AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyneapp.KeyRight,
		Modifier: fyneapp.KeyModifierAlt,
	}, func(fyneapp.Shortcut) {
		w.presenter.OnNextClicked()
	})

	c.AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyneapp.KeyLeft,
		Modifier: fyneapp.KeyModifierAlt,
	}, func(fyneapp.Shortcut) {
		w.presenter.OnPreviousClicked()
	})

	c.AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyneapp.KeyUp,
		Modifier: fyneapp.KeyModifierAlt,
	}, func(fyneapp.Shortcut) {
		w.volumeSlider.SetValue(math.Min(w.volumeSlider.Value+volumeStep, 100))
	})

	c.AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyneapp.KeyDown,
		Modifier: fyneapp.KeyModifierAlt,
	}, func(fyneapp.Shortcut) {
		w.volumeSlider.SetValue(math.Max(w.volumeSlider.Value-volumeStep, 0))
	})
}

// startScrollInfoRoutine starts the song info scrolling animation.
// This should only be called after the Fyne app is fully initialized (in ShowAndRun).
func (w *MainWindow) startScrollInfoRoutine() {
	w.scrollWG.Add(1)
	go func() {
		defer w.scrollWG.Done()

		ticker := time.NewTicker(scrollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-w.stopScroll:
				return
			case <-ticker.C:
				w.rotatorMu.Lock()
				text := w.rotator.Rotate()
				w.rotatorMu.Unlock()
				fyneapp.Do(func() {
					w.songInfo.SetText(text)
				})
			}
		}
	}()
}

// ShowAndRun shows the window and runs the application.
// This also starts the song info scrolling animation.
func (w *MainWindow) ShowAndRun() {
	w.startScrollInfoRoutine()
	w.window.ShowAndRun()
}

// Close closes the window and stops the scrolling animation.
// It's safe to call multiple times (idempotent).
func (w *MainWindow) Close() {
	w.closeOnce.Do(func() {
		close(w.stopScroll)
		w.scrollWG.Wait()

		w.playlistMu.Lock()
		pw := w.playlistWindow
		w.playlistWindow = nil
		w.playlistMu.Unlock()
		if pw != nil {
			pw.Close()
		}

		w.window.Close()
	})
}

// GetWindow returns the underlying Fyne window.
func (w *MainWindow) GetWindow() fyneapp.Window {
	return w.window
}

// UIView interface implementation

// SetPlayState updates the play/pause button state.
func (w *MainWindow) SetPlayState(playing bool) {
	fyneapp.Do(func() {
		if playing {
			w.playButton.SetIcon(theme.MediaPauseIcon())
		} else {
			w.playButton.SetIcon(theme.MediaPlayIcon())
		}
	})
}

// SetMuteState updates the mute button state.
func (w *MainWindow) SetMuteState(muted bool) {
	fyneapp.Do(func() {
		if muted {
			w.muteButton.SetIcon(theme.VolumeMuteIcon())
		} else {
			w.muteButton.SetIcon(theme.VolumeUpIcon())
		}
	})
}

// SetShuffleState highlights the shuffle button while shuffle is on.
func (w *MainWindow) SetShuffleState(enabled bool) {
	fyneapp.Do(func() {
		w.shuffleButton.Importance = importanceFor(enabled)
		w.shuffleButton.Refresh()
	})
}

// SetRepeatMode shows the repeat mode on the repeat button.
func (w *MainWindow) SetRepeatMode(mode domain.RepeatMode) {
	fyneapp.Do(func() {
		switch mode {
		case domain.RepeatOne:
			w.repeatButton.SetText("1")
		case domain.RepeatAll:
			w.repeatButton.SetText("All")
		default:
			w.repeatButton.SetText("")
		}
		w.repeatButton.Importance = importanceFor(mode != domain.RepeatOff)
		w.repeatButton.Refresh()
	})
}

// SetBuffering toggles the buffering indicator.
func (w *MainWindow) SetBuffering(buffering bool) {
	fyneapp.Do(func() {
		if buffering {
			w.buffering.Start()
			w.buffering.Show()
		} else {
			w.buffering.Stop()
			w.buffering.Hide()
		}
	})
}

// SetVolume updates the volume slider (0-100).
// The value is set directly so OnChanged does not echo it back.
func (w *MainWindow) SetVolume(volume float64) {
	fyneapp.Do(func() {
		w.volumeSlider.Value = volume
		w.volumeSlider.Refresh()
	})
}

// SetTrackInfo updates the displayed track information.
func (w *MainWindow) SetTrackInfo(title, artist, album string) {
	// Format: "Artist - Title"
	var text string
	if artist != "" && title != "" {
		text = fmt.Sprintf("%s - %s", artist, title)
	} else if title != "" {
		text = title
	} else {
		text = APPNAME
	}
	if album != "" && title != "" {
		text = fmt.Sprintf("%s (%s)", text, album)
	}

	// Update rotator for scrolling text
	w.rotatorMu.Lock()
	w.rotator = widgets.NewRotator(text, infoWidth)
	w.rotatorMu.Unlock()

	fyneapp.Do(func() {
		w.songInfo.SetText(text)
		w.window.SetTitle(fmt.Sprintf("%s - %s", APPNAME, text))
	})
}

// SetAlbumArt updates the album artwork.
func (w *MainWindow) SetAlbumArt(imageData []byte) {
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		// If decode fails, use default
		w.ClearAlbumArt()
		return
	}

	fyneapp.Do(func() {
		w.cover.SetCover(img)
	})
}

// ClearAlbumArt resets the album artwork to default.
func (w *MainWindow) ClearAlbumArt() {
	fyneapp.Do(w.cover.Reset)
}

// SetCurrentTime updates the current playback time display.
func (w *MainWindow) SetCurrentTime(seconds float64) {
	fyneapp.Do(func() {
		w.currentTime.SetText(formatTime(seconds))
	})
}

// SetTotalTime updates the total track duration display.
func (w *MainWindow) SetTotalTime(seconds float64) {
	fyneapp.Do(func() {
		w.endTime.SetText(formatTime(seconds))
		if math.IsNaN(seconds) || seconds <= 0 {
			w.progressSlider.Value = 0
			w.progressSlider.Refresh()
		}
	})
}

// SetProgress updates the progress slider position.
func (w *MainWindow) SetProgress(position, duration float64) {
	if math.IsNaN(duration) || duration <= 0 {
		return
	}
	fyneapp.Do(func() {
		if w.dragging {
			return
		}
		w.progressSlider.Value = progressFraction(position, duration)
		w.progressSlider.Refresh()
	})
}

// progressFraction is the slider value for position, clamped to [0,1].
func progressFraction(position, duration float64) float64 {
	if math.IsNaN(position) || math.IsNaN(duration) || duration <= 0 || position <= 0 {
		return 0
	}
	return math.Min(position/duration, 1)
}

// UpdatePlaylistSelection updates the selected track in the playlist view.
func (w *MainWindow) UpdatePlaylistSelection(index int) {
	w.playlistMu.Lock()
	pw := w.playlistWindow
	w.playlistMu.Unlock()

	if pw != nil {
		pw.SetSelected(index)
	}
}

// ShowPlaylistWindow opens the playlist window, or focuses it if already open.
func (w *MainWindow) ShowPlaylistWindow() {
	fyneapp.Do(func() {
		w.playlistMu.Lock()
		defer w.playlistMu.Unlock()

		if w.playlistWindow != nil {
			w.playlistWindow.Show()
			w.playlistWindow.window.RequestFocus()
			return
		}

		pw := NewPlaylistWindow(w.app, w.presenter, w.presenter.EventBus)
		pw.SetOnWindowClosed(func() {
			w.playlistMu.Lock()
			if w.playlistWindow == pw {
				w.playlistWindow = nil
			}
			w.playlistMu.Unlock()
		})
		w.playlistWindow = pw
		pw.Show()
	})
}

// ClosePlaylistWindow closes the playlist window if it is open.
func (w *MainWindow) ClosePlaylistWindow() {
	w.playlistMu.Lock()
	pw := w.playlistWindow
	w.playlistWindow = nil
	w.playlistMu.Unlock()

	if pw != nil {
		fyneapp.Do(pw.Close)
	}
}

// IsPlaylistWindowOpen reports whether the playlist window is open.
func (w *MainWindow) IsPlaylistWindowOpen() bool {
	w.playlistMu.Lock()
	defer w.playlistMu.Unlock()
	return w.playlistWindow != nil
}

// ShowNotification displays a system notification.
func (w *MainWindow) ShowNotification(title, message string) {
	w.app.SendNotification(fyneapp.NewNotification(title, message))
}

// formatTime renders seconds as mm:ss, or --:-- when unknown.
func formatTime(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return "--:--"
	}
	return fmt.Sprintf("%.2d:%.2d", int(seconds/60), int(math.Mod(seconds, 60)))
}

func importanceFor(active bool) widget.Importance {
	if active {
		return widget.HighImportance
	}
	return widget.MediumImportance
}

// Verify UIView implementation
var _ UIView = (*MainWindow)(nil)
