package fyne

import (
	"log/slog"
	"path/filepath"
	"slices"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"

	"github.com/tejashwikalptaru/tunebox/internal/adapter/localfs"
)

// browseHistory remembers the folder the user last picked from so the next
// dialog opens there.
type browseHistory struct {
	mu  sync.Mutex
	dir string
}

func (h *browseHistory) remember(dir string) {
	h.mu.Lock()
	h.dir = dir
	h.mu.Unlock()
}

// location returns the remembered folder, or nil if none is usable.
func (h *browseHistory) location() fyne.ListableURI {
	h.mu.Lock()
	dir := h.dir
	h.mu.Unlock()
	if dir == "" {
		return nil
	}
	uri, err := storage.ListerForURI(storage.NewFileURI(dir))
	if err != nil {
		return nil
	}
	return uri
}

// audioFilter limits the file dialog to the extensions localfs recognises.
func audioFilter() storage.FileFilter {
	exts := localfs.SupportedExtensions()
	slices.Sort(exts)
	return storage.NewExtensionFileFilter(exts)
}

// FileDialog opens one audio file. Fyne's dialog picks a single file;
// drag and drop covers several at once.
type FileDialog struct {
	window   fyne.Window
	history  *browseHistory
	callback func([]string)
	logger   *slog.Logger
}

// NewFileDialog creates a file dialog that reports the chosen path to callback.
func NewFileDialog(window fyne.Window, history *browseHistory, callback func([]string), logger *slog.Logger) *FileDialog {
	return &FileDialog{
		window:   window,
		history:  history,
		callback: callback,
		logger:   logger,
	}
}

// Show displays the dialog.
func (d *FileDialog) Show() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			d.logger.Error("file dialog error", slog.Any("error", err))
			dialog.ShowError(err, d.window)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		_ = reader.Close()

		d.history.remember(filepath.Dir(path))
		if d.callback != nil {
			d.callback([]string{path})
		}
	}, d.window)
	fd.SetFilter(audioFilter())
	if loc := d.history.location(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

// FolderDialog picks a folder to scan for audio.
type FolderDialog struct {
	window   fyne.Window
	history  *browseHistory
	callback func(string)
	logger   *slog.Logger
}

// NewFolderDialog creates a folder dialog that reports the chosen path to callback.
func NewFolderDialog(window fyne.Window, history *browseHistory, callback func(string), logger *slog.Logger) *FolderDialog {
	return &FolderDialog{
		window:   window,
		history:  history,
		callback: callback,
		logger:   logger,
	}
}

// Show displays the dialog.
func (d *FolderDialog) Show() {
	fd := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			d.logger.Error("folder dialog error", slog.Any("error", err))
			dialog.ShowError(err, d.window)
			return
		}
		if uri == nil {
			return
		}
		path := uri.Path()

		d.history.remember(filepath.Dir(path))
		if d.callback != nil {
			d.callback(path)
		}
	}, d.window)
	if loc := d.history.location(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}
