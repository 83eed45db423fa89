// Package widgets provides custom Fyne widgets for the TuneBox player.
package widgets

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// CoverArt shows the current track's cover, falling back to a music icon.
// Double-tap and right-click are forwarded to the owner.
type CoverArt struct {
	widget.BaseWidget

	image *canvas.Image

	OnDoubleTapped func()
	OnMenu         func(*fyne.PointEvent)
}

// NewCoverArt creates a cover showing the placeholder icon.
func NewCoverArt() *CoverArt {
	c := &CoverArt{
		image: canvas.NewImageFromResource(theme.MediaMusicIcon()),
	}
	c.image.FillMode = canvas.ImageFillContain
	c.ExtendBaseWidget(c)
	return c
}

// CreateRenderer implements fyne.Widget.
func (c *CoverArt) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(c.image)
}

// SetCover displays img. Must run on the Fyne thread.
func (c *CoverArt) SetCover(img image.Image) {
	if img == nil {
		c.Reset()
		return
	}
	c.image.Resource = nil
	c.image.Image = img
	c.image.Refresh()
}

// Reset restores the placeholder icon. Must run on the Fyne thread.
func (c *CoverArt) Reset() {
	c.image.Image = nil
	c.image.Resource = theme.MediaMusicIcon()
	c.image.Refresh()
}

// HasCover reports whether a decoded cover is showing.
func (c *CoverArt) HasCover() bool {
	return c.image.Image != nil
}

// DoubleTapped implements fyne.DoubleTappable.
func (c *CoverArt) DoubleTapped(*fyne.PointEvent) {
	if c.OnDoubleTapped != nil {
		c.OnDoubleTapped()
	}
}

// TappedSecondary implements fyne.SecondaryTappable.
func (c *CoverArt) TappedSecondary(pe *fyne.PointEvent) {
	if c.OnMenu != nil {
		c.OnMenu(pe)
	}
}

var (
	_ fyne.DoubleTappable    = (*CoverArt)(nil)
	_ fyne.SecondaryTappable = (*CoverArt)(nil)
)
