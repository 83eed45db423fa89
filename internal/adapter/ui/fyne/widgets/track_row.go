package widgets

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// TrackRow is one playlist entry: the track text on the left and its
// duration on the right. The current track is drawn bold.
//
// Rows are recycled by widget.List, so the index a row reports travels with
// Bind rather than being fixed at construction.
type TrackRow struct {
	widget.BaseWidget

	text     *widget.Label
	duration *widget.Label
	index    int

	onPlay func(index int)
	onMenu func(index int, pos fyne.Position)
}

// NewTrackRow creates a row; onPlay fires on double-tap, onMenu on right-click.
func NewTrackRow(onPlay func(index int), onMenu func(index int, pos fyne.Position)) *TrackRow {
	r := &TrackRow{
		text:     widget.NewLabel(""),
		duration: widget.NewLabel(""),
		index:    -1,
		onPlay:   onPlay,
		onMenu:   onMenu,
	}
	r.text.Truncation = fyne.TextTruncateEllipsis
	r.duration.Alignment = fyne.TextAlignTrailing
	r.ExtendBaseWidget(r)
	return r
}

// CreateRenderer implements fyne.Widget.
func (r *TrackRow) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewBorder(nil, nil, nil, r.duration, r.text))
}

// Bind sets the index reported to the callbacks and updates what the row shows.
func (r *TrackRow) Bind(index int, text, duration string, current bool) {
	r.index = index
	r.text.TextStyle = fyne.TextStyle{Bold: current}
	r.text.SetText(text)
	r.duration.SetText(duration)
}

// Index returns the bound index, or -1 before the first Bind.
func (r *TrackRow) Index() int {
	return r.index
}

// Text returns the displayed track text.
func (r *TrackRow) Text() string {
	return r.text.Text
}

// DoubleTapped implements fyne.DoubleTappable.
func (r *TrackRow) DoubleTapped(*fyne.PointEvent) {
	if r.onPlay != nil && r.index >= 0 {
		r.onPlay(r.index)
	}
}

// TappedSecondary implements fyne.SecondaryTappable.
func (r *TrackRow) TappedSecondary(pe *fyne.PointEvent) {
	if r.onMenu != nil && r.index >= 0 {
		r.onMenu(r.index, pe.AbsolutePosition)
	}
}

var (
	_ fyne.DoubleTappable    = (*TrackRow)(nil)
	_ fyne.SecondaryTappable = (*TrackRow)(nil)
)
