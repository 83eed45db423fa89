package fyne

// AboutContent contains the Markdown content for the About dialog.
const AboutContent = `A lightweight music player built with Go and Fyne.

**Features:**
- Bundled tracks from a manifest, plus your own files and folders
- Play MP3, FLAC, WAV and Ogg Vorbis
- Shuffle, repeat one and repeat all
- Drag and drop files onto the window

**Shortcuts:**
- Space: play / pause
- Alt+Left / Alt+Right: previous / next
- Alt+Up / Alt+Down: volume
`
