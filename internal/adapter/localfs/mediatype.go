// Package localfs adapts the operating system filesystem to the file chooser port.
package localfs

import (
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/gabriel-vasile/mimetype"
)

// octetStream is what content sniffing reports when it recognizes nothing.
const octetStream = "application/octet-stream"

// extensionTypes is the declared media type for every extension a desktop
// file chooser would label as audio.
var extensionTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".mp2":  "audio/mpeg",
	".mp1":  "audio/mpeg",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".opus": "audio/opus",
	".wav":  "audio/wav",
	".aif":  "audio/aiff",
	".aiff": "audio/aiff",
	".flac": "audio/flac",
	".fla":  "audio/flac",
	".aac":  "audio/aac",
	".m4a":  "audio/mp4",
	".m4b":  "audio/mp4",
	".wma":  "audio/x-ms-wma",
	".wv":   "audio/wavpack",
	".ape":  "audio/ape",
	".mpc":  "audio/musepack",
	".tta":  "audio/tta",
	".ac3":  "audio/ac3",
	".mid":  "audio/midi",
	".midi": "audio/midi",
	".mod":  "audio/x-mod",
	".xm":   "audio/x-xm",
	".it":   "audio/x-it",
	".s3m":  "audio/x-s3m",
}

// tagTypes maps container types recognized by dhowden/tag to media types.
var tagTypes = map[tag.FileType]string{
	tag.MP3:  "audio/mpeg",
	tag.M4A:  "audio/mp4",
	tag.M4B:  "audio/mp4",
	tag.M4P:  "audio/mp4",
	tag.ALAC: "audio/mp4",
	tag.FLAC: "audio/flac",
	tag.OGG:  "audio/ogg",
	tag.DSF:  "audio/dsf",
}

// IsAudio reports whether a media type names audio content.
func IsAudio(mediaType string) bool {
	return strings.HasPrefix(mediaType, "audio/")
}

// MediaTypeForName returns the declared media type for a file name,
// or "" when the extension is unknown.
func MediaTypeForName(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return ""
	}
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		// Drop parameters such as "; charset=utf-8"
		if i := strings.IndexByte(t, ';'); i >= 0 {
			t = strings.TrimSpace(t[:i])
		}
		return t
	}
	return ""
}

// SupportedExtensions returns the audio extensions known to the chooser.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(extensionTypes))
	for ext := range extensionTypes {
		exts = append(exts, ext)
	}
	return exts
}

// sniff detects a media type from content.
// mimetype runs first; for containers it cannot name, dhowden/tag gets a try.
func sniff(r io.ReadSeeker) string {
	detected := octetStream
	if m, err := mimetype.DetectReader(r); err == nil {
		detected = m.String()
		if i := strings.IndexByte(detected, ';'); i >= 0 {
			detected = strings.TrimSpace(detected[:i])
		}
	}
	if detected == "application/ogg" {
		detected = "audio/ogg"
	}
	if detected != octetStream {
		return detected
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return octetStream
	}
	if _, fileType, err := tag.Identify(r); err == nil {
		if t, ok := tagTypes[fileType]; ok {
			return t
		}
	}
	return octetStream
}
