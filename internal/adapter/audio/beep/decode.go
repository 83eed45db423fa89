package beep

import (
	"math"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"

	"github.com/tejashwikalptaru/tunebox/internal/adapter/localfs"
	"github.com/tejashwikalptaru/tunebox/internal/domain"
	"github.com/tejashwikalptaru/tunebox/internal/ports"
)

// decodeFunc turns an opened source into a seekable PCM stream.
type decodeFunc func(src *ports.Source) (beep.StreamSeekCloser, beep.Format, error)

func decodeMP3(src *ports.Source) (beep.StreamSeekCloser, beep.Format, error) {
	return mp3.Decode(src.Reader)
}

func decodeWAV(src *ports.Source) (beep.StreamSeekCloser, beep.Format, error) {
	return wav.Decode(src.Reader)
}

func decodeFLAC(src *ports.Source) (beep.StreamSeekCloser, beep.Format, error) {
	return flac.Decode(src.Reader)
}

func decodeVorbis(src *ports.Source) (beep.StreamSeekCloser, beep.Format, error) {
	return vorbis.Decode(src.Reader)
}

// decoders maps media types to the decoder able to read them.
var decoders = map[string]decodeFunc{
	"audio/mpeg":   decodeMP3,
	"audio/mp3":    decodeMP3,
	"audio/wav":    decodeWAV,
	"audio/wave":   decodeWAV,
	"audio/x-wav":  decodeWAV,
	"audio/flac":   decodeFLAC,
	"audio/x-flac": decodeFLAC,
	"audio/ogg":    decodeVorbis,
	"audio/vorbis": decodeVorbis,
}

// decoderFor picks a decoder from the declared media type, falling back to the
// file name's extension.
func decoderFor(mediaType, name string) (decodeFunc, error) {
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = strings.TrimSpace(mediaType[:i])
	}
	if dec, ok := decoders[mediaType]; ok {
		return dec, nil
	}
	if dec, ok := decoders[localfs.MediaTypeForName(name)]; ok {
		return dec, nil
	}
	return nil, errors.Wrapf(domain.ErrUnsupportedFormat, "%s (%s)", name, mediaType)
}

// applyLevel maps a linear level in [0, 1] onto a base-2 volume effect.
// Level 1 leaves the signal untouched; level 0 silences it.
func applyLevel(v *effects.Volume, level float64) {
	if level <= 0 {
		v.Silent = true
		v.Volume = 0
		return
	}
	v.Silent = false
	v.Volume = math.Log2(math.Min(level, 1))
}
