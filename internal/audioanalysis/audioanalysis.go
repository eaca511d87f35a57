// Package audioanalysis decodes audio content and classifies it as music,
// podcast, or voice. The classification drives the mastering preset
// suggestion when a request does not pin one. WAV, MP3, and Ogg Vorbis are
// decoded natively; other containers must be bounced to WAV first.
package audioanalysis

import (
	"errors"
	"fmt"
)

// Kind is a content classification. The values match the mastering preset
// names so a suggestion can be fed straight back into a master request.
type Kind string

const (
	KindMusic   Kind = "music"
	KindPodcast Kind = "podcast"
	KindVoice   Kind = "voice"
)

// ErrNeedTranscode reports a container the native decoders cannot read.
// Callers are expected to bounce the file to WAV and retry.
var ErrNeedTranscode = errors.New("format requires transcoding before analysis")

// suggestWindowSeconds bounds how much audio is decoded for classification.
const suggestWindowSeconds = 60

// Suggest decodes up to a minute of the file and classifies its content.
func Suggest(path string) (Kind, Features, error) {
	clip, err := DecodeFile(path, suggestWindowSeconds)
	if err != nil {
		return "", Features{}, err
	}
	features := Extract(clip)
	return Classify(features), features, nil
}

// TargetLUFS maps a classification to the loudness target of the matching
// mastering preset.
func TargetLUFS(kind Kind, music, podcast, voice float64) (float64, error) {
	switch kind {
	case KindMusic:
		return music, nil
	case KindPodcast:
		return podcast, nil
	case KindVoice:
		return voice, nil
	default:
		return 0, fmt.Errorf("unknown content kind %q", kind)
	}
}
