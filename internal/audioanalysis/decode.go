package audioanalysis

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

// Clip is decoded PCM, interleaved, normalized to [-1, 1].
type Clip struct {
	Samples    []float32
	SampleRate int
	Channels   int
}

// Duration reports the decoded length in seconds.
func (c Clip) Duration() float64 {
	if c.SampleRate == 0 || c.Channels == 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate*c.Channels)
}

// DecodeFile reads up to maxSeconds of audio from path. The decoder is
// picked by extension; unsupported extensions return ErrNeedTranscode.
func DecodeFile(path string, maxSeconds float64) (Clip, error) {
	file, err := os.Open(path)
	if err != nil {
		return Clip{}, fmt.Errorf("open for analysis: %w", err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return decodeWAV(file, maxSeconds)
	case ".mp3":
		return decodeMP3(file, maxSeconds)
	case ".ogg":
		return decodeOgg(file, maxSeconds)
	default:
		return Clip{}, ErrNeedTranscode
	}
}

func sampleBudget(maxSeconds float64, sampleRate, channels int) int {
	if maxSeconds <= 0 {
		maxSeconds = suggestWindowSeconds
	}
	return int(maxSeconds * float64(sampleRate*channels))
}

func decodeWAV(file *os.File, maxSeconds float64) (Clip, error) {
	decoder := wav.NewDecoder(file)
	decoder.ReadInfo()
	if !decoder.IsValidFile() {
		return Clip{}, errors.New("not a valid wav file")
	}

	if decoder.BitDepth < 8 || decoder.BitDepth > 32 {
		return Clip{}, fmt.Errorf("unsupported wav bit depth %d", decoder.BitDepth)
	}

	clip := Clip{
		SampleRate: int(decoder.SampleRate),
		Channels:   int(decoder.NumChans),
	}
	scale := float32(int64(1) << (decoder.BitDepth - 1))
	budget := sampleBudget(maxSeconds, clip.SampleRate, clip.Channels)

	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{NumChannels: clip.Channels, SampleRate: clip.SampleRate},
		Data:   make([]int, 4096),
	}
	for len(clip.Samples) < budget {
		n, err := decoder.PCMBuffer(buf)
		if n == 0 {
			break
		}
		for _, v := range buf.Data[:n] {
			clip.Samples = append(clip.Samples, float32(v)/scale)
		}
		if err != nil {
			break
		}
	}
	if len(clip.Samples) == 0 {
		return Clip{}, errors.New("wav file contains no samples")
	}
	return clip, nil
}

func decodeMP3(file *os.File, maxSeconds float64) (Clip, error) {
	decoder, err := gomp3.NewDecoder(file)
	if err != nil {
		return Clip{}, fmt.Errorf("decode mp3: %w", err)
	}

	// go-mp3 always emits 16-bit stereo PCM.
	clip := Clip{SampleRate: decoder.SampleRate(), Channels: 2}
	budget := sampleBudget(maxSeconds, clip.SampleRate, clip.Channels)

	buf := make([]byte, 8192)
	for len(clip.Samples) < budget {
		n, err := decoder.Read(buf)
		for i := 0; i+1 < n; i += 2 {
			v := int16(uint16(buf[i]) | uint16(buf[i+1])<<8)
			clip.Samples = append(clip.Samples, float32(v)/32768.0)
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return Clip{}, fmt.Errorf("decode mp3: %w", err)
		}
		if n == 0 {
			break
		}
	}
	if len(clip.Samples) == 0 {
		return Clip{}, errors.New("mp3 file contains no samples")
	}
	return clip, nil
}

func decodeOgg(file *os.File, maxSeconds float64) (Clip, error) {
	reader, err := oggvorbis.NewReader(file)
	if err != nil {
		return Clip{}, fmt.Errorf("decode ogg: %w", err)
	}

	clip := Clip{SampleRate: reader.SampleRate(), Channels: reader.Channels()}
	budget := sampleBudget(maxSeconds, clip.SampleRate, clip.Channels)

	buf := make([]float32, 4096)
	for len(clip.Samples) < budget {
		n, err := reader.Read(buf)
		clip.Samples = append(clip.Samples, buf[:n]...)
		if err != nil {
			if err == io.EOF {
				break
			}
			return Clip{}, fmt.Errorf("decode ogg: %w", err)
		}
		if n == 0 {
			break
		}
	}
	if len(clip.Samples) == 0 {
		return Clip{}, errors.New("ogg file contains no samples")
	}
	return clip, nil
}
