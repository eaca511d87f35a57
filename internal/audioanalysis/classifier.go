package audioanalysis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/media/ffmpeg"
)

// Classifier suggests a content kind for any supported input. Containers the
// native decoders cannot read are bounced through ffmpeg into a short mono
// WAV first.
type Classifier struct {
	Runner  *ffmpeg.Runner
	TempDir string
}

// Suggest classifies the file at path.
func (c *Classifier) Suggest(ctx context.Context, path string) (Kind, Features, error) {
	kind, features, err := Suggest(path)
	if err == nil {
		return kind, features, nil
	}
	if !errors.Is(err, ErrNeedTranscode) || c.Runner == nil {
		return "", Features{}, err
	}

	dir, err := os.MkdirTemp(c.TempDir, "analysis-")
	if err != nil {
		return "", Features{}, fmt.Errorf("create analysis workspace: %w", err)
	}
	defer os.RemoveAll(dir)

	bounce := filepath.Join(dir, "bounce.wav")
	args := []string{
		"-y", "-hide_banner", "-nostdin",
		"-i", path,
		"-t", fmt.Sprintf("%d", suggestWindowSeconds),
		"-vn", "-ac", "1",
		"-c:a", "pcm_s16le",
		bounce,
	}
	if result, err := c.Runner.Run(ctx, args, nil); err != nil {
		return "", Features{}, fmt.Errorf("bounce for analysis (exit %d): %w", result.ExitCode, err)
	}
	return Suggest(bounce)
}
