package validate

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/engine/enginerr"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/media/ffprobe"
)

// supportedExtensions is the input gate. Extensions outside this set are
// rejected before any probe runs.
var supportedExtensions = map[string]struct{}{
	".mp3":  {},
	".wav":  {},
	".ogg":  {},
	".flac": {},
	".aac":  {},
	".m4a":  {},
	".wma":  {},
	".aiff": {},
}

// SupportedExtensions returns the accepted input extensions, sorted, without dots.
func SupportedExtensions() []string {
	out := make([]string, 0, len(supportedExtensions))
	for ext := range supportedExtensions {
		out = append(out, strings.TrimPrefix(ext, "."))
	}
	sort.Strings(out)
	return out
}

// FileGate validates one input file before it can reach a handler: the path
// must exist and be readable, the extension supported, the size within the
// configured limit, and a probe must succeed.
type FileGate struct {
	ProbeBinary  string
	MaxSizeBytes int64

	// Probe overrides the probe implementation; nil means ffprobe.Probe.
	Probe func(ctx context.Context, binary, path string) (ffprobe.Asset, error)
}

// Check runs all file checks in order and returns the probed asset on
// success. Each failure carries the typed kind the wire schema reports.
func (g FileGate) Check(ctx context.Context, path string) (ffprobe.Asset, *enginerr.Error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ffprobe.Asset{}, enginerr.New(enginerr.KindInvalidFile, path, "file does not exist")
		}
		return ffprobe.Asset{}, enginerr.Wrap(enginerr.KindInvalidFile, path, "file is not accessible", err)
	}
	if info.IsDir() {
		return ffprobe.Asset{}, enginerr.New(enginerr.KindInvalidFile, path, "path is a directory")
	}

	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := supportedExtensions[ext]; !ok {
		return ffprobe.Asset{}, enginerr.Newf(enginerr.KindUnsupportedFormat, path,
			"unsupported file format %q (supported: %s)", ext, strings.Join(SupportedExtensions(), ", "))
	}

	if g.MaxSizeBytes > 0 && info.Size() > g.MaxSizeBytes {
		return ffprobe.Asset{}, enginerr.Newf(enginerr.KindFileTooLarge, path,
			"file size %.2f MB exceeds limit of %d MB",
			float64(info.Size())/(1024*1024), g.MaxSizeBytes/(1024*1024))
	}

	file, err := os.Open(path)
	if err != nil {
		return ffprobe.Asset{}, enginerr.Wrap(enginerr.KindInvalidFile, path, "file is not readable", err)
	}
	_ = file.Close()

	probe := g.Probe
	if probe == nil {
		probe = ffprobe.Probe
	}
	asset, probeErr := probe(ctx, g.ProbeBinary, path)
	if probeErr != nil {
		return ffprobe.Asset{}, enginerr.AsError(probeErr, path)
	}
	return asset, nil
}
