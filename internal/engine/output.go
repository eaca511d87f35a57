package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// reservedNameChars are stripped from output base names so results are
// writable on every filesystem the outputs may land on.
const reservedNameChars = `<>:"/\|?*`

// SanitizeBaseName reduces an arbitrary file stem to a portable one. Control
// characters and reserved punctuation are dropped, surrounding dots and
// spaces trimmed. An empty result falls back to "audio".
func SanitizeBaseName(base string) string {
	var builder strings.Builder
	for _, r := range base {
		if r < 0x20 || strings.ContainsRune(reservedNameChars, r) {
			continue
		}
		builder.WriteRune(r)
	}
	cleaned := strings.Trim(builder.String(), ". ")
	if cleaned == "" {
		return "audio"
	}
	return cleaned
}

// OutputStem returns the sanitized stem of an input path.
func OutputStem(inputPath string) string {
	base := filepath.Base(inputPath)
	return SanitizeBaseName(strings.TrimSuffix(base, filepath.Ext(base)))
}

// UniqueOutputPath joins dir, stem, and extension into a path that does not
// collide with an existing file, appending _1, _2, ... before the extension
// until the name is free. The extension includes the leading dot.
func UniqueOutputPath(dir, stem, ext string) string {
	var nilAllocator *PathAllocator
	return nilAllocator.Allocate(dir, stem, ext)
}

// PathAllocator hands out collision-free output paths. Beyond checking the
// filesystem it remembers its own allocations, so two batch workers writing
// the same stem never receive the same path.
type PathAllocator struct {
	mu    sync.Mutex
	taken map[string]struct{}
}

// NewPathAllocator builds an allocator scoped to one batch.
func NewPathAllocator() *PathAllocator {
	return &PathAllocator{taken: make(map[string]struct{})}
}

// Allocate returns dir/stem+ext, suffixed with _1, _2, ... until the name
// collides with neither an existing file nor an earlier allocation. A nil
// receiver checks the filesystem only.
func (a *PathAllocator) Allocate(dir, stem, ext string) string {
	if a != nil {
		a.mu.Lock()
		defer a.mu.Unlock()
	}
	candidate := filepath.Join(dir, stem+ext)
	for n := 1; ; n++ {
		if a.free(candidate) {
			if a != nil {
				a.taken[candidate] = struct{}{}
			}
			return candidate
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, n, ext))
	}
}

func (a *PathAllocator) free(candidate string) bool {
	if a != nil {
		if _, reserved := a.taken[candidate]; reserved {
			return false
		}
	}
	_, err := os.Stat(candidate)
	return errors.Is(err, fs.ErrNotExist)
}
