// Package preflight verifies the engine's runtime environment: the external
// tool binaries, the directories it writes into, and free disk space. The
// status command renders these results.
package preflight

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/config"
)

// minFreeBytes is the floor below which the temp directory check fails.
// Mastering keeps up to three intermediate WAV renditions per file.
const minFreeBytes = 512 * 1024 * 1024

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every applicable check for the given config.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	results := []Result{
		CheckBinary("FFmpeg", cfg.Tools.FFmpeg, "required for all processing operations"),
		CheckBinary("FFprobe", cfg.Tools.FFprobe, "required for input validation and analysis"),
		CheckDirectoryAccess("Temp directory", cfg.Paths.TempDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
	if cfg.Paths.TempDir != "" {
		results = append(results, CheckDiskSpace("Temp disk space", cfg.Paths.TempDir, minFreeBytes))
	}
	return results
}

// Passed reports whether every result passed.
func Passed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}

// CheckBinary verifies an external tool is resolvable. Absolute paths are
// stat'ed directly by LookPath; bare names go through PATH lookup.
func CheckBinary(name, command, description string) Result {
	command = strings.TrimSpace(command)
	if command == "" {
		return Result{Name: name, Detail: "command not configured"}
	}
	resolved, err := exec.LookPath(command)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("binary %q not found (%s)", command, description)}
	}
	return Result{Name: name, Passed: true, Detail: resolved}
}

// CheckDirectoryAccess verifies the directory exists and is read/write/exec
// accessible to this process.
func CheckDirectoryAccess(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDiskSpace verifies the filesystem holding path has at least minBytes
// available to this process.
func CheckDiskSpace(name, path string, minBytes uint64) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (statfs: %v)", path, err)}
	}
	available := stat.Bavail * uint64(stat.Bsize)
	detail := fmt.Sprintf("%s (%.1f GB free)", path, float64(available)/(1<<30))
	if available < minBytes {
		return Result{Name: name, Detail: detail + ", below minimum"}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}
