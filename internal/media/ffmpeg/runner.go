package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var commandContext = exec.CommandContext

// Result captures the observable outcome of one ffmpeg invocation.
type Result struct {
	ExitCode   int
	StderrTail string
}

// Option configures the runner.
type Option func(*Runner)

// WithStderrLimit bounds the retained stderr tail in bytes.
func WithStderrLimit(limit int) Option {
	return func(r *Runner) {
		if limit > 0 {
			r.stderrLimit = limit
		}
	}
}

// Runner wraps the external ffmpeg binary. The binary is treated as a black
// box: arguments in, exit code and stderr out.
type Runner struct {
	binary      string
	stderrLimit int
}

// NewRunner constructs a Runner for the given binary.
func NewRunner(binary string, opts ...Option) *Runner {
	runner := &Runner{binary: strings.TrimSpace(binary), stderrLimit: 2048}
	if runner.binary == "" {
		runner.binary = "ffmpeg"
	}
	for _, opt := range opts {
		opt(runner)
	}
	return runner
}

// Binary returns the configured executable.
func (r *Runner) Binary() string { return r.binary }

// Run executes ffmpeg with the provided arguments, streaming stderr lines to
// onLine as they arrive. The returned Result always carries the bounded
// stderr tail, also on failure.
func (r *Runner) Run(ctx context.Context, args []string, onLine func(string)) (Result, error) {
	cmd := commandContext(ctx, r.binary, args...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Result{}, fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("start %s: %w", r.binary, err)
	}

	tail := newTailBuffer(r.stderrLimit)
	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanner.Split(scanCarriageOrNewline)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}
		tail.WriteLine(line)
		if onLine != nil {
			onLine(line)
		}
	}
	scanErr := scanner.Err()

	waitErr := cmd.Wait()
	result := Result{StderrTail: tail.String()}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
		}
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		return result, fmt.Errorf("%s exited with code %d", r.binary, result.ExitCode)
	}
	if scanErr != nil {
		return result, fmt.Errorf("read %s output: %w", r.binary, scanErr)
	}
	return result, nil
}

// ffmpeg terminates progress updates with carriage returns, so both \r and \n
// delimit records.
func scanCarriageOrNewline(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// tailBuffer keeps the most recent lines up to a byte budget.
type tailBuffer struct {
	limit int
	lines []string
	size  int
}

func newTailBuffer(limit int) *tailBuffer {
	return &tailBuffer{limit: limit}
}

func (b *tailBuffer) WriteLine(line string) {
	b.lines = append(b.lines, line)
	b.size += len(line) + 1
	for b.size > b.limit && len(b.lines) > 1 {
		b.size -= len(b.lines[0]) + 1
		b.lines = b.lines[1:]
	}
}

func (b *tailBuffer) String() string {
	return strings.Join(b.lines, "\n")
}
