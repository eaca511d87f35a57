package engine

import (
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/engine/enginerr"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/media/ffmpeg"
)

// ToolFailure classifies a failed external tool invocation. Deadline expiry
// keeps its TimeoutError identity; everything else becomes the stage kind
// with the exit code and bounded stderr excerpt attached.
func ToolFailure(kind enginerr.Kind, path, message string, result ffmpeg.Result, err error) *enginerr.Error {
	if typed := enginerr.AsError(err, path); typed != nil && typed.Kind == enginerr.KindTimeout {
		return typed
	}
	return &enginerr.Error{
		Kind:     kind,
		Path:     path,
		Message:  message,
		ExitCode: result.ExitCode,
		Stderr:   result.StderrTail,
		Err:      err,
	}
}
