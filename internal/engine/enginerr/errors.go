package enginerr

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var errDeadline = context.DeadlineExceeded

// Kind identifies a failure category. Kind strings cross the process boundary
// verbatim in the wire schema's error records.
type Kind string

const (
	KindInvalidFile       Kind = "InvalidFileError"
	KindUnsupportedFormat Kind = "UnsupportedFormatError"
	KindFileTooLarge      Kind = "FileTooLargeError"
	KindInvalidParameter  Kind = "InvalidParameterError"
	KindRange             Kind = "RangeError"

	KindEncode        Kind = "EncodeError"
	KindProbe         Kind = "ProbeError"
	KindCompression   Kind = "CompressionError"
	KindNormalization Kind = "NormalizationError"
	KindLimiting      Kind = "LimitingError"
	KindTrim          Kind = "TrimError"
	KindModify        Kind = "ModifyError"

	KindProtocol Kind = "ProtocolError"
	KindTimeout  Kind = "TimeoutError"
	KindInternal Kind = "InternalError"
)

// FileScoped reports whether a failure of this kind is recovered at the
// per-file boundary. Protocol and timeout failures abort the invocation.
func (k Kind) FileScoped() bool {
	switch k {
	case KindProtocol, KindTimeout:
		return false
	default:
		return true
	}
}

// Validation reports whether the kind belongs to the validation family, i.e.
// the failure was detected before any external tool ran.
func (k Kind) Validation() bool {
	switch k {
	case KindInvalidFile, KindUnsupportedFormat, KindFileTooLarge, KindInvalidParameter, KindRange:
		return true
	default:
		return false
	}
}

// Error is the typed failure shared by every engine component.
type Error struct {
	Kind     Kind
	Path     string
	Message  string
	ExitCode int    // external tool exit code, 0 when not applicable
	Stderr   string // bounded excerpt of tool stderr
	Err      error
}

// New constructs an Error without an underlying cause.
func New(kind Kind, path, message string) *Error {
	return &Error{Kind: kind, Path: path, Message: message}
}

// Newf constructs an Error with a formatted message.
func Newf(kind Kind, path, format string, args ...any) *Error {
	return &Error{Kind: kind, Path: path, Message: fmt.Sprintf(format, args...)}
}

// Wrap constructs an Error carrying an underlying cause. The cause's text is
// appended to the message so wire consumers see it without unwrapping.
func Wrap(kind Kind, path, message string, err error) *Error {
	if err != nil {
		var typed *Error
		if errors.As(err, &typed) && message == "" {
			// Preserve the inner record wholesale when no new context is added.
			return typed
		}
	}
	return &Error{Kind: kind, Path: path, Message: message, Err: err}
}

func (e *Error) Error() string {
	parts := make([]string, 0, 3)
	parts = append(parts, string(e.Kind))
	if msg := strings.TrimSpace(e.Message); msg != "" {
		parts = append(parts, msg)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error { return e.Err }

// WireMessage returns the human-readable message for the wire schema,
// falling back to the underlying cause.
func (e *Error) WireMessage() string {
	if msg := strings.TrimSpace(e.Message); msg != "" {
		if e.Err != nil {
			return msg + ": " + e.Err.Error()
		}
		return msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

// KindOf classifies an arbitrary error. Errors that do not carry a Kind are
// treated as internal failures; context deadline expiry maps to TimeoutError.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind
	}
	if errors.Is(err, errDeadline) {
		return KindTimeout
	}
	return KindInternal
}

// AsError coerces err into an *Error, wrapping unknown errors as InternalError
// scoped to path. An unscoped typed error is copied before the path is set, so
// one shared value classified for several files never leaks the first path.
func AsError(err error, path string) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		if typed.Path == "" && path != "" {
			scoped := *typed
			scoped.Path = path
			return &scoped
		}
		return typed
	}
	kind := KindInternal
	if errors.Is(err, errDeadline) {
		kind = KindTimeout
	}
	return &Error{Kind: kind, Path: path, Message: err.Error(), Err: err}
}
