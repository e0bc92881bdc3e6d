package esfs2

import (
	"errors"
	"fmt"
)

// Kind classifies an Error, mirroring the driver error kinds from the
// EssenceFS2 specification: structural validation failures are distinct
// from "wrong node type," "not found," and device-level failures, so a
// host can decide what to do (retry, fall through to another filesystem,
// abort the boot) based on which it got.
type Kind int

const (
	_ Kind = iota
	// BadFs marks a structural or validation failure: a bad signature, an
	// impossible size, a missing DATA attribute, an unknown indirection
	// mode. These are terminal at Mount and never recovered from.
	BadFs
	// BadFileType marks a request for a directory where a file was found,
	// or vice versa.
	BadFileType
	// FileNotFound marks a path that does not resolve to any node.
	FileNotFound
	// OutOfRange marks a device read that ran past the end of backing
	// storage. Rewritten to BadFs at Mount, per spec.
	OutOfRange
	// OutOfMemory marks an allocation failure.
	OutOfMemory
	// IOError marks a device read failure that is not an out-of-range
	// condition (e.g. the backing storage itself errored).
	IOError
)

func (k Kind) String() string {
	switch k {
	case BadFs:
		return "bad filesystem"
	case BadFileType:
		return "bad file type"
	case FileNotFound:
		return "file not found"
	case OutOfRange:
		return "out of range"
	case OutOfMemory:
		return "out of memory"
	case IOError:
		return "io error"
	default:
		return "unknown error"
	}
}

// Error is the typed error every public esfs2 operation returns on
// failure. The host's error channel (spec.md §7: "all errors are reported
// via the host's latched error channel") only needs Kind and Error(); Err
// is kept for Go callers that want to unwrap the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("esfs2: %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("esfs2: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, target) report true when target is (or wraps)
// an *Error of the same Kind, whatever its Message (useful in tests that
// build expected sentinel errors). Kind is not itself an error, so to test
// for a Kind directly callers use IsKind below.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// IsKind reports whether err is (or wraps) an *Error of the given Kind.
func IsKind(err error, k Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == k
	}
	return false
}

func badFs(format string, args ...any) *Error {
	return &Error{Kind: BadFs, Message: fmt.Sprintf(format, args...)}
}

func wrapBadFs(err error, msg string) *Error {
	return &Error{Kind: BadFs, Message: msg, Err: err}
}

func badFileType(msg string) *Error {
	return &Error{Kind: BadFileType, Message: msg}
}

func fileNotFound(msg string) *Error {
	return &Error{Kind: FileNotFound, Message: msg}
}

func ioError(err error) *Error {
	return &Error{Kind: IOError, Message: "device read failed", Err: err}
}
