package m3

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/mogaika/m3_browser/readat"
)

type ErrorKind int

const (
	FormatError ErrorKind = iota
	UnsupportedFeature
	OutOfRangeReference
	UnknownChunkTag
	Truncation
)

func (k ErrorKind) String() string {
	switch k {
	case FormatError:
		return "format error"
	case UnsupportedFeature:
		return "unsupported feature"
	case OutOfRangeReference:
		return "out of range reference"
	case UnknownChunkTag:
		return "unknown chunk tag"
	case Truncation:
		return "truncated"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is the single error type a failed parse returns.
type Error struct {
	Kind   ErrorKind
	Offset int64
	Err    error
}

// Offset is negative for errors found after decoding, while assembling submeshes.
func (e *Error) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("m3: %v: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("m3: %v at 0x%x: %v", e.Kind, e.Offset, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind ErrorKind, offset int64, format string, args ...interface{}) error {
	return &Error{Kind: kind, Offset: offset, Err: errors.Errorf(format, args...)}
}

// IsKind reports whether err carries an *Error of the given kind anywhere in its chain.
func IsKind(err error, kind ErrorKind) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Err
	}
	return false
}

func asError(err error, offset int64) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if errors.Is(err, readat.ErrTruncated) {
		return &Error{Kind: Truncation, Offset: offset, Err: err}
	}
	return &Error{Kind: FormatError, Offset: offset, Err: err}
}

// withContext prefixes the message of the *Error inside err, keeping err's kind and offset.
func withContext(err error, format string, args ...interface{}) error {
	var e *Error
	if errors.As(err, &e) {
		e.Err = errors.Wrapf(e.Err, format, args...)
		return err
	}
	return errors.Wrapf(err, format, args...)
}
