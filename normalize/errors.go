package normalize

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a normalization failed.
type ErrorKind int

const (
	// KindAcquisition means no staging surface could be obtained or used.
	KindAcquisition ErrorKind = iota + 1
	// KindSourceRead means the frame's dimensions or pixels were unreadable.
	KindSourceRead
	// KindEncoding means the surface could not be serialized.
	KindEncoding
)

var (
	ErrAcquisition = errors.New("staging surface unavailable")
	ErrSourceRead  = errors.New("source frame unreadable")
	ErrEncoding    = errors.New("encoding failed")
)

func (k ErrorKind) String() string {
	switch k {
	case KindAcquisition:
		return "acquisition"
	case KindSourceRead:
		return "source_read"
	case KindEncoding:
		return "encoding"
	default:
		return "unknown"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindAcquisition:
		return ErrAcquisition
	case KindSourceRead:
		return ErrSourceRead
	case KindEncoding:
		return ErrEncoding
	default:
		return nil
	}
}

// Error reports the failed step and keeps the underlying cause reachable
// through errors.Is and errors.As.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("normalize: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// KindOf extracts the ErrorKind from err, if any.
func KindOf(err error) (ErrorKind, bool) {
	var ne *Error
	if errors.As(err, &ne) {
		return ne.Kind, true
	}
	return 0, false
}
