package asyncterm

import (
	"errors"
	"fmt"
	"syscall"
)

// ErrorKind classifies errors returned by a Session.
type ErrorKind int

const (
	// KindUnknown is an error of no particular kind.
	KindUnknown ErrorKind = iota
	// KindIO is a read, write or terminal attribute failure. Fatal to the session.
	KindIO
	// KindBusy is returned when a line request is already pending.
	KindBusy
	// KindIllegalMode is an invalid mode value passed to the terminal layer.
	KindIllegalMode
	// KindBufferOverflow means a cursor or erase computation left the screen.
	// ReinitState recovers from it.
	KindBufferOverflow
	// KindRange is an out-of-range numeric value, such as a malformed CSI parameter.
	KindRange
)

func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "io error"
	case KindBusy:
		return "busy"
	case KindIllegalMode:
		return "illegal mode"
	case KindBufferOverflow:
		return "buffer overflow"
	case KindRange:
		return "range error"
	default:
		return "unknown error"
	}
}

// Error is the error type returned by all session operations.
type Error struct {
	Kind ErrorKind
	// Op names the operation that failed.
	Op string
	// Errno is the system error code for KindIO errors, zero otherwise.
	Errno syscall.Errno
	Err   error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrBusy) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrUnknown        = &Error{Kind: KindUnknown}
	ErrIO             = &Error{Kind: KindIO}
	ErrBusy           = &Error{Kind: KindBusy}
	ErrIllegalMode    = &Error{Kind: KindIllegalMode}
	ErrBufferOverflow = &Error{Kind: KindBufferOverflow}
	ErrRange          = &Error{Kind: KindRange}
)

// IsFatal reports whether err leaves the session unusable.
func IsFatal(err error) bool {
	return errors.Is(err, ErrIO)
}

func newError(kind ErrorKind, op string, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// ioError wraps err as a KindIO error, keeping the errno if there is one.
func ioError(op string, err error) *Error {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindIO {
		return e
	}
	var errno syscall.Errno
	errors.As(err, &errno)
	return &Error{Kind: KindIO, Op: op, Errno: errno, Err: err}
}
