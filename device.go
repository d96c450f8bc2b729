package asyncterm

import "time"

// Device is the character terminal a Session drives.
//
// TTY implements it for real terminals; vt.Device implements it in memory.
type Device interface {
	// MakeRaw switches to character-at-a-time input with echo off.
	MakeRaw() error
	// MakeCooked switches to line-buffered input with echo on.
	MakeCooked() error
	// SetEcho toggles terminal-level echo.
	SetEcho(on bool) error
	// Size returns the terminal geometry.
	Size() (rows, cols int, err error)
	// WaitReadable waits until input can be read without blocking.
	// A negative timeout waits forever, zero does not wait.
	WaitReadable(timeout time.Duration) (bool, error)
	// Read reads available input. It must not block after WaitReadable returned true.
	// A zero count with a nil error means nothing was available.
	Read(p []byte) (int, error)
	// Write writes output to the terminal.
	Write(p []byte) (int, error)
	// Restore puts back the attributes the terminal had before it was opened.
	Restore() error
}
