//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package asyncterm

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

var _ Device = (*TTY)(nil)

// TTY is a Device backed by a terminal file descriptor.
type TTY struct {
	in    *os.File
	out   *os.File
	inFd  int
	outFd int
	saved *term.State
	owned bool
}

// OpenTTY opens the controlling terminal (/dev/tty) for reading and writing.
func OpenTTY() (*TTY, error) {
	f, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return nil, ioError("open tty", err)
	}
	t, err := NewTTY(f, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	t.owned = true
	return t, nil
}

// NewTTY wraps in and out, which must refer to a terminal. The current
// attributes of in are saved for Restore.
func NewTTY(in, out *os.File) (*TTY, error) {
	inFd := int(in.Fd())
	if !term.IsTerminal(inFd) {
		return nil, ioError("new tty", fmt.Errorf("%s: %w", in.Name(), unix.ENOTTY))
	}
	saved, err := term.GetState(inFd)
	if err != nil {
		return nil, ioError("get attributes", err)
	}
	return &TTY{
		in:    in,
		out:   out,
		inFd:  inFd,
		outFd: int(out.Fd()),
		saved: saved,
	}, nil
}

// MakeRaw switches the terminal to raw mode.
func (t *TTY) MakeRaw() error {
	if _, err := term.MakeRaw(t.inFd); err != nil {
		return fmt.Errorf("make raw: %w", err)
	}
	return nil
}

// MakeCooked restores the attributes saved when the TTY was opened.
func (t *TTY) MakeCooked() error {
	if err := term.Restore(t.inFd, t.saved); err != nil {
		return fmt.Errorf("make cooked: %w", err)
	}
	return t.SetEcho(true)
}

// SetEcho toggles the ECHO local flag.
func (t *TTY) SetEcho(on bool) error {
	tio, err := unix.IoctlGetTermios(t.inFd, ioctlReadTermios)
	if err != nil {
		return fmt.Errorf("get termios: %w", err)
	}
	if on {
		tio.Lflag |= unix.ECHO
	} else {
		tio.Lflag &^= unix.ECHO
	}
	if err := unix.IoctlSetTermios(t.inFd, ioctlWriteTermios, tio); err != nil {
		return fmt.Errorf("set termios: %w", err)
	}
	return nil
}

// Size returns the window size of the output terminal.
func (t *TTY) Size() (rows, cols int, err error) {
	ws, err := unix.IoctlGetWinsize(t.outFd, unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, fmt.Errorf("get winsize: %w", err)
	}
	return int(ws.Row), int(ws.Col), nil
}

// WaitReadable polls the input descriptor. Interrupted polls are restarted
// with the remaining time.
func (t *TTY) WaitReadable(timeout time.Duration) (bool, error) {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	for {
		ms := -1
		switch {
		case timeout == 0:
			ms = 0
		case timeout > 0:
			// Round up so sub-millisecond waits still wait.
			ms = int((time.Until(deadline) + time.Millisecond - 1) / time.Millisecond)
			if ms < 0 {
				ms = 0
			}
		}

		fds := []unix.PollFd{{Fd: int32(t.inFd), Events: unix.POLLIN}}
		n, err := unix.Poll(fds, ms)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return false, fmt.Errorf("poll: %w", err)
		}
		if n == 0 {
			return false, nil
		}
		if fds[0].Revents&(unix.POLLIN|unix.POLLHUP) != 0 {
			return true, nil
		}
		if fds[0].Revents&(unix.POLLERR|unix.POLLNVAL) != 0 {
			return false, fmt.Errorf("poll: revents %#x", fds[0].Revents)
		}
	}
}

// Read reads available input. EINTR and EAGAIN report zero bytes.
func (t *TTY) Read(p []byte) (int, error) {
	n, err := unix.Read(t.inFd, p)
	if err != nil {
		if errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN) {
			return 0, nil
		}
		return 0, fmt.Errorf("read: %w", err)
	}
	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Write writes to the output terminal.
func (t *TTY) Write(p []byte) (int, error) {
	return t.out.Write(p)
}

// Restore puts back the saved attributes and closes /dev/tty if OpenTTY opened it.
func (t *TTY) Restore() error {
	err := term.Restore(t.inFd, t.saved)
	if t.owned {
		t.owned = false
		if cerr := t.in.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
