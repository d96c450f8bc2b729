package vt

import (
	"io"
	"sync"
	"time"
)

// Device is an in-memory terminal: output written to it is decoded by a
// Screen, input is typed with Type or Feed and read back by the host.
// It tracks the raw and echo attributes the host sets, answers cursor
// position requests through its own input stream and is safe for
// concurrent use, so tests may type from another goroutine.
type Device struct {
	screen *Screen

	mu       sync.Mutex
	input    []byte
	notify   chan struct{}
	raw      bool
	echo     bool
	restored bool
	hangup   bool
	answer   bool
	failNext error
}

// NewDevice creates a device backed by a new Screen built from opts.
// Status reports produced by the screen are queued as input.
func NewDevice(opts ...Option) *Device {
	d := &Device{
		notify: make(chan struct{}, 1),
		echo:   true,
		answer: true,
	}
	opts = append(opts, WithResponse(answerback{d}))
	d.screen = New(opts...)
	return d
}

// Screen returns the screen that renders the device output.
func (d *Device) Screen() *Screen {
	return d.screen
}

// Type queues text as if it was typed on the keyboard.
func (d *Device) Type(s string) {
	d.Feed([]byte(s))
}

// Feed queues raw input bytes. With echo enabled they are also shown on the screen.
func (d *Device) Feed(b []byte) {
	d.mu.Lock()
	echo := d.echo && !d.raw
	d.input = append(d.input, b...)
	d.mu.Unlock()
	d.signal()

	if echo {
		_, _ = d.screen.Write(b)
	}
}

// Hangup makes reads return io.EOF once the queued input is consumed.
func (d *Device) Hangup() {
	d.mu.Lock()
	d.hangup = true
	d.mu.Unlock()
	d.signal()
}

// SetAnswerback enables or disables replies to status requests.
func (d *Device) SetAnswerback(on bool) {
	d.mu.Lock()
	d.answer = on
	d.mu.Unlock()
}

// FailNext makes the next Read, Write or attribute change return err.
func (d *Device) FailNext(err error) {
	d.mu.Lock()
	d.failNext = err
	d.mu.Unlock()
}

// Pending returns the number of queued input bytes not yet read.
func (d *Device) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.input)
}

// Raw reports whether the host switched the device to raw mode.
func (d *Device) Raw() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.raw
}

// Echo reports whether terminal echo is enabled.
func (d *Device) Echo() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.echo
}

// Restored reports whether Restore was called.
func (d *Device) Restored() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.restored
}

// MakeRaw switches to character-at-a-time input without echo.
func (d *Device) MakeRaw() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.takeFailure(); err != nil {
		return err
	}
	d.raw, d.echo = true, false
	return nil
}

// MakeCooked switches back to line-buffered input with echo.
func (d *Device) MakeCooked() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.takeFailure(); err != nil {
		return err
	}
	d.raw, d.echo = false, true
	return nil
}

// SetEcho toggles terminal echo.
func (d *Device) SetEcho(on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.takeFailure(); err != nil {
		return err
	}
	d.echo = on
	return nil
}

// Restore returns the device to its initial cooked, echoing state.
func (d *Device) Restore() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.raw, d.echo = false, true
	d.restored = true
	return nil
}

// Size returns the screen dimensions.
func (d *Device) Size() (rows, cols int, err error) {
	return d.screen.Rows(), d.screen.Cols(), nil
}

// WaitReadable waits until input is queued. A negative timeout waits
// forever, zero polls without waiting.
func (d *Device) WaitReadable(timeout time.Duration) (bool, error) {
	var deadline <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	for {
		d.mu.Lock()
		ready := len(d.input) > 0 || d.hangup
		d.mu.Unlock()
		if ready {
			return true, nil
		}
		if timeout == 0 {
			return false, nil
		}

		select {
		case <-d.notify:
		case <-deadline:
			return false, nil
		}
	}
}

// Read copies queued input into p. It does not block.
func (d *Device) Read(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.takeFailure(); err != nil {
		return 0, err
	}
	if len(d.input) == 0 {
		if d.hangup {
			return 0, io.EOF
		}
		return 0, nil
	}
	n := copy(p, d.input)
	d.input = d.input[n:]
	return n, nil
}

// Write renders p on the screen.
func (d *Device) Write(p []byte) (int, error) {
	d.mu.Lock()
	err := d.takeFailure()
	d.mu.Unlock()
	if err != nil {
		return 0, err
	}
	return d.screen.Write(p)
}

// takeFailure must be called with the lock held.
func (d *Device) takeFailure() error {
	err := d.failNext
	d.failNext = nil
	return err
}

func (d *Device) signal() {
	select {
	case d.notify <- struct{}{}:
	default:
	}
}

// answerback routes screen responses into the device input.
type answerback struct {
	d *Device
}

func (a answerback) Write(p []byte) (int, error) {
	a.d.mu.Lock()
	if !a.d.answer {
		a.d.mu.Unlock()
		return len(p), nil
	}
	a.d.input = append(a.d.input, p...)
	a.d.mu.Unlock()
	a.d.signal()
	return len(p), nil
}
