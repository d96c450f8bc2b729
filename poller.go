package asyncterm

import (
	"errors"
	"io"
	"log/slog"
	"time"
)

const readChunk = 256

// Timeout values understood by the blocking session operations.
const (
	// Forever waits until at least one byte arrives.
	Forever time.Duration = 0
	// NoWait returns immediately with whatever is already queued.
	NoWait time.Duration = -1
)

// poller performs bounded-wait reads from the device into the input queue.
type poller struct {
	dev   Device
	queue *inputQueue
	log   *slog.Logger
	chunk []byte
	eof   bool
}

func newPoller(dev Device, queue *inputQueue, log *slog.Logger) *poller {
	return &poller{dev: dev, queue: queue, log: log, chunk: make([]byte, readChunk)}
}

// poll waits up to timeout for input and appends everything that is
// available. Zero waits forever, negative does not wait. It reports
// whether new bytes were appended.
func (p *poller) poll(timeout time.Duration) (bool, error) {
	wait := timeout
	switch {
	case timeout == Forever:
		wait = -1
	case timeout < 0:
		wait = 0
	}

	ready, err := p.dev.WaitReadable(wait)
	if err != nil {
		return false, ioError("poll", err)
	}
	if !ready {
		return false, nil
	}

	added := false
	for {
		n, err := p.dev.Read(p.chunk)
		if n > 0 {
			p.queue.append(p.chunk[:n])
			added = true
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				if !p.eof {
					p.log.Debug("terminal input closed")
				}
				p.eof = true
				return added, nil
			}
			return added, ioError("read", err)
		}
		if n < len(p.chunk) {
			return added, nil
		}
		// A full chunk may mean more is waiting.
		if more, err := p.dev.WaitReadable(0); err != nil || !more {
			return added, nil
		}
	}
}
