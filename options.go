package asyncterm

import (
	"log/slog"
	"time"
)

const (
	defaultTimeout            = time.Millisecond
	defaultHistorySize        = 100
	defaultCursorQueryTimeout = 200 * time.Millisecond
)

// Option configures a Session during construction.
type Option func(*Session)

// WithTimeout sets the wait used by GetLine and GetChar.
// Forever (0) waits for input, NoWait (negative) never waits.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.timeout = d
	}
}

// WithHistory sets the storage for completed lines.
func WithHistory(p HistoryProvider) Option {
	return func(s *Session) {
		s.hist.store = p
	}
}

// WithHistorySize caps the history. 0 means unlimited.
func WithHistorySize(n int) Option {
	return func(s *Session) {
		s.historySize = &n
	}
}

// WithLogger sets the structured logger. Defaults to discarding.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithBell sets a provider notified on every bell.
func WithBell(p BellProvider) Option {
	return func(s *Session) {
		s.bellProvider = p
	}
}

// WithAudibleBell controls whether bells send BEL to the terminal. Defaults to true.
func WithAudibleBell(on bool) Option {
	return func(s *Session) {
		s.audible = on
	}
}

// WithCursorQueryTimeout bounds the wait for a cursor position report.
func WithCursorQueryTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.cursorQueryTimeout = d
	}
}

// WithConfig applies all settings from cfg.
func WithConfig(cfg Config) Option {
	return func(s *Session) {
		for _, opt := range cfg.Options() {
			opt(s)
		}
	}
}
