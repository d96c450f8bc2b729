package vt

// Middleware intercepts a subset of the decoded control functions.
// Each hook receives the decoded arguments and a next function that runs the
// screen's own implementation; not calling next drops the function.
type Middleware struct {
	// Input wraps printable characters.
	Input func(r rune, next func(rune))

	// Bell wraps BEL.
	Bell func(next func())

	// LineFeed wraps LF.
	LineFeed func(next func())

	// Goto wraps CUP, with 0-based coordinates.
	Goto func(row, col int, next func(int, int))

	// DeviceStatus wraps DSR requests.
	DeviceStatus func(n int, next func(int))
}

// Merge copies the non-nil hooks of other into m.
func (m *Middleware) Merge(other *Middleware) {
	if other == nil {
		return
	}
	if other.Input != nil {
		m.Input = other.Input
	}
	if other.Bell != nil {
		m.Bell = other.Bell
	}
	if other.LineFeed != nil {
		m.LineFeed = other.LineFeed
	}
	if other.Goto != nil {
		m.Goto = other.Goto
	}
	if other.DeviceStatus != nil {
		m.DeviceStatus = other.DeviceStatus
	}
}

// WithMiddleware installs hooks around decoded control functions.
// Repeated options merge, later hooks replacing earlier ones.
func WithMiddleware(mw *Middleware) Option {
	return func(s *Screen) {
		if s.middleware == nil {
			s.middleware = &Middleware{}
		}
		s.middleware.Merge(mw)
	}
}

// SetMiddleware replaces the hooks at runtime. A nil mw removes them.
func (s *Screen) SetMiddleware(mw *Middleware) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.middleware = mw
}

func (s *Screen) hooks() *Middleware {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.middleware
}
