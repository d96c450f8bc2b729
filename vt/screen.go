package vt

import (
	"sync"

	"github.com/danielgatis/go-ansicode"
)

// Ensure Screen implements ansicode.Handler
var _ ansicode.Handler = (*Screen)(nil)

const (
	// DEFAULT_ROWS is the default number of screen rows.
	DEFAULT_ROWS = 24
	// DEFAULT_COLS is the default number of screen columns.
	DEFAULT_COLS = 80
)

// Screen emulates the display side of a VT100-class terminal without a display.
// It decodes the byte stream written to it with go-ansicode and keeps a single
// cell buffer, a cursor and the state needed to answer status reports.
// All operations are thread-safe via internal locking.
type Screen struct {
	// Handler methods this type does not implement are never emitted by the
	// line editor; a stray sequence of that kind panics on the nil interface.
	ansicode.Handler

	mu sync.RWMutex

	rows int
	cols int

	buffer      *Buffer
	cursor      *Cursor
	savedCursor *SavedCursor

	// stuck emulates terminals that leave the cursor on the last column
	// after writing there instead of deferring the wrap.
	stuck bool

	// scrolled counts lines pushed off the top of the screen.
	scrolled int

	decoder    *ansicode.Decoder
	middleware *Middleware

	responseProvider  ResponseProvider
	bellProvider      BellProvider
	recordingProvider RecordingProvider
}

// Option configures a Screen during construction.
type Option func(*Screen)

// WithSize sets the screen dimensions.
// Values <= 0 are replaced with defaults (24x80).
func WithSize(rows, cols int) Option {
	if rows <= 0 {
		rows = DEFAULT_ROWS
	}
	if cols <= 0 {
		cols = DEFAULT_COLS
	}
	return func(s *Screen) {
		s.rows = rows
		s.cols = cols
	}
}

// WithResponse sets the writer for screen responses (e.g., cursor position reports).
// If nil, responses are discarded.
func WithResponse(p ResponseProvider) Option {
	return func(s *Screen) {
		s.responseProvider = p
	}
}

// WithBell sets the handler for bell/beep events.
func WithBell(p BellProvider) Option {
	return func(s *Screen) {
		s.bellProvider = p
	}
}

// WithRecording captures every byte written to the screen before decoding.
func WithRecording(p RecordingProvider) Option {
	return func(s *Screen) {
		s.recordingProvider = p
	}
}

// WithStuckCursor makes the screen keep the cursor on the last column after
// a character is written there, without a pending wrap. Some terminals
// behave this way; the next printable character overwrites that column.
func WithStuckCursor() Option {
	return func(s *Screen) {
		s.stuck = true
	}
}

// New creates a screen with the given options.
// Defaults to 24x80 with the cursor visible.
func New(opts ...Option) *Screen {
	s := &Screen{
		rows:              DEFAULT_ROWS,
		cols:              DEFAULT_COLS,
		responseProvider:  NoopResponse{},
		bellProvider:      NoopBell{},
		recordingProvider: NoopRecording{},
	}

	for _, opt := range opts {
		opt(s)
	}
	if s.responseProvider == nil {
		s.responseProvider = NoopResponse{}
	}

	s.buffer = NewBuffer(s.rows, s.cols)
	s.cursor = NewCursor()
	s.decoder = ansicode.NewDecoder(s)

	return s
}

// Rows returns the screen height in character rows.
func (s *Screen) Rows() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rows
}

// Cols returns the screen width in character columns.
func (s *Screen) Cols() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cols
}

// Cell returns a copy of the cell at (row, col).
// The second return value is false if coordinates are out of bounds.
func (s *Screen) Cell(row, col int) (Cell, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := s.buffer.Cell(row, col)
	if c == nil {
		return Cell{}, false
	}
	return *c, true
}

// CursorPos returns the current cursor position (0-based).
// A pending wrap is reported on the last column, as a real terminal would.
func (s *Screen) CursorPos() (row, col int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursor.Row, min(s.cursor.Col, s.cols-1)
}

// WrapPending reports whether the cursor sits past the last column waiting
// for the next printable character to wrap it.
func (s *Screen) WrapPending() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursor.WrapPending(s.cols)
}

// Scrolled returns how many lines have scrolled off the top since creation.
func (s *Screen) Scrolled() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scrolled
}

// Resize changes the screen dimensions, keeping the top-left content.
func (s *Screen) Resize(rows, cols int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rows <= 0 || cols <= 0 {
		return
	}
	s.buffer.Resize(rows, cols)
	s.rows, s.cols = rows, cols
	s.cursor.Row = clamp(s.cursor.Row, 0, rows-1)
	s.cursor.Col = clamp(s.cursor.Col, 0, cols-1)
}

// Write processes raw bytes, parsing ANSI escape sequences and updating the screen.
// Implements io.Writer.
func (s *Screen) Write(data []byte) (int, error) {
	s.recordingProvider.Record(data)
	return s.decoder.Write(data)
}

// WriteString is a convenience method that converts the string to bytes and calls Write.
func (s *Screen) WriteString(str string) (int, error) {
	return s.Write([]byte(str))
}

// LineContent returns the text of a row with trailing spaces trimmed.
func (s *Screen) LineContent(row int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buffer.LineContent(row)
}

// IsWrapped returns true if the row continued onto the next one by auto-wrap.
func (s *Screen) IsWrapped(row int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buffer.IsWrapped(row)
}

// String returns the visible screen content as a newline-separated string.
// Trailing empty lines are omitted. Implements fmt.Stringer.
func (s *Screen) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lastNonEmpty := -1
	lines := make([]string, s.rows)
	for row := range lines {
		lines[row] = s.buffer.LineContent(row)
		if lines[row] != "" {
			lastNonEmpty = row
		}
	}

	result := ""
	for row := 0; row <= lastNonEmpty; row++ {
		if row > 0 {
			result += "\n"
		}
		result += lines[row]
	}
	return result
}

// HasDirty returns true if any cell changed since the last ClearDirty call.
func (s *Screen) HasDirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buffer.HasDirty()
}

// DirtyCells returns positions of all cells modified since the last ClearDirty call.
func (s *Screen) DirtyCells() []Position {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buffer.DirtyCells()
}

// ClearDirty marks all cells as clean, resetting the dirty tracking state.
func (s *Screen) ClearDirty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffer.ClearAllDirty()
}

// scrollIfNeeded scrolls the buffer when the cursor moved below the last row.
// Must be called with the lock held.
func (s *Screen) scrollIfNeeded() {
	if s.cursor.Row >= s.rows {
		n := s.cursor.Row - s.rows + 1
		s.buffer.ScrollUp(0, s.rows, n)
		s.scrolled += n
		s.cursor.Row = s.rows - 1
	}
}

func (s *Screen) writeResponse(data []byte) {
	s.mu.RLock()
	p := s.responseProvider
	s.mu.RUnlock()
	_, _ = p.Write(data)
}
