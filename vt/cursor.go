package vt

// Cursor tracks the current position (0-based coordinates).
//
// Col may equal the screen width after a character was written to the last
// column: the wrap is deferred until the next printable character, the way
// xterm and the VT100 family behave.
type Cursor struct {
	Row     int
	Col     int
	Visible bool
}

// NewCursor creates a visible cursor at (0, 0).
func NewCursor() *Cursor {
	return &Cursor{Visible: true}
}

// WrapPending reports whether the next printable character wraps first.
func (c *Cursor) WrapPending(cols int) bool {
	return c.Col >= cols
}

// SavedCursor stores the cursor position for DECSC/DECRC.
type SavedCursor struct {
	Row int
	Col int
}
