package asyncterm

// layout maps offsets in the edited line to screen coordinates.
//
// The editable text starts on the row where the prompt ends, at column
// promptOffset (0-based), and wraps every cols characters. Coordinates
// returned by pointToPos are 0-based and relative to that row; physical
// adds promptEndRow to get 1-based terminal coordinates.
type layout struct {
	cols         int
	promptOffset int
	promptEndRow int
	length       int
	lineRows     int
}

// pointToPos returns the 0-based row and column of offset p.
func (l *layout) pointToPos(p int) (row, col int) {
	x := l.promptOffset + p
	return x / l.cols, x % l.cols
}

// posToPoint is the inverse of pointToPos.
func (l *layout) posToPoint(row, col int) int {
	return row*l.cols + col - l.promptOffset
}

// recalcLineRows updates lineRows for the current length and width.
func (l *layout) recalcLineRows() {
	l.lineRows = (l.promptOffset+l.length)/l.cols + 1
}

// setLength updates the length and the row count.
func (l *layout) setLength(n int) {
	l.length = n
	l.recalcLineRows()
}

// physical returns the 1-based terminal coordinates of offset p.
func (l *layout) physical(p int) (row, col int) {
	r, c := l.pointToPos(p)
	return l.promptEndRow + r, c + 1
}

// lastRow returns the physical row of the last row the line occupies.
func (l *layout) lastRow() int {
	return l.promptEndRow + l.lineRows - 1
}

// endsAtEdge reports whether the text fills its last row exactly, leaving
// the cursor at the start of an otherwise empty row.
func (l *layout) endsAtEdge() bool {
	x := l.promptOffset + l.length
	return x > 0 && x%l.cols == 0
}

// lastRowFor returns the physical row of the last row a line of length n
// would occupy.
func (l *layout) lastRowFor(n int) int {
	return l.promptEndRow + (l.promptOffset+n)/l.cols
}
