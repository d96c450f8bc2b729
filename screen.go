package asyncterm

import (
	"unicode/utf8"

	"github.com/unilibs/uniwidth"
)

const tabWidth = 8

// screen tracks the physical cursor and batches the output that keeps the
// terminal in step with it. Nothing reaches the device until flush, so a
// failed update can be dropped with restore.
type screen struct {
	dev        Device
	rows, cols int
	row, col   int // 1-based
	out        []byte

	// onScroll is called with the number of lines the output scrolled.
	onScroll func(n int)
}

// screenMark is a restorable screen state.
type screenMark struct {
	row, col int
	outLen   int
}

func newScreen(dev Device, rows, cols int) *screen {
	return &screen{dev: dev, rows: rows, cols: cols, row: 1, col: 1}
}

func (s *screen) mark() screenMark {
	return screenMark{row: s.row, col: s.col, outLen: len(s.out)}
}

// restore drops output queued after m and puts the cursor model back.
func (s *screen) restore(m screenMark) {
	s.row, s.col = m.row, m.col
	s.out = s.out[:m.outLen]
}

func (s *screen) flush() error {
	if len(s.out) == 0 {
		return nil
	}
	_, err := s.dev.Write(s.out)
	s.out = s.out[:0]
	if err != nil {
		return ioError("write", err)
	}
	return nil
}

func (s *screen) inBounds(row, col int) bool {
	return row >= 1 && row <= s.rows && col >= 1 && col <= s.cols
}

// moveTo positions the cursor, using the shortest sequence for moves
// within a row.
func (s *screen) moveTo(row, col int) error {
	if !s.inBounds(row, col) {
		return newError(KindBufferOverflow, "move cursor",
			"position %d;%d outside %dx%d screen", row, col, s.rows, s.cols)
	}
	switch {
	case row == s.row && col == s.col:
		return nil
	case row == s.row && col == 1:
		s.out = append(s.out, '\r')
	case row == s.row && col < s.col:
		s.out = appendCursorBackward(s.out, s.col-col)
	case row == s.row:
		s.out = appendCursorForward(s.out, col-s.col)
	default:
		s.out = appendCursorPos(s.out, row, col)
	}
	s.row, s.col = row, col
	return nil
}

// scrollUp scrolls the screen n lines by feeding lines at the bottom row.
// The cursor keeps its column.
func (s *screen) scrollUp(n int) {
	if n <= 0 {
		return
	}
	if s.row != s.rows {
		s.out = appendCursorPos(s.out, s.rows, s.col)
		s.row = s.rows
	}
	for i := 0; i < n; i++ {
		s.out = append(s.out, '\n')
	}
	if s.onScroll != nil {
		s.onScroll(n)
	}
}

// newline moves to column 1 of the next row, scrolling at the bottom.
func (s *screen) newline() {
	if s.row < s.rows {
		s.out = append(s.out, seqNewline...)
		s.row++
		s.col = 1
		return
	}
	s.out = append(s.out, '\r')
	s.col = 1
	s.scrollUp(1)
}

// fixWrap repositions the cursor after a glyph landed on the last column.
// Terminals either defer the wrap to the next glyph or never wrap there at
// all, so the cursor is moved explicitly instead of trusting either.
func (s *screen) fixWrap() {
	if s.col <= s.cols {
		return
	}
	if s.row < s.rows {
		s.row++
		s.col = 1
		s.out = appendCursorPos(s.out, s.row, s.col)
		return
	}
	s.newline()
}

// writeLine writes edited line bytes, one column each.
func (s *screen) writeLine(p []byte) {
	for len(p) > 0 {
		n := min(len(p), s.cols-s.col+1)
		s.out = append(s.out, p[:n]...)
		s.col += n
		p = p[n:]
		s.fixWrap()
	}
}

// writeText writes free text such as prompts and printed output. LF becomes
// CR LF, tabs expand to spaces and other control characters are dropped so
// the cursor model stays exact. Rune widths come from uniwidth.
func (s *screen) writeText(text string) {
	for len(text) > 0 {
		r, size := utf8.DecodeRuneInString(text)
		chunk := text[:size]
		text = text[size:]

		switch {
		case r == '\n':
			s.newline()
			continue
		case r == '\r':
			s.out = append(s.out, '\r')
			s.col = 1
			continue
		case r == '\t':
			n := tabWidth - (s.col-1)%tabWidth
			for i := 0; i < n && s.col <= s.cols; i++ {
				s.out = append(s.out, ' ')
				s.col++
			}
			s.fixWrap()
			continue
		case r < 0x20 || (r >= 0x7f && r < 0xa0):
			continue
		}

		w := uniwidth.RuneWidth(r)
		if w == 0 {
			s.out = append(s.out, chunk...)
			continue
		}
		if s.col+w-1 > s.cols {
			s.newline()
		}
		s.out = append(s.out, chunk...)
		s.col += w
		s.fixWrap()
	}
}

// eraseRow erases part of the cursor row.
func (s *screen) eraseRow(mode eraseMode) error {
	if !mode.valid() {
		return newError(KindIllegalMode, "erase row", "invalid erase mode %d", int(mode))
	}
	s.out = appendEraseRow(s.out, mode)
	return nil
}

// eraseChars blanks n cells from the cursor without moving it.
func (s *screen) eraseChars(n int) error {
	if n < 0 || s.col+n-1 > s.cols {
		return newError(KindBufferOverflow, "erase chars",
			"%d cells from column %d exceed %d columns", n, s.col, s.cols)
	}
	if n > 0 {
		s.out = appendEraseChars(s.out, n)
	}
	return nil
}

func (s *screen) clear() {
	s.out = append(s.out, seqClearScreen...)
}

func (s *screen) home() {
	s.out = append(s.out, seqHome...)
	s.row, s.col = 1, 1
}

func (s *screen) bell() {
	s.out = append(s.out, keyBell)
}

func (s *screen) resize(rows, cols int) {
	s.rows, s.cols = rows, cols
	s.row = min(max(s.row, 1), rows)
	s.col = min(max(s.col, 1), cols)
}
