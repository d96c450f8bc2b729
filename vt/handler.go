package vt

import (
	"fmt"

	"github.com/danielgatis/go-ansicode"
)

// Input writes a printable character at the cursor, wrapping first when a
// wrap is pending.
func (s *Screen) Input(r rune) {
	if mw := s.hooks(); mw != nil && mw.Input != nil {
		mw.Input(r, s.input)
		return
	}
	s.input(r)
}

func (s *Screen) input(r rune) {
	s.mu.Lock()
	defer s.mu.Unlock()

	width := runeWidth(r)
	if width == 0 {
		return
	}

	if s.cursor.Col+width > s.cols {
		if s.stuck {
			s.cursor.Col = s.cols - width
		} else {
			s.buffer.SetWrapped(s.cursor.Row, true)
			s.cursor.Col = 0
			s.cursor.Row++
			s.scrollIfNeeded()
		}
	}
	if s.cursor.Col < 0 {
		return
	}

	cell := s.buffer.Cell(s.cursor.Row, s.cursor.Col)
	if cell == nil {
		return
	}
	cell.Char = r
	cell.ClearFlag(CellFlagWideChar | CellFlagWideCharSpacer)
	if width == 2 {
		cell.SetFlag(CellFlagWideChar)
		if spacer := s.buffer.Cell(s.cursor.Row, s.cursor.Col+1); spacer != nil {
			spacer.Char = ' '
			spacer.SetFlag(CellFlagWideCharSpacer)
			s.buffer.MarkDirty(s.cursor.Row, s.cursor.Col+1)
		}
	}
	s.buffer.MarkDirty(s.cursor.Row, s.cursor.Col)

	s.cursor.Col += width
	if s.stuck && s.cursor.Col >= s.cols {
		s.cursor.Col = s.cols - 1
	}
}

// Backspace moves the cursor one column left.
func (s *Screen) Backspace() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cursor.Col = clamp(s.cursor.Col, 0, s.cols-1)
	if s.cursor.Col > 0 {
		s.cursor.Col--
	}
}

// Bell delegates to the bell provider.
func (s *Screen) Bell() {
	if mw := s.hooks(); mw != nil && mw.Bell != nil {
		mw.Bell(s.bell)
		return
	}
	s.bell()
}

func (s *Screen) bell() {
	s.mu.RLock()
	p := s.bellProvider
	s.mu.RUnlock()
	if p != nil {
		p.Ring()
	}
}

// CarriageReturn moves the cursor to column 0 and cancels a pending wrap.
func (s *Screen) CarriageReturn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.Col = 0
}

// LineFeed moves the cursor down one row, scrolling at the bottom.
func (s *Screen) LineFeed() {
	if mw := s.hooks(); mw != nil && mw.LineFeed != nil {
		mw.LineFeed(s.lineFeed)
		return
	}
	s.lineFeed()
}

func (s *Screen) lineFeed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buffer.SetWrapped(s.cursor.Row, false)
	s.cursor.Col = clamp(s.cursor.Col, 0, s.cols-1)
	s.cursor.Row++
	s.scrollIfNeeded()
}

// ReverseIndex moves the cursor up one row, scrolling down at the top.
func (s *Screen) ReverseIndex() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cursor.Row == 0 {
		s.buffer.ScrollDown(0, s.rows, 1)
		return
	}
	s.cursor.Row--
}

// ClearLine erases part of the cursor row (EL).
func (s *Screen) ClearLine(mode ansicode.LineClearMode) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch mode {
	case ansicode.LineClearModeRight:
		s.buffer.ClearRowRange(s.cursor.Row, s.cursor.Col, s.cols)
	case ansicode.LineClearModeLeft:
		s.buffer.ClearRowRange(s.cursor.Row, 0, s.cursor.Col+1)
	case ansicode.LineClearModeAll:
		s.buffer.ClearRow(s.cursor.Row)
	}
}

// ClearScreen erases part of the display (ED). The cursor does not move.
func (s *Screen) ClearScreen(mode ansicode.ClearMode) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch mode {
	case ansicode.ClearModeBelow:
		s.buffer.ClearRowRange(s.cursor.Row, s.cursor.Col, s.cols)
		for row := s.cursor.Row + 1; row < s.rows; row++ {
			s.buffer.ClearRow(row)
		}
	case ansicode.ClearModeAbove:
		for row := 0; row < s.cursor.Row; row++ {
			s.buffer.ClearRow(row)
		}
		s.buffer.ClearRowRange(s.cursor.Row, 0, s.cursor.Col+1)
	case ansicode.ClearModeAll, ansicode.ClearModeSaved:
		s.buffer.ClearAll()
	}
}

// EraseChars blanks n cells starting at the cursor without shifting (ECH).
func (s *Screen) EraseChars(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	col := clamp(s.cursor.Col, 0, s.cols-1)
	s.buffer.ClearRowRange(s.cursor.Row, col, col+n)
}

// DeleteChars removes n cells at the cursor, shifting the row left (DCH).
func (s *Screen) DeleteChars(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffer.DeleteChars(s.cursor.Row, clamp(s.cursor.Col, 0, s.cols-1), n)
}

// InsertBlank inserts n blank cells at the cursor, shifting the row right (ICH).
func (s *Screen) InsertBlank(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffer.InsertBlanks(s.cursor.Row, clamp(s.cursor.Col, 0, s.cols-1), n)
}

// Goto moves the cursor to (row, col), 0-based (CUP).
func (s *Screen) Goto(row, col int) {
	if mw := s.hooks(); mw != nil && mw.Goto != nil {
		mw.Goto(row, col, s.gotoCell)
		return
	}
	s.gotoCell(row, col)
}

func (s *Screen) gotoCell(row, col int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.Row = clamp(row, 0, s.rows-1)
	s.cursor.Col = clamp(col, 0, s.cols-1)
}

// GotoCol moves the cursor to col on the current row (CHA).
func (s *Screen) GotoCol(col int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.Col = clamp(col, 0, s.cols-1)
}

// GotoLine moves the cursor to row, keeping the column (VPA).
func (s *Screen) GotoLine(row int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.Row = clamp(row, 0, s.rows-1)
	s.cursor.Col = clamp(s.cursor.Col, 0, s.cols-1)
}

// MoveUp moves the cursor up n rows (CUU).
func (s *Screen) MoveUp(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.Row = clamp(s.cursor.Row-n, 0, s.rows-1)
	s.cursor.Col = clamp(s.cursor.Col, 0, s.cols-1)
}

// MoveDown moves the cursor down n rows (CUD).
func (s *Screen) MoveDown(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.Row = clamp(s.cursor.Row+n, 0, s.rows-1)
	s.cursor.Col = clamp(s.cursor.Col, 0, s.cols-1)
}

// MoveUpCr moves the cursor up n rows to column 0 (CPL).
func (s *Screen) MoveUpCr(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.Row = clamp(s.cursor.Row-n, 0, s.rows-1)
	s.cursor.Col = 0
}

// MoveDownCr moves the cursor down n rows to column 0 (CNL).
func (s *Screen) MoveDownCr(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.Row = clamp(s.cursor.Row+n, 0, s.rows-1)
	s.cursor.Col = 0
}

// MoveForward moves the cursor right n columns (CUF).
func (s *Screen) MoveForward(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.Col = clamp(s.cursor.Col+n, 0, s.cols-1)
}

// MoveBackward moves the cursor left n columns (CUB).
func (s *Screen) MoveBackward(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.Col = clamp(clamp(s.cursor.Col, 0, s.cols-1)-n, 0, s.cols-1)
}

// Tab moves the cursor forward n tab stops, fixed every 8 columns.
func (s *Screen) Tab(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < n; i++ {
		s.cursor.Col = min((s.cursor.Col/8+1)*8, s.cols-1)
	}
}

// DeviceStatus answers DSR 5 (status) and DSR 6 (cursor position).
func (s *Screen) DeviceStatus(n int) {
	if mw := s.hooks(); mw != nil && mw.DeviceStatus != nil {
		mw.DeviceStatus(n, s.deviceStatus)
		return
	}
	s.deviceStatus(n)
}

func (s *Screen) deviceStatus(n int) {
	row, col := s.CursorPos()

	var response string
	switch n {
	case 5:
		response = "\x1b[0n"
	case 6:
		response = fmt.Sprintf("\x1b[%d;%dR", row+1, col+1)
	}
	if response != "" {
		s.writeResponse([]byte(response))
	}
}

// ScrollUp scrolls the whole screen up n lines (SU).
func (s *Screen) ScrollUp(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffer.ScrollUp(0, s.rows, n)
	s.scrolled += n
}

// ScrollDown scrolls the whole screen down n lines (SD).
func (s *Screen) ScrollDown(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffer.ScrollDown(0, s.rows, n)
}

// SaveCursorPosition stores the cursor position (DECSC).
func (s *Screen) SaveCursorPosition() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.savedCursor = &SavedCursor{Row: s.cursor.Row, Col: s.cursor.Col}
}

// RestoreCursorPosition restores the position stored by SaveCursorPosition (DECRC).
func (s *Screen) RestoreCursorPosition() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.savedCursor == nil {
		s.cursor.Row, s.cursor.Col = 0, 0
		return
	}
	s.cursor.Row = s.savedCursor.Row
	s.cursor.Col = s.savedCursor.Col
}

// ResetState clears the screen and homes the cursor (RIS).
func (s *Screen) ResetState() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffer.ClearAll()
	s.cursor = NewCursor()
	s.savedCursor = nil
}

// SetTerminalCharAttribute ignores SGR; the screen keeps characters only.
func (s *Screen) SetTerminalCharAttribute(attr ansicode.TerminalCharAttribute) {}

// SetMode ignores mode changes.
func (s *Screen) SetMode(mode ansicode.TerminalMode) {}

// UnsetMode ignores mode changes.
func (s *Screen) UnsetMode(mode ansicode.TerminalMode) {}

// SetTitle ignores window titles.
func (s *Screen) SetTitle(title string) {}

// SetCursorStyle ignores cursor shape changes.
func (s *Screen) SetCursorStyle(style ansicode.CursorStyle) {}

// Substitute writes a replacement character for SUB.
func (s *Screen) Substitute() {
	s.Input('?')
}
