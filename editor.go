package asyncterm

// anchor is a 1-based screen position that moves with scrolling.
type anchor struct {
	row, col int
}

// editor composes one line: it owns the text, the insert point, the kill
// buffer and the history cursor, and keeps the screen in step through scr.
// The prompt is drawn at the print anchor.
type editor struct {
	scr   *screen
	hist  history
	print *anchor
	ring  func()

	prompt string
	line   []byte
	point  int
	lay    layout
	kill   []byte
	browse historyCursor
}

// editorState is a restorable copy of the mutable editor fields.
type editorState struct {
	line   []byte
	point  int
	lay    layout
	kill   []byte
	browse historyCursor
}

func newEditor(scr *screen, hist history, print *anchor, ring func(), prompt string) *editor {
	return &editor{
		scr:    scr,
		hist:   hist,
		print:  print,
		ring:   ring,
		prompt: prompt,
		lay:    layout{cols: scr.cols},
		browse: newHistoryCursor(),
	}
}

func (e *editor) save() editorState {
	b := e.browse
	b.scratch = append([]byte(nil), e.browse.scratch...)
	return editorState{
		line:   append([]byte(nil), e.line...),
		point:  e.point,
		lay:    e.lay,
		kill:   append([]byte(nil), e.kill...),
		browse: b,
	}
}

func (e *editor) load(s editorState) {
	e.line = s.line
	e.point = s.point
	e.lay = s.lay
	e.kill = s.kill
	e.browse = s.browse
}

// text returns the line being edited.
func (e *editor) text() string {
	return string(e.line)
}

// draw writes the prompt at the print anchor, then the line, and leaves the
// cursor at the insert point.
func (e *editor) draw() error {
	if err := e.scr.moveTo(e.print.row, e.print.col); err != nil {
		return err
	}
	e.scr.writeText(e.prompt)
	e.lay.cols = e.scr.cols
	e.lay.promptEndRow = e.scr.row
	e.lay.promptOffset = e.scr.col - 1
	e.lay.setLength(len(e.line))
	e.scr.writeLine(e.line)
	return e.moveToPoint()
}

func (e *editor) moveToPoint() error {
	row, col := e.lay.physical(e.point)
	return e.scr.moveTo(row, col)
}

// repaintFrom rewrites the line from offset p and blanks what is left of a
// line that used to be oldLen long.
func (e *editor) repaintFrom(p, oldLen int) error {
	row, col := e.lay.physical(p)
	if err := e.scr.moveTo(row, col); err != nil {
		return err
	}
	e.scr.writeLine(e.line[p:])
	if oldLen > len(e.line) {
		if err := e.eraseTail(e.lay.lastRowFor(oldLen)); err != nil {
			return err
		}
	}
	return e.moveToPoint()
}

// eraseTail blanks from the cursor to the end of lastRow.
func (e *editor) eraseTail(lastRow int) error {
	if err := e.scr.eraseRow(eraseToEnd); err != nil {
		return err
	}
	for row := e.scr.row + 1; row <= lastRow; row++ {
		if err := e.scr.moveTo(row, 1); err != nil {
			return err
		}
		if err := e.scr.eraseRow(eraseAll); err != nil {
			return err
		}
	}
	return nil
}

// erase removes the prompt and line from the screen and leaves the cursor
// at the print anchor. An anchor scrolled off the top is pulled back to the
// first row.
func (e *editor) erase() error {
	if e.print.row < 1 {
		e.print.row, e.print.col = 1, 1
	}
	if err := e.scr.moveTo(e.print.row, e.print.col); err != nil {
		return err
	}
	if err := e.eraseTail(min(e.lay.lastRow(), e.scr.rows)); err != nil {
		return err
	}
	return e.scr.moveTo(e.print.row, e.print.col)
}

// insert puts text at the insert point. At the end of the line only the new
// glyphs are written.
func (e *editor) insert(text []byte) error {
	if len(text) == 0 {
		return nil
	}
	if e.point == len(e.line) {
		e.line = append(e.line, text...)
		e.point = len(e.line)
		e.lay.setLength(len(e.line))
		e.scr.writeLine(text)
		return nil
	}

	at := e.point
	e.line = append(e.line[:at], append(append([]byte(nil), text...), e.line[at:]...)...)
	e.point += len(text)
	e.lay.setLength(len(e.line))
	return e.repaintFrom(at, len(e.line))
}

// deleteRange removes line[from:to] and repaints.
func (e *editor) deleteRange(from, to int) error {
	oldLen := len(e.line)
	e.line = append(e.line[:from], e.line[to:]...)
	e.point = from
	e.lay.setLength(len(e.line))
	return e.repaintFrom(from, oldLen)
}

func (e *editor) deleteAtPoint() error {
	if e.point >= len(e.line) {
		e.ring()
		return nil
	}
	return e.deleteRange(e.point, e.point+1)
}

func (e *editor) backspace() error {
	if e.point == 0 {
		e.ring()
		return nil
	}
	return e.deleteRange(e.point-1, e.point)
}

// killToEnd moves the text from the insert point to the end into the kill buffer.
func (e *editor) killToEnd() error {
	if e.point >= len(e.line) {
		e.ring()
		return nil
	}
	e.kill = append(e.kill[:0], e.line[e.point:]...)
	return e.deleteRange(e.point, len(e.line))
}

// killToStart moves the text before the insert point into the kill buffer.
func (e *editor) killToStart() error {
	if e.point == 0 {
		e.ring()
		return nil
	}
	e.kill = append(e.kill[:0], e.line[:e.point]...)
	return e.deleteRange(0, e.point)
}

func (e *editor) yank() error {
	if len(e.kill) == 0 {
		e.ring()
		return nil
	}
	return e.insert(e.kill)
}

// moveTo sets the insert point, ringing the bell when p is outside the line.
func (e *editor) moveTo(p int) error {
	if p < 0 || p > len(e.line) {
		e.ring()
		return nil
	}
	e.point = p
	return e.moveToPoint()
}

func (e *editor) wordLeft() error {
	p := e.point
	for p > 0 && e.line[p-1] == ' ' {
		p--
	}
	for p > 0 && e.line[p-1] != ' ' {
		p--
	}
	if p == e.point {
		e.ring()
		return nil
	}
	return e.moveTo(p)
}

func (e *editor) wordRight() error {
	p := e.point
	for p < len(e.line) && e.line[p] == ' ' {
		p++
	}
	for p < len(e.line) && e.line[p] != ' ' {
		p++
	}
	if p == e.point {
		e.ring()
		return nil
	}
	return e.moveTo(p)
}

// historyStep replaces the line with the adjacent history entry.
func (e *editor) historyStep(delta int) error {
	text, ok := e.browse.step(e.hist, e.line, delta)
	if !ok {
		e.ring()
		return nil
	}
	oldLen := len(e.line)
	e.line = text
	e.point = len(text)
	e.lay.setLength(len(text))
	return e.repaintFrom(0, oldLen)
}

// redraw clears the screen and paints the prompt and line at the top.
func (e *editor) redraw() error {
	e.scr.clear()
	e.scr.home()
	e.print.row, e.print.col = 1, 1
	return e.draw()
}

// finish moves the cursor past the line and starts a new row there, which
// becomes the print anchor.
func (e *editor) finish() error {
	row, col := e.lay.physical(len(e.line))
	if err := e.scr.moveTo(row, col); err != nil {
		return err
	}
	if !e.lay.endsAtEdge() {
		e.scr.newline()
	}
	e.print.row, e.print.col = e.scr.row, 1
	return nil
}

// editAction tells the session what a control did to the request.
type editAction int

const (
	actionNone editAction = iota
	actionCancel
)

// control applies a complete control descriptor.
func (e *editor) control(c Control) (editAction, error) {
	switch c.Kind {
	case ControlSingleByte:
		return actionNone, e.controlByte(c.Cmd)
	case ControlEscape:
		switch {
		case c.Intro == 'O':
			return actionNone, e.key(c.Subtype)
		case c.Cmd == keyEscape:
			return actionCancel, nil
		case c.Cmd == 'b':
			return actionNone, e.wordLeft()
		case c.Cmd == 'f':
			return actionNone, e.wordRight()
		}
		return actionNone, nil
	case ControlCSI:
		return actionNone, e.key(c.Subtype)
	}
	return actionNone, nil
}

func (e *editor) controlByte(b byte) error {
	switch b {
	case keyCtrlA:
		return e.moveTo(0)
	case keyCtrlB:
		return e.moveTo(e.point - 1)
	case keyCtrlD:
		return e.deleteAtPoint()
	case keyCtrlE:
		return e.moveTo(len(e.line))
	case keyCtrlF:
		return e.moveTo(e.point + 1)
	case keyBackspace, keyDelete:
		return e.backspace()
	case keyCtrlK:
		return e.killToEnd()
	case keyCtrlL:
		return e.redraw()
	case keyCtrlN:
		return e.historyStep(-1)
	case keyCtrlP:
		return e.historyStep(1)
	case keyCtrlU:
		return e.killToStart()
	case keyCtrlY:
		return e.yank()
	}
	e.ring()
	return nil
}

func (e *editor) key(st Subtype) error {
	switch st {
	case SubtypeArrowLeft:
		return e.moveTo(e.point - 1)
	case SubtypeArrowRight:
		return e.moveTo(e.point + 1)
	case SubtypeHome:
		return e.moveTo(0)
	case SubtypeEnd:
		return e.moveTo(len(e.line))
	case SubtypeArrowUp:
		return e.historyStep(1)
	case SubtypeArrowDown:
		return e.historyStep(-1)
	case SubtypeDelete:
		return e.deleteAtPoint()
	}
	return nil
}
