package asyncterm

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

var (
	errClosed  = errors.New("session closed")
	errPending = errors.New("line request already pending")
)

// Session is a single-threaded line editor on top of a Device.
//
// A Session never starts goroutines: every method does a bounded amount of
// work and waits at most for the timeout it is given. It is not safe for
// concurrent use.
type Session struct {
	dev    Device
	ctl    *controller
	queue  inputQueue
	poller *poller
	scr    *screen
	print  anchor
	state  SessionState
	ready  *string
	hist   history

	historySize        *int
	log                *slog.Logger
	bellProvider       BellProvider
	audible            bool
	timeout            time.Duration
	cursorQueryTimeout time.Duration

	// splitCR is set when a line ended on a CR that was the last byte read.
	splitCR bool

	fatal  error
	closed bool
}

// New claims dev: it switches the terminal to raw mode, reads the geometry
// and asks the terminal where the cursor is. Output printed before the first
// line request starts there.
func New(dev Device, opts ...Option) (*Session, error) {
	s := &Session{
		dev:                dev,
		state:              StateIdle{},
		log:                slog.New(slog.DiscardHandler),
		bellProvider:       NoopBell{},
		audible:            true,
		timeout:            defaultTimeout,
		cursorQueryTimeout: defaultCursorQueryTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.hist.store == nil {
		s.hist.store = NewMemoryHistory(defaultHistorySize)
	}
	if s.historySize != nil {
		s.hist.store.SetMaxLines(*s.historySize)
	}
	if s.bellProvider == nil {
		s.bellProvider = NoopBell{}
	}

	s.ctl = newController(dev, s.log)
	if err := s.ctl.acquire(); err != nil {
		_ = s.ctl.release()
		return nil, err
	}
	rows, cols, _ := s.ctl.geometry(false)
	s.scr = newScreen(dev, rows, cols)
	s.scr.onScroll = s.scrolled
	s.poller = newPoller(dev, &s.queue, s.log)

	if err := s.locateCursor(); err != nil {
		_ = s.ctl.release()
		return nil, err
	}
	s.log.Debug("session started", "rows", rows, "cols", cols, "row", s.scr.row, "col", s.scr.col)
	return s, nil
}

// Run creates a session on dev, calls fn and closes the session on every
// exit path, panics included, so the terminal is always restored.
func Run(dev Device, fn func(*Session) error, opts ...Option) (err error) {
	s, err := New(dev, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(s)
}

// Close ends a pending request on a fresh row and restores the terminal.
// It is safe to call more than once.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if req, ok := s.state.(StateLineRequest); ok && s.fatal == nil {
		m := s.mark()
		if err := req.ed.finish(); err != nil {
			s.rollback(m)
		}
	}
	s.state = StateIdle{}
	if s.fatal == nil {
		if err := s.scr.flush(); err != nil {
			s.log.Warn("flush on close failed", "err", err)
		}
	}
	return s.ctl.release()
}

// State returns the current session state.
func (s *Session) State() SessionState {
	return s.state
}

// RequestPending reports whether a line request is pending.
func (s *Session) RequestPending() bool {
	_, ok := s.state.(StateLineRequest)
	return ok
}

// EOF reports whether the terminal input was closed.
func (s *Session) EOF() bool {
	return s.poller.eof
}

// SetTimeout sets the wait used by GetLine and GetChar.
func (s *Session) SetTimeout(d time.Duration) {
	s.timeout = d
}

// History returns the stored lines, most recent first.
func (s *Session) History() []string {
	return s.hist.list()
}

// SetMode switches the terminal attributes. Not allowed while a line
// request is pending; RequestLine and GetChar switch back to raw mode.
func (s *Session) SetMode(m TerminalMode) error {
	if err := s.usable("set mode"); err != nil {
		return err
	}
	if s.RequestPending() {
		return &Error{Kind: KindBusy, Op: "set mode", Err: errPending}
	}
	return s.fail(s.ctl.setMode(m))
}

// RequestLine shows prompt at the print position and starts composing a
// line. It fails with a KindBusy error if a request is already pending.
// Unread GetChar input is discarded.
func (s *Session) RequestLine(prompt string) error {
	if err := s.usable("request line"); err != nil {
		return err
	}
	if s.RequestPending() {
		return &Error{Kind: KindBusy, Op: "request line", Err: errPending}
	}
	if err := s.fail(s.ctl.setMode(ModeRaw)); err != nil {
		return err
	}

	ed := newEditor(s.scr, s.hist, &s.print, s.ring, prompt)
	m := s.mark()
	if err := ed.draw(); err != nil {
		s.rollback(m)
		return err
	}
	if st, ok := s.state.(StateSingleChar); ok && !st.buf.empty() {
		s.log.Debug("discarding unread input")
	}
	s.state = StateLineRequest{ed: ed}
	return s.flush()
}

// CancelRequestLine erases the prompt and the partial line and returns to
// idle. The print position is left where the prompt started. It does
// nothing if no request is pending.
func (s *Session) CancelRequestLine() error {
	if err := s.usable("cancel request"); err != nil {
		return err
	}
	req, ok := s.state.(StateLineRequest)
	if !ok {
		return nil
	}
	if err := s.atomic(req.ed.erase); err != nil {
		return err
	}
	s.state = StateIdle{}
	return s.flush()
}

// PeekLine returns the line being composed, or "" if no request is pending.
func (s *Session) PeekLine() string {
	if req, ok := s.state.(StateLineRequest); ok {
		return req.ed.text()
	}
	return ""
}

// GetLine is GetLineTimeout with the session timeout.
func (s *Session) GetLine(dest *string) (bool, error) {
	return s.GetLineTimeout(dest, s.timeout)
}

// GetLineTimeout processes input for the pending request. If a line is
// completed it is stored in dest and true is returned; otherwise dest is
// left alone. Each call applies everything already read, up to the end of
// a line, rather than one key at a time, and then returns; callers wanting
// a whole line must loop. It waits for input only when nothing queued could
// be processed, and then at most timeout (Forever waits, NoWait does not).
func (s *Session) GetLineTimeout(dest *string, timeout time.Duration) (bool, error) {
	if err := s.usable("get line"); err != nil {
		return false, err
	}
	if s.deliver(dest) {
		return true, nil
	}
	if !s.RequestPending() {
		return false, nil
	}

	processed, err := s.process()
	if err != nil {
		return false, err
	}
	if s.deliver(dest) {
		return true, nil
	}
	if processed {
		return false, nil
	}

	added, err := s.poll(timeout)
	if err != nil || !added {
		return false, err
	}
	if _, err := s.process(); err != nil {
		return false, err
	}
	return s.deliver(dest), nil
}

// Update processes queued input without waiting.
func (s *Session) Update() error {
	return s.UpdateTimeout(NoWait)
}

// UpdateTimeout reads input, waiting at most timeout, and applies it. With
// a pending request the line is edited and may complete; the completed line
// is kept for the next GetLine. Otherwise the input is buffered for GetChar.
func (s *Session) UpdateTimeout(timeout time.Duration) error {
	if err := s.usable("update"); err != nil {
		return err
	}
	if s.RequestPending() {
		processed, err := s.process()
		if err != nil || processed {
			return err
		}
	}
	if _, err := s.poll(timeout); err != nil {
		return err
	}
	if s.RequestPending() {
		_, err := s.process()
		return err
	}
	s.charBuffer().absorb(s.queue.take())
	return nil
}

// GetChar is GetCharTimeout with the session timeout.
func (s *Session) GetChar() (byte, error) {
	return s.GetCharTimeout(s.timeout)
}

// GetCharTimeout returns the next input byte, or 0 if none arrived within
// timeout. Escape sequences are reported one byte per call. If several
// keys were typed since the last call only the last one is kept; see
// StateSingleChar. Returns a KindBusy error while a line request is pending.
func (s *Session) GetCharTimeout(timeout time.Duration) (byte, error) {
	if err := s.usable("get char"); err != nil {
		return 0, err
	}
	if s.RequestPending() {
		return 0, &Error{Kind: KindBusy, Op: "get char", Err: errPending}
	}
	if err := s.fail(s.ctl.setMode(ModeRaw)); err != nil {
		return 0, err
	}

	buf := s.charBuffer()
	if b, ok := buf.next(); ok {
		return b, nil
	}
	if _, err := s.poll(timeout); err != nil {
		return 0, err
	}
	buf.absorb(s.queue.take())
	b, _ := buf.next()
	return b, nil
}

// Print writes text at the print position. A pending prompt and line are
// erased first and redrawn after the text, so output never mixes with the
// line being edited. Text may span rows and need not end with a newline.
func (s *Session) Print(text string) error {
	if err := s.usable("print"); err != nil {
		return err
	}
	if err := s.atomic(func() error { return s.printText(text) }); err != nil {
		return err
	}
	return s.flush()
}

// Printf formats according to a format specifier and prints the result.
func (s *Session) Printf(format string, args ...any) error {
	return s.Print(fmt.Sprintf(format, args...))
}

func (s *Session) printText(text string) error {
	req, pending := s.state.(StateLineRequest)
	if pending {
		if err := req.ed.erase(); err != nil {
			return err
		}
	} else {
		if s.print.row < 1 {
			s.print = anchor{row: 1, col: 1}
		}
		if err := s.scr.moveTo(s.print.row, s.print.col); err != nil {
			return err
		}
	}

	s.scr.writeText(text)
	s.print = anchor{row: s.scr.row, col: s.scr.col}

	if pending {
		return req.ed.draw()
	}
	return nil
}

// Beep rings the bell.
func (s *Session) Beep() error {
	if err := s.usable("beep"); err != nil {
		return err
	}
	s.ring()
	return s.flush()
}

// ScreenSize returns the geometry captured at start or by ReinitState.
func (s *Session) ScreenSize() (rows, cols int) {
	return s.scr.rows, s.scr.cols
}

// ReinitState reads the geometry again, clears the screen and repaints a
// pending prompt and line at the top. Use it after a resize or a
// KindBufferOverflow error.
func (s *Session) ReinitState() error {
	if err := s.usable("reinit"); err != nil {
		return err
	}
	rows, cols, err := s.ctl.geometry(true)
	if err != nil {
		return s.fail(err)
	}

	s.scr.resize(rows, cols)
	s.scr.clear()
	s.scr.home()
	s.print = anchor{row: 1, col: 1}
	if req, ok := s.state.(StateLineRequest); ok {
		if err := s.atomic(req.ed.draw); err != nil {
			if ferr := s.flush(); ferr != nil {
				return ferr
			}
			return err
		}
	}
	s.log.Debug("terminal reinitialized", "rows", rows, "cols", cols)
	return s.flush()
}

// ClearScreen erases the whole screen. The cursor does not move.
// Calling it while a line request is pending leaves the request undrawn.
func (s *Session) ClearScreen() error {
	if err := s.usable("clear screen"); err != nil {
		return err
	}
	s.scr.clear()
	return s.flush()
}

// CursorHome moves the cursor and the print position to the top left.
func (s *Session) CursorHome() error {
	if err := s.usable("cursor home"); err != nil {
		return err
	}
	s.scr.home()
	if !s.RequestPending() {
		s.print = anchor{row: 1, col: 1}
	}
	return s.flush()
}

// CursorSet moves the cursor to a 1-based position. Without a pending
// request the next Print starts there.
func (s *Session) CursorSet(row, col int) error {
	if err := s.usable("cursor set"); err != nil {
		return err
	}
	if !s.scr.inBounds(row, col) {
		return newError(KindRange, "cursor set",
			"position %d;%d outside %dx%d screen", row, col, s.scr.rows, s.scr.cols)
	}
	if err := s.scr.moveTo(row, col); err != nil {
		return err
	}
	if !s.RequestPending() {
		s.print = anchor{row: row, col: col}
	}
	return s.flush()
}

// CursorGet asks the terminal for the cursor position and resynchronizes
// the cursor model with the answer. Input typed meanwhile is kept. If the
// terminal does not answer in time the tracked position is returned.
func (s *Session) CursorGet() (row, col int, err error) {
	if err := s.usable("cursor get"); err != nil {
		return 0, 0, err
	}
	row, col, ok, err := s.queryCursor()
	if err != nil {
		return 0, 0, err
	}
	if !ok {
		s.log.Debug("no cursor position report, using tracked position")
		return s.scr.row, s.scr.col, nil
	}
	s.scr.row, s.scr.col = row, col
	if !s.RequestPending() {
		s.print = anchor{row: row, col: col}
	}
	return row, col, nil
}

// locateCursor sets the initial cursor model. Without an answer from the
// terminal the screen is cleared so the model is known.
func (s *Session) locateCursor() error {
	row, col, ok, err := s.queryCursor()
	if err != nil {
		return err
	}
	if !ok {
		s.log.Warn("terminal did not report the cursor position, clearing screen")
		s.scr.clear()
		s.scr.home()
		row, col = 1, 1
		if err := s.flush(); err != nil {
			return err
		}
	}
	s.scr.row, s.scr.col = row, col
	s.print = anchor{row: row, col: col}
	return nil
}

// queryCursor sends DSR 6 and waits for the report.
func (s *Session) queryCursor() (row, col int, ok bool, err error) {
	s.scr.out = append(s.scr.out, seqCursorQuery...)
	if err := s.flush(); err != nil {
		return 0, 0, false, err
	}

	deadline := time.Now().Add(s.cursorQueryTimeout)
	for {
		if row, col, found := s.takeCursorReport(); found {
			if !s.scr.inBounds(row, col) {
				row = min(max(row, 1), s.scr.rows)
				col = min(max(col, 1), s.scr.cols)
			}
			return row, col, true, nil
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return 0, 0, false, nil
		}
		if _, err := s.poll(remaining); err != nil {
			return 0, 0, false, err
		}
		if s.poller.eof {
			return 0, 0, false, nil
		}
	}
}

// takeCursorReport removes the first cursor position report from the queue.
func (s *Session) takeCursorReport() (row, col int, found bool) {
	buf := s.queue.pending()
	for off := 0; off < len(buf); {
		state, c, err := ParseControl(buf, off)
		switch state {
		case EditIncomplete, EditDone:
			return 0, 0, false
		case EditNext:
			off++
			continue
		}
		if state == EditCtrl && err == nil && c.Subtype == SubtypeCursorPositionReport {
			s.queue.cut(c.Start, c.End)
			return c.Param(0, 1), c.Param(1, 1), true
		}
		off = max(c.End, off+1)
	}
	return 0, 0, false
}

// process applies queued input to the pending request.
func (s *Session) process() (bool, error) {
	req := s.state.(StateLineRequest)
	processed, err := s.compose(req.ed)
	if ferr := s.flush(); ferr != nil {
		return processed, ferr
	}
	return processed, err
}

// compose feeds queued input to the editor until the input runs out, the
// line completes or the request is cancelled.
func (s *Session) compose(ed *editor) (processed bool, err error) {
	defer s.queue.compact()

	for {
		buf := s.queue.pending()
		state, c, perr := ParseControl(buf, 0)

		switch state {
		case EditDone, EditIncomplete:
			return processed, nil

		case EditNext:
			n := 1
			for n < len(buf) && isText(buf[n]) {
				n++
			}
			text := buf[:n]
			err = s.atomic(func() error { return ed.insert(text) })
			s.queue.advance(n)

		case EditEnd:
			s.queue.advance(c.End)
			s.splitCR = c.Cmd == '\r' && c.End == len(buf)
			if err = s.atomic(ed.finish); err == nil {
				s.complete(ed)
				return true, nil
			}

		case EditCtrl:
			s.queue.advance(max(c.End, 1))
			if perr != nil {
				s.log.Debug("skipping malformed control sequence", "err", perr)
				return true, perr
			}
			var action editAction
			err = s.atomic(func() (aerr error) {
				action, aerr = ed.control(c)
				return aerr
			})
			if err == nil && action == actionCancel {
				if err = s.atomic(ed.erase); err == nil {
					s.state = StateIdle{}
					s.log.Debug("line request cancelled")
					return true, nil
				}
			}
		}

		processed = true
		if err != nil {
			return processed, err
		}
	}
}

// complete finishes the request and queues the line for GetLine.
func (s *Session) complete(ed *editor) {
	text := ed.text()
	s.hist.add(text)
	s.state = StateIdle{}
	s.ready = &text
	s.log.Debug("line completed", "len", len(text))
}

func (s *Session) deliver(dest *string) bool {
	if s.ready == nil {
		return false
	}
	if dest != nil {
		*dest = *s.ready
	}
	s.ready = nil
	return true
}

// charBuffer switches to single-char mode and returns its buffer.
func (s *Session) charBuffer() *charBuffer {
	if st, ok := s.state.(StateSingleChar); ok {
		return st.buf
	}
	buf := &charBuffer{}
	buf.absorb(s.queue.take())
	s.state = StateSingleChar{buf: buf}
	return buf
}

func (s *Session) ring() {
	s.bellProvider.Ring()
	if s.audible {
		s.scr.bell()
	}
}

// scrolled keeps the anchors on the same text when output scrolls.
func (s *Session) scrolled(n int) {
	s.print.row -= n
	if req, ok := s.state.(StateLineRequest); ok {
		req.ed.lay.promptEndRow -= n
	}
}

func (s *Session) poll(timeout time.Duration) (bool, error) {
	added, err := s.poller.poll(timeout)
	if added && s.splitCR {
		s.splitCR = false
		if buf := s.queue.pending(); len(buf) > 0 && buf[0] == '\n' {
			s.queue.advance(1)
			s.queue.compact()
			added = s.queue.len() > 0
		}
	}
	return added, s.fail(err)
}

func (s *Session) flush() error {
	return s.fail(s.scr.flush())
}

// fail records fatal errors; later calls return them.
func (s *Session) fail(err error) error {
	if err != nil && IsFatal(err) && s.fatal == nil {
		s.fatal = err
		s.log.Error("terminal failure, session unusable", "err", err)
	}
	return err
}

func (s *Session) usable(op string) error {
	if s.closed {
		return &Error{Kind: KindIO, Op: op, Err: errClosed}
	}
	return s.fatal
}

// sessionMark is a restorable copy of everything an operation may change.
type sessionMark struct {
	scr   screenMark
	print anchor
	ed    *editorState
}

func (s *Session) mark() sessionMark {
	m := sessionMark{scr: s.scr.mark(), print: s.print}
	if req, ok := s.state.(StateLineRequest); ok {
		st := req.ed.save()
		m.ed = &st
	}
	return m
}

func (s *Session) rollback(m sessionMark) {
	s.scr.restore(m.scr)
	s.print = m.print
	if req, ok := s.state.(StateLineRequest); ok && m.ed != nil {
		req.ed.load(*m.ed)
	}
}

// atomic runs fn and undoes its effects on the session if it fails.
func (s *Session) atomic(fn func() error) error {
	m := s.mark()
	if err := fn(); err != nil {
		s.rollback(m)
		return err
	}
	return nil
}
