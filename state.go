package asyncterm

// SessionState is one of StateIdle, StateLineRequest or StateSingleChar.
type SessionState interface {
	sessionState()
	String() string
}

// StateIdle means no line request is pending and no single-character input is buffered.
type StateIdle struct{}

// StateLineRequest means a line is being composed.
type StateLineRequest struct {
	ed *editor
}

// Prompt returns the prompt of the pending request.
func (s StateLineRequest) Prompt() string {
	return s.ed.prompt
}

// StateSingleChar means input is read a byte at a time with GetChar.
type StateSingleChar struct {
	buf *charBuffer
}

func (StateIdle) sessionState()        {}
func (StateLineRequest) sessionState() {}
func (StateSingleChar) sessionState()  {}

func (StateIdle) String() string        { return "idle" }
func (StateLineRequest) String() string { return "line-request-pending" }
func (StateSingleChar) String() string  { return "single-char" }

// charBuffer holds input for GetChar. seq is the undrained rest of the key
// being reported; extra is at most one byte typed after it. Input arriving
// while seq is undrained replaces extra with its own last byte. Input
// arriving when seq is drained keeps only its last key, so a burst of
// typing reports the most recent key.
type charBuffer struct {
	seq      []byte
	extra    byte
	hasExtra bool
}

func (c *charBuffer) absorb(p []byte) {
	if len(p) == 0 {
		return
	}
	if len(c.seq) > 0 {
		c.extra, c.hasExtra = p[len(p)-1], true
		return
	}

	var buf []byte
	if c.hasExtra {
		buf = append(buf, c.extra)
	}
	buf = append(buf, p...)

	last := lastKey(buf)
	c.hasExtra = false
	if len(last) == 1 {
		c.extra, c.hasExtra = last[0], true
		c.seq = nil
		return
	}
	c.seq = append([]byte(nil), last...)
}

// next returns the next buffered byte.
func (c *charBuffer) next() (byte, bool) {
	if len(c.seq) > 0 {
		b := c.seq[0]
		c.seq = c.seq[1:]
		return b, true
	}
	if c.hasExtra {
		c.hasExtra = false
		return c.extra, true
	}
	return 0, false
}

func (c *charBuffer) empty() bool {
	return len(c.seq) == 0 && !c.hasExtra
}

// lastKey returns the bytes of the last key in buf. A trailing incomplete
// sequence counts as a key.
func lastKey(buf []byte) []byte {
	start, off := 0, 0
	for off < len(buf) {
		state, c, _ := ParseControl(buf, off)
		start = off
		switch state {
		case EditIncomplete:
			return buf[start:]
		case EditNext:
			off++
		default:
			off = max(c.End, off+1)
		}
	}
	return buf[start:]
}
