package asyncterm

// history presents a HistoryProvider most-recent-first and skips
// consecutive duplicates and empty lines.
type history struct {
	store HistoryProvider
}

// add records a completed line. It reports whether the line was stored.
func (h history) add(line string) bool {
	if line == "" {
		return false
	}
	if n := h.store.Len(); n > 0 && h.store.Line(n-1) == line {
		return false
	}
	h.store.Push(line)
	return true
}

// len returns the number of entries.
func (h history) len() int {
	return h.store.Len()
}

// entry returns entry i, where 0 is the most recent.
func (h history) entry(i int) string {
	return h.store.Line(h.store.Len() - 1 - i)
}

// list returns all entries, most recent first.
func (h history) list() []string {
	out := make([]string, h.len())
	for i := range out {
		out[i] = h.entry(i)
	}
	return out
}

// historyCursor walks the history while a line is edited. pos -1 is the
// line being composed, which is parked in scratch while browsing.
type historyCursor struct {
	pos     int
	scratch []byte
}

func newHistoryCursor() historyCursor {
	return historyCursor{pos: -1}
}

// step moves by delta (+1 older, -1 newer) and returns the text to show.
// ok is false at either end.
func (c *historyCursor) step(h history, current []byte, delta int) (text []byte, ok bool) {
	next := c.pos + delta
	if next < -1 || next >= h.len() {
		return nil, false
	}
	if c.pos == -1 {
		c.scratch = append(c.scratch[:0], current...)
	}
	c.pos = next
	if next == -1 {
		return append([]byte(nil), c.scratch...), true
	}
	return []byte(h.entry(next)), true
}
