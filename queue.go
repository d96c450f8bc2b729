package asyncterm

// inputQueue is a growable byte queue with a read cursor. Bytes before the
// cursor are processed and dropped by compact.
type inputQueue struct {
	buf  []byte
	next int
}

// append adds bytes read from the terminal.
func (q *inputQueue) append(p []byte) {
	q.buf = append(q.buf, p...)
}

// pending returns the unprocessed bytes. The slice is valid until the next mutation.
func (q *inputQueue) pending() []byte {
	return q.buf[q.next:]
}

func (q *inputQueue) len() int {
	return len(q.buf) - q.next
}

// advance marks n pending bytes as processed.
func (q *inputQueue) advance(n int) {
	q.next += n
	if q.next > len(q.buf) {
		q.next = len(q.buf)
	}
}

// compact drops processed bytes.
func (q *inputQueue) compact() {
	if q.next == 0 {
		return
	}
	n := copy(q.buf, q.buf[q.next:])
	q.buf = q.buf[:n]
	q.next = 0
}

// cut removes pending bytes [start, end), offsets relative to pending().
func (q *inputQueue) cut(start, end int) {
	start += q.next
	end += q.next
	q.buf = append(q.buf[:start], q.buf[end:]...)
}

// take removes and returns all pending bytes.
func (q *inputQueue) take() []byte {
	p := append([]byte(nil), q.pending()...)
	q.reset()
	return p
}

func (q *inputQueue) reset() {
	q.buf = q.buf[:0]
	q.next = 0
}
