package asyncterm

import "strconv"

// Output sequences. The cursor addressing helpers append to a caller-owned
// buffer so a whole editor update goes out in one write.

const (
	seqClearScreen = "\x1b[2J"
	seqHome        = "\x1b[H"
	seqCursorQuery = "\x1b[6n"
	seqNewline     = "\r\n"
)

// eraseMode selects the part of a row EL erases.
type eraseMode int

const (
	// eraseToEnd erases from the cursor to the end of the row.
	eraseToEnd eraseMode = iota
	// eraseToStart erases from the start of the row to the cursor.
	eraseToStart
	// eraseAll erases the whole row.
	eraseAll
)

func (m eraseMode) valid() bool {
	return m >= eraseToEnd && m <= eraseAll
}

// appendCSI appends ESC [ n final, omitting n when it is 1.
func appendCSI(b []byte, n int, final byte) []byte {
	b = append(b, 0x1b, '[')
	if n != 1 {
		b = strconv.AppendInt(b, int64(n), 10)
	}
	return append(b, final)
}

// appendCursorPos appends CUP for a 1-based row and column.
func appendCursorPos(b []byte, row, col int) []byte {
	b = append(b, 0x1b, '[')
	b = strconv.AppendInt(b, int64(row), 10)
	b = append(b, ';')
	b = strconv.AppendInt(b, int64(col), 10)
	return append(b, 'H')
}

func appendCursorForward(b []byte, n int) []byte {
	return appendCSI(b, n, 'C')
}

func appendCursorBackward(b []byte, n int) []byte {
	return appendCSI(b, n, 'D')
}

// appendEraseRow appends EL with the given mode.
func appendEraseRow(b []byte, mode eraseMode) []byte {
	b = append(b, 0x1b, '[')
	if mode != eraseToEnd {
		b = strconv.AppendInt(b, int64(mode), 10)
	}
	return append(b, 'K')
}

// appendEraseChars appends ECH, blanking n cells from the cursor.
func appendEraseChars(b []byte, n int) []byte {
	return appendCSI(b, n, 'X')
}
