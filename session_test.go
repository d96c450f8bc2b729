package asyncterm

import (
	"errors"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielgatis/go-asyncterm/vt"
)

type countingBell struct {
	rings int
}

func (b *countingBell) Ring() { b.rings++ }

func newTestSession(t *testing.T, rows, cols int, opts ...Option) (*Session, *vt.Device) {
	t.Helper()
	return newTestSessionOn(t, vt.NewDevice(vt.WithSize(rows, cols)), opts...)
}

func newTestSessionOn(t *testing.T, dev *vt.Device, opts ...Option) (*Session, *vt.Device) {
	t.Helper()
	s, err := New(dev, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, dev
}

// typeLine types input and runs GetLine until a line completes.
func typeLine(t *testing.T, s *Session, dev *vt.Device, input string) string {
	t.Helper()
	dev.Type(input)
	var line string
	for i := 0; i < 10; i++ {
		ok, err := s.GetLineTimeout(&line, NoWait)
		require.NoError(t, err)
		if ok {
			return line
		}
	}
	t.Fatalf("no line completed for %q", input)
	return ""
}

// feed types input and processes it without completing a line.
func feed(t *testing.T, s *Session, dev *vt.Device, input string) {
	t.Helper()
	dev.Type(input)
	for dev.Pending() > 0 {
		_, err := s.GetLineTimeout(nil, NoWait)
		require.NoError(t, err)
	}
}

func TestNewSession(t *testing.T) {
	s, dev := newTestSession(t, 24, 80)

	assert.True(t, dev.Raw())
	assert.False(t, dev.Echo())
	rows, cols := s.ScreenSize()
	assert.Equal(t, 24, rows)
	assert.Equal(t, 80, cols)
	assert.Equal(t, "idle", s.State().String())
	assert.False(t, s.RequestPending())
}

func TestNewSessionStartsAtCursor(t *testing.T) {
	dev := vt.NewDevice(vt.WithSize(10, 40))
	dev.Screen().WriteString("$ run\r\n")
	s, _ := newTestSessionOn(t, dev)

	require.NoError(t, s.Print("hi"))
	assert.Equal(t, "$ run", dev.Screen().LineContent(0))
	assert.Equal(t, "hi", dev.Screen().LineContent(1))
}

func TestNewSessionWithoutCursorReport(t *testing.T) {
	dev := vt.NewDevice(vt.WithSize(10, 40))
	dev.Screen().WriteString("junk")
	dev.SetAnswerback(false)
	s, _ := newTestSessionOn(t, dev, WithCursorQueryTimeout(10*time.Millisecond))

	assert.Equal(t, "", dev.Screen().String())
	require.NoError(t, s.Print("ok"))
	assert.Equal(t, "ok", dev.Screen().LineContent(0))
}

func TestRequestLineDrawsPrompt(t *testing.T) {
	s, dev := newTestSession(t, 24, 80)

	require.NoError(t, s.RequestLine("$ "))
	assert.True(t, s.RequestPending())
	assert.Equal(t, "line-request-pending", s.State().String())
	assert.Equal(t, "$", dev.Screen().LineContent(0))

	row, col := dev.Screen().CursorPos()
	assert.Equal(t, 0, row)
	assert.Equal(t, 2, col)

	st, ok := s.State().(StateLineRequest)
	require.True(t, ok)
	assert.Equal(t, "$ ", st.Prompt())
}

func TestTypingAtEndWritesOnlyGlyphs(t *testing.T) {
	s, dev := newTestSession(t, 24, 80)
	require.NoError(t, s.RequestLine("> "))

	var moves int
	var typed []rune
	dev.Screen().SetMiddleware(&vt.Middleware{
		Input: func(r rune, next func(rune)) {
			typed = append(typed, r)
			next(r)
		},
		Goto: func(row, col int, next func(int, int)) {
			moves++
			next(row, col)
		},
	})

	feed(t, s, dev, "hello")
	assert.Equal(t, "hello", string(typed))
	assert.Zero(t, moves)
	assert.Equal(t, "> hello", dev.Screen().LineContent(0))
}

func TestGetLine(t *testing.T) {
	s, dev := newTestSession(t, 24, 80)
	require.NoError(t, s.RequestLine("> "))

	line := typeLine(t, s, dev, "hello\r")

	assert.Equal(t, "hello", line)
	assert.False(t, s.RequestPending())
	assert.Equal(t, "> hello", dev.Screen().LineContent(0))
	row, col := dev.Screen().CursorPos()
	assert.Equal(t, 1, row)
	assert.Equal(t, 0, col)
}

func TestGetLineWithoutRequest(t *testing.T) {
	s, dev := newTestSession(t, 24, 80)
	dev.Type("abc\r")

	line := "unchanged"
	ok, err := s.GetLineTimeout(&line, NoWait)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "unchanged", line)
}

func TestGetLineLineEndings(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"cr", "x\r"},
		{"lf", "x\n"},
		{"crlf", "x\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, dev := newTestSession(t, 24, 80)
			require.NoError(t, s.RequestLine("> "))
			assert.Equal(t, "x", typeLine(t, s, dev, tt.input))

			// CR LF is one terminator, so nothing is left to end a second line.
			require.NoError(t, s.RequestLine("> "))
			ok, err := s.GetLineTimeout(nil, NoWait)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestGetLineCRLFSplitAcrossReads(t *testing.T) {
	s, dev := newTestSession(t, 24, 80)

	require.NoError(t, s.RequestLine("> "))
	assert.Equal(t, "abc", typeLine(t, s, dev, "abc\r"))

	dev.Type("\n")
	require.NoError(t, s.RequestLine("> "))
	var line string
	ok, err := s.GetLineTimeout(&line, NoWait)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, s.RequestPending())
	assert.Equal(t, "def", typeLine(t, s, dev, "def\r"))

	// Only an LF directly after the split CR is dropped.
	require.NoError(t, s.RequestLine("> "))
	assert.Equal(t, "x", typeLine(t, s, dev, "x\r"))
	assert.Equal(t, []string{"x", "def", "abc"}, s.History())
}

func TestGetLineAppliesQueuedInput(t *testing.T) {
	s, dev := newTestSession(t, 24, 80)
	require.NoError(t, s.RequestLine("> "))

	dev.Type("hello\x01x")
	ok, err := s.GetLineTimeout(nil, NoWait)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "xhello", s.PeekLine())
}

func TestGetLineTimeoutWaits(t *testing.T) {
	s, _ := newTestSession(t, 24, 80)
	require.NoError(t, s.RequestLine("> "))

	start := time.Now()
	ok, err := s.GetLineTimeout(nil, 20*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestGetLineForeverReturnsOnInput(t *testing.T) {
	s, dev := newTestSession(t, 24, 80)
	require.NoError(t, s.RequestLine("> "))

	go func() {
		time.Sleep(10 * time.Millisecond)
		dev.Type("go\r")
	}()

	var line string
	ok, err := s.GetLineTimeout(&line, Forever)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "go", line)
}

func TestRequestLineBusy(t *testing.T) {
	s, _ := newTestSession(t, 24, 80)
	require.NoError(t, s.RequestLine("> "))

	err := s.RequestLine("> ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBusy))

	_, err = s.GetChar()
	assert.True(t, errors.Is(err, ErrBusy))

	assert.True(t, errors.Is(s.SetMode(ModeCooked), ErrBusy))
}

func TestEditingKeys(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "abc\r", "abc"},
		{"insert after left arrow", "helo\x1b[Dl\r", "hello"},
		{"insert after ss3 left arrow", "helo\x1bODl\r", "hello"},
		{"ctrl-a inserts at start", "world\x01hello \r", "hello world"},
		{"ctrl-e back to end", "ab\x01\x05c\r", "abc"},
		{"ctrl-b ctrl-f", "ac\x02b\x06d\r", "abcd"},
		{"home and end keys", "bc\x1b[Ha\x1b[Fd\r", "abcd"},
		{"tilde home", "bc\x1b[1~a\r", "abc"},
		{"backspace", "abd\x7fc\r", "abc"},
		{"ctrl-h", "abd\x08c\r", "abc"},
		{"ctrl-d deletes at point", "abxc\x02\x02\x04\r", "abc"},
		{"delete key", "abxc\x1b[D\x1b[D\x1b[3~\r", "abc"},
		{"ctrl-k", "hello world\x1bb\x0b\r", "hello "},
		{"ctrl-u", "junk\x02\x02\x15\r", "nk"},
		{"kill and yank", "abc def\x15\x19\x19\r", "abc defabc def"},
		{"word left and right", "one two\x1bb\x1bb\x1bf!\r", "one! two"},
		{"ignored function key", "a\x1b[15~b\r", "ab"},
		{"ignored page up", "a\x1b[5~b\r", "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, dev := newTestSession(t, 24, 80)
			require.NoError(t, s.RequestLine("> "))
			got := typeLine(t, s, dev, tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, strings.TrimRight("> "+tt.want, " "), dev.Screen().LineContent(0))
		})
	}
}

func TestEditingRingsBell(t *testing.T) {
	bell := &countingBell{}
	vtBell := &vt.CountingBell{}
	dev := vt.NewDevice(vt.WithSize(24, 80), vt.WithBell(vtBell))
	s, _ := newTestSessionOn(t, dev, WithBell(bell))
	require.NoError(t, s.RequestLine("> "))

	feed(t, s, dev, "\x02\x7f\x04\x0b\x19")
	assert.Equal(t, 5, bell.rings)
	assert.Equal(t, 5, vtBell.Count())

	feed(t, s, dev, "\x07")
	assert.Equal(t, 6, bell.rings)
	assert.Equal(t, "", s.PeekLine())
}

func TestSilentBell(t *testing.T) {
	bell := &countingBell{}
	vtBell := &vt.CountingBell{}
	dev := vt.NewDevice(vt.WithSize(24, 80), vt.WithBell(vtBell))
	s, _ := newTestSessionOn(t, dev, WithBell(bell), WithAudibleBell(false))

	require.NoError(t, s.Beep())
	assert.Equal(t, 1, bell.rings)
	assert.Equal(t, 0, vtBell.Count())
}

func TestBeep(t *testing.T) {
	vtBell := &vt.CountingBell{}
	dev := vt.NewDevice(vt.WithSize(24, 80), vt.WithBell(vtBell))
	s, _ := newTestSessionOn(t, dev)

	require.NoError(t, s.Beep())
	assert.Equal(t, 1, vtBell.Count())
}

func TestCancelWithEscapeEscape(t *testing.T) {
	s, dev := newTestSession(t, 24, 80)
	require.NoError(t, s.RequestLine("> "))

	dev.Type("abc\x1b\x1b")
	ok, err := s.GetLineTimeout(nil, NoWait)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.False(t, s.RequestPending())
	assert.Equal(t, "", dev.Screen().LineContent(0))
	assert.Empty(t, s.History())
}

func TestEscapeThenTextKeepsText(t *testing.T) {
	s, dev := newTestSession(t, 24, 80)
	require.NoError(t, s.RequestLine("> "))

	feed(t, s, dev, "ab\x1b")
	assert.Equal(t, "ab", s.PeekLine())

	feed(t, s, dev, "c")
	assert.True(t, s.RequestPending())
	assert.Equal(t, "abc", s.PeekLine())

	feed(t, s, dev, "\x1bq")
	assert.Equal(t, "abcq", s.PeekLine())
	assert.Equal(t, "> abcq", dev.Screen().LineContent(0))
}

func TestEscapeTextEscapeDoesNotCancel(t *testing.T) {
	s, dev := newTestSession(t, 24, 80)
	require.NoError(t, s.RequestLine("> "))

	assert.Equal(t, "axy", typeLine(t, s, dev, "a\x1bx\x1by\r"))
}

func TestCancelRequestLine(t *testing.T) {
	s, dev := newTestSession(t, 24, 80)
	require.NoError(t, s.CancelRequestLine())

	require.NoError(t, s.RequestLine("> "))
	feed(t, s, dev, "xy")
	assert.Equal(t, "xy", s.PeekLine())

	require.NoError(t, s.CancelRequestLine())
	assert.False(t, s.RequestPending())
	assert.Equal(t, "", s.PeekLine())
	assert.Equal(t, "", dev.Screen().String())
	require.NoError(t, s.CancelRequestLine())

	require.NoError(t, s.Print("next"))
	assert.Equal(t, "next", dev.Screen().LineContent(0))
}

func TestPrintAbovePendingLine(t *testing.T) {
	s, dev := newTestSession(t, 24, 80)
	require.NoError(t, s.RequestLine("> "))
	feed(t, s, dev, "ab")

	require.NoError(t, s.Print("status\n"))
	assert.Equal(t, "status", dev.Screen().LineContent(0))
	assert.Equal(t, "> ab", dev.Screen().LineContent(1))

	require.NoError(t, s.Printf("%d%%\n", 50))
	assert.Equal(t, "50%", dev.Screen().LineContent(1))
	assert.Equal(t, "> ab", dev.Screen().LineContent(2))

	row, col := dev.Screen().CursorPos()
	assert.Equal(t, 2, row)
	assert.Equal(t, 4, col)

	assert.Equal(t, "abc", typeLine(t, s, dev, "c\r"))
}

func TestPrintWithoutNewlineSharesRowWithPrompt(t *testing.T) {
	s, dev := newTestSession(t, 24, 80)
	require.NoError(t, s.RequestLine("> "))

	require.NoError(t, s.Print("a"))
	require.NoError(t, s.Print("b"))
	assert.Equal(t, "ab>", dev.Screen().LineContent(0))
}

func TestPrintIdle(t *testing.T) {
	s, dev := newTestSession(t, 24, 80)

	require.NoError(t, s.Print("one\ntwo\tx"))
	assert.Equal(t, "one", dev.Screen().LineContent(0))
	assert.Equal(t, "two     x", dev.Screen().LineContent(1))
}

func TestPrintAfterCompletedLine(t *testing.T) {
	s, dev := newTestSession(t, 24, 80)
	require.NoError(t, s.RequestLine("> "))
	typeLine(t, s, dev, "cmd\r")

	require.NoError(t, s.Print("result"))
	assert.Equal(t, "> cmd", dev.Screen().LineContent(0))
	assert.Equal(t, "result", dev.Screen().LineContent(1))
}

func TestHistory(t *testing.T) {
	s, dev := newTestSession(t, 24, 80)

	for _, in := range []string{"one", "two", "two", ""} {
		require.NoError(t, s.RequestLine("> "))
		typeLine(t, s, dev, in+"\r")
	}
	assert.Equal(t, []string{"two", "one"}, s.History())

	require.NoError(t, s.RequestLine("> "))
	feed(t, s, dev, "dra")
	feed(t, s, dev, "\x1b[A")
	assert.Equal(t, "two", s.PeekLine())
	feed(t, s, dev, "\x10")
	assert.Equal(t, "one", s.PeekLine())
	feed(t, s, dev, "\x10")
	assert.Equal(t, "one", s.PeekLine())
	feed(t, s, dev, "\x1b[B\x0e")
	assert.Equal(t, "dra", s.PeekLine())

	assert.Equal(t, "draft", typeLine(t, s, dev, "ft\r"))
	assert.Equal(t, []string{"draft", "two", "one"}, s.History())
}

func TestHistorySize(t *testing.T) {
	s, dev := newTestSession(t, 24, 80, WithHistorySize(2))

	for _, in := range []string{"a", "b", "c"} {
		require.NoError(t, s.RequestLine("> "))
		typeLine(t, s, dev, in+"\r")
	}
	assert.Equal(t, []string{"c", "b"}, s.History())
}

func TestHistoryProvider(t *testing.T) {
	h := NewMemoryHistory(0)
	h.Push("earlier")
	s, dev := newTestSession(t, 24, 80, WithHistory(h))

	require.NoError(t, s.RequestLine("> "))
	assert.Equal(t, "earlier", typeLine(t, s, dev, "\x1b[A\r"))
	assert.Equal(t, 1, h.Len())
}

func TestCtrlLRedraws(t *testing.T) {
	s, dev := newTestSession(t, 24, 80)
	require.NoError(t, s.Print("noise\n"))
	require.NoError(t, s.RequestLine("> "))
	feed(t, s, dev, "ab\x0c")

	assert.Equal(t, "> ab", dev.Screen().LineContent(0))
	assert.Equal(t, "", dev.Screen().LineContent(1))
	assert.Equal(t, "abc", typeLine(t, s, dev, "c\r"))
}

func TestWrapping(t *testing.T) {
	tests := []struct {
		name string
		opts []vt.Option
	}{
		{"deferred wrap", nil},
		{"stuck cursor", []vt.Option{vt.WithStuckCursor()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := vt.NewDevice(append([]vt.Option{vt.WithSize(5, 10)}, tt.opts...)...)
			s, _ := newTestSessionOn(t, dev)
			require.NoError(t, s.RequestLine("> "))

			feed(t, s, dev, "abcdefghij")
			assert.Equal(t, "> abcdefgh", dev.Screen().LineContent(0))
			assert.Equal(t, "ij", dev.Screen().LineContent(1))

			feed(t, s, dev, "\x01X")
			assert.Equal(t, "> Xabcdefg", dev.Screen().LineContent(0))
			assert.Equal(t, "hij", dev.Screen().LineContent(1))
			row, col := dev.Screen().CursorPos()
			assert.Equal(t, 0, row)
			assert.Equal(t, 3, col)

			feed(t, s, dev, "\x05\x7f\x7f")
			assert.Equal(t, "h", dev.Screen().LineContent(1))

			assert.Equal(t, "Xabcdefgh", typeLine(t, s, dev, "\r"))
			require.NoError(t, s.Print("next"))
			assert.Equal(t, "next", dev.Screen().LineContent(2))
		})
	}
}

func TestLineEndingAtLastColumn(t *testing.T) {
	tests := []struct {
		name string
		opts []vt.Option
	}{
		{"deferred wrap", nil},
		{"stuck cursor", []vt.Option{vt.WithStuckCursor()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := vt.NewDevice(append([]vt.Option{vt.WithSize(5, 10)}, tt.opts...)...)
			s, _ := newTestSessionOn(t, dev)
			require.NoError(t, s.RequestLine("> "))

			assert.Equal(t, "abcdefgh", typeLine(t, s, dev, "abcdefgh\r"))
			require.NoError(t, s.Print("x"))
			assert.Equal(t, "> abcdefgh", dev.Screen().LineContent(0))
			assert.Equal(t, "x", dev.Screen().LineContent(1))
			assert.Equal(t, "", dev.Screen().LineContent(2))
		})
	}
}

func TestScrollingAtBottom(t *testing.T) {
	s, dev := newTestSession(t, 3, 10)

	for _, in := range []string{"a", "b"} {
		require.NoError(t, s.RequestLine("> "))
		typeLine(t, s, dev, in+"\r")
	}
	require.NoError(t, s.RequestLine("> "))
	feed(t, s, dev, "abcdefghij")

	assert.Equal(t, 1, dev.Screen().Scrolled())
	assert.Equal(t, "> b", dev.Screen().LineContent(0))
	assert.Equal(t, "> abcdefgh", dev.Screen().LineContent(1))
	assert.Equal(t, "ij", dev.Screen().LineContent(2))

	feed(t, s, dev, "\x01X")
	assert.Equal(t, "> Xabcdefg", dev.Screen().LineContent(1))
	assert.Equal(t, "hij", dev.Screen().LineContent(2))

	require.NoError(t, s.Print("log\n"))
	assert.Equal(t, "log", dev.Screen().LineContent(0))
	assert.Equal(t, "> Xabcdefg", dev.Screen().LineContent(1))
	assert.Equal(t, "hij", dev.Screen().LineContent(2))

	assert.Equal(t, "Xabcdefghij", typeLine(t, s, dev, "\r"))
	assert.Equal(t, "", dev.Screen().LineContent(2))
}

func TestBufferOverflowLeavesStateUnchanged(t *testing.T) {
	s, dev := newTestSession(t, 2, 5)
	require.NoError(t, s.RequestLine("> "))
	feed(t, s, dev, "abcdefghijkl")

	dev.Type("\x01")
	_, err := s.GetLineTimeout(nil, NoWait)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBufferOverflow))
	assert.False(t, IsFatal(err))

	assert.True(t, s.RequestPending())
	assert.Equal(t, "abcdefghijkl", s.PeekLine())
	assert.Equal(t, "abcdefghijklm", typeLine(t, s, dev, "m\r"))
}

func TestReinitStateRedraws(t *testing.T) {
	s, dev := newTestSession(t, 10, 20)
	require.NoError(t, s.Print("old output\n"))
	require.NoError(t, s.RequestLine("> "))
	feed(t, s, dev, "abc")

	dev.Screen().Resize(12, 40)
	require.NoError(t, s.ReinitState())

	rows, cols := s.ScreenSize()
	assert.Equal(t, 12, rows)
	assert.Equal(t, 40, cols)
	assert.Equal(t, "> abc", dev.Screen().LineContent(0))
	assert.Equal(t, "", dev.Screen().LineContent(1))
	assert.Equal(t, "abcd", typeLine(t, s, dev, "d\r"))
}

func TestClearScreen(t *testing.T) {
	s, dev := newTestSession(t, 10, 20)
	require.NoError(t, s.Print("text"))
	require.NoError(t, s.ClearScreen())
	assert.Equal(t, "", dev.Screen().String())
}

func TestCursorSetAndHome(t *testing.T) {
	s, dev := newTestSession(t, 10, 20)

	err := s.CursorSet(0, 1)
	assert.True(t, errors.Is(err, ErrRange))
	err = s.CursorSet(11, 1)
	assert.True(t, errors.Is(err, ErrRange))

	require.NoError(t, s.CursorSet(3, 4))
	require.NoError(t, s.Print("x"))
	cell, ok := dev.Screen().Cell(2, 3)
	require.True(t, ok)
	assert.Equal(t, 'x', cell.Char)

	require.NoError(t, s.CursorHome())
	require.NoError(t, s.Print("y"))
	assert.Equal(t, "y", dev.Screen().LineContent(0))
}

func TestCursorGet(t *testing.T) {
	s, dev := newTestSession(t, 10, 20)
	require.NoError(t, s.RequestLine("> "))

	dev.Type("ab")
	row, col, err := s.CursorGet()
	require.NoError(t, err)
	assert.Equal(t, 1, row)
	assert.Equal(t, 3, col)

	_, err = s.GetLineTimeout(nil, NoWait)
	require.NoError(t, err)
	assert.Equal(t, "ab", s.PeekLine())
}

func TestCursorGetWithoutAnswer(t *testing.T) {
	s, dev := newTestSession(t, 10, 20, WithCursorQueryTimeout(5*time.Millisecond))
	require.NoError(t, s.Print("abc"))

	dev.SetAnswerback(false)
	row, col, err := s.CursorGet()
	require.NoError(t, err)
	assert.Equal(t, 1, row)
	assert.Equal(t, 4, col)
}

func TestGetChar(t *testing.T) {
	s, dev := newTestSession(t, 10, 20)

	b, err := s.GetCharTimeout(NoWait)
	require.NoError(t, err)
	assert.Equal(t, byte(0), b)
	assert.Equal(t, "single-char", s.State().String())

	dev.Type("x")
	b, err = s.GetCharTimeout(NoWait)
	require.NoError(t, err)
	assert.Equal(t, byte('x'), b)

	b, err = s.GetCharTimeout(NoWait)
	require.NoError(t, err)
	assert.Equal(t, byte(0), b)
}

func TestGetCharKeepsLastKey(t *testing.T) {
	s, dev := newTestSession(t, 10, 20)

	dev.Type("abc")
	b, err := s.GetCharTimeout(NoWait)
	require.NoError(t, err)
	assert.Equal(t, byte('c'), b)

	dev.Type("q\x1b[A")
	var got []byte
	for {
		b, err := s.GetCharTimeout(NoWait)
		require.NoError(t, err)
		if b == 0 {
			break
		}
		got = append(got, b)
	}
	assert.Equal(t, []byte("\x1b[A"), got)
}

func TestGetCharExtraByteDuringSequence(t *testing.T) {
	s, dev := newTestSession(t, 10, 20)

	dev.Type("\x1b[B")
	b, err := s.GetCharTimeout(NoWait)
	require.NoError(t, err)
	assert.Equal(t, byte(0x1b), b)

	dev.Type("xy")
	require.NoError(t, s.Update())

	var got []byte
	for {
		b, err := s.GetCharTimeout(NoWait)
		require.NoError(t, err)
		if b == 0 {
			break
		}
		got = append(got, b)
	}
	assert.Equal(t, []byte("[By"), got)
}

func TestRequestLineAfterGetChar(t *testing.T) {
	s, dev := newTestSession(t, 10, 20)
	dev.Type("z")
	require.NoError(t, s.Update())

	require.NoError(t, s.RequestLine("> "))
	assert.Equal(t, "ok", typeLine(t, s, dev, "ok\r"))
}

func TestUpdateCompletesLine(t *testing.T) {
	s, dev := newTestSession(t, 10, 20)
	require.NoError(t, s.RequestLine("> "))

	dev.Type("hi\r")
	require.NoError(t, s.Update())
	assert.False(t, s.RequestPending())

	var line string
	ok, err := s.GetLineTimeout(&line, NoWait)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hi", line)

	ok, err = s.GetLineTimeout(&line, NoWait)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMalformedSequenceIsSkipped(t *testing.T) {
	s, dev := newTestSession(t, 10, 20)
	require.NoError(t, s.RequestLine("> "))

	dev.Type("a\x1b[99999Cb\r")
	var err error
	var line string
	ok := false
	for i := 0; i < 5 && !ok; i++ {
		var e error
		ok, e = s.GetLineTimeout(&line, NoWait)
		if e != nil {
			err = e
		}
	}
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRange))
	assert.True(t, ok)
	assert.Equal(t, "ab", line)
}

func TestCursorReportDuringEditingIsIgnored(t *testing.T) {
	s, dev := newTestSession(t, 10, 20)
	require.NoError(t, s.RequestLine("> "))
	assert.Equal(t, "ab", typeLine(t, s, dev, "a\x1b[5;7Rb\r"))
}

func TestSetMode(t *testing.T) {
	s, dev := newTestSession(t, 10, 20)

	require.NoError(t, s.SetMode(ModeCooked))
	assert.False(t, dev.Raw())
	assert.True(t, dev.Echo())

	require.NoError(t, s.SetMode(ModeCookedNoEcho))
	assert.False(t, dev.Echo())

	err := s.SetMode(ModeRaw | ModeEcho)
	assert.True(t, errors.Is(err, ErrIllegalMode))

	require.NoError(t, s.RequestLine("> "))
	assert.True(t, dev.Raw())
}

func TestIOErrorIsFatal(t *testing.T) {
	s, dev := newTestSession(t, 10, 20)

	dev.FailNext(syscall.EIO)
	err := s.Print("x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIO))
	assert.True(t, IsFatal(err))

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, KindIO, e.Kind)
	assert.Equal(t, syscall.EIO, e.Errno)

	assert.True(t, errors.Is(s.Print("y"), ErrIO))
	assert.True(t, errors.Is(s.RequestLine("> "), ErrIO))

	require.NoError(t, s.Close())
	assert.True(t, dev.Restored())
}

func TestReadErrorIsFatal(t *testing.T) {
	s, dev := newTestSession(t, 10, 20)
	require.NoError(t, s.RequestLine("> "))

	dev.Type("a")
	dev.FailNext(errors.New("read failed"))
	_, err := s.GetLineTimeout(nil, NoWait)
	assert.True(t, errors.Is(err, ErrIO))
}

func TestEOF(t *testing.T) {
	s, dev := newTestSession(t, 10, 20)
	require.NoError(t, s.RequestLine("> "))

	dev.Type("partial")
	dev.Hangup()
	for i := 0; i < 3; i++ {
		ok, err := s.GetLineTimeout(nil, NoWait)
		require.NoError(t, err)
		assert.False(t, ok)
	}
	assert.True(t, s.EOF())
	assert.Equal(t, "partial", s.PeekLine())
}

func TestCloseRestoresTerminal(t *testing.T) {
	dev := vt.NewDevice(vt.WithSize(10, 20))
	s, err := New(dev)
	require.NoError(t, err)
	require.NoError(t, s.RequestLine("> "))
	feed(t, s, dev, "half")

	require.NoError(t, s.Close())
	assert.True(t, dev.Restored())
	assert.False(t, dev.Raw())
	row, col := dev.Screen().CursorPos()
	assert.Equal(t, 1, row)
	assert.Equal(t, 0, col)

	require.NoError(t, s.Close())
	assert.Error(t, s.Print("late"))
}

func TestRun(t *testing.T) {
	dev := vt.NewDevice(vt.WithSize(10, 20))
	want := errors.New("done")

	err := Run(dev, func(s *Session) error {
		return want
	})
	assert.Equal(t, want, err)
	assert.True(t, dev.Restored())
}

func TestRunRestoresOnPanic(t *testing.T) {
	dev := vt.NewDevice(vt.WithSize(10, 20))

	assert.Panics(t, func() {
		_ = Run(dev, func(s *Session) error {
			panic("boom")
		})
	})
	assert.True(t, dev.Restored())
}

func TestNewFailsOnAttributeError(t *testing.T) {
	dev := vt.NewDevice(vt.WithSize(10, 20))
	dev.FailNext(errors.New("tcsetattr"))

	_, err := New(dev)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIO))
	assert.True(t, dev.Restored())
}

func TestWithConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte("read_timeout_ms: 30\nhistory_size: 1\naudible_bell: false\n"))
	require.NoError(t, err)

	vtBell := &vt.CountingBell{}
	dev := vt.NewDevice(vt.WithSize(10, 20), vt.WithBell(vtBell))
	s, _ := newTestSessionOn(t, dev, WithConfig(cfg))

	require.NoError(t, s.Beep())
	assert.Equal(t, 0, vtBell.Count())

	for _, in := range []string{"a", "b"} {
		require.NoError(t, s.RequestLine("> "))
		typeLine(t, s, dev, in+"\r")
	}
	assert.Equal(t, []string{"b"}, s.History())

	require.NoError(t, s.RequestLine("> "))
	start := time.Now()
	_, err = s.GetLine(nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestArrowSplitAcrossReads(t *testing.T) {
	s, dev := newTestSession(t, 24, 80)
	require.NoError(t, s.RequestLine("> "))

	feed(t, s, dev, "ab\x1b[")
	assert.Equal(t, "ab", s.PeekLine())
	feed(t, s, dev, "D")
	assert.Equal(t, "aXb", typeLine(t, s, dev, "X\r"))
}

func TestRobotCommandLine(t *testing.T) {
	s, dev := newTestSession(t, 24, 80)
	require.NoError(t, s.RequestLine("> "))
	assert.Equal(t, "goto 1 2 0", typeLine(t, s, dev, "goto 1 2 0\n"))
}

func TestBusyLeavesLineIntact(t *testing.T) {
	s, dev := newTestSession(t, 24, 80)
	require.NoError(t, s.RequestLine("> "))
	feed(t, s, dev, "partial")

	assert.True(t, errors.Is(s.RequestLine("? "), ErrBusy))
	assert.Equal(t, "partial", s.PeekLine())
	assert.Equal(t, "> partial", dev.Screen().LineContent(0))
	assert.Equal(t, "partial!", typeLine(t, s, dev, "!\r"))
}

func TestKillAndYank(t *testing.T) {
	s, dev := newTestSession(t, 24, 80)
	require.NoError(t, s.RequestLine("> "))

	feed(t, s, dev, "abcdef\x01\x06\x06\x06\x0b")
	assert.Equal(t, "abc", s.PeekLine())
	feed(t, s, dev, "\x19")
	assert.Equal(t, "abcdef", s.PeekLine())

	// A second kill replaces the first.
	feed(t, s, dev, "\x01\x06\x06\x06\x0b\x01\x0b\x19")
	assert.Equal(t, "abc", s.PeekLine())
}

func TestCancelThenRequestAgain(t *testing.T) {
	s, dev := newTestSession(t, 24, 80)
	require.NoError(t, s.RequestLine("> "))
	feed(t, s, dev, "nope\x1b\x1b")
	assert.False(t, s.RequestPending())

	require.NoError(t, s.RequestLine("> "))
	assert.Equal(t, "yes", typeLine(t, s, dev, "yes\r"))
}
