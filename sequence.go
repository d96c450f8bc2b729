package asyncterm

import "fmt"

// EditState classifies the input at a parse offset.
type EditState int

const (
	// EditNext is a plain printable byte.
	EditNext EditState = iota
	// EditEnd is a line terminator.
	EditEnd
	// EditDone means the input is exhausted.
	EditDone
	// EditCtrl is a control byte or a complete escape sequence.
	EditCtrl
	// EditIncomplete is an escape sequence cut short by the end of input.
	// Parse again from the same offset once more bytes arrive.
	EditIncomplete
)

func (s EditState) String() string {
	switch s {
	case EditNext:
		return "next"
	case EditEnd:
		return "end"
	case EditDone:
		return "done"
	case EditCtrl:
		return "ctrl"
	case EditIncomplete:
		return "incomplete"
	}
	return fmt.Sprintf("EditState(%d)", int(s))
}

// ControlKind is the syntactic family of a control descriptor.
type ControlKind int

const (
	ControlNone ControlKind = iota
	ControlSingleByte
	ControlEscape
	ControlCSI
)

const (
	// MaxParams bounds the parameters kept per CSI sequence. Extra ones are dropped.
	MaxParams = 16
	// MaxParamValue is the largest accepted numeric parameter.
	MaxParamValue = 65535
)

// Control describes one parsed control byte or escape sequence.
type Control struct {
	// Start is the offset of the first byte.
	Start int
	// End is the offset just past the last byte. Bytes [Start, End) may be
	// skipped even when parsing failed with a RangeError.
	End int
	// Cmd is the control byte, the byte after ESC, or the CSI/SS3 final byte.
	// It is zero for a lone ESC.
	Cmd byte
	// Intro is '[' for CSI, 'O' for SS3, zero otherwise.
	Intro byte
	// Private is a CSI private marker ('<', '=', '>', '?'), zero if absent.
	Private byte
	// Intermediate is the last CSI intermediate byte, zero if absent.
	Intermediate byte
	Kind         ControlKind
	Subtype      Subtype
	Params       []int
	Complete     bool
}

// Param returns parameter i, or def when it is absent or zero.
func (c Control) Param(i, def int) int {
	if i < len(c.Params) && c.Params[i] != 0 {
		return c.Params[i]
	}
	return def
}

// FunctionKey returns the function key number (1-12) for SubtypeFunctionKey, 0 otherwise.
func (c Control) FunctionKey() int {
	if c.Subtype != SubtypeFunctionKey {
		return 0
	}
	if c.Cmd >= 'P' && c.Cmd <= 'S' {
		return int(c.Cmd-'P') + 1
	}
	return tildeFunctionKeys[c.Param(0, 0)]
}

// ParseControl classifies the byte at start and, for control sequences,
// parses the whole sequence. It has no side effects: an EditIncomplete
// result means "call again with the same start once more bytes exist".
// Malformed or overflowing CSI parameters return a RangeError together with
// a descriptor whose End covers the bytes to skip.
func ParseControl(buf []byte, start int) (EditState, Control, error) {
	if start >= len(buf) {
		return EditDone, Control{Start: start}, nil
	}

	b := buf[start]
	switch {
	case b == '\r' || b == '\n':
		end := start + 1
		if b == '\r' && end < len(buf) && buf[end] == '\n' {
			end++
		}
		return EditEnd, Control{Start: start, End: end, Cmd: b, Complete: true}, nil
	case b == keyEscape:
		return parseEscape(buf, start)
	case b == keyCSI:
		return parseCSI(buf, start, start+1)
	case b < 0x20 || b == keyDelete:
		return EditCtrl, Control{
			Start:    start,
			End:      start + 1,
			Cmd:      b,
			Kind:     ControlSingleByte,
			Complete: true,
		}, nil
	}
	return EditNext, Control{Start: start}, nil
}

func parseEscape(buf []byte, start int) (EditState, Control, error) {
	i := start + 1
	if i >= len(buf) {
		return EditIncomplete, Control{Start: start}, nil
	}

	switch buf[i] {
	case '[':
		return parseCSI(buf, start, i+1)
	case 'O':
		if i+1 >= len(buf) {
			return EditIncomplete, Control{Start: start}, nil
		}
		final := buf[i+1]
		if final >= 0x40 && final <= 0x7e {
			return EditCtrl, Control{
				Start:    start,
				End:      i + 2,
				Cmd:      final,
				Intro:    'O',
				Kind:     ControlEscape,
				Subtype:  finalKeys[final],
				Complete: true,
			}, nil
		}
	}

	if metaKeys[buf[i]] {
		return EditCtrl, Control{
			Start:    start,
			End:      i + 1,
			Cmd:      buf[i],
			Kind:     ControlEscape,
			Complete: true,
		}, nil
	}

	// A lone ESC. The byte after it is left for the next call.
	return EditCtrl, Control{
		Start:    start,
		End:      i,
		Kind:     ControlEscape,
		Complete: true,
	}, nil
}

// metaKeys are the bytes that form a two-byte sequence after ESC.
var metaKeys = map[byte]bool{
	keyEscape: true,
	'b':       true,
	'f':       true,
}

// parseCSI parses from i, the first byte after the CSI introducer.
func parseCSI(buf []byte, start, i int) (EditState, Control, error) {
	c := Control{Start: start, Intro: '[', Kind: ControlCSI}

	if i < len(buf) && buf[i] >= '<' && buf[i] <= '?' {
		c.Private = buf[i]
		i++
	}

	var (
		params    []int
		cur       = -1
		malformed error
	)
	addParam := func() {
		if len(params) < MaxParams {
			params = append(params, max(cur, 0))
		}
		cur = -1
	}

	for ; i < len(buf); i++ {
		b := buf[i]
		switch {
		case b >= '0' && b <= '9':
			if c.Intermediate != 0 && malformed == nil {
				malformed = fmt.Errorf("parameter byte %q after intermediate", b)
			}
			if cur < 0 {
				cur = 0
			}
			if cur <= MaxParamValue {
				cur = cur*10 + int(b-'0')
			}
			if cur > MaxParamValue && malformed == nil {
				malformed = fmt.Errorf("parameter exceeds %d", MaxParamValue)
			}
		case b == ';':
			if c.Intermediate != 0 && malformed == nil {
				malformed = fmt.Errorf("parameter byte %q after intermediate", b)
			}
			addParam()
		case b >= 0x3a && b <= 0x3f:
			if malformed == nil {
				malformed = fmt.Errorf("unexpected parameter byte %q", b)
			}
		case b >= 0x20 && b <= 0x2f:
			c.Intermediate = b
		case b >= 0x40 && b <= 0x7e:
			if cur >= 0 || len(params) > 0 {
				addParam()
			}
			c.Cmd = b
			c.End = i + 1
			c.Params = params
			c.Complete = true
			if malformed != nil {
				return EditCtrl, c, &Error{Kind: KindRange, Op: "parse control", Err: malformed}
			}
			c.Subtype = csiSubtype(c)
			return EditCtrl, c, nil
		default:
			// A control or 8-bit byte aborts the sequence; it is left for the next parse.
			c.End = i
			c.Params = params
			return EditCtrl, c, &Error{
				Kind: KindRange,
				Op:   "parse control",
				Err:  fmt.Errorf("byte %#02x inside control sequence", b),
			}
		}
	}
	return EditIncomplete, Control{Start: start}, nil
}

func csiSubtype(c Control) Subtype {
	if c.Intermediate != 0 {
		return SubtypeNone
	}
	switch c.Cmd {
	case '~':
		if c.Private != 0 {
			return SubtypeNone
		}
		n := c.Param(0, 0)
		if st, ok := tildeKeys[n]; ok {
			return st
		}
		if _, ok := tildeFunctionKeys[n]; ok {
			return SubtypeFunctionKey
		}
		return SubtypeNone
	case 'R':
		if c.Private == 0 && len(c.Params) == 2 {
			return SubtypeCursorPositionReport
		}
	}
	if c.Private != 0 {
		return SubtypeNone
	}
	return finalKeys[c.Cmd]
}

// isText reports whether ParseControl classifies b as EditNext.
func isText(b byte) bool {
	return b >= 0x20 && b != keyDelete && b != keyCSI
}
