package asyncterm

// Control bytes the line editor binds.
const (
	keyCtrlA     = 0x01
	keyCtrlB     = 0x02
	keyCtrlD     = 0x04
	keyCtrlE     = 0x05
	keyCtrlF     = 0x06
	keyBell      = 0x07
	keyBackspace = 0x08
	keyCtrlK     = 0x0b
	keyCtrlL     = 0x0c
	keyCtrlN     = 0x0e
	keyCtrlP     = 0x10
	keyCtrlU     = 0x15
	keyCtrlY     = 0x19
	keyEscape    = 0x1b
	keyDelete    = 0x7f
	keyCSI       = 0x9b
)

// Subtype identifies what a complete control sequence means as a key or report.
type Subtype int

const (
	SubtypeNone Subtype = iota
	SubtypeFunctionKey
	SubtypeArrowLeft
	SubtypeArrowRight
	SubtypeArrowUp
	SubtypeArrowDown
	SubtypeHome
	SubtypeEnd
	SubtypePageUp
	SubtypePageDown
	SubtypeInsert
	SubtypeDelete
	SubtypeCursorPositionReport
)

var subtypeNames = [...]string{
	SubtypeNone:                 "none",
	SubtypeFunctionKey:          "function-key",
	SubtypeArrowLeft:            "arrow-left",
	SubtypeArrowRight:           "arrow-right",
	SubtypeArrowUp:              "arrow-up",
	SubtypeArrowDown:            "arrow-down",
	SubtypeHome:                 "home",
	SubtypeEnd:                  "end",
	SubtypePageUp:               "page-up",
	SubtypePageDown:             "page-down",
	SubtypeInsert:               "insert",
	SubtypeDelete:               "delete",
	SubtypeCursorPositionReport: "cursor-position-report",
}

func (s Subtype) String() string {
	if s < 0 || int(s) >= len(subtypeNames) {
		return "unknown"
	}
	return subtypeNames[s]
}

// tildeKeys maps the first parameter of CSI n ~ to a subtype.
var tildeKeys = map[int]Subtype{
	1: SubtypeHome, 7: SubtypeHome,
	4: SubtypeEnd, 8: SubtypeEnd,
	2: SubtypeInsert,
	3: SubtypeDelete,
	5: SubtypePageUp,
	6: SubtypePageDown,
}

// tildeFunctionKeys maps CSI n ~ codes to function key numbers (F1-F12).
var tildeFunctionKeys = map[int]int{
	11: 1, 12: 2, 13: 3, 14: 4, 15: 5,
	17: 6, 18: 7, 19: 8, 20: 9, 21: 10,
	23: 11, 24: 12,
}

// finalKeys maps final bytes shared by CSI and SS3 key sequences.
var finalKeys = map[byte]Subtype{
	'A': SubtypeArrowUp,
	'B': SubtypeArrowDown,
	'C': SubtypeArrowRight,
	'D': SubtypeArrowLeft,
	'H': SubtypeHome,
	'F': SubtypeEnd,
	'P': SubtypeFunctionKey,
	'Q': SubtypeFunctionKey,
	'R': SubtypeFunctionKey,
	'S': SubtypeFunctionKey,
}
