package asyncterm

import "strings"

// TerminalMode is a set of terminal attribute flags.
type TerminalMode uint8

const (
	// ModeRaw selects character-at-a-time input. Without it the terminal is cooked.
	ModeRaw TerminalMode = 1 << iota
	// ModeEcho lets the terminal echo typed characters itself.
	ModeEcho

	// ModeCooked is line-buffered input with terminal echo.
	ModeCooked = ModeEcho
	// ModeCookedNoEcho is line-buffered input without echo, for passwords.
	ModeCookedNoEcho TerminalMode = 0
)

func (m TerminalMode) Raw() bool  { return m&ModeRaw != 0 }
func (m TerminalMode) Echo() bool { return m&ModeEcho != 0 }

// Valid reports whether m is a usable combination. Raw mode never echoes:
// the line editor supplies its own echo.
func (m TerminalMode) Valid() bool {
	if m&^(ModeRaw|ModeEcho) != 0 {
		return false
	}
	return !(m.Raw() && m.Echo())
}

func (m TerminalMode) String() string {
	if !m.Valid() {
		return "invalid"
	}
	var parts []string
	if m.Raw() {
		parts = append(parts, "raw")
	} else {
		parts = append(parts, "cooked")
	}
	if m.Echo() {
		parts = append(parts, "echo")
	} else {
		parts = append(parts, "noecho")
	}
	return strings.Join(parts, "+")
}
