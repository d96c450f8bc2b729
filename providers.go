package asyncterm

// --- Bell Provider ---

// BellProvider is notified whenever the session rings the bell, including
// the editor's own bells on invalid movements.
type BellProvider interface {
	Ring()
}

// NoopBell ignores all bell events.
type NoopBell struct{}

func (NoopBell) Ring() {}

// --- History Provider ---

// HistoryProvider stores completed lines. Index 0 is the oldest line.
type HistoryProvider interface {
	// Push appends a line, evicting the oldest when over capacity.
	Push(line string)
	// Len returns the number of stored lines.
	Len() int
	// Line returns the line at index, where 0 is the oldest. Out of range returns "".
	Line(index int) string
	// Clear removes all stored lines.
	Clear()
	// SetMaxLines sets the capacity. Zero means unlimited.
	SetMaxLines(max int)
	// MaxLines returns the capacity.
	MaxLines() int
}

// NoopHistory stores nothing.
type NoopHistory struct{}

func (NoopHistory) Push(line string)      {}
func (NoopHistory) Len() int              { return 0 }
func (NoopHistory) Line(index int) string { return "" }
func (NoopHistory) Clear()                {}
func (NoopHistory) SetMaxLines(max int)   {}
func (NoopHistory) MaxLines() int         { return 0 }

// MemoryHistory stores lines in memory with a configurable limit.
// When the limit is reached, the oldest lines are removed to make room for new ones.
//
// Example:
//
//	history := asyncterm.NewMemoryHistory(10)
//	session, err := asyncterm.New(dev, asyncterm.WithHistory(history))
type MemoryHistory struct {
	lines    []string
	maxLines int
}

// NewMemoryHistory creates an in-memory history with the given capacity.
// If maxLines is 0, history is unlimited.
func NewMemoryHistory(maxLines int) *MemoryHistory {
	return &MemoryHistory{
		lines:    make([]string, 0),
		maxLines: maxLines,
	}
}

// Push appends a line. If maxLines is exceeded, the oldest line is removed.
func (m *MemoryHistory) Push(line string) {
	m.lines = append(m.lines, line)
	m.trim()
}

// Len returns the current number of stored lines.
func (m *MemoryHistory) Len() int {
	return len(m.lines)
}

// Line returns the line at index, where 0 is the oldest line.
func (m *MemoryHistory) Line(index int) string {
	if index < 0 || index >= len(m.lines) {
		return ""
	}
	return m.lines[index]
}

// Clear removes all stored lines.
func (m *MemoryHistory) Clear() {
	m.lines = make([]string, 0)
}

// SetMaxLines sets the maximum capacity, dropping the oldest lines if needed.
func (m *MemoryHistory) SetMaxLines(max int) {
	m.maxLines = max
	m.trim()
}

// MaxLines returns the current maximum capacity.
func (m *MemoryHistory) MaxLines() int {
	return m.maxLines
}

func (m *MemoryHistory) trim() {
	if m.maxLines > 0 && len(m.lines) > m.maxLines {
		excess := len(m.lines) - m.maxLines
		m.lines = m.lines[excess:]
	}
}

// Ensure implementations satisfy their interfaces
var _ BellProvider = (*NoopBell)(nil)
var _ HistoryProvider = (*NoopHistory)(nil)
var _ HistoryProvider = (*MemoryHistory)(nil)
