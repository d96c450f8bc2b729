package vt

// Buffer stores a 2D grid of cells and tracks line wrapping state.
type Buffer struct {
	rows     int
	cols     int
	cells    [][]Cell
	wrapped  []bool // tracks if each line was wrapped (vs explicit newline)
	hasDirty bool
}

// NewBuffer creates a buffer with the given dimensions.
func NewBuffer(rows, cols int) *Buffer {
	b := &Buffer{
		rows:    rows,
		cols:    cols,
		cells:   make([][]Cell, rows),
		wrapped: make([]bool, rows),
	}
	for i := range b.cells {
		b.cells[i] = newRow(cols)
	}
	return b
}

func newRow(cols int) []Cell {
	row := make([]Cell, cols)
	for j := range row {
		row[j] = NewCell()
	}
	return row
}

// Rows returns the buffer height in character rows.
func (b *Buffer) Rows() int {
	return b.rows
}

// Cols returns the buffer width in character columns.
func (b *Buffer) Cols() int {
	return b.cols
}

// Cell returns a pointer to the cell at (row, col).
// Returns nil if coordinates are out of bounds.
func (b *Buffer) Cell(row, col int) *Cell {
	if row < 0 || row >= b.rows || col < 0 || col >= b.cols {
		return nil
	}
	return &b.cells[row][col]
}

// SetCell replaces the cell at (row, col) and marks it dirty.
// Does nothing if coordinates are out of bounds.
func (b *Buffer) SetCell(row, col int, cell Cell) {
	if row < 0 || row >= b.rows || col < 0 || col >= b.cols {
		return
	}
	cell.MarkDirty()
	b.cells[row][col] = cell
	b.hasDirty = true
}

// MarkDirty marks the cell at (row, col) as modified.
func (b *Buffer) MarkDirty(row, col int) {
	if row < 0 || row >= b.rows || col < 0 || col >= b.cols {
		return
	}
	b.cells[row][col].MarkDirty()
	b.hasDirty = true
}

// HasDirty returns true if any cell has been modified since the last ClearAllDirty call.
func (b *Buffer) HasDirty() bool {
	return b.hasDirty
}

// DirtyCells returns positions of all modified cells.
func (b *Buffer) DirtyCells() []Position {
	var positions []Position
	for row := range b.cells {
		for col := range b.cells[row] {
			if b.cells[row][col].IsDirty() {
				positions = append(positions, Position{Row: row, Col: col})
			}
		}
	}
	return positions
}

// ClearAllDirty resets the dirty state of all cells.
func (b *Buffer) ClearAllDirty() {
	for row := range b.cells {
		for col := range b.cells[row] {
			b.cells[row][col].ClearDirty()
		}
	}
	b.hasDirty = false
}

// ClearRow resets all cells in the row and marks them dirty.
func (b *Buffer) ClearRow(row int) {
	b.ClearRowRange(row, 0, b.cols)
}

// ClearRowRange resets cells in the row from startCol (inclusive) to endCol (exclusive).
func (b *Buffer) ClearRowRange(row, startCol, endCol int) {
	if row < 0 || row >= b.rows {
		return
	}
	startCol = clamp(startCol, 0, b.cols)
	endCol = clamp(endCol, 0, b.cols)
	for col := startCol; col < endCol; col++ {
		b.cells[row][col].Reset()
		b.cells[row][col].MarkDirty()
		b.hasDirty = true
	}
}

// ClearAll resets all cells in the buffer.
func (b *Buffer) ClearAll() {
	for row := range b.cells {
		b.ClearRow(row)
		b.wrapped[row] = false
	}
}

// ScrollUp shifts lines up by n positions within [top, bottom).
// Bottom lines are cleared and marked dirty.
func (b *Buffer) ScrollUp(top, bottom, n int) {
	if n <= 0 || top >= bottom {
		return
	}
	top = clamp(top, 0, b.rows)
	bottom = clamp(bottom, 0, b.rows)
	if n > bottom-top {
		n = bottom - top
	}

	for row := top; row < bottom-n; row++ {
		b.cells[row] = b.cells[row+n]
		b.wrapped[row] = b.wrapped[row+n]
		for col := range b.cells[row] {
			b.cells[row][col].MarkDirty()
		}
	}
	for row := bottom - n; row < bottom; row++ {
		b.cells[row] = newRow(b.cols)
		b.wrapped[row] = false
		for col := range b.cells[row] {
			b.cells[row][col].MarkDirty()
		}
	}
	b.hasDirty = true
}

// ScrollDown shifts lines down by n positions within [top, bottom).
// Top lines are cleared and marked dirty.
func (b *Buffer) ScrollDown(top, bottom, n int) {
	if n <= 0 || top >= bottom {
		return
	}
	top = clamp(top, 0, b.rows)
	bottom = clamp(bottom, 0, b.rows)
	if n > bottom-top {
		n = bottom - top
	}

	for row := bottom - 1; row >= top+n; row-- {
		b.cells[row] = b.cells[row-n]
		b.wrapped[row] = b.wrapped[row-n]
		for col := range b.cells[row] {
			b.cells[row][col].MarkDirty()
		}
	}
	for row := top; row < top+n; row++ {
		b.cells[row] = newRow(b.cols)
		b.wrapped[row] = false
		for col := range b.cells[row] {
			b.cells[row][col].MarkDirty()
		}
	}
	b.hasDirty = true
}

// InsertBlanks inserts n blank cells at (row, col), shifting the rest of the row right.
func (b *Buffer) InsertBlanks(row, col, n int) {
	if row < 0 || row >= b.rows || col < 0 || col >= b.cols || n <= 0 {
		return
	}
	line := b.cells[row]
	for i := b.cols - 1; i >= col+n; i-- {
		line[i] = line[i-n]
		line[i].MarkDirty()
	}
	b.ClearRowRange(row, col, col+n)
}

// DeleteChars removes n cells at (row, col), shifting the rest of the row left.
func (b *Buffer) DeleteChars(row, col, n int) {
	if row < 0 || row >= b.rows || col < 0 || col >= b.cols || n <= 0 {
		return
	}
	line := b.cells[row]
	for i := col; i < b.cols-n; i++ {
		line[i] = line[i+n]
		line[i].MarkDirty()
	}
	b.ClearRowRange(row, b.cols-n, b.cols)
}

// Resize changes the buffer dimensions, keeping the top-left content.
func (b *Buffer) Resize(rows, cols int) {
	cells := make([][]Cell, rows)
	wrapped := make([]bool, rows)
	for i := range cells {
		cells[i] = newRow(cols)
		if i < b.rows {
			copy(cells[i], b.cells[i])
			wrapped[i] = b.wrapped[i]
		}
		for j := range cells[i] {
			cells[i][j].MarkDirty()
		}
	}
	b.rows, b.cols = rows, cols
	b.cells, b.wrapped = cells, wrapped
	b.hasDirty = true
}

// LineContent returns the text content of a line, trimming trailing spaces.
// Wide character spacers are skipped. Returns empty string if the line is empty or out of bounds.
func (b *Buffer) LineContent(row int) string {
	if row < 0 || row >= b.rows {
		return ""
	}

	lastNonSpace := -1
	for col := b.cols - 1; col >= 0; col-- {
		cell := &b.cells[row][col]
		if cell.Char != ' ' && cell.Char != 0 && !cell.IsWideSpacer() {
			lastNonSpace = col
			break
		}
	}
	if lastNonSpace < 0 {
		return ""
	}

	runes := make([]rune, 0, lastNonSpace+1)
	for col := range b.cells[row][:lastNonSpace+1] {
		cell := &b.cells[row][col]
		if cell.IsWideSpacer() {
			continue
		}
		if cell.Char == 0 {
			runes = append(runes, ' ')
		} else {
			runes = append(runes, cell.Char)
		}
	}
	return string(runes)
}

// IsWrapped returns true if the line was wrapped due to column overflow.
func (b *Buffer) IsWrapped(row int) bool {
	if row < 0 || row >= b.rows {
		return false
	}
	return b.wrapped[row]
}

// SetWrapped sets whether the line was wrapped or ended with an explicit newline.
func (b *Buffer) SetWrapped(row int, wrapped bool) {
	if row < 0 || row >= b.rows {
		return
	}
	b.wrapped[row] = wrapped
}

// Position identifies a cell location in the grid (0-based).
type Position struct {
	Row int
	Col int
}

// Before returns true if this position comes before other in reading order.
func (p Position) Before(other Position) bool {
	if p.Row != other.Row {
		return p.Row < other.Row
	}
	return p.Col < other.Col
}

func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
