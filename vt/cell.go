package vt

// CellFlags is a bitmask of per-cell state.
type CellFlags uint8

const (
	CellFlagWideChar CellFlags = 1 << iota
	CellFlagWideCharSpacer
	CellFlagDirty
)

// Cell stores the character for one grid position.
// Wide characters (2 columns) use a spacer cell in the second position.
type Cell struct {
	Char  rune
	Flags CellFlags
}

// NewCell creates a cell initialized with a space character.
func NewCell() Cell {
	return Cell{Char: ' '}
}

// Reset clears all state and sets the cell back to a space.
// The dirty flag survives so erasures are visible to dirty tracking.
func (c *Cell) Reset() {
	c.Char = ' '
	c.Flags &= CellFlagDirty
}

// HasFlag returns true if the specified flag is set.
func (c *Cell) HasFlag(flag CellFlags) bool {
	return c.Flags&flag != 0
}

// SetFlag enables the specified flag without affecting others.
func (c *Cell) SetFlag(flag CellFlags) {
	c.Flags |= flag
}

// ClearFlag disables the specified flag without affecting others.
func (c *Cell) ClearFlag(flag CellFlags) {
	c.Flags &^= flag
}

// IsDirty returns true if the cell was modified since the last ClearDirty call.
func (c *Cell) IsDirty() bool {
	return c.HasFlag(CellFlagDirty)
}

// MarkDirty marks the cell as modified for dirty tracking.
func (c *Cell) MarkDirty() {
	c.SetFlag(CellFlagDirty)
}

// ClearDirty resets the dirty tracking flag.
func (c *Cell) ClearDirty() {
	c.ClearFlag(CellFlagDirty)
}

// IsWide returns true if this cell holds a character occupying 2 columns.
func (c *Cell) IsWide() bool {
	return c.HasFlag(CellFlagWideChar)
}

// IsWideSpacer returns true if this is the second cell of a wide character.
func (c *Cell) IsWideSpacer() bool {
	return c.HasFlag(CellFlagWideCharSpacer)
}
