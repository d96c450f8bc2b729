package vt

// Snapshot represents a complete screen capture.
type Snapshot struct {
	Size     SnapshotSize   `json:"size"`
	Cursor   SnapshotCursor `json:"cursor"`
	Scrolled int            `json:"scrolled"`
	Lines    []SnapshotLine `json:"lines"`
}

// SnapshotSize holds screen dimensions.
type SnapshotSize struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// SnapshotCursor holds cursor state.
type SnapshotCursor struct {
	Row         int  `json:"row"`
	Col         int  `json:"col"`
	Visible     bool `json:"visible"`
	WrapPending bool `json:"wrap_pending,omitempty"`
}

// SnapshotLine represents a single row in the snapshot.
type SnapshotLine struct {
	Text    string `json:"text"`
	Wrapped bool   `json:"wrapped,omitempty"`
}

// Snapshot captures the current screen state.
func (s *Screen) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &Snapshot{
		Size: SnapshotSize{Rows: s.rows, Cols: s.cols},
		Cursor: SnapshotCursor{
			Row:         s.cursor.Row,
			Col:         min(s.cursor.Col, s.cols-1),
			Visible:     s.cursor.Visible,
			WrapPending: s.cursor.WrapPending(s.cols),
		},
		Scrolled: s.scrolled,
		Lines:    make([]SnapshotLine, s.rows),
	}
	for row := range snap.Lines {
		snap.Lines[row] = SnapshotLine{
			Text:    s.buffer.LineContent(row),
			Wrapped: s.buffer.IsWrapped(row),
		}
	}
	return snap
}
