package vt

import (
	"io"
	"sync"
)

// --- Response Provider ---

// ResponseProvider receives bytes the screen sends back to the host,
// such as cursor position reports.
type ResponseProvider = io.Writer

// NoopResponse discards all responses.
type NoopResponse struct{}

func (NoopResponse) Write(p []byte) (int, error) { return len(p), nil }

// --- Bell Provider ---

// BellProvider handles bell/beep events (BEL character, 0x07).
type BellProvider interface {
	// Ring is called when the screen receives a bell character.
	Ring()
}

// NoopBell ignores all bell events.
type NoopBell struct{}

func (NoopBell) Ring() {}

// CountingBell counts bell events. Safe for concurrent use.
type CountingBell struct {
	mu    sync.Mutex
	rings int
}

// Ring increments the counter.
func (b *CountingBell) Ring() {
	b.mu.Lock()
	b.rings++
	b.mu.Unlock()
}

// Count returns the number of bells received so far.
func (b *CountingBell) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rings
}

// --- Recording Provider ---

// RecordingProvider captures raw output bytes before ANSI parsing for replay or debugging.
type RecordingProvider interface {
	// Record appends raw bytes to the recording.
	Record(data []byte)
	// Data returns all captured bytes since the last Clear call.
	Data() []byte
	// Clear discards all recorded data.
	Clear()
}

// NoopRecording discards all recordings.
type NoopRecording struct{}

func (NoopRecording) Record([]byte) {}
func (NoopRecording) Data() []byte  { return nil }
func (NoopRecording) Clear()        {}

// MemoryRecording stores raw bytes in memory.
//
// Example:
//
//	recorder := vt.NewMemoryRecording()
//	screen := vt.New(vt.WithRecording(recorder))
//	// ... write to the screen ...
//	data := recorder.Data()
type MemoryRecording struct {
	mu   sync.Mutex
	data []byte
}

// NewMemoryRecording creates a new in-memory recording buffer.
func NewMemoryRecording() *MemoryRecording {
	return &MemoryRecording{data: make([]byte, 0)}
}

// Record appends raw bytes to the recording.
func (r *MemoryRecording) Record(data []byte) {
	r.mu.Lock()
	r.data = append(r.data, data...)
	r.mu.Unlock()
}

// Data returns all captured bytes since the last Clear call.
func (r *MemoryRecording) Data() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]byte, len(r.data))
	copy(result, r.data)
	return result
}

// Clear discards all recorded data.
func (r *MemoryRecording) Clear() {
	r.mu.Lock()
	r.data = make([]byte, 0)
	r.mu.Unlock()
}

// Ensure implementations satisfy their interfaces
var _ ResponseProvider = NoopResponse{}
var _ BellProvider = (*NoopBell)(nil)
var _ BellProvider = (*CountingBell)(nil)
var _ RecordingProvider = (*NoopRecording)(nil)
var _ RecordingProvider = (*MemoryRecording)(nil)
