// Package vt provides an in-memory terminal for driving line editors
// without a real TTY.
//
// A Screen decodes the byte stream an application writes (cursor
// addressing, erase, scroll, bell, status requests) with go-ansicode into
// a character grid. A Device pairs a Screen with a keyboard input queue
// and implements the raw/cooked, echo, size and bounded-wait read
// operations a terminal host expects.
//
// # Wrapping
//
// By default the screen defers the wrap after a character lands on the
// last column, the way xterm and the VT100 family do: the cursor stays in
// place until the next printable character. WithStuckCursor emulates
// terminals that never wrap there at all.
//
// # Status reports
//
// DSR 6 (ESC [ 6 n) is answered with a cursor position report
// (ESC [ row ; col R) queued as device input, so hosts can query the
// cursor the same way they would on a real terminal.
//
// # Example
//
//	dev := vt.NewDevice(vt.WithSize(5, 20))
//	dev.Type("hello\r")
//	// hand dev to a line editor, then inspect:
//	fmt.Println(dev.Screen().String())
package vt
