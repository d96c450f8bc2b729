// Package asyncterm provides a non-blocking line editor for character
// terminals.
//
// A program that must keep doing work while the user types, such as a robot
// controller, a game loop or a network service with a console, cannot block
// in a read. asyncterm lets it poll instead: every call does a bounded
// amount of work and waits at most for the timeout it is given.
//
// # Quick Start
//
//	tty, err := asyncterm.OpenTTY()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = asyncterm.Run(tty, func(s *asyncterm.Session) error {
//	    if err := s.RequestLine("> "); err != nil {
//	        return err
//	    }
//	    for {
//	        var line string
//	        ok, err := s.GetLine(&line)
//	        if err != nil {
//	            return err
//	        }
//	        if ok {
//	            s.Printf("got %q\n", line)
//	            return nil
//	        }
//	        s.Print("tick ") // appears above the prompt
//	    }
//	})
//
// # Architecture
//
//   - [Session]: the facade; owns the terminal for its lifetime
//   - [Device]: the terminal abstraction; [TTY] for real terminals and
//     vt.Device for an in-memory one
//   - [ParseControl]: the pure input classifier used by the editor
//   - [HistoryProvider] and [BellProvider]: pluggable history and bell
//
// # Requests
//
// RequestLine draws a prompt and starts composing a line. GetLine feeds
// typed input to the editor and returns true once a line is complete.
// Print and Printf may be called at any time: a pending prompt is erased,
// the text is written at the print position and the prompt and line are
// redrawn below it.
//
// GetChar reads single bytes instead. It cannot be used while a line
// request is pending.
//
// # Editing Keys
//
//	Ctrl-A, Home          start of line
//	Ctrl-E, End           end of line
//	Ctrl-B, Left          back one character
//	Ctrl-F, Right         forward one character
//	ESC b, ESC f          back or forward one word
//	Backspace, DEL        delete before the cursor
//	Ctrl-D, Delete        delete at the cursor
//	Ctrl-K                kill to end of line
//	Ctrl-U                kill to start of line
//	Ctrl-Y                yank the killed text
//	Ctrl-P, Up            older history entry
//	Ctrl-N, Down          newer history entry
//	Ctrl-L                clear the screen and redraw
//	ESC ESC               cancel the request
//	Enter                 complete the line
//
// # Timeouts
//
// Timeouts are durations. [Forever] waits for input and [NoWait] does not
// wait at all. The default session timeout is one millisecond.
//
// # Errors
//
// All operations return *[Error]. Use errors.Is with the sentinels, such as
// [ErrBusy], or inspect the Kind. KindIO errors are fatal: the session
// refuses further work and should be closed. A KindBufferOverflow error
// leaves the session state unchanged; ReinitState recovers the screen.
package asyncterm
