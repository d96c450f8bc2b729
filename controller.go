package asyncterm

import (
	"log/slog"
)

const (
	// DEFAULT_ROWS is used when the terminal reports no geometry.
	DEFAULT_ROWS = 24
	// DEFAULT_COLS is used when the terminal reports no geometry.
	DEFAULT_COLS = 80
)

// controller owns the device attributes for the lifetime of a session.
type controller struct {
	dev Device
	log *slog.Logger

	mode     TerminalMode
	haveMode bool

	rows, cols int
	haveSize   bool

	released bool
}

func newController(dev Device, log *slog.Logger) *controller {
	return &controller{dev: dev, log: log}
}

// acquire puts the terminal in raw mode and reads its geometry.
func (c *controller) acquire() error {
	if err := c.setMode(ModeRaw); err != nil {
		return err
	}
	if _, _, err := c.geometry(true); err != nil {
		return err
	}
	return nil
}

func (c *controller) setMode(m TerminalMode) error {
	if !m.Valid() {
		return newError(KindIllegalMode, "set mode", "invalid terminal mode %#x", uint8(m))
	}
	if c.haveMode && c.mode == m {
		return nil
	}

	var err error
	if m.Raw() {
		err = c.dev.MakeRaw()
	} else {
		err = c.dev.MakeCooked()
		if err == nil && !m.Echo() {
			err = c.dev.SetEcho(false)
		}
	}
	if err != nil {
		return ioError("set mode", err)
	}

	c.log.Debug("terminal mode changed", "from", c.mode, "to", m)
	c.mode, c.haveMode = m, true
	return nil
}

// geometry returns the cached size, querying the device when force is set
// or nothing is cached yet.
func (c *controller) geometry(force bool) (rows, cols int, err error) {
	if c.haveSize && !force {
		return c.rows, c.cols, nil
	}
	rows, cols, err = c.dev.Size()
	if err != nil {
		return 0, 0, ioError("get size", err)
	}
	if rows <= 0 || cols <= 0 {
		c.log.Debug("terminal reported no size, using defaults", "rows", rows, "cols", cols)
		rows, cols = DEFAULT_ROWS, DEFAULT_COLS
	}
	c.rows, c.cols, c.haveSize = rows, cols, true
	return rows, cols, nil
}

// release restores the original attributes. Safe to call more than once.
func (c *controller) release() error {
	if c.released {
		return nil
	}
	c.released = true
	if err := c.dev.Restore(); err != nil {
		c.log.Warn("restore terminal failed", "err", err)
		return ioError("restore", err)
	}
	c.log.Debug("terminal restored")
	return nil
}
