package asyncterm

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds session settings loadable from YAML.
//
//	read_timeout_ms: 10
//	history_size: 10
//	cursor_query_timeout_ms: 200
//	audible_bell: true
//	prompt: "> "
type Config struct {
	// ReadTimeoutMs is the wait of GetLine and GetChar. 0 waits forever,
	// negative does not wait.
	ReadTimeoutMs int `yaml:"read_timeout_ms"`
	// HistorySize caps the stored history. 0 means unlimited.
	HistorySize int `yaml:"history_size"`
	// CursorQueryTimeoutMs bounds the wait for a cursor position report.
	CursorQueryTimeoutMs int `yaml:"cursor_query_timeout_ms"`
	// AudibleBell sends BEL to the terminal when the session beeps.
	AudibleBell bool `yaml:"audible_bell"`
	// Prompt is not used by the session itself; dispatchers read it.
	Prompt string `yaml:"prompt"`
}

// DefaultConfig returns the settings a Session uses without options.
func DefaultConfig() Config {
	return Config{
		ReadTimeoutMs:        int(defaultTimeout / time.Millisecond),
		HistorySize:          defaultHistorySize,
		CursorQueryTimeoutMs: int(defaultCursorQueryTimeout / time.Millisecond),
		AudibleBell:          true,
		Prompt:               "> ",
	}
}

// ParseConfig decodes YAML on top of DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.HistorySize < 0 {
		return newError(KindRange, "config", "history_size %d is negative", c.HistorySize)
	}
	if c.CursorQueryTimeoutMs < 0 {
		return newError(KindRange, "config", "cursor_query_timeout_ms %d is negative", c.CursorQueryTimeoutMs)
	}
	return nil
}

// Options converts the config to session options.
func (c Config) Options() []Option {
	return []Option{
		WithTimeout(time.Duration(c.ReadTimeoutMs) * time.Millisecond),
		WithHistorySize(c.HistorySize),
		WithCursorQueryTimeout(time.Duration(c.CursorQueryTimeoutMs) * time.Millisecond),
		WithAudibleBell(c.AudibleBell),
	}
}
