package debugmode

import (
	"fmt"
	"strings"
)

// ConsoleMode overrides debug mode for console and batch runs, where there
// is no caller to vet and no cookie or query channel.  The zero value is
// ConsoleAuto.
type ConsoleMode int8

const (
	ConsoleAuto ConsoleMode = iota
	ConsoleEnabled
	ConsoleDisabled
)

// Valid reports whether m is one of the three declared modes.
func (m ConsoleMode) Valid() bool {
	return m >= ConsoleAuto && m <= ConsoleDisabled
}

func (m ConsoleMode) String() string {
	switch m {
	case ConsoleAuto:
		return "auto"
	case ConsoleEnabled:
		return "enabled"
	case ConsoleDisabled:
		return "disabled"
	}
	return fmt.Sprintf("ConsoleMode(%d)", int8(m))
}

// ParseConsoleMode accepts auto, enabled, or disabled (case-insensitive).
// Empty input is auto.
func ParseConsoleMode(s string) (ConsoleMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ConsoleAuto, nil
	case "enabled", "on", "true":
		return ConsoleEnabled, nil
	case "disabled", "off", "false":
		return ConsoleDisabled, nil
	}
	return ConsoleAuto, fmt.Errorf("invalid console debug mode %q (want auto, enabled, or disabled)", s)
}

// Set implements pflag.Value.
func (m *ConsoleMode) Set(s string) error {
	v, err := ParseConsoleMode(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Type implements pflag.Value.
func (m *ConsoleMode) Type() string { return "auto|enabled|disabled" }

// UnmarshalText lets config decoders set the mode.
func (m *ConsoleMode) UnmarshalText(b []byte) error { return m.Set(string(b)) }
