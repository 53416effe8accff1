// Package mode resolves whether the simulator runs in development or
// competition mode.
package mode

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Mode is the contents of the mode file. Dev and Comp are the known values;
// anything else is passed through untouched and treated as "not comp".
type Mode string

const (
	Dev  Mode = "dev"
	Comp Mode = "comp"
)

// IsComp reports whether m selects competition behaviour.
func (m Mode) IsComp() bool {
	return m == Comp
}

// Known reports whether m is one of the recognised modes.
func (m Mode) Known() bool {
	return m == Dev || m == Comp
}

func (m Mode) String() string {
	return string(m)
}

// Resolve reads the mode file at path. A missing file means Dev. The file is
// read on every call.
func Resolve(path string) (Mode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Dev, nil
		}
		return "", fmt.Errorf("read mode file: %w", err)
	}
	return Mode(strings.TrimSpace(string(data))), nil
}
