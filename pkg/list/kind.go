package list

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidKind is returned for an unknown list kind.
var ErrInvalidKind = errors.New("invalid list kind")

// Kind selects one of a channel's three sequences.
type Kind uint8

const (
	// KindDwell is the dwell time list, in seconds.
	KindDwell Kind = iota

	// KindVoltage is the voltage list, in volts.
	KindVoltage

	// KindCurrent is the current list, in amperes.
	KindCurrent
)

// Kinds lists all kinds in file column order.
var Kinds = [...]Kind{KindDwell, KindVoltage, KindCurrent}

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindDwell:
		return "DWELL"
	case KindVoltage:
		return "VOLTAGE"
	case KindCurrent:
		return "CURRENT"
	default:
		return "UNKNOWN"
	}
}

// ParseKind parses a kind name. Short forms "dwel", "volt" and "curr" are
// accepted, case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "dwell", "dwel", "d":
		return KindDwell, nil
	case "voltage", "volt", "v", "u":
		return KindVoltage, nil
	case "current", "curr", "i", "c":
		return KindCurrent, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}
