package channel

import (
	"errors"
	"fmt"
)

// MaxCount is the maximum number of channels a supply can have.
const MaxCount = 6

// Limit errors.
var (
	ErrInvalidLimits = errors.New("invalid channel limits")
)

// ID is a 1-based channel number.
type ID uint8

// Index returns the 0-based array index of the channel.
func (id ID) Index() int {
	return int(id) - 1
}

// Valid reports whether id addresses one of count channels.
func (id ID) Valid(count int) bool {
	return id >= 1 && int(id) <= count
}

// String returns the channel name, e.g. "CH1".
func (id ID) String() string {
	return fmt.Sprintf("CH%d", uint8(id))
}

// FromIndex returns the ID for a 0-based index.
func FromIndex(i int) ID {
	return ID(i + 1)
}

// Limits holds a channel's static limit configuration.
type Limits struct {
	// Voltage is the upper voltage limit in volts.
	Voltage float64 `yaml:"voltage_limit" json:"voltage_limit"`

	// Current is the upper current limit in amperes.
	Current float64 `yaml:"current_limit" json:"current_limit"`

	// Power is the power limit in watts.
	Power float64 `yaml:"power_limit" json:"power_limit"`
}

// Validate checks that all limits are positive.
func (l Limits) Validate() error {
	if l.Voltage <= 0 || l.Current <= 0 || l.Power <= 0 {
		return fmt.Errorf("%w: u=%g i=%g p=%g", ErrInvalidLimits, l.Voltage, l.Current, l.Power)
	}
	return nil
}
