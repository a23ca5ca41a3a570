package log

import (
	"time"
)

// Event represents an execution log event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (wall clock).
	Timestamp time.Time `cbor:"1,keyasint"`

	// RunID identifies the run that produced the event (UUID).
	// Empty for events outside a run, such as storage errors.
	RunID string `cbor:"2,keyasint,omitempty"`

	// Channel is the 1-based channel number (0 if not channel specific).
	Channel uint8 `cbor:"3,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"4,keyasint"`

	// TickMicros is the engine clock value in microseconds.
	TickMicros uint32 `cbor:"5,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Step        *StepEvent        `cbor:"10,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"11,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"12,keyasint,omitempty"`
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryStep indicates a list point was applied.
	CategoryStep Category = 0
	// CategoryState indicates a run state change.
	CategoryState Category = 1
	// CategoryError indicates an error event.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryStep:
		return "STEP"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// StepEvent captures one applied list point.
type StepEvent struct {
	// Index is the step index within the cycle.
	Index int16 `cbor:"1,keyasint"`

	// Voltage is the applied voltage setpoint.
	Voltage float64 `cbor:"2,keyasint"`

	// Current is the applied current setpoint.
	Current float64 `cbor:"3,keyasint"`

	// Dwell is the dwell time in seconds.
	Dwell float64 `cbor:"4,keyasint"`

	// RemainingCycles is the cycle budget left (0 = run forever).
	RemainingCycles int32 `cbor:"5,keyasint"`
}

// StateChangeEvent captures run lifecycle events.
type StateChangeEvent struct {
	// OldState is the previous state (may be empty).
	OldState string `cbor:"1,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"2,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"3,keyasint,omitempty"`
}

// ErrorEventData captures errors.
type ErrorEventData struct {
	// Message is the error message.
	Message string `cbor:"1,keyasint"`

	// Code is the reported error code (if applicable).
	Code *int `cbor:"2,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"3,keyasint,omitempty"`
}
