package psuerr

import "errors"

// Sentinel errors. Callers match them with errors.Is.
var (
	ErrInvalidChannel     = errors.New("invalid channel")
	ErrStorageUnavailable = errors.New("storage option not installed")
	ErrStorageIO          = errors.New("storage i/o error")
	ErrMalformedListFile  = errors.New("malformed list file")
	ErrIncompatibleLists  = errors.New("list lengths are not compatible")
	ErrListTooLong        = errors.New("list too long")
)

// Code is a numeric error code as reported to the operator.
type Code int16

const (
	// CodeNone means no error.
	CodeNone Code = 0

	// CodeExecutionError is the generic execution error.
	CodeExecutionError Code = -200

	// CodeDataOutOfRange is reported for list values or lengths out of range.
	CodeDataOutOfRange Code = -222

	// CodeOptionNotInstalled is reported when the storage medium is absent.
	CodeOptionNotInstalled Code = -241

	// CodeQueueOverflow replaces the newest entry when the error queue is full.
	CodeQueueOverflow Code = -350

	// CodeVoltageLimitExceeded is reported when a list voltage exceeds the
	// channel's voltage limit.
	CodeVoltageLimitExceeded Code = 301

	// CodeCurrentLimitExceeded is reported when a list current exceeds the
	// channel's current limit.
	CodeCurrentLimitExceeded Code = 302

	// CodePowerLimitExceeded is reported when a step would exceed the
	// channel's power limit.
	CodePowerLimitExceeded Code = 303
)

// String returns the code's message text.
func (c Code) String() string {
	switch c {
	case CodeNone:
		return "No error"
	case CodeExecutionError:
		return "Execution error"
	case CodeDataOutOfRange:
		return "Data out of range"
	case CodeOptionNotInstalled:
		return "Option not installed"
	case CodeQueueOverflow:
		return "Queue overflow"
	case CodeVoltageLimitExceeded:
		return "Voltage limit exceeded"
	case CodeCurrentLimitExceeded:
		return "Current limit exceeded"
	case CodePowerLimitExceeded:
		return "Power limit exceeded"
	default:
		return "Unknown error"
	}
}

// CodeOf returns the code reported for err.
// Storage i/o and malformed file errors share the generic execution error code.
func CodeOf(err error) Code {
	switch {
	case err == nil:
		return CodeNone
	case errors.Is(err, ErrStorageUnavailable):
		return CodeOptionNotInstalled
	case errors.Is(err, ErrListTooLong), errors.Is(err, ErrInvalidChannel):
		return CodeDataOutOfRange
	default:
		return CodeExecutionError
	}
}
