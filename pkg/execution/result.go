package execution

import (
	"github.com/eez-psu/psu-go/pkg/channel"
	"github.com/eez-psu/psu-go/pkg/psuerr"
)

// Outcome describes how a tick ended.
type Outcome uint8

const (
	// OutcomeCompleted means every channel was examined.
	OutcomeCompleted Outcome = iota

	// OutcomeSequenceFinished means a channel finished its run and the
	// remaining channels were not examined.
	OutcomeSequenceFinished

	// OutcomeLimitViolation means a limit was exceeded, every channel was
	// aborted and the remaining channels were not examined.
	OutcomeLimitViolation
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "COMPLETED"
	case OutcomeSequenceFinished:
		return "SEQUENCE_FINISHED"
	case OutcomeLimitViolation:
		return "LIMIT_VIOLATION"
	default:
		return "UNKNOWN"
	}
}

// Violation identifies the limit a step exceeded.
type Violation uint8

const (
	// ViolationNone means no limit was exceeded.
	ViolationNone Violation = iota

	// ViolationVoltage means the voltage exceeded the voltage limit.
	ViolationVoltage

	// ViolationCurrent means the current exceeded the current limit.
	ViolationCurrent

	// ViolationPower means voltage times current exceeded the power limit.
	ViolationPower
)

// String returns the violation name.
func (v Violation) String() string {
	switch v {
	case ViolationNone:
		return "NONE"
	case ViolationVoltage:
		return "VOLTAGE"
	case ViolationCurrent:
		return "CURRENT"
	case ViolationPower:
		return "POWER"
	default:
		return "UNKNOWN"
	}
}

// Code returns the error code reported for the violation.
func (v Violation) Code() psuerr.Code {
	switch v {
	case ViolationVoltage:
		return psuerr.CodeVoltageLimitExceeded
	case ViolationCurrent:
		return psuerr.CodeCurrentLimitExceeded
	case ViolationPower:
		return psuerr.CodePowerLimitExceeded
	default:
		return psuerr.CodeNone
	}
}

// TickResult reports how a tick ended.
// When Outcome is not OutcomeCompleted, Channel is the channel the tick
// stopped at; later channels were not advanced.
type TickResult struct {
	Outcome   Outcome
	Channel   channel.ID
	Violation Violation
}

// Halted reports whether the tick stopped before examining every channel.
func (r TickResult) Halted() bool {
	return r.Outcome != OutcomeCompleted
}
