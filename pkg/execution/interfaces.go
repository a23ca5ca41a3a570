package execution

import (
	"github.com/eez-psu/psu-go/pkg/channel"
	"github.com/eez-psu/psu-go/pkg/list"
	"github.com/eez-psu/psu-go/pkg/psuerr"
)

// Lists is the read side of the list store.
type Lists interface {
	// Lengths returns the lengths of the channel's three lists.
	Lengths(ch channel.ID) list.Lengths

	// At returns entry i of one of the channel's lists.
	At(ch channel.ID, kind list.Kind, i int) float64

	// RepeatCount returns the channel's configured repeat count.
	RepeatCount(ch channel.ID) (uint16, error)
}

// Dispatcher applies setpoints to a channel and reports its limits.
type Dispatcher interface {
	VoltageLimit(ch channel.ID) float64
	CurrentLimit(ch channel.ID) float64
	PowerLimit(ch channel.ID) float64

	VoltageSetpoint(ch channel.ID) float64
	CurrentSetpoint(ch channel.ID) float64

	SetVoltage(ch channel.ID, v float64)
	SetCurrent(ch channel.ID, i float64)
}

// Trigger is notified when a channel finishes its run.
type Trigger interface {
	SequenceFinished(ch channel.ID)
}

// ErrorReporter receives runtime error codes.
type ErrorReporter interface {
	ReportError(code psuerr.Code)
}
