package execution

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/eez-psu/psu-go/pkg/channel"
	"github.com/eez-psu/psu-go/pkg/list"
	"github.com/eez-psu/psu-go/pkg/log"
	"github.com/eez-psu/psu-go/pkg/psuerr"
)

// ErrMissingCollaborator is returned by New when a required collaborator is nil.
var ErrMissingCollaborator = errors.New("missing engine collaborator")

const (
	// idle marks a channel that is not running.
	idle = -1

	// notStarted marks a run whose first point has not been applied yet.
	notStarted = -1

	// maxDwellMicros keeps deadlines within the signed half of the clock so
	// the wrap-safe comparison stays valid.
	maxDwellMicros = math.MaxInt32
)

// Phase is the externally visible state of a channel.
type Phase uint8

const (
	// PhaseIdle means the channel is not running.
	PhaseIdle Phase = iota

	// PhaseStarted means the run starts on the next tick.
	PhaseStarted

	// PhaseRunning means the channel is stepping through its lists.
	PhaseRunning
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "IDLE"
	case PhaseStarted:
		return "STARTED"
	case PhaseRunning:
		return "RUNNING"
	default:
		return "UNKNOWN"
	}
}

type channelState struct {
	counter       int32
	it            int16
	nextPointTime uint32
	runID         string
}

func (s *channelState) phase() Phase {
	switch {
	case s.counter < 0:
		return PhaseIdle
	case s.it == notStarted:
		return PhaseStarted
	default:
		return PhaseRunning
	}
}

// State is a snapshot of one channel's execution.
type State struct {
	Phase Phase

	// RemainingCycles is -1 when idle and 0 when running forever.
	RemainingCycles int32

	// StepIndex is -1 before the first point of a run.
	StepIndex int16

	// NextTransition is the clock value at which the current point expires.
	NextTransition uint32

	// RunID identifies the current or last run.
	RunID string
}

// Config holds the engine's collaborators.
type Config struct {
	// Channels is the number of channels to drive.
	Channels int

	Lists      Lists
	Dispatcher Dispatcher
	Trigger    Trigger
	Reporter   ErrorReporter

	// Logger receives execution events. Nil disables event logging.
	Logger log.Logger

	// Now timestamps events. Defaults to time.Now.
	Now func() time.Time
}

// Engine drives list execution for all channels.
// It is not safe for concurrent use; the host serializes calls.
type Engine struct {
	lists      Lists
	dispatcher Dispatcher
	trigger    Trigger
	reporter   ErrorReporter
	logger     log.Logger
	now        func() time.Time

	states []channelState
	active bool
}

// New creates an engine with every channel idle.
func New(cfg Config) (*Engine, error) {
	if cfg.Channels < 1 || cfg.Channels > channel.MaxCount {
		return nil, fmt.Errorf("%w: channel count %d", psuerr.ErrInvalidChannel, cfg.Channels)
	}
	if cfg.Lists == nil || cfg.Dispatcher == nil || cfg.Trigger == nil || cfg.Reporter == nil {
		return nil, ErrMissingCollaborator
	}

	e := &Engine{
		lists:      cfg.Lists,
		dispatcher: cfg.Dispatcher,
		trigger:    cfg.Trigger,
		reporter:   cfg.Reporter,
		logger:     cfg.Logger,
		now:        cfg.Now,
		states:     make([]channelState, cfg.Channels),
	}
	if e.logger == nil {
		e.logger = log.NoopLogger{}
	}
	if e.now == nil {
		e.now = time.Now
	}
	for i := range e.states {
		e.states[i].counter = idle
	}
	return e, nil
}

// SetLogger replaces the event logger. Nil disables event logging.
func (e *Engine) SetLogger(l log.Logger) {
	if l == nil {
		l = log.NoopLogger{}
	}
	e.logger = l
}

// Channels returns the number of channels.
func (e *Engine) Channels() int {
	return len(e.states)
}

func (e *Engine) state(ch channel.ID) (*channelState, error) {
	if !ch.Valid(len(e.states)) {
		return nil, fmt.Errorf("%w: %d", psuerr.ErrInvalidChannel, ch)
	}
	return &e.states[ch.Index()], nil
}

// Start arms the channel to run its lists from the first point on the next
// tick. The repeat count is captured now; later changes do not affect this run.
// Start does not check list compatibility.
func (e *Engine) Start(ch channel.ID) error {
	st, err := e.state(ch)
	if err != nil {
		return err
	}
	count, err := e.lists.RepeatCount(ch)
	if err != nil {
		return err
	}

	old := st.phase()
	st.it = notStarted
	st.counter = int32(count)
	st.runID = uuid.NewString()

	e.logState(ch, st, 0, old, PhaseStarted, fmt.Sprintf("repeat count %d", count))
	return nil
}

// Idle stops a single channel. The list store calls it on channel reset.
func (e *Engine) Idle(ch channel.ID) {
	st, err := e.state(ch)
	if err != nil {
		return
	}
	if old := st.phase(); old != PhaseIdle {
		st.counter = idle
		e.logState(ch, st, 0, old, PhaseIdle, "reset")
	}
}

// Abort stops every channel. Step indices and the last applied setpoints are
// left as they are.
func (e *Engine) Abort() {
	e.abort(0, "aborted")
}

func (e *Engine) abort(now uint32, reason string) {
	for i := range e.states {
		st := &e.states[i]
		old := st.phase()
		st.counter = idle
		if old != PhaseIdle {
			e.logState(channel.FromIndex(i), st, now, old, PhaseIdle, reason)
		}
	}
}

// IsActive reports whether any channel was running during the last tick.
func (e *Engine) IsActive() bool {
	return e.active
}

// State returns a snapshot of the channel's execution.
func (e *Engine) State(ch channel.ID) (State, error) {
	st, err := e.state(ch)
	if err != nil {
		return State{}, err
	}
	return State{
		Phase:           st.phase(),
		RemainingCycles: st.counter,
		StepIndex:       st.it,
		NextTransition:  st.nextPointTime,
		RunID:           st.runID,
	}, nil
}

// Tick advances every running channel whose current point has expired.
// now is a free-running microsecond clock; wraparound is handled.
func (e *Engine) Tick(now uint32) TickResult {
	e.active = false

	for i := range e.states {
		st := &e.states[i]
		if st.counter < 0 {
			continue
		}

		e.active = true

		if st.it != notStarted && int32(st.nextPointTime-now) > 0 {
			continue
		}

		if res := e.step(channel.FromIndex(i), st, now); res.Halted() {
			return res
		}
	}

	return TickResult{Outcome: OutcomeCompleted}
}

// step moves the channel to its next point and applies it.
func (e *Engine) step(ch channel.ID, st *channelState, now uint32) TickResult {
	lengths := e.lists.Lengths(ch)

	st.it++
	if int(st.it) >= lengths.Max() {
		if st.counter > 0 {
			st.counter--
			if st.counter == 0 {
				st.counter = idle
				e.logState(ch, st, now, PhaseRunning, PhaseIdle, "finished")
				e.trigger.SequenceFinished(ch)
				return TickResult{Outcome: OutcomeSequenceFinished, Channel: ch}
			}
		}
		st.it = 0
	}

	// Points need all three lists; a channel with an empty list only counts
	// its cycles down.
	if lengths.Voltage == 0 || lengths.Current == 0 || lengths.Dwell == 0 {
		return TickResult{Outcome: OutcomeCompleted}
	}

	idx := int(st.it)

	voltage := e.lists.At(ch, list.KindVoltage, idx%lengths.Voltage)
	if voltage > e.dispatcher.VoltageLimit(ch) {
		return e.violation(ch, st, now, ViolationVoltage)
	}
	if voltage*e.dispatcher.CurrentSetpoint(ch) > e.dispatcher.PowerLimit(ch) {
		return e.violation(ch, st, now, ViolationPower)
	}
	e.dispatcher.SetVoltage(ch, voltage)

	current := e.lists.At(ch, list.KindCurrent, idx%lengths.Current)
	if current > e.dispatcher.CurrentLimit(ch) {
		return e.violation(ch, st, now, ViolationCurrent)
	}
	if current*e.dispatcher.VoltageSetpoint(ch) > e.dispatcher.PowerLimit(ch) {
		return e.violation(ch, st, now, ViolationPower)
	}
	e.dispatcher.SetCurrent(ch, current)

	dwell := e.lists.At(ch, list.KindDwell, idx%lengths.Dwell)
	st.nextPointTime = now + dwellMicros(dwell)

	e.logger.Log(log.Event{
		Timestamp:  e.now(),
		RunID:      st.runID,
		Channel:    uint8(ch),
		Category:   log.CategoryStep,
		TickMicros: now,
		Step: &log.StepEvent{
			Index:           st.it,
			Voltage:         voltage,
			Current:         current,
			Dwell:           dwell,
			RemainingCycles: st.counter,
		},
	})

	return TickResult{Outcome: OutcomeCompleted}
}

func (e *Engine) violation(ch channel.ID, st *channelState, now uint32, v Violation) TickResult {
	code := v.Code()
	e.reporter.ReportError(code)

	c := int(code)
	e.logger.Log(log.Event{
		Timestamp:  e.now(),
		RunID:      st.runID,
		Channel:    uint8(ch),
		Category:   log.CategoryError,
		TickMicros: now,
		Error: &log.ErrorEventData{
			Message: code.String(),
			Code:    &c,
			Context: fmt.Sprintf("step %d", st.it),
		},
	})

	e.abort(now, fmt.Sprintf("%s limit exceeded on %s", v, ch))
	return TickResult{Outcome: OutcomeLimitViolation, Channel: ch, Violation: v}
}

func (e *Engine) logState(ch channel.ID, st *channelState, now uint32, from, to Phase, reason string) {
	e.logger.Log(log.Event{
		Timestamp:  e.now(),
		RunID:      st.runID,
		Channel:    uint8(ch),
		Category:   log.CategoryState,
		TickMicros: now,
		StateChange: &log.StateChangeEvent{
			OldState: from.String(),
			NewState: to.String(),
			Reason:   reason,
		},
	})
}

// dwellMicros converts a dwell time in seconds to whole microseconds.
func dwellMicros(seconds float64) uint32 {
	us := math.Round(seconds * 1e6)
	switch {
	case !(us > 0):
		return 0
	case us > maxDwellMicros:
		return maxDwellMicros
	default:
		return uint32(us)
	}
}
