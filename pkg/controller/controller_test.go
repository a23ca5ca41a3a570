package controller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eez-psu/psu-go/pkg/channel"
	"github.com/eez-psu/psu-go/pkg/config"
	"github.com/eez-psu/psu-go/pkg/execution"
	"github.com/eez-psu/psu-go/pkg/list"
	"github.com/eez-psu/psu-go/pkg/log"
	"github.com/eez-psu/psu-go/pkg/persistence"
	"github.com/eez-psu/psu-go/pkg/psuerr"
)

type eventRecorder struct {
	events []log.Event
}

func (r *eventRecorder) Log(e log.Event) { r.events = append(r.events, e) }

func newController(t *testing.T) (*Controller, afero.Fs) {
	t.Helper()
	c, err := New(config.Default())
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	c.SetStorage(fs)
	return c, fs
}

func program(t *testing.T, c *Controller, ch channel.ID, dwell, voltage, current []float64, count uint16) {
	t.Helper()
	require.NoError(t, c.SetList(ch, list.KindDwell, dwell))
	require.NoError(t, c.SetList(ch, list.KindVoltage, voltage))
	require.NoError(t, c.SetList(ch, list.KindCurrent, current))
	require.NoError(t, c.SetRepeatCount(ch, count))
}

func drainErrors(c *Controller) []psuerr.Code {
	var codes []psuerr.Code
	for {
		code, ok := c.PopError()
		if !ok {
			return codes
		}
		codes = append(codes, code)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Channels = nil

	_, err := New(cfg)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestNewWithoutStorage(t *testing.T) {
	c, err := New(config.Default())
	require.NoError(t, err)
	assert.False(t, c.StorageInstalled())

	err = c.Load(1, "a.lst")
	assert.ErrorIs(t, err, psuerr.ErrStorageUnavailable)
	err = c.Save(1, "a.lst")
	assert.ErrorIs(t, err, psuerr.ErrStorageUnavailable)

	assert.Equal(t, []psuerr.Code{psuerr.CodeOptionNotInstalled, psuerr.CodeOptionNotInstalled}, drainErrors(c))
}

func TestListOperations(t *testing.T) {
	c, _ := newController(t)
	assert.Equal(t, 2, c.Channels())

	program(t, c, 1, []float64{0.5}, []float64{1, 2}, []float64{0.1, 0.2, 0.3}, 4)

	got, err := c.List(1, list.KindCurrent)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, got)

	n, err := c.RepeatCount(1)
	require.NoError(t, err)
	assert.Equal(t, uint16(4), n)

	dirty, err := c.IsDirty(1)
	require.NoError(t, err)
	assert.True(t, dirty)
	require.NoError(t, c.ClearDirty(1))
	dirty, _ = c.IsDirty(1)
	assert.False(t, dirty)

	compat, err := c.Compatibility(1)
	require.NoError(t, err)
	assert.Equal(t, Compatibility{VoltageDwell: true, CurrentDwell: true, VoltageCurrent: false, All: false}, compat)

	require.NoError(t, c.ResetChannel(1))
	got, _ = c.List(1, list.KindVoltage)
	assert.Empty(t, got)
	n, _ = c.RepeatCount(1)
	assert.Equal(t, uint16(list.DefaultRepeatCount), n)

	assert.Empty(t, drainErrors(c))
}

func TestInvalidChannelReportsError(t *testing.T) {
	c, _ := newController(t)

	err := c.SetList(3, list.KindVoltage, []float64{1})
	assert.ErrorIs(t, err, psuerr.ErrInvalidChannel)
	_, err = c.Compatibility(0)
	assert.ErrorIs(t, err, psuerr.ErrInvalidChannel)
	err = c.SetList(1, list.KindVoltage, make([]float64, list.MaxLength+1))
	assert.ErrorIs(t, err, psuerr.ErrListTooLong)

	assert.Equal(t, []psuerr.Code{psuerr.CodeDataOutOfRange, psuerr.CodeDataOutOfRange, psuerr.CodeDataOutOfRange}, drainErrors(c))
}

func TestSaveLoad(t *testing.T) {
	c, fs := newController(t)
	events := &eventRecorder{}
	c.SetEventLogger(events)

	program(t, c, 1, []float64{0.5, 1}, []float64{1, 2, 3, 4}, []float64{0.25}, 1)
	require.NoError(t, c.Save(1, "lists/ramp.lst"))

	data, err := afero.ReadFile(fs, "lists/ramp.lst")
	require.NoError(t, err)
	assert.Equal(t, "0.500000,1.000000,0.250000\n1.000000,2.000000,=\n=,3.000000,=\n=,4.000000,=\n", string(data))

	require.NoError(t, c.Load(2, "lists/ramp.lst"))
	got, _ := c.List(2, list.KindVoltage)
	assert.Equal(t, []float64{1, 2, 3, 4}, got)
	dirty, _ := c.IsDirty(2)
	assert.True(t, dirty)

	assert.Empty(t, events.events)
}

func TestLoadFailureLeavesLists(t *testing.T) {
	c, fs := newController(t)
	events := &eventRecorder{}
	c.SetEventLogger(events)

	program(t, c, 1, []float64{1}, []float64{5}, []float64{1}, 1)
	require.NoError(t, afero.WriteFile(fs, "bad.lst", []byte("1,2,3\n=,4,x\n"), 0644))

	err := c.Load(1, "bad.lst")
	assert.ErrorIs(t, err, psuerr.ErrMalformedListFile)
	err = c.Load(1, "missing.lst")
	assert.ErrorIs(t, err, psuerr.ErrStorageIO)

	got, _ := c.List(1, list.KindVoltage)
	assert.Equal(t, []float64{5}, got)

	assert.Equal(t, []psuerr.Code{psuerr.CodeExecutionError, psuerr.CodeExecutionError}, drainErrors(c))

	require.Len(t, events.events, 2)
	assert.Equal(t, log.CategoryError, events.events[0].Category)
	assert.Equal(t, uint8(1), events.events[0].Channel)
	assert.Equal(t, "load bad.lst", events.events[0].Error.Context)
	require.NotNil(t, events.events[1].Error.Code)
	assert.Equal(t, int(psuerr.CodeExecutionError), *events.events[1].Error.Code)
}

func TestStartRequiresCompatibleLists(t *testing.T) {
	c, _ := newController(t)
	program(t, c, 1, []float64{1}, []float64{1, 2}, []float64{1, 2, 3}, 1)

	err := c.Start(1)
	assert.ErrorIs(t, err, psuerr.ErrIncompatibleLists)

	st, err := c.Status(1)
	require.NoError(t, err)
	assert.Equal(t, execution.PhaseIdle, st.Execution.Phase)

	// Empty lists are not compatible either.
	err = c.Start(2)
	assert.ErrorIs(t, err, psuerr.ErrIncompatibleLists)

	assert.Equal(t, []psuerr.Code{psuerr.CodeExecutionError, psuerr.CodeExecutionError}, drainErrors(c))
}

func TestTickRunsToCompletion(t *testing.T) {
	c, _ := newController(t)
	program(t, c, 1, []float64{0.001}, []float64{1, 2}, []float64{0.5}, 2)

	var finished []channel.ID
	c.OnSequenceFinished(func(ch channel.ID) { finished = append(finished, ch) })

	require.NoError(t, c.Start(1))

	var res execution.TickResult
	for now := uint32(0); now <= 4000; now += 1000 {
		res = c.Tick(now)
	}
	assert.Equal(t, execution.TickResult{Outcome: execution.OutcomeSequenceFinished, Channel: 1}, res)
	assert.Equal(t, res, c.LastResult())
	assert.Equal(t, []channel.ID{1}, finished)

	st, _ := c.Status(1)
	assert.Equal(t, channel.Setpoints{Voltage: 2, Current: 0.5}, st.Setpoints)
	assert.Equal(t, config.DefaultLimits, st.Limits)

	c.Tick(5000)
	assert.False(t, c.IsActive())
}

func TestTickLimitViolation(t *testing.T) {
	c, _ := newController(t)
	program(t, c, 1, []float64{0.001}, []float64{1, 60}, []float64{0.5}, 0)
	program(t, c, 2, []float64{0.001}, []float64{3}, []float64{0.5}, 0)

	var violations []execution.TickResult
	c.OnLimitViolation(func(res execution.TickResult) { violations = append(violations, res) })

	require.NoError(t, c.Start(1))
	require.NoError(t, c.Start(2))
	c.Tick(0)
	res := c.Tick(1000)

	want := execution.TickResult{Outcome: execution.OutcomeLimitViolation, Channel: 1, Violation: execution.ViolationVoltage}
	assert.Equal(t, want, res)
	assert.Equal(t, []execution.TickResult{want}, violations)

	for _, ch := range []channel.ID{1, 2} {
		st, _ := c.Status(ch)
		assert.Equal(t, execution.PhaseIdle, st.Execution.Phase)
	}
	assert.Equal(t, []psuerr.Code{psuerr.CodeVoltageLimitExceeded}, drainErrors(c))
}

func TestAbortAndReset(t *testing.T) {
	c, _ := newController(t)
	program(t, c, 1, []float64{0.001}, []float64{1}, []float64{0.5}, 0)
	program(t, c, 2, []float64{0.001}, []float64{1}, []float64{0.5}, 0)
	require.NoError(t, c.Start(1))
	require.NoError(t, c.Start(2))
	c.Tick(0)

	c.Abort()
	st, _ := c.Status(1)
	assert.Equal(t, int32(-1), st.Execution.RemainingCycles)
	assert.Equal(t, 1.0, st.Setpoints.Voltage)

	require.NoError(t, c.Start(2))
	c.ResetAll()
	st, _ = c.Status(2)
	assert.Equal(t, execution.PhaseIdle, st.Execution.Phase)
	assert.Equal(t, 0, st.Lengths.Max())
}

func TestRun(t *testing.T) {
	cfg := config.Default()
	cfg.TickPeriod = 100 * time.Microsecond
	c, err := New(cfg)
	require.NoError(t, err)

	program(t, c, 1, []float64{0.001}, []float64{1, 2, 3}, []float64{0.5}, 2)

	done := make(chan channel.ID, 1)
	c.OnSequenceFinished(func(ch channel.ID) { done <- ch })
	require.NoError(t, c.Start(1))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- c.Run(ctx) }()

	select {
	case ch := <-done:
		assert.Equal(t, channel.ID(1), ch)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not finish")
	}

	cancel()
	assert.True(t, errors.Is(<-errCh, context.Canceled))
}

func TestMicros(t *testing.T) {
	assert.Equal(t, uint32(1500), Micros(1500*time.Microsecond))
	// The clock wraps after about 71.6 minutes.
	assert.Equal(t, uint32(5), Micros(time.Duration(1<<32+5)*time.Microsecond))
}

func TestState(t *testing.T) {
	c, _ := newController(t)

	assert.ErrorIs(t, c.SaveState(), ErrNoStateStore)
	assert.ErrorIs(t, c.RestoreState(), ErrNoStateStore)

	states := persistence.NewListStateStore(afero.NewMemMapFs(), "/state/lists.json")
	c.SetStateStore(states)

	// Nothing saved yet.
	require.NoError(t, c.RestoreState())

	program(t, c, 1, []float64{0.2}, []float64{1, 2}, []float64{0.5}, 9)
	require.NoError(t, c.SaveState())

	c.ResetAll()
	program(t, c, 2, []float64{1}, []float64{7}, []float64{1}, 1)

	require.NoError(t, c.RestoreState())
	got, _ := c.List(1, list.KindVoltage)
	assert.Equal(t, []float64{1, 2}, got)
	n, _ := c.RepeatCount(1)
	assert.Equal(t, uint16(9), n)
	got, _ = c.List(2, list.KindVoltage)
	assert.Empty(t, got, "channel 2 was empty when saved")
}
