package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/eez-psu/psu-go/pkg/channel"
	"github.com/eez-psu/psu-go/pkg/config"
	"github.com/eez-psu/psu-go/pkg/execution"
	"github.com/eez-psu/psu-go/pkg/list"
	"github.com/eez-psu/psu-go/pkg/listfile"
	"github.com/eez-psu/psu-go/pkg/log"
	"github.com/eez-psu/psu-go/pkg/persistence"
	"github.com/eez-psu/psu-go/pkg/psuerr"
)

// Controller errors.
var (
	ErrNoStateStore = errors.New("no state store configured")
)

// Compatibility holds the length compatibility checks of one channel.
type Compatibility struct {
	VoltageDwell   bool
	CurrentDwell   bool
	VoltageCurrent bool
	All            bool
}

// Status is a snapshot of one channel.
type Status struct {
	Channel   channel.ID
	Execution execution.State
	Lengths   list.Lengths
	Repeat    uint16
	Dirty     bool
	Limits    channel.Limits
	Setpoints channel.Setpoints
}

// finishedSink collects channels whose run finished during a tick.
type finishedSink struct {
	fired []channel.ID
}

func (s *finishedSink) SequenceFinished(ch channel.ID) {
	s.fired = append(s.fired, ch)
}

// Controller serializes access to the list store and the engine.
type Controller struct {
	mu sync.Mutex

	cfg      config.Config
	store    *list.Store
	sim      *channel.Simulator
	engine   *execution.Engine
	codec    *listfile.Codec
	errQueue *psuerr.Queue
	finished *finishedSink

	logger     *slog.Logger
	events     log.Logger
	stateStore *persistence.ListStateStore

	onFinished  func(ch channel.ID)
	onViolation func(res execution.TickResult)

	lastResult execution.TickResult
}

// New creates a controller from a validated configuration. Storage is
// rooted at cfg.Storage.Root on the operating system's filesystem.
func New(cfg config.Config) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := list.NewStore(len(cfg.Channels))
	if err != nil {
		return nil, err
	}

	var fs afero.Fs
	if cfg.Storage.Installed() {
		fs = afero.NewBasePathFs(afero.NewOsFs(), cfg.Storage.Root)
	}
	codec, err := listfile.NewCodec(fs, cfg.Storage.Format())
	if err != nil {
		return nil, err
	}

	c := &Controller{
		cfg:      cfg,
		store:    store,
		sim:      channel.NewSimulator(cfg.Channels),
		codec:    codec,
		errQueue: psuerr.NewQueue(cfg.ErrorQueueSize),
		finished: &finishedSink{},
		logger:   slog.Default(),
		events:   log.NoopLogger{},
	}

	c.engine, err = execution.New(execution.Config{
		Channels:   len(cfg.Channels),
		Lists:      store,
		Dispatcher: c.sim,
		Trigger:    c.finished,
		Reporter:   c.errQueue,
	})
	if err != nil {
		return nil, err
	}
	store.OnReset(c.engine.Idle)

	return c, nil
}

// SetLogger sets the operational logger.
func (c *Controller) SetLogger(logger *slog.Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if logger == nil {
		logger = slog.Default()
	}
	c.logger = logger
}

// SetEventLogger sets the execution event logger.
func (c *Controller) SetEventLogger(l log.Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l == nil {
		l = log.NoopLogger{}
	}
	c.events = l
	c.engine.SetLogger(l)
}

// SetStorage replaces the storage medium. A nil fs uninstalls storage.
func (c *Controller) SetStorage(fs afero.Fs) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// The format was validated by New.
	c.codec, _ = listfile.NewCodec(fs, c.codec.Format())
}

// SetStateStore sets the store used by SaveState and RestoreState.
func (c *Controller) SetStateStore(store *persistence.ListStateStore) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stateStore = store
}

// OnSequenceFinished sets a callback invoked after a channel finishes its run.
// It runs outside the controller's lock.
func (c *Controller) OnSequenceFinished(fn func(ch channel.ID)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onFinished = fn
}

// OnLimitViolation sets a callback invoked after a limit violation aborted
// execution. It runs outside the controller's lock.
func (c *Controller) OnLimitViolation(fn func(res execution.TickResult)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onViolation = fn
}

// Channels returns the number of channels.
func (c *Controller) Channels() int {
	return len(c.cfg.Channels)
}

// StorageInstalled reports whether a storage medium is present.
func (c *Controller) StorageInstalled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.codec.Installed()
}

// ResetAll resets every channel's lists and idles execution.
func (c *Controller) ResetAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Reset()
}

// ResetChannel resets one channel's lists and idles its execution.
func (c *Controller) ResetChannel(ch channel.ID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.report(c.store.ResetChannel(ch))
}

// SetList replaces one of the channel's lists.
func (c *Controller) SetList(ch channel.ID, kind list.Kind, values []float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.report(c.store.SetList(ch, kind, values))
}

// List returns a copy of one of the channel's lists.
func (c *Controller) List(ch channel.ID, kind list.Kind) ([]float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	values, err := c.store.List(ch, kind)
	return values, c.report(err)
}

// RepeatCount returns the channel's repeat count.
func (c *Controller) RepeatCount(ch channel.ID) (uint16, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, err := c.store.RepeatCount(ch)
	return n, c.report(err)
}

// SetRepeatCount sets the channel's repeat count (0 = forever).
func (c *Controller) SetRepeatCount(ch channel.ID, n uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.report(c.store.SetRepeatCount(ch, n))
}

// IsDirty reports whether the channel's lists changed since the flag was
// last cleared.
func (c *Controller) IsDirty(ch channel.ID) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	dirty, err := c.store.IsDirty(ch)
	return dirty, c.report(err)
}

// ClearDirty clears the channel's dirty flag.
func (c *Controller) ClearDirty(ch channel.ID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.report(c.store.ClearDirty(ch))
}

// Compatibility returns the channel's length compatibility checks.
func (c *Controller) Compatibility(ch channel.ID) (Compatibility, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.store.CheckChannel(ch); err != nil {
		return Compatibility{}, c.report(err)
	}

	l := c.store.Lengths(ch)
	return Compatibility{
		VoltageDwell:   list.Compatible(l.Voltage, l.Dwell),
		CurrentDwell:   list.Compatible(l.Current, l.Dwell),
		VoltageCurrent: list.Compatible(l.Voltage, l.Current),
		All:            l.Compatible(),
	}, nil
}

// Load replaces the channel's lists with the contents of the list file at
// path. On failure the lists are unchanged.
func (c *Controller) Load(ch channel.ID, path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.codec.Load(c.store, ch, path); err != nil {
		return c.storageFailure(ch, "load", path, err)
	}
	c.logger.Info("list loaded", "channel", ch, "path", path, "steps", c.store.MaxSize(ch))
	return nil
}

// Save writes the channel's lists to the list file at path.
func (c *Controller) Save(ch channel.ID, path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.codec.Save(c.store, ch, path); err != nil {
		return c.storageFailure(ch, "save", path, err)
	}
	c.logger.Info("list saved", "channel", ch, "path", path)
	return nil
}

// Start arms the channel to run its lists. The lists must be compatible.
func (c *Controller) Start(ch channel.ID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ok, err := c.store.AllCompatible(ch)
	if err != nil {
		return c.report(err)
	}
	if !ok {
		l := c.store.Lengths(ch)
		return c.report(fmt.Errorf("%w: %s dwell=%d voltage=%d current=%d",
			psuerr.ErrIncompatibleLists, ch, l.Dwell, l.Voltage, l.Current))
	}

	if err := c.engine.Start(ch); err != nil {
		return c.report(err)
	}
	st, _ := c.engine.State(ch)
	c.logger.Info("list started", "channel", ch, "cycles", st.RemainingCycles, "run", st.RunID)
	return nil
}

// Abort stops every channel.
func (c *Controller) Abort() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.engine.Abort()
	c.logger.Info("list execution aborted")
}

// IsActive reports whether any channel was running during the last tick.
func (c *Controller) IsActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.IsActive()
}

// LastResult returns the result of the most recent tick.
func (c *Controller) LastResult() execution.TickResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastResult
}

// Tick advances the engine to now (microseconds, wrapping).
func (c *Controller) Tick(now uint32) execution.TickResult {
	c.mu.Lock()
	res := c.engine.Tick(now)
	c.lastResult = res

	fired := c.finished.fired
	c.finished.fired = nil
	onFinished, onViolation := c.onFinished, c.onViolation

	switch res.Outcome {
	case execution.OutcomeSequenceFinished:
		c.logger.Info("list finished", "channel", res.Channel)
	case execution.OutcomeLimitViolation:
		c.logger.Warn("list aborted", "channel", res.Channel, "violation", res.Violation,
			"code", int(res.Violation.Code()))
	}
	c.mu.Unlock()

	if onFinished != nil {
		for _, ch := range fired {
			onFinished(ch)
		}
	}
	if onViolation != nil && res.Outcome == execution.OutcomeLimitViolation {
		onViolation(res)
	}
	return res
}

// Run ticks the engine every configured period until ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.cfg.TickPeriod)
	defer ticker.Stop()

	start := time.Now()
	c.Tick(0)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case t := <-ticker.C:
			c.Tick(Micros(t.Sub(start)))
		}
	}
}

// Micros converts elapsed time to the engine's wrapping microsecond clock.
func Micros(d time.Duration) uint32 {
	return uint32(d.Microseconds())
}

// Status returns a snapshot of the channel.
func (c *Controller) Status(ch channel.ID) (Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	exec, err := c.engine.State(ch)
	if err != nil {
		return Status{}, err
	}
	repeat, _ := c.store.RepeatCount(ch)
	dirty, _ := c.store.IsDirty(ch)

	return Status{
		Channel:   ch,
		Execution: exec,
		Lengths:   c.store.Lengths(ch),
		Repeat:    repeat,
		Dirty:     dirty,
		Limits:    c.sim.Limits(ch),
		Setpoints: c.sim.Setpoints(ch),
	}, nil
}

// PopError removes and returns the oldest queued error code.
func (c *Controller) PopError() (psuerr.Code, bool) {
	return c.errQueue.Pop()
}

// SaveState snapshots every channel's lists to the state store.
func (c *Controller) SaveState() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stateStore == nil {
		return ErrNoStateStore
	}
	state, err := persistence.Capture(c.store)
	if err != nil {
		return err
	}
	if err := c.stateStore.Save(state); err != nil {
		return err
	}
	c.logger.Debug("state saved", "path", c.stateStore.Path())
	return nil
}

// RestoreState loads the snapshot from the state store. A missing snapshot
// leaves the lists unchanged and is not an error.
func (c *Controller) RestoreState() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stateStore == nil {
		return ErrNoStateStore
	}
	state, err := c.stateStore.Load()
	if err != nil || state == nil {
		return err
	}

	c.engine.Abort()
	c.store.Reset()
	if err := state.Apply(c.store); err != nil {
		return err
	}
	c.logger.Info("state restored", "path", c.stateStore.Path(), "saved_at", state.SavedAt)
	return nil
}

// report queues the error code for err and returns err.
func (c *Controller) report(err error) error {
	if err != nil {
		c.errQueue.ReportError(psuerr.CodeOf(err))
	}
	return err
}

func (c *Controller) storageFailure(ch channel.ID, op, path string, err error) error {
	code := psuerr.CodeOf(err)
	c.errQueue.ReportError(code)

	codeInt := int(code)
	c.events.Log(log.Event{
		Timestamp: time.Now(),
		Channel:   uint8(ch),
		Category:  log.CategoryError,
		Error: &log.ErrorEventData{
			Message: err.Error(),
			Code:    &codeInt,
			Context: op + " " + path,
		},
	})
	c.logger.Warn("list "+op+" failed", "channel", ch, "path", path, "error", err)
	return err
}
