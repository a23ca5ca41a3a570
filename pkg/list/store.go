package list

import (
	"fmt"

	"github.com/eez-psu/psu-go/pkg/channel"
	"github.com/eez-psu/psu-go/pkg/psuerr"
)

// MaxLength is the capacity of every sequence.
const MaxLength = 256

// DefaultRepeatCount is the repeat count after a reset.
const DefaultRepeatCount = 1

type sequence struct {
	values [MaxLength]float64
	length uint16
}

func (s *sequence) set(values []float64) {
	copy(s.values[:], values)
	s.length = uint16(len(values))
}

func (s *sequence) slice() []float64 {
	out := make([]float64, s.length)
	copy(out, s.values[:s.length])
	return out
}

type channelLists struct {
	dwell   sequence
	voltage sequence
	current sequence

	count   uint16
	changed bool
}

func (c *channelLists) sequence(kind Kind) *sequence {
	switch kind {
	case KindDwell:
		return &c.dwell
	case KindVoltage:
		return &c.voltage
	case KindCurrent:
		return &c.current
	default:
		return nil
	}
}

// Store holds the lists of every channel.
// It is not safe for concurrent use; the owner serializes access.
type Store struct {
	channels []channelLists

	onReset func(ch channel.ID)
}

// NewStore creates a store for count channels, all reset.
func NewStore(count int) (*Store, error) {
	if count < 1 || count > channel.MaxCount {
		return nil, fmt.Errorf("%w: channel count %d", psuerr.ErrInvalidChannel, count)
	}
	s := &Store{channels: make([]channelLists, count)}
	s.Reset()
	return s, nil
}

// Channels returns the number of channels.
func (s *Store) Channels() int {
	return len(s.channels)
}

// OnReset sets a callback invoked whenever a channel is reset.
// The execution engine uses it to idle the channel.
func (s *Store) OnReset(fn func(ch channel.ID)) {
	s.onReset = fn
}

func (s *Store) lists(ch channel.ID) (*channelLists, error) {
	if !ch.Valid(len(s.channels)) {
		return nil, fmt.Errorf("%w: %d", psuerr.ErrInvalidChannel, ch)
	}
	return &s.channels[ch.Index()], nil
}

// CheckChannel returns ErrInvalidChannel unless ch addresses a channel of
// this store.
func (s *Store) CheckChannel(ch channel.ID) error {
	_, err := s.lists(ch)
	return err
}

// Reset resets every channel.
func (s *Store) Reset() {
	for i := range s.channels {
		_ = s.ResetChannel(channel.FromIndex(i))
	}
}

// ResetChannel empties all three lists, restores the default repeat count,
// clears the dirty flag and idles the channel's execution.
func (s *Store) ResetChannel(ch channel.ID) error {
	c, err := s.lists(ch)
	if err != nil {
		return err
	}

	c.dwell.length = 0
	c.voltage.length = 0
	c.current.length = 0
	c.changed = false
	c.count = DefaultRepeatCount

	if s.onReset != nil {
		s.onReset(ch)
	}
	return nil
}

// SetList replaces one of the channel's lists and marks the channel dirty.
// Values are not range checked here; limits are enforced at run time.
func (s *Store) SetList(ch channel.ID, kind Kind, values []float64) error {
	c, err := s.lists(ch)
	if err != nil {
		return err
	}
	seq := c.sequence(kind)
	if seq == nil {
		return fmt.Errorf("%w: %d", ErrInvalidKind, kind)
	}
	if len(values) > MaxLength {
		return fmt.Errorf("%w: %d > %d", psuerr.ErrListTooLong, len(values), MaxLength)
	}

	seq.set(values)
	c.changed = true
	return nil
}

// List returns a copy of one of the channel's lists.
func (s *Store) List(ch channel.ID, kind Kind) ([]float64, error) {
	c, err := s.lists(ch)
	if err != nil {
		return nil, err
	}
	seq := c.sequence(kind)
	if seq == nil {
		return nil, fmt.Errorf("%w: %d", ErrInvalidKind, kind)
	}
	return seq.slice(), nil
}

// Lengths returns the stored lengths of the channel's lists.
// An invalid channel has all lengths zero.
func (s *Store) Lengths(ch channel.ID) Lengths {
	c, err := s.lists(ch)
	if err != nil {
		return Lengths{}
	}
	return Lengths{
		Dwell:   int(c.dwell.length),
		Voltage: int(c.voltage.length),
		Current: int(c.current.length),
	}
}

// At returns entry i of one of the channel's lists without copying.
// The caller keeps i within the list's length.
func (s *Store) At(ch channel.ID, kind Kind, i int) float64 {
	return s.channels[ch.Index()].sequence(kind).values[i]
}

// MaxSize returns the longest of the channel's three lists.
func (s *Store) MaxSize(ch channel.ID) int {
	return s.Lengths(ch).Max()
}

// IsDirty reports whether any list changed since the flag was last cleared.
func (s *Store) IsDirty(ch channel.ID) (bool, error) {
	c, err := s.lists(ch)
	if err != nil {
		return false, err
	}
	return c.changed, nil
}

// ClearDirty clears the channel's dirty flag.
func (s *Store) ClearDirty(ch channel.ID) error {
	c, err := s.lists(ch)
	if err != nil {
		return err
	}
	c.changed = false
	return nil
}

// RepeatCount returns the number of cycles the next run executes.
// Zero means run until aborted.
func (s *Store) RepeatCount(ch channel.ID) (uint16, error) {
	c, err := s.lists(ch)
	if err != nil {
		return 0, err
	}
	return c.count, nil
}

// SetRepeatCount sets the number of cycles for the next run.
func (s *Store) SetRepeatCount(ch channel.ID, n uint16) error {
	c, err := s.lists(ch)
	if err != nil {
		return err
	}
	c.count = n
	return nil
}

// AllCompatible reports whether all three of the channel's lists are
// pairwise compatible.
func (s *Store) AllCompatible(ch channel.ID) (bool, error) {
	if _, err := s.lists(ch); err != nil {
		return false, err
	}
	return s.Lengths(ch).Compatible(), nil
}

// VoltageDwellCompatible checks the voltage and dwell list lengths.
func (s *Store) VoltageDwellCompatible(ch channel.ID) (bool, error) {
	return s.pairCompatible(ch, KindVoltage, KindDwell)
}

// CurrentDwellCompatible checks the current and dwell list lengths.
func (s *Store) CurrentDwellCompatible(ch channel.ID) (bool, error) {
	return s.pairCompatible(ch, KindCurrent, KindDwell)
}

// VoltageCurrentCompatible checks the voltage and current list lengths.
func (s *Store) VoltageCurrentCompatible(ch channel.ID) (bool, error) {
	return s.pairCompatible(ch, KindVoltage, KindCurrent)
}

func (s *Store) pairCompatible(ch channel.ID, a, b Kind) (bool, error) {
	if _, err := s.lists(ch); err != nil {
		return false, err
	}
	l := s.Lengths(ch)
	return Compatible(l.Of(a), l.Of(b)), nil
}
