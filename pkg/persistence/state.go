package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/eez-psu/psu-go/pkg/channel"
	"github.com/eez-psu/psu-go/pkg/list"
)

// StateVersion is the current version of the state file format.
const StateVersion = 1

// ErrUnsupportedVersion is returned when a state file was written by a newer format.
var ErrUnsupportedVersion = errors.New("unsupported state file version")

// ListState contains the programmed lists of every channel.
type ListState struct {
	// Version is the state file format version.
	Version int `json:"version"`

	// SavedAt is when the state was last saved.
	SavedAt time.Time `json:"saved_at"`

	// Channels holds one snapshot per channel, in channel order.
	Channels []ChannelSnapshot `json:"channels,omitempty"`
}

// ChannelSnapshot captures one channel's lists.
type ChannelSnapshot struct {
	// Channel is the 1-based channel number.
	Channel uint8 `json:"channel"`

	Dwell   []float64 `json:"dwell,omitempty"`
	Voltage []float64 `json:"voltage,omitempty"`
	Current []float64 `json:"current,omitempty"`

	// RepeatCount is the number of cycles (0 = forever).
	RepeatCount uint16 `json:"repeat_count"`
}

// Capture takes a snapshot of every channel in the store.
func Capture(store *list.Store) (*ListState, error) {
	state := &ListState{Version: StateVersion}
	for i := 0; i < store.Channels(); i++ {
		ch := channel.FromIndex(i)
		snap := ChannelSnapshot{Channel: uint8(ch)}

		var err error
		if snap.Dwell, err = store.List(ch, list.KindDwell); err != nil {
			return nil, err
		}
		if snap.Voltage, err = store.List(ch, list.KindVoltage); err != nil {
			return nil, err
		}
		if snap.Current, err = store.List(ch, list.KindCurrent); err != nil {
			return nil, err
		}
		if snap.RepeatCount, err = store.RepeatCount(ch); err != nil {
			return nil, err
		}
		state.Channels = append(state.Channels, snap)
	}
	return state, nil
}

// Apply writes the snapshot into the store. Channels the store does not have
// are skipped. Restored channels are left clean.
func (s *ListState) Apply(store *list.Store) error {
	for _, snap := range s.Channels {
		ch := channel.ID(snap.Channel)
		if store.CheckChannel(ch) != nil {
			continue
		}
		if err := store.SetList(ch, list.KindDwell, snap.Dwell); err != nil {
			return fmt.Errorf("%s dwell: %w", ch, err)
		}
		if err := store.SetList(ch, list.KindVoltage, snap.Voltage); err != nil {
			return fmt.Errorf("%s voltage: %w", ch, err)
		}
		if err := store.SetList(ch, list.KindCurrent, snap.Current); err != nil {
			return fmt.Errorf("%s current: %w", ch, err)
		}
		if err := store.SetRepeatCount(ch, snap.RepeatCount); err != nil {
			return err
		}
		if err := store.ClearDirty(ch); err != nil {
			return err
		}
	}
	return nil
}

// ListStateStore manages persistence of list state to a JSON file.
type ListStateStore struct {
	mu   sync.Mutex
	fs   afero.Fs
	path string
}

// NewListStateStore creates a new list state store on the given filesystem.
// A nil fs uses the operating system's filesystem.
func NewListStateStore(fs afero.Fs, path string) *ListStateStore {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &ListStateStore{fs: fs, path: path}
}

// Path returns the state file path.
func (s *ListStateStore) Path() string {
	return s.path
}

// Save persists the list state.
func (s *ListStateStore) Save(state *ListState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Ensure parent directory exists
	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0755); err != nil {
		return err
	}

	state.Version = StateVersion
	if state.SavedAt.IsZero() {
		state.SavedAt = time.Now()
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	return afero.WriteFile(s.fs, s.path, data, 0644)
}

// Load reads the list state.
// Returns nil, nil if the file doesn't exist (empty state).
func (s *ListStateStore) Load() (*ListState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := afero.ReadFile(s.fs, s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	state := &ListState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, err
	}
	if state.Version > StateVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, state.Version)
	}

	return state, nil
}

// Clear removes the state file.
func (s *ListStateStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.fs.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
