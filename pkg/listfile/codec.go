package listfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/eez-psu/psu-go/pkg/channel"
	"github.com/eez-psu/psu-go/pkg/list"
	"github.com/eez-psu/psu-go/pkg/psuerr"
)

// Store is the part of the list store the codec reads and writes.
type Store interface {
	CheckChannel(ch channel.ID) error
	List(ch channel.ID, kind list.Kind) ([]float64, error)
	SetList(ch channel.ID, kind list.Kind, values []float64) error
}

// Codec loads and saves channel lists on a storage medium.
// Access to the medium is not synchronized; the owner serializes calls.
type Codec struct {
	fs     afero.Fs
	format Format
}

// NewCodec creates a codec on fs. A nil fs means the storage option is not
// installed.
func NewCodec(fs afero.Fs, format Format) (*Codec, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	return &Codec{fs: fs, format: format}, nil
}

// Installed reports whether a storage medium is present.
func (c *Codec) Installed() bool {
	return c.fs != nil
}

// Format returns the codec's file format.
func (c *Codec) Format() Format {
	return c.format
}

// Read parses the list file at path.
func (c *Codec) Read(path string) (Lists, error) {
	if c.fs == nil {
		return Lists{}, psuerr.ErrStorageUnavailable
	}

	f, err := c.fs.Open(path)
	if err != nil {
		return Lists{}, fmt.Errorf("%w: open %s: %v", psuerr.ErrStorageIO, path, err)
	}
	defer f.Close()

	lists, err := c.format.Decode(f)
	if err != nil {
		return Lists{}, fmt.Errorf("%s: %w", path, err)
	}
	return lists, nil
}

// Write replaces the file at path with lists. Missing parent directories
// are created.
func (c *Codec) Write(path string, lists Lists) error {
	if c.fs == nil {
		return psuerr.ErrStorageUnavailable
	}

	if dir := filepath.Dir(path); dir != "." && dir != "/" {
		if err := c.fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("%w: mkdir %s: %v", psuerr.ErrStorageIO, dir, err)
		}
	}

	if err := c.fs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: remove %s: %v", psuerr.ErrStorageIO, path, err)
	}

	f, err := c.fs.Create(path)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", psuerr.ErrStorageIO, path, err)
	}

	if err := c.format.Encode(f, lists); err != nil {
		f.Close()
		return fmt.Errorf("%w: write %s: %v", psuerr.ErrStorageIO, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", psuerr.ErrStorageIO, path, err)
	}
	return nil
}

// Load reads the list file at path into the channel's lists.
// The store is only updated when the whole file parses.
func (c *Codec) Load(store Store, ch channel.ID, path string) error {
	if c.fs == nil {
		return psuerr.ErrStorageUnavailable
	}
	if err := store.CheckChannel(ch); err != nil {
		return err
	}

	lists, err := c.Read(path)
	if err != nil {
		return err
	}

	for _, kind := range list.Kinds {
		if err := store.SetList(ch, kind, *lists.columns()[kind]); err != nil {
			return err
		}
	}
	return nil
}

// Save writes the channel's lists to path.
func (c *Codec) Save(store Store, ch channel.ID, path string) error {
	if c.fs == nil {
		return psuerr.ErrStorageUnavailable
	}

	var lists Lists
	for _, kind := range list.Kinds {
		values, err := store.List(ch, kind)
		if err != nil {
			return err
		}
		*lists.columns()[kind] = values
	}

	return c.Write(path, lists)
}
