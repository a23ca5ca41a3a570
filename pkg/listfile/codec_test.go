package listfile

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eez-psu/psu-go/pkg/list"
	"github.com/eez-psu/psu-go/pkg/psuerr"
)

func newTestCodec(t *testing.T, fs afero.Fs) *Codec {
	t.Helper()
	c, err := NewCodec(fs, DefaultFormat())
	require.NoError(t, err)
	return c
}

func newTestStore(t *testing.T) *list.Store {
	t.Helper()
	s, err := list.NewStore(2)
	require.NoError(t, err)
	return s
}

func TestCodecSaveLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	c := newTestCodec(t, fs)
	store := newTestStore(t)

	require.NoError(t, store.SetList(1, list.KindDwell, []float64{0.01}))
	require.NoError(t, store.SetList(1, list.KindVoltage, []float64{1, 2, 3}))
	require.NoError(t, store.SetList(1, list.KindCurrent, []float64{0.5, 0.6, 0.7}))

	require.NoError(t, c.Save(store, 1, "/lists/ch1/ramp.list"))

	data, err := afero.ReadFile(fs, "/lists/ch1/ramp.list")
	require.NoError(t, err)
	assert.Equal(t, "0.010000,1.000000,0.500000\n=,2.000000,0.600000\n=,3.000000,0.700000\n", string(data))

	require.NoError(t, c.Load(store, 2, "/lists/ch1/ramp.list"))
	v, _ := store.List(2, list.KindVoltage)
	assert.Equal(t, []float64{1, 2, 3}, v)
	d, _ := store.List(2, list.KindDwell)
	assert.Equal(t, []float64{0.01}, d)

	dirty, _ := store.IsDirty(2)
	assert.True(t, dirty)
}

func TestCodecSaveReplacesExisting(t *testing.T) {
	fs := afero.NewMemMapFs()
	c := newTestCodec(t, fs)
	store := newTestStore(t)

	require.NoError(t, afero.WriteFile(fs, "a.list", []byte("a much longer previous content\n\n\n"), 0644))
	require.NoError(t, store.SetList(1, list.KindVoltage, []float64{5}))
	require.NoError(t, c.Save(store, 1, "a.list"))

	data, err := afero.ReadFile(fs, "a.list")
	require.NoError(t, err)
	assert.Equal(t, "=,5.000000,=\n", string(data))
}

func TestCodecLoadIsAllOrNothing(t *testing.T) {
	fs := afero.NewMemMapFs()
	c := newTestCodec(t, fs)
	store := newTestStore(t)

	require.NoError(t, store.SetList(1, list.KindVoltage, []float64{9}))
	require.NoError(t, store.ClearDirty(1))

	// The first rows are fine; the third is out of order.
	require.NoError(t, afero.WriteFile(fs, "bad.list", []byte("1,1,1\n2,=,2\n3,3,3\n"), 0644))

	err := c.Load(store, 1, "bad.list")
	assert.ErrorIs(t, err, psuerr.ErrMalformedListFile)
	assert.Equal(t, psuerr.CodeExecutionError, psuerr.CodeOf(err))

	v, _ := store.List(1, list.KindVoltage)
	assert.Equal(t, []float64{9}, v)
	assert.Equal(t, list.Lengths{Voltage: 1}, store.Lengths(1))
	dirty, _ := store.IsDirty(1)
	assert.False(t, dirty)
}

func TestCodecErrors(t *testing.T) {
	store := newTestStore(t)

	t.Run("NotInstalled", func(t *testing.T) {
		c := newTestCodec(t, nil)
		assert.False(t, c.Installed())

		err := c.Load(store, 1, "x.list")
		assert.ErrorIs(t, err, psuerr.ErrStorageUnavailable)
		assert.Equal(t, psuerr.CodeOptionNotInstalled, psuerr.CodeOf(err))

		err = c.Save(store, 1, "x.list")
		assert.ErrorIs(t, err, psuerr.ErrStorageUnavailable)
	})

	t.Run("NotFound", func(t *testing.T) {
		c := newTestCodec(t, afero.NewMemMapFs())
		err := c.Load(store, 1, "missing.list")
		assert.ErrorIs(t, err, psuerr.ErrStorageIO)
		assert.Equal(t, psuerr.CodeExecutionError, psuerr.CodeOf(err))
	})

	t.Run("ReadOnly", func(t *testing.T) {
		c := newTestCodec(t, afero.NewReadOnlyFs(afero.NewMemMapFs()))
		err := c.Save(store, 1, "dir/x.list")
		assert.ErrorIs(t, err, psuerr.ErrStorageIO)
	})

	t.Run("InvalidChannel", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "ok.list", []byte("1,1,1\n"), 0644))
		c := newTestCodec(t, fs)

		assert.ErrorIs(t, c.Load(store, 5, "ok.list"), psuerr.ErrInvalidChannel)
		assert.ErrorIs(t, c.Save(store, 5, "ok.list"), psuerr.ErrInvalidChannel)
	})

	t.Run("InvalidFormat", func(t *testing.T) {
		_, err := NewCodec(afero.NewMemMapFs(), Format{Separator: ',', NoValue: ','})
		assert.ErrorIs(t, err, ErrInvalidFormat)
	})
}

func TestCodecOnOsFs(t *testing.T) {
	fs := afero.NewBasePathFs(afero.NewOsFs(), t.TempDir())
	c := newTestCodec(t, fs)

	in := Lists{Dwell: []float64{0.1, 0.2}, Voltage: []float64{3}, Current: []float64{1, 2}}
	require.NoError(t, c.Write("/nested/dir/a.list", in))

	out, err := c.Read("/nested/dir/a.list")
	require.NoError(t, err)
	assertLists(t, in, out)
}
