package store_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/viking-sudo-rm/rusty-dawg/store"
)

func TestRAMPushGetSet(t *testing.T) {
	s := store.NewRAM(4)
	i, err := s.Push([]byte{1, 2, 3, 4})
	require.NoError(t, err)
	require.EqualValues(t, 0, i)
	require.Equal(t, []byte{1, 2, 3, 4}, s.Get(i))

	require.NoError(t, s.Set(i, []byte{9, 9, 9, 9}))
	require.Equal(t, []byte{9, 9, 9, 9}, s.Get(i))
	require.Zero(t, s.FillRatio())
}

func TestDiskRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.bin")

	w, err := store.CreateDisk(path, 4, 8, 1)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := w.Push([]byte{byte(i), byte(i), byte(i), byte(i)})
		require.NoError(t, err)
	}
	require.InDelta(t, 5.0/8.0, w.FillRatio(), 1e-9)
	require.NoError(t, w.Flush())
	require.NoError(t, w.Close())

	r, err := store.OpenDisk(path, 4)
	require.NoError(t, err)
	defer r.Close()

	require.EqualValues(t, 5, r.Len())
	require.EqualValues(t, 1, r.Flags())
	for i := 0; i < 5; i++ {
		require.Equal(t, []byte{byte(i), byte(i), byte(i), byte(i)}, r.Get(store.Index(i)))
	}
}

func TestDiskCapacityExceeded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "full.bin")
	w, err := store.CreateDisk(path, 4, 1, 0)
	require.NoError(t, err)
	defer w.Close()

	_, err = w.Push([]byte{0, 0, 0, 0})
	require.NoError(t, err)
	_, err = w.Push([]byte{0, 0, 0, 0})
	require.Error(t, err)
}
