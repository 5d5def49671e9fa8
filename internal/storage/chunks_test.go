package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkStorePutGet(t *testing.T) {
	cs := NewChunkStore(100)

	delta, err := cs.Put("obj-1", 0, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), delta)

	data, ok := cs.Get("obj-1", 0)
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), data)

	_, ok = cs.Get("obj-1", 1)
	assert.False(t, ok)
	_, ok = cs.Get("obj-2", 0)
	assert.False(t, ok)
}

func TestChunkStorePutCopiesData(t *testing.T) {
	cs := NewChunkStore(100)

	buf := []byte("hello")
	_, err := cs.Put("obj-1", 0, buf)
	require.NoError(t, err)

	// Mutating the caller's buffer must not reach the store.
	buf[0] = 'X'
	data, _ := cs.Get("obj-1", 0)
	assert.Equal(t, []byte("hello"), data)
}

func TestChunkStorePutTooLarge(t *testing.T) {
	cs := NewChunkStore(10)

	_, err := cs.Put("obj-1", 0, make([]byte, 11))
	assert.ErrorIs(t, err, ErrChunkSizeExceeded)

	// Not mutated
	_, ok := cs.Get("obj-1", 0)
	assert.False(t, ok)
	assert.Equal(t, 0, cs.Count())
}

func TestChunkStorePutNegativeIndex(t *testing.T) {
	cs := NewChunkStore(10)

	_, err := cs.Put("obj-1", -1, []byte("x"))
	assert.Error(t, err)
}

func TestChunkStoreOverwriteDelta(t *testing.T) {
	cs := NewChunkStore(100)

	delta, err := cs.Put("obj-1", 0, make([]byte, 80))
	require.NoError(t, err)
	assert.Equal(t, int64(80), delta)

	delta, err = cs.Put("obj-1", 0, make([]byte, 30))
	require.NoError(t, err)
	assert.Equal(t, int64(-50), delta)

	assert.Equal(t, int64(30), cs.ObjectBytes("obj-1"))
	assert.Equal(t, 1, cs.Count())
}

func TestChunkStoreReconstruct(t *testing.T) {
	cs := NewChunkStore(100)

	_, err := cs.Put("obj-1", 1, []byte("world"))
	require.NoError(t, err)
	_, err = cs.Put("obj-1", 0, []byte("hello "))
	require.NoError(t, err)

	data, err := cs.Reconstruct("obj-1", 2)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello world"), data)
}

func TestChunkStoreReconstructMissing(t *testing.T) {
	cs := NewChunkStore(100)

	_, err := cs.Put("obj-1", 0, []byte("a"))
	require.NoError(t, err)
	_, err = cs.Put("obj-1", 3, []byte("d"))
	require.NoError(t, err)

	_, err = cs.Reconstruct("obj-1", 4)
	var missing *MissingChunkError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, 1, missing.Index)
}

func TestChunkStoreRemoveObject(t *testing.T) {
	cs := NewChunkStore(100)

	_, err := cs.Put("obj-1", 0, make([]byte, 10))
	require.NoError(t, err)
	_, err = cs.Put("obj-1", 1, make([]byte, 20))
	require.NoError(t, err)
	// Orphan far beyond any declared range
	_, err = cs.Put("obj-1", 9, make([]byte, 30))
	require.NoError(t, err)
	_, err = cs.Put("obj-2", 0, make([]byte, 5))
	require.NoError(t, err)

	released := cs.RemoveObject("obj-1")
	assert.Equal(t, int64(60), released)

	_, ok := cs.Get("obj-1", 0)
	assert.False(t, ok)
	_, ok = cs.Get("obj-1", 9)
	assert.False(t, ok)

	// Other objects untouched
	_, ok = cs.Get("obj-2", 0)
	assert.True(t, ok)
	assert.Equal(t, 1, cs.Count())
}

func TestChunkStoreSnapshotRestore(t *testing.T) {
	cs := NewChunkStore(100)

	_, err := cs.Put("obj-b", 1, []byte("b1"))
	require.NoError(t, err)
	_, err = cs.Put("obj-a", 0, []byte("a0"))
	require.NoError(t, err)
	_, err = cs.Put("obj-b", 0, []byte("b0"))
	require.NoError(t, err)

	entries := cs.Snapshot()
	require.Len(t, entries, 3)
	// Ordered by object id, then index
	assert.Equal(t, "obj-a", entries[0].ObjectID)
	assert.Equal(t, "obj-b", entries[1].ObjectID)
	assert.Equal(t, 0, entries[1].Index)
	assert.Equal(t, "obj-b", entries[2].ObjectID)
	assert.Equal(t, 1, entries[2].Index)

	restored := NewChunkStore(100)
	restored.Restore(entries)

	data, err := restored.Reconstruct("obj-b", 2)
	require.NoError(t, err)
	assert.Equal(t, []byte("b0b1"), data)

	// Restore replaces, never merges.
	restored.Restore(nil)
	assert.Equal(t, 0, restored.Count())
}
