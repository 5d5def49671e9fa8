package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpectedChunkCount(t *testing.T) {
	tests := []struct {
		name         string
		size         int64
		maxChunkSize int64
		want         int
	}{
		{"zero length still has one slot", 0, 1000, 1},
		{"one byte", 1, 1000, 1},
		{"just under one chunk", 999, 1000, 1},
		{"exactly one chunk", 1000, 1000, 1},
		{"one byte over", 1001, 1000, 2},
		{"large object two chunks", 1_500_000, 1_000_000, 2},
		{"exact multiple", 3000, 1000, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &ObjectRecord{Size: tt.size}
			assert.Equal(t, tt.want, rec.ExpectedChunkCount(tt.maxChunkSize))
		})
	}
}

func TestRegistryCreateAndGet(t *testing.T) {
	reg := NewObjectRegistry(1000)

	rec, err := reg.Create("alice", "a.txt", "text/plain", 100, false, nil)
	require.NoError(t, err)

	got, err := reg.Get(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	_, err = reg.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistryCreateAtCeiling(t *testing.T) {
	reg := NewObjectRegistry(1000)

	// Exactly at the ceiling is allowed; one over is not.
	_, err := reg.Create("alice", "ok.bin", "application/octet-stream", 1000, false, nil)
	assert.NoError(t, err)
	_, err = reg.Create("alice", "big.bin", "application/octet-stream", 1001, false, nil)
	assert.ErrorIs(t, err, ErrSizeLimitExceeded)
}

func TestRegistryTagOrderPreserved(t *testing.T) {
	reg := NewObjectRegistry(1000)

	tags := []Tag{{Key: "z", Value: "1"}, {Key: "a", Value: "2"}, {Key: "m", Value: "3"}}
	rec, err := reg.Create("alice", "a.txt", "text/plain", 1, false, tags)
	require.NoError(t, err)
	assert.Equal(t, tags, rec.Tags)
}

func TestRegistryRemoveAndPrune(t *testing.T) {
	reg := NewObjectRegistry(1000)

	rec1, err := reg.Create("alice", "one", "text/plain", 10, true, nil)
	require.NoError(t, err)
	rec2, err := reg.Create("alice", "two", "text/plain", 20, true, nil)
	require.NoError(t, err)

	reg.PruneOwnerIndex("alice", rec1.ID)
	reg.Remove(rec1.ID)

	_, err = reg.Get(rec1.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	owned := reg.ListByOwner("alice")
	require.Len(t, owned, 1)
	assert.Equal(t, rec2.ID, owned[0].ID)

	assert.Equal(t, 1, reg.Count())
	assert.Equal(t, int64(20), reg.TotalDeclared())

	// Removing the last object drops the owner row entirely.
	reg.PruneOwnerIndex("alice", rec2.ID)
	reg.Remove(rec2.ID)
	assert.Empty(t, reg.ListByOwner("alice"))
	assert.Empty(t, reg.SnapshotOwnerIndex())
}

func TestRegistrySnapshotRestore(t *testing.T) {
	reg := NewObjectRegistry(1000)

	recA, err := reg.Create("alice", "a", "text/plain", 10, true, nil)
	require.NoError(t, err)
	recB, err := reg.Create("bob", "b", "image/png", 20, false, nil)
	require.NoError(t, err)
	recC, err := reg.Create("alice", "c", "text/plain", 30, true, nil)
	require.NoError(t, err)

	objects := reg.SnapshotObjects()
	owners := reg.SnapshotOwnerIndex()

	require.Len(t, objects, 3)
	assert.Equal(t, []string{recA.ID, recB.ID, recC.ID},
		[]string{objects[0].ID, objects[1].ID, objects[2].ID})

	require.Len(t, owners, 2)
	assert.Equal(t, "alice", owners[0].Owner)
	assert.Equal(t, []string{recA.ID, recC.ID}, owners[0].ObjectIDs)
	assert.Equal(t, "bob", owners[1].Owner)

	restored := NewObjectRegistry(1000)
	restored.Restore(objects, owners)

	assert.Equal(t, 3, restored.Count())
	assert.Equal(t, int64(60), restored.TotalDeclared())

	listed := restored.ListByOwner("alice")
	require.Len(t, listed, 2)
	assert.Equal(t, recA.ID, listed[0].ID)
	assert.Equal(t, recC.ID, listed[1].ID)

	public := restored.ListPublic()
	require.Len(t, public, 2)

	// Restore replaces prior state entirely.
	restored.Restore(nil, nil)
	assert.Equal(t, 0, restored.Count())
	assert.Empty(t, restored.ListPublic())
}
