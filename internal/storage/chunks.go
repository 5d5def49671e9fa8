package storage

import (
	"fmt"
	"sort"
)

// chunkKey addresses one chunk by its owning object and position.
type chunkKey struct {
	objectID string
	index    int
}

// ChunkEntry is one chunk table row for checkpointing.
type ChunkEntry struct {
	ObjectID string `json:"object_id"`
	Index    int    `json:"index"`
	Data     []byte `json:"data"`
}

// ChunkStore holds the raw bytes of every uploaded chunk, keyed by
// (object id, chunk index). Writes are tolerant: chunks may arrive out
// of order, be re-uploaded, or land beyond the declared range. Reads
// are strict. The store tracks every index actually written per
// object so deletion purges orphans beyond the declared range instead of
// trusting the expected count.
//
// The store performs no locking of its own; the Engine serializes all
// access to it.
type ChunkStore struct {
	maxChunkSize int64
	chunks       map[chunkKey][]byte
	written      map[string]map[int]bool // object id -> set of written indices
}

// NewChunkStore creates an empty chunk store with the given per-chunk
// byte ceiling.
func NewChunkStore(maxChunkSize int64) *ChunkStore {
	return &ChunkStore{
		maxChunkSize: maxChunkSize,
		chunks:       make(map[chunkKey][]byte),
		written:      make(map[string]map[int]bool),
	}
}

// Put stores a chunk, overwriting any existing chunk at the same key.
// It returns the change in stored bytes (negative when a re-upload
// shrinks the chunk) so the caller can adjust quota accounting. The
// store is not mutated on failure.
func (cs *ChunkStore) Put(objectID string, index int, data []byte) (delta int64, err error) {
	if index < 0 {
		return 0, fmt.Errorf("chunk index %d out of range", index)
	}
	if int64(len(data)) > cs.maxChunkSize {
		return 0, ErrChunkSizeExceeded
	}

	key := chunkKey{objectID: objectID, index: index}
	old := int64(len(cs.chunks[key]))

	cs.chunks[key] = append([]byte(nil), data...)
	if cs.written[objectID] == nil {
		cs.written[objectID] = make(map[int]bool)
	}
	cs.written[objectID][index] = true

	return int64(len(data)) - old, nil
}

// Get returns the chunk at (objectID, index), or false if absent.
func (cs *ChunkStore) Get(objectID string, index int) ([]byte, bool) {
	data, ok := cs.chunks[chunkKey{objectID: objectID, index: index}]
	return data, ok
}

// Reconstruct concatenates chunks 0..expectedCount-1 in index order. It
// fails with a MissingChunkError carrying the lowest absent index; no
// partial result is returned. The concatenated length is not checked
// against the declared object size; the true byte count of the final
// chunk is caller-determined.
func (cs *ChunkStore) Reconstruct(objectID string, expectedCount int) ([]byte, error) {
	var total int64
	for i := 0; i < expectedCount; i++ {
		data, ok := cs.chunks[chunkKey{objectID: objectID, index: i}]
		if !ok {
			return nil, &MissingChunkError{Index: i}
		}
		total += int64(len(data))
	}

	buf := make([]byte, 0, total)
	for i := 0; i < expectedCount; i++ {
		buf = append(buf, cs.chunks[chunkKey{objectID: objectID, index: i}]...)
	}
	return buf, nil
}

// RemoveObject deletes every chunk written for an object, including any
// beyond the declared range, and returns the number of bytes released.
func (cs *ChunkStore) RemoveObject(objectID string) (released int64) {
	for index := range cs.written[objectID] {
		key := chunkKey{objectID: objectID, index: index}
		released += int64(len(cs.chunks[key]))
		delete(cs.chunks, key)
	}
	delete(cs.written, objectID)
	return released
}

// ObjectBytes returns the bytes currently stored for an object.
func (cs *ChunkStore) ObjectBytes(objectID string) int64 {
	var total int64
	for index := range cs.written[objectID] {
		total += int64(len(cs.chunks[chunkKey{objectID: objectID, index: index}]))
	}
	return total
}

// Count returns the number of stored chunks.
func (cs *ChunkStore) Count() int {
	return len(cs.chunks)
}

// Snapshot returns all chunk rows ordered by object id then index.
func (cs *ChunkStore) Snapshot() []ChunkEntry {
	entries := make([]ChunkEntry, 0, len(cs.chunks))
	for key, data := range cs.chunks {
		entries = append(entries, ChunkEntry{
			ObjectID: key.objectID,
			Index:    key.index,
			Data:     append([]byte(nil), data...),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].ObjectID != entries[j].ObjectID {
			return entries[i].ObjectID < entries[j].ObjectID
		}
		return entries[i].Index < entries[j].Index
	})
	return entries
}

// Restore replaces all chunk state with the given rows.
func (cs *ChunkStore) Restore(entries []ChunkEntry) {
	cs.chunks = make(map[chunkKey][]byte, len(entries))
	cs.written = make(map[string]map[int]bool)
	for _, entry := range entries {
		key := chunkKey{objectID: entry.ObjectID, index: entry.Index}
		cs.chunks[key] = append([]byte(nil), entry.Data...)
		if cs.written[entry.ObjectID] == nil {
			cs.written[entry.ObjectID] = make(map[int]bool)
		}
		cs.written[entry.ObjectID][entry.Index] = true
	}
}
