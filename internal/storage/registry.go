// Package storage implements the chunked object storage engine: object
// metadata cataloging, bounded chunk storage, ownership/visibility
// enforcement, and per-owner byte accounting.
package storage

import (
	"time"

	"github.com/google/uuid"
)

// Tag is a single key/value annotation on an object. Tags keep their
// declared order, so they are carried as a slice rather than a map.
type Tag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ObjectRecord contains object metadata. The declared size is fixed at
// creation and never mutated; records are never updated in place.
type ObjectRecord struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"` // Declared total size in bytes
	Owner       string    `json:"owner"`
	Public      bool      `json:"public"`
	Tags        []Tag     `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ExpectedChunkCount returns the number of chunks an object of this
// declared size occupies: ceil(size / maxChunkSize), minimum 1 so that
// zero-length objects still have a single (empty) chunk slot.
func (r *ObjectRecord) ExpectedChunkCount(maxChunkSize int64) int {
	if r.Size <= 0 {
		return 1
	}
	count := (r.Size + maxChunkSize - 1) / maxChunkSize
	if count < 1 {
		count = 1
	}
	return int(count)
}

// OwnerEntry is one owner index row: the object ids an owner created, in
// creation order.
type OwnerEntry struct {
	Owner     string   `json:"owner"`
	ObjectIDs []string `json:"object_ids"`
}

// ObjectRegistry catalogs object metadata and the per-owner creation
// index. It performs no locking of its own; the Engine serializes all
// access to it.
type ObjectRegistry struct {
	maxObjectSize int64
	objects       map[string]*ObjectRecord
	order         []string            // all object ids in creation order
	ownerIndex    map[string][]string // owner -> object ids, creation order
	owners        []string            // owners in first-seen order
}

// NewObjectRegistry creates an empty registry with the given maximum
// declared object size.
func NewObjectRegistry(maxObjectSize int64) *ObjectRegistry {
	return &ObjectRegistry{
		maxObjectSize: maxObjectSize,
		objects:       make(map[string]*ObjectRecord),
		ownerIndex:    make(map[string][]string),
	}
}

// Create allocates a fresh object id, records metadata with the current
// time, and appends the id to the owner's index. Returns
// ErrSizeLimitExceeded when the declared size is negative or over the
// configured ceiling; no partial metadata is persisted on failure.
//
// Ids are random UUIDs rather than any composition of name, owner, and
// timestamp, so two creates with identical inputs in the same instant
// can never collide.
func (r *ObjectRegistry) Create(owner, name, contentType string, size int64, public bool, tags []Tag) (*ObjectRecord, error) {
	if size < 0 || size > r.maxObjectSize {
		return nil, ErrSizeLimitExceeded
	}

	rec := &ObjectRecord{
		ID:          uuid.New().String(),
		Name:        name,
		ContentType: contentType,
		Size:        size,
		Owner:       owner,
		Public:      public,
		Tags:        append([]Tag(nil), tags...),
		CreatedAt:   time.Now().UTC(),
	}

	r.objects[rec.ID] = rec
	r.order = append(r.order, rec.ID)
	if _, seen := r.ownerIndex[owner]; !seen {
		r.owners = append(r.owners, owner)
	}
	r.ownerIndex[owner] = append(r.ownerIndex[owner], rec.ID)

	return rec, nil
}

// Get returns the record for an id, or ErrNotFound.
func (r *ObjectRegistry) Get(id string) (*ObjectRecord, error) {
	rec, ok := r.objects[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec, nil
}

// ListByOwner returns the owner's objects in creation order.
func (r *ObjectRegistry) ListByOwner(owner string) []ObjectRecord {
	ids := r.ownerIndex[owner]
	records := make([]ObjectRecord, 0, len(ids))
	for _, id := range ids {
		if rec, ok := r.objects[id]; ok {
			records = append(records, *rec)
		}
	}
	return records
}

// ListPublic returns all public objects in creation order.
func (r *ObjectRegistry) ListPublic() []ObjectRecord {
	var records []ObjectRecord
	for _, id := range r.order {
		if rec, ok := r.objects[id]; ok && rec.Public {
			records = append(records, *rec)
		}
	}
	return records
}

// ListByContentType returns public objects with the given content type,
// in creation order. Private objects are never exposed through
// content-type listing regardless of caller.
func (r *ObjectRegistry) ListByContentType(contentType string) []ObjectRecord {
	var records []ObjectRecord
	for _, id := range r.order {
		if rec, ok := r.objects[id]; ok && rec.Public && rec.ContentType == contentType {
			records = append(records, *rec)
		}
	}
	return records
}

// Remove deletes the metadata record only. The orchestrating delete is
// responsible for chunks, the owner index, and quota.
func (r *ObjectRegistry) Remove(id string) {
	delete(r.objects, id)
	r.order = removeID(r.order, id)
}

// PruneOwnerIndex removes an object id from its owner's index entry.
func (r *ObjectRegistry) PruneOwnerIndex(owner, id string) {
	ids := removeID(r.ownerIndex[owner], id)
	if len(ids) == 0 {
		delete(r.ownerIndex, owner)
		r.owners = removeID(r.owners, owner)
		return
	}
	r.ownerIndex[owner] = ids
}

// Count returns the number of live records.
func (r *ObjectRegistry) Count() int {
	return len(r.objects)
}

// TotalDeclared returns the sum of declared sizes across all live
// records. This is the declared aggregate, not measured chunk bytes.
func (r *ObjectRegistry) TotalDeclared() int64 {
	var total int64
	for _, rec := range r.objects {
		total += rec.Size
	}
	return total
}

// SnapshotObjects returns all records in creation order.
func (r *ObjectRegistry) SnapshotObjects() []ObjectRecord {
	records := make([]ObjectRecord, 0, len(r.order))
	for _, id := range r.order {
		if rec, ok := r.objects[id]; ok {
			records = append(records, *rec)
		}
	}
	return records
}

// SnapshotOwnerIndex returns the owner index rows in first-seen owner
// order, each row's ids in creation order.
func (r *ObjectRegistry) SnapshotOwnerIndex() []OwnerEntry {
	entries := make([]OwnerEntry, 0, len(r.owners))
	for _, owner := range r.owners {
		entries = append(entries, OwnerEntry{
			Owner:     owner,
			ObjectIDs: append([]string(nil), r.ownerIndex[owner]...),
		})
	}
	return entries
}

// Restore replaces all registry state with the given tables. The record
// sequence order becomes the creation order.
func (r *ObjectRegistry) Restore(records []ObjectRecord, ownerIndex []OwnerEntry) {
	r.objects = make(map[string]*ObjectRecord, len(records))
	r.order = make([]string, 0, len(records))
	for i := range records {
		rec := records[i]
		r.objects[rec.ID] = &rec
		r.order = append(r.order, rec.ID)
	}

	r.ownerIndex = make(map[string][]string, len(ownerIndex))
	r.owners = make([]string, 0, len(ownerIndex))
	for _, entry := range ownerIndex {
		r.owners = append(r.owners, entry.Owner)
		r.ownerIndex[entry.Owner] = append([]string(nil), entry.ObjectIDs...)
	}
}

func removeID(ids []string, id string) []string {
	for i, candidate := range ids {
		if candidate == id {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return ids
}
