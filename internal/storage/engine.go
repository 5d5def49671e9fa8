package storage

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// Limits holds the externally tunable size ceilings.
type Limits struct {
	MaxObjectSize int64
	MaxChunkSize  int64
}

// Engine is the chunked object storage engine. It owns the four state
// tables (object records, chunks, owner index, quota) and is the only
// mutation path to them. A single RWMutex covers all tables so every
// public operation is atomic relative to the others: no operation ever
// observes another operation's partial effects. Checkpoint export and
// import take the same lock, so they are safe to call even when the
// host cannot guarantee quiescence.
type Engine struct {
	limits   Limits
	registry *ObjectRegistry
	chunks   *ChunkStore
	access   AccessController
	quota    *QuotaTracker
	mu       sync.RWMutex
}

// NewEngine creates an empty engine with the given limits.
func NewEngine(limits Limits) *Engine {
	return &Engine{
		limits:   limits,
		registry: NewObjectRegistry(limits.MaxObjectSize),
		chunks:   NewChunkStore(limits.MaxChunkSize),
		quota:    NewQuotaTracker(),
	}
}

// Limits returns the engine's configured size ceilings.
func (e *Engine) Limits() Limits {
	return e.limits
}

// CreateObject allocates a new object record and returns its id.
// Fails with ErrSizeLimitExceeded when the declared size is over the
// maximum object size; nothing is persisted on failure.
func (e *Engine) CreateObject(owner, name, contentType string, size int64, public bool, tags []Tag) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, err := e.registry.Create(owner, name, contentType, size, public, tags)
	e.record("create_object", err)
	if err != nil {
		log.Debug().Str("owner", owner).Str("name", name).Int64("size", size).
			Err(err).Msg("Object create rejected")
		return "", err
	}

	log.Debug().Str("object", rec.ID).Str("owner", owner).Str("name", name).
		Int64("size", size).Bool("public", public).Msg("Object created")
	e.updateGauges()
	return rec.ID, nil
}

// UploadChunk stores one chunk of an object. Chunks may arrive in any
// order and re-uploads at the same index overwrite idempotently. The
// index is not checked against the expected chunk count at write time;
// reads are strict instead. Quota is adjusted by the committed delta.
func (e *Engine) UploadChunk(caller, objectID string, index int, data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.uploadChunk(caller, objectID, index, data)
	e.record("upload_chunk", err)
	return err
}

func (e *Engine) uploadChunk(caller, objectID string, index int, data []byte) error {
	rec, err := e.registry.Get(objectID)
	if err != nil {
		return err
	}
	if err := e.access.AuthorizeWrite(caller, rec); err != nil {
		return err
	}

	delta, err := e.chunks.Put(objectID, index, data)
	if err != nil {
		log.Debug().Str("object", objectID).Int("index", index).Int("bytes", len(data)).
			Err(err).Msg("Chunk rejected")
		return err
	}
	e.quota.Allocate(rec.Owner, delta)

	if m := GetMetrics(); m != nil {
		m.RecordUpload(int64(len(data)))
	}
	log.Debug().Str("object", objectID).Int("index", index).Int("bytes", len(data)).
		Msg("Chunk stored")
	e.updateGauges()
	return nil
}

// ReadObject reconstructs the full object by concatenating its chunks in
// index order. caller may be empty for anonymous access to public
// objects. Fails with a MissingChunkError carrying the lowest absent
// index when the object is not readable-complete; no partial bytes are
// returned.
func (e *Engine) ReadObject(caller, objectID string) ([]byte, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	data, err := e.readObject(caller, objectID)
	e.record("read_object", err)
	return data, err
}

func (e *Engine) readObject(caller, objectID string) ([]byte, error) {
	rec, err := e.registry.Get(objectID)
	if err != nil {
		return nil, err
	}
	if err := e.access.AuthorizeRead(caller, rec); err != nil {
		return nil, err
	}

	data, err := e.chunks.Reconstruct(objectID, rec.ExpectedChunkCount(e.limits.MaxChunkSize))
	if err != nil {
		return nil, err
	}

	if m := GetMetrics(); m != nil {
		m.RecordDownload(int64(len(data)))
	}
	return data, nil
}

// DeleteObject removes an object and everything associated with it:
// all written chunks (including orphans beyond the declared range), the
// owner index entry, the quota charge, and finally the metadata record.
// Metadata removal is deliberately last so an interrupted delete leaves
// the object still visible and re-deletable rather than vanished with
// dangling chunks.
func (e *Engine) DeleteObject(caller, objectID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.deleteObject(caller, objectID)
	e.record("delete_object", err)
	return err
}

func (e *Engine) deleteObject(caller, objectID string) error {
	rec, err := e.registry.Get(objectID)
	if err != nil {
		return err
	}
	if err := e.access.AuthorizeWrite(caller, rec); err != nil {
		return err
	}

	released := e.chunks.RemoveObject(objectID)
	e.registry.PruneOwnerIndex(rec.Owner, objectID)
	e.quota.Release(rec.Owner, released)
	e.registry.Remove(objectID)

	log.Debug().Str("object", objectID).Str("owner", rec.Owner).
		Int64("released", released).Msg("Object deleted")
	e.updateGauges()
	return nil
}

// GetObjectInfo returns the metadata record for an id, or false if the
// id is unknown.
func (e *Engine) GetObjectInfo(objectID string) (*ObjectRecord, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	rec, err := e.registry.Get(objectID)
	if err != nil {
		return nil, false
	}
	copied := *rec
	return &copied, true
}

// ListOwnerObjects returns the owner's objects in creation order.
func (e *Engine) ListOwnerObjects(owner string) []ObjectRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.registry.ListByOwner(owner)
}

// ListPublicObjects returns all public objects in creation order.
func (e *Engine) ListPublicObjects() []ObjectRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.registry.ListPublic()
}

// ListByContentType returns public objects with the given content type.
func (e *Engine) ListByContentType(contentType string) []ObjectRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.registry.ListByContentType(contentType)
}

// TotalStorageUsed returns the sum of declared sizes across all live
// objects. This is the declared aggregate, not measured chunk bytes;
// see OwnerStorageUsed for committed-byte accounting.
func (e *Engine) TotalStorageUsed() int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.registry.TotalDeclared()
}

// OwnerStorageUsed returns the chunk bytes actually committed by an
// owner, 0 if the owner has stored nothing.
func (e *Engine) OwnerStorageUsed(owner string) int64 {
	return e.quota.OwnerUsedBytes(owner)
}

// ExportTables snapshots all four state tables under the engine lock.
// The returned slices share nothing with live state.
func (e *Engine) ExportTables() (objects []ObjectRecord, chunks []ChunkEntry, owners []OwnerEntry, quotas []QuotaEntry) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.registry.SnapshotObjects(),
		e.chunks.Snapshot(),
		e.registry.SnapshotOwnerIndex(),
		e.quota.Snapshot()
}

// ImportTables replaces all four state tables with the given sequences.
// Prior in-memory state is fully discarded, never merged; importing the
// same tables twice yields identical state. Nil table sequences restore
// empty tables (first boot).
func (e *Engine) ImportTables(objects []ObjectRecord, chunks []ChunkEntry, owners []OwnerEntry, quotas []QuotaEntry) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.registry.Restore(objects, owners)
	e.chunks.Restore(chunks)
	e.quota.Restore(quotas)

	log.Info().Int("objects", len(objects)).Int("chunks", len(chunks)).
		Int("owners", len(owners)).Msg("State tables imported")
	e.updateGauges()
}

// updateGauges refreshes the storage gauges. Caller must hold the lock.
func (e *Engine) updateGauges() {
	if m := GetMetrics(); m != nil {
		m.UpdateStorageMetrics(e.registry.Count(), e.chunks.Count(), e.quota.UsedBytes())
	}
}

// record counts an operation outcome if metrics are initialized.
func (e *Engine) record(operation string, err error) {
	m := GetMetrics()
	if m == nil {
		return
	}
	m.RecordOperation(operation, operationStatus(err))
}

// operationStatus maps an operation error to a metric status label.
func operationStatus(err error) string {
	var missing *MissingChunkError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrAuthenticationRequired):
		return "auth_required"
	case errors.Is(err, ErrSizeLimitExceeded):
		return "size_limit"
	case errors.Is(err, ErrChunkSizeExceeded):
		return "chunk_size"
	case errors.As(err, &missing):
		return "missing_chunk"
	default:
		return "error"
	}
}
