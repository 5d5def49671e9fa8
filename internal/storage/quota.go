package storage

import (
	"sort"
	"sync"
)

// QuotaEntry is one quota table row for checkpointing.
type QuotaEntry struct {
	Owner string `json:"owner"`
	Bytes int64  `json:"bytes"`
}

// QuotaTracker tracks per-owner committed chunk bytes. Usage is
// incremented when a chunk commit succeeds, adjusted by the delta when a
// chunk is re-uploaded, and released when an object is deleted. It
// measures bytes actually stored, which can differ from declared object
// sizes when uploads are partial or final chunks run short.
type QuotaTracker struct {
	usedBytes int64
	perOwner  map[string]int64
	mu        sync.RWMutex
}

// NewQuotaTracker creates an empty quota tracker.
func NewQuotaTracker() *QuotaTracker {
	return &QuotaTracker{
		perOwner: make(map[string]int64),
	}
}

// UsedBytes returns the total committed bytes across all owners.
func (qt *QuotaTracker) UsedBytes() int64 {
	qt.mu.RLock()
	defer qt.mu.RUnlock()
	return qt.usedBytes
}

// OwnerUsedBytes returns the committed bytes for an owner, 0 if absent.
func (qt *QuotaTracker) OwnerUsedBytes(owner string) int64 {
	qt.mu.RLock()
	defer qt.mu.RUnlock()
	return qt.perOwner[owner]
}

// Allocate records committed bytes for an owner. A negative delta
// records shrinkage from a chunk re-upload.
func (qt *QuotaTracker) Allocate(owner string, bytes int64) {
	qt.mu.Lock()
	defer qt.mu.Unlock()

	qt.usedBytes += bytes
	if qt.usedBytes < 0 {
		qt.usedBytes = 0
	}

	qt.perOwner[owner] += bytes
	if qt.perOwner[owner] <= 0 {
		delete(qt.perOwner, owner)
	}
}

// Release records deallocation for an owner.
func (qt *QuotaTracker) Release(owner string, bytes int64) {
	qt.Allocate(owner, -bytes)
}

// Reset clears all quota tracking.
func (qt *QuotaTracker) Reset() {
	qt.mu.Lock()
	defer qt.mu.Unlock()
	qt.usedBytes = 0
	qt.perOwner = make(map[string]int64)
}

// Snapshot returns the quota rows ordered by owner.
func (qt *QuotaTracker) Snapshot() []QuotaEntry {
	qt.mu.RLock()
	defer qt.mu.RUnlock()

	entries := make([]QuotaEntry, 0, len(qt.perOwner))
	for owner, bytes := range qt.perOwner {
		entries = append(entries, QuotaEntry{Owner: owner, Bytes: bytes})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Owner < entries[j].Owner
	})
	return entries
}

// Restore replaces all quota state with the given rows.
func (qt *QuotaTracker) Restore(entries []QuotaEntry) {
	qt.mu.Lock()
	defer qt.mu.Unlock()

	qt.usedBytes = 0
	qt.perOwner = make(map[string]int64, len(entries))
	for _, entry := range entries {
		if entry.Bytes <= 0 {
			continue
		}
		qt.perOwner[entry.Owner] = entry.Bytes
		qt.usedBytes += entry.Bytes
	}
}
