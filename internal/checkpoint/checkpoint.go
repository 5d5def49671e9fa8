// Package checkpoint exports and imports the storage engine's state
// tables around a restart boundary.
package checkpoint

import (
	"github.com/chunkvault/chunkvault/internal/storage"
)

// Snapshot is the full durable state of the engine: four independent
// ordered table sequences, written and read as a group.
type Snapshot struct {
	Objects    []storage.ObjectRecord `json:"objects"`
	Chunks     []storage.ChunkEntry   `json:"chunks"`
	OwnerIndex []storage.OwnerEntry   `json:"owner_index"`
	Quota      []storage.QuotaEntry   `json:"quota"`
}

// Export snapshots every engine table. The snapshot shares nothing with
// live state, so it stays valid however the engine is mutated afterward.
func Export(e *storage.Engine) *Snapshot {
	objects, chunks, owners, quotas := e.ExportTables()
	return &Snapshot{
		Objects:    objects,
		Chunks:     chunks,
		OwnerIndex: owners,
		Quota:      quotas,
	}
}

// Import rebuilds every engine table from the snapshot. Prior state is
// fully replaced, never merged, and importing the same snapshot twice
// yields identical table contents. A nil table sequence (absent on
// first boot) restores that table empty.
func Import(e *storage.Engine, s *Snapshot) {
	e.ImportTables(s.Objects, s.Chunks, s.OwnerIndex, s.Quota)
}
