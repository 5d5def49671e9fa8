package storage

// The collaborators that sit around the engine (asset gateways, ledgers,
// registries, directories) consume the engine only through the narrow
// contracts below. Their implementations live outside this module; the
// engine neither knows nor calls them.

// ObjectReader serves object content and metadata. caller may be empty
// for anonymous reads of public objects.
type ObjectReader interface {
	ReadObject(caller, objectID string) ([]byte, error)
	GetObjectInfo(objectID string) (*ObjectRecord, bool)
}

// ObjectLister serves the catalog views.
type ObjectLister interface {
	ListOwnerObjects(owner string) []ObjectRecord
	ListPublicObjects() []ObjectRecord
	ListByContentType(contentType string) []ObjectRecord
}

// ObjectWriter accepts object mutations on behalf of a verified caller.
type ObjectWriter interface {
	CreateObject(owner, name, contentType string, size int64, public bool, tags []Tag) (string, error)
	UploadChunk(caller, objectID string, index int, data []byte) error
	DeleteObject(caller, objectID string) error
}

// UsageReporter serves storage accounting.
type UsageReporter interface {
	TotalStorageUsed() int64
	OwnerStorageUsed(owner string) int64
}

var (
	_ ObjectReader  = (*Engine)(nil)
	_ ObjectLister  = (*Engine)(nil)
	_ ObjectWriter  = (*Engine)(nil)
	_ UsageReporter = (*Engine)(nil)
)
