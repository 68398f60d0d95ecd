package catalog

// ImageCatalog defines the catalog operations used by the dashboard.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type ImageCatalog interface {
	Upsert(r ImageRow) error
	Lookup(datasetID, variable, key string) (*ImageRow, error)
	List(datasetID, variable string) ([]ImageRow, error)
	Search(query string, limit int) ([]ImageRow, error)
	DeleteByBlob(blobID string) (int64, error)
	AllBlobIDs() (map[string]struct{}, error)
	Close() error
}

// Verify *DB satisfies ImageCatalog at compile time.
var _ ImageCatalog = (*DB)(nil)
