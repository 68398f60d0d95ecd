// Package blobs stores generated image bytes under their SHA-256 digest.
package blobs

import "github.com/starford/ncdash/internal/models"

// Provider is the interface for image blob operations.
type Provider interface {
	// Put stores data and returns its content id. Storing identical bytes
	// twice yields the same id and a single blob.
	Put(data []byte) (string, error)
	// Get returns the bytes stored under id.
	Get(id string) ([]byte, error)
	// Has reports whether a blob with id exists.
	Has(id string) bool
	// Delete removes the blob stored under id.
	Delete(id string) error
	// List returns metadata for every stored blob.
	List() ([]models.BlobMetadata, error)
}
