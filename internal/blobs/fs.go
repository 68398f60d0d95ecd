package blobs

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/ncdash/internal/apperr"
	"github.com/starford/ncdash/internal/models"
)

const tmpPrefix = ".ncdash-tmp-"

// FS implements Provider backed by a flat directory of files named by id.
type FS struct {
	root string // absolute path to blob directory
}

// NewFS creates a new FS provider rooted at the given directory, creating it
// when missing.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("blobs: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("blobs: mkdir root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("blobs: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("blobs: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute blob directory.
func (f *FS) Root() string {
	return f.root
}

// Sum returns the hex-encoded SHA-256 digest of data, which is its blob id.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// ValidID reports whether id is a well-formed blob id.
func ValidID(id string) bool {
	if len(id) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(id)
	return err == nil && strings.ToLower(id) == id
}

// IDFromPath returns the blob id for a file path inside the blob directory.
func IDFromPath(p string) (string, bool) {
	id := filepath.Base(p)
	return id, ValidID(id)
}

func (f *FS) path(id string) (string, error) {
	if !ValidID(id) {
		return "", fmt.Errorf("blobs: invalid id %q: %w", id, apperr.ErrInvalidRequest)
	}
	return filepath.Join(f.root, id), nil
}

// Put atomically writes data: tmp file → fsync → rename. Existing blobs are
// not rewritten.
func (f *FS) Put(data []byte) (string, error) {
	id := Sum(data)
	abs, err := f.path(id)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(abs); err == nil {
		return id, nil
	}

	tmp, err := os.CreateTemp(f.root, tmpPrefix+"*")
	if err != nil {
		return "", fmt.Errorf("blobs: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return "", fmt.Errorf("blobs: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return "", fmt.Errorf("blobs: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("blobs: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return "", fmt.Errorf("blobs: rename: %w", err)
	}
	success = true
	return id, nil
}

// Get returns the bytes of a blob. Missing blobs report apperr.ErrImageNotFound.
func (f *FS) Get(id string) ([]byte, error) {
	abs, err := f.path(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("blobs: read %s: %w", id, apperr.ErrImageNotFound)
		}
		return nil, fmt.Errorf("blobs: read %s: %w", id, err)
	}
	return data, nil
}

// Has reports whether the blob exists on disk.
func (f *FS) Has(id string) bool {
	abs, err := f.path(id)
	if err != nil {
		return false
	}
	_, err = os.Stat(abs)
	return err == nil
}

// Delete removes a blob.
func (f *FS) Delete(id string) error {
	abs, err := f.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("blobs: delete %s: %w", id, apperr.ErrImageNotFound)
		}
		return fmt.Errorf("blobs: delete %s: %w", id, err)
	}
	return nil
}

// List returns metadata for every blob, skipping temp files and strays.
func (f *FS) List() ([]models.BlobMetadata, error) {
	var out []models.BlobMetadata
	err := filepath.WalkDir(f.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if p != f.root {
				return filepath.SkipDir
			}
			return nil
		}
		id, ok := IDFromPath(p)
		if !ok {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		out = append(out, models.BlobMetadata{ID: id, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("blobs: list: %w", err)
	}
	return out, nil
}
