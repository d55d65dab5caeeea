package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// BlobStore keeps raw capture bodies on the local filesystem, one file per
// blob key, fanned out by key prefix so a large corpus does not pile every
// file into one directory.
type BlobStore struct {
	root string
}

// NewBlobStore creates the root directory if needed.
func NewBlobStore(root string) (*BlobStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root %s: %w", root, err)
	}
	return &BlobStore{root: root}, nil
}

func (b *BlobStore) path(key string) string {
	if len(key) < 2 {
		return filepath.Join(b.root, key)
	}
	return filepath.Join(b.root, key[:2], key)
}

// Put writes a blob. Writes go through a temp file and a rename so a
// crashed write never leaves a truncated blob under the final key.
func (b *BlobStore) Put(key string, body []byte) error {
	path := b.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create blob dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create blob temp file: %w", err)
	}
	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write blob %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close blob %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("finalize blob %s: %w", key, err)
	}
	return nil
}

// Get reads a blob by key.
func (b *BlobStore) Get(key string) ([]byte, error) {
	body, err := os.ReadFile(b.path(key))
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", key, err)
	}
	return body, nil
}
