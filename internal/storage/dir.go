package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DirStore is a filesystem-backed store for runs without an object-store
// deployment. Put returns the absolute path of the written file.
type DirStore struct {
	root string
}

// NewDirStore creates the backing directory if needed.
func NewDirStore(root string) (*DirStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve store root %s: %w", root, err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store root %s: %w", abs, err)
	}
	return &DirStore{root: abs}, nil
}

// Put writes the object to <root>/<sanitized key>. The content type is
// ignored; the key's extension carries that information on disk.
func (s *DirStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	path := filepath.Join(s.root, SanitizeKey(key))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write object %s: %w", path, err)
	}
	return path, nil
}

// Get reads an object. A missing key is not an error and returns nil.
func (s *DirStore) Get(_ context.Context, key string) ([]byte, error) {
	path := filepath.Join(s.root, SanitizeKey(key))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read object %s: %w", path, err)
	}
	return data, nil
}
