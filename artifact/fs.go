package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FSStore persists artifacts as flat files under a root directory. It is the
// default backend for local deployments where generated reports should
// survive process restarts and be directly openable by the user.
type FSStore struct {
	root string
}

// NewFSStore creates the root directory if needed and returns a store
// writing into it.
func NewFSStore(root string) (*FSStore, error) {
	if root == "" {
		return nil, fmt.Errorf("artifact store: root dir is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("artifact store: %w", err)
	}
	return &FSStore{root: root}, nil
}

// Root returns the directory artifacts are written into.
func (a *FSStore) Root() string { return a.root }

// Save writes the artifact under its sanitized name and returns the
// resulting file path.
func (a *FSStore) Save(name string, data []byte) (string, error) {
	path := filepath.Join(a.root, SanitizeName(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("artifact store: write %s: %w", path, err)
	}
	return path, nil
}

// Get returns the artifact bytes or ErrNotFound.
func (a *FSStore) Get(name string) ([]byte, error) {
	path := filepath.Join(a.root, SanitizeName(name))
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("artifact store: read %s: %w", path, err)
	}
	return data, nil
}

// List returns the names of all stored artifacts.
func (a *FSStore) List() ([]string, error) {
	entries, err := os.ReadDir(a.root)
	if err != nil {
		return nil, fmt.Errorf("artifact store: list: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// Delete removes the artifact if present or returns ErrNotFound.
func (a *FSStore) Delete(name string) error {
	path := filepath.Join(a.root, SanitizeName(name))
	err := os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("artifact store: delete %s: %w", path, err)
	}
	return nil
}
