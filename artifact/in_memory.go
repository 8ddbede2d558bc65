package artifact

import "sync"

// InMemoryStore is a trivial in-process Store implementation useful for
// tests, examples and single-process prototypes. It keeps all artifacts in a
// map guarded by an RWMutex; data is copied on save and retrieval to avoid
// accidental external mutation of internal buffers. It enforces no retention
// limits, size quotas or eviction.
type InMemoryStore struct {
	mu        sync.RWMutex
	artifacts map[string][]byte
}

// NewInMemoryStore returns an empty in-memory artifact store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{artifacts: make(map[string][]byte)}
}

// Save stores (or overwrites) the artifact bytes under the sanitized name
// and returns a mem:// location. The input slice is copied before storage.
func (a *InMemoryStore) Save(name string, data []byte) (string, error) {
	name = SanitizeName(name)
	a.mu.Lock()
	defer a.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	a.artifacts[name] = cp
	return "mem://" + name, nil
}

// Get returns a copy of the stored artifact bytes or ErrNotFound.
func (a *InMemoryStore) Get(name string) ([]byte, error) {
	name = SanitizeName(name)
	a.mu.RLock()
	defer a.mu.RUnlock()
	data, ok := a.artifacts[name]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// List returns the stored artifact names. The slice is a snapshot and safe
// for caller mutation.
func (a *InMemoryStore) List() ([]string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	names := make([]string, 0, len(a.artifacts))
	for name := range a.artifacts {
		names = append(names, name)
	}
	return names, nil
}

// Delete removes the artifact if present or returns ErrNotFound.
func (a *InMemoryStore) Delete(name string) error {
	name = SanitizeName(name)
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.artifacts[name]; !ok {
		return ErrNotFound
	}
	delete(a.artifacts, name)
	return nil
}
