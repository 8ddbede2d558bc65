package tasklog

import (
	"fmt"
	"sync"

	"github.com/AlpaslanErdag/Orchestrator/core"
)

// InMemoryStore is a volatile TaskLogStore implementation holding logs in a
// process local slice. It is safe for concurrent access and best suited for
// tests or ephemeral demo servers.
type InMemoryStore struct {
	mu   sync.RWMutex
	logs []core.TaskLog
}

// NewInMemoryStore constructs an empty in-memory task log store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// Append implements core.TaskLogStore.
func (s *InMemoryStore) Append(log core.TaskLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, log)
	return nil
}

// List returns all recorded logs in append order.
func (s *InMemoryStore) List() []core.TaskLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.TaskLog, len(s.logs))
	copy(out, s.logs)
	return out
}

// Get returns the log with the given id.
func (s *InMemoryStore) Get(id string) (*core.TaskLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.logs {
		if s.logs[i].ID == id {
			log := s.logs[i]
			return &log, nil
		}
	}
	return nil, fmt.Errorf("task log %s not found", id)
}
