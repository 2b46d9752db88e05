package storage

import (
	"encoding/json"
	"slices"
	"sync"

	"github.com/nibzard/tasklist-go/internal/todo"
)

// MemoryStore keeps tasks in process memory. Nothing survives a restart.
type MemoryStore struct {
	mu    sync.Mutex
	tasks []todo.Task
	saved bool
}

// NewMemoryStore returns a store seeded with tasks.
func NewMemoryStore(tasks ...todo.Task) *MemoryStore {
	m := &MemoryStore{}
	if len(tasks) > 0 {
		m.tasks = slices.Clone(tasks)
		m.saved = true
	}
	return m
}

func (m *MemoryStore) Load() ([]todo.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.tasks), nil
}

func (m *MemoryStore) Save(tasks []todo.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = slices.Clone(tasks)
	m.saved = true
	return nil
}

// Inspect returns the current tasks as JSON, or nil before the first save.
func (m *MemoryStore) Inspect() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.saved {
		return nil, nil
	}
	tasks := m.tasks
	if tasks == nil {
		tasks = []todo.Task{}
	}
	return json.Marshal(tasks)
}

func (m *MemoryStore) Describe() string { return "memory" }

func (m *MemoryStore) Close() error { return nil }
