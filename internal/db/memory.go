package db

import (
	"context"
	"sync"
)

// Memory keeps records in process memory. It satisfies the same CRUD
// contract as DB and is what tests and throwaway sessions use.
type Memory struct {
	mu          sync.Mutex
	collections map[string]map[string][]byte
	order       map[string][]string
}

// NewMemory returns an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		collections: make(map[string]map[string][]byte),
		order:       make(map[string][]string),
	}
}

// Get returns a copy of the stored payload
func (m *Memory) Get(_ context.Context, collection, id string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.collections[collection][id]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

// Put stores a copy of data
func (m *Memory) Put(_ context.Context, collection, id string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.collections[collection]
	if !ok {
		c = make(map[string][]byte)
		m.collections[collection] = c
	}
	if _, exists := c[id]; !exists {
		m.order[collection] = append(m.order[collection], id)
	}
	c[id] = append([]byte(nil), data...)
	return nil
}

// Delete removes a record if present
func (m *Memory) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.collections[collection]
	if _, ok := c[id]; !ok {
		return nil
	}
	delete(c, id)

	ids := m.order[collection]
	for i, v := range ids {
		if v == id {
			m.order[collection] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

// List returns payloads in insertion order
func (m *Memory) List(_ context.Context, collection string) ([][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.collections[collection]
	out := make([][]byte, 0, len(c))
	for _, id := range m.order[collection] {
		out = append(out, append([]byte(nil), c[id]...))
	}
	return out, nil
}

// Close is a no-op
func (m *Memory) Close() error {
	return nil
}
