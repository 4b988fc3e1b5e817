// Package memory provides an in-memory KV implementation (for testing/dev).
package memory

import (
	"context"
	"sync"
)

// =============================================================================
// MEMORY KV - In-memory implementation
// =============================================================================

type KV struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func New() *KV {
	return &KV{records: make(map[string][]byte)}
}

func (m *KV) Load(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.records[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, true, nil
}

func (m *KV) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	m.records[key] = stored
	return nil
}

func (m *KV) Clear(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		delete(m.records, k)
	}
	return nil
}
