// Package persist provides automaton.Store implementations. The memory store
// lives here; networked and on-disk backends live in sub-packages.
package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/felixgeelhaar/automaton"
)

// Encode serializes a snapshot for byte-oriented backends
func Encode(s automaton.Snapshot) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses a snapshot written by Encode
func Decode(data []byte) (automaton.Snapshot, error) {
	var s automaton.Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return automaton.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return s, nil
}

// MemoryStore keeps snapshots in process memory. Safe for concurrent use.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]automaton.Snapshot
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string]automaton.Snapshot)}
}

// Save implements automaton.Store
func (m *MemoryStore) Save(ctx context.Context, key string, s automaton.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	m.snapshots[key] = s
	m.mu.Unlock()
	return nil
}

// Load implements automaton.Store
func (m *MemoryStore) Load(ctx context.Context, key string) (automaton.Snapshot, bool, error) {
	if err := ctx.Err(); err != nil {
		return automaton.Snapshot{}, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.snapshots[key]
	return s, ok, nil
}

// Delete implements automaton.Store
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.snapshots, key)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored snapshots
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.snapshots)
}

var _ automaton.Store = (*MemoryStore)(nil)
