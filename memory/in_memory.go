// Package memory provides MemoryStore implementations for recallable
// conversational snippets such as reminders.
package memory

import (
	"fmt"
	"strings"
	"sync"

	"github.com/reagent-ai/reagent/core"
)

// storedMemory is the internal representation persisted by InMemoryStore.
type storedMemory struct {
	id       string
	content  string
	metadata map[string]any
}

// InMemoryStore is a process-local MemoryStore with append-only entries and
// case-insensitive substring Search. Every hit gets a constant score of 1.0.
// Suitable for tests and demos; swap for a vector or semantic index for
// production retrieval.
type InMemoryStore struct {
	mu      sync.RWMutex
	counter int
	storage map[string][]storedMemory // sessionID -> entries in insertion order
}

// NewInMemoryStore creates an empty in-memory memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{storage: make(map[string][]storedMemory)}
}

// Search performs a substring match over stored memories, returning entries
// in insertion order up to limit. An empty query matches everything.
func (m *InMemoryStore) Search(sessionID string, query string, limit int) ([]core.SearchResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := []core.SearchResult{}
	lower := strings.ToLower(query)
	for _, stored := range m.storage[sessionID] {
		if limit > 0 && len(results) >= limit {
			break
		}
		if query != "" && !strings.Contains(strings.ToLower(stored.content), lower) {
			continue
		}
		md := make(map[string]any, len(stored.metadata))
		for k, v := range stored.metadata {
			md[k] = v
		}
		results = append(results, core.SearchResult{
			ID:       stored.id,
			Content:  stored.content,
			Score:    1.0,
			Metadata: md,
		})
	}
	return results, nil
}

// Store appends a new memory entry with a generated incremental ID.
func (m *InMemoryStore) Store(sessionID string, content string, metadata map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	m.storage[sessionID] = append(m.storage[sessionID], storedMemory{
		id:       fmt.Sprintf("mem_%d", m.counter),
		content:  content,
		metadata: metadata,
	})
	return nil
}

// Delete removes a stored memory entry by ID.
func (m *InMemoryStore) Delete(sessionID string, memoryID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := m.storage[sessionID]
	for i, stored := range entries {
		if stored.id == memoryID {
			m.storage[sessionID] = append(entries[:i], entries[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("memory not found")
}
