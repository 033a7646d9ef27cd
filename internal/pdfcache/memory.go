package pdfcache

import (
	"context"
	"fmt"
	"sync"

	"github.com/permitdesk/permitdesk/internal/shared"
)

// Memory keeps entries in process memory. Suitable for single-instance
// deployments and tests.
type Memory struct {
	mu      sync.Mutex
	cap     int
	entries map[string]Entry
}

func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = 10
	}
	return &Memory{
		cap:     capacity,
		entries: make(map[string]Entry),
	}
}

func (m *Memory) Put(_ context.Context, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[entry.ID] = entry
	for len(m.entries) > m.cap {
		oldestID := ""
		for id, e := range m.entries {
			if oldestID == "" || e.CreatedAt.Before(m.entries[oldestID].CreatedAt) {
				oldestID = id
			}
		}
		delete(m.entries, oldestID)
	}
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[id]
	if !ok {
		return nil, fmt.Errorf("cache entry %s: %w", id, shared.ErrNotFound)
	}
	return &entry, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, id)
	return nil
}

// Len reports the current entry count.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
