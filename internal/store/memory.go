package store

import (
	"context"
	"slices"
	"strings"
	"sync"

	"marquee/internal/metadata"
)

// Memory keeps records in process memory.
type Memory struct {
	mu      sync.RWMutex
	records map[string]metadata.Record
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]metadata.Record)}
}

func (m *Memory) Load(_ context.Context, id string) (metadata.Record, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[strings.TrimSpace(id)]
	if !ok {
		return metadata.Record{}, false, nil
	}
	return rec.Clone(), true, nil
}

func (m *Memory) Save(_ context.Context, rec metadata.Record) error {
	id, err := recordKey(rec)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.records[id] = rec.Clone()
	m.mu.Unlock()
	return nil
}

func (m *Memory) List(_ context.Context, limit int) ([]metadata.Record, error) {
	m.mu.RLock()
	out := make([]metadata.Record, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec.Clone())
	}
	m.mu.RUnlock()
	sortByRecency(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) Close() error { return nil }

func sortByRecency(records []metadata.Record) {
	slices.SortFunc(records, func(a, b metadata.Record) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
