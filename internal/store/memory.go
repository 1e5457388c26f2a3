package store

import "sync"

// memoryRecords keeps records in insertion order. Set on a known id
// replaces the record in place.
type memoryRecords[T any] struct {
	mu      sync.RWMutex
	records []T
	index   map[string]int
}

func newMemoryRecords[T any]() *memoryRecords[T] {
	return &memoryRecords[T]{index: map[string]int{}}
}

func (m *memoryRecords[T]) clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = nil
	m.index = map[string]int{}
}

func (m *memoryRecords[T]) set(id string, record T) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i, ok := m.index[id]; ok {
		m.records[i] = record
		return
	}
	m.index[id] = len(m.records)
	m.records = append(m.records, record)
}

func (m *memoryRecords[T]) replace(ids []string, records []T) {
	index := make(map[string]int, len(ids))
	next := make([]T, 0, len(records))
	for i, id := range ids {
		if j, ok := index[id]; ok {
			next[j] = records[i]
			continue
		}
		index[id] = len(next)
		next = append(next, records[i])
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = next
	m.index = index
}

func (m *memoryRecords[T]) all() []T {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]T, len(m.records))
	copy(out, m.records)
	return out
}

func (m *memoryRecords[T]) get(id string) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.index[id]
	if !ok {
		var zero T
		return zero, false
	}
	return m.records[i], true
}
