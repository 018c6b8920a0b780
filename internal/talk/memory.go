package talk

import (
	"context"
	"sync"
	"time"
)

type pairKey struct {
	groupID string
	userID  string
}

// Memory is an in-memory Repo used by tests. It mirrors the store's
// insert-if-absent semantics.
type Memory struct {
	mu       sync.Mutex
	mappings map[pairKey]Mapping
}

func NewMemory() *Memory {
	return &Memory{mappings: make(map[pairKey]Mapping)}
}

func (m *Memory) Find(_ context.Context, groupID, userID string) (*Mapping, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mp, ok := m.mappings[pairKey{groupID, userID}]; ok {
		out := mp
		return &out, nil
	}
	return nil, nil
}

func (m *Memory) Insert(_ context.Context, mp *Mapping) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pairKey{mp.GroupID, mp.UserID}
	if _, ok := m.mappings[key]; ok {
		return false, nil
	}
	m.mappings[key] = *mp
	return true, nil
}

func (m *Memory) Touch(_ context.Context, groupID, userID string, lastUsed time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pairKey{groupID, userID}
	if mp, ok := m.mappings[key]; ok {
		mp.LastUsed = lastUsed
		m.mappings[key] = mp
	}
	return nil
}

func (m *Memory) ListByGroup(_ context.Context, groupID string) ([]Mapping, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Mapping
	for _, mp := range m.mappings {
		if mp.GroupID == groupID {
			out = append(out, mp)
		}
	}
	return out, nil
}

func (m *Memory) ListByUser(_ context.Context, userID string) ([]Mapping, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Mapping
	for _, mp := range m.mappings {
		if mp.UserID == userID {
			out = append(out, mp)
		}
	}
	return out, nil
}

func (m *Memory) Delete(_ context.Context, groupID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pairKey{groupID, userID}
	if _, ok := m.mappings[key]; !ok {
		return false, nil
	}
	delete(m.mappings, key)
	return true, nil
}

// Len reports the number of stored mappings.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.mappings)
}
