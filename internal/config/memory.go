package config

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-memory Store used by tests.
type Memory struct {
	mu      sync.Mutex
	entries map[string]Entry
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]Entry)}
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[key].Value, nil
}

func (m *Memory) Set(_ context.Context, key, value, description string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := Entry{Key: key, Value: value, Description: description}
	if description == "" {
		e.Description = m.entries[key].Description
	}
	m.entries[key] = e
	return nil
}

func (m *Memory) All(_ context.Context) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
