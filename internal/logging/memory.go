package logging

import (
	"context"
	"sync"
)

// Memory is an in-memory Repo used by tests to inspect what was logged.
type Memory struct {
	mu       sync.Mutex
	Activity []ActivityEntry
	Errors   []ErrorEntry
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) AppendActivity(_ context.Context, e ActivityEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Activity = append(m.Activity, e)
	return nil
}

func (m *Memory) AppendError(_ context.Context, e ErrorEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors = append(m.Errors, e)
	return nil
}
