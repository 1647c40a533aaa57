package storage

import "sync"

// MemoryBest is a process-local best-score store. Nothing survives exit.
type MemoryBest struct {
	mu    sync.Mutex
	value int
}

// NewMemory returns a store holding initial.
func NewMemory(initial int) *MemoryBest {
	return &MemoryBest{value: initial}
}

func (m *MemoryBest) Get() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value, nil
}

// Set keeps score if it beats the stored value.
func (m *MemoryBest) Set(score int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = max(m.value, score)
	return nil
}

func (m *MemoryBest) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = 0
	return nil
}
