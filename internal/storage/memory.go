package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/nikolayk812/oja-market/internal/port"
)

var ErrInjected = errors.New("injected storage failure")

// Memory is an in-process KeyValueStorage. Reads and writes can be made
// to fail, which is how quota and private-mode failures are simulated.
type Memory struct {
	mu         sync.RWMutex
	items      map[string]string
	failReads  bool
	failWrites bool
	writes     int
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string]string)}
}

func (m *Memory) GetItem(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.failReads {
		return "", ErrInjected
	}

	value, ok := m.items[key]
	if !ok {
		return "", port.ErrKeyNotFound
	}
	return value, nil
}

func (m *Memory) SetItem(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWrites {
		return ErrInjected
	}

	m.items[key] = value
	m.writes++
	return nil
}

func (m *Memory) FailReads(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failReads = fail
}

func (m *Memory) FailWrites(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWrites = fail
}

// Writes counts successful SetItem calls.
func (m *Memory) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}
