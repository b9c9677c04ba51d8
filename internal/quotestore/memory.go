package quotestore

import (
	"context"
	"sync"
)

// MemoryBackend keeps blobs in process memory.
type MemoryBackend struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{blobs: make(map[string][]byte)}
}

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.blobs[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryBackend) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	return nil
}

func (m *MemoryBackend) Close() error { return nil }

// DisabledBackend behaves like storage that is switched off: every call fails.
type DisabledBackend struct{}

func (DisabledBackend) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, ErrUnavailable
}

func (DisabledBackend) Set(context.Context, string, []byte) error { return ErrUnavailable }

func (DisabledBackend) Delete(context.Context, string) error { return ErrUnavailable }

func (DisabledBackend) Close() error { return nil }
