package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Medium holds opaque keyed records. Get returns nil, nil for an absent key.
type Medium interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

var ErrQuotaExceeded = errors.New("storage quota exceeded")

// MemoryMedium keeps records in process memory. A positive quota bounds the
// total stored bytes across all keys.
type MemoryMedium struct {
	mu    sync.Mutex
	data  map[string][]byte
	quota int
}

func NewMemoryMedium(quotaBytes int) *MemoryMedium {
	return &MemoryMedium{data: make(map[string][]byte), quota: quotaBytes}
}

func (m *MemoryMedium) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *MemoryMedium) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.quota > 0 {
		used := len(value)
		for k, v := range m.data {
			if k != key {
				used += len(v)
			}
		}
		if used > m.quota {
			return fmt.Errorf("%w: %d of %d bytes", ErrQuotaExceeded, used, m.quota)
		}
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[key] = stored
	return nil
}
