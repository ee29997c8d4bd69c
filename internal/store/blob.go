package store

import (
	"context"
	"sync"
)

// Blob keys of the durable snapshots.
const (
	KeyAssessments = "assessments"
	KeyHistory     = "location_history"
	KeyReadings    = "environmental_readings"
)

// BlobStore persists whole snapshots by key. Implementations must honour ctx
// cancellation and deadlines; a Get for an unknown key reports found=false
// with a nil error.
type BlobStore interface {
	Get(ctx context.Context, key string) (data []byte, found bool, err error)
	Put(ctx context.Context, key string, data []byte) error
}

// MemoryBlobStore keeps snapshots in process memory. It is the default
// backend and the one used in tests.
type MemoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryBlobStore returns an empty in-memory backend.
func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string][]byte)}
}

func (m *MemoryBlobStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

func (m *MemoryBlobStore) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blobs[key] = append([]byte(nil), data...)
	return nil
}
