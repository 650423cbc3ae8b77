package blob

import (
	"context"
	"sync"

	"github.com/xtxerr/siphon/internal/errors"
)

// MemStore is an in-memory Store for tests.
type MemStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string

	// GetErr and PutErr, when set, inject failures per key.
	GetErr func(key string) error
	PutErr func(key string) error

	// Puts counts Put calls per key.
	Puts map[string]int
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
		Puts:    make(map[string]int),
	}
}

// Get returns the stored object or ErrObjectNotFound.
func (m *MemStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetErr != nil {
		if err := m.GetErr(key); err != nil {
			return nil, err
		}
	}

	data, ok := m.objects[key]
	if !ok {
		return nil, errors.Wrapf(errors.ErrObjectNotFound, "object %q", key)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Put replaces the stored object.
func (m *MemStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.PutErr != nil {
		if err := m.PutErr(key); err != nil {
			return err
		}
	}

	stored := make([]byte, len(data))
	copy(stored, data)
	m.objects[key] = stored
	m.types[key] = contentType
	m.Puts[key]++
	return nil
}

// Object returns the stored bytes and whether the key exists.
func (m *MemStore) Object(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	return data, ok
}

// ContentType returns the content type recorded for key.
func (m *MemStore) ContentType(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.types[key]
}

// Keys returns all stored keys.
func (m *MemStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	return keys
}
