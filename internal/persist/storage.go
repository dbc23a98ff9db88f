package persist

import (
	"context"
	"sort"
	"sync"
)

// Storage keys, one per persisted slice.
const (
	KeyUsers         = "bitshub_users"
	KeyCurrentUser   = "bitshub_current_user"
	KeyCart          = "bitshub_cart"
	KeyOrders        = "bitshub_orders"
	KeyNotifications = "bitshub_notifications"
	KeyProducts      = "bitshub_products"
)

// Keys lists every storage key in rehydration order.
var Keys = []string{KeyUsers, KeyCurrentUser, KeyCart, KeyOrders, KeyNotifications, KeyProducts}

// Storage is a string-keyed blob store. *store.Store implements it.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// MemoryStorage is an in-process Storage used by scenario runs and tests.
//
// Thread-safety: safe for concurrent use.
type MemoryStorage struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string][]byte)}
}

// Get implements Storage.
func (m *MemoryStorage) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Set implements Storage.
func (m *MemoryStorage) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

// Remove implements Storage.
func (m *MemoryStorage) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Keys returns the stored keys in sorted order.
func (m *MemoryStorage) Keys(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
