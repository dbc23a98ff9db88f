package persist

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/bitshub/internal/engine"
)

// Mirror writes changed state slices to Storage after each accepted
// transition.
//
// Thread-safety: Observe is called under the engine lock; Sync may be called
// from any goroutine.
type Mirror struct {
	ctx     context.Context
	storage Storage
	logger  *slog.Logger

	mu      sync.Mutex
	digests map[string][sha256.Size]byte
	writes  int
	fails   int
}

// NewMirror returns a Mirror writing to storage. ctx bounds every write.
func NewMirror(ctx context.Context, storage Storage, logger *slog.Logger) *Mirror {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mirror{
		ctx:     ctx,
		storage: storage,
		logger:  logger,
		digests: make(map[string][sha256.Size]byte),
	}
}

// Observe implements engine.Observer. Rejected transitions never change
// state, so they are skipped.
func (m *Mirror) Observe(t engine.Transition) {
	if !t.Outcome.OK() {
		return
	}
	m.Sync(t.Next)
}

// Sync writes every slice of s whose content differs from the last
// successful write. It is also used once after rehydration to record the
// digests of the restored state.
func (m *Mirror) Sync(s *engine.State) {
	m.mu.Lock()
	defer m.mu.Unlock()

	slices, err := Slices(s)
	if err != nil {
		m.logger.Warn("mirror serialize failed", "error", err)
		return
	}

	for _, key := range Keys {
		data := slices[key]
		digest := sha256.Sum256(data)
		if last, ok := m.digests[key]; ok && last == digest {
			continue
		}
		if err := m.write(key, data); err != nil {
			m.fails++
			m.logger.Warn("mirror write failed", "key", key, "error", err)
			continue
		}
		m.writes++
		m.digests[key] = digest
	}
}

// write removes the key for a null slice (nobody logged in) and overwrites
// it otherwise.
func (m *Mirror) write(key string, data []byte) error {
	if string(data) == "null" {
		return m.storage.Remove(m.ctx, key)
	}
	return m.storage.Set(m.ctx, key, data)
}

// Stats returns the number of successful and failed slice writes.
func (m *Mirror) Stats() (writes, failures int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes, m.fails
}

// Slices serializes the persisted slices of s keyed by storage key.
// The session slice is "null" when nobody is logged in.
func Slices(s *engine.State) (map[string][]byte, error) {
	values := map[string]any{
		KeyUsers:         s.RegisteredUsers(),
		KeyCurrentUser:   s.SessionUser(),
		KeyCart:          s.Cart,
		KeyOrders:        s.Orders,
		KeyNotifications: s.Notifications,
		KeyProducts:      s.Products,
	}
	out := make(map[string][]byte, len(values))
	for key, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", key, err)
		}
		out[key] = data
	}
	return out, nil
}
