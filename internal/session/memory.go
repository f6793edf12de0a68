package session

import (
	"context"
	"sync"
	"time"

	"atsmatch/internal/types"
)

// MemoryStore keeps the session in process memory. It stores the encoded
// payload so it behaves like the persistent backends.
type MemoryStore struct {
	mu   sync.RWMutex
	data []byte
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (m *MemoryStore) Load(ctx context.Context) (*types.AnalysisSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return decode(m.data)
}

func (m *MemoryStore) Save(ctx context.Context, s types.AnalysisSession) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encode(s, m.now)
	if err != nil {
		return storeError("save", err)
	}
	m.mu.Lock()
	m.data = data
	m.mu.Unlock()
	return nil
}

// SetRaw stores payload verbatim.
func (m *MemoryStore) SetRaw(payload []byte) {
	m.mu.Lock()
	m.data = payload
	m.mu.Unlock()
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	m.data = nil
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Close() error { return nil }
