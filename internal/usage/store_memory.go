package usage

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps counters in process memory.
type MemoryStore struct {
	mu     sync.Mutex
	quotas map[string]Quota
}

// NewMemoryStore builds an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{quotas: make(map[string]Quota)}
}

func (m *MemoryStore) Consume(_ context.Context, callerID string, limit int, resetsAt time.Time) (Quota, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := m.refresh(callerID, limit, resetsAt)
	q.Used++
	m.quotas[callerID] = q
	return q, nil
}

func (m *MemoryStore) Peek(_ context.Context, callerID string, limit int, resetsAt time.Time) (Quota, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := m.refresh(callerID, limit, resetsAt)
	m.quotas[callerID] = q
	return q, nil
}

// refresh rolls the window over when the reset time has passed. Caller
// holds the lock.
func (m *MemoryStore) refresh(callerID string, limit int, resetsAt time.Time) Quota {
	q, ok := m.quotas[callerID]
	if !ok || time.Now().UTC().After(q.ResetsAt) {
		q = Quota{Plan: "free", Limit: limit, Used: 0, ResetsAt: resetsAt}
	}
	q.Limit = limit
	return q
}

var _ Store = (*MemoryStore)(nil)
