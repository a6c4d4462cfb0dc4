package analyses

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is the in-process fallback used when no database is
// configured.
type MemoryRepo struct {
	mu       sync.RWMutex
	analyses map[string]Analysis
}

// NewMemoryRepo builds an empty in-memory repo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{analyses: make(map[string]Analysis)}
}

func (m *MemoryRepo) Create(_ context.Context, a *Analysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.analyses[a.ID] = *a
	return nil
}

func (m *MemoryRepo) GetByID(_ context.Context, callerID, id string) (*Analysis, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.analyses[id]
	if !ok || a.CallerID != callerID {
		return nil, ErrNotFound
	}
	out := a
	return &out, nil
}

func (m *MemoryRepo) List(_ context.Context, callerID string, limit int) ([]Analysis, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Analysis
	for _, a := range m.analyses {
		if a.CallerID == callerID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryRepo) MarkProcessing(_ context.Context, id string, startedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.analyses[id]
	if !ok {
		return ErrNotFound
	}
	a.Status = StatusProcessing
	a.StartedAt = &startedAt
	a.UpdatedAt = time.Now().UTC()
	m.analyses[id] = a
	return nil
}

func (m *MemoryRepo) Complete(_ context.Context, id string, result *Result, provider, model string, completedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.analyses[id]
	if !ok {
		return ErrNotFound
	}
	a.Status = StatusCompleted
	a.Result = result
	a.Provider = provider
	a.Model = model
	a.CompletedAt = &completedAt
	a.UpdatedAt = time.Now().UTC()
	m.analyses[id] = a
	return nil
}

func (m *MemoryRepo) Fail(_ context.Context, id string, failure Failure, completedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.analyses[id]
	if !ok {
		return ErrNotFound
	}
	a.Status = StatusFailed
	a.Failure = &failure
	a.CompletedAt = &completedAt
	a.UpdatedAt = time.Now().UTC()
	m.analyses[id] = a
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
