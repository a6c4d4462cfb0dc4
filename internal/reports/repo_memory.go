package reports

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is the in-process fallback used when no database is
// configured. Contents are lost on restart.
type MemoryRepo struct {
	mu      sync.RWMutex
	reports map[string]Report
}

// NewMemoryRepo builds an empty in-memory repo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{reports: make(map[string]Report)}
}

func (m *MemoryRepo) Create(_ context.Context, r *Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[r.ID] = *r
	return nil
}

func (m *MemoryRepo) GetByID(_ context.Context, callerID, id string) (*Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.reports[id]
	if !ok || r.CallerID != callerID {
		return nil, ErrNotFound
	}
	out := r
	return &out, nil
}

func (m *MemoryRepo) List(_ context.Context, callerID string, limit int) ([]Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Report
	for _, r := range m.reports {
		if r.CallerID == callerID {
			out = append(out, r)
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

func (m *MemoryRepo) SetExtraction(_ context.Context, id, textKey string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[id]
	if !ok {
		return ErrNotFound
	}
	r.ExtractedTextKey = textKey
	r.ExtractedAt = &at
	m.reports[id] = r
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
