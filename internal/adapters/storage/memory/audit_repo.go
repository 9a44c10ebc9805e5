package memory

import (
	"context"
	"sort"
	"sync"

	"instadoc-admin/internal/domain/audit"
)

type auditRepo struct {
	mu      sync.RWMutex
	entries []audit.Entry
}

func NewAuditRepo() audit.Repository {
	return &auditRepo{}
}

func (r *auditRepo) Insert(ctx context.Context, e audit.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return nil
}

func (r *auditRepo) ListRecent(ctx context.Context, limit int) ([]audit.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]audit.Entry, len(r.entries))
	copy(out, r.entries)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
