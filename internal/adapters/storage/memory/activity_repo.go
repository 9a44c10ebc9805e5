package memory

import (
	"context"
	"sort"
	"sync"

	"instadoc-admin/internal/domain/activity"
)

type activityRepo struct {
	mu      sync.RWMutex
	entries []activity.Entry
}

func NewActivityRepo() activity.Repository {
	return &activityRepo{}
}

func (r *activityRepo) Insert(ctx context.Context, e activity.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return nil
}

func (r *activityRepo) ListRecent(ctx context.Context, limit int) ([]activity.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]activity.Entry, len(r.entries))
	copy(out, r.entries)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
