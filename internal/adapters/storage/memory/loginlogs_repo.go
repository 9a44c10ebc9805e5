package memory

import (
	"context"
	"sort"
	"sync"

	"instadoc-admin/internal/domain/loginlogs"
)

type loginLogsRepo struct {
	mu   sync.RWMutex
	logs []loginlogs.LoginLog
}

func NewLoginLogsRepo() loginlogs.Repository {
	return &loginLogsRepo{}
}

func (r *loginLogsRepo) Insert(ctx context.Context, l loginlogs.LoginLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, l)
	return nil
}

func (r *loginLogsRepo) ListRecent(ctx context.Context, limit int) ([]loginlogs.LoginLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]loginlogs.LoginLog, len(r.logs))
	copy(out, r.logs)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LoggedInAt.After(out[j].LoggedInAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
