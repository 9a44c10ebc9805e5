package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"instadoc-admin/internal/domain/sessions"
)

type sessionsRepo struct {
	mu   sync.RWMutex
	byID map[string]sessions.Session
}

func NewSessionsRepo() sessions.Repository {
	return &sessionsRepo{
		byID: make(map[string]sessions.Session),
	}
}

func (r *sessionsRepo) Create(ctx context.Context, s sessions.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(s.ID) == "" {
		return errors.New("session id required")
	}
	if _, exists := r.byID[s.ID]; exists {
		return errors.New("session already exists")
	}
	r.byID[s.ID] = s
	return nil
}

func (r *sessionsRepo) Update(ctx context.Context, s sessions.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[s.ID]; !exists {
		return sessions.ErrNotFound
	}
	r.byID[s.ID] = s
	return nil
}

func (r *sessionsRepo) GetByID(ctx context.Context, id string) (sessions.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byID[id]
	if !ok {
		return sessions.Session{}, sessions.ErrNotFound
	}
	return s, nil
}
