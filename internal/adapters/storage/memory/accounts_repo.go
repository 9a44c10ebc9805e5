package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"instadoc-admin/internal/domain/accounts"
)

type accountsRepo struct {
	mu   sync.RWMutex
	byID map[string]accounts.Account
}

func NewAccountsRepo() accounts.Repository {
	return &accountsRepo{
		byID: make(map[string]accounts.Account),
	}
}

func (r *accountsRepo) Create(ctx context.Context, a accounts.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(a.ID) == "" {
		return errors.New("account id required")
	}
	if _, exists := r.byID[a.ID]; exists {
		return errors.New("account already exists")
	}
	r.byID[a.ID] = a
	return nil
}

func (r *accountsRepo) Update(ctx context.Context, a accounts.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[a.ID]; !exists {
		return accounts.ErrNotFound
	}
	r.byID[a.ID] = a
	return nil
}

func (r *accountsRepo) GetByID(ctx context.Context, id string) (accounts.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return accounts.Account{}, accounts.ErrNotFound
	}
	return a, nil
}

func (r *accountsRepo) GetByEmail(ctx context.Context, email string) (accounts.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, a := range r.byID {
		if a.Email == email {
			return a, nil
		}
	}
	return accounts.Account{}, accounts.ErrNotFound
}

func (r *accountsRepo) List(ctx context.Context) ([]accounts.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]accounts.Account, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a)
	}

	// Orden estable por created_at desc (consistencia en dev)
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *accountsRepo) ListByRole(ctx context.Context, role accounts.Role) ([]accounts.Account, error) {
	all, _ := r.List(ctx)
	out := make([]accounts.Account, 0, len(all))
	for _, a := range all {
		if a.Role == role {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *accountsRepo) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID), nil
}

func (r *accountsRepo) ListCreatedSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]time.Time, 0)
	for _, a := range r.byID {
		if !a.CreatedAt.Before(since) {
			out = append(out, a.CreatedAt)
		}
	}
	return out, nil
}
