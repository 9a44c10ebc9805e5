package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"instadoc-admin/internal/domain/assignments"
)

type assignmentsRepo struct {
	mu   sync.RWMutex
	byID map[string]assignments.Assignment
}

func NewAssignmentsRepo() assignments.Repository {
	return &assignmentsRepo{
		byID: make(map[string]assignments.Assignment),
	}
}

func (r *assignmentsRepo) Insert(ctx context.Context, a assignments.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(a.ID) == "" {
		return errors.New("assignment id required")
	}
	if _, exists := r.byID[a.ID]; exists {
		return errors.New("assignment already exists")
	}
	r.byID[a.ID] = a
	return nil
}

func (r *assignmentsRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return assignments.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *assignmentsRepo) DeleteByDoctor(ctx context.Context, doctorID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, a := range r.byID {
		if a.DoctorID == doctorID {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}

func (r *assignmentsRepo) GetByID(ctx context.Context, id string) (assignments.Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return assignments.Assignment{}, assignments.ErrNotFound
	}
	return a, nil
}

func (r *assignmentsRepo) ListByDoctor(ctx context.Context, doctorID string) ([]assignments.Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]assignments.Assignment, 0)
	for _, a := range r.byID {
		if a.DoctorID == doctorID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AssignedAt.After(out[j].AssignedAt)
	})
	return out, nil
}

func (r *assignmentsRepo) ListAll(ctx context.Context) ([]assignments.Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]assignments.Assignment, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AssignedAt.After(out[j].AssignedAt)
	})
	return out, nil
}
