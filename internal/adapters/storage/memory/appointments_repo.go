package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"instadoc-admin/internal/domain/appointments"
)

// AppointmentsRepo guarda turnos en memoria. Igual que las métricas de
// salud, en producción los escribe la app de pacientes: Seed existe
// para dev y tests.
type AppointmentsRepo struct {
	mu    sync.RWMutex
	appts []appointments.Appointment
}

func NewAppointmentsRepo() *AppointmentsRepo {
	return &AppointmentsRepo{}
}

func (r *AppointmentsRepo) Seed(a appointments.Appointment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appts = append(r.appts, a)
}

func (r *AppointmentsRepo) ListSince(ctx context.Context, since time.Time, limit int) ([]appointments.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]appointments.Appointment, 0)
	for _, a := range r.appts {
		if !a.CreatedAt.Before(since) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *AppointmentsRepo) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.appts), nil
}

func (r *AppointmentsRepo) ListCreatedSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]time.Time, 0)
	for _, a := range r.appts {
		if !a.CreatedAt.Before(since) {
			out = append(out, a.CreatedAt)
		}
	}
	return out, nil
}
