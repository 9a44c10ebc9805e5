package memory

import (
	"context"
	"sync"
	"time"

	"instadoc-admin/internal/domain/health"
)

// HealthRepo guarda métricas clínicas en memoria. En producción estas
// tablas las escribe la app de pacientes; acá exponemos Seed* para que
// el modo dev y los tests tengan datos que mostrar.
type HealthRepo struct {
	mu      sync.RWMutex
	bp      []health.BPLog
	weight  []health.WeightLog
	glucose []health.GlucoseLog
}

func NewHealthRepo() *HealthRepo {
	return &HealthRepo{}
}

func (r *HealthRepo) SeedBP(l health.BPLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bp = append(r.bp, l)
}

func (r *HealthRepo) SeedWeight(l health.WeightLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.weight = append(r.weight, l)
}

func (r *HealthRepo) SeedGlucose(l health.GlucoseLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.glucose = append(r.glucose, l)
}

func (r *HealthRepo) ListBPSince(ctx context.Context, since time.Time, limit int) ([]health.BPLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]health.BPLog, 0)
	for _, l := range r.bp {
		if !l.CreatedAt.Before(since) {
			out = append(out, l)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *HealthRepo) ListWeightSince(ctx context.Context, since time.Time, limit int) ([]health.WeightLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]health.WeightLog, 0)
	for _, l := range r.weight {
		if !l.CreatedAt.Before(since) {
			out = append(out, l)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *HealthRepo) ListGlucoseSince(ctx context.Context, since time.Time, limit int) ([]health.GlucoseLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]health.GlucoseLog, 0)
	for _, l := range r.glucose {
		if !l.CreatedAt.Before(since) {
			out = append(out, l)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *HealthRepo) Count(ctx context.Context, m health.Metric) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	switch m {
	case health.MetricBP:
		return len(r.bp), nil
	case health.MetricWeight:
		return len(r.weight), nil
	case health.MetricGlucose:
		return len(r.glucose), nil
	default:
		return 0, nil
	}
}

func (r *HealthRepo) CountByUser(ctx context.Context, m health.Metric, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	switch m {
	case health.MetricBP:
		for _, l := range r.bp {
			if l.UserID == userID {
				n++
			}
		}
	case health.MetricWeight:
		for _, l := range r.weight {
			if l.UserID == userID {
				n++
			}
		}
	case health.MetricGlucose:
		for _, l := range r.glucose {
			if l.UserID == userID {
				n++
			}
		}
	}
	return n, nil
}

func (r *HealthRepo) ListCreatedSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]time.Time, 0)
	for _, l := range r.bp {
		if !l.CreatedAt.Before(since) {
			out = append(out, l.CreatedAt)
		}
	}
	for _, l := range r.weight {
		if !l.CreatedAt.Before(since) {
			out = append(out, l.CreatedAt)
		}
	}
	for _, l := range r.glucose {
		if !l.CreatedAt.Before(since) {
			out = append(out, l.CreatedAt)
		}
	}
	return out, nil
}
