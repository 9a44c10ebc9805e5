package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"instadoc-admin/internal/domain/health"
)

// HealthRepo lee las tablas de métricas que escribe la app de pacientes.
// El panel nunca inserta acá.
type HealthRepo struct {
	db *sql.DB
}

func NewHealthRepo(db *sql.DB) *HealthRepo {
	return &HealthRepo{db: db}
}

func (r *HealthRepo) ListBPSince(ctx context.Context, since time.Time, limit int) ([]health.BPLog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, systolic, diastolic, created_at
		FROM bp_logs
		WHERE created_at >= $1
		ORDER BY created_at DESC
		LIMIT $2
	`, since, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]health.BPLog, 0)
	for rows.Next() {
		var l health.BPLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.Systolic, &l.Diastolic, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *HealthRepo) ListWeightSince(ctx context.Context, since time.Time, limit int) ([]health.WeightLog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, kg, created_at
		FROM weight_logs
		WHERE created_at >= $1
		ORDER BY created_at DESC
		LIMIT $2
	`, since, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]health.WeightLog, 0)
	for rows.Next() {
		var l health.WeightLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.Kg, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *HealthRepo) ListGlucoseSince(ctx context.Context, since time.Time, limit int) ([]health.GlucoseLog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, mg_dl, created_at
		FROM glucose_logs
		WHERE created_at >= $1
		ORDER BY created_at DESC
		LIMIT $2
	`, since, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]health.GlucoseLog, 0)
	for rows.Next() {
		var l health.GlucoseLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.MgDL, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *HealthRepo) Count(ctx context.Context, m health.Metric) (int, error) {
	table, err := metricTable(m)
	if err != nil {
		return 0, err
	}

	var n int
	err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n)
	return n, err
}

func (r *HealthRepo) CountByUser(ctx context.Context, m health.Metric, userID string) (int, error) {
	table, err := metricTable(m)
	if err != nil {
		return 0, err
	}

	var n int
	err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table+` WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

func (r *HealthRepo) ListCreatedSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT created_at FROM bp_logs WHERE created_at >= $1
		UNION ALL
		SELECT created_at FROM weight_logs WHERE created_at >= $1
		UNION ALL
		SELECT created_at FROM glucose_logs WHERE created_at >= $1
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTimes(rows)
}

// metricTable mapea métrica → tabla. Nunca interpola input del cliente:
// los valores posibles están acotados por ValidMetric en el handler.
func metricTable(m health.Metric) (string, error) {
	switch m {
	case health.MetricBP:
		return "bp_logs", nil
	case health.MetricWeight:
		return "weight_logs", nil
	case health.MetricGlucose:
		return "glucose_logs", nil
	default:
		return "", errors.New("unknown metric")
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 100
	}
	if limit > 500 {
		return 500
	}
	return limit
}
