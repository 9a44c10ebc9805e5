package postgres

import (
	"context"
	"database/sql"
	"time"

	"instadoc-admin/internal/domain/appointments"
)

// AppointmentsRepo lee la tabla de turnos que escribe la app de pacientes.
type AppointmentsRepo struct {
	db *sql.DB
}

func NewAppointmentsRepo(db *sql.DB) *AppointmentsRepo {
	return &AppointmentsRepo{db: db}
}

func (r *AppointmentsRepo) ListSince(ctx context.Context, since time.Time, limit int) ([]appointments.Appointment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, patient_id, patient_name, doctor_name,
			kind, status, scheduled_at, created_at
		FROM appointments
		WHERE created_at >= $1
		ORDER BY created_at DESC
		LIMIT $2
	`, since, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]appointments.Appointment, 0)
	for rows.Next() {
		var a appointments.Appointment
		var status string
		if err := rows.Scan(
			&a.ID,
			&a.PatientID,
			&a.PatientName,
			&a.DoctorName,
			&a.Kind,
			&status,
			&a.ScheduledAt,
			&a.CreatedAt,
		); err != nil {
			return nil, err
		}
		a.Status = appointments.Status(status)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AppointmentsRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM appointments`).Scan(&n)
	return n, err
}

func (r *AppointmentsRepo) ListCreatedSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT created_at
		FROM appointments
		WHERE created_at >= $1
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTimes(rows)
}
