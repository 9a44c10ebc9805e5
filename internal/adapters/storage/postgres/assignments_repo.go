package postgres

import (
	"context"
	"database/sql"
	"strings"

	"instadoc-admin/internal/domain/assignments"
)

type AssignmentsRepo struct {
	db *sql.DB
}

func NewAssignmentsRepo(db *sql.DB) *AssignmentsRepo {
	return &AssignmentsRepo{db: db}
}

func (r *AssignmentsRepo) Insert(ctx context.Context, a assignments.Assignment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO doctor_patients (
			id, doctor_id, patient_id, assigned_by, assigned_at
		) VALUES ($1,$2,$3,$4,$5)
	`,
		a.ID,
		a.DoctorID,
		a.PatientID,
		a.AssignedBy,
		a.AssignedAt,
	)
	return err
}

func (r *AssignmentsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM doctor_patients
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		return assignments.ErrNotFound
	}
	return nil
}

func (r *AssignmentsRepo) DeleteByDoctor(ctx context.Context, doctorID string) (int, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM doctor_patients
		WHERE doctor_id = $1
	`, doctorID)
	if err != nil {
		return 0, err
	}

	n, _ := res.RowsAffected()
	return int(n), nil
}

func (r *AssignmentsRepo) GetByID(ctx context.Context, id string) (assignments.Assignment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return assignments.Assignment{}, assignments.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, doctor_id, patient_id, assigned_by, assigned_at
		FROM doctor_patients
		WHERE id = $1
	`, id)

	var a assignments.Assignment
	if err := row.Scan(&a.ID, &a.DoctorID, &a.PatientID, &a.AssignedBy, &a.AssignedAt); err != nil {
		if err == sql.ErrNoRows {
			return assignments.Assignment{}, assignments.ErrNotFound
		}
		return assignments.Assignment{}, err
	}
	return a, nil
}

func (r *AssignmentsRepo) ListByDoctor(ctx context.Context, doctorID string) ([]assignments.Assignment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, doctor_id, patient_id, assigned_by, assigned_at
		FROM doctor_patients
		WHERE doctor_id = $1
		ORDER BY assigned_at DESC
	`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAssignments(rows)
}

func (r *AssignmentsRepo) ListAll(ctx context.Context) ([]assignments.Assignment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, doctor_id, patient_id, assigned_by, assigned_at
		FROM doctor_patients
		ORDER BY assigned_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAssignments(rows)
}

func scanAssignments(rows *sql.Rows) ([]assignments.Assignment, error) {
	out := make([]assignments.Assignment, 0)
	for rows.Next() {
		var a assignments.Assignment
		if err := rows.Scan(&a.ID, &a.DoctorID, &a.PatientID, &a.AssignedBy, &a.AssignedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
