package postgres

import (
	"context"
	"database/sql"

	"instadoc-admin/internal/domain/audit"
)

type AuditRepo struct {
	db *sql.DB
}

func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

func (r *AuditRepo) Insert(ctx context.Context, e audit.Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_logs (
			id, admin_id, target_user_id,
			module, action, description, reason,
			created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		e.ID,
		e.AdminID,
		toNullString(e.TargetUserID),
		e.Module,
		e.Action,
		e.Description,
		toNullString(e.Reason),
		e.CreatedAt,
	)
	return err
}

func (r *AuditRepo) ListRecent(ctx context.Context, limit int) ([]audit.Entry, error) {
	if limit <= 0 {
		limit = 200
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, admin_id, target_user_id,
			module, action, description, reason,
			created_at
		FROM audit_logs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]audit.Entry, 0)
	for rows.Next() {
		var e audit.Entry
		var target, reason sql.NullString

		if err := rows.Scan(
			&e.ID,
			&e.AdminID,
			&target,
			&e.Module,
			&e.Action,
			&e.Description,
			&reason,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}

		e.TargetUserID = fromNullString(target)
		e.Reason = fromNullString(reason)
		out = append(out, e)
	}
	return out, rows.Err()
}
