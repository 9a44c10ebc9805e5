package postgres

import (
	"context"
	"database/sql"

	"instadoc-admin/internal/domain/loginlogs"
)

type LoginLogsRepo struct {
	db *sql.DB
}

func NewLoginLogsRepo(db *sql.DB) *LoginLogsRepo {
	return &LoginLogsRepo{db: db}
}

func (r *LoginLogsRepo) Insert(ctx context.Context, l loginlogs.LoginLog) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO login_logs (
			id, user_id, email, role, logged_in_at
		) VALUES ($1,$2,$3,$4,$5)
	`,
		l.ID,
		l.UserID,
		l.Email,
		l.Role,
		l.LoggedInAt,
	)
	return err
}

func (r *LoginLogsRepo) ListRecent(ctx context.Context, limit int) ([]loginlogs.LoginLog, error) {
	if limit <= 0 {
		limit = loginlogs.ListLimit
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, email, role, logged_in_at
		FROM login_logs
		ORDER BY logged_in_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]loginlogs.LoginLog, 0)
	for rows.Next() {
		var l loginlogs.LoginLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.Email, &l.Role, &l.LoggedInAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
