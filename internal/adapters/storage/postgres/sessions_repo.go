package postgres

import (
	"context"
	"database/sql"
	"strings"

	"instadoc-admin/internal/domain/sessions"
)

type SessionsRepo struct {
	db *sql.DB
}

func NewSessionsRepo(db *sql.DB) *SessionsRepo {
	return &SessionsRepo{db: db}
}

func (r *SessionsRepo) Create(ctx context.Context, s sessions.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO admin_sessions (
			id, account_id, email,
			created_at, last_seen_at,
			revoked_at, revoke_reason
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		s.ID,
		s.AccountID,
		s.Email,
		s.CreatedAt,
		s.LastSeenAt,
		toNullTime(s.RevokedAt),
		toNullString(s.RevokeReason),
	)
	return err
}

func (r *SessionsRepo) Update(ctx context.Context, s sessions.Session) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE admin_sessions
		SET last_seen_at = $2,
			revoked_at = $3,
			revoke_reason = $4
		WHERE id = $1
	`,
		s.ID,
		s.LastSeenAt,
		toNullTime(s.RevokedAt),
		toNullString(s.RevokeReason),
	)
	if err != nil {
		return err
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		return sessions.ErrNotFound
	}
	return nil
}

func (r *SessionsRepo) GetByID(ctx context.Context, id string) (sessions.Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return sessions.Session{}, sessions.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, account_id, email,
			created_at, last_seen_at,
			revoked_at, revoke_reason
		FROM admin_sessions
		WHERE id = $1
	`, id)

	var s sessions.Session
	var revokedAt sql.NullTime
	var reason sql.NullString

	if err := row.Scan(
		&s.ID,
		&s.AccountID,
		&s.Email,
		&s.CreatedAt,
		&s.LastSeenAt,
		&revokedAt,
		&reason,
	); err != nil {
		if err == sql.ErrNoRows {
			return sessions.Session{}, sessions.ErrNotFound
		}
		return sessions.Session{}, err
	}

	s.RevokedAt = fromNullTime(revokedAt)
	s.RevokeReason = fromNullString(reason)
	return s, nil
}
