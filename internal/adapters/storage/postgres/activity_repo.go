package postgres

import (
	"context"
	"database/sql"

	"instadoc-admin/internal/domain/activity"
)

type ActivityRepo struct {
	db *sql.DB
}

func NewActivityRepo(db *sql.DB) *ActivityRepo {
	return &ActivityRepo{db: db}
}

func (r *ActivityRepo) Insert(ctx context.Context, e activity.Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO platform_activity (
			id, actor_id, target_user_id,
			module, action, description,
			created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		e.ID,
		e.ActorID,
		toNullString(e.TargetUserID),
		e.Module,
		e.Action,
		e.Description,
		e.CreatedAt,
	)
	return err
}

func (r *ActivityRepo) ListRecent(ctx context.Context, limit int) ([]activity.Entry, error) {
	if limit <= 0 {
		limit = 200
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, actor_id, target_user_id,
			module, action, description,
			created_at
		FROM platform_activity
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]activity.Entry, 0)
	for rows.Next() {
		var e activity.Entry
		var target sql.NullString

		if err := rows.Scan(
			&e.ID,
			&e.ActorID,
			&target,
			&e.Module,
			&e.Action,
			&e.Description,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}

		e.TargetUserID = fromNullString(target)
		out = append(out, e)
	}
	return out, rows.Err()
}
