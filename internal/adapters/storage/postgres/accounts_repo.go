package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"instadoc-admin/internal/domain/accounts"
)

type AccountsRepo struct {
	db *sql.DB
}

func NewAccountsRepo(db *sql.DB) *AccountsRepo {
	return &AccountsRepo{db: db}
}

const accountColumns = `
	id, full_name, email,
	role, status, password_hash,
	deleted_at, created_at, updated_at
`

func (r *AccountsRepo) Create(ctx context.Context, a accounts.Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (
			id, full_name, email,
			role, status, password_hash,
			deleted_at, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		a.ID,
		a.FullName,
		a.Email,
		string(a.Role),
		string(a.Status),
		a.PasswordHash,
		toNullTime(a.DeletedAt),
		a.CreatedAt,
		a.UpdatedAt,
	)
	return err
}

func (r *AccountsRepo) Update(ctx context.Context, a accounts.Account) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET full_name = $2,
			email = $3,
			role = $4,
			status = $5,
			password_hash = $6,
			deleted_at = $7,
			updated_at = $8
		WHERE id = $1
	`,
		a.ID,
		a.FullName,
		a.Email,
		string(a.Role),
		string(a.Status),
		a.PasswordHash,
		toNullTime(a.DeletedAt),
		a.UpdatedAt,
	)
	if err != nil {
		return err
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		return accounts.ErrNotFound
	}
	return nil
}

func (r *AccountsRepo) GetByID(ctx context.Context, id string) (accounts.Account, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return accounts.Account{}, accounts.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = $1
	`, id)
	return scanAccount(row)
}

func (r *AccountsRepo) GetByEmail(ctx context.Context, email string) (accounts.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return accounts.Account{}, accounts.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE email = $1
	`, email)
	return scanAccount(row)
}

func (r *AccountsRepo) List(ctx context.Context) ([]accounts.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAccounts(rows)
}

func (r *AccountsRepo) ListByRole(ctx context.Context, role accounts.Role) ([]accounts.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE role = $1
		ORDER BY created_at DESC
	`, string(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAccounts(rows)
}

func (r *AccountsRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&n)
	return n, err
}

func (r *AccountsRepo) ListCreatedSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT created_at
		FROM accounts
		WHERE created_at >= $1
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTimes(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (accounts.Account, error) {
	var a accounts.Account
	var role, status string
	var deletedAt sql.NullTime

	if err := row.Scan(
		&a.ID,
		&a.FullName,
		&a.Email,
		&role,
		&status,
		&a.PasswordHash,
		&deletedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return accounts.Account{}, accounts.ErrNotFound
		}
		return accounts.Account{}, err
	}

	a.Role = accounts.Role(role)
	a.Status = accounts.Status(status)
	a.DeletedAt = fromNullTime(deletedAt)
	return a, nil
}

func scanAccounts(rows *sql.Rows) ([]accounts.Account, error) {
	out := make([]accounts.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanTimes(rows *sql.Rows) ([]time.Time, error) {
	out := make([]time.Time, 0)
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
