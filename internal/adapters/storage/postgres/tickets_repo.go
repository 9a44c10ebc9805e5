package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"instadoc-admin/internal/domain/tickets"
)

type TicketsRepo struct {
	db *sql.DB
}

func NewTicketsRepo(db *sql.DB) *TicketsRepo {
	return &TicketsRepo{db: db}
}

const ticketColumns = `
	id, user_id, user_name,
	subject, body,
	priority, status, first_reply_at,
	created_at, updated_at
`

func (r *TicketsRepo) Create(ctx context.Context, t tickets.Ticket) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO support_tickets (
			id, user_id, user_name,
			subject, body,
			priority, status, first_reply_at,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		t.ID,
		t.UserID,
		t.UserName,
		t.Subject,
		t.Body,
		string(t.Priority),
		string(t.Status),
		toNullTime(t.FirstReplyAt),
		t.CreatedAt,
		t.UpdatedAt,
	)
	return err
}

func (r *TicketsRepo) Update(ctx context.Context, t tickets.Ticket) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE support_tickets
		SET priority = $2,
			status = $3,
			first_reply_at = $4,
			updated_at = $5
		WHERE id = $1
	`,
		t.ID,
		string(t.Priority),
		string(t.Status),
		toNullTime(t.FirstReplyAt),
		t.UpdatedAt,
	)
	if err != nil {
		return err
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		return tickets.ErrNotFound
	}
	return nil
}

func (r *TicketsRepo) GetByID(ctx context.Context, id string) (tickets.Ticket, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return tickets.Ticket{}, tickets.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+ticketColumns+`
		FROM support_tickets
		WHERE id = $1
	`, id)
	return scanTicket(row)
}

func (r *TicketsRepo) List(ctx context.Context) ([]tickets.Ticket, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+ticketColumns+`
		FROM support_tickets
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]tickets.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *TicketsRepo) InsertReply(ctx context.Context, reply tickets.Reply) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ticket_replies (
			id, ticket_id, admin_id, message, created_at
		) VALUES ($1,$2,$3,$4,$5)
	`,
		reply.ID,
		reply.TicketID,
		reply.AdminID,
		reply.Message,
		reply.CreatedAt,
	)
	return err
}

func (r *TicketsRepo) ListReplies(ctx context.Context, ticketID string) ([]tickets.Reply, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, ticket_id, admin_id, message, created_at
		FROM ticket_replies
		WHERE ticket_id = $1
		ORDER BY created_at ASC
	`, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]tickets.Reply, 0)
	for rows.Next() {
		var rep tickets.Reply
		if err := rows.Scan(&rep.ID, &rep.TicketID, &rep.AdminID, &rep.Message, &rep.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

func (r *TicketsRepo) ListCreatedSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT created_at
		FROM support_tickets
		WHERE created_at >= $1
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTimes(rows)
}

func scanTicket(row rowScanner) (tickets.Ticket, error) {
	var t tickets.Ticket
	var priority, status string
	var firstReply sql.NullTime

	if err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.UserName,
		&t.Subject,
		&t.Body,
		&priority,
		&status,
		&firstReply,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return tickets.Ticket{}, tickets.ErrNotFound
		}
		return tickets.Ticket{}, err
	}

	t.Priority = tickets.Priority(priority)
	t.Status = tickets.Status(status)
	t.FirstReplyAt = fromNullTime(firstReply)
	return t, nil
}
