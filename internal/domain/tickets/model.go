package tickets

import (
	"context"
	"time"
)

type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved:
		return true
	default:
		return false
	}
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// Ticket es un reclamo de soporte creado desde la app de pacientes.
// El panel lo gestiona: estado, prioridad y respuestas.
type Ticket struct {
	ID       string
	UserID   string
	UserName string
	Subject  string
	Body     string

	Priority Priority
	Status   Status

	// FirstReplyAt alimenta la métrica de tiempo de primera respuesta.
	FirstReplyAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Reply struct {
	ID        string
	TicketID  string
	AdminID   string
	Message   string
	CreatedAt time.Time
}

type Repository interface {
	Create(ctx context.Context, t Ticket) error
	Update(ctx context.Context, t Ticket) error
	GetByID(ctx context.Context, id string) (Ticket, error)
	List(ctx context.Context) ([]Ticket, error)

	InsertReply(ctx context.Context, r Reply) error
	ListReplies(ctx context.Context, ticketID string) ([]Reply, error)

	ListCreatedSince(ctx context.Context, since time.Time) ([]time.Time, error)
}
