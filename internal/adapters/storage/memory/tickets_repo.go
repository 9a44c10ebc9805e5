package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"instadoc-admin/internal/domain/tickets"
)

// TicketsRepo guarda tickets de soporte en memoria. Los tickets nacen
// en la app de pacientes, así que Seed cubre la carga inicial en dev.
type TicketsRepo struct {
	mu      sync.RWMutex
	byID    map[string]tickets.Ticket
	replies map[string][]tickets.Reply
}

func NewTicketsRepo() *TicketsRepo {
	return &TicketsRepo{
		byID:    make(map[string]tickets.Ticket),
		replies: make(map[string][]tickets.Reply),
	}
}

func (r *TicketsRepo) Seed(t tickets.Ticket) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[t.ID] = t
}

func (r *TicketsRepo) Create(ctx context.Context, t tickets.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(t.ID) == "" {
		return errors.New("ticket id required")
	}
	if _, exists := r.byID[t.ID]; exists {
		return errors.New("ticket already exists")
	}
	r.byID[t.ID] = t
	return nil
}

func (r *TicketsRepo) Update(ctx context.Context, t tickets.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[t.ID]; !exists {
		return tickets.ErrNotFound
	}
	r.byID[t.ID] = t
	return nil
}

func (r *TicketsRepo) GetByID(ctx context.Context, id string) (tickets.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byID[id]
	if !ok {
		return tickets.Ticket{}, tickets.ErrNotFound
	}
	return t, nil
}

func (r *TicketsRepo) List(ctx context.Context) ([]tickets.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]tickets.Ticket, 0, len(r.byID))
	for _, t := range r.byID {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *TicketsRepo) InsertReply(ctx context.Context, reply tickets.Reply) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.replies[reply.TicketID] = append(r.replies[reply.TicketID], reply)
	return nil
}

func (r *TicketsRepo) ListReplies(ctx context.Context, ticketID string) ([]tickets.Reply, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	src := r.replies[ticketID]
	out := make([]tickets.Reply, len(src))
	copy(out, src)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *TicketsRepo) ListCreatedSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]time.Time, 0)
	for _, t := range r.byID {
		if !t.CreatedAt.Before(since) {
			out = append(out, t.CreatedAt)
		}
	}
	return out, nil
}
