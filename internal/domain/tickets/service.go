package tickets

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"instadoc-admin/internal/domain/activity"
	"instadoc-admin/internal/domain/audit"
	"instadoc-admin/internal/platform/logger"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("ticket not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type Service struct {
	repo    Repository
	audits  audit.Recorder
	feed    activity.Repository
	changes audit.TableNotifier
	log     logger.Logger
	now     func() time.Time
}

func NewService(repo Repository, audits audit.Recorder, feed activity.Repository, changes audit.TableNotifier, log logger.Logger) *Service {
	return &Service{
		repo:    repo,
		audits:  audits,
		feed:    feed,
		changes: changes,
		log:     log,
		now:     time.Now,
	}
}

type Filter struct {
	Status   Status
	Priority Priority
	Search   string
}

func (s *Service) List(ctx context.Context, f Filter) ([]Ticket, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]Ticket, 0, len(all))
	for _, t := range all {
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Priority != "" && t.Priority != f.Priority {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Subject), search) &&
			!strings.Contains(strings.ToLower(t.UserName), search) {
			continue
		}
		out = append(out, t)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Ticket, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Ticket{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Replies(ctx context.Context, ticketID string) ([]Reply, error) {
	return s.repo.ListReplies(ctx, ticketID)
}

type CreateInput struct {
	UserID   string
	UserName string
	Subject  string
	Body     string
	Priority Priority
}

// Create da de alta un ticket (lo usa la app de pacientes y los seeds).
func (s *Service) Create(ctx context.Context, in CreateInput) (Ticket, error) {
	if strings.TrimSpace(in.Subject) == "" || strings.TrimSpace(in.UserID) == "" {
		return Ticket{}, ErrInvalidInput
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if !ValidPriority(in.Priority) {
		return Ticket{}, ErrInvalidInput
	}

	now := s.now().UTC()
	t := Ticket{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		UserName:  strings.TrimSpace(in.UserName),
		Subject:   strings.TrimSpace(in.Subject),
		Body:      strings.TrimSpace(in.Body),
		Priority:  in.Priority,
		Status:    StatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return Ticket{}, err
	}
	return t, nil
}

// SetStatus aplica el ciclo open → in_progress → resolved → open.
// Volver de resolved a open es la reapertura y se audita como tal.
func (s *Service) SetStatus(ctx context.Context, actor audit.Actor, id string, status Status, reason string) (Ticket, error) {
	if !ValidStatus(status) {
		return Ticket{}, ErrInvalidInput
	}

	t, err := s.GetByID(ctx, id)
	if err != nil {
		return Ticket{}, err
	}
	if t.Status == status {
		return t, nil
	}

	action, ok := transitionAction(t.Status, status)
	if !ok {
		return Ticket{}, ErrInvalidTransition
	}

	t.Status = status
	t.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, t); err != nil {
		return Ticket{}, err
	}

	s.audits.Record(ctx, audit.Input{
		Actor:        actor,
		TargetUserID: t.UserID,
		Module:       "tickets",
		Action:       action,
		Description:  statusDescription(actor.Name, t, action),
		Reason:       reason,
	})
	return t, nil
}

func transitionAction(from, to Status) (string, bool) {
	switch {
	case from == StatusOpen && to == StatusInProgress:
		return "progress", true
	case from == StatusInProgress && to == StatusResolved:
		return "resolved", true
	case from == StatusResolved && to == StatusOpen:
		return "reopened", true
	default:
		return "", false
	}
}

func statusDescription(actorName string, t Ticket, action string) string {
	switch action {
	case "progress":
		return fmt.Sprintf("%s marked ticket '%s' as in progress.", actorName, t.Subject)
	case "resolved":
		return fmt.Sprintf("%s resolved ticket '%s'.", actorName, t.Subject)
	default:
		return fmt.Sprintf("%s reopened ticket '%s'.", actorName, t.Subject)
	}
}

// SetPriority cambia la prioridad. Va solo al feed, no al audit log:
// es un ajuste de triage, no una acción sobre el usuario.
func (s *Service) SetPriority(ctx context.Context, actor audit.Actor, id string, p Priority) (Ticket, error) {
	if !ValidPriority(p) {
		return Ticket{}, ErrInvalidInput
	}

	t, err := s.GetByID(ctx, id)
	if err != nil {
		return Ticket{}, err
	}
	if t.Priority == p {
		return t, nil
	}

	t.Priority = p
	t.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, t); err != nil {
		return Ticket{}, err
	}

	feedErr := s.feed.Insert(ctx, activity.Entry{
		ID:           uuid.NewString(),
		ActorID:      actor.ID,
		TargetUserID: t.UserID,
		Module:       "tickets",
		Action:       "priority",
		Description:  fmt.Sprintf("%s set priority of ticket '%s' to %s.", actor.Name, t.Subject, p),
		CreatedAt:    s.now().UTC(),
	})
	if feedErr != nil {
		s.log.Warn("priority feed insert failed", map[string]any{
			"err":       feedErr.Error(),
			"ticket_id": t.ID,
		})
	} else if s.changes != nil {
		s.changes.NotifyTableChange(activity.TableName)
	}
	return t, nil
}

// Reply agrega una respuesta admin. El primer reply marca FirstReplyAt
// y un ticket abierto pasa solo a in_progress.
func (s *Service) Reply(ctx context.Context, actor audit.Actor, id, message string) (Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Reply{}, ErrInvalidInput
	}

	t, err := s.GetByID(ctx, id)
	if err != nil {
		return Reply{}, err
	}

	now := s.now().UTC()
	reply := Reply{
		ID:        uuid.NewString(),
		TicketID:  t.ID,
		AdminID:   actor.ID,
		Message:   message,
		CreatedAt: now,
	}
	if err := s.repo.InsertReply(ctx, reply); err != nil {
		return Reply{}, err
	}

	changed := false
	if t.FirstReplyAt == nil {
		t.FirstReplyAt = &now
		changed = true
	}
	if t.Status == StatusOpen {
		t.Status = StatusInProgress
		changed = true
	}
	if changed {
		t.UpdatedAt = now
		if err := s.repo.Update(ctx, t); err != nil {
			return Reply{}, err
		}
	}

	s.audits.Record(ctx, audit.Input{
		Actor:        actor,
		TargetUserID: t.UserID,
		Module:       "tickets",
		Action:       "replied",
		Description:  fmt.Sprintf("%s replied to ticket '%s'.", actor.Name, t.Subject),
	})
	return reply, nil
}

// Stats resume el estado de la cola de soporte.
type Stats struct {
	Total      int
	Open       int
	InProgress int
	Resolved   int

	// AvgFirstResponse promedia CreatedAt→FirstReplyAt sobre los tickets
	// que ya tuvieron respuesta; cero si ninguno la tuvo.
	AvgFirstResponse time.Duration
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return Stats{}, err
	}

	var st Stats
	var totalResp time.Duration
	var responded int

	st.Total = len(all)
	for _, t := range all {
		switch t.Status {
		case StatusOpen:
			st.Open++
		case StatusInProgress:
			st.InProgress++
		case StatusResolved:
			st.Resolved++
		}
		if t.FirstReplyAt != nil {
			totalResp += t.FirstReplyAt.Sub(t.CreatedAt)
			responded++
		}
	}
	if responded > 0 {
		st.AvgFirstResponse = totalResp / time.Duration(responded)
	}
	return st, nil
}
