package tickets

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"instadoc-admin/internal/domain/activity"
	"instadoc-admin/internal/domain/audit"
	"instadoc-admin/internal/platform/logger"
)

// -------------------------
// Fakes
// -------------------------

type testRepo struct {
	mu      sync.Mutex
	byID    map[string]Ticket
	replies []Reply
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Ticket{}}
}

func (r *testRepo) Create(ctx context.Context, t Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[t.ID] = t
	return nil
}

func (r *testRepo) Update(ctx context.Context, t Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[t.ID]; !ok {
		return ErrNotFound
	}
	r.byID[t.ID] = t
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[id]
	if !ok {
		return Ticket{}, ErrNotFound
	}
	return t, nil
}

func (r *testRepo) List(ctx context.Context) ([]Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Ticket, 0, len(r.byID))
	for _, t := range r.byID {
		out = append(out, t)
	}
	return out, nil
}

func (r *testRepo) InsertReply(ctx context.Context, rep Reply) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, rep)
	return nil
}

func (r *testRepo) ListReplies(ctx context.Context, ticketID string) ([]Reply, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Reply, 0)
	for _, rep := range r.replies {
		if rep.TicketID == ticketID {
			out = append(out, rep)
		}
	}
	return out, nil
}

func (r *testRepo) ListCreatedSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	return nil, nil
}

type testRecorder struct {
	mu     sync.Mutex
	inputs []audit.Input
}

func (r *testRecorder) Record(ctx context.Context, in audit.Input) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inputs = append(r.inputs, in)
}

type testFeedRepo struct {
	mu      sync.Mutex
	entries []activity.Entry
}

func (r *testFeedRepo) Insert(ctx context.Context, e activity.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return nil
}

func (r *testFeedRepo) ListRecent(ctx context.Context, limit int) ([]activity.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries, nil
}

type testNotifier struct {
	mu     sync.Mutex
	tables []string
}

func (n *testNotifier) NotifyTableChange(table string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tables = append(n.tables, table)
}

func newTestService() (*Service, *testRepo, *testRecorder, *testFeedRepo, *testNotifier) {
	repo := newTestRepo()
	rec := &testRecorder{}
	feed := &testFeedRepo{}
	notifier := &testNotifier{}
	svc := NewService(repo, rec, feed, notifier, logger.New(logger.Options{Level: logger.Error}))
	return svc, repo, rec, feed, notifier
}

func seedTicket(t *testing.T, svc *Service, subject string) Ticket {
	t.Helper()
	tk, err := svc.Create(context.Background(), CreateInput{
		UserID:   "u1",
		UserName: "Ana Ruiz",
		Subject:  subject,
		Body:     "something broke",
	})
	if err != nil {
		t.Fatalf("seed ticket: %v", err)
	}
	return tk
}

var actor = audit.Actor{ID: "admin-1", Name: "Root"}

// -------------------------
// Tests
// -------------------------

func TestService_StatusCycle(t *testing.T) {
	svc, _, rec, _, _ := newTestService()
	tk := seedTicket(t, svc, "login broken")

	tk2, err := svc.SetStatus(context.Background(), actor, tk.ID, StatusInProgress, "")
	if err != nil || tk2.Status != StatusInProgress {
		t.Fatalf("open→in_progress: %v (%s)", err, tk2.Status)
	}
	tk3, err := svc.SetStatus(context.Background(), actor, tk.ID, StatusResolved, "")
	if err != nil || tk3.Status != StatusResolved {
		t.Fatalf("in_progress→resolved: %v (%s)", err, tk3.Status)
	}
	tk4, err := svc.SetStatus(context.Background(), actor, tk.ID, StatusOpen, "customer replied again")
	if err != nil || tk4.Status != StatusOpen {
		t.Fatalf("resolved→open (reopen): %v (%s)", err, tk4.Status)
	}

	if len(rec.inputs) != 3 {
		t.Fatalf("expected 3 audit records, got %d", len(rec.inputs))
	}
	actions := []string{rec.inputs[0].Action, rec.inputs[1].Action, rec.inputs[2].Action}
	if actions[0] != "progress" || actions[1] != "resolved" || actions[2] != "reopened" {
		t.Fatalf("unexpected actions: %v", actions)
	}
}

func TestService_SetStatus_InvalidTransition(t *testing.T) {
	svc, _, _, _, _ := newTestService()
	tk := seedTicket(t, svc, "skip ahead")

	// open → resolved saltea el ciclo
	if _, err := svc.SetStatus(context.Background(), actor, tk.ID, StatusResolved, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestService_SetStatus_SameStatusIsNoop(t *testing.T) {
	svc, _, rec, _, _ := newTestService()
	tk := seedTicket(t, svc, "noop")

	if _, err := svc.SetStatus(context.Background(), actor, tk.ID, StatusOpen, "customer replied again"); err != nil {
		t.Fatalf("same-status: %v", err)
	}
	if len(rec.inputs) != 0 {
		t.Fatalf("noop must not audit, got %d", len(rec.inputs))
	}
}

func TestService_SetPriority_FeedOnly(t *testing.T) {
	svc, _, rec, feed, notifier := newTestService()
	tk := seedTicket(t, svc, "slow app")

	tk2, err := svc.SetPriority(context.Background(), actor, tk.ID, PriorityHigh)
	if err != nil || tk2.Priority != PriorityHigh {
		t.Fatalf("SetPriority: %v (%s)", err, tk2.Priority)
	}

	// va al feed, no al audit log
	if len(rec.inputs) != 0 {
		t.Fatalf("priority change must not hit audit log, got %d", len(rec.inputs))
	}
	if len(feed.entries) != 1 || feed.entries[0].Action != "priority" {
		t.Fatalf("expected feed-only entry, got %+v", feed.entries)
	}
	if len(notifier.tables) != 1 {
		t.Fatalf("expected table notification, got %v", notifier.tables)
	}
}

func TestService_Reply_FirstReplyPromotesTicket(t *testing.T) {
	svc, repo, rec, _, _ := newTestService()
	tk := seedTicket(t, svc, "need help")

	rep, err := svc.Reply(context.Background(), actor, tk.ID, "on it")
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if rep.AdminID != "admin-1" || rep.Message != "on it" {
		t.Fatalf("unexpected reply: %+v", rep)
	}

	stored, _ := repo.GetByID(context.Background(), tk.ID)
	if stored.Status != StatusInProgress {
		t.Fatalf("first reply should promote open→in_progress, got %s", stored.Status)
	}
	if stored.FirstReplyAt == nil {
		t.Fatalf("FirstReplyAt not set")
	}

	first := *stored.FirstReplyAt
	if _, err := svc.Reply(context.Background(), actor, tk.ID, "still on it"); err != nil {
		t.Fatalf("Reply #2: %v", err)
	}
	stored, _ = repo.GetByID(context.Background(), tk.ID)
	if !stored.FirstReplyAt.Equal(first) {
		t.Fatalf("FirstReplyAt must not move on later replies")
	}

	if len(rec.inputs) != 2 || rec.inputs[0].Action != "replied" {
		t.Fatalf("expected replied audits, got %+v", rec.inputs)
	}
}

func TestService_Stats(t *testing.T) {
	svc, repo, _, _, _ := newTestService()

	base := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	reply1 := base.Add(30 * time.Minute)
	reply2 := base.Add(90 * time.Minute)

	_ = repo.Create(context.Background(), Ticket{ID: "t1", Status: StatusOpen, CreatedAt: base})
	_ = repo.Create(context.Background(), Ticket{ID: "t2", Status: StatusInProgress, CreatedAt: base, FirstReplyAt: &reply1})
	_ = repo.Create(context.Background(), Ticket{ID: "t3", Status: StatusResolved, CreatedAt: base, FirstReplyAt: &reply2})

	st, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Total != 3 || st.Open != 1 || st.InProgress != 1 || st.Resolved != 1 {
		t.Fatalf("unexpected counts: %+v", st)
	}
	if st.AvgFirstResponse != time.Hour {
		t.Fatalf("avg first response: expected 1h, got %v", st.AvgFirstResponse)
	}
}

func TestService_List_FiltersAndSorts(t *testing.T) {
	svc, repo, _, _, _ := newTestService()
	base := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	_ = repo.Create(context.Background(), Ticket{ID: "t1", Subject: "Login roto", UserName: "Ana", Status: StatusOpen, Priority: PriorityHigh, CreatedAt: base})
	_ = repo.Create(context.Background(), Ticket{ID: "t2", Subject: "Facturación", UserName: "Bruno", Status: StatusResolved, Priority: PriorityLow, CreatedAt: base.Add(time.Hour)})

	got, err := svc.List(context.Background(), Filter{Status: StatusOpen})
	if err != nil || len(got) != 1 || got[0].ID != "t1" {
		t.Fatalf("status filter: %+v err=%v", got, err)
	}

	got, err = svc.List(context.Background(), Filter{Search: "factur"})
	if err != nil || len(got) != 1 || got[0].ID != "t2" {
		t.Fatalf("search filter: %+v err=%v", got, err)
	}

	got, err = svc.List(context.Background(), Filter{})
	if err != nil || len(got) != 2 || got[0].ID != "t2" {
		t.Fatalf("expected newest first, got %+v err=%v", got, err)
	}
}
