package stats

import (
	"context"
	"testing"
	"time"

	"instadoc-admin/internal/domain/accounts"
	"instadoc-admin/internal/domain/appointments"
	"instadoc-admin/internal/domain/health"
	"instadoc-admin/internal/domain/tickets"
)

type fakeAccounts struct {
	created []time.Time
	total   int
}

func (f *fakeAccounts) Create(ctx context.Context, a accounts.Account) error { return nil }
func (f *fakeAccounts) Update(ctx context.Context, a accounts.Account) error { return nil }

func (f *fakeAccounts) GetByID(ctx context.Context, id string) (accounts.Account, error) {
	return accounts.Account{}, accounts.ErrNotFound
}

func (f *fakeAccounts) GetByEmail(ctx context.Context, email string) (accounts.Account, error) {
	return accounts.Account{}, accounts.ErrNotFound
}

func (f *fakeAccounts) List(ctx context.Context) ([]accounts.Account, error) { return nil, nil }

func (f *fakeAccounts) ListByRole(ctx context.Context, role accounts.Role) ([]accounts.Account, error) {
	return nil, nil
}

func (f *fakeAccounts) Count(ctx context.Context) (int, error) { return f.total, nil }

func (f *fakeAccounts) ListCreatedSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	return f.created, nil
}

type fakeHealth struct {
	created []time.Time
	counts  map[health.Metric]int
}

func (f *fakeHealth) ListBPSince(ctx context.Context, since time.Time, limit int) ([]health.BPLog, error) {
	return nil, nil
}

func (f *fakeHealth) ListWeightSince(ctx context.Context, since time.Time, limit int) ([]health.WeightLog, error) {
	return nil, nil
}

func (f *fakeHealth) ListGlucoseSince(ctx context.Context, since time.Time, limit int) ([]health.GlucoseLog, error) {
	return nil, nil
}

func (f *fakeHealth) Count(ctx context.Context, m health.Metric) (int, error) {
	return f.counts[m], nil
}

func (f *fakeHealth) CountByUser(ctx context.Context, m health.Metric, userID string) (int, error) {
	return 0, nil
}

func (f *fakeHealth) ListCreatedSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	return f.created, nil
}

type fakeTickets struct {
	created []time.Time
}

func (f *fakeTickets) Create(ctx context.Context, t tickets.Ticket) error { return nil }
func (f *fakeTickets) Update(ctx context.Context, t tickets.Ticket) error { return nil }

func (f *fakeTickets) GetByID(ctx context.Context, id string) (tickets.Ticket, error) {
	return tickets.Ticket{}, tickets.ErrNotFound
}

func (f *fakeTickets) List(ctx context.Context) ([]tickets.Ticket, error) { return nil, nil }

func (f *fakeTickets) InsertReply(ctx context.Context, r tickets.Reply) error { return nil }

func (f *fakeTickets) ListReplies(ctx context.Context, ticketID string) ([]tickets.Reply, error) {
	return nil, nil
}

func (f *fakeTickets) ListCreatedSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	return f.created, nil
}

type fakeAppts struct {
	created []time.Time
}

func (f *fakeAppts) ListSince(ctx context.Context, since time.Time, limit int) ([]appointments.Appointment, error) {
	return nil, nil
}

func (f *fakeAppts) Count(ctx context.Context) (int, error) { return 0, nil }

func (f *fakeAppts) ListCreatedSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	return f.created, nil
}

func TestService_Totals(t *testing.T) {
	svc := NewService(
		&fakeAccounts{total: 12},
		&fakeHealth{counts: map[health.Metric]int{health.MetricBP: 3, health.MetricWeight: 4, health.MetricGlucose: 5}},
		&fakeTickets{},
		&fakeAppts{},
		time.UTC,
	)

	got, err := svc.Totals(context.Background())
	if err != nil {
		t.Fatalf("Totals: %v", err)
	}
	if got.Users != 12 || got.BP != 3 || got.Weight != 4 || got.Glucose != 5 {
		t.Fatalf("unexpected totals: %+v", got)
	}
}

func TestService_Weekly_BucketsByLocalDay(t *testing.T) {
	// zona -03:00: las 01:00 UTC del día N son las 22:00 locales del día N-1
	loc := time.FixedZone("AR", -3*3600)
	now := time.Date(2026, 7, 10, 15, 0, 0, 0, loc)

	svc := NewService(
		&fakeAccounts{created: []time.Time{
			time.Date(2026, 7, 10, 1, 0, 0, 0, time.UTC),  // 9 de julio local
			time.Date(2026, 7, 10, 12, 0, 0, 0, time.UTC), // 10 de julio local
		}},
		&fakeHealth{created: []time.Time{
			time.Date(2026, 7, 8, 18, 0, 0, 0, time.UTC), // 8 de julio local
		}},
		&fakeTickets{created: []time.Time{
			time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), // fuera de ventana, se ignora
		}},
		&fakeAppts{},
		loc,
	)
	svc.now = func() time.Time { return now }

	days, err := svc.Weekly(context.Background())
	if err != nil {
		t.Fatalf("Weekly: %v", err)
	}
	if len(days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(days))
	}
	if days[0].Date != "2026-07-04" || days[6].Date != "2026-07-10" {
		t.Fatalf("window bounds: %s .. %s", days[0].Date, days[6].Date)
	}

	byDate := map[string]DayCount{}
	for _, d := range days {
		byDate[d.Date] = d
	}
	if byDate["2026-07-09"].Users != 1 || byDate["2026-07-10"].Users != 1 {
		t.Fatalf("user buckets wrong: %+v", days)
	}
	if byDate["2026-07-08"].Health != 1 {
		t.Fatalf("health bucket wrong: %+v", days)
	}
	for _, d := range days {
		if d.Tickets != 0 {
			t.Fatalf("out-of-window ticket must be ignored: %+v", d)
		}
	}
}
