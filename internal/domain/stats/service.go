package stats

import (
	"context"
	"time"

	"instadoc-admin/internal/domain/accounts"
	"instadoc-admin/internal/domain/appointments"
	"instadoc-admin/internal/domain/health"
	"instadoc-admin/internal/domain/tickets"
)

// Service arma los números del dashboard: totales y la serie semanal
// de actividad por día calendario local.
type Service struct {
	accounts accounts.Repository
	health   health.Repository
	tickets  tickets.Repository
	appts    appointments.Repository
	loc      *time.Location
	now      func() time.Time
}

func NewService(accs accounts.Repository, healthRepo health.Repository, ticketsRepo tickets.Repository, appts appointments.Repository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		accounts: accs,
		health:   healthRepo,
		tickets:  ticketsRepo,
		appts:    appts,
		loc:      loc,
		now:      time.Now,
	}
}

type Totals struct {
	Users   int
	BP      int
	Weight  int
	Glucose int
}

func (s *Service) Totals(ctx context.Context) (Totals, error) {
	var t Totals
	var err error

	if t.Users, err = s.accounts.Count(ctx); err != nil {
		return Totals{}, err
	}
	if t.BP, err = s.health.Count(ctx, health.MetricBP); err != nil {
		return Totals{}, err
	}
	if t.Weight, err = s.health.Count(ctx, health.MetricWeight); err != nil {
		return Totals{}, err
	}
	if t.Glucose, err = s.health.Count(ctx, health.MetricGlucose); err != nil {
		return Totals{}, err
	}
	return t, nil
}

// DayCount es una barra del gráfico semanal. Date va en formato
// YYYY-MM-DD del día calendario local.
type DayCount struct {
	Date         string
	Users        int
	Health       int
	Tickets      int
	Appointments int
}

// Weekly devuelve los últimos 7 días calendario (el último es hoy).
// Cada timestamp se bucketiza por día local, no UTC: un alta a las
// 23:30 cuenta para el día en que el admin la vio suceder.
func (s *Service) Weekly(ctx context.Context) ([]DayCount, error) {
	now := s.now().In(s.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	start := today.AddDate(0, 0, -6)

	days := make([]DayCount, 7)
	index := make(map[string]int, 7)
	for i := 0; i < 7; i++ {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		days[i] = DayCount{Date: date}
		index[date] = i
	}

	bucket := func(ts time.Time) (int, bool) {
		i, ok := index[ts.In(s.loc).Format("2006-01-02")]
		return i, ok
	}

	users, err := s.accounts.ListCreatedSince(ctx, start)
	if err != nil {
		return nil, err
	}
	for _, ts := range users {
		if i, ok := bucket(ts); ok {
			days[i].Users++
		}
	}

	healthLogs, err := s.health.ListCreatedSince(ctx, start)
	if err != nil {
		return nil, err
	}
	for _, ts := range healthLogs {
		if i, ok := bucket(ts); ok {
			days[i].Health++
		}
	}

	ticketRows, err := s.tickets.ListCreatedSince(ctx, start)
	if err != nil {
		return nil, err
	}
	for _, ts := range ticketRows {
		if i, ok := bucket(ts); ok {
			days[i].Tickets++
		}
	}

	apptRows, err := s.appts.ListCreatedSince(ctx, start)
	if err != nil {
		return nil, err
	}
	for _, ts := range apptRows {
		if i, ok := bucket(ts); ok {
			days[i].Appointments++
		}
	}

	return days, nil
}
