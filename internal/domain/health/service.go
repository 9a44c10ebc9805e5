package health

import (
	"context"
	"fmt"
	"sort"
	"time"

	"instadoc-admin/internal/domain/accounts"
)

type Service struct {
	repo       Repository
	accounts   accounts.Repository
	windowDays int
	limit      int
	now        func() time.Time
}

func NewService(repo Repository, accs accounts.Repository, windowDays, limit int) *Service {
	if windowDays <= 0 {
		windowDays = 7
	}
	if limit <= 0 {
		limit = 100
	}
	return &Service{
		repo:       repo,
		accounts:   accs,
		windowDays: windowDays,
		limit:      limit,
		now:        time.Now,
	}
}

// RecentLog es una lectura reciente lista para mostrar: nombre vigente
// del paciente, lectura formateada y clasificación clínica.
type RecentLog struct {
	Metric    Metric
	UserID    string
	UserName  string
	Reading   string
	Level     Level
	CreatedAt time.Time
}

// Recent devuelve las últimas lecturas de la ventana, mezclando los tres
// tipos de métrica en orden cronológico descendente. metric vacío = todas.
func (s *Service) Recent(ctx context.Context, metric Metric) ([]RecentLog, error) {
	since := s.now().UTC().AddDate(0, 0, -s.windowDays)

	out := make([]RecentLog, 0, s.limit)

	if metric == "" || metric == MetricBP {
		logs, err := s.repo.ListBPSince(ctx, since, s.limit)
		if err != nil {
			return nil, err
		}
		for _, l := range logs {
			out = append(out, RecentLog{
				Metric:    MetricBP,
				UserID:    l.UserID,
				Reading:   fmt.Sprintf("%d/%d mmHg", l.Systolic, l.Diastolic),
				Level:     ClassifyBP(l.Systolic, l.Diastolic),
				CreatedAt: l.CreatedAt,
			})
		}
	}
	if metric == "" || metric == MetricWeight {
		logs, err := s.repo.ListWeightSince(ctx, since, s.limit)
		if err != nil {
			return nil, err
		}
		for _, l := range logs {
			out = append(out, RecentLog{
				Metric:    MetricWeight,
				UserID:    l.UserID,
				Reading:   fmt.Sprintf("%.1f kg", l.Kg),
				Level:     LevelNormal,
				CreatedAt: l.CreatedAt,
			})
		}
	}
	if metric == "" || metric == MetricGlucose {
		logs, err := s.repo.ListGlucoseSince(ctx, since, s.limit)
		if err != nil {
			return nil, err
		}
		for _, l := range logs {
			out = append(out, RecentLog{
				Metric:    MetricGlucose,
				UserID:    l.UserID,
				Reading:   fmt.Sprintf("%d mg/dL", l.MgDL),
				Level:     ClassifyGlucose(l.MgDL),
				CreatedAt: l.CreatedAt,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > s.limit {
		out = out[:s.limit]
	}

	s.resolveNames(ctx, out)
	return out, nil
}

func (s *Service) resolveNames(ctx context.Context, logs []RecentLog) {
	all, err := s.accounts.List(ctx)
	if err != nil {
		// sin directorio mostramos "Unknown"; no es motivo para fallar el listado
		for i := range logs {
			logs[i].UserName = "Unknown"
		}
		return
	}

	names := make(map[string]string, len(all))
	for _, a := range all {
		if a.Archived() {
			names[a.ID] = "Archived user"
			continue
		}
		names[a.ID] = a.DisplayName()
	}
	for i := range logs {
		if name, ok := names[logs[i].UserID]; ok {
			logs[i].UserName = name
		} else {
			logs[i].UserName = "Unknown"
		}
	}
}

// Totals cuenta lecturas por métrica (tarjetas del dashboard).
type Totals struct {
	BP      int
	Weight  int
	Glucose int
}

func (s *Service) Totals(ctx context.Context) (Totals, error) {
	var t Totals
	var err error

	if t.BP, err = s.repo.Count(ctx, MetricBP); err != nil {
		return Totals{}, err
	}
	if t.Weight, err = s.repo.Count(ctx, MetricWeight); err != nil {
		return Totals{}, err
	}
	if t.Glucose, err = s.repo.Count(ctx, MetricGlucose); err != nil {
		return Totals{}, err
	}
	return t, nil
}

// TotalsForUser cuenta lecturas de un paciente (modal de detalle).
func (s *Service) TotalsForUser(ctx context.Context, userID string) (Totals, error) {
	var t Totals
	var err error

	if t.BP, err = s.repo.CountByUser(ctx, MetricBP, userID); err != nil {
		return Totals{}, err
	}
	if t.Weight, err = s.repo.CountByUser(ctx, MetricWeight, userID); err != nil {
		return Totals{}, err
	}
	if t.Glucose, err = s.repo.CountByUser(ctx, MetricGlucose, userID); err != nil {
		return Totals{}, err
	}
	return t, nil
}
