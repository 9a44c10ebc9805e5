package appointments

import (
	"context"
	"time"
)

type Service struct {
	repo       Repository
	windowDays int
	limit      int
	now        func() time.Time
}

func NewService(repo Repository, windowDays, limit int) *Service {
	if windowDays <= 0 {
		windowDays = 7
	}
	if limit <= 0 {
		limit = 100
	}
	return &Service{
		repo:       repo,
		windowDays: windowDays,
		limit:      limit,
		now:        time.Now,
	}
}

// Recent lista los turnos creados dentro de la ventana, más nuevos primero.
func (s *Service) Recent(ctx context.Context) ([]Appointment, error) {
	since := s.now().UTC().AddDate(0, 0, -s.windowDays)
	return s.repo.ListSince(ctx, since, s.limit)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
