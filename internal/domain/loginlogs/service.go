package loginlogs

import (
	"context"
	"time"

	"github.com/google/uuid"

	"instadoc-admin/internal/domain/accounts"
	"instadoc-admin/internal/platform/logger"
)

type Service struct {
	repo     Repository
	accounts accounts.Repository
	log      logger.Logger
	now      func() time.Time
}

func NewService(repo Repository, accs accounts.Repository, log logger.Logger) *Service {
	return &Service{
		repo:     repo,
		accounts: accs,
		log:      log,
		now:      time.Now,
	}
}

// Record inserta el login de forma best-effort: un historial caído
// nunca debe frenar un login válido.
func (s *Service) Record(ctx context.Context, a accounts.Account) {
	err := s.repo.Insert(ctx, LoginLog{
		ID:         uuid.NewString(),
		UserID:     a.ID,
		Email:      a.Email,
		Role:       string(a.Role),
		LoggedInAt: s.now().UTC(),
	})
	if err != nil {
		s.log.Warn("login log insert failed", map[string]any{
			"err":     err.Error(),
			"user_id": a.ID,
		})
	}
}

// Entry es la vista enriquecida que consume el panel: agrega el nombre
// vigente del usuario (o su redacción si la cuenta fue archivada).
type Entry struct {
	LoginLog
	FullName string
}

func (s *Service) List(ctx context.Context) ([]Entry, error) {
	logs, err := s.repo.ListRecent(ctx, ListLimit)
	if err != nil {
		return nil, err
	}

	all, err := s.accounts.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(all))
	for _, a := range all {
		if a.Archived() {
			names[a.ID] = "Archived user"
			continue
		}
		names[a.ID] = a.DisplayName()
	}

	out := make([]Entry, 0, len(logs))
	for _, l := range logs {
		name, ok := names[l.UserID]
		if !ok {
			name = "Unknown"
		}
		out = append(out, Entry{LoginLog: l, FullName: name})
	}
	return out, nil
}
