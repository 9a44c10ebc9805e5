package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"instadoc-admin/internal/domain/activity"
	"instadoc-admin/internal/domain/audit"
	"instadoc-admin/internal/platform/logger"
	"instadoc-admin/internal/ports/auth"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("account not found")
	ErrForbidden    = errors.New("forbidden")
	ErrEmailTaken   = errors.New("email already registered")

	// ErrSelfChange protege al admin de sacarse a sí mismo del sistema.
	ErrSelfChange = errors.New("cannot change own role or status")

	// ErrArchived: las cuentas archivadas primero se restauran, después se editan.
	ErrArchived = errors.New("account is archived")
)

// LogoutSignaler publica la señal de logout forzado de una cuenta.
// La implementa el hub realtime; el watcher de sesiones es el fallback
// si nadie está escuchando.
type LogoutSignaler interface {
	ForceLogout(accountID, reason string)
}

type Service struct {
	repo    Repository
	audits  audit.Recorder
	signals LogoutSignaler
	revoker auth.SessionRevoker // opcional, revocación dura en el IdP
	policy  BlockPolicy
	log     logger.Logger
	now     func() time.Time
}

func NewService(repo Repository, audits audit.Recorder, signals LogoutSignaler, revoker auth.SessionRevoker, policy BlockPolicy, log logger.Logger) *Service {
	return &Service{
		repo:    repo,
		audits:  audits,
		signals: signals,
		revoker: revoker,
		policy:  policy,
		log:     log,
		now:     time.Now,
	}
}

type Filter struct {
	Search string // matchea nombre o email, case-insensitive
	Role   Role
	Status Status // matchea EffectiveStatus, acepta "archived"
}

func (s *Service) List(ctx context.Context, f Filter) ([]Account, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]Account, 0, len(all))
	for _, a := range all {
		if f.Role != "" && a.Role != f.Role {
			continue
		}
		if f.Status != "" && a.EffectiveStatus() != f.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(a.FullName), search) &&
			!strings.Contains(strings.ToLower(a.Email), search) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Account, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Account{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

type CreateInput struct {
	FullName string
	Email    string
	Password string
	Role     Role
	Reason   string
}

func (s *Service) Create(ctx context.Context, actor audit.Actor, in CreateInput) (Account, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)

	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return Account{}, ErrInvalidInput
	}
	if len(in.Password) < 8 {
		return Account{}, ErrInvalidInput
	}
	if !ValidRole(in.Role) {
		return Account{}, ErrInvalidInput
	}

	if _, err := s.repo.GetByEmail(ctx, in.Email); err == nil {
		return Account{}, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return Account{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, err
	}

	now := s.now().UTC()
	a := Account{
		ID:           uuid.NewString(),
		FullName:     in.FullName,
		Email:        in.Email,
		Role:         in.Role,
		Status:       StatusActive,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return Account{}, err
	}

	s.audits.Record(ctx, audit.Input{
		Actor:        actor,
		TargetUserID: a.ID,
		Module:       "users",
		Action:       "created",
		Description:  fmt.Sprintf("%s created user %s.", actor.Name, a.DisplayName()),
		Reason:       in.Reason,
	})
	return a, nil
}

type UpdateInput struct {
	FullName *string
	Email    *string
	Role     *Role
	Reason   string
}

func (s *Service) UpdateProfile(ctx context.Context, actor audit.Actor, id string, in UpdateInput) (Account, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return Account{}, err
	}
	if a.Archived() {
		return Account{}, ErrArchived
	}

	if in.FullName != nil {
		a.FullName = strings.TrimSpace(*in.FullName)
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email == "" || !strings.Contains(email, "@") {
			return Account{}, ErrInvalidInput
		}
		if email != a.Email {
			if other, err := s.repo.GetByEmail(ctx, email); err == nil && other.ID != a.ID {
				return Account{}, ErrEmailTaken
			} else if err != nil && !errors.Is(err, ErrNotFound) {
				return Account{}, err
			}
			a.Email = email
		}
	}
	if in.Role != nil && *in.Role != a.Role {
		if actor.ID == a.ID {
			return Account{}, ErrSelfChange
		}
		if !ValidRole(*in.Role) {
			return Account{}, ErrInvalidInput
		}
		a.Role = *in.Role
	}

	a.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, a); err != nil {
		return Account{}, err
	}

	s.audits.Record(ctx, audit.Input{
		Actor:        actor,
		TargetUserID: a.ID,
		Module:       "users",
		Action:       "updated",
		Description:  fmt.Sprintf("%s updated profile of %s.", actor.Name, a.DisplayName()),
		Reason:       in.Reason,
	})

	// Si le sacaron el rol admin, su sesión deja de ser válida.
	if in.Role != nil && a.Role != RoleAdmin {
		s.signals.ForceLogout(a.ID, "role changed")
	}
	return a, nil
}

// ChangeStatus cambia el status y, si el nuevo estado descalifica sesiones
// admin, emite force-logout y pide la revocación dura al IdP (best-effort).
func (s *Service) ChangeStatus(ctx context.Context, actor audit.Actor, id string, status Status, reason string) (Account, error) {
	if !ValidStatus(status) {
		return Account{}, ErrInvalidInput
	}
	if actor.ID == strings.TrimSpace(id) {
		return Account{}, ErrSelfChange
	}

	a, err := s.GetByID(ctx, id)
	if err != nil {
		return Account{}, err
	}
	if a.Archived() {
		return Account{}, ErrArchived
	}

	a.Status = status
	a.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, a); err != nil {
		return Account{}, err
	}

	s.audits.Record(ctx, audit.Input{
		Actor:        actor,
		TargetUserID: a.ID,
		Module:       "users",
		Action:       string(status),
		Description:  statusDescription(actor.Name, a.DisplayName(), status),
		Reason:       reason,
	})

	switch status {
	case StatusSuspended:
		s.signals.ForceLogout(a.ID, "suspended")
		s.revokeSessions(ctx, a.ID)
	case StatusInactive:
		if s.policy.InactiveBlocks {
			s.signals.ForceLogout(a.ID, "deactivated")
		}
	}
	return a, nil
}

// Archive hace soft-delete: la cuenta queda bloqueada sin importar role/status.
func (s *Service) Archive(ctx context.Context, actor audit.Actor, id, reason string) (Account, error) {
	if actor.ID == strings.TrimSpace(id) {
		return Account{}, ErrSelfChange
	}

	a, err := s.GetByID(ctx, id)
	if err != nil {
		return Account{}, err
	}
	if a.Archived() {
		return a, nil // idempotente
	}

	now := s.now().UTC()
	a.DeletedAt = &now
	a.Status = StatusInactive
	a.UpdatedAt = now
	if err := s.repo.Update(ctx, a); err != nil {
		return Account{}, err
	}

	s.audits.Record(ctx, audit.Input{
		Actor:        actor,
		TargetUserID: a.ID,
		Module:       "users",
		Action:       "archived",
		Description:  fmt.Sprintf("%s archived %s.", actor.Name, a.DisplayName()),
		Reason:       reason,
	})

	s.signals.ForceLogout(a.ID, "archived")
	s.revokeSessions(ctx, a.ID)
	return a, nil
}

func (s *Service) Restore(ctx context.Context, actor audit.Actor, id, reason string) (Account, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return Account{}, err
	}
	if !a.Archived() {
		return a, nil
	}

	a.DeletedAt = nil
	a.Status = StatusActive
	a.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, a); err != nil {
		return Account{}, err
	}

	s.audits.Record(ctx, audit.Input{
		Actor:        actor,
		TargetUserID: a.ID,
		Module:       "users",
		Action:       "restored",
		Description:  fmt.Sprintf("%s restored %s.", actor.Name, a.DisplayName()),
		Reason:       reason,
	})
	return a, nil
}

// CheckAdmin es el gate de autorización de los endpoints admin.
func (s *Service) CheckAdmin(ctx context.Context, accountID string) error {
	a, err := s.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrForbidden
		}
		return err
	}
	if AdminSessionBlocked(a, s.policy) {
		return ErrForbidden
	}
	return nil
}

// ActorFor arma el actor de auditoría a partir del id autenticado.
func (s *Service) ActorFor(ctx context.Context, accountID string) (audit.Actor, error) {
	a, err := s.GetByID(ctx, accountID)
	if err != nil {
		return audit.Actor{}, err
	}
	return audit.Actor{ID: a.ID, Name: a.DisplayName()}, nil
}

// Directory expone el directorio mínimo que consume el feed de actividad.
func (s *Service) Directory(ctx context.Context) ([]activity.Profile, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]activity.Profile, 0, len(all))
	for _, a := range all {
		out = append(out, activity.Profile{
			ID:       a.ID,
			Name:     a.FullName,
			Email:    a.Email,
			Archived: a.Archived(),
		})
	}
	return out, nil
}

func (s *Service) revokeSessions(ctx context.Context, accountID string) {
	if s.revoker == nil {
		return
	}
	// Best-effort: el IdP puede no estar configurado o estar caído.
	if err := s.revoker.RevokeSessions(ctx, accountID); err != nil {
		s.log.Debug("idp session revoke failed", map[string]any{
			"err":        err.Error(),
			"account_id": accountID,
		})
	}
}

func statusDescription(actorName, targetName string, status Status) string {
	switch status {
	case StatusSuspended:
		return fmt.Sprintf("%s suspended %s.", actorName, targetName)
	case StatusInactive:
		return fmt.Sprintf("%s marked %s as inactive.", actorName, targetName)
	default:
		return fmt.Sprintf("%s reactivated %s.", actorName, targetName)
	}
}
