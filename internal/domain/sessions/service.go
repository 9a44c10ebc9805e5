package sessions

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"instadoc-admin/internal/domain/accounts"
	"instadoc-admin/internal/platform/logger"
	"instadoc-admin/internal/ports/auth"
	"instadoc-admin/internal/realtime"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountArchived    = errors.New("account is archived")
	ErrAccountSuspended   = errors.New("account has been suspended")
	ErrAdminRequired      = errors.New("admin access required")
	ErrSessionRevoked     = errors.New("session revoked")
	ErrNotFound           = errors.New("session not found")
)

// LoginRecorder guarda el historial de ingresos (best-effort).
type LoginRecorder interface {
	Record(ctx context.Context, a accounts.Account)
}

// Service maneja el ciclo de vida de sesiones admin: login con gate,
// verificación de tokens, y un watcher por sesión que corta el acceso
// cuando la cuenta deja de calificar.
type Service struct {
	accounts accounts.Repository
	sessions Repository
	tokens   *TokenService
	hub      *realtime.Hub
	logins   LoginRecorder
	policy   accounts.BlockPolicy
	interval time.Duration
	log      logger.Logger
	now      func() time.Time

	mu       sync.Mutex
	watchers map[string]*watcher // por session ID
}

func NewService(accs accounts.Repository, sess Repository, tokens *TokenService, hub *realtime.Hub, logins LoginRecorder, policy accounts.BlockPolicy, interval time.Duration, log logger.Logger) *Service {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Service{
		accounts: accs,
		sessions: sess,
		tokens:   tokens,
		hub:      hub,
		logins:   logins,
		policy:   policy,
		interval: interval,
		log:      log,
		now:      time.Now,
		watchers: make(map[string]*watcher),
	}
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Session   Session
	Account   accounts.Account
}

// Login valida credenciales y aplica el gate admin. El gate responde
// con el motivo específico del rechazo; inactive pasa el login y queda
// en manos del watcher según la policy.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}

	a, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	switch {
	case a.Archived():
		return LoginResult{}, ErrAccountArchived
	case a.Status == accounts.StatusSuspended:
		return LoginResult{}, ErrAccountSuspended
	case a.Role != accounts.RoleAdmin:
		return LoginResult{}, ErrAdminRequired
	}

	now := s.now().UTC()
	sess := Session{
		ID:         uuid.NewString(),
		AccountID:  a.ID,
		Email:      a.Email,
		CreatedAt:  now,
		LastSeenAt: now,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return LoginResult{}, err
	}

	token, expiresAt, err := s.tokens.Issue(sess.ID, a.ID, a.Email)
	if err != nil {
		return LoginResult{}, err
	}

	if s.logins != nil {
		s.logins.Record(ctx, a)
	}

	s.startWatcher(sess.ID, a.ID)

	s.log.Info("admin session started", map[string]any{
		"session_id": sess.ID,
		"account_id": a.ID,
	})
	return LoginResult{Token: token, ExpiresAt: expiresAt, Session: sess, Account: a}, nil
}

// Verify implementa auth.TokenVerifier: firma válida y sesión no revocada.
func (s *Service) Verify(ctx context.Context, token string) (auth.Claims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return auth.Claims{}, err
	}

	sess, err := s.sessions.GetByID(ctx, claims.ID)
	if err != nil {
		return auth.Claims{}, ErrSessionRevoked
	}
	if sess.Revoked() || sess.AccountID != claims.Subject {
		return auth.Claims{}, ErrSessionRevoked
	}

	// Touch best-effort del last seen.
	sess.LastSeenAt = s.now().UTC()
	_ = s.sessions.Update(ctx, sess)

	return auth.Claims{
		UserID:    sess.AccountID,
		Email:     sess.Email,
		SessionID: sess.ID,
	}, nil
}

// Logout termina la sesión por pedido del propio usuario.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	return s.Terminate(ctx, sessionID, "logout")
}

// Terminate revoca la sesión y frena su watcher. Idempotente.
func (s *Service) Terminate(ctx context.Context, sessionID, reason string) error {
	s.stopWatcher(sessionID)
	return s.revoke(ctx, sessionID, reason)
}

func (s *Service) GetByID(ctx context.Context, sessionID string) (Session, error) {
	return s.sessions.GetByID(ctx, sessionID)
}

// WatcherCount expone cuántos watchers siguen vivos (health/tests).
func (s *Service) WatcherCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.watchers)
}

// StopAll frena todos los watchers sin revocar sesiones (shutdown).
func (s *Service) StopAll() {
	s.mu.Lock()
	ws := make([]*watcher, 0, len(s.watchers))
	for _, w := range s.watchers {
		ws = append(ws, w)
	}
	s.watchers = make(map[string]*watcher)
	s.mu.Unlock()

	for _, w := range ws {
		w.cancel()
		<-w.done
	}
}

func (s *Service) revoke(ctx context.Context, sessionID, reason string) error {
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess.Revoked() {
		return nil
	}

	now := s.now().UTC()
	sess.RevokedAt = &now
	sess.RevokeReason = reason
	if err := s.sessions.Update(ctx, sess); err != nil {
		return err
	}

	s.hub.Publish(realtime.Signal{
		Topic:  realtime.ForceLogoutTopic(sess.AccountID),
		Event:  realtime.EventSessionEnded,
		Reason: reason,
	})

	s.log.Info("admin session ended", map[string]any{
		"session_id": sessionID,
		"account_id": sess.AccountID,
		"reason":     reason,
	})
	return nil
}
