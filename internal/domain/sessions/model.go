package sessions

import (
	"context"
	"time"
)

// Session es el registro server-side de una sesión admin emitida.
// El JWT lleva el ID (jti); revocar acá invalida el token aunque
// criptográficamente siga siendo válido.
type Session struct {
	ID         string
	AccountID  string
	Email      string
	CreatedAt  time.Time
	LastSeenAt time.Time

	RevokedAt    *time.Time
	RevokeReason string
}

func (s Session) Revoked() bool {
	return s.RevokedAt != nil
}

type Repository interface {
	Create(ctx context.Context, s Session) error
	GetByID(ctx context.Context, id string) (Session, error)
	Update(ctx context.Context, s Session) error
}
